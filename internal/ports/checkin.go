package ports

import (
	"context"

	"github.com/clientcheckin/checkin-web/internal/domain/model"
)

// CheckInAPI is the upstream check-in service. token is attached as a bearer credential.
type CheckInAPI interface {
	LookupClient(ctx context.Context, token, barcode string) (model.Client, error)
	CheckIn(ctx context.Context, token, barcode string) (model.CheckInResult, error)
	ListCheckIns(ctx context.Context, token string) ([]model.CheckIn, error)
}

// SignupAPI submits invite-code account requests.
type SignupAPI interface {
	Signup(ctx context.Context, req model.SignupRequest) error
}
