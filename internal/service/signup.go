package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/clientcheckin/checkin-web/internal/domain/model"
	apperrors "github.com/clientcheckin/checkin-web/internal/errors"
	"github.com/clientcheckin/checkin-web/internal/ports"
)

// MsgSignupFailed is shown when the signup endpoint rejects a request without a message.
const MsgSignupFailed = "Sign up failed. Please check your invite code and details."

// SignupService validates and submits invite-code signups.
type SignupService struct {
	api ports.SignupAPI
}

// NewSignupService constructs a new SignupService.
func NewSignupService(api ports.SignupAPI) *SignupService {
	if api == nil {
		panic("signup service requires an API client")
	}
	return &SignupService{api: api}
}

// Signup validates req and submits it.
func (s *SignupService) Signup(ctx context.Context, req model.SignupRequest) error {
	if err := req.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}
	if err := s.api.Signup(ctx, req); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Status != 0 && appErr.Message != "" {
			return err
		}
		return fmt.Errorf("%s: %w", MsgSignupFailed, err)
	}
	return nil
}
