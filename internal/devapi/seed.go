package devapi

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/clientcheckin/checkin-web/internal/domain/model"
)

type clientSeed struct {
	Barcode string
	Client  model.Client
	Visits  int
}

// Seed loads the development client roster and a few past visits.
// It is safe to run more than once; existing clients are replaced.
func Seed(ctx context.Context, store *Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	failures := 0
	for _, seed := range defaultClients() {
		created, err := store.PutClient(seed.Barcode, seed.Client)
		if err != nil {
			logger.ErrorContext(ctx, "failed to seed client", "barcode", seed.Barcode, "error", err)
			failures++
			continue
		}
		msg := "client already exists"
		if created {
			msg = "created client"
		}
		logger.InfoContext(ctx, msg, "barcode", seed.Barcode, "action", "seeded")

		if !created {
			continue
		}
		for range seed.Visits {
			if _, err := store.RecordCheckIn(seed.Barcode); err != nil {
				logger.ErrorContext(ctx, "failed to seed visit", "barcode", seed.Barcode, "error", err)
				failures++
			}
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d seed errors; check logs", failures)
	}
	return nil
}

func defaultClients() []clientSeed {
	updated := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	return []clientSeed{
		{
			Barcode: "100001",
			Visits:  2,
			Client: model.Client{
				ID: "c-100001", ClientID: "100001", LTFID: "LTF-0001",
				FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.org", Phone: "555-0101",
				Address: "12 Analytical Way", City: "Arlington", State: "VA", Postal: "22201",
				DOB: "1985-12-10", UpdatedAt: updated,
			},
		},
		{
			Barcode: "100002",
			Visits:  1,
			Client: model.Client{
				ID: "c-100002", ClientID: "100002", LTFID: "LTF-0002",
				FirstName: "Alan", LastName: "Turing", Email: "alan@example.org", Phone: "555-0102",
				Address: "7 Bletchley Rd", City: "Alexandria", State: "VA", Postal: "22301",
				DOB: "1982-06-23", UpdatedAt: updated,
			},
		},
		{
			Barcode: "100003",
			Client: model.Client{
				ID: "c-100003", ClientID: "100003", LTFID: "LTF-0003",
				FirstName: "Grace", LastName: "Hopper", Email: "grace@example.org", Phone: "555-0103",
				Address: "99 Compiler Ct", City: "Arlington", State: "VA", Postal: "22203",
				DOB: "1976-12-09", UpdatedAt: updated,
			},
		},
	}
}
