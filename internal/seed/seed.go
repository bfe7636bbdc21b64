// Package seed provisions the demo respondent accounts of the original
// deployment. This is a fixture concern for development and demos, kept out
// of the request path entirely.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/loginsvc/internal/logger"
	"github.com/dmitrymomot/loginsvc/internal/password"
	"github.com/dmitrymomot/loginsvc/internal/user"
)

// demoPassword is shared by every demo account.
const demoPassword = "password"

type fixture struct {
	userID string
	name   string
	email  string
}

var fixtures = []fixture{
	{"101", "Nick Gravgaard", "nick.gravgaard@example.com"},
	{"102", "Shane Edwards", "shane.edwards@example.com"},
	{"103", "David Carboni", "david.carboni@example.com"},
	{"104", "Nic Price", "nic.price@example.com"},
	{"105", "Rich Ingram", "rich.ingram@example.com"},
	{"106", "Tom Underwood", "tom.underwood@example.com"},
	{"107", "Rachel Williams", "rachel.williams@example.com"},
	{"108", "Nige Sedgwick", "nige.sedgwich@example.com"},
	{"109", "Simon Houghton", "simon.houghton@example.com"},
	{"110", "Rob Kent", "rob.kent@example.com"},
}

// Run inserts every demo respondent that is not already present. Existing
// records are left untouched, so Run is safe to repeat.
func Run(ctx context.Context, storage user.Storage, hasher *password.Hasher, log *slog.Logger) error {
	for _, f := range fixtures {
		_, err := storage.FindByUserID(ctx, f.userID)
		if err == nil {
			continue
		}
		if !errors.Is(err, user.ErrUserNotFound) {
			return fmt.Errorf("failed to check existing user %s: %w", f.userID, err)
		}

		hash, err := hasher.Hash(demoPassword)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}

		u := &user.User{
			UserID:       f.userID,
			Name:         f.name,
			Email:        f.email,
			PasswordHash: &hash,
		}
		if err := storage.Create(ctx, u); err != nil {
			return fmt.Errorf("failed to create user %s: %w", f.userID, err)
		}

		log.InfoContext(ctx, "demo user created",
			logger.UserID(f.userID),
			slog.String("email", f.email),
		)
	}

	return nil
}
