// Package auth implements credential verification and token-authorized
// profile access.
//
// The service is stateless across requests: a login issues a signed bearer
// token, and every profile operation re-derives the caller's identity from
// the token alone. No session state is held in the process.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dmitrymomot/loginsvc/internal/jwt"
	"github.com/dmitrymomot/loginsvc/internal/logger"
	"github.com/dmitrymomot/loginsvc/internal/password"
	"github.com/dmitrymomot/loginsvc/internal/user"
)

// Profile is the public projection of a user record: the only fields that
// are safe to return to a caller or embed in a token.
type Profile struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// Patch is the allow-listed mutation surface for profile updates. A nil
// field means "leave unchanged". Unknown fields sent by clients never reach
// this type.
type Patch struct {
	Name *string `json:"name"`
}

// Service authenticates credentials and authorizes profile access.
type Service struct {
	storage user.Storage
	hasher  *password.Hasher
	codec   *jwt.Codec
	log     *slog.Logger
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.log = log
	}
}

// New creates an auth service over the given store, hasher and token codec.
func New(storage user.Storage, hasher *password.Hasher, codec *jwt.Codec, opts ...Option) *Service {
	s := &Service{
		storage: storage,
		hasher:  hasher,
		codec:   codec,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies the credentials and returns a signed session token carrying
// the user's public projection. Every credential failure collapses into
// ErrAccessDenied: unknown email, unset password, wrong password. Empty
// strings are just credentials that match nobody; detecting keys absent from
// the request payload is the transport's job.
func (s *Service) Login(ctx context.Context, email, plaintext string) (string, error) {
	u, err := s.storage.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return "", ErrAccessDenied
		}
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(plaintext, u.PasswordHash) {
		return "", ErrAccessDenied
	}

	token, err := s.codec.Encode(jwt.Claims{
		UserID: u.UserID,
		Name:   u.Name,
		Email:  u.Email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}

	s.log.InfoContext(ctx, "login succeeded",
		logger.UserID(u.UserID),
		logger.Component("auth"),
	)

	return token, nil
}

// Profile resolves a bearer token to the subject's public projection.
func (s *Service) Profile(ctx context.Context, token string) (Profile, error) {
	u, err := s.subject(ctx, token)
	if err != nil {
		return Profile{}, err
	}
	return project(u), nil
}

// UpdateProfile resolves the token like Profile and then applies the patch.
// Only the name is mutable; the returned projection reflects the persisted
// state.
func (s *Service) UpdateProfile(ctx context.Context, token string, patch Patch) (Profile, error) {
	u, err := s.subject(ctx, token)
	if err != nil {
		return Profile{}, err
	}

	if patch.Name != nil {
		userID := u.UserID
		u, err = s.storage.UpdateName(ctx, userID, *patch.Name)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return Profile{}, SubjectNotFoundError{UserID: userID}
			}
			return Profile{}, fmt.Errorf("failed to update name: %w", err)
		}

		s.log.InfoContext(ctx, "profile name updated",
			logger.UserID(u.UserID),
			logger.Component("auth"),
		)
	}

	return project(u), nil
}

// subject decodes the token and resolves its user_id claim to a store
// record. Token failures map to ErrMissingOrInvalidToken; a valid token
// whose subject has disappeared maps to SubjectNotFoundError.
func (s *Service) subject(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, ErrMissingOrInvalidToken
	}

	claims, err := s.codec.Decode(token)
	if err != nil {
		return nil, ErrMissingOrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrMissingOrInvalidToken
	}

	u, err := s.storage.FindByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, SubjectNotFoundError{UserID: claims.UserID}
		}
		return nil, fmt.Errorf("failed to look up subject: %w", err)
	}

	return u, nil
}

func project(u *user.User) Profile {
	return Profile{
		UserID: u.UserID,
		Name:   u.Name,
		Email:  u.Email,
	}
}
