package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/loginsvc/internal/auth"
	"github.com/dmitrymomot/loginsvc/internal/jwt"
	"github.com/dmitrymomot/loginsvc/internal/password"
	"github.com/dmitrymomot/loginsvc/internal/user"
)

const signingKey = "test-secret-32-chars-long-12345!"

func newService(t *testing.T, storage user.Storage) (*auth.Service, *jwt.Codec, *password.Hasher) {
	t.Helper()

	codec, err := jwt.NewFromString(signingKey)
	require.NoError(t, err)
	hasher := password.New(password.WithCost(bcrypt.MinCost))

	return auth.New(storage, hasher, codec), codec, hasher
}

func fixtureUser(t *testing.T, hasher *password.Hasher, plaintext string) *user.User {
	t.Helper()

	u := &user.User{
		ID:     uuid.New(),
		UserID: "101",
		Name:   "Nick Gravgaard",
		Email:  "nick.gravgaard@example.com",
	}
	if plaintext != "" {
		hash, err := hasher.Hash(plaintext)
		require.NoError(t, err)
		u.PasswordHash = &hash
	}
	return u
}

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid credentials yield a decodable token", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, codec, hasher := newService(t, storage)
		u := fixtureUser(t, hasher, "password")

		storage.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)

		token, err := svc.Login(ctx, u.Email, "password")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := codec.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, u.UserID, claims.UserID)
		assert.Equal(t, u.Name, claims.Name)
		assert.Equal(t, u.Email, claims.Email)
		assert.Zero(t, claims.ExpiresAt)
	})

	t.Run("empty credentials are an ordinary credential failure", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, _, hasher := newService(t, storage)
		u := fixtureUser(t, hasher, "password")

		storage.On("FindByEmail", mock.Anything, "").Return(nil, user.ErrUserNotFound)
		storage.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)

		_, err := svc.Login(ctx, "", "password")
		require.ErrorIs(t, err, auth.ErrAccessDenied)

		_, err = svc.Login(ctx, u.Email, "")
		require.ErrorIs(t, err, auth.ErrAccessDenied)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, _, hasher := newService(t, storage)
		u := fixtureUser(t, hasher, "password")

		storage.On("FindByEmail", mock.Anything, "unknown@example.com").Return(nil, user.ErrUserNotFound)
		storage.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)

		_, unknownErr := svc.Login(ctx, "unknown@example.com", "x")
		_, wrongErr := svc.Login(ctx, u.Email, "not-the-password")

		require.ErrorIs(t, unknownErr, auth.ErrAccessDenied)
		require.ErrorIs(t, wrongErr, auth.ErrAccessDenied)
		assert.Equal(t, unknownErr, wrongErr)
	})

	t.Run("user without a password can never authenticate", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, _, _ := newService(t, storage)
		u := fixtureUser(t, nil, "")

		storage.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)

		_, err := svc.Login(ctx, u.Email, "password")
		require.ErrorIs(t, err, auth.ErrAccessDenied)
	})

	t.Run("store failure is not access denied", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, _, _ := newService(t, storage)

		storage.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

		_, err := svc.Login(ctx, "nick.gravgaard@example.com", "password")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrAccessDenied)
	})
}

func TestProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("valid token returns the projection", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, _, hasher := newService(t, storage)
		u := fixtureUser(t, hasher, "password")

		storage.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)
		storage.On("FindByUserID", mock.Anything, u.UserID).Return(u, nil)

		token, err := svc.Login(ctx, u.Email, "password")
		require.NoError(t, err)

		profile, err := svc.Profile(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, auth.Profile{
			UserID: "101",
			Name:   "Nick Gravgaard",
			Email:  "nick.gravgaard@example.com",
		}, profile)
	})

	t.Run("repeated reads return identical output", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, codec, hasher := newService(t, storage)
		u := fixtureUser(t, hasher, "password")

		storage.On("FindByUserID", mock.Anything, u.UserID).Return(u, nil)

		token, err := codec.Encode(jwt.Claims{UserID: u.UserID, Name: u.Name, Email: u.Email})
		require.NoError(t, err)

		first, err := svc.Profile(ctx, token)
		require.NoError(t, err)
		second, err := svc.Profile(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, _, _ := newService(t, storage)

		_, err := svc.Profile(ctx, "")
		require.ErrorIs(t, err, auth.ErrMissingOrInvalidToken)
	})

	t.Run("tampered token", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, codec, _ := newService(t, storage)

		token, err := codec.Encode(jwt.Claims{UserID: "101"})
		require.NoError(t, err)

		_, err = svc.Profile(ctx, token+"x")
		require.ErrorIs(t, err, auth.ErrMissingOrInvalidToken)
	})

	t.Run("token without user_id claim", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, codec, _ := newService(t, storage)

		token, err := codec.Encode(jwt.Claims{Name: "Nobody"})
		require.NoError(t, err)

		_, err = svc.Profile(ctx, token)
		require.ErrorIs(t, err, auth.ErrMissingOrInvalidToken)
	})

	t.Run("valid token for deleted subject", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, codec, _ := newService(t, storage)

		storage.On("FindByUserID", mock.Anything, "101").Return(nil, user.ErrUserNotFound)

		token, err := codec.Encode(jwt.Claims{UserID: "101"})
		require.NoError(t, err)

		_, err = svc.Profile(ctx, token)

		var notFound auth.SubjectNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "101", notFound.UserID)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	newName := func(s string) *string { return &s }

	t.Run("name patch is applied and persisted state returned", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, codec, hasher := newService(t, storage)
		u := fixtureUser(t, hasher, "password")

		updated := *u
		updated.Name = "Nick G."

		storage.On("FindByUserID", mock.Anything, u.UserID).Return(u, nil)
		storage.On("UpdateName", mock.Anything, u.UserID, "Nick G.").Return(&updated, nil)

		token, err := codec.Encode(jwt.Claims{UserID: u.UserID, Name: u.Name, Email: u.Email})
		require.NoError(t, err)

		profile, err := svc.UpdateProfile(ctx, token, auth.Patch{Name: newName("Nick G.")})
		require.NoError(t, err)
		assert.Equal(t, "Nick G.", profile.Name)
		assert.Equal(t, u.UserID, profile.UserID)

		storage.AssertCalled(t, "UpdateName", mock.Anything, u.UserID, "Nick G.")
	})

	t.Run("empty patch is a read", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, codec, hasher := newService(t, storage)
		u := fixtureUser(t, hasher, "password")

		storage.On("FindByUserID", mock.Anything, u.UserID).Return(u, nil)

		token, err := codec.Encode(jwt.Claims{UserID: u.UserID, Name: u.Name, Email: u.Email})
		require.NoError(t, err)

		profile, err := svc.UpdateProfile(ctx, token, auth.Patch{})
		require.NoError(t, err)
		assert.Equal(t, u.Name, profile.Name)

		storage.AssertNotCalled(t, "UpdateName", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid token never reaches the store", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, _, _ := newService(t, storage)

		_, err := svc.UpdateProfile(ctx, "garbage", auth.Patch{Name: newName("X")})
		require.ErrorIs(t, err, auth.ErrMissingOrInvalidToken)

		storage.AssertNotCalled(t, "UpdateName", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("subject deleted between lookup and update", func(t *testing.T) {
		t.Parallel()

		storage := &MockStorage{}
		svc, codec, hasher := newService(t, storage)
		u := fixtureUser(t, hasher, "password")

		storage.On("FindByUserID", mock.Anything, u.UserID).Return(u, nil)
		storage.On("UpdateName", mock.Anything, u.UserID, "X").Return(nil, user.ErrUserNotFound)

		token, err := codec.Encode(jwt.Claims{UserID: u.UserID})
		require.NoError(t, err)

		_, err = svc.UpdateProfile(ctx, token, auth.Patch{Name: newName("X")})

		var notFound auth.SubjectNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, u.UserID, notFound.UserID)
	})
}
