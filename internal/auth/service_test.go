package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/freshtide/freshtide/internal/mailer"
	"github.com/freshtide/freshtide/internal/shared"
)

type fakeRepo struct {
	users   map[int64]*User
	nextID  int64
	findErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[int64]*User{}, nextID: 1}
}

func (f *fakeRepo) Create(_ context.Context, user User) (*User, error) {
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return nil, shared.ErrDuplicateEmail
		}
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = &user
	return &user, nil
}

func (f *fakeRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeRepo) FindByID(_ context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) UpdateProfile(_ context.Context, id int64, firstName, lastName, phone string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.FirstName, u.LastName, u.Phone = firstName, lastName, phone
	return u, nil
}

func (f *fakeRepo) SetResetToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.ResetToken = &token
	u.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (f *fakeRepo) FindByResetToken(_ context.Context, token string, now time.Time) (*User, error) {
	for _, u := range f.users {
		if u.ResetToken != nil && *u.ResetToken == token && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now) {
			return u, nil
		}
	}
	return nil, shared.ErrInvalidOrExpiredToken
}

func (f *fakeRepo) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.ResetTokenExpiresAt = nil
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ ListUsersRequest) ([]UserWithOrderCount, int, error) {
	var out []UserWithOrderCount
	for _, u := range f.users {
		out = append(out, UserWithOrderCount{User: *u})
	}
	return out, len(out), nil
}

type captureQueue struct {
	messages []mailer.Message
}

func (q *captureQueue) EnqueueMessage(_ context.Context, msg mailer.Message) error {
	q.messages = append(q.messages, msg)
	return nil
}

func newAuthService(repo Repository, queue MailQueue) *Service {
	tokens := NewTokens("unit-test-secret", time.Hour)
	return NewService(repo, tokens, queue, ServiceConfig{
		ResetBaseURL: "http://localhost:3000/reset-password",
	}, slog.Default())
}

func registerRequest() RegisterRequest {
	return RegisterRequest{
		Email:     "kari@example.com",
		Password:  "hemmelig123",
		FirstName: "Kari",
		LastName:  "Nordmann",
	}
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newAuthService(newFakeRepo(), nil)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, shared.RoleCustomer, user.Role)
	require.NotEqual(t, "hemmelig123", user.PasswordHash)

	logged, token, err := svc.Login(ctx, "kari@example.com", "hemmelig123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.ID, logged.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newAuthService(newFakeRepo(), nil)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, _, wrongPassword := svc.Login(ctx, "kari@example.com", "feil")
	_, _, unknownEmail := svc.Login(ctx, "ubrukt@example.com", "hemmelig123")

	require.True(t, errors.Is(wrongPassword, shared.ErrInvalidCredentials))
	require.True(t, errors.Is(unknownEmail, shared.ErrInvalidCredentials))
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginSurfacesRepositoryFailures(t *testing.T) {
	repo := newFakeRepo()
	repo.findErr = errors.New("connection refused")
	svc := newAuthService(repo, nil)

	_, _, err := svc.Login(context.Background(), "kari@example.com", "hemmelig123")
	require.Error(t, err)
	require.False(t, errors.Is(err, shared.ErrInvalidCredentials),
		"a pool failure must not masquerade as bad credentials")
	require.ErrorContains(t, err, "connection refused")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc := newAuthService(newFakeRepo(), nil)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, registerRequest())
	require.True(t, errors.Is(err, shared.ErrDuplicateEmail))
}

func TestRequestResetIsSilentForUnknownEmail(t *testing.T) {
	queue := &captureQueue{}
	svc := newAuthService(newFakeRepo(), queue)

	require.NoError(t, svc.RequestReset(context.Background(), "ingen@example.com"))
	require.Empty(t, queue.messages)
}

func TestPasswordResetFlow(t *testing.T) {
	repo := newFakeRepo()
	queue := &captureQueue{}
	svc := newAuthService(repo, queue)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	require.NoError(t, svc.RequestReset(ctx, "kari@example.com"))
	require.Len(t, queue.messages, 1)
	require.Equal(t, "kari@example.com", queue.messages[0].To)

	token := *repo.users[user.ID].ResetToken
	require.Contains(t, queue.messages[0].Text, token)

	require.NoError(t, svc.CompleteReset(ctx, token, "nyttpassord123"))

	// The token is single use.
	err = svc.CompleteReset(ctx, token, "enda-et-passord")
	require.True(t, errors.Is(err, shared.ErrInvalidOrExpiredToken))

	_, _, err = svc.Login(ctx, "kari@example.com", "nyttpassord123")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "kari@example.com", "hemmelig123")
	require.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestCompleteResetRejectsExpiredToken(t *testing.T) {
	repo := newFakeRepo()
	svc := newAuthService(repo, nil)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	token := "stale-token"
	repo.users[user.ID].ResetToken = &token
	repo.users[user.ID].ResetTokenExpiresAt = &expired

	err = svc.CompleteReset(ctx, token, "nyttpassord123")
	require.True(t, errors.Is(err, shared.ErrInvalidOrExpiredToken))
}
