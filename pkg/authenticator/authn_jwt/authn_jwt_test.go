package authn_jwt

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator"
	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newTestAuthenticator(s Store, now time.Time) *Authenticator {
	a := New(s, Config{Secret: []byte("test-secret"), TTL: time.Hour})
	a.now = func() time.Time { return now }
	return a
}

func TestAuthenticator_IssueAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := &mockStore{}
	s.On("FindByUsername", ctx, "svc-deploy").Return(&model.User{ID: 5, Username: "svc-deploy", IsActive: true}, nil)

	a := newTestAuthenticator(s, now)
	token, expiresAt, err := a.Issue("svc-deploy")
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	user, err := a.Authenticate(ctx, authenticator.AuthenticatorInput{Credentials: []byte(token)})
	require.NoError(t, err)
	assert.Equal(t, uint(5), user.ID)
	s.AssertExpectations(t)
}

func TestAuthenticator_Expired(t *testing.T) {
	now := time.Now()
	a := newTestAuthenticator(&mockStore{}, now.Add(-2*time.Hour))
	token, _, err := a.Issue("svc-deploy")
	require.NoError(t, err)

	a.now = func() time.Time { return now }
	_, err = a.Authenticate(context.Background(), authenticator.AuthenticatorInput{Credentials: []byte(token)})
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAuthenticator_WrongSecret(t *testing.T) {
	now := time.Now()
	other := New(&mockStore{}, Config{Secret: []byte("another-secret"), TTL: time.Hour})
	token, _, err := other.Issue("svc-deploy")
	require.NoError(t, err)

	a := newTestAuthenticator(&mockStore{}, now)
	_, err = a.Authenticate(context.Background(), authenticator.AuthenticatorInput{Credentials: []byte(token)})
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestAuthenticator_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "svc-deploy",
		Issuer:    DefaultIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	a := newTestAuthenticator(&mockStore{}, time.Now())
	_, err = a.Authenticate(context.Background(), authenticator.AuthenticatorInput{Credentials: []byte(token)})
	assert.Error(t, err)
}

func TestAuthenticator_UserStates(t *testing.T) {
	ctx := context.Background()
	s := &mockStore{}
	s.On("FindByUsername", ctx, "gone").Return(nil, store.ErrNotFound)
	s.On("FindByUsername", ctx, "disabled").Return(&model.User{Username: "disabled", IsActive: false}, nil)

	a := newTestAuthenticator(s, time.Now())

	token, _, err := a.Issue("gone")
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, authenticator.AuthenticatorInput{Credentials: []byte(token)})
	assert.ErrorIs(t, err, authenticator.ErrInvalidCredentials)

	token, _, err = a.Issue("disabled")
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, authenticator.AuthenticatorInput{Credentials: []byte(token)})
	assert.ErrorIs(t, err, authenticator.ErrInactiveUser)

	token, _, err = a.Issue("disabled")
	require.NoError(t, err)
	_, err = a.Authenticate(ctx, authenticator.AuthenticatorInput{Login: "someone-else", Credentials: []byte(token)})
	assert.Error(t, err)
}

func TestAuthenticator_Status(t *testing.T) {
	assert.Error(t, New(&mockStore{}, Config{}).Status(context.Background()))
	assert.NoError(t, New(&mockStore{}, Config{Secret: []byte("s")}).Status(context.Background()))

	_, _, err := New(&mockStore{}, Config{}).Issue("x")
	assert.Error(t, err)
}
