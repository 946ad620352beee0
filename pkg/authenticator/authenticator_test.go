package authenticator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/doodlesbykumbi/rbac-console/pkg/model"
)

// mockAuthenticator is a simple mock for testing
type mockAuthenticator struct {
	name string
}

func (m *mockAuthenticator) Name() string {
	return m.name
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, input AuthenticatorInput) (*model.User, error) {
	return &model.User{Username: input.Login}, nil
}

func (m *mockAuthenticator) Status(ctx context.Context) error {
	return nil
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	auth := &mockAuthenticator{name: "test-auth"}

	r.Register(auth)

	got, ok := r.Get("test-auth")
	assert.True(t, ok)
	assert.Equal(t, "test-auth", got.Name())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_Enable(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockAuthenticator{name: "password"})

	assert.NoError(t, r.Enable("password"))
	assert.True(t, r.IsEnabled("password"))

	_, ok := r.GetEnabled("password")
	assert.True(t, ok)
}

func TestRegistry_Enable_NotFound(t *testing.T) {
	r := NewRegistry()

	err := r.Enable("ldap")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistry_Disable(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockAuthenticator{name: "jwt"})
	_ = r.Enable("jwt")

	r.Disable("jwt")

	assert.False(t, r.IsEnabled("jwt"))
	_, ok := r.GetEnabled("jwt")
	assert.False(t, ok)
	_, ok = r.Get("jwt")
	assert.True(t, ok, "disabled authenticators stay installed")
}

func TestRegistry_InstalledAndEnabled(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockAuthenticator{name: "password"})
	r.Register(&mockAuthenticator{name: "jwt"})
	_ = r.Enable("password")

	assert.Equal(t, []string{"jwt", "password"}, r.Installed())
	assert.Equal(t, []string{"password"}, r.Enabled())
}
