package identity

import (
	"context"
	"net"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity represents the authenticated user for a request.
type Identity struct {
	UserID      uint
	Username    string
	IsSuperuser bool

	// Authenticator is the name of the authenticator that produced the identity
	// ("password" for session logins, "jwt" for bearer tokens).
	Authenticator string

	RemoteIP net.IP
}

// New creates an Identity for a user.
func New(userID uint, username string, isSuperuser bool) *Identity {
	return &Identity{
		UserID:      userID,
		Username:    username,
		IsSuperuser: isSuperuser,
	}
}

// WithAuthenticator records which authenticator produced the identity.
func (i *Identity) WithAuthenticator(name string) *Identity {
	i.Authenticator = name
	return i
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// IsAPIClient reports whether the request was authenticated with a bearer token.
func (i *Identity) IsAPIClient() bool {
	return i.Authenticator == "jwt"
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}
