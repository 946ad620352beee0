// Package authn_jwt implements bearer token authentication for API clients.
//
// Tokens are HS256-signed JWTs whose subject is the username. They are
// issued by "rbacctl token issue" and verified on every API request.
package authn_jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator"
	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
)

// Name is the registry name of the JWT authenticator
const Name = "jwt"

// DefaultIssuer is the iss claim of issued tokens
const DefaultIssuer = "rbac-console"

// Config holds JWT authenticator configuration
type Config struct {
	// Secret is the HS256 signing key
	Secret []byte
	// Issuer is the expected and issued iss claim (defaults to DefaultIssuer)
	Issuer string
	// TTL is the lifetime of issued tokens
	TTL time.Duration
}

// Store abstracts the user lookups needed by the JWT authenticator
type Store interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// Authenticator implements JWT authentication
type Authenticator struct {
	store  Store
	config Config
	now    func() time.Time
}

// New creates a new JWT authenticator
func New(s Store, config Config) *Authenticator {
	if config.Issuer == "" {
		config.Issuer = DefaultIssuer
	}
	return &Authenticator{store: s, config: config, now: time.Now}
}

// Name returns the authenticator name
func (a *Authenticator) Name() string {
	return Name
}

// Issue signs a token for username valid for the configured TTL
func (a *Authenticator) Issue(username string) (string, time.Time, error) {
	if len(a.config.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is not configured")
	}

	now := a.now()
	expiresAt := now.Add(a.config.TTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   username,
		Issuer:    a.config.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.config.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Authenticate validates the token in input.Credentials and returns its user
func (a *Authenticator) Authenticate(ctx context.Context, input authenticator.AuthenticatorInput) (*model.User, error) {
	tokenString := string(input.Credentials)
	if tokenString == "" {
		return nil, errors.New("JWT token is required")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.config.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.config.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	if input.Login != "" && input.Login != claims.Subject {
		return nil, fmt.Errorf("token subject %q does not match login %q", claims.Subject, input.Login)
	}

	user, err := a.store.FindByUsername(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, authenticator.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, authenticator.ErrInactiveUser
	}
	return user, nil
}

// Status reports whether a signing secret is configured
func (a *Authenticator) Status(ctx context.Context) error {
	if len(a.config.Secret) == 0 {
		return errors.New("jwt secret is not configured")
	}
	return nil
}
