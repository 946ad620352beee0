// Package authenticator defines the interface for console authenticators.
//
// # Authenticator Interface
//
//	type Authenticator interface {
//	    Name() string
//	    Authenticate(ctx context.Context, input AuthenticatorInput) (*model.User, error)
//	    Status(ctx context.Context) error
//	}
//
// # Built-in Authenticators
//
//   - password: username and bcrypt password, used by the login form - see [github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn]
//   - jwt: HS256 bearer tokens for API clients - see [github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn_jwt]
//
// # Configuration
//
// Authenticators are registered in a Registry at server start and enabled
// from the RBAC_AUTHENTICATORS setting:
//
//	RBAC_AUTHENTICATORS=password,jwt
package authenticator
