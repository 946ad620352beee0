//go:build integration

package integration

import (
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn_jwt"
	gormstore "github.com/doodlesbykumbi/rbac-console/pkg/server/store/gorm"
)

func (s *StepsContext) registerJWTSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I have an API token for "([^"]*)"$`, s.iHaveAnAPITokenFor)
	sc.Step(`^I have an expired API token for "([^"]*)"$`, s.iHaveAnExpiredAPITokenFor)
	sc.Step(`^I have an API token for "([^"]*)" signed with "([^"]*)"$`, s.iHaveAnAPITokenSignedWith)
}

// iHaveAnAPITokenFor issues a token the way "rbacctl token issue" does
func (s *StepsContext) iHaveAnAPITokenFor(username string) error {
	issuer := authn_jwt.New(gormstore.NewUsersStore(s.tc.DB), authn_jwt.Config{
		Secret: []byte(testJWTSecret),
		TTL:    time.Hour,
	})
	token, _, err := issuer.Issue(username)
	if err != nil {
		return err
	}
	s.bearerToken = token
	return nil
}

func (s *StepsContext) iHaveAnExpiredAPITokenFor(username string) error {
	return s.signToken(username, testJWTSecret, time.Now().Add(-time.Minute))
}

func (s *StepsContext) iHaveAnAPITokenSignedWith(username, secret string) error {
	return s.signToken(username, secret, time.Now().Add(time.Hour))
}

func (s *StepsContext) signToken(username, secret string, expiresAt time.Time) error {
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    authn_jwt.DefaultIssuer,
		IssuedAt:  jwt.NewNumericDate(expiresAt.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return err
	}
	s.bearerToken = token
	return nil
}
