package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn_jwt"
	"github.com/doodlesbykumbi/rbac-console/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/rbac-console/pkg/server/store/gorm"
)

type issuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// tokenIssueCmd represents the token issue command
var tokenIssueCmd = &cobra.Command{
	Use:   "issue <username>",
	Short: "Issue an API token for a user",
	Long: `Issue an HS256 token signed with RBAC_JWT_SECRET for an active user.

Send it as "Authorization: Bearer <token>" together with
"Accept: application/json" to use the console as an API.

Example:
  rbacctl token issue alice
  rbacctl token issue alice --ttl 1h`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := issueToken(cmd, args[0], ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token for %s: %v\n", args[0], err)
			os.Exit(1)
		}

		output, _ := json.MarshalIndent(token, "", "  ")
		fmt.Println(string(output))
	},
}

func init() {
	tokenCmd.AddCommand(tokenIssueCmd)
	tokenIssueCmd.Flags().Duration("ttl", 0, "token lifetime (defaults to token_ttl)")
}

func issueToken(cmd *cobra.Command, username string, ttl time.Duration) (*issuedToken, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("RBAC_JWT_SECRET is required")
	}
	if ttl <= 0 {
		ttl = cfg.TokenLifetime()
	}

	database, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	users := gormstore.NewUsersStore(database)

	user, err := users.FindByUsername(cmd.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("user not found: %s", username)
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("user is inactive: %s", username)
	}

	issuer := authn_jwt.New(users, authn_jwt.Config{Secret: []byte(cfg.JWTSecret), TTL: ttl})
	token, expiresAt, err := issuer.Issue(username)
	if err != nil {
		return nil, err
	}
	return &issuedToken{Token: token, ExpiresAt: expiresAt}, nil
}
