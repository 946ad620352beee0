package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rbac-console/pkg/audit"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn"
	gormstore "github.com/doodlesbykumbi/rbac-console/pkg/server/store/gorm"
)

// userSetPasswordCmd represents the user set-password command
var userSetPasswordCmd = &cobra.Command{
	Use:   "set-password <username>",
	Short: "Replace a user's password",
	Long: `Replace the password of an existing user.

Example:
  rbacctl user set-password alice --password-stdin < alice.pw`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username := args[0]
		err := setPassword(cmd, username)

		event := audit.AccountEvent{
			Operator:  operator(),
			Operation: audit.AccountSetPassword,
			Subject:   username,
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
		}
		audit.Log(event)

		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set password for %s: %v\n", username, err)
			os.Exit(1)
		}
		fmt.Printf("Password updated for %s\n", username)
	},
}

func init() {
	userCmd.AddCommand(userSetPasswordCmd)
	addPasswordFlags(userSetPasswordCmd)
}

func setPassword(cmd *cobra.Command, username string) error {
	password, err := readPassword(cmd, os.Stdin)
	if err != nil {
		return err
	}
	hash, err := authn.HashPassword(password)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := connect(cfg)
	if err != nil {
		return err
	}
	return gormstore.NewUsersStore(database).SetPassword(cmd.Context(), username, hash)
}
