package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rbac-console/pkg/audit"
	"github.com/doodlesbykumbi/rbac-console/pkg/authenticator/authn"
	"github.com/doodlesbykumbi/rbac-console/pkg/model"
	gormstore "github.com/doodlesbykumbi/rbac-console/pkg/server/store/gorm"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a console user",
	Long: `Create a console user with a bcrypt-hashed password.

Example:
  rbacctl user create admin --superuser --password-stdin < admin.pw
  rbacctl user create alice --group accountants --email alice@example.com --password-stdin`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		user, err := createUser(cmd, args[0])

		event := audit.AccountEvent{
			Operator:  operator(),
			Operation: audit.AccountCreate,
			Subject:   args[0],
			Success:   err == nil,
		}
		if err != nil {
			event.ErrorMessage = err.Error()
		}
		audit.Log(event)

		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user %s: %v\n", args[0], err)
			os.Exit(1)
		}

		output, _ := json.MarshalIndent(user, "", "  ")
		fmt.Println(string(output))
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	addPasswordFlags(userCreateCmd)
	userCreateCmd.Flags().String("email", "", "email address")
	userCreateCmd.Flags().Bool("superuser", false, "grant every permission")
	userCreateCmd.Flags().Bool("inactive", false, "create the user without the ability to log in")
	userCreateCmd.Flags().StringSliceP("group", "g", nil, "group to add the user to (repeatable)")
}

func createUser(cmd *cobra.Command, username string) (*model.User, error) {
	password, err := readPassword(cmd, os.Stdin)
	if err != nil {
		return nil, err
	}
	hash, err := authn.HashPassword(password)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	database, err := connect(cfg)
	if err != nil {
		return nil, err
	}

	email, _ := cmd.Flags().GetString("email")
	superuser, _ := cmd.Flags().GetBool("superuser")
	inactive, _ := cmd.Flags().GetBool("inactive")
	groups, _ := cmd.Flags().GetStringSlice("group")

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		IsActive:     !inactive,
		IsSuperuser:  superuser,
	}
	if err := gormstore.NewUsersStore(database).Create(cmd.Context(), user, groups); err != nil {
		return nil, err
	}
	return user, nil
}
