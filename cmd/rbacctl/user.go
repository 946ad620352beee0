package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage console users",
	Long:  `Create console users and reset their passwords.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'user' requires a subcommand (create, set-password)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
}

func addPasswordFlags(cmd *cobra.Command) {
	cmd.Flags().String("password", "", "password (visible in the process list; prefer --password-stdin)")
	cmd.Flags().Bool("password-stdin", false, "read the password from the first line of stdin")
}

// readPassword returns the password given by flag or on stdin.
func readPassword(cmd *cobra.Command, stdin io.Reader) (string, error) {
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	if !fromStdin {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			return "", fmt.Errorf("a password is required (--password or --password-stdin)")
		}
		return password, nil
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("empty password on stdin")
	}
	return password, nil
}
