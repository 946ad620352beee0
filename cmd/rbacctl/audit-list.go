package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rbac-console/pkg/audit"
)

// auditListCmd represents the audit list command
var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audit messages",
	Long: `List the most recent audit messages, newest first.

Example:
  rbacctl audit list
  rbacctl audit list --limit 100 --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")
		output, _ := cmd.Flags().GetString("output")

		if err := listAudit(limit, output); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list audit messages: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	auditCmd.AddCommand(auditListCmd)
	auditListCmd.Flags().IntP("limit", "n", 20, "Number of messages")
	auditListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listAudit(limit int, output string) error {
	s, err := audit.NewStore()
	if err != nil {
		return err
	}
	if s == nil {
		return errors.New("AUDIT_DATABASE_URL environment variable is required")
	}
	defer func() { _ = s.Close() }()

	messages, err := s.Recent(limit)
	if err != nil {
		return err
	}

	if output == "json" {
		data, err := json.MarshalIndent(messages, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIMESTAMP\tSEVERITY\tMSGID\tMESSAGE")
	for _, m := range messages {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", m.Timestamp.Format(time.RFC3339), m.Severity, m.Msgid, m.Message)
	}
	return w.Flush()
}
