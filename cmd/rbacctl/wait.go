package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/rbac-console/pkg/db"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the database to be ready",
	Long: `Wait for the database to accept connections.

This command will repeatedly ping the database until it responds
successfully or the maximum number of retries is reached.

Example:
  rbacctl wait
  rbacctl wait --retries 60`,
	Run: func(cmd *cobra.Command, args []string) {
		retries, _ := cmd.Flags().GetInt("retries")

		if err := waitForDatabase(cmd.Context(), retries); err != nil {
			fmt.Fprintf(os.Stderr, "Database did not become ready: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("Database is ready")
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().IntP("retries", "r", 90, "Number of retries")
}

func waitForDatabase(ctx context.Context, retries int) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Waiting for the database to be ready...")

	var lastErr error
	for i := 0; i < retries; i++ {
		database, err := connect(cfg)
		if err == nil {
			err = db.Ping(ctx, database, 2*time.Second)
			if sqlDB, dbErr := database.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
		}
		if err == nil {
			fmt.Println()
			return nil
		}
		lastErr = err

		fmt.Print(".")
		time.Sleep(1 * time.Second)
	}

	fmt.Println()
	return fmt.Errorf("not ready after %d attempts: %w", retries, lastErr)
}
