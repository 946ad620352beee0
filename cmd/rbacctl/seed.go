package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/audit"
	"github.com/doodlesbykumbi/rbac-console/pkg/cache"
	"github.com/doodlesbykumbi/rbac-console/pkg/config"
	"github.com/doodlesbykumbi/rbac-console/pkg/seed"
)

// seedCmd represents the seed command
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Manage reference data",
	Long:  `Load permissions, menus, modules, groups, users and grants from a YAML file.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'seed' requires a subcommand (load, watch)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// loadSeedFile applies filename in one transaction and records the outcome
// in the audit log.
func loadSeedFile(ctx context.Context, database *gorm.DB, cfg *config.Config, filename string, dryRun bool) (*seed.Result, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = file.Close() }()

	result, err := seed.NewLoader(seed.NewGormStore(database)).
		WithDryRun(dryRun).
		LoadFromReader(ctx, file)

	event := audit.AccountEvent{
		Operator:  operator(),
		Operation: audit.AccountSeed,
		Subject:   filename,
		Success:   err == nil,
	}
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	if !dryRun {
		audit.Log(event)
	}
	if err != nil {
		return nil, err
	}

	if !dryRun {
		if err := clearAuthzCache(ctx, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to clear the authorization cache: %v\n", err)
		}
	}
	return result, nil
}

// clearAuthzCache drops cached authorization decisions shared through Redis.
// In-process caches belong to the server and expire on their own.
func clearAuthzCache(ctx context.Context, cfg *config.Config) error {
	if cfg.CacheBackend != "redis" {
		return nil
	}
	c, err := cache.New(cache.Options{
		Backend:      cfg.CacheBackend,
		RedisAddress: cfg.RedisAddress,
		Namespace:    cache.DefaultNamespace,
	})
	if err != nil {
		return err
	}
	return c.Clear(ctx)
}
