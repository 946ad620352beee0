package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/config"
)

// seedWatchCmd represents the seed watch command
var seedWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Reload a seed file whenever it changes",
	Long: `Watch a seed file and load it every time it is written.

The file is loaded once on start. The command runs until interrupted.

Example:
  rbacctl seed watch seed.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := watchSeedFile(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	seedCmd.AddCommand(seedWatchCmd)
}

func watchSeedFile(filename string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	database, err := connect(cfg)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace the file instead of writing it, so watch the directory.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reload(ctx, database, cfg, absPath)
	fmt.Printf("Watching %s for changes\n", absPath)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				reload(ctx, database, cfg, absPath)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}

func reload(ctx context.Context, database *gorm.DB, cfg *config.Config, filename string) {
	fmt.Printf("[%s] Loading %s...\n", time.Now().Format(time.RFC3339), filename)
	result, err := loadSeedFile(ctx, database, cfg, filename, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading seed file: %v\n", err)
		return
	}
	fmt.Printf("Seed file loaded: %d grant(s), %d user(s) created\n", result.Grants, len(result.CreatedUsers))
}
