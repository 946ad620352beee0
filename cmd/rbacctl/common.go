package main

import (
	"fmt"
	"os"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rbac-console/pkg/config"
	"github.com/doodlesbykumbi/rbac-console/pkg/db"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func connect(cfg *config.Config) (*gorm.DB, error) {
	return db.Connect(db.Config{URL: cfg.DatabaseURL, LogLevel: cfg.LogLevel})
}

// operator names the person running a CLI command in audit events.
func operator() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "rbacctl"
}
