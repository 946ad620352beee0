// Package cache provides the key/value backends used to memoize
// authorization decisions.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache stores string values under string keys with a TTL.
type Cache interface {
	// Get returns the value and whether it was found. A miss is not an error.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Clear drops every key owned by this cache.
	Clear(ctx context.Context) error
}

// DefaultNamespace prefixes the keys the console stores in Redis.
const DefaultNamespace = "rbac-console"

// Options selects and configures a backend.
type Options struct {
	Backend      string
	RedisAddress string
	Namespace    string
}

// New builds the cache named by opts.Backend ("none", "memory" or "redis").
func New(opts Options) (Cache, error) {
	switch opts.Backend {
	case "", "none":
		return Nop{}, nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(opts.RedisAddress, opts.Namespace), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", opts.Backend)
	}
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (Nop) Set(context.Context, string, string, time.Duration) error {
	return nil
}

func (Nop) Clear(context.Context) error {
	return nil
}
