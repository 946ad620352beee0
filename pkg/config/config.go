package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/rbac-console"
	ConfigFileName    = "rbac.yml"
)

// ValidAuthenticators is the list of valid authenticator types
var ValidAuthenticators = []string{"password", "jwt"}

// ValidCacheBackends is the list of supported authorization cache backends
var ValidCacheBackends = []string{"none", "memory", "redis"}

// SupportedLanguages is the list of languages flash messages are translated to
var SupportedLanguages = []string{"es", "en"}

// Config holds all console configuration settings
type Config struct {
	// BindAddress is the address the HTTP server listens on
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// Port is the HTTP server port
	Port int `yaml:"port" json:"port"`

	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level" json:"log_level"`

	// SessionSecret signs the session cookie
	SessionSecret string `yaml:"session_secret" json:"session_secret"`

	// SecureCookies marks the session cookie Secure (HTTPS only)
	SecureCookies bool `yaml:"secure_cookies" json:"secure_cookies"`

	// JWTSecret signs and verifies API bearer tokens
	JWTSecret string `yaml:"jwt_secret" json:"jwt_secret"`

	// TokenTTL is the lifetime of issued API tokens in seconds
	TokenTTL int `yaml:"token_ttl" json:"token_ttl"`

	// PageSize is the number of rows per list page
	PageSize int `yaml:"page_size" json:"page_size"`

	// DefaultLanguage is used when Accept-Language matches no supported language
	DefaultLanguage string `yaml:"default_language" json:"default_language"`

	// CacheBackend selects the authorization cache (none, memory, redis)
	CacheBackend string `yaml:"cache_backend" json:"cache_backend"`

	// CacheTTL is the authorization cache TTL in seconds; 0 disables caching
	CacheTTL int `yaml:"cache_ttl" json:"cache_ttl"`

	// RedisAddress is the host:port of the Redis server used by the redis cache backend
	RedisAddress string `yaml:"redis_address" json:"redis_address"`

	// Authenticators is a list of enabled authenticators
	Authenticators []string `yaml:"authenticators" json:"authenticators"`

	// AuditEnabled enables the audit log
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// fileConfig mirrors Config with pointers so that explicit zero values in the
// file are told apart from missing keys.
type fileConfig struct {
	BindAddress     *string  `yaml:"bind_address"`
	Port            *int     `yaml:"port"`
	DatabaseURL     *string  `yaml:"database_url"`
	LogLevel        *string  `yaml:"log_level"`
	SessionSecret   *string  `yaml:"session_secret"`
	SecureCookies   *bool    `yaml:"secure_cookies"`
	JWTSecret       *string  `yaml:"jwt_secret"`
	TokenTTL        *int     `yaml:"token_ttl"`
	PageSize        *int     `yaml:"page_size"`
	DefaultLanguage *string  `yaml:"default_language"`
	CacheBackend    *string  `yaml:"cache_backend"`
	CacheTTL        *int     `yaml:"cache_ttl"`
	RedisAddress    *string  `yaml:"redis_address"`
	Authenticators  []string `yaml:"authenticators"`
	AuditEnabled    *bool    `yaml:"audit_enabled"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		BindAddress:     "0.0.0.0",
		Port:            8000,
		LogLevel:        "info",
		TokenTTL:        28800,
		PageSize:        25,
		DefaultLanguage: "es",
		CacheBackend:    "memory",
		CacheTTL:        60,
		RedisAddress:    "localhost:6379",
		Authenticators:  []string{"password", "jwt"},
		AuditEnabled:    true,
		sources:         make(map[string]string),
	}
}

// Default returns the built-in defaults without reading file or environment
func Default() *Config {
	cfg := newDefault()
	for _, name := range attributeNames() {
		cfg.sources[name] = "default"
	}
	return cfg
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*Config, error) {
	config := Default()

	configPath := os.Getenv("RBAC_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&file)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"bind_address", "port", "database_url", "log_level",
		"session_secret", "secure_cookies", "jwt_secret", "token_ttl",
		"page_size", "default_language", "cache_backend", "cache_ttl",
		"redis_address", "authenticators", "audit_enabled",
	}
}

func (c *Config) applyFileConfig(file *fileConfig) {
	setString := func(name string, dst *string, v *string) {
		if v != nil {
			*dst = *v
			c.sources[name] = "file"
		}
	}
	setInt := func(name string, dst *int, v *int) {
		if v != nil {
			*dst = *v
			c.sources[name] = "file"
		}
	}
	setBool := func(name string, dst *bool, v *bool) {
		if v != nil {
			*dst = *v
			c.sources[name] = "file"
		}
	}

	setString("bind_address", &c.BindAddress, file.BindAddress)
	setInt("port", &c.Port, file.Port)
	setString("database_url", &c.DatabaseURL, file.DatabaseURL)
	setString("log_level", &c.LogLevel, file.LogLevel)
	setString("session_secret", &c.SessionSecret, file.SessionSecret)
	setBool("secure_cookies", &c.SecureCookies, file.SecureCookies)
	setString("jwt_secret", &c.JWTSecret, file.JWTSecret)
	setInt("token_ttl", &c.TokenTTL, file.TokenTTL)
	setInt("page_size", &c.PageSize, file.PageSize)
	setString("default_language", &c.DefaultLanguage, file.DefaultLanguage)
	setString("cache_backend", &c.CacheBackend, file.CacheBackend)
	setInt("cache_ttl", &c.CacheTTL, file.CacheTTL)
	setString("redis_address", &c.RedisAddress, file.RedisAddress)
	setBool("audit_enabled", &c.AuditEnabled, file.AuditEnabled)
	if len(file.Authenticators) > 0 {
		c.Authenticators = file.Authenticators
		c.sources["authenticators"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	envString := func(name, key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
			c.sources[name] = "environment"
		}
	}
	envInt := func(name, key string, dst *int) {
		if val := os.Getenv(key); val != "" {
			if i, err := strconv.Atoi(val); err == nil {
				*dst = i
				c.sources[name] = "environment"
			}
		}
	}
	envBool := func(name, key string, dst *bool) {
		if val := os.Getenv(key); val != "" {
			*dst = val == "true" || val == "1"
			c.sources[name] = "environment"
		}
	}

	envString("bind_address", "BIND_ADDRESS", &c.BindAddress)
	envInt("port", "PORT", &c.Port)
	envString("database_url", "DATABASE_URL", &c.DatabaseURL)
	envString("log_level", "RBAC_LOG_LEVEL", &c.LogLevel)
	envString("session_secret", "RBAC_SESSION_SECRET", &c.SessionSecret)
	envBool("secure_cookies", "RBAC_SECURE_COOKIES", &c.SecureCookies)
	envString("jwt_secret", "RBAC_JWT_SECRET", &c.JWTSecret)
	envInt("token_ttl", "RBAC_TOKEN_TTL", &c.TokenTTL)
	envInt("page_size", "RBAC_PAGE_SIZE", &c.PageSize)
	envString("default_language", "RBAC_DEFAULT_LANGUAGE", &c.DefaultLanguage)
	envString("cache_backend", "RBAC_CACHE_BACKEND", &c.CacheBackend)
	envInt("cache_ttl", "RBAC_CACHE_TTL", &c.CacheTTL)
	envString("redis_address", "RBAC_REDIS_ADDRESS", &c.RedisAddress)
	envBool("audit_enabled", "RBAC_AUDIT_ENABLED", &c.AuditEnabled)
	if val := os.Getenv("RBAC_AUTHENTICATORS"); val != "" {
		c.Authenticators = splitAndTrim(val)
		c.sources["authenticators"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// Address returns the host:port the server listens on
func (c *Config) Address() string {
	return c.BindAddress + ":" + strconv.Itoa(c.Port)
}

// TokenLifetime returns the API token TTL as a duration
func (c *Config) TokenLifetime() time.Duration {
	return time.Duration(c.TokenTTL) * time.Second
}

// CacheLifetime returns the authorization cache TTL as a duration
func (c *Config) CacheLifetime() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// IsAuthenticatorEnabled checks if an authenticator is enabled
func (c *Config) IsAuthenticatorEnabled(authenticator string) bool {
	return contains(c.Authenticators, authenticator)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("invalid page_size: %d", c.PageSize)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("invalid token_ttl: %d", c.TokenTTL)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("invalid cache_ttl: %d", c.CacheTTL)
	}
	if !contains(ValidCacheBackends, c.CacheBackend) {
		return fmt.Errorf("invalid cache_backend: %s", c.CacheBackend)
	}
	if !contains(SupportedLanguages, c.DefaultLanguage) {
		return fmt.Errorf("unsupported default_language: %s", c.DefaultLanguage)
	}
	for _, a := range c.Authenticators {
		if !contains(ValidAuthenticators, a) {
			return fmt.Errorf("invalid authenticator type: %s", a)
		}
	}
	return nil
}

// MinSessionSecretLength is the minimum size of the session signing key
const MinSessionSecretLength = 32

// ValidateSecrets checks the secrets the HTTP server needs
func (c *Config) ValidateSecrets() error {
	if len(c.SessionSecret) < MinSessionSecretLength {
		return fmt.Errorf("session_secret must be at least %d bytes", MinSessionSecretLength)
	}
	if c.IsAuthenticatorEnabled("jwt") && c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required when the jwt authenticator is enabled")
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources.
// Secrets are masked.
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "database_url", Value: redactURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "session_secret", Value: mask(c.SessionSecret), Source: c.Source("session_secret")},
		{Name: "secure_cookies", Value: strconv.FormatBool(c.SecureCookies), Source: c.Source("secure_cookies")},
		{Name: "jwt_secret", Value: mask(c.JWTSecret), Source: c.Source("jwt_secret")},
		{Name: "token_ttl", Value: strconv.Itoa(c.TokenTTL), Source: c.Source("token_ttl")},
		{Name: "page_size", Value: strconv.Itoa(c.PageSize), Source: c.Source("page_size")},
		{Name: "default_language", Value: c.DefaultLanguage, Source: c.Source("default_language")},
		{Name: "cache_backend", Value: c.CacheBackend, Source: c.Source("cache_backend")},
		{Name: "cache_ttl", Value: strconv.Itoa(c.CacheTTL), Source: c.Source("cache_ttl")},
		{Name: "redis_address", Value: c.RedisAddress, Source: c.Source("redis_address")},
		{Name: "authenticators", Value: strings.Join(c.Authenticators, ","), Source: c.Source("authenticators")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-20s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
