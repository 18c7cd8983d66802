// Package config handles configuration for the minibi server and admin
// tool: defaults, a JSON overlay, an environment overlay and command-line
// flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the minibi server.
//
// DatabaseDriver selects the store: "sqlite" (default, file-backed) or
// "postgres". An empty RedisAddr keeps the access-token deny list in
// memory, and an empty S3Bucket makes exports return CSV inline.
type Config struct {
	HTTPAddr                     string
	DatabaseDriver               string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	CredentialScheme             string
	LogLevel                     string
	LogProduction                bool
	RedisAddr                    string
	RedisPassword                string
	RedisDB                      int
	S3RootUser                   string
	S3RootPassword               string
	S3Bucket                     string
	S3Region                     string
	S3BaseEndpoint               string
	ExportURLValidity            time.Duration
	MaxUploadBytes               int64
}

const DefaultSQLiteDSN = "file:minibi.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// LoadDefaults populates Config with development defaults.
// NOTE: the secret key is insecure and must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = DefaultSQLiteDSN
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 24 * time.Hour
	c.CredentialScheme = "plain"
	c.LogLevel = "info"
	c.LogProduction = false
	c.RedisAddr = ""
	c.RedisPassword = ""
	c.RedisDB = 0
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ExportURLValidity = 15 * time.Minute
	c.MaxUploadBytes = 32 << 20
}

// LoadConfig builds a Config from defaults, then the optional JSON file,
// then MINIBI_* environment variables, then command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
