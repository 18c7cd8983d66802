package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// EnvConfig maps MINIBI_* variables. It is seeded from the current Config,
// so cleanenv only overwrites the fields whose variables are set.
type EnvConfig struct {
	HTTPAddr                     string        `env:"MINIBI_HTTP_ADDR"`
	DatabaseDriver               string        `env:"MINIBI_DATABASE_DRIVER"`
	DatabaseDSN                  string        `env:"MINIBI_DATABASE_DSN"`
	SecretKey                    string        `env:"MINIBI_SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `env:"MINIBI_ACCESS_TOKEN_VALIDITY"`
	RefreshTokenValidityDuration time.Duration `env:"MINIBI_REFRESH_TOKEN_VALIDITY"`
	CredentialScheme             string        `env:"MINIBI_CREDENTIAL_SCHEME"`
	LogLevel                     string        `env:"MINIBI_LOG_LEVEL"`
	LogProduction                bool          `env:"MINIBI_LOG_PRODUCTION"`
	RedisAddr                    string        `env:"MINIBI_REDIS_ADDR"`
	RedisPassword                string        `env:"MINIBI_REDIS_PASSWORD"`
	RedisDB                      int           `env:"MINIBI_REDIS_DB"`
	S3RootUser                   string        `env:"MINIBI_S3_ROOT_USER"`
	S3RootPassword               string        `env:"MINIBI_S3_ROOT_PASSWORD"`
	S3Bucket                     string        `env:"MINIBI_S3_BUCKET"`
	S3Region                     string        `env:"MINIBI_S3_REGION"`
	S3BaseEndpoint               string        `env:"MINIBI_S3_BASE_ENDPOINT"`
	ExportURLValidity            time.Duration `env:"MINIBI_EXPORT_URL_VALIDITY"`
	MaxUploadBytes               int64         `env:"MINIBI_MAX_UPLOAD_BYTES"`
}

// parseEnv overlays environment variables onto config. Malformed values
// panic, as bad flags do.
func parseEnv(config *Config) {
	e := EnvConfig(*config)
	if err := cleanenv.ReadEnv(&e); err != nil {
		panic(err)
	}
	*config = Config(e)
}
