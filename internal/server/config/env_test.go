package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Run("unset variables keep current values", func(t *testing.T) {
		var c Config
		c.LoadDefaults()
		want := c

		parseEnv(&c)
		if diff := cmp.Diff(want, c); diff != "" {
			t.Errorf("parseEnv() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("set variables override", func(t *testing.T) {
		t.Setenv("MINIBI_DATABASE_DRIVER", "postgres")
		t.Setenv("MINIBI_DATABASE_DSN", "postgres://u:p@db:5432/minibi")
		t.Setenv("MINIBI_ACCESS_TOKEN_VALIDITY", "5m")
		t.Setenv("MINIBI_LOG_PRODUCTION", "true")
		t.Setenv("MINIBI_REDIS_ADDR", "redis:6379")
		t.Setenv("MINIBI_REDIS_DB", "2")
		t.Setenv("MINIBI_MAX_UPLOAD_BYTES", "1024")

		var c Config
		c.LoadDefaults()
		want := c
		want.DatabaseDriver = "postgres"
		want.DatabaseDSN = "postgres://u:p@db:5432/minibi"
		want.AccessTokenValidityDuration = 5 * time.Minute
		want.LogProduction = true
		want.RedisAddr = "redis:6379"
		want.RedisDB = 2
		want.MaxUploadBytes = 1024

		parseEnv(&c)
		if diff := cmp.Diff(want, c); diff != "" {
			t.Errorf("parseEnv() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("malformed value panics", func(t *testing.T) {
		t.Setenv("MINIBI_REDIS_DB", "two")
		var c Config
		require.Panics(t, func() { parseEnv(&c) })
	})
}
