package server

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmitrijs2005/minibi/internal/server/config"
	"github.com/dmitrijs2005/minibi/internal/server/dbtest"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	c.HTTPAddr = "127.0.0.1:0"
	c.DatabaseDSN = dbtest.DSN(t.TempDir())
	return c
}

func TestNewApp_SQLiteAndMemoryDenyList(t *testing.T) {
	app, err := newApp(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close() })

	assert.Nil(t, app.redis)
	assert.NotNil(t, app.server)
	require.NoError(t, app.db.Ping())
}

func TestNewApp_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testConfig(t)
	c.RedisAddr = mr.Addr()

	app, err := newApp(context.Background(), c, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.db.Close(); _ = app.redis.Close() })

	assert.NotNil(t, app.redis)
}

func TestNewApp_Errors(t *testing.T) {
	t.Run("unknown credential scheme", func(t *testing.T) {
		c := testConfig(t)
		c.CredentialScheme = "rot13"
		_, err := newApp(context.Background(), c, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("store fails", func(t *testing.T) {
		orig := openStore
		t.Cleanup(func() { openStore = orig })
		openStore = func(context.Context, string, string) (*sql.DB, *repomanager.SQLRepositoryManager, error) {
			return nil, nil, errors.New("no disk")
		}
		_, err := newApp(context.Background(), testConfig(t), zap.NewNop())
		assert.ErrorContains(t, err, "db init error")
	})

	t.Run("redis fails", func(t *testing.T) {
		orig := connectRedis
		t.Cleanup(func() { connectRedis = orig })
		connectRedis = func(context.Context, string, string, int) (*redis.Client, error) {
			return nil, errors.New("refused")
		}
		c := testConfig(t)
		c.RedisAddr = "127.0.0.1:1"
		_, err := newApp(context.Background(), c, zap.NewNop())
		assert.ErrorContains(t, err, "redis init error")
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	app, err := newApp(context.Background(), testConfig(t), zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Error(t, app.db.Ping())
}
