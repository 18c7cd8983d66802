package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/logging"
	"github.com/dmitrijs2005/minibi/internal/server/config"
	"github.com/dmitrijs2005/minibi/internal/server/credentials"
	"github.com/dmitrijs2005/minibi/internal/server/dbtest"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minibi/internal/server/revocation"
)

const csvPayload = "region,amount\nnorth,10\nsouth,20\nnorth,5\n"

type testEnv struct {
	db       *sql.DB
	manager  repomanager.RepositoryManager
	revoked  *revocation.MemoryStore
	identity *IdentityService
	notes    *NoteService
	files    *FileService
	sharing  *SharingService
	gateway  *AccessGateway
}

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		ExportURLValidity:            15 * time.Minute,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t)
	return newTestEnvWith(t, db, repomanager.NewRepositoryManager(dbx.SQLite))
}

func newTestEnvWith(t *testing.T, db *sql.DB, m repomanager.RepositoryManager) *testEnv {
	t.Helper()
	revoked := revocation.NewMemoryStore()
	logger := logging.NewZapLogger(zap.NewNop())
	return &testEnv{
		db:       db,
		manager:  m,
		revoked:  revoked,
		identity: NewIdentityService(db, m, credentials.Plaintext{}, revoked, logger, testConfig()),
		notes:    NewNoteService(db, m),
		files:    NewFileService(db, m),
		sharing:  NewSharingService(db, m),
		gateway:  NewAccessGateway(db, m),
	}
}

func (e *testEnv) register(t *testing.T, username string) int64 {
	t.Helper()
	id, err := e.identity.Register(context.Background(), username, username+"-secret")
	require.NoError(t, err)
	return id
}

func (e *testEnv) saveFile(t *testing.T, ownerID int64, name string) int64 {
	t.Helper()
	f, err := e.files.Save(context.Background(), ownerID, name, []byte(csvPayload))
	require.NoError(t, err)
	return f.ID
}
