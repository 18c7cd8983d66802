package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/minibi/internal/common"
	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/server/auth"
	"github.com/dmitrijs2005/minibi/internal/server/dbtest"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/files"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
)

func TestRegister_DuplicateKeepsFirstSecret(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	id, err := e.identity.Register(ctx, "alice", "first")
	require.NoError(t, err)

	_, err = e.identity.Register(ctx, "alice", "second")
	assert.ErrorIs(t, err, common.ErrAlreadyExists)

	got, ok, err := e.identity.Authenticate(ctx, "alice", "first")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok, err = e.identity.Authenticate(ctx, "alice", "second")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegister_Validation(t *testing.T) {
	e := newTestEnv(t)

	_, err := e.identity.Register(context.Background(), "  ", "x")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice")

	tests := []struct {
		name     string
		username string
		secret   string
		wantOK   bool
	}{
		{"match", "alice", "alice-secret", true},
		{"wrong secret", "alice", "nope", false},
		{"case-sensitive username", "Alice", "alice-secret", false},
		{"unknown user", "bob", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := e.identity.Authenticate(ctx, tt.username, tt.secret)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestLoginRefreshLogout(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	id := e.register(t, "alice")

	_, err := e.identity.Login(ctx, "alice", "bad")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	pair, err := e.identity.Login(ctx, "alice", "alice-secret")
	require.NoError(t, err)

	claims, err := auth.ParseToken(pair.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, id, claims.AccountID)

	rotated, err := e.identity.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	_, err = e.identity.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	require.NoError(t, e.identity.Logout(ctx, claims.AccountID, claims.ID, claims.ExpiresAt.Time, rotated.RefreshToken))

	revoked, err := e.identity.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = e.identity.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestLogout_KeepsOtherAccountsRefreshToken(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	e.register(t, "bob")

	bobPair, err := e.identity.Login(ctx, "bob", "bob-secret")
	require.NoError(t, err)

	require.NoError(t, e.identity.Logout(ctx, alice, "", time.Time{}, bobPair.RefreshToken))

	_, err = e.identity.Refresh(ctx, bobPair.RefreshToken)
	require.NoError(t, err)
}

func TestRefresh_Expired(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.register(t, "alice")

	pair, err := e.identity.Login(ctx, "alice", "alice-secret")
	require.NoError(t, err)

	e.identity.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = e.identity.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestUsernames(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	for _, n := range []string{"carol", "alice", "bob"} {
		e.register(t, n)
	}

	names, err := e.identity.ListUsernames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)

	ok, err := e.identity.Exists(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.identity.Exists(ctx, "dave")
	require.NoError(t, err)
	assert.False(t, ok)

	id, err := e.identity.LookupID(ctx, "carol")
	require.NoError(t, err)
	name, err := e.identity.ResolveUsername(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "carol", name)

	_, err = e.identity.LookupID(ctx, "dave")
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = e.identity.ResolveUsername(ctx, 999)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDeleteAccount_Cascade(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	a := e.register(t, "a")
	b := e.register(t, "b")
	c := e.register(t, "c")

	fileA := e.saveFile(t, a, "data.csv")
	fileB := e.saveFile(t, b, "own.csv")
	noteA, err := e.notes.Create(ctx, a, "a's note")
	require.NoError(t, err)
	noteB, err := e.notes.Create(ctx, b, "b's note")
	require.NoError(t, err)

	require.NoError(t, e.sharing.ShareFile(ctx, fileA, a, "b"))
	require.NoError(t, e.sharing.ShareNote(ctx, noteA.ID, a, "c"))
	require.NoError(t, e.sharing.ShareFile(ctx, fileB, b, "a"))
	require.NoError(t, e.sharing.ShareNote(ctx, noteB.ID, b, "c"))
	_, err = e.identity.Login(ctx, "a", "a-secret")
	require.NoError(t, err)

	_, ok, err := e.gateway.ReadFileForAccount(ctx, fileA, b)
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = e.gateway.ReadFileForAccount(ctx, fileA, c)
	require.NoError(t, err)
	require.False(t, ok)

	// a deletes a shared note and a shared file of its own first
	tmpNote, err := e.notes.Create(ctx, a, "short-lived")
	require.NoError(t, err)
	require.NoError(t, e.sharing.ShareNote(ctx, tmpNote.ID, a, "b"))
	tmpFile := e.saveFile(t, a, "tmp.csv")
	require.NoError(t, e.sharing.ShareFile(ctx, tmpFile, a, "c"))

	deleted, err := e.notes.Delete(ctx, tmpNote.ID, a)
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = e.files.Delete(ctx, tmpFile, a)
	require.NoError(t, err)
	require.True(t, deleted)
	assert.Equal(t, 0, dbtest.Count(t, e.db, "note_grants", "note_id = ?", tmpNote.ID))
	assert.Equal(t, 0, dbtest.Count(t, e.db, "file_grants", "file_id = ?", tmpFile))

	require.NoError(t, e.identity.DeleteAccount(ctx, a))

	assert.Equal(t, 0, dbtest.Count(t, e.db, "accounts", "id = ?", a))
	assert.Equal(t, 0, dbtest.Count(t, e.db, "files", "account_id = ?", a))
	assert.Equal(t, 0, dbtest.Count(t, e.db, "notes", "account_id = ?", a))
	assert.Equal(t, 0, dbtest.Count(t, e.db, "refresh_tokens", "account_id = ?", a))
	assert.Equal(t, 0, dbtest.Count(t, e.db, "file_grants", "file_id = ? OR target_account_id = ?", fileA, a))
	assert.Equal(t, 0, dbtest.Count(t, e.db, "note_grants", "note_id = ?", noteA.ID))

	active, err := e.identity.Active(ctx, a)
	require.NoError(t, err)
	assert.False(t, active)
	active, err = e.identity.Active(ctx, b)
	require.NoError(t, err)
	assert.True(t, active)

	// b's artifacts and the grant b gave to c survive
	assert.Equal(t, 1, dbtest.Count(t, e.db, "files", "id = ?", fileB))
	assert.Equal(t, 1, dbtest.Count(t, e.db, "notes", "id = ?", noteB.ID))
	assert.Equal(t, 1, dbtest.Count(t, e.db, "note_grants", "note_id = ? AND target_account_id = ?", noteB.ID, c))

	assert.Equal(t, 2, dbtest.Count(t, e.db, "accounts", "id IN (?, ?)", b, c))
	assert.Equal(t, 0, dbtest.Count(t, e.db, "file_grants", "file_id = ? AND target_account_id = ?", fileB, a))

	shared, err := e.sharing.ListSharedFilesFor(ctx, b)
	require.NoError(t, err)
	assert.Empty(t, shared)

	for _, reader := range []int64{b, c} {
		_, ok, err = e.gateway.ReadFileForAccount(ctx, fileA, reader)
		require.NoError(t, err)
		assert.False(t, ok)
	}
	sharedNotes, err := e.sharing.ListSharedNotesFor(ctx, c)
	require.NoError(t, err)
	require.Len(t, sharedNotes, 1)
	assert.Equal(t, noteB.ID, sharedNotes[0].NoteID)
}

func TestDeleteAccount_Unknown(t *testing.T) {
	e := newTestEnv(t)
	err := e.identity.DeleteAccount(context.Background(), 42)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

type failingFiles struct {
	files.Repository
}

func (failingFiles) DeleteByAccount(context.Context, int64) (int64, error) {
	return 0, errors.New("disk on fire")
}

type failingFilesManager struct {
	repomanager.RepositoryManager
}

func (m failingFilesManager) Files(db dbx.DBTX) files.Repository {
	return failingFiles{m.RepositoryManager.Files(db)}
}

func TestDeleteAccount_RollsBackOnFailure(t *testing.T) {
	db := dbtest.Open(t)
	base := repomanager.NewRepositoryManager(dbx.SQLite)
	seed := newTestEnvWith(t, db, base)
	ctx := context.Background()

	a := seed.register(t, "a")
	seed.register(t, "b")
	fileA := seed.saveFile(t, a, "data.csv")
	require.NoError(t, seed.sharing.ShareFile(ctx, fileA, a, "b"))

	broken := newTestEnvWith(t, db, failingFilesManager{base})
	err := broken.identity.DeleteAccount(ctx, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStorage)

	// grants were deleted before the failure and must be back
	assert.Equal(t, 1, dbtest.Count(t, db, "file_grants", "file_id = ?", fileA))
	assert.Equal(t, 1, dbtest.Count(t, db, "files", "id = ?", fileA))
	assert.Equal(t, 1, dbtest.Count(t, db, "accounts", "id = ?", a))
}
