package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dmitrijs2005/minibi/internal/dbx"
	"github.com/dmitrijs2005/minibi/internal/logging"
	"github.com/dmitrijs2005/minibi/internal/server/config"
	"github.com/dmitrijs2005/minibi/internal/server/credentials"
	"github.com/dmitrijs2005/minibi/internal/server/dbtest"
	"github.com/dmitrijs2005/minibi/internal/server/metrics"
	"github.com/dmitrijs2005/minibi/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/minibi/internal/server/revocation"
	"github.com/dmitrijs2005/minibi/internal/server/services"
)

const salesCSV = "region,amount\nnorth,10\nsouth,20\nnorth,5\n"

type testServer struct {
	router *gin.Engine
	logs   *observer.ObservedLogs
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := dbtest.Open(t)
	m := repomanager.NewRepositoryManager(dbx.SQLite)
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewZapLogger(zap.New(core))

	cfg := &config.Config{
		SecretKey:                    "test-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: time.Hour,
		ExportURLValidity:            time.Minute,
	}

	gateway := services.NewAccessGateway(db, m)
	svc := Services{
		Identity: services.NewIdentityService(db, m, credentials.Plaintext{}, revocation.NewMemoryStore(), logger, cfg),
		Notes:    services.NewNoteService(db, m),
		Files:    services.NewFileService(db, m),
		Sharing:  services.NewSharingService(db, m),
		Gateway:  gateway,
		Export:   services.NewExportService(gateway, cfg),
	}

	s := NewHTTPServer(":0", logger, svc, metrics.New(), cfg.SecretKey, maxUpload)
	return &testServer{router: s.Router(), logs: logs}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) upload(t *testing.T, token, name, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

// signup registers username and returns a fresh access token.
func (ts *testServer) signup(t *testing.T, username string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"username": username, "secret": "pw-" + username})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return ts.loginAs(t, username).AccessToken
}

func (ts *testServer) loginAs(t *testing.T, username string) services.TokenPair {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "secret": "pw-" + username})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data services.TokenPair `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), w.Body.String())
	return e
}

func idOf(t *testing.T, w *httptest.ResponseRecorder) int64 {
	t.Helper()
	var v struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &v))
	return v.ID
}
