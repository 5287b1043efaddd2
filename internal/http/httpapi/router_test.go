package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"rainbowrise/internal/adapter/memstore"
	"rainbowrise/internal/assistant"
	"rainbowrise/internal/domain"
	"rainbowrise/internal/http/handlers"
	"rainbowrise/internal/ledger"
	"rainbowrise/internal/middleware"
	"rainbowrise/internal/ratelimit"
)

const secret = "test-secret"

type echoAssistant struct{}

func (echoAssistant) Ask(_ context.Context, q string) assistant.Reply {
	return assistant.Reply{Text: "echo: " + q}
}

func newRouter(t *testing.T, staticDir string) http.Handler {
	t.Helper()
	mem := memstore.New()
	store := mem.Repositories()
	u := domain.User{Username: "demo", Email: "demo@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(context.Background(), &u))
	app := &handlers.App{
		Store:     store,
		Ledger:    ledger.NewService(store.Ledger, zerolog.Nop()),
		Assistant: echoAssistant{},
		Logger:    zerolog.Nop(),
	}
	return NewRouter(app, Options{
		Logger:      zerolog.Nop(),
		JWTSecret:   secret,
		AILimiter:   ratelimit.NewMemoryLimiter(2, time.Hour),
		CORSOrigins: []string{"http://localhost:5173"},
		StaticDir:   staticDir,
	})
}

func ask(h http.Handler, ip, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(`{"query":"hello"}`))
	req.RemoteAddr = ip + ":1234"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAssistantFreeLimit(t *testing.T) {
	h := newRouter(t, "")

	require.Equal(t, http.StatusOK, ask(h, "10.0.0.1", "").Code)
	require.Equal(t, http.StatusOK, ask(h, "10.0.0.1", "").Code)
	rr := ask(h, "10.0.0.1", "")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.Contains(t, rr.Body.String(), middleware.FreeLimitMessage)
	require.NotEmpty(t, rr.Header().Get("Retry-After"))

	require.Equal(t, http.StatusOK, ask(h, "10.0.0.2", "").Code)

	token, err := middleware.SignToken(secret, 1, time.Hour, time.Now())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, ask(h, "10.0.0.1", token).Code)
	}

	require.Equal(t, http.StatusUnauthorized, ask(h, "10.0.0.3", "garbage").Code)
}

func TestRoutesAndRequestID(t *testing.T) {
	h := newRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/campaigns", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newRouter(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/api/donations", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "generated"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "generated", "a.png"), []byte("png"), 0o644))
	h := newRouter(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/static/generated/a.png", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "png", rr.Body.String())
}

func TestAssistantLimitIgnoresForwardingHeadersByDefault(t *testing.T) {
	h := newRouter(t, "")

	allowed := 0
	for i := 1; i <= 10; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(`{"query":"hello"}`))
		req.RemoteAddr = "198.51.100.9:1234"
		req.Header.Set("X-Forwarded-For", "10.0.0."+strconv.Itoa(i))
		req.Header.Set("X-Real-IP", "10.0.1."+strconv.Itoa(i))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code == http.StatusOK {
			allowed++
		} else {
			require.Equal(t, http.StatusTooManyRequests, rr.Code)
		}
	}
	require.Equal(t, 2, allowed)
}
