package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/skystoreemd-lab/Monte-ai/internal/adapters/gemini"
	"github.com/skystoreemd-lab/Monte-ai/internal/adapters/storage/memory"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/domain"
	"github.com/skystoreemd-lab/Monte-ai/internal/core/services"
)

type testEnv struct {
	handler       http.Handler
	upstreamCalls *atomic.Int32
	staticDir     string
}

func newTestEnv(t *testing.T, apiKey string, upstream http.HandlerFunc) testEnv {
	t.Helper()
	return newTestEnvWithProxy(t, apiKey, upstream, false)
}

func newTestEnvWithProxy(t *testing.T, apiKey string, upstream http.HandlerFunc, trustProxy bool) testEnv {
	t.Helper()

	calls := &atomic.Int32{}
	if upstream == nil {
		upstream = func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Hi there"}]}}]}`))
		}
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		upstream(w, r)
	}))
	t.Cleanup(srv.Close)

	limiter, err := services.NewRateLimiterService(memory.New(), domain.RateLimitRule{Requests: 10, Window: time.Minute})
	if err != nil {
		t.Fatalf("limiter: %v", err)
	}
	chat, err := services.NewChatService(
		services.NewContentFilter(domain.DefaultWordLists()),
		gemini.NewClient(gemini.Config{APIKey: apiKey, BaseURL: srv.URL}),
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>monte</html>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('monte')"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatalf("mkdir assets: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "logo.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write nested asset: %v", err)
	}

	return testEnv{
		handler: NewRouter(RouterConfig{
			Limiter:    limiter,
			Chat:       chat,
			Log:        zap.NewNop(),
			StaticDir:  dir,
			TrustProxy: trustProxy,
			Now:        func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 123_000_000, time.UTC) },
		}),
		upstreamCalls: calls,
		staticDir:     dir,
	}
}

func postChat(h http.Handler, body, ip string) *httptest.ResponseRecorder {
	return postChatForwarded(h, body, ip, "")
}

func postChatForwarded(h http.Handler, body, ip, forwardedFor string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	req.RemoteAddr = ip + ":5555"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) domain.ErrorResponse {
	t.Helper()
	var resp domain.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp
}

func TestChat_CleanMessageReturnsReply(t *testing.T) {
	env := newTestEnv(t, "secret", nil)

	w := postChat(env.handler, `{"message":"hello, how are you?"}`, "10.0.0.1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp domain.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Reply != "Hi there" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if env.upstreamCalls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", env.upstreamCalls.Load())
	}
}

func TestChat_BannedWordIsFiltered(t *testing.T) {
	env := newTestEnv(t, "secret", nil)

	w := postChat(env.handler, `{"message":"fuck this"}`, "10.0.0.1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := decodeError(t, w)
	if resp.Code != "CONTENT_FILTERED" {
		t.Fatalf("expected CONTENT_FILTERED, got %q", resp.Code)
	}
	if !strings.Contains(resp.Error, "fuck") {
		t.Fatalf("expected reason to name the banned word, got %q", resp.Error)
	}
	if env.upstreamCalls.Load() != 0 {
		t.Fatalf("expected no upstream calls, got %d", env.upstreamCalls.Load())
	}
}

func TestChat_InvalidPayloads(t *testing.T) {
	env := newTestEnv(t, "secret", nil)

	for _, body := range []string{
		`{"message":""}`,
		`{"message":"   "}`,
		`{"message":42}`,
		`{"message":null}`,
		`{"message":["hi"]}`,
		`{}`,
		`not json`,
	} {
		w := postChat(env.handler, body, "10.0.0.2")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, w.Code)
		}
		if resp := decodeError(t, w); resp.Code != "INVALID_MESSAGE" {
			t.Fatalf("expected INVALID_MESSAGE for %s, got %q", body, resp.Code)
		}
	}
	if env.upstreamCalls.Load() != 0 {
		t.Fatalf("expected no upstream calls, got %d", env.upstreamCalls.Load())
	}
}

func TestChat_EleventhRequestIsRateLimited(t *testing.T) {
	env := newTestEnv(t, "secret", nil)

	for i := 0; i < 10; i++ {
		if w := postChat(env.handler, `{"message":"hello"}`, "10.0.0.3"); w.Code != http.StatusOK {
			t.Fatalf("expected request %d to succeed, got %d", i+1, w.Code)
		}
	}

	w := postChat(env.handler, `{"message":"hello"}`, "10.0.0.3")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "RATE_LIMIT_EXCEEDED" {
		t.Fatalf("expected RATE_LIMIT_EXCEEDED, got %q", resp.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if env.upstreamCalls.Load() != 10 {
		t.Fatalf("expected 10 upstream calls, got %d", env.upstreamCalls.Load())
	}

	if w := postChat(env.handler, `{"message":"hello"}`, "10.0.0.4"); w.Code != http.StatusOK {
		t.Fatalf("expected another client to be admitted, got %d", w.Code)
	}
}

func TestChat_ForwardedHeadersDoNotBypassRateLimit(t *testing.T) {
	env := newTestEnv(t, "secret", nil)

	admitted := 0
	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		last = postChatForwarded(env.handler, `{"message":"hello"}`, "198.51.100.1", fmt.Sprintf("203.0.113.%d", i+1))
		if last.Code == http.StatusOK {
			admitted++
		}
	}

	if admitted != 10 {
		t.Fatalf("expected 10 admitted requests from one socket address, got %d", admitted)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 11th request to be rate limited, got %d", last.Code)
	}
}

func TestChat_TrustProxyKeysOnForwardedAddress(t *testing.T) {
	env := newTestEnvWithProxy(t, "secret", nil, true)

	for i := 0; i < 10; i++ {
		postChatForwarded(env.handler, `{"message":"hello"}`, "10.0.0.1", "203.0.113.1")
	}
	if w := postChatForwarded(env.handler, `{"message":"hello"}`, "10.0.0.1", "203.0.113.1"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected forwarded client to be limited, got %d", w.Code)
	}
	if w := postChatForwarded(env.handler, `{"message":"hello"}`, "10.0.0.1", "203.0.113.2"); w.Code != http.StatusOK {
		t.Fatalf("expected a different forwarded client behind the same proxy to be admitted, got %d", w.Code)
	}
}

func TestChat_RateLimitRunsBeforeValidation(t *testing.T) {
	env := newTestEnv(t, "secret", nil)

	for i := 0; i < 10; i++ {
		postChat(env.handler, `{"message":""}`, "10.0.0.5")
	}
	w := postChat(env.handler, `{"message":""}`, "10.0.0.5")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 before validation, got %d", w.Code)
	}
}

func TestChat_MissingAPIKey(t *testing.T) {
	env := newTestEnv(t, "", nil)

	w := postChat(env.handler, `{"message":"hello"}`, "10.0.0.6")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "MISSING_API_KEY" {
		t.Fatalf("expected MISSING_API_KEY, got %q", resp.Code)
	}
	if env.upstreamCalls.Load() != 0 {
		t.Fatalf("expected no upstream calls, got %d", env.upstreamCalls.Load())
	}
}

func TestChat_UpstreamErrorsAreMapped(t *testing.T) {
	cases := []struct {
		name       string
		upstream   http.HandlerFunc
		wantStatus int
		wantCode   string
	}{
		{"upstream 429", statusHandler(http.StatusTooManyRequests), http.StatusTooManyRequests, "API_RATE_LIMIT"},
		{"upstream 401", statusHandler(http.StatusUnauthorized), http.StatusInternalServerError, "INVALID_API_KEY"},
		{"upstream 503", statusHandler(http.StatusServiceUnavailable), http.StatusInternalServerError, "SERVER_ERROR"},
		{"no candidates", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"candidates":[]}`))
		}, http.StatusInternalServerError, "GENERATION_FAILED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, "secret", tc.upstream)

			w := postChat(env.handler, `{"message":"hello"}`, "10.0.0.7")
			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}
			if resp := decodeError(t, w); resp.Code != tc.wantCode {
				t.Fatalf("expected %s, got %q", tc.wantCode, resp.Code)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp domain.HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Message == "" {
		t.Fatalf("unexpected health response %+v", resp)
	}
	if resp.Timestamp != "2024-05-06T07:08:09.123Z" {
		t.Fatalf("unexpected timestamp %q", resp.Timestamp)
	}
}

func TestHealth_IsNotRateLimited(t *testing.T) {
	env := newTestEnv(t, "", nil)

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 on call %d, got %d", i+1, w.Code)
		}
	}
}

func TestStaticFrontEnd(t *testing.T) {
	env := newTestEnv(t, "", nil)

	for path, want := range map[string]string{
		"/":                "<html>monte</html>",
		"/app.js":          "console.log('monte')",
		"/assets/logo.svg": "<svg/>",
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", path, w.Code)
		}
		if got := w.Body.String(); got != want {
			t.Fatalf("unexpected body for %s: %q", path, got)
		}
	}
}

func TestStaticFrontEnd_NoDirectoryListing(t *testing.T) {
	env := newTestEnv(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/assets/", nil)
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a directory, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "logo.svg") {
		t.Fatalf("expected directory contents not to be listed, got %q", w.Body.String())
	}
}

func statusHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}
