package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aryan0dhankhar/stockroom/internal/apierror"
	"github.com/aryan0dhankhar/stockroom/internal/security/audit"
	"github.com/aryan0dhankhar/stockroom/internal/security/auth"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func identityEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := auth.IdentityFromContext(r.Context())
		w.Write([]byte(identity))
	})
}

func newTokens(t *testing.T) *auth.TokenManager {
	t.Helper()
	tm, err := auth.NewTokenManager("secret", "stockroom-test", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	return tm
}

func TestJWTMiddleware(t *testing.T) {
	tm := newTokens(t)
	h := JWTMiddleware(tm, discard)(identityEcho())
	token, _ := tm.Issue("alice@example.com")

	cases := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"public login", "/api/auth/login", "", http.StatusOK, ""},
		{"missing header", "/api/items", "", http.StatusUnauthorized, ""},
		{"bad scheme", "/api/items", "Basic abc", http.StatusUnauthorized, ""},
		{"garbage token", "/api/items", "Bearer nope", http.StatusUnauthorized, ""},
		{"valid token", "/api/items", "Bearer " + token, http.StatusOK, "alice@example.com"},
		{"websocket query token", "/ws/alerts?token=" + token, "", http.StatusOK, "alice@example.com"},
		{"query token outside ws", "/api/items?token=" + token, "", http.StatusUnauthorized, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, c.path, nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != c.status {
				t.Fatalf("expected %d, got %d", c.status, rec.Code)
			}
			if c.body != "" && rec.Body.String() != c.body {
				t.Fatalf("expected body %q, got %q", c.body, rec.Body.String())
			}
		})
	}
}

func TestJWTMiddlewareErrorPayload(t *testing.T) {
	h := JWTMiddleware(newTokens(t), discard)(identityEcho())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	var payload apierror.Payload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Status != http.StatusUnauthorized || payload.Message == "" || payload.Timestamp.IsZero() {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

type denyAfter struct{ n int }

func (d *denyAfter) Allow(_ context.Context, _ string) bool {
	d.n--
	return d.n >= 0
}

func TestRateLimitMiddleware(t *testing.T) {
	h := RateLimitMiddleware(&denyAfter{n: 1}, discard)(identityEcho())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("first request should pass, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health checks are never limited, got %d", rec.Code)
	}
}

func TestAuditMiddlewareLogsMutations(t *testing.T) {
	var buf bytes.Buffer
	al := audit.NewLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	h := AuditMiddleware(al)(mux)

	req := httptest.NewRequest(http.MethodDelete, "/api/items/abc", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), "alice@example.com"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	if rec["action"] != "delete" || rec["resource"] != "items" || rec["resource_id"] != "abc" || rec["status"] != "204" {
		t.Fatalf("unexpected audit record: %v", rec)
	}

	buf.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/items/abc", nil))
	if !strings.Contains(buf.String(), "access_denied") {
		t.Fatalf("expected denied record, got %s", buf.String())
	}

	buf.Reset()
	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {})
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if buf.Len() != 0 {
		t.Fatalf("reads must not be audited, got %s", buf.String())
	}
}

func TestRequestIDPropagates(t *testing.T) {
	var seen string
	h := RequestID(discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = audit.RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	req.Header.Set("X-Request-ID", "given-id")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "given-id" || rec.Header().Get("X-Request-ID") != "given-id" {
		t.Fatalf("expected propagated id, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/items", nil))
	if seen == "" || seen != rec.Header().Get("X-Request-ID") {
		t.Fatalf("expected generated id, got %q", seen)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:5173"})(identityEcho())
	req := httptest.NewRequest(http.MethodOptions, "/api/items", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Fatalf("unexpected origin header %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestValidateJSONContentType(t *testing.T) {
	h := ValidateJSONContentType(discard)(identityEcho())
	cases := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{"form body", http.MethodPost, "application/x-www-form-urlencoded", "x=1", http.StatusUnsupportedMediaType},
		{"missing type", http.MethodPut, "", `{"a":1}`, http.StatusUnsupportedMediaType},
		{"charset parameter", http.MethodPost, "application/json; charset=utf-8", `{"a":1}`, http.StatusOK},
		{"merge patch", http.MethodPatch, "application/merge-patch+json", `{"a":1}`, http.StatusOK},
		{"empty body", http.MethodPost, "", "", http.StatusOK},
		{"read", http.MethodGet, "text/plain", "x", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(c.method, "/api/items", strings.NewReader(c.body))
			if c.contentType != "" {
				req.Header.Set("Content-Type", c.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != c.want {
				t.Fatalf("expected %d, got %d", c.want, rec.Code)
			}
		})
	}
}

func TestSanitizeInputs(t *testing.T) {
	h := SanitizeInputs(discard)(identityEcho())
	cases := map[string]int{
		"/api/items?q=%3Cscript%3E":       http.StatusBadRequest,
		"/api/items?name=a%26b":           http.StatusBadRequest,
		"/api/items/../users":             http.StatusBadRequest,
		"/api/items?inventory=shelf-1":    http.StatusOK,
		"/ws/alerts?token=abc.def.ghi-jk": http.StatusOK,
	}
	for target, want := range cases {
		t.Run(target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
			if rec.Code != want {
				t.Fatalf("expected %d, got %d", want, rec.Code)
			}
		})
	}
}
