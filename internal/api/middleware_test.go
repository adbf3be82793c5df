package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakim/scanreports/internal/config"
	"github.com/hakim/scanreports/internal/storage"
)

func preflight(h http.Handler, origin string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodOptions, "/api/reports/latest", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "Authorization, X-Custom")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCORS_PreflightAllowedOrigin(t *testing.T) {
	h := sampleHandler(t)

	for _, origin := range []string{"http://localhost:3000", "http://localhost:5173"} {
		rec := preflight(h, origin)
		assert.Equal(t, http.StatusOK, rec.Code, origin)
		assert.Equal(t, origin, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, corsAllowMethods, rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Authorization, X-Custom", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "600", rec.Header().Get("Access-Control-Max-Age"))
	}
}

func TestCORS_PreflightDisallowedOrigin(t *testing.T) {
	rec := preflight(sampleHandler(t), "https://evil.example")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Disallowed CORS origin", decode[ErrorResponse](t, rec).Detail)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_SimpleRequest(t *testing.T) {
	h := sampleHandler(t)

	allowed := get(h, "/api/reports/1", "Origin", "http://localhost:3000")
	assert.Equal(t, http.StatusOK, allowed.Code)
	assert.Equal(t, "http://localhost:3000", allowed.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", allowed.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, allowed.Header().Values("Vary"), "Origin")

	other := get(h, "/api/reports/1", "Origin", "http://localhost:8080")
	assert.Equal(t, http.StatusOK, other.Code)
	assert.Empty(t, other.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Wildcard(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := CORS(config.CORSConfig{AllowedOrigins: []string{"*"}})(next)

	rec := preflight(h, "https://anywhere.example")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://anywhere.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestID_GeneratesUUID(t *testing.T) {
	rec := get(sampleHandler(t), "/health")

	id := rec.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(id)
	assert.NoError(t, err, id)
}

func TestRequestID_SanitizesClientValue(t *testing.T) {
	h := sampleHandler(t)

	rec := get(h, "/health", RequestIDHeader, "abc-123<script>")
	assert.Equal(t, "abc-123script", rec.Header().Get(RequestIDHeader))

	long := strings.Repeat("a", 100)
	rec = get(h, "/health", RequestIDHeader, long)
	assert.Len(t, rec.Header().Get(RequestIDHeader), maxRequestIDLength)

	rec = get(h, "/health", RequestIDHeader, "<>!")
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestRequestID_StoredInContext(t *testing.T) {
	var seen string
	h := RequestID(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "trace-42")
	h.ServeHTTP(rec, req)

	assert.Equal(t, "trace-42", seen)
}

func TestAccessLog_WritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	s, err := NewServer(Options{Provider: storage.NewSampleStore(fixedNow), Logger: log})
	require.NoError(t, err)

	get(s.Handler(), "/api/reports/2", RequestIDHeader, "req-7")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	assert.Equal(t, "request", entry["message"])
	assert.Equal(t, "req-7", entry["request_id"])
	assert.Equal(t, "/api/reports/{report_id}", entry["route"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
}

func TestPanicRecovery_LogsStack(t *testing.T) {
	var buf bytes.Buffer
	h := PanicRecovery(zerolog.New(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Contains(t, buf.String(), `"panic":"boom"`)
	assert.Contains(t, buf.String(), "stack")
}

func TestPanicRecovery_UsesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	h := chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), RequestID(zerolog.New(&buf)), PanicRecovery(zerolog.Nop()))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "trace-7")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), `"request_id":"trace-7"`)
	assert.Contains(t, buf.String(), `"panic":"boom"`)
}

func TestPanicRecovery_RepanicsAbortHandler(t *testing.T) {
	h := PanicRecovery(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRouteLabel(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/nowhere", nil)
	assert.Equal(t, "unmatched", routeLabel(r))

	r.Pattern = "GET /api/reports/{report_id}"
	assert.Equal(t, "/api/reports/{report_id}", routeLabel(r))

	r.Pattern = "/legacy/"
	assert.Equal(t, "/legacy/", routeLabel(r))
}

func TestEtagMatches(t *testing.T) {
	assert.False(t, etagMatches("", `"a"`))
	assert.True(t, etagMatches("*", `"a"`))
	assert.True(t, etagMatches(`"b", "a"`, `"a"`))
	assert.True(t, etagMatches(`W/"a"`, `"a"`))
	assert.False(t, etagMatches(`"b"`, `"a"`))
}
