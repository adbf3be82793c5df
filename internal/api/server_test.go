package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hakim/scanreports/internal/config"
	"github.com/hakim/scanreports/internal/metrics"
	"github.com/hakim/scanreports/internal/models"
	"github.com/hakim/scanreports/internal/storage"
)

var fixedNow = time.Date(2025, time.June, 1, 12, 30, 45, 0, time.UTC)

func newTestServer(t *testing.T, p storage.Provider) (*Server, http.Handler) {
	t.Helper()
	defaults := config.DefaultConfig()
	s, err := NewServer(Options{
		Provider:   p,
		Logger:     zerolog.Nop(),
		Metrics:    metrics.NewRegistry(),
		CORS:       defaults.CORS,
		Pagination: defaults.Pagination,
		CacheSize:  defaults.Cache.Size,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	return s, s.Handler()
}

func sampleHandler(t *testing.T) http.Handler {
	t.Helper()
	_, h := newTestServer(t, storage.NewSampleStore(fixedNow))
	return h
}

func get(h http.Handler, target string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type failingProvider struct{ err error }

func (p failingProvider) Get(context.Context, int) (storage.Entry, error) {
	return storage.Entry{}, p.err
}

func (p failingProvider) Latest(context.Context) (storage.Entry, error) {
	return storage.Entry{}, p.err
}

func (p failingProvider) List(context.Context, int, int) ([]storage.Entry, int, error) {
	return nil, 0, p.err
}

type panickingProvider struct{ failingProvider }

func (panickingProvider) Get(context.Context, int) (storage.Entry, error) {
	panic("index out of range in secret subsystem")
}

func TestNewServer_RequiresProvider(t *testing.T) {
	_, err := NewServer(Options{Logger: zerolog.Nop()})
	assert.ErrorContains(t, err, "provider is required")
}

func TestRoot(t *testing.T) {
	rec := get(sampleHandler(t), "/")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Vulnerability Scanner API is running", decode[MessageResponse](t, rec).Message)
}

func TestHealth(t *testing.T) {
	rec := get(sampleHandler(t), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)

	ts, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	require.NoError(t, err)
	assert.True(t, ts.Equal(fixedNow))
}

func TestGetReport_Found(t *testing.T) {
	rec := get(sampleHandler(t), "/api/reports/1")
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[models.Report](t, rec)
	assert.Equal(t, "https://example.com", report.URL)
	assert.Len(t, report.Scans, 2)
	assert.Equal(t, "Jun 01, 2025 | 12:30:45 UTC", report.ScanDate)
}

func TestGetReport_NotFound(t *testing.T) {
	h := sampleHandler(t)
	for _, id := range []string{"0", "2", "-1", "999999", "99999999999999999999", "-99999999999999999999"} {
		rec := get(h, "/api/reports/"+id)
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		body := decode[ErrorResponse](t, rec)
		assert.Equal(t, "Report not found", body.Detail)
		assert.Equal(t, http.StatusNotFound, body.Code)
	}
}

func TestGetReport_OutOfRangeIDCountsAsLookupMiss(t *testing.T) {
	s, h := newTestServer(t, storage.NewSampleStore(fixedNow))

	rec := get(h, "/api/reports/99999999999999999999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(
		s.metrics.ReportLookupsTotal.WithLabelValues("get", metrics.LookupNotFound)))
}

func TestGetReport_NonIntegerID(t *testing.T) {
	rec := get(sampleHandler(t), "/api/reports/abc")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Detail, "report_id must be an integer")
}

func TestLatestAndByID_ShareScansPayload(t *testing.T) {
	h := sampleHandler(t)
	latest := get(h, "/api/reports/latest")
	byID := get(h, "/api/reports/1")
	require.Equal(t, http.StatusOK, latest.Code)
	require.Equal(t, http.StatusOK, byID.Code)

	type scansOnly struct {
		Scans json.RawMessage `json:"scans"`
	}
	a := decode[scansOnly](t, latest)
	b := decode[scansOnly](t, byID)
	assert.Equal(t, string(a.Scans), string(b.Scans))
	assert.Equal(t, latest.Body.String(), byID.Body.String())
}

func TestLatest_EmptyStore(t *testing.T) {
	empty, err := storage.NewMemoryStore(nil)
	require.NoError(t, err)
	_, h := newTestServer(t, empty)

	rec := get(h, "/api/reports/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Report not found", decode[ErrorResponse](t, rec).Detail)
}

func TestListReports_SampleData(t *testing.T) {
	h := sampleHandler(t)

	tests := []struct {
		target string
		want   int
	}{
		{"/api/reports", 1},
		{"/api/reports?skip=0&limit=10", 1},
		{"/api/reports?limit=500", 1},
		{"/api/reports?limit=0", 1},
		{"/api/reports?skip=-4", 1},
		{"/api/reports?skip=1", 0},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := get(h, tt.target)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "1", rec.Header().Get(TotalCountHeader))

			reports := decode[[]models.Report](t, rec)
			assert.Len(t, reports, tt.want)
			if tt.want > 0 {
				assert.Equal(t, "https://example.com", reports[0].URL)
			}
		})
	}
}

func TestListReports_EmptyPageIsArray(t *testing.T) {
	rec := get(sampleHandler(t), "/api/reports?skip=5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListReports_InvalidParams(t *testing.T) {
	h := sampleHandler(t)
	for _, target := range []string{"/api/reports?skip=abc", "/api/reports?limit=1.5"} {
		rec := get(h, target)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, target)
		assert.Contains(t, decode[ErrorResponse](t, rec).Detail, "must be an integer")
	}
}

func TestListReports_OverflowingParamsAreClamped(t *testing.T) {
	h := sampleHandler(t)

	rec := get(h, "/api/reports?skip=99999999999999999999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = get(h, "/api/reports?skip=-99999999999999999999&limit=99999999999999999999")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Report](t, rec), 1)
}

func TestListReports_Paginates(t *testing.T) {
	entries := make([]storage.Entry, 25)
	for i := range entries {
		entries[i] = storage.Entry{Report: models.Report{URL: "https://target" + strconv.Itoa(i+1) + ".example"}}
	}
	store, err := storage.NewMemoryStore(entries)
	require.NoError(t, err)
	_, h := newTestServer(t, store)

	rec := get(h, "/api/reports")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "25", rec.Header().Get(TotalCountHeader))
	page := decode[[]models.Report](t, rec)
	require.Len(t, page, 10)
	assert.Equal(t, "https://target25.example", page[0].URL)

	rec = get(h, "/api/reports?skip=20&limit=10")
	page = decode[[]models.Report](t, rec)
	require.Len(t, page, 5)
	assert.Equal(t, "https://target5.example", page[0].URL)
	assert.Equal(t, "https://target1.example", page[4].URL)

	latest := decode[models.Report](t, get(h, "/api/reports/latest"))
	assert.Equal(t, "https://target25.example", latest.URL)
}

func TestProviderFailure_HidesErrorDetails(t *testing.T) {
	_, h := newTestServer(t, failingProvider{err: errors.New("dial tcp 10.0.0.5:5432: connection refused")})

	for _, target := range []string{"/api/reports/1", "/api/reports/latest", "/api/reports"} {
		rec := get(h, target)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, target)
		body := decode[ErrorResponse](t, rec)
		assert.Equal(t, "Internal server error", body.Detail)
		assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	}
}

func TestProviderCancelled(t *testing.T) {
	_, h := newTestServer(t, failingProvider{err: context.Canceled})

	rec := get(h, "/api/reports/latest")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPanicIsRecovered(t *testing.T) {
	_, h := newTestServer(t, panickingProvider{})

	rec := get(h, "/api/reports/1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decode[ErrorResponse](t, rec).Detail)
	assert.NotContains(t, rec.Body.String(), "secret subsystem")
}

func TestPanicIsRecordedInMetrics(t *testing.T) {
	s, h := newTestServer(t, panickingProvider{})

	rec := get(h, "/api/reports/1")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(
		s.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/reports/{report_id}", "500")))
	assert.Equal(t, 1, testutil.CollectAndCount(s.metrics.HTTPRequestDuration))
	assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.HTTPRequestsInFlight))
}

func TestPanicIsLoggedWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	s, err := NewServer(Options{Provider: panickingProvider{}, Logger: zerolog.New(&buf)})
	require.NoError(t, err)

	get(s.Handler(), "/api/reports/1", RequestIDHeader, "req-9")

	var entries []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(line, &entry), string(line))
		entries = append(entries, entry)
	}
	require.Len(t, entries, 2)

	assert.Equal(t, "panic in HTTP handler", entries[0]["message"])
	assert.Equal(t, "req-9", entries[0]["request_id"])

	assert.Equal(t, "request", entries[1]["message"])
	assert.Equal(t, "req-9", entries[1]["request_id"])
	assert.Equal(t, float64(http.StatusInternalServerError), entries[1]["status"])
}

func TestReportETag(t *testing.T) {
	s, h := newTestServer(t, storage.NewSampleStore(fixedNow))

	first := get(h, "/api/reports/1")
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	cached := get(h, "/api/reports/1", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, cached.Code)
	assert.Empty(t, cached.Body.String())
	assert.Equal(t, etag, cached.Header().Get("ETag"))

	weak := get(h, "/api/reports/latest", "If-None-Match", `"other", W/`+etag)
	assert.Equal(t, http.StatusNotModified, weak.Code)

	stale := get(h, "/api/reports/1", "If-None-Match", `"stale"`)
	assert.Equal(t, http.StatusOK, stale.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.CacheMissesTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(s.metrics.CacheHitsTotal))
}

func TestRepeatedRequestsAreIdentical(t *testing.T) {
	h := sampleHandler(t)
	for _, target := range []string{"/", "/health", "/api/reports", "/api/reports/latest", "/api/reports/1", "/api/reports/3"} {
		first := get(h, target)
		for i := 0; i < 3; i++ {
			again := get(h, target)
			assert.Equal(t, first.Code, again.Code, target)
			assert.Equal(t, first.Body.String(), again.Body.String(), target)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/reports", nil)
	rec := httptest.NewRecorder()
	sampleHandler(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, h := newTestServer(t, storage.NewSampleStore(fixedNow))

	get(h, "/api/reports/1")
	get(h, "/api/reports/2")
	get(h, "/api/reports/2")

	assert.Equal(t, 1.0, testutil.ToFloat64(
		s.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/reports/{report_id}", "200")))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		s.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/reports/{report_id}", "404")))
	assert.Equal(t, 2.0, testutil.ToFloat64(
		s.metrics.ReportLookupsTotal.WithLabelValues("get", metrics.LookupNotFound)))

	rec := get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `scanreports_http_requests_total{method="GET",route="/api/reports/{report_id}",status="404"} 2`)
}
