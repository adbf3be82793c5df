package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hakim/scanreports/internal/metrics"
	"github.com/hakim/scanreports/internal/storage"
)

// encodedReport is a report body ready to be written with its entity tag
type encodedReport struct {
	body []byte
	etag string
}

// reportCache keeps encoded report bodies keyed by report id.
// Providers serve immutable reports, so entries never need invalidation.
type reportCache struct {
	entries *lru.Cache[int, encodedReport]
	metrics *metrics.Registry
}

func newReportCache(size int, m *metrics.Registry) (*reportCache, error) {
	entries, err := lru.New[int, encodedReport](size)
	if err != nil {
		return nil, err
	}
	return &reportCache{entries: entries, metrics: m}, nil
}

// encode returns the cached body for e, building it on a miss
func (c *reportCache) encode(e storage.Entry) (encodedReport, error) {
	if cached, ok := c.entries.Get(e.ID); ok {
		c.metrics.CacheHitsTotal.Inc()
		return cached, nil
	}
	c.metrics.CacheMissesTotal.Inc()

	body, err := json.Marshal(e.Report)
	if err != nil {
		return encodedReport{}, err
	}
	body = append(body, '\n')

	sum := sha256.Sum256(body)
	enc := encodedReport{
		body: body,
		etag: `"` + hex.EncodeToString(sum[:16]) + `"`,
	}
	c.entries.Add(e.ID, enc)
	return enc, nil
}

// writeReport writes enc, answering 304 when the client already holds it
func writeReport(w http.ResponseWriter, r *http.Request, enc encodedReport) {
	w.Header().Set("ETag", enc.etag)
	if etagMatches(r.Header.Get("If-None-Match"), enc.etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(enc.body)
}

// etagMatches implements the weak comparison If-None-Match requires
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
