package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Recorder) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRecorder(t *testing.T) {
	r := New()
	r.ObserveFetch("remote", "ok", 120*time.Millisecond, 4096)
	r.ObserveFetch("remote", "error", time.Second, 0)
	r.ObserveLoad("new", "ok", time.Millisecond, 12)
	r.SetSnapshot(12, 3)
	r.ObserveRequest("/api/stocks", http.StatusOK, 5*time.Millisecond)

	body := scrape(t, r)
	assert.Contains(t, body, `volprofile_fetch_total{outcome="ok",source="remote"} 1`)
	assert.Contains(t, body, `volprofile_fetch_total{outcome="error",source="remote"} 1`)
	assert.Contains(t, body, `volprofile_normalize_total{format="new",outcome="ok"} 1`)
	assert.Contains(t, body, "volprofile_snapshot_symbols 12")
	assert.Contains(t, body, "volprofile_snapshot_entry_points 3")
	assert.Contains(t, body, `volprofile_http_requests_total{route="/api/stocks",status="200"} 1`)
	assert.Contains(t, body, "volprofile_fetch_bytes_count 1")
}

func TestNewIsolatedRegistries(t *testing.T) {
	a, b := New(), New()
	a.SetSnapshot(1, 1)
	b.SetSnapshot(2, 0)
	assert.Contains(t, scrape(t, a), "volprofile_snapshot_symbols 1\n")
	assert.Contains(t, scrape(t, b), "volprofile_snapshot_symbols 2\n")
}
