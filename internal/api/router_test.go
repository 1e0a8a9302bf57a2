package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/LJTian/RubberWatch/internal/dashboard"
	"github.com/LJTian/RubberWatch/internal/processor"
	"github.com/LJTian/RubberWatch/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

type stubSource struct {
	batch processor.Batch
	calls int
}

func (s *stubSource) GetOrRefresh(ctx context.Context, now time.Time) processor.Batch {
	s.calls++
	return s.batch
}

type stubLister struct {
	list  []storage.Snapshot
	err   error
	limit int
}

func (s *stubLister) ListSnapshots(limit int) ([]storage.Snapshot, error) {
	s.limit = limit
	return s.list, s.err
}

func sampleBatch() processor.Batch {
	return processor.Batch{
		FetchedAt: fixedNow,
		Items: []processor.NewsItem{
			{Title: "Thailand rubber export ban", Link: "https://a.example/1", Published: "Wed, 01 May 2024", Risk: processor.RiskHigh, Country: "Thailand", Region: processor.RegionAsia},
			{Title: "Vietnam rubber output rises", Link: "https://b.example/2", Risk: processor.RiskNormal, Country: "Vietnam", Region: processor.RegionAsia},
			{Title: "Rubber tariff talks in Brazil", Link: "https://c.example/3", Risk: processor.RiskHigh, Country: "Unknown", Region: processor.RegionOther},
		},
	}
}

func newTestEngine(src BatchSource, lister SnapshotLister) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s := NewServer(src, lister, "rubber export", 30*time.Minute)
	s.now = func() time.Time { return fixedNow }
	return s.NewEngine()
}

func doGet(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestHealth(t *testing.T) {
	r := newTestEngine(&stubSource{}, &stubLister{})
	w := doGet(t, r, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	r := newTestEngine(&stubSource{}, &stubLister{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc123")
	r.ServeHTTP(w, req)
	require.Equal(t, "abc123", w.Header().Get(RequestIDHeader))
}

func TestListNewsFilters(t *testing.T) {
	src := &stubSource{batch: sampleBatch()}
	r := newTestEngine(src, &stubLister{})

	var data struct {
		Filter dashboard.Filter     `json:"filter"`
		Total  int                  `json:"total"`
		Items  []processor.NewsItem `json:"items"`
	}

	w := doGet(t, r, "/api/v1/news")
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w, &data)
	require.Equal(t, "ok", env.Code)
	require.Equal(t, 3, data.Total)
	require.Equal(t, dashboard.Filter{Risk: dashboard.All, Country: dashboard.All}, data.Filter)

	w = doGet(t, r, "/api/v1/news?risk=High")
	decode(t, w, &data)
	require.Equal(t, 2, data.Total)
	for _, it := range data.Items {
		require.Equal(t, processor.RiskHigh, it.Risk)
	}

	w = doGet(t, r, "/api/v1/news?risk=High&country=Thailand")
	decode(t, w, &data)
	require.Len(t, data.Items, 1)
	require.Equal(t, "Thailand rubber export ban", data.Items[0].Title)

	w = doGet(t, r, "/api/v1/news?country=Malaysia")
	decode(t, w, &data)
	require.Equal(t, 0, data.Total)
}

func TestStatsIgnoresFilter(t *testing.T) {
	r := newTestEngine(&stubSource{batch: sampleBatch()}, &stubLister{})

	var s dashboard.Summary
	decode(t, doGet(t, r, "/api/v1/stats?risk=Normal"), &s)
	require.Equal(t, 3, s.Total)
	require.Equal(t, []dashboard.Bucket{
		{Label: "High", Count: 2, Percent: 200.0 / 3},
		{Label: "Normal", Count: 1, Percent: 100.0 / 3},
	}, s.Risk)
}

func TestFilters(t *testing.T) {
	r := newTestEngine(&stubSource{batch: sampleBatch()}, &stubLister{})

	var opts dashboard.FilterOptions
	decode(t, doGet(t, r, "/api/v1/filters"), &opts)
	require.Equal(t, []string{"All", "High", "Normal"}, opts.Risks)
	require.Equal(t, []string{"All", "Thailand", "Vietnam", "Unknown"}, opts.Countries)
}

func TestSnapshots(t *testing.T) {
	lister := &stubLister{list: []storage.Snapshot{{ID: 1, ItemCount: 3, FetchedAt: fixedNow}}}
	r := newTestEngine(&stubSource{}, lister)

	var list []storage.Snapshot
	w := doGet(t, r, "/api/v1/snapshots?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Len(t, list, 1)
	require.Equal(t, 5, lister.limit)

	doGet(t, r, "/api/v1/snapshots?limit=abc")
	require.Equal(t, 20, lister.limit)
}

func TestSnapshotsArchiveDisabled(t *testing.T) {
	var archive *storage.Archive
	r := newTestEngine(&stubSource{}, archive)

	w := doGet(t, r, "/api/v1/snapshots")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "archive_disabled", decode(t, w, nil).Code)
}

func TestSnapshotsError(t *testing.T) {
	r := newTestEngine(&stubSource{}, &stubLister{err: errors.New("connection refused")})

	w := doGet(t, r, "/api/v1/snapshots")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "connection refused")
}

func TestDashboardPage(t *testing.T) {
	src := &stubSource{batch: sampleBatch()}
	r := newTestEngine(src, &stubLister{})

	w := doGet(t, r, "/?risk=High")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "Rubber Export Disruption Dashboard")
	require.Contains(t, body, `href="https://a.example/1"`)
	require.Contains(t, body, "Published: Wed, 01 May 2024 | Risk: High | Country: Thailand")
	require.NotContains(t, body, "Vietnam rubber output rises")
	require.Contains(t, body, `<option value="High" selected>`)
	require.Contains(t, body, "conic-gradient(")
	require.Equal(t, 1, src.calls)
}

func TestDashboardPageEmpty(t *testing.T) {
	src := &stubSource{batch: processor.Batch{
		Items:      []processor.NewsItem{},
		FetchedAt:  fixedNow,
		FetchError: "collector: fetch google_news: timeout",
	}}
	r := newTestEngine(src, &stubLister{})

	w := doGet(t, r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "No data available")
	require.Contains(t, body, "Feed unavailable")
	require.False(t, strings.Contains(body, "conic-gradient("))
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestEngine(&stubSource{batch: sampleBatch()}, &stubLister{})
	doGet(t, r, "/api/v1/stats")

	w := doGet(t, r, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "rubberwatch_http_request_duration_seconds")
}
