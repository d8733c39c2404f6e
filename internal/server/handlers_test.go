package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/sentinel/internal/app"
	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/models"
	"github.com/bobmcallan/sentinel/internal/storage"
)

type stubAnalyzeService struct {
	result *models.AnalyzeResult
	err    error
	symbol string
}

func (s *stubAnalyzeService) Analyze(ctx context.Context, symbol string, lookbackDays int) (*models.AnalyzeResult, error) {
	s.symbol = symbol
	return s.result, s.err
}

type testServer struct {
	server  *Server
	storage *storage.Manager
	analyze *stubAnalyzeService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = filepath.Join(dir, "db")
	cfg.Storage.DataPath = filepath.Join(dir, "data")

	mgr, err := storage.NewManager(cfg, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	analyzeStub := &stubAnalyzeService{
		result: &models.AnalyzeResult{
			RunID:   "run-1",
			Filings: models.FilingStats{Fetched: 2, Persisted: 2},
			News:    models.NewsStats{Fetched: 3, Persisted: 3},
			Prices:  models.PriceStats{Bars: 5},
		},
	}

	a := &app.App{
		Config:         cfg,
		Logger:         common.NewSilentLogger(),
		Storage:        mgr,
		AnalyzeService: analyzeStub,
		StartupTime:    time.Now(),
	}

	return &testServer{
		server:  NewServer(a),
		storage: mgr,
		analyze: analyzeStub,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(rec, req)
	return rec
}

func seedCompany(t *testing.T, ts *testServer, symbol string) {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/companies", companyRequest{
		Symbol:    symbol,
		Name:      symbol + " Ltd",
		Exchange:  "BSE",
		ScripCode: "500325",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestCompanySeedAndGet(t *testing.T) {
	ts := newTestServer(t)
	seedCompany(t, ts, "RELIANCE")

	rec := ts.do(t, http.MethodGet, "/api/companies/RELIANCE", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var company models.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &company))
	assert.Equal(t, "RELIANCE", company.Symbol)
	assert.Equal(t, "500325", company.ScripCode)

	rec = ts.do(t, http.MethodGet, "/api/companies/GHOST", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCompanySeedValidation(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/companies", companyRequest{Symbol: "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWatchlistFlow(t *testing.T) {
	ts := newTestServer(t)
	seedCompany(t, ts, "TCS")

	// Adding an unseeded symbol is rejected.
	rec := ts.do(t, http.MethodPost, "/api/watchlist", map[string]string{"symbol": "GHOST"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/watchlist", map[string]string{"symbol": "tcs"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/watchlist", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResp struct {
		Watchlist []models.WatchlistEntry `json:"watchlist"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	require.Len(t, listResp.Watchlist, 1)
	assert.Equal(t, "TCS", listResp.Watchlist[0].Symbol)

	rec = ts.do(t, http.MethodDelete, "/api/watchlist/TCS", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/watchlist", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResp))
	assert.Empty(t, listResp.Watchlist)
}

func TestAnalyzeEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/analyze/RELIANCE?lookback_days=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "RELIANCE", ts.analyze.symbol)

	var result models.AnalyzeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "run-1", result.RunID)
	assert.Equal(t, 5, result.Prices.Bars)
}

func TestAnalyzeEndpointFailureCarriesRunID(t *testing.T) {
	ts := newTestServer(t)
	ts.analyze.result = &models.AnalyzeResult{RunID: "failed-run"}
	ts.analyze.err = fmt.Errorf("unknown company symbol: GHOST")

	rec := ts.do(t, http.MethodPost, "/api/analyze/GHOST", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "failed-run", resp["run_id"])
	assert.Contains(t, resp["error"], "unknown company symbol")
}

func TestAnalyzeEndpointBadLookback(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/analyze/RELIANCE?lookback_days=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunGet(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	run, err := ts.storage.Runs().Create(ctx, "RELIANCE")
	require.NoError(t, err)
	require.NoError(t, ts.storage.Runs().AppendLog(ctx, run.ID, "INFO", "Analyze started"))

	rec := ts.do(t, http.MethodGet, "/api/runs/"+run.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, models.RunStatusRunning, got.Status)
	require.Len(t, got.Logs, 1)

	rec = ts.do(t, http.MethodGet, "/api/runs/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func seedTimelineData(t *testing.T, ts *testServer, symbol string) {
	t.Helper()
	ctx := context.Background()

	closeOf := func(v float64) *float64 { return &v }
	var bars []models.PriceBar
	for i := 0; i < 5; i++ {
		bars = append(bars, models.PriceBar{
			TS:    time.Date(2025, 6, 16+i, 0, 0, 0, 0, time.UTC),
			Close: closeOf(1400 + float64(i)*10),
		})
	}
	_, err := ts.storage.Prices().UpsertBars(ctx, symbol, bars)
	require.NoError(t, err)

	announced := time.Date(2025, 6, 17, 10, 0, 0, 0, time.UTC)
	require.NoError(t, ts.storage.Filings().Create(ctx, &models.Filing{
		ID:          common.StableID(symbol, "hash1"),
		Symbol:      symbol,
		AnnouncedAt: &announced,
		Title:       "Dividend",
		Category:    models.CategoryDividend,
		ContentHash: "hash1",
	}, nil))

	published := time.Date(2025, 6, 18, 9, 0, 0, 0, time.UTC)
	require.NoError(t, ts.storage.Headlines().Upsert(ctx, &models.Headline{
		ID:          common.StableID(symbol, "https://n.example.com/1"),
		Symbol:      symbol,
		PublishedAt: &published,
		Title:       "Shares surge",
		URL:         "https://n.example.com/1",
		MoodScore:   0.7,
	}))

	require.NoError(t, ts.storage.Mood().Upsert(ctx, &models.MoodDaily{
		Symbol: symbol, Date: "2025-06-18", MoodAvg: 0.7, MoodCount: 1, MoodPos: 1,
	}))
	require.NoError(t, ts.storage.Mood().Upsert(ctx, &models.MoodDaily{
		Symbol: symbol, Date: "2025-06-19", MoodAvg: -0.2, MoodCount: 1, MoodNeg: 1,
	}))
}

func TestTimeline(t *testing.T) {
	ts := newTestServer(t)
	seedTimelineData(t, ts, "RELIANCE")

	rec := ts.do(t, http.MethodGet, "/api/timeline/RELIANCE?from=2025-06-01&to=2025-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var timeline models.Timeline
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &timeline))
	assert.Equal(t, "RELIANCE", timeline.Symbol)
	assert.Len(t, timeline.Prices, 5)
	assert.Len(t, timeline.Filings, 1)
	assert.Len(t, timeline.MoodDaily, 2)
	assert.Len(t, timeline.Headlines, 1)
}

func TestTimelineBadDate(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/timeline/RELIANCE?from=june-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimelineChart(t *testing.T) {
	ts := newTestServer(t)
	seedTimelineData(t, ts, "RELIANCE")

	rec := ts.do(t, http.MethodGet, "/api/timeline/RELIANCE/chart.png?from=2025-06-01&to=2025-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	// PNG magic bytes.
	require.Greater(t, rec.Body.Len(), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, rec.Body.Bytes()[:4])
}

func TestTimelineChartNoData(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/timeline/EMPTY/chart.png", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilingGet(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	id := common.StableID("TCS", "hashx")
	require.NoError(t, ts.storage.Filings().Create(ctx, &models.Filing{
		ID:          id,
		Symbol:      "TCS",
		Title:       "Order win",
		Category:    models.CategoryOrderWin,
		ContentHash: "hashx",
	}, &models.FilingArtifact{PDFPath: "/data/x.pdf", TextPath: "/data/x.txt"}))

	rec := ts.do(t, http.MethodGet, "/api/filings/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Filing   models.Filing          `json:"filing"`
		Artifact *models.FilingArtifact `json:"artifact"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Order win", resp.Filing.Title)
	require.NotNil(t, resp.Artifact)
	assert.Equal(t, "/data/x.pdf", resp.Artifact.PDFPath)

	rec = ts.do(t, http.MethodGet, "/api/filings/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodDelete, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/analyze/RELIANCE", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
