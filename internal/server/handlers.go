package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/models"
)

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// handleVersion handles GET /api/version.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"full":    common.GetFullVersion(),
	})
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}

type companyRequest struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Exchange  string `json:"exchange"`
	ScripCode string `json:"scrip_code"`
	ISIN      string `json:"isin,omitempty"`
	Watch     bool   `json:"watch,omitempty"`
}

// handleCompanies handles POST /api/companies (seed a company).
func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req companyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	if req.Symbol == "" || req.Name == "" {
		WriteError(w, http.StatusBadRequest, "symbol and name are required")
		return
	}

	company := &models.Company{
		Symbol:    req.Symbol,
		Name:      req.Name,
		Exchange:  req.Exchange,
		ScripCode: req.ScripCode,
		ISIN:      req.ISIN,
	}
	if err := s.app.Storage.Companies().Upsert(r.Context(), company); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Watch {
		if err := s.app.Storage.Companies().AddToWatchlist(r.Context(), req.Symbol); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	WriteJSON(w, http.StatusCreated, company)
}

// handleCompanyGet handles GET /api/companies/{symbol}.
func (s *Server) handleCompanyGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/companies/", ""))
	company, err := s.app.Storage.Companies().Get(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if company == nil {
		WriteError(w, http.StatusNotFound, "Company not found: "+symbol)
		return
	}
	WriteJSON(w, http.StatusOK, company)
}

// handleWatchlist handles GET and POST /api/watchlist.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		entries, err := s.app.Storage.Companies().ListWatchlist(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"watchlist": entries})

	case http.MethodPost:
		var req struct {
			Symbol string `json:"symbol"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
		if symbol == "" {
			WriteError(w, http.StatusBadRequest, "symbol is required")
			return
		}

		company, err := s.app.Storage.Companies().Get(r.Context(), symbol)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if company == nil {
			WriteError(w, http.StatusNotFound, "Company not found: "+symbol+" (seed it first)")
			return
		}

		if err := s.app.Storage.Companies().AddToWatchlist(r.Context(), symbol); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, map[string]string{"symbol": symbol})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleWatchlistRemove handles DELETE /api/watchlist/{symbol}.
func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/watchlist/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}
	if err := s.app.Storage.Companies().RemoveFromWatchlist(r.Context(), symbol); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAnalyze handles POST /api/analyze/{symbol}. The run executes
// synchronously; a failed run still reports its run id so the caller
// can inspect the logs.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/analyze/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	lookbackDays := 0
	if v := r.URL.Query().Get("lookback_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "lookback_days must be a positive integer")
			return
		}
		lookbackDays = n
	}

	result, err := s.app.AnalyzeService.Analyze(r.Context(), symbol, lookbackDays)
	if err != nil {
		resp := map[string]interface{}{"error": err.Error()}
		if result != nil {
			resp["run_id"] = result.RunID
		}
		WriteJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// handleRunGet handles GET /api/runs/{id}.
func (s *Server) handleRunGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/runs/", "")
	run, err := s.app.Storage.Runs().Get(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		WriteError(w, http.StatusNotFound, "Run not found: "+id)
		return
	}
	WriteJSON(w, http.StatusOK, run)
}

// routeTimeline dispatches /api/timeline/{symbol} and
// /api/timeline/{symbol}/chart.png.
func (s *Server) routeTimeline(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/chart.png") {
		s.handleTimelineChart(w, r)
		return
	}
	s.handleTimeline(w, r)
}

// handleTimeline handles GET /api/timeline/{symbol}?from=&to=.
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/timeline/", ""))
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	from, to, err := dateRange(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	timeline, err := s.buildTimeline(r, symbol, from, to)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, timeline)
}

func (s *Server) buildTimeline(r *http.Request, symbol string, from, to time.Time) (*models.Timeline, error) {
	ctx := r.Context()

	prices, err := s.app.Storage.Prices().ListByDateRange(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	filings, err := s.app.Storage.Filings().ListByDateRange(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	mood, err := s.app.Storage.Mood().ListByDateRange(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}
	headlines, err := s.app.Storage.Headlines().ListByDateRange(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	return &models.Timeline{
		Symbol:    symbol,
		Prices:    prices,
		Filings:   filings,
		MoodDaily: mood,
		Headlines: headlines,
	}, nil
}

// handleFilingGet handles GET /api/filings/{id}.
func (s *Server) handleFilingGet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/filings/", "")
	filing, err := s.app.Storage.Filings().Get(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if filing == nil {
		WriteError(w, http.StatusNotFound, "Filing not found: "+id)
		return
	}

	artifact, err := s.app.Storage.Filings().GetArtifact(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"filing":   filing,
		"artifact": artifact,
	})
}

// dateRange parses optional from/to query parameters (2006-01-02),
// defaulting to the configured lookback window ending now.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -90)

	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsed
	}
	if v := r.URL.Query().Get("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}
