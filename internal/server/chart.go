package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// handleTimelineChart handles GET /api/timeline/{symbol}/chart.png,
// rendering the close-price series with the daily mood overlaid on the
// secondary axis.
func (s *Server) handleTimelineChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := strings.ToUpper(PathParam(r, "/api/timeline/", "/chart.png"))
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

	var priceX []time.Time
	var priceY []float64
	for _, bar := range timeline.Prices {
		if bar.Close == nil {
			continue
		}
		priceX = append(priceX, bar.TS)
		priceY = append(priceY, *bar.Close)
	}
	if len(priceX) < 2 {
		WriteError(w, http.StatusNotFound, "Not enough price data to chart "+symbol)
		return
	}

	series := []chart.Series{
		chart.TimeSeries{
			Name:    symbol + " close",
			XValues: priceX,
			YValues: priceY,
			Style: chart.Style{
				StrokeColor: drawing.ColorBlue,
				StrokeWidth: 2,
			},
		},
	}

	var moodX []time.Time
	var moodY []float64
	for _, m := range timeline.MoodDaily {
		day, err := time.Parse("2006-01-02", m.Date)
		if err != nil {
			continue
		}
		moodX = append(moodX, day)
		moodY = append(moodY, m.MoodAvg)
	}
	if len(moodX) >= 2 {
		series = append(series, chart.TimeSeries{
			Name:    "daily mood",
			XValues: moodX,
			YValues: moodY,
			YAxis:   chart.YAxisSecondary,
			Style: chart.Style{
				StrokeColor:     drawing.ColorFromHex("9b59b6"),
				StrokeWidth:     1.5,
				StrokeDashArray: []float64{4, 2},
			},
		})
	}

	graph := chart.Chart{
		Title:  symbol,
		Width:  1100,
		Height: 500,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "price",
		},
		YAxisSecondary: chart.YAxis{
			Name: "mood",
			Range: &chart.ContinuousRange{
				Min: -1,
				Max: 1,
			},
		},
		Series: series,
	}

	w.Header().Set("Content-Type", "image/png")
	if err := graph.Render(chart.PNG, w); err != nil {
		s.logger.Error().Str("symbol", symbol).Err(err).Msg("Chart render failed")
	}
}
