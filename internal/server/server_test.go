package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intraday-terminal/internal/metrics"
	"intraday-terminal/internal/store"
	"intraday-terminal/internal/types"
)

type stubScanner struct {
	symbols []string
	bias    types.Bias
}

func (s *stubScanner) Scan(ctx context.Context, symbols []string, bias types.Bias) []types.Signal {
	return nil
}

func (s *stubScanner) ScanDetailed(ctx context.Context, symbols []string, bias types.Bias) []types.Outcome {
	s.symbols = symbols
	s.bias = bias
	sig := types.Signal{Symbol: symbols[0], Direction: types.Buy, Entry: 101.5, TimeLabel: "10:00:00"}
	out := []types.Outcome{{Symbol: symbols[0], Status: types.StatusEvaluated, Reason: types.ReasonTriggered, Signal: &sig}}
	for _, sym := range symbols[1:] {
		out = append(out, types.Outcome{Symbol: sym, Status: types.StatusEvaluated, Reason: types.ReasonDoji})
	}
	return out
}

type stubEngine struct {
	latest *types.ScanReport
}

func (e *stubEngine) Cycle(ctx context.Context) (*types.ScanReport, error) { return e.latest, nil }

func (e *stubEngine) Latest() *types.ScanReport { return e.latest }

type stubMarket struct {
	err error
}

func (m *stubMarket) Dashboard(ctx context.Context) (*types.Dashboard, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &types.Dashboard{Session: "LIVE", Breadth: types.Breadth{Advances: 3, Declines: 1, AdvancePct: 75}}, nil
}

func (m *stubMarket) Gaps(ctx context.Context) ([]types.Gap, error) {
	return []types.Gap{{Symbol: "TCS.NS", GapPct: 3.5, Type: "GAP UP"}}, m.err
}

func (m *stubMarket) OpeningMovers(ctx context.Context) ([]types.Quote, error) {
	return []types.Quote{{Symbol: "INFY.NS", PctChange: 2.4}}, m.err
}

func (m *stubMarket) VolumeSpikes(ctx context.Context) ([]types.VolumeSpike, error) {
	return []types.VolumeSpike{{Symbol: "SBIN.NS", VolRatio: 2.1, Buildup: "LONG BUILDUP"}}, m.err
}

type stubNews struct{}

func (stubNews) Headlines(ctx context.Context) ([]types.Headline, error) {
	return []types.Headline{{Title: "Sensex rallies"}}, nil
}

func testConfig() *store.Config {
	return &store.Config{
		ActiveWatchlist: "MIXED WATCHLIST",
		Watchlists: []store.Watchlist{
			{Name: "MIXED WATCHLIST", Symbols: []string{"AAA.NS", "BBB.NS"}},
			{Name: "NIFTY IT", Sector: true, Symbols: []string{"TCS.NS", "INFY.NS"}},
		},
	}
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func get(t *testing.T, s *Server, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func newTestServer(d Deps) *Server {
	if d.Config == nil {
		d.Config = testConfig()
	}
	if d.Scanner == nil {
		d.Scanner = &stubScanner{}
	}
	return NewServer(NewHandler(d), WithGatherer(prometheus.NewRegistry()))
}

func TestHealthz(t *testing.T) {
	rec, env := get(t, newTestServer(Deps{}), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200, env.Status)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestWatchlists(t *testing.T) {
	rec, env := get(t, newTestServer(Deps{}), "/api/watchlists")
	require.Equal(t, http.StatusOK, rec.Code)

	var wls []watchlistView
	require.NoError(t, json.Unmarshal(env.Data, &wls))
	require.Len(t, wls, 2)
	assert.True(t, wls[0].Active)
	assert.False(t, wls[1].Active)
	assert.True(t, wls[1].Sector)
}

func TestScan_DefaultsToActiveWatchlistAndBullish(t *testing.T) {
	sc := &stubScanner{}
	rec, env := get(t, newTestServer(Deps{Scanner: sc}), "/api/scan")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"AAA.NS", "BBB.NS"}, sc.symbols)
	assert.Equal(t, types.Bullish, sc.bias)

	var resp struct {
		Watchlist string          `json:"watchlist"`
		Bias      string          `json:"bias"`
		Signals   []types.Signal  `json:"signals"`
		Outcomes  []types.Outcome `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, "MIXED WATCHLIST", resp.Watchlist)
	require.Len(t, resp.Signals, 1)
	assert.Equal(t, "AAA.NS", resp.Signals[0].Symbol)
	assert.Nil(t, resp.Outcomes)
}

func TestScan_WatchlistBiasAndDetail(t *testing.T) {
	sc := &stubScanner{}
	rec, env := get(t, newTestServer(Deps{Scanner: sc}), "/api/scan?watchlist=NIFTY+IT&bias=bearish&detail=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"TCS.NS", "INFY.NS"}, sc.symbols)
	assert.Equal(t, types.Bearish, sc.bias)

	var resp struct {
		Outcomes []types.Outcome `json:"outcomes"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.Outcomes, 2)
	assert.Equal(t, types.ReasonDoji, resp.Outcomes[1].Reason)
}

func TestScan_InvalidBias(t *testing.T) {
	rec, env := get(t, newTestServer(Deps{}), "/api/scan?bias=SIDEWAYS")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errs []ValidationError
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	require.Len(t, errs, 1)
	assert.Equal(t, "ERR_ONEOF", errs[0].Code)
	assert.Equal(t, "bias", errs[0].Field)
	assert.Equal(t, "bias must be one of: BULLISH, BEARISH", errs[0].Message)
}

func TestScan_UnknownWatchlist(t *testing.T) {
	rec, env := get(t, newTestServer(Deps{}), "/api/scan?watchlist=NOPE")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var errs []ValidationError
	require.NoError(t, json.Unmarshal(env.Data, &errs))
	assert.Equal(t, "ERR_NOT_FOUND", errs[0].Code)
	assert.Equal(t, "watchlist", errs[0].Field)
}

func TestLatest(t *testing.T) {
	rec, _ := get(t, newTestServer(Deps{}), "/api/signals/latest")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	eng := &stubEngine{}
	rec, _ = get(t, newTestServer(Deps{Engine: eng}), "/api/signals/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	eng.latest = &types.ScanReport{Watchlist: "MIXED WATCHLIST", Scanned: 2}
	rec, env := get(t, newTestServer(Deps{Engine: eng}), "/api/signals/latest")
	require.Equal(t, http.StatusOK, rec.Code)
	var r types.ScanReport
	require.NoError(t, json.Unmarshal(env.Data, &r))
	assert.Equal(t, 2, r.Scanned)
}

func TestMarketRoutes(t *testing.T) {
	s := newTestServer(Deps{Market: &stubMarket{}, News: stubNews{}})
	for _, path := range []string{"/api/dashboard", "/api/gaps", "/api/movers/opening", "/api/volume-spikes", "/api/news"} {
		rec, env := get(t, s, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, env.Data, path)
	}

	_, env := get(t, s, "/api/dashboard")
	var d types.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, 75.0, d.Breadth.AdvancePct)
}

func TestMarketRoutes_Errors(t *testing.T) {
	rec, _ := get(t, newTestServer(Deps{}), "/api/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec, _ = get(t, newTestServer(Deps{}), "/api/news")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	s := newTestServer(Deps{Market: &stubMarket{err: errors.New("yahoo down")}})
	rec, env := get(t, s, "/api/gaps")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, string(env.Data), "yahoo down")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	rec.RecordSignal("BUY")

	s := NewServer(NewHandler(Deps{Config: testConfig(), Scanner: &stubScanner{}}), WithGatherer(reg))
	resp := httptest.NewRecorder()
	s.Echo().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `intraday_signals_total{direction="BUY"} 1`)
}

func TestHub_BroadcastsReports(t *testing.T) {
	hub := NewHub()
	s := newTestServer(Deps{Hub: hub})
	ts := httptest.NewServer(s.Echo())
	defer ts.Close()

	first := &types.ScanReport{Watchlist: "MIXED WATCHLIST", Scanned: 1}
	require.NoError(t, hub.Publish(context.Background(), first))

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/signals"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg struct {
		Type string           `json:"type"`
		Data types.ScanReport `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "report", msg.Type)
	assert.Equal(t, 1, msg.Data.Scanned)
	assert.Equal(t, 1, hub.Clients())

	second := &types.ScanReport{Watchlist: "MIXED WATCHLIST", Scanned: 2}
	require.NoError(t, hub.Publish(context.Background(), second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, 2, msg.Data.Scanned)

	assert.Equal(t, "websocket", hub.Name())
}
