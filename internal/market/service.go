package market

import (
	"context"
	"errors"
	"sync"
	"time"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/store"
	"intraday-terminal/internal/types"
)

var ErrNoMarketData = errors.New("no market data available")

type Config struct {
	Indices       []store.Index
	Watchlists    []store.Watchlist
	Universe      []string
	DailyLookback int
	TopMovers     int
	GapPct        float64
	MoverPct      float64
	SpikeMultiple float64
	Workers       int
}

func ConfigFrom(c *store.Config) Config {
	return Config{
		Indices:       c.Indices,
		Watchlists:    c.Watchlists,
		Universe:      c.MarketUniverse(),
		DailyLookback: c.Market.DailyLookback,
		TopMovers:     c.Market.TopMovers,
		GapPct:        c.Market.GapPct,
		MoverPct:      c.Market.MoverPct,
		SpikeMultiple: c.Market.SpikeMultiple,
		Workers:       c.Market.Workers,
	}
}

// Service assembles dashboard views from daily and intraday candles.
type Service struct {
	md  interfaces.MarketData
	cfg Config
	now func() time.Time
}

func NewService(md interfaces.MarketData, cfg Config) *Service {
	if cfg.DailyLookback < 3 {
		cfg.DailyLookback = 10
	}
	if cfg.TopMovers < 1 {
		cfg.TopMovers = 4
	}
	if cfg.Workers < 1 {
		cfg.Workers = 8
	}
	return &Service{md: md, cfg: cfg, now: time.Now}
}

// Dashboard builds the main terminal view. Symbols that fail to load are left out.
func (s *Service) Dashboard(ctx context.Context) (*types.Dashboard, error) {
	symbols := make([]string, 0, len(s.cfg.Indices)+len(s.cfg.Universe))
	for _, ix := range s.cfg.Indices {
		symbols = append(symbols, ix.Symbol)
	}
	symbols = append(symbols, s.cfg.Universe...)
	for _, w := range s.cfg.Watchlists {
		if w.Sector {
			symbols = append(symbols, w.Symbols...)
		}
	}

	series, err := s.fetch(ctx, dedupe(symbols), s.cfg.DailyLookback, types.IntervalDay)
	if err != nil {
		return nil, err
	}
	bySymbol := make(map[string][]types.Candle, len(series))
	for _, sr := range series {
		bySymbol[sr.Symbol] = sr.Candles
	}

	now := s.now()
	d := &types.Dashboard{
		At:      now,
		Session: SessionAt(now),
		Indices: make([]types.Quote, 0, len(s.cfg.Indices)),
		Trends:  make([]types.Trend, 0),
	}
	for _, ix := range s.cfg.Indices {
		q, ok := QuoteFromDaily(ix.Symbol, bySymbol[ix.Symbol])
		if !ok {
			continue
		}
		q.Name = ix.Name
		d.Indices = append(d.Indices, q)
	}

	quoteMap := make(map[string]types.Quote, len(bySymbol))
	for sym, cs := range bySymbol {
		if q, ok := QuoteFromDaily(sym, cs); ok {
			quoteMap[sym] = q
		}
	}
	d.Sectors = SectorPerformance(s.cfg.Watchlists, quoteMap)

	universe := make([]types.Quote, 0, len(s.cfg.Universe))
	for _, sym := range s.cfg.Universe {
		q, ok := quoteMap[sym]
		if !ok {
			continue
		}
		universe = append(universe, q)
		if t, ok := TrendContinuity(sym, bySymbol[sym]); ok {
			d.Trends = append(d.Trends, t)
		}
	}
	d.Breadth = AdvanceDecline(universe)
	d.Gainers, d.Losers = TopMovers(universe, s.cfg.TopMovers)
	return d, nil
}

// Gaps lists opening gaps across the market universe.
func (s *Service) Gaps(ctx context.Context) ([]types.Gap, error) {
	series, err := s.fetch(ctx, s.cfg.Universe, 5, types.IntervalDay)
	if err != nil {
		return nil, err
	}
	return GapScan(series, s.cfg.GapPct), nil
}

// OpeningMovers lists universe symbols up or down by at least the mover threshold.
func (s *Service) OpeningMovers(ctx context.Context) ([]types.Quote, error) {
	series, err := s.fetch(ctx, s.cfg.Universe, 5, types.IntervalDay)
	if err != nil {
		return nil, err
	}
	quotes := make([]types.Quote, 0, len(series))
	for _, sr := range series {
		if q, ok := QuoteFromDaily(sr.Symbol, sr.Candles); ok {
			quotes = append(quotes, q)
		}
	}
	return OpeningMovers(quotes, s.cfg.MoverPct), nil
}

// VolumeSpikes compares the last two 15-minute bars across the universe.
func (s *Service) VolumeSpikes(ctx context.Context) ([]types.VolumeSpike, error) {
	series, err := s.fetch(ctx, s.cfg.Universe, 2, types.Interval15m)
	if err != nil {
		return nil, err
	}
	return VolumeSpikes(series, s.cfg.SpikeMultiple), nil
}

// fetch loads candles for every symbol on a bounded pool and keeps input order. It fails only
// when the context ends or every symbol failed.
func (s *Service) fetch(ctx context.Context, symbols []string, days int, interval types.Interval) ([]types.Series, error) {
	if len(symbols) == 0 {
		return []types.Series{}, nil
	}

	op := logger.StartOperation(ctx, "market.fetch", "symbols", len(symbols), "interval", string(interval))
	ctx = op.GetContext()

	results := make([]types.Series, len(symbols))
	workers := min(s.cfg.Workers, len(symbols))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				cs, err := s.md.Candles(ctx, symbols[i], days, interval)
				if err != nil {
					logger.Debug(ctx, "Skipping symbol without market data", "symbol", symbols[i], "interval", interval, "error", err)
					continue
				}
				results[i] = types.Series{Symbol: symbols[i], Candles: cs}
			}
		}()
	}
	for i := range symbols {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		op.EndWithError(err)
		return nil, err
	}

	out := make([]types.Series, 0, len(results))
	for _, r := range results {
		if len(r.Candles) > 0 {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		op.EndWithError(ErrNoMarketData)
		return nil, ErrNoMarketData
	}
	op.End("loaded", len(out))
	return out, nil
}

func dedupe(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
