package engine

import (
	"fmt"
	"strings"
	"time"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/metrics"
	"intraday-terminal/internal/store"
	"intraday-terminal/internal/types"
)

// Config is what one engine scans and where the results go.
type Config struct {
	Watchlist string
	Symbols   []string
	Bias      types.Bias
	Refresh   time.Duration
	Journal   bool
	ExportCSV bool
}

// ConfigFrom resolves the active watchlist and bias. Non-empty overrides win over the file.
func ConfigFrom(cfg *store.Config, watchlist, bias string) (Config, error) {
	name := cfg.ActiveWatchlist
	if watchlist != "" {
		name = watchlist
	}
	wl, err := cfg.Watchlist(name)
	if err != nil {
		return Config{}, err
	}

	b := types.Bias(strings.ToUpper(cfg.Bias))
	if bias != "" {
		b = types.Bias(strings.ToUpper(bias))
	}
	if !b.Valid() {
		return Config{}, fmt.Errorf("invalid bias %q", b)
	}

	return Config{
		Watchlist: wl.Name,
		Symbols:   wl.Symbols,
		Bias:      b,
		Refresh:   cfg.RefreshInterval(),
		Journal:   cfg.Export.Journal,
		ExportCSV: cfg.Export.CSV,
	}, nil
}

// New builds an engine over sc. rec may be nil.
func New(cfg Config, sc interfaces.Scanner, sinks []interfaces.SignalSink, rec *metrics.Recorder) interfaces.Engine {
	return newEngine(cfg, sc, sinks, rec)
}
