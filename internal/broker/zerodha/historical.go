package zerodha

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"intraday-terminal/internal/api"
	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/types"
)

// Kite allows three historical requests per second per key.
const historicalRatePerSec = 3

// indexAliases maps Yahoo-style index tickers to Kite trading symbols.
var indexAliases = map[string]string{
	"^NSEI":    "NIFTY 50",
	"^NSEBANK": "NIFTY BANK",
	"^CNXIT":   "NIFTY IT",
	"^CRSMY":   "NIFTY MIDCAP 100",
	"^CRSLDX":  "NIFTY SMLCAP 100",
}

var kiteIntervals = map[types.Interval]string{
	types.Interval5m:  "5minute",
	types.Interval15m: "15minute",
	types.IntervalDay: "day",
}

// historicalClient is the part of *kiteconnect.Client the provider needs.
type historicalClient interface {
	GetHistoricalData(instrumentToken int, interval string, fromDate time.Time, toDate time.Time, continuous bool, OI bool) ([]kiteconnect.HistoricalData, error)
	GetInstrumentsByExchange(exchange string) (kiteconnect.Instruments, error)
}

type Params struct {
	APIKey      string
	AccessToken string
	Exchange    string
}

// Historical serves candles from the Kite Connect historical API.
type Historical struct {
	kc       historicalClient
	exchange string
	mapper   *instrumentMapper
	limiter  *api.RateLimiter
	now      func() time.Time

	loadMu sync.Mutex
	loaded bool
}

var _ interfaces.MarketData = (*Historical)(nil)

func NewHistorical(p Params) *Historical {
	kc := kiteconnect.New(p.APIKey)
	kc.SetAccessToken(p.AccessToken)
	return newHistorical(kc, p.Exchange)
}

func newHistorical(kc historicalClient, exchange string) *Historical {
	if exchange == "" {
		exchange = "NSE"
	}
	return &Historical{
		kc:       kc,
		exchange: exchange,
		mapper:   newInstrumentMapper(),
		limiter:  api.PerSecond(historicalRatePerSec),
		now:      time.Now,
	}
}

// NormalizeSymbol turns a Yahoo-style ticker into a Kite trading symbol.
func NormalizeSymbol(symbol string) string {
	if alias, ok := indexAliases[symbol]; ok {
		return alias
	}
	s := strings.TrimSuffix(symbol, ".NS")
	return strings.TrimSuffix(s, ".BO")
}

func (h *Historical) Candles(ctx context.Context, symbol string, lookbackDays int, interval types.Interval) ([]types.Candle, error) {
	kiteInterval, ok := kiteIntervals[interval]
	if !ok {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	if err := h.loadInstruments(ctx); err != nil {
		return nil, err
	}

	token, ok := h.mapper.getToken(NormalizeSymbol(symbol))
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", interfaces.ErrUnknownSymbol, symbol, h.exchange)
	}

	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	to := h.now().In(types.IST)
	from := to.AddDate(0, 0, -calendarSpan(lookbackDays))
	data, err := h.kc.GetHistoricalData(token, kiteInterval, from, to, false, false)
	if err != nil {
		return nil, fmt.Errorf("kite historical %s: %w", symbol, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNoData, symbol)
	}

	out := make([]types.Candle, 0, len(data))
	for _, d := range data {
		out = append(out, types.Candle{
			Ts:    d.Date.Time.In(types.IST),
			Open:  d.Open,
			High:  d.High,
			Low:   d.Low,
			Close: d.Close,
			Vol:   float64(d.Volume),
		})
	}
	return out, nil
}

// loadInstruments fetches the exchange instrument dump. A failed load is retried on the next call.
func (h *Historical) loadInstruments(ctx context.Context) error {
	h.loadMu.Lock()
	defer h.loadMu.Unlock()
	if h.loaded {
		return nil
	}

	insts, err := h.kc.GetInstrumentsByExchange(h.exchange)
	if err != nil {
		return fmt.Errorf("load %s instruments: %w", h.exchange, err)
	}
	for _, inst := range insts {
		h.mapper.addMapping(inst.Tradingsymbol, inst.InstrumentToken)
	}
	h.loaded = true
	logger.Info(ctx, "Loaded Kite instruments", "exchange", h.exchange, "count", h.mapper.size())
	return nil
}

// calendarSpan widens a trading-day lookback to cover weekends.
func calendarSpan(tradingDays int) int {
	if tradingDays < 1 {
		tradingDays = 1
	}
	return tradingDays + 2*(tradingDays/5+1)
}
