package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"intraday-terminal/internal/api"
	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/types"
)

const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Provider reads candles from the Yahoo Finance chart API.
type Provider struct {
	client *api.Client
	retry  *api.RetryConfig
}

var _ interfaces.MarketData = (*Provider)(nil)

// New builds a provider. baseURL may be empty for the public endpoint; rl may be nil.
func New(baseURL string, rl *api.RateLimiter, retry *api.RetryConfig) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	opts := []api.ClientOption{
		api.WithBaseURL(baseURL),
		api.WithTimeout(10 * time.Second),
		api.WithHeaders(api.YahooFinanceHeaders()),
		api.WithLogging(true),
	}
	if rl != nil {
		opts = append(opts, api.WithRateLimiter(rl))
	}
	if retry == nil {
		retry = api.DefaultRetryConfig()
	}
	return &Provider{client: api.NewClient(opts...), retry: retry}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		GMTOffset          int     `json:"gmtoffset"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (p *Provider) Candles(ctx context.Context, symbol string, lookbackDays int, interval types.Interval) ([]types.Candle, error) {
	if !interval.Valid() {
		return nil, fmt.Errorf("unsupported interval %q", interval)
	}
	if lookbackDays < 1 {
		lookbackDays = 1
	}

	path := fmt.Sprintf("/v8/finance/chart/%s?range=%dd&interval=%s",
		url.PathEscape(symbol), lookbackDays, url.QueryEscape(string(interval)))
	req := api.NewRequest(http.MethodGet, path).WithContext(ctx)

	resp, err := p.client.DoWithRetry(req, p.retry)
	if err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrUnknownSymbol, symbol)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	var cr chartResponse
	if err := resp.ParseJSON(&cr); err != nil {
		return nil, err
	}
	return parseChart(symbol, &cr)
}

func parseChart(symbol string, cr *chartResponse) ([]types.Candle, error) {
	if e := cr.Chart.Error; e != nil {
		return nil, fmt.Errorf("%w: %s: %s", interfaces.ErrUnknownSymbol, symbol, e.Description)
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNoData, symbol)
	}

	r := cr.Chart.Result[0]
	q := r.Indicators.Quote[0]
	out := make([]types.Candle, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		o, h, l, c := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		// Yahoo pads halted or not-yet-printed bars with nulls
		if o == nil || h == nil || l == nil || c == nil {
			continue
		}
		var v float64
		if vp := at(q.Volume, i); vp != nil {
			v = *vp
		}
		out = append(out, types.Candle{
			Ts:    time.Unix(ts, 0).In(types.IST),
			Open:  *o,
			High:  *h,
			Low:   *l,
			Close: *c,
			Vol:   v,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", interfaces.ErrNoData, symbol)
	}
	return out, nil
}

func at(s []*float64, i int) *float64 {
	if i < len(s) {
		return s[i]
	}
	return nil
}
