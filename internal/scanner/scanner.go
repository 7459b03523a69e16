package scanner

import (
	"context"
	"fmt"
	"sync"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/logger"
	"intraday-terminal/internal/types"
)

// Scanner fetches candles for each symbol and applies Evaluate.
type Scanner struct {
	md interfaces.MarketData
	p  Params
}

var _ interfaces.Scanner = (*Scanner)(nil)

func New(md interfaces.MarketData, p Params) *Scanner {
	return &Scanner{md: md, p: p}
}

// Params returns the rule parameters in use.
func (s *Scanner) Params() Params { return s.p }

// Scan returns the signals of ScanDetailed; failed symbols count as no setup.
func (s *Scanner) Scan(ctx context.Context, symbols []string, bias types.Bias) []types.Signal {
	return Signals(s.ScanDetailed(ctx, symbols, bias))
}

// ScanDetailed evaluates every symbol and returns one outcome per symbol in input order.
// Fetches run on a bounded pool; a failing or panicking symbol never aborts the batch.
func (s *Scanner) ScanDetailed(ctx context.Context, symbols []string, bias types.Bias) []types.Outcome {
	out := make([]types.Outcome, len(symbols))
	if len(symbols) == 0 {
		return out
	}

	workers := s.p.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(symbols) {
		workers = len(symbols)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = s.scanOne(ctx, symbols[i], bias)
			}
		}()
	}
	for i := range symbols {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

func (s *Scanner) scanOne(ctx context.Context, symbol string, bias types.Bias) (out types.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = failed(symbol, types.ReasonPanic, fmt.Errorf("panic: %v", r))
			logger.Error(ctx, "Recovered panic while scanning symbol", "symbol", symbol, "panic", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return failed(symbol, types.ReasonFetchFailed, err)
	}

	candles, err := s.md.Candles(ctx, symbol, s.p.LookbackDays, types.Interval5m)
	if err != nil {
		logger.Debug(ctx, "Candle fetch failed", "symbol", symbol, "error", err)
		return failed(symbol, types.ReasonFetchFailed, fmt.Errorf("fetch candles: %w", err))
	}

	return Evaluate(symbol, candles, bias, s.p)
}
