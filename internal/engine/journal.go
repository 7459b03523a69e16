package engine

import (
	"sync"

	"intraday-terminal/internal/types"
)

// journalFilter remembers which signals were already journaled today. A signal repeats on
// every refresh until the next candle closes, so only its first sighting is written.
type journalFilter struct {
	mu   sync.Mutex
	day  string
	seen map[string]struct{}
}

func newJournalFilter() *journalFilter {
	return &journalFilter{seen: map[string]struct{}{}}
}

func (j *journalFilter) fresh(day string, sigs []types.Signal) []types.Signal {
	j.mu.Lock()
	defer j.mu.Unlock()

	if day != j.day {
		j.day = day
		j.seen = map[string]struct{}{}
	}
	out := make([]types.Signal, 0, len(sigs))
	for _, s := range sigs {
		k := s.Symbol + "|" + string(s.Direction) + "|" + s.TimeLabel
		if _, ok := j.seen[k]; ok {
			continue
		}
		j.seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}
