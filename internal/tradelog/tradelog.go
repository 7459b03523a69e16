package tradelog

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"intraday-terminal/internal/types"
)

var mu sync.Mutex

// SignalEntry is one journaled signal.
type SignalEntry struct {
	LoggedAt  string     `json:"logged_at"`
	Watchlist string     `json:"watchlist"`
	Bias      types.Bias `json:"bias"`
	types.Signal
}

func LogDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

// JournalPath is the day's signal journal under LogDir.
func JournalPath(t time.Time) string {
	d := t.In(types.IST).Format("2006-01-02")
	return filepath.Join(LogDir(), "signals", d+".txt")
}

// AppendSignals writes one JSON line per signal to the day's journal.
func AppendSignals(now time.Time, watchlist string, bias types.Bias, sigs []types.Signal) error {
	if len(sigs) == 0 {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()

	now = now.In(types.IST)
	p := JournalPath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, s := range sigs {
		b, err := json.Marshal(SignalEntry{
			LoggedAt:  now.Format("2006-01-02 15:04:05"),
			Watchlist: watchlist,
			Bias:      bias,
			Signal:    s,
		})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(f, string(b)); err != nil {
			return err
		}
	}
	return nil
}

// ReadSignals returns the day's journal. A missing journal yields no entries and no error;
// malformed lines are skipped.
func ReadSignals(day time.Time) ([]SignalEntry, error) {
	mu.Lock()
	defer mu.Unlock()

	f, err := os.Open(JournalPath(day))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []SignalEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e SignalEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// CompressOlder gzips journal files not modified for retentionDays.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(LogDir(), func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		// already compressed on an earlier pass
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			_ = os.Remove(gz)
			return nil
		}
		_ = os.Remove(p)
		return nil
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
