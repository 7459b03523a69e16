package store

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrUnknownWatchlist = errors.New("unknown watchlist")

type Watchlist struct {
	Name    string   `yaml:"name" json:"name"`
	Sector  bool     `yaml:"sector" json:"sector"`
	Symbols []string `yaml:"symbols" json:"symbols"`
}

type Index struct {
	Name   string `yaml:"name" json:"name"`
	Symbol string `yaml:"symbol" json:"symbol"`
}

type Config struct {
	DataSource      string      `yaml:"data_source"`
	Exchange        string      `yaml:"exchange"`
	RefreshMinutes  int         `yaml:"refresh_minutes"`
	Bias            string      `yaml:"bias"`
	ActiveWatchlist string      `yaml:"active_watchlist"`
	Watchlists      []Watchlist `yaml:"watchlists"`
	Indices         []Index     `yaml:"indices"`
	Scanner         struct {
		EMASpan           int     `yaml:"ema_span"`
		MinHistory        int     `yaml:"min_history"`
		MinSessionCandles int     `yaml:"min_session_candles"`
		OpeningRange      int     `yaml:"opening_range"`
		Offset            float64 `yaml:"offset"`
		Target1R          float64 `yaml:"target1_r"`
		Target2R          float64 `yaml:"target2_r"`
		Action            string  `yaml:"action"`
		LookbackDays      int     `yaml:"lookback_days"`
		Workers           int     `yaml:"workers"`
	} `yaml:"scanner"`
	Market struct {
		GapPct         float64  `yaml:"gap_pct"`
		MoverPct       float64  `yaml:"mover_pct"`
		SpikeMultiple  float64  `yaml:"spike_multiple"`
		TopMovers      int      `yaml:"top_movers"`
		DailyLookback  int      `yaml:"daily_lookback_days"`
		Workers        int      `yaml:"workers"`
		Universe       []string `yaml:"universe"`
		RequestsPerSec int      `yaml:"requests_per_sec"`
	} `yaml:"market"`
	News struct {
		Enabled    bool   `yaml:"enabled"`
		FeedURL    string `yaml:"feed_url"`
		MaxItems   int    `yaml:"max_items"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"news"`
	Kite struct {
		APIKeyEnv      string `yaml:"api_key_env"`
		AccessTokenEnv string `yaml:"access_token_env"`
	} `yaml:"kite"`
	Cache struct {
		Backend    string `yaml:"backend"`
		TTLSeconds int    `yaml:"ttl_seconds"`
		Redis      struct {
			Addr        string `yaml:"addr"`
			PasswordEnv string `yaml:"password_env"`
			DB          int    `yaml:"db"`
			Prefix      string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`
	Server struct {
		Enabled bool   `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"server"`
	Export struct {
		CSV               bool `yaml:"csv"`
		Journal           bool `yaml:"journal"`
		CompressAfterDays int  `yaml:"compress_after_days"`
	} `yaml:"export"`
}

func (c *Config) Validate() error {
	switch c.DataSource {
	case "YAHOO", "KITE", "STATIC":
	default:
		return fmt.Errorf("invalid data_source '%s': must be 'YAHOO', 'KITE' or 'STATIC'", c.DataSource)
	}
	switch c.RefreshMinutes {
	case 1, 3, 5, 15:
	default:
		return fmt.Errorf("invalid refresh_minutes %d: must be 1, 3, 5 or 15", c.RefreshMinutes)
	}
	if c.Bias != "BULLISH" && c.Bias != "BEARISH" {
		return fmt.Errorf("invalid bias '%s': must be 'BULLISH' or 'BEARISH'", c.Bias)
	}
	if len(c.Watchlists) == 0 {
		return errors.New("watchlists cannot be empty")
	}
	seen := make(map[string]bool, len(c.Watchlists))
	for _, w := range c.Watchlists {
		if w.Name == "" {
			return errors.New("watchlist name cannot be empty")
		}
		if seen[w.Name] {
			return fmt.Errorf("duplicate watchlist '%s'", w.Name)
		}
		seen[w.Name] = true
	}
	if _, err := c.Watchlist(c.ActiveWatchlist); err != nil {
		return fmt.Errorf("active_watchlist: %w", err)
	}
	if c.Scanner.Offset < 0 {
		return fmt.Errorf("scanner.offset must be >= 0, got %.2f", c.Scanner.Offset)
	}
	if c.Scanner.Target1R <= 0 || c.Scanner.Target2R < c.Scanner.Target1R {
		return fmt.Errorf("scanner targets must satisfy 0 < target1_r <= target2_r, got %.2f/%.2f",
			c.Scanner.Target1R, c.Scanner.Target2R)
	}
	if c.Scanner.MinSessionCandles < 2 {
		return fmt.Errorf("scanner.min_session_candles must be >= 2, got %d", c.Scanner.MinSessionCandles)
	}
	switch c.Cache.Backend {
	case "MEMORY", "REDIS", "NONE":
	default:
		return fmt.Errorf("cache.backend must be 'MEMORY', 'REDIS' or 'NONE', got '%s'", c.Cache.Backend)
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	return nil
}

// Watchlist looks a watchlist up by name.
func (c *Config) Watchlist(name string) (Watchlist, error) {
	for _, w := range c.Watchlists {
		if w.Name == name {
			return w, nil
		}
	}
	return Watchlist{}, fmt.Errorf("%w: '%s'", ErrUnknownWatchlist, name)
}

// MarketUniverse is the symbol set used for breadth, movers, gaps and volume spikes:
// market.universe when given, else every watchlist symbol. Order is first appearance.
func (c *Config) MarketUniverse() []string {
	src := c.Market.Universe
	if len(src) == 0 {
		for _, w := range c.Watchlists {
			src = append(src, w.Symbols...)
		}
	}
	seen := make(map[string]bool, len(src))
	out := make([]string, 0, len(src))
	for _, s := range src {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshMinutes) * time.Minute
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	applyDefaults(&c)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	c.DataSource = strings.ToUpper(c.DataSource)
	if c.DataSource == "" {
		c.DataSource = "YAHOO"
	}
	if c.Exchange == "" {
		c.Exchange = "NSE"
	}
	if c.RefreshMinutes == 0 {
		c.RefreshMinutes = 1
	}
	c.Bias = strings.ToUpper(c.Bias)
	if c.Bias == "" {
		c.Bias = "BULLISH"
	}
	if c.ActiveWatchlist == "" && len(c.Watchlists) > 0 {
		c.ActiveWatchlist = c.Watchlists[0].Name
	}

	s := &c.Scanner
	if s.EMASpan == 0 {
		s.EMASpan = 10
	}
	if s.MinHistory == 0 {
		s.MinHistory = 15
	}
	if s.MinSessionCandles == 0 {
		s.MinSessionCandles = 5
	}
	if s.OpeningRange == 0 {
		s.OpeningRange = 3
	}
	if s.Offset == 0 {
		s.Offset = 0.50
	}
	if s.Target1R == 0 {
		s.Target1R = 2
	}
	if s.Target2R == 0 {
		s.Target2R = 3
	}
	if s.Action == "" {
		s.Action = "Book 50% @ 1:3"
	}
	if s.LookbackDays == 0 {
		s.LookbackDays = 5
	}
	if s.Workers == 0 {
		s.Workers = 8
	}

	m := &c.Market
	if m.GapPct == 0 {
		m.GapPct = 3
	}
	if m.MoverPct == 0 {
		m.MoverPct = 2
	}
	if m.SpikeMultiple == 0 {
		m.SpikeMultiple = 1.5
	}
	if m.TopMovers == 0 {
		m.TopMovers = 4
	}
	if m.DailyLookback == 0 {
		m.DailyLookback = 10
	}
	if m.Workers == 0 {
		m.Workers = 16
	}
	if m.RequestsPerSec == 0 {
		m.RequestsPerSec = 10
	}

	if c.News.FeedURL == "" {
		c.News.FeedURL = "https://economictimes.indiatimes.com/markets/rssfeeds/2146842.cms"
	}
	if c.News.MaxItems == 0 {
		c.News.MaxItems = 5
	}
	if c.News.TTLSeconds == 0 {
		c.News.TTLSeconds = 300
	}

	if c.Kite.APIKeyEnv == "" {
		c.Kite.APIKeyEnv = "KITE_API_KEY"
	}
	if c.Kite.AccessTokenEnv == "" {
		c.Kite.AccessTokenEnv = "KITE_ACCESS_TOKEN"
	}

	c.Cache.Backend = strings.ToUpper(c.Cache.Backend)
	if c.Cache.Backend == "" {
		c.Cache.Backend = "MEMORY"
	}
	if c.Cache.TTLSeconds == 0 {
		c.Cache.TTLSeconds = 30
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "localhost:6379"
	}
	if c.Cache.Redis.PasswordEnv == "" {
		c.Cache.Redis.PasswordEnv = "REDIS_PASSWORD"
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "intraday"
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "intraday.signals"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Export.CompressAfterDays == 0 {
		c.Export.CompressAfterDays = 7
	}
}
