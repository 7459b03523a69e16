package broker

import (
	"testing"

	"intraday-terminal/internal/broker/static"
	"intraday-terminal/internal/broker/yahoo"
	"intraday-terminal/internal/broker/zerodha"
	"intraday-terminal/internal/store"
)

func TestNew(t *testing.T) {
	cfg := &store.Config{DataSource: SourceStatic}
	md, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := md.(*static.Provider); !ok {
		t.Errorf("expected static provider, got %T", md)
	}

	cfg.DataSource = SourceYahoo
	cfg.Market.RequestsPerSec = 5
	if md, err = New(cfg); err != nil {
		t.Fatal(err)
	}
	if _, ok := md.(*yahoo.Provider); !ok {
		t.Errorf("expected yahoo provider, got %T", md)
	}
}

func TestNew_KiteNeedsCredentials(t *testing.T) {
	cfg := &store.Config{DataSource: SourceKite, Exchange: "NSE"}
	cfg.Kite.APIKeyEnv = "TEST_KITE_KEY"
	cfg.Kite.AccessTokenEnv = "TEST_KITE_TOKEN"
	t.Setenv("TEST_KITE_KEY", "")
	t.Setenv("TEST_KITE_TOKEN", "")

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error without credentials")
	}

	t.Setenv("TEST_KITE_KEY", "key")
	t.Setenv("TEST_KITE_TOKEN", "token")
	md, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := md.(*zerodha.Historical); !ok {
		t.Errorf("expected kite provider, got %T", md)
	}
}

func TestNew_Unknown(t *testing.T) {
	if _, err := New(&store.Config{DataSource: "CSV"}); err == nil {
		t.Fatal("expected error for unknown source")
	}
}
