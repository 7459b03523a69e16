package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"intraday-terminal/internal/api"
	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/types"
)

const chartBody = `{"chart":{"result":[{"meta":{"symbol":"RELIANCE.NS","gmtoffset":19800,"regularMarketPrice":2901.5},
"timestamp":[1715658300,1715658600,1715658900],
"indicators":{"quote":[{"open":[2900.0,null,2903.0],"high":[2905.0,null,2906.0],"low":[2898.0,null,2899.5],
"close":[2902.0,null,2901.5],"volume":[12000,null,null]}]}}],"error":null}}`

func TestProvider_Candles(t *testing.T) {
	var gotPath, gotQuery, gotReferer string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotReferer = r.Header.Get("Referer")
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	p := New(srv.URL, api.PerSecond(100), nil)
	cs, err := p.Candles(context.Background(), "RELIANCE.NS", 5, types.Interval5m)
	if err != nil {
		t.Fatalf("Candles: %v", err)
	}

	if gotPath != "/v8/finance/chart/RELIANCE.NS" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotQuery != "range=5d&interval=5m" {
		t.Errorf("unexpected query %s", gotQuery)
	}
	if gotReferer == "" {
		t.Error("expected Yahoo headers on request")
	}

	if len(cs) != 2 {
		t.Fatalf("expected null bar dropped, got %d candles", len(cs))
	}
	if cs[0].Close != 2902 || cs[0].Vol != 12000 {
		t.Errorf("unexpected first candle %+v", cs[0])
	}
	if cs[1].Vol != 0 {
		t.Errorf("null volume should read as 0, got %v", cs[1].Vol)
	}
	if got := cs[0].Ts.In(types.IST).Format("2006-01-02 15:04"); got != "2024-05-14 09:15" {
		t.Errorf("expected 09:15 IST bar, got %s", got)
	}
	if !cs[1].Ts.After(cs[0].Ts) {
		t.Error("candles should be ascending")
	}
}

func TestProvider_EscapesIndexSymbol(t *testing.T) {
	var raw string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.EscapedPath()
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, nil, nil).Candles(context.Background(), "^NSEI", 10, types.IntervalDay); err != nil {
		t.Fatal(err)
	}
	if raw != "/v8/finance/chart/%5ENSEI" {
		t.Errorf("index symbol not escaped: %s", raw)
	}
}

func TestProvider_UnknownSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil, nil).Candles(context.Background(), "NOPE.NS", 5, types.Interval5m)
	if !errors.Is(err, interfaces.ErrUnknownSymbol) {
		t.Fatalf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestProvider_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{},"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil, nil).Candles(context.Background(), "TCS.NS", 5, types.Interval5m)
	if !errors.Is(err, interfaces.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestProvider_RetriesServerErrors(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(chartBody))
	}))
	defer srv.Close()

	retry := &api.RetryConfig{MaxAttempts: 2, InitialWait: time.Millisecond, MaxWait: time.Millisecond}
	if _, err := New(srv.URL, nil, retry).Candles(context.Background(), "TCS.NS", 5, types.Interval5m); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestProvider_BadInterval(t *testing.T) {
	if _, err := New("http://unused", nil, nil).Candles(context.Background(), "TCS.NS", 5, "2h"); err == nil {
		t.Fatal("expected error for unsupported interval")
	}
}
