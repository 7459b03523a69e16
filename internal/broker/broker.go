package broker

import (
	"fmt"
	"os"

	"intraday-terminal/internal/api"
	"intraday-terminal/internal/broker/static"
	"intraday-terminal/internal/broker/yahoo"
	"intraday-terminal/internal/broker/zerodha"
	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/store"
)

const (
	SourceYahoo  = "YAHOO"
	SourceKite   = "KITE"
	SourceStatic = "STATIC"
)

// New builds the market data provider named by cfg.DataSource.
func New(cfg *store.Config) (interfaces.MarketData, error) {
	switch cfg.DataSource {
	case SourceYahoo:
		return yahoo.New("", api.PerSecond(cfg.Market.RequestsPerSec), nil), nil
	case SourceKite:
		key := os.Getenv(cfg.Kite.APIKeyEnv)
		token := os.Getenv(cfg.Kite.AccessTokenEnv)
		if key == "" || token == "" {
			return nil, fmt.Errorf("KITE data source needs %s and %s", cfg.Kite.APIKeyEnv, cfg.Kite.AccessTokenEnv)
		}
		return zerodha.NewHistorical(zerodha.Params{
			APIKey:      key,
			AccessToken: token,
			Exchange:    cfg.Exchange,
		}), nil
	case SourceStatic:
		return static.New(), nil
	default:
		return nil, fmt.Errorf("unknown data_source %q", cfg.DataSource)
	}
}
