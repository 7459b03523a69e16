package server

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/scanner"
	"intraday-terminal/internal/store"
	"intraday-terminal/internal/types"
)

// MarketView is the market overview the API exposes.
type MarketView interface {
	Dashboard(ctx context.Context) (*types.Dashboard, error)
	Gaps(ctx context.Context) ([]types.Gap, error)
	OpeningMovers(ctx context.Context) ([]types.Quote, error)
	VolumeSpikes(ctx context.Context) ([]types.VolumeSpike, error)
}

type NewsView interface {
	Headlines(ctx context.Context) ([]types.Headline, error)
}

// Deps are the services behind the routes. Market, News, Engine and Hub are optional;
// their routes answer 503 when missing.
type Deps struct {
	Config  *store.Config
	Scanner interfaces.Scanner
	Engine  interfaces.Engine
	Market  MarketView
	News    NewsView
	Hub     *Hub
}

type Handler struct {
	d Deps
}

func NewHandler(d Deps) *Handler {
	return &Handler{d: d}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)

	api := e.Group("/api")
	api.GET("/watchlists", h.watchlists)
	api.GET("/scan", h.scan)
	api.GET("/signals/latest", h.latest)
	api.GET("/dashboard", h.dashboard)
	api.GET("/gaps", h.gaps)
	api.GET("/movers/opening", h.openingMovers)
	api.GET("/volume-spikes", h.volumeSpikes)
	api.GET("/news", h.news)

	if h.d.Hub != nil {
		e.GET("/ws/signals", h.d.Hub.ServeWS)
	}
}

func (h *Handler) health(c echo.Context) error {
	return SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *Handler) watchlists(c echo.Context) error {
	out := make([]watchlistView, 0, len(h.d.Config.Watchlists))
	for _, w := range h.d.Config.Watchlists {
		out = append(out, watchlistView{
			Name:    w.Name,
			Sector:  w.Sector,
			Active:  w.Name == h.d.Config.ActiveWatchlist,
			Symbols: w.Symbols,
		})
	}
	return SuccessResponse(c, out)
}

func (h *Handler) scan(c echo.Context) error {
	req := &scanRequest{}
	if errs := ReadAndValidateRequest(c, req); errs != nil {
		return BadRequestResponse(c, errs)
	}
	if req.Watchlist == "" {
		req.Watchlist = h.d.Config.ActiveWatchlist
	}

	wl, err := h.d.Config.Watchlist(req.Watchlist)
	if err != nil {
		return NotFoundResponse(c, []ValidationError{{
			Code:    "ERR_NOT_FOUND",
			Field:   "watchlist",
			Message: err.Error(),
		}})
	}

	ctx := c.Request().Context()
	outcomes := h.d.Scanner.ScanDetailed(ctx, wl.Symbols, types.Bias(req.Bias))
	if err := ctx.Err(); err != nil {
		return UpstreamErrorResponse(c, err)
	}

	resp := scanResponse{
		Watchlist: wl.Name,
		Bias:      req.Bias,
		Signals:   scanner.Signals(outcomes),
	}
	if req.Detail {
		resp.Outcomes = outcomes
	}
	return SuccessResponse(c, resp)
}

func (h *Handler) latest(c echo.Context) error {
	if h.d.Engine == nil {
		return UnavailableResponse(c, "engine is not running")
	}
	r := h.d.Engine.Latest()
	if r == nil {
		return NotFoundResponse(c, "no scan has completed yet")
	}
	return SuccessResponse(c, r)
}

func (h *Handler) dashboard(c echo.Context) error {
	if h.d.Market == nil {
		return UnavailableResponse(c, "market data is not configured")
	}
	v, err := h.d.Market.Dashboard(c.Request().Context())
	return respond(c, v, err)
}

func (h *Handler) gaps(c echo.Context) error {
	if h.d.Market == nil {
		return UnavailableResponse(c, "market data is not configured")
	}
	v, err := h.d.Market.Gaps(c.Request().Context())
	return respond(c, v, err)
}

func (h *Handler) openingMovers(c echo.Context) error {
	if h.d.Market == nil {
		return UnavailableResponse(c, "market data is not configured")
	}
	v, err := h.d.Market.OpeningMovers(c.Request().Context())
	return respond(c, v, err)
}

func (h *Handler) volumeSpikes(c echo.Context) error {
	if h.d.Market == nil {
		return UnavailableResponse(c, "market data is not configured")
	}
	v, err := h.d.Market.VolumeSpikes(c.Request().Context())
	return respond(c, v, err)
}

func (h *Handler) news(c echo.Context) error {
	if h.d.News == nil {
		return UnavailableResponse(c, "news is disabled")
	}
	v, err := h.d.News.Headlines(c.Request().Context())
	return respond(c, v, err)
}

func respond(c echo.Context, v interface{}, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return UnavailableResponse(c, err.Error())
		}
		return UpstreamErrorResponse(c, err)
	}
	return SuccessResponse(c, v)
}
