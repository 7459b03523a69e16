package server

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError is one rejected request parameter.
type ValidationError struct {
	Code    string                 `json:"code,omitempty" example:"ERR_ONEOF"`
	Field   string                 `json:"field,omitempty" example:"bias"`
	Message string                 `json:"message,omitempty" example:"bias must be one of: BULLISH, BEARISH"`
	Params  map[string]interface{} `json:"params,omitempty"`
}

type scanRequest struct {
	Watchlist string `query:"watchlist"`
	Bias      string `query:"bias" default:"BULLISH" validate:"oneof=BULLISH BEARISH"`
	Detail    bool   `query:"detail"`
}

func (r *scanRequest) normalize() {
	r.Bias = upper(r.Bias)
}

type scanResponse struct {
	Watchlist string      `json:"watchlist"`
	Bias      string      `json:"bias"`
	Signals   interface{} `json:"signals"`
	Outcomes  interface{} `json:"outcomes,omitempty"`
}

type watchlistView struct {
	Name    string   `json:"name"`
	Sector  bool     `json:"sector"`
	Active  bool     `json:"active"`
	Symbols []string `json:"symbols"`
}
