package models

// AutoSymbols stands in for the symbols list when the caller lets the service
// pick the top symbols by volume.
const AutoSymbols = "AUTO_TOP200"

// RSIRequest is the decoded query of GET /api/rsi.
// Symbols is nil when the query did not carry a symbols parameter at all.
type RSIRequest struct {
	Symbols  *string `json:"-"`
	Interval string  `query:"interval" json:"interval" default:"1d" validate:"required,oneof=1s 1m 3m 5m 15m 30m 1h 2h 4h 6h 8h 12h 1d 3d 1w 1M"`
	Limit    int     `query:"limit" json:"limit" default:"500" validate:"gte=1"`
	Period   int     `query:"period" json:"period" default:"14" validate:"gte=1"`
}
