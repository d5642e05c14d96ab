package models

// IndicatorResult is the per-symbol outcome of an RSI scan. Value is nil when the
// reading is undefined or the symbol could not be fetched; Category then holds
// "na" or an "error: ..." description.
type IndicatorResult struct {
	Symbol   string   `json:"symbol"`
	Value    *float64 `json:"value"`
	Category string   `json:"category"`
}
