package models

import "time"

// PriceBar is one OHLCV bar keyed on (symbol, timestamp). Fields the
// source omits or cannot be coerced to a finite number stay nil.
type PriceBar struct {
	ID     string    `json:"-" badgerhold:"key"` // symbol|ts
	Symbol string    `json:"symbol" badgerhold:"index"`
	TS     time.Time `json:"ts"`
	Open   *float64  `json:"open,omitempty"`
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Close  *float64  `json:"close,omitempty"`
	Volume *float64  `json:"volume,omitempty"`
}

// Timeline is the combined read view for a symbol and date range.
type Timeline struct {
	Symbol    string      `json:"symbol"`
	Prices    []PriceBar  `json:"prices"`
	Filings   []Filing    `json:"filings"`
	MoodDaily []MoodDaily `json:"mood_daily"`
	Headlines []Headline  `json:"headlines"`
}
