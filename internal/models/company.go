// Package models defines the Sentinel data model
package models

import "time"

// Company is a listed company known to Sentinel. Companies are seeded
// externally; the analyze pipeline only reads them.
type Company struct {
	Symbol    string    `json:"symbol" badgerhold:"key"`
	Name      string    `json:"name"`
	Exchange  string    `json:"exchange"`
	ScripCode string    `json:"scrip_code,omitempty"` // BSE scrip code, required for filings
	ISIN      string    `json:"isin,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// WatchlistEntry marks a symbol as eligible for scheduled analysis.
type WatchlistEntry struct {
	Symbol  string    `json:"symbol" badgerhold:"key"`
	AddedAt time.Time `json:"added_at"`
}
