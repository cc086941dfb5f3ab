package models

import (
	"sort"
	"time"
)

// Quote is an in-memory snapshot of a stock's latest price and volume,
// rebuilt from storage each evaluation cycle. Never persisted.
type Quote struct {
	Symbol        string
	Name          string
	LastPrice     float64
	CurrentVolume int64
	AverageVolume float64
	LastUpdate    time.Time
}

// ClosingPrice is a scratch view of a daily price used while rebuilding
// the MACD series for one evaluation. Never persisted.
type ClosingPrice struct {
	Date     time.Time
	Price    float64
	Volume   int64
	EMA12    float64
	EMA26    float64
	MACDEMA9 float64
}

// MACD is the difference between the fast and slow exponential averages.
func (c *ClosingPrice) MACD() float64 {
	return c.EMA12 - c.EMA26
}

// SortClosingPricesAscending orders a series oldest-first, which is the
// order the moving averages must consume it in.
func SortClosingPricesAscending(prices []*ClosingPrice) {
	sort.Slice(prices, func(i, j int) bool {
		return prices[i].Date.Before(prices[j].Date)
	})
}
