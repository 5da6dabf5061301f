package models

// HistoryTick is one raw point of the upstream price history.
type HistoryTick struct {
	PriceUsd Numeric `json:"priceUsd"`
	Time     int64   `json:"time"`
}

// PricePoint is a display-ready point of a price series.
type PricePoint struct {
	Time     int64  `json:"time"`
	PriceUsd string `json:"priceUsd"`
	Date     string `json:"date"`
}
