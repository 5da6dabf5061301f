package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Numeric is a decimal value carried as its string form. CoinCap has served
// these fields both as JSON strings and as numbers, so both decode.
type Numeric string

func (n *Numeric) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		*n = Numeric(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*n = Numeric(num.String())
	return nil
}

func (n Numeric) String() string {
	return string(n)
}

// Asset is the current market snapshot of a single coin.
type Asset struct {
	ID                string  `json:"id"`
	Rank              Numeric `json:"rank"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Supply            Numeric `json:"supply"`
	MaxSupply         Numeric `json:"maxSupply"`
	MarketCapUsd      Numeric `json:"marketCapUsd"`
	VolumeUsd24Hr     Numeric `json:"volumeUsd24Hr"`
	PriceUsd          Numeric `json:"priceUsd"`
	ChangePercent24Hr Numeric `json:"changePercent24Hr"`
	Vwap24Hr          Numeric `json:"vwap24Hr"`
	Explorer          string  `json:"explorer,omitempty"`
}
