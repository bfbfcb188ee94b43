package domain

import (
	"cloud.google.com/go/civil"
)

// Transaction is one disclosed trade as returned by a listing.
// EstimatedValue is nil when the disclosure carried no amount.
type Transaction struct {
	PartyName      string     `json:"party_name"`
	Ticker         string     `json:"ticker"`
	Side           string     `json:"side"`
	TradeDate      civil.Date `json:"trade_date"`
	EstimatedValue *float64   `json:"estimated_value"`
}

// Count is the size of a filtered transaction set.
type Count struct {
	Total int64 `json:"total"`
}

// Party is one distinct disclosing party.
type Party struct {
	PartyName string `json:"party_name"`
}

// Ticker is one distinct traded symbol.
type Ticker struct {
	Ticker string `json:"ticker"`
}
