package domain

import "cloud.google.com/go/civil"

// BucketAggregate is one ticker's activity within a calendar bucket.
type BucketAggregate struct {
	BucketStart   civil.Date `json:"bucket_start"`
	Ticker        string     `json:"ticker"`
	Senators      int64      `json:"n_senators"`
	Trades        int64      `json:"n_trades"`
	TotalEstimate float64    `json:"total_estimate"`
}

// MonthlyPoint holds the distinct buying and selling parties of one month.
// A nil series was projected away by the requested mode.
type MonthlyPoint struct {
	MonthStart   civil.Date `json:"month_start"`
	BuySenators  *int64     `json:"buy_senators,omitempty"`
	SellSenators *int64     `json:"sell_senators,omitempty"`
}
