package domain

// GlobalStats is the dashboard statistics payload. Fields are display
// strings produced by the fixed-point formatters; optional fields stay
// empty when the underlying chain read was unavailable, and the UI shows
// a placeholder instead of a fabricated number.
type GlobalStats struct {
	TotalSupply string `json:"total_supply"`
	TotalShares string `json:"total_shares"`
	ShareRate   string `json:"share_rate"` // fixed 3dp

	PriceMon string `json:"price_mon,omitempty"` // token priced in MON
	MonUsd   string `json:"mon_usd,omitempty"`   // MON priced in USD
	PriceUsd string `json:"price_usd,omitempty"` // token priced in USD

	PoolTvlMon string `json:"pool_tvl_mon,omitempty"`
	PoolTvlUsd string `json:"pool_tvl_usd,omitempty"`

	MarketCapMon string `json:"market_cap_mon,omitempty"`
	MarketCapUsd string `json:"market_cap_usd,omitempty"`

	CirculatingSupply string `json:"circulating_supply,omitempty"`
	StakedEst         string `json:"staked_est,omitempty"`
	StakedPct         string `json:"staked_pct,omitempty"`
	PoolReserves      string `json:"pool_reserves,omitempty"`

	BlockNumber string `json:"block_number"`
	UpdatedAtMs int64  `json:"updated_at_ms"`
}

// StatsSnapshot is the raw-value form of one refresh cycle, persisted for
// history. Big integers are kept as decimal strings so nothing is rounded
// on the way to NUMERIC columns.
// Corresponds to stats_snapshots table in PostgreSQL.
type StatsSnapshot struct {
	ID          int64  // BIGSERIAL primary key
	BlockNumber int64
	TimestampMs int64  // unix ms
	TotalSupply string // raw, 1e18 units
	TotalShares string
	ShareRate   string
	PriceMonX18 string // empty when unavailable
	PriceUsdX18 string
	CreatedAt   int64 // record creation timestamp (ms)
}
