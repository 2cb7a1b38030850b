package domain

// StakeAction is one observed stake or unstake transaction, kept as a
// recent-activity log for the dashboard.
// Corresponds to stake_actions table in PostgreSQL.
type StakeAction struct {
	ID          int64  // BIGSERIAL primary key
	Wallet      string // lowercase hex address
	Kind        string // "stake" | "unstake"
	AmountRaw   string // 1e18 units, decimal string
	LockDays    int    // 0 for unstakes
	TxHash      string
	TimestampMs int64 // unix ms
	CreatedAt   int64 // record creation timestamp (ms)
}

// Stake action kinds
const (
	ActionKindStake   = "stake"
	ActionKindUnstake = "unstake"
)
