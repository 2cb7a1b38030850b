package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/observability"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

// ActionStore implements storage.ActionStore using PostgreSQL.
type ActionStore struct {
	pool *Pool
}

// NewActionStore creates a new ActionStore.
func NewActionStore(pool *Pool) *ActionStore {
	return &ActionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ActionStore = (*ActionStore)(nil)

// Insert adds a new action. Returns ErrDuplicateKey if tx_hash exists.
func (s *ActionStore) Insert(ctx context.Context, a *domain.StakeAction) error {
	if a == nil || a.Wallet == "" || a.TxHash == "" {
		return storage.ErrInvalidInput
	}
	if a.Kind != domain.ActionKindStake && a.Kind != domain.ActionKindUnstake {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO stake_actions (
			wallet, kind, amount_raw, lock_days, tx_hash, timestamp_ms, created_at
		) VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)
	`

	start := time.Now()
	_, err := s.pool.Exec(ctx, query,
		strings.ToLower(a.Wallet),
		a.Kind,
		a.AmountRaw,
		a.LockDays,
		strings.ToLower(a.TxHash),
		a.TimestampMs,
		time.Now().UnixMilli(),
	)
	observability.RecordDBQuery("postgres", "actions_insert", time.Since(start).Seconds(), err)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert action: %w", err)
	}
	return nil
}

// GetRecent retrieves the newest actions, ordered by timestamp DESC.
func (s *ActionStore) GetRecent(ctx context.Context, limit int) ([]*domain.StakeAction, error) {
	query := `
		SELECT id, wallet, kind, amount_raw::text, lock_days, tx_hash, timestamp_ms, created_at
		FROM stake_actions
		ORDER BY timestamp_ms DESC, id DESC
		LIMIT $1
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, limit)
	observability.RecordDBQuery("postgres", "actions_get_recent", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get recent actions: %w", err)
	}
	defer rows.Close()

	return scanActions(rows)
}

// GetByWallet retrieves the newest actions for a wallet, ordered by
// timestamp DESC.
func (s *ActionStore) GetByWallet(ctx context.Context, wallet string, limit int) ([]*domain.StakeAction, error) {
	query := `
		SELECT id, wallet, kind, amount_raw::text, lock_days, tx_hash, timestamp_ms, created_at
		FROM stake_actions
		WHERE wallet = $1
		ORDER BY timestamp_ms DESC, id DESC
		LIMIT $2
	`

	start := time.Now()
	rows, err := s.pool.Query(ctx, query, strings.ToLower(wallet), limit)
	observability.RecordDBQuery("postgres", "actions_get_by_wallet", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, fmt.Errorf("get actions by wallet: %w", err)
	}
	defer rows.Close()

	return scanActions(rows)
}

// scanActions scans multiple rows into a slice of StakeAction.
func scanActions(rows pgx.Rows) ([]*domain.StakeAction, error) {
	var actions []*domain.StakeAction

	for rows.Next() {
		var a domain.StakeAction
		err := rows.Scan(
			&a.ID,
			&a.Wallet,
			&a.Kind,
			&a.AmountRaw,
			&a.LockDays,
			&a.TxHash,
			&a.TimestampMs,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan action row: %w", err)
		}
		actions = append(actions, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action rows: %w", err)
	}

	return actions, nil
}
