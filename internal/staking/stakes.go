package staking

import (
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/fixedpoint"
)

const secondsPerDay = 24 * 60 * 60

// BuildWalletStakes turns raw stakesOf rows into the per-wallet view:
// empty slots are dropped, end timestamps derived, amounts formatted at
// the token's decimals, and the result ordered newest first.
func BuildWalletStakes(owner common.Address, rows []domain.StakeRow, decimals uint8) domain.WalletStakes {
	stakes := make([]domain.WalletStake, 0, len(rows))
	for i, row := range rows {
		if isEmptyRow(row) {
			continue
		}
		stakes = append(stakes, domain.WalletStake{
			Index:          i,
			StartTimestamp: row.StartTimestamp,
			LockDays:       row.LockDays,
			EndTimestamp:   row.StartTimestamp + int64(row.LockDays)*secondsPerDay,
			AmountRaw:      nz(row.Amount),
			SharesRaw:      nz(row.Shares),
			AutoRenew:      row.AutoRenew,
			Amount:         fixedpoint.FormatTruncated(nz(row.Amount), int(decimals), int(decimals)),
			Shares:         fixedpoint.FormatTruncated(nz(row.Shares), int(decimals), int(decimals)),
		})
	}

	sort.SliceStable(stakes, func(i, j int) bool {
		return stakes[i].StartTimestamp > stakes[j].StartTimestamp
	})

	return domain.WalletStakes{
		Owner:      owner,
		StakeCount: len(stakes),
		Stakes:     stakes,
	}
}

// isEmptyRow reports whether a row is an unused slot: zero start, zero
// amount, zero shares.
func isEmptyRow(row domain.StakeRow) bool {
	return row.StartTimestamp == 0 &&
		(row.Amount == nil || row.Amount.Sign() == 0) &&
		(row.Shares == nil || row.Shares.Sign() == 0)
}
