// Package chain turns raw eth_call traffic into the typed reads the
// service needs: staking contract parameters, global counters, per-wallet
// stake rows, and pool state. All contract addresses are explicit
// configuration; nothing is compiled in.
package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/evm"
)

// defaultDecimals is assumed when an ERC-20 decimals() read fails.
const defaultDecimals = 18

// StakingReader reads the staking token contract.
type StakingReader struct {
	client evm.Client
	token  common.Address
}

// NewStakingReader creates a reader for the staking token at the given
// address.
func NewStakingReader(client evm.Client, token common.Address) *StakingReader {
	return &StakingReader{client: client, token: token}
}

// Token returns the staking token address.
func (r *StakingReader) Token() common.Address {
	return r.token
}

// PreviewParams reads the six immutable preview parameters in one pass.
// Any single failed read fails the whole call: a partial parameter set
// would silently skew every preview computed from it.
func (r *StakingReader) PreviewParams(ctx context.Context) (domain.PreviewParams, error) {
	var (
		p   domain.PreviewParams
		err error
	)
	reads := []struct {
		name string
		sel  [4]byte
		dst  **big.Int
	}{
		{"BASIS", evm.SelBasis, &p.BasisPoints},
		{"shareRate", evm.SelShareRate, &p.ShareRate},
		{"LPB_PER_YEAR_BPS", evm.SelLpbPerYearBps, &p.BonusPerYearBps},
		{"LPB_MAX_YEARS", evm.SelLpbMaxYears, &p.BonusMaxYears},
		{"BPB_MAX_BPS", evm.SelBpbMaxBps, &p.SizeBonusMaxBps},
		{"BPB_CAP", evm.SelBpbCap, &p.SizeBonusCap},
	}
	for _, read := range reads {
		*read.dst, err = r.uint256(ctx, r.token, read.sel)
		if err != nil {
			return domain.PreviewParams{}, fmt.Errorf("read %s: %w", read.name, err)
		}
	}
	return p, nil
}

// TotalSupply reads the ERC-20 total supply.
func (r *StakingReader) TotalSupply(ctx context.Context) (*big.Int, error) {
	return r.uint256(ctx, r.token, evm.SelTotalSupply)
}

// TotalShares reads the aggregate shares across all stakes.
func (r *StakingReader) TotalShares(ctx context.Context) (*big.Int, error) {
	return r.uint256(ctx, r.token, evm.SelTotalShares)
}

// ShareRate reads the current share rate.
func (r *StakingReader) ShareRate(ctx context.Context) (*big.Int, error) {
	return r.uint256(ctx, r.token, evm.SelShareRate)
}

// StakesOf reads all stake slots for an owner, including empty ones.
// Filtering is the caller's concern.
func (r *StakingReader) StakesOf(ctx context.Context, owner common.Address) ([]domain.StakeRow, error) {
	out, err := r.client.Call(ctx, r.token, evm.CalldataAddress(evm.SelStakesOf, owner))
	if err != nil {
		return nil, fmt.Errorf("stakesOf: %w", err)
	}
	slots, err := evm.DecodeStakeSlots(out)
	if err != nil {
		return nil, fmt.Errorf("decode stakesOf: %w", err)
	}

	rows := make([]domain.StakeRow, len(slots))
	for i, s := range slots {
		rows[i] = domain.StakeRow{
			StartTimestamp: s.StartTimestamp,
			LockDays:       s.LockDays,
			Amount:         s.Amount,
			Shares:         s.Shares,
			AutoRenew:      s.AutoRenew,
		}
	}
	return rows, nil
}

func (r *StakingReader) uint256(ctx context.Context, to common.Address, sel [4]byte) (*big.Int, error) {
	out, err := r.client.Call(ctx, to, evm.Calldata(sel))
	if err != nil {
		return nil, err
	}
	return evm.DecodeUint256(out)
}
