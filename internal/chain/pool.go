package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/evm"
)

// PoolReader reads a V3 pool and the ERC-20 metadata of its two sides.
type PoolReader struct {
	client evm.Client
	pool   common.Address
}

// NewPoolReader creates a reader for the pool at the given address.
func NewPoolReader(client evm.Client, pool common.Address) *PoolReader {
	return &PoolReader{client: client, pool: pool}
}

// ReadState reads slot0 plus both token addresses and their metadata.
// Token metadata failures degrade to defaults (18 decimals, empty
// symbol); a failed slot0 or token address read fails the whole call
// since no price can be derived without them.
func (r *PoolReader) ReadState(ctx context.Context) (*domain.PoolState, error) {
	out, err := r.client.Call(ctx, r.pool, evm.Calldata(evm.SelSlot0))
	if err != nil {
		return nil, fmt.Errorf("slot0: %w", err)
	}
	slot0, err := evm.DecodeSlot0(out)
	if err != nil {
		return nil, fmt.Errorf("decode slot0: %w", err)
	}

	token0, err := r.tokenAddress(ctx, evm.SelToken0)
	if err != nil {
		return nil, fmt.Errorf("token0: %w", err)
	}
	token1, err := r.tokenAddress(ctx, evm.SelToken1)
	if err != nil {
		return nil, fmt.Errorf("token1: %w", err)
	}

	meta := NewERC20Reader(r.client)
	state := &domain.PoolState{
		Pool:           r.pool,
		SqrtPriceX96:   slot0.SqrtPriceX96,
		Token0:         token0,
		Token1:         token1,
		Token0Decimals: meta.Decimals(ctx, token0),
		Token1Decimals: meta.Decimals(ctx, token1),
		Token0Symbol:   meta.Symbol(ctx, token0),
		Token1Symbol:   meta.Symbol(ctx, token1),
	}
	return state, nil
}

// Balances reads the pool's holdings of its own two tokens, the TVL
// input.
func (r *PoolReader) Balances(ctx context.Context, state *domain.PoolState) (bal0, bal1 *big.Int, err error) {
	erc20 := NewERC20Reader(r.client)
	bal0, err = erc20.BalanceOf(ctx, state.Token0, r.pool)
	if err != nil {
		return nil, nil, fmt.Errorf("token0 balance: %w", err)
	}
	bal1, err = erc20.BalanceOf(ctx, state.Token1, r.pool)
	if err != nil {
		return nil, nil, fmt.Errorf("token1 balance: %w", err)
	}
	return bal0, bal1, nil
}

func (r *PoolReader) tokenAddress(ctx context.Context, sel [4]byte) (common.Address, error) {
	out, err := r.client.Call(ctx, r.pool, evm.Calldata(sel))
	if err != nil {
		return common.Address{}, err
	}
	return evm.DecodeAddress(out)
}
