package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/evm"
)

// ERC20Reader reads standard token metadata and balances from arbitrary
// token contracts.
type ERC20Reader struct {
	client evm.Client
}

// NewERC20Reader creates an ERC-20 reader.
func NewERC20Reader(client evm.Client) *ERC20Reader {
	return &ERC20Reader{client: client}
}

// BalanceOf reads a token balance.
func (r *ERC20Reader) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := r.client.Call(ctx, token, evm.CalldataAddress(evm.SelBalanceOf, owner))
	if err != nil {
		return nil, fmt.Errorf("balanceOf: %w", err)
	}
	return evm.DecodeUint256(out)
}

// TotalSupply reads a token's total supply.
func (r *ERC20Reader) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	out, err := r.client.Call(ctx, token, evm.Calldata(evm.SelTotalSupply))
	if err != nil {
		return nil, fmt.Errorf("totalSupply: %w", err)
	}
	return evm.DecodeUint256(out)
}

// Decimals reads a token's decimals, falling back to 18 when the read
// fails. Most tokens on this chain are 18-decimal; a transient read
// failure must not zero out every formatted amount.
func (r *ERC20Reader) Decimals(ctx context.Context, token common.Address) uint8 {
	out, err := r.client.Call(ctx, token, evm.Calldata(evm.SelDecimals))
	if err != nil {
		return defaultDecimals
	}
	dec, err := evm.DecodeUint8(out)
	if err != nil {
		return defaultDecimals
	}
	return dec
}

// Symbol reads a token's symbol; empty string on failure.
func (r *ERC20Reader) Symbol(ctx context.Context, token common.Address) string {
	out, err := r.client.Call(ctx, token, evm.Calldata(evm.SelSymbol))
	if err != nil {
		return ""
	}
	sym, err := evm.DecodeString(out)
	if err != nil {
		return ""
	}
	return sym
}
