// Package main computes one stake preview and prints it. Contract
// parameters come from the chain when an RPC endpoint is given, or from
// flags for offline use.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/chain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/evm"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/fixedpoint"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/staking"
)

func main() {
	amount := flag.String("amount", "", "Stake amount in whole tokens (required)")
	days := flag.Int("days", 0, "Lock duration in days (required)")

	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("MONAD_RPC_ENDPOINT"), "Monad RPC HTTP endpoint (omit for offline mode)")
	tokenFlag := flag.String("token", os.Getenv("TOKEN_ADDRESS"), "Staking token contract address")

	// Offline parameters, used when no RPC endpoint is given
	basis := flag.Int64("basis", 10000, "BASIS denominator")
	shareRate := flag.String("share-rate", "1", "Share rate in whole tokens")
	bonusPerYear := flag.Int64("lpb-per-year-bps", 2000, "Time bonus per lock year, bps")
	bonusMaxYears := flag.Int64("lpb-max-years", 10, "Time bonus cap, years")
	sizeBonusMax := flag.Int64("bpb-max-bps", 1000, "Size bonus maximum, bps")
	sizeBonusCap := flag.String("bpb-cap", "1000000", "Size bonus saturation amount, whole tokens")

	flag.Parse()

	logger := log.New(os.Stderr, "", 0)

	if *amount == "" {
		logger.Fatal("--amount is required")
	}
	amountRaw, err := fixedpoint.ParseDecimal(*amount, 18)
	if err != nil {
		logger.Fatalf("--amount: %v", err)
	}
	if *days < 0 {
		logger.Fatal("--days must be non-negative")
	}

	var params domain.PreviewParams
	if *rpcEndpoint != "" {
		if !common.IsHexAddress(*tokenFlag) {
			logger.Fatalf("--token: invalid address %q", *tokenFlag)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		client := evm.NewHTTPClient(*rpcEndpoint)
		reader := chain.NewStakingReader(client, common.HexToAddress(*tokenFlag))
		params, err = reader.PreviewParams(ctx)
		if err != nil {
			logger.Fatalf("read contract parameters: %v", err)
		}
	} else {
		params, err = offlineParams(*basis, *shareRate, *bonusPerYear, *bonusMaxYears, *sizeBonusMax, *sizeBonusCap)
		if err != nil {
			logger.Fatal(err)
		}
	}

	preview, err := staking.ComputePreview(amountRaw, *days, params)
	if err != nil {
		logger.Fatalf("compute preview: %v", err)
	}

	fmt.Printf("Amount:      %s\n", staking.FormatToken(amountRaw))
	fmt.Printf("Lock days:   %d\n", *days)
	fmt.Printf("Time bonus:  %s\n", staking.BpsToPercent(preview.TimeBonusBps))
	fmt.Printf("Size bonus:  %s\n", staking.BpsToPercent(preview.SizeBonusBps))
	fmt.Printf("Total bonus: %s\n", staking.BpsToPercent(preview.TotalBonusBps))
	fmt.Printf("Multiplier:  %s\n", staking.FormatMultiplier(preview.MultiplierNum, preview.BasisPoints))
	fmt.Printf("Est. shares: %s\n", staking.FormatToken(preview.SharesRaw))
}

// offlineParams builds PreviewParams from flag values.
func offlineParams(basis int64, shareRate string, bonusPerYear, bonusMaxYears, sizeBonusMax int64, sizeBonusCap string) (domain.PreviewParams, error) {
	rate, err := fixedpoint.ParseDecimal(shareRate, 18)
	if err != nil {
		return domain.PreviewParams{}, fmt.Errorf("--share-rate: %w", err)
	}
	capRaw, err := fixedpoint.ParseDecimal(sizeBonusCap, 18)
	if err != nil {
		return domain.PreviewParams{}, fmt.Errorf("--bpb-cap: %w", err)
	}
	return domain.PreviewParams{
		BasisPoints:     big.NewInt(basis),
		ShareRate:       rate,
		BonusPerYearBps: big.NewInt(bonusPerYear),
		BonusMaxYears:   big.NewInt(bonusMaxYears),
		SizeBonusMaxBps: big.NewInt(sizeBonusMax),
		SizeBonusCap:    capRaw,
	}, nil
}
