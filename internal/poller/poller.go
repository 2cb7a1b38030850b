// Package poller drives the refresh loop: on an interval, and optionally
// on new-head notifications, it reads the staking contract and pools,
// aggregates one stats payload, caches it for the API, and persists the
// snapshot and price observations.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/chain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/evm"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/observability"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/poolprice"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/stats"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

// Default loop timings.
const (
	DefaultInterval   = 30 * time.Second
	DefaultMinSpacing = 5 * time.Second
)

// Options for creating a Runner.
type Options struct {
	// Required
	Client  evm.Client
	Staking *chain.StakingReader

	// Pools (optional; nil skips the corresponding stats fields)
	MonPool    *chain.PoolReader
	UsdPool    *chain.PoolReader
	MonUsdPool *chain.PoolReader

	// Vesting is the treasury vesting wallet; zero disables the
	// circulating-supply computation.
	Vesting common.Address

	// Stores (optional; nil disables persistence)
	Snapshots   storage.SnapshotStore
	PricePoints storage.PricePointStore

	// Heads delivers new-head notifications that trigger early refreshes.
	// Nil means interval-only operation.
	Heads <-chan evm.Head

	// Interval between scheduled refreshes.
	Interval time.Duration
	// MinSpacing is the minimum gap between head-triggered refreshes, so
	// a fast chain cannot turn every block into a full read cycle.
	MinSpacing time.Duration

	Verbose bool
}

// Runner executes refresh cycles and caches the latest result.
type Runner struct {
	client  evm.Client
	staking *chain.StakingReader

	monPool    *chain.PoolReader
	usdPool    *chain.PoolReader
	monUsdPool *chain.PoolReader
	vesting    common.Address

	snapshots   storage.SnapshotStore
	pricePoints storage.PricePointStore

	heads      <-chan evm.Head
	interval   time.Duration
	minSpacing time.Duration
	verbose    bool

	mu     sync.RWMutex
	latest *domain.GlobalStats
	params *domain.PreviewParams
}

// New creates a new Runner.
func New(opts Options) *Runner {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	minSpacing := opts.MinSpacing
	if minSpacing <= 0 {
		minSpacing = DefaultMinSpacing
	}

	return &Runner{
		client:      opts.Client,
		staking:     opts.Staking,
		monPool:     opts.MonPool,
		usdPool:     opts.UsdPool,
		monUsdPool:  opts.MonUsdPool,
		vesting:     opts.Vesting,
		snapshots:   opts.Snapshots,
		pricePoints: opts.PricePoints,
		heads:       opts.Heads,
		interval:    interval,
		minSpacing:  minSpacing,
		verbose:     opts.Verbose,
	}
}

// Latest returns the most recently aggregated stats payload. The second
// return is false until the first successful cycle.
func (r *Runner) Latest() (domain.GlobalStats, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return domain.GlobalStats{}, false
	}
	return *r.latest, true
}

// Params returns the preview parameters read in the last cycle. The
// second return is false until the first successful cycle.
func (r *Runner) Params() (domain.PreviewParams, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.params == nil {
		return domain.PreviewParams{}, false
	}
	return *r.params, true
}

// Run executes refresh cycles until the context is cancelled. The first
// cycle runs immediately.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.RunOnce(ctx); err != nil {
		r.log("initial refresh: %v", err)
	}
	lastRun := time.Now()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			if err := r.RunOnce(ctx); err != nil {
				r.log("refresh: %v", err)
			}
			lastRun = time.Now()

		case head, ok := <-r.heads:
			if !ok {
				// Head feed closed; keep running on the interval alone
				r.heads = nil
				continue
			}
			observability.RecordHeadReceived()
			if time.Since(lastRun) < r.minSpacing {
				continue
			}
			r.log("head %d triggered refresh", head.Number)
			if err := r.RunOnce(ctx); err != nil {
				r.log("refresh: %v", err)
			}
			lastRun = time.Now()
		}
	}
}

// RunOnce executes a single refresh cycle: chain reads, aggregation,
// cache update, persistence. Required reads (block, supply, shares,
// rate, preview params) fail the cycle; pool and balance reads degrade
// to absent stats fields.
func (r *Runner) RunOnce(ctx context.Context) error {
	start := time.Now()

	block, err := r.client.BlockNumber(ctx)
	if err != nil {
		observability.RecordRefreshError("block_number")
		return fmt.Errorf("block number: %w", err)
	}

	params, err := r.staking.PreviewParams(ctx)
	if err != nil {
		observability.RecordRefreshError("preview_params")
		return fmt.Errorf("preview params: %w", err)
	}

	in := stats.Inputs{
		BlockNumber: block,
		UpdatedAtMs: time.Now().UnixMilli(),
		Token:       r.staking.Token(),
	}

	if in.TotalSupply, err = r.staking.TotalSupply(ctx); err != nil {
		observability.RecordRefreshError("total_supply")
		return fmt.Errorf("total supply: %w", err)
	}
	if in.TotalShares, err = r.staking.TotalShares(ctx); err != nil {
		observability.RecordRefreshError("total_shares")
		return fmt.Errorf("total shares: %w", err)
	}
	in.ShareRate = params.ShareRate

	erc20 := chain.NewERC20Reader(r.client)
	in.TokenSymbol = erc20.Symbol(ctx, r.staking.Token())

	// Pool reads degrade: a missing pool leaves its fields absent
	monState := r.readPool(ctx, r.monPool, "mon_pool")
	in.MonPool = monState
	in.UsdPool = r.readPool(ctx, r.usdPool, "usd_pool")
	in.MonUsdPool = r.readPool(ctx, r.monUsdPool, "mon_usd_pool")

	if monState != nil {
		bal0, bal1, balErr := r.monPool.Balances(ctx, monState)
		if balErr != nil {
			observability.RecordRefreshError("mon_pool_balances")
			r.log("mon pool balances: %v", balErr)
		} else {
			in.MonPoolBalance0 = bal0
			in.MonPoolBalance1 = bal1
		}
	}

	if r.vesting != (common.Address{}) {
		vb, vbErr := erc20.BalanceOf(ctx, r.staking.Token(), r.vesting)
		if vbErr != nil {
			observability.RecordRefreshError("vesting_balance")
			r.log("vesting balance: %v", vbErr)
		} else {
			in.VestingBalance = vb
		}
	}

	out, snap := stats.Aggregate(in)

	r.mu.Lock()
	r.latest = &out
	r.params = &params
	r.mu.Unlock()

	r.persist(ctx, &snap, in)

	observability.RecordRefresh(time.Since(start).Seconds())
	observability.MarkRefreshSuccess(time.Now().Unix(), block)
	r.log("refreshed block %d in %s", block, time.Since(start).Round(time.Millisecond))
	return nil
}

// readPool reads one pool's state, returning nil when the pool is not
// configured or the read fails.
func (r *Runner) readPool(ctx context.Context, reader *chain.PoolReader, stage string) *domain.PoolState {
	if reader == nil {
		return nil
	}
	state, err := reader.ReadState(ctx)
	if err != nil {
		observability.RecordRefreshError(stage)
		r.log("%s: %v", stage, err)
		return nil
	}
	return state
}

// persist writes the snapshot and per-pool price observations. Storage
// failures are logged, never fatal: the cached payload already serves
// the API, and the next cycle retries.
func (r *Runner) persist(ctx context.Context, snap *domain.StatsSnapshot, in stats.Inputs) {
	if r.snapshots != nil {
		err := r.snapshots.Insert(ctx, snap)
		if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			observability.RecordRefreshError("snapshot_insert")
			r.log("insert snapshot: %v", err)
		}
	}

	if r.pricePoints == nil {
		return
	}
	points := r.collectPricePoints(snap, in)
	if len(points) == 0 {
		return
	}
	err := r.pricePoints.InsertBulk(ctx, points)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		observability.RecordRefreshError("price_point_insert")
		r.log("insert price points: %v", err)
	}
}

// collectPricePoints resolves each configured pool's direct price. Only
// direct resolutions are persisted; cross-derived prices live in the
// snapshot, not the per-pool series.
func (r *Runner) collectPricePoints(snap *domain.StatsSnapshot, in stats.Inputs) []*domain.PricePoint {
	var points []*domain.PricePoint

	for _, pool := range []*domain.PoolState{in.MonPool, in.UsdPool} {
		if pool == nil {
			continue
		}
		addr := strings.ToLower(pool.Pool.Hex())
		price, err := poolprice.Resolve(*pool, in.Token, in.TokenSymbol)
		if err != nil {
			observability.RecordPriceResolution(addr, false)
			continue
		}
		observability.RecordPriceResolution(addr, true)
		points = append(points, &domain.PricePoint{
			Pool:        addr,
			TimestampMs: snap.TimestampMs,
			BlockNumber: snap.BlockNumber,
			PriceX18:    new(big.Int).Set(price),
		})
	}

	return points
}

func (r *Runner) log(format string, args ...interface{}) {
	if r.verbose {
		log.Printf("[poller] "+format, args...)
	}
}
