// Package main runs the dashboard service: a refresh loop that reads the
// staking token and its pools, plus an HTTP API serving the cached stats,
// stake previews, per-wallet stakes, and recent actions.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/chain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/evm"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/poller"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
	chstore "github.com/masterclassed3-maker/bnotemonad-site/internal/storage/clickhouse"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage/memory"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage/migrations"
	pgstore "github.com/masterclassed3-maker/bnotemonad-site/internal/storage/postgres"
)

// Server holds the running components and serves the HTTP API.
type Server struct {
	logger *log.Logger

	runner        *poller.Runner
	staking       *chain.StakingReader
	tokenDecimals uint8

	stores  *allStores
	started time.Time
}

// allStores holds all storage implementations.
type allStores struct {
	snapshots storage.SnapshotStore
	actions   storage.ActionStore
	prices    storage.PricePointStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("MONAD_RPC_ENDPOINT"), "Monad RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("MONAD_WS_ENDPOINT"), "Monad WebSocket endpoint (optional, enables head-triggered refresh)")
	tokenFlag := flag.String("token", os.Getenv("TOKEN_ADDRESS"), "Staking token contract address")
	monPoolFlag := flag.String("mon-pool", os.Getenv("MON_POOL_ADDRESS"), "Token/WMON V3 pool address (optional)")
	usdPoolFlag := flag.String("usd-pool", os.Getenv("USD_POOL_ADDRESS"), "Token/USDC V3 pool address (optional)")
	monUsdPoolFlag := flag.String("mon-usd-pool", os.Getenv("MON_USD_POOL_ADDRESS"), "WMON/USDC cross pool address (optional)")
	vestingFlag := flag.String("vesting", os.Getenv("VESTING_ADDRESS"), "Treasury vesting wallet (optional, enables circulating supply)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	refreshInterval := flag.Duration("refresh-interval", poller.DefaultInterval, "Scheduled refresh interval")
	minSpacing := flag.Duration("min-refresh-spacing", poller.DefaultMinSpacing, "Minimum gap between head-triggered refreshes")
	httpAddr := flag.String("http-addr", ":8080", "HTTP listen address")
	verbose := flag.Bool("verbose", false, "Verbose refresh logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	token, err := requireAddress("--token", *tokenFlag)
	if err != nil {
		logger.Fatal(err)
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	client := evm.NewHTTPClient(*rpcEndpoint)
	stakingReader := chain.NewStakingReader(client, token)

	// Token decimals read once at startup; every formatted amount uses it
	decimals := chain.NewERC20Reader(client).Decimals(ctx, token)

	// Optional new-heads trigger
	var heads <-chan evm.Head
	if *wsEndpoint != "" {
		ws, wsErr := evm.NewWSClient(ctx, *wsEndpoint, nil)
		if wsErr != nil {
			logger.Fatalf("Failed to connect WebSocket: %v", wsErr)
		}
		defer ws.Close()

		heads, wsErr = ws.SubscribeNewHeads(ctx)
		if wsErr != nil {
			logger.Fatalf("Failed to subscribe newHeads: %v", wsErr)
		}
		logger.Printf("Subscribed to newHeads on %s", *wsEndpoint)
	}

	runner := poller.New(poller.Options{
		Client:      client,
		Staking:     stakingReader,
		MonPool:     optionalPool(logger, client, "--mon-pool", *monPoolFlag),
		UsdPool:     optionalPool(logger, client, "--usd-pool", *usdPoolFlag),
		MonUsdPool:  optionalPool(logger, client, "--mon-usd-pool", *monUsdPoolFlag),
		Vesting:     optionalAddress(logger, "--vesting", *vestingFlag),
		Snapshots:   stores.snapshots,
		PricePoints: stores.prices,
		Heads:       heads,
		Interval:    *refreshInterval,
		MinSpacing:  *minSpacing,
		Verbose:     *verbose,
	})

	server := &Server{
		logger:        logger,
		runner:        runner,
		staking:       stakingReader,
		tokenDecimals: decimals,
		stores:        stores,
		started:       time.Now(),
	}

	httpServer := &http.Server{
		Addr:    *httpAddr,
		Handler: server.routes(),
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown: %v", err)
		}

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Start HTTP server
	go func() {
		logger.Printf("Starting HTTP server on %s", *httpAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Run the refresh loop
	logger.Printf("Refreshing token %s every %v", token.Hex(), *refreshInterval)
	err = runner.Run(ctx)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			snapshots: memory.NewSnapshotStore(),
			actions:   memory.NewActionStore(),
			prices:    memory.NewPricePointStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	// ClickHouse (migrations return the connection)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		snapshots: pgstore.NewSnapshotStore(pool),
		actions:   pgstore.NewActionStore(pool),
		prices:    chstore.NewPricePointStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// requireAddress parses a mandatory hex address flag.
func requireAddress(name, value string) (common.Address, error) {
	if value == "" {
		return common.Address{}, fmt.Errorf("%s is required", name)
	}
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s: invalid address %q", name, value)
	}
	return common.HexToAddress(value), nil
}

// optionalAddress parses an optional hex address flag; empty disables it.
func optionalAddress(logger *log.Logger, name, value string) common.Address {
	if value == "" {
		return common.Address{}
	}
	if !common.IsHexAddress(value) {
		logger.Fatalf("%s: invalid address %q", name, value)
	}
	return common.HexToAddress(value)
}

// optionalPool builds a pool reader when the flag is set.
func optionalPool(logger *log.Logger, client evm.Client, name, value string) *chain.PoolReader {
	addr := optionalAddress(logger, name, value)
	if addr == (common.Address{}) {
		return nil
	}
	return chain.NewPoolReader(client, addr)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
