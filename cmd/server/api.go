package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/masterclassed3-maker/bnotemonad-site/internal/domain"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/fixedpoint"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/observability"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/staking"
	"github.com/masterclassed3-maker/bnotemonad-site/internal/storage"
)

const (
	defaultActionsLimit = 50
	maxActionsLimit     = 200
)

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	mux.HandleFunc("/status", s.handleStatus)

	mux.HandleFunc("/api/stats", s.timed("stats", s.handleStats))
	mux.HandleFunc("/api/preview", s.timed("preview", s.handlePreview))
	mux.HandleFunc("/api/stakes/", s.timed("stakes", s.handleStakes))
	mux.HandleFunc("/api/actions", s.timed("actions", s.handleActions))

	return mux
}

// timed wraps a handler with a per-endpoint duration observation.
func (s *Server) timed(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		observability.DefaultMetrics.APIRequestDuration.
			WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	StatsReady  bool   `json:"stats_ready"`
	BlockNumber string `json:"block_number,omitempty"`
	UpdatedAtMs int64  `json:"updated_at_ms,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status: "running",
		Uptime: time.Since(s.started).String(),
	}
	if stats, ok := s.runner.Latest(); ok {
		resp.StatsReady = true
		resp.BlockNumber = stats.BlockNumber
		resp.UpdatedAtMs = stats.UpdatedAtMs
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStats serves the latest aggregated stats payload. The payload is
// whatever the last refresh cycle produced; handlers never read the chain.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, ok := s.runner.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "stats not yet available")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// PreviewResponse is the JSON response for /api/preview.
type PreviewResponse struct {
	Amount       string `json:"amount"`
	LockDays     int    `json:"lock_days"`
	TimeBonus    string `json:"time_bonus"`
	SizeBonus    string `json:"size_bonus"`
	TotalBonus   string `json:"total_bonus"`
	Multiplier   string `json:"multiplier"`
	Shares       string `json:"shares"`
	SharesRaw    string `json:"shares_raw"`
	ShareRateX18 string `json:"share_rate_x18"`
}

// handlePreview computes a stake preview for ?amount= (whole tokens,
// decimal) and ?days=.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	params, ok := s.runner.Params()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "contract parameters not yet available")
		return
	}

	amountRaw, err := fixedpoint.ParseDecimal(r.URL.Query().Get("amount"), 18)
	if err != nil || amountRaw.Sign() < 0 {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 0 {
		writeError(w, http.StatusBadRequest, "invalid days")
		return
	}

	preview, err := staking.ComputePreview(amountRaw, days, params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "preview failed: "+err.Error())
		return
	}
	observability.RecordPreviewComputed()

	writeJSON(w, http.StatusOK, PreviewResponse{
		Amount:       staking.FormatToken(amountRaw),
		LockDays:     days,
		TimeBonus:    staking.BpsToPercent(preview.TimeBonusBps),
		SizeBonus:    staking.BpsToPercent(preview.SizeBonusBps),
		TotalBonus:   staking.BpsToPercent(preview.TotalBonusBps),
		Multiplier:   staking.FormatMultiplier(preview.MultiplierNum, preview.BasisPoints),
		Shares:       staking.FormatToken(preview.SharesRaw),
		SharesRaw:    preview.SharesRaw.String(),
		ShareRateX18: preview.ShareRate.String(),
	})
}

// StakeResponse is one stake row in /api/stakes/{address}.
type StakeResponse struct {
	Index          int    `json:"index"`
	StartTimestamp int64  `json:"start_timestamp"`
	EndTimestamp   int64  `json:"end_timestamp"`
	LockDays       int    `json:"lock_days"`
	Amount         string `json:"amount"`
	Shares         string `json:"shares"`
	AmountRaw      string `json:"amount_raw"`
	SharesRaw      string `json:"shares_raw"`
	AutoRenew      bool   `json:"auto_renew"`
}

// StakesResponse is the JSON response for /api/stakes/{address}.
type StakesResponse struct {
	Owner      string          `json:"owner"`
	StakeCount int             `json:"stake_count"`
	Stakes     []StakeResponse `json:"stakes"`
}

// handleStakes reads and formats stakesOf(address). This is the one
// endpoint that hits the chain per request: stake lists are per wallet
// and not part of the refresh cycle.
func (s *Server) handleStakes(w http.ResponseWriter, r *http.Request) {
	addr := strings.TrimPrefix(r.URL.Path, "/api/stakes/")
	if !common.IsHexAddress(addr) {
		writeError(w, http.StatusBadRequest, "invalid address")
		return
	}
	owner := common.HexToAddress(addr)

	rows, err := s.staking.StakesOf(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusBadGateway, "stakes read failed: "+err.Error())
		return
	}

	ws := staking.BuildWalletStakes(owner, rows, s.tokenDecimals)
	resp := StakesResponse{
		Owner:      strings.ToLower(ws.Owner.Hex()),
		StakeCount: ws.StakeCount,
		Stakes:     make([]StakeResponse, 0, len(ws.Stakes)),
	}
	for _, st := range ws.Stakes {
		resp.Stakes = append(resp.Stakes, StakeResponse{
			Index:          st.Index,
			StartTimestamp: st.StartTimestamp,
			EndTimestamp:   st.EndTimestamp,
			LockDays:       st.LockDays,
			Amount:         st.Amount,
			Shares:         st.Shares,
			AmountRaw:      st.AmountRaw.String(),
			SharesRaw:      st.SharesRaw.String(),
			AutoRenew:      st.AutoRenew,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ActionResponse is one row in /api/actions.
type ActionResponse struct {
	Wallet      string `json:"wallet"`
	Kind        string `json:"kind"`
	AmountRaw   string `json:"amount_raw"`
	LockDays    int    `json:"lock_days,omitempty"`
	TxHash      string `json:"tx_hash"`
	TimestampMs int64  `json:"timestamp_ms"`
}

// handleActions serves recent stake/unstake activity, optionally
// filtered by ?wallet=, newest first.
func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	limit := defaultActionsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if n > maxActionsLimit {
			n = maxActionsLimit
		}
		limit = n
	}

	var actions []*domain.StakeAction
	var err error
	if wallet := r.URL.Query().Get("wallet"); wallet != "" {
		if !common.IsHexAddress(wallet) {
			writeError(w, http.StatusBadRequest, "invalid wallet")
			return
		}
		actions, err = s.stores.actions.GetByWallet(r.Context(), wallet, limit)
	} else {
		actions, err = s.stores.actions.GetRecent(r.Context(), limit)
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "actions query failed")
		return
	}

	resp := make([]ActionResponse, 0, len(actions))
	for _, a := range actions {
		resp = append(resp, ActionResponse{
			Wallet:      a.Wallet,
			Kind:        a.Kind,
			AmountRaw:   a.AmountRaw,
			LockDays:    a.LockDays,
			TxHash:      a.TxHash,
			TimestampMs: a.TimestampMs,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
