// Package stub provides a canned evm.Client for tests.
package stub

import (
	"context"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ErrNoResponse is returned when no canned return data matches a call.
var ErrNoResponse = errors.New("no canned response")

// Client implements evm.Client backed by canned return data keyed on
// contract address and calldata.
type Client struct {
	mu        sync.Mutex
	responses map[string][]byte
	errs      map[string]error
	calls     []Call

	Block int64
	Chain int64
}

// Call records one eth_call the stub served.
type Call struct {
	To   common.Address
	Data []byte
}

// NewClient creates an empty stub client.
func NewClient() *Client {
	return &Client{
		responses: make(map[string][]byte),
		errs:      make(map[string]error),
	}
}

// Respond registers canned return data for a contract/calldata pair.
func (c *Client) Respond(to common.Address, data, result []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responses[key(to, data)] = result
}

// Fail registers an error for a contract/calldata pair.
func (c *Client) Fail(to common.Address, data []byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[key(to, data)] = err
}

// Call serves a canned response, recording the call.
func (c *Client) Call(_ context.Context, to common.Address, data []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, Call{To: to, Data: append([]byte(nil), data...)})

	k := key(to, data)
	if err, ok := c.errs[k]; ok {
		return nil, err
	}
	if out, ok := c.responses[k]; ok {
		return out, nil
	}
	return nil, ErrNoResponse
}

// BlockNumber returns the configured block height.
func (c *Client) BlockNumber(_ context.Context) (int64, error) {
	return c.Block, nil
}

// ChainID returns the configured chain id.
func (c *Client) ChainID(_ context.Context) (int64, error) {
	return c.Chain, nil
}

// Calls returns a copy of the recorded calls.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

func key(to common.Address, data []byte) string {
	return to.Hex() + "|" + hex.EncodeToString(data)
}
