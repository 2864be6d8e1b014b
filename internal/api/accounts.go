package api

import (
	"context"
	"fmt"

	"github.com/mjoubert/kraken-sync/internal/auth"
)

// Balance fetches per-asset account balances.
func (c *Client) Balance(ctx context.Context) (map[string]string, error) {
	p := auth.NewParams()
	p.Set("nonce", c.nonce.Next())

	var result map[string]string
	if err := c.private(ctx, "/0/private/Balance", p, &result); err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return result, nil
}

// TradeBalance fetches the account trade balance summary. Asset names the
// base asset for valuation and may be empty for the venue default.
func (c *Client) TradeBalance(ctx context.Context, asset string) (*TradeBalance, error) {
	p := auth.NewParams()
	p.Set("nonce", c.nonce.Next())
	if asset != "" {
		p.Set("asset", asset)
	}

	var result TradeBalance
	if err := c.private(ctx, "/0/private/TradeBalance", p, &result); err != nil {
		return nil, fmt.Errorf("get trade balance: %w", err)
	}
	return &result, nil
}

// OpenOrders fetches the account's open orders.
func (c *Client) OpenOrders(ctx context.Context) (*OpenOrdersResult, error) {
	p := auth.NewParams()
	p.Set("nonce", c.nonce.Next())
	p.Set("trades", "true")

	var result OpenOrdersResult
	if err := c.private(ctx, "/0/private/OpenOrders", p, &result); err != nil {
		return nil, fmt.Errorf("get open orders: %w", err)
	}
	return &result, nil
}

// ClosedOrders fetches the account's closed orders.
func (c *Client) ClosedOrders(ctx context.Context) (*ClosedOrdersResult, error) {
	p := auth.NewParams()
	p.Set("nonce", c.nonce.Next())
	p.Set("trades", "true")

	var result ClosedOrdersResult
	if err := c.private(ctx, "/0/private/ClosedOrders", p, &result); err != nil {
		return nil, fmt.Errorf("get closed orders: %w", err)
	}
	return &result, nil
}

// TradesHistory fetches the account's executed trade history.
func (c *Client) TradesHistory(ctx context.Context) (*TradesHistoryResult, error) {
	p := auth.NewParams()
	p.Set("nonce", c.nonce.Next())
	p.Set("trades", "true")

	var result TradesHistoryResult
	if err := c.private(ctx, "/0/private/TradesHistory", p, &result); err != nil {
		return nil, fmt.Errorf("get trades history: %w", err)
	}
	return &result, nil
}

// Ledgers fetches the account's ledger entries.
func (c *Client) Ledgers(ctx context.Context) (*LedgersResult, error) {
	p := auth.NewParams()
	p.Set("nonce", c.nonce.Next())

	var result LedgersResult
	if err := c.private(ctx, "/0/private/Ledgers", p, &result); err != nil {
		return nil, fmt.Errorf("get ledgers: %w", err)
	}
	return &result, nil
}

// OpenPositions fetches per-trade open margin positions with profit/loss
// calculations included.
func (c *Client) OpenPositions(ctx context.Context) (map[string]OpenPosition, error) {
	p := auth.NewParams()
	p.Set("nonce", c.nonce.Next())
	p.Set("docalcs", "true")

	var result map[string]OpenPosition
	if err := c.private(ctx, "/0/private/OpenPositions", p, &result); err != nil {
		return nil, fmt.Errorf("get open positions: %w", err)
	}
	return result, nil
}

// ConsolidatedPositions fetches open positions consolidated by market pair.
func (c *Client) ConsolidatedPositions(ctx context.Context) ([]ConsolidatedPosition, error) {
	p := auth.NewParams()
	p.Set("nonce", c.nonce.Next())
	p.Set("docalcs", "true")
	p.Set("consolidation", "market")

	var result []ConsolidatedPosition
	if err := c.private(ctx, "/0/private/OpenPositions", p, &result); err != nil {
		return nil, fmt.Errorf("get consolidated positions: %w", err)
	}
	return result, nil
}
