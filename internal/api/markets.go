package api

import (
	"context"
	"fmt"
)

// AssetPairs fetches tradeable pair and collateral asset details from the
// public AssetPairs endpoint.
func (c *Client) AssetPairs(ctx context.Context) (map[string]AssetPairEntry, error) {
	var result map[string]AssetPairEntry
	if err := c.public(ctx, "/0/public/AssetPairs", nil, &result); err != nil {
		return nil, fmt.Errorf("get asset pairs: %w", err)
	}
	return result, nil
}
