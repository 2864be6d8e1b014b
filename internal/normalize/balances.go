package normalize

import (
	"time"

	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/record"
)

// Balances normalizes the per-asset balance map. The asset code is the
// natural key; the amount is the single tracked field.
func Balances(balances map[string]string) ([]record.Record, error) {
	recs := make([]record.Record, 0, len(balances))
	for _, asset := range sortedKeys(balances) {
		amount := balances[asset]
		if err := checkAmounts("balance", asset, []amountField{
			{"amount", amount},
		}); err != nil {
			return nil, err
		}
		f := record.NewFields()
		f.Set("amount", amount)
		recs = append(recs, record.Record{
			Entity: record.EntityBalance,
			Key:    asset,
			Fields: f,
		})
	}
	return recs, nil
}

// TradeBalanceRecord normalizes the account trade balance summary. The
// summary has no natural key: every capture is appended as a new row
// stamped with the capture time.
func TradeBalanceRecord(tb *api.TradeBalance, capturedAt time.Time) (record.Record, error) {
	if err := checkAmounts("trade_balance", "", []amountField{
		{"equivalent_balance", tb.EB},
		{"trade_balance", tb.TB},
		{"margin", tb.M},
		{"unrealized_value", tb.UV},
		{"unrealized_net", tb.N},
		{"cost_basis", tb.C},
		{"valuation", tb.V},
		{"equity", tb.E},
		{"free_margin", tb.MF},
		{"margin_level", tb.ML},
	}); err != nil {
		return record.Record{}, err
	}
	f := record.NewFields()
	f.Set("captured_at", capturedAt.UnixMilli())
	f.Set("equivalent_balance", tb.EB)
	f.Set("trade_balance", tb.TB)
	f.Set("margin", tb.M)
	f.Set("unrealized_value", tb.UV)
	f.Set("unrealized_net", tb.N)
	f.Set("cost_basis", tb.C)
	f.Set("valuation", tb.V)
	f.Set("equity", tb.E)
	f.Set("free_margin", tb.MF)
	f.Set("margin_level", tb.ML)
	return record.Record{Entity: record.EntityTradeBalance, Fields: f}, nil
}
