package normalize

import (
	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/record"
)

// Positions normalizes the two position streams into one batch. Consolidated
// per-pair aggregates come first; per-trade open positions follow, each
// requiring its pair's consolidated row to exist.
func Positions(consolidated []api.ConsolidatedPosition, open map[string]api.OpenPosition) ([]record.Record, error) {
	recs := make([]record.Record, 0, len(consolidated)+len(open))

	for _, cp := range consolidated {
		if err := checkAmounts("positions", cp.Pair, []amountField{
			{"cost", cp.Cost},
			{"fee", cp.Fee},
			{"vol", cp.Vol},
			{"vol_closed", cp.VolClosed},
			{"margin", cp.Margin},
			{"value", cp.Value},
			{"net", cp.Net},
		}); err != nil {
			return nil, err
		}
		recs = append(recs, record.Record{
			Entity: record.EntityConsolidatedPosition,
			Key:    cp.Pair,
			Fields: consolidatedFields(cp),
		})
	}

	for _, id := range sortedKeys(open) {
		op := open[id]
		if err := checkAmounts("positions", id, []amountField{
			{"cost", op.Cost},
			{"fee", op.Fee},
			{"vol", op.Vol},
			{"vol_closed", op.VolClosed},
			{"margin", op.Margin},
		}); err != nil {
			return nil, err
		}
		recs = append(recs, record.Record{
			Entity:   record.EntityOpenPosition,
			Key:      id,
			Fields:   openPositionFields(op),
			Requires: &record.Ref{Entity: record.EntityConsolidatedPosition, Key: op.Pair},
		})
	}
	return recs, nil
}

func consolidatedFields(cp api.ConsolidatedPosition) record.Fields {
	f := record.NewFields()
	f.Set("positions", cp.Positions)
	f.Set("type", cp.Type)
	f.Set("leverage", cp.Leverage)
	f.Set("cost", cp.Cost)
	f.Set("fee", cp.Fee)
	f.Set("vol", cp.Vol)
	f.Set("vol_closed", cp.VolClosed)
	f.Set("margin", cp.Margin)
	f.Set("value", cp.Value)
	f.Set("net", cp.Net)
	return f
}

func openPositionFields(op api.OpenPosition) record.Fields {
	f := record.NewFields()
	f.Set("ordertxid", op.OrderTxID)
	f.Set("posstatus", op.PosStatus)
	f.Set("pair", op.Pair)
	f.Set("time", op.Time)
	f.Set("type", op.Type)
	f.Set("ordertype", op.OrderType)
	f.Set("cost", op.Cost)
	f.Set("fee", op.Fee)
	f.Set("vol", op.Vol)
	f.Set("vol_closed", op.VolClosed)
	f.Set("margin", op.Margin)
	f.Set("terms", op.Terms)
	f.Set("rollovertm", op.RolloverTM)
	f.Set("value", nullableString(op.Value))
	f.Set("net", nullableString(op.Net))
	f.Set("misc", op.Misc)
	f.Set("oflags", op.OFlags)
	return f
}
