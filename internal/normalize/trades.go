package normalize

import (
	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/record"
)

// Trades normalizes executed trade history entries keyed by trade id.
func Trades(trades map[string]api.TradeInfo) ([]record.Record, error) {
	recs := make([]record.Record, 0, len(trades))
	for _, id := range sortedKeys(trades) {
		t := trades[id]
		if err := checkAmounts("trades", id, []amountField{
			{"price", t.Price},
			{"cost", t.Cost},
			{"fee", t.Fee},
			{"vol", t.Vol},
			{"margin", t.Margin},
		}); err != nil {
			return nil, err
		}
		recs = append(recs, record.Record{
			Entity: record.EntityTrade,
			Key:    id,
			Fields: tradeFields(t),
		})
	}
	return recs, nil
}

func tradeFields(t api.TradeInfo) record.Fields {
	f := record.NewFields()
	f.Set("ordertxid", t.OrderTxID)
	f.Set("postxid", t.PosTxID)
	f.Set("pair", t.Pair)
	f.Set("time", t.Time)
	f.Set("type", t.Type)
	f.Set("ordertype", t.OrderType)
	f.Set("price", t.Price)
	f.Set("cost", t.Cost)
	f.Set("fee", t.Fee)
	f.Set("vol", t.Vol)
	f.Set("margin", t.Margin)
	f.Set("leverage", nullableString(t.Leverage))
	f.Set("misc", nullableString(t.Misc))
	f.Set("maker", t.Maker)
	f.Set("posstatus", nullableString(t.PosStatus))
	f.Set("cprice", nullableFloat(t.CPrice))
	f.Set("ccost", nullableFloat(t.CCost))
	f.Set("cfee", nullableFloat(t.CFee))
	f.Set("cvol", nullableFloat(t.CVol))
	f.Set("cmargin", nullableFloat(t.CMargin))
	f.Set("net", nullableFloat(t.Net))
	f.Set("trade_ids", joinStrings(t.Trades))
	return f
}
