package normalize

import (
	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/record"
)

// Orders normalizes order payloads into header records paired with their
// description child rows, linked by the order id. An order without a descr
// sub-object is rejected before normalization.
func Orders(orders map[string]api.Order) ([]record.Record, error) {
	recs := make([]record.Record, 0, len(orders))
	for _, id := range sortedKeys(orders) {
		o := orders[id]
		if o.Descr == nil {
			return nil, &StructuralError{Category: "orders", Key: id, Detail: "missing descr sub-object"}
		}
		if err := checkAmounts("orders", id, []amountField{
			{"vol", o.Vol},
			{"vol_exec", o.VolExec},
			{"cost", o.Cost},
			{"fee", o.Fee},
			{"price", o.Price},
			{"stopprice", o.StopPrice},
			{"limitprice", o.LimitPrice},
		}); err != nil {
			return nil, err
		}

		child := record.Record{
			Entity: record.EntityOrderDescription,
			Key:    id,
			Fields: descriptionFields(*o.Descr),
		}
		recs = append(recs, record.Record{
			Entity: record.EntityOrder,
			Key:    id,
			Fields: orderFields(id, o),
			Child:  &child,
		})
	}
	return recs, nil
}

// orderFields maps every persisted order column. descr and trades are
// intentionally excluded: descr becomes the child row and the trade id list
// is not a column of the order header.
func orderFields(id string, o api.Order) record.Fields {
	f := record.NewFields()
	f.Set("refid", nullableString(o.RefID))
	f.Set("userref", nullableInt(o.UserRef))
	f.Set("status", o.Status)
	f.Set("opentm", o.OpenTM)
	f.Set("closetm", o.CloseTM)
	f.Set("starttm", o.StartTM)
	f.Set("expiretm", o.ExpireTM)
	f.Set("descr_id", id)
	f.Set("vol", o.Vol)
	f.Set("vol_exec", o.VolExec)
	f.Set("cost", o.Cost)
	f.Set("fee", o.Fee)
	f.Set("price", o.Price)
	f.Set("stopprice", o.StopPrice)
	f.Set("limitprice", o.LimitPrice)
	f.Set("misc", o.Misc)
	f.Set("oflags", o.OFlags)
	f.Set("reason", nullableString(o.Reason))
	return f
}

func descriptionFields(d api.OrderDescription) record.Fields {
	f := record.NewFields()
	f.Set("pair", d.Pair)
	f.Set("type", d.Type)
	f.Set("ordertype", d.OrderType)
	f.Set("price", d.Price)
	f.Set("price2", d.Price2)
	f.Set("leverage", d.Leverage)
	f.Set("order", d.Order)
	f.Set("close", d.Close)
	return f
}
