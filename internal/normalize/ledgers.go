package normalize

import (
	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/record"
)

// Ledgers normalizes ledger movements keyed by ledger id.
func Ledgers(entries map[string]api.LedgerEntry) ([]record.Record, error) {
	recs := make([]record.Record, 0, len(entries))
	for _, id := range sortedKeys(entries) {
		e := entries[id]
		if err := checkAmounts("ledgers", id, []amountField{
			{"amount", e.Amount},
			{"fee", e.Fee},
			{"balance", e.Balance},
		}); err != nil {
			return nil, err
		}
		recs = append(recs, record.Record{
			Entity: record.EntityLedger,
			Key:    id,
			Fields: ledgerFields(e),
		})
	}
	return recs, nil
}

func ledgerFields(e api.LedgerEntry) record.Fields {
	f := record.NewFields()
	f.Set("refid", e.RefID)
	f.Set("time", e.Time)
	f.Set("type", e.Type)
	f.Set("subtype", nullableString(e.Subtype))
	f.Set("aclass", e.Aclass)
	f.Set("asset", e.Asset)
	f.Set("amount", e.Amount)
	f.Set("fee", e.Fee)
	f.Set("balance", e.Balance)
	return f
}
