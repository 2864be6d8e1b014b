package normalize

import (
	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/record"
)

// AssetPairs normalizes the public asset pair listing. The payload mixes two
// row shapes in one map: tradeable pairs (aclass_base present) and collateral
// assets (aclass present). Entries carrying neither discriminator are
// rejected.
func AssetPairs(pairs map[string]api.AssetPairEntry) ([]record.Record, error) {
	recs := make([]record.Record, 0, len(pairs))
	for _, name := range sortedKeys(pairs) {
		e := pairs[name]
		switch {
		case e.AclassBase != nil:
			f, err := pairFields(name, e)
			if err != nil {
				return nil, err
			}
			recs = append(recs, record.Record{
				Entity: record.EntityAssetPair,
				Key:    name,
				Fields: f,
			})
		case e.Aclass != nil:
			recs = append(recs, record.Record{
				Entity: record.EntityCollateralAsset,
				Key:    name,
				Fields: collateralFields(e),
			})
		default:
			return nil, &StructuralError{
				Category: "asset_pairs",
				Key:      name,
				Detail:   "entry has neither aclass_base nor aclass",
			}
		}
	}
	return recs, nil
}

func pairFields(name string, e api.AssetPairEntry) (record.Fields, error) {
	fees, err := jsonText("asset_pairs", name, "fees", e.Fees)
	if err != nil {
		return record.Fields{}, err
	}
	feesMaker, err := jsonText("asset_pairs", name, "fees_maker", e.FeesMaker)
	if err != nil {
		return record.Fields{}, err
	}

	f := record.NewFields()
	f.Set("altname", e.Altname)
	f.Set("wsname", e.WSName)
	f.Set("aclass_base", *e.AclassBase)
	f.Set("base", e.Base)
	f.Set("aclass_quote", e.AclassQuote)
	f.Set("quote", e.Quote)
	f.Set("lot", e.Lot)
	f.Set("cost_decimals", e.CostDecimals)
	f.Set("pair_decimals", e.PairDecimals)
	f.Set("lot_decimals", e.LotDecimals)
	f.Set("lot_multiplier", e.LotMultiplier)
	f.Set("leverage_buy", joinInts(e.LeverageBuy))
	f.Set("leverage_sell", joinInts(e.LeverageSell))
	f.Set("fees", fees)
	f.Set("fees_maker", feesMaker)
	f.Set("fee_volume_currency", e.FeeVolumeCurrency)
	f.Set("margin_call", e.MarginCall)
	f.Set("margin_stop", e.MarginStop)
	f.Set("ordermin", e.OrderMin)
	f.Set("costmin", e.CostMin)
	f.Set("tick_size", e.TickSize)
	f.Set("status", e.Status)
	f.Set("long_position_limit", nullableInt(e.LongPositionLimit))
	f.Set("short_position_limit", nullableInt(e.ShortPositionLimit))
	return f, nil
}

func collateralFields(e api.AssetPairEntry) record.Fields {
	f := record.NewFields()
	f.Set("aclass", *e.Aclass)
	f.Set("altname", e.Altname)
	f.Set("decimals", e.Decimals)
	f.Set("display_decimals", e.DisplayDecimals)
	f.Set("collateral_value", nullableFloat(e.CollateralValue))
	f.Set("status", e.Status)
	return f
}
