package record

// Entity identifies a persisted entity type. Each entity maps to one table in
// the relational store.
type Entity string

const (
	EntityBalance              Entity = "balance"
	EntityTradeBalance         Entity = "trade_balance"
	EntityOrder                Entity = "order"
	EntityOrderDescription     Entity = "order_description"
	EntityTrade                Entity = "trade"
	EntityLedger               Entity = "ledger"
	EntityOpenPosition         Entity = "open_position"
	EntityConsolidatedPosition Entity = "consolidated_position"
	EntityAssetPair            Entity = "asset_pair"
	EntityCollateralAsset      Entity = "collateral_asset"
)

// Ref points at another record by entity type and natural key.
type Ref struct {
	Entity Entity
	Key    string
}

// Record is the unit the reconciliation engine operates on: one prospective
// row, identified by its natural key, carrying every persisted column.
//
// Key is empty for append-only entities (trade balance snapshots), which are
// keyed by a surrogate id assigned by the store.
//
// Child, when set, is a dependent row sharing the parent's natural key (an
// order's description). The child must be flushed before the parent row that
// references it is added.
//
// Requires, when set, names a row that must already exist before this record
// may be inserted (an open position's consolidated-by-pair aggregate).
type Record struct {
	Entity   Entity
	Key      string
	Fields   Fields
	Child    *Record
	Requires *Ref
}
