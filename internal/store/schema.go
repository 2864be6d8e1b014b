package store

import (
	"fmt"

	"github.com/mjoubert/kraken-sync/internal/record"
)

// tableDef maps an entity to its table. keyColumn is empty for append-only
// tables, which carry a generated surrogate id instead of a natural key.
type tableDef struct {
	name      string
	keyColumn string
}

var tables = map[record.Entity]tableDef{
	record.EntityBalance:              {name: "balances", keyColumn: "asset"},
	record.EntityTradeBalance:         {name: "trade_balances"},
	record.EntityOrder:                {name: "orders", keyColumn: "id"},
	record.EntityOrderDescription:     {name: "order_descriptions", keyColumn: "id"},
	record.EntityTrade:                {name: "trades", keyColumn: "id"},
	record.EntityLedger:               {name: "ledgers", keyColumn: "id"},
	record.EntityOpenPosition:         {name: "open_positions", keyColumn: "id"},
	record.EntityConsolidatedPosition: {name: "consolidated_positions", keyColumn: "pair"},
	record.EntityAssetPair:            {name: "asset_pairs", keyColumn: "pair"},
	record.EntityCollateralAsset:      {name: "collateral_assets", keyColumn: "asset"},
}

func tableFor(entity record.Entity) (tableDef, error) {
	def, ok := tables[entity]
	if !ok {
		return tableDef{}, fmt.Errorf("no table for entity %q", entity)
	}
	return def, nil
}

// schemaDDL creates every table. order_descriptions precedes orders and
// consolidated_positions precedes open_positions so the references resolve.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS balances (
	asset  TEXT PRIMARY KEY,
	amount TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trade_balances (
	id                 BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	captured_at        BIGINT NOT NULL,
	equivalent_balance TEXT,
	trade_balance      TEXT,
	margin             TEXT,
	unrealized_value   TEXT,
	unrealized_net     TEXT,
	cost_basis         TEXT,
	valuation          TEXT,
	equity             TEXT,
	free_margin        TEXT,
	margin_level       TEXT
);

CREATE TABLE IF NOT EXISTS order_descriptions (
	id        TEXT PRIMARY KEY,
	pair      TEXT,
	type      TEXT,
	ordertype TEXT,
	price     TEXT,
	price2    TEXT,
	leverage  TEXT,
	"order"   TEXT,
	"close"   TEXT
);

CREATE TABLE IF NOT EXISTS orders (
	id         TEXT PRIMARY KEY,
	refid      TEXT,
	userref    BIGINT,
	status     TEXT,
	opentm     DOUBLE PRECISION,
	closetm    DOUBLE PRECISION,
	starttm    DOUBLE PRECISION,
	expiretm   DOUBLE PRECISION,
	descr_id   TEXT NOT NULL REFERENCES order_descriptions(id),
	vol        TEXT,
	vol_exec   TEXT,
	cost       TEXT,
	fee        TEXT,
	price      TEXT,
	stopprice  TEXT,
	limitprice TEXT,
	misc       TEXT,
	oflags     TEXT,
	reason     TEXT
);

CREATE TABLE IF NOT EXISTS trades (
	id        TEXT PRIMARY KEY,
	ordertxid TEXT,
	postxid   TEXT,
	pair      TEXT,
	time      DOUBLE PRECISION,
	type      TEXT,
	ordertype TEXT,
	price     TEXT,
	cost      TEXT,
	fee       TEXT,
	vol       TEXT,
	margin    TEXT,
	leverage  TEXT,
	misc      TEXT,
	maker     BOOLEAN,
	posstatus TEXT,
	cprice    DOUBLE PRECISION,
	ccost     DOUBLE PRECISION,
	cfee      DOUBLE PRECISION,
	cvol      DOUBLE PRECISION,
	cmargin   DOUBLE PRECISION,
	net       DOUBLE PRECISION,
	trade_ids TEXT
);

CREATE TABLE IF NOT EXISTS ledgers (
	id      TEXT PRIMARY KEY,
	refid   TEXT,
	time    DOUBLE PRECISION,
	type    TEXT,
	subtype TEXT,
	aclass  TEXT,
	asset   TEXT,
	amount  TEXT,
	fee     TEXT,
	balance TEXT
);

CREATE TABLE IF NOT EXISTS consolidated_positions (
	pair       TEXT PRIMARY KEY,
	positions  TEXT,
	type       TEXT,
	leverage   TEXT,
	cost       TEXT,
	fee        TEXT,
	vol        TEXT,
	vol_closed TEXT,
	margin     TEXT,
	value      TEXT,
	net        TEXT
);

CREATE TABLE IF NOT EXISTS open_positions (
	id         TEXT PRIMARY KEY,
	ordertxid  TEXT,
	posstatus  TEXT,
	pair       TEXT REFERENCES consolidated_positions(pair),
	time       DOUBLE PRECISION,
	type       TEXT,
	ordertype  TEXT,
	cost       TEXT,
	fee        TEXT,
	vol        TEXT,
	vol_closed TEXT,
	margin     TEXT,
	terms      TEXT,
	rollovertm TEXT,
	value      TEXT,
	net        TEXT,
	misc       TEXT,
	oflags     TEXT
);

CREATE TABLE IF NOT EXISTS asset_pairs (
	pair                 TEXT PRIMARY KEY,
	altname              TEXT,
	wsname               TEXT,
	aclass_base          TEXT,
	base                 TEXT,
	aclass_quote         TEXT,
	quote                TEXT,
	lot                  TEXT,
	cost_decimals        BIGINT,
	pair_decimals        BIGINT,
	lot_decimals         BIGINT,
	lot_multiplier       BIGINT,
	leverage_buy         TEXT,
	leverage_sell        TEXT,
	fees                 TEXT,
	fees_maker           TEXT,
	fee_volume_currency  TEXT,
	margin_call          BIGINT,
	margin_stop          BIGINT,
	ordermin             TEXT,
	costmin              TEXT,
	tick_size            TEXT,
	status               TEXT,
	long_position_limit  BIGINT,
	short_position_limit BIGINT
);

CREATE TABLE IF NOT EXISTS collateral_assets (
	asset            TEXT PRIMARY KEY,
	aclass           TEXT,
	altname          TEXT,
	decimals         BIGINT,
	display_decimals BIGINT,
	collateral_value DOUBLE PRECISION,
	status           TEXT
);
`
