package api

// OrderDescription is the descr sub-object of an order.
type OrderDescription struct {
	Pair      string `json:"pair"`
	Type      string `json:"type"`
	OrderType string `json:"ordertype"`
	Price     string `json:"price"`
	Price2    string `json:"price2"`
	Leverage  string `json:"leverage"`
	Order     string `json:"order"`
	Close     string `json:"close"`
}

// Order represents an open or closed order. The venue returns orders as a
// composite: header fields plus the descr sub-object and a trade id list.
type Order struct {
	RefID      *string           `json:"refid"`
	UserRef    *int64            `json:"userref"`
	Status     string            `json:"status"`
	OpenTM     float64           `json:"opentm"`
	CloseTM    float64           `json:"closetm"`
	StartTM    float64           `json:"starttm"`
	ExpireTM   float64           `json:"expiretm"`
	Descr      *OrderDescription `json:"descr"`
	Vol        string            `json:"vol"`
	VolExec    string            `json:"vol_exec"`
	Cost       string            `json:"cost"`
	Fee        string            `json:"fee"`
	Price      string            `json:"price"`
	StopPrice  string            `json:"stopprice"`
	LimitPrice string            `json:"limitprice"`
	Misc       string            `json:"misc"`
	OFlags     string            `json:"oflags"`
	Reason     *string           `json:"reason"`
	Trades     []string          `json:"trades"`
}

// OpenOrdersResult from POST /0/private/OpenOrders.
type OpenOrdersResult struct {
	Open map[string]Order `json:"open"`
}

// ClosedOrdersResult from POST /0/private/ClosedOrders.
type ClosedOrdersResult struct {
	Closed map[string]Order `json:"closed"`
	Count  int              `json:"count"`
}

// TradeInfo represents one executed trade from the account history.
type TradeInfo struct {
	OrderTxID string   `json:"ordertxid"`
	PosTxID   string   `json:"postxid"`
	Pair      string   `json:"pair"`
	Time      float64  `json:"time"`
	Type      string   `json:"type"`
	OrderType string   `json:"ordertype"`
	Price     string   `json:"price"`
	Cost      string   `json:"cost"`
	Fee       string   `json:"fee"`
	Vol       string   `json:"vol"`
	Margin    string   `json:"margin"`
	Leverage  *string  `json:"leverage"`
	Misc      *string  `json:"misc"`
	Maker     bool     `json:"maker"`
	PosStatus *string  `json:"posstatus"`
	CPrice    *float64 `json:"cprice"`
	CCost     *float64 `json:"ccost"`
	CFee      *float64 `json:"cfee"`
	CVol      *float64 `json:"cvol"`
	CMargin   *float64 `json:"cmargin"`
	Net       *float64 `json:"net"`
	Trades    []string `json:"trades"`
}

// TradesHistoryResult from POST /0/private/TradesHistory.
type TradesHistoryResult struct {
	Trades map[string]TradeInfo `json:"trades"`
	Count  int                  `json:"count"`
}

// LedgerEntry represents one ledger movement.
type LedgerEntry struct {
	RefID   string  `json:"refid"`
	Time    float64 `json:"time"`
	Type    string  `json:"type"`
	Subtype *string `json:"subtype"`
	Aclass  string  `json:"aclass"`
	Asset   string  `json:"asset"`
	Amount  string  `json:"amount"`
	Fee     string  `json:"fee"`
	Balance string  `json:"balance"`
}

// LedgersResult from POST /0/private/Ledgers.
type LedgersResult struct {
	Ledger map[string]LedgerEntry `json:"ledger"`
	Count  int                    `json:"count"`
}

// TradeBalance from POST /0/private/TradeBalance. Field names follow the
// venue's single-letter keys.
type TradeBalance struct {
	EB string `json:"eb"` // equivalent balance, all currencies combined
	TB string `json:"tb"` // trade balance, equity currencies combined
	M  string `json:"m"`  // margin amount of open positions
	UV string `json:"uv"` // unrealized value of open positions
	N  string `json:"n"`  // unrealized net profit/loss
	C  string `json:"c"`  // cost basis of open positions
	V  string `json:"v"`  // current floating valuation
	E  string `json:"e"`  // equity
	MF string `json:"mf"` // free margin
	ML string `json:"ml"` // margin level
}

// OpenPosition represents one margin position keyed by trade id.
type OpenPosition struct {
	OrderTxID  string  `json:"ordertxid"`
	PosStatus  string  `json:"posstatus"`
	Pair       string  `json:"pair"`
	Time       float64 `json:"time"`
	Type       string  `json:"type"`
	OrderType  string  `json:"ordertype"`
	Cost       string  `json:"cost"`
	Fee        string  `json:"fee"`
	Vol        string  `json:"vol"`
	VolClosed  string  `json:"vol_closed"`
	Margin     string  `json:"margin"`
	Terms      string  `json:"terms"`
	RolloverTM string  `json:"rollovertm"`
	Value      *string `json:"value"`
	Net        *string `json:"net"`
	Misc       string  `json:"misc"`
	OFlags     string  `json:"oflags"`
}

// ConsolidatedPosition is the per-pair aggregate returned when positions are
// consolidated by market.
type ConsolidatedPosition struct {
	Pair      string `json:"pair"`
	Positions string `json:"positions"`
	Type      string `json:"type"`
	Leverage  string `json:"leverage"`
	Cost      string `json:"cost"`
	Fee       string `json:"fee"`
	Vol       string `json:"vol"`
	VolClosed string `json:"vol_closed"`
	Margin    string `json:"margin"`
	Value     string `json:"value"`
	Net       string `json:"net"`
}

// AssetPairEntry is one entry of the public AssetPairs result. The payload
// mixes two shapes in the same map: tradeable pair details (aclass_base
// present) and collateral asset details (aclass present).
type AssetPairEntry struct {
	Altname string `json:"altname"`
	Status  string `json:"status"`

	// Tradeable pair variant.
	AclassBase         *string     `json:"aclass_base"`
	WSName             string      `json:"wsname"`
	Base               string      `json:"base"`
	AclassQuote        string      `json:"aclass_quote"`
	Quote              string      `json:"quote"`
	Lot                string      `json:"lot"`
	CostDecimals       int64       `json:"cost_decimals"`
	PairDecimals       int64       `json:"pair_decimals"`
	LotDecimals        int64       `json:"lot_decimals"`
	LotMultiplier      int64       `json:"lot_multiplier"`
	LeverageBuy        []int64     `json:"leverage_buy"`
	LeverageSell       []int64     `json:"leverage_sell"`
	Fees               [][]float64 `json:"fees"`
	FeesMaker          [][]float64 `json:"fees_maker"`
	FeeVolumeCurrency  string      `json:"fee_volume_currency"`
	MarginCall         int64       `json:"margin_call"`
	MarginStop         int64       `json:"margin_stop"`
	OrderMin           string      `json:"ordermin"`
	CostMin            string      `json:"costmin"`
	TickSize           string      `json:"tick_size"`
	LongPositionLimit  *int64      `json:"long_position_limit"`
	ShortPositionLimit *int64      `json:"short_position_limit"`

	// Collateral asset variant.
	Aclass          *string  `json:"aclass"`
	Decimals        int64    `json:"decimals"`
	DisplayDecimals int64    `json:"display_decimals"`
	CollateralValue *float64 `json:"collateral_value"`
}
