package reconcile

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/normalize"
	"github.com/mjoubert/kraken-sync/internal/record"
	"github.com/mjoubert/kraken-sync/internal/report"
	"github.com/mjoubert/kraken-sync/internal/store"
)

func testEngine() *Engine {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func fields(pairs ...any) record.Fields {
	f := record.NewFields()
	for i := 0; i < len(pairs); i += 2 {
		f.Set(pairs[i].(string), pairs[i+1])
	}
	return f
}

func balanceRecords() []record.Record {
	return []record.Record{
		{Entity: record.EntityBalance, Key: "XXBT", Fields: fields("amount", "0.75")},
		{Entity: record.EntityBalance, Key: "ZUSD", Fields: fields("amount", "1200.50")},
	}
}

func runBatch(t *testing.T, st store.Store, category string, recs []record.Record) (Result, *report.Recorder) {
	t.Helper()
	ctx := context.Background()
	sess, err := st.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	rep := report.NewRecorder()
	res, err := testEngine().Reconcile(ctx, sess, category, recs, rep)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if err := sess.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	return res, rep
}

func TestReconcileCreatesThenLeavesUnchanged(t *testing.T) {
	st := store.NewMemoryStore()

	res, _ := runBatch(t, st, "balance", balanceRecords())
	if res.Created != 2 || res.Updated != 0 || res.Unchanged != 0 || res.Failed != 0 {
		t.Errorf("first pass = %+v, want 2 created", res)
	}
	first := st.Snapshot()

	// Replaying the identical batch must not change anything.
	res, rep := runBatch(t, st, "balance", balanceRecords())
	if res.Unchanged != 2 || res.Created != 0 || res.Updated != 0 {
		t.Errorf("second pass = %+v, want 2 unchanged", res)
	}
	if rep.TotalErrors() != 0 {
		t.Errorf("TotalErrors() = %d, want 0", rep.TotalErrors())
	}
	if !reflect.DeepEqual(first, st.Snapshot()) {
		t.Error("replaying an identical batch changed the store")
	}
}

func TestReconcileUpdatesChangedFields(t *testing.T) {
	st := store.NewMemoryStore()
	runBatch(t, st, "balance", balanceRecords())

	changed := balanceRecords()
	changed[1].Fields.Set("amount", "1300.00")

	res, _ := runBatch(t, st, "balance", changed)
	if res.Updated != 1 || res.Unchanged != 1 {
		t.Errorf("result = %+v, want 1 updated, 1 unchanged", res)
	}

	snap := st.Snapshot()
	if got := snap[record.EntityBalance]["ZUSD"].Get("amount"); got != "1300.00" {
		t.Errorf("ZUSD amount = %v, want 1300.00", got)
	}
	if got := snap[record.EntityBalance]["XXBT"].Get("amount"); got != "0.75" {
		t.Errorf("XXBT amount = %v, want 0.75", got)
	}
}

func TestReconcileChildBeforeParent(t *testing.T) {
	st := store.NewMemoryStore()

	orders, err := normalize.Orders(map[string]api.Order{
		"OAAA-0001": {
			Status: "open",
			Descr:  &api.OrderDescription{Pair: "XBTUSD", Type: "buy", OrderType: "limit", Price: "30010.0"},
			Vol:    "1.25",
		},
	})
	if err != nil {
		t.Fatalf("Orders() error = %v", err)
	}

	res, _ := runBatch(t, st, "orders", orders)
	if res.Created != 1 {
		t.Errorf("result = %+v, want 1 created", res)
	}

	snap := st.Snapshot()
	descr, ok := snap[record.EntityOrderDescription]["OAAA-0001"]
	if !ok {
		t.Fatal("order description row missing")
	}
	if got := descr.Get("pair"); got != "XBTUSD" {
		t.Errorf("description pair = %v, want XBTUSD", got)
	}
	order, ok := snap[record.EntityOrder]["OAAA-0001"]
	if !ok {
		t.Fatal("order row missing")
	}
	if got := order.Get("descr_id"); got != "OAAA-0001" {
		t.Errorf("order descr_id = %v, want OAAA-0001", got)
	}
}

func TestReconcileMissingReference(t *testing.T) {
	st := store.NewMemoryStore()

	recs := []record.Record{{
		Entity:   record.EntityOpenPosition,
		Key:      "TAAA-1111",
		Fields:   fields("pair", "XBTUSD"),
		Requires: &record.Ref{Entity: record.EntityConsolidatedPosition, Key: "XBTUSD"},
	}}

	res, rep := runBatch(t, st, "positions", recs)
	if res.Failed != 1 {
		t.Errorf("result = %+v, want 1 failed", res)
	}
	if errs, _ := rep.Counts("missing_reference"); errs != 1 {
		t.Errorf("missing_reference errors = %d, want 1", errs)
	}
	if _, ok := st.Snapshot()[record.EntityOpenPosition]; ok {
		t.Error("failed record reached the store")
	}
}

func TestReconcilePositionsResolveWithinBatch(t *testing.T) {
	st := store.NewMemoryStore()

	recs, err := normalize.Positions(
		[]api.ConsolidatedPosition{{Pair: "XBTUSD", Type: "buy", Cost: "100", Fee: "1", Vol: "1", VolClosed: "0", Margin: "20", Value: "101", Net: "1"}},
		map[string]api.OpenPosition{
			"TAAA-1111": {Pair: "XBTUSD", Type: "buy", Cost: "100", Fee: "1", Vol: "1", VolClosed: "0", Margin: "20"},
		},
	)
	if err != nil {
		t.Fatalf("Positions() error = %v", err)
	}

	res, rep := runBatch(t, st, "positions", recs)
	if res.Created != 2 || res.Failed != 0 {
		t.Errorf("result = %+v, want 2 created", res)
	}
	if rep.TotalErrors() != 0 {
		t.Errorf("TotalErrors() = %d, want 0", rep.TotalErrors())
	}
}

func TestReconcileOrderPayloadEndToEnd(t *testing.T) {
	payload := `{"O1": {"status":"closed","opentm":100.0,"descr":{"pair":"XBTUSD","type":"buy","ordertype":"market","price":"0","price2":"0","order":"buy 1 XBTUSD @ market"},"vol":"1","vol_exec":"1","cost":"50000","fee":"10","price":"50000","oflags":"fciq"}}`

	var orders map[string]api.Order
	if err := json.Unmarshal([]byte(payload), &orders); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	recs, err := normalize.Orders(orders)
	if err != nil {
		t.Fatalf("Orders() error = %v", err)
	}

	st := store.NewMemoryStore()
	_, rep := runBatch(t, st, "orders", recs)

	snap := st.Snapshot()
	descr, ok := snap[record.EntityOrderDescription]["O1"]
	if !ok {
		t.Fatal("description row O1 missing")
	}
	if got := descr.Get("pair"); got != "XBTUSD" {
		t.Errorf("description pair = %v, want XBTUSD", got)
	}
	order, ok := snap[record.EntityOrder]["O1"]
	if !ok {
		t.Fatal("order row O1 missing")
	}
	if got := order.Get("cost"); got != "50000" {
		t.Errorf("order cost = %v, want 50000", got)
	}
	if got := order.Get("descr_id"); got != "O1" {
		t.Errorf("order descr_id = %v, want O1", got)
	}
	if errs, _ := rep.Counts("orders"); errs != 0 {
		t.Errorf("orders errors = %d, want 0", errs)
	}
}

// orderedSession records the sequence of staged inserts.
type orderedSession struct {
	store.Session
	inserted []record.Entity
}

func (s *orderedSession) Insert(entity record.Entity, key string, f record.Fields) {
	s.inserted = append(s.inserted, entity)
	s.Session.Insert(entity, key, f)
}

func TestReconcileStagesChildFirst(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	inner, err := st.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	sess := &orderedSession{Session: inner}

	orders, err := normalize.Orders(map[string]api.Order{
		"OAAA-0001": {Status: "open", Descr: &api.OrderDescription{Pair: "XBTUSD"}},
	})
	if err != nil {
		t.Fatalf("Orders() error = %v", err)
	}
	if _, err := testEngine().Reconcile(ctx, sess, "orders", orders, report.NewRecorder()); err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := []record.Entity{record.EntityOrderDescription, record.EntityOrder}
	if !reflect.DeepEqual(sess.inserted, want) {
		t.Errorf("insert order = %v, want %v", sess.inserted, want)
	}
}

// dupSession wraps a real session and fails the flush of one flagged key the
// way a concurrent insert would.
type dupSession struct {
	store.Session
	dupEntity record.Entity
	dupKey    string
	staged    []string
}

func (s *dupSession) Insert(entity record.Entity, key string, f record.Fields) {
	if entity == s.dupEntity && key == s.dupKey {
		s.staged = append(s.staged, key)
		return
	}
	s.Session.Insert(entity, key, f)
}

func (s *dupSession) Flush(ctx context.Context) error {
	if len(s.staged) > 0 {
		key := s.staged[0]
		s.staged = s.staged[:0]
		return &store.DuplicateKeyError{Entity: s.dupEntity, Key: key}
	}
	return s.Session.Flush(ctx)
}

func TestReconcileDuplicateKeyIsolation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	inner, err := st.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	sess := &dupSession{Session: inner, dupEntity: record.EntityTrade, dupKey: "TBBB-2222"}

	recs := []record.Record{
		{Entity: record.EntityTrade, Key: "TAAA-1111", Fields: fields("pair", "XBTUSD")},
		{Entity: record.EntityTrade, Key: "TBBB-2222", Fields: fields("pair", "XBTUSD")},
		{Entity: record.EntityTrade, Key: "TCCC-3333", Fields: fields("pair", "ETHUSD")},
	}

	rep := report.NewRecorder()
	res, err := testEngine().Reconcile(ctx, sess, "trades", recs, rep)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if err := inner.Commit(ctx); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if res.Created != 2 || res.Failed != 1 {
		t.Errorf("result = %+v, want 2 created, 1 failed", res)
	}
	if rep.TotalErrors() != 0 {
		t.Errorf("TotalErrors() = %d, want 0 (duplicates are warnings)", rep.TotalErrors())
	}
	if _, warns := rep.Counts("duplicate_errors"); warns != 1 {
		t.Errorf("duplicate_errors warnings = %d, want 1", warns)
	}

	snap := st.Snapshot()[record.EntityTrade]
	if len(snap) != 2 {
		t.Fatalf("committed trades = %d, want 2", len(snap))
	}
	if _, ok := snap["TBBB-2222"]; ok {
		t.Error("duplicate record reached the store")
	}
}
