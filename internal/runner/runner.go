// Package runner drives ingestion: it fetches each category from the venue,
// normalizes the payload and reconciles it against the store, one session
// per category run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/normalize"
	"github.com/mjoubert/kraken-sync/internal/reconcile"
	"github.com/mjoubert/kraken-sync/internal/record"
	"github.com/mjoubert/kraken-sync/internal/report"
	"github.com/mjoubert/kraken-sync/internal/store"
)

// Categories lists every ingestion category in run order.
var Categories = []string{
	"balance",
	"trade_balance",
	"orders",
	"trades",
	"ledgers",
	"positions",
	"asset_pairs",
}

// Fetcher is the venue API surface the runner needs.
type Fetcher interface {
	Balance(ctx context.Context) (map[string]string, error)
	TradeBalance(ctx context.Context, asset string) (*api.TradeBalance, error)
	OpenOrders(ctx context.Context) (*api.OpenOrdersResult, error)
	ClosedOrders(ctx context.Context) (*api.ClosedOrdersResult, error)
	TradesHistory(ctx context.Context) (*api.TradesHistoryResult, error)
	Ledgers(ctx context.Context) (*api.LedgersResult, error)
	OpenPositions(ctx context.Context) (map[string]api.OpenPosition, error)
	ConsolidatedPositions(ctx context.Context) ([]api.ConsolidatedPosition, error)
	AssetPairs(ctx context.Context) (map[string]api.AssetPairEntry, error)
}

// Runner executes category runs. Each run's errors and warnings are folded
// into the shared recorder.
type Runner struct {
	client Fetcher
	store  store.Store
	engine *reconcile.Engine
	report *report.Recorder
	logger *slog.Logger

	now func() time.Time
}

func New(client Fetcher, st store.Store, rep *report.Recorder, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		client: client,
		store:  st,
		engine: reconcile.New(logger),
		report: rep,
		logger: logger,
		now:    time.Now,
	}
}

// RunCategory fetches, normalizes and reconciles one category. An empty
// payload is a successful no-op. Fetch and commit failures are recorded and
// returned.
func (r *Runner) RunCategory(ctx context.Context, category string) error {
	started := r.now()
	rep := report.NewRecorder()
	defer r.report.Merge(rep)

	recs, err := r.fetch(ctx, category, started)
	if err != nil {
		if errors.Is(err, api.ErrNoItems) {
			r.logger.Info("nothing to reconcile", "category", category)
			return nil
		}
		rep.Error(category, err.Error())
		return fmt.Errorf("fetch %s: %w", category, err)
	}

	if err := r.apply(ctx, category, recs, rep); err != nil {
		return err
	}

	r.logger.Info("category run complete",
		"category", category,
		"records", len(recs),
		"duration", r.now().Sub(started),
	)
	return nil
}

// apply reconciles a batch inside a fresh session and commits it.
func (r *Runner) apply(ctx context.Context, category string, recs []record.Record, rep *report.Recorder) error {
	sess, err := r.store.Begin(ctx)
	if err != nil {
		rep.Error(category, err.Error())
		return fmt.Errorf("begin session: %w", err)
	}
	defer sess.Rollback(ctx)

	if _, err := r.engine.Reconcile(ctx, sess, category, recs, rep); err != nil {
		return err
	}

	if err := sess.Commit(ctx); err != nil {
		rep.Error(category, err.Error())
		return fmt.Errorf("commit %s: %w", category, err)
	}
	return nil
}

// fetch retrieves and normalizes one category's payload. It reports
// api.ErrNoItems when the venue returned nothing to reconcile.
func (r *Runner) fetch(ctx context.Context, category string, capturedAt time.Time) ([]record.Record, error) {
	switch category {
	case "balance":
		m, err := r.client.Balance(ctx)
		if err != nil {
			return nil, err
		}
		if err := api.NonEmptyMap("result", m); err != nil {
			return nil, err
		}
		return normalize.Balances(m)

	case "trade_balance":
		tb, err := r.client.TradeBalance(ctx, "")
		if err != nil {
			return nil, err
		}
		rec, err := normalize.TradeBalanceRecord(tb, capturedAt)
		if err != nil {
			return nil, err
		}
		return []record.Record{rec}, nil

	case "orders":
		return r.fetchOrders(ctx)

	case "trades":
		res, err := r.client.TradesHistory(ctx)
		if err != nil {
			return nil, err
		}
		if err := api.NonEmptyMap("trades", res.Trades); err != nil {
			return nil, err
		}
		return normalize.Trades(res.Trades)

	case "ledgers":
		res, err := r.client.Ledgers(ctx)
		if err != nil {
			return nil, err
		}
		if err := api.NonEmptyMap("ledger", res.Ledger); err != nil {
			return nil, err
		}
		return normalize.Ledgers(res.Ledger)

	case "positions":
		return r.fetchPositions(ctx)

	case "asset_pairs":
		m, err := r.client.AssetPairs(ctx)
		if err != nil {
			return nil, err
		}
		if err := api.NonEmptyMap("result", m); err != nil {
			return nil, err
		}
		return normalize.AssetPairs(m)

	default:
		return nil, fmt.Errorf("unknown category %q", category)
	}
}

// fetchOrders combines the open and closed order streams. The run is a
// no-op only when both streams are empty.
func (r *Runner) fetchOrders(ctx context.Context) ([]record.Record, error) {
	open, err := r.client.OpenOrders(ctx)
	if err != nil {
		return nil, err
	}
	closed, err := r.client.ClosedOrders(ctx)
	if err != nil {
		return nil, err
	}

	openErr := api.NonEmptyMap("open", open.Open)
	closedErr := api.NonEmptyMap("closed", closed.Closed)
	if openErr != nil && !errors.Is(openErr, api.ErrNoItems) {
		return nil, openErr
	}
	if closedErr != nil && !errors.Is(closedErr, api.ErrNoItems) {
		return nil, closedErr
	}
	if openErr != nil && closedErr != nil {
		return nil, api.ErrNoItems
	}

	var recs []record.Record
	if openErr == nil {
		batch, err := normalize.Orders(open.Open)
		if err != nil {
			return nil, err
		}
		recs = append(recs, batch...)
	}
	if closedErr == nil {
		batch, err := normalize.Orders(closed.Closed)
		if err != nil {
			return nil, err
		}
		recs = append(recs, batch...)
	}
	return recs, nil
}

// fetchPositions combines the consolidated and per-trade position streams.
// Consolidated aggregates precede open positions so references resolve
// within the batch.
func (r *Runner) fetchPositions(ctx context.Context) ([]record.Record, error) {
	consolidated, err := r.client.ConsolidatedPositions(ctx)
	if err != nil {
		return nil, err
	}
	open, err := r.client.OpenPositions(ctx)
	if err != nil {
		return nil, err
	}

	consErr := api.NonEmptySlice(consolidated)
	openErr := api.NonEmptyMap("result", open)
	if openErr != nil && !errors.Is(openErr, api.ErrNoItems) {
		return nil, openErr
	}
	if consErr != nil && openErr != nil {
		return nil, api.ErrNoItems
	}
	return normalize.Positions(consolidated, open)
}
