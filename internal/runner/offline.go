package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/mjoubert/kraken-sync/internal/api"
	"github.com/mjoubert/kraken-sync/internal/normalize"
	"github.com/mjoubert/kraken-sync/internal/record"
	"github.com/mjoubert/kraken-sync/internal/report"
)

// IngestFile reconciles one captured response file. The file holds a raw
// venue envelope; it passes the same envelope check, normalization and
// reconciliation as a live fetch.
func (r *Runner) IngestFile(ctx context.Context, category, path string) error {
	rep := report.NewRecorder()
	defer r.report.Merge(rep)

	data, err := os.ReadFile(path)
	if err != nil {
		rep.Error(category, err.Error())
		return fmt.Errorf("read %s: %w", path, err)
	}

	result, err := api.CheckEnvelope(data)
	if err != nil {
		rep.Error(category, err.Error())
		return fmt.Errorf("envelope %s: %w", path, err)
	}

	recs, err := r.decodeResult(category, result)
	if err != nil {
		if errors.Is(err, api.ErrNoItems) {
			r.logger.Info("nothing to reconcile", "category", category, "file", path)
			return nil
		}
		rep.Error(category, err.Error())
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if err := r.apply(ctx, category, recs, rep); err != nil {
		return err
	}

	r.logger.Info("file ingested", "category", category, "file", path, "records", len(recs))
	return nil
}

// IngestDir ingests every .json file in a directory, in name order. The
// category is inferred from the file name prefix. Files that do not match a
// category are skipped.
func (r *Runner) IngestDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		category, ok := categoryForFile(name)
		if !ok {
			r.logger.Warn("no category for file, skipping", "file", name)
			continue
		}
		if err := r.IngestFile(ctx, category, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// CategoryForPath infers the ingestion category from a file path.
func CategoryForPath(path string) (string, bool) {
	return categoryForFile(filepath.Base(path))
}

// categoryForFile matches a file name against the category list by longest
// prefix, so trade_balance.json is not read as trades.
func categoryForFile(name string) (string, bool) {
	base := strings.TrimSuffix(name, ".json")

	match := ""
	for _, cat := range Categories {
		if (base == cat || strings.HasPrefix(base, cat+"-") || strings.HasPrefix(base, cat+"_")) &&
			len(cat) > len(match) {
			match = cat
		}
	}
	return match, match != ""
}

func (r *Runner) decodeResult(category string, result []byte) ([]record.Record, error) {
	switch category {
	case "balance":
		var m map[string]string
		if err := json.Unmarshal(result, &m); err != nil {
			return nil, err
		}
		if err := api.NonEmptyMap("result", m); err != nil {
			return nil, err
		}
		return normalize.Balances(m)

	case "trade_balance":
		var tb api.TradeBalance
		if err := json.Unmarshal(result, &tb); err != nil {
			return nil, err
		}
		rec, err := normalize.TradeBalanceRecord(&tb, r.now())
		if err != nil {
			return nil, err
		}
		return []record.Record{rec}, nil

	case "orders":
		var res struct {
			Open   map[string]api.Order `json:"open"`
			Closed map[string]api.Order `json:"closed"`
		}
		if err := json.Unmarshal(result, &res); err != nil {
			return nil, err
		}
		if len(res.Open) == 0 && len(res.Closed) == 0 {
			return nil, api.ErrNoItems
		}
		recs, err := normalize.Orders(res.Open)
		if err != nil {
			return nil, err
		}
		batch, err := normalize.Orders(res.Closed)
		if err != nil {
			return nil, err
		}
		return append(recs, batch...), nil

	case "trades":
		var res api.TradesHistoryResult
		if err := json.Unmarshal(result, &res); err != nil {
			return nil, err
		}
		if err := api.NonEmptyMap("trades", res.Trades); err != nil {
			return nil, err
		}
		return normalize.Trades(res.Trades)

	case "ledgers":
		var res api.LedgersResult
		if err := json.Unmarshal(result, &res); err != nil {
			return nil, err
		}
		if err := api.NonEmptyMap("ledger", res.Ledger); err != nil {
			return nil, err
		}
		return normalize.Ledgers(res.Ledger)

	case "positions":
		return decodePositions(result)

	case "asset_pairs":
		var m map[string]api.AssetPairEntry
		if err := json.Unmarshal(result, &m); err != nil {
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

// decodePositions handles both position response shapes: a JSON array is a
// consolidated-by-market capture, an object is a per-trade capture.
func decodePositions(result []byte) ([]record.Record, error) {
	trimmed := strings.TrimLeft(string(result), " \t\r\n")
	if strings.HasPrefix(trimmed, "[") {
		var consolidated []api.ConsolidatedPosition
		if err := json.Unmarshal(result, &consolidated); err != nil {
			return nil, err
		}
		if err := api.NonEmptySlice(consolidated); err != nil {
			return nil, err
		}
		return normalize.Positions(consolidated, nil)
	}

	var open map[string]api.OpenPosition
	if err := json.Unmarshal(result, &open); err != nil {
		return nil, err
	}
	if err := api.NonEmptyMap("result", open); err != nil {
		return nil, err
	}
	return normalize.Positions(nil, open)
}
