package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mjoubert/kraken-sync/internal/config"
	"github.com/mjoubert/kraken-sync/internal/record"
)

const pgUniqueViolation = "23505"

// PostgresStore persists rows in PostgreSQL. Each session is one
// transaction; flushes run inside savepoints so a key collision aborts only
// the colliding record.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPostgresStore connects to the database and ensures the schema exists.
func NewPostgresStore(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*PostgresStore, error) {
	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	logger.Info("connected to database", "host", cfg.Host, "database", cfg.Name)
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (s *PostgresStore) Begin(ctx context.Context) (Session, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &pgSession{
		tx:   tx,
		rows: make(map[record.Entity]map[string]*Row),
	}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

type pgSession struct {
	tx      pgx.Tx
	rows    map[record.Entity]map[string]*Row
	pending []pendingInsert
	done    bool
}

func (s *pgSession) Lookup(ctx context.Context, entity record.Entity, key string) (*Row, error) {
	if s.done {
		return nil, errSessionClosed
	}
	if row, ok := s.rows[entity][key]; ok {
		return row, nil
	}

	def, err := tableFor(entity)
	if err != nil {
		return nil, err
	}

	fields, ok, err := s.selectRow(ctx, def, key)
	if err != nil {
		return nil, fmt.Errorf("lookup %s %q: %w", entity, key, err)
	}
	if !ok {
		return nil, nil
	}

	row := newRow(fields)
	if s.rows[entity] == nil {
		s.rows[entity] = make(map[string]*Row)
	}
	s.rows[entity][key] = row
	return row, nil
}

func (s *pgSession) selectRow(ctx context.Context, def tableDef, key string) (record.Fields, bool, error) {
	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1",
		pgx.Identifier{def.name}.Sanitize(),
		pgx.Identifier{def.keyColumn}.Sanitize(),
	)

	rows, err := s.tx.Query(ctx, sql, key)
	if err != nil {
		return record.Fields{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return record.Fields{}, false, rows.Err()
	}

	values, err := rows.Values()
	if err != nil {
		return record.Fields{}, false, err
	}

	fields := record.NewFields()
	for i, desc := range rows.FieldDescriptions() {
		if desc.Name == def.keyColumn {
			continue
		}
		fields.Set(desc.Name, columnValue(values[i]))
	}
	return fields, true, nil
}

// columnValue narrows a scanned column to the value types field diffing
// understands.
func columnValue(v any) record.Value {
	switch v := v.(type) {
	case nil:
		return nil
	case string, int64, float64, bool:
		return v
	case int32:
		return int64(v)
	case int16:
		return int64(v)
	case float32:
		return float64(v)
	default:
		return fmt.Sprint(v)
	}
}

func (s *pgSession) Insert(entity record.Entity, key string, fields record.Fields) {
	s.pending = append(s.pending, pendingInsert{entity: entity, key: key, fields: fields.Clone()})
}

// Flush writes staged inserts and dirty rows inside a savepoint. On a unique
// violation the savepoint is rolled back, staged inserts are discarded and
// *DuplicateKeyError is returned; the enclosing transaction stays open.
func (s *pgSession) Flush(ctx context.Context) error {
	if s.done {
		return errSessionClosed
	}
	if len(s.pending) == 0 && !s.anyDirty() {
		return nil
	}

	sp, err := s.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin savepoint: %w", err)
	}

	if err := s.writePending(ctx, sp); err != nil {
		_ = sp.Rollback(ctx)
		s.pending = nil
		return err
	}
	if err := s.writeDirty(ctx, sp); err != nil {
		_ = sp.Rollback(ctx)
		s.pending = nil
		return err
	}

	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release savepoint: %w", err)
	}
	s.pending = nil
	for _, rows := range s.rows {
		for _, row := range rows {
			row.clearDirty()
		}
	}
	return nil
}

func (s *pgSession) writePending(ctx context.Context, sp pgx.Tx) error {
	for _, p := range s.pending {
		def, err := tableFor(p.entity)
		if err != nil {
			return err
		}
		sql, args := insertSQL(def, p.key, p.fields)
		if _, err := sp.Exec(ctx, sql, args...); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return &DuplicateKeyError{Entity: p.entity, Key: p.key}
			}
			return fmt.Errorf("insert %s %q: %w", p.entity, p.key, err)
		}
	}
	return nil
}

func (s *pgSession) writeDirty(ctx context.Context, sp pgx.Tx) error {
	for entity, rows := range s.rows {
		def, err := tableFor(entity)
		if err != nil {
			return err
		}
		for key, row := range rows {
			if !row.Dirty() {
				continue
			}
			sql, args := updateSQL(def, key, row)
			if _, err := sp.Exec(ctx, sql, args...); err != nil {
				return fmt.Errorf("update %s %q: %w", entity, key, err)
			}
		}
	}
	return nil
}

func (s *pgSession) anyDirty() bool {
	for _, rows := range s.rows {
		for _, row := range rows {
			if row.Dirty() {
				return true
			}
		}
	}
	return false
}

func (s *pgSession) Commit(ctx context.Context) error {
	if s.done {
		return errSessionClosed
	}
	if err := s.Flush(ctx); err != nil {
		return err
	}
	s.done = true
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *pgSession) Rollback(ctx context.Context) error {
	s.done = true
	if err := s.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

func insertSQL(def tableDef, key string, fields record.Fields) (string, []any) {
	names := fields.Names()
	cols := make([]string, 0, len(names)+1)
	args := make([]any, 0, len(names)+1)

	if def.keyColumn != "" {
		cols = append(cols, pgx.Identifier{def.keyColumn}.Sanitize())
		args = append(args, key)
	}
	for _, name := range names {
		cols = append(cols, pgx.Identifier{name}.Sanitize())
		args = append(args, fields.Get(name))
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{def.name}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "),
	)
	return sql, args
}

func updateSQL(def tableDef, key string, row *Row) (string, []any) {
	sets := make([]string, 0, len(row.dirty))
	args := make([]any, 0, len(row.dirty)+1)
	for i, name := range row.dirty {
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{name}.Sanitize(), i+1))
		args = append(args, row.fields.Get(name))
	}
	args = append(args, key)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		pgx.Identifier{def.name}.Sanitize(),
		strings.Join(sets, ", "),
		pgx.Identifier{def.keyColumn}.Sanitize(),
		len(args),
	)
	return sql, args
}
