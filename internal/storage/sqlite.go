package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"yesan/internal/core"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore persists the full ledger state in SQLite. Every Save rewrites
// the whole state inside one transaction, matching the single-writer
// read-modify-write model: there is no partial-update mode.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("%w: create db directory: %v", ErrStorage, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite database: %v", ErrStorage, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping database: %v", ErrStorage, err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: run migrations: %v", ErrStorage, err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// runMigrations brings the schema up to date from the embedded SQL files.
// It opens its own connection so a failed migration never poisons the
// store's pool.
func runMigrations(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database for migration: %w", err)
	}
	defer migrateDB.Close()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("wrap sqlite connection: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("build migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*core.State, error) {
	seeded, err := s.hasSettings(ctx)
	if err != nil {
		return nil, err
	}
	if !seeded {
		seed := core.DefaultState(s.now())
		if err := s.Save(ctx, seed); err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Seeded default ledger state")
		return seed, nil
	}

	state := core.NewState()

	row := s.db.QueryRowContext(ctx, `SELECT cycle_start_day FROM settings WHERE id = 1`)
	if err := row.Scan(&state.Settings.CycleStartDay); err != nil {
		return nil, fmt.Errorf("%w: load settings: %v", ErrStorage, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT month_key, id, top_category, name, plan FROM budget_items ORDER BY month_key, position`)
	if err != nil {
		return nil, fmt.Errorf("%w: load budget items: %v", ErrStorage, err)
	}
	defer rows.Close()
	for rows.Next() {
		var monthKey, id, top, name string
		var plan int64
		if err := rows.Scan(&monthKey, &id, &top, &name, &plan); err != nil {
			return nil, fmt.Errorf("%w: scan budget item: %v", ErrStorage, err)
		}
		key := core.MonthKey(monthKey)
		state.Items[key] = append(state.Items[key], core.BudgetItem{
			ID:   id,
			Top:  core.TopCategory(top),
			Name: name,
			Plan: plan,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate budget items: %v", ErrStorage, err)
	}

	txRows, err := s.db.QueryContext(ctx,
		`SELECT id, tx_date, top_category, item_name, amount, memo FROM transactions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("%w: load transactions: %v", ErrStorage, err)
	}
	defer txRows.Close()
	for txRows.Next() {
		var id, txDate, top, itemName, memo string
		var amount int64
		if err := txRows.Scan(&id, &txDate, &top, &itemName, &amount, &memo); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %v", ErrStorage, err)
		}
		date, err := core.ParseDate(txDate)
		if err != nil {
			return nil, fmt.Errorf("%w: stored transaction %s has bad date %q", ErrStorage, id, txDate)
		}
		state.Transactions = append(state.Transactions, core.Transaction{
			ID:     id,
			Date:   date,
			Top:    core.TopCategory(top),
			Item:   itemName,
			Amount: amount,
			Memo:   memo,
		})
	}
	if err := txRows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate transactions: %v", ErrStorage, err)
	}

	return state, nil
}

func (s *SQLiteStore) Save(ctx context.Context, state *core.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin save: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM budget_items`,
		`DELETE FROM transactions`,
		`DELETE FROM settings`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: clear table: %v", ErrStorage, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO settings (id, cycle_start_day) VALUES (1, ?)`,
		state.Settings.CycleStartDay); err != nil {
		return fmt.Errorf("%w: save settings: %v", ErrStorage, err)
	}

	keys := make([]string, 0, len(state.Items))
	for key := range state.Items {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)
	for _, key := range keys {
		for pos, it := range state.Items[core.MonthKey(key)] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO budget_items (id, month_key, top_category, name, plan, position) VALUES (?, ?, ?, ?, ?, ?)`,
				it.ID, key, string(it.Top), it.Name, it.Plan, pos); err != nil {
				return fmt.Errorf("%w: save budget item %s: %v", ErrStorage, it.ID, err)
			}
		}
	}

	for pos, t := range state.Transactions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, tx_date, top_category, item_name, amount, memo, position) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Date.String(), string(t.Top), t.Item, t.Amount, t.Memo, pos); err != nil {
			return fmt.Errorf("%w: save transaction %s: %v", ErrStorage, t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit save: %v", ErrStorage, err)
	}
	return nil
}

func (s *SQLiteStore) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin reset: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM budget_items`,
		`DELETE FROM transactions`,
		`DELETE FROM settings`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: clear table: %v", ErrStorage, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit reset: %v", ErrStorage, err)
	}

	slog.InfoContext(ctx, "Persisted state cleared")
	return nil
}

func (s *SQLiteStore) hasSettings(ctx context.Context) (bool, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM settings WHERE id = 1`)
	if err := row.Scan(&count); err != nil {
		return false, fmt.Errorf("%w: check settings: %v", ErrStorage, err)
	}
	return count > 0, nil
}
