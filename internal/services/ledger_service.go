package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"yesan/internal/core"
	"yesan/internal/storage"
)

// EventPublisher announces ledger changes to the mirror pipeline. Optional:
// a nil publisher disables mirroring without affecting the ledger.
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error
	PublishTransactionRemoved(ctx context.Context, tx core.Transaction) error
}

// LedgerService orchestrates every ledger operation as a read-modify-write
// cycle against the store. The mutex makes each cycle atomic: the state a
// mutation loads is the state it saves over.
type LedgerService struct {
	mu     sync.Mutex
	store  storage.Store
	events EventPublisher
	now    func() time.Time
}

func NewLedgerService(store storage.Store, events EventPublisher) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
		now:    time.Now,
	}
}

// NewLedgerServiceAt pins the clock used for default month resolution.
func NewLedgerServiceAt(store storage.Store, events EventPublisher, now func() time.Time) *LedgerService {
	return &LedgerService{
		store:  store,
		events: events,
		now:    now,
	}
}

// Items returns the budget items of a month, materializing the month from
// its nearest predecessor first when it has never been opened.
func (s *LedgerService) Items(ctx context.Context, key core.MonthKey) ([]core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.ensureMonthLocked(ctx, key)
	if err != nil {
		return nil, err
	}
	return state.ItemsFor(key), nil
}

// UpsertItem creates or replaces one budget item in a month.
func (s *LedgerService) UpsertItem(ctx context.Context, key core.MonthKey, item core.BudgetItem) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.ensureMonthLocked(ctx, key)
	if err != nil {
		return core.BudgetItem{}, err
	}

	saved, err := state.UpsertItem(key, item)
	if err != nil {
		return core.BudgetItem{}, err
	}
	if err := s.store.Save(ctx, state); err != nil {
		return core.BudgetItem{}, fmt.Errorf("save item: %w", err)
	}

	slog.InfoContext(ctx, "Budget item saved",
		"month", string(key),
		"item_id", saved.ID,
		"name", saved.Name)

	return saved, nil
}

// DeleteItem removes a budget item definition. Removing an unknown id is a
// no-op; recorded transactions are untouched either way.
func (s *LedgerService) DeleteItem(ctx context.Context, key core.MonthKey, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := key.Validate(); err != nil {
		return err
	}

	state, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	if !state.DeleteItem(key, itemID) {
		return nil
	}
	if err := s.store.Save(ctx, state); err != nil {
		return fmt.Errorf("save after delete: %w", err)
	}

	slog.InfoContext(ctx, "Budget item deleted", "month", string(key), "item_id", itemID)
	return nil
}

// TransactionFilter narrows Transactions. A zero filter returns the whole
// ledger, most recent first.
type TransactionFilter struct {
	Month core.MonthKey
	Item  string
}

// Transactions lists recorded transactions. Filtering by month keeps the
// transactions whose date falls inside that month's budget period.
func (s *LedgerService) Transactions(ctx context.Context, filter TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	pred := func(tx core.Transaction) bool { return true }

	if filter.Month != "" {
		period, err := core.ResolvePeriodKey(filter.Month, state.Settings.CycleStartDay)
		if err != nil {
			return nil, err
		}
		inner := pred
		pred = func(tx core.Transaction) bool {
			return inner(tx) && period.Contains(tx.Date)
		}
	}
	if filter.Item != "" {
		inner := pred
		pred = func(tx core.Transaction) bool {
			return inner(tx) && tx.Item == filter.Item
		}
	}

	return state.QueryTransactions(pred), nil
}

// AddTransaction records an expense and publishes the mirror event. Publish
// failures are logged, never surfaced: the ledger write already succeeded.
func (s *LedgerService) AddTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("load state: %w", err)
	}

	saved, err := state.AppendTransaction(tx)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.store.Save(ctx, state); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishTransactionRecorded(ctx, saved); err != nil {
			slog.ErrorContext(ctx, "Failed to publish transaction event",
				"tx_id", saved.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"tx_id", saved.ID,
		"item", saved.Item,
		"amount", saved.Amount)

	return saved, nil
}

// RemoveTransaction deletes a transaction by id. Returns the removed
// transaction and false when the id is unknown.
func (s *LedgerService) RemoveTransaction(ctx context.Context, txID string) (core.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("load state: %w", err)
	}

	removed, ok := state.RemoveTransaction(txID)
	if !ok {
		return core.Transaction{}, false, nil
	}
	if err := s.store.Save(ctx, state); err != nil {
		return core.Transaction{}, false, fmt.Errorf("save after remove: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishTransactionRemoved(ctx, removed); err != nil {
			slog.ErrorContext(ctx, "Failed to publish removal event",
				"tx_id", removed.ID, "error", err)
		}
	}

	slog.InfoContext(ctx, "Transaction removed", "tx_id", removed.ID, "item", removed.Item)
	return removed, true, nil
}

// Report builds the execution report for a month.
func (s *LedgerService) Report(ctx context.Context, key core.MonthKey) (core.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.ensureMonthLocked(ctx, key)
	if err != nil {
		return core.Report{}, err
	}

	return core.BuildReport(key, state.Settings, state.SpendingItemsFor(key), state.Transactions)
}

// Settings returns the current ledger settings.
func (s *LedgerService) Settings(ctx context.Context) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load state: %w", err)
	}
	return state.Settings, nil
}

// SetCycleStartDay changes the day budget months begin on. Takes effect for
// every subsequent period resolution; stored data is untouched.
func (s *LedgerService) SetCycleStartDay(ctx context.Context, day int) (core.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := core.Settings{CycleStartDay: day}
	if err := settings.Validate(); err != nil {
		return core.Settings{}, err
	}

	state, err := s.store.Load(ctx)
	if err != nil {
		return core.Settings{}, fmt.Errorf("load state: %w", err)
	}

	state.Settings = settings
	if err := s.store.Save(ctx, state); err != nil {
		return core.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	slog.InfoContext(ctx, "Cycle start day updated", "day", day)
	return settings, nil
}

// Reset drops everything and reseeds the default state.
func (s *LedgerService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}

	slog.InfoContext(ctx, "Ledger reset to defaults")
	return nil
}

// BudgetMonthFor resolves which budget month a calendar date belongs to
// under the current settings. Used for report cache invalidation.
func (s *LedgerService) BudgetMonthFor(ctx context.Context, d core.Date) (core.MonthKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load state: %w", err)
	}
	return core.BudgetMonthOf(d, state.Settings.CycleStartDay), nil
}

// CurrentMonth resolves the budget month containing the present moment.
func (s *LedgerService) CurrentMonth(ctx context.Context) (core.MonthKey, error) {
	return s.BudgetMonthFor(ctx, core.NewDate(s.now().Year(), int(s.now().Month()), s.now().Day()))
}

// ensureMonthLocked loads the state and materializes key's items when the
// month has never been opened. Persists only when propagation happened.
// Caller must hold s.mu.
func (s *LedgerService) ensureMonthLocked(ctx context.Context, key core.MonthKey) (*core.State, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}

	state, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}

	if state.EnsureMonth(key) {
		if err := s.store.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("save propagated month: %w", err)
		}
		slog.InfoContext(ctx, "Materialized budget month from predecessor", "month", string(key))
	}

	return state, nil
}
