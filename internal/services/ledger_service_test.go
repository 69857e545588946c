package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"yesan/internal/core"
	"yesan/internal/storage"
)

type recordingPublisher struct {
	recorded []core.Transaction
	removed  []core.Transaction
	err      error
}

func (p *recordingPublisher) PublishTransactionRecorded(_ context.Context, tx core.Transaction) error {
	if p.err != nil {
		return p.err
	}
	p.recorded = append(p.recorded, tx)
	return nil
}

func (p *recordingPublisher) PublishTransactionRemoved(_ context.Context, tx core.Transaction) error {
	if p.err != nil {
		return p.err
	}
	p.removed = append(p.removed, tx)
	return nil
}

func julyClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.July, 15, 9, 0, 0, 0, time.UTC)
	}
}

func newTestService() (*LedgerService, *storage.MemoryStore, *recordingPublisher) {
	store := storage.NewMemoryStoreAt(julyClock())
	pub := &recordingPublisher{}
	svc := NewLedgerServiceAt(store, pub, julyClock())
	return svc, store, pub
}

func TestItemsMaterializesUnknownMonth(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	items, err := svc.Items(ctx, "2025-09")
	if err != nil {
		t.Fatalf("Items() error = %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 propagated items, got %d", len(items))
	}

	// Propagation is persisted: the seed month's items and the new month's
	// items now have distinct ids.
	seed, err := svc.Items(ctx, "2025-07")
	if err != nil {
		t.Fatalf("Items(seed) error = %v", err)
	}
	if items[0].ID == seed[0].ID {
		t.Error("propagated items should carry fresh ids")
	}
	if items[0].Name != seed[0].Name || items[0].Plan != seed[0].Plan {
		t.Error("propagated items should copy name and plan")
	}
}

func TestItemsRejectsBadMonthKey(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Items(context.Background(), "2025/09")
	if !errors.Is(err, core.ErrBadMonthKey) {
		t.Fatalf("Items() error = %v, want ErrBadMonthKey", err)
	}
}

func TestUpsertItemPersists(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	saved, err := svc.UpsertItem(ctx, "2025-07", core.BudgetItem{Name: "여행", Plan: 200000})
	if err != nil {
		t.Fatalf("UpsertItem() error = %v", err)
	}
	if saved.ID == "" {
		t.Error("expected generated id")
	}
	if saved.Top != core.Spending {
		t.Errorf("Top = %q, want default spending", saved.Top)
	}

	items, _ := svc.Items(ctx, "2025-07")
	found := false
	for _, it := range items {
		if it.ID == saved.ID {
			found = true
		}
	}
	if !found {
		t.Error("upserted item not visible on reload")
	}
}

func TestUpsertItemSaveFailureLeavesStateUnchanged(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	before, _ := svc.Items(ctx, "2025-07")

	store.SaveErr = errors.New("disk full")
	_, err := svc.UpsertItem(ctx, "2025-07", core.BudgetItem{Name: "여행", Plan: 200000})
	if !errors.Is(err, storage.ErrStorage) {
		t.Fatalf("UpsertItem() error = %v, want ErrStorage", err)
	}

	after, _ := svc.Items(ctx, "2025-07")
	if len(after) != len(before) {
		t.Errorf("failed save changed item count: %d -> %d", len(before), len(after))
	}
}

func TestDeleteItemNoopDoesNotSave(t *testing.T) {
	svc, store, _ := newTestService()
	ctx := context.Background()

	// Force any save to fail. A no-op delete must not attempt one.
	store.SaveErr = errors.New("disk full")
	if err := svc.DeleteItem(ctx, "2025-07", "no-such-id"); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}
	store.SaveErr = nil
}

func TestAddTransactionPublishesEvent(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	tx, err := svc.AddTransaction(ctx, core.Transaction{
		Date:   core.NewDate(2025, 7, 3),
		Item:   "식비",
		Amount: 3300,
		Memo:   "커피",
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if tx.ID == "" {
		t.Error("expected generated transaction id")
	}
	if len(pub.recorded) != 1 || pub.recorded[0].ID != tx.ID {
		t.Errorf("expected 1 recorded event for %s, got %+v", tx.ID, pub.recorded)
	}
}

func TestAddTransactionPublishFailureIsNonFatal(t *testing.T) {
	svc, _, pub := newTestService()
	pub.err = errors.New("broker down")

	tx, err := svc.AddTransaction(context.Background(), core.Transaction{
		Date:   core.NewDate(2025, 7, 3),
		Item:   "식비",
		Amount: 3300,
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v, publish failures must not surface", err)
	}

	txs, _ := svc.Transactions(context.Background(), TransactionFilter{})
	if len(txs) != 1 || txs[0].ID != tx.ID {
		t.Error("transaction should be stored despite publish failure")
	}
}

func TestAddTransactionValidationError(t *testing.T) {
	svc, _, pub := newTestService()

	_, err := svc.AddTransaction(context.Background(), core.Transaction{
		Date:   core.NewDate(2025, 7, 3),
		Item:   "식비",
		Amount: 0,
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("AddTransaction() error = %v, want ErrValidation", err)
	}
	if len(pub.recorded) != 0 {
		t.Error("rejected transaction must not publish")
	}
}

func TestRemoveTransaction(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	tx, _ := svc.AddTransaction(ctx, core.Transaction{
		Date:   core.NewDate(2025, 7, 3),
		Item:   "식비",
		Amount: 3300,
	})

	removed, ok, err := svc.RemoveTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("RemoveTransaction() error = %v", err)
	}
	if !ok || removed.ID != tx.ID {
		t.Fatalf("RemoveTransaction() = %+v, %v", removed, ok)
	}
	if len(pub.removed) != 1 {
		t.Error("expected removal event")
	}

	_, ok, err = svc.RemoveTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("second RemoveTransaction() error = %v", err)
	}
	if ok {
		t.Error("removing an absent id should be a no-op")
	}
}

func TestTransactionsFilters(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for _, tx := range []core.Transaction{
		{Date: core.NewDate(2025, 7, 3), Item: "식비", Amount: 3300},
		{Date: core.NewDate(2025, 7, 10), Item: "생활비", Amount: 12500},
		{Date: core.NewDate(2025, 8, 2), Item: "식비", Amount: 8000},
	} {
		if _, err := svc.AddTransaction(ctx, tx); err != nil {
			t.Fatalf("AddTransaction() error = %v", err)
		}
	}

	all, err := svc.Transactions(ctx, TransactionFilter{})
	if err != nil {
		t.Fatalf("Transactions() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(all))
	}
	// Most recent insertion first.
	if all[0].Amount != 8000 {
		t.Errorf("first transaction amount = %d, want 8000", all[0].Amount)
	}

	july, err := svc.Transactions(ctx, TransactionFilter{Month: "2025-07"})
	if err != nil {
		t.Fatalf("Transactions(month) error = %v", err)
	}
	if len(july) != 2 {
		t.Errorf("expected 2 July transactions, got %d", len(july))
	}

	julyFood, err := svc.Transactions(ctx, TransactionFilter{Month: "2025-07", Item: "식비"})
	if err != nil {
		t.Fatalf("Transactions(month,item) error = %v", err)
	}
	if len(julyFood) != 1 || julyFood[0].Amount != 3300 {
		t.Errorf("expected single 식비 July transaction, got %+v", julyFood)
	}

	_, err = svc.Transactions(ctx, TransactionFilter{Month: "bad"})
	if !errors.Is(err, core.ErrBadMonthKey) {
		t.Errorf("Transactions(bad month) error = %v, want ErrBadMonthKey", err)
	}
}

func TestReportUsesPropagatedItems(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.AddTransaction(ctx, core.Transaction{
		Date:   core.NewDate(2025, 9, 5),
		Item:   "식비",
		Amount: 30000,
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	report, err := svc.Report(ctx, "2025-09")
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if report.Month != "2025-09" {
		t.Errorf("Month = %s", report.Month)
	}
	if len(report.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(report.Rows))
	}

	var food *core.ReportRow
	for i := range report.Rows {
		if report.Rows[i].Name == "식비" {
			food = &report.Rows[i]
		}
	}
	if food == nil {
		t.Fatal("no 식비 row")
	}
	if food.Actual != 30000 {
		t.Errorf("Actual = %d, want 30000", food.Actual)
	}
	if food.Rate != 10 {
		t.Errorf("Rate = %d, want 10", food.Rate)
	}
}

func TestSetCycleStartDay(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	settings, err := svc.SetCycleStartDay(ctx, 25)
	if err != nil {
		t.Fatalf("SetCycleStartDay() error = %v", err)
	}
	if settings.CycleStartDay != 25 {
		t.Errorf("CycleStartDay = %d, want 25", settings.CycleStartDay)
	}

	got, _ := svc.Settings(ctx)
	if got.CycleStartDay != 25 {
		t.Errorf("persisted CycleStartDay = %d, want 25", got.CycleStartDay)
	}

	if _, err := svc.SetCycleStartDay(ctx, 32); !errors.Is(err, core.ErrBadStartDay) {
		t.Errorf("SetCycleStartDay(32) error = %v, want ErrBadStartDay", err)
	}
}

func TestResetReseeds(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SetCycleStartDay(ctx, 10); err != nil {
		t.Fatalf("SetCycleStartDay() error = %v", err)
	}
	if err := svc.Reset(ctx); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	settings, _ := svc.Settings(ctx)
	if settings.CycleStartDay != 1 {
		t.Errorf("CycleStartDay after reset = %d, want 1", settings.CycleStartDay)
	}
}

func TestBudgetMonthFor(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.SetCycleStartDay(ctx, 10); err != nil {
		t.Fatalf("SetCycleStartDay() error = %v", err)
	}

	key, err := svc.BudgetMonthFor(ctx, core.NewDate(2025, 7, 5))
	if err != nil {
		t.Fatalf("BudgetMonthFor() error = %v", err)
	}
	// July 5 is before the July 10 cycle start, so it belongs to June.
	if key != "2025-06" {
		t.Errorf("BudgetMonthFor(Jul 5) = %s, want 2025-06", key)
	}

	key, _ = svc.BudgetMonthFor(ctx, core.NewDate(2025, 7, 10))
	if key != "2025-07" {
		t.Errorf("BudgetMonthFor(Jul 10) = %s, want 2025-07", key)
	}
}
