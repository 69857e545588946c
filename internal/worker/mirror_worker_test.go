package worker

import (
	"context"
	"errors"
	"testing"

	"yesan/internal/amqp"
	"yesan/internal/core"
)

type fakeMirror struct {
	appended []core.Transaction
	err      error
}

func (f *fakeMirror) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, tx)
	return "Transactions!A2:F2", nil
}

func TestMirrorWorkerAppendsRecordedEvents(t *testing.T) {
	mirror := &fakeMirror{}
	w := NewMirrorWorker(mirror)

	ev := amqp.NewLedgerEvent(amqp.EventTransactionRecorded, "tx-1", "2025-07-03", "spending", "식비", 3300, "커피")
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if len(mirror.appended) != 1 {
		t.Fatalf("expected 1 mirrored transaction, got %d", len(mirror.appended))
	}
	got := mirror.appended[0]
	if got.ID != "tx-1" || got.Item != "식비" || got.Amount != 3300 {
		t.Errorf("mirrored transaction = %+v", got)
	}
	if got.Date.String() != "2025-07-03" {
		t.Errorf("Date = %s, want 2025-07-03", got.Date)
	}
}

func TestMirrorWorkerSkipsRemovals(t *testing.T) {
	mirror := &fakeMirror{}
	w := NewMirrorWorker(mirror)

	ev := amqp.NewLedgerEvent(amqp.EventTransactionRemoved, "tx-2", "2025-07-03", "spending", "식비", 3300, "")
	if err := w.HandleEvent(context.Background(), ev); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if len(mirror.appended) != 0 {
		t.Errorf("removal should not touch the mirror, appended %d", len(mirror.appended))
	}
}

func TestMirrorWorkerRejectsBadDate(t *testing.T) {
	w := NewMirrorWorker(&fakeMirror{})

	ev := amqp.NewLedgerEvent(amqp.EventTransactionRecorded, "tx-3", "03/07/2025", "spending", "식비", 3300, "")
	if err := w.HandleEvent(context.Background(), ev); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestMirrorWorkerPropagatesMirrorFailure(t *testing.T) {
	mirror := &fakeMirror{err: errors.New("quota exceeded")}
	w := NewMirrorWorker(mirror)

	ev := amqp.NewLedgerEvent(amqp.EventTransactionRecorded, "tx-4", "2025-07-03", "spending", "식비", 3300, "")
	if err := w.HandleEvent(context.Background(), ev); err == nil {
		t.Error("expected mirror failure to propagate for requeue")
	}
}
