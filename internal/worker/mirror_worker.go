package worker

import (
	"context"
	"fmt"
	"log/slog"

	"yesan/internal/amqp"
	"yesan/internal/core"
)

// TransactionMirror is the sink side of the mirror pipeline.
type TransactionMirror interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) (string, error)
}

// MirrorWorker forwards recorded transactions to an external mirror.
// The mirror is append-only, so removals are logged and skipped.
type MirrorWorker struct {
	mirror TransactionMirror
}

func NewMirrorWorker(mirror TransactionMirror) *MirrorWorker {
	return &MirrorWorker{mirror: mirror}
}

// HandleEvent processes one ledger event from the queue.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	switch ev.Kind {
	case amqp.EventTransactionRecorded:
		return w.mirrorRecorded(ctx, ev)
	case amqp.EventTransactionRemoved:
		slog.InfoContext(ctx, "Skipping removal, mirror is append-only",
			"tx_id", ev.TxID,
			"item", ev.ItemName)
		return nil
	default:
		slog.WarnContext(ctx, "Unknown ledger event kind", "kind", ev.Kind, "tx_id", ev.TxID)
		return nil
	}
}

func (w *MirrorWorker) mirrorRecorded(ctx context.Context, ev *amqp.LedgerEvent) error {
	date, err := core.ParseDate(ev.Date)
	if err != nil {
		return fmt.Errorf("event %s has bad date %q: %w", ev.TxID, ev.Date, err)
	}

	tx := core.Transaction{
		ID:     ev.TxID,
		Date:   date,
		Top:    core.TopCategory(ev.TopCategory),
		Item:   ev.ItemName,
		Amount: ev.Amount,
		Memo:   ev.Memo,
	}

	ref, err := w.mirror.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("append transaction %s: %w", ev.TxID, err)
	}

	slog.InfoContext(ctx, "Transaction mirrored",
		"tx_id", ev.TxID,
		"sheet_ref", ref)

	return nil
}
