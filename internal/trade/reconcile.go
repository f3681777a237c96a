package trade

import (
	"context"
	"fmt"
	"log/slog"
)

// Outcome summarises a reconciliation pass.
type Outcome struct {
	Created  int      `json:"created"`
	Updated  int      `json:"updated"`
	Deleted  int      `json:"deleted"`
	Warnings []string `json:"warnings,omitempty"`
}

// Failed reports whether any step produced a warning.
func (o Outcome) Failed() bool { return len(o.Warnings) > 0 }

// ReconcileOps binds a reconciliation pass to concrete persistence calls.
// ID must return the incoming item's identifier; an item whose id is absent
// from the previous set is created, otherwise updated.
type ReconcileOps[T any] struct {
	Label  string
	ID     func(T) string
	Create func(context.Context, T) error
	Update func(context.Context, T) error
	Delete func(context.Context, string) error
}

// Reconcile applies the incoming set against the previously persisted ids:
// unknown items are created, known ones updated, and previously persisted
// ids no longer present are deleted. Steps run sequentially and a failing
// step is logged and recorded as a warning without aborting the rest, so a
// single bad line never blocks the remainder of a save.
func Reconcile[T any](ctx context.Context, logger *slog.Logger, prevIDs []string, incoming []T, ops ReconcileOps[T]) Outcome {
	prev := make(map[string]bool, len(prevIDs))
	for _, id := range prevIDs {
		prev[id] = true
	}

	var out Outcome
	seen := make(map[string]bool, len(incoming))
	for _, item := range incoming {
		id := ops.ID(item)
		seen[id] = true
		if prev[id] {
			if err := ops.Update(ctx, item); err != nil {
				out.Warnings = append(out.Warnings, fmt.Sprintf("update %s %s: %v", ops.Label, id, err))
				logger.Error("reconcile update failed", "label", ops.Label, "id", id, "error", err)
				continue
			}
			out.Updated++
		} else {
			if err := ops.Create(ctx, item); err != nil {
				out.Warnings = append(out.Warnings, fmt.Sprintf("create %s %s: %v", ops.Label, id, err))
				logger.Error("reconcile create failed", "label", ops.Label, "id", id, "error", err)
				continue
			}
			out.Created++
		}
	}

	for _, id := range prevIDs {
		if seen[id] {
			continue
		}
		if err := ops.Delete(ctx, id); err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("delete %s %s: %v", ops.Label, id, err))
			logger.Error("reconcile delete failed", "label", ops.Label, "id", id, "error", err)
			continue
		}
		out.Deleted++
	}
	return out
}
