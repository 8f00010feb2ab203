// Package waiter polls a snapshot until it becomes available.
package waiter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/raoulx24/rds-dr-archiver/internal/catalog"
	"github.com/raoulx24/rds-dr-archiver/internal/config"
	"github.com/raoulx24/rds-dr-archiver/internal/snapshot"
)

// Waiter blocks the run until a snapshot copy reaches the available
// state. Copies are asynchronous on the RDS side and there is no
// completion callback, so the status is re-read on a fixed interval.
type Waiter struct {
	catalog  *catalog.Catalog
	interval time.Duration
	maxWait  time.Duration
	log      *slog.Logger
}

func New(cat *catalog.Catalog, run config.RunConfig, log *slog.Logger) *Waiter {
	return &Waiter{
		catalog:  cat,
		interval: run.PollInterval,
		maxWait:  run.MaxWait,
		log:      log,
	}
}

// WaitUntilAvailable polls the snapshot status every interval until it
// reaches available. Progress is logged only when the reported percent
// changes. The wait is bounded: it fails once maxWait elapses or the
// context is cancelled, so a stuck copy cannot block a run forever.
func (w *Waiter) WaitUntilAvailable(ctx context.Context, snapshotID string) error {
	deadline := time.Now().Add(w.maxWait)
	lastProgress := int32(-1)

	for {
		snap, err := w.catalog.Lookup(ctx, snapshotID)
		if err != nil {
			return err
		}
		if snap.Status == snapshot.StatusAvailable {
			w.log.Info("snapshot complete and available", "snapshot", snapshotID)
			return nil
		}
		if snap.Progress != lastProgress {
			lastProgress = snap.Progress
			w.log.Info("snapshot in progress", "snapshot", snapshotID, "percent", snap.Progress)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("snapshot %s not available after %s (status %s)", snapshotID, w.maxWait, snap.Status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.interval):
		}
	}
}
