// Package retention enforces the keep-newest window on recrypted
// manual snapshots.
package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/raoulx24/rds-dr-archiver/internal/catalog"
	"github.com/raoulx24/rds-dr-archiver/internal/config"
	"github.com/raoulx24/rds-dr-archiver/internal/snapshot"
)

// Pruner deletes the oldest matching manual snapshots of an instance
// until at most Keep remain.
type Pruner struct {
	catalog *catalog.Catalog
	keep    int
	pause   time.Duration
	log     *slog.Logger
}

func New(cat *catalog.Catalog, run config.RunConfig, log *slog.Logger) *Pruner {
	return &Pruner{
		catalog: cat,
		keep:    run.RetentionKeep,
		pause:   run.PrunePause,
		log:     log,
	}
}

// Apply prunes one instance's retention set: while more than keep
// owned manual snapshots match countMarker, the oldest recrypted one is
// deleted. Deletions are spaced by a short pause to avoid hammering the
// API. The listing is re-read after every deletion, so the loop
// converges even when snapshots appear concurrently.
func (p *Pruner) Apply(ctx context.Context, instanceID, countMarker string) error {
	for {
		snaps, err := p.catalog.OwnedManualSnapshots(ctx, instanceID)
		if err != nil {
			return err
		}
		count := snapshot.CountMatching(snaps, countMarker)
		p.log.Debug("matching manual snapshots", "instance", instanceID, "marker", countMarker, "count", count)
		if count <= p.keep {
			return nil
		}

		oldest, ok := snapshot.OldestRecrypted(snaps)
		if !ok {
			return nil
		}
		p.log.Info("deleting oldest recrypted manual snapshot", "snapshot", oldest.ID)
		if err := p.catalog.Delete(ctx, oldest.ID); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.pause):
		}
	}
}
