// Package workflow runs the replication passes: the source-account
// export (recrypt, share, prune) and the destination-account import
// (local copy, prune), plus the shared end-of-run count validation.
package workflow

import (
	"context"
	"log/slog"

	"github.com/raoulx24/rds-dr-archiver/internal/catalog"
	"github.com/raoulx24/rds-dr-archiver/internal/config"
	"github.com/raoulx24/rds-dr-archiver/internal/retention"
	"github.com/raoulx24/rds-dr-archiver/internal/snapshot"
	"github.com/raoulx24/rds-dr-archiver/internal/waiter"
)

// Exporter recrypts the latest automatic snapshot of every selected
// instance with the DR key and shares it with the target account.
type Exporter struct {
	Catalog *catalog.Catalog
	Waiter  *waiter.Waiter
	Pruner  *retention.Pruner
	Config  *config.Config
	Log     *slog.Logger
}

// Run performs one export pass and returns how many snapshots reached
// the available state and were shared. Instances are processed strictly
// one at a time, in listing order; any failure other than the
// already-exists copy fallback aborts the pass.
func (e *Exporter) Run(ctx context.Context) (int, error) {
	instances, err := e.Catalog.Instances(ctx)
	if err != nil {
		return 0, err
	}
	filtered := snapshot.FilterInstances(instances, e.Config.TaggedInstance, e.Config.InstancePattern())
	if len(filtered) == 0 {
		e.Log.Info("db instance list for sharing is empty", "pattern", e.Config.Pattern)
	} else {
		ids := make([]string, 0, len(filtered))
		for _, inst := range filtered {
			ids = append(ids, inst.ID)
		}
		e.Log.Info("starting snapshot sharing for db instances", "instances", ids)
	}

	ready := 0
	for _, inst := range filtered {
		e.Log.Debug("getting latest automated snapshot", "instance", inst.ID)
		snaps, err := e.Catalog.InstanceSnapshots(ctx, inst.ID, snapshot.TypeAutomated)
		if err != nil {
			return ready, err
		}
		latest, ok := snapshot.Latest(snaps)
		if !ok {
			e.Log.Info("no snapshots found for instance", "instance", inst.ID)
			continue
		}
		e.Log.Info("copying automatic snapshot to manual snapshot", "snapshot", latest.ID)

		copied, err := e.Catalog.Copy(ctx, latest.ID, snapshot.RecryptTargetID(latest.ID), e.Config.KMSKeyARN)
		if err != nil {
			return ready, err
		}
		if err := e.Waiter.WaitUntilAvailable(ctx, copied.Snapshot.ID); err != nil {
			return ready, err
		}

		e.Log.Info("sharing snapshot with target account",
			"snapshot", copied.Snapshot.ARN, "account", e.Config.TargetAccount)
		if err := e.Catalog.Share(ctx, copied.Snapshot.ID, e.Config.TargetAccount); err != nil {
			return ready, err
		}
		ready++

		if err := e.Pruner.Apply(ctx, inst.ID, snapshot.MarkerRecrypted); err != nil {
			return ready, err
		}
	}
	return ready, nil
}
