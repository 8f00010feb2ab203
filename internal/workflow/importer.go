package workflow

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/raoulx24/rds-dr-archiver/internal/catalog"
	"github.com/raoulx24/rds-dr-archiver/internal/config"
	"github.com/raoulx24/rds-dr-archiver/internal/retention"
	"github.com/raoulx24/rds-dr-archiver/internal/snapshot"
	"github.com/raoulx24/rds-dr-archiver/internal/waiter"
)

// ErrNoSharedSnapshots is returned when the account sees no snapshots
// at all; the importer has nothing to work on and the run fails before
// any mutation.
var ErrNoSharedSnapshots = errors.New("no snapshots shared with current account")

// Importer copies snapshots shared by the source account into fully
// local snapshots. A shared snapshot cannot be restored directly, which
// is the whole reason this pass exists.
type Importer struct {
	Catalog *catalog.Catalog
	Waiter  *waiter.Waiter
	Pruner  *retention.Pruner
	Config  *config.Config
	Log     *slog.Logger
}

// Run performs one import pass and returns how many local copies
// reached the available state. Candidates are selected by identifier
// shape only: a recrypted suffix plus a shared-snapshot ARN.
func (i *Importer) Run(ctx context.Context) (int, error) {
	listed, err := i.Catalog.SharedSnapshots(ctx)
	if err != nil {
		return 0, err
	}
	if len(listed) == 0 {
		return 0, ErrNoSharedSnapshots
	}

	ready := 0
	copiedPerInstance := make(map[string]int)
	for _, shared := range listed {
		if !snapshot.IsSharedRecrypted(shared.ID) {
			continue
		}
		targetID := snapshot.LocalCopyTargetID(shared.ID)
		i.Log.Info("copying shared snapshot to local snapshot", "source", shared.ARN, "target", targetID)

		copied, err := i.Catalog.Copy(ctx, shared.ARN, targetID, i.Config.KMSKeyARN)
		if err != nil {
			return ready, err
		}
		if err := i.Waiter.WaitUntilAvailable(ctx, copied.Snapshot.ID); err != nil {
			return ready, err
		}
		ready++
		copiedPerInstance[shared.InstanceID]++
	}

	instanceIDs := make([]string, 0, len(copiedPerInstance))
	for instanceID := range copiedPerInstance {
		instanceIDs = append(instanceIDs, instanceID)
	}
	slices.Sort(instanceIDs)
	for _, instanceID := range instanceIDs {
		if err := i.Pruner.Apply(ctx, instanceID, snapshot.MarkerRecryptedCopy); err != nil {
			return ready, err
		}
	}
	return ready, nil
}
