// Package testsupport provides in-memory AWS fakes and config fixtures
// shared by package tests.
package testsupport

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
)

// CopyCall records one CopyDBSnapshot request.
type CopyCall struct {
	SourceID string
	TargetID string
	KMSKeyID string
}

// ShareCall records one ModifyDBSnapshotAttribute request.
type ShareCall struct {
	SnapshotID string
	AccountID  string
}

// StatusStep is one scripted status observation for a snapshot lookup.
type StatusStep struct {
	Status   string
	Progress int32
}

// FakeRDS is an in-memory stand-in for the RDS client. It distinguishes
// snapshots owned by the account from snapshots shared with it, records
// every mutating call, and can script status transitions observed by
// successive lookups of one snapshot.
type FakeRDS struct {
	mu        sync.Mutex
	instances []rdstypes.DBInstance
	owned     []rdstypes.DBSnapshot
	shared    []rdstypes.DBSnapshot
	scripts   map[string][]StatusStep

	// CopyStatus is the status assigned to fresh copies; empty means
	// "available" so waits return immediately.
	CopyStatus string

	Copies  []CopyCall
	Shares  []ShareCall
	Deleted []string
}

func NewFakeRDS() *FakeRDS {
	return &FakeRDS{scripts: make(map[string][]StatusStep)}
}

// DBSnapshot builds an RDS snapshot record. Shared snapshot identifiers
// are full ARNs; the builder keeps the ARN field consistent either way.
func DBSnapshot(id, instanceID, snapshotType, status string, created time.Time) rdstypes.DBSnapshot {
	arn := id
	if !strings.HasPrefix(id, "arn:") {
		arn = "arn:aws:rds:us-east-1:111122223333:snapshot:" + id
	}
	var progress int32
	if status == "available" {
		progress = 100
	}
	snap := rdstypes.DBSnapshot{
		DBSnapshotIdentifier: aws.String(id),
		DBInstanceIdentifier: aws.String(instanceID),
		DBSnapshotArn:        aws.String(arn),
		SnapshotType:         aws.String(snapshotType),
		Status:               aws.String(status),
		PercentProgress:      aws.Int32(progress),
	}
	if !created.IsZero() {
		snap.SnapshotCreateTime = aws.Time(created)
	}
	return snap
}

func (f *FakeRDS) AddInstance(id string, tags map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inst := rdstypes.DBInstance{
		DBInstanceIdentifier: aws.String(id),
		DBInstanceArn:        aws.String("arn:aws:rds:us-east-1:111122223333:db:" + id),
	}
	for key, value := range tags {
		inst.TagList = append(inst.TagList, rdstypes.Tag{Key: aws.String(key), Value: aws.String(value)})
	}
	f.instances = append(f.instances, inst)
}

func (f *FakeRDS) AddOwnedSnapshot(snap rdstypes.DBSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owned = append(f.owned, snap)
}

func (f *FakeRDS) AddSharedSnapshot(snap rdstypes.DBSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shared = append(f.shared, snap)
}

// ScriptStatus queues status observations for successive lookups of one
// snapshot. Each lookup consumes one step; the last applied step
// sticks once the script runs out.
func (f *FakeRDS) ScriptStatus(id string, steps ...StatusStep) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[id] = append(f.scripts[id], steps...)
}

// OwnedIDs returns the identifiers of snapshots the account owns, in
// insertion order.
func (f *FakeRDS) OwnedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.owned))
	for _, snap := range f.owned {
		ids = append(ids, aws.ToString(snap.DBSnapshotIdentifier))
	}
	return ids
}

func (f *FakeRDS) DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &rds.DescribeDBInstancesOutput{DBInstances: append([]rdstypes.DBInstance(nil), f.instances...)}, nil
}

func (f *FakeRDS) DescribeDBSnapshots(ctx context.Context, params *rds.DescribeDBSnapshotsInput, optFns ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id := aws.ToString(params.DBSnapshotIdentifier); id != "" {
		f.applyScript(id)
	}

	candidates := append([]rdstypes.DBSnapshot(nil), f.owned...)
	if aws.ToBool(params.IncludeShared) {
		candidates = append(candidates, f.shared...)
	}

	var matched []rdstypes.DBSnapshot
	for _, snap := range candidates {
		if id := aws.ToString(params.DBSnapshotIdentifier); id != "" && aws.ToString(snap.DBSnapshotIdentifier) != id {
			continue
		}
		if id := aws.ToString(params.DBInstanceIdentifier); id != "" && aws.ToString(snap.DBInstanceIdentifier) != id {
			continue
		}
		if st := aws.ToString(params.SnapshotType); st != "" && aws.ToString(snap.SnapshotType) != st {
			continue
		}
		matched = append(matched, snap)
	}
	return &rds.DescribeDBSnapshotsOutput{DBSnapshots: matched}, nil
}

// applyScript advances the scripted status for one snapshot. Callers
// hold the mutex.
func (f *FakeRDS) applyScript(id string) {
	steps := f.scripts[id]
	if len(steps) == 0 {
		return
	}
	step := steps[0]
	f.scripts[id] = steps[1:]
	for i := range f.owned {
		if aws.ToString(f.owned[i].DBSnapshotIdentifier) == id {
			f.owned[i].Status = aws.String(step.Status)
			f.owned[i].PercentProgress = aws.Int32(step.Progress)
		}
	}
}

func (f *FakeRDS) CopyDBSnapshot(ctx context.Context, params *rds.CopyDBSnapshotInput, optFns ...func(*rds.Options)) (*rds.CopyDBSnapshotOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sourceID := aws.ToString(params.SourceDBSnapshotIdentifier)
	targetID := aws.ToString(params.TargetDBSnapshotIdentifier)
	f.Copies = append(f.Copies, CopyCall{
		SourceID: sourceID,
		TargetID: targetID,
		KMSKeyID: aws.ToString(params.KmsKeyId),
	})

	for _, snap := range f.owned {
		if aws.ToString(snap.DBSnapshotIdentifier) == targetID {
			return nil, &rdstypes.DBSnapshotAlreadyExistsFault{
				Message: aws.String(fmt.Sprintf("DB snapshot already exists: %s", targetID)),
			}
		}
	}

	source, ok := f.findLocked(sourceID)
	if !ok {
		return nil, fmt.Errorf("source snapshot %s not found", sourceID)
	}

	status := f.CopyStatus
	if status == "" {
		status = "available"
	}
	copySnap := DBSnapshot(targetID, aws.ToString(source.DBInstanceIdentifier), "manual", status, time.Now())
	copySnap.KmsKeyId = params.KmsKeyId
	f.owned = append(f.owned, copySnap)
	return &rds.CopyDBSnapshotOutput{DBSnapshot: &copySnap}, nil
}

// findLocked resolves a snapshot by identifier or ARN across owned and
// shared records. Callers hold the mutex.
func (f *FakeRDS) findLocked(id string) (rdstypes.DBSnapshot, bool) {
	for _, snap := range append(append([]rdstypes.DBSnapshot(nil), f.owned...), f.shared...) {
		if aws.ToString(snap.DBSnapshotIdentifier) == id || aws.ToString(snap.DBSnapshotArn) == id {
			return snap, true
		}
	}
	return rdstypes.DBSnapshot{}, false
}

func (f *FakeRDS) ModifyDBSnapshotAttribute(ctx context.Context, params *rds.ModifyDBSnapshotAttributeInput, optFns ...func(*rds.Options)) (*rds.ModifyDBSnapshotAttributeOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range params.ValuesToAdd {
		f.Shares = append(f.Shares, ShareCall{
			SnapshotID: aws.ToString(params.DBSnapshotIdentifier),
			AccountID:  account,
		})
	}
	return &rds.ModifyDBSnapshotAttributeOutput{}, nil
}

func (f *FakeRDS) DeleteDBSnapshot(ctx context.Context, params *rds.DeleteDBSnapshotInput, optFns ...func(*rds.Options)) (*rds.DeleteDBSnapshotOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := aws.ToString(params.DBSnapshotIdentifier)
	for i, snap := range f.owned {
		if aws.ToString(snap.DBSnapshotIdentifier) == id {
			f.owned = append(f.owned[:i], f.owned[i+1:]...)
			f.Deleted = append(f.Deleted, id)
			return &rds.DeleteDBSnapshotOutput{DBSnapshot: &snap}, nil
		}
	}
	return nil, fmt.Errorf("snapshot %s not found", id)
}
