// Package catalog wraps the subset of the RDS API this system consumes:
// paginated instance and snapshot listings, snapshot copy with an
// already-exists fallback, share, and delete.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/raoulx24/rds-dr-archiver/internal/snapshot"
)

// API is the RDS client surface the catalog needs. *rds.Client
// satisfies it; tests substitute an in-memory fake.
type API interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
	DescribeDBSnapshots(ctx context.Context, params *rds.DescribeDBSnapshotsInput, optFns ...func(*rds.Options)) (*rds.DescribeDBSnapshotsOutput, error)
	CopyDBSnapshot(ctx context.Context, params *rds.CopyDBSnapshotInput, optFns ...func(*rds.Options)) (*rds.CopyDBSnapshotOutput, error)
	ModifyDBSnapshotAttribute(ctx context.Context, params *rds.ModifyDBSnapshotAttributeInput, optFns ...func(*rds.Options)) (*rds.ModifyDBSnapshotAttributeOutput, error)
	DeleteDBSnapshot(ctx context.Context, params *rds.DeleteDBSnapshotInput, optFns ...func(*rds.Options)) (*rds.DeleteDBSnapshotOutput, error)
}

// Catalog reads and mutates the account's snapshot catalog.
type Catalog struct {
	api API
	log *slog.Logger
}

func New(api API, log *slog.Logger) *Catalog {
	return &Catalog{api: api, log: log}
}

// CopyResult is the outcome of a copy request. AlreadyExists is true
// when the target identifier was taken and the existing record was
// returned instead; callers proceed with the snapshot either way.
type CopyResult struct {
	Snapshot      snapshot.Snapshot
	AlreadyExists bool
}

// Instances lists every DB instance in the region.
func (c *Catalog) Instances(ctx context.Context) ([]snapshot.Instance, error) {
	paginator := rds.NewDescribeDBInstancesPaginator(c.api, &rds.DescribeDBInstancesInput{})

	var instances []snapshot.Instance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing db instances: %w", err)
		}
		for _, inst := range page.DBInstances {
			instances = append(instances, fromDBInstance(inst))
		}
	}
	return instances, nil
}

// InstanceSnapshots lists one instance's snapshots of the given type.
func (c *Catalog) InstanceSnapshots(ctx context.Context, instanceID, snapshotType string) ([]snapshot.Snapshot, error) {
	return c.listSnapshots(ctx, &rds.DescribeDBSnapshotsInput{
		DBInstanceIdentifier: aws.String(instanceID),
		SnapshotType:         aws.String(snapshotType),
	})
}

// OwnedManualSnapshots lists one instance's manual snapshots owned by
// this account, excluding snapshots merely shared with it.
func (c *Catalog) OwnedManualSnapshots(ctx context.Context, instanceID string) ([]snapshot.Snapshot, error) {
	return c.listSnapshots(ctx, &rds.DescribeDBSnapshotsInput{
		DBInstanceIdentifier: aws.String(instanceID),
		SnapshotType:         aws.String(snapshot.TypeManual),
		IncludeShared:        aws.Bool(false),
	})
}

// SharedSnapshots lists every snapshot visible to the account,
// including ones shared by other accounts.
func (c *Catalog) SharedSnapshots(ctx context.Context) ([]snapshot.Snapshot, error) {
	return c.listSnapshots(ctx, &rds.DescribeDBSnapshotsInput{
		IncludeShared: aws.Bool(true),
	})
}

func (c *Catalog) listSnapshots(ctx context.Context, input *rds.DescribeDBSnapshotsInput) ([]snapshot.Snapshot, error) {
	paginator := rds.NewDescribeDBSnapshotsPaginator(c.api, input)

	var snaps []snapshot.Snapshot
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describing db snapshots: %w", err)
		}
		for _, snap := range page.DBSnapshots {
			snaps = append(snaps, fromDBSnapshot(snap))
		}
	}
	return snaps, nil
}

// Lookup fetches one snapshot by identifier.
func (c *Catalog) Lookup(ctx context.Context, snapshotID string) (snapshot.Snapshot, error) {
	out, err := c.api.DescribeDBSnapshots(ctx, &rds.DescribeDBSnapshotsInput{
		DBSnapshotIdentifier: aws.String(snapshotID),
	})
	if err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("describing snapshot %s: %w", snapshotID, err)
	}
	if len(out.DBSnapshots) == 0 {
		return snapshot.Snapshot{}, fmt.Errorf("snapshot %s not found", snapshotID)
	}
	return fromDBSnapshot(out.DBSnapshots[0]), nil
}

// Copy requests a manual copy of sourceID under targetID, encrypted
// with the given key. When the target already exists the existing
// record is looked up and returned, making the operation safe to
// re-run after a partial failure.
func (c *Catalog) Copy(ctx context.Context, sourceID, targetID, kmsKeyARN string) (CopyResult, error) {
	out, err := c.api.CopyDBSnapshot(ctx, &rds.CopyDBSnapshotInput{
		SourceDBSnapshotIdentifier: aws.String(sourceID),
		TargetDBSnapshotIdentifier: aws.String(targetID),
		KmsKeyId:                   aws.String(kmsKeyARN),
	})
	if err != nil {
		var exists *types.DBSnapshotAlreadyExistsFault
		if !errors.As(err, &exists) {
			return CopyResult{}, fmt.Errorf("copying snapshot %s: %w", sourceID, err)
		}
		c.log.Info("snapshot already exists, retrieving", "snapshot", targetID)
		snap, err := c.Lookup(ctx, targetID)
		if err != nil {
			return CopyResult{}, err
		}
		return CopyResult{Snapshot: snap, AlreadyExists: true}, nil
	}
	if out.DBSnapshot == nil {
		return CopyResult{}, fmt.Errorf("copy of snapshot %s returned no record", sourceID)
	}
	return CopyResult{Snapshot: fromDBSnapshot(*out.DBSnapshot)}, nil
}

// Share grants the target account permission to restore the snapshot.
// Re-granting an existing permission is not an error on the RDS side.
func (c *Catalog) Share(ctx context.Context, snapshotID, accountID string) error {
	_, err := c.api.ModifyDBSnapshotAttribute(ctx, &rds.ModifyDBSnapshotAttributeInput{
		DBSnapshotIdentifier: aws.String(snapshotID),
		AttributeName:        aws.String("restore"),
		ValuesToAdd:          []string{accountID},
	})
	if err != nil {
		return fmt.Errorf("sharing snapshot %s with account %s: %w", snapshotID, accountID, err)
	}
	return nil
}

// Delete removes a manual snapshot.
func (c *Catalog) Delete(ctx context.Context, snapshotID string) error {
	_, err := c.api.DeleteDBSnapshot(ctx, &rds.DeleteDBSnapshotInput{
		DBSnapshotIdentifier: aws.String(snapshotID),
	})
	if err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", snapshotID, err)
	}
	return nil
}

func fromDBInstance(inst types.DBInstance) snapshot.Instance {
	tags := make(map[string]string, len(inst.TagList))
	for _, tag := range inst.TagList {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return snapshot.Instance{
		ID:   aws.ToString(inst.DBInstanceIdentifier),
		ARN:  aws.ToString(inst.DBInstanceArn),
		Tags: tags,
	}
}

func fromDBSnapshot(snap types.DBSnapshot) snapshot.Snapshot {
	return snapshot.Snapshot{
		ID:         aws.ToString(snap.DBSnapshotIdentifier),
		InstanceID: aws.ToString(snap.DBInstanceIdentifier),
		ARN:        aws.ToString(snap.DBSnapshotArn),
		Status:     aws.ToString(snap.Status),
		Progress:   aws.ToInt32(snap.PercentProgress),
		Created:    aws.ToTime(snap.SnapshotCreateTime),
		KMSKeyID:   aws.ToString(snap.KmsKeyId),
		Type:       aws.ToString(snap.SnapshotType),
	}
}
