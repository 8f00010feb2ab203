// Package snapshot holds the domain records and the selection logic for
// RDS snapshot replication: instance filtering, latest/oldest scans and
// target identifier derivation.
package snapshot

import "time"

const (
	// TypeAutomated and TypeManual mirror the RDS SnapshotType values.
	TypeAutomated = "automated"
	TypeManual    = "manual"

	// StatusAvailable is the terminal ready state of a snapshot copy.
	StatusAvailable = "available"

	// MarkerRecrypted tags manual snapshots produced by the export pass,
	// MarkerRecryptedCopy the local copies produced by the import pass.
	MarkerRecrypted     = "recrypted"
	MarkerRecryptedCopy = "recrypted-copy"

	// TagCopyDBSnapshot marks a DB instance for export when instance
	// filtering is restricted to tagged instances.
	TagCopyDBSnapshot = "CopyDBSnapshot"
)

// Instance is the subset of an RDS DB instance used for filtering.
type Instance struct {
	ID   string
	ARN  string
	Tags map[string]string
}

// MarkedForCopy reports whether the instance carries the export marker tag.
func (i Instance) MarkedForCopy() bool {
	return i.Tags[TagCopyDBSnapshot] == "True"
}

// Snapshot is the subset of an RDS DB snapshot tracked during a run.
// Created is the zero time when RDS has not reported a creation timestamp
// yet, which happens while a snapshot is still being created.
type Snapshot struct {
	ID         string
	InstanceID string
	ARN        string
	Status     string
	Progress   int32
	Created    time.Time
	KMSKeyID   string
	Type       string
}
