package snapshot

import (
	"regexp"
	"strings"
)

const (
	suffixRecrypted = "-recrypted"
	suffixCopy      = "-copy"
)

var (
	sharedSnapshotARN = regexp.MustCompile(`arn:aws:rds:(.+):\d{12}:snapshot:`)
	recryptedSuffix   = regexp.MustCompile(`recrypted$`)
)

// RecryptTargetID derives the manual copy identifier for a recrypted
// snapshot. Automatic snapshot identifiers carry a colon-delimited
// prefix ("rds:mydb-2026-01-01"); the segment after the first colon
// becomes the base name.
func RecryptTargetID(id string) string {
	if strings.Contains(id, ":") {
		return strings.Split(id, ":")[1] + suffixRecrypted
	}
	return id + suffixRecrypted
}

// LocalCopyTargetID derives the local copy identifier for a shared
// snapshot, whose identifier is its full ARN.
func LocalCopyTargetID(id string) string {
	return sharedSnapshotARN.ReplaceAllString(id, "") + suffixCopy
}

// IsSharedRecrypted reports whether a snapshot listed with IncludeShared
// is a recrypted copy shared by the source account. The check is shape
// only: a recrypted suffix plus a shared-snapshot ARN.
func IsSharedRecrypted(id string) bool {
	return recryptedSuffix.MatchString(id) && sharedSnapshotARN.MatchString(id)
}
