package snapshot

import "strings"

// Latest returns the snapshot with the most recent creation timestamp.
// RDS offers no "most recent" query, so the caller fetches the full
// listing and this scans it. Snapshots missing a creation timestamp are
// skipped in the comparison, but the first snapshot seen stays the
// candidate until something newer beats it. Ties keep the first match.
func Latest(snaps []Snapshot) (Snapshot, bool) {
	if len(snaps) == 0 {
		return Snapshot{}, false
	}
	latest := snaps[0]
	for _, s := range snaps[1:] {
		if s.Created.IsZero() || latest.Created.IsZero() {
			continue
		}
		if s.Created.After(latest.Created) {
			latest = s
		}
	}
	return latest, true
}

// OldestRecrypted returns the oldest snapshot whose identifier contains
// the recrypted marker. Ties keep the first match. ok is false when no
// identifier matches.
func OldestRecrypted(snaps []Snapshot) (Snapshot, bool) {
	var oldest Snapshot
	found := false
	for _, s := range snaps {
		if !strings.Contains(s.ID, MarkerRecrypted) {
			continue
		}
		if !found {
			oldest = s
			found = true
			continue
		}
		if s.Created.Before(oldest.Created) {
			oldest = s
		}
	}
	return oldest, found
}

// CountMatching counts snapshots whose identifier contains marker.
func CountMatching(snaps []Snapshot, marker string) int {
	count := 0
	for _, s := range snaps {
		if strings.Contains(s.ID, marker) {
			count++
		}
	}
	return count
}
