package snapshot_test

import (
	"testing"

	"github.com/raoulx24/rds-dr-archiver/internal/snapshot"
)

func TestRecryptTargetID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"rds:mydb-2026-03-01-04-05", "mydb-2026-03-01-04-05-recrypted"},
		{"some:thing:mydb-snap-2024", "thing-recrypted"},
		{"plain-manual-snap", "plain-manual-snap-recrypted"},
	}
	for _, tt := range tests {
		if got := snapshot.RecryptTargetID(tt.id); got != tt.want {
			t.Errorf("RecryptTargetID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestLocalCopyTargetID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"arn:aws:rds:us-east-1:123456789012:snapshot:mydb-snap", "mydb-snap-copy"},
		{"arn:aws:rds:eu-west-1:123456789012:snapshot:mydb-2026-03-01-recrypted", "mydb-2026-03-01-recrypted-copy"},
		{"not-an-arn", "not-an-arn-copy"},
	}
	for _, tt := range tests {
		if got := snapshot.LocalCopyTargetID(tt.id); got != tt.want {
			t.Errorf("LocalCopyTargetID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestIsSharedRecrypted(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"arn:aws:rds:us-east-1:123456789012:snapshot:mydb-recrypted", true},
		{"arn:aws:rds:us-east-1:123456789012:snapshot:mydb-snap", false},
		{"mydb-recrypted", false},
		{"arn:aws:rds:us-east-1:123456789012:snapshot:mydb-recrypted-copy", false},
	}
	for _, tt := range tests {
		if got := snapshot.IsSharedRecrypted(tt.id); got != tt.want {
			t.Errorf("IsSharedRecrypted(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
