package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/raoulx24/rds-dr-archiver/internal/config"
	"github.com/raoulx24/rds-dr-archiver/internal/notify"
)

// countErrorTag prefixes every count-mismatch alert; alert routing
// matches on it, so the wording is load-bearing.
const countErrorTag = "COPY_RDS_SNAPSHOT_COUNT_ERROR"

const (
	exportFailureSubject = "DR: source account take shared RDS snapshot error"
	importFailureSubject = "DR: dst account copy RDS shared snapshot error"
)

// ErrCountMismatch marks a run whose processed snapshot count differs
// from the configured expectation.
var ErrCountMismatch = errors.New("snapshot count mismatch")

// ValidateRun compares the ready count against the expected count. On
// mismatch it publishes the role-specific alert (a noop in debug mode)
// and returns ErrCountMismatch so the process exits non-zero.
func ValidateRun(ctx context.Context, role config.Role, ready, expected int, notifier notify.Notifier, log *slog.Logger) error {
	if ready == expected {
		switch role {
		case config.RoleExport:
			log.Info("snapshot sharing completed successfully, exiting")
		default:
			log.Info("shared snapshot copying completed successfully, exiting")
		}
		return nil
	}

	var subject, message string
	switch role {
	case config.RoleExport:
		subject = exportFailureSubject
		message = fmt.Sprintf(
			"%s sharing RDS snapshots completed with error: Expected snapshot count=%d not equal to actual snapshot count=%d, exiting",
			countErrorTag, expected, ready)
	default:
		subject = importFailureSubject
		message = fmt.Sprintf(
			"%s Shared RDS snapshot copying completed with error:\nExpected snapshot count=%d not equal to actual snapshot count=%d, exiting",
			countErrorTag, expected, ready)
	}

	log.Error(message)
	if err := notifier.Publish(ctx, subject, message); err != nil {
		// The alert is best effort; the non-zero exit below is the
		// authoritative failure signal.
		log.Error("publishing failure notification", "error", err)
	}
	return fmt.Errorf("%w: expected %d, got %d", ErrCountMismatch, expected, ready)
}
