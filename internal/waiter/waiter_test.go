package waiter_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/raoulx24/rds-dr-archiver/internal/catalog"
	"github.com/raoulx24/rds-dr-archiver/internal/config"
	"github.com/raoulx24/rds-dr-archiver/internal/logging"
	"github.com/raoulx24/rds-dr-archiver/internal/testsupport"
	"github.com/raoulx24/rds-dr-archiver/internal/waiter"
)

func TestWaitUntilAvailableLogsProgressOnlyOnChange(t *testing.T) {
	fake := testsupport.NewFakeRDS()
	fake.AddOwnedSnapshot(testsupport.DBSnapshot("orders-recrypted", "orders", "manual", "creating", time.Time{}))
	fake.ScriptStatus("orders-recrypted",
		testsupport.StatusStep{Status: "creating", Progress: 30},
		testsupport.StatusStep{Status: "creating", Progress: 30},
		testsupport.StatusStep{Status: "creating", Progress: 70},
		testsupport.StatusStep{Status: "available", Progress: 100},
	)

	var buf bytes.Buffer
	log := logging.New(logging.Options{Level: "DEBUG", Writer: &buf})
	cat := catalog.New(fake, log)
	w := waiter.New(cat, config.RunConfig{PollInterval: time.Millisecond, MaxWait: time.Second}, log)

	if err := w.WaitUntilAvailable(context.Background(), "orders-recrypted"); err != nil {
		t.Fatalf("WaitUntilAvailable: %v", err)
	}

	out := buf.String()
	if got := strings.Count(out, "percent=30"); got != 1 {
		t.Fatalf("percent=30 logged %d times, want once (only on change):\n%s", got, out)
	}
	if got := strings.Count(out, "percent=70"); got != 1 {
		t.Fatalf("percent=70 logged %d times, want once:\n%s", got, out)
	}
	if !strings.Contains(out, "complete and available") {
		t.Fatalf("completion not logged:\n%s", out)
	}
}

func TestWaitUntilAvailableTimesOut(t *testing.T) {
	fake := testsupport.NewFakeRDS()
	fake.AddOwnedSnapshot(testsupport.DBSnapshot("stuck", "orders", "manual", "creating", time.Time{}))

	cat := catalog.New(fake, testsupport.Logger())
	w := waiter.New(cat, config.RunConfig{PollInterval: time.Millisecond, MaxWait: 10 * time.Millisecond}, testsupport.Logger())

	err := w.WaitUntilAvailable(context.Background(), "stuck")
	if err == nil {
		t.Fatal("expected a timeout error for a snapshot that never becomes available")
	}
	if !strings.Contains(err.Error(), "stuck") {
		t.Fatalf("error should name the snapshot: %v", err)
	}
}

func TestWaitUntilAvailableHonorsCancellation(t *testing.T) {
	fake := testsupport.NewFakeRDS()
	fake.AddOwnedSnapshot(testsupport.DBSnapshot("slow", "orders", "manual", "creating", time.Time{}))

	cat := catalog.New(fake, testsupport.Logger())
	w := waiter.New(cat, config.RunConfig{PollInterval: 50 * time.Millisecond, MaxWait: time.Hour}, testsupport.Logger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.WaitUntilAvailable(ctx, "slow"); err == nil {
		t.Fatal("expected a cancellation error")
	}
}

func TestWaitUntilAvailableMissingSnapshot(t *testing.T) {
	cat := catalog.New(testsupport.NewFakeRDS(), testsupport.Logger())
	w := waiter.New(cat, config.RunConfig{PollInterval: time.Millisecond, MaxWait: time.Second}, testsupport.Logger())

	if err := w.WaitUntilAvailable(context.Background(), "ghost"); err == nil {
		t.Fatal("expected a lookup failure to surface")
	}
}
