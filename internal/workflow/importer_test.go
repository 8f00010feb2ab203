package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/raoulx24/rds-dr-archiver/internal/catalog"
	"github.com/raoulx24/rds-dr-archiver/internal/config"
	"github.com/raoulx24/rds-dr-archiver/internal/notify"
	"github.com/raoulx24/rds-dr-archiver/internal/retention"
	"github.com/raoulx24/rds-dr-archiver/internal/testsupport"
	"github.com/raoulx24/rds-dr-archiver/internal/waiter"
	"github.com/raoulx24/rds-dr-archiver/internal/workflow"
)

const sharedARNPrefix = "arn:aws:rds:us-east-1:123456789012:snapshot:"

func newImporter(fake *testsupport.FakeRDS, cfg *config.Config) *workflow.Importer {
	log := testsupport.Logger()
	cat := catalog.New(fake, log)
	return &workflow.Importer{
		Catalog: cat,
		Waiter:  waiter.New(cat, cfg.Run, log),
		Pruner:  retention.New(cat, cfg.Run, log),
		Config:  cfg,
		Log:     log,
	}
}

func TestImportRunCopiesSharedRecryptedSnapshots(t *testing.T) {
	fake := testsupport.NewFakeRDS()
	fake.AddSharedSnapshot(testsupport.DBSnapshot(sharedARNPrefix+"orders-2026-02-02-recrypted", "orders", "manual", "available", day(2)))
	fake.AddSharedSnapshot(testsupport.DBSnapshot(sharedARNPrefix+"billing-2026-02-02-recrypted", "billing", "manual", "available", day(2)))
	// Shared but not recrypted: not an import candidate.
	fake.AddSharedSnapshot(testsupport.DBSnapshot(sharedARNPrefix+"orders-adhoc", "orders", "manual", "available", day(1)))
	cfg := testsupport.Config(config.RoleImport, false)

	ready, err := newImporter(fake, cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ready != 2 {
		t.Fatalf("ready = %d, want 2", ready)
	}
	owned := fake.OwnedIDs()
	want := map[string]bool{
		"orders-2026-02-02-recrypted-copy":  true,
		"billing-2026-02-02-recrypted-copy": true,
	}
	for _, id := range owned {
		if !want[id] {
			t.Fatalf("unexpected local copy %q (all: %v)", id, owned)
		}
		delete(want, id)
	}
	if len(want) != 0 {
		t.Fatalf("missing local copies: %v", want)
	}
	// The copy source is the shared snapshot's ARN, not its bare name.
	for _, copyCall := range fake.Copies {
		if !strings.HasPrefix(copyCall.SourceID, "arn:aws:rds:") {
			t.Fatalf("copy must use the ARN as source: %+v", copyCall)
		}
		if copyCall.KMSKeyID != cfg.KMSKeyARN {
			t.Fatalf("local copy must use the local key: %+v", copyCall)
		}
	}
}

func TestImportRunIsRepeatable(t *testing.T) {
	fake := testsupport.NewFakeRDS()
	fake.AddSharedSnapshot(testsupport.DBSnapshot(sharedARNPrefix+"orders-2026-02-02-recrypted", "orders", "manual", "available", day(2)))
	cfg := testsupport.Config(config.RoleImport, false)
	imp := newImporter(fake, cfg)

	for run := 1; run <= 2; run++ {
		ready, err := imp.Run(context.Background())
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if ready != 1 {
			t.Fatalf("run %d: ready = %d, want 1", run, ready)
		}
	}
	if got := len(fake.OwnedIDs()); got != 1 {
		t.Fatalf("got %d local copies after two runs, want 1", got)
	}
}

func TestImportRunPrunesLocalCopiesPerInstance(t *testing.T) {
	fake := testsupport.NewFakeRDS()
	fake.AddSharedSnapshot(testsupport.DBSnapshot(sharedARNPrefix+"orders-2026-02-05-recrypted", "orders", "manual", "available", day(5)))
	// Three local copies from earlier runs; the new one makes four.
	fake.AddOwnedSnapshot(testsupport.DBSnapshot("orders-2026-02-01-recrypted-copy", "orders", "manual", "available", day(1)))
	fake.AddOwnedSnapshot(testsupport.DBSnapshot("orders-2026-02-02-recrypted-copy", "orders", "manual", "available", day(2)))
	fake.AddOwnedSnapshot(testsupport.DBSnapshot("orders-2026-02-03-recrypted-copy", "orders", "manual", "available", day(3)))

	ready, err := newImporter(fake, testsupport.Config(config.RoleImport, false)).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ready != 1 {
		t.Fatalf("ready = %d, want 1", ready)
	}
	wantDeleted := []string{"orders-2026-02-01-recrypted-copy", "orders-2026-02-02-recrypted-copy"}
	if len(fake.Deleted) != 2 || fake.Deleted[0] != wantDeleted[0] || fake.Deleted[1] != wantDeleted[1] {
		t.Fatalf("deleted %v, want the two oldest copies", fake.Deleted)
	}
}

func TestImportRunFailsWhenNothingIsVisible(t *testing.T) {
	fake := testsupport.NewFakeRDS()

	_, err := newImporter(fake, testsupport.Config(config.RoleImport, false)).Run(context.Background())
	if !errors.Is(err, workflow.ErrNoSharedSnapshots) {
		t.Fatalf("expected ErrNoSharedSnapshots, got %v", err)
	}
}

func TestImportValidateRunPublishesOnMismatch(t *testing.T) {
	cfg := testsupport.Config(config.RoleImport, false)
	fakeSNS := &testsupport.FakeSNS{}
	notifier := notify.New(cfg, fakeSNS, testsupport.Logger())

	err := workflow.ValidateRun(context.Background(), config.RoleImport, 1, cfg.ExpectedSnapshotCount, notifier, testsupport.Logger())
	if !errors.Is(err, workflow.ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
	if len(fakeSNS.Published) != 1 {
		t.Fatalf("got %d publishes, want 1", len(fakeSNS.Published))
	}
	msg := fakeSNS.Published[0]
	if msg.Subject != "DR: dst account copy RDS shared snapshot error" {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}
	if !strings.Contains(msg.Message, "count=4") || !strings.Contains(msg.Message, "count=1") {
		t.Fatalf("message must carry both counts: %q", msg.Message)
	}
}
