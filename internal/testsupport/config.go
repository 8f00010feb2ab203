package testsupport

import (
	"io"
	"log/slog"
	"time"

	"github.com/raoulx24/rds-dr-archiver/internal/config"
)

const (
	// TargetAccount is the destination account fixtures share with.
	TargetAccount = "444455556666"

	kmsKeyARN = "arn:aws:kms:us-east-1:210987654321:key/0f1e2d3c-4b5a-6978-8899-aabbccddeeff"
	topicARN  = "arn:aws:sns:us-east-1:111122223333:dr-alerts"
)

// Config returns a validated configuration with wait and prune pauses
// shrunk so tests run instantly.
func Config(role config.Role, debug bool) *config.Config {
	cfg := config.Default()
	cfg.Region = "us-east-1"
	cfg.KMSKeyARN = kmsKeyARN
	cfg.TargetAccount = TargetAccount
	cfg.TopicARN = topicARN
	cfg.Debug = debug
	cfg.Run = config.RunConfig{
		PollInterval:  time.Millisecond,
		MaxWait:       time.Second,
		PrunePause:    0,
		RetentionKeep: 2,
	}
	if err := cfg.Validate(role); err != nil {
		panic(err)
	}
	return &cfg
}

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
