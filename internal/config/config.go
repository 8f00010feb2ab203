// Package config loads and validates the replication configuration.
// The runtime contract is environment-variable driven; an optional YAML
// file can pre-seed values, and environment variables always win.
package config

import (
	"regexp"
	"time"
)

// Role selects which replication pass a process runs.
type Role string

const (
	RoleExport Role = "export"
	RoleImport Role = "import"
)

// AllInstances is the PATTERN sentinel meaning "match every instance".
const AllInstances = "ALL_INSTANCES"

type Config struct {
	// Region is the target AWS region (AWS_DEFAULT_REGION). Required.
	Region string `yaml:"region"`
	// KMSKeyARN encrypts every snapshot copy (KMS_KEY_ARN). The key
	// lives in the backup account and is shared with the main account.
	// Required.
	KMSKeyARN string `yaml:"kmsKeyArn"`
	// TargetAccount receives the shared snapshots (TARGET_ACCOUNT).
	// Export role only. The default "0" fails validation, so it is
	// effectively required there.
	TargetAccount string `yaml:"targetAccount"`
	// TopicARN is the SNS alert target (TOPIC_ARN). Required unless
	// running in debug mode.
	TopicARN string `yaml:"topicArn"`
	// Pattern restricts export to matching instance identifiers
	// (PATTERN), e.g. `^((.+)prod(.+)|speech-api$)`. AllInstances
	// disables the filter.
	Pattern string `yaml:"pattern"`
	// TaggedInstance restricts export to instances tagged
	// CopyDBSnapshot=True (TAGGEDINSTANCE, "TRUE"/"FALSE").
	TaggedInstance bool `yaml:"taggedInstance"`
	// ExpectedSnapshotCount is the run success criterion
	// (EXPECTED_SNAPSHOT_COUNT).
	ExpectedSnapshotCount int `yaml:"expectedSnapshotCount"`
	// LogLevel sets verbosity (LOG_LEVEL).
	LogLevel string `yaml:"logLevel"`

	Run RunConfig `yaml:"run"`

	// Debug suppresses notification publishing. Set from the --debug
	// flag, never from the environment.
	Debug bool `yaml:"-"`

	pattern *regexp.Regexp
}

// RunConfig tunes the polling and pruning loops. Tests shrink these.
type RunConfig struct {
	// PollInterval is the pause between snapshot status checks.
	PollInterval time.Duration `yaml:"pollInterval"`
	// MaxWait bounds how long one snapshot may take to become
	// available before the run is aborted.
	MaxWait time.Duration `yaml:"maxWait"`
	// PrunePause is the pause between retention deletions.
	PrunePause time.Duration `yaml:"prunePause"`
	// RetentionKeep is how many matching manual snapshots survive
	// pruning per instance.
	RetentionKeep int `yaml:"retentionKeep"`
}

// Default returns the built-in configuration, before file and
// environment are applied.
func Default() Config {
	return Config{
		TargetAccount:         "0",
		Pattern:               AllInstances,
		ExpectedSnapshotCount: 4,
		LogLevel:              "DEBUG",
		Run: RunConfig{
			PollInterval:  10 * time.Second,
			MaxWait:       2 * time.Hour,
			PrunePause:    time.Second,
			RetentionKeep: 2,
		},
	}
}

// InstancePattern returns the compiled PATTERN, or nil when every
// instance matches. Populated by Validate.
func (c *Config) InstancePattern() *regexp.Regexp {
	return c.pattern
}
