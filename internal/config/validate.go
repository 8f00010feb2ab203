package config

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	kmsKeyARNPattern = regexp.MustCompile(`^arn:aws:kms:(.+):\d{12}:(?:key/[a-f0-9-]+)$`)
	accountIDPattern = regexp.MustCompile(`^\d{12}$`)
)

// Validate ensures the configuration is usable for the given role and
// compiles the instance pattern. It must pass before any AWS call is
// made.
func (c *Config) Validate(role Role) error {
	if c.Region == "" {
		return errors.New("AWS_DEFAULT_REGION must be set")
	}
	if !kmsKeyARNPattern.MatchString(c.KMSKeyARN) {
		return errors.New("KMS_KEY_ARN must be set to a KMS key ARN, like arn:aws:kms:<region>:<account_id>:key/<key_id>")
	}
	if role == RoleExport && !accountIDPattern.MatchString(c.TargetAccount) {
		return errors.New("TARGET_ACCOUNT must be set to a 12-digit target AWS account id")
	}
	if c.TopicARN == "" && !c.Debug {
		return errors.New("TOPIC_ARN must be set when not running in debug mode")
	}
	if c.ExpectedSnapshotCount < 0 {
		return errors.New("EXPECTED_SNAPSHOT_COUNT must not be negative")
	}

	c.pattern = nil
	if c.Pattern != AllInstances {
		pattern, err := regexp.Compile(c.Pattern)
		if err != nil {
			return fmt.Errorf("PATTERN is not a valid regular expression: %w", err)
		}
		c.pattern = pattern
	}

	if c.Run.PollInterval <= 0 {
		return errors.New("run.pollInterval must be positive")
	}
	if c.Run.MaxWait <= 0 {
		return errors.New("run.maxWait must be positive")
	}
	if c.Run.PrunePause < 0 {
		return errors.New("run.prunePause must not be negative")
	}
	if c.Run.RetentionKeep < 0 {
		return errors.New("run.retentionKeep must not be negative")
	}
	return nil
}
