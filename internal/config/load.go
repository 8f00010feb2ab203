package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := mapEnvKey(envPattern.FindStringSubmatch(m)[1])
		return os.Getenv(key)
	})
}

// Load builds the configuration for one replication pass: defaults,
// then the optional YAML file, then environment variables, then
// validation for the given role.
func Load(path string, role Role, debug bool) (*Config, error) {
	cfg := Default()
	cfg.Debug = debug

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		// expand $(ENV_VAR) placeholders
		expanded := expandEnvVars(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("unmarshalling yaml: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(role); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UnmarshalYAML accepts Go duration strings ("10s", "2h") for the run
// tuning knobs. Fields absent from the document keep their defaults.
func (r *RunConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		PollInterval  string `yaml:"pollInterval"`
		MaxWait       string `yaml:"maxWait"`
		PrunePause    string `yaml:"prunePause"`
		RetentionKeep *int   `yaml:"retentionKeep"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	durations := []struct {
		name string
		text string
		dst  *time.Duration
	}{
		{"run.pollInterval", raw.PollInterval, &r.PollInterval},
		{"run.maxWait", raw.MaxWait, &r.MaxWait},
		{"run.prunePause", raw.PrunePause, &r.PrunePause},
	}
	for _, d := range durations {
		if d.text == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.text)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	if raw.RetentionKeep != nil {
		r.RetentionKeep = *raw.RetentionKeep
	}
	return nil
}

// applyEnv overrides file values with the environment contract. Empty
// variables count as unset.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("AWS_DEFAULT_REGION"); v != "" {
		cfg.Region = v
	}
	if v := os.Getenv("KMS_KEY_ARN"); v != "" {
		cfg.KMSKeyARN = v
	}
	if v := os.Getenv("TARGET_ACCOUNT"); v != "" {
		cfg.TargetAccount = v
	}
	if v := os.Getenv("TOPIC_ARN"); v != "" {
		cfg.TopicARN = v
	}
	if v := os.Getenv("PATTERN"); v != "" {
		cfg.Pattern = v
	}
	if v := os.Getenv("TAGGEDINSTANCE"); v != "" {
		cfg.TaggedInstance = strings.ToUpper(strings.TrimSpace(v)) == "TRUE"
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("EXPECTED_SNAPSHOT_COUNT"); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EXPECTED_SNAPSHOT_COUNT must be an integer: %w", err)
		}
		cfg.ExpectedSnapshotCount = count
	}
	return nil
}
