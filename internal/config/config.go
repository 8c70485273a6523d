package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dshills/prdoctor/internal/redact"
	"github.com/dshills/prdoctor/internal/scoring"
)

// DotEnvFile is read from the working directory by [Load].
const DotEnvFile = ".env"

// Config represents the prdoctor configuration.
type Config struct {
	Mode         string         `yaml:"mode"`
	Provider     string         `yaml:"provider"`
	Model        string         `yaml:"model"`
	Format       string         `yaml:"format"`
	OutDir       string         `yaml:"outDir"`
	Repo         string         `yaml:"repo,omitempty"`
	Ref          string         `yaml:"ref,omitempty"`
	RemoteScan   bool           `yaml:"remoteScan"`
	Fixture      string         `yaml:"fixture,omitempty"`
	EventPath    string         `yaml:"-"`
	MaxDiffBytes int            `yaml:"maxDiffBytes"`
	MaxTokens    int            `yaml:"maxTokens"`
	Scoring      scoring.Config `yaml:"scoring"`
	Privacy      PrivacyConfig  `yaml:"privacy"`
}

// PrivacyConfig controls redaction of patches before they are prompted.
type PrivacyConfig struct {
	RedactSecrets bool     `yaml:"redactSecrets"`
	RedactPaths   []string `yaml:"redactPaths,omitempty"`
}

// Policy converts the privacy settings into a redaction policy.
func (p PrivacyConfig) Policy() redact.Policy {
	return redact.Policy{Secrets: p.RedactSecrets, Paths: p.RedactPaths}
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Mode:         "standalone",
		Provider:     "openai",
		Model:        "",
		Format:       "markdown",
		OutDir:       ".",
		MaxDiffBytes: 200000,
		MaxTokens:    4096,
		Scoring:      scoring.Default(),
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactPaths:   append([]string(nil), redact.DefaultPaths...),
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for prdoctor.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "prdoctor"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "prdoctor"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "prdoctor"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "prdoctor"), nil
	default:
		return filepath.Join(home, ".config", "prdoctor"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// mergeFile decodes the config file over cfg. Keys absent from the file
// keep their current value. A missing file is not an error.
func mergeFile(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// LoadFileOrDefault returns the defaults overlaid with the config file
// alone, ignoring the environment.
func LoadFileOrDefault() (Config, error) {
	cfg := Default()
	if err := mergeFile(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDotEnv exports the variables of a .env file that are not already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load builds the effective config by merging:
// defaults <- file <- .env <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
// Unparseable environment values are logged and ignored.
func Load(overrides map[string]string, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := Default()

	if err := mergeFile(&cfg); err != nil {
		return Config{}, err
	}
	if err := LoadDotEnv(DotEnvFile); err != nil {
		logger.Warn("Ignoring unreadable .env file", "error", err)
	}
	mergeEnv(&cfg, logger)
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	if err := cfg.Scoring.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid scoring config: %w", err)
	}
	return cfg, nil
}

// scoringEnv binds the scoring environment variables to their fields.
// Later names in a row are aliases consulted only when earlier ones are unset.
var scoringEnv = []struct {
	names []string
	field func(*scoring.Config) *float64
}{
	{[]string{"BASE_SCORE"}, func(c *scoring.Config) *float64 { return &c.BaseScore }},
	{[]string{"PR_SCORE_THRESHOLD"}, func(c *scoring.Config) *float64 { return &c.Threshold }},
	{[]string{"CHANGE_FILE_WEIGHT"}, func(c *scoring.Config) *float64 { return &c.ChangeFileWeight }},
	{[]string{"ADDITION_WEIGHT"}, func(c *scoring.Config) *float64 { return &c.AdditionWeight }},
	{[]string{"DELETION_WEIGHT"}, func(c *scoring.Config) *float64 { return &c.DeletionWeight }},
	{[]string{"SMALL_PR_BONUS"}, func(c *scoring.Config) *float64 { return &c.SmallPRBonus }},
	{[]string{"LARGE_PR_PENALTY"}, func(c *scoring.Config) *float64 { return &c.LargePRPenalty }},
	{[]string{"MASSIVE_PR_PENALTY"}, func(c *scoring.Config) *float64 { return &c.MassivePRPenalty }},
	{[]string{"MISSING_TESTS_PENALTY"}, func(c *scoring.Config) *float64 { return &c.MissingTestsPenalty }},
	{[]string{"LINT_PENALTY", "FLAKE8_PENALTY"}, func(c *scoring.Config) *float64 { return &c.LintPenalty }},
	{[]string{"TYPE_CHECK_PENALTY", "MYPY_PENALTY"}, func(c *scoring.Config) *float64 { return &c.TypeCheckPenalty }},
}

func lookupFirst(names ...string) (string, string, bool) {
	for _, n := range names {
		if v := strings.TrimSpace(os.Getenv(n)); v != "" {
			return n, v, true
		}
	}
	return "", "", false
}

func mergeEnv(cfg *Config, logger *slog.Logger) {
	if _, v, ok := lookupFirst("PRDOCTOR_MODE", "HEPHAI_MODE"); ok {
		cfg.Mode = v
	}
	if v := os.Getenv("PRDOCTOR_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("PRDOCTOR_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("PRDOCTOR_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("PRDOCTOR_OUT_DIR"); v != "" {
		cfg.OutDir = v
	}
	if v := os.Getenv("PRDOCTOR_REF"); v != "" {
		cfg.Ref = v
	}
	if v := os.Getenv("PRDOCTOR_FIXTURE"); v != "" {
		cfg.Fixture = v
	}
	if _, v, ok := lookupFirst("GITHUB_REPOSITORY", "GITHUB_REPO_NAME"); ok {
		cfg.Repo = v
	}
	if v := os.Getenv("GITHUB_EVENT_PATH"); v != "" {
		cfg.EventPath = v
	}
	if v := os.Getenv("PRDOCTOR_REMOTE_SCAN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RemoteScan = b
		} else {
			logger.Warn("Ignoring invalid environment value", "name", "PRDOCTOR_REMOTE_SCAN", "value", v)
		}
	}
	for _, name := range []string{"PRDOCTOR_MAX_DIFF_BYTES", "PRDOCTOR_MAX_TOKENS"} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			logger.Warn("Ignoring invalid environment value", "name", name, "value", v)
			continue
		}
		if name == "PRDOCTOR_MAX_DIFF_BYTES" {
			cfg.MaxDiffBytes = n
		} else {
			cfg.MaxTokens = n
		}
	}

	for _, b := range scoringEnv {
		name, v, ok := lookupFirst(b.names...)
		if !ok {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !scoring.IsFinite(f) {
			logger.Warn("Ignoring invalid scoring value, keeping default", "name", name, "value", v)
			continue
		}
		*b.field(&cfg.Scoring) = f
	}
	if v := os.Getenv("SCORE_ADJUSTMENTS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Scoring.Adjustments = b
		} else {
			logger.Warn("Ignoring invalid environment value", "name", "SCORE_ADJUSTMENTS", "value", v)
		}
	}
}

func parseFinite(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !scoring.IsFinite(f) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return f, nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return fmt.Errorf("flag override: %w", err)
		}
	}
	return nil
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "mode":
		cfg.Mode = value
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		cfg.Format = value
	case "outDir":
		cfg.OutDir = value
	case "repo":
		cfg.Repo = value
	case "ref":
		cfg.Ref = value
	case "fixture":
		cfg.Fixture = value
	case "remoteScan":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("remoteScan must be a boolean: %w", err)
		}
		cfg.RemoteScan = b
	case "maxDiffBytes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxDiffBytes must be an integer: %w", err)
		}
		cfg.MaxDiffBytes = n
	case "maxTokens":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("maxTokens must be an integer: %w", err)
		}
		cfg.MaxTokens = n
	case "redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	case "threshold":
		f, err := parseFinite(value)
		if err != nil {
			return fmt.Errorf("threshold must be a number: %w", err)
		}
		cfg.Scoring.Threshold = f
	case "changeFileWeight", "additionWeight", "deletionWeight":
		f, err := parseFinite(value)
		if err != nil {
			return fmt.Errorf("%s must be a number: %w", key, err)
		}
		switch key {
		case "changeFileWeight":
			cfg.Scoring.ChangeFileWeight = f
		case "additionWeight":
			cfg.Scoring.AdditionWeight = f
		default:
			cfg.Scoring.DeletionWeight = f
		}
	case "adjustments":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("adjustments must be a boolean: %w", err)
		}
		cfg.Scoring.Adjustments = b
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
