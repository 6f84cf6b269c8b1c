// Package config loads relay's runtime configuration from the environment.
// Everything the orchestrator needs arrives through one explicit struct; the
// core never reads ambient process state itself.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/forgeworks/relay/internal/logging"
)

// envPrefix is the prefix of every relay configuration variable.
const envPrefix = "RELAY_"

// Config is relay's runtime configuration. Secret-valued settings hold
// references (environment variable names), never the values themselves.
type Config struct {
	// ProtectedBranch gates delivery and failure notifications.
	ProtectedBranch string `koanf:"protected_branch"`

	// Repository is the platform slug ("org/name") of the repository under
	// orchestration, and RunID is the platform's identifier for this run.
	// Together with PlatformURL they form the notification action URL.
	Repository  string `koanf:"repository"`
	RunID       string `koanf:"run_id"`
	PlatformURL string `koanf:"platform_url"`

	// CloneURL is the repository's clone URL used to prepare job checkouts.
	CloneURL string `koanf:"clone_url"`

	// ImageRef is the base identifier of the published artifact.
	ImageRef string `koanf:"image_ref"`

	// RegistryURL is the container registry endpoint.
	RegistryURL string `koanf:"registry_url"`

	// ManifestPath is the project manifest the release version comes from.
	ManifestPath string `koanf:"manifest_path"`

	// BuildFile is the container build definition file.
	BuildFile string `koanf:"build_file"`

	// NotifyPretext names the pipeline in alert messages.
	NotifyPretext string `koanf:"notify_pretext"`

	// Secret references: names of the environment variables the invoking
	// platform injects the actual values into.
	WebhookRef      string `koanf:"webhook_ref"`
	RegistryUserRef string `koanf:"registry_user_ref"`
	RegistryPassRef string `koanf:"registry_pass_ref"`
	TokenRef        string `koanf:"token_ref"`

	Log logging.Config `koanf:"log"`
}

// NewDefault returns the built-in defaults.
func NewDefault() *Config {
	return &Config{
		ProtectedBranch: "main",
		PlatformURL:     "https://github.com",
		ManifestPath:    "Cargo.toml",
		BuildFile:       "Dockerfile",
		NotifyPretext:   "relay CI",
		WebhookRef:      "NOTIFY_WEBHOOK_URL",
		RegistryUserRef: "REGISTRY_USERNAME",
		RegistryPassRef: "REGISTRY_PASSWORD",
		TokenRef:        "PLATFORM_TOKEN",
		Log:             logging.NewDefaultConfig(),
	}
}

// Load builds the configuration from defaults overridden by RELAY_-prefixed
// environment variables (RELAY_PROTECTED_BRANCH, RELAY_IMAGE_REF,
// RELAY_LOG_LEVEL, ...).
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", transformEnvKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}

	cfg := NewDefault()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// transformEnvKey maps an environment variable to its config key:
//
//	RELAY_PROTECTED_BRANCH -> protected_branch
//	RELAY_LOG_LEVEL        -> log.level
func transformEnvKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if rest, ok := strings.CutPrefix(key, "log_"); ok {
		return "log." + rest
	}
	return key
}

// ActionURL is the platform URL of this run, used in failure alerts.
func (c *Config) ActionURL() string {
	return fmt.Sprintf("%s/%s/actions/runs/%s",
		strings.TrimRight(c.PlatformURL, "/"), c.Repository, c.RunID)
}

// Validate checks the settings every pipeline depends on.
func (c *Config) Validate() error {
	if c.ProtectedBranch == "" {
		return fmt.Errorf("protected_branch must not be empty")
	}
	if c.ManifestPath == "" {
		return fmt.Errorf("manifest_path must not be empty")
	}
	if c.BuildFile == "" {
		return fmt.Errorf("build_file must not be empty")
	}
	return nil
}
