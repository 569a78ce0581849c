package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/saravenpi/chorus/internal/auth"
	"github.com/saravenpi/chorus/internal/models"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the client looks for its config file.
const DefaultPath = "~/.chorus/config.yml"

type Config struct {
	Auth       Auth       `yaml:"auth"`
	Profile    Profile    `yaml:"profile"`
	Log        Log        `yaml:"log"`
	Simulation Simulation `yaml:"simulation"`
}

type Auth struct {
	Endpoint      string        `yaml:"endpoint"`
	Timeout       time.Duration `yaml:"timeout"`
	Remember      bool          `yaml:"remember"`
	SessionFile   string        `yaml:"session_file"`
	PromptOnStart bool          `yaml:"prompt_on_start"`
}

// Profile is the guest identity used until the user signs in.
type Profile struct {
	Username      string        `yaml:"username"`
	Discriminator string        `yaml:"discriminator"`
	Avatar        string        `yaml:"avatar"`
	Status        models.Status `yaml:"status"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Simulation struct {
	Seed               uint64        `yaml:"seed"`
	ReplyDelay         time.Duration `yaml:"reply_delay"`
	TypingIdle         time.Duration `yaml:"typing_idle"`
	PeerTypingDelay    time.Duration `yaml:"peer_typing_delay"`
	PeerTypingDuration time.Duration `yaml:"peer_typing_duration"`
}

func Default() Config {
	return Config{
		Auth: Auth{
			Endpoint:      auth.DefaultEndpoint,
			Timeout:       15 * time.Second,
			Remember:      true,
			SessionFile:   "~/.chorus/session.yml",
			PromptOnStart: true,
		},
		Profile: Profile{
			Username:      "Юра",
			Discriminator: "1337",
			Avatar:        "👨‍🚀",
			Status:        models.StatusOnline,
		},
		Log: Log{
			Level: "info",
			File:  "~/.chorus/chorus.log",
		},
		Simulation: Simulation{
			ReplyDelay:         1500 * time.Millisecond,
			TypingIdle:         time.Second,
			PeerTypingDelay:    500 * time.Millisecond,
			PeerTypingDuration: 2 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to resolve config path: %w", err)
	}

	data, err := os.ReadFile(expanded)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.expandPaths(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	c.Auth.Endpoint = envOrDefault("CHORUS_AUTH_ENDPOINT", c.Auth.Endpoint)
	c.Log.Level = envOrDefault("CHORUS_LOG_LEVEL", c.Log.Level)
	c.Log.File = envOrDefault("CHORUS_LOG_FILE", c.Log.File)

	if v := strings.TrimSpace(os.Getenv("CHORUS_SEED")); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid CHORUS_SEED: %w", err)
		}
		c.Simulation.Seed = seed
	}
	return nil
}

func (c *Config) expandPaths() error {
	var err error
	if c.Log.File != "" {
		if c.Log.File, err = homedir.Expand(c.Log.File); err != nil {
			return fmt.Errorf("failed to resolve log file: %w", err)
		}
	}
	if c.Auth.SessionFile != "" {
		if c.Auth.SessionFile, err = homedir.Expand(c.Auth.SessionFile); err != nil {
			return fmt.Errorf("failed to resolve session file: %w", err)
		}
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if !c.Profile.Status.Valid() {
		errs = append(errs, fmt.Errorf("profile.status: unknown status %q", c.Profile.Status))
	}
	if strings.TrimSpace(c.Profile.Username) == "" {
		errs = append(errs, errors.New("profile.username: must not be empty"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if c.Auth.Timeout < 0 {
		errs = append(errs, errors.New("auth.timeout: must not be negative"))
	}

	delays := []struct {
		name string
		d    time.Duration
	}{
		{"simulation.reply_delay", c.Simulation.ReplyDelay},
		{"simulation.typing_idle", c.Simulation.TypingIdle},
		{"simulation.peer_typing_delay", c.Simulation.PeerTypingDelay},
		{"simulation.peer_typing_duration", c.Simulation.PeerTypingDuration},
	}
	for _, delay := range delays {
		if delay.d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be positive", delay.name))
		}
	}

	return errors.Join(errs...)
}

// Save writes cfg as YAML, creating the directory when needed.
func Save(path string, cfg Config) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(expanded, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
