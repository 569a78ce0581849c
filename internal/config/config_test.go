package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saravenpi/chorus/internal/auth"
	"github.com/saravenpi/chorus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, auth.DefaultEndpoint, cfg.Auth.Endpoint)
	assert.Equal(t, 1500*time.Millisecond, cfg.Simulation.ReplyDelay)
	assert.Equal(t, time.Second, cfg.Simulation.TypingIdle)
	assert.Equal(t, 500*time.Millisecond, cfg.Simulation.PeerTypingDelay)
	assert.Equal(t, 2*time.Second, cfg.Simulation.PeerTypingDuration)
	assert.Equal(t, models.StatusOnline, cfg.Profile.Status)
	assert.True(t, filepath.IsAbs(cfg.Log.File))
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `
auth:
  endpoint: http://localhost:9000/auth
  timeout: 10s
profile:
  username: Космонавт
  status: away
simulation:
  reply_delay: 250ms
  seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/auth", cfg.Auth.Endpoint)
	assert.Equal(t, 10*time.Second, cfg.Auth.Timeout)
	assert.Equal(t, "Космонавт", cfg.Profile.Username)
	assert.Equal(t, "1337", cfg.Profile.Discriminator)
	assert.Equal(t, models.StatusAway, cfg.Profile.Status)
	assert.Equal(t, 250*time.Millisecond, cfg.Simulation.ReplyDelay)
	assert.Equal(t, time.Second, cfg.Simulation.TypingIdle)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CHORUS_AUTH_ENDPOINT", "http://env/auth")
	t.Setenv("CHORUS_LOG_LEVEL", "debug")
	t.Setenv("CHORUS_SEED", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, "http://env/auth", cfg.Auth.Endpoint)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)

	t.Setenv("CHORUS_SEED", "seven")
	_, err = Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad status", func(c *Config) { c.Profile.Status = "dnd" }, "profile.status"},
		{"empty username", func(c *Config) { c.Profile.Username = " " }, "profile.username"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"negative timeout", func(c *Config) { c.Auth.Timeout = -time.Second }, "auth.timeout"},
		{"zero reply delay", func(c *Config) { c.Simulation.ReplyDelay = 0 }, "simulation.reply_delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("auth: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dir", "config.yml")
	cfg := Default()
	cfg.Profile.Avatar = "🚀"
	cfg.Simulation.ReplyDelay = 3 * time.Second

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "🚀", loaded.Profile.Avatar)
	assert.Equal(t, 3*time.Second, loaded.Simulation.ReplyDelay)
}
