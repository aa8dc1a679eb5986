package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)

	_, err = os.Stat(path)
	assert.NoError(t, err, "default config should be written to disk")
}

func TestLoadParsesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[net]
address = "0.0.0.0:9999"
max_connects_per_min = 30

[message]
max_length = 50
max_messages = 10
count_duration = "30s"

[moderation]
moderators = "mods.txt"
banned = "bans.txt"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9999", cfg.Net.Address)
	assert.Equal(t, 30, cfg.Net.MaxConnectsPerMinute)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.Message.CountDuration))
	assert.Nil(t, cfg.Auth)
}

func TestValidateRejectsMismatchedTLSFiles(t *testing.T) {
	cfg := Default()
	cfg.Net.CertFile = "cert.pem"
	assert.Error(t, Validate(&cfg))
}

func TestValidateRejectsIncompleteAuthSection(t *testing.T) {
	cfg := Default()
	cfg.Auth = &AuthConfig{Algorithm: "HS256", ValidTime: Duration(time.Hour)}
	assert.Error(t, Validate(&cfg))
}
