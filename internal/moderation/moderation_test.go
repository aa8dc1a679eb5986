package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencraftmc/chatrelay/internal/clienterror"
)

func TestLoadCreatesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "moderators.txt")
	banPath := filepath.Join(dir, "banned.txt")

	m, err := Load(modPath, banPath)
	require.NoError(t, err)

	_, err = os.Stat(modPath)
	assert.NoError(t, err)
	_, err = os.Stat(banPath)
	assert.NoError(t, err)

	assert.False(t, m.IsModerator(uuid.New()))
	assert.False(t, m.IsBanned(uuid.New()))
}

func TestBanRefusesModerator(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "moderators.txt")
	banPath := filepath.Join(dir, "banned.txt")

	id := uuid.New()
	require.NoError(t, os.WriteFile(modPath, []byte(id.String()+"\n"), 0o644))
	require.NoError(t, os.WriteFile(banPath, nil, 0o644))

	m, err := Load(modPath, banPath)
	require.NoError(t, err)

	err = m.Ban(id)
	require.Error(t, err)
	ce := err.(clienterror.Error)
	assert.Equal(t, clienterror.NotPermitted, ce.Kind)
	assert.False(t, m.IsBanned(id))
}

func TestBanAppendsAndUnbanRewrites(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "moderators.txt")
	banPath := filepath.Join(dir, "banned.txt")
	require.NoError(t, os.WriteFile(modPath, nil, 0o644))
	require.NoError(t, os.WriteFile(banPath, nil, 0o644))

	m, err := Load(modPath, banPath)
	require.NoError(t, err)

	a := uuid.New()
	b := uuid.New()
	require.NoError(t, m.Ban(a))
	require.NoError(t, m.Ban(b))
	assert.True(t, m.IsBanned(a))
	assert.True(t, m.IsBanned(b))

	contents, err := os.ReadFile(banPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), a.String())
	assert.Contains(t, string(contents), b.String())

	require.NoError(t, m.Unban(a))
	assert.False(t, m.IsBanned(a))
	assert.True(t, m.IsBanned(b))

	contents, err = os.ReadFile(banPath)
	require.NoError(t, err)
	assert.NotContains(t, string(contents), a.String())
	assert.Contains(t, string(contents), b.String())

	reloaded, err := Load(modPath, banPath)
	require.NoError(t, err)
	assert.False(t, reloaded.IsBanned(a))
	assert.True(t, reloaded.IsBanned(b))
}

func TestUnbanNotBannedIsError(t *testing.T) {
	dir := t.TempDir()
	modPath := filepath.Join(dir, "moderators.txt")
	banPath := filepath.Join(dir, "banned.txt")

	m, err := Load(modPath, banPath)
	require.NoError(t, err)

	err = m.Unban(uuid.New())
	require.Error(t, err)
	ce := err.(clienterror.Error)
	assert.Equal(t, clienterror.NotBanned, ce.Kind)
}
