package config

import (
	"os"
	"path/filepath"
	"testing"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "settings.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("settings:\n  db:\n    type: memory\n"), 0o600))

	require.NoError(t, Load(cfgPath))
	require.Equal(t, "memory", gconfig.Shared.GetString("settings.db.type"))
	require.Equal(t, filepath.Join(dir, "cred.json"), ResolvePath("cred.json"))
	require.Equal(t, "/abs/cred.json", ResolvePath("/abs/cred.json"))
	require.Empty(t, ResolvePath(""))

	require.Error(t, Load(filepath.Join(dir, "missing.yml")))
}
