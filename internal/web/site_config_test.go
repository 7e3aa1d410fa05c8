package web

import (
	"testing"

	gconfig "github.com/Laisky/go-config/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/amc-site/library/log"
)

// TestLoadSiteConfig verifies frontend settings are read and trimmed.
func TestLoadSiteConfig(t *testing.T) {
	keys := []string{"settings.editor.api_key", "settings.storage.public_base_url", "settings.storage.bucket"}
	old := map[string]any{}
	for _, k := range keys {
		old[k] = gconfig.Shared.Get(k)
	}
	t.Cleanup(func() {
		for k, v := range old {
			gconfig.Shared.Set(k, v)
		}
	})

	gconfig.Shared.Set("settings.editor.api_key", " key ")
	gconfig.Shared.Set("settings.storage.public_base_url", "https://cdn.amc.example/")
	gconfig.Shared.Set("settings.storage.bucket", "site")

	site := LoadSiteConfig(log.Logger.Named("site_config_test"))
	require.Equal(t, "key", site.EditorAPIKey)
	require.Equal(t, "https://cdn.amc.example", site.StorageBaseURL)
	require.True(t, site.UploadsEnabled)

	gconfig.Shared.Set("settings.storage.bucket", "")
	require.False(t, LoadSiteConfig(log.Logger.Named("site_config_test")).UploadsEnabled)
}
