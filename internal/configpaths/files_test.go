package configpaths_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusgame/hydra/internal/configpaths"
)

func TestConfigCandidatePaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix layout")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	tests := []struct {
		name     string
		userPath string
		wantJSON string
		wantYAML string
		wantTOML string
	}{
		{name: "yaml user path", userPath: "/srv/hydra.yml", wantYAML: "/srv/hydra.yml"},
		{name: "toml user path", userPath: "/srv/hydra.toml", wantTOML: "/srv/hydra.toml"},
		{name: "unknown extension treated as json", userPath: "/srv/hydra.conf", wantJSON: "/srv/hydra.conf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, y, tm := configpaths.ConfigCandidatePaths(tt.userPath)
			if tt.wantJSON != "" {
				assert.Equal(t, tt.wantJSON, j[0])
			}
			if tt.wantYAML != "" {
				assert.Equal(t, tt.wantYAML, y[0])
			}
			if tt.wantTOML != "" {
				assert.Equal(t, tt.wantTOML, tm[0])
			}
			assert.Contains(t, j, "/tmp/xdg/hydrad/run.json")
			assert.Contains(t, y, "/etc/hydrad/hydrad.yaml")
			assert.Contains(t, tm, "/etc/hydrad/config.toml")
		})
	}
}

func TestDefaultNamedConfigPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix layout")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := configpaths.DefaultNamedConfigPath("run", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "hydrad", "run.yaml"), p)
}
