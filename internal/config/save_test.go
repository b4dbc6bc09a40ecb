package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readConfig(t *testing.T, path string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg := Defaults()
	require.NoError(t, v.Unmarshal(&cfg))
	return cfg
}

func TestSetCatalogPath_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, SetCatalogPath(path, "ops.yaml"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "catalog:\n  path: ops.yaml\n", string(data))
}

func TestSetCatalogPath_PreservesOtherConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	initial := `# my settings
dispatch:
  max_depth: 7 # shallow
catalog:
  path: old.yaml
  watch: true
`
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o600))

	require.NoError(t, SetCatalogPath(path, "new.yaml"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# my settings")
	assert.Contains(t, string(data), "# shallow")

	cfg := readConfig(t, path)
	assert.Equal(t, "new.yaml", cfg.Catalog.Path)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, 7, cfg.Dispatch.MaxDepth)
}

func TestSetValue_CreatesIntermediateMappings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\n"), 0o600))

	require.NoError(t, SetValue(path, []string{"dispatch", "memo"}, true))
	require.NoError(t, SetValue(path, []string{"dispatch", "max_depth"}, 3))

	cfg := readConfig(t, path)
	assert.True(t, cfg.Dispatch.Memo)
	assert.Equal(t, 3, cfg.Dispatch.MaxDepth)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestSetValue_Errors(t *testing.T) {
	dir := t.TempDir()

	require.Error(t, SetValue(filepath.Join(dir, "a.yaml"), nil, 1))

	scalarRoot := filepath.Join(dir, "scalar.yaml")
	require.NoError(t, os.WriteFile(scalarRoot, []byte("just a string\n"), 0o600))
	require.ErrorContains(t, SetValue(scalarRoot, []string{"catalog", "path"}, "x"), "not a mapping")

	scalarKey := filepath.Join(dir, "key.yaml")
	require.NoError(t, os.WriteFile(scalarKey, []byte("catalog: none\n"), 0o600))
	require.ErrorContains(t, SetValue(scalarKey, []string{"catalog", "path"}, "x"), "catalog is not a mapping")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("a: [\n"), 0o600))
	require.ErrorContains(t, SetValue(broken, []string{"a"}, 1), "parsing config")
}
