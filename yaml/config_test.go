package yaml_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	t.Run("overlays file values on defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := yaml.ParseConfig([]byte(`
count: 5
delay: 3500ms
search:
  provider: searxng
  searxng_url: http://search.internal:8080
`))

		require.NoError(t, err)
		assert.Equal(t, 5, cfg.Count)
		assert.Equal(t, 3500*time.Millisecond, cfg.Delay)
		assert.Equal(t, serp.ProviderSearXNG, cfg.Search.Provider)
		assert.Equal(t, "http://search.internal:8080", cfg.Search.SearXNGURL)

		// untouched keys keep defaults
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, "output", cfg.OutputDir)
		assert.Equal(t, serp.DefaultUserAgent, cfg.UserAgent)
	})

	t.Run("empty document yields defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := yaml.ParseConfig(nil)

		require.NoError(t, err)
		assert.Equal(t, serp.DefaultConfig(), cfg)
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseConfig([]byte("cuont: 5\n"))

		assert.Equal(t, serp.EINVALID, serp.ErrorCode(err))
	})

	t.Run("rejects out of range values", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.ParseConfig([]byte("count: 50\n"))

		assert.Equal(t, serp.EINVALID, serp.ErrorCode(err))
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads file from disk", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "serp.yaml")
		require.NoError(t, os.WriteFile(path, []byte("output_dir: reports\n"), 0644))

		cfg, err := yaml.LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "reports", cfg.OutputDir)
	})

	t.Run("returns ENOTFOUND for missing file", func(t *testing.T) {
		t.Parallel()

		_, err := yaml.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))

		assert.Equal(t, serp.ENOTFOUND, serp.ErrorCode(err))
	})
}
