package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

func writeBrandsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadBrands(t *testing.T) {
	path := writeBrandsFile(t, `
brands:
  - name: Acme
    composites: ["Acme Capital", "Acme Seguros"]
    channel_terms: ["acme news"]
    spokespersons: true
    content_checks:
      - channel_term: acme housing
        content_term: mortgage
  - name: ACM
    rule: asymmetric
    count_composites: ["Acme ACM"]
`)
	brands, err := LoadBrands(path)
	require.NoError(t, err)
	require.Len(t, brands, 2)

	assert.Equal(t, "Acme", brands[0].Name)
	assert.Equal(t, model.RuleComposite, brands[0].EffectiveRule())
	assert.True(t, brands[0].TracksSpokespersons)
	assert.Len(t, brands[0].ContentChecks, 1)
	assert.Equal(t, model.RuleAsymmetric, brands[1].Rule)
}

func TestLoadBrandsErrors(t *testing.T) {
	_, err := LoadBrands(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadBrands(writeBrandsFile(t, "brands: []\n"))
	assert.Error(t, err)

	_, err = LoadBrands(writeBrandsFile(t, "brands:\n  - name: Acme\n  - name: Acme\n"))
	assert.Error(t, err)

	_, err = LoadBrands(writeBrandsFile(t, "brands:\n  - name: Acme\n    rule: fuzzy\n"))
	assert.Error(t, err)

	_, err = LoadBrands(writeBrandsFile(t, "not yaml: ["))
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "brands.yaml", cfg.Brands.File)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 500, cfg.Oracle.ThrottleMillis)
	assert.Equal(t, int64(16), cfg.Oracle.MaxTokens)
}
