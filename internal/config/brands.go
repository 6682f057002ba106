package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/pressroom-labs/brandwatch-cli/internal/model"
)

// brandsFile is the on-disk shape of brands.yaml.
type brandsFile struct {
	Brands []model.BrandSpec `yaml:"brands"`
}

// LoadBrands reads the brand spec file. Order in the file is the
// processing and export column order. Any invalid spec or duplicate
// name fails the load; brand configuration errors are fatal before
// processing begins.
func LoadBrands(path string) ([]model.BrandSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read brands file %s", path)
	}

	var f brandsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "config: parse brands file %s", path)
	}
	if len(f.Brands) == 0 {
		return nil, eris.Errorf("config: brands file %s defines no brands", path)
	}

	seen := make(map[string]bool, len(f.Brands))
	for _, b := range f.Brands {
		if err := b.Validate(); err != nil {
			return nil, eris.Wrapf(err, "config: brands file %s", path)
		}
		if seen[b.Name] {
			return nil, eris.Errorf("config: brands file %s: duplicate brand %s", path, b.Name)
		}
		seen[b.Name] = true
	}

	return f.Brands, nil
}
