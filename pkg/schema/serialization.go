package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatalogFile is the on-disk layout of a schema catalog.
type CatalogFile struct {
	Apps []AppSchema `yaml:"apps" json:"apps"`
}

// LoadCatalog reads a catalog file (YAML or JSON, by extension).
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data, filepath.Ext(path))
}

// ParseCatalog decodes catalog data. ext selects the format: ".json" for JSON,
// anything else is YAML.
func ParseCatalog(data []byte, ext string) (*Catalog, error) {
	var file CatalogFile
	if strings.ToLower(ext) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse catalog yaml: %w", err)
		}
	}

	seen := make(map[string]bool, len(file.Apps))
	for _, app := range file.Apps {
		if seen[app.ID] {
			return nil, fmt.Errorf("duplicate app id %q in catalog", app.ID)
		}
		seen[app.ID] = true
	}
	return NewCatalog(file.Apps...)
}
