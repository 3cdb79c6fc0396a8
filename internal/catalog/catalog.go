// Package catalog ships the built-in app schemas.
package catalog

import (
	_ "embed"
	"fmt"

	"github.com/techwithparamesh/agentflow/pkg/schema"
)

//go:embed apps.yaml
var appsYAML []byte

// Default parses the embedded catalog.
func Default() (*schema.Catalog, error) {
	c, err := schema.ParseCatalog(appsYAML, ".yaml")
	if err != nil {
		return nil, fmt.Errorf("embedded catalog: %w", err)
	}
	return c, nil
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*schema.Catalog, error) {
	if path == "" {
		return Default()
	}
	return schema.LoadCatalog(path)
}
