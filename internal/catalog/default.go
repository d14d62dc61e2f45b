package catalog

import (
	_ "embed"
)

//go:embed data/exoplanets.json
var defaultCatalog []byte

// Default returns the built-in sample catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}
