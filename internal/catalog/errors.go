package catalog

import (
	"errors"
	"fmt"
)

// ErrEmptyCatalog is returned when a selection is attempted against a catalog
// without entries, or when loading finds nothing to serve.
var ErrEmptyCatalog = errors.New("catalog has no images")

// CatalogLoadError reports that a background source could not be read.
type CatalogLoadError struct {
	Source string
	Err    error
}

// Error implements the error interface.
func (e *CatalogLoadError) Error() string {
	return fmt.Sprintf("failed to load image catalog from %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CatalogLoadError) Unwrap() error {
	return e.Err
}
