// Package catalog enumerates the background pictures replies are composed on.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/timmy/sentencebot/internal/domain"
	"github.com/timmy/sentencebot/internal/storage"
)

// Catalog is an immutable, ordered list of background images.
type Catalog struct {
	source  string
	entries []domain.ImageEntry
}

// New builds a catalog from already resolved entries.
func New(source string, entries []domain.ImageEntry) *Catalog {
	copied := make([]domain.ImageEntry, len(entries))
	copy(copied, entries)
	return &Catalog{source: source, entries: copied}
}

// Load scans dir and builds one entry per file.
// Sub-directories and files without a title (".DS_Store") are skipped; no
// other filtering happens, every remaining file is trusted to be an image.
// Parameters:
//   - dir: directory holding the background pictures.
// Returns:
//   - *Catalog: catalog with at least one entry.
//   - error: *CatalogLoadError if dir cannot be read or holds no usable files.
func Load(dir string) (*Catalog, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, &CatalogLoadError{Source: dir, Err: err}
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, &CatalogLoadError{Source: dir, Err: err}
	}

	var entries []domain.ImageEntry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		title, format := ParseFileName(f.Name())
		if title == "" {
			continue
		}
		entries = append(entries, domain.ImageEntry{
			Title:    title,
			Format:   format,
			Location: filepath.Join(absDir, f.Name()),
		})
	}

	if len(entries) == 0 {
		return nil, &CatalogLoadError{Source: dir, Err: ErrEmptyCatalog}
	}

	return New(dir, entries), nil
}

// LoadFromStorage builds a catalog from the objects stored under prefix.
// Entry locations are object keys, to be resolved with a StorageOpener.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - store: object storage holding the background pack.
//   - prefix: key prefix to list; empty lists the whole bucket.
// Returns:
//   - *Catalog: catalog with at least one entry.
//   - error: *CatalogLoadError if listing fails or finds nothing.
func LoadFromStorage(ctx context.Context, store storage.ObjectStorage, prefix string) (*Catalog, error) {
	src := "storage:" + prefix

	objects, err := store.List(ctx, prefix)
	if err != nil {
		return nil, &CatalogLoadError{Source: src, Err: err}
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Key < objects[j].Key
	})

	var entries []domain.ImageEntry
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		title, format := ParseFileName(path.Base(obj.Key))
		if title == "" {
			continue
		}
		entries = append(entries, domain.ImageEntry{
			Title:    title,
			Format:   format,
			Location: obj.Key,
		})
	}

	if len(entries) == 0 {
		return nil, &CatalogLoadError{Source: src, Err: ErrEmptyCatalog}
	}

	return New(src, entries), nil
}

// ParseFileName splits a file name on its dots: the title is the part before
// the first dot, the format the lowercased part after it ("photo.JPG" -> "photo", "jpg").
// Names without an extension have an empty format.
func ParseFileName(name string) (title, format string) {
	parts := strings.Split(name, ".")
	title = parts[0]
	if len(parts) > 1 {
		format = strings.ToLower(parts[1])
	}
	return title, format
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Source describes where the catalog was loaded from.
func (c *Catalog) Source() string {
	return c.source
}

// Entries returns a copy of the catalog entries in index order.
func (c *Catalog) Entries() []domain.ImageEntry {
	if c == nil {
		return nil
	}
	out := make([]domain.ImageEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// At returns the entry at index i.
func (c *Catalog) At(i int) (domain.ImageEntry, error) {
	if i < 0 || i >= c.Len() {
		return domain.ImageEntry{}, fmt.Errorf("catalog index %d out of range [0,%d)", i, c.Len())
	}
	return c.entries[i], nil
}

// Select picks an entry uniformly at random over [0, Len()).
// Parameters:
//   - rng: random source; see NewRandom.
// Returns:
//   - domain.ImageEntry: selected entry.
//   - error: ErrEmptyCatalog if the catalog has no entries.
func (c *Catalog) Select(rng Random) (domain.ImageEntry, error) {
	n := c.Len()
	if n == 0 {
		return domain.ImageEntry{}, ErrEmptyCatalog
	}
	return c.entries[rng.IntN(n)], nil
}
