package loaders

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/loaders/docx"
	"github.com/custodia-labs/docqa/internal/loaders/html"
	"github.com/custodia-labs/docqa/internal/loaders/markdown"
	"github.com/custodia-labs/docqa/internal/loaders/pdf"
	"github.com/custodia-labs/docqa/internal/loaders/plaintext"
)

// Compile-time check.
var _ driven.LoaderRegistry = (*Registry)(nil)

// Registry maps file extensions to loaders. The last registered loader for an
// extension wins.
type Registry struct {
	byExt map[string]driven.DocumentLoader
}

// NewRegistry creates a registry holding the given loaders.
func NewRegistry(loaders ...driven.DocumentLoader) *Registry {
	r := &Registry{byExt: make(map[string]driven.DocumentLoader)}
	for _, l := range loaders {
		r.Register(l)
	}
	return r
}

// Default returns a registry with every built-in loader.
func Default() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		pdf.New(),
	)
}

// Register adds a loader for all of its extensions.
func (r *Registry) Register(l driven.DocumentLoader) {
	for _, ext := range l.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = l
	}
}

// ForPath returns the loader registered for the file's extension.
func (r *Registry) ForPath(path string) (driven.DocumentLoader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if l, ok := r.byExt[ext]; ok {
		return l, nil
	}
	if ext == "" {
		ext = "(none)"
	}
	return nil, fmt.Errorf("%w: extension %s", domain.ErrUnsupportedFormat, ext)
}

// Extensions returns all supported extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
