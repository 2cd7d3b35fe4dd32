// Package loadutil holds helpers shared by the document loaders.
package loadutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// docNamespace seeds deterministic document IDs.
var docNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("docqa/document"))

// TitleFromPath derives a readable title from a file name.
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

// NewDocument builds a loaded document. The ID depends only on path and page
// so reloading the same file yields the same IDs.
func NewDocument(path, format, title, content string, page int) domain.Document {
	return domain.Document{
		ID:      uuid.NewSHA1(docNamespace, []byte(fmt.Sprintf("%s#%d", path, page))).String(),
		Source:  path,
		Title:   title,
		Content: content,
		Page:    page,
		Metadata: map[string]any{
			domain.MetaSource: path,
			domain.MetaTitle:  title,
			"format":          format,
		},
		CreatedAt: time.Now(),
	}
}

// ReadFile reads a whole file, mapping a missing file to domain.ErrNotFound.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
