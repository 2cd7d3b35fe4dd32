package driven

import (
	"context"
	"io"
)

// UploadStager copies an uploaded file to its fixed on-disk staging path
// before ingestion begins.
type UploadStager interface {
	// Stage writes the upload and returns the staged path.
	// The original name is used only for its extension.
	Stage(ctx context.Context, name string, r io.Reader) (string, error)
}
