package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCmd_Success(t *testing.T) {
	var gotName, gotBody string
	setupTestServices(t, &MockQAService{
		IngestFunc: func(name string, r io.Reader) (*domain.IngestReport, error) {
			data, err := io.ReadAll(r)
			require.NoError(t, err)
			gotName, gotBody = name, string(data)
			return &domain.IngestReport{Documents: 1, Chunks: 3, Stored: 3}, nil
		},
	})
	path := writeTempFile(t, "notes.md", "# Notes")

	out, err := executeCommand(t, "", "ingest", path)

	require.NoError(t, err)
	assert.Equal(t, "notes.md", gotName)
	assert.Equal(t, "# Notes", gotBody)
	assert.Contains(t, out, "Ingested notes.md")
	assert.Contains(t, out, "Chunks:    3")
	assert.NotContains(t, out, "not indexed")
}

func TestIngestCmd_StorageWarning(t *testing.T) {
	setupTestServices(t, &MockQAService{
		IngestFunc: func(string, io.Reader) (*domain.IngestReport, error) {
			return &domain.IngestReport{Documents: 1, Chunks: 3, Warnings: []string{"index unavailable"}}, nil
		},
	})
	path := writeTempFile(t, "notes.txt", "text")

	out, err := executeCommand(t, "", "ingest", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: index unavailable")
	assert.Contains(t, out, "Some chunks were not indexed")
}

func TestIngestCmd_UnsupportedFormat(t *testing.T) {
	setupTestServices(t, &MockQAService{
		IngestFunc: func(string, io.Reader) (*domain.IngestReport, error) {
			return nil, domain.ErrUnsupportedFormat
		},
	})
	path := writeTempFile(t, "image.png", "png")

	_, err := executeCommand(t, "", "ingest", path)

	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
}

func TestIngestCmd_MissingFile(t *testing.T) {
	setupTestServices(t, &MockQAService{})

	_, err := executeCommand(t, "", "ingest", filepath.Join(t.TempDir(), "absent.pdf"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.pdf")
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	SetServices(nil, nil)
	path := writeTempFile(t, "notes.txt", "text")

	_, err := executeCommand(t, "", "ingest", path)

	assert.ErrorIs(t, err, errNotConfigured)
}
