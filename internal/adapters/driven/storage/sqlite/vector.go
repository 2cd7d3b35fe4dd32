package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/rank"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// IndexFileName is the database file inside an index directory.
const IndexFileName = "index.db"

const metaDimensions = "dimensions"

// VectorStore persists each index as a SQLite file inside its location
// directory. Search is an exact scan ranked by cosine similarity.
type VectorStore struct {
	mu    sync.Mutex
	cache map[string]*Store
}

var _ driven.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a file-backed vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{cache: make(map[string]*Store)}
}

// Open opens or creates the index in directory location. Opening the same
// location again returns a collection over the same database.
func (v *VectorStore) Open(ctx context.Context, location string, dimensions int) (driven.VectorCollection, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty index location", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(location, 0700); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	store, err := v.store(location)
	if err != nil {
		return nil, err
	}

	c := &collection{store: store, location: location, dimensions: dimensions}
	if err := c.checkDimensions(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Exists reports whether an index database with the schema applied exists
// at location.
func (v *VectorStore) Exists(ctx context.Context, location string) (bool, error) {
	info, err := os.Stat(filepath.Join(location, IndexFileName))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking index: %w", err)
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}

// Close closes every database opened by this store.
func (v *VectorStore) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var errs []error
	for loc, s := range v.cache {
		errs = append(errs, s.Close())
		delete(v.cache, loc)
	}
	return errors.Join(errs...)
}

func (v *VectorStore) store(location string) (*Store, error) {
	key, err := filepath.Abs(location)
	if err != nil {
		key = location
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if s, ok := v.cache[key]; ok {
		return s, nil
	}
	s, err := Open(filepath.Join(location, IndexFileName))
	if err != nil {
		return nil, err
	}
	v.cache[key] = s
	return s, nil
}

// collection implements driven.VectorCollection over one index database.
type collection struct {
	store      *Store
	location   string
	dimensions int
}

var _ driven.VectorCollection = (*collection)(nil)

// checkDimensions records the vector size on first open and rejects a
// mismatching size afterwards.
func (c *collection) checkDimensions(ctx context.Context) error {
	if c.dimensions <= 0 {
		return nil
	}

	var stored string
	err := c.store.db.QueryRowContext(ctx,
		`SELECT value FROM index_meta WHERE key = ?`, metaDimensions).Scan(&stored)
	if err != nil {
		_, err = c.store.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO index_meta (key, value) VALUES (?, ?)`,
			metaDimensions, strconv.Itoa(c.dimensions))
		if err != nil {
			return fmt.Errorf("recording index dimensions: %w", err)
		}
		return nil
	}

	if n, _ := strconv.Atoi(stored); n != c.dimensions {
		return fmt.Errorf("%w: index has %s dimensions, embeddings have %d",
			domain.ErrDimensionMismatch, stored, c.dimensions)
	}
	return nil
}

func (c *collection) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := c.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, content, position, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			content = excluded.content,
			position = excluded.position,
			metadata = excluded.metadata,
			embedding = excluded.embedding`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if c.dimensions > 0 && len(chunk.Embedding) != c.dimensions {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), c.dimensions)
		}
		meta, err := marshalMetadata(chunk.Metadata)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, chunk.Content,
			chunk.Position, meta, float32SliceToBytes(chunk.Embedding)); err != nil {
			return fmt.Errorf("upserting chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing chunks: %w", err)
	}
	return nil
}

func (c *collection) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if c.dimensions > 0 && len(query) != c.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), c.dimensions)
	}

	rows, err := c.store.db.QueryContext(ctx,
		`SELECT id, document_id, content, position, metadata, embedding FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var (
			chunk    domain.Chunk
			metaJSON string
			blob     []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content,
			&chunk.Position, &metaJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		if chunk.Metadata, err = unmarshalMetadata(metaJSON); err != nil {
			return nil, err
		}
		chunk.Embedding = bytesToFloat32Slice(blob)
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return rank.TopK(query, chunks, k), nil
}

func (c *collection) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

func (c *collection) Location() string {
	return c.location
}

// Close is a no-op; the underlying database is shared by every collection
// opened at the same location and is closed by VectorStore.Close.
func (c *collection) Close() error {
	return nil
}
