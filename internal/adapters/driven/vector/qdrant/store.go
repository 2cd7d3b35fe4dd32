// Package qdrant stores index collections in a Qdrant server over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/custodia-labs/docqa/internal/adapters/driven/vector/rank"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Reserved payload keys. Other payload keys are chunk metadata.
const (
	payloadContent    = "content"
	payloadDocumentID = "document_id"
	payloadPosition   = "position"
)

// DefaultAddr is the default Qdrant gRPC address.
const DefaultAddr = "localhost:6334"

var invalidName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// pointsAPI is the subset of pb.PointsClient used by the store.
type pointsAPI interface {
	Upsert(ctx context.Context, in *pb.UpsertPoints, opts ...grpc.CallOption) (*pb.PointsOperationResponse, error)
	Search(ctx context.Context, in *pb.SearchPoints, opts ...grpc.CallOption) (*pb.SearchResponse, error)
	Count(ctx context.Context, in *pb.CountPoints, opts ...grpc.CallOption) (*pb.CountResponse, error)
}

// collectionsAPI is the subset of pb.CollectionsClient used by the store.
type collectionsAPI interface {
	List(ctx context.Context, in *pb.ListCollectionsRequest, opts ...grpc.CallOption) (*pb.ListCollectionsResponse, error)
	Create(ctx context.Context, in *pb.CreateCollection, opts ...grpc.CallOption) (*pb.CollectionOperationResponse, error)
}

// Store is a driven.VectorStore backed by Qdrant. Each index location maps
// to one collection named after the location's base name.
type Store struct {
	conn        *grpc.ClientConn
	points      pointsAPI
	collections collectionsAPI
}

var _ driven.VectorStore = (*Store)(nil)

// New creates a Store connected to Qdrant at the given gRPC address.
// The connection is established lazily on first use.
func New(addr string) (*Store, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant: dial %s: %w", addr, err)
	}
	return &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
	}, nil
}

// newWithClients builds a Store over existing clients.
func newWithClients(points pointsAPI, collections collectionsAPI) *Store {
	return &Store{points: points, collections: collections}
}

// Close closes the underlying gRPC connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// CollectionName maps an index location to a valid collection name.
func CollectionName(location string) string {
	base := filepath.Base(filepath.Clean(location))
	name := strings.Trim(invalidName.ReplaceAllString(base, "_"), "_")
	if name == "" {
		return "docqa_index"
	}
	return name
}

// Open ensures the collection for location exists with cosine distance.
func (s *Store) Open(ctx context.Context, location string, dimensions int) (driven.VectorCollection, error) {
	if location == "" {
		return nil, fmt.Errorf("%w: empty index location", domain.ErrInvalidInput)
	}
	name := CollectionName(location)

	exists, err := s.exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		if dimensions <= 0 {
			return nil, fmt.Errorf("%w: dimensions required to create collection %s", domain.ErrInvalidInput, name)
		}
		_, err = s.collections.Create(ctx, &pb.CreateCollection{
			CollectionName: name,
			VectorsConfig: &pb.VectorsConfig{
				Config: &pb.VectorsConfig_Params{
					Params: &pb.VectorParams{
						Size:     uint64(dimensions),
						Distance: pb.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("qdrant: create collection %s: %w", name, err)
		}
		logger.Debug("qdrant: created collection %s (%d dims)", name, dimensions)
	}

	return &collection{store: s, name: name, location: location}, nil
}

// Exists reports whether the collection for location exists.
func (s *Store) Exists(ctx context.Context, location string) (bool, error) {
	return s.exists(ctx, CollectionName(location))
}

func (s *Store) exists(ctx context.Context, name string) (bool, error) {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return false, fmt.Errorf("qdrant: list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == name {
			return true, nil
		}
	}
	return false, nil
}

// collection implements driven.VectorCollection for one Qdrant collection.
type collection struct {
	store    *Store
	name     string
	location string
}

var _ driven.VectorCollection = (*collection)(nil)

func (c *collection) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{Uuid: chunk.ID},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{Data: chunk.Embedding},
				},
			},
			Payload: toPayload(chunk),
		}
	}

	wait := true
	_, err := c.store.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: c.name,
		Wait:           &wait,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("qdrant: upsert %d points: %w", len(chunks), err)
	}
	return nil
}

func (c *collection) Search(ctx context.Context, query []float32, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}
	resp, err := c.store.points.Search(ctx, &pb.SearchPoints{
		CollectionName: c.name,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search: %w", err)
	}

	results := make([]domain.ScoredChunk, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		chunk := fromPayload(point.GetPayload())
		chunk.ID = point.GetId().GetUuid()
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: float64(point.GetScore())})
	}
	rank.Sort(results)
	return results, nil
}

func (c *collection) Count(ctx context.Context) (int, error) {
	exact := true
	resp, err := c.store.points.Count(ctx, &pb.CountPoints{
		CollectionName: c.name,
		Exact:          &exact,
	})
	if err != nil {
		return 0, fmt.Errorf("qdrant: count: %w", err)
	}
	return int(resp.GetResult().GetCount()), nil
}

func (c *collection) Location() string { return c.location }

// Close is a no-op; the connection belongs to the Store.
func (c *collection) Close() error { return nil }

func toPayload(chunk domain.Chunk) map[string]*pb.Value {
	payload := make(map[string]*pb.Value, len(chunk.Metadata)+3)
	for k, v := range chunk.Metadata {
		payload[k] = toValue(v)
	}
	payload[payloadContent] = toValue(chunk.Content)
	payload[payloadDocumentID] = toValue(chunk.DocumentID)
	payload[payloadPosition] = toValue(chunk.Position)
	return payload
}

func toValue(v any) *pb.Value {
	switch tv := v.(type) {
	case string:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: tv}}
	case int:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(tv)}}
	case int64:
		return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: tv}}
	case float64:
		return &pb.Value{Kind: &pb.Value_DoubleValue{DoubleValue: tv}}
	case bool:
		return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: tv}}
	default:
		return &pb.Value{Kind: &pb.Value_StringValue{StringValue: fmt.Sprint(tv)}}
	}
}

func fromPayload(payload map[string]*pb.Value) domain.Chunk {
	chunk := domain.Chunk{Metadata: make(map[string]any, len(payload))}
	for k, v := range payload {
		val := fromValue(v)
		switch k {
		case payloadContent:
			chunk.Content, _ = val.(string)
		case payloadDocumentID:
			chunk.DocumentID, _ = val.(string)
			chunk.Metadata[k] = val
		case payloadPosition:
			chunk.Position, _ = val.(int)
			chunk.Metadata[k] = val
		default:
			chunk.Metadata[k] = val
		}
	}
	return chunk
}

func fromValue(v *pb.Value) any {
	switch kind := v.GetKind().(type) {
	case *pb.Value_StringValue:
		return kind.StringValue
	case *pb.Value_IntegerValue:
		return int(kind.IntegerValue)
	case *pb.Value_DoubleValue:
		return kind.DoubleValue
	case *pb.Value_BoolValue:
		return kind.BoolValue
	default:
		return nil
	}
}
