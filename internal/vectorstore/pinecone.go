package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	"github.com/sirupsen/logrus"
	"google.golang.org/protobuf/types/known/structpb"
)

// Metadata keys written for every chunk.
const (
	KeySource     = "source"
	KeyText       = "text"
	KeyTitle      = "title"
	KeyTags       = "tags"
	KeyChunkIndex = "chunk_index"
)

// Record is one vector to store.
type Record struct {
	ID       string
	Values   []float32
	Metadata map[string]any
}

// Match is one query hit.
type Match struct {
	ID       string
	Score    float32
	Metadata map[string]any
}

// Text returns the stored chunk text, or "".
func (m Match) Text() string {
	s, _ := m.Metadata[KeyText].(string)
	return s
}

// Source returns the note path the chunk came from, or "".
func (m Match) Source() string {
	s, _ := m.Metadata[KeySource].(string)
	return s
}

// indexConn is the subset of *pinecone.IndexConnection used here.
type indexConn interface {
	QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error)
	UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error)
}

// PineconeStore reads and writes note chunks in one Pinecone namespace.
type PineconeStore struct {
	conn   indexConn
	logger logrus.FieldLogger
}

// NewPineconeStore wraps an existing index connection.
func NewPineconeStore(conn indexConn, logger logrus.FieldLogger) *PineconeStore {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PineconeStore{conn: conn, logger: logger}
}

// ConnectParams locates the index.
type ConnectParams struct {
	APIKey    string
	IndexName string
	Namespace string

	// CreateDimension, when positive, creates a serverless index of that
	// dimension if none exists yet.
	CreateDimension int32
}

// Connect opens a connection to the named index, creating it first when asked.
func Connect(ctx context.Context, params ConnectParams, logger logrus.FieldLogger) (*PineconeStore, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	pc, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: params.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	if params.CreateDimension > 0 {
		if err := ensureIndex(ctx, pc, params.IndexName, params.CreateDimension, logger); err != nil {
			return nil, err
		}
	}

	idxDesc, err := pc.DescribeIndex(ctx, params.IndexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index %q: %w", params.IndexName, err)
	}

	conn, err := pc.Index(pinecone.NewIndexConnParams{
		Host:      idxDesc.Host,
		Namespace: params.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create index connection: %w", err)
	}

	return NewPineconeStore(conn, logger), nil
}

func ensureIndex(ctx context.Context, pc *pinecone.Client, indexName string, dimension int32, logger logrus.FieldLogger) error {
	indexes, err := pc.ListIndexes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list indexes: %w", err)
	}
	for _, idx := range indexes {
		if idx.Name == indexName {
			return nil
		}
	}

	logger.Infof("Creating Pinecone index %s (dimension %d)", indexName, dimension)
	deletionProtection := pinecone.DeletionProtectionDisabled
	metric := pinecone.Cosine
	_, err = pc.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
		Name:               indexName,
		Dimension:          &dimension,
		Metric:             &metric,
		Cloud:              pinecone.Aws,
		Region:             "us-east-1",
		DeletionProtection: &deletionProtection,
	})
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		idx, err := pc.DescribeIndex(ctx, indexName)
		if err != nil {
			return fmt.Errorf("failed to describe index: %w", err)
		}
		if idx.Status != nil && idx.Status.Ready {
			logger.Infof("Index %s is ready", indexName)
			return nil
		}
		logger.Debugf("Waiting for index %s to be ready...", indexName)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Query returns the topK nearest chunks with their metadata.
func (s *PineconeStore) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}

	result, err := s.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}

	matches := make([]Match, 0, len(result.Matches))
	for _, m := range result.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		match := Match{ID: m.Vector.Id, Score: m.Score}
		if m.Vector.Metadata != nil {
			match.Metadata = m.Vector.Metadata.AsMap()
		}
		matches = append(matches, match)
	}

	s.logger.WithField("matches", len(matches)).Debug("vector query complete")
	return matches, nil
}

// Upsert writes records, replacing any with the same ID.
func (s *PineconeStore) Upsert(ctx context.Context, records []Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	vectors := make([]*pinecone.Vector, 0, len(records))
	for _, r := range records {
		metadata, err := structpb.NewStruct(normaliseMetadata(r.Metadata))
		if err != nil {
			return 0, fmt.Errorf("failed to create metadata struct for %s: %w", r.ID, err)
		}
		values := r.Values
		vectors = append(vectors, &pinecone.Vector{
			Id:       r.ID,
			Values:   &values,
			Metadata: metadata,
		})
	}

	count, err := s.conn.UpsertVectors(ctx, vectors)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return int(count), nil
}

// normaliseMetadata converts values structpb cannot take directly.
func normaliseMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case []string:
			list := make([]any, len(val))
			for i, s := range val {
				list[i] = s
			}
			out[k] = list
		case nil:
			continue
		default:
			out[k] = v
		}
	}
	return out
}
