package vectorstore

import (
	"context"
	"errors"
	"testing"

	"github.com/pinecone-io/go-pinecone/v3/pinecone"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

type mockConn struct {
	queryReq  *pinecone.QueryByVectorValuesRequest
	queryResp *pinecone.QueryVectorsResponse
	queryErr  error
	upserted  []*pinecone.Vector
	upsertErr error
}

func (m *mockConn) QueryByVectorValues(ctx context.Context, in *pinecone.QueryByVectorValuesRequest) (*pinecone.QueryVectorsResponse, error) {
	m.queryReq = in
	return m.queryResp, m.queryErr
}

func (m *mockConn) UpsertVectors(ctx context.Context, in []*pinecone.Vector) (uint32, error) {
	if m.upsertErr != nil {
		return 0, m.upsertErr
	}
	m.upserted = append(m.upserted, in...)
	return uint32(len(in)), nil
}

func newTestStore(conn *mockConn) *PineconeStore {
	logger, _ := logtest.NewNullLogger()
	return NewPineconeStore(conn, logger)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestQuery(t *testing.T) {
	conn := &mockConn{
		queryResp: &pinecone.QueryVectorsResponse{
			Matches: []*pinecone.ScoredVector{
				{Vector: &pinecone.Vector{Id: "a", Metadata: mustStruct(t, map[string]any{"source": "a.md", "text": "alpha"})}, Score: 0.9},
				nil,
				{Vector: &pinecone.Vector{Id: "b"}, Score: 0.5},
			},
		},
	}

	matches, err := newTestStore(conn).Query(context.Background(), []float32{1, 2}, 4)

	require.NoError(t, err)
	assert.Equal(t, uint32(4), conn.queryReq.TopK)
	assert.True(t, conn.queryReq.IncludeMetadata)
	assert.Equal(t, []float32{1, 2}, conn.queryReq.Vector)

	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "a.md", matches[0].Source())
	assert.Equal(t, "alpha", matches[0].Text())
	assert.Equal(t, "", matches[1].Source())
	assert.Equal(t, "", matches[1].Text())
}

func TestQuery_Errors(t *testing.T) {
	conn := &mockConn{queryErr: errors.New("unavailable")}
	_, err := newTestStore(conn).Query(context.Background(), []float32{1}, 4)
	assert.ErrorContains(t, err, "failed to query vectors: unavailable")

	matches, err := newTestStore(&mockConn{}).Query(context.Background(), []float32{1}, 0)
	assert.NoError(t, err)
	assert.Empty(t, matches)
}

func TestUpsert(t *testing.T) {
	conn := &mockConn{}
	n, err := newTestStore(conn).Upsert(context.Background(), []Record{
		{
			ID:     "id-1",
			Values: []float32{0.1, 0.2},
			Metadata: map[string]any{
				KeySource:     "notes/go.md",
				KeyText:       "chunk",
				KeyTags:       []string{"go", "lang"},
				KeyChunkIndex: 3,
				KeyTitle:      nil,
			},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, conn.upserted, 1)

	v := conn.upserted[0]
	assert.Equal(t, "id-1", v.Id)
	assert.Equal(t, []float32{0.1, 0.2}, *v.Values)
	meta := v.Metadata.AsMap()
	assert.Equal(t, "notes/go.md", meta[KeySource])
	assert.Equal(t, []any{"go", "lang"}, meta[KeyTags])
	assert.Equal(t, float64(3), meta[KeyChunkIndex])
	assert.NotContains(t, meta, KeyTitle)
}

func TestUpsert_Errors(t *testing.T) {
	n, err := newTestStore(&mockConn{}).Upsert(context.Background(), nil)
	assert.NoError(t, err)
	assert.Zero(t, n)

	_, err = newTestStore(&mockConn{}).Upsert(context.Background(), []Record{
		{ID: "bad", Metadata: map[string]any{"ch": make(chan int)}},
	})
	assert.ErrorContains(t, err, "failed to create metadata struct for bad")

	_, err = newTestStore(&mockConn{upsertErr: errors.New("quota")}).Upsert(context.Background(), []Record{{ID: "x"}})
	assert.ErrorContains(t, err, "failed to upsert vectors: quota")
}
