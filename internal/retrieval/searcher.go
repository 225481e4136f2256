// Package retrieval finds the note chunks most relevant to a question.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/vectorstore"
	"github.com/sirupsen/logrus"
)

// NoResults is returned by Search when nothing matched.
const NoResults = "No relevant notes found in the Vault"

type queryEmbedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

type vectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]vectorstore.Match, error)
}

// Chunk is one retrieved piece of a note.
type Chunk struct {
	Source string
	Text   string
	Score  float32
}

type Searcher struct {
	embedder queryEmbedder
	index    vectorIndex
	topK     int
	logger   logrus.FieldLogger
}

func NewSearcher(embedder queryEmbedder, index vectorIndex, cfg *config.Config, logger logrus.FieldLogger) *Searcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Searcher{
		embedder: embedder,
		index:    index,
		topK:     cfg.Retrieval.TopK,
		logger:   logger,
	}
}

// Chunks embeds the query and returns the nearest chunks, best first.
func (s *Searcher) Chunks(ctx context.Context, query string) ([]Chunk, error) {
	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	matches, err := s.index.Query(ctx, vector, s.topK)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(matches))
	for _, m := range matches {
		chunks = append(chunks, Chunk{Source: m.Source(), Text: m.Text(), Score: m.Score})
	}
	return chunks, nil
}

// Search returns the retrieved context as prompt-ready text. It never fails:
// errors are reported in the returned string.
func (s *Searcher) Search(ctx context.Context, query string) string {
	chunks, err := s.Chunks(ctx, query)
	if err != nil {
		s.logger.WithError(err).Warn("vault search failed")
		return fmt.Sprintf("Error Searching Vault: %v", err)
	}
	if len(chunks) == 0 {
		return NoResults
	}
	return FormatChunks(chunks)
}

// FormatChunks renders chunks as "[Source: <name>]\n<text>" blocks separated by blank lines.
func FormatChunks(chunks []Chunk) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		source := c.Source
		if source == "" {
			source = "Unknown"
		}
		blocks[i] = fmt.Sprintf("[Source: %s]\n%s", source, c.Text)
	}
	return strings.Join(blocks, "\n\n")
}
