package ingest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/vectorstore"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type documentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

type vectorWriter interface {
	Upsert(ctx context.Context, records []vectorstore.Record) (int, error)
}

// Stats summarises an ingest run.
type Stats struct {
	Notes   int
	Chunks  int
	Batches int
}

// Ingester chunks notes, embeds them in batches and upserts the vectors.
type Ingester struct {
	loader    *VaultLoader
	chunker   *Chunker
	embedder  documentEmbedder
	store     vectorWriter
	limiter   *rate.Limiter
	batchSize int
	logger    logrus.FieldLogger
}

// NewIngester wires an ingester from config. A zero batch interval disables pacing.
func NewIngester(loader *VaultLoader, embedder documentEmbedder, store vectorWriter, cfg *config.Config, logger logrus.FieldLogger) *Ingester {
	every := rate.Inf
	if cfg.Ingest.BatchIntervalMs > 0 {
		every = rate.Every(time.Duration(cfg.Ingest.BatchIntervalMs) * time.Millisecond)
	}
	batch := cfg.Ingest.BatchSize
	if batch <= 0 {
		batch = 1
	}

	return &Ingester{
		loader:    loader,
		chunker:   NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap),
		embedder:  embedder,
		store:     store,
		limiter:   rate.NewLimiter(every, 1),
		batchSize: batch,
		logger:    logger,
	}
}

// ChunkID is stable for a given source and chunk index, so re-ingesting a
// note overwrites its previous vectors.
func ChunkID(source string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(source+"#"+strconv.Itoa(index))).String()
}

// Run ingests every note in the vault.
func (in *Ingester) Run(ctx context.Context) (Stats, error) {
	var (
		stats   Stats
		pending []vectorstore.Record
	)

	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := in.upsertBatch(ctx, pending); err != nil {
			return err
		}
		stats.Batches++
		pending = pending[:0]
		return nil
	}

	err := in.loader.Walk(ctx, func(note Note) error {
		records, err := in.records(note)
		if err != nil {
			in.logger.WithError(err).WithField("source", note.Source).Warn("skipping note")
			return nil
		}
		stats.Notes++
		stats.Chunks += len(records)

		for _, r := range records {
			pending = append(pending, r)
			if len(pending) == in.batchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return stats, err
	}

	in.logger.WithFields(logrus.Fields{
		"notes":   stats.Notes,
		"chunks":  stats.Chunks,
		"batches": stats.Batches,
	}).Info("ingest complete")
	return stats, nil
}

// IngestFile re-ingests a single note. Paths the vault would not accept are
// skipped with zero stats.
func (in *Ingester) IngestFile(ctx context.Context, path string) (Stats, error) {
	rel, err := in.loader.relative(path)
	if err != nil {
		return Stats{}, err
	}
	if !in.loader.Accept(rel, false) {
		return Stats{}, nil
	}

	note, err := in.loader.LoadNote(rel)
	if err != nil {
		return Stats{}, err
	}
	records, err := in.records(note)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{Notes: 1, Chunks: len(records)}
	for start := 0; start < len(records); start += in.batchSize {
		end := min(start+in.batchSize, len(records))
		if err := in.upsertBatch(ctx, records[start:end]); err != nil {
			return stats, err
		}
		stats.Batches++
	}

	in.logger.WithFields(logrus.Fields{"source": note.Source, "chunks": stats.Chunks}).Info("note ingested")
	return stats, nil
}

func (in *Ingester) records(note Note) ([]vectorstore.Record, error) {
	chunks, err := in.chunker.Split(note.Body)
	if err != nil {
		return nil, err
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, text := range chunks {
		records[i] = vectorstore.Record{
			ID: ChunkID(note.Source, i),
			Metadata: map[string]any{
				vectorstore.KeySource:     note.Source,
				vectorstore.KeyText:       text,
				vectorstore.KeyTitle:      note.Title,
				vectorstore.KeyTags:       note.Tags,
				vectorstore.KeyChunkIndex: i,
			},
		}
	}
	return records, nil
}

// errEmbeddingCount guards against an embedder returning fewer vectors than texts.
var errEmbeddingCount = errors.New("embedding count does not match chunk count")

func (in *Ingester) upsertBatch(ctx context.Context, batch []vectorstore.Record) error {
	if err := in.limiter.Wait(ctx); err != nil {
		return err
	}

	texts := make([]string, len(batch))
	for i, r := range batch {
		texts[i] = r.Metadata[vectorstore.KeyText].(string)
	}

	vectors, err := in.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d, want %d", errEmbeddingCount, len(vectors), len(batch))
	}

	records := make([]vectorstore.Record, len(batch))
	for i, r := range batch {
		r.Values = vectors[i]
		records[i] = r
	}

	n, err := in.store.Upsert(ctx, records)
	if err != nil {
		return fmt.Errorf("upserting batch: %w", err)
	}
	in.logger.WithField("vectors", n).Debug("batch upserted")
	return nil
}
