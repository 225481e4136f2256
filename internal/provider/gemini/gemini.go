package gemini

import (
	"context"
	"fmt"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/provider"
	"google.golang.org/genai"
)

// Embedding task types understood by the embedding endpoint.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

// GeminiProvider generates, streams and embeds through the Gemini API.
type GeminiProvider struct {
	client         GeminiClient
	model          string
	embeddingModel string
	temperature    float32
	dimension      int32
}

// New creates a GeminiProvider using the provider and ingest settings from cfg.
func New(client GeminiClient, cfg *config.Config) *GeminiProvider {
	return &GeminiProvider{
		client:         client,
		model:          cfg.Provider.Model,
		embeddingModel: cfg.Provider.EmbeddingModel,
		temperature:    cfg.Provider.Temperature,
		dimension:      cfg.Ingest.Dimension,
	}
}

// Model returns the generation model name.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Generate sends one round to the model and returns its reply.
// It may return a partial reply AND an error when output was truncated.
func (p *GeminiProvider) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.Message, error) {
	contents := toGeminiContents(req.Messages)
	config := toGeminiConfig(req, p.temperature)

	resp, err := p.client.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	return fromGeminiResponse(resp)
}

// Stream generates a text reply, calling onChunk for each piece as it arrives.
// Tool declarations in req are ignored.
func (p *GeminiProvider) Stream(ctx context.Context, req *provider.GenerateRequest, onChunk func(string)) error {
	streamReq := *req
	streamReq.Tools = nil

	contents := toGeminiContents(streamReq.Messages)
	config := toGeminiConfig(&streamReq, p.temperature)

	received := false
	for resp, err := range p.client.GenerateContentStream(ctx, p.model, contents, config) {
		if err != nil {
			return mapGeminiError(err)
		}
		if resp == nil || len(resp.Candidates) == 0 {
			continue
		}
		candidate := resp.Candidates[0]
		if candidate.FinishReason == genai.FinishReasonSafety {
			return &provider.ProviderError{
				Code:    provider.ErrorCodeContentBlocked,
				Message: "content blocked by safety filters",
			}
		}
		if text := buildMessage(candidate).Content; text != "" {
			received = true
			onChunk(text)
		}
	}

	if !received {
		return &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: "stream produced no text",
		}
	}
	return nil
}

// Embed returns one vector per text, in order.
func (p *GeminiProvider) Embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	config := &genai.EmbedContentConfig{TaskType: taskType}
	if p.dimension > 0 {
		config.OutputDimensionality = genai.Ptr(p.dimension)
	}

	resp, err := p.client.EmbedContent(ctx, p.embeddingModel, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: fmt.Sprintf("expected %d embeddings, got %d", len(texts), got),
		}
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, &provider.ProviderError{
				Code:    provider.ErrorCodeEmptyResponse,
				Message: fmt.Sprintf("embedding %d is empty", i),
			}
		}
		vectors[i] = e.Values
	}
	return vectors, nil
}

// EmbedQuery embeds a single search query.
func (p *GeminiProvider) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := p.Embed(ctx, []string{query}, TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedDocuments embeds note chunks for storage.
func (p *GeminiProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return p.Embed(ctx, texts, TaskRetrievalDocument)
}
