// Package rag answers questions from the user's notes: retrieve, prompt, generate.
package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/provider"
	"github.com/felixgeelhaar/fortify/retry"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/prompts"
)

// snippetLen bounds Answer.Snippet.
const snippetLen = 500

type searcher interface {
	Search(ctx context.Context, query string) string
}

type generator interface {
	Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.Message, error)
	Stream(ctx context.Context, req *provider.GenerateRequest, onChunk func(string)) error
}

// Answer is a generated reply and the context it was generated from.
type Answer struct {
	Text    string
	Context string
}

// Snippet returns the first 500 characters of the context, for debugging output.
func (a Answer) Snippet() string {
	runes := []rune(a.Context)
	if len(runes) <= snippetLen {
		return a.Context
	}
	return string(runes[:snippetLen]) + "..."
}

// errPermanent marks failures the retrier must not repeat.
var errPermanent = errors.New("permanent failure")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string        { return e.err.Error() }
func (e *permanentError) Unwrap() error        { return e.err }
func (e *permanentError) Is(target error) bool { return target == errPermanent }

// Assistant is the RAG question answerer.
type Assistant struct {
	searcher searcher
	llm      generator
	prompt   prompts.PromptTemplate
	retrier  retry.Retry[string]
	attempts int
	logger   logrus.FieldLogger
}

func NewAssistant(s searcher, llm generator, cfg *config.Config, logger logrus.FieldLogger) *Assistant {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Assistant{
		searcher: s,
		llm:      llm,
		prompt:   newPrompt(),
		retrier: retry.New[string](retry.Config{
			MaxAttempts:        cfg.Provider.MaxRetries,
			InitialDelay:       time.Duration(cfg.Provider.InitialBackoffMs) * time.Millisecond,
			BackoffPolicy:      retry.BackoffExponential,
			Multiplier:         2.0,
			NonRetryableErrors: []error{errPermanent},
		}),
		attempts: cfg.Provider.MaxRetries,
		logger:   logger,
	}
}

// BuildPrompt fills the prompt template with retrieved context and the question.
func (a *Assistant) BuildPrompt(contextText, question string) (string, error) {
	return a.prompt.Format(map[string]any{
		"context":  contextText,
		"question": question,
	})
}

func (a *Assistant) request(ctx context.Context, question string) (*provider.GenerateRequest, string, error) {
	contextText := a.searcher.Search(ctx, question)
	a.logger.WithField("context_chars", len(contextText)).Debug("retrieved context")

	text, err := a.BuildPrompt(contextText, question)
	if err != nil {
		return nil, contextText, fmt.Errorf("building prompt: %w", err)
	}
	return &provider.GenerateRequest{
		Messages: []provider.Message{provider.UserMessage(text)},
	}, contextText, nil
}

// Ask retrieves context for question and generates an answer. Retryable
// upstream failures (rate limits, 5xx) are retried with exponential backoff.
func (a *Assistant) Ask(ctx context.Context, question string) (Answer, error) {
	req, contextText, err := a.request(ctx, question)
	if err != nil {
		return Answer{Context: contextText}, err
	}

	var lastErr error
	attempt := 0
	text, err := a.retrier.Do(ctx, func(ctx context.Context) (string, error) {
		attempt++
		msg, err := a.llm.Generate(ctx, req)
		if err != nil {
			lastErr = err
			if !provider.IsRetryable(err) {
				return "", &permanentError{err: err}
			}
			a.logger.WithError(err).Warnf("generation failed (attempt %d of %d)", attempt, a.attempts)
			return "", a.honourRetryAfter(ctx, err, attempt)
		}
		lastErr = nil
		return msg.Content, nil
	})
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return Answer{Context: contextText}, fmt.Errorf("generating answer: %w", lastErr)
	}

	return Answer{Text: text, Context: contextText}, nil
}

// Stream is Ask with the answer delivered through onChunk as it is generated.
// A failed attempt is retried only if it produced no output.
func (a *Assistant) Stream(ctx context.Context, question string, onChunk func(string)) (Answer, error) {
	req, contextText, err := a.request(ctx, question)
	if err != nil {
		return Answer{Context: contextText}, err
	}

	var lastErr error
	var text string
	attempt := 0
	_, err = a.retrier.Do(ctx, func(ctx context.Context) (string, error) {
		attempt++
		started := false
		err := a.llm.Stream(ctx, req, func(chunk string) {
			started = true
			text += chunk
			onChunk(chunk)
		})
		lastErr = err
		if err == nil {
			return "", nil
		}
		if started || !provider.IsRetryable(err) {
			return "", &permanentError{err: err}
		}
		a.logger.WithError(err).Warnf("stream failed before output (attempt %d of %d)", attempt, a.attempts)
		return "", a.honourRetryAfter(ctx, err, attempt)
	})
	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		return Answer{Text: text, Context: contextText}, fmt.Errorf("streaming answer: %w", lastErr)
	}

	return Answer{Text: text, Context: contextText}, nil
}

// honourRetryAfter sleeps for the server's retry hint before handing a
// retryable error back to the retrier. There is no wait after the last attempt.
func (a *Assistant) honourRetryAfter(ctx context.Context, err error, attempt int) error {
	delay := provider.GetRetryAfter(err)
	if delay == nil || *delay <= 0 || attempt >= a.attempts {
		return err
	}

	a.logger.WithField("retry_after", delay.String()).Info("waiting for rate limit to reset")
	timer := time.NewTimer(*delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return err
	case <-ctx.Done():
		return &permanentError{err: ctx.Err()}
	}
}
