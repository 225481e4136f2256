package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/provider"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSearcher struct {
	result string
	query  string
}

func (m *mockSearcher) Search(ctx context.Context, query string) string {
	m.query = query
	return m.result
}

type mockGenerator struct {
	calls      int
	requests   []*provider.GenerateRequest
	generate   func(call int) (*provider.Message, error)
	streamFunc func(call int, onChunk func(string)) error
}

func (m *mockGenerator) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.Message, error) {
	m.calls++
	m.requests = append(m.requests, req)
	return m.generate(m.calls)
}

func (m *mockGenerator) Stream(ctx context.Context, req *provider.GenerateRequest, onChunk func(string)) error {
	m.calls++
	m.requests = append(m.requests, req)
	return m.streamFunc(m.calls, onChunk)
}

func newTestAssistant(s searcher, g generator) *Assistant {
	cfg := config.DefaultConfig()
	cfg.Provider.InitialBackoffMs = 1
	logger, _ := logtest.NewNullLogger()
	return NewAssistant(s, g, cfg, logger)
}

var rateLimited = &provider.ProviderError{Code: provider.ErrorCodeRateLimit, Retryable: true}

func TestBuildPrompt(t *testing.T) {
	a := newTestAssistant(&mockSearcher{}, &mockGenerator{})

	got, err := a.BuildPrompt("[Source: go.md]\nGo has {{braces}}.", "What is Go?")

	require.NoError(t, err)
	assert.Contains(t, got, `"Second Brain"`)
	assert.Contains(t, got, "Here is the context retrieved from the notes.\n[Source: go.md]\nGo has {{braces}}.\n\nQuestion: What is Go?")
	assert.Contains(t, got, "Answer the question using ONLY the context provided above.")
	assert.Contains(t, got, "Cite the source (filename)")
}

func TestAsk(t *testing.T) {
	s := &mockSearcher{result: "[Source: go.md]\nGo is fun."}
	g := &mockGenerator{generate: func(int) (*provider.Message, error) {
		return &provider.Message{Role: provider.RoleModel, Content: "Go is fun (go.md)."}, nil
	}}

	answer, err := newTestAssistant(s, g).Ask(context.Background(), "Is Go fun?")

	require.NoError(t, err)
	assert.Equal(t, "Go is fun (go.md).", answer.Text)
	assert.Equal(t, s.result, answer.Context)
	assert.Equal(t, "Is Go fun?", s.query)
	require.Len(t, g.requests, 1)
	require.Len(t, g.requests[0].Messages, 1)
	assert.Equal(t, provider.RoleUser, g.requests[0].Messages[0].Role)
	assert.Contains(t, g.requests[0].Messages[0].Content, "Question: Is Go fun?")
	assert.Nil(t, g.requests[0].Tools)
}

func TestAsk_Retry(t *testing.T) {
	tests := []struct {
		name      string
		generate  func(call int) (*provider.Message, error)
		wantCalls int
		wantText  string
		wantErr   error
	}{
		{
			name: "recovers after rate limit",
			generate: func(call int) (*provider.Message, error) {
				if call < 3 {
					return nil, rateLimited
				}
				return &provider.Message{Content: "ok"}, nil
			},
			wantCalls: 3,
			wantText:  "ok",
		},
		{
			name: "gives up after max attempts",
			generate: func(int) (*provider.Message, error) {
				return nil, rateLimited
			},
			wantCalls: 3,
			wantErr:   provider.ErrRateLimit,
		},
		{
			name: "does not retry permanent errors",
			generate: func(int) (*provider.Message, error) {
				return nil, &provider.ProviderError{Code: provider.ErrorCodeAuth}
			},
			wantCalls: 1,
			wantErr:   provider.ErrAuthentication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &mockGenerator{generate: tt.generate}
			answer, err := newTestAssistant(&mockSearcher{result: "ctx"}, g).Ask(context.Background(), "q")

			assert.Equal(t, tt.wantCalls, g.calls)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, answer.Text)
				assert.Equal(t, "ctx", answer.Context)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, answer.Text)
		})
	}
}

func TestStream(t *testing.T) {
	t.Run("delivers chunks", func(t *testing.T) {
		g := &mockGenerator{streamFunc: func(call int, onChunk func(string)) error {
			onChunk("Hello ")
			onChunk("world")
			return nil
		}}
		var got []string

		answer, err := newTestAssistant(&mockSearcher{result: "ctx"}, g).Stream(context.Background(), "q", func(s string) { got = append(got, s) })

		require.NoError(t, err)
		assert.Equal(t, []string{"Hello ", "world"}, got)
		assert.Equal(t, "Hello world", answer.Text)
	})

	t.Run("retries before first chunk", func(t *testing.T) {
		g := &mockGenerator{streamFunc: func(call int, onChunk func(string)) error {
			if call == 1 {
				return rateLimited
			}
			onChunk("ok")
			return nil
		}}

		answer, err := newTestAssistant(&mockSearcher{}, g).Stream(context.Background(), "q", func(string) {})

		require.NoError(t, err)
		assert.Equal(t, 2, g.calls)
		assert.Equal(t, "ok", answer.Text)
	})

	t.Run("no retry once output started", func(t *testing.T) {
		g := &mockGenerator{streamFunc: func(call int, onChunk func(string)) error {
			onChunk("partial")
			return rateLimited
		}}

		answer, err := newTestAssistant(&mockSearcher{}, g).Stream(context.Background(), "q", func(string) {})

		assert.ErrorIs(t, err, provider.ErrRateLimit)
		assert.Equal(t, 1, g.calls)
		assert.Equal(t, "partial", answer.Text)
	})

	t.Run("plain error", func(t *testing.T) {
		g := &mockGenerator{streamFunc: func(int, func(string)) error {
			return errors.New("broken pipe")
		}}

		_, err := newTestAssistant(&mockSearcher{}, g).Stream(context.Background(), "q", func(string) {})

		assert.ErrorContains(t, err, "streaming answer: broken pipe")
		assert.Equal(t, 1, g.calls)
	})
}

func TestAnswerSnippet(t *testing.T) {
	short := Answer{Context: "short"}
	assert.Equal(t, "short", short.Snippet())

	long := Answer{Context: strings.Repeat("é", 600)}
	assert.Equal(t, strings.Repeat("é", 500)+"...", long.Snippet())
}

func rateLimitedFor(d time.Duration) *provider.ProviderError {
	return &provider.ProviderError{Code: provider.ErrorCodeRateLimit, Retryable: true, RetryAfter: &d}
}

func TestAsk_WaitsForRetryAfter(t *testing.T) {
	const hint = 150 * time.Millisecond
	var callTimes []time.Time
	g := &mockGenerator{generate: func(call int) (*provider.Message, error) {
		callTimes = append(callTimes, time.Now())
		if call == 1 {
			return nil, rateLimitedFor(hint)
		}
		return &provider.Message{Content: "ok"}, nil
	}}

	answer, err := newTestAssistant(&mockSearcher{}, g).Ask(context.Background(), "q")

	require.NoError(t, err)
	assert.Equal(t, "ok", answer.Text)
	require.Len(t, callTimes, 2)
	assert.GreaterOrEqual(t, callTimes[1].Sub(callTimes[0]), hint)
}

func TestStream_WaitsForRetryAfter(t *testing.T) {
	const hint = 150 * time.Millisecond
	var callTimes []time.Time
	g := &mockGenerator{streamFunc: func(call int, onChunk func(string)) error {
		callTimes = append(callTimes, time.Now())
		if call == 1 {
			return rateLimitedFor(hint)
		}
		onChunk("ok")
		return nil
	}}

	answer, err := newTestAssistant(&mockSearcher{}, g).Stream(context.Background(), "q", func(string) {})

	require.NoError(t, err)
	assert.Equal(t, "ok", answer.Text)
	require.Len(t, callTimes, 2)
	assert.GreaterOrEqual(t, callTimes[1].Sub(callTimes[0]), hint)
}

func TestAsk_RetryAfterRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := &mockGenerator{generate: func(int) (*provider.Message, error) {
		cancel()
		return nil, rateLimitedFor(time.Hour)
	}}

	start := time.Now()
	_, err := newTestAssistant(&mockSearcher{}, g).Ask(ctx, "q")

	require.Error(t, err)
	assert.Equal(t, 1, g.calls)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAsk_NoRetryAfterWaitOnLastAttempt(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Provider.InitialBackoffMs = 1
	cfg.Provider.MaxRetries = 1
	logger, _ := logtest.NewNullLogger()
	g := &mockGenerator{generate: func(int) (*provider.Message, error) {
		return nil, rateLimitedFor(time.Hour)
	}}

	start := time.Now()
	_, err := NewAssistant(&mockSearcher{}, g, cfg, logger).Ask(context.Background(), "q")

	assert.ErrorIs(t, err, provider.ErrRateLimit)
	assert.Equal(t, 1, g.calls)
	assert.Less(t, time.Since(start), 5*time.Second)
}
