package gemini

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Cyclone1070/secondbrain/internal/provider"
	"github.com/Cyclone1070/secondbrain/internal/tool"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// localCallPrefix marks call IDs minted here because the API sent none.
// They are never echoed back upstream.
const localCallPrefix = "local-"

// toGeminiContents converts a conversation to Gemini Content format.
func toGeminiContents(messages []provider.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(messages))
	for _, msg := range messages {
		if content := messageToGeminiContent(msg); content != nil {
			contents = append(contents, content)
		}
	}
	return contents
}

// messageToGeminiContent converts a single message to Gemini Content format.
// Tool turns are sent with the user role, as the API expects.
func messageToGeminiContent(msg provider.Message) *genai.Content {
	role := "user"
	if msg.Role == provider.RoleModel {
		role = "model"
	}

	parts := make([]*genai.Part, 0, 1+len(msg.ToolCalls)+len(msg.ToolResults))

	if msg.Content != "" {
		parts = append(parts, genai.NewPartFromText(msg.Content))
	}

	for _, tc := range msg.ToolCalls {
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   upstreamID(tc.ID),
				Name: tc.Name,
				Args: tc.Args,
			},
		})
	}

	for _, result := range msg.ToolResults {
		key := "output"
		if result.IsError {
			key = "error"
		}
		parts = append(parts, &genai.Part{
			FunctionResponse: &genai.FunctionResponse{
				ID:       upstreamID(result.ID),
				Name:     result.Name,
				Response: map[string]any{key: result.Content},
			},
		})
	}

	if len(parts) == 0 {
		return nil
	}

	return &genai.Content{
		Role:  role,
		Parts: parts,
	}
}

func upstreamID(id string) string {
	if strings.HasPrefix(id, localCallPrefix) {
		return ""
	}
	return id
}

// toGeminiConfig builds the request config. temperature is used unless the request overrides it.
func toGeminiConfig(req *provider.GenerateRequest, temperature float32) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
		Temperature:    genai.Ptr(temperature),
	}

	if req.Temperature != nil {
		config.Temperature = genai.Ptr(*req.Temperature)
	}

	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	if tools := toGeminiTools(req.Tools); tools != nil {
		config.Tools = tools
	}

	return config
}

// defaultSafetySettings returns safety settings with BLOCK_NONE for all categories.
func defaultSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{
			Category:  genai.HarmCategoryHateSpeech,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryDangerousContent,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategoryHarassment,
			Threshold: genai.HarmBlockThresholdOff,
		},
		{
			Category:  genai.HarmCategorySexuallyExplicit,
			Threshold: genai.HarmBlockThresholdOff,
		},
	}
}

// toGeminiTools converts tool declarations to Gemini tools.
func toGeminiTools(decls []tool.Declaration) []*genai.Tool {
	if len(decls) == 0 {
		return nil
	}

	functionDeclarations := make([]*genai.FunctionDeclaration, 0, len(decls))
	for _, decl := range decls {
		fd := &genai.FunctionDeclaration{
			Name:        decl.Name,
			Description: decl.Description,
		}
		if decl.Parameters != nil {
			fd.Parameters = toGeminiSchema(decl.Parameters)
		}
		functionDeclarations = append(functionDeclarations, fd)
	}

	return []*genai.Tool{
		{FunctionDeclarations: functionDeclarations},
	}
}

// toGeminiSchema converts a tool schema to a Gemini schema, recursing into properties and items.
func toGeminiSchema(s *tool.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	schema := &genai.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
	}

	if len(s.Properties) > 0 {
		schema.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			schema.Properties[name] = toGeminiSchema(prop)
		}
	}
	if len(s.Required) > 0 {
		schema.Required = s.Required
	}
	if len(s.Enum) > 0 {
		schema.Enum = s.Enum
	}
	if s.Items != nil {
		schema.Items = toGeminiSchema(s.Items)
	}

	return schema
}

// toGeminiType converts a schema type to a Gemini Type.
func toGeminiType(t tool.Type) genai.Type {
	switch t {
	case tool.TypeString:
		return genai.TypeString
	case tool.TypeNumber:
		return genai.TypeNumber
	case tool.TypeInteger:
		return genai.TypeInteger
	case tool.TypeBoolean:
		return genai.TypeBoolean
	case tool.TypeArray:
		return genai.TypeArray
	case tool.TypeObject:
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// fromGeminiResponse converts a Gemini response to a model message.
// On MaxTokens it returns the partial message together with the error.
func fromGeminiResponse(resp *genai.GenerateContentResponse) (*provider.Message, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, &provider.ProviderError{
				Code:    provider.ErrorCodeContentBlocked,
				Message: fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
			}
		}
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeEmptyResponse,
			Message: "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]

	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, &provider.ProviderError{
			Code:    provider.ErrorCodeContentBlocked,
			Message: "content blocked by safety filters",
		}
	}

	msg := buildMessage(candidate)

	if candidate.FinishReason == genai.FinishReasonMaxTokens {
		return msg, &provider.ProviderError{
			Code:    provider.ErrorCodeContextLength,
			Message: "response truncated due to max tokens",
		}
	}

	return msg, nil
}

// buildMessage collects text and function calls from a candidate.
// Thought parts are dropped.
func buildMessage(candidate *genai.Candidate) *provider.Message {
	msg := &provider.Message{Role: provider.RoleModel}
	if candidate.Content == nil {
		return msg
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				id = localCallPrefix + uuid.NewString()
			}
			args := part.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			msg.ToolCalls = append(msg.ToolCalls, provider.ToolCall{
				ID:   id,
				Name: part.FunctionCall.Name,
				Args: args,
			})
			continue
		}
		if part.Text != "" && !part.Thought {
			text.WriteString(part.Text)
		}
	}
	msg.Content = text.String()

	return msg
}

// asAPIError extracts a genai.APIError whether it was returned by value or pointer.
func asAPIError(err error) (*genai.APIError, bool) {
	var ptr *genai.APIError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr, true
	}
	var val genai.APIError
	if errors.As(err, &val) {
		return &val, true
	}
	return nil, false
}

// mapGeminiError maps Gemini API errors to provider errors.
func mapGeminiError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &provider.ProviderError{
			Code:       provider.ErrorCodeTimeout,
			Message:    "request timeout",
			Underlying: err,
		}
	}

	if apiErr, ok := asAPIError(err); ok {
		switch apiErr.Code {
		case 401:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeAuth,
				Message:    "authentication failed",
				Underlying: err,
			}
		case 403:
			return &provider.ProviderError{
				Code:       provider.ErrorCodePermission,
				Message:    "permission denied",
				Underlying: err,
			}
		case 429:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeRateLimit,
				Message:    "rate limit exceeded",
				Underlying: err,
				Retryable:  true,
				RetryAfter: parseRetryAfter(apiErr),
			}
		case 400, 404:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeInvalidRequest,
				Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
				Underlying: err,
			}
		case 500, 502, 503, 504:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeUnavailable,
				Message:    "service unavailable",
				Underlying: err,
				Retryable:  true,
			}
		default:
			return &provider.ProviderError{
				Code:       provider.ErrorCodeNetwork,
				Message:    fmt.Sprintf("API error: %s", apiErr.Message),
				Underlying: err,
				Retryable:  true,
			}
		}
	}

	return &provider.ProviderError{
		Code:       provider.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
		Retryable:  true,
	}
}

// retryKeys are the detail keys that may carry a retry delay.
var retryKeys = []string{"retryDelay", "retry_after", "retryAfter", "Retry-After"}

// parseRetryAfter looks for a retry delay in the error details,
// including google.rpc.RetryInfo ("retryDelay": "34s") and nested metadata.
func parseRetryAfter(apiErr *genai.APIError) *time.Duration {
	if apiErr == nil {
		return nil
	}
	for _, detail := range apiErr.Details {
		if d := retryFromMap(detail); d != nil {
			return d
		}
	}
	return nil
}

func retryFromMap(m map[string]any) *time.Duration {
	for _, key := range retryKeys {
		if v, ok := m[key]; ok {
			if d := parseRetryValue(v); d != nil {
				return d
			}
		}
	}
	if meta, ok := m["metadata"].(map[string]any); ok {
		return retryFromMap(meta)
	}
	return nil
}

// parseRetryValue accepts seconds as a number, a numeric string, a
// duration string such as "1.5s", or a {"seconds": n} object.
func parseRetryValue(v any) *time.Duration {
	var d time.Duration
	switch val := v.(type) {
	case int:
		d = time.Duration(val) * time.Second
	case int64:
		d = time.Duration(val) * time.Second
	case float64:
		d = time.Duration(val * float64(time.Second))
	case string:
		if secs, err := strconv.ParseFloat(val, 64); err == nil {
			d = time.Duration(secs * float64(time.Second))
		} else if parsed, err := time.ParseDuration(val); err == nil {
			d = parsed
		} else {
			return nil
		}
	case map[string]any:
		secs, ok := val["seconds"]
		if !ok {
			return nil
		}
		return parseRetryValue(secs)
	default:
		return nil
	}
	if d <= 0 {
		return nil
	}
	return &d
}
