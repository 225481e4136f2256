package tool

import "fmt"

// Type represents JSON Schema types.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema represents a JSON Schema for tool parameters.
type Schema struct {
	Type        Type               `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

// Declaration declares a tool's function signature for the LLM.
type Declaration struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Parameters  *Schema `json:"parameters,omitempty"`
}

// ErrorKind classifies a failed tool call.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindPathViolation
	KindNotFound
	KindWrongType
	KindExecution
	KindTimeout
	KindUnknownOperation
	KindInvalidArguments
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindPathViolation:
		return "path_violation"
	case KindNotFound:
		return "not_found"
	case KindWrongType:
		return "wrong_type"
	case KindExecution:
		return "execution"
	case KindTimeout:
		return "timeout"
	case KindUnknownOperation:
		return "unknown_operation"
	case KindInvalidArguments:
		return "invalid_arguments"
	case KindInternal:
		return "internal"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Result is the outcome of one tool call. Tools never return Go errors to
// their caller; failures are carried here with a kind the caller can branch on.
type Result struct {
	// Content is the model-facing text. Failures always start with "Error: ".
	Content string
	Kind    ErrorKind
	// Err is the underlying cause, if any. It is never shown to the model.
	Err error
}

// Success wraps content in a successful Result.
func Success(content string) Result {
	return Result{Content: content}
}

// Failure builds a failed Result whose content is "Error: " followed by the formatted message.
func Failure(kind ErrorKind, err error, format string, args ...any) Result {
	return Result{
		Content: "Error: " + fmt.Sprintf(format, args...),
		Kind:    kind,
		Err:     err,
	}
}

// IsError reports whether the call failed.
func (r Result) IsError() bool {
	return r.Kind != KindNone
}

// LLMContent returns the string fed back to the model.
func (r Result) LLMContent() string {
	return r.Content
}
