package provider

import "github.com/Cyclone1070/secondbrain/internal/tool"

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
	RoleTool  Role = "tool"
)

// ToolCall is a function call requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult answers one ToolCall. ID and Name tie it back to the call.
type ToolResult struct {
	ID      string
	Name    string
	Content string
	IsError bool
}

// Message is one turn of a conversation.
// Model turns carry Content and/or ToolCalls; tool turns carry ToolResults.
type Message struct {
	Role        Role
	Content     string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// GenerateRequest is everything sent to the model for one round.
type GenerateRequest struct {
	SystemInstruction string
	Messages          []Message
	Tools             []tool.Declaration

	// Temperature overrides the provider default when non-nil.
	Temperature *float32
}

// UserMessage builds a user turn.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}
