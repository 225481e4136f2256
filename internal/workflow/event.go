package workflow

import "github.com/Cyclone1070/secondbrain/internal/tool"

// Event is the interface for all workflow events.
// UI handles events via type switch.
type Event interface {
	isEvent()
}

// TextEvent is emitted when the LLM produces text output.
type TextEvent struct {
	Text string
}

func (TextEvent) isEvent() {}

// ThinkingEvent is emitted before each round is sent to the LLM.
type ThinkingEvent struct {
	Round int
}

func (ThinkingEvent) isEvent() {}

// DoneEvent is emitted when the workflow loop completes.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}

// ToolStartEvent is emitted when a tool execution begins.
type ToolStartEvent struct {
	ToolName string
	Args     map[string]any
}

func (ToolStartEvent) isEvent() {}

// ToolEndEvent is emitted when a tool call completes.
type ToolEndEvent struct {
	ToolName string
	Kind     tool.ErrorKind
	Content  string
}

func (ToolEndEvent) isEvent() {}
