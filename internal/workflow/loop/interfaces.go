package loop

import (
	"context"

	"github.com/Cyclone1070/secondbrain/internal/provider"
	"github.com/Cyclone1070/secondbrain/internal/tool"
	"github.com/Cyclone1070/secondbrain/internal/workflow"
)

// llmProvider communicates with an LLM.
type llmProvider interface {
	// Generate sends one round to the LLM and returns its reply.
	Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.Message, error)
}

// toolManager executes the tool calls of one round.
type toolManager interface {
	// Declarations returns all tool schemas for the LLM.
	Declarations() []tool.Declaration

	// ExecuteAll runs the calls and returns one result per call, in call order.
	// It emits ToolStartEvent and ToolEndEvent to the events channel.
	ExecuteAll(ctx context.Context, calls []provider.ToolCall, events chan<- workflow.Event) ([]provider.ToolResult, error)
}
