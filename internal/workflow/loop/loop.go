package loop

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cyclone1070/secondbrain/internal/provider"
	"github.com/Cyclone1070/secondbrain/internal/workflow"
	"github.com/sirupsen/logrus"
)

// ErrNoConclusion is returned when the round limit is hit before the model
// answers in plain text.
var ErrNoConclusion = errors.New("no conclusion reached")

// SystemPrompt tells the model what the tools can do and how paths work.
const SystemPrompt = `You are a helpful assistant working inside the user's notes folder.

When a user asks a question or makes a request, make a function call plan. You can perform the following operations:

- List files and directories
- Read file contents
- Execute Python files with optional arguments
- Write or overwrite files

All paths you provide should be relative to the working directory. You do not need to specify the working directory in your function calls as it is fixed for security reasons.

When you have what you need, answer in plain text without calling any more functions.`

type Loop struct {
	provider      llmProvider
	tools         toolManager
	events        chan<- workflow.Event
	maxIterations int
	systemPrompt  string
}

func NewLoop(provider llmProvider, tools toolManager, events chan<- workflow.Event, maxIterations int) *Loop {
	return &Loop{
		provider:      provider,
		tools:         tools,
		events:        events,
		maxIterations: maxIterations,
		systemPrompt:  SystemPrompt,
	}
}

// Run drives the conversation for one prompt and returns the model's final
// text. Each round either ends the run with text or executes every
// requested call and appends all results as a single tool turn.
func (l *Loop) Run(ctx context.Context, prompt string) (string, error) {
	messages := []provider.Message{provider.UserMessage(prompt)}

	defer l.emit(workflow.DoneEvent{})

	decls := l.tools.Declarations()

	for round := 1; round <= l.maxIterations; round++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		l.emit(workflow.ThinkingEvent{Round: round})

		resp, err := l.provider.Generate(ctx, &provider.GenerateRequest{
			SystemInstruction: l.systemPrompt,
			Messages:          messages,
			Tools:             decls,
		})
		if err != nil {
			return "", fmt.Errorf("provider.Generate (round %d): %w", round, err)
		}

		resp.Role = provider.RoleModel
		messages = append(messages, *resp)

		if resp.Content != "" {
			l.emit(workflow.TextEvent{Text: resp.Content})
		}

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		logrus.WithFields(logrus.Fields{
			"round": round,
			"calls": len(resp.ToolCalls),
		}).Debug("executing tool calls")

		results, err := l.tools.ExecuteAll(ctx, resp.ToolCalls, l.events)
		if err != nil {
			return "", err
		}

		messages = append(messages, provider.Message{
			Role:        provider.RoleTool,
			ToolResults: results,
		})
	}

	return "", fmt.Errorf("%w after %d rounds", ErrNoConclusion, l.maxIterations)
}

func (l *Loop) emit(e workflow.Event) {
	if l.events != nil {
		l.events <- e
	}
}
