package toolmanager

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/provider"
	"github.com/Cyclone1070/secondbrain/internal/tool"
	"github.com/Cyclone1070/secondbrain/internal/tool/directory"
	"github.com/Cyclone1070/secondbrain/internal/tool/file"
	"github.com/Cyclone1070/secondbrain/internal/tool/script"
	"github.com/Cyclone1070/secondbrain/internal/workflow"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ToolManager routes model function calls to the four sandboxed tools.
// Argument structs carry no root: the tools hold the canonical root and any
// root-like key the model sends is ignored during decoding.
type ToolManager struct {
	listFiles listFilesTool
	readFile  readFileTool
	writeFile writeFileTool
	runScript runScriptTool

	decls    []tool.Declaration
	required map[Operation][]string
	parallel bool
	verbose  bool
	logger   logrus.FieldLogger
}

func NewToolManager(
	listFiles listFilesTool,
	readFile readFileTool,
	writeFile writeFileTool,
	runScript runScriptTool,
	cfg *config.Config,
	logger logrus.FieldLogger,
) *ToolManager {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	decls := make([]tool.Declaration, 0, len(operationNames))
	required := make(map[Operation][]string, len(operationNames))
	for _, op := range Operations() {
		d := declaration(op)
		decls = append(decls, d)
		required[op] = requiredArgs(d)
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})

	return &ToolManager{
		listFiles: listFiles,
		readFile:  readFile,
		writeFile: writeFile,
		runScript: runScript,
		decls:     decls,
		required:  required,
		parallel:  cfg.Workflow.ParallelToolCalls,
		logger:    logger,
	}
}

// SetVerbose makes each call log its arguments.
func (m *ToolManager) SetVerbose(verbose bool) {
	m.verbose = verbose
}

// Declarations returns the tool schemas for the LLM, sorted by name.
func (m *ToolManager) Declarations() []tool.Declaration {
	return slices.Clone(m.decls)
}

// ExecuteAll runs one round of calls and returns their results in call order.
// Tool failures are reported inside the results; the only error returned is
// context cancellation.
func (m *ToolManager) ExecuteAll(ctx context.Context, calls []provider.ToolCall, events chan<- workflow.Event) ([]provider.ToolResult, error) {
	results := make([]provider.ToolResult, len(calls))

	if !m.parallel || len(calls) < 2 {
		for i, tc := range calls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = m.execute(ctx, tc, events)
		}
		return results, ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, tc := range calls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = m.execute(gctx, tc, events)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (m *ToolManager) execute(ctx context.Context, tc provider.ToolCall, events chan<- workflow.Event) provider.ToolResult {
	if events != nil {
		events <- workflow.ToolStartEvent{ToolName: tc.Name, Args: tc.Args}
	}

	res := m.Execute(ctx, tc)

	if events != nil {
		events <- workflow.ToolEndEvent{ToolName: tc.Name, Kind: res.Kind, Content: res.LLMContent()}
	}

	return provider.ToolResult{
		ID:      tc.ID,
		Name:    tc.Name,
		Content: res.LLMContent(),
		IsError: res.IsError(),
	}
}

// Execute runs a single call. Unknown names, bad arguments and tool panics
// all come back as failed Results.
func (m *ToolManager) Execute(ctx context.Context, tc provider.ToolCall) (res tool.Result) {
	entry := m.logger.WithField("function", tc.Name)
	if m.verbose {
		entry = entry.WithFields(logrus.Fields(tc.Args))
	}
	entry.Info("Calling function: " + tc.Name)

	op, ok := ParseOperation(tc.Name)
	if !ok {
		return tool.Failure(tool.KindUnknownOperation, nil, "Unknown function: %s", tc.Name)
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.WithField("function", tc.Name).Errorf("tool panicked: %v", r)
			res = tool.Failure(tool.KindInternal, fmt.Errorf("panic: %v", r), "Executing Function: %v", r)
		}
	}()

	if missing := missingArgs(tc.Args, m.required[op]); len(missing) > 0 {
		return tool.Failure(tool.KindInvalidArguments, nil, "Invalid arguments for %s: missing required argument %q", tc.Name, missing[0])
	}

	switch op {
	case OpListFiles:
		var req directory.ListFilesRequest
		if err := decodeArgs(tc.Args, &req); err != nil {
			return invalidArgs(tc.Name, err)
		}
		return m.listFiles.Run(ctx, req)
	case OpReadFile:
		var req file.ReadFileRequest
		if err := decodeArgs(tc.Args, &req); err != nil {
			return invalidArgs(tc.Name, err)
		}
		return m.readFile.Run(ctx, req)
	case OpWriteFile:
		var req file.WriteFileRequest
		if err := decodeArgs(tc.Args, &req); err != nil {
			return invalidArgs(tc.Name, err)
		}
		return m.writeFile.Run(ctx, req)
	case OpRunScript:
		var req script.RunScriptRequest
		if err := decodeArgs(tc.Args, &req); err != nil {
			return invalidArgs(tc.Name, err)
		}
		return m.runScript.Run(ctx, req)
	default:
		panic(fmt.Sprintf("unhandled operation %v", op))
	}
}

// decodeArgs decodes model arguments into an argument struct. Decoding is
// weak so that a single string for a list field becomes one element.
func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(args)
}

func missingArgs(args map[string]any, required []string) []string {
	var missing []string
	for _, key := range required {
		if v, ok := args[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	return missing
}

func invalidArgs(name string, err error) tool.Result {
	return tool.Failure(tool.KindInvalidArguments, err, "Invalid arguments for %s: %v", name, err)
}
