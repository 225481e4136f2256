package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/tool"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/executor"
)

// RunScriptTool executes a script inside the workspace with its interpreter.
type RunScriptTool struct {
	fs              fileStater
	commandExecutor commandExecutor
	config          *config.Config
	pathResolver    pathResolver
}

// NewRunScriptTool creates a new RunScriptTool with injected dependencies.
func NewRunScriptTool(
	fs fileStater,
	commandExecutor commandExecutor,
	cfg *config.Config,
	pathResolver pathResolver,
) *RunScriptTool {
	if commandExecutor == nil {
		panic("commandExecutor is required")
	}
	if cfg == nil {
		panic("cfg is required")
	}
	if pathResolver == nil {
		panic("pathResolver is required")
	}
	return &RunScriptTool{
		fs:              fs,
		commandExecutor: commandExecutor,
		config:          cfg,
		pathResolver:    pathResolver,
	}
}

// Run executes `<interpreter> <file_path> [args...]` with the workspace root
// as the working directory. The interpreter is chosen by file extension from
// tools.script_interpreters. Arguments are passed as a vector; nothing goes
// through a shell. The process is killed after tools.script_timeout_seconds.
func (t *RunScriptTool) Run(ctx context.Context, req RunScriptRequest) tool.Result {
	if err := req.Validate(); err != nil {
		return tool.Failure(tool.KindInvalidArguments, err, "%v", err)
	}

	abs, err := t.pathResolver.Abs(req.FilePath)
	if err != nil {
		return tool.ResolveFailure(err, req.FilePath, fmt.Sprintf(`Cannot execute "%s" as it is outside the permitted working directory`, req.FilePath))
	}
	root, err := t.pathResolver.Abs(".")
	if err != nil {
		return tool.Failure(tool.KindInternal, err, "resolving working directory: %v", err)
	}

	info, err := t.fs.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return tool.Failure(tool.KindNotFound, err, `File "%s" not found.`, req.FilePath)
		}
		return tool.Failure(tool.KindExecution, err, "executing %s: %s", t.kindLabel(), tool.PlainError(err))
	}

	interpreter, ok := t.config.Tools.ScriptInterpreters[strings.ToLower(filepath.Ext(abs))]
	if !ok || !info.Mode().IsRegular() {
		return tool.Failure(tool.KindWrongType, ErrNotScript, `"%s" is not a %s.`, req.FilePath, t.kindLabel())
	}
	interpArgs := strings.Fields(interpreter)
	if len(interpArgs) == 0 {
		return tool.Failure(tool.KindInternal, ErrNoInterpreter, "executing %s: %v", t.kindLabel(), ErrNoInterpreter)
	}

	// Hand the interpreter the resolved location, relative to the root it
	// runs in and prefixed with "./" so a leading "-" is never read as a flag.
	scriptRel, err := t.pathResolver.Rel(abs)
	if err != nil {
		return tool.Failure(tool.KindInternal, err, "executing %s: %v", t.kindLabel(), err)
	}
	scriptRel = "." + string(filepath.Separator) + filepath.FromSlash(scriptRel)

	command := make([]string, 0, len(interpArgs)+1+len(req.Args))
	command = append(command, interpArgs...)
	command = append(command, scriptRel)
	command = append(command, req.Args...)

	timeout := time.Duration(t.config.Tools.ScriptTimeoutSeconds) * time.Second
	result, execErr := t.commandExecutor.RunWithTimeout(ctx, command, root, config.ScrubEnviron(os.Environ()), timeout)
	if execErr != nil {
		switch {
		case errors.Is(execErr, executor.ErrTimeout):
			return tool.Failure(tool.KindTimeout, execErr, "executing %s: timed out after %s", t.kindLabel(), timeout)
		case errors.Is(execErr, context.Canceled), errors.Is(execErr, context.DeadlineExceeded):
			return tool.Failure(tool.KindExecution, execErr, "executing %s: %v", t.kindLabel(), execErr)
		default:
			return tool.Failure(tool.KindExecution, execErr, "executing %s: %s", t.kindLabel(), tool.PlainError(execErr))
		}
	}

	return tool.Success(formatOutput(result))
}

// formatOutput renders captured output as STDOUT/STDERR/exit-code lines.
func formatOutput(result *executor.Result) string {
	var lines []string
	if result.Stdout != "" {
		lines = append(lines, "STDOUT: "+result.Stdout)
	}
	if result.Stderr != "" {
		lines = append(lines, "STDERR: "+result.Stderr)
	}
	if result.ExitCode != 0 {
		lines = append(lines, fmt.Sprintf("Process exited with code %d", result.ExitCode))
	}
	if len(lines) == 0 {
		return "No output is produced"
	}
	if result.Truncated {
		lines = append(lines, "[output truncated]")
	}
	return strings.Join(lines, "\n")
}

// kindLabel names the accepted script kinds for messages: "Python file" in
// the default setup, otherwise the list of extensions.
func (t *RunScriptTool) kindLabel() string {
	exts := make([]string, 0, len(t.config.Tools.ScriptInterpreters))
	for ext := range t.config.Tools.ScriptInterpreters {
		exts = append(exts, ext)
	}
	if len(exts) == 1 && exts[0] == ".py" {
		return "Python file"
	}
	sort.Strings(exts)
	return fmt.Sprintf("script file (%s)", strings.Join(exts, ", "))
}
