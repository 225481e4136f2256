package script

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/tool"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/executor"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/fs"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecutor records the command it was asked to run.
type mockExecutor struct {
	gotCmd     []string
	gotDir     string
	gotTimeout time.Duration
	gotEnv     []string
	result     *executor.Result
	err        error
}

func (m *mockExecutor) RunWithTimeout(ctx context.Context, cmd []string, dir string, env []string, timeout time.Duration) (*executor.Result, error) {
	m.gotCmd = cmd
	m.gotDir = dir
	m.gotTimeout = timeout
	m.gotEnv = env
	if m.result == nil {
		m.result = &executor.Result{}
	}
	return m.result, m.err
}

func newTestWorkspace(t *testing.T) string {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	return root
}

func writeScript(t *testing.T, root, name, body string) {
	t.Helper()
	p := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
}

func TestRunScript_BuildsArgumentVector(t *testing.T) {
	root := newTestWorkspace(t)
	writeScript(t, root, "main.py", "print('hi')")
	runner := &mockExecutor{result: &executor.Result{Stdout: "8\n"}}
	cfg := config.DefaultConfig()

	res := NewRunScriptTool(fs.NewOSFileSystem(), runner, cfg, path.NewResolver(root)).
		Run(context.Background(), RunScriptRequest{FilePath: "main.py", Args: []string{"3 + 5"}})

	require.False(t, res.IsError(), res.Content)
	assert.Equal(t, []string{"python3", "./main.py", "3 + 5"}, runner.gotCmd)
	assert.Equal(t, root, runner.gotDir)
	assert.Equal(t, 30*time.Second, runner.gotTimeout)
	assert.Equal(t, "STDOUT: 8\n", res.Content)
	assert.NotNil(t, runner.gotEnv)
}

func TestRunScript_NestedScriptPathIsRootRelative(t *testing.T) {
	root := newTestWorkspace(t)
	writeScript(t, root, "tools/-x.py", "print('hi')")
	runner := &mockExecutor{}

	res := NewRunScriptTool(fs.NewOSFileSystem(), runner, config.DefaultConfig(), path.NewResolver(root)).
		Run(context.Background(), RunScriptRequest{FilePath: filepath.Join(root, "tools", "..", "tools", "-x.py")})

	require.False(t, res.IsError(), res.Content)
	assert.Equal(t, []string{"python3", "." + string(filepath.Separator) + filepath.Join("tools", "-x.py")}, runner.gotCmd)
}

func TestRunScript_OutputFormatting(t *testing.T) {
	tests := []struct {
		name   string
		result executor.Result
		want   string
	}{
		{"no output", executor.Result{}, "No output is produced"},
		{"stdout only", executor.Result{Stdout: "ok"}, "STDOUT: ok"},
		{"stderr only", executor.Result{Stderr: "warn"}, "STDERR: warn"},
		{"both streams", executor.Result{Stdout: "a", Stderr: "b"}, "STDOUT: a\nSTDERR: b"},
		{"non-zero exit without output", executor.Result{ExitCode: 2}, "Process exited with code 2"},
		{"non-zero exit with stderr", executor.Result{Stderr: "Traceback", ExitCode: 1}, "STDERR: Traceback\nProcess exited with code 1"},
		{"truncated output", executor.Result{Stdout: "aaaa", Truncated: true}, "STDOUT: aaaa\n[output truncated]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatOutput(&tt.result))
		})
	}
}

func TestRunScript_Rejections(t *testing.T) {
	root := newTestWorkspace(t)
	writeScript(t, root, "notes.txt", "not python")
	require.NoError(t, os.Mkdir(filepath.Join(root, "pkg.py"), 0o755))

	tests := []struct {
		name     string
		filePath string
		wantKind tool.ErrorKind
		want     string
	}{
		{"outside", "../main.py", tool.KindPathViolation, `Error: Cannot execute "../main.py" as it is outside the permitted working directory`},
		{"missing", "nope.py", tool.KindNotFound, `Error: File "nope.py" not found.`},
		{"wrong extension", "notes.txt", tool.KindWrongType, `Error: "notes.txt" is not a Python file.`},
		{"directory with script name", "pkg.py", tool.KindWrongType, `Error: "pkg.py" is not a Python file.`},
		{"empty path", "", tool.KindInvalidArguments, "Error: file_path is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &mockExecutor{}

			res := NewRunScriptTool(fs.NewOSFileSystem(), runner, config.DefaultConfig(), path.NewResolver(root)).
				Run(context.Background(), RunScriptRequest{FilePath: tt.filePath})

			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.want, res.Content)
			assert.Nil(t, runner.gotCmd, "nothing should be executed")
		})
	}
}

func TestRunScript_CustomInterpreters(t *testing.T) {
	root := newTestWorkspace(t)
	writeScript(t, root, "build.sh", "echo hi")
	cfg := config.DefaultConfig()
	cfg.Tools.ScriptInterpreters[".sh"] = "bash --noprofile"
	runner := &mockExecutor{}

	res := NewRunScriptTool(fs.NewOSFileSystem(), runner, cfg, path.NewResolver(root)).
		Run(context.Background(), RunScriptRequest{FilePath: "build.sh"})

	require.False(t, res.IsError())
	assert.Equal(t, []string{"bash", "--noprofile", "./build.sh"}, runner.gotCmd)

	writeScript(t, root, "x.rb", "")
	res = NewRunScriptTool(fs.NewOSFileSystem(), runner, cfg, path.NewResolver(root)).
		Run(context.Background(), RunScriptRequest{FilePath: "x.rb"})
	assert.Equal(t, `Error: "x.rb" is not a script file (.py, .sh).`, res.Content)
}

func TestRunScript_TimeoutMapsToKind(t *testing.T) {
	root := newTestWorkspace(t)
	writeScript(t, root, "slow.py", "")
	runner := &mockExecutor{err: executor.ErrTimeout, result: &executor.Result{ExitCode: -1}}

	res := NewRunScriptTool(fs.NewOSFileSystem(), runner, config.DefaultConfig(), path.NewResolver(root)).
		Run(context.Background(), RunScriptRequest{FilePath: "slow.py"})

	assert.Equal(t, tool.KindTimeout, res.Kind)
	assert.Equal(t, "Error: executing Python file: timed out after 30s", res.Content)
}

// --- Integration tests with a real interpreter ---

func requirePython(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
}

func newRealTool(root string, cfg *config.Config) *RunScriptTool {
	return NewRunScriptTool(fs.NewOSFileSystem(), executor.NewOSCommandExecutor(cfg), cfg, path.NewResolver(root))
}

func TestRunScript_Integration_SingleArgumentToken(t *testing.T) {
	requirePython(t)
	root := newTestWorkspace(t)
	writeScript(t, root, "main.py", "import sys\nprint(len(sys.argv) - 1)\nprint(sys.argv[1])\n")

	res := newRealTool(root, config.DefaultConfig()).
		Run(context.Background(), RunScriptRequest{FilePath: "main.py", Args: []string{"3 + 5"}})

	require.False(t, res.IsError(), res.Content)
	assert.Equal(t, "STDOUT: 1\n3 + 5\n", res.Content)
}

func TestRunScript_Integration_NoShellExpansion(t *testing.T) {
	requirePython(t)
	root := newTestWorkspace(t)
	writeScript(t, root, "echo.py", "import sys\nprint(sys.argv[1])\n")

	res := newRealTool(root, config.DefaultConfig()).
		Run(context.Background(), RunScriptRequest{FilePath: "echo.py", Args: []string{"$(touch pwned); *"}})

	require.False(t, res.IsError())
	assert.Equal(t, "STDOUT: $(touch pwned); *\n", res.Content)
	assert.NoFileExists(t, filepath.Join(root, "pwned"))
}

func TestRunScript_Integration_WorkingDirectoryIsRoot(t *testing.T) {
	requirePython(t)
	root := newTestWorkspace(t)
	writeScript(t, root, "pkg/where.py", "import os\nprint(os.getcwd())\n")

	res := newRealTool(root, config.DefaultConfig()).
		Run(context.Background(), RunScriptRequest{FilePath: "pkg/where.py"})

	require.False(t, res.IsError())
	assert.Equal(t, "STDOUT: "+root+"\n", res.Content)
}

func TestRunScript_Integration_ExitCodeAndStderr(t *testing.T) {
	requirePython(t)
	root := newTestWorkspace(t)
	writeScript(t, root, "fail.py", "import sys\nsys.stderr.write('bad')\nsys.exit(3)\n")

	res := newRealTool(root, config.DefaultConfig()).
		Run(context.Background(), RunScriptRequest{FilePath: "fail.py"})

	assert.False(t, res.IsError())
	assert.Equal(t, "STDERR: bad\nProcess exited with code 3", res.Content)
}

func TestRunScript_Integration_Timeout(t *testing.T) {
	requirePython(t)
	root := newTestWorkspace(t)
	writeScript(t, root, "sleep.py", "import time\ntime.sleep(60)\n")
	cfg := config.DefaultConfig()
	cfg.Tools.ScriptTimeoutSeconds = 1
	cfg.Tools.ProcessKillGraceMs = 100

	start := time.Now()
	res := newRealTool(root, cfg).Run(context.Background(), RunScriptRequest{FilePath: "sleep.py"})
	elapsed := time.Since(start)

	assert.Equal(t, tool.KindTimeout, res.Kind)
	assert.True(t, strings.HasPrefix(res.Content, "Error: "))
	assert.Less(t, elapsed, 5*time.Second)
}

func TestRunScript_Integration_CredentialsNotInherited(t *testing.T) {
	requirePython(t)
	t.Setenv(config.EnvGeminiAPIKey, "sk-secret")
	t.Setenv(config.EnvPineconeAPIKey, "pc-secret")
	t.Setenv("BRAIN_TEST_VISIBLE", "visible")
	root := newTestWorkspace(t)
	writeScript(t, root, "env.py", "import os\nprint(sorted(os.environ.items()))\n")

	res := newRealTool(root, config.DefaultConfig()).
		Run(context.Background(), RunScriptRequest{FilePath: "env.py"})

	require.False(t, res.IsError(), res.Content)
	assert.NotContains(t, res.Content, "sk-secret")
	assert.NotContains(t, res.Content, "pc-secret")
	assert.NotContains(t, res.Content, config.EnvGeminiAPIKey)
	assert.Contains(t, res.Content, "visible")
}
