package script

import (
	"context"
	"os"
	"time"

	"github.com/Cyclone1070/secondbrain/internal/tool/service/executor"
)

// pathResolver defines workspace path resolution operations.
type pathResolver interface {
	Abs(path string) (string, error)
	Rel(path string) (string, error)
}

// fileStater defines the filesystem operations needed before running a script.
type fileStater interface {
	Stat(path string) (os.FileInfo, error)
}

// commandExecutor defines the interface for running the interpreter.
type commandExecutor interface {
	RunWithTimeout(ctx context.Context, cmd []string, dir string, env []string, timeout time.Duration) (*executor.Result, error)
}
