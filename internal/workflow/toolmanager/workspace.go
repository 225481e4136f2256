package toolmanager

import (
	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/tool/directory"
	"github.com/Cyclone1070/secondbrain/internal/tool/file"
	"github.com/Cyclone1070/secondbrain/internal/tool/script"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/executor"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/fs"
	"github.com/Cyclone1070/secondbrain/internal/tool/service/path"
	"github.com/sirupsen/logrus"
)

// NewWorkspaceToolManager wires the OS-backed tools to root, which must
// already be canonical (see path.CanonicaliseRoot).
func NewWorkspaceToolManager(root string, cfg *config.Config, logger logrus.FieldLogger) *ToolManager {
	fileSystem := fs.NewOSFileSystem()
	resolver := path.NewResolver(root)

	return NewToolManager(
		directory.NewListFilesTool(fileSystem, resolver),
		file.NewReadFileTool(fileSystem, cfg, resolver),
		file.NewWriteFileTool(fileSystem, resolver),
		script.NewRunScriptTool(fileSystem, executor.NewOSCommandExecutor(cfg), cfg, resolver),
		cfg,
		logger,
	)
}
