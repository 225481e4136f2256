package toolmanager

import (
	"context"

	"github.com/Cyclone1070/secondbrain/internal/tool"
	"github.com/Cyclone1070/secondbrain/internal/tool/directory"
	"github.com/Cyclone1070/secondbrain/internal/tool/file"
	"github.com/Cyclone1070/secondbrain/internal/tool/script"
)

type listFilesTool interface {
	Run(ctx context.Context, req directory.ListFilesRequest) tool.Result
}

type readFileTool interface {
	Run(ctx context.Context, req file.ReadFileRequest) tool.Result
}

type writeFileTool interface {
	Run(ctx context.Context, req file.WriteFileRequest) tool.Result
}

type runScriptTool interface {
	Run(ctx context.Context, req script.RunScriptRequest) tool.Result
}
