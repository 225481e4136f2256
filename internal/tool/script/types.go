package script

import "errors"

// RunScriptRequest is the argument set the model may pass to run_script.
type RunScriptRequest struct {
	FilePath string   `json:"file_path" mapstructure:"file_path" jsonschema_description:"The script to execute, relative to the working directory."`
	Args     []string `json:"args,omitempty" mapstructure:"args" jsonschema_description:"Optional positional arguments. Each item is passed to the script as one argument, with no shell interpretation."`
}

var (
	ErrPathRequired  = errors.New("file_path is required")
	ErrNotScript     = errors.New("unsupported script type")
	ErrNoInterpreter = errors.New("no interpreter configured")
)

func (r RunScriptRequest) Validate() error {
	if r.FilePath == "" {
		return ErrPathRequired
	}
	return nil
}
