package file

// -- Read File --

// ReadFileRequest is the argument set the model may pass to read_file.
type ReadFileRequest struct {
	FilePath string `json:"file_path" mapstructure:"file_path" jsonschema_description:"The file to read and return the contents from, relative to the working directory."`
}

func (r ReadFileRequest) Validate() error {
	if r.FilePath == "" {
		return ErrPathRequired
	}
	return nil
}

// -- Write File --

// WriteFileRequest is the argument set the model may pass to write_file.
// Content may be empty, which truncates the target.
type WriteFileRequest struct {
	FilePath string `json:"file_path" mapstructure:"file_path" jsonschema_description:"The file to write to, relative to the working directory. Created if it does not exist; its parent directory must already exist."`
	Content  string `json:"content" mapstructure:"content" jsonschema_description:"The exact content to write. Replaces any existing content."`
}

func (r WriteFileRequest) Validate() error {
	if r.FilePath == "" {
		return ErrPathRequired
	}
	return nil
}
