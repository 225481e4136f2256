package directory

// ListFilesRequest is the argument set the model may pass to list_files.
type ListFilesRequest struct {
	Directory string `json:"directory,omitempty" mapstructure:"directory" jsonschema_description:"The directory to list files from, relative to the working directory. If not provided, lists files in the working directory itself."`
}
