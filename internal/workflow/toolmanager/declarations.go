package toolmanager

import (
	"github.com/Cyclone1070/secondbrain/internal/tool"
	"github.com/Cyclone1070/secondbrain/internal/tool/directory"
	"github.com/Cyclone1070/secondbrain/internal/tool/file"
	"github.com/Cyclone1070/secondbrain/internal/tool/script"
	"github.com/invopop/jsonschema"
)

var operationDescriptions = map[Operation]string{
	OpListFiles: "Lists files in the specified directory along with their sizes, constrained to the working directory.",
	OpReadFile:  "Returns the contents of the specified file, constrained to the working directory. Long files are truncated.",
	OpWriteFile: "Writes content to the specified file, constrained to the working directory. Creates the file or overwrites it.",
	OpRunScript: "Executes the specified script file with optional arguments, constrained to the working directory, and returns its output.",
}

// declaration builds the model-facing declaration for op from its argument struct.
func declaration(op Operation) tool.Declaration {
	var params *tool.Schema
	switch op {
	case OpListFiles:
		params = schemaFor[directory.ListFilesRequest]()
	case OpReadFile:
		params = schemaFor[file.ReadFileRequest]()
	case OpWriteFile:
		params = schemaFor[file.WriteFileRequest]()
	case OpRunScript:
		params = schemaFor[script.RunScriptRequest]()
	}

	return tool.Declaration{
		Name:        op.String(),
		Description: operationDescriptions[op],
		Parameters:  params,
	}
}

func schemaFor[T any]() *tool.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return fromJSONSchema(reflector.Reflect(v))
}

// fromJSONSchema keeps the subset of JSON Schema the provider understands.
func fromJSONSchema(s *jsonschema.Schema) *tool.Schema {
	if s == nil {
		return nil
	}

	out := &tool.Schema{
		Type:        tool.Type(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       fromJSONSchema(s.Items),
	}
	for _, e := range s.Enum {
		if str, ok := e.(string); ok {
			out.Enum = append(out.Enum, str)
		}
	}
	if s.Properties != nil && s.Properties.Len() > 0 {
		out.Properties = make(map[string]*tool.Schema, s.Properties.Len())
		for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
			out.Properties[pair.Key] = fromJSONSchema(pair.Value)
		}
	}
	return out
}

// requiredArgs returns the keys the model must supply.
func requiredArgs(decl tool.Declaration) []string {
	if decl.Parameters == nil {
		return nil
	}
	return decl.Parameters.Required
}
