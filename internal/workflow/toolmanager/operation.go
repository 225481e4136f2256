package toolmanager

import "fmt"

// Operation is the closed set of functions the model may call.
type Operation int

const (
	OpListFiles Operation = iota
	OpReadFile
	OpWriteFile
	OpRunScript
)

var operationNames = [...]string{
	OpListFiles: "list_files",
	OpReadFile:  "read_file",
	OpWriteFile: "write_file",
	OpRunScript: "run_script",
}

// Operations lists every operation in declaration order.
func Operations() []Operation {
	return []Operation{OpListFiles, OpReadFile, OpWriteFile, OpRunScript}
}

// String returns the function name the model uses.
func (o Operation) String() string {
	if o < 0 || int(o) >= len(operationNames) {
		return fmt.Sprintf("operation(%d)", int(o))
	}
	return operationNames[o]
}

// ParseOperation maps a model-supplied function name to an Operation.
func ParseOperation(name string) (Operation, bool) {
	for i, n := range operationNames {
		if n == name {
			return Operation(i), true
		}
	}
	return 0, false
}
