package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Tools     ToolsConfig     `json:"tools"`
	Workflow  WorkflowConfig  `json:"workflow"`
	Provider  ProviderConfig  `json:"provider"`
	Retrieval RetrievalConfig `json:"retrieval"`
	Ingest    IngestConfig    `json:"ingest"`
}

type ToolsConfig struct {
	// File Operations
	MaxChars int `json:"max_chars"` // Default: 10000

	// Script Execution
	ScriptTimeoutSeconds int               `json:"script_timeout_seconds"`  // Default: 30
	ScriptInterpreters   map[string]string `json:"script_interpreters"`     // Default: {".py": "python3"}
	MaxCommandOutputSize int64             `json:"max_command_output_size"` // Default: 10 * 1024 * 1024 (10MB)
	ProcessKillGraceMs   int               `json:"process_kill_grace_ms"`   // Default: 2000
}

type WorkflowConfig struct {
	MaxIterations     int  `json:"max_iterations"`      // Default: 20
	ParallelToolCalls bool `json:"parallel_tool_calls"` // Default: false
}

type ProviderConfig struct {
	Model          string  `json:"model"`           // Default: gemini-2.5-flash
	EmbeddingModel string  `json:"embedding_model"` // Default: text-embedding-004
	Temperature    float32 `json:"temperature"`     // Default: 0.3

	// Upstream retry (rate limits, transient 5xx)
	MaxRetries       int `json:"max_retries"`        // Default: 3
	InitialBackoffMs int `json:"initial_backoff_ms"` // Default: 2000
}

type RetrievalConfig struct {
	TopK      int    `json:"top_k"`     // Default: 4
	Namespace string `json:"namespace"` // Default: "notes"
}

type IngestConfig struct {
	ChunkSize       int    `json:"chunk_size"`        // Default: 1000
	ChunkOverlap    int    `json:"chunk_overlap"`     // Default: 200
	BatchSize       int    `json:"batch_size"`        // Default: 10
	BatchIntervalMs int    `json:"batch_interval_ms"` // Default: 5000
	Dimension       int32  `json:"dimension"`         // Default: 768
	IgnoreFile      string `json:"ignore_file"`       // Default: .brainignore
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tools: ToolsConfig{
			MaxChars:             10000,
			ScriptTimeoutSeconds: 30,
			ScriptInterpreters:   map[string]string{".py": "python3"},
			MaxCommandOutputSize: 10 * 1024 * 1024,
			ProcessKillGraceMs:   2000,
		},
		Workflow: WorkflowConfig{
			MaxIterations:     20,
			ParallelToolCalls: false,
		},
		Provider: ProviderConfig{
			Model:            "gemini-2.5-flash",
			EmbeddingModel:   "text-embedding-004",
			Temperature:      0.3,
			MaxRetries:       3,
			InitialBackoffMs: 2000,
		},
		Retrieval: RetrievalConfig{
			TopK:      4,
			Namespace: "notes",
		},
		Ingest: IngestConfig{
			ChunkSize:       1000,
			ChunkOverlap:    200,
			BatchSize:       10,
			BatchIntervalMs: 5000,
			Dimension:       768,
			IgnoreFile:      ".brainignore",
		},
	}
}
