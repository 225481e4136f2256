package config

import (
	"fmt"
	"strings"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Tools validation
	if c.Tools.MaxChars < 1 {
		errs = append(errs, "tools.max_chars must be >= 1")
	}
	if c.Tools.ScriptTimeoutSeconds < 1 {
		errs = append(errs, "tools.script_timeout_seconds must be >= 1")
	}
	if len(c.Tools.ScriptInterpreters) == 0 {
		errs = append(errs, "tools.script_interpreters must not be empty")
	}
	for ext, interp := range c.Tools.ScriptInterpreters {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("tools.script_interpreters key %q must start with '.'", ext))
		}
		if strings.TrimSpace(interp) == "" {
			errs = append(errs, fmt.Sprintf("tools.script_interpreters[%q] must not be empty", ext))
		}
	}
	if c.Tools.MaxCommandOutputSize < 1 {
		errs = append(errs, "tools.max_command_output_size must be >= 1")
	}
	if c.Tools.ProcessKillGraceMs < 0 {
		errs = append(errs, "tools.process_kill_grace_ms must be >= 0")
	}

	// Workflow validation
	if c.Workflow.MaxIterations < 1 {
		errs = append(errs, "workflow.max_iterations must be >= 1")
	}

	// Provider validation
	if c.Provider.Model == "" {
		errs = append(errs, "provider.model must not be empty")
	}
	if c.Provider.EmbeddingModel == "" {
		errs = append(errs, "provider.embedding_model must not be empty")
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		errs = append(errs, "provider.temperature must be between 0 and 2")
	}
	if c.Provider.MaxRetries < 1 {
		errs = append(errs, "provider.max_retries must be >= 1")
	}
	if c.Provider.InitialBackoffMs < 0 {
		errs = append(errs, "provider.initial_backoff_ms must be >= 0")
	}

	// Retrieval validation
	if c.Retrieval.TopK < 1 {
		errs = append(errs, "retrieval.top_k must be >= 1")
	}

	// Ingest validation
	if c.Ingest.ChunkSize < 1 {
		errs = append(errs, "ingest.chunk_size must be >= 1")
	}
	if c.Ingest.ChunkOverlap < 0 {
		errs = append(errs, "ingest.chunk_overlap must be >= 0")
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		errs = append(errs, "ingest.chunk_overlap must be < ingest.chunk_size")
	}
	if c.Ingest.BatchSize < 1 {
		errs = append(errs, "ingest.batch_size must be >= 1")
	}
	if c.Ingest.BatchIntervalMs < 0 {
		errs = append(errs, "ingest.batch_interval_ms must be >= 0")
	}
	if c.Ingest.Dimension < 1 {
		errs = append(errs, "ingest.dimension must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
