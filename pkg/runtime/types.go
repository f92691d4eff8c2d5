// Package runtime drives pipeline execution: the stage/action walker
// with its check and execute visitors, the status report and the run
// artifacts.
package runtime

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Mode names the traversal mode recorded in run artifacts.
type Mode string

const (
	ModeExecute Mode = "execute"
	ModeDryRun  Mode = "dry-run"
)

// NewRunID creates a run ID in format YYYYMMDDTHHmmss-<uuid8>.
func NewRunID() string {
	ts := time.Now().Format("20060102T150405")
	return fmt.Sprintf("%s-%s", ts, uuid.NewString()[:8])
}

// TraceEvent wraps an ActionOutcome for JSONL trace output.
type TraceEvent struct {
	Type      string         `json:"type"` // action_outcome
	Timestamp time.Time      `json:"timestamp"`
	RunID     string         `json:"run_id"`
	Outcome   *ActionOutcome `json:"outcome"`
}

// RunManifest records the complete metadata for one pipeline run.
// Written as run.yaml after the run completes (or fails). Per-run
// artifacts only; nothing here is read back by later runs.
type RunManifest struct {
	RunID       string            `yaml:"run_id"            json:"run_id"`
	Pipeline    string            `yaml:"pipeline"          json:"pipeline"`
	Mode        Mode              `yaml:"mode"              json:"mode"`
	StartedAt   string            `yaml:"started_at"        json:"started_at"`
	EndedAt     string            `yaml:"ended_at"          json:"ended_at"`
	AllPassed   bool              `yaml:"all_passed"        json:"all_passed"`
	Summary     ActionSummary     `yaml:"summary"           json:"summary"`
	Environment map[string]string `yaml:"environment,omitempty" json:"environment,omitempty"`
}

// ActionSummary counts action outcomes by state.
type ActionSummary struct {
	Total  int `yaml:"total"  json:"total"`
	Passed int `yaml:"passed" json:"passed"`
	Failed int `yaml:"failed" json:"failed"`
}
