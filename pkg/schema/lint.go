package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Canonical document shape, used only to generate the advisory JSON
// Schema. The authoritative rules operate on the raw mapping; this
// lint exists to catch typos (unknown keys, wrong shapes) early, so its
// findings are warnings, never hard failures.

// PipelineSpec is the canonical top-level document.
type PipelineSpec struct {
	Parameters []ParameterSpec `json:"parameters,omitempty"`
	Stages     []StageSpec     `json:"stages" jsonschema:"required,minItems=1"`
}

// ParameterSpec is the canonical parameter declaration.
type ParameterSpec struct {
	Name         string            `json:"name" jsonschema:"required,pattern=^[A-Za-z_][A-Za-z0-9_]*$"`
	Kind         string            `json:"kind,omitempty" jsonschema:"enum=string,enum=text,enum=password,enum=boolean,enum=choice"`
	Default      any               `json:"default,omitempty"`
	Choices      []string          `json:"choices,omitempty"`
	Description  string            `json:"description,omitempty"`
	Required     bool              `json:"required,omitempty"`
	Trim         bool              `json:"trim,omitempty"`
	Regex        any               `json:"regex,omitempty"`
	RegexReplace *RegexReplaceSpec `json:"regex_replace,omitempty"`
	OnEmpty      *OnEmptySpec      `json:"on_empty,omitempty"`
}

// RegexReplaceSpec is the canonical rewrite rule.
type RegexReplaceSpec struct {
	Pattern string `json:"pattern" jsonschema:"required"`
	To      string `json:"to,omitempty"`
}

// OnEmptySpec is the canonical unset-parameter policy.
type OnEmptySpec struct {
	Assign string `json:"assign,omitempty"`
	Fail   *bool  `json:"fail,omitempty"`
	Warn   *bool  `json:"warn,omitempty"`
}

// StageSpec is the canonical stage declaration.
type StageSpec struct {
	Name     string       `json:"name" jsonschema:"required"`
	Parallel bool         `json:"parallel,omitempty"`
	Actions  []ActionSpec `json:"actions" jsonschema:"required,minItems=1"`
}

// ActionSpec is the canonical action declaration.
type ActionSpec struct {
	Action         string `json:"action" jsonschema:"required"`
	Node           any    `json:"node,omitempty"`
	BeforeMessage  string `json:"before_message,omitempty"`
	AfterMessage   string `json:"after_message,omitempty"`
	SuccessMessage string `json:"success_message,omitempty"`
	FailMessage    string `json:"fail_message,omitempty"`
	IgnoreFail     bool   `json:"ignore_fail,omitempty"`
	StopOnFail     bool   `json:"stop_on_fail,omitempty"`
}

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from
// the canonical pipeline struct using invopop/jsonschema.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&PipelineSpec{})
	s.ID = "https://github.com/ormasoftchile/conveyor/schemas/pipeline-v0.json"
	s.Title = "Conveyor Pipeline v0"
	s.Description = "Schema for conveyor pipeline YAML documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}

// Lint validates the raw document against the generated JSON Schema and
// reports every mismatch as a semantic-phase warning.
func Lint(doc *Document) []*ValidationError {
	data, err := json.Marshal(doc.Raw)
	if err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("marshal for schema validation: %v", err),
			Severity: "warning",
		}}
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("generate schema: %v", err),
			Severity: "warning",
		}}
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("unmarshal schema: %v", err),
			Severity: "warning",
		}}
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("pipeline-v0.json", schemaDoc); err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("add schema resource: %v", err),
			Severity: "warning",
		}}
	}
	sch, err := c.Compile("pipeline-v0.json")
	if err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("compile schema: %v", err),
			Severity: "warning",
		}}
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return []*ValidationError{{
			Phase:    "semantic",
			Message:  fmt.Sprintf("unmarshal document: %v", err),
			Severity: "warning",
		}}
	}

	if err := sch.Validate(instance); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "warning",
				})
			}
		} else {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Message:  err.Error(),
				Severity: "warning",
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}
