package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/ormasoftchile/conveyor/pkg/params"
	"github.com/ormasoftchile/conveyor/pkg/providers"
	"github.com/ormasoftchile/conveyor/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Engine walks the stage/action tree of a pipeline document. The same
// engine serves both entry points: Validate runs the check traversal,
// Run performs the full parameter processing followed by the execute
// traversal.
type Engine struct {
	Invoker providers.ActionInvoker
	Broker  providers.NodeBroker
	Store   params.Store // nil disables reconciliation
	Log     hclog.Logger

	// Pipeline names the document for run artifacts.
	Pipeline string
	// BaseDir is the run artifacts root; empty disables artifacts.
	BaseDir string
}

// New creates an engine with the default local collaborators.
func New(log hclog.Logger) *Engine {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &Engine{
		Invoker: &providers.CommandInvoker{},
		Broker:  providers.LocalBroker{},
		Log:     log,
	}
}

// Validate runs the whole check pass over a document: declaration-level
// parameter rules, the advisory schema lint and the structural stage/
// action traversal. No side effects; findings aggregate so one pass
// reports every problem found, and warnings never flip the verdict.
func (e *Engine) Validate(doc *schema.Document) (bool, []*schema.ValidationError) {
	errs := schema.ValidateDocument(doc)
	errs = append(errs, schema.Lint(doc)...)

	cv := &checkVisitor{}
	walkStages(context.Background(), doc, cv)
	errs = append(errs, cv.errs...)

	return !schema.HasErrors(errs), errs
}

// Execute walks the stage tree in execute mode against an already
// resolved environment. env is shared and mutated in place by actions
// that write through it; the returned status holds one outcome per
// action. The returned error is nil, an *AbortError, or an artifacts
// write failure; ordinary action failures only lower the verdict.
func (e *Engine) Execute(ctx context.Context, doc *schema.Document, env params.Environment, dryRun bool) (*Status, bool, error) {
	invoker := e.Invoker
	if dryRun {
		invoker = providers.DryRunInvoker{}
	}

	runID := NewRunID()
	status := NewStatus()

	var trace *TraceWriter
	baseDir := ""
	if e.BaseDir != "" {
		baseDir = filepath.Join(e.BaseDir, "runs", runID)
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			return status, false, fmt.Errorf("create run directory: %w", err)
		}
		var err error
		trace, err = NewTraceWriter(filepath.Join(baseDir, "trace.jsonl"))
		if err != nil {
			return status, false, err
		}
		defer trace.Close()
	}

	started := time.Now()
	ev := &execVisitor{
		invoker: invoker,
		broker:  e.Broker,
		log:     e.Log,
		env:     env,
		status:  status,
		trace:   trace,
		runID:   runID,
	}
	allOK, abort := walkStages(ctx, doc, ev)

	if baseDir != "" {
		mode := ModeExecute
		if dryRun {
			mode = ModeDryRun
		}
		manifest := &RunManifest{
			RunID:       runID,
			Pipeline:    e.Pipeline,
			Mode:        mode,
			StartedAt:   started.UTC().Format(time.RFC3339),
			EndedAt:     time.Now().UTC().Format(time.RFC3339),
			AllPassed:   allOK && abort == nil,
			Summary:     status.Summary(),
			Environment: env.Clone(),
		}
		if err := writeManifest(baseDir, manifest); err != nil {
			e.Log.Warn("failed to write run manifest", "error", err)
		}
	}

	if abort != nil {
		return status, false, abort
	}
	return status, allOK, nil
}

// Run performs the complete control flow for one pipeline run:
// settings validation, parameter reconciliation, required-parameter
// enforcement, the regex stage, then the execute traversal. The status
// report is returned even when the run fails so callers can render it.
func (e *Engine) Run(ctx context.Context, doc *schema.Document, env params.Environment, dryRun bool) (*Status, error) {
	valid, errs := e.Validate(doc)
	e.logFindings(errs)
	if !valid {
		return nil, ErrSettings
	}

	decls := doc.ParamDecls()

	if e.Store != nil {
		rec := &params.Reconciler{Store: e.Store, Log: e.Log}
		if _, _, err := rec.Reconcile(decls, env, dryRun); err != nil {
			// ErrUpdateRequired is a clean halt, passed through as-is
			return nil, err
		}
	}

	satisfied, enforceErrs := params.EnforceRequired(decls, env, e.Log)
	regexOK, regexErrs := params.ApplyRegexRules(decls, env, e.Log)
	e.logFindings(append(enforceErrs, regexErrs...))

	var paramErr error
	if !satisfied {
		paramErr = ErrRequiredParams
	}
	if !regexOK {
		paramErr = errors.Join(paramErr, ErrParamFormat)
	}
	if paramErr != nil {
		return nil, paramErr
	}

	status, allOK, err := e.Execute(ctx, doc, env, dryRun)
	if err != nil {
		return status, err
	}
	if !allOK {
		return status, ErrStageFailure
	}
	return status, nil
}

// logFindings routes aggregated diagnostics to the engine logger.
func (e *Engine) logFindings(errs []*schema.ValidationError) {
	for _, err := range errs {
		switch err.Severity {
		case "error":
			e.Log.Error(err.Message, "phase", err.Phase, "path", err.Path)
		default:
			e.Log.Warn(err.Message, "phase", err.Phase, "path", err.Path)
		}
	}
}

// writeManifest writes run.yaml to the run artifacts directory.
func writeManifest(baseDir string, m *RunManifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(baseDir, "run.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}
