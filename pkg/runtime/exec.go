package runtime

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/ormasoftchile/conveyor/pkg/params"
	"github.com/ormasoftchile/conveyor/pkg/providers"
	"github.com/ormasoftchile/conveyor/pkg/schema"
)

// execVisitor performs the execute traversal: it invokes the opaque
// action callable, fires lifecycle messages, applies the per-action
// error policy and records outcomes. A dry run uses this same visitor
// with the dry-run invoker, so the status report looks as if executed.
type execVisitor struct {
	invoker providers.ActionInvoker
	broker  providers.NodeBroker
	log     hclog.Logger
	env     params.Environment
	status  *Status
	trace   *TraceWriter
	runID   string
}

func (e *execVisitor) parallel(stage schema.StageDecl) bool {
	p, _ := stage.Parallel()
	return p
}

func (e *execVisitor) enterStage(index int, raw any) bool {
	m, ok := raw.(schema.Mapping)
	if !ok {
		return false
	}
	stage := schema.StageDecl{Raw: m}
	if _, ok := stage.Actions(); !ok {
		return false
	}
	name, _ := stage.Name()
	parallel, _ := stage.Parallel()
	e.log.Info("entering stage", "stage", name, "parallel", parallel)
	return true
}

func (e *execVisitor) action(ctx context.Context, key actionKey, _ schema.StageDecl, raw any) (bool, error) {
	m, ok := raw.(schema.Mapping)
	if !ok {
		e.record(key, key.StageName, StateFail, "")
		return false, nil
	}
	a := schema.ActionDecl{Raw: m}

	ref, ok := a.Ref()
	if !ok {
		e.record(key, key.StageName, StateFail, "")
		return false, nil
	}
	displayName := key.StageName + ": " + ref

	// label takes priority over name; absence of both means any host
	nodeRaw, nodePresent := a.Node()
	sel, _ := schema.ParseNodeSelector(nodeRaw, nodePresent, "")
	node, err := e.broker.Acquire(sel)

	if msg := a.Message(schema.KeyBeforeMessage); !schema.IsBlank(msg) {
		e.log.Info(msg, "action", ref)
	}

	var result providers.ActionResult
	if err != nil {
		result = providers.ActionResult{Description: "acquire node: " + err.Error()}
	} else {
		e.log.Debug("invoking action", "action", ref, "node", node)
		result = e.invoker.Invoke(ctx, ref, sel, e.env)
	}

	if msg := a.Message(schema.KeyAfterMessage); !schema.IsBlank(msg) {
		e.log.Info(msg, "action", ref)
	}
	if result.OK {
		if msg := a.Message(schema.KeySuccessMessage); !schema.IsBlank(msg) {
			e.log.Info(msg, "action", ref)
		}
	} else {
		if msg := a.Message(schema.KeyFailMessage); !schema.IsBlank(msg) {
			e.log.Error(msg, "action", ref, "reason", result.Description)
		} else {
			e.log.Error("action failed", "action", ref, "reason", result.Description)
		}
	}

	reported := result.OK
	if !result.OK && a.IgnoreFail() {
		e.log.Warn("action failed but failure is ignored", "action", ref)
		reported = true
	}

	state := StateFail
	if reported {
		state = StateOK
	}
	e.record(key, displayName, state, result.Link)

	// the reported (possibly overridden) outcome drives both the
	// aggregate verdict and the abort decision
	if !reported && a.StopOnFail() {
		return false, &AbortError{Stage: key.StageName, Action: ref, Reason: result.Description}
	}
	return reported, nil
}

func (e *execVisitor) record(key actionKey, displayName string, state OutcomeState, link string) {
	outcome := &ActionOutcome{
		Key:         key.String(),
		DisplayName: displayName,
		State:       state,
		Link:        link,
	}
	e.status.Record(outcome)
	if e.trace != nil {
		if err := e.trace.Write(e.runID, outcome); err != nil {
			e.log.Warn("failed to write trace event", "error", err)
		}
	}
}
