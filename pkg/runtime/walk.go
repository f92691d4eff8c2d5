package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/ormasoftchile/conveyor/pkg/schema"
)

// actionKey identifies one action by its position in the stage tree.
// Keys are stable across runs of an unchanged document.
type actionKey struct {
	Stage     int
	Action    int
	StageName string
}

func (k actionKey) String() string {
	return fmt.Sprintf("stage-%d-action-%d", k.Stage, k.Action)
}

// stageVisitor receives stages and actions in declaration order. The
// check and execute visitors share this single traversal-order
// specification instead of branching on a mode flag.
type stageVisitor interface {
	// enterStage inspects one raw stage before its actions. Returning
	// false marks the stage unusable and skips its actions.
	enterStage(index int, raw any) bool

	// action handles one raw action. ok=false counts against the
	// aggregate verdict; a non-nil abort terminates the whole walk.
	action(ctx context.Context, key actionKey, stage schema.StageDecl, raw any) (ok bool, abort error)

	// parallel reports whether this stage's actions fan out
	// concurrently.
	parallel(stage schema.StageDecl) bool
}

// walkStages visits every stage and action and combines the per-node
// verdicts with logical AND. An ordinary failed action never stops the
// traversal; only an abort from the visitor does. Parallel stages
// dispatch all actions concurrently and join before the abort check,
// so in-flight siblings always finish before an abort is observed.
func walkStages(ctx context.Context, doc *schema.Document, v stageVisitor) (bool, error) {
	stages, ok := doc.Stages()
	all := ok

	for i, rawStage := range stages {
		if !v.enterStage(i, rawStage) {
			all = false
			continue
		}
		stage := schema.StageDecl{Raw: rawStage.(schema.Mapping)}
		stageName, _ := stage.Name()
		actions, ok := stage.Actions()
		if !ok {
			all = false
			continue
		}

		if v.parallel(stage) {
			results := make([]bool, len(actions))
			aborts := make([]error, len(actions))
			var wg sync.WaitGroup
			for j, rawAction := range actions {
				wg.Add(1)
				go func(j int, raw any) {
					defer wg.Done()
					results[j], aborts[j] = v.action(ctx, actionKey{i, j, stageName}, stage, raw)
				}(j, rawAction)
			}
			wg.Wait()
			for j := range actions {
				all = all && results[j]
				if aborts[j] != nil {
					return false, aborts[j]
				}
			}
			continue
		}

		for j, rawAction := range actions {
			ok, abort := v.action(ctx, actionKey{i, j, stageName}, stage, rawAction)
			all = all && ok
			if abort != nil {
				return false, abort
			}
		}
	}

	return all, nil
}
