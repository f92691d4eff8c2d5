package params

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/ormasoftchile/conveyor/pkg/schema"
)

// ErrUpdateRequired signals that the reconciler injected a fresh
// parameter set into the host's parameter store and the current run
// must halt cleanly so the operator can re-invoke with the parameters
// visible. It is a control-flow exit, not a failure; callers check it
// with errors.Is.
var ErrUpdateRequired = errors.New("parameter set updated, re-run required")

// Store applies a freshly built parameter set to the host so future
// runs see it. Implementations live with the host glue; see
// providers.FileStore for the local one.
type Store interface {
	Apply(parameters []*schema.Parameter) error
}

// Reconciler compares the declared parameter set against the caller's
// currently active parameter mapping.
type Reconciler struct {
	Store Store
	Log   hclog.Logger
}

// Reconcile decides per declaration whether it is missing from the
// active set and aggregates into one update-required verdict. Items
// that do not resolve to a valid name or kind are skipped with a
// warning; never counted as missing; hard failure is the validator's
// job. When an update is required and dryRun does not suppress it, the
// rebuilt parameter set is applied to the store and ErrUpdateRequired
// is returned.
func (r *Reconciler) Reconcile(decls []schema.ParamDecl, active Environment, dryRun bool) (updateRequired bool, allValid bool, err error) {
	allValid = true

	for i, d := range decls {
		name, ok := d.Name()
		if !ok || !schema.ValidName(name) {
			r.Log.Warn("skipping parameter declaration with unresolvable name", "index", i)
			allValid = false
			continue
		}
		kind := d.Kind()
		if kind == schema.KindUnset {
			if implied, _ := d.ImpliedKind(); implied == schema.KindUnset {
				r.Log.Warn("skipping parameter declaration with unresolvable kind", "parameter", name)
				allValid = false
				continue
			}
		}
		if _, present := active[name]; !present {
			r.Log.Info("declared parameter missing from active set", "parameter", name)
			updateRequired = true
		}
	}

	if !updateRequired {
		return false, allValid, nil
	}
	if dryRun {
		r.Log.Info("parameter update required but suppressed by dry run")
		return true, allValid, nil
	}

	parameters := make([]*schema.Parameter, 0, len(decls))
	for _, d := range decls {
		if p, ok := schema.BuildParameter(d); ok {
			parameters = append(parameters, p)
		}
	}
	if err := r.Store.Apply(parameters); err != nil {
		return true, allValid, fmt.Errorf("apply parameter set: %w", err)
	}
	r.Log.Info("injected parameter set", "count", len(parameters))
	return true, allValid, ErrUpdateRequired
}
