package params

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/ormasoftchile/conveyor/pkg/schema"
)

// OnEmptyPolicy is the parsed on_empty declaration of one parameter.
// Absent flags default to fail without warning.
type OnEmptyPolicy struct {
	Assign    string
	HasAssign bool
	Fail      bool
	Warn      bool
}

// onEmptyPolicy reads the on_empty mapping of a declaration. declared
// is false when the declaration carries no policy at all.
func onEmptyPolicy(d schema.ParamDecl) (policy OnEmptyPolicy, declared bool) {
	policy = OnEmptyPolicy{Fail: true}
	m, ok := d.OnEmpty()
	if !ok {
		return policy, false
	}
	if raw, present := m["assign"]; present {
		if s, ok := schema.AsString(raw); ok {
			policy.Assign = s
			policy.HasAssign = true
		}
	}
	if raw, present := m["fail"]; present {
		if b, ok := schema.AsBool(raw); ok {
			policy.Fail = b
		}
	}
	if raw, present := m["warn"]; present {
		if b, ok := schema.AsBool(raw); ok {
			policy.Warn = b
		}
	}
	return policy, true
}

// EnforceRequired walks every declaration marked required and decides
// whether it is satisfied for the current run, applying the on_empty
// policy to unset parameters. Assignments write into env in place. The
// returned verdict is the AND across all required parameters.
func EnforceRequired(decls []schema.ParamDecl, env Environment, log hclog.Logger) (bool, []*schema.ValidationError) {
	satisfied := true
	var errs []*schema.ValidationError

	for i, d := range decls {
		if !d.Required() {
			continue
		}
		name, ok := d.Name()
		if !ok || !schema.ValidName(name) {
			// malformed declarations are the validator's problem
			continue
		}
		if env.IsSet(name) {
			continue
		}
		path := fmt.Sprintf("parameters[%d]", i)

		policy, declared := onEmptyPolicy(d)
		if !declared {
			log.Error("required parameter is not specified", "parameter", name)
			errs = append(errs, &schema.ValidationError{
				Phase: "domain", Path: path, Severity: "error",
				Message: fmt.Sprintf("required parameter %q is not specified", name),
			})
			satisfied = false
			continue
		}

		if policy.HasAssign {
			value, source := env.Resolve(policy.Assign)
			if !schema.IsBlank(value) {
				// a successful assignment satisfies the parameter
				// regardless of the fail/warn flags
				env[name] = value
				log.Info("assigned required parameter", "parameter", name, "source", source)
				continue
			}
			satisfied = applyOnEmptyVerdict(policy, name, path,
				fmt.Sprintf("required parameter %q is not specified and its assignment from %s is blank", name, source),
				log, &errs) && satisfied
			continue
		}

		satisfied = applyOnEmptyVerdict(policy, name, path,
			fmt.Sprintf("required parameter %q is not specified", name),
			log, &errs) && satisfied
	}

	return satisfied, errs
}

// applyOnEmptyVerdict logs and records an unsatisfiable required
// parameter per its declared flags. The result counts as a failure only
// when the policy says fail.
func applyOnEmptyVerdict(policy OnEmptyPolicy, name, path, msg string, log hclog.Logger, errs *[]*schema.ValidationError) bool {
	if policy.Warn {
		log.Warn(msg, "parameter", name)
		*errs = append(*errs, &schema.ValidationError{
			Phase: "domain", Path: path, Severity: "warning", Message: msg,
		})
	}
	if policy.Fail {
		log.Error(msg, "parameter", name)
		*errs = append(*errs, &schema.ValidationError{
			Phase: "domain", Path: path, Severity: "error", Message: msg,
		})
		return false
	}
	return true
}
