// Package params reconciles, enforces and rewrites the pipeline
// parameter environment before the stage walker runs.
package params

import (
	"strings"

	"github.com/ormasoftchile/conveyor/pkg/schema"
)

// Environment is the resolved parameter set for one pipeline run. It is
// owned by the caller and passed by reference through the whole call
// graph; the enforcer and the regex rewriter mutate it in place.
// Mutating it from actions inside a parallel stage races with siblings;
// restrict environment mutation to the pre-stage parameter processing.
type Environment map[string]string

// IsSet reports whether name has a non-blank value.
func (e Environment) IsSet(name string) bool {
	v, ok := e[name]
	return ok && !schema.IsBlank(v)
}

// Clone returns a shallow copy.
func (e Environment) Clone() Environment {
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Resolve evaluates an assignment value against the environment: a
// $NAME or ${NAME} reference yields that variable's current value,
// anything else is a literal. source describes where the value came
// from, for diagnostics.
func (e Environment) Resolve(assign string) (value string, source string) {
	if ref, isRef := schema.StripReference(assign); isRef {
		return e[ref], "variable " + ref
	}
	return assign, "literal"
}

// Strings flattens the environment into KEY=VALUE pairs for process
// execution, sorted order not guaranteed.
func (e Environment) Strings() []string {
	out := make([]string, 0, len(e))
	for k, v := range e {
		out = append(out, k+"="+v)
	}
	return out
}

// FromPairs builds an environment from KEY=VALUE strings, ignoring
// malformed entries.
func FromPairs(pairs []string) Environment {
	env := make(Environment, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			continue
		}
		env[k] = v
	}
	return env
}
