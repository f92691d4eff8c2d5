package schema

import (
	"fmt"
)

// ValidationError represents a single validation finding with location
// context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g., "stages[0].actions[1]")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// errorAt is shorthand for a domain-phase error finding.
func errorAt(path, format string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    "domain",
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Severity: "error",
	}
}

// warningAt is shorthand for a domain-phase warning finding.
func warningAt(path, format string, args ...any) *ValidationError {
	return &ValidationError{
		Phase:    "domain",
		Path:     path,
		Message:  fmt.Sprintf(format, args...),
		Severity: "warning",
	}
}

// HasErrors reports whether any finding is error-severity. Warnings
// never flip a verdict.
func HasErrors(errs []*ValidationError) bool {
	for _, e := range errs {
		if e.Severity == "error" {
			return true
		}
	}
	return false
}

// ValidateDocument runs every declaration-level rule over the whole
// document and aggregates the findings: parameter rules for each
// declaration plus shape checks on the two top-level sequences. Stage
// and action structure is the walker's check pass, not this function.
func ValidateDocument(doc *Document) []*ValidationError {
	var errs []*ValidationError

	seq, ok := doc.Parameters()
	if !ok {
		errs = append(errs, errorAt("parameters", "parameters must be a sequence, got %s", TypeName(doc.Raw["parameters"])))
	} else {
		for i, item := range seq {
			path := fmt.Sprintf("parameters[%d]", i)
			m, ok := item.(Mapping)
			if !ok {
				errs = append(errs, errorAt(path, "parameter declaration must be a mapping, got %s", TypeName(item)))
				continue
			}
			errs = append(errs, ValidateParameter(ParamDecl{Raw: m}, path)...)
		}
	}

	if _, ok := doc.Stages(); !ok {
		errs = append(errs, errorAt("stages", "stages must be a sequence, got %s", TypeName(doc.Raw["stages"])))
	}

	return errs
}

// ValidateParameter checks one declaration's internal consistency. Each
// rule gates the verdict independently; the findings are advisory text
// and the externally observable contract is the error/no-error verdict,
// aggregated by callers with logical AND across all declarations.
func ValidateParameter(d ParamDecl, path string) []*ValidationError {
	var errs []*ValidationError

	// Rule 1: name presence and identifier shape.
	name, nameOK := d.Name()
	switch {
	case !nameOK:
		errs = append(errs, errorAt(path+".name", "parameter name is missing or not a string"))
	case !ValidName(name):
		errs = append(errs, errorAt(path+".name", "parameter name %q is not a valid identifier ([A-Za-z_][A-Za-z0-9_]*)", name))
	}

	// Rule 2: an on_empty assignment that references a variable must
	// reference a valid name once the sigil and delimiters are stripped.
	if onEmpty, ok := d.OnEmpty(); ok {
		if assignRaw, present := onEmpty["assign"]; present {
			assign, ok := AsString(assignRaw)
			if !ok {
				errs = append(errs, errorAt(path+".on_empty.assign", "assign must be a string, got %s", TypeName(assignRaw)))
			} else if ref, isRef := StripReference(assign); isRef && !ValidName(ref) {
				errs = append(errs, errorAt(path+".on_empty.assign", "assign references %q which is not a valid variable name", ref))
			}
		}
	}

	kind := d.Kind()
	choicesRaw, choicesPresent := d.ChoicesRaw()
	def, defPresent := d.Default()

	// Rule 3: explicit kind consistency.
	switch kind {
	case KindChoice:
		// the builder refuses empty or non-convertible choices, so the
		// validator must reject them here or a "valid" declaration could
		// never be built
		switch {
		case !choicesPresent:
			errs = append(errs, errorAt(path, "kind choice requires a choices sequence"))
		case IsSequence(choicesRaw):
			if choices, ok := AsStringSlice(choicesRaw); !ok {
				errs = append(errs, errorAt(path+".choices", "choices items must be string-convertible"))
			} else if len(choices) == 0 {
				errs = append(errs, errorAt(path, "kind choice requires a non-empty choices sequence"))
			}
		}
	case KindBoolean:
		if defPresent && !IsBoolean(def) {
			msg := fmt.Sprintf("kind boolean requires a boolean default, got %s", TypeName(def))
			if _, convertible := AsBool(def); convertible {
				msg += " (the value is boolean-convertible, but must be declared as an actual boolean)"
			}
			errs = append(errs, errorAt(path+".default", "%s", msg))
		}
	case KindUnset:
		// Rule 4: kind must be stated explicitly even when inferable.
		if implied, key := d.ImpliedKind(); implied != KindUnset {
			errs = append(errs, errorAt(path, "kind is not declared; the %s key implies kind %s; declare it explicitly", key, implied))
		} else {
			msg := "kind is not declared and cannot be inferred"
			if _, ok := AsString(def); defPresent && ok {
				msg += "; the default is a string; declare kind password, string or text"
			}
			errs = append(errs, errorAt(path, "%s", msg))
		}
	}

	// Rule 5: choices and default are mutually exclusive.
	if choicesPresent && defPresent {
		errs = append(errs, errorAt(path, "choices and default are mutually exclusive"))
	}

	// Rule 6: choices must be a sequence.
	if choicesPresent && !IsSequence(choicesRaw) {
		errs = append(errs, errorAt(path+".choices", "choices must be a sequence, got %s", TypeName(choicesRaw)))
	}

	return errs
}

// StripReference detects a variable-reference assignment value. A
// string starting with the $ sigil references another variable; the
// returned name has the sigil and any ${...} delimiters stripped.
// Non-sigil strings are literals.
func StripReference(s string) (name string, isRef bool) {
	if len(s) < 2 || s[0] != '$' {
		return "", false
	}
	ref := s[1:]
	if len(ref) >= 2 && ref[0] == '{' && ref[len(ref)-1] == '}' {
		ref = ref[1 : len(ref)-1]
	}
	return ref, true
}
