package schema

// ParamKind is the declared type of a pipeline parameter.
type ParamKind string

const (
	KindString   ParamKind = "string"
	KindText     ParamKind = "text"
	KindPassword ParamKind = "password"
	KindBoolean  ParamKind = "boolean"
	KindChoice   ParamKind = "choice"
	KindUnset    ParamKind = ""
)

// knownKinds are the kinds a declaration may state explicitly.
var knownKinds = map[ParamKind]bool{
	KindString:   true,
	KindText:     true,
	KindPassword: true,
	KindBoolean:  true,
	KindChoice:   true,
}

// Parameter is a concrete, validated parameter descriptor ready for the
// host's parameter-injection mechanism.
type Parameter struct {
	Name        string    `yaml:"name"                  json:"name"`
	Kind        ParamKind `yaml:"kind"                  json:"kind"`
	Default     string    `yaml:"default,omitempty"     json:"default,omitempty"`
	DefaultBool bool      `yaml:"default_bool,omitempty" json:"default_bool,omitempty"`
	Choices     []string  `yaml:"choices,omitempty"     json:"choices,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Trim        bool      `yaml:"trim,omitempty"        json:"trim,omitempty"`
}

// ParamDecl is a read-only view over one raw parameter declaration.
type ParamDecl struct {
	Raw Mapping
}

// Name returns the declared parameter name if it is string-convertible.
// Validity against the identifier shape is the caller's concern.
func (d ParamDecl) Name() (string, bool) {
	v, present := d.Raw["name"]
	if !present {
		return "", false
	}
	return AsString(v)
}

// Kind returns the explicitly declared kind, or KindUnset when the key
// is absent or names no known kind.
func (d ParamDecl) Kind() ParamKind {
	s, ok := AsString(d.Raw["kind"])
	if !ok {
		return KindUnset
	}
	k := ParamKind(s)
	if !knownKinds[k] {
		return KindUnset
	}
	return k
}

// Default returns the raw default value and whether it is declared.
func (d ParamDecl) Default() (any, bool) {
	v, present := d.Raw["default"]
	return v, present
}

// ChoicesRaw returns the raw choices value and whether it is declared.
func (d ParamDecl) ChoicesRaw() (any, bool) {
	v, present := d.Raw["choices"]
	return v, present
}

// Description returns the declared description or "".
func (d ParamDecl) Description() string {
	s, _ := AsString(d.Raw["description"])
	return s
}

// Trim reports whether whitespace trimming is requested.
func (d ParamDecl) Trim() bool {
	b, _ := AsBool(d.Raw["trim"])
	return b
}

// Required reports whether the parameter is marked required.
func (d ParamDecl) Required() bool {
	b, _ := AsBool(d.Raw["required"])
	return b
}

// Regex returns the raw regex rule (scalar or sequence) if declared.
func (d ParamDecl) Regex() (any, bool) {
	v, present := d.Raw["regex"]
	return v, present
}

// RegexReplace returns the regex_replace mapping if declared as one.
func (d ParamDecl) RegexReplace() (Mapping, bool) {
	v, present := d.Raw["regex_replace"]
	if !present {
		return nil, false
	}
	m, ok := v.(Mapping)
	return m, ok
}

// OnEmpty returns the on_empty mapping if declared as one.
func (d ParamDecl) OnEmpty() (Mapping, bool) {
	v, present := d.Raw["on_empty"]
	if !present {
		return nil, false
	}
	m, ok := v.(Mapping)
	return m, ok
}

// ImpliedKind returns the kind a declaration structurally implies when
// no explicit kind is stated, plus the key that triggered the
// inference: a non-empty choices sequence implies choice, a boolean
// default implies boolean. Anything else is unset.
func (d ParamDecl) ImpliedKind() (ParamKind, string) {
	if raw, present := d.ChoicesRaw(); present {
		if seq, ok := raw.(Sequence); ok && len(seq) > 0 {
			return KindChoice, "choices"
		}
	}
	if def, present := d.Default(); present && IsBoolean(def) {
		return KindBoolean, "default"
	}
	return KindUnset, ""
}

// BuildParameter converts one declaration into a concrete parameter
// descriptor. It emits nothing unless the name is present,
// string-convertible and identifier-valid, and the kind is declared or
// inferable; missing-kind errors are the validator's job, not this
// builder's.
func BuildParameter(d ParamDecl) (*Parameter, bool) {
	name, ok := d.Name()
	if !ok || !ValidName(name) {
		return nil, false
	}

	kind := d.Kind()
	if kind == KindUnset {
		kind, _ = d.ImpliedKind()
	}

	p := &Parameter{
		Name:        name,
		Kind:        kind,
		Description: d.Description(),
	}

	switch kind {
	case KindChoice:
		raw, _ := d.ChoicesRaw()
		choices, ok := AsStringSlice(raw)
		if !ok || len(choices) == 0 {
			return nil, false
		}
		p.Choices = choices
	case KindBoolean:
		if def, present := d.Default(); present {
			b, ok := AsBool(def)
			if !ok {
				return nil, false
			}
			p.DefaultBool = b
		}
	case KindString, KindText, KindPassword:
		if def, present := d.Default(); present {
			s, ok := AsString(def)
			if !ok {
				return nil, false
			}
			p.Default = s
		}
		// trim applies to plain strings only
		if kind == KindString {
			p.Trim = d.Trim()
		}
	default:
		return nil, false
	}

	return p, true
}
