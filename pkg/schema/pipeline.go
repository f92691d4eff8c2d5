package schema

// Message keys an action may carry. Values must be non-blank strings.
const (
	KeyBeforeMessage  = "before_message"
	KeyAfterMessage   = "after_message"
	KeySuccessMessage = "success_message"
	KeyFailMessage    = "fail_message"
)

// MessageKeys lists the string-typed action keys in firing order.
var MessageKeys = []string{KeyBeforeMessage, KeyAfterMessage, KeySuccessMessage, KeyFailMessage}

// BoolKeys lists the boolean-typed action keys.
var BoolKeys = []string{"ignore_fail", "stop_on_fail"}

// StageDecl is a read-only view over one raw stage mapping.
type StageDecl struct {
	Raw Mapping
}

// Name returns the stage display name if it is string-convertible.
func (s StageDecl) Name() (string, bool) {
	v, present := s.Raw["name"]
	if !present {
		return "", false
	}
	return AsString(v)
}

// Parallel reports the stage's fan-out flag. ok is false when the key
// is present but not boolean-convertible; an absent key defaults to
// sequential with ok=true.
func (s StageDecl) Parallel() (value bool, ok bool) {
	v, present := s.Raw["parallel"]
	if !present {
		return false, true
	}
	return AsBool(v)
}

// Actions returns the raw actions sequence. ok is false when the key is
// absent or not a sequence; a stage without actions is malformed.
func (s StageDecl) Actions() (Sequence, bool) {
	v, present := s.Raw["actions"]
	if !present {
		return nil, false
	}
	seq, ok := v.(Sequence)
	return seq, ok
}

// ActionDecl is a read-only view over one raw action mapping.
type ActionDecl struct {
	Raw Mapping
}

// Ref returns the opaque action reference.
func (a ActionDecl) Ref() (string, bool) {
	v, present := a.Raw["action"]
	if !present {
		return "", false
	}
	return AsString(v)
}

// Node returns the raw node selector value and whether it is declared.
func (a ActionDecl) Node() (any, bool) {
	v, present := a.Raw["node"]
	return v, present
}

// Message returns the value of one message key, or "" when absent or
// not string-convertible.
func (a ActionDecl) Message(key string) string {
	s, _ := AsString(a.Raw[key])
	return s
}

// IgnoreFail reports whether a real failure is reported as success.
func (a ActionDecl) IgnoreFail() bool {
	b, _ := AsBool(a.Raw["ignore_fail"])
	return b
}

// StopOnFail reports whether a failure aborts the whole run.
func (a ActionDecl) StopOnFail() bool {
	b, _ := AsBool(a.Raw["stop_on_fail"])
	return b
}

// NodeSelector identifies the execution host criteria for an action.
// Exactly one of Name/Label is set, or Any is true.
type NodeSelector struct {
	Name    string `json:"name,omitempty"`
	Label   string `json:"label,omitempty"`
	Pattern bool   `json:"pattern,omitempty"`
	Any     bool   `json:"any,omitempty"`
}

// ParseNodeSelector converts a raw node value into a selector and
// reports structural findings. A string selects by name, null or
// absence selects any host, and a mapping selects by name or label;
// label wins when both are erroneously present. A node value of any
// other type is an error and the key is ignored.
func ParseNodeSelector(v any, present bool, path string) (NodeSelector, []*ValidationError) {
	if !present || v == nil {
		return NodeSelector{Any: true}, nil
	}

	if s, ok := AsString(v); ok {
		return NodeSelector{Name: s}, nil
	}

	m, ok := v.(Mapping)
	if !ok {
		return NodeSelector{Any: true}, []*ValidationError{
			errorAt(path+".node", "node must be a string, null or mapping, got %s; key ignored", TypeName(v)),
		}
	}

	var errs []*ValidationError
	name, _ := AsString(m["name"])
	label, _ := AsString(m["label"])

	pattern := false
	if rawPattern, patternPresent := m["pattern"]; patternPresent {
		b, ok := AsBool(rawPattern)
		if !ok {
			errs = append(errs, warningAt(path+".node.pattern", "pattern must be a boolean, got %s; key removed", TypeName(rawPattern)))
		} else {
			pattern = b
		}
	}

	switch {
	case label != "":
		if name != "" {
			errs = append(errs, warningAt(path+".node", "node sets both name and label; label takes priority and name %q is ignored", name))
		}
		return NodeSelector{Label: label, Pattern: pattern}, errs
	case name != "":
		return NodeSelector{Name: name}, errs
	default:
		return NodeSelector{Any: true}, errs
	}
}
