package runtime

import (
	"context"
	"fmt"

	"github.com/ormasoftchile/conveyor/pkg/schema"
)

// checkVisitor performs the structural validation traversal. It has no
// side effects and is idempotent: running it twice over an unchanged
// document yields identical findings.
type checkVisitor struct {
	errs []*schema.ValidationError
}

func (c *checkVisitor) parallel(schema.StageDecl) bool {
	// structural checks never fan out
	return false
}

func (c *checkVisitor) enterStage(index int, raw any) bool {
	path := fmt.Sprintf("stages[%d]", index)

	m, ok := raw.(schema.Mapping)
	if !ok {
		c.errorf(path, "stage must be a mapping, got %s", schema.TypeName(raw))
		return false
	}
	stage := schema.StageDecl{Raw: m}

	if _, ok := stage.Name(); !ok {
		c.errorf(path+".name", "stage name is missing or not a string")
	}
	if _, ok := stage.Parallel(); !ok {
		c.errorf(path+".parallel", "parallel must be a boolean, got %s", schema.TypeName(m["parallel"]))
	}

	actions, ok := stage.Actions()
	if !ok {
		c.errorf(path+".actions", "stage requires an actions sequence")
		return false
	}
	if len(actions) == 0 {
		c.errorf(path+".actions", "stage has no actions")
		return false
	}
	return true
}

func (c *checkVisitor) action(_ context.Context, key actionKey, _ schema.StageDecl, raw any) (bool, error) {
	path := fmt.Sprintf("stages[%d].actions[%d]", key.Stage, key.Action)
	before := len(c.errs)

	m, ok := raw.(schema.Mapping)
	if !ok {
		c.errorf(path, "action must be a mapping, got %s", schema.TypeName(raw))
		return false, nil
	}
	a := schema.ActionDecl{Raw: m}

	if _, ok := a.Ref(); !ok {
		c.errorf(path+".action", "action reference is missing or not a string")
	}

	nodeRaw, nodePresent := a.Node()
	_, nodeErrs := schema.ParseNodeSelector(nodeRaw, nodePresent, path)
	c.errs = append(c.errs, nodeErrs...)

	for _, k := range schema.MessageKeys {
		v, present := m[k]
		if !present {
			continue
		}
		s, ok := schema.AsString(v)
		switch {
		case !ok:
			c.errorf(path+"."+k, "%s must be a string, got %s", k, schema.TypeName(v))
		case schema.IsBlank(s):
			c.warnf(path+"."+k, "%s is blank; remove the key", k)
		}
	}

	for _, k := range schema.BoolKeys {
		v, present := m[k]
		if !present {
			continue
		}
		if _, ok := schema.AsBool(v); !ok {
			c.errorf(path+"."+k, "%s must be a boolean, got %s", k, schema.TypeName(v))
		}
	}

	return !schema.HasErrors(c.errs[before:]), nil
}

func (c *checkVisitor) errorf(path, format string, args ...any) {
	c.errs = append(c.errs, &schema.ValidationError{
		Phase: "domain", Path: path, Severity: "error",
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *checkVisitor) warnf(path, format string, args ...any) {
	c.errs = append(c.errs, &schema.ValidationError{
		Phase: "domain", Path: path, Severity: "warning",
		Message: fmt.Sprintf(format, args...),
	})
}
