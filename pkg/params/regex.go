package params

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/ormasoftchile/conveyor/pkg/schema"
)

// ApplyRegexRules runs match-validation and pattern rewriting over the
// values the enforcer already resolved. Validation and rewriting for
// one declaration are independent; both may apply to the same item.
// The verdict is the AND across every applied rule.
func ApplyRegexRules(decls []schema.ParamDecl, env Environment, log hclog.Logger) (bool, []*schema.ValidationError) {
	passed := true
	var errs []*schema.ValidationError

	for i, d := range decls {
		name, ok := d.Name()
		if !ok || !schema.ValidName(name) {
			continue
		}
		path := fmt.Sprintf("parameters[%d]", i)

		if raw, present := d.Regex(); present {
			ok, es := validateMatch(name, path, raw, env)
			passed = ok && passed
			errs = append(errs, es...)
		}

		if raw, present := d.RegexReplace(); present {
			ok, es := rewriteValue(name, path, raw, env, log)
			passed = ok && passed
			errs = append(errs, es...)
		}
	}

	return passed, errs
}

// validateMatch checks a defined, non-blank value against the declared
// pattern. A sequence-valued pattern is order-sensitive concatenation
// of its items, not alternation. The whole value must match.
func validateMatch(name, path string, raw any, env Environment) (bool, []*schema.ValidationError) {
	pattern, ok := patternString(raw)
	if !ok {
		return false, []*schema.ValidationError{{
			Phase: "domain", Path: path + ".regex", Severity: "error",
			Message: fmt.Sprintf("regex for %q must be a string or a sequence of strings, got %s", name, schema.TypeName(raw)),
		}}
	}
	if !env.IsSet(name) {
		return true, nil
	}

	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return false, []*schema.ValidationError{{
			Phase: "domain", Path: path + ".regex", Severity: "error",
			Message: fmt.Sprintf("invalid regex %q for %q: %v", pattern, name, err),
		}}
	}
	if !re.MatchString(env[name]) {
		return false, []*schema.ValidationError{{
			Phase: "domain", Path: path + ".regex", Severity: "error",
			Message: fmt.Sprintf("value of %q does not match %q", name, pattern),
		}}
	}
	return true, nil
}

// rewriteValue applies a regex_replace rule to the active value in
// place. An absent to replaces with the empty string (removal) and
// warns; a non-string pattern or to is an error and the replacement is
// skipped.
func rewriteValue(name, path string, rule schema.Mapping, env Environment, log hclog.Logger) (bool, []*schema.ValidationError) {
	var errs []*schema.ValidationError

	pattern, ok := schema.AsString(rule["pattern"])
	if !ok {
		return false, []*schema.ValidationError{{
			Phase: "domain", Path: path + ".regex_replace.pattern", Severity: "error",
			Message: fmt.Sprintf("regex_replace pattern for %q must be a string, got %s", name, schema.TypeName(rule["pattern"])),
		}}
	}

	to := ""
	if rawTo, present := rule["to"]; present {
		s, ok := schema.AsString(rawTo)
		if !ok {
			return false, []*schema.ValidationError{{
				Phase: "domain", Path: path + ".regex_replace.to", Severity: "error",
				Message: fmt.Sprintf("regex_replace to for %q must be a string, got %s", name, schema.TypeName(rawTo)),
			}}
		}
		to = s
	} else {
		msg := fmt.Sprintf("regex_replace for %q has no to value; matches will be removed", name)
		log.Warn(msg, "parameter", name)
		errs = append(errs, &schema.ValidationError{
			Phase: "domain", Path: path + ".regex_replace", Severity: "warning", Message: msg,
		})
	}

	if _, present := env[name]; !present {
		return true, errs
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		errs = append(errs, &schema.ValidationError{
			Phase: "domain", Path: path + ".regex_replace.pattern", Severity: "error",
			Message: fmt.Sprintf("invalid regex_replace pattern %q for %q: %v", pattern, name, err),
		})
		return false, errs
	}

	before := env[name]
	env[name] = re.ReplaceAllString(before, to)
	if before != env[name] {
		log.Info("rewrote parameter value", "parameter", name, "pattern", pattern)
	}
	return true, errs
}

// patternString flattens a scalar or sequence-valued regex rule into
// one pattern string.
func patternString(raw any) (string, bool) {
	if seq, ok := raw.(schema.Sequence); ok {
		var b strings.Builder
		for _, item := range seq {
			s, ok := schema.AsString(item)
			if !ok {
				return "", false
			}
			b.WriteString(s)
		}
		return b.String(), true
	}
	return schema.AsString(raw)
}
