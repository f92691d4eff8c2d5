// Package schema defines the pipeline document model and provides
// loading, parameter schema building and validation.
package schema

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a parsed pipeline configuration document. The underlying
// representation stays a generic mapping: every downstream rule in this
// module operates on raw, loosely typed values and reports precise
// diagnostics instead of failing the decode.
type Document struct {
	Raw Mapping
}

// LoadFile reads and parses a pipeline YAML file.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pipeline: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a pipeline document from an io.Reader. The top level must
// be a mapping; anything else is a fatal input error.
func Load(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode pipeline: %w", err)
	}
	m, ok := raw.(Mapping)
	if !ok {
		return nil, fmt.Errorf("pipeline document must be a mapping, got %s", TypeName(raw))
	}
	return &Document{Raw: m}, nil
}

// Parameters returns the raw parameters sequence. ok is false when the
// key is present but not a sequence; an absent key yields an empty
// sequence with ok=true.
func (d *Document) Parameters() (Sequence, bool) {
	v, present := d.Raw["parameters"]
	if !present {
		return nil, true
	}
	seq, ok := v.(Sequence)
	return seq, ok
}

// Stages returns the raw stages sequence, with the same ok semantics as
// Parameters.
func (d *Document) Stages() (Sequence, bool) {
	v, present := d.Raw["stages"]
	if !present {
		return nil, true
	}
	seq, ok := v.(Sequence)
	return seq, ok
}

// ParamDecls returns a declaration view for every mapping-shaped item
// of the parameters sequence. Non-mapping items are dropped here; the
// document validator reports them.
func (d *Document) ParamDecls() []ParamDecl {
	seq, ok := d.Parameters()
	if !ok {
		return nil
	}
	decls := make([]ParamDecl, 0, len(seq))
	for _, item := range seq {
		if m, ok := item.(Mapping); ok {
			decls = append(decls, ParamDecl{Raw: m})
		}
	}
	return decls
}
