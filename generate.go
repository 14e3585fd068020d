package zodgen

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Gobd/zodgen/convert"
	"github.com/Gobd/zodgen/graph"
	"github.com/Gobd/zodgen/ir"
	"github.com/Gobd/zodgen/openapi"
	"github.com/Gobd/zodgen/transform"
	"github.com/Gobd/zodgen/writer"
)

// Result is the outcome of one run.
type Result struct {
	// Code is the generated TypeScript module.
	Code        string
	Document    *ir.Document
	Graph       *graph.Result
	Diagnostics graph.Diagnostics
}

// Generate loads, converts, orders, and writes the document cfg names.
// Any failure stops the run; there is no partial output.
func Generate(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	doc, err := load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return Compile(doc, cfg.Writer)
}

func load(ctx context.Context, cfg Config) (*ir.Document, error) {
	opts := convert.DocumentOptions{Workers: cfg.Workers}
	switch cfg.Format {
	case FormatJSONSchema:
		spec, err := openapi.LoadJSONSchema(cfg.Input)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", cfg.Input, err)
		}
		opts.Order = spec.Order
		doc, err := convert.JSONSchemaDocument(spec.Root, cfg.RootName, opts)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		return doc, nil
	default:
		spec, err := openapi.Load(ctx, cfg.Input, openapi.LoadOptions{
			Validate:     cfg.ValidateInput,
			ExternalRefs: cfg.ExternalRefs,
		})
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", cfg.Input, err)
		}
		opts.Order = spec.Order
		doc, err := convert.Document(spec.Doc, opts)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		return doc, nil
	}
}

// Compile checks the structure of every component of a converted document,
// orders the components and writes them.
func Compile(doc *ir.Document, opts writer.Options) (*Result, error) {
	if doc == nil || doc.Components == nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "document has no component registry")
	}
	for _, name := range doc.Components.Names() {
		n, _ := doc.Components.Lookup(name)
		if err := n.Validate(); err != nil {
			return nil, ir.Errorf(ir.ErrMalformed, name, "", "invalid node").Wrap(err)
		}
	}
	g, err := graph.Build(doc.Components)
	if err != nil {
		return nil, fmt.Errorf("graph: %w", err)
	}
	code, err := writer.New(opts, doc.Components, g).Document(doc)
	if err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	zap.S().Debugw("generated module",
		"components", doc.Components.Len(),
		"operations", len(doc.Operations),
		"circular", len(g.Circular),
		"bytes", len(code))
	return &Result{Code: code, Document: doc, Graph: g, Diagnostics: g.Diagnostics()}, nil
}

// IR renders the converted document as indented JSON, components in
// declaration order.
func (r *Result) IR() ([]byte, error) {
	type component struct {
		Name string   `json:"name"`
		Node *ir.Node `json:"node"`
	}
	reg := r.Document.Components
	out := struct {
		Components      []component              `json:"components"`
		Operations      []*ir.Operation          `json:"operations,omitempty"`
		SecuritySchemes []*ir.SecurityScheme     `json:"securitySchemes,omitempty"`
		Security        []ir.SecurityRequirement `json:"security,omitempty"`
	}{
		Operations:      r.Document.Operations,
		SecuritySchemes: r.Document.SecuritySchemes,
		Security:        r.Document.Security,
	}
	for _, name := range reg.Names() {
		n, _ := reg.Lookup(name)
		out.Components = append(out.Components, component{Name: name, Node: n})
	}
	return json.MarshalIndent(out, "", "  ")
}

// OutputPath returns where the module for cfg goes: cfg.Output when set,
// otherwise a .ts file next to the input named after it.
func OutputPath(cfg Config) string {
	if cfg.Output != "" {
		return cfg.Output
	}
	base := strings.TrimSuffix(filepath.Base(cfg.Input), filepath.Ext(cfg.Input))
	return filepath.Join(filepath.Dir(cfg.Input), transform.SafeFileName(base)+".ts")
}
