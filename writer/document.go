package writer

import (
	"strings"

	"github.com/Gobd/zodgen/ir"
	"github.com/Gobd/zodgen/transform"
)

// locations is the fixed order of parameter groups.
var locations = []ir.Location{ir.InPath, ir.InQuery, ir.InHeader, ir.InCookie}

// ParameterGroup is the validator of every parameter in one location.
type ParameterGroup struct {
	In     ir.Location
	Schema string
}

// ResponseFragment is the validator of one declared response body.
type ResponseFragment struct {
	Status string
	Schema string
}

// OperationFragments holds the validators of one operation.
type OperationFragments struct {
	ID         string
	Method     string
	Path       string
	Parameters []ParameterGroup
	// Body is empty when the operation takes no body.
	Body      string
	Responses []ResponseFragment
}

// Operation renders the validators of op. Parameters are grouped into one
// object per location; a response without content validates as void.
func (w *Writer) Operation(op *ir.Operation) (*OperationFragments, error) {
	return w.operation(op, 0)
}

func (w *Writer) operation(op *ir.Operation, level int) (*OperationFragments, error) {
	e := w.emitter(op.ID)
	out := &OperationFragments{ID: op.ID, Method: op.Method, Path: op.Path}
	for _, loc := range locations {
		params := op.ParametersIn(loc)
		if len(params) == 0 {
			continue
		}
		var b strings.Builder
		b.WriteString("z.object({\n")
		for _, p := range params {
			v, err := e.expr(p.Schema, ir.JoinPath("/parameters", escape(p.Name)), level+1, !p.Required)
			if err != nil {
				return nil, err
			}
			b.WriteString(e.pad(level+1) + transform.PropertyKey(p.Name) + ": " + v + ",\n")
		}
		b.WriteString(e.pad(level) + "})")
		out.Parameters = append(out.Parameters, ParameterGroup{In: loc, Schema: b.String()})
	}
	if body := op.Body; body != nil {
		v := "z.unknown()"
		if body.Schema != nil {
			var err error
			if v, err = e.expr(body.Schema, "/requestBody", level, false); err != nil {
				return nil, err
			}
		}
		if !body.Required {
			v += ".optional()"
		}
		out.Body = v
	}
	for _, r := range op.Responses {
		var v string
		switch {
		case r.Schema != nil:
			var err error
			if v, err = e.expr(r.Schema, ir.JoinPath("/responses", escape(r.Status)), level, false); err != nil {
				return nil, err
			}
		case r.ContentType != "":
			v = "z.unknown()"
		default:
			v = "z.void()"
		}
		out.Responses = append(out.Responses, ResponseFragment{Status: r.Status, Schema: v})
	}
	return out, nil
}

// Document emits a whole module: the zod import, then the type and const of
// every component in dependency order, then the endpoints table when
// enabled. Components come from the Writer's registry.
func (w *Writer) Document(doc *ir.Document) (string, error) {
	if err := w.opts.Validate(); err != nil {
		return "", err
	}
	order := w.reg.Names()
	if w.graph != nil {
		order = w.graph.Order
	}
	var b strings.Builder
	b.WriteString("import { z } from \"zod\";\n")
	for _, name := range order {
		t, err := w.TypeDecl(name)
		if err != nil {
			return "", err
		}
		c, err := w.Component(name)
		if err != nil {
			return "", err
		}
		b.WriteString("\n")
		b.WriteString(t)
		b.WriteString(c)
	}
	if w.opts.Endpoints && doc != nil && len(doc.Operations) > 0 {
		table, err := w.endpoints(doc.Operations)
		if err != nil {
			return "", err
		}
		b.WriteString("\n")
		b.WriteString(table)
	}
	return b.String(), nil
}

func (w *Writer) endpoints(ops []*ir.Operation) (string, error) {
	e := w.emitter("")
	var b strings.Builder
	b.WriteString("export const endpoints = [\n")
	for _, op := range ops {
		f, err := w.operation(op, 3)
		if err != nil {
			return "", err
		}
		b.WriteString(e.pad(1) + "{\n")
		b.WriteString(e.pad(2) + "id: " + quote(f.ID) + ",\n")
		b.WriteString(e.pad(2) + "method: " + quote(strings.ToLower(f.Method)) + ",\n")
		b.WriteString(e.pad(2) + "path: " + quote(f.Path) + ",\n")
		if len(f.Parameters) > 0 {
			b.WriteString(e.pad(2) + "parameters: {\n")
			for _, g := range f.Parameters {
				b.WriteString(e.pad(3) + string(g.In) + ": " + g.Schema + ",\n")
			}
			b.WriteString(e.pad(2) + "},\n")
		}
		if f.Body != "" {
			b.WriteString(e.pad(2) + "body: " + reindent(f.Body, e.pad(1)) + ",\n")
		}
		if len(f.Responses) > 0 {
			b.WriteString(e.pad(2) + "responses: {\n")
			for _, r := range f.Responses {
				b.WriteString(e.pad(3) + transform.PropertyKey(r.Status) + ": " + r.Schema + ",\n")
			}
			b.WriteString(e.pad(2) + "},\n")
		}
		b.WriteString(e.pad(1) + "},\n")
	}
	b.WriteString("] as const;\n")
	return b.String(), nil
}

// reindent strips one prefix from every continuation line of s.
func reindent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n"+prefix, "\n")
}
