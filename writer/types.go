package writer

import (
	"fmt"
	"strings"

	"github.com/Gobd/zodgen/ir"
	"github.com/Gobd/zodgen/transform"
)

// TypeDecl emits the TypeScript type declaration of the named component.
// It shares the component's identifier, so circular consts can be
// annotated with it.
func (w *Writer) TypeDecl(name string) (string, error) {
	n, ok := w.reg.Lookup(name)
	if !ok {
		return "", ir.Errorf(ir.ErrUnresolvedRef, name, "", "no component named %q", name)
	}
	t, err := w.emitter(name).typ(n, "", 0)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("export type %s = %s;\n", w.idents[name], t.text), nil
}

// tsType is a rendered type. union marks a top-level "|" that needs
// parentheses inside an intersection or array.
type tsType struct {
	text  string
	union bool
}

func (t tsType) grouped() string {
	if t.union {
		return "(" + t.text + ")"
	}
	return t.text
}

func unionOf(types []tsType) tsType {
	if len(types) == 1 {
		return types[0]
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.text
	}
	return tsType{text: strings.Join(parts, " | "), union: true}
}

func intersectionOf(types []tsType) tsType {
	if len(types) == 1 {
		return types[0]
	}
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.grouped()
	}
	return tsType{text: strings.Join(parts, " & ")}
}

func (e *emitter) typ(n *ir.Node, path string, level int) (tsType, error) {
	var (
		t   tsType
		err error
	)
	switch n.Shape() {
	case ir.ShapeReference:
		var id string
		id, err = e.ref(n, path)
		t = tsType{text: id}
	case ir.ShapeAny, ir.ShapePrimitive, ir.ShapeObject, ir.ShapeArray:
		t, err = e.ownType(n, path, level)
	case ir.ShapeComposite:
		t, err = e.compositeType(n, path, level)
	default:
		return tsType{}, e.fail(ir.ErrUnsupportedShape, path, "no type for kind %q", n.Kind)
	}
	if err != nil {
		return tsType{}, err
	}
	if n.Meta.Nullable && n.Kind != ir.KindNull {
		t = tsType{text: t.text + " | null", union: true}
	}
	return t, nil
}

func (e *emitter) ownType(n *ir.Node, path string, level int) (tsType, error) {
	if len(n.Enum) > 0 {
		types := make([]tsType, len(n.Enum))
		for i, v := range n.Enum {
			lit, err := literal(v)
			if err != nil {
				return tsType{}, e.fail(ir.ErrUnsupportedShape, path, "enum value %v: %v", v, err)
			}
			types[i] = tsType{text: lit}
		}
		return unionOf(types), nil
	}
	switch n.Kind {
	case ir.KindAny:
		return tsType{text: "unknown"}, nil
	case ir.KindString:
		return tsType{text: "string"}, nil
	case ir.KindNumber, ir.KindInteger:
		return tsType{text: "number"}, nil
	case ir.KindBoolean:
		return tsType{text: "boolean"}, nil
	case ir.KindNull:
		return tsType{text: "null"}, nil
	case ir.KindArray:
		return e.arrayType(n, path, level)
	case ir.KindObject:
		return e.objectType(n, path, level)
	}
	return tsType{}, e.fail(ir.ErrUnsupportedShape, path, "no type for kind %q", n.Kind)
}

func (e *emitter) arrayType(n *ir.Node, path string, level int) (tsType, error) {
	a := n.Array
	if a == nil {
		a = &ir.ArrayConstraints{}
	}
	var item tsType
	if a.Items != nil {
		var err error
		if item, err = e.typ(a.Items, path+"/items", level); err != nil {
			return tsType{}, err
		}
	}
	if len(a.PrefixItems) == 0 {
		if a.Items == nil {
			return tsType{text: "Array<unknown>"}, nil
		}
		return tsType{text: "Array<" + item.text + ">"}, nil
	}
	elems := make([]string, 0, len(a.PrefixItems)+1)
	for i, p := range a.PrefixItems {
		t, err := e.typ(p, ir.JoinPath(path, "prefixItems", fmt.Sprint(i)), level+1)
		if err != nil {
			return tsType{}, err
		}
		elems = append(elems, t.text)
	}
	if a.Items != nil {
		elems = append(elems, "..."+item.grouped()+"[]")
	}
	return tsType{text: e.list(level, "[", elems, "]")}, nil
}

func (e *emitter) objectType(n *ir.Node, path string, level int) (tsType, error) {
	o := n.Object
	if o == nil {
		o = &ir.ObjectConstraints{}
	}
	mode := e.w.mode(o)
	var rest tsType
	if mode == ir.AdditionalTyped {
		var err error
		if rest, err = e.typ(o.Additional.Schema, path+"/additionalProperties", level); err != nil {
			return tsType{}, err
		}
	}
	if len(o.Properties) == 0 {
		switch mode {
		case ir.AdditionalTyped:
			return tsType{text: "Record<string, " + rest.text + ">"}, nil
		case ir.AdditionalForbidden:
			return tsType{text: "Record<string, never>"}, nil
		}
		return tsType{text: "Record<string, unknown>"}, nil
	}
	var b strings.Builder
	b.WriteString("{\n")
	for _, p := range o.Properties {
		t, err := e.typ(p.Node, ir.JoinPath(path, "properties", escape(p.Name)), level+1)
		if err != nil {
			return tsType{}, err
		}
		b.WriteString(jsdoc(p.Node.Meta, e.pad(level+1)))
		b.WriteString(e.pad(level + 1))
		if p.Node.Meta.ReadOnly {
			b.WriteString("readonly ")
		}
		b.WriteString(transform.PropertyKey(p.Name))
		if !e.w.required(o, p) {
			b.WriteString("?")
		}
		b.WriteString(": " + t.text + ";\n")
	}
	if mode == ir.AdditionalOpen {
		b.WriteString(e.pad(level+1) + "[key: string]: unknown;\n")
	}
	b.WriteString(e.pad(level) + "}")
	if mode == ir.AdditionalTyped {
		return tsType{text: b.String() + " & Record<string, " + rest.text + ">"}, nil
	}
	return tsType{text: b.String()}, nil
}

func (e *emitter) compositeType(n *ir.Node, path string, level int) (tsType, error) {
	c := n.Composition
	var parts []tsType
	if n.Kind != ir.KindAny || len(n.Enum) > 0 {
		t, err := e.ownType(n, path, level)
		if err != nil {
			return tsType{}, err
		}
		parts = append(parts, t)
	}
	collect := func(nodes []*ir.Node, key string) ([]tsType, error) {
		out := make([]tsType, len(nodes))
		for i, b := range nodes {
			t, err := e.typ(b, ir.JoinPath(path, key, fmt.Sprint(i)), level)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}
	for _, group := range []struct {
		key   string
		nodes []*ir.Node
		join  func([]tsType) tsType
	}{
		{"types", c.Types, unionOf},
		{"allOf", c.AllOf, intersectionOf},
		{"oneOf", c.OneOf, unionOf},
		{"anyOf", c.AnyOf, unionOf},
	} {
		if len(group.nodes) == 0 {
			continue
		}
		types, err := collect(group.nodes, group.key)
		if err != nil {
			return tsType{}, err
		}
		parts = append(parts, group.join(types))
	}
	if c.Not != nil {
		if unconstrained(c.Not) {
			parts = append(parts, tsType{text: "never"})
		} else {
			parts = append(parts, tsType{text: "unknown"})
		}
	}
	if len(parts) == 0 {
		return tsType{}, e.fail(ir.ErrUnsupportedShape, path, "empty composition")
	}
	return intersectionOf(parts), nil
}
