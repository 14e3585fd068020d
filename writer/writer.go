package writer

import (
	"fmt"
	"strings"

	"github.com/Gobd/zodgen/graph"
	"github.com/Gobd/zodgen/ir"
	"github.com/Gobd/zodgen/transform"
)

// maxInline is the widest list rendered on one line.
const maxInline = 80

// Writer emits code for the components of one registry.
type Writer struct {
	opts   Options
	reg    *ir.Registry
	graph  *graph.Result
	idents map[string]string
}

// New returns a Writer for reg. g supplies the circularity facts; a nil g
// means no component is circular. Component identifiers are assigned in
// declaration order, so the same registry always gets the same names.
func New(opts Options, reg *ir.Registry, g *graph.Result) *Writer {
	if reg == nil {
		reg = ir.NewRegistry()
	}
	w := &Writer{opts: opts, reg: reg, graph: g, idents: make(map[string]string, reg.Len())}
	namer := transform.NewNamer("z", "endpoints")
	for _, name := range reg.Names() {
		w.idents[name] = namer.Name(name)
	}
	return w
}

// Ident returns the identifier bound to the named component.
func (w *Writer) Ident(name string) (string, bool) {
	id, ok := w.idents[name]
	return id, ok
}

// Expression lowers an inline node to a validator expression. Presence is
// left to the caller; nullability is applied.
func (w *Writer) Expression(n *ir.Node) (string, error) {
	return w.emitter("").expr(n, "", 0, false)
}

// Component emits the const declaration of the named component. Circular
// components are wrapped in z.lazy and annotated with their type.
func (w *Writer) Component(name string) (string, error) {
	n, ok := w.reg.Lookup(name)
	if !ok {
		return "", ir.Errorf(ir.ErrUnresolvedRef, name, "", "no component named %q", name)
	}
	e := w.emitter(name)
	body, err := e.expr(n, "", 0, false)
	if err != nil {
		return "", err
	}
	id := w.idents[name]
	var b strings.Builder
	b.WriteString(jsdoc(n.Meta, ""))
	if w.graph.IsCircular(name) {
		fmt.Fprintf(&b, "export const %s: z.ZodType<%s> = z.lazy(() => %s);\n", id, id, body)
	} else {
		fmt.Fprintf(&b, "export const %s = %s;\n", id, body)
	}
	return b.String(), nil
}

func (w *Writer) emitter(component string) *emitter {
	return &emitter{w: w, component: component, width: w.opts.indent()}
}

// required decides the presence of property p of o.
func (w *Writer) required(o *ir.ObjectConstraints, p ir.Property) bool {
	if p.Node.Meta.Required || o.IsRequired(p.Name) {
		return true
	}
	return w.opts.ImplicitRequiredProperties && len(o.Required) == 0 && !p.Node.Meta.HasDefault
}

// lazy reports whether n refers to a circular component anywhere below it.
func (w *Writer) lazy(n *ir.Node) bool {
	for _, name := range ir.References(n) {
		if w.graph.IsCircular(name) {
			return true
		}
	}
	return false
}

// mode resolves the unset additional-properties policy.
func (w *Writer) mode(o *ir.ObjectConstraints) ir.AdditionalMode {
	if o.Additional.Mode != ir.AdditionalUnset {
		return o.Additional.Mode
	}
	if w.opts.StrictObjectsByDefault {
		return ir.AdditionalForbidden
	}
	return ir.AdditionalOpen
}

// emitter lowers the nodes of one component. Paths in errors are relative
// to the component root.
type emitter struct {
	w         *Writer
	component string
	width     int
}

func (e *emitter) fail(class error, path, format string, args ...any) error {
	return ir.Errorf(class, e.component, path, format, args...)
}

func (e *emitter) pad(level int) string {
	return strings.Repeat(" ", level*e.width)
}

// list renders items between open and close, on one line when they are
// short enough and otherwise one per line at level+1.
func (e *emitter) list(level int, open string, items []string, close string) string {
	inline := open + strings.Join(items, ", ") + close
	if len(inline) <= maxInline && !strings.Contains(inline, "\n") {
		return inline
	}
	var b strings.Builder
	b.WriteString(open)
	b.WriteString("\n")
	for _, it := range items {
		b.WriteString(e.pad(level + 1))
		b.WriteString(it)
		b.WriteString(",\n")
	}
	b.WriteString(e.pad(level))
	b.WriteString(close)
	return b.String()
}

// expr renders n at the given nesting level. Presence and nullability go
// last so that a default still applies to the value before them.
func (e *emitter) expr(n *ir.Node, path string, level int, optional bool) (string, error) {
	s, err := e.core(n, path, level)
	if err != nil {
		return "", err
	}
	if optional {
		s += ".optional()"
	}
	if n.Meta.Nullable && n.Kind != ir.KindNull {
		s += ".nullable()"
	}
	return s, nil
}

func (e *emitter) core(n *ir.Node, path string, level int) (string, error) {
	var (
		s   string
		err error
	)
	switch n.Shape() {
	case ir.ShapeReference:
		s, err = e.ref(n, path)
	case ir.ShapeAny, ir.ShapePrimitive, ir.ShapeObject, ir.ShapeArray:
		s, err = e.own(n, path, level)
	case ir.ShapeComposite:
		s, err = e.composite(n, path, level)
	default:
		if n == nil {
			return "", e.fail(ir.ErrUnsupportedShape, path, "missing schema")
		}
		return "", e.fail(ir.ErrUnsupportedShape, path, "no lowering for kind %q", n.Kind)
	}
	if err != nil {
		return "", err
	}
	for _, t := range n.Meta.Chain.Defaults {
		tok, err := e.token(n, t, path, level)
		if err != nil {
			return "", err
		}
		s += tok
	}
	return s, nil
}

func (e *emitter) ref(n *ir.Node, path string) (string, error) {
	id, ok := e.w.idents[n.Ref.Name]
	if !ok {
		return "", e.fail(ir.ErrUnresolvedRef, path, "no component named %q", n.Ref.Name)
	}
	return id, nil
}

// own renders the base of n from its kind or enum, followed by its
// validation tokens.
func (e *emitter) own(n *ir.Node, path string, level int) (string, error) {
	var (
		s   string
		err error
	)
	if len(n.Enum) > 0 {
		s, err = e.enum(n.Enum, path)
	} else {
		s, err = e.base(n, path, level)
	}
	if err != nil {
		return "", err
	}
	for _, t := range n.Meta.Chain.Validations {
		tok, err := e.token(n, t, path, level)
		if err != nil {
			return "", err
		}
		s += tok
	}
	return s, nil
}

func (e *emitter) base(n *ir.Node, path string, level int) (string, error) {
	switch n.Kind {
	case ir.KindAny:
		return "z.unknown()", nil
	case ir.KindString:
		return "z.string()", nil
	case ir.KindNumber:
		return "z.number()", nil
	case ir.KindInteger:
		return "z.number().int()", nil
	case ir.KindBoolean:
		return "z.boolean()", nil
	case ir.KindNull:
		return "z.null()", nil
	case ir.KindObject:
		return e.object(n, path, level)
	case ir.KindArray:
		return e.array(n, path, level)
	}
	return "", e.fail(ir.ErrUnsupportedShape, path, "no lowering for kind %q", n.Kind)
}

func (e *emitter) enum(values []any, path string) (string, error) {
	lits := make([]string, len(values))
	strs := true
	for i, v := range values {
		lit, err := literal(v)
		if err != nil {
			return "", e.fail(ir.ErrUnsupportedShape, path, "enum value %v: %v", v, err)
		}
		lits[i] = lit
		if _, ok := v.(string); !ok {
			strs = false
		}
	}
	if len(values) == 1 {
		return match(values[0], lits[0]), nil
	}
	if strs {
		return "z.enum([" + strings.Join(lits, ", ") + "])", nil
	}
	branches := make([]string, len(values))
	for i, v := range values {
		branches[i] = match(v, lits[i])
	}
	return "z.union([" + strings.Join(branches, ", ") + "])", nil
}

// match renders a schema accepting exactly the value v.
func match(v any, lit string) string {
	if scalar(v) {
		return "z.literal(" + lit + ")"
	}
	return "z.unknown().refine((value) => JSON.stringify(value) === " + quote(lit) + ")"
}

func (e *emitter) object(n *ir.Node, path string, level int) (string, error) {
	o := n.Object
	if o == nil {
		o = &ir.ObjectConstraints{}
	}
	var ctor string
	switch mode := e.w.mode(o); mode {
	case ir.AdditionalForbidden:
		ctor = "z.strictObject"
	case ir.AdditionalOpen:
		ctor = "z.looseObject"
	case ir.AdditionalTyped:
		rest, err := e.expr(o.Additional.Schema, path+"/additionalProperties", level, false)
		if err != nil {
			return "", err
		}
		if len(o.Properties) == 0 {
			return "z.record(z.string(), " + rest + ")", nil
		}
		body, err := e.properties(o, path, level)
		if err != nil {
			return "", err
		}
		return "z.object(" + body + ").catchall(" + rest + ")", nil
	default:
		return "", e.fail(ir.ErrUnsupportedShape, path, "additional properties mode %v", mode)
	}
	body, err := e.properties(o, path, level)
	if err != nil {
		return "", err
	}
	return ctor + "(" + body + ")", nil
}

// properties renders the shape literal of o. A property whose schema
// reaches a circular component is written as a getter so it is only
// evaluated once every binding exists.
func (e *emitter) properties(o *ir.ObjectConstraints, path string, level int) (string, error) {
	if len(o.Properties) == 0 {
		return "{}", nil
	}
	var b strings.Builder
	b.WriteString("{\n")
	for _, p := range o.Properties {
		ppath := ir.JoinPath(path, "properties", escape(p.Name))
		optional := !e.w.required(o, p)
		key := transform.PropertyKey(p.Name)
		if e.w.lazy(p.Node) {
			v, err := e.expr(p.Node, ppath, level+2, optional)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%sget %s() {\n%sreturn %s;\n%s},\n", e.pad(level+1), key, e.pad(level+2), v, e.pad(level+1))
			continue
		}
		v, err := e.expr(p.Node, ppath, level+1, optional)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s%s: %s,\n", e.pad(level+1), key, v)
	}
	b.WriteString(e.pad(level))
	b.WriteString("}")
	return b.String(), nil
}

func (e *emitter) array(n *ir.Node, path string, level int) (string, error) {
	a := n.Array
	if a == nil {
		a = &ir.ArrayConstraints{}
	}
	var s string
	if len(a.PrefixItems) > 0 {
		items := make([]string, len(a.PrefixItems))
		for i, p := range a.PrefixItems {
			v, err := e.expr(p, ir.JoinPath(path, "prefixItems", fmt.Sprint(i)), level+1, false)
			if err != nil {
				return "", err
			}
			items[i] = v
		}
		s = e.list(level, "z.tuple([", items, "])")
		if a.Items != nil {
			rest, err := e.expr(a.Items, path+"/items", level, false)
			if err != nil {
				return "", err
			}
			s += ".rest(" + rest + ")"
		}
	} else {
		item := "z.unknown()"
		if a.Items != nil {
			var err error
			if item, err = e.expr(a.Items, path+"/items", level, false); err != nil {
				return "", err
			}
		}
		s = "z.array(" + item + ")"
	}
	if a.Contains != nil && a.MinContains == nil {
		refine, err := e.contains(a, path, level, ">=", uint64(1))
		if err != nil {
			return "", err
		}
		s += refine
	}
	return s, nil
}

func escape(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}
