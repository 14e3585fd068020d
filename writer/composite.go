package writer

import (
	"strconv"
	"strings"

	"github.com/Gobd/zodgen/ir"
)

// part renders one operand of a composite at a nesting level.
type part func(level int) (string, error)

// composite renders n as the intersection of its own schema and each
// combinator present.
func (e *emitter) composite(n *ir.Node, path string, level int) (string, error) {
	c := n.Composition
	var parts []part
	if n.Kind != ir.KindAny || len(n.Enum) > 0 {
		parts = append(parts, func(l int) (string, error) { return e.own(n, path, l) })
	} else if len(n.Meta.Chain.Validations) > 0 {
		return "", e.fail(ir.ErrUnsupportedShape, path, "constraints on a composite without a type")
	}
	if len(c.Types) > 0 {
		parts = append(parts, func(l int) (string, error) { return e.union(c.Types, path+"/types", l) })
	}
	if len(c.AllOf) > 0 {
		parts = append(parts, func(l int) (string, error) {
			return e.intersection(e.branches(c.AllOf, path+"/allOf"), l)
		})
	}
	if len(c.OneOf) > 0 {
		parts = append(parts, func(l int) (string, error) { return e.oneOf(c, path, l) })
	}
	if len(c.AnyOf) > 0 {
		parts = append(parts, func(l int) (string, error) { return e.union(c.AnyOf, path+"/anyOf", l) })
	}
	if c.Not != nil {
		parts = append(parts, func(l int) (string, error) { return e.not(c.Not, path+"/not", l) })
	}
	if len(parts) == 0 {
		return "", e.fail(ir.ErrUnsupportedShape, path, "empty composition")
	}
	return e.intersection(parts, level)
}

func (e *emitter) branches(nodes []*ir.Node, path string) []part {
	out := make([]part, len(nodes))
	for i, b := range nodes {
		bpath := path + "/" + strconv.Itoa(i)
		out[i] = func(l int) (string, error) { return e.expr(b, bpath, l, false) }
	}
	return out
}

func (e *emitter) render(parts []part, level int) ([]string, error) {
	out := make([]string, len(parts))
	for i, p := range parts {
		s, err := p(level)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// intersection folds parts from the left into nested z.intersection calls.
func (e *emitter) intersection(parts []part, level int) (string, error) {
	if len(parts) == 1 {
		return parts[0](level)
	}
	left, err := e.intersection(parts[:len(parts)-1], level+1)
	if err != nil {
		return "", err
	}
	right, err := parts[len(parts)-1](level + 1)
	if err != nil {
		return "", err
	}
	return e.list(level, "z.intersection(", []string{left, right}, ")"), nil
}

func (e *emitter) union(nodes []*ir.Node, path string, level int) (string, error) {
	parts := e.branches(nodes, path)
	if len(parts) == 1 {
		return parts[0](level)
	}
	items, err := e.render(parts, level+1)
	if err != nil {
		return "", err
	}
	return e.list(level, "z.union([", items, "])"), nil
}

// oneOf renders an exclusive union. With a discriminator zod selects the
// branch by the property value; without one the union is refined to
// reject values that match more than one branch.
func (e *emitter) oneOf(c *ir.Composition, path string, level int) (string, error) {
	path += "/oneOf"
	if c.Discriminator != nil {
		return e.discriminated(c, path, level)
	}
	parts := e.branches(c.OneOf, path)
	if len(parts) == 1 {
		return parts[0](level)
	}
	items, err := e.render(parts, level+1)
	if err != nil {
		return "", err
	}
	inner, err := e.render(parts, level+2)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(e.list(level, "z.union([", items, "])"))
	b.WriteString(".superRefine((value, ctx) => {\n")
	b.WriteString(e.pad(level + 1))
	b.WriteString("const matches = ")
	b.WriteString(e.list(level+1, "[", inner, "]"))
	b.WriteString(".filter((schema) => schema.safeParse(value).success).length;\n")
	b.WriteString(e.pad(level + 1))
	b.WriteString("if (matches !== 1) {\n")
	b.WriteString(e.pad(level + 2))
	b.WriteString("ctx.addIssue({ code: \"custom\", message: `Expected exactly one matching schema, got ${matches}` });\n")
	b.WriteString(e.pad(level + 1))
	b.WriteString("}\n")
	b.WriteString(e.pad(level))
	b.WriteString("})")
	return b.String(), nil
}

func (e *emitter) discriminated(c *ir.Composition, path string, level int) (string, error) {
	prop := c.Discriminator.PropertyName
	for i, b := range c.OneOf {
		bpath := path + "/" + strconv.Itoa(i)
		target, err := e.w.reg.Resolve(b)
		if err != nil {
			return "", ir.Locate(err, e.component, bpath)
		}
		if !e.w.exposes(target, prop, map[*ir.Node]bool{}) {
			return "", e.fail(ir.ErrUnsupportedShape, bpath, "branch is not an object with discriminator property %q", prop)
		}
	}
	items, err := e.render(e.branches(c.OneOf, path), level+1)
	if err != nil {
		return "", err
	}
	return e.list(level, "z.discriminatedUnion("+quote(prop)+", [", items, "])"), nil
}

// exposes reports whether n is an object declaring prop, directly or
// through one of its all-of branches.
func (w *Writer) exposes(n *ir.Node, prop string, seen map[*ir.Node]bool) bool {
	n, err := w.reg.Resolve(n)
	if err != nil || n == nil || seen[n] {
		return false
	}
	seen[n] = true
	if _, ok := n.Object.Property(prop); ok && n.Kind == ir.KindObject {
		return true
	}
	if c := n.Composition; c != nil {
		for _, b := range c.AllOf {
			if w.exposes(b, prop, seen) {
				return true
			}
		}
	}
	return false
}

// unconstrained reports whether n accepts every value.
func unconstrained(n *ir.Node) bool {
	return n.Shape() == ir.ShapeAny && len(n.Enum) == 0 && n.Meta.Chain.Len() == 0 && !n.Meta.Nullable
}

func (e *emitter) not(n *ir.Node, path string, level int) (string, error) {
	if unconstrained(n) {
		return "z.never()", nil
	}
	s, err := e.expr(n, path, level, false)
	if err != nil {
		return "", err
	}
	return "z.unknown().refine((value) => !" + s + ".safeParse(value).success, { message: \"Value matches an excluded schema\" })", nil
}
