package convert

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"github.com/Gobd/zodgen/ir"
)

// Context locates a conversion and supplies what it needs from the
// surrounding document.
type Context struct {
	// Names is the set of components references may point at.
	Names ir.Names
	// Order is the declared property order of the source document.
	Order ir.KeyOrder
	// Component names the component being converted, for error reports.
	Component string
	// Pointer is the JSON pointer of the schema inside the source document.
	Pointer string
	// RefPrefixes lists additional reference prefixes that name components,
	// such as "#/$defs/" for JSON Schema documents.
	RefPrefixes []string
	// RootName is the component a bare "#" reference points at.
	RootName string
}

// Schema converts one kin-openapi schema into an IR node.
func Schema(ref *openapi3.SchemaRef, ctx Context) (*ir.Node, error) {
	return ctx.node(fromOpenAPI(ref), ctx.Pointer)
}

// JSONSchema converts one google/jsonschema-go schema into an IR node.
func JSONSchema(s *jsonschema.Schema, ctx Context) (*ir.Node, error) {
	return ctx.node(fromJSONSchema(s), ctx.Pointer)
}

func (c Context) fail(class error, ptr, format string, args ...any) error {
	return ir.Errorf(class, c.Component, ptr, format, args...)
}

// refName maps a reference path to a known component name.
func (c Context) refName(ref string) (string, bool) {
	name, ok := ir.ParseRef(ref)
	if !ok && ref == "#" && c.RootName != "" {
		name, ok = c.RootName, true
	}
	if !ok {
		for _, prefix := range c.RefPrefixes {
			if rest, found := strings.CutPrefix(ref, prefix); found && rest != "" && !strings.Contains(rest, "/") {
				name, ok = strings.NewReplacer("~1", "/", "~0", "~").Replace(rest), true
				break
			}
		}
	}
	if !ok {
		return "", false
	}
	if c.Names != nil && !c.Names.Has(name) {
		return name, false
	}
	return name, true
}

func (c Context) node(r *raw, ptr string) (*ir.Node, error) {
	switch {
	case r == nil, r.missing:
		return nil, c.fail(ir.ErrMalformed, ptr, "schema has neither a reference nor a value")
	case r.looped:
		return nil, c.fail(ir.ErrMalformed, ptr, "schema contains itself without a reference")
	case r.ref != "":
		name, ok := c.refName(r.ref)
		if !ok {
			return nil, c.fail(ir.ErrUnresolvedRef, ptr, "%q does not name a component", r.ref)
		}
		return ir.NewReference(name), nil
	}

	types, nullable := splitNull(r.types)
	enum, enumNull := splitNullValues(r.enum)
	nullable = nullable || r.nullable || (enumNull && len(enum) > 0)
	onlyNull := (len(types) == 0 && len(r.types) > 0) || (len(enum) == 0 && enumNull)

	n := &ir.Node{Meta: meta(r)}
	switch {
	case onlyNull:
		n.Kind = ir.KindNull
		nullable = false
	case len(enum) > 0:
		// The listed values decide membership on their own; a type union
		// next to an enum adds nothing.
		n.Enum = enum
		if len(types) == 1 {
			n.Kind = ir.Kind(types[0])
		}
	case len(types) == 1:
		n.Kind = ir.Kind(types[0])
	case len(types) > 1:
		comp, err := c.typeUnion(r, types, ptr)
		if err != nil {
			return nil, err
		}
		n.Composition = comp
	default:
		n.Kind = inferKind(r)
	}
	n.Meta.Nullable = nullable

	if err := c.constraints(n, r, ptr); err != nil {
		return nil, err
	}
	if err := c.composition(n, r, ptr); err != nil {
		return nil, err
	}
	if n.Meta.HasDefault {
		n.Meta.Chain.Add(ir.Token{Op: ir.OpDefault, Value: n.Meta.Default})
	}
	return n, nil
}

func meta(r *raw) ir.Meta {
	return ir.Meta{
		Title:        r.title,
		Description:  r.description,
		Default:      r.def,
		HasDefault:   r.hasDefault,
		Examples:     r.examples,
		Deprecated:   r.deprecated,
		ReadOnly:     r.readOnly,
		WriteOnly:    r.writeOnly,
		ExternalDocs: r.docs,
	}
}

func splitNull(types []string) ([]string, bool) {
	if !slices.Contains(types, openapi3.TypeNull) {
		return types, false
	}
	out := make([]string, 0, len(types))
	for _, t := range types {
		if t != openapi3.TypeNull && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out, true
}

func splitNullValues(values []any) ([]any, bool) {
	if len(values) == 0 {
		return nil, false
	}
	out := make([]any, 0, len(values))
	null := false
	for _, v := range values {
		if v == nil {
			null = true
			continue
		}
		out = append(out, v)
	}
	return out, null
}

// inferKind classifies a typeless schema by the structural keywords it uses.
// Anything else stays "any value".
func inferKind(r *raw) ir.Kind {
	switch {
	case r.hasObject || len(r.required) > 0 || r.additional != nil || r.addlSchema != nil:
		return ir.KindObject
	case r.items != nil || len(r.prefixItems) > 0:
		return ir.KindArray
	}
	return ir.KindAny
}

func validKind(k ir.Kind) bool {
	switch k {
	case ir.KindString, ir.KindNumber, ir.KindInteger, ir.KindBoolean, ir.KindNull, ir.KindObject, ir.KindArray:
		return true
	}
	return false
}

// typeUnion builds one child per non-null type, each carrying the
// constraints relevant to its own kind.
func (c Context) typeUnion(r *raw, types []string, ptr string) (*ir.Composition, error) {
	comp := &ir.Composition{}
	for _, t := range types {
		child := &ir.Node{Kind: ir.Kind(t)}
		if err := c.constraints(child, r, ptr); err != nil {
			return nil, err
		}
		comp.Types = append(comp.Types, child)
	}
	return comp, nil
}

// constraints copies the constraints relevant to n.Kind and records one
// chain token per constraint. Everything else is dropped.
func (c Context) constraints(n *ir.Node, r *raw, ptr string) error {
	if n.Kind != ir.KindAny && !validKind(n.Kind) {
		return c.fail(ir.ErrMalformed, ptr, "unknown type %q", n.Kind)
	}
	if len(n.Enum) > 0 {
		return nil
	}
	chain := &n.Meta.Chain
	switch n.Kind {
	case ir.KindString:
		if r.format == "" && r.minLength == nil && r.maxLength == nil && r.pattern == "" {
			return nil
		}
		n.String = &ir.StringConstraints{Format: r.format, MinLength: r.minLength, MaxLength: r.maxLength, Pattern: r.pattern}
		if r.minLength != nil {
			chain.Add(ir.Token{Op: ir.OpMinLength, Value: *r.minLength})
		}
		if r.maxLength != nil {
			chain.Add(ir.Token{Op: ir.OpMaxLength, Value: *r.maxLength})
		}
		if r.pattern != "" {
			chain.Add(ir.Token{Op: ir.OpPattern, Value: r.pattern})
		}
		if r.format != "" {
			chain.Add(ir.Token{Op: ir.OpFormat, Value: r.format})
		}
	case ir.KindNumber, ir.KindInteger:
		if r.format == "" && r.minimum == nil && r.maximum == nil && r.multipleOf == nil {
			return nil
		}
		n.Number = &ir.NumberConstraints{
			Format:     r.format,
			Minimum:    r.minimum,
			Maximum:    r.maximum,
			MultipleOf: r.multipleOf,
		}
		if r.minimum != nil {
			n.Number.ExclusiveMinimum = r.exclusiveMin
			op := ir.OpMinimum
			if r.exclusiveMin {
				op = ir.OpExclusiveMinimum
			}
			chain.Add(ir.Token{Op: op, Value: *r.minimum})
		}
		if r.maximum != nil {
			n.Number.ExclusiveMaximum = r.exclusiveMax
			op := ir.OpMaximum
			if r.exclusiveMax {
				op = ir.OpExclusiveMaximum
			}
			chain.Add(ir.Token{Op: op, Value: *r.maximum})
		}
		if r.multipleOf != nil {
			chain.Add(ir.Token{Op: ir.OpMultipleOf, Value: *r.multipleOf})
		}
	case ir.KindArray:
		return c.array(n, r, ptr)
	case ir.KindObject:
		return c.object(n, r, ptr)
	}
	return nil
}

func (c Context) array(n *ir.Node, r *raw, ptr string) error {
	a := &ir.ArrayConstraints{
		MinItems:    r.minItems,
		MaxItems:    r.maxItems,
		UniqueItems: r.uniqueItems,
	}
	var err error
	if r.items != nil {
		if a.Items, err = c.node(r.items, ptr+"/items"); err != nil {
			return err
		}
	}
	for i, p := range r.prefixItems {
		child, err := c.node(p, ptr+"/prefixItems/"+strconv.Itoa(i))
		if err != nil {
			return err
		}
		a.PrefixItems = append(a.PrefixItems, child)
	}
	if r.contains != nil {
		if a.Contains, err = c.node(r.contains, ptr+"/contains"); err != nil {
			return err
		}
		a.MinContains, a.MaxContains = r.minContains, r.maxContains
	}
	n.Array = a

	chain := &n.Meta.Chain
	if a.MinItems != nil {
		chain.Add(ir.Token{Op: ir.OpMinItems, Value: *a.MinItems})
	}
	if a.MaxItems != nil {
		chain.Add(ir.Token{Op: ir.OpMaxItems, Value: *a.MaxItems})
	}
	if a.UniqueItems {
		chain.Add(ir.Token{Op: ir.OpUniqueItems, Value: true})
	}
	if a.MinContains != nil {
		chain.Add(ir.Token{Op: ir.OpMinContains, Value: *a.MinContains})
	}
	if a.MaxContains != nil {
		chain.Add(ir.Token{Op: ir.OpMaxContains, Value: *a.MaxContains})
	}
	return nil
}

func (c Context) object(n *ir.Node, r *raw, ptr string) error {
	o := &ir.ObjectConstraints{
		MinProperties: r.minProps,
		MaxProperties: r.maxProps,
	}
	for _, name := range c.propertyOrder(r, ptr) {
		child, err := c.node(r.properties[name], ptr+"/properties/"+escape(name))
		if err != nil {
			return err
		}
		child.Meta.Required = slices.Contains(r.required, name)
		o.Properties = append(o.Properties, ir.Property{Name: name, Node: child})
	}
	for _, name := range r.required {
		if _, ok := r.properties[name]; !ok {
			zap.S().Debugw("dropping required name without a property",
				"component", c.Component, "pointer", ptr, "name", name)
			continue
		}
		if !slices.Contains(o.Required, name) {
			o.Required = append(o.Required, name)
		}
	}

	switch {
	case r.addlSchema != nil && r.addlSchema.empty():
		o.Additional.Mode = ir.AdditionalOpen
	case r.addlSchema != nil:
		schema, err := c.node(r.addlSchema, ptr+"/additionalProperties")
		if err != nil {
			return err
		}
		o.Additional = ir.Additional{Mode: ir.AdditionalTyped, Schema: schema}
	case r.additional != nil && *r.additional:
		o.Additional.Mode = ir.AdditionalOpen
	case r.additional != nil:
		o.Additional.Mode = ir.AdditionalForbidden
	}
	n.Object = o

	if o.MinProperties != nil {
		n.Meta.Chain.Add(ir.Token{Op: ir.OpMinProperties, Value: *o.MinProperties})
	}
	if o.MaxProperties != nil {
		n.Meta.Chain.Add(ir.Token{Op: ir.OpMaxProperties, Value: *o.MaxProperties})
	}
	return nil
}

// propertyOrder lists property names in declaration order: the document's
// recorded order first, then the order the front-end supplied, then by name
// for anything neither knows about.
func (c Context) propertyOrder(r *raw, ptr string) []string {
	out := make([]string, 0, len(r.properties))
	seen := make(map[string]bool, len(r.properties))
	take := func(names []string) {
		for _, name := range names {
			if _, ok := r.properties[name]; ok && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	take(c.Order.Keys(ptr + "/properties"))
	take(r.order)
	if len(out) < len(r.properties) {
		rest := make([]string, 0, len(r.properties)-len(out))
		for name := range r.properties {
			if !seen[name] {
				rest = append(rest, name)
			}
		}
		sort.Strings(rest)
		out = append(out, rest...)
	}
	return out
}

func (c Context) composition(n *ir.Node, r *raw, ptr string) error {
	if !r.hasAllOf && !r.hasOneOf && !r.hasAnyOf && r.not == nil {
		if r.discriminator != nil {
			zap.S().Debugw("dropping discriminator without branches", "component", c.Component, "pointer", ptr)
		}
		return nil
	}
	comp := n.Composition
	if comp == nil {
		comp = &ir.Composition{}
	}
	var err error
	if comp.AllOf, err = c.branches(r.allOf, ptr+"/allOf"); err != nil {
		return err
	}
	if comp.OneOf, err = c.branches(r.oneOf, ptr+"/oneOf"); err != nil {
		return err
	}
	if comp.AnyOf, err = c.branches(r.anyOf, ptr+"/anyOf"); err != nil {
		return err
	}
	if r.not != nil {
		if comp.Not, err = c.node(r.not, ptr+"/not"); err != nil {
			return err
		}
	}
	// An empty one-of or any-of matches nothing. It becomes "not anything"
	// so composition lists stay non-empty.
	if (r.hasOneOf && len(r.oneOf) == 0) || (r.hasAnyOf && len(r.anyOf) == 0) {
		if comp.Not != nil {
			comp.AllOf = append(comp.AllOf, &ir.Node{Composition: &ir.Composition{Not: comp.Not}})
		}
		comp.Not = &ir.Node{}
	}
	if r.discriminator != nil {
		if len(comp.OneOf) == 0 && len(comp.AnyOf) == 0 {
			zap.S().Debugw("dropping discriminator without branches", "component", c.Component, "pointer", ptr)
		} else {
			d, err := c.discriminator(r.discriminator, ptr)
			if err != nil {
				return err
			}
			comp.Discriminator = d
		}
	}
	if comp.Empty() {
		n.Composition = nil
		return nil
	}
	n.Composition = comp

	// An object kind that adds nothing of its own is only a type hint for
	// the branches; drop it so the composite stands alone.
	if n.Kind == ir.KindObject && n.Object != nil && len(n.Object.Properties) == 0 &&
		n.Object.Additional.Mode == ir.AdditionalUnset && n.Object.MinProperties == nil && n.Object.MaxProperties == nil {
		n.Kind, n.Object = ir.KindAny, nil
	}
	return nil
}

func (c Context) branches(rs []*raw, ptr string) ([]*ir.Node, error) {
	if len(rs) == 0 {
		return nil, nil
	}
	out := make([]*ir.Node, 0, len(rs))
	for i, b := range rs {
		child, err := c.node(b, ptr+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

func (c Context) discriminator(d *ir.Discriminator, ptr string) (*ir.Discriminator, error) {
	if d.PropertyName == "" {
		return nil, c.fail(ir.ErrMalformed, ptr+"/discriminator", "discriminator has no property name")
	}
	out := &ir.Discriminator{PropertyName: d.PropertyName}
	if len(d.Mapping) == 0 {
		return out, nil
	}
	out.Mapping = make(map[string]string, len(d.Mapping))
	for value, target := range d.Mapping {
		name, ok := c.refName(target)
		if !ok && !strings.Contains(target, "/") && c.Names != nil && c.Names.Has(target) {
			name, ok = target, true
		}
		if !ok {
			return nil, c.fail(ir.ErrUnresolvedRef, ptr+"/discriminator/mapping/"+escape(value), "%q does not name a component", target)
		}
		out.Mapping[value] = ir.ComponentRef(name).Path
	}
	return out, nil
}

func escape(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}
