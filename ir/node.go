package ir

import "slices"

// Kind is the type tag of a [Node]. The zero value means "any value".
type Kind string

// Node kinds.
const (
	KindAny       Kind = ""
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindInteger   Kind = "integer"
	KindBoolean   Kind = "boolean"
	KindNull      Kind = "null"
	KindObject    Kind = "object"
	KindArray     Kind = "array"
	KindReference Kind = "reference"
)

// Primitive reports whether k is one of the scalar kinds.
func (k Kind) Primitive() bool {
	switch k {
	case KindString, KindNumber, KindInteger, KindBoolean, KindNull:
		return true
	}
	return false
}

// Shape is the closed set of node variants every consumer switches over.
type Shape int

// Node shapes. ShapeInvalid is returned for nodes no consumer can lower.
const (
	ShapeInvalid Shape = iota
	ShapeAny
	ShapePrimitive
	ShapeObject
	ShapeArray
	ShapeReference
	ShapeComposite
)

var shapeNames = [...]string{"invalid", "any", "primitive", "object", "array", "reference", "composite"}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return "invalid"
}

// Node is one schema at any nesting level.
//
// Exactly one of the shape-defining groups is meaningful for a given node:
// Ref for references, Composition for composites, otherwise Kind with the
// constraint block that matches it. Enum may accompany any non-reference kind.
type Node struct {
	Kind Kind `json:"kind,omitempty"`

	String *StringConstraints `json:"string,omitempty"`
	Number *NumberConstraints `json:"number,omitempty"`
	Array  *ArrayConstraints  `json:"array,omitempty"`
	Object *ObjectConstraints `json:"object,omitempty"`
	Enum   []any              `json:"enum,omitempty"`

	Composition *Composition `json:"composition,omitempty"`
	Ref         *Ref         `json:"ref,omitempty"`

	Meta Meta `json:"meta"`

	// Deps is filled in by the graph builder for registry components only.
	Deps *DepFacts `json:"deps,omitempty"`
}

// Shape classifies n.
func (n *Node) Shape() Shape {
	if n == nil {
		return ShapeInvalid
	}
	if n.Ref != nil {
		if n.Kind != KindReference {
			return ShapeInvalid
		}
		return ShapeReference
	}
	if n.Composition != nil {
		return ShapeComposite
	}
	switch {
	case n.Kind == KindAny:
		return ShapeAny
	case n.Kind.Primitive():
		return ShapePrimitive
	case n.Kind == KindObject:
		return ShapeObject
	case n.Kind == KindArray:
		return ShapeArray
	}
	return ShapeInvalid
}

// StringConstraints apply to string nodes.
type StringConstraints struct {
	Format    string  `json:"format,omitempty"`
	MinLength *uint64 `json:"minLength,omitempty"`
	MaxLength *uint64 `json:"maxLength,omitempty"`
	Pattern   string  `json:"pattern,omitempty"`
}

// NumberConstraints apply to number and integer nodes. The exclusive flags
// turn the matching bound into a strict comparison.
type NumberConstraints struct {
	Format           string   `json:"format,omitempty"`
	Minimum          *float64 `json:"minimum,omitempty"`
	Maximum          *float64 `json:"maximum,omitempty"`
	ExclusiveMinimum bool     `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum bool     `json:"exclusiveMaximum,omitempty"`
	MultipleOf       *float64 `json:"multipleOf,omitempty"`
}

// ArrayConstraints apply to array nodes. PrefixItems describes a tuple;
// Items then constrains the elements past the prefix.
type ArrayConstraints struct {
	Items       *Node   `json:"items,omitempty"`
	PrefixItems []*Node `json:"prefixItems,omitempty"`
	MinItems    *uint64 `json:"minItems,omitempty"`
	MaxItems    *uint64 `json:"maxItems,omitempty"`
	UniqueItems bool    `json:"uniqueItems,omitempty"`
	Contains    *Node   `json:"contains,omitempty"`
	MinContains *uint64 `json:"minContains,omitempty"`
	MaxContains *uint64 `json:"maxContains,omitempty"`
}

// AdditionalMode is the unknown-key policy of an object.
type AdditionalMode int

// Additional property policies. AdditionalUnset means the source said
// nothing and the writer's default applies.
const (
	AdditionalUnset AdditionalMode = iota
	AdditionalForbidden
	AdditionalOpen
	AdditionalTyped
)

var additionalNames = [...]string{"unset", "forbidden", "open", "typed"}

func (m AdditionalMode) String() string {
	if int(m) < len(additionalNames) {
		return additionalNames[m]
	}
	return "unknown"
}

// MarshalText renders the policy by name in IR dumps.
func (m AdditionalMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Additional holds the additional-properties policy. Schema is set only
// for AdditionalTyped.
type Additional struct {
	Mode   AdditionalMode `json:"mode"`
	Schema *Node          `json:"schema,omitempty"`
}

// Property is one named child of an object, kept in declaration order.
type Property struct {
	Name string `json:"name"`
	Node *Node  `json:"node"`
}

// ObjectConstraints apply to object nodes.
type ObjectConstraints struct {
	Properties    []Property `json:"properties,omitempty"`
	Required      []string   `json:"required,omitempty"`
	Additional    Additional `json:"additional"`
	MinProperties *uint64    `json:"minProperties,omitempty"`
	MaxProperties *uint64    `json:"maxProperties,omitempty"`
}

// Property returns the named property node.
func (o *ObjectConstraints) Property(name string) (*Node, bool) {
	if o == nil {
		return nil, false
	}
	for _, p := range o.Properties {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// IsRequired reports whether name is listed in Required.
func (o *ObjectConstraints) IsRequired(name string) bool {
	return o != nil && slices.Contains(o.Required, name)
}

// Composition holds the combinator branches of a composite node. Types is
// the union produced when a schema allows several non-null types. A
// composite node may still carry a Kind and constraints; they form a base
// that every branch must also satisfy.
type Composition struct {
	AllOf         []*Node        `json:"allOf,omitempty"`
	OneOf         []*Node        `json:"oneOf,omitempty"`
	AnyOf         []*Node        `json:"anyOf,omitempty"`
	Not           *Node          `json:"not,omitempty"`
	Types         []*Node        `json:"types,omitempty"`
	Discriminator *Discriminator `json:"discriminator,omitempty"`
}

// Empty reports whether c has no branch at all.
func (c *Composition) Empty() bool {
	return c == nil || (len(c.AllOf) == 0 && len(c.OneOf) == 0 && len(c.AnyOf) == 0 && c.Not == nil && len(c.Types) == 0)
}

// Discriminator names the property that selects a one-of branch. Mapping
// maps property values to canonical component refs.
type Discriminator struct {
	PropertyName string            `json:"propertyName"`
	Mapping      map[string]string `json:"mapping,omitempty"`
}

// ExternalDocs is a link to documentation outside the document.
type ExternalDocs struct {
	Description string `json:"description,omitempty"`
	URL         string `json:"url"`
}

// Meta carries presence, nullability, human-facing fields, and the chain.
type Meta struct {
	Required     bool          `json:"required,omitempty"`
	Nullable     bool          `json:"nullable,omitempty"`
	Title        string        `json:"title,omitempty"`
	Description  string        `json:"description,omitempty"`
	Default      any           `json:"default,omitempty"`
	HasDefault   bool          `json:"hasDefault,omitempty"`
	Examples     []any         `json:"examples,omitempty"`
	Deprecated   bool          `json:"deprecated,omitempty"`
	ReadOnly     bool          `json:"readOnly,omitempty"`
	WriteOnly    bool          `json:"writeOnly,omitempty"`
	ExternalDocs *ExternalDocs `json:"externalDocs,omitempty"`
	Chain        Chain         `json:"chain"`
}

// DepFacts are the per-component dependency facts.
type DepFacts struct {
	// References lists the components this one refers to, in first-seen order.
	References []string `json:"references,omitempty"`
	// ReferencedBy lists the components referring to this one, in declaration order.
	ReferencedBy []string `json:"referencedBy,omitempty"`
	// Depth is the shortest distance from a component nothing refers to.
	Depth int `json:"depth"`
	// CycleRefs is the subset of References that lead back to this component.
	CycleRefs  []string   `json:"cycleRefs,omitempty"`
	Circular   bool       `json:"circular,omitempty"`
	CyclePaths [][]string `json:"cyclePaths,omitempty"`
}
