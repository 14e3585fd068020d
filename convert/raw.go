package convert

import (
	"bytes"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/Gobd/zodgen/ir"
)

// raw is the dialect-neutral view of one source schema. Both front-ends
// lower into it so the conversion rules exist once.
type raw struct {
	// missing marks a schema slot with neither a reference nor a value;
	// looped marks a value that contains itself without a $ref.
	missing bool
	looped  bool

	ref string

	types    []string
	nullable bool
	format   string

	title       string
	description string
	def         any
	hasDefault  bool
	examples    []any
	deprecated  bool
	readOnly    bool
	writeOnly   bool
	docs        *ir.ExternalDocs

	enum []any

	minLength *uint64
	maxLength *uint64
	pattern   string

	minimum      *float64
	maximum      *float64
	exclusiveMin bool
	exclusiveMax bool
	multipleOf   *float64

	items       *raw
	prefixItems []*raw
	minItems    *uint64
	maxItems    *uint64
	uniqueItems bool
	contains    *raw
	minContains *uint64
	maxContains *uint64

	properties map[string]*raw
	order      []string
	required   []string
	hasObject  bool
	additional *bool
	addlSchema *raw
	minProps   *uint64
	maxProps   *uint64

	allOf, oneOf, anyOf []*raw
	hasAllOf            bool
	hasOneOf            bool
	hasAnyOf            bool
	not                 *raw

	discriminator *ir.Discriminator
}

// empty reports whether r accepts every value and says nothing else.
func (r *raw) empty() bool {
	return r.ref == "" && len(r.types) == 0 && !r.nullable && r.format == "" && len(r.enum) == 0 &&
		r.minLength == nil && r.maxLength == nil && r.pattern == "" &&
		r.minimum == nil && r.maximum == nil && r.multipleOf == nil &&
		r.items == nil && len(r.prefixItems) == 0 && r.minItems == nil && r.maxItems == nil && !r.uniqueItems && r.contains == nil &&
		len(r.properties) == 0 && len(r.required) == 0 && r.additional == nil && r.addlSchema == nil && r.minProps == nil && r.maxProps == nil &&
		!r.hasAllOf && !r.hasOneOf && !r.hasAnyOf && r.not == nil
}

func nonZero(v uint64) *uint64 {
	if v == 0 {
		return nil
	}
	return &v
}

func fromInt(v *int) *uint64 {
	if v == nil || *v < 0 {
		return nil
	}
	u := uint64(*v)
	return &u
}

// fromOpenAPI lowers a kin-openapi schema tree. References stop the descent;
// their resolved values are never followed.
func fromOpenAPI(ref *openapi3.SchemaRef) *raw {
	return (&openapiLowering{visiting: map[*openapi3.Schema]bool{}}).lower(ref)
}

type openapiLowering struct {
	visiting map[*openapi3.Schema]bool
}

func (l *openapiLowering) lower(ref *openapi3.SchemaRef) *raw {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		return &raw{ref: ref.Ref}
	}
	s := ref.Value
	if s == nil {
		return &raw{missing: true}
	}
	if l.visiting[s] {
		return &raw{looped: true}
	}
	l.visiting[s] = true
	defer delete(l.visiting, s)

	r := &raw{
		types:        s.Type.Slice(),
		nullable:     s.Nullable,
		format:       s.Format,
		title:        s.Title,
		description:  s.Description,
		def:          s.Default,
		hasDefault:   s.Default != nil,
		deprecated:   s.Deprecated,
		readOnly:     s.ReadOnly,
		writeOnly:    s.WriteOnly,
		enum:         s.Enum,
		minLength:    nonZero(s.MinLength),
		maxLength:    s.MaxLength,
		pattern:      s.Pattern,
		minimum:      s.Min,
		maximum:      s.Max,
		exclusiveMin: s.ExclusiveMin,
		exclusiveMax: s.ExclusiveMax,
		multipleOf:   s.MultipleOf,
		minItems:     nonZero(s.MinItems),
		maxItems:     s.MaxItems,
		uniqueItems:  s.UniqueItems,
		required:     s.Required,
		minProps:     nonZero(s.MinProps),
		maxProps:     s.MaxProps,
		additional:   s.AdditionalProperties.Has,
		hasAllOf:     s.AllOf != nil,
		hasOneOf:     s.OneOf != nil,
		hasAnyOf:     s.AnyOf != nil,
	}
	if s.Example != nil {
		r.examples = []any{s.Example}
	}
	if s.ExternalDocs != nil {
		r.docs = &ir.ExternalDocs{Description: s.ExternalDocs.Description, URL: s.ExternalDocs.URL}
	}
	if s.Items != nil {
		r.items = l.lower(s.Items)
	}
	if s.Properties != nil {
		r.hasObject = true
		r.properties = make(map[string]*raw, len(s.Properties))
		for name, p := range s.Properties {
			r.properties[name] = l.lower(p)
		}
	}
	if s.AdditionalProperties.Schema != nil {
		r.addlSchema = l.lower(s.AdditionalProperties.Schema)
	}
	r.allOf = l.lowerAll(s.AllOf)
	r.oneOf = l.lowerAll(s.OneOf)
	r.anyOf = l.lowerAll(s.AnyOf)
	if s.Not != nil {
		r.not = l.lower(s.Not)
	}
	if d := s.Discriminator; d != nil {
		r.discriminator = &ir.Discriminator{PropertyName: d.PropertyName}
		if len(d.Mapping) > 0 {
			r.discriminator.Mapping = make(map[string]string, len(d.Mapping))
			for k, v := range d.Mapping {
				r.discriminator.Mapping[k] = v
			}
		}
	}
	return r
}

func (l *openapiLowering) lowerAll(refs openapi3.SchemaRefs) []*raw {
	if len(refs) == 0 {
		return nil
	}
	out := make([]*raw, len(refs))
	for i, ref := range refs {
		out[i] = l.lower(ref)
		if out[i] == nil {
			out[i] = &raw{missing: true}
		}
	}
	return out
}

// fromJSONSchema lowers a google/jsonschema-go schema tree. Keywords that
// OpenAPI adds on top of JSON Schema (nullable, discriminator) are read from
// the schema's extra keywords.
func fromJSONSchema(s *jsonschema.Schema) *raw {
	return (&jsonLowering{visiting: map[*jsonschema.Schema]bool{}}).lower(s)
}

type jsonLowering struct {
	visiting map[*jsonschema.Schema]bool
}

func (l *jsonLowering) lower(s *jsonschema.Schema) *raw {
	if s == nil {
		return nil
	}
	if s.Ref != "" {
		return &raw{ref: s.Ref}
	}
	if l.visiting[s] {
		return &raw{looped: true}
	}
	l.visiting[s] = true
	defer delete(l.visiting, s)

	r := &raw{
		format:      s.Format,
		title:       s.Title,
		description: s.Description,
		deprecated:  s.Deprecated,
		readOnly:    s.ReadOnly,
		writeOnly:   s.WriteOnly,
		examples:    s.Examples,
		enum:        s.Enum,
		minLength:   fromInt(s.MinLength),
		maxLength:   fromInt(s.MaxLength),
		pattern:     s.Pattern,
		minimum:     s.Minimum,
		maximum:     s.Maximum,
		multipleOf:  s.MultipleOf,
		minItems:    fromInt(s.MinItems),
		maxItems:    fromInt(s.MaxItems),
		uniqueItems: s.UniqueItems,
		minContains: fromInt(s.MinContains),
		maxContains: fromInt(s.MaxContains),
		required:    s.Required,
		order:       s.PropertyOrder,
		minProps:    fromInt(s.MinProperties),
		maxProps:    fromInt(s.MaxProperties),
		hasAllOf:    s.AllOf != nil,
		hasOneOf:    s.OneOf != nil,
		hasAnyOf:    s.AnyOf != nil,
	}
	switch {
	case s.Type != "":
		r.types = []string{s.Type}
	case len(s.Types) > 0:
		r.types = s.Types
	}
	if s.Const != nil {
		r.enum = []any{*s.Const}
	}
	// A null default counts as no default, as it does for OpenAPI schemas
	// whose decoder cannot tell the two apart.
	if len(s.Default) > 0 {
		var v any
		dec := json.NewDecoder(bytes.NewReader(s.Default))
		dec.UseNumber()
		if err := dec.Decode(&v); err == nil && v != nil {
			r.def, r.hasDefault = normalizeNumber(v), true
		}
	}
	// 2020-12 exclusive bounds are numbers; fold them into the inclusive
	// slot when they are at least as strict.
	if s.ExclusiveMinimum != nil && (r.minimum == nil || *s.ExclusiveMinimum >= *r.minimum) {
		r.minimum, r.exclusiveMin = s.ExclusiveMinimum, true
	}
	if s.ExclusiveMaximum != nil && (r.maximum == nil || *s.ExclusiveMaximum <= *r.maximum) {
		r.maximum, r.exclusiveMax = s.ExclusiveMaximum, true
	}
	if s.Items != nil {
		r.items = l.lower(s.Items)
	}
	for _, p := range append(s.PrefixItems, s.ItemsArray...) {
		r.prefixItems = append(r.prefixItems, l.lower(p))
	}
	if s.Contains != nil {
		r.contains = l.lower(s.Contains)
	}
	if s.Properties != nil {
		r.hasObject = true
		r.properties = make(map[string]*raw, len(s.Properties))
		for name, p := range s.Properties {
			r.properties[name] = l.lower(p)
		}
	}
	if a := s.AdditionalProperties; a != nil {
		if v, ok := boolSchema(a); ok {
			r.additional = &v
		} else {
			r.addlSchema = l.lower(a)
		}
	}
	r.allOf = l.lowerAll(s.AllOf)
	r.oneOf = l.lowerAll(s.OneOf)
	r.anyOf = l.lowerAll(s.AnyOf)
	if s.Not != nil {
		r.not = l.lower(s.Not)
	}
	if nullable, ok := s.Extra["nullable"].(bool); ok {
		r.nullable = nullable
	}
	if d, ok := s.Extra["discriminator"].(map[string]any); ok {
		r.discriminator = &ir.Discriminator{}
		r.discriminator.PropertyName, _ = d["propertyName"].(string)
		if m, ok := d["mapping"].(map[string]any); ok {
			r.discriminator.Mapping = make(map[string]string, len(m))
			for k, v := range m {
				if s, ok := v.(string); ok {
					r.discriminator.Mapping[k] = s
				}
			}
		}
	}
	return r
}

func (l *jsonLowering) lowerAll(schemas []*jsonschema.Schema) []*raw {
	if len(schemas) == 0 {
		return nil
	}
	out := make([]*raw, len(schemas))
	for i, s := range schemas {
		out[i] = l.lower(s)
		if out[i] == nil {
			out[i] = &raw{missing: true}
		}
	}
	return out
}

// boolSchema reports whether s is one of the boolean schemas, which the
// library marshals as a bare true or false.
func boolSchema(s *jsonschema.Schema) (value, ok bool) {
	b, err := json.Marshal(s)
	if err != nil {
		return false, false
	}
	switch string(b) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

// normalizeNumber turns decoded json.Number values into int64 or float64 so
// defaults compare and render the way they were written.
func normalizeNumber(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = normalizeNumber(x[i])
		}
	case map[string]any:
		for k := range x {
			x[k] = normalizeNumber(x[k])
		}
	}
	return v
}
