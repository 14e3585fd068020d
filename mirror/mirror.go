// Package mirror writes IR back out as OpenAPI 3.0 schemas.
//
// It is the inverse of the converter for documents that use only what
// both sides can express, which makes it the check for lossless
// conversion: mirroring the converted components of such a document gives
// back its component schemas.
package mirror

import (
	"strconv"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Gobd/zodgen/ir"
	"github.com/Gobd/zodgen/openapi"
)

// Schema renders n. Tuples and contains constraints have no OpenAPI 3.0
// form and fail with [ir.ErrUnsupportedShape].
func Schema(n *ir.Node) (*openapi3.SchemaRef, error) {
	return schema(n, "")
}

// Components renders every component of reg.
func Components(reg *ir.Registry) (openapi3.Schemas, error) {
	out := make(openapi3.Schemas, reg.Len())
	for _, name := range reg.Names() {
		n, _ := reg.Lookup(name)
		ref, err := Schema(n)
		if err != nil {
			return nil, ir.Locate(err, name, "")
		}
		out[name] = ref
	}
	return out, nil
}

// Document returns a document holding the components of reg and no paths.
// References between components are resolved, so the document validates.
func Document(title, version string, reg *ir.Registry) (*openapi3.T, error) {
	schemas, err := Components(reg)
	if err != nil {
		return nil, err
	}
	doc := openapi.DocBase(title, "", version)
	for _, name := range reg.Names() {
		ref := schemas[name]
		if ref.Ref != "" {
			if doc.Components == nil {
				doc.Components = &openapi3.Components{Schemas: openapi3.Schemas{}}
			}
			doc.Components.Schemas[name] = ref
			continue
		}
		openapi.AddComponentSchema(doc, name, ref.Value)
	}
	if err := openapi.ResolveRefs(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func schema(n *ir.Node, path string) (*openapi3.SchemaRef, error) {
	if n == nil {
		return nil, ir.Errorf(ir.ErrUnsupportedShape, "", path, "missing schema")
	}
	switch n.Shape() {
	case ir.ShapeReference:
		return openapi3.NewSchemaRef(n.Ref.Path, nil), nil
	case ir.ShapeInvalid:
		return nil, ir.Errorf(ir.ErrUnsupportedShape, "", path, "no schema for kind %q", n.Kind)
	}
	s := &openapi3.Schema{}
	meta(s, n.Meta)
	if n.Kind != ir.KindAny {
		s.Type = &openapi3.Types{string(n.Kind)}
	}
	s.Enum = n.Enum
	if err := constraints(s, n, path); err != nil {
		return nil, err
	}
	if c := n.Composition; c != nil {
		if err := composition(s, c, path); err != nil {
			return nil, err
		}
	}
	return openapi3.NewSchemaRef("", s), nil
}

func meta(s *openapi3.Schema, m ir.Meta) {
	s.Nullable = m.Nullable
	s.Title = m.Title
	s.Description = m.Description
	if m.HasDefault {
		s.Default = m.Default
	}
	if len(m.Examples) > 0 {
		s.Example = m.Examples[0]
	}
	s.Deprecated = m.Deprecated
	s.ReadOnly = m.ReadOnly
	s.WriteOnly = m.WriteOnly
	if d := m.ExternalDocs; d != nil {
		s.ExternalDocs = &openapi3.ExternalDocs{Description: d.Description, URL: d.URL}
	}
}

func constraints(s *openapi3.Schema, n *ir.Node, path string) error {
	if c := n.String; c != nil {
		s.Format = c.Format
		if c.MinLength != nil {
			s.MinLength = *c.MinLength
		}
		s.MaxLength = c.MaxLength
		s.Pattern = c.Pattern
	}
	if c := n.Number; c != nil {
		s.Format = c.Format
		s.Min, s.Max = c.Minimum, c.Maximum
		s.ExclusiveMin, s.ExclusiveMax = c.ExclusiveMinimum, c.ExclusiveMaximum
		s.MultipleOf = c.MultipleOf
	}
	if a := n.Array; a != nil {
		if len(a.PrefixItems) > 0 || a.Contains != nil {
			return ir.Errorf(ir.ErrUnsupportedShape, "", path, "tuples and contains have no OpenAPI 3.0 form")
		}
		if a.Items != nil {
			items, err := schema(a.Items, path+"/items")
			if err != nil {
				return err
			}
			s.Items = items
		}
		if a.MinItems != nil {
			s.MinItems = *a.MinItems
		}
		s.MaxItems = a.MaxItems
		s.UniqueItems = a.UniqueItems
	}
	if o := n.Object; o != nil {
		return object(s, o, path)
	}
	return nil
}

func object(s *openapi3.Schema, o *ir.ObjectConstraints, path string) error {
	if len(o.Properties) > 0 {
		s.Properties = make(openapi3.Schemas, len(o.Properties))
		for _, p := range o.Properties {
			ref, err := schema(p.Node, ir.JoinPath(path, "properties", p.Name))
			if err != nil {
				return err
			}
			s.Properties[p.Name] = ref
		}
	}
	s.Required = o.Required
	if o.MinProperties != nil {
		s.MinProps = *o.MinProperties
	}
	s.MaxProps = o.MaxProperties
	switch o.Additional.Mode {
	case ir.AdditionalForbidden:
		s.AdditionalProperties.Has = openapi3.Ptr(false)
	case ir.AdditionalOpen:
		s.AdditionalProperties.Has = openapi3.Ptr(true)
	case ir.AdditionalTyped:
		ref, err := schema(o.Additional.Schema, path+"/additionalProperties")
		if err != nil {
			return err
		}
		s.AdditionalProperties.Schema = ref
	}
	return nil
}

func composition(s *openapi3.Schema, c *ir.Composition, path string) error {
	// A type union was split from one schema; fold it back.
	if len(c.Types) > 0 {
		types := make(openapi3.Types, 0, len(c.Types))
		for _, t := range c.Types {
			types = append(types, string(t.Kind))
			if err := constraints(s, t, path); err != nil {
				return err
			}
		}
		s.Type = &types
	}
	var err error
	if s.AllOf, err = branches(c.AllOf, path+"/allOf"); err != nil {
		return err
	}
	if s.OneOf, err = branches(c.OneOf, path+"/oneOf"); err != nil {
		return err
	}
	if s.AnyOf, err = branches(c.AnyOf, path+"/anyOf"); err != nil {
		return err
	}
	if c.Not != nil {
		if s.Not, err = schema(c.Not, path+"/not"); err != nil {
			return err
		}
	}
	if d := c.Discriminator; d != nil {
		s.Discriminator = &openapi3.Discriminator{PropertyName: d.PropertyName}
		if len(d.Mapping) > 0 {
			s.Discriminator.Mapping = make(openapi3.StringMap, len(d.Mapping))
			for k, v := range d.Mapping {
				s.Discriminator.Mapping[k] = v
			}
		}
	}
	return nil
}

func branches(nodes []*ir.Node, path string) (openapi3.SchemaRefs, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make(openapi3.SchemaRefs, len(nodes))
	for i, b := range nodes {
		ref, err := schema(b, ir.JoinPath(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		out[i] = ref
	}
	return out, nil
}
