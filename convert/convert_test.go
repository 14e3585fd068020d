package convert_test

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/zodgen/convert"
	"github.com/Gobd/zodgen/ir"
)

func ops(n *ir.Node) []ir.Op {
	var out []ir.Op
	for _, t := range n.Meta.Chain.Tokens() {
		out = append(out, t.Op)
	}
	return out
}

func schema(t *testing.T, s *openapi3.Schema, names ...string) *ir.Node {
	t.Helper()
	n, err := convert.Schema(openapi3.NewSchemaRef("", s), convert.Context{Names: ir.NewNameSet(names...), Component: "T"})
	require.NoError(t, err)
	require.NoError(t, n.Validate())
	return n
}

func TestBoundsFollowCanonicalOrder(t *testing.T) {
	// maximum is set before minimum on purpose.
	n := schema(t, openapi3.NewIntegerSchema().WithMax(120).WithMin(0))

	assert.Equal(t, ir.KindInteger, n.Kind)
	assert.Equal(t, []ir.Op{ir.OpMinimum, ir.OpMaximum}, ops(n))
	assert.Equal(t, []ir.Token{
		{Op: ir.OpMinimum, Value: 0.0},
		{Op: ir.OpMaximum, Value: 120.0},
	}, n.Meta.Chain.Validations)
	assert.Empty(t, n.Meta.Chain.Defaults)
}

func TestStringConstraints(t *testing.T) {
	n := schema(t, openapi3.NewStringSchema().
		WithFormat("email").
		WithPattern("^a").
		WithMaxLength(10).
		WithMinLength(2).
		WithDefault("ab"))

	assert.Equal(t, []ir.Op{ir.OpMinLength, ir.OpMaxLength, ir.OpPattern, ir.OpFormat, ir.OpDefault}, ops(n))
	require.NotNil(t, n.String)
	assert.Equal(t, "email", n.String.Format)
	assert.Equal(t, uint64(2), *n.String.MinLength)
	assert.True(t, n.Meta.HasDefault)
	assert.Equal(t, "ab", n.Meta.Default)
}

func TestExclusiveBounds(t *testing.T) {
	s := openapi3.NewFloat64Schema().WithMin(0).WithMax(1)
	s.ExclusiveMin = true
	s.MultipleOf = openapi3.Ptr(0.25)
	n := schema(t, s)

	assert.Equal(t, []ir.Op{ir.OpExclusiveMinimum, ir.OpMaximum, ir.OpMultipleOf}, ops(n))
	assert.True(t, n.Number.ExclusiveMinimum)
	assert.False(t, n.Number.ExclusiveMaximum)
}

func TestNullableNormalization(t *testing.T) {
	tests := []struct {
		name     string
		schema   *openapi3.Schema
		kind     ir.Kind
		nullable bool
		enum     []any
	}{
		{"nullable flag", openapi3.NewStringSchema().WithNullable(), ir.KindString, true, nil},
		{"type list", &openapi3.Schema{Type: &openapi3.Types{"string", "null"}}, ir.KindString, true, nil},
		{"null only", &openapi3.Schema{Type: &openapi3.Types{"null"}}, ir.KindNull, false, nil},
		{"null in enum", openapi3.NewStringSchema().WithEnum("a", nil), ir.KindString, true, []any{"a"}},
		{"plain", openapi3.NewBoolSchema(), ir.KindBoolean, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := schema(t, tt.schema)
			assert.Equal(t, tt.kind, n.Kind)
			assert.Equal(t, tt.nullable, n.Meta.Nullable)
			assert.Equal(t, tt.enum, n.Enum)
			assert.Nil(t, n.Composition)
		})
	}
}

func TestMultipleTypesBecomeTypeUnion(t *testing.T) {
	s := &openapi3.Schema{Type: &openapi3.Types{"string", "integer", "null"}, MinLength: 2}
	s.Min = openapi3.Ptr(1.0)
	n := schema(t, s)

	assert.Equal(t, ir.ShapeComposite, n.Shape())
	assert.True(t, n.Meta.Nullable)
	require.Len(t, n.Composition.Types, 2)

	str, num := n.Composition.Types[0], n.Composition.Types[1]
	assert.Equal(t, ir.KindString, str.Kind)
	assert.Equal(t, []ir.Op{ir.OpMinLength}, ops(str))
	assert.Nil(t, str.Number)
	assert.Equal(t, ir.KindInteger, num.Kind)
	assert.Equal(t, []ir.Op{ir.OpMinimum}, ops(num))
	assert.Nil(t, num.String)
}

func TestEnumSkipsConstraints(t *testing.T) {
	n := schema(t, openapi3.NewStringSchema().WithEnum("cat", "dog").WithMaxLength(2))
	assert.Equal(t, []any{"cat", "dog"}, n.Enum)
	assert.Nil(t, n.String)
	assert.Empty(t, ops(n))
}

func TestAdditionalProperties(t *testing.T) {
	tests := []struct {
		name   string
		schema *openapi3.Schema
		mode   ir.AdditionalMode
		typed  bool
	}{
		{"absent", openapi3.NewObjectSchema(), ir.AdditionalUnset, false},
		{"false", openapi3.NewObjectSchema().WithoutAdditionalProperties(), ir.AdditionalForbidden, false},
		{"true", openapi3.NewObjectSchema().WithAnyAdditionalProperties(), ir.AdditionalOpen, false},
		{"empty schema", openapi3.NewObjectSchema().WithAdditionalProperties(&openapi3.Schema{}), ir.AdditionalOpen, false},
		{"schema", openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema()), ir.AdditionalTyped, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := schema(t, tt.schema)
			require.NotNil(t, n.Object)
			assert.Equal(t, tt.mode, n.Object.Additional.Mode)
			assert.Equal(t, tt.typed, n.Object.Additional.Schema != nil)
		})
	}
}

func TestPropertyOrderAndRequired(t *testing.T) {
	s := openapi3.NewObjectSchema().
		WithProperty("zeta", openapi3.NewStringSchema()).
		WithProperty("alpha", openapi3.NewStringSchema()).
		WithProperty("mid", openapi3.NewStringSchema()).
		WithRequired([]string{"mid", "ghost"})
	ref := openapi3.NewSchemaRef("", s)

	sorted, err := convert.Schema(ref, convert.Context{})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, propertyNames(sorted))

	declared, err := convert.Schema(ref, convert.Context{
		Pointer: "/components/schemas/T",
		Order:   ir.KeyOrder{"/components/schemas/T/properties": {"zeta", "mid"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "mid", "alpha"}, propertyNames(declared))

	assert.Equal(t, []string{"mid"}, declared.Object.Required)
	mid, _ := declared.Object.Property("mid")
	assert.True(t, mid.Meta.Required)
	zeta, _ := declared.Object.Property("zeta")
	assert.False(t, zeta.Meta.Required)
	require.NoError(t, declared.Validate())
}

func propertyNames(n *ir.Node) []string {
	var out []string
	for _, p := range n.Object.Properties {
		out = append(out, p.Name)
	}
	return out
}

func TestTypelessSchemas(t *testing.T) {
	obj := schema(t, &openapi3.Schema{Properties: openapi3.Schemas{"a": openapi3.NewSchemaRef("", openapi3.NewStringSchema())}})
	assert.Equal(t, ir.KindObject, obj.Kind)

	arr := schema(t, &openapi3.Schema{Items: openapi3.NewSchemaRef("", openapi3.NewStringSchema())})
	assert.Equal(t, ir.KindArray, arr.Kind)

	anything := schema(t, &openapi3.Schema{Description: "free form"})
	assert.Equal(t, ir.ShapeAny, anything.Shape())
	assert.Equal(t, "free form", anything.Meta.Description)
}

func TestReferences(t *testing.T) {
	s := openapi3.NewObjectSchema().
		WithPropertyRef("owner", openapi3.NewSchemaRef("#/components/schemas/Owner", nil))
	n := schema(t, s, "Owner")

	owner, _ := n.Object.Property("owner")
	assert.Equal(t, ir.ShapeReference, owner.Shape())
	assert.Equal(t, "Owner", owner.Ref.Name)
	assert.Equal(t, "#/components/schemas/Owner", owner.Ref.Path)
}

func TestUnresolvedReference(t *testing.T) {
	s := openapi3.NewObjectSchema().
		WithPropertyRef("owner", openapi3.NewSchemaRef("#/components/schemas/Owner", nil))
	_, err := convert.Schema(openapi3.NewSchemaRef("", s), convert.Context{
		Names:     ir.NewNameSet("Pet"),
		Component: "Pet",
		Pointer:   "/components/schemas/Pet",
	})
	require.ErrorIs(t, err, ir.ErrUnresolvedRef)

	var e *ir.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "Pet", e.Component)
	assert.Equal(t, "/components/schemas/Pet/properties/owner", e.Path)

	_, err = convert.Schema(openapi3.NewSchemaRef("#/components/schemas/Pet/properties/id", nil), convert.Context{})
	assert.ErrorIs(t, err, ir.ErrUnresolvedRef)
}

func TestSelfContainingValue(t *testing.T) {
	s := openapi3.NewObjectSchema()
	s.Properties["self"] = openapi3.NewSchemaRef("", s)
	_, err := convert.Schema(openapi3.NewSchemaRef("", s), convert.Context{})
	assert.ErrorIs(t, err, ir.ErrMalformed)
}

func TestArrays(t *testing.T) {
	s := openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema()).WithMinItems(1)
	s.MaxItems = openapi3.Ptr(uint64(3))
	s.UniqueItems = true
	n := schema(t, s)

	assert.Equal(t, ir.ShapeArray, n.Shape())
	assert.Equal(t, ir.KindString, n.Array.Items.Kind)
	assert.Equal(t, []ir.Op{ir.OpMinItems, ir.OpMaxItems, ir.OpUniqueItems}, ops(n))
}

func TestComposition(t *testing.T) {
	cat := openapi3.NewSchemaRef("#/components/schemas/Cat", nil)
	dog := openapi3.NewSchemaRef("#/components/schemas/Dog", nil)

	t.Run("discriminator mapping is canonical", func(t *testing.T) {
		s := openapi3.NewObjectSchema()
		s.OneOf = openapi3.SchemaRefs{cat, dog}
		s.Discriminator = &openapi3.Discriminator{
			PropertyName: "kind",
			Mapping:      openapi3.StringMap{"cat": "Cat", "dog": "#/components/schemas/Dog"},
		}
		n := schema(t, s, "Cat", "Dog")

		assert.Equal(t, ir.KindAny, n.Kind)
		assert.Nil(t, n.Object)
		assert.Len(t, n.Composition.OneOf, 2)
		assert.Equal(t, &ir.Discriminator{
			PropertyName: "kind",
			Mapping: map[string]string{
				"cat": "#/components/schemas/Cat",
				"dog": "#/components/schemas/Dog",
			},
		}, n.Composition.Discriminator)
	})

	t.Run("discriminator needs a property", func(t *testing.T) {
		s := &openapi3.Schema{OneOf: openapi3.SchemaRefs{cat}, Discriminator: &openapi3.Discriminator{}}
		_, err := convert.Schema(openapi3.NewSchemaRef("", s), convert.Context{Names: ir.NewNameSet("Cat")})
		assert.ErrorIs(t, err, ir.ErrMalformed)
	})

	t.Run("discriminator without branches is dropped", func(t *testing.T) {
		s := openapi3.NewObjectSchema().WithProperty("kind", openapi3.NewStringSchema())
		s.Discriminator = &openapi3.Discriminator{PropertyName: "kind"}
		n := schema(t, s)
		assert.Nil(t, n.Composition)
		assert.Equal(t, ir.KindObject, n.Kind)
	})

	t.Run("empty one-of matches nothing", func(t *testing.T) {
		n := schema(t, &openapi3.Schema{OneOf: openapi3.SchemaRefs{}})
		require.NotNil(t, n.Composition)
		assert.Empty(t, n.Composition.OneOf)
		require.NotNil(t, n.Composition.Not)
		assert.Equal(t, ir.ShapeAny, n.Composition.Not.Shape())
	})

	t.Run("empty all-of is dropped", func(t *testing.T) {
		n := schema(t, &openapi3.Schema{Type: &openapi3.Types{"string"}, AllOf: openapi3.SchemaRefs{}})
		assert.Nil(t, n.Composition)
		assert.Equal(t, ir.ShapePrimitive, n.Shape())
	})

	t.Run("object with own properties keeps its kind", func(t *testing.T) {
		s := openapi3.NewObjectSchema().WithProperty("name", openapi3.NewStringSchema())
		s.AllOf = openapi3.SchemaRefs{cat}
		n := schema(t, s, "Cat")
		assert.Equal(t, ir.KindObject, n.Kind)
		assert.Len(t, n.Composition.AllOf, 1)
	})

	t.Run("not", func(t *testing.T) {
		n := schema(t, &openapi3.Schema{Not: openapi3.NewSchemaRef("", openapi3.NewStringSchema())})
		require.NotNil(t, n.Composition.Not)
		assert.Equal(t, ir.KindString, n.Composition.Not.Kind)
	})
}

func TestMetadata(t *testing.T) {
	s := openapi3.NewStringSchema()
	s.Title = "Name"
	s.Description = "The pet's name"
	s.Deprecated = true
	s.ReadOnly = true
	s.Example = "Rex"
	s.ExternalDocs = &openapi3.ExternalDocs{URL: "https://example.com/pets"}
	n := schema(t, s)

	assert.Equal(t, "Name", n.Meta.Title)
	assert.Equal(t, "The pet's name", n.Meta.Description)
	assert.True(t, n.Meta.Deprecated)
	assert.True(t, n.Meta.ReadOnly)
	assert.Equal(t, []any{"Rex"}, n.Meta.Examples)
	assert.Equal(t, "https://example.com/pets", n.Meta.ExternalDocs.URL)
}

func TestNullDefaultIsNoDefault(t *testing.T) {
	var s openapi3.Schema
	require.NoError(t, s.UnmarshalJSON([]byte(`{"type": "string", "default": null}`)))
	n := schema(t, &s)
	assert.False(t, n.Meta.HasDefault)
	assert.Empty(t, n.Meta.Chain.Defaults)
}
