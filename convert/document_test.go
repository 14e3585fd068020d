package convert_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/zodgen/convert"
	"github.com/Gobd/zodgen/ir"
	"github.com/Gobd/zodgen/openapi"
)

const pets = `
openapi: 3.0.3
info: {title: Pets, version: "1"}
security:
  - apiKey: []
paths:
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema: {type: string}
      - name: verbose
        in: query
        schema: {type: boolean}
    get:
      parameters:
        - name: verbose
          in: query
          required: true
          schema: {type: boolean}
        - name: age
          in: query
          schema:
            type: integer
            maximum: 120
            minimum: 0
      responses:
        default: {description: error}
        "404": {description: missing}
        "2XX": {description: ranged}
        "200":
          description: ok
          content:
            application/json:
              schema: {$ref: "#/components/schemas/Pet"}
    delete:
      security: []
      responses:
        "204": {description: gone}
  /pets:
    post:
      operationId: createPet
      tags: [pets]
      requestBody:
        required: true
        content:
          text/plain:
            schema: {type: string}
          application/merge-patch+json:
            schema: {$ref: "#/components/schemas/Pet"}
      responses:
        "201":
          description: created
          content:
            application/octet-stream: {}
components:
  securitySchemes:
    apiKey: {type: apiKey, in: header, name: X-Key}
  schemas:
    Pet:
      type: object
      required: [name, ghost]
      properties:
        name: {type: string}
        id: {type: integer, format: int64}
        tag: {type: string, nullable: true}
        owner: {$ref: "#/components/schemas/Owner"}
    Owner:
      type: object
      properties:
        pets:
          type: array
          items: {$ref: "#/components/schemas/Pet"}
`

func load(t *testing.T, src string) *openapi.Spec {
	t.Helper()
	spec, err := openapi.LoadData(context.Background(), []byte(src), openapi.LoadOptions{})
	require.NoError(t, err)
	return spec
}

func TestDocument(t *testing.T) {
	spec := load(t, pets)
	doc, err := convert.Document(spec.Doc, convert.DocumentOptions{Order: spec.Order})
	require.NoError(t, err)

	reg := doc.Components
	assert.Equal(t, []string{"Pet", "Owner"}, reg.Names())
	for _, name := range reg.Names() {
		n, _ := reg.Lookup(name)
		assert.True(t, n.Meta.Required, name)
		require.NoError(t, n.Validate(), name)
	}

	pet, _ := reg.Lookup("Pet")
	assert.Equal(t, []string{"name", "id", "tag", "owner"}, propertyNames(pet))
	assert.Equal(t, []string{"name"}, pet.Object.Required)
	tag, _ := pet.Object.Property("tag")
	assert.True(t, tag.Meta.Nullable)
	id, _ := pet.Object.Property("id")
	assert.Equal(t, "int64", id.Number.Format)
	assert.Empty(t, ops(id))

	require.Len(t, doc.Operations, 3)
	get, del, post := doc.Operations[0], doc.Operations[1], doc.Operations[2]

	assert.Equal(t, "getPetsByPetId", get.ID)
	assert.Equal(t, "GET", get.Method)
	require.Len(t, get.Parameters, 3)
	assert.Equal(t, "petId", get.Parameters[0].Name)
	assert.True(t, get.Parameters[0].Required)
	assert.Equal(t, "verbose", get.Parameters[1].Name)
	assert.True(t, get.Parameters[1].Required)
	assert.True(t, get.Parameters[1].Schema.Meta.Required)
	age := get.Parameters[2]
	assert.Equal(t, ir.InQuery, age.In)
	assert.False(t, age.Required)
	assert.Equal(t, []ir.Op{ir.OpMinimum, ir.OpMaximum}, ops(age.Schema))
	assert.Len(t, get.ParametersIn(ir.InQuery), 2)

	var statuses []string
	for _, r := range get.Responses {
		statuses = append(statuses, r.Status)
	}
	assert.Equal(t, []string{"200", "2XX", "404", "default"}, statuses)
	assert.Equal(t, "Pet", get.Responses[0].Schema.Ref.Name)
	assert.Nil(t, get.Security)

	assert.Equal(t, "deletePetsByPetId", del.ID)
	assert.NotNil(t, del.Security)
	assert.Empty(t, del.Security)

	assert.Equal(t, "createPet", post.ID)
	assert.Equal(t, []string{"pets"}, post.Tags)
	require.NotNil(t, post.Body)
	assert.Equal(t, "application/merge-patch+json", post.Body.ContentType)
	assert.True(t, post.Body.Required)
	assert.True(t, post.Body.Schema.Meta.Required)
	assert.Equal(t, "application/octet-stream", post.Responses[0].ContentType)
	assert.Nil(t, post.Responses[0].Schema)

	assert.Equal(t, []ir.SecurityRequirement{{"apiKey": {}}}, doc.Security)
	require.Len(t, doc.SecuritySchemes, 1)
	assert.Equal(t, &ir.SecurityScheme{Name: "apiKey", Type: "apiKey", In: "header", ParamName: "X-Key"}, doc.SecuritySchemes[0])
}

func TestDocumentIsDeterministicAcrossWorkers(t *testing.T) {
	var b strings.Builder
	b.WriteString("openapi: 3.0.3\ninfo: {title: t, version: \"1\"}\npaths: {}\ncomponents:\n  schemas:\n")
	for i := range 40 {
		fmt.Fprintf(&b, "    S%02d:\n      type: object\n      properties:\n        next: {$ref: \"#/components/schemas/S%02d\"}\n        v: {type: integer, minimum: %d}\n", i, (i+1)%40, i)
	}
	spec := load(t, b.String())

	serial, err := convert.Document(spec.Doc, convert.DocumentOptions{Order: spec.Order})
	require.NoError(t, err)
	parallel, err := convert.Document(spec.Doc, convert.DocumentOptions{Order: spec.Order, Workers: 8})
	require.NoError(t, err)
	assert.Equal(t, serial, parallel)
}

func TestDocumentReportsEarliestFailure(t *testing.T) {
	doc := openapi.DocBase("t", "", "1")
	for _, name := range []string{"A", "B", "C"} {
		openapi.AddComponentSchema(doc, name, openapi3.NewObjectSchema().
			WithPropertyRef("x", openapi3.NewSchemaRef("#/components/schemas/Ghost"+name, nil)))
	}
	for range 5 {
		_, err := convert.Document(doc, convert.DocumentOptions{Workers: 3})
		require.ErrorIs(t, err, ir.ErrUnresolvedRef)
		var e *ir.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, "A", e.Component)
		assert.Equal(t, "/components/schemas/A/properties/x", e.Path)
	}
}

func TestParameterErrors(t *testing.T) {
	tests := []struct {
		name  string
		param *openapi3.Parameter
	}{
		{"no schema or content", &openapi3.Parameter{Name: "q", In: openapi3.ParameterInQuery}},
		{"no name", openapi3.NewQueryParameter("").WithSchema(openapi3.NewStringSchema())},
		{"bad location", &openapi3.Parameter{Name: "q", In: "body", Schema: openapi3.NewStringSchema().NewRef()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := openapi.DocBase("t", "", "1")
			require.NoError(t, openapi.AddEndpoint(doc, http.MethodGet, "/search", "search", openapi.Endpoint{
				Parameters: openapi3.Parameters{{Value: tt.param}},
			}))
			_, err := convert.Document(doc, convert.DocumentOptions{})
			require.ErrorIs(t, err, ir.ErrMalformed)

			var e *ir.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, "search", e.Component)
			assert.Equal(t, "/paths/~1search/get/parameters/0", e.Path)
		})
	}
}

func TestParameterContent(t *testing.T) {
	doc := openapi.DocBase("t", "", "1")
	p := openapi3.NewQueryParameter("filter")
	p.Content = openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().WithProperty("q", openapi3.NewStringSchema()))
	require.NoError(t, openapi.AddEndpoint(doc, http.MethodGet, "/search", "search", openapi.Endpoint{
		Parameters: openapi3.Parameters{{Value: p}},
	}))

	out, err := convert.Document(doc, convert.DocumentOptions{})
	require.NoError(t, err)
	param := out.Operations[0].Parameters[0]
	assert.Equal(t, ir.KindObject, param.Schema.Kind)
	assert.False(t, param.Schema.Meta.Required)
}

func TestBodyErrors(t *testing.T) {
	doc := openapi.DocBase("t", "", "1")
	openapi.AddPath("/upload", "POST", doc, &openapi3.Operation{
		RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithContent(openapi3.Content{
			"application/json": openapi3.NewMediaType(),
		})},
		Responses: openapi3.NewResponses(),
	})
	_, err := convert.Document(doc, convert.DocumentOptions{})
	assert.ErrorIs(t, err, ir.ErrMalformed)

	doc = openapi.DocBase("t", "", "1")
	openapi.AddPath("/upload", "POST", doc, &openapi3.Operation{
		RequestBody: &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody()},
		Responses:   openapi3.NewResponses(),
	})
	_, err = convert.Document(doc, convert.DocumentOptions{})
	assert.ErrorIs(t, err, ir.ErrMalformed)
}

func TestUnknownSecurityScheme(t *testing.T) {
	doc := openapi.DocBase("t", "", "1")
	doc.Security = openapi3.SecurityRequirements{{"oauth": {"read"}}}
	_, err := convert.Document(doc, convert.DocumentOptions{})
	assert.ErrorIs(t, err, ir.ErrUnresolvedRef)
}

func TestNilDocument(t *testing.T) {
	_, err := convert.Document(nil, convert.DocumentOptions{})
	assert.ErrorIs(t, err, ir.ErrMalformed)
}
