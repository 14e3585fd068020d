package openapi

import (
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/Gobd/zodgen/ir"
)

// Response describes an HTTP response with a description and body types for schema generation.
type Response struct {
	Desc   string
	Bodies []any
}

// Endpoint describes a single API operation for [AddEndpoint].
type Endpoint struct {
	Summary     string
	Description string
	Parameters  openapi3.Parameters
	Request     any                 // single request body type (convenience)
	Requests    []any               // multiple request body types (oneOf)
	Response    any                 // single 200 response type (convenience)
	Responses   map[string]Response // full response map (overrides Response if both set)
}

// AddComponent registers the schema of value as a named component.
func AddComponent(doc *openapi3.T, name string, value any) error {
	ref, err := SchemaFor(value)
	if err != nil {
		return err
	}
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	if doc.Components.Schemas == nil {
		doc.Components.Schemas = openapi3.Schemas{}
	}
	doc.Components.Schemas[name] = ref
	return nil
}

// AddComponentSchema registers a hand-built schema as a named component.
func AddComponentSchema(doc *openapi3.T, name string, schema *openapi3.Schema) {
	if doc.Components == nil {
		doc.Components = &openapi3.Components{}
	}
	if doc.Components.Schemas == nil {
		doc.Components.Schemas = openapi3.Schemas{}
	}
	doc.Components.Schemas[name] = openapi3.NewSchemaRef("", schema)
}

// NewRequest builds a required JSON request body from the given value
// types. Several values become a oneOf.
func NewRequest(vs ...any) (*openapi3.RequestBodyRef, error) {
	schema, err := bodySchema(vs)
	if err != nil {
		return nil, err
	}
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schema),
	}, nil
}

func bodySchema(vs []any) (*openapi3.SchemaRef, error) {
	if len(vs) == 0 {
		return nil, errors.New("no values given")
	}
	refs := make(openapi3.SchemaRefs, 0, len(vs))
	for _, v := range vs {
		schema, err := SchemaFor(v)
		if err != nil {
			return nil, err
		}
		refs = append(refs, schema)
	}
	if len(refs) == 1 {
		return refs[0], nil
	}
	return &openapi3.SchemaRef{Value: &openapi3.Schema{OneOf: refs}}, nil
}

// NewResponse creates an OpenAPI responses object.
// Map key is status code (e.g. "200", "4XX").
func NewResponse(vs map[string]Response) (*openapi3.Responses, error) {
	if len(vs) == 0 {
		return nil, errors.New("no values given")
	}

	opts := make([]openapi3.NewResponsesOption, 0, len(vs))
	for status, r := range vs {
		resp := openapi3.NewResponse().WithDescription(r.Desc)
		if len(r.Bodies) > 0 {
			schema, err := bodySchema(r.Bodies)
			if err != nil {
				return nil, err
			}
			resp.Content = openapi3.NewContentWithJSONSchemaRef(schema)
		}
		opts = append(opts, openapi3.WithName(status, resp))
	}
	return openapi3.NewResponses(opts...), nil
}

// DocBase returns a basic OpenAPI 3.0.3 document structure.
func DocBase(serviceName, description, version string) *openapi3.T {
	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       serviceName,
			Description: description,
			Version:     version,
		},
		Paths: &openapi3.Paths{},
	}
}

// AddPath adds an operation to the OpenAPI spec at the given path and method.
func AddPath(path, method string, s *openapi3.T, op *openapi3.Operation) {
	p := s.Paths.Value(path)
	if p == nil {
		p = &openapi3.PathItem{}
	}
	p.SetOperation(method, op)
	s.Paths.Set(path, p)
}

// AddEndpoint builds an operation from ep and registers it at path and
// method. Go values in ep become generated schemas; [Component] values
// become references.
func AddEndpoint(doc *openapi3.T, method, path, operationID string, ep Endpoint) error {
	op := &openapi3.Operation{
		OperationID: operationID,
		Summary:     ep.Summary,
		Description: ep.Description,
		Parameters:  ep.Parameters,
	}

	requests := ep.Requests
	if len(requests) == 0 && ep.Request != nil {
		requests = []any{ep.Request}
	}
	if len(requests) > 0 {
		body, err := NewRequest(requests...)
		if err != nil {
			return fmt.Errorf("%s %s: request: %w", method, path, err)
		}
		op.RequestBody = body
	}

	responses := ep.Responses
	if responses == nil && ep.Response != nil {
		responses = map[string]Response{
			"200": {Desc: "OK", Bodies: []any{ep.Response}},
		}
	}
	op.Responses = openapi3.NewResponses()
	if responses != nil {
		r, err := NewResponse(responses)
		if err != nil {
			return fmt.Errorf("%s %s: responses: %w", method, path, err)
		}
		op.Responses = r
	}

	AddPath(path, method, doc, op)
	return nil
}

// ResolveRefs fills in the target of every internal reference in a
// document built in code, as the loader does for documents it reads.
func ResolveRefs(doc *openapi3.T) error {
	if err := openapi3.NewLoader().ResolveRefsIn(doc, nil); err != nil {
		return ir.Errorf(ir.ErrUnresolvedRef, "", "", "resolve references").Wrap(err)
	}
	return nil
}
