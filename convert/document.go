package convert

import (
	"net/http"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Gobd/zodgen/ir"
	"github.com/Gobd/zodgen/transform"
)

// DocumentOptions tune [Document].
type DocumentOptions struct {
	// Order is the declared key order of the source document.
	Order ir.KeyOrder
	// Workers bounds concurrent component conversions. Zero or one
	// converts sequentially.
	Workers int
}

var methodOrder = []string{
	http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete,
	http.MethodOptions, http.MethodHead, http.MethodPatch, http.MethodTrace, http.MethodConnect,
}

// Document converts a bundled OpenAPI document: every component schema,
// every operation, and the security schemes.
func Document(doc *openapi3.T, opts DocumentOptions) (*ir.Document, error) {
	if doc == nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "no document")
	}
	var schemas openapi3.Schemas
	if doc.Components != nil {
		schemas = doc.Components.Schemas
	}
	names := opts.Order.Sort("/components/schemas", sortedKeys(schemas))
	known := ir.NewNameSet(names...)

	reg, err := components(names, func(name string) (*ir.Node, error) {
		return Schema(schemas[name], Context{
			Names:     known,
			Order:     opts.Order,
			Component: name,
			Pointer:   "/components/schemas/" + escape(name),
		})
	}, opts.Workers)
	if err != nil {
		return nil, err
	}

	out := &ir.Document{Components: reg}
	dc := docContext{names: known, order: opts.Order}
	if out.SecuritySchemes, err = dc.securitySchemes(doc); err != nil {
		return nil, err
	}
	schemes := map[string]bool{}
	for _, s := range out.SecuritySchemes {
		schemes[s.Name] = true
	}
	dc.schemes = schemes
	if out.Security, err = dc.security(doc.Security, "/security"); err != nil {
		return nil, err
	}
	if out.Operations, err = dc.operations(doc); err != nil {
		return nil, err
	}
	zap.S().Debugw("converted document",
		"components", reg.Len(), "operations", len(out.Operations), "securitySchemes", len(out.SecuritySchemes))
	return out, nil
}

// components converts every named component, possibly in parallel, and
// registers the results in declaration order. When several conversions
// fail the error of the earliest component wins, so failures are
// reproducible.
func components(names []string, convert func(string) (*ir.Node, error), workers int) (*ir.Registry, error) {
	nodes := make([]*ir.Node, len(names))
	errs := make([]error, len(names))
	if workers < 1 {
		workers = 1
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i, name := range names {
		g.Go(func() error {
			n, err := convert(name)
			if err != nil {
				errs[i] = err
				return nil
			}
			n.Meta.Required = true
			nodes[i] = n
			return nil
		})
	}
	_ = g.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	reg := ir.NewRegistry()
	for i, name := range names {
		if err := reg.Add(name, nodes[i]); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type docContext struct {
	names   ir.Names
	order   ir.KeyOrder
	schemes map[string]bool
}

func (d docContext) schema(ref *openapi3.SchemaRef, component, ptr string) (*ir.Node, error) {
	return Schema(ref, Context{Names: d.names, Order: d.order, Component: component, Pointer: ptr})
}

func (d docContext) operations(doc *openapi3.T) ([]*ir.Operation, error) {
	if doc.Paths == nil {
		return nil, nil
	}
	paths := doc.Paths.Map()
	var out []*ir.Operation
	for _, path := range d.order.Sort("/paths", sortedKeys(paths)) {
		item := paths[path]
		if item == nil {
			continue
		}
		itemPtr := "/paths/" + escape(path)
		ops := item.Operations()
		for _, method := range d.methods(itemPtr, ops) {
			op, err := d.operation(path, method, item, ops[method], itemPtr+"/"+strings.ToLower(method))
			if err != nil {
				return nil, err
			}
			out = append(out, op)
		}
	}
	return out, nil
}

// methods orders the operations of a path item as declared, falling back
// to a fixed method order.
func (d docContext) methods(itemPtr string, ops map[string]*openapi3.Operation) []string {
	var out []string
	for _, k := range d.order.Keys(itemPtr) {
		m := strings.ToUpper(k)
		if _, ok := ops[m]; ok {
			out = append(out, m)
		}
	}
	for _, m := range methodOrder {
		if _, ok := ops[m]; ok && !slices.Contains(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func (d docContext) operation(path, method string, item *openapi3.PathItem, src *openapi3.Operation, ptr string) (*ir.Operation, error) {
	op := &ir.Operation{
		ID:          src.OperationID,
		Method:      method,
		Path:        path,
		Summary:     src.Summary,
		Description: src.Description,
		Tags:        src.Tags,
		Deprecated:  src.Deprecated,
	}
	if op.ID == "" {
		op.ID = transform.OperationName(method, path)
	}

	// Path-level parameters apply unless the operation redeclares them.
	var params []*ir.Parameter
	itemPtr := ptr[:strings.LastIndex(ptr, "/")]
	for i, ref := range item.Parameters {
		p, err := d.parameter(op.ID, ref, itemPtr+"/parameters/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	for i, ref := range src.Parameters {
		p, err := d.parameter(op.ID, ref, ptr+"/parameters/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		replaced := false
		for j, existing := range params {
			if existing.Name == p.Name && existing.In == p.In {
				params[j], replaced = p, true
			}
		}
		if !replaced {
			params = append(params, p)
		}
	}
	op.Parameters = params

	if src.RequestBody != nil {
		body, err := d.body(op.ID, src.RequestBody, ptr+"/requestBody")
		if err != nil {
			return nil, err
		}
		op.Body = body
	}
	if src.Responses != nil {
		responses, err := d.responses(op.ID, src.Responses, ptr+"/responses")
		if err != nil {
			return nil, err
		}
		op.Responses = responses
	}
	if src.Security != nil {
		sec, err := d.security(*src.Security, ptr+"/security")
		if err != nil {
			return nil, err
		}
		// An explicit empty list clears the document default.
		if sec == nil {
			sec = []ir.SecurityRequirement{}
		}
		op.Security = sec
	}
	return op, nil
}

// refPointer turns an internal component reference into a pointer so
// recorded key order still applies to shared parameters and bodies.
func refPointer(ref, fallback string) string {
	if rest, ok := strings.CutPrefix(ref, "#"); ok && strings.HasPrefix(rest, "/components/") {
		return rest
	}
	return fallback
}

func (d docContext) parameter(opID string, ref *openapi3.ParameterRef, ptr string) (*ir.Parameter, error) {
	if ref == nil || ref.Value == nil {
		return nil, ir.Errorf(ir.ErrMalformed, opID, ptr, "parameter has no value")
	}
	ptr = refPointer(ref.Ref, ptr)
	src := ref.Value
	if src.Name == "" {
		return nil, ir.Errorf(ir.ErrMalformed, opID, ptr, "parameter has no name")
	}
	p := &ir.Parameter{
		Name:        src.Name,
		In:          ir.Location(src.In),
		Description: src.Description,
		Required:    src.Required || src.In == openapi3.ParameterInPath,
		Deprecated:  src.Deprecated,
	}
	switch p.In {
	case ir.InPath, ir.InQuery, ir.InHeader, ir.InCookie:
	default:
		return nil, ir.Errorf(ir.ErrMalformed, opID, ptr, "parameter %q has location %q", src.Name, src.In)
	}

	var err error
	switch {
	case src.Schema != nil:
		p.Schema, err = d.schema(src.Schema, opID, ptr+"/schema")
	case len(src.Content) > 0:
		mt, media := pickMedia(src.Content)
		if media == nil || media.Schema == nil {
			return nil, ir.Errorf(ir.ErrMalformed, opID, ptr+"/content/"+escape(mt), "parameter content has no schema")
		}
		p.Schema, err = d.schema(media.Schema, opID, ptr+"/content/"+escape(mt)+"/schema")
	default:
		return nil, ir.Errorf(ir.ErrMalformed, opID, ptr, "parameter %q has neither schema nor content", src.Name)
	}
	if err != nil {
		return nil, err
	}
	p.Schema.Meta.Required = p.Required
	return p, nil
}

func (d docContext) body(opID string, ref *openapi3.RequestBodyRef, ptr string) (*ir.Body, error) {
	if ref.Value == nil {
		return nil, ir.Errorf(ir.ErrMalformed, opID, ptr, "request body has no value")
	}
	ptr = refPointer(ref.Ref, ptr)
	src := ref.Value
	if len(src.Content) == 0 {
		return nil, ir.Errorf(ir.ErrMalformed, opID, ptr, "request body has no content")
	}
	mt, media := pickMedia(src.Content)
	schema, err := d.media(opID, mt, media, ptr+"/content/"+escape(mt))
	if err != nil {
		return nil, err
	}
	b := &ir.Body{
		ContentType: mt,
		Description: src.Description,
		Required:    src.Required,
		Schema:      schema,
	}
	if schema != nil {
		schema.Meta.Required = src.Required
	}
	return b, nil
}

// media converts the schema of one media-type entry. JSON entries must
// carry a schema; other entries without one describe opaque payloads.
func (d docContext) media(opID, mt string, media *openapi3.MediaType, ptr string) (*ir.Node, error) {
	if media == nil || media.Schema == nil {
		if isJSON(mt) {
			return nil, ir.Errorf(ir.ErrMalformed, opID, ptr, "media type %q has no schema", mt)
		}
		return nil, nil
	}
	return d.schema(media.Schema, opID, ptr+"/schema")
}

func (d docContext) responses(opID string, src *openapi3.Responses, ptr string) ([]*ir.Response, error) {
	m := src.Map()
	statuses := sortedKeys(m)
	sort.SliceStable(statuses, func(i, j int) bool { return statusRank(statuses[i]) < statusRank(statuses[j]) })
	out := make([]*ir.Response, 0, len(statuses))
	for _, status := range statuses {
		ref := m[status]
		rptr := ptr + "/" + escape(status)
		if ref == nil || ref.Value == nil {
			return nil, ir.Errorf(ir.ErrMalformed, opID, rptr, "response has no value")
		}
		rptr = refPointer(ref.Ref, rptr)
		r := &ir.Response{Status: status}
		if ref.Value.Description != nil {
			r.Description = *ref.Value.Description
		}
		if len(ref.Value.Content) > 0 {
			mt, media := pickMedia(ref.Value.Content)
			schema, err := d.media(opID, mt, media, rptr+"/content/"+escape(mt))
			if err != nil {
				return nil, err
			}
			r.ContentType, r.Schema = mt, schema
			if schema != nil {
				schema.Meta.Required = true
			}
		}
		out = append(out, r)
	}
	return out, nil
}

// statusRank orders 2XX-style ranges after their exact codes and the
// default response last.
func statusRank(status string) int {
	if status == "default" {
		return 1 << 20
	}
	s := strings.ToUpper(status)
	if len(s) == 3 && strings.HasSuffix(s, "XX") {
		return (int(s[0]-'0')*100+99)*2 + 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1 << 19
	}
	return n * 2
}

func isJSON(mt string) bool {
	mt = strings.ToLower(strings.TrimSpace(strings.Split(mt, ";")[0]))
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// pickMedia prefers application/json, then any +json type, then the first
// media type by name.
func pickMedia(content openapi3.Content) (string, *openapi3.MediaType) {
	if mt, ok := content["application/json"]; ok {
		return "application/json", mt
	}
	keys := sortedKeys(content)
	for _, k := range keys {
		if isJSON(k) {
			return k, content[k]
		}
	}
	if len(keys) == 0 {
		return "", nil
	}
	return keys[0], content[keys[0]]
}

func (d docContext) securitySchemes(doc *openapi3.T) ([]*ir.SecurityScheme, error) {
	if doc.Components == nil || len(doc.Components.SecuritySchemes) == 0 {
		return nil, nil
	}
	src := doc.Components.SecuritySchemes
	var out []*ir.SecurityScheme
	for _, name := range d.order.Sort("/components/securitySchemes", sortedKeys(src)) {
		ref := src[name]
		if ref == nil || ref.Value == nil {
			return nil, ir.Errorf(ir.ErrMalformed, name, "/components/securitySchemes/"+escape(name), "security scheme has no value")
		}
		v := ref.Value
		if v.Type == "" {
			return nil, ir.Errorf(ir.ErrMalformed, name, "/components/securitySchemes/"+escape(name), "security scheme has no type")
		}
		s := &ir.SecurityScheme{
			Name:             name,
			Type:             v.Type,
			Description:      v.Description,
			Scheme:           v.Scheme,
			BearerFormat:     v.BearerFormat,
			In:               v.In,
			ParamName:        v.Name,
			OpenIDConnectURL: v.OpenIdConnectUrl,
		}
		if f := v.Flows; f != nil {
			if f.Implicit != nil {
				s.Flows = append(s.Flows, "implicit")
			}
			if f.Password != nil {
				s.Flows = append(s.Flows, "password")
			}
			if f.ClientCredentials != nil {
				s.Flows = append(s.Flows, "clientCredentials")
			}
			if f.AuthorizationCode != nil {
				s.Flows = append(s.Flows, "authorizationCode")
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func (d docContext) security(reqs openapi3.SecurityRequirements, ptr string) ([]ir.SecurityRequirement, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	out := make([]ir.SecurityRequirement, 0, len(reqs))
	for i, req := range reqs {
		r := make(ir.SecurityRequirement, len(req))
		for name, scopes := range req {
			if !d.schemes[name] {
				return nil, ir.Errorf(ir.ErrUnresolvedRef, "", ptr+"/"+strconv.Itoa(i), "no security scheme named %q", name)
			}
			r[name] = append([]string{}, scopes...)
		}
		out = append(out, r)
	}
	return out, nil
}
