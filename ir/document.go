package ir

// Location is where an operation parameter is carried.
type Location string

// Parameter locations.
const (
	InPath   Location = "path"
	InQuery  Location = "query"
	InHeader Location = "header"
	InCookie Location = "cookie"
)

// Document is the converted form of a whole API description.
type Document struct {
	Components      *Registry             `json:"-"`
	Operations      []*Operation          `json:"operations,omitempty"`
	SecuritySchemes []*SecurityScheme     `json:"securitySchemes,omitempty"`
	Security        []SecurityRequirement `json:"security,omitempty"`
}

// Operation is one method on one path.
type Operation struct {
	ID          string                `json:"id"`
	Method      string                `json:"method"`
	Path        string                `json:"path"`
	Summary     string                `json:"summary,omitempty"`
	Description string                `json:"description,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Deprecated  bool                  `json:"deprecated,omitempty"`
	Parameters  []*Parameter          `json:"parameters,omitempty"`
	Body        *Body                 `json:"body,omitempty"`
	Responses   []*Response           `json:"responses,omitempty"`
	Security    []SecurityRequirement `json:"security,omitempty"`
}

// ParametersIn returns the parameters carried in loc, in declaration order.
func (o *Operation) ParametersIn(loc Location) []*Parameter {
	var out []*Parameter
	for _, p := range o.Parameters {
		if p.In == loc {
			out = append(out, p)
		}
	}
	return out
}

// Parameter is an operation input outside the body. Required on the
// parameter mirrors Schema.Meta.Required.
type Parameter struct {
	Name        string   `json:"name"`
	In          Location `json:"in"`
	Description string   `json:"description,omitempty"`
	Required    bool     `json:"required,omitempty"`
	Deprecated  bool     `json:"deprecated,omitempty"`
	Schema      *Node    `json:"schema"`
}

// Body is the request body of an operation.
type Body struct {
	ContentType string `json:"contentType"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Schema      *Node  `json:"schema"`
}

// Response is one declared response. Schema is nil for bodiless responses.
type Response struct {
	Status      string `json:"status"`
	Description string `json:"description,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Schema      *Node  `json:"schema,omitempty"`
}

// SecurityScheme is a reusable authentication scheme.
type SecurityScheme struct {
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	Description      string   `json:"description,omitempty"`
	Scheme           string   `json:"scheme,omitempty"`
	BearerFormat     string   `json:"bearerFormat,omitempty"`
	In               string   `json:"in,omitempty"`
	ParamName        string   `json:"paramName,omitempty"`
	OpenIDConnectURL string   `json:"openIdConnectUrl,omitempty"`
	Flows            []string `json:"flows,omitempty"`
}

// SecurityRequirement maps scheme names to required scopes. All entries of
// one requirement must hold together.
type SecurityRequirement map[string][]string
