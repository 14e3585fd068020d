package openapi

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"

	"github.com/Gobd/zodgen/ir"
)

// Spec is a loaded OpenAPI document together with its declared key order.
type Spec struct {
	Doc   *openapi3.T
	Order ir.KeyOrder
}

// LoadOptions tune [Load] and [LoadData].
type LoadOptions struct {
	// Validate runs the structural checks of kin-openapi on the bundled
	// document. Examples are never validated.
	Validate bool
	// ExternalRefs allows references into other files relative to the
	// document.
	ExternalRefs bool
}

// Load reads the OpenAPI document at path.
func Load(ctx context.Context, path string, opts LoadOptions) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "read %s", path).Wrap(err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "resolve %s", path).Wrap(err)
	}
	return load(ctx, data, &url.URL{Path: filepath.ToSlash(abs)}, opts)
}

// LoadData reads an OpenAPI document held in memory. Relative external
// references resolve against the working directory.
func LoadData(ctx context.Context, data []byte, opts LoadOptions) (*Spec, error) {
	return load(ctx, data, nil, opts)
}

func load(ctx context.Context, data []byte, location *url.URL, opts LoadOptions) (*Spec, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = opts.ExternalRefs

	var (
		doc *openapi3.T
		err error
	)
	if location != nil {
		doc, err = loader.LoadFromDataWithPath(data, location)
	} else {
		doc, err = loader.LoadFromData(data)
	}
	if err != nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "load document").Wrap(err)
	}
	if opts.ExternalRefs {
		doc.InternalizeRefs(ctx, nil)
	}
	if opts.Validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, ir.Errorf(ir.ErrMalformed, "", "", "invalid document").Wrap(err)
		}
	}

	order, err := KeyOrderOf(data)
	if err != nil {
		return nil, err
	}
	zap.S().Debugw("loaded document", "openapi", doc.OpenAPI, "mappings", len(order))
	return &Spec{Doc: doc, Order: order}, nil
}
