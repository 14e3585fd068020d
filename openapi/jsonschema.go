package openapi

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
	"gopkg.in/yaml.v3"

	"github.com/Gobd/zodgen/ir"
)

// JSONSchemaSpec is a loaded JSON Schema document together with its
// declared key order.
type JSONSchemaSpec struct {
	Root  *jsonschema.Schema
	Order ir.KeyOrder
}

// LoadJSONSchema reads the JSON Schema document at path. YAML documents
// are accepted too.
func LoadJSONSchema(path string) (*JSONSchemaSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "read %s", path).Wrap(err)
	}
	return LoadJSONSchemaData(data)
}

// LoadJSONSchemaData reads a JSON Schema document held in memory and checks
// that its references resolve.
func LoadJSONSchemaData(data []byte) (*JSONSchemaSpec, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "parse schema").Wrap(err)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "parse schema").Wrap(err)
	}
	root := &jsonschema.Schema{}
	if err := json.Unmarshal(b, root); err != nil {
		return nil, ir.Errorf(ir.ErrMalformed, "", "", "decode schema").Wrap(err)
	}
	// The resolver refuses documents carrying both $defs and definitions.
	// Those are left to the converter, which reports dangling references.
	if root.Defs == nil || root.Definitions == nil {
		if _, err := root.Resolve(nil); err != nil {
			return nil, ir.Errorf(ir.ErrMalformed, "", "", "resolve schema").Wrap(err)
		}
	}
	order, err := KeyOrderOf(data)
	if err != nil {
		return nil, err
	}
	return &JSONSchemaSpec{Root: root, Order: order}, nil
}
