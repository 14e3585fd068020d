package convert

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/Gobd/zodgen/ir"
)

// JSONSchemaDocument converts a standalone JSON Schema document. Each
// $defs and definitions entry becomes a component; the root schema becomes
// the component rootName unless rootName is empty or the root only holds
// definitions.
func JSONSchemaDocument(root *jsonschema.Schema, rootName string, opts DocumentOptions) (*ir.Document, error) {
	if root == nil {
		return nil, ir.Errorf(ir.ErrMalformed, rootName, "", "no schema")
	}
	type entry struct {
		schema  *jsonschema.Schema
		pointer string
	}
	entries := map[string]entry{}
	var names []string
	add := func(defs map[string]*jsonschema.Schema, base string) error {
		for _, name := range opts.Order.Sort(base, sortedKeys(defs)) {
			if _, dup := entries[name]; dup {
				return ir.Errorf(ir.ErrMalformed, name, base+"/"+escape(name), "duplicate definition")
			}
			entries[name] = entry{defs[name], base + "/" + escape(name)}
			names = append(names, name)
		}
		return nil
	}
	if err := add(root.Defs, "/$defs"); err != nil {
		return nil, err
	}
	if err := add(root.Definitions, "/definitions"); err != nil {
		return nil, err
	}

	body := *root
	body.Defs, body.Definitions = nil, nil
	if rootName != "" && !isBare(&body) {
		if _, dup := entries[rootName]; dup {
			return nil, ir.Errorf(ir.ErrMalformed, rootName, "", "root name collides with a definition")
		}
		entries[rootName] = entry{&body, ""}
		names = append(names, rootName)
	}

	known := ir.NewNameSet(names...)
	reg, err := components(names, func(name string) (*ir.Node, error) {
		e := entries[name]
		return JSONSchema(e.schema, Context{
			Names:       known,
			Order:       opts.Order,
			Component:   name,
			Pointer:     e.pointer,
			RefPrefixes: []string{"#/$defs/", "#/definitions/"},
			RootName:    rootName,
		})
	}, opts.Workers)
	if err != nil {
		return nil, err
	}
	return &ir.Document{Components: reg}, nil
}

// isBare reports whether s carries nothing but identification keywords.
func isBare(s *jsonschema.Schema) bool {
	cp := *s
	cp.ID, cp.Schema, cp.Comment, cp.Title, cp.Description = "", "", "", "", ""
	v, ok := boolSchema(&cp)
	return ok && v
}
