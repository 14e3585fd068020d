package openapi

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// Component names a schema under #/components/schemas. Passed where a Go
// value is expected, it becomes a reference instead of an inline schema.
type Component string

// SchemaFor generates an OpenAPI schema for value. Struct fields take
// their constraints from a `validate` tag:
//
//	Name string `json:"name" validate:"required,min=1,max=200"`
//	Kind string `json:"kind" validate:"enum=cat|dog"`
//
// min and max bound lengths for strings, item counts for slices, and values
// for numbers. pattern, format, and enum copy through as written.
func SchemaFor(value any) (*openapi3.SchemaRef, error) {
	if c, ok := value.(Component); ok {
		return openapi3.NewSchemaRef("#/components/schemas/"+string(c), nil), nil
	}
	g := openapi3gen.NewGenerator(openapi3gen.SchemaCustomizer(describeTags))
	return g.NewSchemaRefForValue(value, nil)
}

// describeTags applies `validate` tags to the schema generated for one
// field, and the required flags of a struct to the struct's schema.
func describeTags(name string, t reflect.Type, tag reflect.StructTag, schema *openapi3.Schema) error {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		for i := range t.NumField() {
			sf := t.Field(i)
			key := strings.Split(sf.Tag.Get("json"), ",")[0]
			if key == "" || key == "-" {
				continue
			}
			if _, ok := schema.Properties[key]; !ok {
				continue
			}
			for _, rule := range strings.Split(sf.Tag.Get("validate"), ",") {
				if rule == "required" {
					schema.Required = append(schema.Required, key)
				}
			}
		}
	}

	rules := tag.Get("validate")
	if rules == "" {
		return nil
	}
	for _, rule := range strings.Split(rules, ",") {
		key, arg, _ := strings.Cut(rule, "=")
		if err := describe(schema, t, key, arg); err != nil {
			return fmt.Errorf("%s: validate %q: %w", name, rule, err)
		}
	}
	return nil
}

func describe(schema *openapi3.Schema, t reflect.Type, key, arg string) error {
	switch key {
	case "", "required":
		return nil
	case "min", "max":
		n, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return err
		}
		setBound(schema, t, key == "min", n)
	case "pattern":
		schema.Pattern = arg
	case "format":
		schema.Format = arg
	case "enum":
		for _, v := range strings.Split(arg, "|") {
			schema.Enum = append(schema.Enum, v)
		}
	case "nullable":
		schema.Nullable = true
	case "deprecated":
		schema.Deprecated = true
	default:
		return fmt.Errorf("unknown rule %q", key)
	}
	return nil
}

func setBound(schema *openapi3.Schema, t reflect.Type, lower bool, n float64) {
	u := uint64(max(n, 0))
	switch t.Kind() {
	case reflect.String:
		if lower {
			schema.MinLength = u
		} else {
			schema.MaxLength = &u
		}
	case reflect.Slice, reflect.Array:
		if lower {
			schema.MinItems = u
		} else {
			schema.MaxItems = &u
		}
	case reflect.Map:
		if lower {
			schema.MinProps = u
		} else {
			schema.MaxProps = &u
		}
	default:
		if lower {
			schema.Min = &n
		} else {
			schema.Max = &n
		}
	}
}
