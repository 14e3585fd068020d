package writer

import (
	"fmt"

	"github.com/Gobd/zodgen/ir"
)

// formats maps string formats to their zod checks. Formats not listed are
// annotations only.
var formats = map[string]string{
	"email":     ".email()",
	"uuid":      ".uuid()",
	"uri":       ".url()",
	"url":       ".url()",
	"date-time": ".datetime({ offset: true })",
	"date":      ".date()",
	"time":      ".time()",
	"duration":  ".duration()",
	"ipv4":      ".ipv4()",
	"ipv6":      ".ipv6()",
	"byte":      ".base64()",
}

// token renders one chain step of n.
func (e *emitter) token(n *ir.Node, t ir.Token, path string, level int) (string, error) {
	if want, ok := tokenKinds[t.Op]; ok && !want[n.Kind] {
		return "", e.fail(ir.ErrUnsupportedShape, path, "%s does not apply to kind %q", t.Op, n.Kind)
	}
	switch t.Op {
	case ir.OpMinLength:
		return ".min(" + count(t.Value) + ")", nil
	case ir.OpMaxLength:
		return ".max(" + count(t.Value) + ")", nil
	case ir.OpPattern:
		s, ok := t.Value.(string)
		if !ok {
			return "", e.fail(ir.ErrUnsupportedShape, path, "pattern %v is not a string", t.Value)
		}
		return ".regex(new RegExp(" + quote(s) + "))", nil
	case ir.OpFormat:
		s, _ := t.Value.(string)
		return formats[s], nil
	case ir.OpMinimum:
		return ".gte(" + count(t.Value) + ")", nil
	case ir.OpExclusiveMinimum:
		return ".gt(" + count(t.Value) + ")", nil
	case ir.OpMaximum:
		return ".lte(" + count(t.Value) + ")", nil
	case ir.OpExclusiveMaximum:
		return ".lt(" + count(t.Value) + ")", nil
	case ir.OpMultipleOf:
		return ".multipleOf(" + count(t.Value) + ")", nil
	case ir.OpMinItems:
		if tuple(n) {
			return lengthRefine(">=", t.Value, "items"), nil
		}
		return ".min(" + count(t.Value) + ")", nil
	case ir.OpMaxItems:
		if tuple(n) {
			return lengthRefine("<=", t.Value, "items"), nil
		}
		return ".max(" + count(t.Value) + ")", nil
	case ir.OpUniqueItems:
		return `.refine((items) => new Set(items.map((item) => JSON.stringify(item))).size === items.length, { message: "Items must be unique" })`, nil
	case ir.OpMinContains:
		return e.contains(n.Array, path, level, ">=", t.Value)
	case ir.OpMaxContains:
		return e.contains(n.Array, path, level, "<=", t.Value)
	case ir.OpMinProperties:
		return keysRefine(">=", t.Value), nil
	case ir.OpMaxProperties:
		return keysRefine("<=", t.Value), nil
	case ir.OpDefault:
		lit, err := literal(t.Value)
		if err != nil {
			return "", e.fail(ir.ErrUnsupportedShape, path, "default %v: %v", t.Value, err)
		}
		return ".default(" + lit + ")", nil
	}
	return "", e.fail(ir.ErrUnsupportedShape, path, "no lowering for %s", t.Op)
}

var (
	stringKinds = map[ir.Kind]bool{ir.KindString: true}
	numberKinds = map[ir.Kind]bool{ir.KindNumber: true, ir.KindInteger: true}
	arrayKinds  = map[ir.Kind]bool{ir.KindArray: true}
	objectKinds = map[ir.Kind]bool{ir.KindObject: true}

	tokenKinds = map[ir.Op]map[ir.Kind]bool{
		ir.OpMinLength:        stringKinds,
		ir.OpMaxLength:        stringKinds,
		ir.OpPattern:          stringKinds,
		ir.OpFormat:           stringKinds,
		ir.OpMinimum:          numberKinds,
		ir.OpExclusiveMinimum: numberKinds,
		ir.OpMaximum:          numberKinds,
		ir.OpExclusiveMaximum: numberKinds,
		ir.OpMultipleOf:       numberKinds,
		ir.OpMinItems:         arrayKinds,
		ir.OpMaxItems:         arrayKinds,
		ir.OpUniqueItems:      arrayKinds,
		ir.OpMinContains:      arrayKinds,
		ir.OpMaxContains:      arrayKinds,
		ir.OpMinProperties:    objectKinds,
		ir.OpMaxProperties:    objectKinds,
	}
)

func tuple(n *ir.Node) bool {
	return n.Array != nil && len(n.Array.PrefixItems) > 0
}

func lengthRefine(cmp string, v any, what string) string {
	return fmt.Sprintf(".refine((items) => items.length %s %s, { message: %s })", cmp, count(v), quote(bound(cmp, v, what)))
}

func keysRefine(cmp string, v any) string {
	return fmt.Sprintf(".refine((value) => Object.keys(value).length %s %s, { message: %s })", cmp, count(v), quote(bound(cmp, v, "properties")))
}

// contains renders a refine counting the items that match the contains
// schema of a.
func (e *emitter) contains(a *ir.ArrayConstraints, path string, level int, cmp string, v any) (string, error) {
	if a == nil || a.Contains == nil {
		return "", e.fail(ir.ErrUnsupportedShape, path, "contains bound without a contains schema")
	}
	schema, err := e.expr(a.Contains, path+"/contains", level, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(".refine((items) => items.filter((item) => %s.safeParse(item).success).length %s %s, { message: %s })",
		schema, cmp, count(v), quote(bound(cmp, v, "matching items"))), nil
}

func bound(cmp string, v any, what string) string {
	if cmp == ">=" {
		return fmt.Sprintf("Expected at least %s %s", count(v), what)
	}
	return fmt.Sprintf("Expected at most %s %s", count(v), what)
}
