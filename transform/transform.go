package transform

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/asaskevich/govalidator"
)

var identRx = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// reserved lists words that cannot name a binding in a TypeScript module.
var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
	"implements": true, "interface": true, "let": true, "package": true, "private": true,
	"protected": true, "public": true, "static": true, "yield": true, "await": true,
	"any": true, "boolean": true, "number": true, "string": true, "symbol": true,
	"never": true, "unknown": true, "object": true, "undefined": true, "z": true,
}

// IsIdentifier reports whether s can be used as a binding name as is.
func IsIdentifier(s string) bool {
	return identRx.MatchString(s) && !reserved[s]
}

// Identifier turns a component name into a binding name. Names that are
// already usable are kept; others are split on separators and joined in
// PascalCase.
func Identifier(name string) string {
	if IsIdentifier(name) {
		return name
	}
	var b strings.Builder
	for _, w := range words(name) {
		b.WriteString(pascal(w))
	}
	out := b.String()
	switch {
	case out == "":
		out = "_"
	case unicode.IsDigit(rune(out[0])):
		out = "_" + out
	}
	if reserved[out] {
		out += "_"
	}
	return out
}

// words splits s on every character that cannot appear in an identifier.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r == '_' || r == '$' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
	})
}

func pascal(w string) string {
	if w == strings.ToLower(w) {
		return govalidator.UnderscoreToCamelCase(w)
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func camel(w string) string {
	p := pascal(w)
	if p == "" {
		return p
	}
	return strings.ToLower(p[:1]) + p[1:]
}

// PropertyKey renders an object key, quoting it when it is not a plain
// identifier. Reserved words are fine as keys.
func PropertyKey(name string) string {
	if identRx.MatchString(name) {
		return name
	}
	return strconv.Quote(name)
}

// OperationName derives a camelCase name for an operation without an ID,
// e.g. GET /pets/{petId} becomes getPetsByPetId.
func OperationName(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		param := strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
		if param {
			b.WriteString("By")
		}
		for _, w := range words(seg) {
			b.WriteString(pascal(w))
		}
	}
	return b.String()
}

// Namer hands out unique binding names. Collisions get a numeric suffix in
// the order names are requested.
type Namer struct {
	assigned map[string]string
	taken    map[string]bool
}

// NewNamer returns a Namer that never yields any of the reserved names.
func NewNamer(reservedNames ...string) *Namer {
	n := &Namer{assigned: map[string]string{}, taken: map[string]bool{}}
	for _, r := range reservedNames {
		n.taken[r] = true
	}
	return n
}

// Name returns the binding name for key, assigning one on first use.
func (n *Namer) Name(key string) string {
	if id, ok := n.assigned[key]; ok {
		return id
	}
	base := Identifier(key)
	id := base
	for i := 2; n.taken[id]; i++ {
		id = base + strconv.Itoa(i)
	}
	n.taken[id] = true
	n.assigned[key] = id
	return id
}

// Camel renders s as a camelCase identifier.
func Camel(s string) string {
	var b strings.Builder
	for i, w := range words(s) {
		if i == 0 {
			b.WriteString(camel(w))
			continue
		}
		b.WriteString(pascal(w))
	}
	out := b.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	if reserved[out] {
		out += "_"
	}
	return out
}

// SafeFileName turns a name into a lower-case file name.
func SafeFileName(name string) string {
	return govalidator.SafeFileName(govalidator.CamelCaseToUnderscore(name))
}
