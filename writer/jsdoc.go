package writer

import (
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/Gobd/zodgen/ir"
)

// jsdoc renders the doc comment for m, indented by pad, or "" when m has
// nothing to say.
func jsdoc(m ir.Meta, pad string) string {
	var lines []string
	if t := strings.TrimSpace(m.Title); t != "" {
		lines = append(lines, t)
	}
	if d := strings.TrimSpace(m.Description); d != "" {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, strings.Split(d, "\n")...)
	}
	if m.Deprecated {
		lines = append(lines, "@deprecated")
	}
	for _, ex := range m.Examples {
		if lit, err := literal(ex); err == nil {
			lines = append(lines, "@example "+lit)
		}
	}
	if d := m.ExternalDocs; d != nil && govalidator.IsURL(d.URL) {
		see := "@see " + d.URL
		if d.Description != "" {
			see += " " + d.Description
		}
		lines = append(lines, see)
	}
	if len(lines) == 0 {
		return ""
	}
	for i, l := range lines {
		lines[i] = strings.ReplaceAll(strings.TrimRight(l, " \t\r"), "*/", "*\\/")
	}
	if len(lines) == 1 {
		return pad + "/** " + lines[0] + " */\n"
	}
	var b strings.Builder
	b.WriteString(pad + "/**\n")
	for _, l := range lines {
		if l == "" {
			b.WriteString(pad + " *\n")
			continue
		}
		b.WriteString(pad + " * " + l + "\n")
	}
	b.WriteString(pad + " */\n")
	return b.String()
}
