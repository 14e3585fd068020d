package writer

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultIndent is the indent width used when Options.Indent is zero.
const DefaultIndent = 2

// Options tune the emitted code.
type Options struct {
	// StrictObjectsByDefault rejects unknown keys on objects that do not
	// say whether additional properties are allowed.
	StrictObjectsByDefault bool `yaml:"strictObjectsByDefault" json:"strictObjectsByDefault"`
	// ImplicitRequiredProperties treats the properties of an object with no
	// required list as required, unless they carry a default.
	ImplicitRequiredProperties bool `yaml:"implicitRequiredProperties" json:"implicitRequiredProperties"`
	// Endpoints adds an endpoints table built from the document's
	// operations.
	Endpoints bool `yaml:"endpoints" json:"endpoints"`
	// Indent is the number of spaces per nesting level.
	Indent int `yaml:"indent" json:"indent"`
}

// Validate checks the options.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Indent, validation.Min(0), validation.Max(8)),
	)
}

func (o Options) indent() int {
	if o.Indent == 0 {
		return DefaultIndent
	}
	return o.Indent
}
