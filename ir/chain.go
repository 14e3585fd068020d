package ir

import (
	"fmt"
	"slices"
)

// Op identifies a chain token. The declaration order is the canonical
// emission order within the validation class: lower bounds come before
// upper bounds.
type Op int

// Chain token ops.
const (
	OpMinLength Op = iota + 1
	OpMaxLength
	OpPattern
	OpFormat
	OpMinimum
	OpExclusiveMinimum
	OpMaximum
	OpExclusiveMaximum
	OpMultipleOf
	OpMinItems
	OpMaxItems
	OpUniqueItems
	OpMinContains
	OpMaxContains
	OpMinProperties
	OpMaxProperties
	OpDefault
)

var opNames = map[Op]string{
	OpMinLength:        "minLength",
	OpMaxLength:        "maxLength",
	OpPattern:          "pattern",
	OpFormat:           "format",
	OpMinimum:          "minimum",
	OpExclusiveMinimum: "exclusiveMinimum",
	OpMaximum:          "maximum",
	OpExclusiveMaximum: "exclusiveMaximum",
	OpMultipleOf:       "multipleOf",
	OpMinItems:         "minItems",
	OpMaxItems:         "maxItems",
	OpUniqueItems:      "uniqueItems",
	OpMinContains:      "minContains",
	OpMaxContains:      "maxContains",
	OpMinProperties:    "minProperties",
	OpMaxProperties:    "maxProperties",
	OpDefault:          "default",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// MarshalText renders the op by name in IR dumps.
func (o Op) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Known reports whether o is a declared op.
func (o Op) Known() bool {
	_, ok := opNames[o]
	return ok
}

// IsDefault reports whether o belongs to the default class.
func (o Op) IsDefault() bool {
	return o == OpDefault
}

// Token is one deferred step appended after a base expression. Value holds
// the operand: a number, a string, a bool, or a default literal.
type Token struct {
	Op    Op  `json:"op"`
	Value any `json:"value,omitempty"`
}

// Chain is the ordered descriptor of deferred steps. Presence and nullable
// steps are not stored here; the writer derives them from Meta.
type Chain struct {
	Validations []Token `json:"validations,omitempty"`
	Defaults    []Token `json:"defaults,omitempty"`
}

// Add places t in its class, keeping the validation class in canonical order.
func (c *Chain) Add(t Token) {
	if t.Op.IsDefault() {
		c.Defaults = append(c.Defaults, t)
		return
	}
	i, _ := slices.BinarySearchFunc(c.Validations, t, func(a, b Token) int {
		if a.Op <= b.Op {
			return -1
		}
		return 1
	})
	c.Validations = slices.Insert(c.Validations, i, t)
}

// Tokens returns every token, validations first.
func (c Chain) Tokens() []Token {
	out := make([]Token, 0, len(c.Validations)+len(c.Defaults))
	out = append(out, c.Validations...)
	return append(out, c.Defaults...)
}

// Filter returns a copy of c keeping only tokens for which keep is true.
func (c Chain) Filter(keep func(Token) bool) Chain {
	var out Chain
	for _, t := range c.Validations {
		if keep(t) {
			out.Validations = append(out.Validations, t)
		}
	}
	for _, t := range c.Defaults {
		if keep(t) {
			out.Defaults = append(out.Defaults, t)
		}
	}
	return out
}

// Len is the total token count.
func (c Chain) Len() int {
	return len(c.Validations) + len(c.Defaults)
}
