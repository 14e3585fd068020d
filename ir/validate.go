package ir

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var kinds = []any{KindAny, KindString, KindNumber, KindInteger, KindBoolean, KindNull, KindObject, KindArray, KindReference}

// Validate checks the structural invariants of n and its whole subtree. It
// returns [validation.Errors] keyed by JSON field names.
func (n *Node) Validate() error {
	if n == nil {
		return nil
	}
	return validation.ValidateStruct(n,
		validation.Field(&n.Kind, validation.In(kinds...)),
		validation.Field(&n.Ref, validation.By(n.refAlone)),
		validation.Field(&n.Composition),
		validation.Field(&n.Object),
		validation.Field(&n.Array),
		validation.Field(&n.Meta),
	)
}

// refAlone rejects reference nodes that also carry structure.
func (n *Node) refAlone(any) error {
	if n.Ref == nil {
		if n.Kind == KindReference {
			return errors.New("reference kind without a target")
		}
		return nil
	}
	if n.Ref.Name == "" {
		return errors.New("reference without a name")
	}
	if n.String != nil || n.Number != nil || n.Array != nil || n.Object != nil || n.Enum != nil || n.Composition != nil {
		return errors.New("reference carries other structural fields")
	}
	return nil
}

func (c *Composition) Validate() error {
	if c.Empty() {
		return errors.New("composition has no branch")
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.AllOf, validation.NilOrNotEmpty),
		validation.Field(&c.OneOf, validation.NilOrNotEmpty),
		validation.Field(&c.AnyOf, validation.NilOrNotEmpty),
		validation.Field(&c.Types, validation.NilOrNotEmpty),
		validation.Field(&c.Not),
		validation.Field(&c.Discriminator, validation.When(c.Discriminator != nil, validation.By(func(any) error {
			if len(c.OneOf) == 0 && len(c.AnyOf) == 0 {
				return errors.New("discriminator without one-of or any-of branches")
			}
			return nil
		}))),
	)
}

func (d *Discriminator) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.PropertyName, validation.Required),
	)
}

func (o *ObjectConstraints) Validate() error {
	return validation.ValidateStruct(o,
		validation.Field(&o.Properties),
		validation.Field(&o.Required, validation.Each(validation.By(func(v any) error {
			name, _ := v.(string)
			if _, ok := o.Property(name); !ok {
				return fmt.Errorf("%q is not a property", name)
			}
			return nil
		}))),
		validation.Field(&o.Additional),
	)
}

func (a Additional) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Mode, validation.In(AdditionalUnset, AdditionalForbidden, AdditionalOpen, AdditionalTyped)),
		validation.Field(&a.Schema,
			validation.When(a.Mode == AdditionalTyped, validation.NotNil),
			validation.When(a.Mode != AdditionalTyped, validation.Nil),
		),
	)
}

func (p Property) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Node, validation.NotNil),
	)
}

func (a *ArrayConstraints) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Items),
		validation.Field(&a.PrefixItems),
		validation.Field(&a.Contains),
		validation.Field(&a.MinContains, validation.When(a.Contains == nil, validation.Nil)),
		validation.Field(&a.MaxContains, validation.When(a.Contains == nil, validation.Nil)),
	)
}

func (m Meta) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Chain),
	)
}

func (c Chain) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Validations, validation.Each(validation.By(func(v any) error {
			t, _ := v.(Token)
			if !t.Op.Known() || t.Op.IsDefault() {
				return fmt.Errorf("%s is not a validation op", t.Op)
			}
			return nil
		}))),
		validation.Field(&c.Defaults, validation.Each(validation.By(func(v any) error {
			if t, _ := v.(Token); !t.Op.IsDefault() {
				return fmt.Errorf("%s is not a default op", t.Op)
			}
			return nil
		}))),
	)
}
