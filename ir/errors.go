package ir

import (
	"errors"
	"fmt"
	"strings"
)

// Error classes. Every [*Error] carries exactly one of them, so callers can
// test with [errors.Is].
var (
	ErrMalformed        = errors.New("malformed input")
	ErrUnresolvedRef    = errors.New("unresolvable reference")
	ErrUnsupportedShape = errors.New("unsupported shape")
	ErrGraph            = errors.New("graph inconsistency")
)

// Error identifies the component and property path where compilation failed.
type Error struct {
	Class     error
	Component string
	Path      string
	Msg       string
	Err       error
}

// Errorf builds an [*Error] with a formatted message.
func Errorf(class error, component, path, format string, args ...any) *Error {
	return &Error{Class: class, Component: component, Path: path, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to e and returns it.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Component != "" {
		fmt.Fprintf(&b, "%s", e.Component)
	}
	if e.Path != "" {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(e.Path)
	}
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	if e.Class != nil {
		b.WriteString(e.Class.Error())
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Class != nil {
		out = append(out, e.Class)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// At returns a copy of e located at component and path, unless e already
// names a location.
func (e *Error) At(component, path string) *Error {
	cp := *e
	if cp.Component == "" {
		cp.Component = component
	}
	if cp.Path == "" {
		cp.Path = path
	}
	return &cp
}

// Locate annotates err with a location when it is an [*Error] without one.
func Locate(err error, component, path string) error {
	var e *Error
	if errors.As(err, &e) {
		return e.At(component, path)
	}
	return err
}
