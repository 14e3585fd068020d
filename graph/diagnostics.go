package graph

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// Cycle reports the cycle paths through one circular component.
type Cycle struct {
	Component string     `json:"component"`
	Paths     [][]string `json:"paths"`
}

// Diagnostics is the reportable summary of a build.
type Diagnostics struct {
	Order    []string `json:"order"`
	Circular []Cycle  `json:"circular,omitempty"`
}

// Diagnostics lists the circular components in emission order.
func (r *Result) Diagnostics() Diagnostics {
	d := Diagnostics{Order: r.Order}
	for _, name := range r.Order {
		if r.Circular[name] {
			d.Circular = append(d.Circular, Cycle{Component: name, Paths: r.Cycles[name]})
		}
	}
	return d
}

// JSON renders d as indented JSON.
func (d Diagnostics) JSON() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

func (d Diagnostics) String() string {
	var b strings.Builder
	for _, c := range d.Circular {
		for _, p := range c.Paths {
			fmt.Fprintf(&b, "%s: %s -> %s\n", c.Component, strings.Join(p, " -> "), p[0])
		}
	}
	return b.String()
}
