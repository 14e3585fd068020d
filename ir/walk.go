package ir

import (
	"strconv"
	"strings"
)

// Child is a directly nested node together with its path segment.
type Child struct {
	Segment string
	Node    *Node
}

// Children lists the direct children of n in a stable order: properties,
// additional properties, items, prefix items, contains, then composition
// branches.
func (n *Node) Children() []Child {
	if n == nil {
		return nil
	}
	var out []Child
	if o := n.Object; o != nil {
		for _, p := range o.Properties {
			out = append(out, Child{"properties/" + escapePointer(p.Name), p.Node})
		}
		if o.Additional.Schema != nil {
			out = append(out, Child{"additionalProperties", o.Additional.Schema})
		}
	}
	if a := n.Array; a != nil {
		if a.Items != nil {
			out = append(out, Child{"items", a.Items})
		}
		for i, c := range a.PrefixItems {
			out = append(out, Child{"prefixItems/" + strconv.Itoa(i), c})
		}
		if a.Contains != nil {
			out = append(out, Child{"contains", a.Contains})
		}
	}
	if c := n.Composition; c != nil {
		out = appendBranches(out, "allOf", c.AllOf)
		out = appendBranches(out, "oneOf", c.OneOf)
		out = appendBranches(out, "anyOf", c.AnyOf)
		if c.Not != nil {
			out = append(out, Child{"not", c.Not})
		}
		out = appendBranches(out, "types", c.Types)
	}
	return out
}

func appendBranches(out []Child, key string, nodes []*Node) []Child {
	for i, b := range nodes {
		out = append(out, Child{key + "/" + strconv.Itoa(i), b})
	}
	return out
}

// Walk visits n and every descendant depth first, passing the JSON pointer
// of each node relative to n. Returning false from fn skips the subtree.
func Walk(n *Node, fn func(path string, n *Node) bool) {
	walk(n, "", fn)
}

func walk(n *Node, path string, fn func(string, *Node) bool) {
	if n == nil || !fn(path, n) {
		return
	}
	for _, c := range n.Children() {
		walk(c.Node, path+"/"+c.Segment, fn)
	}
}

// References returns the component names n refers to, deduplicated and in
// first-seen walk order.
func References(n *Node) []string {
	var out []string
	seen := map[string]bool{}
	Walk(n, func(_ string, c *Node) bool {
		if c.Ref != nil && !seen[c.Ref.Name] {
			seen[c.Ref.Name] = true
			out = append(out, c.Ref.Name)
		}
		return true
	})
	return out
}

// JoinPath appends a segment to a JSON pointer.
func JoinPath(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(s)
	}
	return b.String()
}
