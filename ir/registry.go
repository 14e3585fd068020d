package ir

import (
	"fmt"
	"strings"
)

// ComponentPrefix is the canonical path prefix of every component reference.
const ComponentPrefix = "#/components/schemas/"

// Ref points at a named component.
type Ref struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// ComponentRef returns the canonical reference to the named component.
func ComponentRef(name string) *Ref {
	return &Ref{Path: ComponentPrefix + escapePointer(name), Name: name}
}

// NewReference returns a reference node pointing at name.
func NewReference(name string) *Node {
	return &Node{Kind: KindReference, Ref: ComponentRef(name)}
}

// ParseRef extracts the component name from a canonical reference path.
// Paths that do not name a component directly are rejected.
func ParseRef(path string) (string, bool) {
	name, ok := strings.CutPrefix(path, ComponentPrefix)
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return unescapePointer(name), true
}

func escapePointer(s string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(s)
}

func unescapePointer(s string) string {
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(s)
}

// Names is satisfied by anything that can tell whether a component exists.
type Names interface {
	Has(name string) bool
}

// NameSet is a plain set of component names.
type NameSet map[string]struct{}

// NewNameSet returns a set holding names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Has reports whether name is in the set.
func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Registry is the ordered name to node map of a document's components.
// Names keep their declaration order.
type Registry struct {
	names []string
	index map[string]int
	nodes map[string]*Node
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: map[string]int{},
		nodes: map[string]*Node{},
	}
}

// Add appends a component. Adding a name twice is an error.
func (r *Registry) Add(name string, n *Node) error {
	if name == "" {
		return Errorf(ErrMalformed, "", "", "component name is empty")
	}
	if _, ok := r.index[name]; ok {
		return Errorf(ErrMalformed, name, "", "duplicate component")
	}
	if n == nil {
		return Errorf(ErrMalformed, name, "", "component has no schema")
	}
	r.index[name] = len(r.names)
	r.names = append(r.names, name)
	r.nodes[name] = n
	return nil
}

// MustAdd is like [Registry.Add] but panics on error.
func (r *Registry) MustAdd(name string, n *Node) *Registry {
	if err := r.Add(name, n); err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the named component.
func (r *Registry) Lookup(name string) (*Node, bool) {
	n, ok := r.nodes[name]
	return n, ok
}

// Has reports whether name is a component.
func (r *Registry) Has(name string) bool {
	_, ok := r.nodes[name]
	return ok
}

// Index returns the declaration position of name, or -1.
func (r *Registry) Index(name string) int {
	if i, ok := r.index[name]; ok {
		return i
	}
	return -1
}

// Names returns the component names in declaration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Len is the number of components.
func (r *Registry) Len() int {
	return len(r.names)
}

// Resolve follows a reference node to its component, through any chain
// of alias components. It fails on a dangling name or an alias loop.
func (r *Registry) Resolve(n *Node) (*Node, error) {
	seen := map[string]bool{}
	for n != nil && n.Ref != nil {
		name := n.Ref.Name
		if seen[name] {
			return nil, Errorf(ErrGraph, name, "", "alias loop")
		}
		seen[name] = true
		next, ok := r.nodes[name]
		if !ok {
			return nil, Errorf(ErrUnresolvedRef, name, "", "no component named %q", name)
		}
		n = next
	}
	return n, nil
}

func (r *Registry) String() string {
	return fmt.Sprintf("registry(%s)", strings.Join(r.names, ", "))
}
