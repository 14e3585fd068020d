package graph

import (
	"container/heap"
	"slices"

	"go.uber.org/zap"

	"github.com/Gobd/zodgen/ir"
)

// Result holds the emission order and cycle facts of one registry.
type Result struct {
	// Order lists every component dependency first. Members of one cycle
	// appear together, in declaration order.
	Order []string
	// Circular holds every component that can reach itself.
	Circular map[string]bool
	// Cycles holds the shortest cycle path through each circular
	// component, starting at that component.
	Cycles map[string][][]string
	// Facts holds the per-component dependency facts, also attached to
	// each registry node as Deps.
	Facts map[string]*ir.DepFacts
	// Groups lists the strongly connected components in emission order.
	Groups [][]string
}

// IsCircular reports whether name takes part in a reference cycle.
func (r *Result) IsCircular(name string) bool {
	return r != nil && r.Circular[name]
}

// Position returns the index of name in Order, or -1.
func (r *Result) Position(name string) int {
	return slices.Index(r.Order, name)
}

// builder keeps the graph as indices into the registry's declaration
// order; nodes reference each other only by name.
type builder struct {
	reg   *ir.Registry
	names []string
	index map[string]int
	adj   [][]int
	self  []bool
}

// Build computes order, cycles, and dependency facts for reg and attaches
// the facts to every component node. A reference to a component that is
// not in reg fails the build.
func Build(reg *ir.Registry) (*Result, error) {
	b := &builder{
		reg:   reg,
		names: reg.Names(),
		index: make(map[string]int, reg.Len()),
	}
	for i, name := range b.names {
		b.index[name] = i
	}
	if err := b.edges(); err != nil {
		return nil, err
	}

	comp, groups := b.components()
	res := &Result{
		Circular: map[string]bool{},
		Cycles:   map[string][][]string{},
		Facts:    make(map[string]*ir.DepFacts, len(b.names)),
	}
	circular := make([]bool, len(b.names))
	for _, g := range groups {
		for _, v := range g {
			circular[v] = len(g) > 1 || b.self[v]
		}
	}

	for _, g := range b.order(comp, groups) {
		group := make([]string, len(g))
		for i, v := range g {
			group[i] = b.names[v]
		}
		res.Groups = append(res.Groups, group)
		res.Order = append(res.Order, group...)
	}

	depth := b.depths()
	referencedBy := make([][]string, len(b.names))
	for v, targets := range b.adj {
		for _, w := range targets {
			referencedBy[w] = append(referencedBy[w], b.names[v])
		}
	}
	for v, name := range b.names {
		facts := &ir.DepFacts{
			ReferencedBy: referencedBy[v],
			Depth:        depth[v],
			Circular:     circular[v],
		}
		for _, w := range b.adj[v] {
			facts.References = append(facts.References, b.names[w])
			if circular[v] && comp[w] == comp[v] {
				facts.CycleRefs = append(facts.CycleRefs, b.names[w])
			}
		}
		if circular[v] {
			path := b.cyclePath(v, comp)
			facts.CyclePaths = [][]string{path}
			res.Circular[name] = true
			res.Cycles[name] = facts.CyclePaths
		}
		res.Facts[name] = facts
		node, _ := reg.Lookup(name)
		node.Deps = facts
	}

	zap.S().Debugw("built dependency graph",
		"components", len(b.names), "groups", len(groups), "circular", len(res.Circular))
	return res, nil
}

// edges collects the outgoing references of every component.
func (b *builder) edges() error {
	b.adj = make([][]int, len(b.names))
	b.self = make([]bool, len(b.names))
	for v, name := range b.names {
		node, _ := b.reg.Lookup(name)
		var err error
		seen := map[int]bool{}
		ir.Walk(node, func(path string, n *ir.Node) bool {
			if err != nil {
				return false
			}
			if c := n.Composition; c != nil && c.Discriminator != nil {
				for _, target := range sortedValues(c.Discriminator.Mapping) {
					if ref, ok := ir.ParseRef(target); !ok || !b.reg.Has(ref) {
						err = ir.Errorf(ir.ErrGraph, name, path+"/discriminator/mapping", "mapping target %q is not a component", target)
						return false
					}
				}
			}
			if n.Ref == nil {
				return true
			}
			w, ok := b.index[n.Ref.Name]
			if !ok {
				err = ir.Errorf(ir.ErrGraph, name, path, "reference to unknown component %q", n.Ref.Name)
				return false
			}
			if w == v {
				b.self[v] = true
			}
			if !seen[w] {
				seen[w] = true
				b.adj[v] = append(b.adj[v], w)
			}
			return true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func sortedValues(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// components runs Tarjan's algorithm. It returns the group id of every
// node and the groups, each sorted by declaration index.
func (b *builder) components() ([]int, [][]int) {
	n := len(b.names)
	t := &tarjan{
		adj:     b.adj,
		index:   make([]int, n),
		low:     make([]int, n),
		onStack: make([]bool, n),
		comp:    make([]int, n),
	}
	for i := range t.index {
		t.index[i] = -1
	}
	for v := range n {
		if t.index[v] < 0 {
			t.visit(v)
		}
	}
	return t.comp, t.groups
}

type tarjan struct {
	adj     [][]int
	index   []int
	low     []int
	onStack []bool
	stack   []int
	next    int
	comp    []int
	groups  [][]int
}

func (t *tarjan) visit(v int) {
	t.index[v], t.low[v] = t.next, t.next
	t.next++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.adj[v] {
		switch {
		case t.index[w] < 0:
			t.visit(w)
			t.low[v] = min(t.low[v], t.low[w])
		case t.onStack[w]:
			t.low[v] = min(t.low[v], t.index[w])
		}
	}

	if t.low[v] != t.index[v] {
		return
	}
	var group []int
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		t.comp[w] = len(t.groups)
		group = append(group, w)
		if w == v {
			break
		}
	}
	slices.Sort(group)
	t.groups = append(t.groups, group)
}

// order sorts the condensation dependency first. Among groups that are
// ready at the same time the one declared first goes first.
func (b *builder) order(comp []int, groups [][]int) [][]int {
	pending := make([]int, len(groups))
	dependents := make([][]int, len(groups))
	for g, members := range groups {
		deps := map[int]bool{}
		for _, v := range members {
			for _, w := range b.adj[v] {
				if d := comp[w]; d != g && !deps[d] {
					deps[d] = true
					dependents[d] = append(dependents[d], g)
				}
			}
		}
		pending[g] = len(deps)
	}

	ready := &groupHeap{groups: groups}
	for g := range groups {
		if pending[g] == 0 {
			heap.Push(ready, g)
		}
	}
	out := make([][]int, 0, len(groups))
	for ready.Len() > 0 {
		g := heap.Pop(ready).(int)
		out = append(out, groups[g])
		for _, d := range dependents[g] {
			pending[d]--
			if pending[d] == 0 {
				heap.Push(ready, d)
			}
		}
	}
	return out
}

// groupHeap is a min-heap of group ids keyed by their first declared member.
type groupHeap struct {
	groups [][]int
	ids    []int
}

func (h *groupHeap) Len() int           { return len(h.ids) }
func (h *groupHeap) Less(i, j int) bool { return h.groups[h.ids[i]][0] < h.groups[h.ids[j]][0] }
func (h *groupHeap) Swap(i, j int)      { h.ids[i], h.ids[j] = h.ids[j], h.ids[i] }
func (h *groupHeap) Push(x any)         { h.ids = append(h.ids, x.(int)) }
func (h *groupHeap) Pop() any {
	last := h.ids[len(h.ids)-1]
	h.ids = h.ids[:len(h.ids)-1]
	return last
}

// cyclePath finds the shortest path from v back to itself inside its group.
// The returned path starts at v and omits the closing repeat of v.
func (b *builder) cyclePath(v int, comp []int) []string {
	if b.self[v] {
		return []string{b.names[v]}
	}
	prev := map[int]int{v: -1}
	queue := []int{v}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, w := range b.adj[u] {
			if comp[w] != comp[v] {
				continue
			}
			if w == v {
				var rev []int
				for x := u; x != -1; x = prev[x] {
					rev = append(rev, x)
				}
				path := make([]string, len(rev))
				for i, x := range rev {
					path[len(rev)-1-i] = b.names[x]
				}
				return path
			}
			if _, seen := prev[w]; !seen {
				prev[w] = u
				queue = append(queue, w)
			}
		}
	}
	return []string{b.names[v]}
}

// depths is the breadth-first distance from the nearest root, a component
// no other component refers to. Components no root reaches get zero.
func (b *builder) depths() []int {
	incoming := make([]bool, len(b.names))
	for v, targets := range b.adj {
		for _, w := range targets {
			if w != v {
				incoming[w] = true
			}
		}
	}
	depth := make([]int, len(b.names))
	seen := make([]bool, len(b.names))
	var queue []int
	for v := range b.names {
		if !incoming[v] {
			seen[v] = true
			queue = append(queue, v)
		}
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, w := range b.adj[u] {
			if !seen[w] {
				seen[w] = true
				depth[w] = depth[u] + 1
				queue = append(queue, w)
			}
		}
	}
	return depth
}
