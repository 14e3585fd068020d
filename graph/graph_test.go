package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gobd/zodgen/graph"
	"github.com/Gobd/zodgen/ir"
)

func object(props ...ir.Property) *ir.Node {
	return &ir.Node{Kind: ir.KindObject, Object: &ir.ObjectConstraints{Properties: props}}
}

func prop(name string, n *ir.Node) ir.Property {
	return ir.Property{Name: name, Node: n}
}

func arrayOf(n *ir.Node) *ir.Node {
	return &ir.Node{Kind: ir.KindArray, Array: &ir.ArrayConstraints{Items: n}}
}

func ref(name string) *ir.Node { return ir.NewReference(name) }

// assertTopological checks that every edge outside a cycle points backwards
// in the order.
func assertTopological(t *testing.T, reg *ir.Registry, res *graph.Result) {
	t.Helper()
	require.ElementsMatch(t, reg.Names(), res.Order)
	for _, name := range reg.Names() {
		for _, dep := range res.Facts[name].References {
			if res.Circular[name] && res.Circular[dep] && contains(res.Facts[name].CycleRefs, dep) {
				continue
			}
			assert.Less(t, res.Position(dep), res.Position(name), "%s depends on %s", name, dep)
		}
	}
}

// assertCycleMembership checks that every node on a recorded path is circular.
func assertCycleMembership(t *testing.T, res *graph.Result) {
	t.Helper()
	for name, paths := range res.Cycles {
		require.True(t, res.Circular[name])
		for _, p := range paths {
			require.NotEmpty(t, p)
			assert.Equal(t, name, p[0])
			for _, member := range p {
				assert.True(t, res.Circular[member], "%s on cycle of %s", member, name)
			}
		}
	}
}

func contains(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func TestSelfReference(t *testing.T) {
	reg := ir.NewRegistry().MustAdd("Node", object(prop("children", arrayOf(ref("Node")))))

	res, err := graph.Build(reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"Node"}, res.Order)
	assert.True(t, res.IsCircular("Node"))
	assert.Equal(t, [][]string{{"Node"}}, res.Cycles["Node"])

	node, _ := reg.Lookup("Node")
	require.NotNil(t, node.Deps)
	assert.True(t, node.Deps.Circular)
	assert.Equal(t, []string{"Node"}, node.Deps.CycleRefs)
	assert.Equal(t, []string{"Node"}, node.Deps.ReferencedBy)
	assert.Equal(t, 0, node.Deps.Depth)
	assertCycleMembership(t, res)
}

func TestDependencyFirst(t *testing.T) {
	reg := ir.NewRegistry().
		MustAdd("A", object(prop("b", ref("B")))).
		MustAdd("B", object(prop("name", &ir.Node{Kind: ir.KindString})))

	res, err := graph.Build(reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, res.Order)
	assert.Empty(t, res.Circular)
	assert.Equal(t, []string{"B"}, res.Facts["A"].References)
	assert.Equal(t, []string{"A"}, res.Facts["B"].ReferencedBy)
	assert.Equal(t, 0, res.Facts["A"].Depth)
	assert.Equal(t, 1, res.Facts["B"].Depth)
	assertTopological(t, reg, res)
}

func TestMutualCycleMarksEveryMember(t *testing.T) {
	reg := ir.NewRegistry().
		MustAdd("Owner", object(prop("pets", arrayOf(ref("Pet"))))).
		MustAdd("Pet", object(prop("owner", ref("Owner")), prop("tag", ref("Tag")))).
		MustAdd("Tag", &ir.Node{Kind: ir.KindString}).
		MustAdd("Shop", object(prop("owner", ref("Owner"))))

	res, err := graph.Build(reg)
	require.NoError(t, err)

	assert.True(t, res.IsCircular("Owner"))
	assert.True(t, res.IsCircular("Pet"))
	assert.False(t, res.IsCircular("Tag"))
	assert.False(t, res.IsCircular("Shop"))
	assert.Equal(t, [][]string{{"Owner", "Pet"}}, res.Cycles["Owner"])
	assert.Equal(t, [][]string{{"Pet", "Owner"}}, res.Cycles["Pet"])
	assert.Equal(t, []string{"Owner"}, res.Facts["Pet"].CycleRefs)
	assert.Equal(t, []string{"Tag", "Owner", "Pet", "Shop"}, res.Order)
	assert.Equal(t, [][]string{{"Tag"}, {"Owner", "Pet"}, {"Shop"}}, res.Groups)

	assert.Equal(t, 0, res.Facts["Shop"].Depth)
	assert.Equal(t, 1, res.Facts["Owner"].Depth)
	assert.Equal(t, 2, res.Facts["Pet"].Depth)
	assert.Equal(t, 3, res.Facts["Tag"].Depth)

	assertTopological(t, reg, res)
	assertCycleMembership(t, res)
}

func TestShortestCyclePath(t *testing.T) {
	// A -> B -> C -> A and A -> C -> A; the second is shorter.
	reg := ir.NewRegistry().
		MustAdd("A", object(prop("b", ref("B")), prop("c", ref("C")))).
		MustAdd("B", object(prop("c", ref("C")))).
		MustAdd("C", object(prop("a", ref("A"))))

	res, err := graph.Build(reg)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"A", "C"}}, res.Cycles["A"])
	assert.Equal(t, [][]string{{"B", "C", "A"}}, res.Cycles["B"])
	assert.Equal(t, [][]string{{"C", "A"}}, res.Cycles["C"])
	assertCycleMembership(t, res)
}

func TestTiesFollowDeclarationOrder(t *testing.T) {
	reg := ir.NewRegistry().
		MustAdd("Zebra", &ir.Node{Kind: ir.KindString}).
		MustAdd("Apple", &ir.Node{Kind: ir.KindString}).
		MustAdd("Mango", object(prop("z", ref("Zebra")))).
		MustAdd("Kiwi", &ir.Node{Kind: ir.KindBoolean})

	res, err := graph.Build(reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Zebra", "Apple", "Mango", "Kiwi"}, res.Order)
	assertTopological(t, reg, res)
}

func TestReferencesThroughComposition(t *testing.T) {
	reg := ir.NewRegistry().
		MustAdd("Pet", &ir.Node{Composition: &ir.Composition{
			OneOf:         []*ir.Node{ref("Cat"), ref("Dog")},
			Discriminator: &ir.Discriminator{PropertyName: "type"},
		}}).
		MustAdd("Cat", object(prop("type", &ir.Node{Kind: ir.KindString}))).
		MustAdd("Dog", &ir.Node{Composition: &ir.Composition{AllOf: []*ir.Node{ref("Cat")}}}).
		MustAdd("Bag", &ir.Node{Kind: ir.KindObject, Object: &ir.ObjectConstraints{
			Additional: ir.Additional{Mode: ir.AdditionalTyped, Schema: ref("Pet")},
		}})

	res, err := graph.Build(reg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cat", "Dog", "Pet", "Bag"}, res.Order)
	assert.Equal(t, []string{"Cat", "Dog"}, res.Facts["Pet"].References)
	assert.Equal(t, []string{"Pet", "Dog"}, res.Facts["Cat"].ReferencedBy)
	assertTopological(t, reg, res)
}

func TestUnknownReferenceFails(t *testing.T) {
	reg := ir.NewRegistry().MustAdd("A", object(prop("ghost", ref("Ghost"))))

	_, err := graph.Build(reg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ir.ErrGraph)

	var e *ir.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "A", e.Component)
	assert.Equal(t, "/properties/ghost", e.Path)
}

func TestUnknownMappingTargetFails(t *testing.T) {
	reg := ir.NewRegistry().
		MustAdd("Cat", object()).
		MustAdd("Pet", &ir.Node{Composition: &ir.Composition{
			OneOf: []*ir.Node{ref("Cat")},
			Discriminator: &ir.Discriminator{
				PropertyName: "type",
				Mapping:      map[string]string{"dog": ir.ComponentRef("Dog").Path},
			},
		}})
	_, err := graph.Build(reg)
	assert.ErrorIs(t, err, ir.ErrGraph)
}

func TestDiagnostics(t *testing.T) {
	reg := ir.NewRegistry().
		MustAdd("A", object(prop("b", ref("B")))).
		MustAdd("B", object(prop("a", ref("A")))).
		MustAdd("C", &ir.Node{Kind: ir.KindString})

	res, err := graph.Build(reg)
	require.NoError(t, err)

	d := res.Diagnostics()
	require.Len(t, d.Circular, 2)
	assert.Equal(t, "A", d.Circular[0].Component)
	assert.Equal(t, "A: A -> B -> A\nB: B -> A -> B\n", d.String())

	b, err := d.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"order": ["A", "B", "C"],
		"circular": [
			{"component": "A", "paths": [["A", "B"]]},
			{"component": "B", "paths": [["B", "A"]]}
		]
	}`, string(b))
}

func TestEmptyRegistry(t *testing.T) {
	res, err := graph.Build(ir.NewRegistry())
	require.NoError(t, err)
	assert.Empty(t, res.Order)
	assert.Empty(t, res.Diagnostics().Circular)
}
