package bvh

import (
	"testing"

	"github.com/lunex-engine/rtscene/types"
)

type boxList []types.AABB

func (l boxList) Len() int { return len(l) }
func (l boxList) Bounds(i int) types.AABB { return l[i] }
func (l boxList) Centroid(i int) types.Vec3 { return l[i].Center() }
func (l boxList) Swap(i, j int)              { l[i], l[j] = l[j], l[i] }

func unitBox(x, y, z float32) types.AABB {
	return types.AABB{Min: types.XYZ(x, y, z), Max: types.XYZ(x+1, y+1, z+1)}
}

func TestBuildEmpty(t *testing.T) {
	if nodes := Build(boxList{}, DefaultOptions); nodes != nil {
		t.Fatalf("expected no nodes for an empty primitive list; got %d", len(nodes))
	}
}

func TestBuildSinglePrimitive(t *testing.T) {
	prims := boxList{unitBox(1, 2, 3)}
	nodes := Build(prims, DefaultOptions)

	if len(nodes) != 1 {
		t.Fatalf("expected 1 node; got %d", len(nodes))
	}
	if !nodes[0].IsLeaf() || nodes[0].First != 0 || nodes[0].Count != 1 {
		t.Fatalf("expected root to be a leaf with 1 primitive; got %+v", nodes[0])
	}
	if nodes[0].Bounds != prims[0] {
		t.Fatalf("expected root bounds %v; got %v", prims[0], nodes[0].Bounds)
	}
}

func TestBuildSeparatesClusters(t *testing.T) {
	prims := boxList{
		unitBox(10, 0, 0),
		unitBox(0, 0, 0),
		unitBox(0.1, 0, 0),
		unitBox(10.1, 0, 0),
		unitBox(0.2, 0, 0),
	}

	nodes := Build(prims, DefaultOptions)
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes; got %d", len(nodes))
	}

	root := nodes[0]
	if root.IsLeaf() {
		t.Fatal("expected root to be an internal node")
	}
	if root.Left != 1 || root.Right() != 2 {
		t.Fatalf("expected children at 1 and 2; got %d and %d", root.Left, root.Right())
	}

	left, right := nodes[1], nodes[2]
	if !left.IsLeaf() || !right.IsLeaf() {
		t.Fatal("expected both children to be leaves")
	}
	if left.Count != 3 || right.Count != 2 {
		t.Fatalf("expected leaves with 3 and 2 primitives; got %d and %d", left.Count, right.Count)
	}
	for i := left.First; i < left.First+left.Count; i++ {
		if prims[i].Min[0] > 1 {
			t.Fatalf("expected left leaf to contain the cluster near the origin; got %v", prims[i])
		}
	}
	for i := right.First; i < right.First+right.Count; i++ {
		if prims[i].Min[0] < 10 {
			t.Fatalf("expected right leaf to contain the far cluster; got %v", prims[i])
		}
	}
}

func TestBuildDegenerateCentroids(t *testing.T) {
	prims := make(boxList, 10)
	for i := range prims {
		prims[i] = unitBox(5, 5, 5)
	}

	nodes := Build(prims, DefaultOptions)
	if len(nodes) != 1 {
		t.Fatalf("expected coincident centroids to produce a single leaf; got %d nodes", len(nodes))
	}
	if !nodes[0].IsLeaf() || nodes[0].Count != 10 {
		t.Fatalf("expected leaf with 10 primitives; got %+v", nodes[0])
	}
}

func TestBuildMaxDepth(t *testing.T) {
	prims := make(boxList, 64)
	for i := range prims {
		prims[i] = unitBox(float32(i)*2, 0, 0)
	}

	opts := DefaultOptions
	opts.MaxDepth = 1
	nodes := Build(prims, opts)

	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes with max depth 1; got %d", len(nodes))
	}
	if nodes[1].Count+nodes[2].Count != 64 {
		t.Fatalf("expected leaves to hold all 64 primitives; got %d", nodes[1].Count+nodes[2].Count)
	}
}

func TestBuildTreeInvariants(t *testing.T) {
	// A deterministic pseudo-random scatter of boxes of varying size
	prims := make(boxList, 500)
	seed := uint32(7)
	next := func() float32 {
		seed = seed*1664525 + 1013904223
		return float32(seed>>8) / float32(1<<24)
	}
	for i := range prims {
		min := types.XYZ(next()*100, next()*100, next()*100)
		size := types.XYZ(next()*3, next()*3, next()*3)
		prims[i] = types.AABB{Min: min, Max: min.Add(size)}
	}

	nodes := Build(prims, DefaultOptions)
	if len(nodes) > 2*len(prims) {
		t.Fatalf("expected at most %d nodes; got %d", 2*len(prims), len(nodes))
	}

	seen := make([]int, len(prims))
	var visit func(index uint32, depth int)
	visit = func(index uint32, depth int) {
		if depth > DefaultOptions.MaxDepth {
			t.Fatalf("node %d exceeds max depth", index)
		}

		node := nodes[index]
		if node.IsLeaf() {
			if node.Count == 0 {
				t.Fatalf("leaf %d is empty", index)
			}
			for i := node.First; i < node.First+node.Count; i++ {
				seen[i]++
				if !node.Bounds.Contains(prims[i]) {
					t.Fatalf("leaf %d bounds %v do not contain primitive %d %v", index, node.Bounds, i, prims[i])
				}
			}
			return
		}

		if node.Left <= index || int(node.Right()) >= len(nodes) {
			t.Fatalf("node %d has invalid children %d, %d", index, node.Left, node.Right())
		}
		for _, child := range []uint32{node.Left, node.Right()} {
			if !node.Bounds.Contains(nodes[child].Bounds) {
				t.Fatalf("node %d bounds do not contain child %d", index, child)
			}
			visit(child, depth+1)
		}
	}
	visit(0, 0)

	for i, count := range seen {
		if count != 1 {
			t.Fatalf("expected primitive %d to be referenced by exactly one leaf; got %d", i, count)
		}
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	opts := Options{Buckets: 16}.withDefaults()

	if opts.Buckets != 16 {
		t.Fatalf("expected buckets to be preserved; got %d", opts.Buckets)
	}
	if opts.MaxLeafSize != 4 || opts.MaxDepth != 32 || opts.TraversalCost != 1 || opts.IntersectCost != 1.5 {
		t.Fatalf("expected unset fields to use defaults; got %+v", opts)
	}
}
