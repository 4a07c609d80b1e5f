// Package bvh builds bounding volume hierarchies using the binned surface
// area heuristic (SAH).
package bvh

import (
	"time"

	"github.com/lunex-engine/rtscene/log"
	"github.com/lunex-engine/rtscene/types"
)

// Centroid extents below this threshold are treated as degenerate.
const minCentroidExtent float32 = 1e-6

// The Primitives interface is implemented by primitive collections that
// can be partitioned by the bvh builder. Swap must move every piece of
// per-primitive state so that bounds, centroids and payload stay in sync.
type Primitives interface {
	Len() int
	Bounds(i int) types.AABB
	Centroid(i int) types.Vec3
	Swap(i, j int)
}

type bucket struct {
	count  uint32
	bounds types.AABB
}

type stats struct {
	nodes     int
	leafs     int
	maxDepth  int
	fallbacks int
}

type builder struct {
	logger log.Logger
	opts   Options
	prims  Primitives

	// Bvh nodes stored as a contiguous list. Storage is sized for the
	// worst case and trimmed once the build completes.
	nodes     []Node
	nodeCount uint32

	buckets    []bucket
	leftAreas  []float32
	leftCounts []uint32

	stats stats
}

// Build constructs a BVH over prims, reordering them in place so that the
// primitives of each leaf form a contiguous range. Node 0 is the root.
// Build returns nil if prims is empty.
func Build(prims Primitives, opts Options) []Node {
	count := prims.Len()
	if count == 0 {
		return nil
	}

	opts = opts.withDefaults()
	b := &builder{
		logger:     log.New("bvh builder"),
		opts:       opts,
		prims:      prims,
		nodes:      make([]Node, 2*count),
		buckets:    make([]bucket, opts.Buckets),
		leftAreas:  make([]float32, opts.Buckets-1),
		leftCounts: make([]uint32, opts.Buckets-1),
	}

	start := time.Now()
	b.nodes[0].Bounds = b.rangeBounds(0, count)
	b.nodeCount = 1
	b.partition(0, 0, count, 0)
	b.nodes = b.nodes[:b.nodeCount:b.nodeCount]

	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d, midpoint fallbacks: %d",
		time.Since(start).Nanoseconds()/1e6,
		b.stats.maxDepth, b.nodeCount, b.stats.leafs, b.stats.fallbacks,
	)
	return b.nodes
}

// Union of primitive bounds in [start, end).
func (b *builder) rangeBounds(start, end int) types.AABB {
	bounds := types.EmptyAABB()
	for i := start; i < end; i++ {
		bounds.ExpandBox(b.prims.Bounds(i))
	}
	return bounds
}

// Partition the primitive range [start, end) owned by node nodeIndex. The
// node bounds must already be set.
func (b *builder) partition(nodeIndex uint32, start, end, depth int) {
	if depth > b.stats.maxDepth {
		b.stats.maxDepth = depth
	}

	count := end - start
	node := &b.nodes[nodeIndex]

	if count <= b.opts.MaxLeafSize || depth >= b.opts.MaxDepth {
		b.createLeaf(node, start, count)
		return
	}

	// Split along the axis where the centroids are spread the most
	centroidBounds := types.EmptyAABB()
	for i := start; i < end; i++ {
		centroidBounds.Expand(b.prims.Centroid(i))
	}

	axis := centroidBounds.LargestAxis()
	axisMin := centroidBounds.Min[axis]
	axisExtent := centroidBounds.Max[axis] - axisMin
	if axisExtent < minCentroidExtent {
		b.createLeaf(node, start, count)
		return
	}

	parentArea := node.Bounds.SurfaceArea()
	if parentArea <= 0 {
		b.createLeaf(node, start, count)
		return
	}

	splitBucket, splitCost := b.bestSplit(start, end, axis, axisMin, axisExtent, parentArea)
	if splitBucket < 0 || splitCost >= b.opts.IntersectCost*float32(count) {
		b.createLeaf(node, start, count)
		return
	}

	scale := float32(b.opts.Buckets) / axisExtent
	splitPos := axisMin + float32(splitBucket)/scale
	mid := b.partitionRange(start, end, axis, splitPos)
	if mid == start || mid == end {
		mid = start + count/2
		b.stats.fallbacks++
	}

	// Children always occupy consecutive slots
	left := b.nodeCount
	b.nodeCount += 2
	b.nodes[left].Bounds = b.rangeBounds(start, mid)
	b.nodes[left+1].Bounds = b.rangeBounds(mid, end)

	node.setChildNodes(left)
	b.stats.nodes++

	b.partition(left, start, mid, depth+1)
	b.partition(left+1, mid, end, depth+1)
}

// Bin the centroids of [start, end) into buckets and evaluate the SAH cost
// of every bucket boundary. Returns the index of the first bucket on the
// right side of the cheapest split and its cost, or -1 if no split could
// be evaluated.
func (b *builder) bestSplit(start, end, axis int, axisMin, axisExtent, parentArea float32) (int, float32) {
	numBuckets := b.opts.Buckets
	for i := range b.buckets {
		b.buckets[i] = bucket{bounds: types.EmptyAABB()}
	}

	scale := float32(numBuckets) / axisExtent
	for i := start; i < end; i++ {
		bi := int((b.prims.Centroid(i)[axis] - axisMin) * scale)
		if bi >= numBuckets {
			bi = numBuckets - 1
		} else if bi < 0 {
			bi = 0
		}
		b.buckets[bi].count++
		b.buckets[bi].bounds.ExpandBox(b.prims.Bounds(i))
	}

	// Sweep left to right accumulating the left side of each boundary
	leftAccum := types.EmptyAABB()
	var leftCount uint32
	for i := 0; i < numBuckets-1; i++ {
		leftAccum.ExpandBox(b.buckets[i].bounds)
		leftCount += b.buckets[i].count
		b.leftCounts[i] = leftCount
		b.leftAreas[i] = validArea(leftAccum)
	}

	// Sweep right to left and score each boundary
	bestBucket := -1
	var bestCost float32
	rightAccum := types.EmptyAABB()
	var rightCount uint32
	for i := numBuckets - 1; i > 0; i-- {
		rightAccum.ExpandBox(b.buckets[i].bounds)
		rightCount += b.buckets[i].count

		cost := b.opts.TraversalCost + b.opts.IntersectCost*
			(float32(b.leftCounts[i-1])*b.leftAreas[i-1]+float32(rightCount)*validArea(rightAccum))/parentArea
		if bestBucket < 0 || cost < bestCost {
			bestCost = cost
			bestBucket = i
		}
	}

	return bestBucket, bestCost
}

// Reorder [start, end) so that primitives whose centroid lies below
// splitPos come first. Returns the index of the first primitive of the
// right side.
func (b *builder) partitionRange(start, end, axis int, splitPos float32) int {
	i, j := start, end
	for i < j {
		if b.prims.Centroid(i)[axis] < splitPos {
			i++
		} else {
			j--
			b.prims.Swap(i, j)
		}
	}
	return i
}

func (b *builder) createLeaf(node *Node, start, count int) {
	node.setLeaf(uint32(start), uint32(count))
	b.stats.leafs++
}

func validArea(box types.AABB) float32 {
	if !box.IsValid() {
		return 0
	}
	return box.SurfaceArea()
}
