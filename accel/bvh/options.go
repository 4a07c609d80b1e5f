package bvh

// Options controls BVH construction.
type Options struct {
	// Number of centroid buckets evaluated per split.
	Buckets int

	// Ranges with at most this many primitives become leaves.
	MaxLeafSize int

	// Nodes at this depth always become leaves.
	MaxDepth int

	// SAH cost of traversing an internal node.
	TraversalCost float32

	// SAH cost of intersecting a single primitive.
	IntersectCost float32
}

// DefaultOptions contains the default SAH tuning parameters.
var DefaultOptions = Options{
	Buckets:       12,
	MaxLeafSize:   4,
	MaxDepth:      32,
	TraversalCost: 1.0,
	IntersectCost: 1.5,
}

// withDefaults replaces unset or invalid fields with their default values.
func (o Options) withDefaults() Options {
	if o.Buckets < 2 {
		o.Buckets = DefaultOptions.Buckets
	}
	if o.MaxLeafSize < 1 {
		o.MaxLeafSize = DefaultOptions.MaxLeafSize
	}
	if o.MaxDepth < 1 {
		o.MaxDepth = DefaultOptions.MaxDepth
	}
	if o.TraversalCost <= 0 {
		o.TraversalCost = DefaultOptions.TraversalCost
	}
	if o.IntersectCost <= 0 {
		o.IntersectCost = DefaultOptions.IntersectCost
	}
	return o
}
