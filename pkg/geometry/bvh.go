package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Leaf threshold: nodes with this many or fewer triangles are not split further
const leafThreshold = 2

// Node boxes are padded so rays grazing a triangle edge still enter the box
const boxPadding = 1e-9

// BVHNode represents a node in the Bounding Volume Hierarchy.
// BoundingBox is the union of the bounds of every triangle below the node,
// so it always encloses them even though membership is decided by the
// node's split region.
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Triangles   []*Triangle // Leaf members (nil for internal nodes)
}

// IsLeaf reports whether the node stores triangles directly
func (n *BVHNode) IsLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// BVH is a fixed-depth midpoint-split hierarchy over a triangle mesh.
// It is immutable after construction and safe for concurrent traversal.
type BVH struct {
	Root   *BVHNode
	Levels int
}

// NewBVH builds a hierarchy of at most levels splits. Each split halves the
// node's region along its longest axis; a triangle joins every child region
// that contains one of its vertices or its centroid, so a triangle may be
// referenced from several leaves.
func NewBVH(triangles []*Triangle, levels int) *BVH {
	if len(triangles) == 0 {
		return &BVH{Levels: levels}
	}

	region := core.EmptyAABB()
	for _, tri := range triangles {
		region = region.Union(tri.BoundingBox())
	}

	members := make([]*Triangle, len(triangles))
	copy(members, triangles)

	return &BVH{
		Root:   buildBVH(region, members, levels),
		Levels: levels,
	}
}

// buildBVH recursively splits region until levels runs out or the node is small
func buildBVH(region core.AABB, triangles []*Triangle, levels int) *BVHNode {
	if len(triangles) == 0 {
		return nil
	}

	bounds := core.EmptyAABB()
	for _, tri := range triangles {
		bounds = bounds.Union(tri.BoundingBox())
	}
	bounds = bounds.Expand(boxPadding)

	if levels <= 0 || len(triangles) <= leafThreshold {
		return &BVHNode{BoundingBox: bounds, Triangles: triangles}
	}

	lowerRegion, upperRegion := region.Split(region.LongestAxis())
	left := buildBVH(lowerRegion, filterTouching(triangles, lowerRegion), levels-1)
	right := buildBVH(upperRegion, filterTouching(triangles, upperRegion), levels-1)

	// An empty half adds nothing; collapse onto the other child
	if left == nil || right == nil {
		child := left
		if child == nil {
			child = right
		}
		return child
	}

	return &BVHNode{BoundingBox: bounds, Left: left, Right: right}
}

// filterTouching returns the triangles with a vertex or centroid inside region
func filterTouching(triangles []*Triangle, region core.AABB) []*Triangle {
	var out []*Triangle
	for _, tri := range triangles {
		if tri.touches(region) {
			out = append(out, tri)
		}
	}
	return out
}

// Intersect finds the nearest triangle along the ray, updating hit when a
// closer one is found. The result matches a linear scan over all triangles.
func (bvh *BVH) Intersect(ray core.Ray, hit *HitRecord) bool {
	if bvh.Root == nil {
		return false
	}
	if _, ok := enterNode(bvh.Root, ray, hit.TMin, hit.T); !ok {
		return false
	}
	return bvh.intersectNode(bvh.Root, ray, hit)
}

// intersectNode visits the nearer child first and skips the farther child only
// when the hit already found lies before the farther child's entry point.
func (bvh *BVH) intersectNode(node *BVHNode, ray core.Ray, hit *HitRecord) bool {
	if node.IsLeaf() {
		hitAnything := false
		for _, tri := range node.Triangles {
			if tri.Intersect(ray, hit) {
				hitAnything = true
			}
		}
		return hitAnything
	}

	leftEntry, hitLeft := enterNode(node.Left, ray, hit.TMin, hit.T)
	rightEntry, hitRight := enterNode(node.Right, ray, hit.TMin, hit.T)

	switch {
	case !hitLeft && !hitRight:
		return false
	case hitLeft && !hitRight:
		return bvh.intersectNode(node.Left, ray, hit)
	case hitRight && !hitLeft:
		return bvh.intersectNode(node.Right, ray, hit)
	}

	near, far, farEntry := node.Left, node.Right, rightEntry
	if rightEntry < leftEntry {
		near, far, farEntry = node.Right, node.Left, leftEntry
	}

	found := bvh.intersectNode(near, ray, hit)
	if hit.T <= farEntry {
		return found
	}
	if bvh.intersectNode(far, ray, hit) {
		found = true
	}
	return found
}

// enterNode runs the slab test and returns the entry distance when the ray
// overlaps the node's box within [tMin, tMax)
func enterNode(node *BVHNode, ray core.Ray, tMin, tMax float64) (float64, bool) {
	if node == nil {
		return 0, false
	}
	entry, exit := node.BoundingBox.Slab(ray)
	if exit < max(entry, tMin) || entry >= tMax {
		return 0, false
	}
	return entry, true
}

// CollectOccluders calls visit once for every distinct triangle intersected in
// [tMin, tMax), skipping exclude. Triangles referenced from several leaves are
// reported once.
func (bvh *BVH) CollectOccluders(ray core.Ray, tMin, tMax float64, exclude Object, visit func(Object)) {
	if bvh.Root == nil {
		return
	}
	seen := make(map[int]struct{})
	bvh.collectNode(bvh.Root, ray, tMin, tMax, exclude, seen, visit)
}

func (bvh *BVH) collectNode(node *BVHNode, ray core.Ray, tMin, tMax float64, exclude Object, seen map[int]struct{}, visit func(Object)) {
	if _, ok := enterNode(node, ray, tMin, tMax); !ok {
		return
	}

	if !node.IsLeaf() {
		bvh.collectNode(node.Left, ray, tMin, tMax, exclude, seen, visit)
		bvh.collectNode(node.Right, ray, tMin, tMax, exclude, seen, visit)
		return
	}

	for _, tri := range node.Triangles {
		if exclude != nil && tri.ID() == exclude.ID() {
			continue
		}
		if _, dup := seen[tri.ID()]; dup {
			continue
		}
		hit := NewHitRecord(tMin, tMax)
		if tri.Intersect(ray, &hit) {
			seen[tri.ID()] = struct{}{}
			visit(tri)
		}
	}
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// BVHStats summarizes the shape of a hierarchy
type BVHStats struct {
	Nodes        int
	Leaves       int
	MaxDepth     int
	MaxLeafSize  int
	TriangleRefs int // Leaf references, counting duplicates
}

// Stats walks the hierarchy and returns its statistics
func (bvh *BVH) Stats() BVHStats {
	var stats BVHStats
	if bvh.Root != nil {
		collectStats(bvh.Root, 0, &stats)
	}
	return stats
}

func collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.Nodes++
	stats.MaxDepth = max(stats.MaxDepth, depth)

	if node.IsLeaf() {
		stats.Leaves++
		stats.TriangleRefs += len(node.Triangles)
		stats.MaxLeafSize = max(stats.MaxLeafSize, len(node.Triangles))
		return
	}

	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}
