package raytrace

import (
	"runtime"
	"time"

	"github.com/lunex-engine/rtscene/accel/bvh"
	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/log"
	"github.com/lunex-engine/rtscene/scene"
	"github.com/lunex-engine/rtscene/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// Bounds are computed on a single goroutine below this triangle count.
	parallelBoundsThreshold = 1024
	boundsChunkSize         = 256

	// Minimum allocation for the triangle and node buffers in bytes.
	minGeometryBufferSize = 1024
)

// MaterialIndexFunc maps a draw item material to its material table index.
type MaterialIndexFunc func(scene.MaterialInstance) uint32

// BuildResult summarizes a geometry build.
type BuildResult struct {
	TriangleCount uint32
	BVHNodeCount  uint32
	BuildTime     time.Duration
}

// A triangle together with its bounds and centroid. Keeping them in a
// single element means BVH partitioning moves all three at once.
type primitive struct {
	tri      TriangleGPU
	bounds   types.AABB
	centroid types.Vec3
}

type primitiveList []primitive

func (l primitiveList) Len() int { return len(l) }
func (l primitiveList) Bounds(i int) types.AABB { return l[i].bounds }
func (l primitiveList) Centroid(i int) types.Vec3 { return l[i].centroid }
func (l primitiveList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// MeshGeometryPool flattens draw items into world-space triangles, builds
// a BVH over them and uploads both to GPU storage buffers.
type MeshGeometryPool struct {
	logger log.Logger
	device gpu.Device
	opts   bvh.Options

	prims     primitiveList
	triangles []TriangleGPU
	nodes     []BVHNodeGPU

	triBuffer gpu.StorageBuffer
	bvhBuffer gpu.StorageBuffer
}

// NewMeshGeometryPool creates a pool that allocates buffers on device.
// Buffers are created on the first Build that produces triangles.
func NewMeshGeometryPool(device gpu.Device, opts bvh.Options) *MeshGeometryPool {
	return &MeshGeometryPool{
		logger: log.New("geometry pool"),
		device: device,
		opts:   opts,
	}
}

// Build replaces the pool contents with the triangles of items. The
// materialIndex callback is invoked once per draw item that has a model;
// a nil callback assigns material 0 to every triangle.
//
// Building from an empty item list (or items without triangles) yields a
// zero result and leaves the GPU buffers untouched.
func (p *MeshGeometryPool) Build(items []scene.DrawItem, materialIndex MaterialIndexFunc) (BuildResult, error) {
	start := time.Now()

	p.prims = p.prims[:0]
	p.triangles = nil
	p.nodes = nil

	p.flatten(items, materialIndex)
	if len(p.prims) == 0 {
		p.logger.Debug("no triangles to build")
		return BuildResult{}, nil
	}

	computeBounds(p.prims, runtime.GOMAXPROCS(0))

	nodes := bvh.Build(p.prims, p.opts)
	p.nodes = make([]BVHNodeGPU, len(nodes))
	for i := range nodes {
		p.nodes[i] = encodeNode(&nodes[i])
	}

	p.triangles = make([]TriangleGPU, len(p.prims))
	for i := range p.prims {
		p.triangles[i] = p.prims[i].tri
	}

	if err := p.upload(); err != nil {
		return BuildResult{}, err
	}

	res := BuildResult{
		TriangleCount: uint32(len(p.triangles)),
		BVHNodeCount:  uint32(len(p.nodes)),
		BuildTime:     time.Since(start),
	}
	p.logger.Debugf("built %d triangles, %d BVH nodes in %d ms", res.TriangleCount, res.BVHNodeCount, res.BuildTime.Nanoseconds()/1e6)
	return res, nil
}

func (p *MeshGeometryPool) flatten(items []scene.DrawItem, materialIndex MaterialIndexFunc) {
	estimated := 0
	for i := range items {
		if items[i].Model != nil {
			estimated += items[i].Model.TriangleCount()
		}
	}
	if cap(p.prims) < estimated {
		p.prims = make(primitiveList, 0, estimated)
	}

	for i := range items {
		item := &items[i]
		if item.Model == nil {
			continue
		}

		var matIndex uint32
		if materialIndex != nil {
			matIndex = materialIndex(item.Material)
		}

		normalMat := item.Transform.NormalMatrix()
		for _, mesh := range item.Model.Meshes {
			if mesh == nil {
				continue
			}
			p.flattenMesh(item, mesh, normalMat, matIndex)
		}
	}
}

func (p *MeshGeometryPool) flattenMesh(item *scene.DrawItem, mesh *scene.Mesh, normalMat types.Mat3, matIndex uint32) {
	numVerts := uint32(len(mesh.Vertices))
	skipped := 0

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		if i0 >= numVerts || i1 >= numVerts || i2 >= numVerts {
			skipped++
			continue
		}
		v0, v1, v2 := &mesh.Vertices[i0], &mesh.Vertices[i1], &mesh.Vertices[i2]

		p0 := item.Transform.TransformPoint(v0.Position)
		p1 := item.Transform.TransformPoint(v1.Position)
		p2 := item.Transform.TransformPoint(v2.Position)

		n := normalMat.MulVec3(v0.Normal).Normalize()
		if n == (types.Vec3{}) {
			n = p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
		}

		p.prims = append(p.prims, primitive{
			tri: TriangleGPU{
				V0:               p0.Vec4(n[0]),
				V1:               p1.Vec4(n[1]),
				V2:               p2.Vec4(n[2]),
				TexCoords01:      types.XYZW(v0.TexCoords[0], v0.TexCoords[1], v1.TexCoords[0], v1.TexCoords[1]),
				TexCoords2AndMat: types.XYZW(v2.TexCoords[0], v2.TexCoords[1], float32(matIndex), float32(item.EntityID)),
			},
		})
	}

	if skipped > 0 {
		p.logger.Warningf("mesh %q (entity %d): skipped %d triangles with out of range vertex indices", mesh.Name, item.EntityID, skipped)
	}
}

// Fill in bounds and centroids. Large lists are split in contiguous
// chunks processed by up to workers goroutines; each chunk only writes
// its own elements.
func computeBounds(prims primitiveList, workers int) {
	count := len(prims)
	if count < parallelBoundsThreshold || workers < 2 {
		computeBoundsRange(prims)
		return
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < count; start += boundsChunkSize {
		chunk := prims[start:min(start+boundsChunkSize, count)]
		g.Go(func() error {
			computeBoundsRange(chunk)
			return nil
		})
	}
	g.Wait()
}

func computeBoundsRange(prims primitiveList) {
	for i := range prims {
		prims[i].bounds = prims[i].tri.Bounds()
		prims[i].centroid = prims[i].bounds.Center()
	}
}

func (p *MeshGeometryPool) upload() error {
	var err error

	triBytes := len(p.triangles) * triangleSize
	if p.triBuffer, err = ensureBuffer(p.device, p.triBuffer, "rt triangles", triBytes, minGeometryBufferSize); err != nil {
		return errors.Wrap(err, "geometry pool")
	}
	if err = p.triBuffer.WriteData(p.triangles, 0); err != nil {
		return errors.Wrap(err, "geometry pool: could not upload triangles")
	}

	nodeBytes := len(p.nodes) * nodeSize
	if p.bvhBuffer, err = ensureBuffer(p.device, p.bvhBuffer, "rt bvh nodes", nodeBytes, minGeometryBufferSize); err != nil {
		return errors.Wrap(err, "geometry pool")
	}
	if err = p.bvhBuffer.WriteData(p.nodes, 0); err != nil {
		return errors.Wrap(err, "geometry pool: could not upload BVH nodes")
	}

	return nil
}

// BindForRayTracing binds the triangle and node buffers to the given
// storage binding points. Buffers that have not been created yet are
// skipped.
func (p *MeshGeometryPool) BindForRayTracing(triBinding, bvhBinding uint32) error {
	if p.triBuffer != nil {
		if err := p.triBuffer.Bind(triBinding); err != nil {
			return errors.Wrap(err, "geometry pool: could not bind triangles")
		}
	}
	if p.bvhBuffer != nil {
		if err := p.bvhBuffer.Bind(bvhBinding); err != nil {
			return errors.Wrap(err, "geometry pool: could not bind BVH nodes")
		}
	}
	return nil
}

// TriangleCount returns the number of triangles produced by the last Build.
func (p *MeshGeometryPool) TriangleCount() uint32 {
	return uint32(len(p.triangles))
}

// BVHNodeCount returns the number of BVH nodes produced by the last Build.
func (p *MeshGeometryPool) BVHNodeCount() uint32 {
	return uint32(len(p.nodes))
}

// Triangles returns the triangles in BVH leaf order.
func (p *MeshGeometryPool) Triangles() []TriangleGPU {
	return p.triangles
}

// Nodes returns the encoded BVH nodes. Node 0 is the root.
func (p *MeshGeometryPool) Nodes() []BVHNodeGPU {
	return p.nodes
}

// Shutdown releases the GPU buffers and drops all CPU-side data.
func (p *MeshGeometryPool) Shutdown() {
	releaseBuffer(p.triBuffer)
	releaseBuffer(p.bvhBuffer)
	p.triBuffer = nil
	p.bvhBuffer = nil
	p.prims = nil
	p.triangles = nil
	p.nodes = nil
}
