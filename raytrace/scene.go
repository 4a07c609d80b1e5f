// Package raytrace builds the GPU-side representation of a scene for
// compute shader path tracing: world-space triangles, a BVH over them and
// flat material, texture handle and light tables.
package raytrace

import (
	"time"

	"github.com/lunex-engine/rtscene/accel/bvh"
	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/log"
	"github.com/lunex-engine/rtscene/scene"
	"github.com/pkg/errors"
)

// Options configures a Scene.
type Options struct {
	BVH bvh.Options
}

// DefaultOptions uses the default BVH tuning parameters.
var DefaultOptions = Options{
	BVH: bvh.DefaultOptions,
}

// Scene owns the geometry pool, material table, texture atlas and light
// table of a ray traced scene and rebuilds them from scene snapshots.
type Scene struct {
	logger log.Logger

	geometry  *MeshGeometryPool
	materials *MaterialTable
	atlas     *TextureAtlas
	lights    *LightTable

	dirty bool
}

// NewScene creates an empty scene. New scenes are dirty.
func NewScene(device gpu.Device, opts Options) *Scene {
	return &Scene{
		logger:    log.New("ray tracing scene"),
		geometry:  NewMeshGeometryPool(device, opts.BVH),
		materials: NewMaterialTable(device),
		atlas:     NewTextureAtlas(device),
		lights:    NewLightTable(device),
		dirty:     true,
	}
}

// Rebuild replaces all tables with the contents of data and uploads them.
// A nil data pointer is treated as an empty scene. Material and texture
// indices handed out by previous builds are invalidated.
func (s *Scene) Rebuild(data *scene.RenderData) (BuildResult, error) {
	start := time.Now()

	s.materials.Clear()
	s.atlas.Clear()

	var (
		items  []scene.DrawItem
		lights []scene.Light
	)
	if data != nil {
		items = data.DrawItems
		lights = data.Lights
	}

	res, err := s.geometry.Build(items, func(inst scene.MaterialInstance) uint32 {
		return s.materials.GetOrAddMaterial(inst, s.atlas)
	})
	if err != nil {
		return BuildResult{}, errors.Wrap(err, "ray tracing scene")
	}

	// Triangles without a material reference slot 0
	if res.TriangleCount > 0 && s.materials.MaterialCount() == 0 {
		s.materials.AddDefaultMaterial()
	}

	if err = s.materials.UploadToGPU(); err != nil {
		return BuildResult{}, errors.Wrap(err, "ray tracing scene")
	}
	if err = s.atlas.UploadToGPU(); err != nil {
		return BuildResult{}, errors.Wrap(err, "ray tracing scene")
	}

	s.lights.Set(lights)
	if err = s.lights.UploadToGPU(); err != nil {
		return BuildResult{}, errors.Wrap(err, "ray tracing scene")
	}

	s.dirty = false
	s.logger.Noticef(
		"rebuilt scene in %d ms: %d triangles, %d BVH nodes, %d materials, %d textures, %d lights",
		time.Since(start).Nanoseconds()/1e6,
		res.TriangleCount, res.BVHNodeCount, s.materials.MaterialCount(), s.atlas.TextureCount(), s.lights.LightCount(),
	)
	return res, nil
}

// Bind the geometry, material and texture tables to the given storage
// binding points. Scenes without triangles bind nothing since their
// buffers may still hold a previous build.
func (s *Scene) Bind(triBinding, bvhBinding, matBinding, texBinding uint32) error {
	if s.geometry.TriangleCount() == 0 {
		s.logger.Debug("scene has no triangles; skipping bind")
		return nil
	}
	if err := s.geometry.BindForRayTracing(triBinding, bvhBinding); err != nil {
		return err
	}
	if err := s.materials.Bind(matBinding); err != nil {
		return err
	}
	return s.atlas.Bind(texBinding)
}

// BindLights binds the light table to a storage binding point.
func (s *Scene) BindLights(binding uint32) error {
	return s.lights.Bind(binding)
}

// MarkDirty flags the scene as needing a rebuild.
func (s *Scene) MarkDirty() {
	s.dirty = true
}

// IsDirty returns true if the scene needs to be rebuilt.
func (s *Scene) IsDirty() bool {
	return s.dirty
}

func (s *Scene) Geometry() *MeshGeometryPool {
	return s.geometry
}

func (s *Scene) Materials() *MaterialTable {
	return s.materials
}

func (s *Scene) Atlas() *TextureAtlas {
	return s.atlas
}

func (s *Scene) Lights() *LightTable {
	return s.lights
}

// Snapshot copies the CPU-side tables.
func (s *Scene) Snapshot() *Snapshot {
	return &Snapshot{
		Triangles:      append([]TriangleGPU(nil), s.geometry.Triangles()...),
		Nodes:          append([]BVHNodeGPU(nil), s.geometry.Nodes()...),
		Materials:      append([]MaterialGPU(nil), s.materials.Materials()...),
		TextureHandles: append([]uint64(nil), s.atlas.Handles()...),
		Lights:         append([]LightGPU(nil), s.lights.Lights()...),
	}
}

// Stats returns a table with the size of each scene table.
func (s *Scene) Stats() string {
	return s.Snapshot().Stats()
}

// Shutdown releases all GPU resources.
func (s *Scene) Shutdown() {
	s.geometry.Shutdown()
	s.materials.Shutdown()
	s.atlas.Shutdown()
	s.lights.Shutdown()
	s.dirty = true
}
