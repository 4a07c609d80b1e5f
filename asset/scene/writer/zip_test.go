package writer

import (
	"path/filepath"
	"testing"

	"github.com/lunex-engine/rtscene/asset/scene/reader"
	"github.com/lunex-engine/rtscene/gpu/host"
	"github.com/lunex-engine/rtscene/raytrace"
	"github.com/lunex-engine/rtscene/scene"
	"github.com/lunex-engine/rtscene/types"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	dev := host.NewDevice("test")
	sc := raytrace.NewScene(dev, raytrace.DefaultOptions)

	mat := scene.NewMaterial("mat").SetMap(scene.AlbedoMap, &host.Texture{ID: 2, Loaded: true})
	model := &scene.MeshModel{
		Meshes: []*scene.Mesh{{
			Vertices: []scene.Vertex{
				{Position: types.XYZ(0, 0, 0)},
				{Position: types.XYZ(1, 0, 0)},
				{Position: types.XYZ(0, 1, 0)},
				{Position: types.XYZ(5, 5, 5)},
			},
			Indices: []uint32{0, 1, 2, 1, 3, 2},
		}},
	}
	_, err := sc.Rebuild(&scene.RenderData{
		DrawItems: []scene.DrawItem{{Transform: types.Ident4(), Model: model, Material: mat, EntityID: 3}},
		Lights:    []scene.Light{{Type: scene.DirectionalLight, Direction: types.XYZ(0, -1, 0), Intensity: 2}},
	})
	require.NoError(t, err)

	dumpFile := filepath.Join(t.TempDir(), "dump.zip")
	snapshot := sc.Snapshot()
	require.NoError(t, WriteSnapshot(snapshot, dumpFile))

	loaded, err := reader.ReadSnapshot(dumpFile)
	require.NoError(t, err)
	require.Equal(t, snapshot, loaded)
	require.Len(t, loaded.Triangles, 2)
	require.Len(t, loaded.TextureHandles, 1)
}
