// Package reader loads scene snapshots from glTF files and built scene
// tables from zip dumps.
package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lunex-engine/rtscene/asset"
	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/raytrace"
	"github.com/lunex-engine/rtscene/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.RenderData, error)
}

// Read a scene from file. Textures are uploaded to device.
func ReadScene(filename string, device gpu.Device) (*scene.RenderData, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	// Select reader based on file extension
	var reader Reader
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gltf", ".glb":
		reader = newGLTFReader(device)
	default:
		return nil, fmt.Errorf("readScene: unsupported file format %q", filepath.Ext(filename))
	}
	return reader.Read(res)
}

// Read built scene tables from a zip dump.
func ReadSnapshot(filename string) (*raytrace.Snapshot, error) {
	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return newZipSnapshotReader().Read(res)
}
