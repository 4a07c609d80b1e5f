package reader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/lunex-engine/rtscene/asset"
	"github.com/lunex-engine/rtscene/asset/texture"
	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/log"
	"github.com/lunex-engine/rtscene/scene"
	"github.com/lunex-engine/rtscene/types"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

const (
	extLightsPunctual   = "KHR_lights_punctual"
	extEmissiveStrength = "KHR_materials_emissive_strength"
)

// Scenes deeper than this are assumed to contain a node cycle.
const maxNodeDepth = 256

type primitiveKey struct {
	mesh, primitive int
}

// punctualLight mirrors a KHR_lights_punctual light definition.
type punctualLight struct {
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	Color     *[3]float32 `json:"color"`
	Intensity *float32    `json:"intensity"`
	Range     *float32    `json:"range"`
	Spot      *struct {
		InnerConeAngle *float32 `json:"innerConeAngle"`
		OuterConeAngle *float32 `json:"outerConeAngle"`
	} `json:"spot"`
}

type gltfSceneReader struct {
	logger log.Logger
	device gpu.Device

	sceneRes *asset.Resource
	doc      *gltf.Document

	models    map[primitiveKey]*scene.MeshModel
	materials map[uint32]*scene.Material
	images    map[uint32]gpu.Texture
	lights    []punctualLight

	renderData *scene.RenderData
	entityID   int32
}

// Create a new glTF scene reader. Textures are uploaded to device.
func newGLTFReader(device gpu.Device) *gltfSceneReader {
	return &gltfSceneReader{
		logger: log.New("gltf reader"),
		device: device,
	}
}

// Read scene definition from a .gltf or .glb resource. External buffers
// and images can only be resolved for local files; remote documents must
// be self-contained.
func (r *gltfSceneReader) Read(sceneRes *asset.Resource) (*scene.RenderData, error) {
	r.logger.Noticef(`parsing scene from "%s"`, sceneRes.Path())
	start := time.Now()

	var err error
	r.sceneRes = sceneRes
	if sceneRes.IsRemote() || sceneRes.IsEmbedded() {
		r.doc = &gltf.Document{}
		err = gltf.NewDecoder(sceneRes).Decode(r.doc)
	} else {
		r.doc, err = gltf.Open(sceneRes.Path())
	}
	if err != nil {
		return nil, r.emitError("could not decode document: %s", err.Error())
	}

	r.models = make(map[primitiveKey]*scene.MeshModel)
	r.materials = make(map[uint32]*scene.Material)
	r.images = make(map[uint32]gpu.Texture)
	r.renderData = &scene.RenderData{}
	r.entityID = 0

	if r.lights, err = r.parseLights(); err != nil {
		return nil, err
	}

	for _, nodeIndex := range r.rootNodes() {
		if err = r.visitNode(nodeIndex, types.Ident4(), 0); err != nil {
			return nil, err
		}
	}

	r.logger.Noticef(
		"parsed scene in %d ms; %d draw items, %d materials, %d textures, %d lights",
		time.Since(start).Nanoseconds()/1e6,
		len(r.renderData.DrawItems), len(r.materials), len(r.images), len(r.renderData.Lights),
	)
	return r.renderData, nil
}

// Returns the root nodes of the default scene. Documents without scenes
// have every node treated as a root.
func (r *gltfSceneReader) rootNodes() []uint32 {
	if len(r.doc.Scenes) != 0 {
		sceneIndex := uint32(0)
		if r.doc.Scene != nil && int(*r.doc.Scene) < len(r.doc.Scenes) {
			sceneIndex = *r.doc.Scene
		}
		return r.doc.Scenes[sceneIndex].Nodes
	}

	roots := make([]uint32, len(r.doc.Nodes))
	for i := range roots {
		roots[i] = uint32(i)
	}
	return roots
}

func (r *gltfSceneReader) visitNode(nodeIndex uint32, parent types.Mat4, depth int) error {
	if int(nodeIndex) >= len(r.doc.Nodes) {
		return r.emitError("node index %d out of range", nodeIndex)
	}
	if depth > maxNodeDepth {
		return r.emitError("node hierarchy exceeds %d levels", maxNodeDepth)
	}

	node := r.doc.Nodes[nodeIndex]
	world := parent.Mul4(nodeTransform(node))

	if node.Mesh != nil {
		if err := r.addMesh(*node.Mesh, world); err != nil {
			return err
		}
	}

	if raw, ok := node.Extensions[extLightsPunctual]; ok {
		var ref struct {
			Light uint32 `json:"light"`
		}
		if err := decodeExtension(raw, &ref); err != nil {
			return r.emitError("node %d: %s", nodeIndex, err.Error())
		}
		if int(ref.Light) >= len(r.lights) {
			return r.emitError("node %d: light index %d out of range", nodeIndex, ref.Light)
		}
		r.renderData.Lights = append(r.renderData.Lights, convertLight(r.lights[ref.Light], world))
	}

	for _, child := range node.Children {
		if err := r.visitNode(child, world, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// Emit one draw item per triangle primitive.
func (r *gltfSceneReader) addMesh(meshIndex uint32, world types.Mat4) error {
	if int(meshIndex) >= len(r.doc.Meshes) {
		return r.emitError("mesh index %d out of range", meshIndex)
	}

	r.entityID++
	for primIndex, prim := range r.doc.Meshes[meshIndex].Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			r.logger.Warningf("mesh %d primitive %d: unsupported primitive mode %d; skipping", meshIndex, primIndex, prim.Mode)
			continue
		}

		model, err := r.primitiveModel(meshIndex, primIndex, prim)
		if err != nil {
			return err
		}

		item := scene.DrawItem{
			Transform: world,
			Model:     model,
			EntityID:  r.entityID,
		}
		if prim.Material != nil {
			mat, err := r.material(*prim.Material)
			if err != nil {
				return err
			}
			item.Material = mat
		}
		r.renderData.DrawItems = append(r.renderData.DrawItems, item)
	}
	return nil
}

func (r *gltfSceneReader) primitiveModel(meshIndex uint32, primIndex int, prim *gltf.Primitive) (*scene.MeshModel, error) {
	key := primitiveKey{int(meshIndex), primIndex}
	if model, exists := r.models[key]; exists {
		return model, nil
	}

	posIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, r.emitError("mesh %d primitive %d: missing POSITION attribute", meshIndex, primIndex)
	}
	positions, err := modeler.ReadPosition(r.doc, r.doc.Accessors[posIndex], nil)
	if err != nil {
		return nil, r.emitError("mesh %d primitive %d: %s", meshIndex, primIndex, err.Error())
	}

	vertices := make([]scene.Vertex, len(positions))
	for i, p := range positions {
		vertices[i].Position = types.XYZ(p[0], p[1], p[2])
	}

	// Missing normals are left zeroed so the geometry pool falls back to
	// face normals.
	if normIndex, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(r.doc, r.doc.Accessors[normIndex], nil)
		if err != nil {
			return nil, r.emitError("mesh %d primitive %d: %s", meshIndex, primIndex, err.Error())
		}
		for i := 0; i < len(normals) && i < len(vertices); i++ {
			vertices[i].Normal = types.XYZ(normals[i][0], normals[i][1], normals[i][2])
		}
	}

	if uvIndex, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := modeler.ReadTextureCoord(r.doc, r.doc.Accessors[uvIndex], nil)
		if err != nil {
			return nil, r.emitError("mesh %d primitive %d: %s", meshIndex, primIndex, err.Error())
		}
		for i := 0; i < len(uvs) && i < len(vertices); i++ {
			vertices[i].TexCoords = types.XY(uvs[i][0], uvs[i][1])
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(r.doc, r.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, r.emitError("mesh %d primitive %d: %s", meshIndex, primIndex, err.Error())
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	name := r.doc.Meshes[meshIndex].Name
	if name == "" {
		name = fmt.Sprintf("mesh_%d", meshIndex)
	}
	model := &scene.MeshModel{
		Name: fmt.Sprintf("%s/%d", name, primIndex),
		Meshes: []*scene.Mesh{{
			Name:     name,
			Vertices: vertices,
			Indices:  indices,
		}},
	}
	r.models[key] = model
	return model, nil
}

// Convert a glTF metallic-roughness material. Instances are cached so draw
// items sharing a glTF material also share the scene material.
func (r *gltfSceneReader) material(matIndex uint32) (*scene.Material, error) {
	if mat, exists := r.materials[matIndex]; exists {
		return mat, nil
	}
	if int(matIndex) >= len(r.doc.Materials) {
		return nil, r.emitError("material index %d out of range", matIndex)
	}

	src := r.doc.Materials[matIndex]
	mat := scene.NewMaterial(src.Name)

	if pbr := src.PBRMetallicRoughness; pbr != nil {
		mat.Metallic, mat.Roughness = 1, 1
		if pbr.BaseColorFactor != nil {
			c := *pbr.BaseColorFactor
			mat.Albedo = types.XYZW(c[0], c[1], c[2], c[3])
		}
		if pbr.MetallicFactor != nil {
			mat.Metallic = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			mat.Roughness = *pbr.RoughnessFactor
		}
		if pbr.BaseColorTexture != nil {
			mat.SetMap(scene.AlbedoMap, r.texture(pbr.BaseColorTexture.Index))
		}
		if pbr.MetallicRoughnessTexture != nil {
			// Both channels live in the same image
			tex := r.texture(pbr.MetallicRoughnessTexture.Index)
			mat.SetMap(scene.MetallicMap, tex)
			mat.SetMap(scene.RoughnessMap, tex)
		}
	}

	if src.NormalTexture != nil && src.NormalTexture.Index != nil {
		mat.SetMap(scene.NormalMap, r.texture(*src.NormalTexture.Index))
		if src.NormalTexture.Scale != nil {
			mat.NormalIntensity = *src.NormalTexture.Scale
		}
	}
	if src.OcclusionTexture != nil && src.OcclusionTexture.Index != nil {
		mat.SetMap(scene.AOMap, r.texture(*src.OcclusionTexture.Index))
	}

	e := src.EmissiveFactor
	mat.EmissionColor = types.XYZ(e[0], e[1], e[2])
	if e != [3]float32{} {
		mat.EmissionIntensity = 1
	}
	if src.EmissiveTexture != nil {
		mat.SetMap(scene.EmissionMap, r.texture(src.EmissiveTexture.Index))
		if mat.EmissionIntensity == 0 {
			mat.EmissionColor = types.XYZ(1, 1, 1)
			mat.EmissionIntensity = 1
		}
	}
	if raw, ok := src.Extensions[extEmissiveStrength]; ok {
		var ext struct {
			EmissiveStrength *float32 `json:"emissiveStrength"`
		}
		if err := decodeExtension(raw, &ext); err != nil {
			return nil, r.emitError("material %d: %s", matIndex, err.Error())
		}
		if ext.EmissiveStrength != nil {
			mat.EmissionIntensity *= *ext.EmissiveStrength
		}
	}

	r.materials[matIndex] = mat
	return mat, nil
}

// Load the image referenced by a texture. Failures are logged and yield a
// nil texture so the material slot is left empty.
func (r *gltfSceneReader) texture(texIndex uint32) gpu.Texture {
	if int(texIndex) >= len(r.doc.Textures) || r.doc.Textures[texIndex].Source == nil {
		r.logger.Warningf("texture %d has no image source; ignoring", texIndex)
		return nil
	}

	imgIndex := *r.doc.Textures[texIndex].Source
	if tex, exists := r.images[imgIndex]; exists {
		return tex
	}

	tex, err := r.loadImage(imgIndex)
	if err != nil {
		r.logger.Warningf("could not load image %d: %s", imgIndex, err.Error())
	}
	r.images[imgIndex] = tex
	return tex
}

func (r *gltfSceneReader) loadImage(imgIndex uint32) (gpu.Texture, error) {
	if int(imgIndex) >= len(r.doc.Images) {
		return nil, fmt.Errorf("image index out of range")
	}
	img := r.doc.Images[imgIndex]

	name := img.Name
	var res *asset.Resource
	if img.BufferView != nil {
		data, err := r.bufferViewData(*img.BufferView)
		if err != nil {
			return nil, err
		}
		if name == "" {
			name = fmt.Sprintf("image_%d", imgIndex)
		}
		res = asset.NewResourceFromStream(name, bytes.NewReader(data))
	} else {
		var err error
		if res, err = asset.NewResource(img.URI, r.sceneRes); err != nil {
			return nil, err
		}
		if name == "" {
			name = path.Base(res.Path())
		}
	}
	defer res.Close()

	tex, err := texture.New(res)
	if err != nil {
		return nil, err
	}
	return tex.Upload(r.device, name)
}

func (r *gltfSceneReader) bufferViewData(viewIndex uint32) ([]byte, error) {
	if int(viewIndex) >= len(r.doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", viewIndex)
	}
	view := r.doc.BufferViews[viewIndex]
	if int(view.Buffer) >= len(r.doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", view.Buffer)
	}
	data := r.doc.Buffers[view.Buffer].Data
	end := int(view.ByteOffset) + int(view.ByteLength)
	if end > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer bounds", viewIndex)
	}
	return data[view.ByteOffset:end], nil
}

func (r *gltfSceneReader) parseLights() ([]punctualLight, error) {
	raw, ok := r.doc.Extensions[extLightsPunctual]
	if !ok {
		return nil, nil
	}

	var ext struct {
		Lights []punctualLight `json:"lights"`
	}
	if err := decodeExtension(raw, &ext); err != nil {
		return nil, r.emitError("%s: %s", extLightsPunctual, err.Error())
	}
	return ext.Lights, nil
}

// Generate an error message that includes the resource name.
func (r *gltfSceneReader) emitError(msgFormat string, args ...interface{}) error {
	msg := fmt.Sprintf(msgFormat, args...)
	return fmt.Errorf("%s: %s", r.sceneRes.Path(), msg)
}

// Compute the local transform of a node. A non-identity matrix takes
// precedence over the TRS properties.
func nodeTransform(node *gltf.Node) types.Mat4 {
	var zero [16]float32
	if node.Matrix != zero && node.Matrix != [16]float32(types.Ident4()) {
		return types.Mat4(node.Matrix)
	}

	s := node.Scale
	if s == [3]float32{} {
		s = [3]float32{1, 1, 1}
	}
	t, q := node.Translation, node.Rotation
	return types.TRS(types.XYZ(t[0], t[1], t[2]), types.XYZW(q[0], q[1], q[2], q[3]), types.XYZ(s[0], s[1], s[2]))
}

// glTF lights shine along their local -Z axis.
func convertLight(src punctualLight, world types.Mat4) scene.Light {
	light := scene.Light{
		Position:    world.TransformPoint(types.XYZ(0, 0, 0)),
		Direction:   world.Mat3().MulVec3(types.XYZ(0, 0, -1)).Normalize(),
		Color:       types.XYZ(1, 1, 1),
		Intensity:   1,
		CastShadows: true,
	}

	switch src.Type {
	case "point":
		light.Type = scene.PointLight
	case "spot":
		light.Type = scene.SpotLight
		light.OuterConeAngle = 0.7853982
		if src.Spot != nil {
			if src.Spot.InnerConeAngle != nil {
				light.InnerConeAngle = *src.Spot.InnerConeAngle
			}
			if src.Spot.OuterConeAngle != nil {
				light.OuterConeAngle = *src.Spot.OuterConeAngle
			}
		}
	default:
		light.Type = scene.DirectionalLight
	}

	if src.Color != nil {
		light.Color = types.XYZ(src.Color[0], src.Color[1], src.Color[2])
	}
	if src.Intensity != nil {
		light.Intensity = *src.Intensity
	}
	if src.Range != nil {
		light.Range = *src.Range
	}
	return light
}

// Unregistered extensions are kept by the gltf decoder as raw JSON.
func decodeExtension(raw interface{}, dst interface{}) error {
	var data []byte
	switch v := raw.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return err
		}
	}
	return json.Unmarshal(data, dst)
}
