package raytrace

import (
	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/log"
	"github.com/lunex-engine/rtscene/scene"
	"github.com/lunex-engine/rtscene/types"
	"github.com/pkg/errors"
)

const minLightEntries = 16

// LightTable packs scene lights into a GPU table. An empty table still
// uploads a single zeroed light so that the binding is always backed by a
// buffer; LightCount reports the real number of lights.
type LightTable struct {
	logger log.Logger
	device gpu.Device

	lights []LightGPU
	buf    gpu.StorageBuffer
}

// NewLightTable creates an empty light table.
func NewLightTable(device gpu.Device) *LightTable {
	return &LightTable{
		logger: log.New("light table"),
		device: device,
	}
}

// Set replaces the table contents.
func (t *LightTable) Set(lights []scene.Light) {
	t.lights = t.lights[:0]
	for i := range lights {
		t.lights = append(t.lights, packLight(&lights[i]))
	}
	t.logger.Debugf("packed %d lights", len(t.lights))
}

func packLight(l *scene.Light) LightGPU {
	var castShadows float32
	if l.CastShadows {
		castShadows = 1
	}

	return LightGPU{
		PositionAndType:   l.Position.Vec4(float32(l.Type)),
		DirectionAndRange: l.Direction.Normalize().Vec4(l.Range),
		ColorAndIntensity: l.Color.Vec4(l.Intensity),
		Params:            types.XYZW(l.InnerConeAngle, l.OuterConeAngle, castShadows, 0),
	}
}

// UploadToGPU writes the table to the GPU.
func (t *LightTable) UploadToGPU() error {
	data := t.lights
	if len(data) == 0 {
		data = []LightGPU{{}}
	}

	var err error
	if t.buf, err = ensureBuffer(t.device, t.buf, "rt lights", len(data)*lightSize, minLightEntries*lightSize); err != nil {
		return errors.Wrap(err, "light table")
	}
	return errors.Wrap(t.buf.WriteData(data, 0), "light table: could not upload lights")
}

// Bind the table to a storage binding point.
func (t *LightTable) Bind(binding uint32) error {
	if t.buf == nil {
		return nil
	}
	return errors.Wrap(t.buf.Bind(binding), "light table: could not bind lights")
}

// Clear drops all lights.
func (t *LightTable) Clear() {
	t.lights = t.lights[:0]
}

// LightCount returns the number of lights in the table.
func (t *LightTable) LightCount() int {
	return len(t.lights)
}

// Lights returns the packed lights.
func (t *LightTable) Lights() []LightGPU {
	return t.lights
}

// Shutdown clears the table and releases the GPU buffer.
func (t *LightTable) Shutdown() {
	t.Clear()
	releaseBuffer(t.buf)
	t.buf = nil
}
