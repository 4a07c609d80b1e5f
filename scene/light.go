package scene

import "github.com/lunex-engine/rtscene/types"

type LightType uint8

// The supported light types.
const (
	DirectionalLight LightType = iota
	PointLight
	SpotLight
)

// Light is a punctual light source. Cone angles are in radians and only
// apply to spot lights.
type Light struct {
	Type      LightType
	Position  types.Vec3
	Direction types.Vec3
	Color     types.Vec3
	Intensity float32
	Range     float32

	InnerConeAngle float32
	OuterConeAngle float32
	CastShadows    bool
}
