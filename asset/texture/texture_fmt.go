package texture

type Format uint32

const (
	Luminance8 Format = iota
	Rgba8
)

func (f Format) String() string {
	switch f {
	case Luminance8:
		return "L8"
	case Rgba8:
		return "RGBA8"
	}
	return "unknown"
}
