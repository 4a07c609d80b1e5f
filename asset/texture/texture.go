// Package texture decodes texture images and uploads them to a GPU device.
package texture

import (
	"fmt"
	"image"
	"image/draw"

	// Registered image decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/lunex-engine/rtscene/asset"
	"github.com/lunex-engine/rtscene/gpu"
)

// A texture image and its metadata.
type Texture struct {
	Format Format

	Width  uint32
	Height uint32

	Data []byte
}

// Create a new texture from a Resource. Grayscale images are decoded to
// Luminance8; everything else is converted to Rgba8.
func New(res *asset.Resource) (*Texture, error) {
	img, imgFormat, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %s", res.Path(), err.Error())
	}

	bounds := img.Bounds()
	texture := &Texture{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
	if texture.Width == 0 || texture.Height == 0 {
		return nil, fmt.Errorf("texture: %s image %s has no pixels", imgFormat, res.Path())
	}

	switch t := img.(type) {
	case *image.Gray:
		texture.Format = Luminance8
		texture.Data = packRows(t.Pix, t.Stride, bounds.Dx(), bounds.Dy())
	default:
		rgba, ok := img.(*image.RGBA)
		if !ok || rgba.Rect.Min != (image.Point{}) {
			rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
			draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
		}
		texture.Format = Rgba8
		texture.Data = packRows(rgba.Pix, rgba.Stride, bounds.Dx()*4, bounds.Dy())
	}

	return texture, nil
}

// Drop row padding from pixel data.
func packRows(pix []byte, stride, rowBytes, rows int) []byte {
	if stride == rowBytes {
		return pix[:rowBytes*rows]
	}
	out := make([]byte, 0, rowBytes*rows)
	for y := 0; y < rows; y++ {
		out = append(out, pix[y*stride:y*stride+rowBytes]...)
	}
	return out
}

// RGBA returns the texture data as tightly packed RGBA8 pixels.
func (t *Texture) RGBA() []byte {
	if t.Format == Rgba8 {
		return t.Data
	}

	out := make([]byte, 0, len(t.Data)*4)
	for _, l := range t.Data {
		out = append(out, l, l, l, 255)
	}
	return out
}

// Upload creates a GPU texture with the image contents.
func (t *Texture) Upload(device gpu.Device, name string) (gpu.Texture, error) {
	return device.NewTexture(name, int(t.Width), int(t.Height), t.RGBA())
}
