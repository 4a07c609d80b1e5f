// Package opengl implements gpu.Device on top of OpenGL 4.3 shader storage
// buffers. Bindless textures are used when the driver exposes
// GL_ARB_bindless_texture.
//
// All calls must be made from the goroutine that owns the GL context.
package opengl

import (
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/lunex-engine/rtscene/gpu"
	"github.com/lunex-engine/rtscene/log"
	"github.com/pkg/errors"
)

const bindlessExtension = "GL_ARB_bindless_texture"

func init() {
	// GL contexts are bound to OS threads.
	runtime.LockOSThread()
}

// Info describes the GL implementation backing a device.
type Info struct {
	Vendor     string
	Renderer   string
	Version    string
	GLSL       string
	Extensions []string
}

// HasExtension reports whether the named extension is available.
func (i Info) HasExtension(name string) bool {
	for _, ext := range i.Extensions {
		if ext == name {
			return true
		}
	}
	return false
}

// Device is an OpenGL device.
type Device struct {
	logger   log.Logger
	info     Info
	bindless *bindlessTextures

	// Set when the device owns a hidden glfw window.
	window *glfw.Window
}

// NewDevice initializes the GL bindings for the context current on the
// calling thread.
func NewDevice() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "opengl device: could not initialize bindings")
	}

	d := &Device{
		logger: log.New("opengl device"),
		info:   queryInfo(),
	}

	if d.info.HasExtension(bindlessExtension) {
		d.bindless = &bindlessTextures{}
	}

	d.logger.Infof("%s (%s), OpenGL %s", d.info.Renderer, d.info.Vendor, d.info.Version)
	return d, nil
}

// NewHeadlessDevice creates a hidden window with an OpenGL 4.3 core context
// and wraps it in a Device. Closing the device destroys the window.
func NewHeadlessDevice() (*Device, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "opengl device: could not initialize glfw")
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(1, 1, "rtscene", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "opengl device: could not create context")
	}
	window.MakeContextCurrent()

	d, err := NewDevice()
	if err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}
	d.window = window
	return d, nil
}

func queryInfo() Info {
	info := Info{
		Vendor:   gl.GoStr(gl.GetString(gl.VENDOR)),
		Renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
		Version:  gl.GoStr(gl.GetString(gl.VERSION)),
		GLSL:     gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
	}

	var numExtensions int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &numExtensions)
	info.Extensions = make([]string, 0, numExtensions)
	for i := int32(0); i < numExtensions; i++ {
		info.Extensions = append(info.Extensions, gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))))
	}

	return info
}

func (d *Device) Name() string {
	return d.info.Renderer
}

// Info returns the GL implementation details.
func (d *Device) Info() Info {
	return d.info
}

// Allocate a shader storage buffer.
func (d *Device) NewStorageBuffer(name string, size int) (gpu.StorageBuffer, error) {
	b := &Buffer{device: d, name: name}

	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, b.id)
	gl.BufferData(gl.SHADER_STORAGE_BUFFER, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.SHADER_STORAGE_BUFFER, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		b.Release()
		return nil, fmt.Errorf("opengl device: could not allocate buffer %s of size %d (%s)", name, size, ErrorName(errCode))
	}

	b.size = size
	return b, nil
}

// Create an RGBA8 texture with a full mip chain.
func (d *Device) NewTexture(name string, width, height int, rgba []byte) (gpu.Texture, error) {
	if width <= 0 || height <= 0 || len(rgba) != width*height*4 {
		return nil, gpu.ErrInvalidTexture
	}

	tex := &Texture{name: name, width: width, height: height}
	gl.GenTextures(1, &tex.id)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if errCode := gl.GetError(); errCode != gl.NO_ERROR {
		tex.Delete()
		return nil, fmt.Errorf("opengl device: could not create texture %s (%s)", name, ErrorName(errCode))
	}

	tex.loaded = true
	return tex, nil
}

// Bindless returns nil if GL_ARB_bindless_texture is not available.
func (d *Device) Bindless() gpu.BindlessTextures {
	if d.bindless == nil {
		return nil
	}
	return d.bindless
}

// Close releases the hidden window if the device owns one.
func (d *Device) Close() {
	if d.window != nil {
		d.window.Destroy()
		d.window = nil
		glfw.Terminate()
	}
}

type bindlessTextures struct{}

func (b *bindlessTextures) TextureHandle(tex gpu.Texture) uint64 {
	return gl.GetTextureHandleARB(tex.NativeID())
}

func (b *bindlessTextures) MakeResident(handle uint64) {
	gl.MakeTextureHandleResidentARB(handle)
}

func (b *bindlessTextures) MakeNonResident(handle uint64) {
	gl.MakeTextureHandleNonResidentARB(handle)
}
