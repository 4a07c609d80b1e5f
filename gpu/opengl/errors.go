package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.3-core/gl"
)

var errorNames = map[uint32]string{
	gl.INVALID_ENUM:                  "GL_INVALID_ENUM",
	gl.INVALID_VALUE:                 "GL_INVALID_VALUE",
	gl.INVALID_OPERATION:             "GL_INVALID_OPERATION",
	gl.STACK_OVERFLOW:                "GL_STACK_OVERFLOW",
	gl.STACK_UNDERFLOW:               "GL_STACK_UNDERFLOW",
	gl.OUT_OF_MEMORY:                 "GL_OUT_OF_MEMORY",
	gl.INVALID_FRAMEBUFFER_OPERATION: "GL_INVALID_FRAMEBUFFER_OPERATION",
}

// Get the symbolic name of a GL error code.
func ErrorName(errCode uint32) string {
	if name, ok := errorNames[errCode]; ok {
		return name
	}
	return fmt.Sprintf("unknown error 0x%x", errCode)
}
