package gpu

import "errors"

var (
	ErrBufferReleased    = errors.New("gpu: buffer has been released")
	ErrInsufficientSpace = errors.New("gpu: insufficient buffer space")
	ErrInvalidTexture    = errors.New("gpu: texture dimensions do not match pixel data")
)
