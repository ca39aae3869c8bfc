package renderer

import (
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

// VertexAttribute describes one float attribute inside an interleaved buffer.
type VertexAttribute struct {
	Location uint32
	// Components per vertex, at most 4.
	Size int32
	// Offset in bytes from the start of a vertex.
	Offset int
}

// VertexArray records the attribute layout of a piece of geometry.
type VertexArray struct {
	resource
}

func NewVertexArray(backend Backend) (*VertexArray, error) {
	r, err := newResource(backend, metadata.ResourceTypeVertexArray)
	if err != nil {
		return nil, err
	}
	return &VertexArray{resource: r}, nil
}

func (v *VertexArray) Bind() error {
	if err := v.check(); err != nil {
		return err
	}
	v.backend.BindVertexArray(v.handle)
	return nil
}

func (v *VertexArray) Unbind() error {
	if err := v.check(); err != nil {
		return err
	}
	v.backend.BindVertexArray(metadata.InvalidHandle)
	return nil
}

// SetLayout binds vao and buffer then enables the given per-vertex
// attributes with a shared stride in bytes.
func (v *VertexArray) SetLayout(buffer *Buffer, stride int32, attributes ...VertexAttribute) error {
	if err := v.Bind(); err != nil {
		return err
	}
	if err := buffer.Bind(); err != nil {
		return err
	}
	for _, a := range attributes {
		v.backend.EnableVertexAttribArray(a.Location)
		v.backend.VertexAttribPointer(a.Location, a.Size, stride, a.Offset)
	}
	return nil
}
