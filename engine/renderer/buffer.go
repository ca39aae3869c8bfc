package renderer

import (
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

// Buffer is a vertex or index buffer in GPU memory.
type Buffer struct {
	resource
	target metadata.BufferTarget
	usage  metadata.BufferUsage
	// number of elements of the last upload
	length int
}

func NewBuffer(backend Backend, target metadata.BufferTarget, usage metadata.BufferUsage) (*Buffer, error) {
	r, err := newResource(backend, metadata.ResourceTypeBuffer)
	if err != nil {
		return nil, err
	}
	return &Buffer{resource: r, target: target, usage: usage}, nil
}

func (b *Buffer) Bind() error {
	if err := b.check(); err != nil {
		return err
	}
	b.backend.BindBuffer(b.target, b.handle)
	return nil
}

func (b *Buffer) Unbind() error {
	if err := b.check(); err != nil {
		return err
	}
	b.backend.BindBuffer(b.target, metadata.InvalidHandle)
	return nil
}

// UploadFloat32 binds the buffer and replaces its whole contents.
func (b *Buffer) UploadFloat32(data []float32) error {
	if err := b.Bind(); err != nil {
		return err
	}
	b.backend.BufferDataFloat32(b.target, data, b.usage)
	b.length = len(data)
	return nil
}

// UploadUint32 binds the buffer and replaces its whole contents.
func (b *Buffer) UploadUint32(data []uint32) error {
	if err := b.Bind(); err != nil {
		return err
	}
	b.backend.BufferDataUint32(b.target, data, b.usage)
	b.length = len(data)
	return nil
}

// Len is the element count of the last upload.
func (b *Buffer) Len() int {
	return b.length
}

func (b *Buffer) Target() metadata.BufferTarget {
	return b.target
}
