package renderer

import (
	"fmt"

	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

// resource owns exactly one native GPU object. The backend is borrowed.
type resource struct {
	backend      Backend
	resourceType metadata.ResourceType
	handle       uint32
	release      func(handle uint32)
}

func newResource(backend Backend, resourceType metadata.ResourceType) (resource, error) {
	if backend == nil {
		return resource{}, fmt.Errorf("nil backend for %s: %w", resourceType, core.ErrInvalidArgument)
	}

	var handle uint32
	var release func(uint32)
	switch resourceType {
	case metadata.ResourceTypeTexture:
		handle, release = backend.CreateTexture(), backend.DeleteTexture
	case metadata.ResourceTypeBuffer:
		handle, release = backend.CreateBuffer(), backend.DeleteBuffer
	case metadata.ResourceTypeVertexArray:
		handle, release = backend.CreateVertexArray(), backend.DeleteVertexArray
	case metadata.ResourceTypeProgram:
		handle, release = backend.CreateProgram(), backend.DeleteProgram
	default:
		return resource{}, fmt.Errorf("cannot wrap %s: %w", resourceType, core.ErrInvalidArgument)
	}

	if handle == metadata.InvalidHandle {
		err := fmt.Errorf("%s: %w", resourceType, core.ErrDriverFailure)
		core.LogError(err.Error())
		return resource{}, err
	}
	return resource{
		backend:      backend,
		resourceType: resourceType,
		handle:       handle,
		release:      release,
	}, nil
}

// Handle returns the native handle, or ErrObjectDisposed once the object
// has been destroyed.
func (r *resource) Handle() (uint32, error) {
	if err := r.check(); err != nil {
		return metadata.InvalidHandle, err
	}
	return r.handle, nil
}

func (r *resource) IsDisposed() bool {
	return r.handle == metadata.InvalidHandle
}

// Dispose destroys the native object once. Later calls return ErrObjectDisposed.
func (r *resource) Dispose() error {
	if err := r.check(); err != nil {
		return err
	}
	r.release(r.handle)
	r.handle = metadata.InvalidHandle
	return nil
}

func (r *resource) check() error {
	if r.handle == metadata.InvalidHandle {
		return fmt.Errorf("%s: %w", r.resourceType, core.ErrObjectDisposed)
	}
	return nil
}
