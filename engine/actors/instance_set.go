package actors

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/math"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/components"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

const (
	// A mat4 attribute is fed as four vec4 columns in consecutive slots.
	instanceAttributeSlots = 4
	instanceStride         = 16 * 4
)

// InstanceSet draws one target many times, once per transform. It does not
// own the target; disposing the geometry is the target's job.
type InstanceSet struct {
	backend    renderer.Backend
	target     InstanceTarget
	transforms []*math.Transform

	buffer      *renderer.Buffer
	initialized bool
}

var _ Renderable = (*InstanceSet)(nil)

func NewInstanceSet(backend renderer.Backend, target InstanceTarget) (*InstanceSet, error) {
	if backend == nil || target == nil {
		return nil, fmt.Errorf("instance set needs a backend and a target: %w", core.ErrInvalidArgument)
	}
	return &InstanceSet{backend: backend, target: target}, nil
}

// SetInstances replaces the instance list. When the set is already
// initialized the GPU buffer is rebuilt so it always matches the list.
func (is *InstanceSet) SetInstances(transforms []*math.Transform) error {
	is.transforms = append([]*math.Transform(nil), transforms...)
	if is.initialized {
		return is.Initialize()
	}
	return nil
}

func (is *InstanceSet) Instances() []*math.Transform {
	return is.transforms
}

func (is *InstanceSet) Count() int {
	return len(is.transforms)
}

func (is *InstanceSet) IsInitialized() bool {
	return is.initialized
}

// Initialize (re)allocates the instance buffer and uploads one model matrix
// per transform.
func (is *InstanceSet) Initialize() error {
	is.initialized = false
	if is.buffer != nil {
		if err := is.buffer.Dispose(); err != nil {
			return err
		}
		is.buffer = nil
	}

	buffer, err := renderer.NewBuffer(is.backend, metadata.BufferTargetArray, metadata.BufferUsageDynamicDraw)
	if err != nil {
		return err
	}
	if err := buffer.UploadFloat32(is.matrices()); err != nil {
		buffer.Dispose()
		return err
	}
	is.buffer = buffer

	if err := is.bindAttributes(); err != nil {
		is.buffer.Dispose()
		is.buffer = nil
		return err
	}
	if err := is.unbindAttributes(); err != nil {
		return err
	}

	is.initialized = true
	return nil
}

// Load initializes the set.
func (is *InstanceSet) Load() error {
	return is.Initialize()
}

func (is *InstanceSet) matrices() []float32 {
	out := make([]float32, 0, len(is.transforms)*16)
	for _, t := range is.transforms {
		m := t.GetWorld()
		out = append(out, m[:]...)
	}
	return out
}

func (is *InstanceSet) bindAttributes() error {
	if err := is.target.BindGeometry(); err != nil {
		return err
	}
	if err := is.buffer.Bind(); err != nil {
		return err
	}
	for i := uint32(0); i < instanceAttributeSlots; i++ {
		location := metadata.AttributeLocationInstance + i
		is.backend.EnableVertexAttribArray(location)
		is.backend.VertexAttribPointer(location, 4, instanceStride, int(i)*16)
		is.backend.VertexAttribDivisor(location, 1)
	}
	return nil
}

func (is *InstanceSet) unbindAttributes() error {
	for i := uint32(0); i < instanceAttributeSlots; i++ {
		is.backend.DisableVertexAttribArray(metadata.AttributeLocationInstance + i)
	}
	return is.buffer.Unbind()
}

// Render draws every instance. Before Initialize, or with no instances, it
// does nothing.
func (is *InstanceSet) Render(view, projection mgl32.Mat4, camera *components.Camera) error {
	if !is.initialized || len(is.transforms) == 0 {
		return nil
	}
	if err := is.bindAttributes(); err != nil {
		return err
	}
	err := is.target.RenderInstanced(view, projection, camera, len(is.transforms))
	if uerr := is.unbindAttributes(); err == nil {
		err = uerr
	}
	return err
}

// Bounds is the union of the target bounds placed at every instance.
func (is *InstanceSet) Bounds() math.BoundingBox {
	box := math.EmptyBoundingBox()
	local := is.target.Bounds()
	if local.IsEmpty() {
		return box
	}
	for _, t := range is.transforms {
		box = box.Union(local.Transform(t.GetWorld()))
	}
	return box
}

func (is *InstanceSet) IsStatic() bool {
	return is.target.IsStatic()
}

// Release frees the instance buffer and returns the set to its
// uninitialized state. The target is left untouched.
func (is *InstanceSet) Release() error {
	is.initialized = false
	if is.buffer == nil {
		return nil
	}
	err := is.buffer.Dispose()
	is.buffer = nil
	return err
}

// Dispose is not supported: the target owns the geometry and may be shared
// by several sets. Use Release for the instance buffer.
func (is *InstanceSet) Dispose() error {
	return fmt.Errorf("instance set cannot dispose its target: %w", core.ErrUnsupportedOperation)
}
