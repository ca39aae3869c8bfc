package actors

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/math"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/components"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
	"github.com/spaghettifunk/archview/engine/systems"
)

// BoundingBoxes draws the wireframe of a list of boxes. Each box is a single
// point carrying its min and max corners; the geometry stage expands it into
// twelve edges.
type BoundingBoxes struct {
	Color mgl32.Vec4

	backend renderer.Backend
	cache   *systems.RenderCache
	boxes   []math.BoundingBox

	vao *renderer.VertexArray
	vbo *renderer.Buffer

	loaded   bool
	disposed bool
}

var _ Renderable = (*BoundingBoxes)(nil)

func NewBoundingBoxes(backend renderer.Backend, cache *systems.RenderCache, color mgl32.Vec4) (*BoundingBoxes, error) {
	if backend == nil || cache == nil {
		return nil, fmt.Errorf("bounding boxes need a backend and a render cache: %w", core.ErrInvalidArgument)
	}
	return &BoundingBoxes{Color: color, backend: backend, cache: cache}, nil
}

// SetBoxes replaces the boxes. Empty boxes are skipped. After Load the
// buffer is refreshed right away.
func (bb *BoundingBoxes) SetBoxes(boxes ...math.BoundingBox) error {
	bb.boxes = bb.boxes[:0]
	for _, b := range boxes {
		if !b.IsEmpty() {
			bb.boxes = append(bb.boxes, b)
		}
	}
	if bb.loaded {
		return bb.vbo.UploadFloat32(bb.points())
	}
	return nil
}

func (bb *BoundingBoxes) Count() int {
	return len(bb.boxes)
}

func (bb *BoundingBoxes) points() []float32 {
	out := make([]float32, 0, len(bb.boxes)*6)
	for _, b := range bb.boxes {
		out = append(out, b.Min[:]...)
		out = append(out, b.Max[:]...)
	}
	return out
}

func (bb *BoundingBoxes) Load() error {
	if bb.disposed {
		return fmt.Errorf("bounding boxes: %w", core.ErrObjectDisposed)
	}
	if bb.loaded {
		return nil
	}

	var err error
	if bb.vao, err = renderer.NewVertexArray(bb.backend); err == nil {
		bb.vbo, err = renderer.NewBuffer(bb.backend, metadata.BufferTargetArray, metadata.BufferUsageDynamicDraw)
	}
	if err == nil {
		err = bb.vbo.UploadFloat32(bb.points())
	}
	if err == nil {
		err = bb.vao.SetLayout(bb.vbo, 6*4,
			renderer.VertexAttribute{Location: 0, Size: 3, Offset: 0},
			renderer.VertexAttribute{Location: 1, Size: 3, Offset: 12},
		)
	}
	if err != nil {
		bb.release()
		return err
	}
	if err := bb.vao.Unbind(); err != nil {
		bb.release()
		return err
	}
	bb.loaded = true
	return nil
}

func (bb *BoundingBoxes) Render(view, projection mgl32.Mat4, camera *components.Camera) error {
	if !bb.loaded || len(bb.boxes) == 0 {
		return nil
	}
	program, err := bb.cache.GetShader(metadata.ShaderKindBoundingBox)
	if err != nil {
		return err
	}
	shaders, err := bb.cache.Shaders()
	if err != nil {
		return err
	}
	if err := shaders.SetUniformMat4(program, "u_view", view); err != nil {
		return err
	}
	if err := shaders.SetUniformMat4(program, "u_projection", projection); err != nil {
		return err
	}
	if err := shaders.SetUniformVec4(program, "u_color", bb.Color); err != nil {
		return err
	}
	if err := bb.vao.Bind(); err != nil {
		return err
	}
	bb.backend.DrawArrays(metadata.PrimitivePoints, 0, int32(len(bb.boxes)))
	return bb.vao.Unbind()
}

func (bb *BoundingBoxes) Bounds() math.BoundingBox {
	box := math.EmptyBoundingBox()
	for _, b := range bb.boxes {
		box = box.Union(b)
	}
	return box
}

func (bb *BoundingBoxes) release() {
	if bb.vao != nil {
		bb.vao.Dispose()
		bb.vao = nil
	}
	if bb.vbo != nil {
		bb.vbo.Dispose()
		bb.vbo = nil
	}
}

func (bb *BoundingBoxes) Dispose() error {
	if bb.disposed {
		return fmt.Errorf("bounding boxes: %w", core.ErrObjectDisposed)
	}
	bb.disposed = true
	bb.loaded = false
	bb.release()
	return nil
}
