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

// Grid is the ground reference drawn under models: evenly spaced lines on
// the XZ plane that fade out with the distance from the camera.
type Grid struct {
	// Half the side length of the grid.
	Extent float32
	// Lines per side of the origin along each axis.
	Divisions int
	Color     mgl32.Vec4

	backend renderer.Backend
	cache   *systems.RenderCache

	vao         *renderer.VertexArray
	vbo         *renderer.Buffer
	vertexCount int32

	loaded   bool
	disposed bool
}

var _ Renderable = (*Grid)(nil)

func NewGrid(backend renderer.Backend, cache *systems.RenderCache, extent float32, divisions int, color mgl32.Vec4) (*Grid, error) {
	if backend == nil || cache == nil {
		return nil, fmt.Errorf("grid needs a backend and a render cache: %w", core.ErrInvalidArgument)
	}
	if extent <= 0 || divisions < 1 {
		return nil, fmt.Errorf("grid extent %v and divisions %d must be positive: %w", extent, divisions, core.ErrInvalidArgument)
	}
	return &Grid{
		Extent:    extent,
		Divisions: divisions,
		Color:     color,
		backend:   backend,
		cache:     cache,
	}, nil
}

// gridLines returns line endpoints as packed xyz triples.
func gridLines(extent float32, divisions int) []float32 {
	step := extent / float32(divisions)
	out := make([]float32, 0, (2*divisions+1)*4*3)
	for i := -divisions; i <= divisions; i++ {
		d := float32(i) * step
		out = append(out,
			d, 0, -extent, d, 0, extent,
			-extent, 0, d, extent, 0, d,
		)
	}
	return out
}

func (g *Grid) Load() error {
	if g.disposed {
		return fmt.Errorf("grid: %w", core.ErrObjectDisposed)
	}
	if g.loaded {
		return nil
	}
	lines := gridLines(g.Extent, g.Divisions)

	var err error
	if g.vao, err = renderer.NewVertexArray(g.backend); err == nil {
		g.vbo, err = renderer.NewBuffer(g.backend, metadata.BufferTargetArray, metadata.BufferUsageStaticDraw)
	}
	if err == nil {
		err = g.vbo.UploadFloat32(lines)
	}
	if err == nil {
		err = g.vao.SetLayout(g.vbo, 3*4, renderer.VertexAttribute{Location: metadata.AttributeLocationPosition, Size: 3})
	}
	if err != nil {
		g.release()
		return err
	}
	if err := g.vao.Unbind(); err != nil {
		g.release()
		return err
	}

	g.vertexCount = int32(len(lines) / 3)
	g.loaded = true
	return nil
}

func (g *Grid) Render(view, projection mgl32.Mat4, camera *components.Camera) error {
	if !g.loaded {
		return nil
	}
	program, err := g.cache.GetShader(metadata.ShaderKindBaseGrid)
	if err != nil {
		return err
	}
	shaders, err := g.cache.Shaders()
	if err != nil {
		return err
	}
	if err := shaders.SetUniformMat4(program, "u_view", view); err != nil {
		return err
	}
	if err := shaders.SetUniformMat4(program, "u_projection", projection); err != nil {
		return err
	}
	if err := shaders.SetUniformVec4(program, "u_color", g.Color); err != nil {
		return err
	}
	if err := shaders.SetUniformFloat(program, "u_fade_distance", g.Extent); err != nil {
		return err
	}
	if err := g.vao.Bind(); err != nil {
		return err
	}
	g.backend.DrawArrays(metadata.PrimitiveLines, 0, g.vertexCount)
	return g.vao.Unbind()
}

func (g *Grid) Bounds() math.BoundingBox {
	return math.NewBoundingBox(mgl32.Vec3{-g.Extent, 0, -g.Extent}, mgl32.Vec3{g.Extent, 0, g.Extent})
}

func (g *Grid) release() {
	if g.vao != nil {
		g.vao.Dispose()
		g.vao = nil
	}
	if g.vbo != nil {
		g.vbo.Dispose()
		g.vbo = nil
	}
}

func (g *Grid) Dispose() error {
	if g.disposed {
		return fmt.Errorf("grid: %w", core.ErrObjectDisposed)
	}
	g.disposed = true
	g.loaded = false
	g.release()
	return nil
}
