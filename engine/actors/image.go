package actors

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/assets"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/math"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/components"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
	"github.com/spaghettifunk/archview/engine/systems"
)

// Image shows a single texture on a quad in the XY plane. The quad is two
// units tall and as wide as the texture's aspect ratio requires.
type Image struct {
	Path string

	backend renderer.Backend
	cache   *systems.RenderCache
	source  assets.Source

	texture *renderer.Texture
	vao     *renderer.VertexArray
	vbo     *renderer.Buffer
	bounds  math.BoundingBox

	loaded   bool
	disposed bool
}

var _ Renderable = (*Image)(nil)

func NewImage(backend renderer.Backend, cache *systems.RenderCache, source assets.Source, imagePath string) (*Image, error) {
	if backend == nil || cache == nil || imagePath == "" {
		return nil, fmt.Errorf("image '%s': backend, cache and path are required: %w", imagePath, core.ErrInvalidArgument)
	}
	return &Image{
		Path:    assets.NormalizePath(imagePath),
		backend: backend,
		cache:   cache,
		source:  source,
		bounds:  math.EmptyBoundingBox(),
	}, nil
}

// quadVertices builds two triangles covering [-w,w]x[-h,h]. Pixel rows are
// uploaded top first, so the top edge samples v = 0.
func quadVertices(w, h float32) []math.Vertex3D {
	corner := func(x, y, u, v float32) math.Vertex3D {
		return math.Vertex3D{
			Position: mgl32.Vec3{x, y, 0},
			Normal:   mgl32.Vec3{0, 0, 1},
			Texcoord: mgl32.Vec2{u, v},
		}
	}
	bl := corner(-w, -h, 0, 1)
	br := corner(w, -h, 1, 1)
	tr := corner(w, h, 1, 0)
	tl := corner(-w, h, 0, 0)
	return []math.Vertex3D{bl, br, tr, bl, tr, tl}
}

func (i *Image) Load() error {
	if i.disposed {
		return fmt.Errorf("image '%s': %w", i.Path, core.ErrObjectDisposed)
	}
	if i.loaded {
		return nil
	}

	texture, err := i.cache.GetOrCreateTexture(i.Path, i.source, metadata.TextureWrapClampToEdge, metadata.TextureWrapClampToEdge)
	if err != nil {
		return err
	}

	h := float32(1)
	w := h
	if texture.Height > 0 {
		w = h * float32(texture.Width) / float32(texture.Height)
	}
	vertices := quadVertices(w, h)

	if err := i.upload(vertices); err != nil {
		i.release()
		return err
	}
	i.texture = texture
	i.bounds = math.GeometryBounds(vertices)
	i.loaded = true
	core.LogInfo("image '%s' loaded: %dx%d", i.Path, texture.Width, texture.Height)
	return nil
}

func (i *Image) upload(vertices []math.Vertex3D) error {
	var err error
	if i.vao, err = renderer.NewVertexArray(i.backend); err != nil {
		return err
	}
	if i.vbo, err = renderer.NewBuffer(i.backend, metadata.BufferTargetArray, metadata.BufferUsageStaticDraw); err != nil {
		return err
	}
	if err := i.vbo.UploadFloat32(math.FlattenVertices(vertices)); err != nil {
		return err
	}
	if err := i.vao.SetLayout(i.vbo, math.Vertex3DFloats*4, vertex3DLayout...); err != nil {
		return err
	}
	return i.vao.Unbind()
}

func (i *Image) Render(view, projection mgl32.Mat4, camera *components.Camera) error {
	if !i.loaded {
		return nil
	}
	program, err := i.cache.GetShader(metadata.ShaderKindPlain2D)
	if err != nil {
		return err
	}
	shaders, err := i.cache.Shaders()
	if err != nil {
		return err
	}
	if err := shaders.SetUniformMat4(program, "u_transform", projection.Mul4(view)); err != nil {
		return err
	}
	if err := shaders.SetUniformInt(program, "u_texture", 0); err != nil {
		return err
	}
	if err := i.texture.Bind(0); err != nil {
		return err
	}
	if err := i.vao.Bind(); err != nil {
		return err
	}
	i.backend.DrawArrays(metadata.PrimitiveTriangles, 0, 6)
	return i.vao.Unbind()
}

func (i *Image) Bounds() math.BoundingBox {
	return i.bounds
}

// Texture is the cached texture shown by the quad, nil before Load.
func (i *Image) Texture() *renderer.Texture {
	return i.texture
}

func (i *Image) release() error {
	var firstErr error
	if i.vao != nil {
		firstErr = i.vao.Dispose()
		i.vao = nil
	}
	if i.vbo != nil {
		if err := i.vbo.Dispose(); err != nil && firstErr == nil {
			firstErr = err
		}
		i.vbo = nil
	}
	return firstErr
}

// Dispose frees the quad. The texture stays in the render cache.
func (i *Image) Dispose() error {
	if i.disposed {
		return fmt.Errorf("image '%s': %w", i.Path, core.ErrObjectDisposed)
	}
	i.disposed = true
	i.loaded = false
	i.texture = nil
	return i.release()
}
