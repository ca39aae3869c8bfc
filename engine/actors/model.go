package actors

import (
	"fmt"
	"path"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/assets"
	"github.com/spaghettifunk/archview/engine/assets/loaders"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/math"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/components"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
	"github.com/spaghettifunk/archview/engine/systems"
)

// Alpha below this is cut out instead of blended.
const alphaCutoff float32 = 0.1

type modelGroup struct {
	start, count int32
	texture      *renderer.Texture
}

/**
 * @brief A game model read from an OBJ file with its MTL materials. The
 * model owns its geometry buffers; textures belong to the render cache.
 */
type Model struct {
	Path string
	Wrap metadata.TextureWrap

	backend renderer.Backend
	cache   *systems.RenderCache
	source  assets.Source

	data   *loaders.ModelData
	groups []modelGroup

	vao *renderer.VertexArray
	vbo *renderer.Buffer
	ebo *renderer.Buffer
	// draws the model once at the origin
	single *InstanceSet

	loaded   bool
	disposed bool
}

var (
	_ Renderable     = (*Model)(nil)
	_ InstanceTarget = (*Model)(nil)
)

func NewModel(backend renderer.Backend, cache *systems.RenderCache, source assets.Source, modelPath string, wrap metadata.TextureWrap) (*Model, error) {
	if backend == nil || cache == nil || modelPath == "" {
		return nil, fmt.Errorf("model '%s': backend, cache and path are required: %w", modelPath, core.ErrInvalidArgument)
	}
	if !wrap.Valid() {
		wrap = metadata.TextureWrapRepeat
	}
	return &Model{
		Path:    assets.NormalizePath(modelPath),
		Wrap:    wrap,
		backend: backend,
		cache:   cache,
		source:  source,
	}, nil
}

// relative resolves a path found inside the model's files against the
// model's own directory.
func (m *Model) relative(ref string) string {
	ref = strings.ReplaceAll(ref, "\\", "/")
	return assets.NormalizePath(path.Join(path.Dir(m.Path), ref))
}

func (m *Model) Load() error {
	if m.disposed {
		return fmt.Errorf("model '%s': %w", m.Path, core.ErrObjectDisposed)
	}
	if m.loaded {
		return nil
	}
	if m.source == nil {
		return fmt.Errorf("model '%s': no source: %w", m.Path, core.ErrInvalidArgument)
	}

	raw, ok := m.source.TryExtract(m.Path)
	if !ok {
		err := fmt.Errorf("model '%s' not found", m.Path)
		core.LogError(err.Error())
		return err
	}
	data, err := loaders.DecodeModel(m.Path, raw)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	m.data = data

	materials := m.loadMaterials()
	if err := m.loadTextures(materials); err != nil {
		return err
	}
	if err := m.upload(); err != nil {
		m.release()
		return err
	}

	single, err := NewInstanceSet(m.backend, m)
	if err == nil {
		err = single.SetInstances([]*math.Transform{math.TransformCreate()})
	}
	if err == nil {
		err = single.Initialize()
	}
	if err != nil {
		if single != nil {
			single.Release()
		}
		m.release()
		return err
	}
	m.single = single
	m.loaded = true
	core.LogInfo("model '%s' loaded: %d vertices, %d groups", m.Path, len(data.Vertices), len(m.groups))
	return nil
}

func (m *Model) loadMaterials() map[string]*loaders.Material {
	materials := make(map[string]*loaders.Material)
	for _, lib := range m.data.MaterialLibraries {
		libPath := m.relative(lib)
		raw, ok := m.source.TryExtract(libPath)
		if !ok {
			core.LogWarn("model '%s': material library '%s' not found", m.Path, libPath)
			continue
		}
		decoded, err := loaders.DecodeMaterials(libPath, raw)
		if err != nil {
			core.LogWarn("model '%s': %s", m.Path, err.Error())
			continue
		}
		for name, mat := range decoded {
			materials[name] = mat
		}
	}
	return materials
}

func (m *Model) loadTextures(materials map[string]*loaders.Material) error {
	texturePath := func(g loaders.ModelGroup) string {
		if mat, ok := materials[g.Material]; ok && mat.DiffuseMapName != "" {
			return m.relative(mat.DiffuseMapName)
		}
		return ""
	}

	paths := make([]string, 0, len(m.data.Groups))
	for _, g := range m.data.Groups {
		if p := texturePath(g); p != "" {
			paths = append(paths, p)
		}
	}
	if _, err := m.cache.PrefetchTextures(paths, m.source, m.Wrap, m.Wrap); err != nil {
		return err
	}

	m.groups = m.groups[:0]
	for _, g := range m.data.Groups {
		texture, err := m.cache.GetOrCreateTextureWithOverride(texturePath(g), "", m.source, m.Wrap, m.Wrap)
		if err != nil {
			return err
		}
		m.groups = append(m.groups, modelGroup{
			start:   int32(g.IndexStart),
			count:   int32(g.IndexCount),
			texture: texture,
		})
	}
	return nil
}

func (m *Model) upload() error {
	var err error
	if m.vao, err = renderer.NewVertexArray(m.backend); err != nil {
		return err
	}
	if m.vbo, err = renderer.NewBuffer(m.backend, metadata.BufferTargetArray, metadata.BufferUsageStaticDraw); err != nil {
		return err
	}
	if m.ebo, err = renderer.NewBuffer(m.backend, metadata.BufferTargetElementArray, metadata.BufferUsageStaticDraw); err != nil {
		return err
	}

	if err := m.vbo.UploadFloat32(math.FlattenVertices(m.data.Vertices)); err != nil {
		return err
	}
	if err := m.vao.SetLayout(m.vbo, math.Vertex3DFloats*4, vertex3DLayout...); err != nil {
		return err
	}
	// the element buffer binding is recorded in the bound vertex array
	if err := m.ebo.UploadUint32(m.data.Indices); err != nil {
		return err
	}
	return m.vao.Unbind()
}

// vertex3DLayout matches math.FlattenVertices.
var vertex3DLayout = []renderer.VertexAttribute{
	{Location: metadata.AttributeLocationPosition, Size: 3, Offset: 0},
	{Location: metadata.AttributeLocationNormal, Size: 3, Offset: 12},
	{Location: metadata.AttributeLocationTexcoord, Size: 2, Offset: 24},
}

// BindGeometry is valid once the geometry is uploaded, which happens
// before Load builds the model's own instance set.
func (m *Model) BindGeometry() error {
	if m.disposed {
		return fmt.Errorf("model '%s': %w", m.Path, core.ErrObjectDisposed)
	}
	if m.vao == nil {
		return fmt.Errorf("model '%s' has no geometry: %w", m.Path, core.ErrUnsupportedOperation)
	}
	return m.vao.Bind()
}

func (m *Model) RenderInstanced(view, projection mgl32.Mat4, camera *components.Camera, instanceCount int) error {
	if instanceCount <= 0 {
		return nil
	}
	program, err := m.cache.GetShader(metadata.ShaderKindGameModel)
	if err != nil {
		return err
	}
	shaders, err := m.cache.Shaders()
	if err != nil {
		return err
	}
	if err := shaders.SetUniformMat4(program, "u_view", view); err != nil {
		return err
	}
	if err := shaders.SetUniformMat4(program, "u_projection", projection); err != nil {
		return err
	}
	if err := shaders.SetUniformVec3(program, "u_light_dir", lightDirection(camera)); err != nil {
		return err
	}
	if err := shaders.SetUniformFloat(program, "u_alpha_cutoff", alphaCutoff); err != nil {
		return err
	}
	if err := shaders.SetUniformInt(program, "u_texture", 0); err != nil {
		return err
	}

	if err := m.BindGeometry(); err != nil {
		return err
	}
	for _, g := range m.groups {
		if err := g.texture.Bind(0); err != nil {
			return err
		}
		m.backend.DrawElementsInstanced(metadata.PrimitiveTriangles, g.start, g.count, int32(instanceCount))
	}
	return nil
}

// Render draws the model once at the origin.
func (m *Model) Render(view, projection mgl32.Mat4, camera *components.Camera) error {
	if !m.loaded {
		return nil
	}
	return m.single.Render(view, projection, camera)
}

func (m *Model) Bounds() math.BoundingBox {
	if m.data == nil {
		return math.EmptyBoundingBox()
	}
	return m.data.Bounds
}

func (m *Model) IsStatic() bool {
	return true
}

// Data is the decoded geometry, nil before Load.
func (m *Model) Data() *loaders.ModelData {
	return m.data
}

func (m *Model) release() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if m.single != nil {
		keep(m.single.Release())
		m.single = nil
	}
	if m.vao != nil {
		keep(m.vao.Dispose())
		m.vao = nil
	}
	if m.vbo != nil {
		keep(m.vbo.Dispose())
		m.vbo = nil
	}
	if m.ebo != nil {
		keep(m.ebo.Dispose())
		m.ebo = nil
	}
	return firstErr
}

// Dispose frees the geometry. Textures stay in the render cache.
func (m *Model) Dispose() error {
	if m.disposed {
		return fmt.Errorf("model '%s': %w", m.Path, core.ErrObjectDisposed)
	}
	m.disposed = true
	m.loaded = false
	return m.release()
}
