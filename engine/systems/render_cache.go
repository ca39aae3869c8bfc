package systems

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/archview/engine/assets"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
	"github.com/spaghettifunk/archview/engine/shaders"
)

type RenderCacheConfig struct {
	/** @brief Number of workers decoding textures in Prefetch. 0 decodes inline. */
	DecodeWorkers int
	/** @brief Construction table for shader programs, nil for the defaults. */
	Shaders map[metadata.ShaderKind]ShaderConfig
}

// RenderCache owns every shader program and texture of a preview session and
// releases all of them in one Dispose. It is not safe for concurrent use.
type RenderCache struct {
	ID uuid.UUID

	jobSystem     *JobSystem
	shaderSystem  *ShaderSystem
	textureSystem *TextureSystem

	disposed bool
}

func NewRenderCache(config RenderCacheConfig, backend renderer.Backend, provider shaders.Provider) (*RenderCache, error) {
	ss, err := NewShaderSystem(config.Shaders, backend, provider)
	if err != nil {
		return nil, err
	}

	var js *JobSystem
	if config.DecodeWorkers > 0 {
		js, err = NewJobSystem(config.DecodeWorkers, config.DecodeWorkers*4)
		if err != nil {
			return nil, err
		}
	}
	// cannot fail, the backend was checked by the shader system
	ts, _ := NewTextureSystem(backend, js)

	rc := &RenderCache{
		ID:            uuid.New(),
		jobSystem:     js,
		shaderSystem:  ss,
		textureSystem: ts,
	}
	core.LogDebug("render cache %s created", rc.ID)
	return rc, nil
}

func (rc *RenderCache) check() error {
	if rc.disposed {
		return fmt.Errorf("render cache %s: %w", rc.ID, core.ErrObjectDisposed)
	}
	return nil
}

func (rc *RenderCache) IsDisposed() bool {
	return rc.disposed
}

// GetShader returns the program for kind, building it on first use.
func (rc *RenderCache) GetShader(kind metadata.ShaderKind) (*renderer.Program, error) {
	if err := rc.check(); err != nil {
		return nil, err
	}
	return rc.shaderSystem.Get(kind)
}

// Shaders exposes the registry for uniform uploads.
func (rc *RenderCache) Shaders() (*ShaderSystem, error) {
	if err := rc.check(); err != nil {
		return nil, err
	}
	return rc.shaderSystem, nil
}

func (rc *RenderCache) GetOrCreateTexture(path string, source assets.Source, wrapS, wrapT metadata.TextureWrap) (*renderer.Texture, error) {
	if err := rc.check(); err != nil {
		return nil, err
	}
	return rc.textureSystem.Resolve(path, source, wrapS, wrapT)
}

func (rc *RenderCache) GetOrCreateTextureWithOverride(name, override string, source assets.Source, wrapS, wrapT metadata.TextureWrap) (*renderer.Texture, error) {
	if err := rc.check(); err != nil {
		return nil, err
	}
	return rc.textureSystem.ResolveWithOverride(name, override, source, wrapS, wrapT)
}

// PrefetchTextures loads several textures at once, decoding them in parallel.
func (rc *RenderCache) PrefetchTextures(paths []string, source assets.Source, wrapS, wrapT metadata.TextureWrap) (int, error) {
	if err := rc.check(); err != nil {
		return 0, err
	}
	return rc.textureSystem.Prefetch(paths, source, wrapS, wrapT)
}

func (rc *RenderCache) HasTexture(path string) (bool, error) {
	if err := rc.check(); err != nil {
		return false, err
	}
	return rc.textureSystem.Has(path)
}

func (rc *RenderCache) Texture(path string) (*renderer.Texture, error) {
	if err := rc.check(); err != nil {
		return nil, err
	}
	return rc.textureSystem.Get(path)
}

func (rc *RenderCache) FallbackTexture() (*renderer.Texture, error) {
	if err := rc.check(); err != nil {
		return nil, err
	}
	return rc.textureSystem.Fallback()
}

// TextureCount is the number of cached textures, excluding the fallback.
func (rc *RenderCache) TextureCount() (int, error) {
	if err := rc.check(); err != nil {
		return 0, err
	}
	return rc.textureSystem.Len(), nil
}

/**
 * @brief Destroys every texture and program. The cache cannot be used
 * afterwards; a second Dispose returns ErrObjectDisposed.
 */
func (rc *RenderCache) Dispose() error {
	if err := rc.check(); err != nil {
		return err
	}
	rc.disposed = true

	var errs []error
	if err := rc.textureSystem.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if err := rc.shaderSystem.Shutdown(); err != nil {
		errs = append(errs, err)
	}
	if rc.jobSystem != nil {
		if err := rc.jobSystem.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	core.LogDebug("render cache %s disposed", rc.ID)
	return errors.Join(errs...)
}
