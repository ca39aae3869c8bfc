package systems

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/spaghettifunk/archview/engine/assets"
	"github.com/spaghettifunk/archview/engine/assets/loaders"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

//go:embed fallback.png
var fallbackPNG []byte

// TextureSystem caches one GPU texture per normalized archive path. Anything
// that cannot be loaded resolves to the shared fallback texture.
type TextureSystem struct {
	// Hashtable for texture lookups.
	RegisteredTextureTable map[string]*renderer.Texture
	fallback               *renderer.Texture
	// sub systems
	jobSystem *JobSystem
	backend   renderer.Backend
}

func NewTextureSystem(backend renderer.Backend, js *JobSystem) (*TextureSystem, error) {
	if backend == nil {
		err := fmt.Errorf("func NewTextureSystem - backend is required: %w", core.ErrInvalidArgument)
		core.LogError(err.Error())
		return nil, err
	}
	return &TextureSystem{
		RegisteredTextureTable: make(map[string]*renderer.Texture),
		jobSystem:              js,
		backend:                backend,
	}, nil
}

func textureKey(path string) (string, error) {
	key := assets.NormalizePath(path)
	if key == "" {
		return "", fmt.Errorf("empty texture path: %w", core.ErrInvalidArgument)
	}
	return key, nil
}

func (ts *TextureSystem) Has(path string) (bool, error) {
	key, err := textureKey(path)
	if err != nil {
		return false, err
	}
	_, ok := ts.RegisteredTextureTable[key]
	return ok, nil
}

// Get returns a texture previously loaded by Resolve. Asking for one that
// was never loaded is a caller bug and reported as ErrTextureNotCached.
func (ts *TextureSystem) Get(path string) (*renderer.Texture, error) {
	key, err := textureKey(path)
	if err != nil {
		return nil, err
	}
	texture, ok := ts.RegisteredTextureTable[key]
	if !ok {
		return nil, fmt.Errorf("texture '%s': %w", key, core.ErrTextureNotCached)
	}
	return texture, nil
}

// Len is the number of cached textures, not counting the fallback.
func (ts *TextureSystem) Len() int {
	return len(ts.RegisteredTextureTable)
}

/**
 * @brief Returns the texture for path, loading it from source on a miss.
 * Load failures are logged and answered with the fallback texture; the only
 * errors are an empty path and a fallback that cannot be created.
 */
func (ts *TextureSystem) Resolve(path string, source assets.Source, wrapS, wrapT metadata.TextureWrap) (*renderer.Texture, error) {
	key, err := textureKey(path)
	if err != nil {
		return nil, err
	}
	if texture, ok := ts.RegisteredTextureTable[key]; ok {
		return texture, nil
	}

	img, err := decodeTexture(key, source)
	if err != nil {
		core.LogWarn("texture '%s' unavailable, using fallback: %s", key, err.Error())
		return ts.Fallback()
	}
	return ts.register(key, img, wrapS, wrapT)
}

// ResolveWithOverride resolves name, or override when name is empty. With
// both empty the fallback is returned without touching the source.
func (ts *TextureSystem) ResolveWithOverride(name, override string, source assets.Source, wrapS, wrapT metadata.TextureWrap) (*renderer.Texture, error) {
	path := name
	if path == "" {
		path = override
	}
	if path == "" {
		return ts.Fallback()
	}
	return ts.Resolve(path, source, wrapS, wrapT)
}

type decodedTexture struct {
	key string
	img *metadata.Image
	err error
}

// Prefetch decodes the missing textures of paths on the job system and
// uploads them on the calling thread. It returns how many were added.
func (ts *TextureSystem) Prefetch(paths []string, source assets.Source, wrapS, wrapT metadata.TextureWrap) (int, error) {
	pending := make(map[string]bool)
	for _, p := range paths {
		key := assets.NormalizePath(p)
		if key == "" || pending[key] {
			continue
		}
		if _, ok := ts.RegisteredTextureTable[key]; ok {
			continue
		}
		pending[key] = true
	}
	if len(pending) == 0 {
		return 0, nil
	}

	results := make([]decodedTexture, 0, len(pending))
	var mutex sync.Mutex
	var wg sync.WaitGroup
	for key := range pending {
		key := key
		var img *metadata.Image
		wg.Add(1)
		job := metadata.JobTask{
			OnStart: func() error {
				var err error
				img, err = decodeTexture(key, source)
				return err
			},
			OnComplete: func() {
				mutex.Lock()
				results = append(results, decodedTexture{key: key, img: img})
				mutex.Unlock()
			},
			OnFailure: func(err error) {
				mutex.Lock()
				results = append(results, decodedTexture{key: key, err: err})
				mutex.Unlock()
			},
			OnCompletionCallback: wg.Done,
		}
		if ts.jobSystem == nil {
			runJob(job)
			continue
		}
		if err := ts.jobSystem.Submit(job); err != nil {
			wg.Done()
			wg.Wait()
			return 0, err
		}
	}
	wg.Wait()

	added := 0
	for _, r := range results {
		if r.err != nil {
			core.LogWarn("texture '%s' unavailable, using fallback: %s", r.key, r.err.Error())
			continue
		}
		texture, err := ts.register(r.key, r.img, wrapS, wrapT)
		if err != nil {
			return added, err
		}
		if texture != ts.fallback {
			added++
		}
	}
	return added, nil
}

func decodeTexture(key string, source assets.Source) (*metadata.Image, error) {
	if fileType := loaders.ClassifyPath(key); fileType != loaders.FileTypeUnknown && !fileType.IsImage() {
		return nil, fmt.Errorf("%s is not an image: %w", fileType, core.ErrUnsupportedOperation)
	}
	if source == nil {
		return nil, fmt.Errorf("no source to extract from")
	}
	data, ok := source.TryExtract(key)
	if !ok {
		return nil, fmt.Errorf("not found in any source")
	}
	return loaders.DecodeImage(key, data)
}

// register uploads img under key. An upload failure falls back like any other
// load failure and leaves nothing cached.
func (ts *TextureSystem) register(key string, img *metadata.Image, wrapS, wrapT metadata.TextureWrap) (*renderer.Texture, error) {
	texture, err := renderer.NewTexture(ts.backend, key)
	if err != nil {
		core.LogWarn("texture '%s' could not be created, using fallback: %s", key, err.Error())
		return ts.Fallback()
	}
	if err := texture.Upload(img, metadata.DefaultSampling(wrapS, wrapT)); err != nil {
		core.LogWarn("texture '%s' could not be uploaded, using fallback: %s", key, err.Error())
		texture.Dispose()
		return ts.Fallback()
	}
	ts.RegisteredTextureTable[key] = texture
	core.LogDebug("texture '%s' loaded (%dx%d)", key, texture.Width, texture.Height)
	return texture, nil
}

/**
 * @brief Returns the fallback texture, creating it on first use. It is
 * shared by every failed lookup and destroyed only by Shutdown.
 */
func (ts *TextureSystem) Fallback() (*renderer.Texture, error) {
	if ts.fallback != nil {
		return ts.fallback, nil
	}

	img, err := loaders.DecodeImage("fallback.png", fallbackPNG)
	if err != nil {
		err = fmt.Errorf("func TextureSystem.Fallback - %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	texture, err := renderer.NewTexture(ts.backend, metadata.FALLBACK_TEXTURE_NAME)
	if err != nil {
		return nil, err
	}
	sampling := metadata.DefaultSampling(metadata.TextureWrapRepeat, metadata.TextureWrapRepeat)
	sampling.Filter = metadata.TextureFilterModeNearest
	if err := texture.Upload(img, sampling); err != nil {
		texture.Dispose()
		core.LogError(err.Error())
		return nil, err
	}
	ts.fallback = texture
	return texture, nil
}

/**
 * @brief Destroys every cached texture and the fallback.
 */
func (ts *TextureSystem) Shutdown() error {
	var firstErr error
	for key, texture := range ts.RegisteredTextureTable {
		if err := texture.Dispose(); err != nil {
			core.LogError("texture '%s': %s", key, err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	ts.RegisteredTextureTable = make(map[string]*renderer.Texture)

	if ts.fallback != nil {
		if err := ts.fallback.Dispose(); err != nil {
			core.LogError("fallback texture: %s", err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
		ts.fallback = nil
	}
	return firstErr
}
