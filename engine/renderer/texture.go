package renderer

import (
	"fmt"

	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

/**
 * @brief A 2D texture living in GPU memory.
 */
type Texture struct {
	resource
	/** @brief The texture Name, usually the normalized asset path. */
	Name string
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief Whether any uploaded pixel is translucent. */
	HasTransparency bool
	/** @brief Sampling state used on the last upload. */
	Sampling metadata.TextureSampling
}

func NewTexture(backend Backend, name string) (*Texture, error) {
	r, err := newResource(backend, metadata.ResourceTypeTexture)
	if err != nil {
		return nil, err
	}
	return &Texture{resource: r, Name: name}, nil
}

// Upload replaces the texture contents with img.
func (t *Texture) Upload(img *metadata.Image, sampling metadata.TextureSampling) error {
	if err := t.check(); err != nil {
		return err
	}
	if img == nil || img.Width == 0 || img.Height == 0 {
		return fmt.Errorf("texture '%s': empty image: %w", t.Name, core.ErrInvalidArgument)
	}
	if expected := int(img.Width) * int(img.Height) * 4; len(img.Pixels) != expected {
		return fmt.Errorf("texture '%s': expected %d bytes of pixels, got %d: %w", t.Name, expected, len(img.Pixels), core.ErrInvalidArgument)
	}

	t.backend.TextureImage2D(t.handle, img.Width, img.Height, img.Pixels, sampling)
	t.Width = img.Width
	t.Height = img.Height
	t.HasTransparency = img.HasTransparency()
	t.Sampling = sampling
	return nil
}

// Bind makes the texture current on the given texture unit.
func (t *Texture) Bind(unit uint32) error {
	if err := t.check(); err != nil {
		return err
	}
	t.backend.BindTexture(unit, t.handle)
	return nil
}

func (t *Texture) Unbind(unit uint32) error {
	if err := t.check(); err != nil {
		return err
	}
	t.backend.BindTexture(unit, metadata.InvalidHandle)
	return nil
}
