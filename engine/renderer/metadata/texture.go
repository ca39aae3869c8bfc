package metadata

import "fmt"

const (
	/** @brief The name the fallback texture is logged and registered under. */
	FALLBACK_TEXTURE_NAME string = "fallback"
)

/** @brief Texture coordinate wrapping along one axis. */
type TextureWrap string

const (
	TextureWrapRepeat         TextureWrap = "repeat"
	TextureWrapMirroredRepeat TextureWrap = "mirrored_repeat"
	TextureWrapClampToEdge    TextureWrap = "clamp_to_edge"
	TextureWrapClampToBorder  TextureWrap = "clamp_to_border"
)

func (w TextureWrap) Valid() bool {
	switch w {
	case TextureWrapRepeat, TextureWrapMirroredRepeat, TextureWrapClampToEdge, TextureWrapClampToBorder:
		return true
	}
	return false
}

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

/**
 * @brief Sampling state applied when a texture is uploaded.
 */
type TextureSampling struct {
	WrapS  TextureWrap
	WrapT  TextureWrap
	Filter TextureFilter
	// Mipmaps requests a full mip chain after the base level upload.
	Mipmaps bool
}

func DefaultSampling(wrapS, wrapT TextureWrap) TextureSampling {
	return TextureSampling{
		WrapS:   wrapS,
		WrapT:   wrapT,
		Filter:  TextureFilterModeLinear,
		Mipmaps: true,
	}
}

func (s TextureSampling) String() string {
	return fmt.Sprintf("wrap=%s/%s filter=%d mipmaps=%t", s.WrapS, s.WrapT, s.Filter, s.Mipmaps)
}
