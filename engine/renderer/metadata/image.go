package metadata

/** @brief Identifies which decoder produced an image. */
type ImageFormat string

const (
	ImageFormatBLP  ImageFormat = "blp"
	ImageFormatPNG  ImageFormat = "png"
	ImageFormatJPEG ImageFormat = "jpeg"
	ImageFormatGIF  ImageFormat = "gif"
	ImageFormatBMP  ImageFormat = "bmp"
	ImageFormatTIFF ImageFormat = "tiff"
	ImageFormatWEBP ImageFormat = "webp"
)

/**
 * @brief A decoded image ready for upload.
 */
type Image struct {
	/** @brief The width of the image. */
	Width uint32
	/** @brief The height of the image. */
	Height uint32
	/** @brief Tightly packed RGBA8 rows, top row first. */
	Pixels []uint8
	/** @brief The decoder that produced the pixels. */
	Format ImageFormat
}

// ChannelCount is always 4, pixels are expanded to RGBA when decoded.
func (i *Image) ChannelCount() uint8 {
	return 4
}

// HasTransparency reports whether any pixel is not fully opaque.
func (i *Image) HasTransparency() bool {
	for p := 3; p < len(i.Pixels); p += 4 {
		if i.Pixels[p] < 255 {
			return true
		}
	}
	return false
}
