package loaders

import (
	"fmt"

	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

// ImageLoader turns the raw bytes of one file type into RGBA pixels.
type ImageLoader interface {
	Decode(data []byte) (*metadata.Image, error)
}

var imageLoaders = map[FileType]ImageLoader{
	FileTypeBLP:  &BLPLoader{},
	FileTypePNG:  &RasterLoader{Format: metadata.ImageFormatPNG},
	FileTypeJPEG: &RasterLoader{Format: metadata.ImageFormatJPEG},
	FileTypeGIF:  &RasterLoader{Format: metadata.ImageFormatGIF},
	FileTypeBMP:  &RasterLoader{Format: metadata.ImageFormatBMP},
	FileTypeTIFF: &RasterLoader{Format: metadata.ImageFormatTIFF},
	FileTypeWEBP: &RasterLoader{Format: metadata.ImageFormatWEBP},
}

// DecodeImage classifies p and decodes data with the matching loader.
func DecodeImage(p string, data []byte) (*metadata.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image '%s': no data: %w", p, core.ErrInvalidArgument)
	}
	fileType := Classify(p, data)
	loader, ok := imageLoaders[fileType]
	if !ok {
		return nil, fmt.Errorf("image '%s': no decoder for file type %s: %w", p, fileType, core.ErrUnsupportedOperation)
	}
	img, err := loader.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("image '%s': %w", p, err)
	}
	return img, nil
}
