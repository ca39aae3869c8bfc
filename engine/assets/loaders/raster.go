package loaders

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

// RasterLoader decodes the common interchange formats found next to the
// native textures.
type RasterLoader struct {
	Format metadata.ImageFormat
}

func (rl *RasterLoader) Decode(data []byte) (*metadata.Image, error) {
	r := bytes.NewReader(data)

	var img image.Image
	var err error
	switch rl.Format {
	case metadata.ImageFormatPNG:
		img, err = png.Decode(r)
	case metadata.ImageFormatJPEG:
		img, err = jpeg.Decode(r)
	case metadata.ImageFormatGIF:
		img, err = gif.Decode(r)
	case metadata.ImageFormatBMP:
		img, err = bmp.Decode(r)
	case metadata.ImageFormatTIFF:
		img, err = tiff.Decode(r)
	case metadata.ImageFormatWEBP:
		img, err = webp.Decode(r)
	default:
		return nil, fmt.Errorf("raster format '%s': %w", rl.Format, core.ErrUnsupportedOperation)
	}
	if err != nil {
		return nil, err
	}
	return FromImage(img, rl.Format), nil
}

// FromImage converts any image.Image into tightly packed, non-premultiplied RGBA.
func FromImage(img image.Image, format metadata.ImageFormat) *metadata.Image {
	bounds := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}
	return &metadata.Image{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Pixels: nrgba.Pix,
		Format: format,
	}
}
