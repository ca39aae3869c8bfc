package loaders

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

const (
	blpMagic       = "BLP2"
	blpHeaderSize  = 148
	blpPaletteSize = 256 * 4
	blpMipLevels   = 16
)

/** @brief How the pixel data of a BLP2 texture is stored. */
type BLPCompression uint8

const (
	BLPCompressionPalette BLPCompression = 1
	BLPCompressionDXT     BLPCompression = 2
	BLPCompressionBGRA    BLPCompression = 3
)

/** @brief Block compression variant, only meaningful for BLPCompressionDXT. */
type BLPAlphaEncoding uint8

const (
	BLPAlphaEncodingDXT1 BLPAlphaEncoding = 0
	BLPAlphaEncodingDXT3 BLPAlphaEncoding = 1
	BLPAlphaEncodingDXT5 BLPAlphaEncoding = 7
)

var errTruncatedBLP = errors.New("truncated blp data")

/**
 * @brief The fixed header of a BLP2 file.
 */
type BLPHeader struct {
	/** @brief 0 for JPEG content, 1 for everything else. */
	Content       uint32
	Compression   BLPCompression
	AlphaDepth    uint8
	AlphaEncoding BLPAlphaEncoding
	HasMips       bool
	Width         uint32
	Height        uint32
	MipOffsets    [blpMipLevels]uint32
	MipSizes      [blpMipLevels]uint32
}

// ParseBLPHeader reads the header at the start of data.
func ParseBLPHeader(data []byte) (*BLPHeader, error) {
	if len(data) < blpHeaderSize {
		return nil, errTruncatedBLP
	}
	if string(data[:4]) != blpMagic {
		return nil, fmt.Errorf("bad blp magic %q: %w", data[:4], core.ErrUnsupportedOperation)
	}
	h := &BLPHeader{
		Content:       binary.LittleEndian.Uint32(data[4:]),
		Compression:   BLPCompression(data[8]),
		AlphaDepth:    data[9],
		AlphaEncoding: BLPAlphaEncoding(data[10]),
		HasMips:       data[11] != 0,
		Width:         binary.LittleEndian.Uint32(data[12:]),
		Height:        binary.LittleEndian.Uint32(data[16:]),
	}
	for i := 0; i < blpMipLevels; i++ {
		h.MipOffsets[i] = binary.LittleEndian.Uint32(data[20+i*4:])
		h.MipSizes[i] = binary.LittleEndian.Uint32(data[84+i*4:])
	}
	return h, nil
}

// BLPLoader decodes the base mip level of BLP2 textures.
type BLPLoader struct{}

func (bl *BLPLoader) Decode(data []byte) (*metadata.Image, error) {
	h, err := ParseBLPHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Content != 1 {
		return nil, fmt.Errorf("jpeg content blp: %w", core.ErrUnsupportedOperation)
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, fmt.Errorf("blp has no pixels (%dx%d): %w", h.Width, h.Height, core.ErrInvalidArgument)
	}

	start, size := uint64(h.MipOffsets[0]), uint64(h.MipSizes[0])
	if start+size > uint64(len(data)) || size == 0 {
		return nil, errTruncatedBLP
	}
	mip := data[start : start+size]

	var pixels []uint8
	switch h.Compression {
	case BLPCompressionPalette:
		if len(data) < blpHeaderSize+blpPaletteSize {
			return nil, errTruncatedBLP
		}
		pixels, err = decodePalettized(mip, data[blpHeaderSize:blpHeaderSize+blpPaletteSize], h)
	case BLPCompressionDXT:
		pixels, err = decodeDXT(mip, h)
	case BLPCompressionBGRA:
		pixels, err = decodeBGRA(mip, h)
	default:
		err = fmt.Errorf("blp compression %d: %w", h.Compression, core.ErrUnsupportedOperation)
	}
	if err != nil {
		return nil, err
	}

	return &metadata.Image{
		Width:  h.Width,
		Height: h.Height,
		Pixels: pixels,
		Format: metadata.ImageFormatBLP,
	}, nil
}

func decodePalettized(mip, palette []byte, h *BLPHeader) ([]uint8, error) {
	count := int(h.Width) * int(h.Height)
	alphaBytes := 0
	switch h.AlphaDepth {
	case 0:
	case 1:
		alphaBytes = (count + 7) / 8
	case 4:
		alphaBytes = (count + 1) / 2
	case 8:
		alphaBytes = count
	default:
		return nil, fmt.Errorf("blp alpha depth %d: %w", h.AlphaDepth, core.ErrUnsupportedOperation)
	}
	if len(mip) < count+alphaBytes {
		return nil, errTruncatedBLP
	}
	alpha := mip[count : count+alphaBytes]

	out := make([]uint8, count*4)
	for i := 0; i < count; i++ {
		entry := palette[int(mip[i])*4:]
		// palette entries are stored as BGRA
		out[i*4+0] = entry[2]
		out[i*4+1] = entry[1]
		out[i*4+2] = entry[0]

		var a uint8 = 255
		switch h.AlphaDepth {
		case 1:
			if alpha[i/8]&(1<<(uint(i)%8)) == 0 {
				a = 0
			}
		case 4:
			nibble := alpha[i/2]
			if i%2 == 1 {
				nibble >>= 4
			}
			a = (nibble & 0x0f) * 17
		case 8:
			a = alpha[i]
		}
		out[i*4+3] = a
	}
	return out, nil
}

func decodeBGRA(mip []byte, h *BLPHeader) ([]uint8, error) {
	count := int(h.Width) * int(h.Height)
	if len(mip) < count*4 {
		return nil, errTruncatedBLP
	}
	out := make([]uint8, count*4)
	for i := 0; i < count; i++ {
		out[i*4+0] = mip[i*4+2]
		out[i*4+1] = mip[i*4+1]
		out[i*4+2] = mip[i*4+0]
		out[i*4+3] = mip[i*4+3]
	}
	return out, nil
}
