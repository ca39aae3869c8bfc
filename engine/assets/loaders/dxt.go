package loaders

import (
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/archview/engine/core"
)

func decodeDXT(mip []byte, h *BLPHeader) ([]uint8, error) {
	var blockSize int
	switch h.AlphaEncoding {
	case BLPAlphaEncodingDXT1:
		blockSize = 8
	case BLPAlphaEncodingDXT3, BLPAlphaEncodingDXT5:
		blockSize = 16
	default:
		return nil, fmt.Errorf("blp alpha encoding %d: %w", h.AlphaEncoding, core.ErrUnsupportedOperation)
	}

	width, height := int(h.Width), int(h.Height)
	blocksX, blocksY := (width+3)/4, (height+3)/4
	if len(mip) < blocksX*blocksY*blockSize {
		return nil, errTruncatedBLP
	}

	out := make([]uint8, width*height*4)
	var block [16][4]uint8
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			src := mip[(by*blocksX+bx)*blockSize:]
			switch h.AlphaEncoding {
			case BLPAlphaEncodingDXT1:
				decodeColorBlock(src, &block, true, h.AlphaDepth > 0)
			case BLPAlphaEncodingDXT3:
				decodeColorBlock(src[8:], &block, false, false)
				decodeExplicitAlpha(src, &block)
			case BLPAlphaEncodingDXT5:
				decodeColorBlock(src[8:], &block, false, false)
				decodeInterpolatedAlpha(src, &block)
			}

			// blocks on the right and bottom edges may hang over the image
			for py := 0; py < 4; py++ {
				y := by*4 + py
				if y >= height {
					break
				}
				for px := 0; px < 4; px++ {
					x := bx*4 + px
					if x >= width {
						break
					}
					copy(out[(y*width+x)*4:], block[py*4+px][:])
				}
			}
		}
	}
	return out, nil
}

func rgb565(c uint16) [4]uint8 {
	r := uint8(c>>11) & 0x1f
	g := uint8(c>>5) & 0x3f
	b := uint8(c) & 0x1f
	return [4]uint8{r<<3 | r>>2, g<<2 | g>>4, b<<3 | b>>2, 255}
}

func mix(a, b [4]uint8, wa, wb, div int) [4]uint8 {
	var out [4]uint8
	for i := 0; i < 3; i++ {
		out[i] = uint8((int(a[i])*wa + int(b[i])*wb) / div)
	}
	out[3] = 255
	return out
}

// decodeColorBlock expands the 8 byte colour part of a DXT block. Only DXT1
// has the three colour mode; its fourth entry is black, transparent when
// punchThrough is set.
func decodeColorBlock(src []byte, block *[16][4]uint8, dxt1, punchThrough bool) {
	c0 := binary.LittleEndian.Uint16(src[0:])
	c1 := binary.LittleEndian.Uint16(src[2:])
	indices := binary.LittleEndian.Uint32(src[4:])

	var palette [4][4]uint8
	palette[0] = rgb565(c0)
	palette[1] = rgb565(c1)
	if c0 > c1 || !dxt1 {
		palette[2] = mix(palette[0], palette[1], 2, 1, 3)
		palette[3] = mix(palette[0], palette[1], 1, 2, 3)
	} else {
		palette[2] = mix(palette[0], palette[1], 1, 1, 2)
		palette[3] = [4]uint8{0, 0, 0, 255}
		if punchThrough {
			palette[3][3] = 0
		}
	}

	for i := 0; i < 16; i++ {
		block[i] = palette[(indices>>(uint(i)*2))&0x3]
	}
}

func decodeExplicitAlpha(src []byte, block *[16][4]uint8) {
	for i := 0; i < 16; i++ {
		nibble := src[i/2]
		if i%2 == 1 {
			nibble >>= 4
		}
		block[i][3] = (nibble & 0x0f) * 17
	}
}

func decodeInterpolatedAlpha(src []byte, block *[16][4]uint8) {
	a0, a1 := int(src[0]), int(src[1])

	var alphas [8]uint8
	alphas[0], alphas[1] = uint8(a0), uint8(a1)
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			alphas[i+1] = uint8(((7-i)*a0 + i*a1) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			alphas[i+1] = uint8(((5-i)*a0 + i*a1) / 5)
		}
		alphas[6], alphas[7] = 0, 255
	}

	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(src[2+i]) << (8 * uint(i))
	}
	for i := 0; i < 16; i++ {
		block[i][3] = alphas[(bits>>(uint(i)*3))&0x7]
	}
}
