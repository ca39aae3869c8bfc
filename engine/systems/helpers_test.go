package systems

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// countingSource wraps a map and counts every extraction attempt.
type countingSource struct {
	files map[string][]byte
	calls int
}

func (s *countingSource) TryExtract(path string) ([]byte, bool) {
	s.calls++
	data, ok := s.files[path]
	return data, ok
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// blpBytes builds an uncompressed 1x1 BLP2 file.
func blpBytes() []byte {
	const headerSize, paletteSize = 148, 1024
	header := make([]byte, headerSize)
	copy(header, "BLP2")
	binary.LittleEndian.PutUint32(header[4:], 1)
	header[8] = 3 // BGRA
	header[9] = 8
	binary.LittleEndian.PutUint32(header[12:], 1)
	binary.LittleEndian.PutUint32(header[16:], 1)
	binary.LittleEndian.PutUint32(header[20:], headerSize+paletteSize)
	binary.LittleEndian.PutUint32(header[84:], 4)

	var buf bytes.Buffer
	buf.Write(header)
	buf.Write(make([]byte, paletteSize))
	buf.Write([]byte{10, 20, 30, 255})
	return buf.Bytes()
}
