package loaders

import (
	"bytes"
	"path"
	"strings"
)

/** @brief The kind of content an archive file holds. */
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeBLP
	FileTypePNG
	FileTypeJPEG
	FileTypeGIF
	FileTypeBMP
	FileTypeTIFF
	FileTypeWEBP
	FileTypeModel
	FileTypeMaterial
)

var fileTypeNames = map[FileType]string{
	FileTypeUnknown:  "unknown",
	FileTypeBLP:      "blp",
	FileTypePNG:      "png",
	FileTypeJPEG:     "jpeg",
	FileTypeGIF:      "gif",
	FileTypeBMP:      "bmp",
	FileTypeTIFF:     "tiff",
	FileTypeWEBP:     "webp",
	FileTypeModel:    "model",
	FileTypeMaterial: "material",
}

func (t FileType) String() string {
	if name, ok := fileTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsImage reports whether DecodeImage can handle the type.
func (t FileType) IsImage() bool {
	switch t {
	case FileTypeBLP, FileTypePNG, FileTypeJPEG, FileTypeGIF, FileTypeBMP, FileTypeTIFF, FileTypeWEBP:
		return true
	}
	return false
}

var extensions = map[string]FileType{
	".blp":  FileTypeBLP,
	".png":  FileTypePNG,
	".jpg":  FileTypeJPEG,
	".jpeg": FileTypeJPEG,
	".gif":  FileTypeGIF,
	".bmp":  FileTypeBMP,
	".tif":  FileTypeTIFF,
	".tiff": FileTypeTIFF,
	".webp": FileTypeWEBP,
	".obj":  FileTypeModel,
	".mtl":  FileTypeMaterial,
}

// ClassifyPath determines the file type from the extension alone.
func ClassifyPath(p string) FileType {
	ext := strings.ToLower(path.Ext(strings.ReplaceAll(p, "\\", "/")))
	return extensions[ext]
}

// Classify uses the extension of p and falls back to the leading bytes of
// data when the extension is not recognised.
func Classify(p string, data []byte) FileType {
	if t := ClassifyPath(p); t != FileTypeUnknown {
		return t
	}
	return Sniff(data)
}

// Sniff recognises image files by their signature.
func Sniff(data []byte) FileType {
	switch {
	case bytes.HasPrefix(data, []byte(blpMagic)):
		return FileTypeBLP
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return FileTypePNG
	case bytes.HasPrefix(data, []byte{0xff, 0xd8, 0xff}):
		return FileTypeJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return FileTypeGIF
	case bytes.HasPrefix(data, []byte("BM")):
		return FileTypeBMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return FileTypeTIFF
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return FileTypeWEBP
	}
	return FileTypeUnknown
}
