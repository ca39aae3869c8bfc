package assets

import (
	"strings"
)

// Source hands out the raw bytes of archive files. A miss is not an error,
// callers decide what to show instead.
type Source interface {
	TryExtract(path string) ([]byte, bool)
}

// NormalizePath turns an archive path into the key used by every cache:
// forward slashes, lower case, no leading "/" or "./" and no repeated
// separators.
func NormalizePath(p string) string {
	p = strings.ToLower(strings.ReplaceAll(p, "\\", "/"))
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	for {
		switch {
		case strings.HasPrefix(p, "/"):
			p = p[1:]
		case strings.HasPrefix(p, "./"):
			p = p[2:]
		default:
			return p
		}
	}
}

// ChainSource asks each source in turn and returns the first hit, so patches
// listed first shadow the base content.
type ChainSource struct {
	sources []Source
}

func NewChainSource(sources ...Source) *ChainSource {
	return &ChainSource{sources: sources}
}

func (cs *ChainSource) TryExtract(path string) ([]byte, bool) {
	for _, s := range cs.sources {
		if data, ok := s.TryExtract(path); ok {
			return data, true
		}
	}
	return nil, false
}

// MapSource serves files from memory.
type MapSource struct {
	files map[string][]byte
}

func NewMapSource(files map[string][]byte) *MapSource {
	ms := &MapSource{files: make(map[string][]byte, len(files))}
	for p, data := range files {
		ms.Put(p, data)
	}
	return ms
}

func (ms *MapSource) Put(path string, data []byte) {
	ms.files[NormalizePath(path)] = data
}

func (ms *MapSource) TryExtract(path string) ([]byte, bool) {
	data, ok := ms.files[NormalizePath(path)]
	return data, ok
}
