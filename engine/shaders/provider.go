// Package shaders provides GLSL sources for every shader kind. Sources are
// plain files named after the kind with one extension per stage, and may pull
// shared snippets in with #include "file" directives.
package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

//go:embed glsl
var embedded embed.FS

// Sources holds the preprocessed source of each stage found for a kind.
type Sources struct {
	Kind   metadata.ShaderKind
	Stages map[metadata.ShaderStage]string
}

// Has reports whether the kind ships a source for the given stage.
func (s *Sources) Has(stage metadata.ShaderStage) bool {
	_, ok := s.Stages[stage]
	return ok
}

// Provider resolves the sources of a shader kind.
type Provider interface {
	// Sources returns the preprocessed sources of kind. The vertex and
	// fragment stages are mandatory; the geometry stage is optional.
	Sources(kind metadata.ShaderKind) (*Sources, error)
}

type provider struct {
	fsys         fs.FS
	preProcessor *preProcessor
}

var _ Provider = &provider{}

// NewProvider reads sources from the root of fsys.
func NewProvider(fsys fs.FS) Provider {
	return &provider{
		fsys:         fsys,
		preProcessor: newPreProcessor(fsys),
	}
}

// Embedded returns a provider over the GLSL sources compiled into the binary.
func Embedded() Provider {
	sub, err := fs.Sub(embedded, "glsl")
	if err != nil {
		// the directory is part of the binary, this cannot fail
		panic(err)
	}
	return NewProvider(sub)
}

func (p *provider) Sources(kind metadata.ShaderKind) (*Sources, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("no sources for %s: %w", kind, core.ErrInvalidShaderKind)
	}

	sources := &Sources{
		Kind:   kind,
		Stages: make(map[metadata.ShaderStage]string),
	}
	stages := []metadata.ShaderStage{metadata.ShaderStageVertex, metadata.ShaderStageGeometry, metadata.ShaderStageFragment}
	for _, stage := range stages {
		name := kind.String() + stage.Extension()
		src, err := p.preProcessor.Process(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && stage == metadata.ShaderStageGeometry {
				continue
			}
			err = fmt.Errorf("shader '%s': %s stage: %w", kind, stage, err)
			core.LogError(err.Error())
			return nil, err
		}
		sources.Stages[stage] = src
	}
	return sources, nil
}
