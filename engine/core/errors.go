package core

import (
	"errors"
	"fmt"
)

var (
	ErrObjectDisposed       = errors.New("disposed object used")
	ErrInvalidShaderKind    = errors.New("invalid shader kind")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrTextureNotCached     = errors.New("texture not cached")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrDriverFailure        = errors.New("graphics driver failed to allocate object")
)

// ShaderCompilationError is returned when a single stage of a shader
// program does not compile. The whole shader kind is unusable afterwards.
type ShaderCompilationError struct {
	Shader string
	Stage  string
	Log    string
}

func (e *ShaderCompilationError) Error() string {
	return fmt.Sprintf("shader '%s': %s stage failed to compile: %s", e.Shader, e.Stage, e.Log)
}

// ShaderLinkingError is returned when the compiled stages of a shader
// program cannot be linked together.
type ShaderLinkingError struct {
	Shader string
	Log    string
}

func (e *ShaderLinkingError) Error() string {
	return fmt.Sprintf("shader '%s' failed to link: %s", e.Shader, e.Log)
}
