package renderer_test

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
	"github.com/spaghettifunk/archview/engine/renderer/renderertest"
)

const testVertex = `#version 410 core
uniform mat4 model;
uniform vec4 tint;
void main() {}
`

func linkedProgram(t *testing.T, b *renderertest.Backend) *renderer.Program {
	t.Helper()
	p, err := renderer.NewProgram(b, "test")
	if err != nil {
		t.Fatal(err)
	}
	s := b.CreateShader(metadata.ShaderStageVertex)
	b.CompileShader(s, testVertex)
	if err := p.Attach(s); err != nil {
		t.Fatal(err)
	}
	if err := p.Link(); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestProgramUniforms(t *testing.T) {
	b := renderertest.New()
	p := linkedProgram(t, b)

	if err := p.SetMat4("model", mgl32.Ident4()); err != nil {
		t.Fatalf("SetMat4: %v", err)
	}
	if got, ok := b.Uniforms["model"].(mgl32.Mat4); !ok || got != mgl32.Ident4() {
		t.Errorf("model uniform not uploaded: %v", b.Uniforms["model"])
	}
	h, _ := p.Handle()
	if b.CurrentProgram != h {
		t.Error("setting a uniform must enable the program")
	}

	loc, err := p.UniformLocation("missing")
	if err != nil {
		t.Fatal(err)
	}
	if loc != metadata.InvalidUniformLocation {
		t.Errorf("expected -1 for a missing uniform, got %d", loc)
	}
	uploads := len(b.Uniforms)
	if err := p.SetFloat("missing", 1); err != nil {
		t.Errorf("missing uniform must not be an error: %v", err)
	}
	if len(b.Uniforms) != uploads {
		t.Error("writing to location -1 must be a no-op")
	}
}

func TestProgramLinkFailure(t *testing.T) {
	b := renderertest.New()
	b.LinkError = "varying mismatch"
	p, err := renderer.NewProgram(b, "broken")
	if err != nil {
		t.Fatal(err)
	}

	err = p.Link()
	var linkErr *core.ShaderLinkingError
	if !errors.As(err, &linkErr) {
		t.Fatalf("expected ShaderLinkingError, got %v", err)
	}
	if linkErr.Log != "varying mismatch" {
		t.Errorf("unexpected log %q", linkErr.Log)
	}
}

func TestProgramAfterDispose(t *testing.T) {
	b := renderertest.New()
	p := linkedProgram(t, b)
	if err := p.Dispose(); err != nil {
		t.Fatal(err)
	}
	if err := p.Enable(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("expected ErrObjectDisposed, got %v", err)
	}
	if err := p.SetVec4("tint", mgl32.Vec4{}); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("expected ErrObjectDisposed, got %v", err)
	}
}
