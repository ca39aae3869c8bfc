package renderer_test

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
	"github.com/spaghettifunk/archview/engine/renderer/renderertest"
)

func TestTextureLifecycle(t *testing.T) {
	b := renderertest.New()

	tex, err := renderer.NewTexture(b, "textures/rock.blp")
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	if b.LiveCount(metadata.ResourceTypeTexture) != 1 {
		t.Fatalf("expected 1 live texture, got %d", b.LiveCount(metadata.ResourceTypeTexture))
	}

	img := &metadata.Image{Width: 2, Height: 1, Pixels: []uint8{255, 0, 0, 255, 0, 255, 0, 128}}
	if err := tex.Upload(img, metadata.DefaultSampling(metadata.TextureWrapRepeat, metadata.TextureWrapClampToEdge)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if tex.Width != 2 || tex.Height != 1 {
		t.Errorf("expected 2x1, got %dx%d", tex.Width, tex.Height)
	}
	if !tex.HasTransparency {
		t.Error("expected transparency to be detected")
	}

	// binding twice is fine
	if err := tex.Bind(0); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := tex.Bind(0); err != nil {
		t.Fatalf("second Bind: %v", err)
	}

	handle, _ := tex.Handle()
	if err := tex.Dispose(); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if b.Deleted[handle] != 1 {
		t.Errorf("expected exactly one delete, got %d", b.Deleted[handle])
	}

	if err := tex.Dispose(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("expected ErrObjectDisposed on second dispose, got %v", err)
	}
	if err := tex.Bind(0); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("expected ErrObjectDisposed on bind, got %v", err)
	}
	if _, err := tex.Handle(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("expected ErrObjectDisposed on handle, got %v", err)
	}
	if len(b.DoubleFrees()) != 0 {
		t.Errorf("unexpected double frees: %v", b.DoubleFrees())
	}
}

func TestTextureUploadRejectsShortPixels(t *testing.T) {
	b := renderertest.New()
	tex, err := renderer.NewTexture(b, "broken")
	if err != nil {
		t.Fatal(err)
	}
	img := &metadata.Image{Width: 4, Height: 4, Pixels: make([]uint8, 10)}
	if err := tex.Upload(img, metadata.DefaultSampling(metadata.TextureWrapRepeat, metadata.TextureWrapRepeat)); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestDriverFailure(t *testing.T) {
	b := renderertest.New()
	b.FailCreate[metadata.ResourceTypeBuffer] = true

	if _, err := renderer.NewBuffer(b, metadata.BufferTargetArray, metadata.BufferUsageStaticDraw); !errors.Is(err, core.ErrDriverFailure) {
		t.Errorf("expected ErrDriverFailure, got %v", err)
	}
	if _, err := renderer.NewTexture(nil, "x"); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for nil backend, got %v", err)
	}
}

func TestBufferUpload(t *testing.T) {
	b := renderertest.New()
	buf, err := renderer.NewBuffer(b, metadata.BufferTargetArray, metadata.BufferUsageDynamicDraw)
	if err != nil {
		t.Fatal(err)
	}
	if err := buf.UploadFloat32([]float32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	h, _ := buf.Handle()
	if got := b.FloatUploads[h]; len(got) != 3 || got[2] != 3 {
		t.Errorf("unexpected upload %v", got)
	}
	if buf.Len() != 3 {
		t.Errorf("expected Len 3, got %d", buf.Len())
	}
	if err := buf.Dispose(); err != nil {
		t.Fatal(err)
	}
	if err := buf.UploadFloat32([]float32{1}); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("expected ErrObjectDisposed, got %v", err)
	}
}

func TestUnbindAfterDispose(t *testing.T) {
	b := renderertest.New()
	tex, _ := renderer.NewTexture(b, "t")
	buf, _ := renderer.NewBuffer(b, metadata.BufferTargetArray, metadata.BufferUsageStaticDraw)
	vao, _ := renderer.NewVertexArray(b)

	if err := tex.Unbind(0); err != nil {
		t.Fatalf("texture Unbind: %v", err)
	}
	if err := buf.Unbind(); err != nil {
		t.Fatalf("buffer Unbind: %v", err)
	}
	if err := vao.Unbind(); err != nil {
		t.Fatalf("vertex array Unbind: %v", err)
	}

	tex.Dispose()
	buf.Dispose()
	vao.Dispose()
	if err := tex.Unbind(0); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("texture: expected ErrObjectDisposed, got %v", err)
	}
	if err := buf.Unbind(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("buffer: expected ErrObjectDisposed, got %v", err)
	}
	if err := vao.Unbind(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("vertex array: expected ErrObjectDisposed, got %v", err)
	}
}
