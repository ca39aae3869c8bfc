package actors

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/assets"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/math"
	"github.com/spaghettifunk/archview/engine/renderer/components"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
	"github.com/spaghettifunk/archview/engine/renderer/renderertest"
	"github.com/spaghettifunk/archview/engine/shaders"
	"github.com/spaghettifunk/archview/engine/systems"
)

const crateOBJ = `# crate
mtllib crate.mtl
v -1 -1 0
v 1 -1 0
v 1 1 0
v -1 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl wood
f 1/1 2/2 3/3 4/4
usemtl unknown
f 1/1 3/3 4/4
`

const crateMTL = `newmtl wood
Kd 1 1 1
map_Kd textures\Wood.png
`

type fakeTarget struct {
	bounds   math.BoundingBox
	bindErr  error
	binds    int
	rendered []int
}

func (f *fakeTarget) BindGeometry() error {
	f.binds++
	return f.bindErr
}

func (f *fakeTarget) RenderInstanced(view, projection mgl32.Mat4, camera *components.Camera, instanceCount int) error {
	f.rendered = append(f.rendered, instanceCount)
	return nil
}

func (f *fakeTarget) Bounds() math.BoundingBox {
	return f.bounds
}

func (f *fakeTarget) IsStatic() bool {
	return true
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: uint8(x * 30), B: uint8(y * 30), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newCache(t *testing.T, b *renderertest.Backend) *systems.RenderCache {
	t.Helper()
	rc, err := systems.NewRenderCache(systems.RenderCacheConfig{}, b, shaders.Embedded())
	if err != nil {
		t.Fatalf("NewRenderCache: %v", err)
	}
	return rc
}

func transformsAt(xs ...float32) []*math.Transform {
	out := make([]*math.Transform, 0, len(xs))
	for _, x := range xs {
		out = append(out, math.TransformFromPosition(mgl32.Vec3{x, 0, 0}))
	}
	return out
}

func TestInstanceSetArguments(t *testing.T) {
	if _, err := NewInstanceSet(nil, &fakeTarget{}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("nil backend: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := NewInstanceSet(renderertest.New(), nil); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("nil target: expected ErrInvalidArgument, got %v", err)
	}
}

func TestInstanceSetRenderBeforeInitialize(t *testing.T) {
	b := renderertest.New()
	target := &fakeTarget{}
	is, err := NewInstanceSet(b, target)
	if err != nil {
		t.Fatal(err)
	}
	if err := is.SetInstances(transformsAt(0, 1)); err != nil {
		t.Fatal(err)
	}
	if err := is.Render(mgl32.Ident4(), mgl32.Ident4(), nil); err != nil {
		t.Fatal(err)
	}
	if len(target.rendered) != 0 || target.binds != 0 || len(b.Calls) != 0 {
		t.Fatalf("expected no work before Initialize, got %d renders and %d calls", len(target.rendered), len(b.Calls))
	}
	if is.IsInitialized() {
		t.Fatal("set reports initialized")
	}
}

func TestInstanceSetInitialize(t *testing.T) {
	b := renderertest.New()
	target := &fakeTarget{}
	is, _ := NewInstanceSet(b, target)
	if err := is.SetInstances(transformsAt(0, 5, 10)); err != nil {
		t.Fatal(err)
	}
	if err := is.Initialize(); err != nil {
		t.Fatal(err)
	}

	handle, err := is.buffer.Handle()
	if err != nil {
		t.Fatal(err)
	}
	uploaded := b.FloatUploads[handle]
	if len(uploaded) != 3*16 {
		t.Fatalf("expected 48 floats, got %d", len(uploaded))
	}
	// column-major: the translation of the second instance sits at 12..14
	if uploaded[16+12] != 5 {
		t.Errorf("second instance translation x = %v, want 5", uploaded[16+12])
	}

	for i := uint32(0); i < 4; i++ {
		location := metadata.AttributeLocationInstance + i
		if b.Divisors[location] != 1 {
			t.Errorf("divisor of location %d = %d, want 1", location, b.Divisors[location])
		}
		want := renderertest.AttribPointer{Size: 4, Stride: 64, Offset: int(i) * 16}
		if got := b.AttribPointers[location]; got != want {
			t.Errorf("attrib pointer %d = %+v, want %+v", location, got, want)
		}
		if b.EnabledAttribs[location] {
			t.Errorf("location %d left enabled after Initialize", location)
		}
	}

	if err := is.Render(mgl32.Ident4(), mgl32.Ident4(), nil); err != nil {
		t.Fatal(err)
	}
	if len(target.rendered) != 1 || target.rendered[0] != 3 {
		t.Fatalf("expected one render of 3 instances, got %v", target.rendered)
	}
}

func TestInstanceSetEmpty(t *testing.T) {
	target := &fakeTarget{}
	is, _ := NewInstanceSet(renderertest.New(), target)
	if err := is.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := is.Render(mgl32.Ident4(), mgl32.Ident4(), nil); err != nil {
		t.Fatal(err)
	}
	if len(target.rendered) != 0 {
		t.Fatalf("empty set rendered %v", target.rendered)
	}
}

func TestInstanceSetSetInstancesAfterInitialize(t *testing.T) {
	b := renderertest.New()
	target := &fakeTarget{}
	is, _ := NewInstanceSet(b, target)
	is.SetInstances(transformsAt(0, 1, 2))
	if err := is.Initialize(); err != nil {
		t.Fatal(err)
	}
	old, _ := is.buffer.Handle()

	if err := is.SetInstances(transformsAt(7)); err != nil {
		t.Fatal(err)
	}
	current, _ := is.buffer.Handle()
	if b.Deleted[old] != 1 {
		t.Errorf("old instance buffer deleted %d times, want 1", b.Deleted[old])
	}
	if len(b.FloatUploads[current]) != 16 {
		t.Errorf("expected 16 floats after resize, got %d", len(b.FloatUploads[current]))
	}

	is.Render(mgl32.Ident4(), mgl32.Ident4(), nil)
	if got := target.rendered[len(target.rendered)-1]; got != 1 {
		t.Errorf("rendered %d instances, want 1", got)
	}
}

func TestInstanceSetBounds(t *testing.T) {
	target := &fakeTarget{bounds: math.NewBoundingBox(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{1, 1, 1})}
	is, _ := NewInstanceSet(renderertest.New(), target)
	if !is.Bounds().IsEmpty() {
		t.Fatal("set without instances should have empty bounds")
	}
	is.SetInstances(transformsAt(0, 10))
	box := is.Bounds()
	if !box.Min.ApproxEqual(mgl32.Vec3{-1, -1, -1}) || !box.Max.ApproxEqual(mgl32.Vec3{11, 1, 1}) {
		t.Fatalf("unexpected bounds %v", box)
	}
}

func TestInstanceSetDisposeAndRelease(t *testing.T) {
	b := renderertest.New()
	is, _ := NewInstanceSet(b, &fakeTarget{})
	is.SetInstances(transformsAt(1))
	if err := is.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := is.Dispose(); !errors.Is(err, core.ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
	if !is.IsInitialized() {
		t.Fatal("failed Dispose must leave the set untouched")
	}

	if err := is.Release(); err != nil {
		t.Fatal(err)
	}
	if n := b.LiveCount(metadata.ResourceTypeBuffer); n != 0 {
		t.Fatalf("expected no live buffers after Release, got %d", n)
	}
	if err := is.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if err := is.Dispose(); !errors.Is(err, core.ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation after Release, got %v", err)
	}
}

func crateSource(t *testing.T) *assets.MapSource {
	t.Helper()
	return assets.NewMapSource(map[string][]byte{
		"Models/Crate.obj":         []byte(crateOBJ),
		"models/crate.mtl":         []byte(crateMTL),
		"models/textures/wood.png": pngBytes(t, 4, 4),
	})
}

func TestModelLoadAndRender(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	m, err := NewModel(b, rc, crateSource(t), "models\\crate.obj", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Render(mgl32.Ident4(), mgl32.Ident4(), nil); err != nil || len(b.Draws) != 0 {
		t.Fatalf("render before Load should be a no-op: %v, %d draws", err, len(b.Draws))
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if ok, _ := rc.HasTexture("models/textures/wood.png"); !ok {
		t.Fatal("diffuse map was not cached")
	}
	fallback, _ := rc.FallbackTexture()
	if m.groups[1].texture != fallback {
		t.Error("group without a material should use the fallback texture")
	}

	box := m.Bounds()
	if !box.Min.ApproxEqual(mgl32.Vec3{-1, -1, 0}) || !box.Max.ApproxEqual(mgl32.Vec3{1, 1, 0}) {
		t.Errorf("unexpected bounds %v", box)
	}

	if err := m.Render(mgl32.Ident4(), mgl32.Ident4(), components.NewCamera()); err != nil {
		t.Fatal(err)
	}
	if len(b.Draws) != 2 {
		t.Fatalf("expected one draw per material group, got %d", len(b.Draws))
	}
	vao, _ := m.vao.Handle()
	want := []renderertest.DrawCall{
		{Mode: metadata.PrimitiveTriangles, First: 0, Count: 6, Instances: 1, Indexed: true},
		{Mode: metadata.PrimitiveTriangles, First: 6, Count: 3, Instances: 1, Indexed: true},
	}
	for i, d := range b.Draws {
		if d.VAO != vao {
			t.Errorf("draw %d used vao %d, want %d", i, d.VAO, vao)
		}
		d.Program, d.VAO = 0, 0
		if d != want[i] {
			t.Errorf("draw %d = %+v, want %+v", i, d, want[i])
		}
	}
	if got := b.Uniforms["u_alpha_cutoff"]; got != alphaCutoff {
		t.Errorf("u_alpha_cutoff = %v", got)
	}
	if got := b.Uniforms["u_texture"]; got != int32(0) {
		t.Errorf("u_texture = %v", got)
	}
	if _, ok := b.Uniforms["u_light_dir"]; !ok {
		t.Error("light direction not uploaded")
	}
}

func TestModelInstanced(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	m, _ := NewModel(b, rc, crateSource(t), "models/crate.obj", metadata.TextureWrapRepeat)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	is, _ := NewInstanceSet(b, m)
	is.SetInstances(transformsAt(-3, 0, 3))
	if err := is.Initialize(); err != nil {
		t.Fatal(err)
	}
	if err := is.Render(mgl32.Ident4(), mgl32.Ident4(), nil); err != nil {
		t.Fatal(err)
	}
	for _, d := range b.Draws {
		if d.Instances != 3 {
			t.Fatalf("draw with %d instances, want 3", d.Instances)
		}
	}
	if box := is.Bounds(); box.Max.X() != 4 || box.Min.X() != -4 {
		t.Errorf("unexpected ring bounds %v", box)
	}
	if err := is.Release(); err != nil {
		t.Fatal(err)
	}
}

func TestModelDispose(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	m, _ := NewModel(b, rc, crateSource(t), "models/crate.obj", metadata.TextureWrapRepeat)
	if err := m.Load(); err != nil {
		t.Fatal(err)
	}
	if err := m.Dispose(); err != nil {
		t.Fatal(err)
	}
	if n := b.LiveCount(metadata.ResourceTypeVertexArray); n != 0 {
		t.Errorf("%d vertex arrays still alive", n)
	}
	if n := b.LiveCount(metadata.ResourceTypeBuffer); n != 0 {
		t.Errorf("%d buffers still alive", n)
	}
	if n := b.LiveCount(metadata.ResourceTypeTexture); n != 2 {
		t.Errorf("textures belong to the cache, expected 2 alive, got %d", n)
	}
	if err := m.Dispose(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("second Dispose: expected ErrObjectDisposed, got %v", err)
	}
	if err := m.Load(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("Load after Dispose: expected ErrObjectDisposed, got %v", err)
	}

	if err := rc.Dispose(); err != nil {
		t.Fatal(err)
	}
	if frees := b.DoubleFrees(); len(frees) != 0 {
		t.Fatalf("double frees: %v", frees)
	}
}

func TestModelErrors(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	if _, err := NewModel(b, nil, nil, "a.obj", ""); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("nil cache: expected ErrInvalidArgument, got %v", err)
	}
	m, _ := NewModel(b, rc, assets.NewMapSource(nil), "missing.obj", "")
	if err := m.Load(); err == nil {
		t.Error("expected an error for a missing model")
	}
	if n := b.LiveCount(metadata.ResourceTypeVertexArray); n != 0 {
		t.Errorf("failed Load leaked %d vertex arrays", n)
	}
}

func TestImage(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	source := assets.NewMapSource(map[string][]byte{"ui/banner.png": pngBytes(t, 4, 2)})
	img, err := NewImage(b, rc, source, "UI/Banner.png")
	if err != nil {
		t.Fatal(err)
	}
	if err := img.Load(); err != nil {
		t.Fatal(err)
	}
	box := img.Bounds()
	if !box.Min.ApproxEqual(mgl32.Vec3{-2, -1, 0}) || !box.Max.ApproxEqual(mgl32.Vec3{2, 1, 0}) {
		t.Fatalf("quad should follow the 2:1 aspect, got %v", box)
	}

	view := mgl32.Translate3D(0, 0, -5)
	projection := mgl32.Perspective(mgl32.DegToRad(45), 1, 0.1, 100)
	if err := img.Render(view, projection, nil); err != nil {
		t.Fatal(err)
	}
	if len(b.Draws) != 1 || b.Draws[0].Mode != metadata.PrimitiveTriangles || b.Draws[0].Count != 6 || b.Draws[0].Indexed {
		t.Fatalf("unexpected draws %+v", b.Draws)
	}
	got, ok := b.Uniforms["u_transform"].(mgl32.Mat4)
	if !ok || !got.ApproxEqual(projection.Mul4(view)) {
		t.Errorf("u_transform = %v", b.Uniforms["u_transform"])
	}

	if err := img.Dispose(); err != nil {
		t.Fatal(err)
	}
	if n := b.LiveCount(metadata.ResourceTypeTexture); n != 1 {
		t.Errorf("texture should stay cached, %d alive", n)
	}
	if err := img.Dispose(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("second Dispose: expected ErrObjectDisposed, got %v", err)
	}
}

func TestImageMissingUsesFallback(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	img, _ := NewImage(b, rc, assets.NewMapSource(nil), "nope.blp")
	if err := img.Load(); err != nil {
		t.Fatal(err)
	}
	fallback, _ := rc.FallbackTexture()
	if img.Texture() != fallback {
		t.Fatal("missing image should show the fallback texture")
	}
	if box := img.Bounds(); box.Max.X() != 1 {
		t.Errorf("square fallback should give a square quad, got %v", box)
	}
}

func TestGrid(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	if _, err := NewGrid(b, rc, 0, 4, mgl32.Vec4{}); !errors.Is(err, core.ErrInvalidArgument) {
		t.Errorf("zero extent: expected ErrInvalidArgument, got %v", err)
	}
	color := mgl32.Vec4{0.5, 0.5, 0.5, 1}
	g, err := NewGrid(b, rc, 10, 2, color)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Load(); err != nil {
		t.Fatal(err)
	}
	if err := g.Render(mgl32.Ident4(), mgl32.Ident4(), nil); err != nil {
		t.Fatal(err)
	}
	if len(b.Draws) != 1 || b.Draws[0].Mode != metadata.PrimitiveLines || b.Draws[0].Count != 20 {
		t.Fatalf("unexpected draws %+v", b.Draws)
	}
	if b.Uniforms["u_color"] != color {
		t.Errorf("u_color = %v", b.Uniforms["u_color"])
	}
	if b.Uniforms["u_fade_distance"] != float32(10) {
		t.Errorf("u_fade_distance = %v", b.Uniforms["u_fade_distance"])
	}
	if err := g.Dispose(); err != nil {
		t.Fatal(err)
	}
	if n := b.LiveCount(metadata.ResourceTypeBuffer); n != 0 {
		t.Errorf("%d buffers alive after Dispose", n)
	}
}

func TestBoundingBoxes(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	bb, err := NewBoundingBoxes(b, rc, mgl32.Vec4{1, 1, 0, 1})
	if err != nil {
		t.Fatal(err)
	}
	first := math.NewBoundingBox(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1})
	second := math.NewBoundingBox(mgl32.Vec3{-2, 0, 0}, mgl32.Vec3{-1, 3, 1})
	if err := bb.SetBoxes(first, math.EmptyBoundingBox(), second); err != nil {
		t.Fatal(err)
	}
	if bb.Count() != 2 {
		t.Fatalf("empty boxes should be skipped, got %d", bb.Count())
	}
	if err := bb.Load(); err != nil {
		t.Fatal(err)
	}
	vbo, _ := bb.vbo.Handle()
	if n := len(b.FloatUploads[vbo]); n != 12 {
		t.Fatalf("expected 12 floats, got %d", n)
	}
	if err := bb.Render(mgl32.Ident4(), mgl32.Ident4(), nil); err != nil {
		t.Fatal(err)
	}
	if len(b.Draws) != 1 || b.Draws[0].Mode != metadata.PrimitivePoints || b.Draws[0].Count != 2 {
		t.Fatalf("unexpected draws %+v", b.Draws)
	}
	box := bb.Bounds()
	if !box.Min.ApproxEqual(mgl32.Vec3{-2, 0, 0}) || !box.Max.ApproxEqual(mgl32.Vec3{1, 3, 1}) {
		t.Errorf("unexpected union %v", box)
	}

	if err := bb.SetBoxes(first); err != nil {
		t.Fatal(err)
	}
	if n := len(b.FloatUploads[vbo]); n != 6 {
		t.Errorf("SetBoxes after Load should refresh the buffer, got %d floats", n)
	}
	if err := bb.Dispose(); err != nil {
		t.Fatal(err)
	}
}

func TestInstanceSetBindFailureFreesBuffer(t *testing.T) {
	b := renderertest.New()
	target := &fakeTarget{bindErr: core.ErrObjectDisposed}
	is, _ := NewInstanceSet(b, target)
	is.SetInstances(transformsAt(0, 1))
	if err := is.Initialize(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Fatalf("expected the bind error, got %v", err)
	}
	if is.IsInitialized() {
		t.Fatal("set must stay uninitialized")
	}
	if n := b.LiveCount(metadata.ResourceTypeBuffer); n != 0 {
		t.Fatalf("failed Initialize left %d buffers alive", n)
	}
	if err := is.Release(); err != nil {
		t.Fatal(err)
	}
	if frees := b.DoubleFrees(); len(frees) != 0 {
		t.Fatalf("double frees: %v", frees)
	}
}

func TestModelSingleTriangle(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	source := assets.NewMapSource(map[string][]byte{
		"m.obj": []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"),
	})
	m, err := NewModel(b, rc, source, "m.obj", "")
	if err != nil {
		t.Fatal(err)
	}
	if err := m.BindGeometry(); !errors.Is(err, core.ErrUnsupportedOperation) {
		t.Fatalf("BindGeometry before Load: expected ErrUnsupportedOperation, got %v", err)
	}
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// vao + vertex, element and instance buffers; the fallback texture
	if n := b.LiveCount(metadata.ResourceTypeVertexArray); n != 1 {
		t.Errorf("expected 1 vertex array, got %d", n)
	}
	if n := b.LiveCount(metadata.ResourceTypeBuffer); n != 3 {
		t.Errorf("expected 3 buffers, got %d", n)
	}
	if n := b.LiveCount(metadata.ResourceTypeTexture); n != 1 {
		t.Errorf("expected only the fallback texture, got %d", n)
	}

	if err := m.Render(mgl32.Ident4(), mgl32.Ident4(), nil); err != nil {
		t.Fatal(err)
	}
	if len(b.Draws) != 1 || b.Draws[0].Count != 3 || b.Draws[0].Instances != 1 {
		t.Fatalf("unexpected draws %+v", b.Draws)
	}

	if err := m.Dispose(); err != nil {
		t.Fatal(err)
	}
	if err := m.BindGeometry(); !errors.Is(err, core.ErrObjectDisposed) {
		t.Errorf("BindGeometry after Dispose: expected ErrObjectDisposed, got %v", err)
	}
}

func TestModelLoadFailureReleasesGeometry(t *testing.T) {
	b := renderertest.New()
	rc := newCache(t, b)
	m, _ := NewModel(b, rc, crateSource(t), "models/crate.obj", metadata.TextureWrapRepeat)

	// vertex and element buffers succeed, the instance buffer does not
	b.CreateBudget[metadata.ResourceTypeBuffer] = 2
	if err := m.Load(); !errors.Is(err, core.ErrDriverFailure) {
		t.Fatalf("expected ErrDriverFailure, got %v", err)
	}

	if n := b.LiveCount(metadata.ResourceTypeVertexArray); n != 0 {
		t.Errorf("failed Load leaked %d vertex arrays", n)
	}
	if n := b.LiveCount(metadata.ResourceTypeBuffer); n != 0 {
		t.Errorf("failed Load leaked %d buffers", n)
	}
	// the diffuse map and the fallback stay, they belong to the cache
	if n := b.LiveCount(metadata.ResourceTypeTexture); n != 2 {
		t.Errorf("expected the 2 cached textures alive, got %d", n)
	}
	if err := m.Render(mgl32.Ident4(), mgl32.Ident4(), nil); err != nil || len(b.Draws) != 0 {
		t.Errorf("render after a failed Load should be a no-op: %v, %d draws", err, len(b.Draws))
	}

	if err := rc.Dispose(); err != nil {
		t.Fatal(err)
	}
	if len(b.Live) != 0 {
		t.Errorf("objects still alive after the cache is gone: %v", b.Live)
	}
	if frees := b.DoubleFrees(); len(frees) != 0 {
		t.Fatalf("double frees: %v", frees)
	}
}
