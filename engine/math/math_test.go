package math

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTransformLocal(t *testing.T) {
	tr := TransformFromPositionRotationScale(mgl32.Vec3{1, 2, 3}, mgl32.QuatIdent(), mgl32.Vec3{2, 2, 2})
	got := tr.GetLocal()
	want := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))
	if !got.ApproxEqual(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if tr.IsDirty {
		t.Error("GetLocal must clear the dirty flag")
	}

	tr.Translate(mgl32.Vec3{1, 0, 0})
	p := mgl32.TransformCoordinate(mgl32.Vec3{}, tr.GetLocal())
	if !p.ApproxEqual(mgl32.Vec3{2, 2, 3}) {
		t.Errorf("expected origin at (2,2,3), got %v", p)
	}
}

func TestTransformParent(t *testing.T) {
	parent := TransformFromPosition(mgl32.Vec3{10, 0, 0})
	child := TransformFromPosition(mgl32.Vec3{0, 5, 0})
	child.Parent = parent

	p := mgl32.TransformCoordinate(mgl32.Vec3{}, child.GetWorld())
	if !p.ApproxEqual(mgl32.Vec3{10, 5, 0}) {
		t.Errorf("expected (10,5,0), got %v", p)
	}
}

func TestBoundingBox(t *testing.T) {
	box := EmptyBoundingBox()
	if !box.IsEmpty() {
		t.Fatal("expected empty box")
	}
	if s := box.Size(); s != (mgl32.Vec3{}) {
		t.Errorf("empty box must have zero size, got %v", s)
	}

	box = box.Extend(mgl32.Vec3{-1, 0, 0}).Extend(mgl32.Vec3{1, 2, 3})
	if box.Min != (mgl32.Vec3{-1, 0, 0}) || box.Max != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("unexpected box %v", box)
	}
	if c := box.Center(); !c.ApproxEqual(mgl32.Vec3{0, 1, 1.5}) {
		t.Errorf("unexpected center %v", c)
	}

	moved := box.Transform(mgl32.Translate3D(10, 0, 0))
	if !moved.Min.ApproxEqual(mgl32.Vec3{9, 0, 0}) || !moved.Max.ApproxEqual(mgl32.Vec3{11, 2, 3}) {
		t.Errorf("unexpected transformed box %v", moved)
	}

	u := box.Union(moved)
	if !u.Min.ApproxEqual(mgl32.Vec3{-1, 0, 0}) || !u.Max.ApproxEqual(mgl32.Vec3{11, 2, 3}) {
		t.Errorf("unexpected union %v", u)
	}
	if got := EmptyBoundingBox().Union(box); got != box {
		t.Errorf("union with empty must return the other box, got %v", got)
	}
}

func TestGeometryNormals(t *testing.T) {
	vertices := []Vertex3D{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
	}
	GeometryGenerateNormals(vertices, []uint32{0, 1, 2})
	for i, v := range vertices {
		if !v.Normal.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
			t.Errorf("vertex %d: expected +Z normal, got %v", i, v.Normal)
		}
	}

	flat := FlattenVertices(vertices)
	if len(flat) != 3*Vertex3DFloats {
		t.Fatalf("expected %d floats, got %d", 3*Vertex3DFloats, len(flat))
	}
	if flat[Vertex3DFloats] != 1 {
		t.Errorf("expected second vertex x=1, got %v", flat[Vertex3DFloats])
	}
}

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Error("Clamp out of range")
	}
}
