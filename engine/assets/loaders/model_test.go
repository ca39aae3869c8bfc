package loaders

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const quadOBJ = `# a unit quad
mtllib quad.mtl
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
usemtl stone
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestDecodeModel(t *testing.T) {
	m, err := DecodeModel("quad.obj", []byte(quadOBJ))
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}
	if len(m.Vertices) != 4 {
		t.Errorf("expected 4 merged vertices, got %d", len(m.Vertices))
	}
	if len(m.Indices) != 6 {
		t.Errorf("expected the quad to fan into 6 indices, got %d", len(m.Indices))
	}
	if len(m.Groups) != 1 || m.Groups[0].Material != "stone" || m.Groups[0].IndexCount != 6 {
		t.Errorf("unexpected groups %+v", m.Groups)
	}
	if len(m.MaterialLibraries) != 1 || m.MaterialLibraries[0] != "quad.mtl" {
		t.Errorf("unexpected material libraries %v", m.MaterialLibraries)
	}
	if m.Bounds.Max != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("unexpected bounds %+v", m.Bounds)
	}
	// texture v is flipped to a top-left origin
	if m.Vertices[0].Texcoord != (mgl32.Vec2{0, 1}) {
		t.Errorf("unexpected texcoord %v", m.Vertices[0].Texcoord)
	}
}

func TestDecodeModelGeneratesNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	m, err := DecodeModel("tri.obj", []byte(src))
	if err != nil {
		t.Fatalf("DecodeModel: %v", err)
	}
	for i, v := range m.Vertices {
		if !v.Normal.ApproxEqual(mgl32.Vec3{0, 0, 1}) {
			t.Errorf("vertex %d: expected +Z normal, got %v", i, v.Normal)
		}
	}
	if len(m.Groups) != 1 || m.Groups[0].Material != "" {
		t.Errorf("expected one unnamed group, got %+v", m.Groups)
	}
}

func TestDecodeModelErrors(t *testing.T) {
	tests := map[string]string{
		"empty":        "# nothing\n",
		"out of range": "v 0 0 0\nf 1 2 3\n",
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad number":   "v 0 zero 0\n",
		"bad ref":      "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/x 2 3\n",
	}
	for name, src := range tests {
		if _, err := DecodeModel(name, []byte(src)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestDecodeMaterials(t *testing.T) {
	src := `newmtl stone
Kd 0.5 0.5 0.5
d 0.75
Ns 10
map_Kd -clamp on textures/stone.blp

newmtl glass
Tr 0.9
`
	mats, err := DecodeMaterials("quad.mtl", []byte(src))
	if err != nil {
		t.Fatalf("DecodeMaterials: %v", err)
	}
	stone := mats["stone"]
	if stone == nil {
		t.Fatal("missing stone material")
	}
	if stone.DiffuseColour != (mgl32.Vec4{0.5, 0.5, 0.5, 0.75}) {
		t.Errorf("unexpected diffuse %v", stone.DiffuseColour)
	}
	if stone.DiffuseMapName != "textures/stone.blp" || stone.Shininess != 10 {
		t.Errorf("unexpected stone material %+v", stone)
	}
	glass := mats["glass"]
	if glass == nil || glass.DiffuseColour[3] < 0.09 || glass.DiffuseColour[3] > 0.11 {
		t.Errorf("unexpected glass material %+v", glass)
	}

	if _, err := DecodeMaterials("bad.mtl", []byte("newmtl x\nKd 2 0 0\n")); err == nil {
		t.Error("expected out of range colour to fail validation")
	}
}
