package loaders

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/math"
)

/**
 * @brief A run of indices drawn with a single material.
 */
type ModelGroup struct {
	/** @brief Material name as referenced by usemtl, empty for none. */
	Material   string
	IndexStart uint32
	IndexCount uint32
}

/**
 * @brief Geometry decoded from a Wavefront OBJ file.
 */
type ModelData struct {
	Name     string
	Vertices []math.Vertex3D
	Indices  []uint32
	Groups   []ModelGroup
	/** @brief Material libraries referenced by mtllib, relative to the model. */
	MaterialLibraries []string
	Bounds            math.BoundingBox
}

type objIndex struct {
	position, texcoord, normal int
}

type objParser struct {
	positions []mgl32.Vec3
	texcoords []mgl32.Vec2
	normals   []mgl32.Vec3

	model      *ModelData
	lookup     map[objIndex]uint32
	hasNormals bool
}

// DecodeModel parses an OBJ file. Polygons are fanned into triangles and
// vertices sharing the same position/texcoord/normal triple are merged.
func DecodeModel(name string, data []byte) (*ModelData, error) {
	p := &objParser{
		model:      &ModelData{Name: name},
		lookup:     make(map[objIndex]uint32),
		hasNormals: true,
	}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		var err error
		switch fields[0] {
		case "v":
			var v mgl32.Vec3
			v, err = parseVec3(fields[1:])
			p.positions = append(p.positions, v)
		case "vn":
			var n mgl32.Vec3
			n, err = parseVec3(fields[1:])
			p.normals = append(p.normals, n)
		case "vt":
			var t mgl32.Vec2
			t, err = parseVec2(fields[1:])
			// OBJ puts the texture origin at the bottom left
			t[1] = 1 - t[1]
			p.texcoords = append(p.texcoords, t)
		case "f":
			err = p.face(fields[1:])
		case "usemtl":
			p.useMaterial(strings.Join(fields[1:], " "))
		case "mtllib":
			p.model.MaterialLibraries = append(p.model.MaterialLibraries, fields[1:]...)
		case "o", "g", "s":
			// groups and smoothing are flattened
		default:
			core.LogDebug("model '%s': unknown statement '%s' on line %d", name, fields[0], lineNumber)
		}
		if err != nil {
			return nil, fmt.Errorf("model '%s' line %d: %w", name, lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	m := p.model
	if len(m.Indices) == 0 {
		return nil, fmt.Errorf("model '%s' has no faces: %w", name, core.ErrInvalidArgument)
	}
	// drop a trailing group that never got faces
	if n := len(m.Groups); n > 0 && m.Groups[n-1].IndexCount == 0 {
		m.Groups = m.Groups[:n-1]
	}
	if !p.hasNormals {
		math.GeometryGenerateNormals(m.Vertices, m.Indices)
	}
	m.Bounds = math.GeometryBounds(m.Vertices)
	return m, nil
}

func (p *objParser) useMaterial(material string) {
	groups := p.model.Groups
	start := uint32(len(p.model.Indices))
	if n := len(groups); n > 0 && groups[n-1].IndexCount == 0 {
		groups[n-1].Material = material
		return
	}
	p.model.Groups = append(groups, ModelGroup{Material: material, IndexStart: start})
}

func (p *objParser) face(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face needs at least 3 vertices, got %d", len(refs))
	}
	if len(p.model.Groups) == 0 {
		p.model.Groups = append(p.model.Groups, ModelGroup{})
	}

	indices := make([]uint32, len(refs))
	for i, ref := range refs {
		idx, err := p.parseRef(ref)
		if err != nil {
			return err
		}
		indices[i] = p.vertex(idx)
	}
	for i := 1; i+1 < len(indices); i++ {
		p.model.Indices = append(p.model.Indices, indices[0], indices[i], indices[i+1])
	}
	p.model.Groups[len(p.model.Groups)-1].IndexCount += uint32(3 * (len(indices) - 2))
	return nil
}

func (p *objParser) vertex(idx objIndex) uint32 {
	if i, ok := p.lookup[idx]; ok {
		return i
	}
	v := math.Vertex3D{Position: p.positions[idx.position]}
	if idx.texcoord >= 0 {
		v.Texcoord = p.texcoords[idx.texcoord]
	}
	if idx.normal >= 0 {
		v.Normal = p.normals[idx.normal]
	} else {
		p.hasNormals = false
	}
	i := uint32(len(p.model.Vertices))
	p.model.Vertices = append(p.model.Vertices, v)
	p.lookup[idx] = i
	return i
}

// parseRef reads v, v/vt, v//vn or v/vt/vn. Negative references count back
// from the last element read so far.
func (p *objParser) parseRef(ref string) (objIndex, error) {
	parts := strings.Split(ref, "/")
	if len(parts) > 3 {
		return objIndex{}, fmt.Errorf("malformed face reference '%s'", ref)
	}

	idx := objIndex{position: -1, texcoord: -1, normal: -1}
	counts := [3]int{len(p.positions), len(p.texcoords), len(p.normals)}
	targets := [3]*int{&idx.position, &idx.texcoord, &idx.normal}
	for i, part := range parts {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return objIndex{}, fmt.Errorf("malformed face reference '%s': %w", ref, err)
		}
		if n < 0 {
			n = counts[i] + n
		} else {
			n--
		}
		if n < 0 || n >= counts[i] {
			return objIndex{}, fmt.Errorf("face reference '%s' out of range", ref)
		}
		*targets[i] = n
	}
	if idx.position < 0 {
		return objIndex{}, fmt.Errorf("face reference '%s' has no position", ref)
	}
	return idx, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid value '%s'", fields[i])
		}
		out[i] = float32(f)
	}
	return out, nil
}

func parseVec3(fields []string) (mgl32.Vec3, error) {
	f, err := parseFloats(fields, 3)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{f[0], f[1], f[2]}, nil
}

func parseVec2(fields []string) (mgl32.Vec2, error) {
	f, err := parseFloats(fields, 2)
	if err != nil {
		return mgl32.Vec2{}, err
	}
	return mgl32.Vec2{f[0], f[1]}, nil
}
