// Package renderertest provides a renderer.Backend that records every call
// instead of talking to a driver, so caches and renderables can be tested
// without a graphics context.
package renderertest

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

type DrawCall struct {
	Mode      metadata.PrimitiveMode
	First     int32
	Count     int32
	Instances int32
	Indexed   bool
	Program   uint32
	VAO       uint32
}

type TextureUpload struct {
	Width    uint32
	Height   uint32
	Pixels   []uint8
	Sampling metadata.TextureSampling
}

type AttribPointer struct {
	Size   int32
	Stride int32
	Offset int
}

// Backend is safe to use from a single goroutine only, like a real context.
type Backend struct {
	nextHandle uint32

	// Objects currently alive, by handle.
	Live map[uint32]metadata.ResourceType
	// How many objects of each type were ever created.
	Created map[metadata.ResourceType]int
	// How many times each handle was deleted. More than one is a double free.
	Deleted map[uint32]int

	// Fail the next allocations of these types.
	FailCreate map[metadata.ResourceType]bool
	// Allocations of a type still allowed before it starts failing. Types
	// without an entry are unlimited.
	CreateBudget map[metadata.ResourceType]int
	// Compile log per stage; a stage listed here fails to compile.
	CompileErrors map[metadata.ShaderStage]string
	// When set, every link fails with this log.
	LinkError string

	CompileCalls int
	LinkCalls    int

	ShaderStages  map[uint32]metadata.ShaderStage
	ShaderSources map[uint32]string
	Attached      map[uint32][]uint32
	AttribBinds   map[uint32]map[string]uint32
	// Sources of the stages attached at link time, per program.
	linkedSources map[uint32]string

	CurrentProgram uint32
	CurrentVAO     uint32
	BoundBuffers   map[metadata.BufferTarget]uint32
	BoundTextures  map[uint32]uint32

	TextureUploads map[uint32]TextureUpload
	FloatUploads   map[uint32][]float32
	UintUploads    map[uint32][]uint32

	EnabledAttribs map[uint32]bool
	Divisors       map[uint32]uint32
	AttribPointers map[uint32]AttribPointer

	uniformLocations map[uint32]map[string]int32
	Uniforms         map[string]interface{}

	Draws     []DrawCall
	Calls     []string
	ViewportV [4]int32
	ClearV    [4]float32
}

var _ renderer.Backend = (*Backend)(nil)

func New() *Backend {
	return &Backend{
		Live:             make(map[uint32]metadata.ResourceType),
		Created:          make(map[metadata.ResourceType]int),
		Deleted:          make(map[uint32]int),
		FailCreate:       make(map[metadata.ResourceType]bool),
		CreateBudget:     make(map[metadata.ResourceType]int),
		CompileErrors:    make(map[metadata.ShaderStage]string),
		ShaderStages:     make(map[uint32]metadata.ShaderStage),
		ShaderSources:    make(map[uint32]string),
		Attached:         make(map[uint32][]uint32),
		AttribBinds:      make(map[uint32]map[string]uint32),
		linkedSources:    make(map[uint32]string),
		BoundBuffers:     make(map[metadata.BufferTarget]uint32),
		BoundTextures:    make(map[uint32]uint32),
		TextureUploads:   make(map[uint32]TextureUpload),
		FloatUploads:     make(map[uint32][]float32),
		UintUploads:      make(map[uint32][]uint32),
		EnabledAttribs:   make(map[uint32]bool),
		Divisors:         make(map[uint32]uint32),
		AttribPointers:   make(map[uint32]AttribPointer),
		uniformLocations: make(map[uint32]map[string]int32),
		Uniforms:         make(map[string]interface{}),
	}
}

// LiveCount returns how many objects of the given type are still allocated.
func (b *Backend) LiveCount(t metadata.ResourceType) int {
	n := 0
	for _, lt := range b.Live {
		if lt == t {
			n++
		}
	}
	return n
}

// DoubleFrees lists handles deleted more than once.
func (b *Backend) DoubleFrees() []uint32 {
	var out []uint32
	for h, n := range b.Deleted {
		if n > 1 {
			out = append(out, h)
		}
	}
	return out
}

func (b *Backend) record(format string, args ...interface{}) {
	b.Calls = append(b.Calls, fmt.Sprintf(format, args...))
}

func (b *Backend) create(t metadata.ResourceType) uint32 {
	if b.FailCreate[t] {
		b.record("create %s failed", t)
		return metadata.InvalidHandle
	}
	if left, ok := b.CreateBudget[t]; ok {
		if left <= 0 {
			b.record("create %s failed", t)
			return metadata.InvalidHandle
		}
		b.CreateBudget[t] = left - 1
	}
	b.nextHandle++
	h := b.nextHandle
	b.Live[h] = t
	b.Created[t]++
	b.record("create %s %d", t, h)
	return h
}

func (b *Backend) destroy(t metadata.ResourceType, h uint32) {
	b.Deleted[h]++
	if lt, ok := b.Live[h]; ok && lt == t {
		delete(b.Live, h)
	}
	b.record("delete %s %d", t, h)
}

func (b *Backend) CreateTexture() uint32 {
	return b.create(metadata.ResourceTypeTexture)
}

func (b *Backend) BindTexture(unit uint32, texture uint32) {
	b.BoundTextures[unit] = texture
	b.record("bind texture %d unit %d", texture, unit)
}

func (b *Backend) TextureImage2D(texture uint32, width, height uint32, pixels []uint8, sampling metadata.TextureSampling) {
	b.TextureUploads[texture] = TextureUpload{Width: width, Height: height, Pixels: pixels, Sampling: sampling}
	b.record("upload texture %d %dx%d", texture, width, height)
}

func (b *Backend) DeleteTexture(texture uint32) {
	b.destroy(metadata.ResourceTypeTexture, texture)
}

func (b *Backend) CreateBuffer() uint32 {
	return b.create(metadata.ResourceTypeBuffer)
}

func (b *Backend) BindBuffer(target metadata.BufferTarget, buffer uint32) {
	b.BoundBuffers[target] = buffer
	b.record("bind buffer %d target %d", buffer, target)
}

func (b *Backend) BufferDataFloat32(target metadata.BufferTarget, data []float32, usage metadata.BufferUsage) {
	h := b.BoundBuffers[target]
	b.FloatUploads[h] = append([]float32(nil), data...)
	b.record("buffer data %d floats=%d", h, len(data))
}

func (b *Backend) BufferDataUint32(target metadata.BufferTarget, data []uint32, usage metadata.BufferUsage) {
	h := b.BoundBuffers[target]
	b.UintUploads[h] = append([]uint32(nil), data...)
	b.record("buffer data %d uints=%d", h, len(data))
}

func (b *Backend) DeleteBuffer(buffer uint32) {
	b.destroy(metadata.ResourceTypeBuffer, buffer)
}

func (b *Backend) CreateVertexArray() uint32 {
	return b.create(metadata.ResourceTypeVertexArray)
}

func (b *Backend) BindVertexArray(vao uint32) {
	b.CurrentVAO = vao
	b.record("bind vao %d", vao)
}

func (b *Backend) DeleteVertexArray(vao uint32) {
	b.destroy(metadata.ResourceTypeVertexArray, vao)
}

func (b *Backend) EnableVertexAttribArray(location uint32) {
	b.EnabledAttribs[location] = true
	b.record("enable attrib %d", location)
}

func (b *Backend) DisableVertexAttribArray(location uint32) {
	b.EnabledAttribs[location] = false
	b.record("disable attrib %d", location)
}

func (b *Backend) VertexAttribPointer(location uint32, size int32, stride int32, offset int) {
	b.AttribPointers[location] = AttribPointer{Size: size, Stride: stride, Offset: offset}
	b.record("attrib pointer %d size=%d stride=%d offset=%d", location, size, stride, offset)
}

func (b *Backend) VertexAttribDivisor(location uint32, divisor uint32) {
	b.Divisors[location] = divisor
	b.record("attrib divisor %d=%d", location, divisor)
}

func (b *Backend) CreateShader(stage metadata.ShaderStage) uint32 {
	h := b.create(metadata.ResourceTypeShaderStage)
	if h != metadata.InvalidHandle {
		b.ShaderStages[h] = stage
	}
	return h
}

func (b *Backend) CompileShader(shader uint32, source string) (bool, string) {
	b.CompileCalls++
	b.ShaderSources[shader] = source
	if log, ok := b.CompileErrors[b.ShaderStages[shader]]; ok {
		return false, log
	}
	return true, ""
}

func (b *Backend) DeleteShader(shader uint32) {
	b.destroy(metadata.ResourceTypeShaderStage, shader)
}

func (b *Backend) CreateProgram() uint32 {
	return b.create(metadata.ResourceTypeProgram)
}

func (b *Backend) AttachShader(program, shader uint32) {
	b.Attached[program] = append(b.Attached[program], shader)
	b.record("attach %d to %d", shader, program)
}

func (b *Backend) DetachShader(program, shader uint32) {
	attached := b.Attached[program]
	for i, s := range attached {
		if s == shader {
			b.Attached[program] = append(attached[:i], attached[i+1:]...)
			break
		}
	}
	b.record("detach %d from %d", shader, program)
}

func (b *Backend) BindAttribLocation(program uint32, location uint32, name string) {
	if b.AttribBinds[program] == nil {
		b.AttribBinds[program] = make(map[string]uint32)
	}
	b.AttribBinds[program][name] = location
}

func (b *Backend) LinkProgram(program uint32) (bool, string) {
	b.LinkCalls++
	if b.LinkError != "" {
		return false, b.LinkError
	}
	var sb strings.Builder
	for _, s := range b.Attached[program] {
		sb.WriteString(b.ShaderSources[s])
		sb.WriteString("\n")
	}
	b.linkedSources[program] = sb.String()
	b.uniformLocations[program] = make(map[string]int32)
	return true, ""
}

func (b *Backend) UseProgram(program uint32) {
	b.CurrentProgram = program
	b.record("use program %d", program)
}

func (b *Backend) DeleteProgram(program uint32) {
	b.destroy(metadata.ResourceTypeProgram, program)
}

// GetUniformLocation resolves names declared as uniforms in the linked
// sources and returns -1 for anything else.
func (b *Backend) GetUniformLocation(program uint32, name string) int32 {
	locs := b.uniformLocations[program]
	if locs == nil {
		return metadata.InvalidUniformLocation
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	if !declaresUniform(b.linkedSources[program], name) {
		return metadata.InvalidUniformLocation
	}
	loc := int32(len(locs))
	locs[name] = loc
	return loc
}

func declaresUniform(source, name string) bool {
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "uniform ") {
			continue
		}
		fields := strings.Fields(strings.TrimSuffix(line, ";"))
		if len(fields) >= 3 && strings.TrimSuffix(fields[len(fields)-1], ";") == name {
			return true
		}
	}
	return false
}

func (b *Backend) uniformName(location int32) string {
	for name, loc := range b.uniformLocations[b.CurrentProgram] {
		if loc == location {
			return name
		}
	}
	return fmt.Sprintf("location(%d)", location)
}

func (b *Backend) setUniform(location int32, value interface{}) {
	b.Uniforms[b.uniformName(location)] = value
	b.record("uniform %d = %v", location, value)
}

func (b *Backend) Uniform1i(location int32, value int32) {
	b.setUniform(location, value)
}

func (b *Backend) Uniform1f(location int32, value float32) {
	b.setUniform(location, value)
}

func (b *Backend) Uniform3f(location int32, value mgl32.Vec3) {
	b.setUniform(location, value)
}

func (b *Backend) Uniform4f(location int32, value mgl32.Vec4) {
	b.setUniform(location, value)
}

func (b *Backend) UniformMatrix4fv(location int32, value mgl32.Mat4) {
	b.setUniform(location, value)
}

func (b *Backend) DrawArrays(mode metadata.PrimitiveMode, first, count int32) {
	b.Draws = append(b.Draws, DrawCall{Mode: mode, First: first, Count: count, Instances: 1, Program: b.CurrentProgram, VAO: b.CurrentVAO})
	b.record("draw arrays count=%d", count)
}

func (b *Backend) DrawArraysInstanced(mode metadata.PrimitiveMode, first, count, instances int32) {
	b.Draws = append(b.Draws, DrawCall{Mode: mode, First: first, Count: count, Instances: instances, Program: b.CurrentProgram, VAO: b.CurrentVAO})
	b.record("draw arrays instanced count=%d instances=%d", count, instances)
}

func (b *Backend) DrawElementsInstanced(mode metadata.PrimitiveMode, first, count, instances int32) {
	b.Draws = append(b.Draws, DrawCall{Mode: mode, First: first, Count: count, Instances: instances, Indexed: true, Program: b.CurrentProgram, VAO: b.CurrentVAO})
	b.record("draw elements instanced count=%d instances=%d", count, instances)
}

func (b *Backend) Viewport(x, y, width, height int32) {
	b.ViewportV = [4]int32{x, y, width, height}
}

func (b *Backend) Clear(r, g, bl, a float32) {
	b.ClearV = [4]float32{r, g, bl, a}
	b.record("clear")
}
