// Package opengl implements renderer.Backend on top of an OpenGL 4.1 core
// context. The context must be current on the calling thread.
package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

type Backend struct {
	version string
}

var _ renderer.Backend = (*Backend)(nil)

// New loads the GL function pointers for the current context.
func New() (*Backend, error) {
	if err := gl.Init(); err != nil {
		err = fmt.Errorf("func opengl.New - failed to initialize OpenGL: %w", err)
		core.LogError(err.Error())
		return nil, err
	}
	b := &Backend{version: gl.GoStr(gl.GetString(gl.VERSION))}
	core.LogInfo("OpenGL %s (%s)", b.version, gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	return b, nil
}

func (b *Backend) Version() string {
	return b.version
}

func wrapMode(w metadata.TextureWrap) int32 {
	switch w {
	case metadata.TextureWrapMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case metadata.TextureWrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case metadata.TextureWrapClampToBorder:
		return gl.CLAMP_TO_BORDER
	default:
		return gl.REPEAT
	}
}

func bufferTarget(t metadata.BufferTarget) uint32 {
	if t == metadata.BufferTargetElementArray {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u metadata.BufferUsage) uint32 {
	if u == metadata.BufferUsageDynamicDraw {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func primitive(m metadata.PrimitiveMode) uint32 {
	switch m {
	case metadata.PrimitiveLines:
		return gl.LINES
	case metadata.PrimitivePoints:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func shaderType(s metadata.ShaderStage) uint32 {
	switch s {
	case metadata.ShaderStageGeometry:
		return gl.GEOMETRY_SHADER
	case metadata.ShaderStageFragment:
		return gl.FRAGMENT_SHADER
	default:
		return gl.VERTEX_SHADER
	}
}

func (b *Backend) CreateTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (b *Backend) BindTexture(unit uint32, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, texture)
}

func (b *Backend) TextureImage2D(texture uint32, width, height uint32, pixels []uint8, sampling metadata.TextureSampling) {
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(sampling.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(sampling.WrapT))

	magFilter := int32(gl.LINEAR)
	minFilter := int32(gl.LINEAR)
	if sampling.Filter == metadata.TextureFilterModeNearest {
		magFilter, minFilter = gl.NEAREST, gl.NEAREST
	}
	if sampling.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		if sampling.Filter == metadata.TextureFilterModeNearest {
			minFilter = gl.NEAREST_MIPMAP_NEAREST
		} else {
			minFilter = gl.LINEAR_MIPMAP_LINEAR
		}
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, magFilter)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

func (b *Backend) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

func (b *Backend) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (b *Backend) BindBuffer(target metadata.BufferTarget, buffer uint32) {
	gl.BindBuffer(bufferTarget(target), buffer)
}

func (b *Backend) BufferDataFloat32(target metadata.BufferTarget, data []float32, usage metadata.BufferUsage) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, bufferUsage(usage))
		return
	}
	gl.BufferData(bufferTarget(target), len(data)*4, gl.Ptr(data), bufferUsage(usage))
}

func (b *Backend) BufferDataUint32(target metadata.BufferTarget, data []uint32, usage metadata.BufferUsage) {
	if len(data) == 0 {
		gl.BufferData(bufferTarget(target), 0, nil, bufferUsage(usage))
		return
	}
	gl.BufferData(bufferTarget(target), len(data)*4, gl.Ptr(data), bufferUsage(usage))
}

func (b *Backend) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (b *Backend) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (b *Backend) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (b *Backend) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
}

func (b *Backend) EnableVertexAttribArray(location uint32) {
	gl.EnableVertexAttribArray(location)
}

func (b *Backend) DisableVertexAttribArray(location uint32) {
	gl.DisableVertexAttribArray(location)
}

func (b *Backend) VertexAttribPointer(location uint32, size int32, stride int32, offset int) {
	gl.VertexAttribPointer(location, size, gl.FLOAT, false, stride, gl.PtrOffset(offset))
}

func (b *Backend) VertexAttribDivisor(location uint32, divisor uint32) {
	gl.VertexAttribDivisor(location, divisor)
}

func (b *Backend) CreateShader(stage metadata.ShaderStage) uint32 {
	return gl.CreateShader(shaderType(stage))
}

func (b *Backend) CompileShader(shader uint32, source string) (bool, string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		return false, strings.TrimRight(log, "\x00")
	}
	return true, ""
}

func (b *Backend) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (b *Backend) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (b *Backend) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (b *Backend) DetachShader(program, shader uint32) {
	gl.DetachShader(program, shader)
}

func (b *Backend) BindAttribLocation(program uint32, location uint32, name string) {
	gl.BindAttribLocation(program, location, gl.Str(name+"\x00"))
}

func (b *Backend) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return false, strings.TrimRight(log, "\x00")
	}
	return true, ""
}

func (b *Backend) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (b *Backend) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (b *Backend) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (b *Backend) Uniform1i(location int32, value int32) {
	gl.Uniform1i(location, value)
}

func (b *Backend) Uniform1f(location int32, value float32) {
	gl.Uniform1f(location, value)
}

func (b *Backend) Uniform3f(location int32, value mgl32.Vec3) {
	gl.Uniform3f(location, value[0], value[1], value[2])
}

func (b *Backend) Uniform4f(location int32, value mgl32.Vec4) {
	gl.Uniform4f(location, value[0], value[1], value[2], value[3])
}

func (b *Backend) UniformMatrix4fv(location int32, value mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &value[0])
}

func (b *Backend) DrawArrays(mode metadata.PrimitiveMode, first, count int32) {
	gl.DrawArrays(primitive(mode), first, count)
}

func (b *Backend) DrawArraysInstanced(mode metadata.PrimitiveMode, first, count, instances int32) {
	gl.DrawArraysInstanced(primitive(mode), first, count, instances)
}

func (b *Backend) DrawElementsInstanced(mode metadata.PrimitiveMode, first, count, instances int32) {
	gl.DrawElementsInstanced(primitive(mode), count, gl.UNSIGNED_INT, gl.PtrOffset(int(first)*4), instances)
}

func (b *Backend) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (b *Backend) Clear(r, g, bl, a float32) {
	gl.ClearColor(r, g, bl, a)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}
