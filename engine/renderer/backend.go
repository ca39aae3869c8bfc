package renderer

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

// Backend is the set of primitive graphics calls the wrappers issue. All
// methods must be called from the thread that owns the current context.
// Creation methods return metadata.InvalidHandle when the driver cannot
// allocate the object; compile and link report their status instead of
// failing.
type Backend interface {
	CreateTexture() uint32
	BindTexture(unit uint32, texture uint32)
	TextureImage2D(texture uint32, width, height uint32, pixels []uint8, sampling metadata.TextureSampling)
	DeleteTexture(texture uint32)

	CreateBuffer() uint32
	BindBuffer(target metadata.BufferTarget, buffer uint32)
	BufferDataFloat32(target metadata.BufferTarget, data []float32, usage metadata.BufferUsage)
	BufferDataUint32(target metadata.BufferTarget, data []uint32, usage metadata.BufferUsage)
	DeleteBuffer(buffer uint32)

	CreateVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	EnableVertexAttribArray(location uint32)
	DisableVertexAttribArray(location uint32)
	// VertexAttribPointer describes float attributes; stride and offset are in bytes.
	VertexAttribPointer(location uint32, size int32, stride int32, offset int)
	VertexAttribDivisor(location uint32, divisor uint32)

	CreateShader(stage metadata.ShaderStage) uint32
	CompileShader(shader uint32, source string) (ok bool, log string)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	BindAttribLocation(program uint32, location uint32, name string)
	LinkProgram(program uint32) (ok bool, log string)
	UseProgram(program uint32)
	DeleteProgram(program uint32)

	GetUniformLocation(program uint32, name string) int32
	Uniform1i(location int32, value int32)
	Uniform1f(location int32, value float32)
	Uniform3f(location int32, value mgl32.Vec3)
	Uniform4f(location int32, value mgl32.Vec4)
	UniformMatrix4fv(location int32, value mgl32.Mat4)

	DrawArrays(mode metadata.PrimitiveMode, first, count int32)
	DrawArraysInstanced(mode metadata.PrimitiveMode, first, count, instances int32)
	// DrawElementsInstanced draws 32-bit indices starting at index first.
	DrawElementsInstanced(mode metadata.PrimitiveMode, first, count, instances int32)

	Viewport(x, y, width, height int32)
	Clear(r, g, b, a float32)
}
