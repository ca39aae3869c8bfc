package metadata

/** @brief Handle value of a GPU object that has not been allocated or was destroyed. */
const InvalidHandle uint32 = 0

/** @brief Uniform location reported for names missing from a linked program. */
const InvalidUniformLocation int32 = -1

/** @brief The kinds of GPU objects wrapped by the renderer. */
type ResourceType int

const (
	ResourceTypeTexture ResourceType = iota
	ResourceTypeBuffer
	ResourceTypeVertexArray
	ResourceTypeProgram
	ResourceTypeShaderStage
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeTexture:
		return "texture"
	case ResourceTypeBuffer:
		return "buffer"
	case ResourceTypeVertexArray:
		return "vertex array"
	case ResourceTypeProgram:
		return "program"
	case ResourceTypeShaderStage:
		return "shader stage"
	}
	return "unknown"
}

/** @brief Target a buffer is bound to. */
type BufferTarget int

const (
	BufferTargetArray BufferTarget = iota
	BufferTargetElementArray
)

/** @brief Expected update frequency of a buffer's contents. */
type BufferUsage int

const (
	BufferUsageStaticDraw BufferUsage = iota
	BufferUsageDynamicDraw
)

/** @brief Primitive assembly mode for draw calls. */
type PrimitiveMode int

const (
	PrimitiveTriangles PrimitiveMode = iota
	PrimitiveLines
	PrimitivePoints
)
