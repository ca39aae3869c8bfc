package metadata

import "fmt"

/**
 * @brief The closed set of shader programs the previewer knows how to build.
 */
type ShaderKind int

const (
	/** @brief Textured screen-space quad, used for image previews. */
	ShaderKindPlain2D ShaderKind = iota
	/** @brief Static world geometry with a diffuse map and simple lighting. */
	ShaderKindWorldModel
	/** @brief Wireframe of an axis aligned box, expanded in a geometry stage. */
	ShaderKindBoundingBox
	/** @brief Instanced game model, one model matrix per instance. */
	ShaderKindGameModel
	/** @brief Ground grid lines. */
	ShaderKindBaseGrid

	shaderKindCount
)

var shaderKindNames = [shaderKindCount]string{
	ShaderKindPlain2D:     "plain2d",
	ShaderKindWorldModel:  "world_model",
	ShaderKindBoundingBox: "bounding_box",
	ShaderKindGameModel:   "game_model",
	ShaderKindBaseGrid:    "base_grid",
}

// AllShaderKinds lists every valid kind in declaration order.
func AllShaderKinds() []ShaderKind {
	kinds := make([]ShaderKind, 0, shaderKindCount)
	for k := ShaderKind(0); k < shaderKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k ShaderKind) Valid() bool {
	return k >= 0 && k < shaderKindCount
}

// String returns the file stem used for the kind's sources.
func (k ShaderKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("shader_kind(%d)", int(k))
	}
	return shaderKindNames[k]
}

/**
 * @brief A single programmable stage of a shader program.
 */
type ShaderStage int

const (
	ShaderStageVertex ShaderStage = iota
	ShaderStageGeometry
	ShaderStageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageGeometry:
		return "geometry"
	case ShaderStageFragment:
		return "fragment"
	}
	return fmt.Sprintf("shader_stage(%d)", int(s))
}

// Extension is the file extension holding the stage's source.
func (s ShaderStage) Extension() string {
	switch s {
	case ShaderStageVertex:
		return ".vert"
	case ShaderStageGeometry:
		return ".geom"
	case ShaderStageFragment:
		return ".frag"
	}
	return ""
}

/**
 * @brief Binds a named vertex input to a fixed location before linking.
 */
type ShaderAttribute struct {
	Name     string
	Location uint32
}

// Vertex input locations shared by every shader kind. The per-instance model
// matrix takes four consecutive slots starting at AttributeLocationInstance.
const (
	AttributeLocationPosition uint32 = 0
	AttributeLocationNormal   uint32 = 1
	AttributeLocationTexcoord uint32 = 2
	AttributeLocationInstance uint32 = 3
)
