package systems

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
	"github.com/spaghettifunk/archview/engine/shaders"
)

/**
 * @brief Describes how to build the program of one shader kind.
 */
type ShaderConfig struct {
	/** @brief Stages compiled and attached, in order. */
	Stages []metadata.ShaderStage
	/** @brief Vertex inputs bound to fixed locations before linking. */
	Attributes []metadata.ShaderAttribute
}

var (
	vertexFragment         = []metadata.ShaderStage{metadata.ShaderStageVertex, metadata.ShaderStageFragment}
	vertexGeometryFragment = []metadata.ShaderStage{metadata.ShaderStageVertex, metadata.ShaderStageGeometry, metadata.ShaderStageFragment}

	positionAttribute = metadata.ShaderAttribute{Name: "a_position", Location: metadata.AttributeLocationPosition}
	normalAttribute   = metadata.ShaderAttribute{Name: "a_normal", Location: metadata.AttributeLocationNormal}
	texcoordAttribute = metadata.ShaderAttribute{Name: "a_texcoord", Location: metadata.AttributeLocationTexcoord}
)

// DefaultShaderConfigs is the construction table for every shader kind.
func DefaultShaderConfigs() map[metadata.ShaderKind]ShaderConfig {
	return map[metadata.ShaderKind]ShaderConfig{
		metadata.ShaderKindPlain2D: {
			Stages:     vertexFragment,
			Attributes: []metadata.ShaderAttribute{positionAttribute, texcoordAttribute},
		},
		metadata.ShaderKindWorldModel: {
			Stages:     vertexFragment,
			Attributes: []metadata.ShaderAttribute{positionAttribute, normalAttribute, texcoordAttribute},
		},
		metadata.ShaderKindBoundingBox: {
			Stages: vertexGeometryFragment,
			Attributes: []metadata.ShaderAttribute{
				{Name: "a_min", Location: 0},
				{Name: "a_max", Location: 1},
			},
		},
		metadata.ShaderKindGameModel: {
			Stages: vertexFragment,
			Attributes: []metadata.ShaderAttribute{
				positionAttribute, normalAttribute, texcoordAttribute,
				{Name: "a_instance", Location: metadata.AttributeLocationInstance},
			},
		},
		metadata.ShaderKindBaseGrid: {
			Stages:     vertexFragment,
			Attributes: []metadata.ShaderAttribute{positionAttribute},
		},
	}
}

// ShaderSystem owns at most one linked program per shader kind. Programs are
// built on first use and live until Shutdown.
type ShaderSystem struct {
	// The construction table, keyed by kind.
	Configs map[metadata.ShaderKind]ShaderConfig

	programs map[metadata.ShaderKind]*renderer.Program
	// kinds whose build failed, with the error returned on every later Get
	broken map[metadata.ShaderKind]error

	backend  renderer.Backend
	provider shaders.Provider
}

func NewShaderSystem(configs map[metadata.ShaderKind]ShaderConfig, backend renderer.Backend, provider shaders.Provider) (*ShaderSystem, error) {
	if backend == nil || provider == nil {
		err := fmt.Errorf("func NewShaderSystem - backend and provider are required: %w", core.ErrInvalidArgument)
		core.LogError(err.Error())
		return nil, err
	}
	if configs == nil {
		configs = DefaultShaderConfigs()
	}
	return &ShaderSystem{
		Configs:  configs,
		programs: make(map[metadata.ShaderKind]*renderer.Program),
		broken:   make(map[metadata.ShaderKind]error),
		backend:  backend,
		provider: provider,
	}, nil
}

// Get returns the program of kind, building it the first time it is asked for.
func (ss *ShaderSystem) Get(kind metadata.ShaderKind) (*renderer.Program, error) {
	if program, ok := ss.programs[kind]; ok {
		return program, nil
	}
	if err, ok := ss.broken[kind]; ok {
		return nil, err
	}

	program, err := ss.Compile(kind)
	if err != nil {
		if kind.Valid() {
			ss.broken[kind] = err
		}
		return nil, err
	}
	ss.programs[kind] = program
	core.LogDebug("shader '%s' ready", kind)
	return program, nil
}

func (ss *ShaderSystem) Has(kind metadata.ShaderKind) bool {
	_, ok := ss.programs[kind]
	return ok
}

// Count is the number of live programs.
func (ss *ShaderSystem) Count() int {
	return len(ss.programs)
}

/**
 * @brief Builds a new program for kind without registering it. The caller
 * owns the result. On failure every intermediate object is released.
 */
func (ss *ShaderSystem) Compile(kind metadata.ShaderKind) (*renderer.Program, error) {
	config, ok := ss.Configs[kind]
	if !kind.Valid() || !ok {
		err := fmt.Errorf("shader kind %d: %w", int(kind), core.ErrInvalidShaderKind)
		core.LogError(err.Error())
		return nil, err
	}

	sources, err := ss.provider.Sources(kind)
	if err != nil {
		return nil, err
	}
	for _, stage := range config.Stages {
		if !sources.Has(stage) {
			err := fmt.Errorf("shader '%s' has no %s source: %w", kind, stage, core.ErrInvalidArgument)
			core.LogError(err.Error())
			return nil, err
		}
	}

	program, err := renderer.NewProgram(ss.backend, kind.String())
	if err != nil {
		return nil, err
	}

	stages := make([]uint32, 0, len(config.Stages))
	fail := func(err error) (*renderer.Program, error) {
		ss.releaseStages(program, stages)
		if derr := program.Dispose(); derr != nil {
			core.LogError(derr.Error())
		}
		core.LogError(err.Error())
		return nil, err
	}

	for _, stage := range config.Stages {
		handle := ss.backend.CreateShader(stage)
		if handle == metadata.InvalidHandle {
			return fail(fmt.Errorf("shader '%s' %s stage: %w", kind, stage, core.ErrDriverFailure))
		}
		stages = append(stages, handle)

		if ok, log := ss.backend.CompileShader(handle, sources.Stages[stage]); !ok {
			return fail(&core.ShaderCompilationError{Shader: kind.String(), Stage: stage.String(), Log: log})
		}
		if err := program.Attach(handle); err != nil {
			return fail(err)
		}
	}

	for _, attribute := range config.Attributes {
		if err := program.BindAttribute(attribute.Location, attribute.Name); err != nil {
			return fail(err)
		}
	}
	if err := program.Link(); err != nil {
		return fail(err)
	}

	// the linked program keeps the code, the stage objects are not needed anymore
	ss.releaseStages(program, stages)
	return program, nil
}

func (ss *ShaderSystem) releaseStages(program *renderer.Program, stages []uint32) {
	for _, stage := range stages {
		// Detach fails only once the program is gone, which detaches implicitly.
		_ = program.Detach(stage)
		ss.backend.DeleteShader(stage)
	}
}

func checkProgram(program *renderer.Program) error {
	if program == nil {
		return fmt.Errorf("nil program: %w", core.ErrInvalidArgument)
	}
	return nil
}

// SetUniformInt makes program current and uploads value to the named
// uniform. Names the linked program does not use are ignored.
func (ss *ShaderSystem) SetUniformInt(program *renderer.Program, name string, value int32) error {
	if err := checkProgram(program); err != nil {
		return err
	}
	return program.SetInt(name, value)
}

func (ss *ShaderSystem) SetUniformFloat(program *renderer.Program, name string, value float32) error {
	if err := checkProgram(program); err != nil {
		return err
	}
	return program.SetFloat(name, value)
}

func (ss *ShaderSystem) SetUniformVec3(program *renderer.Program, name string, value mgl32.Vec3) error {
	if err := checkProgram(program); err != nil {
		return err
	}
	return program.SetVec3(name, value)
}

func (ss *ShaderSystem) SetUniformVec4(program *renderer.Program, name string, value mgl32.Vec4) error {
	if err := checkProgram(program); err != nil {
		return err
	}
	return program.SetVec4(name, value)
}

func (ss *ShaderSystem) SetUniformMat4(program *renderer.Program, name string, value mgl32.Mat4) error {
	if err := checkProgram(program); err != nil {
		return err
	}
	return program.SetMat4(name, value)
}

/**
 * @brief Shuts down the shader system, destroying every program.
 */
func (ss *ShaderSystem) Shutdown() error {
	var firstErr error
	for _, kind := range metadata.AllShaderKinds() {
		program, ok := ss.programs[kind]
		if !ok {
			continue
		}
		if err := program.Dispose(); err != nil {
			core.LogError(err.Error())
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	ss.programs = make(map[metadata.ShaderKind]*renderer.Program)
	ss.broken = make(map[metadata.ShaderKind]error)
	return firstErr
}
