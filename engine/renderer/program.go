package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/renderer/metadata"
)

// Program is a linked shader program. Uniform locations are looked up once
// per name and cached for the lifetime of the program.
type Program struct {
	resource
	Name      string
	locations map[string]int32
}

func NewProgram(backend Backend, name string) (*Program, error) {
	r, err := newResource(backend, metadata.ResourceTypeProgram)
	if err != nil {
		return nil, err
	}
	return &Program{
		resource:  r,
		Name:      name,
		locations: make(map[string]int32),
	}, nil
}

// Attach attaches a compiled stage to the program.
func (p *Program) Attach(shader uint32) error {
	if err := p.check(); err != nil {
		return err
	}
	p.backend.AttachShader(p.handle, shader)
	return nil
}

func (p *Program) Detach(shader uint32) error {
	if err := p.check(); err != nil {
		return err
	}
	p.backend.DetachShader(p.handle, shader)
	return nil
}

// BindAttribute fixes the location of a vertex input. It only takes effect
// on the next Link.
func (p *Program) BindAttribute(location uint32, name string) error {
	if err := p.check(); err != nil {
		return err
	}
	p.backend.BindAttribLocation(p.handle, location, name)
	return nil
}

// Link links the attached stages. A failed link is reported as a
// ShaderLinkingError carrying the driver log.
func (p *Program) Link() error {
	if err := p.check(); err != nil {
		return err
	}
	if ok, log := p.backend.LinkProgram(p.handle); !ok {
		return &core.ShaderLinkingError{Shader: p.Name, Log: log}
	}
	// locations are only valid for the current link
	p.locations = make(map[string]int32)
	return nil
}

// Enable makes the program current. Safe to call repeatedly.
func (p *Program) Enable() error {
	if err := p.check(); err != nil {
		return err
	}
	p.backend.UseProgram(p.handle)
	return nil
}

// UniformLocation returns -1 for names the linked program does not use.
func (p *Program) UniformLocation(name string) (int32, error) {
	if err := p.check(); err != nil {
		return metadata.InvalidUniformLocation, err
	}
	if loc, ok := p.locations[name]; ok {
		return loc, nil
	}
	loc := p.backend.GetUniformLocation(p.handle, name)
	p.locations[name] = loc
	return loc, nil
}

func (p *Program) uniform(name string) (int32, error) {
	if err := p.Enable(); err != nil {
		return metadata.InvalidUniformLocation, err
	}
	loc, err := p.UniformLocation(name)
	if err != nil {
		return loc, err
	}
	if loc == metadata.InvalidUniformLocation {
		core.LogDebug("program '%s' has no active uniform '%s'", p.Name, name)
	}
	return loc, nil
}

func (p *Program) SetInt(name string, value int32) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	if loc != metadata.InvalidUniformLocation {
		p.backend.Uniform1i(loc, value)
	}
	return nil
}

func (p *Program) SetFloat(name string, value float32) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	if loc != metadata.InvalidUniformLocation {
		p.backend.Uniform1f(loc, value)
	}
	return nil
}

func (p *Program) SetVec3(name string, value mgl32.Vec3) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	if loc != metadata.InvalidUniformLocation {
		p.backend.Uniform3f(loc, value)
	}
	return nil
}

func (p *Program) SetVec4(name string, value mgl32.Vec4) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	if loc != metadata.InvalidUniformLocation {
		p.backend.Uniform4f(loc, value)
	}
	return nil
}

func (p *Program) SetMat4(name string, value mgl32.Mat4) error {
	loc, err := p.uniform(name)
	if err != nil {
		return err
	}
	if loc != metadata.InvalidUniformLocation {
		p.backend.UniformMatrix4fv(loc, value)
	}
	return nil
}

func (p *Program) String() string {
	return fmt.Sprintf("program '%s' (handle %d)", p.Name, p.handle)
}
