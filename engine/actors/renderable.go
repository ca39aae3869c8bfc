// Package actors holds the things a preview can draw: images, models, the
// ground grid and bounding boxes, plus instanced sets of models.
package actors

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/math"
	"github.com/spaghettifunk/archview/engine/renderer/components"
)

// Renderable is anything the preview loop can load, frame and draw.
type Renderable interface {
	// Load creates the GPU objects. It must run on the render thread.
	Load() error
	Bounds() math.BoundingBox
	Render(view, projection mgl32.Mat4, camera *components.Camera) error
	Dispose() error
}

// InstanceTarget is geometry that can be drawn many times in one call using
// per-instance model matrices bound by an InstanceSet.
type InstanceTarget interface {
	// BindGeometry makes the target's vertex array current so instance
	// attributes can be attached to it.
	BindGeometry() error
	RenderInstanced(view, projection mgl32.Mat4, camera *components.Camera, instanceCount int) error
	Bounds() math.BoundingBox
	IsStatic() bool
}

var defaultLightDirection = mgl32.Vec3{-0.3, -1, -0.5}

// lightDirection lights the scene from over the viewer's shoulder.
func lightDirection(camera *components.Camera) mgl32.Vec3 {
	if camera == nil {
		return defaultLightDirection
	}
	return camera.Forward().Add(mgl32.Vec3{0, -0.5, 0}).Normalize()
}
