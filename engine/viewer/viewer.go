package viewer

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/archview/engine/actors"
	"github.com/spaghettifunk/archview/engine/assets"
	"github.com/spaghettifunk/archview/engine/assets/loaders"
	"github.com/spaghettifunk/archview/engine/config"
	"github.com/spaghettifunk/archview/engine/containers"
	"github.com/spaghettifunk/archview/engine/core"
	"github.com/spaghettifunk/archview/engine/math"
	"github.com/spaghettifunk/archview/engine/renderer"
	"github.com/spaghettifunk/archview/engine/renderer/components"
	"github.com/spaghettifunk/archview/engine/systems"
)

const (
	playlistSize = 64
	nearPlane    = 0.1
	farPlane     = 4000.0
	// radians per second for the arrow keys
	turnSpeed = 1.5
)

// Viewer shows one asset at a time. It owns the renderables it creates and
// the render cache handed to it; everything is released by Dispose.
type Viewer struct {
	Config     config.ViewerConfig
	ShowGrid   bool
	ShowBounds bool

	backend renderer.Backend
	source  assets.Source
	cache   *systems.RenderCache
	camera  *components.Camera

	grid  *actors.Grid
	boxes *actors.BoundingBoxes

	// what Render draws; for instanced models this is the ring
	current     actors.Renderable
	currentPath string
	model       *actors.Model
	ring        *actors.InstanceSet
	is3D        bool

	playlist *containers.RingQueue[string]
	aspect   float32
	disposed bool
}

func New(cfg config.ViewerConfig, backend renderer.Backend, source assets.Source, cache *systems.RenderCache) (*Viewer, error) {
	if backend == nil || source == nil || cache == nil {
		return nil, fmt.Errorf("viewer needs a backend, a source and a render cache: %w", core.ErrInvalidArgument)
	}
	grid, err := actors.NewGrid(backend, cache, 50, 25, mgl32.Vec4(cfg.GridColor))
	if err != nil {
		return nil, err
	}
	boxes, err := actors.NewBoundingBoxes(backend, cache, mgl32.Vec4(cfg.BoundsColor))
	if err != nil {
		return nil, err
	}
	return &Viewer{
		Config:     cfg,
		ShowGrid:   true,
		ShowBounds: cfg.ShowBounds,
		backend:    backend,
		source:     source,
		cache:      cache,
		camera:     components.NewCamera(),
		grid:       grid,
		boxes:      boxes,
		playlist:   containers.NewRingQueue[string](playlistSize),
		aspect:     1,
	}, nil
}

func (v *Viewer) check() error {
	if v.disposed {
		return fmt.Errorf("viewer: %w", core.ErrObjectDisposed)
	}
	return nil
}

func (v *Viewer) Camera() *components.Camera {
	return v.camera
}

func (v *Viewer) Current() actors.Renderable {
	return v.current
}

func (v *Viewer) CurrentPath() string {
	return v.currentPath
}

func (v *Viewer) SetViewport(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	v.aspect = float32(width) / float32(height)
	v.backend.Viewport(0, 0, int32(width), int32(height))
}

func (v *Viewer) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(v.Config.FieldOfView), v.aspect, nearPlane, farPlane)
}

// Preview replaces the shown asset with the one at path. The previous asset
// is only released once the new one has loaded, so a failed preview leaves
// the old one on screen.
func (v *Viewer) Preview(path string) error {
	if err := v.check(); err != nil {
		return err
	}
	key := assets.NormalizePath(path)
	fileType := loaders.ClassifyPath(key)
	if fileType == loaders.FileTypeUnknown {
		if data, ok := v.source.TryExtract(key); ok {
			fileType = loaders.Sniff(data)
		}
	}

	var (
		next  actors.Renderable
		model *actors.Model
		ring  *actors.InstanceSet
		err   error
	)
	switch {
	case fileType.IsImage():
		next, err = v.loadImage(key)
	case fileType == loaders.FileTypeModel:
		model, ring, err = v.loadModel(key)
		next = model
		if ring != nil {
			next = ring
		}
	default:
		err = fmt.Errorf("cannot preview '%s' of type %s: %w", key, fileType, core.ErrUnsupportedOperation)
	}
	if err != nil {
		core.LogError(err.Error())
		return err
	}

	if err := v.release(); err != nil {
		core.LogWarn("releasing '%s': %s", v.currentPath, err.Error())
	}
	v.current, v.currentPath = next, key
	v.model, v.ring = model, ring
	v.is3D = model != nil

	bounds := next.Bounds()
	v.camera.Frame(bounds, v.Config.FieldOfView)
	if err := v.boxes.SetBoxes(bounds); err != nil {
		return err
	}
	core.LogInfo("previewing '%s' (%s)", key, fileType)
	return nil
}

func (v *Viewer) loadImage(key string) (actors.Renderable, error) {
	img, err := actors.NewImage(v.backend, v.cache, v.source, key)
	if err != nil {
		return nil, err
	}
	if err := img.Load(); err != nil {
		img.Dispose()
		return nil, err
	}
	return img, nil
}

func (v *Viewer) loadModel(key string) (*actors.Model, *actors.InstanceSet, error) {
	model, err := actors.NewModel(v.backend, v.cache, v.source, key, v.Config.DefaultWrap)
	if err != nil {
		return nil, nil, err
	}
	if err := model.Load(); err != nil {
		model.Dispose()
		return nil, nil, err
	}
	if v.Config.Instances <= 1 {
		return model, nil, nil
	}

	ring, err := actors.NewInstanceSet(v.backend, model)
	if err == nil {
		err = ring.SetInstances(ringTransforms(model.Bounds(), v.Config.Instances))
	}
	if err == nil {
		err = ring.Initialize()
	}
	if err != nil {
		if ring != nil {
			ring.Release()
		}
		model.Dispose()
		return nil, nil, err
	}
	return model, ring, nil
}

// ringTransforms spreads count copies on a circle in the XZ plane, each
// turned to face the centre, far enough apart that neighbours do not touch.
func ringTransforms(bounds math.BoundingBox, count int) []*math.Transform {
	size := bounds.Size()
	footprint := float32(stdmath.Max(float64(size.X()), float64(size.Z())))
	if footprint <= 0 {
		footprint = 1
	}
	radius := footprint * 1.25 * float32(count) / (2 * stdmath.Pi)
	if radius < footprint {
		radius = footprint
	}

	out := make([]*math.Transform, 0, count)
	for i := 0; i < count; i++ {
		angle := 2 * stdmath.Pi * float64(i) / float64(count)
		position := mgl32.Vec3{
			radius * float32(stdmath.Sin(angle)),
			0,
			radius * float32(stdmath.Cos(angle)),
		}
		rotation := mgl32.QuatRotate(float32(angle)+stdmath.Pi, mgl32.Vec3{0, 1, 0})
		out = append(out, math.TransformFromPositionRotation(position, rotation))
	}
	return out
}

func (v *Viewer) release() error {
	var err error
	switch {
	case v.model != nil:
		if v.ring != nil {
			err = v.ring.Release()
		}
		err = errors.Join(err, v.model.Dispose())
	case v.current != nil:
		err = v.current.Dispose()
	}
	v.current, v.model, v.ring = nil, nil, nil
	v.currentPath = ""
	return err
}

// Enqueue adds paths to the playlist cycled by Next.
func (v *Viewer) Enqueue(paths ...string) {
	for _, p := range paths {
		if err := v.playlist.Enqueue(p); err != nil {
			core.LogWarn("playlist full, dropping '%s'", p)
		}
	}
}

// Next previews the first playlist entry and moves it to the back so the
// playlist loops. Entries that fail to load are dropped.
func (v *Viewer) Next() error {
	for !v.playlist.IsEmpty() {
		path, _ := v.playlist.Dequeue()
		if err := v.Preview(path); err != nil {
			if errors.Is(err, core.ErrObjectDisposed) {
				return err
			}
			continue
		}
		v.playlist.Enqueue(path)
		return nil
	}
	return nil
}

// Update moves the camera from the keyboard and handles the viewer toggles.
func (v *Viewer) Update(input *core.InputState, deltaTime float64) error {
	if err := v.check(); err != nil {
		return err
	}
	step := v.Config.CameraSpeed * float32(deltaTime)
	turn := float32(turnSpeed * deltaTime)
	if input.IsKeyDown(core.KEY_LSHIFT) {
		step *= 4
	}

	if input.IsKeyDown(core.KEY_W) {
		v.camera.MoveForward(step)
	}
	if input.IsKeyDown(core.KEY_S) {
		v.camera.MoveForward(-step)
	}
	if input.IsKeyDown(core.KEY_D) {
		v.camera.MoveRight(step)
	}
	if input.IsKeyDown(core.KEY_A) {
		v.camera.MoveRight(-step)
	}
	if input.IsKeyDown(core.KEY_E) {
		v.camera.MoveUp(step)
	}
	if input.IsKeyDown(core.KEY_Q) {
		v.camera.MoveUp(-step)
	}
	if input.IsKeyDown(core.KEY_LEFT) {
		v.camera.Yaw(turn)
	}
	if input.IsKeyDown(core.KEY_RIGHT) {
		v.camera.Yaw(-turn)
	}
	if input.IsKeyDown(core.KEY_UP) {
		v.camera.Pitch(turn)
	}
	if input.IsKeyDown(core.KEY_DOWN) {
		v.camera.Pitch(-turn)
	}

	if input.KeyPressed(core.KEY_F) && v.current != nil {
		v.camera.Frame(v.current.Bounds(), v.Config.FieldOfView)
	}
	if input.KeyPressed(core.KEY_G) {
		v.ShowGrid = !v.ShowGrid
	}
	if input.KeyPressed(core.KEY_B) {
		v.ShowBounds = !v.ShowBounds
	}
	if input.KeyPressed(core.KEY_TAB) {
		return v.Next()
	}
	return nil
}

// Render clears the frame and draws the grid, the current asset and its
// bounds.
func (v *Viewer) Render() error {
	if err := v.check(); err != nil {
		return err
	}
	c := v.Config.ClearColor
	v.backend.Clear(c[0], c[1], c[2], c[3])

	view := v.camera.GetView()
	projection := v.Projection()

	if v.ShowGrid && v.is3D {
		if err := v.grid.Load(); err != nil {
			return err
		}
		if err := v.grid.Render(view, projection, v.camera); err != nil {
			return err
		}
	}
	if v.current != nil {
		if err := v.current.Render(view, projection, v.camera); err != nil {
			return err
		}
	}
	if v.ShowBounds && v.current != nil {
		if err := v.boxes.Load(); err != nil {
			return err
		}
		if err := v.boxes.Render(view, projection, v.camera); err != nil {
			return err
		}
	}
	return nil
}

// Dispose releases the shown asset, the helpers and finally the render
// cache with every texture and program it holds.
func (v *Viewer) Dispose() error {
	if err := v.check(); err != nil {
		return err
	}
	v.disposed = true
	return errors.Join(
		v.release(),
		v.grid.Dispose(),
		v.boxes.Dispose(),
		v.cache.Dispose(),
	)
}
