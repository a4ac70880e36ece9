// Package frustum places a pinhole camera in the scene and relates world points to its image plane.
//
// The free functions (BuildGeometry, ComposePlacement, Project, ProjectBatch, InverseProject) are pure.
// Frustum wraps them into an entity that tracks the latest vehicle pose and publishes geometry and
// visualizations through atomic pointers, so renderers may read while the owning goroutine mutates.
package frustum

import (
	"github.com/golang/geo/r3"
	"go.uber.org/atomic"
	"gonum.org/v1/gonum/num/quat"

	"github.com/sensorviz/sensorviz/camera"
	"github.com/sensorviz/sensorviz/logging"
	"github.com/sensorviz/sensorviz/spatialmath"
)

// Config fully describes a frustum.
type Config struct {
	Camera     camera.Config
	Extrinsic  Extrinsic
	Convention Convention
	Style      Style
}

// Snapshot is everything a renderer or projection needs, published together so a reader never sees a
// placement from one configuration with the model or convention of another.
type Snapshot struct {
	Model      *camera.Model
	Extrinsic  Extrinsic
	Convention Convention
	Geometry   *Geometry
	Placement  Placement
}

// Frustum is a camera mounted on a moving vehicle. Mutating methods must be called from one goroutine;
// getters are safe from any goroutine.
type Frustum struct {
	logger logging.Logger

	snapshot      atomic.Pointer[Snapshot]
	visualization atomic.Pointer[Visualization]
	visible       atomic.Bool

	position r3.Vector
	rotation quat.Number
}

// New validates cfg and returns a visible frustum at the world origin.
func New(cfg Config, logger logging.Logger) (*Frustum, error) {
	f := &Frustum{logger: logger, rotation: quat.Number{Real: 1}}
	f.visible.Store(true)
	if err := f.SetParams(cfg); err != nil {
		return nil, err
	}
	return f, nil
}

// SetParams validates cfg, rebuilds the geometry and swaps it in. On error the previous state is kept.
func (f *Frustum) SetParams(cfg Config) error {
	model, err := camera.NewModel(cfg.Camera)
	if err != nil {
		return err
	}
	if cfg.Convention.Composition == "" {
		cfg.Convention.Composition = CompositionBaseChild
	}
	if _, err := ParseComposition(string(cfg.Convention.Composition)); err != nil {
		return err
	}
	if cfg.Style == (Style{}) {
		cfg.Style = DefaultStyle()
	}

	f.publish(Snapshot{
		Model:      model,
		Extrinsic:  cfg.Extrinsic,
		Convention: cfg.Convention,
		Geometry:   BuildGeometry(model, cfg.Style),
	})
	f.logger.Debugw("frustum rebuilt",
		"fov", model.VerticalFOVDegrees(),
		"aspect", model.AspectRatio(),
		"near", model.Near(),
		"far", model.Far(),
		"composition", cfg.Convention.Composition,
	)
	return nil
}

// Update moves the vehicle to sample. Without a rotation the last applied rotation is kept.
func (f *Frustum) Update(sample PoseSample) {
	f.position = sample.Position
	if sample.Rotation != nil {
		f.rotation = *sample.Rotation
	}
	f.publish(*f.snapshot.Load())
}

// publish recomputes the placement of next for the current vehicle pose and swaps it in.
func (f *Frustum) publish(next Snapshot) {
	next.Placement = ComposePlacement(next.Extrinsic, f.position, f.rotation, next.Convention.Composition)
	f.snapshot.Store(&next)
}

// Snapshot returns the current model, convention, geometry and placement as one consistent value.
func (f *Frustum) Snapshot() Snapshot {
	return *f.snapshot.Load()
}

// Model returns the current camera model.
func (f *Frustum) Model() *camera.Model {
	return f.snapshot.Load().Model
}

// Convention returns the current projection convention.
func (f *Frustum) Convention() Convention {
	return f.snapshot.Load().Convention
}

// Geometry returns the current camera-local geometry.
func (f *Frustum) Geometry() *Geometry {
	return f.snapshot.Load().Geometry
}

// Placement returns the current placement.
func (f *Frustum) Placement() Placement {
	return f.snapshot.Load().Placement
}

// WorldPose returns the camera's current world pose.
func (f *Frustum) WorldPose() spatialmath.Pose {
	return f.Placement().World()
}

// ProjectPoint projects a world point with the current placement.
func (f *Frustum) ProjectPoint(p r3.Vector) ProjectionResult {
	s := f.snapshot.Load()
	return Project(s.Model, s.Placement.World(), p)
}

// ProjectBatch projects world points with the current placement and convention, skipping invisible ones.
func (f *Frustum) ProjectBatch(points []r3.Vector) []PointProjection {
	s := f.snapshot.Load()
	results := ProjectBatch(s.Model, s.Placement.World(), points, s.Convention.ClipToFrustum)
	if skipped := len(points) - len(results); skipped > 0 {
		f.logger.Debugw("skipped points outside view", "skipped", skipped, "total", len(points))
	}
	return results
}

// VisualizeCorrespondences inverse-projects every observation to a near-plane marker, linking it to its
// paired world point when present, and publishes the batch.
func (f *Frustum) VisualizeCorrespondences(observations []Correspondence, opts MarkerOptions) *Visualization {
	s := f.snapshot.Load()
	world := s.Placement.World()
	vis := &Visualization{Kind: KindCorrespondences, Options: opts}
	for i, obs := range observations {
		marker, err := InverseProject(s.Model, world, obs, s.Convention)
		if err != nil {
			vis.Skipped++
			f.logger.Debugw("skipping observation", "index", i, "error", err)
			continue
		}
		vis.Markers = append(vis.Markers, Marker{Position: marker, Source: obs.WorldPoint, Index: i})
		if obs.WorldPoint != nil && opts.DrawLines {
			vis.Segments = append(vis.Segments, Segment{From: *obs.WorldPoint, To: marker})
		}
	}
	f.visualization.Store(vis)
	return vis
}

// VisualizePointProjections projects world points and places a marker on the near plane for each visible
// one, optionally linked back to its source point, and publishes the batch.
func (f *Frustum) VisualizePointProjections(points []r3.Vector, opts MarkerOptions) *Visualization {
	s := f.snapshot.Load()
	world := s.Placement.World()
	projections := ProjectBatch(s.Model, world, points, s.Convention.ClipToFrustum)

	vis := &Visualization{Kind: KindProjections, Options: opts, Skipped: len(points) - len(projections)}
	vis.Markers = make([]Marker, 0, len(projections))
	for _, proj := range projections {
		source := proj.Point
		marker := spatialmath.TransformPoint(world, r3.Vector{X: proj.U, Y: proj.V, Z: -s.Model.Near()})
		vis.Markers = append(vis.Markers, Marker{Position: marker, Source: &source, Index: proj.Index})
		if opts.DrawLines {
			vis.Segments = append(vis.Segments, Segment{From: source, To: marker})
		}
	}
	f.visualization.Store(vis)
	return vis
}

// Visualization returns the latest published batch, or nil.
func (f *Frustum) Visualization() *Visualization {
	return f.visualization.Load()
}

// ClearVisualizations drops the published batch.
func (f *Frustum) ClearVisualizations() {
	f.visualization.Store(nil)
}

// Show marks the frustum as drawn.
func (f *Frustum) Show() {
	f.visible.Store(true)
}

// Hide marks the frustum as hidden. Projection is unaffected.
func (f *Frustum) Hide() {
	f.visible.Store(false)
}

// Visible reports whether the frustum should be drawn.
func (f *Frustum) Visible() bool {
	return f.visible.Load()
}
