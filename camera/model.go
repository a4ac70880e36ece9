// Package camera resolves pinhole camera parameters into an immutable camera model.
//
// A camera is configured either with a vertical field of view and aspect ratio or with a pinhole
// intrinsic matrix. When intrinsics are given they win: the field of view and aspect ratio are
// derived from them and any explicitly supplied values are ignored.
package camera

import (
	"math"
)

// Default clipping planes applied by configuration layers when none are given.
const (
	DefaultNear = 0.1
	DefaultFar  = 10.
)

// Config is the user-facing camera description.
type Config struct {
	FOV        float64                  `json:"fov,omitempty"`
	Aspect     float64                  `json:"aspect,omitempty"`
	Near       float64                  `json:"near"`
	Far        float64                  `json:"far"`
	Intrinsics *PinholeCameraIntrinsics `json:"intrinsics,omitempty"`
}

// Model is a canonical, validated camera. It is never mutated; reconfiguration creates a new Model.
type Model struct {
	verticalFOV float64
	aspect      float64
	near        float64
	far         float64
	intrinsics  *PinholeCameraIntrinsics
}

// NewModel validates cfg and resolves it into a Model.
func NewModel(cfg Config) (*Model, error) {
	m := &Model{near: cfg.Near, far: cfg.Far}

	switch {
	case cfg.Intrinsics != nil:
		if err := cfg.Intrinsics.CheckValid(); err != nil {
			return nil, err
		}
		intrinsics := *cfg.Intrinsics
		m.intrinsics = &intrinsics
		m.verticalFOV = intrinsics.VerticalFOVDegrees()
		m.aspect = intrinsics.AspectRatio()
	case cfg.FOV != 0 || cfg.Aspect != 0:
		m.verticalFOV = cfg.FOV
		m.aspect = cfg.Aspect
	default:
		return nil, NewConfigurationError("either fov/aspect or intrinsics must be provided")
	}

	if err := m.checkValid(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Model) checkValid() error {
	if math.IsNaN(m.verticalFOV) || m.verticalFOV <= 0 || m.verticalFOV >= 180 {
		return NewConfigurationError("vertical fov must be in (0, 180) degrees, got %v", m.verticalFOV)
	}
	if math.IsNaN(m.aspect) || math.IsInf(m.aspect, 0) || m.aspect <= 0 {
		return NewConfigurationError("aspect ratio must be positive, got %v", m.aspect)
	}
	if math.IsNaN(m.near) || m.near <= 0 {
		return NewConfigurationError("near plane must be positive, got %v", m.near)
	}
	if math.IsNaN(m.far) || m.far <= m.near {
		return NewConfigurationError("far plane (%v) must be beyond near plane (%v)", m.far, m.near)
	}
	return nil
}

// VerticalFOVDegrees returns the vertical field of view in degrees.
func (m *Model) VerticalFOVDegrees() float64 {
	return m.verticalFOV
}

// AspectRatio returns width over height.
func (m *Model) AspectRatio() float64 {
	return m.aspect
}

// Near returns the near clipping distance.
func (m *Model) Near() float64 {
	return m.near
}

// Far returns the far clipping distance.
func (m *Model) Far() float64 {
	return m.far
}

// Intrinsics returns a copy of the explicit intrinsics, or nil if the model was built from fov/aspect.
func (m *Model) Intrinsics() *PinholeCameraIntrinsics {
	if m.intrinsics == nil {
		return nil
	}
	intrinsics := *m.intrinsics
	return &intrinsics
}

// Config returns a Config that resolves to an identical Model.
func (m *Model) Config() Config {
	return Config{FOV: m.verticalFOV, Aspect: m.aspect, Near: m.near, Far: m.far, Intrinsics: m.Intrinsics()}
}

// EffectiveIntrinsics returns the focal parameters used for projection. Without explicit intrinsics
// they are synthesized from the field of view and near plane:
// fy = near·tan(fov/2), fx = fy/(aspect·0.5), cx = cy = 0.
func (m *Model) EffectiveIntrinsics() FocalParams {
	if m.intrinsics != nil {
		pp := m.intrinsics.PrincipalPoint()
		return FocalParams{Fx: m.intrinsics.Fx, Fy: m.intrinsics.Fy, Cx: pp.X, Cy: pp.Y}
	}
	halfTan := m.near * math.Tan(m.verticalFOV*math.Pi/360)
	return FocalParams{Fx: halfTan / (m.aspect * 0.5), Fy: halfTan}
}

// PlaneSizeAt returns the width and height of the view rectangle at distance d using the given aspect.
func (m *Model) PlaneSizeAt(d, aspect float64) (width, height float64) {
	fovRad := m.verticalFOV * math.Pi / 180
	height = 2 * math.Tan(fovRad/2) * d
	width = height * aspect
	return width, height
}

// NearPlaneSize returns the width and height of the near clipping rectangle.
func (m *Model) NearPlaneSize() (width, height float64) {
	return m.PlaneSizeAt(m.near, m.aspect)
}

// FarPlaneSize returns the width and height of the far clipping rectangle.
func (m *Model) FarPlaneSize() (width, height float64) {
	return m.PlaneSizeAt(m.far, m.aspect)
}

// Equal reports whether two models describe the same camera.
func (m *Model) Equal(other *Model) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.verticalFOV != other.verticalFOV || m.aspect != other.aspect || m.near != other.near || m.far != other.far {
		return false
	}
	if (m.intrinsics == nil) != (other.intrinsics == nil) {
		return false
	}
	return m.intrinsics == nil || *m.intrinsics == *other.intrinsics
}
