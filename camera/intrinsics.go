package camera

import (
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"
)

// PinholeCameraIntrinsics holds the parameters necessary to do a perspective projection of a 3D scene to the 2D plane.
// Ppx and Ppy are the principal point; they are carried through unchanged in whatever units they were given.
type PinholeCameraIntrinsics struct {
	Width  int     `json:"width_px"`
	Height int     `json:"height_px"`
	Fx     float64 `json:"fx"`
	Fy     float64 `json:"fy"`
	Ppx    float64 `json:"ppx"`
	Ppy    float64 `json:"ppy"`
}

// CheckValid checks if the fields for PinholeCameraIntrinsics have valid inputs.
func (params *PinholeCameraIntrinsics) CheckValid() error {
	if params == nil {
		return NewConfigurationError("intrinsics do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return NewConfigurationError("invalid size (%#v, %#v)", params.Width, params.Height)
	}
	if params.Fx <= 0 {
		return NewConfigurationError("invalid focal length Fx = %#v", params.Fx)
	}
	if params.Fy <= 0 {
		return NewConfigurationError("invalid focal length Fy = %#v", params.Fy)
	}
	return nil
}

// VerticalFOVDegrees returns the vertical field of view implied by the image height and Fy.
func (params *PinholeCameraIntrinsics) VerticalFOVDegrees() float64 {
	return 2 * math.Atan(float64(params.Height)/(2*params.Fy)) * (180 / math.Pi)
}

// AspectRatio returns width over height.
func (params *PinholeCameraIntrinsics) AspectRatio() float64 {
	return float64(params.Width) / float64(params.Height)
}

// PrincipalPoint returns (Ppx, Ppy).
func (params *PinholeCameraIntrinsics) PrincipalPoint() r2.Point {
	return r2.Point{X: params.Ppx, Y: params.Ppy}
}

// CameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *PinholeCameraIntrinsics) CameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}

// FocalParams are the focal lengths and principal point actually used by the projector, either the
// explicit intrinsics or values synthesized from the field of view.
type FocalParams struct {
	Fx, Fy, Cx, Cy float64
}
