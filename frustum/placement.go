package frustum

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/sensorviz/sensorviz/spatialmath"
)

// Extrinsic is the camera's mounting offset relative to the vehicle pose.
type Extrinsic struct {
	Translation r3.Vector
	Orientation spatialmath.Orientation
}

func (e Extrinsic) rotation() quat.Number {
	if e.Orientation == nil {
		return quat.Number{Real: 1}
	}
	return e.Orientation.Quaternion()
}

// PoseSample is one vehicle pose. A nil Rotation leaves the previous rotation in place.
type PoseSample struct {
	Position  r3.Vector
	Rotation  *quat.Number
	Timestamp float64
}

// Placement is the camera's place in the world for one tick, split into the base node and the camera
// expressed in the base's frame.
type Placement struct {
	Base   spatialmath.Pose
	Camera spatialmath.Pose
}

// World returns the camera's world pose.
func (p Placement) World() spatialmath.Pose {
	return spatialmath.Compose(p.Base, p.Camera)
}

// Matrix returns the camera's world transform.
func (p Placement) Matrix() mgl64.Mat4 {
	return spatialmath.PoseToMatrix(p.World())
}

// ComposePlacement combines an extrinsic and a vehicle pose according to composition.
// rotation is used as given, non-unit quaternions are not renormalized.
func ComposePlacement(ext Extrinsic, position r3.Vector, rotation quat.Number, composition Composition) Placement {
	poseRotation := spatialmath.NewQuaternion(rotation)
	extRotation := spatialmath.NewQuaternion(ext.rotation())

	if composition == CompositionRigid {
		return Placement{
			Base:   spatialmath.NewPose(position, poseRotation),
			Camera: spatialmath.NewPose(ext.Translation, extRotation),
		}
	}
	return Placement{
		Base:   spatialmath.NewPoseFromPoint(position),
		Camera: spatialmath.NewPose(ext.Translation, spatialmath.ComposeOrientations(poseRotation, extRotation)),
	}
}
