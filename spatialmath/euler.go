package spatialmath

import (
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// EulerOrder names the sequence in which the three elemental rotations are composed. An order "ZXY"
// produces the rotation Rz·Rx·Ry, matching the scene-graph convention where the first letter is the
// outermost rotation.
type EulerOrder string

// Supported Euler orders.
const (
	EulerOrderXYZ EulerOrder = "XYZ"
	EulerOrderXZY EulerOrder = "XZY"
	EulerOrderYXZ EulerOrder = "YXZ"
	EulerOrderYZX EulerOrder = "YZX"
	EulerOrderZXY EulerOrder = "ZXY"
	EulerOrderZYX EulerOrder = "ZYX"
)

// ParseEulerOrder parses a case-insensitive order string. The empty string selects ZXY.
func ParseEulerOrder(s string) (EulerOrder, error) {
	if s == "" {
		return EulerOrderZXY, nil
	}
	order := EulerOrder(strings.ToUpper(s))
	switch order {
	case EulerOrderXYZ, EulerOrderXZY, EulerOrderYXZ, EulerOrderYZX, EulerOrderZXY, EulerOrderZYX:
		return order, nil
	default:
		return "", errors.Errorf("unsupported euler order %q", s)
	}
}

// OrderedEulerAngles are three angles in radians, Roll about X, Pitch about Y and Yaw about Z, applied
// in an explicit order. An empty Order means ZXY.
type OrderedEulerAngles struct {
	Roll  float64    `json:"roll"`
	Pitch float64    `json:"pitch"`
	Yaw   float64    `json:"yaw"`
	Order EulerOrder `json:"order"`
}

// NewOrderedEulerAngles returns Euler angles applied in the given order.
func NewOrderedEulerAngles(roll, pitch, yaw float64, order EulerOrder) *OrderedEulerAngles {
	return &OrderedEulerAngles{Roll: roll, Pitch: pitch, Yaw: yaw, Order: order}
}

// Quaternion returns orientation in quaternion representation.
func (oea *OrderedEulerAngles) Quaternion() quat.Number {
	order := oea.Order
	if order == "" {
		order = EulerOrderZXY
	}
	result := quat.Number{Real: 1}
	for i := 0; i < len(order); i++ {
		var theta float64
		switch order[i] {
		case 'X':
			theta = oea.Roll
		case 'Y':
			theta = oea.Pitch
		default:
			theta = oea.Yaw
		}
		result = quat.Mul(result, axisQuaternion(order[i], theta))
	}
	return result
}
