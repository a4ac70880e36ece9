package config

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/sensorviz/sensorviz/spatialmath"
	"github.com/sensorviz/sensorviz/utils"
)

// RotationType names a rotation encoding.
type RotationType string

// Supported rotation encodings.
const (
	RotationTypeEuler        RotationType = "euler"
	RotationTypeEulerDegrees RotationType = "euler_degrees"
	RotationTypeQuaternion   RotationType = "quaternion"
)

// RotationConfig holds the underlying type of rotation, and the value.
type RotationConfig struct {
	Type  RotationType    `json:"type"`
	Value json.RawMessage `json:"value"`
}

type eulerConfig struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Order string  `json:"order"`
}

type quaternionConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// ParseConfig converts a RotationConfig into an Orientation. Euler angles default to the ZXY order.
func (config *RotationConfig) ParseConfig() (spatialmath.Orientation, error) {
	switch config.Type {
	case RotationTypeEuler, RotationTypeEulerDegrees:
		var e eulerConfig
		if err := json5.Unmarshal(config.Value, &e); err != nil {
			return nil, errors.Wrap(err, "invalid euler rotation")
		}
		order, err := spatialmath.ParseEulerOrder(e.Order)
		if err != nil {
			return nil, err
		}
		if config.Type == RotationTypeEulerDegrees {
			e.Roll, e.Pitch, e.Yaw = utils.DegToRad(e.Roll), utils.DegToRad(e.Pitch), utils.DegToRad(e.Yaw)
		}
		return spatialmath.NewOrderedEulerAngles(e.Roll, e.Pitch, e.Yaw, order), nil
	case RotationTypeQuaternion:
		var q quaternionConfig
		if err := json5.Unmarshal(config.Value, &q); err != nil {
			return nil, errors.Wrap(err, "invalid quaternion rotation")
		}
		if q.X == 0 && q.Y == 0 && q.Z == 0 && q.W == 0 {
			return nil, errors.New("quaternion must not be zero")
		}
		return spatialmath.NewQuaternionXYZW(q.X, q.Y, q.Z, q.W), nil
	default:
		return nil, errors.Errorf("rotation type %q not recognized", config.Type)
	}
}
