package frustum

import (
	"strings"

	"github.com/pkg/errors"
)

// Composition selects how the extrinsic offset and the vehicle pose are combined into a camera placement.
type Composition string

const (
	// CompositionBaseChild places a base node at the pose position and hangs the camera off it at the
	// extrinsic translation. The pose rotation turns the camera in place and never moves the offset.
	CompositionBaseChild Composition = "base_child"
	// CompositionRigid treats the extrinsic as a rigid mount: the offset rotates with the vehicle.
	CompositionRigid Composition = "rigid"
)

// ParseComposition parses a composition name. The empty string selects CompositionBaseChild.
func ParseComposition(s string) (Composition, error) {
	switch c := Composition(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CompositionBaseChild, nil
	case CompositionBaseChild, CompositionRigid:
		return c, nil
	default:
		return "", errors.Errorf("unknown composition %q, expected %q or %q", s, CompositionBaseChild, CompositionRigid)
	}
}

// Convention holds the deployment-level sign and axis choices of the projector.
type Convention struct {
	Composition Composition `json:"composition"`
	// InvertCorrectedAspect scales the axis-corrected inverse projection by 1/aspect instead of aspect.
	InvertCorrectedAspect bool `json:"invert_corrected_aspect"`
	// ClipToFrustum drops projections outside the near/far range or the lateral cone from batches.
	ClipToFrustum bool `json:"clip_to_frustum"`
}

// DefaultConvention returns the base/child composition with no clipping.
func DefaultConvention() Convention {
	return Convention{Composition: CompositionBaseChild}
}
