// Package config defines the scene configuration file of a visualization session.
package config

import (
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"github.com/sensorviz/sensorviz/camera"
	"github.com/sensorviz/sensorviz/frustum"
	"github.com/sensorviz/sensorviz/playback"
)

// Config is the whole scene configuration.
type Config struct {
	Camera     Camera     `json:"camera"`
	Convention Convention `json:"convention"`
	Data       Data       `json:"data"`
	Playback   Playback   `json:"playback"`

	// ConfigFilePath is the file the config was read from, if any. Relative data paths resolve against it.
	ConfigFilePath string `json:"-"`
}

// Camera describes the camera and how it is mounted.
type Camera struct {
	FOV        float64                         `json:"fov,omitempty"`
	Aspect     float64                         `json:"aspect,omitempty"`
	Near       float64                         `json:"near,omitempty"`
	Far        float64                         `json:"far,omitempty"`
	Intrinsics *camera.PinholeCameraIntrinsics `json:"intrinsics,omitempty"`

	ExtrinsicTranslation r3.Vector       `json:"extrinsic_translation"`
	ExtrinsicRotation    *RotationConfig `json:"extrinsic_rotation,omitempty"`
	Style                *Style          `json:"style,omitempty"`
}

// Style overrides the frustum's look. Zero fields keep their defaults.
type Style struct {
	Color        *uint32 `json:"color,omitempty"`
	LineOpacity  float64 `json:"line_opacity,omitempty"`
	PlaneOpacity float64 `json:"plane_opacity,omitempty"`
}

// Convention selects projection conventions.
type Convention struct {
	Composition           string `json:"composition,omitempty"`
	InvertCorrectedAspect bool   `json:"invert_corrected_aspect"`
	ClipToFrustum         bool   `json:"clip_to_frustum"`
}

// Data names the input files.
type Data struct {
	Map            string `json:"map,omitempty"`
	Poses          string `json:"poses,omitempty"`
	Matches        string `json:"matches,omitempty"`
	NormalizePoses bool   `json:"normalize_poses"`

	// Image size of the correspondence pixels when the camera has no intrinsics.
	ImageWidth  int `json:"image_width_px,omitempty"`
	ImageHeight int `json:"image_height_px,omitempty"`
}

// Playback configures trajectory animation.
type Playback struct {
	PointsPerSecond float64    `json:"points_per_second,omitempty"`
	LerpFactor      float64    `json:"lerp_factor,omitempty"`
	FollowOffset    *r3.Vector `json:"follow_offset,omitempty"`
}

// applyDefaults fills every unset optional field.
func (c *Config) applyDefaults() {
	if c.Camera.Near == 0 {
		c.Camera.Near = camera.DefaultNear
	}
	if c.Camera.Far == 0 {
		c.Camera.Far = camera.DefaultFar
	}
	if c.Convention.Composition == "" {
		c.Convention.Composition = string(frustum.CompositionBaseChild)
	}
	if c.Playback.PointsPerSecond == 0 {
		c.Playback.PointsPerSecond = playback.DefaultPointsPerSecond
	}
	if c.Playback.LerpFactor == 0 {
		c.Playback.LerpFactor = playback.DefaultLerpFactor
	}
	if c.Playback.FollowOffset == nil {
		offset := playback.DefaultFollowOffset
		c.Playback.FollowOffset = &offset
	}
}

// Validate reports every problem in the config.
func (c *Config) Validate() error {
	var errs error
	if _, err := camera.NewModel(c.CameraConfig()); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError("camera", err))
	}
	if c.Camera.ExtrinsicRotation != nil {
		if _, err := c.Camera.ExtrinsicRotation.ParseConfig(); err != nil {
			errs = multierr.Append(errs, goutils.NewConfigValidationError("camera.extrinsic_rotation", err))
		}
	}
	if s := c.Camera.Style; s != nil {
		if s.LineOpacity < 0 || s.LineOpacity > 1 {
			errs = multierr.Append(errs, goutils.NewConfigValidationError("camera.style",
				errors.Errorf("line_opacity must be in [0, 1], got %v", s.LineOpacity)))
		}
		if s.PlaneOpacity < 0 || s.PlaneOpacity > 1 {
			errs = multierr.Append(errs, goutils.NewConfigValidationError("camera.style",
				errors.Errorf("plane_opacity must be in [0, 1], got %v", s.PlaneOpacity)))
		}
	}
	if _, err := frustum.ParseComposition(c.Convention.Composition); err != nil {
		errs = multierr.Append(errs, goutils.NewConfigValidationError("convention.composition", err))
	}
	if c.Playback.PointsPerSecond < 0 {
		errs = multierr.Append(errs, goutils.NewConfigValidationError("playback",
			errors.Errorf("points_per_second must be positive, got %v", c.Playback.PointsPerSecond)))
	}
	if c.Playback.LerpFactor < 0 || c.Playback.LerpFactor > 1 {
		errs = multierr.Append(errs, goutils.NewConfigValidationError("playback",
			errors.Errorf("lerp_factor must be in (0, 1], got %v", c.Playback.LerpFactor)))
	}
	if c.Data.Matches != "" && c.Camera.Intrinsics == nil && (c.Data.ImageWidth <= 0 || c.Data.ImageHeight <= 0) {
		errs = multierr.Append(errs, goutils.NewConfigValidationFieldRequiredError("data", "image_width_px/image_height_px"))
	}
	return errs
}

// CameraConfig returns the camera part of the config.
func (c *Config) CameraConfig() camera.Config {
	return camera.Config{
		FOV:        c.Camera.FOV,
		Aspect:     c.Camera.Aspect,
		Near:       c.Camera.Near,
		Far:        c.Camera.Far,
		Intrinsics: c.Camera.Intrinsics,
	}
}

// FrustumConfig converts the config into the parameters of a frustum.
func (c *Config) FrustumConfig() (frustum.Config, error) {
	composition, err := frustum.ParseComposition(c.Convention.Composition)
	if err != nil {
		return frustum.Config{}, err
	}
	ext := frustum.Extrinsic{Translation: c.Camera.ExtrinsicTranslation}
	if c.Camera.ExtrinsicRotation != nil {
		if ext.Orientation, err = c.Camera.ExtrinsicRotation.ParseConfig(); err != nil {
			return frustum.Config{}, err
		}
	}

	style := frustum.DefaultStyle()
	if s := c.Camera.Style; s != nil {
		if s.Color != nil {
			style.Color = *s.Color
		}
		if s.LineOpacity != 0 {
			style.LineOpacity = s.LineOpacity
		}
		if s.PlaneOpacity != 0 {
			style.PlaneOpacity = s.PlaneOpacity
		}
	}

	return frustum.Config{
		Camera:    c.CameraConfig(),
		Extrinsic: ext,
		Convention: frustum.Convention{
			Composition:           composition,
			InvertCorrectedAspect: c.Convention.InvertCorrectedAspect,
			ClipToFrustum:         c.Convention.ClipToFrustum,
		},
		Style: style,
	}, nil
}

// ImageSize returns the pixel size correspondences are expressed in. Intrinsics win over the data section.
func (c *Config) ImageSize() (width, height float64, ok bool) {
	if in := c.Camera.Intrinsics; in != nil {
		return float64(in.Width), float64(in.Height), true
	}
	if c.Data.ImageWidth > 0 && c.Data.ImageHeight > 0 {
		return float64(c.Data.ImageWidth), float64(c.Data.ImageHeight), true
	}
	return 0, 0, false
}

// ResolvePath returns p relative to the config file's directory unless it is absolute or empty.
func (c *Config) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) || c.ConfigFilePath == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.ConfigFilePath), p)
}
