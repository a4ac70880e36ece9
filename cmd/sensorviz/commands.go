package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/num/quat"

	"github.com/sensorviz/sensorviz/config"
	"github.com/sensorviz/sensorviz/frustum"
	"github.com/sensorviz/sensorviz/ingest"
	"github.com/sensorviz/sensorviz/logging"
	"github.com/sensorviz/sensorviz/playback"
	"github.com/sensorviz/sensorviz/pointcloud"
	"github.com/sensorviz/sensorviz/report"
	"github.com/sensorviz/sensorviz/spatialmath"
)

const (
	syntheticTrajectoryLength = 1000
	testCloudSize             = 20000
)

// scene is everything a command needs from the configuration.
type scene struct {
	cfg     *config.Config
	frustum *frustum.Frustum
	seed    int64
	logger  logging.Logger
}

func loadScene(c *cli.Context, logger logging.Logger) (*scene, error) {
	cfg, err := config.Read(c.String(flagConfig), logger)
	if err != nil {
		return nil, err
	}
	fcfg, err := cfg.FrustumConfig()
	if err != nil {
		return nil, err
	}
	f, err := frustum.New(fcfg, logger.Sublogger("frustum"))
	if err != nil {
		return nil, err
	}
	m := f.Model()
	logger.Debugw("camera configured", "fov", m.VerticalFOVDegrees(), "aspect", m.AspectRatio())
	return &scene{
		cfg:     cfg,
		frustum: f,
		seed:    c.Int64(flagSeed),
		logger:  logger,
	}, nil
}

// poses loads the configured trajectory, falling back to a synthetic one when it is missing or unreadable.
func (s *scene) poses() []frustum.PoseSample {
	if path := s.cfg.ResolvePath(s.cfg.Data.Poses); path != "" {
		poses, err := ingest.LoadPoses(path, ingest.PoseOptions{Normalize: s.cfg.Data.NormalizePoses}, s.logger)
		if err == nil {
			return poses
		}
		s.logger.Warnw("falling back to a synthetic trajectory", "path", path, "error", err)
	}
	return ingest.GenerateTrajectory(syntheticTrajectoryLength, rand.New(rand.NewSource(s.seed))) //nolint:gosec
}

// placeAt moves the frustum through the trajectory up to pose idx. A negative idx leaves it at the origin.
func (s *scene) placeAt(idx int) error {
	if idx < 0 {
		return nil
	}
	poses := s.poses()
	if idx >= len(poses) {
		return errors.Errorf("pose %d out of range, trajectory has %d poses", idx, len(poses))
	}
	// earlier poses matter since a sample without rotation keeps the previous one
	for _, p := range poses[:idx+1] {
		s.frustum.Update(p)
	}
	return nil
}

// cloud loads the map at path, or the configured map, falling back to a synthetic test cloud.
func (s *scene) cloud(path string) pointcloud.PointCloud {
	if path == "" {
		path = s.cfg.ResolvePath(s.cfg.Data.Map)
	}
	if path != "" {
		pc, err := pointcloud.NewFromFile(path, s.logger)
		if err == nil {
			return pc
		}
		s.logger.Warnw("falling back to a synthetic test cloud", "path", path, "error", err)
	}
	return pointcloud.GenerateTestCloud(testCloudSize, rand.New(rand.NewSource(s.seed+1))) //nolint:gosec
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt)
}

func validateAction(c *cli.Context) error {
	err := config.Validate(c.String(flagConfig))
	if err == nil {
		fmt.Fprintln(c.App.Writer, "configuration is valid")
		return nil
	}
	errs := multierr.Errors(err)
	for _, e := range errs {
		fmt.Fprintf(c.App.Writer, "- %v\n", e)
	}
	return errors.Errorf("configuration has %d problem(s)", len(errs))
}

type frustumOutput struct {
	Geometry     *frustum.Geometry  `json:"geometry"`
	WorldCorners [8]r3.Vector       `json:"world_corners"`
	Position     r3.Vector          `json:"position"`
	Orientation  quat.Number        `json:"orientation"`
	Convention   frustum.Convention `json:"convention"`
	Visible      bool               `json:"visible"`
}

func frustumAction(c *cli.Context, logger logging.Logger) error {
	s, err := loadScene(c, logger)
	if err != nil {
		return err
	}
	if err := s.placeAt(c.Int(flagPose)); err != nil {
		return err
	}

	snap := s.frustum.Snapshot()
	world := snap.Placement.World()
	out := frustumOutput{
		Geometry:    snap.Geometry,
		Position:    world.Point(),
		Orientation: world.Orientation().Quaternion(),
		Convention:  snap.Convention,
		Visible:     s.frustum.Visible(),
	}
	for i, corner := range out.Geometry.Corners {
		out.WorldCorners[i] = spatialmath.TransformPoint(world, corner)
	}
	return writeJSON(c.App.Writer, out)
}

func projectAction(c *cli.Context, logger logging.Logger) error {
	s, err := loadScene(c, logger)
	if err != nil {
		return err
	}
	var cloud pointcloud.PointCloud
	var g errgroup.Group
	g.Go(func() error {
		return s.placeAt(c.Int(flagPose))
	})
	g.Go(func() error {
		cloud = s.cloud(c.String(flagMap))
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Infow("map ready",
		"points", cloud.Size(),
		"viewing_distance", pointcloud.FitDistance(cloud.MetaData(), s.frustum.Model().VerticalFOVDegrees()))
	points := pointcloud.Positions(cloud)
	projections := s.frustum.ProjectBatch(points)

	if fn := c.String(flagWrite); fn != "" {
		outputType := pointcloud.PCDAscii
		if c.Bool(flagBinary) {
			outputType = pointcloud.PCDBinary
		}
		if err := writeVisible(cloud, projections, fn, outputType); err != nil {
			return err
		}
		logger.Infow("visible points written", "path", fn, "points", len(projections))
	}

	if c.Bool(flagVisualize) {
		return writeJSON(c.App.Writer, s.frustum.VisualizePointProjections(points, frustum.DefaultProjectionOptions()))
	}
	return writeJSON(c.App.Writer, struct {
		Total       int                       `json:"total"`
		Projections []frustum.PointProjection `json:"projections"`
	}{len(points), projections})
}

// writeVisible saves the points of cloud that survived projection, keeping their color.
func writeVisible(cloud pointcloud.PointCloud, projections []frustum.PointProjection, fn string, outputType pointcloud.PCDType) error {
	visible := pointcloud.NewWithPrealloc(len(projections))
	for _, p := range projections {
		d, ok := cloud.At(p.Point.X, p.Point.Y, p.Point.Z)
		if !ok {
			d = pointcloud.NewBasicData()
		}
		if err := visible.Set(p.Point, d); err != nil {
			return err
		}
	}
	return pointcloud.WriteToPCDFile(visible, fn, outputType)
}

func matchAction(c *cli.Context, logger logging.Logger) error {
	s, err := loadScene(c, logger)
	if err != nil {
		return err
	}
	path := s.cfg.ResolvePath(s.cfg.Data.Matches)
	if path == "" {
		return errors.New("no correspondence file configured")
	}
	width, height, ok := s.cfg.ImageSize()
	if !ok {
		return errors.New("image size unknown, set camera intrinsics or data.image_width_px/image_height_px")
	}
	if err := s.placeAt(c.Int(flagPose)); err != nil {
		return err
	}

	matches, err := ingest.LoadMatches(path, logger)
	if err != nil {
		return err
	}
	observations := ingest.Correspondences(matches, width, height)
	vis := s.frustum.VisualizeCorrespondences(observations, frustum.DefaultCorrespondenceOptions())
	logger.Infow("correspondences placed", "markers", len(vis.Markers), "skipped", vis.Skipped)

	r, err := report.FromFrustum(s.frustum, observations)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, r.String())

	if fn := c.String(flagHistogram); fn != "" {
		if err := r.SaveHistogram(fn, c.Int(flagBins)); err != nil {
			return err
		}
		logger.Infow("histogram saved", "path", fn)
	}
	return nil
}

func playAction(c *cli.Context, logger logging.Logger) error {
	s, err := loadScene(c, logger)
	if err != nil {
		return err
	}
	player := playback.NewPlayer(s.poses(), s.cfg.Playback.PointsPerSecond)
	if c.IsSet(flagSpeed) {
		if err := player.SetSpeed(c.Float64(flagSpeed)); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext(c)
	defer cancel()
	runner := &playback.Runner{
		Player:  player,
		Frustum: s.frustum,
		Camera:  playback.NewFollowCamera(*s.cfg.Playback.FollowOffset, s.cfg.Playback.LerpFactor),
		Logger:  logger.Sublogger("playback"),
		OnFrame: func(fr playback.Frame) {
			if len(fr.Revealed) > 0 {
				logger.Debugw("frame", "revealed", len(fr.Revealed), "camera", fr.Camera.Position)
			}
		},
	}
	if err := runner.Run(ctx); err != nil {
		return err
	}

	world := s.frustum.WorldPose()
	return writeJSON(c.App.Writer, struct {
		Shown       int         `json:"shown"`
		Position    r3.Vector   `json:"position"`
		Orientation quat.Number `json:"orientation"`
	}{len(player.Shown()), world.Point(), world.Orientation().Quaternion()})
}

func watchAction(c *cli.Context, logger logging.Logger) error {
	s, err := loadScene(c, logger)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(c)
	defer cancel()

	out := c.App.Writer
	if err := writeJSON(out, s.frustum.Geometry()); err != nil {
		return err
	}
	return config.Watch(ctx, c.String(flagConfig), logger, func(cfg *config.Config) {
		fcfg, err := cfg.FrustumConfig()
		if err == nil {
			err = s.frustum.SetParams(fcfg)
		}
		if err != nil {
			logger.Warnw("keeping previous frustum", "error", err)
			return
		}
		if err := writeJSON(out, s.frustum.Geometry()); err != nil {
			logger.Warnw("cannot write geometry", "error", err)
		}
	})
}
