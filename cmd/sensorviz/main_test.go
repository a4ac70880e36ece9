package main

import (
	"bytes"
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/sensorviz/sensorviz/logging"
	"github.com/sensorviz/sensorviz/pointcloud"
	"github.com/sensorviz/sensorviz/spatialmath"
)

func writeScene(t *testing.T, cfg string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"scene.json":  cfg,
		"poses.csv":   "timestamp,x,y,z\n0,0,0,0\n1,1,0,0\n2,2,0,0\n",
		"matches.csv": "x,y,z,u,v\n0,0,-5,50,50\n0,0,-5,100,50\n",
	}
	for name, contents := range files {
		test.That(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o600), test.ShouldBeNil)
	}
	return filepath.Join(dir, "scene.json")
}

const sceneConfig = `{
  "camera": {"fov": 90, "aspect": 1, "near": 1, "far": 10},
  "data": {"poses": "poses.csv", "matches": "matches.csv", "image_width_px": 100, "image_height_px": 100},
  "playback": {"points_per_second": 1000}
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"sensorviz"}, args...))
	return out.String(), err
}

func TestFrustumCommand(t *testing.T) {
	fn := writeScene(t, sceneConfig)
	out, err := run(t, "--config", fn, "frustum", "--pose", "1")
	test.That(t, err, test.ShouldBeNil)

	var res frustumOutput
	test.That(t, json.Unmarshal([]byte(out), &res), test.ShouldBeNil)
	test.That(t, res.Position, test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, res.Visible, test.ShouldBeTrue)
	test.That(t, res.Geometry.Near.Width, test.ShouldAlmostEqual, 2)
	test.That(t, spatialmath.R3VectorAlmostEqual(res.WorldCorners[0], res.Geometry.Corners[0].Add(r3.Vector{X: 1}), 1e-9),
		test.ShouldBeTrue)

	_, err = run(t, "--config", fn, "frustum", "--pose", "3")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProjectCommandFallsBackToTestCloud(t *testing.T) {
	fn := writeScene(t, sceneConfig)
	out, err := run(t, "--config", fn, "project")
	test.That(t, err, test.ShouldBeNil)

	var res struct {
		Total       int `json:"total"`
		Projections []struct {
			Visible bool `json:"visible"`
		} `json:"projections"`
	}
	test.That(t, json.Unmarshal([]byte(out), &res), test.ShouldBeNil)
	test.That(t, res.Total, test.ShouldEqual, testCloudSize)
	test.That(t, len(res.Projections), test.ShouldBeLessThanOrEqualTo, testCloudSize)
	for _, p := range res.Projections {
		test.That(t, p.Visible, test.ShouldBeTrue)
	}
}

func TestProjectCommandWritesVisiblePoints(t *testing.T) {
	fn := writeScene(t, `{
  "camera": {"fov": 90, "aspect": 1, "near": 1, "far": 10},
  "convention": {"clip_to_frustum": true},
  "data": {"poses": "poses.csv"}
}`)
	dir := t.TempDir()

	red := color.NRGBA{R: 255, A: 255}
	m := pointcloud.New()
	test.That(t, m.Set(r3.Vector{Z: -5}, pointcloud.NewColoredData(red)), test.ShouldBeNil)
	test.That(t, m.Set(r3.Vector{Z: 5}, pointcloud.NewColoredData(red)), test.ShouldBeNil)
	test.That(t, m.Set(r3.Vector{X: 50, Z: -5}, pointcloud.NewColoredData(red)), test.ShouldBeNil)
	mapFile := filepath.Join(dir, "map.pcd")
	test.That(t, pointcloud.WriteToPCDFile(m, mapFile, pointcloud.PCDAscii), test.ShouldBeNil)

	for _, binary := range []bool{false, true} {
		outFile := filepath.Join(dir, "visible.pcd")
		args := []string{"--config", fn, "project", "--map", mapFile, "--write-visible", outFile}
		if binary {
			args = append(args, "--binary")
		}
		_, err := run(t, args...)
		test.That(t, err, test.ShouldBeNil)

		visible, err := pointcloud.NewFromFile(outFile, logging.NewTestLogger(t))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, visible.Size(), test.ShouldEqual, 1)
		d, ok := visible.At(0, 0, -5)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, d.HasColor(), test.ShouldBeTrue)
		r, _, _ := d.RGB255()
		test.That(t, r, test.ShouldEqual, uint8(255))
	}
}

func TestMatchCommand(t *testing.T) {
	fn := writeScene(t, sceneConfig)
	histogram := filepath.Join(t.TempDir(), "residuals.svg")
	out, err := run(t, "--config", fn, "match", "--histogram", histogram)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "n=2 skipped=0")
	_, err = os.Stat(histogram)
	test.That(t, err, test.ShouldBeNil)
}

func TestPlayCommand(t *testing.T) {
	fn := writeScene(t, sceneConfig)
	out, err := run(t, "--config", fn, "play")
	test.That(t, err, test.ShouldBeNil)

	var res struct {
		Shown    int       `json:"shown"`
		Position r3.Vector `json:"position"`
	}
	test.That(t, json.Unmarshal([]byte(out), &res), test.ShouldBeNil)
	test.That(t, res.Shown, test.ShouldEqual, 3)
	test.That(t, res.Position, test.ShouldResemble, r3.Vector{X: 2})
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "--config", writeScene(t, sceneConfig), "validate")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "configuration is valid")

	out, err = run(t, "--config", writeScene(t, `{"camera": {"fov": 0, "aspect": 1}, "playback": {"lerp_factor": 2}}`), "validate")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "2 problem(s)")
	test.That(t, out, test.ShouldContainSubstring, "lerp_factor")
}

func TestLogFile(t *testing.T) {
	fn := writeScene(t, sceneConfig)
	logFile := filepath.Join(t.TempDir(), "sensorviz.log")
	_, err := run(t, "--config", fn, "--debug", "--log-file", logFile, "frustum")
	test.That(t, err, test.ShouldBeNil)

	logs, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logs), test.ShouldContainSubstring, "camera configured")
}
