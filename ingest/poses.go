// Package ingest reads the text inputs of a visualization session: vehicle pose tables and
// 3D-to-2D correspondence lists.
package ingest

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"
	"gonum.org/v1/gonum/num/quat"

	"github.com/sensorviz/sensorviz/frustum"
	"github.com/sensorviz/sensorviz/logging"
	"github.com/sensorviz/sensorviz/utils"
)

// poseHeaderPrefix marks the optional header row of a pose table.
const poseHeaderPrefix = "timestamp,x,y,z"

// NormalizedExtent is the length of the longest side of a normalized trajectory.
const NormalizedExtent = 10.

// ErrNoPoses is returned when a pose table holds no usable row.
var ErrNoPoses = errors.New("no valid pose found")

// PoseOptions control pose table parsing.
type PoseOptions struct {
	// Normalize moves the trajectory's minimum corner to the origin, swaps Y and Z so that Y is height,
	// and scales it so that its longest side is NormalizedExtent.
	Normalize bool
}

// LoadPoses reads the pose table at path.
func LoadPoses(path string, opts PoseOptions, logger logging.Logger) ([]frustum.PoseSample, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	poses, err := ParsePoses(f, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "reading poses from %q", path)
	}
	logger.Infow("loaded poses", "file", path, "count", len(poses), "normalized", opts.Normalize)
	return poses, nil
}

// ParsePoses parses rows of "timestamp,x,y,z[,qx,qy,qz,qw]". Rows with fewer than four columns or
// non-numeric coordinates are skipped. The rotation is set only when all four quaternion components parse.
func ParsePoses(r io.Reader, opts PoseOptions) ([]frustum.PoseSample, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	var poses []frustum.PoseSample
	for row := 0; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read pose table")
		}
		if row == 0 && strings.HasPrefix(strings.TrimSpace(strings.Join(record, ",")), poseHeaderPrefix) {
			continue
		}
		if pose, ok := parsePoseRecord(record); ok {
			poses = append(poses, pose)
		}
	}
	if len(poses) == 0 {
		return nil, ErrNoPoses
	}
	if opts.Normalize {
		normalize(poses)
	}
	return poses, nil
}

func parsePoseRecord(record []string) (frustum.PoseSample, bool) {
	if len(record) < 4 {
		return frustum.PoseSample{}, false
	}
	values, ok := parseFloats(record[:4])
	if !ok || !utils.IsFinite(values[1:]...) {
		return frustum.PoseSample{}, false
	}
	pose := frustum.PoseSample{Timestamp: values[0], Position: r3.Vector{X: values[1], Y: values[2], Z: values[3]}}
	if len(record) >= 8 {
		if q, ok := parseFloats(record[4:8]); ok && utils.IsFinite(q...) {
			pose.Rotation = &quat.Number{Real: q[3], Imag: q[0], Jmag: q[1], Kmag: q[2]}
		}
	}
	return pose, true
}

func parseFloats(fields []string) ([]float64, bool) {
	values := make([]float64, len(fields))
	for i, field := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func normalize(poses []frustum.PoseSample) {
	minCorner := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	maxCorner := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, p := range poses {
		minCorner = r3.Vector{
			X: math.Min(minCorner.X, p.Position.X),
			Y: math.Min(minCorner.Y, p.Position.Y),
			Z: math.Min(minCorner.Z, p.Position.Z),
		}
		maxCorner = r3.Vector{
			X: math.Max(maxCorner.X, p.Position.X),
			Y: math.Max(maxCorner.Y, p.Position.Y),
			Z: math.Max(maxCorner.Z, p.Position.Z),
		}
	}
	extent := maxCorner.Sub(minCorner)
	maxRange := math.Max(extent.X, math.Max(extent.Y, extent.Z))
	scale := 1.
	if maxRange > 0 {
		scale = NormalizedExtent / maxRange
	}

	for i := range poses {
		d := poses[i].Position.Sub(minCorner).Mul(scale)
		poses[i].Position = r3.Vector{X: d.X, Y: d.Z, Z: d.Y}
		if q := poses[i].Rotation; q != nil {
			// swapping two axes mirrors the frame; the mirrored rotation turns about the swapped axis the other way
			swapped := quat.Number{Real: q.Real, Imag: -q.Imag, Jmag: -q.Kmag, Kmag: -q.Jmag}
			poses[i].Rotation = &swapped
		}
	}
}
