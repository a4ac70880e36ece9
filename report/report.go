// Package report measures how well correspondences agree with the camera placement.
package report

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/sensorviz/sensorviz/camera"
	"github.com/sensorviz/sensorviz/frustum"
	"github.com/sensorviz/sensorviz/spatialmath"
)

// Residual compares where a world point lands on the near plane with where its observed pixel does.
type Residual struct {
	Index         int       `json:"index"`
	World         r3.Vector `json:"world"`
	Pixel         r2.Point  `json:"pixel"`
	ForwardMarker r3.Vector `json:"forward_marker"`
	InverseMarker r3.Vector `json:"inverse_marker"`
	Distance      float64   `json:"distance"`
	Visible       bool      `json:"visible"`
}

// Summary holds statistics over the distances of visible residuals.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`
}

// Report is the residual of every usable correspondence plus their summary.
type Report struct {
	Residuals []Residual `json:"residuals"`
	Skipped   int        `json:"skipped"`
	Summary   Summary    `json:"summary"`
}

// Compute builds a report for observations seen by camera m at world. Observations without a world
// point, or whose pixel is invalid, are counted as skipped. Residuals whose world point is behind the
// camera are kept but excluded from the summary.
func Compute(m *camera.Model, world spatialmath.Pose, conv frustum.Convention, observations []frustum.Correspondence) (*Report, error) {
	r := &Report{}
	for i, obs := range observations {
		if obs.WorldPoint == nil {
			r.Skipped++
			continue
		}
		inverse, err := frustum.InverseProject(m, world, obs, conv)
		if err != nil {
			r.Skipped++
			continue
		}
		res := Residual{Index: i, World: *obs.WorldPoint, Pixel: obs.Pixel, InverseMarker: inverse}
		if proj := frustum.Project(m, world, *obs.WorldPoint); proj.Visible {
			res.Visible = true
			res.ForwardMarker = spatialmath.TransformPoint(world, r3.Vector{X: proj.U, Y: proj.V, Z: -m.Near()})
			res.Distance = res.ForwardMarker.Sub(inverse).Norm()
		}
		r.Residuals = append(r.Residuals, res)
	}

	distances := r.Distances()
	if len(distances) == 0 {
		return r, nil
	}
	summary, err := Summarize(distances)
	if err != nil {
		return nil, err
	}
	r.Summary = summary
	return r, nil
}

// FromFrustum computes a report with the frustum's current model, placement and convention.
func FromFrustum(f *frustum.Frustum, observations []frustum.Correspondence) (*Report, error) {
	s := f.Snapshot()
	return Compute(s.Model, s.Placement.World(), s.Convention, observations)
}

// Distances returns the distances of visible residuals in order.
func (r *Report) Distances() []float64 {
	return lo.FilterMap(r.Residuals, func(res Residual, _ int) (float64, bool) {
		return res.Distance, res.Visible
	})
}

// Summarize computes statistics over distances, which must not be empty.
func Summarize(distances []float64) (Summary, error) {
	if len(distances) == 0 {
		return Summary{}, errors.New("no distances to summarize")
	}
	data := stats.Float64Data(distances)
	mean, err := stats.Mean(data)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return Summary{}, err
	}
	p90, err := stats.Percentile(data, 90)
	if err != nil {
		return Summary{}, err
	}
	maxDist, err := stats.Max(data)
	if err != nil {
		return Summary{}, err
	}
	sd, err := stats.StandardDeviation(data)
	if err != nil {
		return Summary{}, err
	}
	return Summary{Count: len(distances), Mean: mean, Median: median, P90: p90, Max: maxDist, StdDev: sd}, nil
}

// String renders the residuals as a table with the summary in its caption.
func (r *Report) String() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "World", "Pixel", "Distance"})
	for _, res := range r.Residuals {
		dist := "behind camera"
		if res.Visible {
			dist = fmt.Sprintf("%.4f", res.Distance)
		}
		t.AppendRow(table.Row{
			res.Index,
			fmt.Sprintf("X:%.2f, Y:%.2f, Z:%.2f", res.World.X, res.World.Y, res.World.Z),
			fmt.Sprintf("U:%.1f, V:%.1f", res.Pixel.X, res.Pixel.Y),
			dist,
		})
	}
	s := r.Summary
	t.SetCaption("n=%d skipped=%d mean=%.4f median=%.4f p90=%.4f max=%.4f",
		s.Count, r.Skipped, s.Mean, s.Median, s.P90, s.Max)
	return t.Render()
}
