package report

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// DefaultHistogramBins is the bin count used when SaveHistogram is given zero.
const DefaultHistogramBins = 20

// SaveHistogram plots the distribution of residual distances to path. The image format follows the
// file extension (png, svg, pdf, ...).
func (r *Report) SaveHistogram(path string, bins int) error {
	distances := r.Distances()
	if len(distances) == 0 {
		return errors.New("no visible residuals to plot")
	}
	if bins <= 0 {
		bins = DefaultHistogramBins
	}

	p := plot.New()
	p.Title.Text = "Correspondence residuals"
	p.X.Label.Text = "near-plane distance"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(distances), bins)
	if err != nil {
		return errors.Wrap(err, "failed to build histogram")
	}
	h.LineStyle.Width = vg.Points(1)
	p.Add(h)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save histogram to %q", path)
	}
	return nil
}
