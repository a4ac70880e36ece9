package ingest

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	goutils "go.viam.com/utils"

	"github.com/sensorviz/sensorviz/frustum"
	"github.com/sensorviz/sensorviz/logging"
	"github.com/sensorviz/sensorviz/utils"
)

const matchHeader = "x,y,z,u,v"

// Match is a world point and the pixel it was observed at.
type Match struct {
	World r3.Vector
	Pixel r2.Point
}

// LoadMatches reads the correspondence list at path.
func LoadMatches(path string, logger logging.Logger) ([]Match, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	matches, err := ParseMatches(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading matches from %q", path)
	}
	logger.Infow("loaded correspondences", "file", path, "count", len(matches))
	return matches, nil
}

// ParseMatches parses "x,y,z,u,v" records whose values are separated by commas or whitespace. Blank lines,
// lines starting with '#' and an optional header are ignored, as are records that do not hold five numbers.
// Columns beyond the fifth are ignored.
func ParseMatches(r io.Reader) ([]Match, error) {
	scanner := bufio.NewScanner(r)
	var matches []Match
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if first {
			first = false
			if strings.Contains(line, matchHeader) {
				continue
			}
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
		if len(fields) < 5 {
			continue
		}
		values := make([]float64, 5)
		valid := true
		for i, field := range fields[:5] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil || !utils.IsFinite(v) {
				valid = false
				break
			}
			values[i] = v
		}
		if !valid {
			continue
		}
		matches = append(matches, Match{
			World: r3.Vector{X: values[0], Y: values[1], Z: values[2]},
			Pixel: r2.Point{X: values[3], Y: values[4]},
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read matches")
	}
	return matches, nil
}

// Correspondences pairs every match with the image size it was observed in.
func Correspondences(matches []Match, imageWidth, imageHeight float64) []frustum.Correspondence {
	return lo.Map(matches, func(m Match, _ int) frustum.Correspondence {
		world := m.World
		return frustum.Correspondence{WorldPoint: &world, Pixel: m.Pixel, ImageWidth: imageWidth, ImageHeight: imageHeight}
	})
}

// WorldPoints returns the world side of every match.
func WorldPoints(matches []Match) []r3.Vector {
	return lo.Map(matches, func(m Match, _ int) r3.Vector { return m.World })
}
