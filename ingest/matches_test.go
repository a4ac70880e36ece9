package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/sensorviz/sensorviz/logging"
)

func TestParseMatches(t *testing.T) {
	data := `x,y,z,u,v
# calibration target corners
1.0,2.0,-5.0,621,187
3 4 -6   100 50
0.5, 0.5 ,-1,10,20,extra

1,2,3,nan,4
1,2,3,4
a,b,c,d,e
`
	matches, err := ParseMatches(strings.NewReader(data))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, matches, test.ShouldResemble, []Match{
		{World: r3.Vector{X: 1, Y: 2, Z: -5}, Pixel: r2.Point{X: 621, Y: 187}},
		{World: r3.Vector{X: 3, Y: 4, Z: -6}, Pixel: r2.Point{X: 100, Y: 50}},
		{World: r3.Vector{X: 0.5, Y: 0.5, Z: -1}, Pixel: r2.Point{X: 10, Y: 20}},
	})
}

func TestParseMatchesNoHeader(t *testing.T) {
	matches, err := ParseMatches(strings.NewReader("1 2 3 4 5\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(matches), test.ShouldEqual, 1)

	matches, err = ParseMatches(strings.NewReader(""))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, matches, test.ShouldBeEmpty)
}

func TestCorrespondences(t *testing.T) {
	matches := []Match{
		{World: r3.Vector{X: 1}, Pixel: r2.Point{X: 5, Y: 6}},
		{World: r3.Vector{Y: 2}, Pixel: r2.Point{X: 7, Y: 8}},
	}
	corrs := Correspondences(matches, 1242, 375)
	test.That(t, len(corrs), test.ShouldEqual, 2)
	test.That(t, *corrs[0].WorldPoint, test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, *corrs[1].WorldPoint, test.ShouldResemble, r3.Vector{Y: 2})
	test.That(t, corrs[1].Pixel, test.ShouldResemble, r2.Point{X: 7, Y: 8})
	test.That(t, corrs[1].ImageWidth, test.ShouldEqual, 1242.)
	test.That(t, corrs[1].ImageHeight, test.ShouldEqual, 375.)

	// world points are copies
	matches[0].World.X = 9
	test.That(t, corrs[0].WorldPoint.X, test.ShouldEqual, 1.)

	test.That(t, WorldPoints(matches), test.ShouldResemble, []r3.Vector{{X: 9}, {Y: 2}})
}

func TestLoadMatches(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "matches.csv")
	test.That(t, os.WriteFile(fn, []byte("1,2,3,4,5\n"), 0o600), test.ShouldBeNil)
	matches, err := LoadMatches(fn, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(matches), test.ShouldEqual, 1)
}
