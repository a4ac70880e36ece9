// Package playback animates a vehicle trajectory over time, moving the camera frustum along it and
// easing a viewer camera behind the newest pose.
package playback

import (
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/sensorviz/sensorviz/frustum"
)

// DefaultPointsPerSecond is the playback speed used when none is configured.
const DefaultPointsPerSecond = 10.

// ErrNoTrajectory is returned when starting playback without poses.
var ErrNoTrajectory = errors.New("no trajectory poses available")

// Player reveals a trajectory at a fixed number of poses per second.
//
// Progress is measured from the last tick that revealed poses, so ticks that reveal nothing accumulate.
// A revealing tick restarts the measurement at its own time and drops any fractional remainder.
type Player struct {
	poses    []frustum.PoseSample
	speed    float64
	shown    int
	playing  bool
	lastTick time.Time
}

// NewPlayer returns a stopped player. A non-positive speed selects DefaultPointsPerSecond.
func NewPlayer(poses []frustum.PoseSample, pointsPerSecond float64) *Player {
	if pointsPerSecond <= 0 {
		pointsPerSecond = DefaultPointsPerSecond
	}
	return &Player{poses: poses, speed: pointsPerSecond}
}

// Start rewinds and begins playback at now with the first pose already shown.
func (p *Player) Start(now time.Time) error {
	if len(p.poses) == 0 {
		return ErrNoTrajectory
	}
	p.shown = 1
	p.playing = len(p.poses) > 1
	p.lastTick = now
	return nil
}

// SetSpeed changes the playback speed.
func (p *Player) SetSpeed(pointsPerSecond float64) error {
	if !(pointsPerSecond > 0) || math.IsInf(pointsPerSecond, 0) {
		return errors.Errorf("playback speed must be positive, got %v", pointsPerSecond)
	}
	p.speed = pointsPerSecond
	return nil
}

// Speed returns the playback speed in poses per second.
func (p *Player) Speed() float64 {
	return p.speed
}

// Tick advances playback to now and returns the poses revealed by this tick, oldest first.
func (p *Player) Tick(now time.Time) []frustum.PoseSample {
	if !p.playing {
		return nil
	}
	due := p.speed * now.Sub(p.lastTick).Seconds()
	if due < 1 {
		return nil
	}
	p.lastTick = now

	end := p.shown + int(math.Floor(due))
	if end >= len(p.poses) {
		end = len(p.poses)
		p.playing = false
	}
	revealed := p.poses[p.shown:end]
	p.shown = end
	return revealed
}

// Playing reports whether poses remain to be revealed.
func (p *Player) Playing() bool {
	return p.playing
}

// Finished reports whether the whole trajectory has been revealed.
func (p *Player) Finished() bool {
	return len(p.poses) > 0 && p.shown == len(p.poses)
}

// Shown returns the revealed prefix of the trajectory.
func (p *Player) Shown() []frustum.PoseSample {
	return p.poses[:p.shown]
}

// Current returns the newest revealed pose.
func (p *Player) Current() (frustum.PoseSample, bool) {
	if p.shown == 0 {
		return frustum.PoseSample{}, false
	}
	return p.poses[p.shown-1], true
}
