package playback

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/sensorviz/sensorviz/frustum"
	"github.com/sensorviz/sensorviz/logging"
)

// DefaultFrameInterval is roughly one display frame.
const DefaultFrameInterval = 16 * time.Millisecond

// Frame is what one tick of a Runner produced.
type Frame struct {
	Time     time.Time
	Revealed []frustum.PoseSample
	Camera   FollowCamera
}

// Runner drives a Player from a clock, feeding every revealed pose into a frustum.
type Runner struct {
	Player   *Player
	Frustum  *frustum.Frustum
	Camera   *FollowCamera
	Clock    clock.Clock
	Interval time.Duration
	Logger   logging.Logger
	// OnFrame, when set, is called after every tick from the Run goroutine.
	OnFrame func(Frame)
}

// Run plays the trajectory to the end. It returns nil once the last pose is shown, or the context error
// if ctx is done first.
func (r *Runner) Run(ctx context.Context) error {
	clk := r.Clock
	if clk == nil {
		clk = clock.New()
	}
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	if err := r.Player.Start(clk.Now()); err != nil {
		return err
	}
	first, _ := r.Player.Current()
	r.apply(clk.Now(), []frustum.PoseSample{first})
	r.Logger.Infow("playback started", "poses", len(r.Player.poses), "points_per_second", r.Player.Speed())

	ticker := clk.Ticker(interval)
	defer ticker.Stop()
	for r.Player.Playing() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		now := clk.Now()
		r.apply(now, r.Player.Tick(now))
	}
	r.Logger.Infow("playback finished", "poses", len(r.Player.Shown()))
	return nil
}

func (r *Runner) apply(now time.Time, revealed []frustum.PoseSample) {
	if len(revealed) > 0 {
		for _, pose := range revealed {
			r.Frustum.Update(pose)
		}
		newest := revealed[len(revealed)-1]
		if r.Camera != nil {
			r.Camera.SetTarget(newest.Position)
		}
		r.Logger.Debugw("pose advanced", "timestamp", newest.Timestamp, "shown", len(r.Player.Shown()))
	}
	if r.Camera != nil {
		r.Camera.Step()
	}
	if r.OnFrame != nil {
		frame := Frame{Time: now, Revealed: revealed}
		if r.Camera != nil {
			frame.Camera = *r.Camera
		}
		r.OnFrame(frame)
	}
}
