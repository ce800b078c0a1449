package krajc

import "time"

// FrameTime describes the current frame. It is updated before the first
// schedule of a frame runs.
type FrameTime struct {
	// Delta is the time elapsed since the previous frame.
	Delta time.Duration

	// SinceStart is the time elapsed since Startup.
	SinceStart time.Duration

	// Frame counts the frames, starting at one.
	Frame uint64
}

// TargetFps limits the number of frames per second in Runtime.Run.
// A value of zero disables the limit.
type TargetFps struct {
	Value float64
}

func (t TargetFps) FrameDuration() time.Duration {
	if t.Value <= 0 {
		return 0
	}

	return time.Duration(float64(time.Second) / t.Value)
}
