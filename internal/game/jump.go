package game

import "math"

// ArcOffset is the vertical lift of a jump of the given peak height at
// progress in [0,1].
func ArcOffset(height, progress float64) float64 {
	return height * math.Sin(progress*math.Pi)
}

// JumpArc returns the position along a jump from start to target: a straight
// line with a sine arc added on top.
func JumpArc(start, target Vec3, height, progress float64) Vec3 {
	p := start.Lerp(target, progress)
	p.Y += ArcOffset(height, progress)
	return p
}

// jumpState is the agent's in-flight jump.
type jumpState struct {
	active    bool
	start     Vec3
	target    Vec3
	startTime float64
}

// progress returns the fraction of the jump completed at now.
func (j *jumpState) progress(now, duration float64) float64 {
	return (now - j.startTime) / duration
}

// landingSpeed is the vertical speed at touchdown of a sine arc of the given
// height and duration, used to size the landing impact.
func landingSpeed(height, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	return math.Pi * height / duration
}
