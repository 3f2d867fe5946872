package game

import (
	"math"
	"math/rand"
)

// ImpactSounder turns physical impacts into impact cues. Louder for harder
// hits, rate limited, and silent when the player is out of earshot.
type ImpactSounder struct {
	cfg    ImpactConfig
	rng    *rand.Rand
	audio  AudioEmitter
	player PlayerLocator

	lastPlay float64
}

// NewImpactSounder builds a sounder. player may be nil, in which case no
// distance gate applies.
func NewImpactSounder(cfg ImpactConfig, rng *rand.Rand, audio AudioEmitter, player PlayerLocator) *ImpactSounder {
	if audio == nil {
		audio = silentEmitter{}
	}
	return &ImpactSounder{
		cfg:      cfg,
		rng:      rng,
		audio:    audio,
		player:   player,
		lastPlay: math.Inf(-1),
	}
}

// OnImpact reports an impact of the given force at a world position. It
// returns the cue played, if any.
func (is *ImpactSounder) OnImpact(now float64, at Vec3, force float64) (Cue, bool) {
	c := is.cfg
	if c.Variants <= 0 {
		return Cue{}, false
	}
	if now-is.lastPlay < c.MinInterval {
		return Cue{}, false
	}
	if is.player != nil {
		if p, ok := is.player.PlayerPosition(); ok && p.Dist(at) > c.PlayerCheckRadius {
			return Cue{}, false
		}
	}
	if force < c.MinImpactForce {
		return Cue{}, false
	}

	norm := clamp01((force - c.MinImpactForce) / (c.MaxImpactForce - c.MinImpactForce))
	volume := lerp(c.MinVolume, c.MaxVolume, norm)

	cue := Cue{
		Category: CueImpact,
		Variant:  is.rng.Intn(c.Variants),
		Pitch:    c.MinPitch + is.rng.Float64()*(c.MaxPitch-c.MinPitch),
		Volume:   volume * (0.9 + is.rng.Float64()*0.2),
		Position: at,
	}
	is.audio.PlayOneShot(cue)
	is.lastPlay = now
	return cue, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
