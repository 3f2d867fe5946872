package game

import "math/rand"

// DeceptionScheduler arms a randomized delay and plays an ambient cue from
// the agent's own position, never from its target.
type DeceptionScheduler struct {
	minDelay, maxDelay float64
	tapVariants        int
	creakVariants      int
	rng                *rand.Rand
	audio              AudioEmitter

	armed   bool
	armedAt float64
	delay   float64
	last    Cue
}

// NewDeceptionScheduler builds a scheduler from agent tuning.
func NewDeceptionScheduler(cfg AgentConfig, rng *rand.Rand, audio AudioEmitter) *DeceptionScheduler {
	if audio == nil {
		audio = silentEmitter{}
	}
	return &DeceptionScheduler{
		minDelay:      cfg.MinDeceptionDelay,
		maxDelay:      cfg.MaxDeceptionDelay,
		tapVariants:   cfg.TapVariants,
		creakVariants: cfg.CreakVariants,
		rng:           rng,
		audio:         audio,
	}
}

// Arm starts a new deception at now: picks a delay in [min,max] and plays a
// tap or creak with even odds. It returns the cue and whether one was played;
// a category with no variants stays silent, like an empty clip list.
func (d *DeceptionScheduler) Arm(now float64, at Vec3) (Cue, bool) {
	d.armed = true
	d.armedAt = now
	d.delay = d.minDelay + d.rng.Float64()*(d.maxDelay-d.minDelay)

	cue := Cue{Category: CueTap, Volume: 1, Pitch: 1, Position: at}
	variants := d.tapVariants
	if d.rng.Float64() >= 0.5 {
		cue.Category = CueCreak
		variants = d.creakVariants
	}
	d.last = cue
	if variants <= 0 {
		return cue, false
	}
	cue.Variant = d.rng.Intn(variants)
	d.last = cue
	d.audio.PlayOneShot(cue)
	return cue, true
}

// Elapsed reports whether the armed delay has run out at now. An unarmed
// scheduler is always elapsed.
func (d *DeceptionScheduler) Elapsed(now float64) bool {
	return !d.armed || now-d.armedAt >= d.delay
}

// Disarm cancels any pending deception.
func (d *DeceptionScheduler) Disarm() { d.armed = false }

// Armed reports whether a deception is in progress.
func (d *DeceptionScheduler) Armed() bool { return d.armed }

// Delay is the length of the current (or last) deception.
func (d *DeceptionScheduler) Delay() float64 { return d.delay }

// Deadline is the time at which the current deception elapses.
func (d *DeceptionScheduler) Deadline() float64 { return d.armedAt + d.delay }

// LastCue is the cue chosen by the most recent Arm.
func (d *DeceptionScheduler) LastCue() Cue { return d.last }
