package cue

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Cue timings.
const (
	tapDuration     = 90 * time.Millisecond
	tapAttack       = 2 * time.Millisecond
	tapRelease      = 70 * time.Millisecond
	creakDuration   = 600 * time.Millisecond
	creakAttack     = 80 * time.Millisecond
	creakRelease    = 250 * time.Millisecond
	impactDuration  = 220 * time.Millisecond
	impactAttack    = 1 * time.Millisecond
	impactRelease   = 180 * time.Millisecond
	variantSpread   = 0.12 // relative frequency step between variants
	creakSweepRatio = 1.6  // end/start frequency of a creak sweep
)

// oscillator generates raw audio waves. sweep multiplies the frequency
// linearly over the oscillator's lifetime; 1 holds it steady.
type oscillator struct {
	freq     float64
	sweep    float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *rand.Rand
}

// NewOscillator creates a steady oscillator.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return newSweep(freq, 1, duration, wave, rate, nil)
}

func newSweep(freq, sweep float64, duration time.Duration, wave WaveType, rate beep.SampleRate, rng *rand.Rand) *oscillator {
	if rng == nil {
		rng = rand.New(rand.NewSource(1)) // #nosec G404 -- noise source
	}
	return &oscillator{
		freq:     freq,
		sweep:    sweep,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      rng,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		f := o.freq
		if o.sweep != 1 && o.duration > 0 {
			f *= 1 + (o.sweep-1)*float64(o.position)/float64(o.duration)
		}
		o.phase += f / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies attack/release shaping to a stream.
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	sustainSamples int
	totalSamples   int
}

// NewEnvelope wraps s in a linear attack/sustain/release envelope.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := rate.N(attack)
	rel := rate.N(release)
	sus := total - att - rel
	if sus < 0 {
		sus = 0
	}
	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		sustainSamples: sus,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attackSamples && e.attackSamples > 0 {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		releaseStart := e.attackSamples + e.sustainSamples
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
			if vol < 0 {
				vol = 0
			}
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly. Zero or negative volume is silent since
// log2(0) is -Inf.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// variantFreq detunes base by variant so each clip in a category sounds
// distinct.
func variantFreq(base float64, variant int, pitch float64) float64 {
	if pitch <= 0 {
		pitch = 1
	}
	return base * (1 + variantSpread*float64(variant)) * pitch
}

// TapSound is a knuckle on glass: a short noise click over a high sine.
func TapSound(variant int, pitch float64, rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	f := variantFreq(1800, variant, pitch)
	tone := NewEnvelope(newSweep(f, 0.85, tapDuration, WaveSine, rate, rng), tapDuration, tapAttack, tapRelease, rate)
	click := NewEnvelope(newSweep(0, 1, tapDuration, WaveNoise, rate, rng), tapDuration, tapAttack, tapRelease/3, rate)
	return beep.Take(rate.N(tapDuration), beep.Mix(newVolume(tone, 0.6), newVolume(click, 0.4)))
}

// CreakSound is a slow rising saw, like weight on an old board.
func CreakSound(variant int, pitch float64, rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	f := variantFreq(140, variant, pitch)
	body := NewEnvelope(newSweep(f, creakSweepRatio, creakDuration, WaveSaw, rate, rng), creakDuration, creakAttack, creakRelease, rate)
	grit := NewEnvelope(newSweep(0, 1, creakDuration, WaveNoise, rate, rng), creakDuration, creakAttack, creakRelease, rate)
	return beep.Take(rate.N(creakDuration), beep.Mix(newVolume(body, 0.7), newVolume(grit, 0.15)))
}

// ImpactSound is a thud: a falling low sine under a burst of noise.
func ImpactSound(variant int, pitch float64, rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	f := variantFreq(90, variant, pitch)
	thud := NewEnvelope(newSweep(f, 0.5, impactDuration, WaveSine, rate, rng), impactDuration, impactAttack, impactRelease, rate)
	crack := NewEnvelope(newSweep(0, 1, impactDuration, WaveNoise, rate, rng), impactDuration, impactAttack, impactRelease/2, rate)
	return beep.Take(rate.N(impactDuration), beep.Mix(newVolume(thud, 0.8), newVolume(crack, 0.35)))
}
