// Package cue turns gameplay sound cues into procedurally synthesised audio.
package cue

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Garsondee/Bolster/internal/game"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	// hearingRadius is the distance at which a cue fades to silence.
	hearingRadius = 25.0
)

// Emitter implements game.AudioEmitter. It synthesises each cue, attenuates
// and pans it relative to the listener, and mixes it into the speaker once
// Initialize has succeeded. Before that, cues are only counted.
type Emitter struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	listener    game.PlayerLocator
	rng         *rand.Rand
	master      float64
	initialized bool

	played map[game.CueCategory]int
}

// NewEmitter creates an emitter. listener may be nil, in which case cues
// play at full volume and centred.
func NewEmitter(listener game.PlayerLocator, seed int64) *Emitter {
	return &Emitter{
		mixer:    &beep.Mixer{},
		listener: listener,
		rng:      rand.New(rand.NewSource(seed)), // #nosec G404 -- noise texture
		master:   0.8,
		played:   make(map[game.CueCategory]int),
	}
}

// Initialize opens the audio device and starts the mixer.
func (e *Emitter) Initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(e.mixer)
	e.initialized = true
	return nil
}

// Cleanup drops every queued sound.
func (e *Emitter) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return
	}
	speaker.Lock()
	e.mixer.Clear()
	speaker.Unlock()
	e.initialized = false
}

// SetListener changes whose position cues are heard from.
func (e *Emitter) SetListener(l game.PlayerLocator) {
	e.mu.Lock()
	e.listener = l
	e.mu.Unlock()
}

// SetMasterVolume sets the overall gain, clamped to [0,1].
func (e *Emitter) SetMasterVolume(v float64) {
	e.mu.Lock()
	e.master = math.Max(0, math.Min(1, v))
	e.mu.Unlock()
}

// PlayOneShot implements game.AudioEmitter.
func (e *Emitter) PlayOneShot(c game.Cue) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.played[c.Category]++
	if !e.initialized {
		return
	}
	s := e.streamerLocked(c)
	if s == nil {
		return
	}
	speaker.Lock()
	e.mixer.Add(s)
	speaker.Unlock()
}

// Played returns how many cues of category were requested.
func (e *Emitter) Played(category game.CueCategory) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.played[category]
}

// Streamer builds the finished, spatialised streamer for c without playing
// it. It returns nil for an unknown category.
func (e *Emitter) Streamer(c game.Cue) beep.Streamer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.streamerLocked(c)
}

func (e *Emitter) streamerLocked(c game.Cue) beep.Streamer {
	var s beep.Streamer
	switch c.Category {
	case game.CueTap:
		s = TapSound(c.Variant, c.Pitch, sampleRate, e.rng)
	case game.CueCreak:
		s = CreakSound(c.Variant, c.Pitch, sampleRate, e.rng)
	case game.CueImpact:
		s = ImpactSound(c.Variant, c.Pitch, sampleRate, e.rng)
	default:
		return nil
	}

	gain, pan := e.spatial(c.Position)
	vol := c.Volume
	if vol <= 0 {
		vol = 1
	}
	return &effects.Pan{Streamer: newVolume(s, vol*gain*e.master), Pan: pan}
}

// spatial returns a linear distance falloff and a left/right pan for a cue
// at p relative to the listener.
func (e *Emitter) spatial(p game.Vec3) (gain, pan float64) {
	if e.listener == nil {
		return 1, 0
	}
	lp, ok := e.listener.PlayerPosition()
	if !ok {
		return 1, 0
	}
	d := lp.FlatDist(p)
	gain = math.Max(0, 1-d/hearingRadius)
	pan = math.Max(-1, math.Min(1, (p.X-lp.X)/hearingRadius*2))
	return gain, pan
}

// Render streams s to completion and returns its samples.
func Render(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}
