package game

import (
	"math/rand"
	"testing"
)

func TestImpactSounder_VolumeScalesWithForce(t *testing.T) {
	cfg := defaultImpactConfig
	cfg.MinInterval = 0
	rec := &CueRecorder{}
	is := NewImpactSounder(cfg, rand.New(rand.NewSource(2)), rec, nil)

	soft, ok := is.OnImpact(0, Vec3{}, cfg.MinImpactForce)
	if !ok {
		t.Fatal("impact at the force floor should play")
	}
	hard, ok := is.OnImpact(1, Vec3{}, cfg.MaxImpactForce*2)
	if !ok {
		t.Fatal("hard impact should play")
	}
	if hard.Volume <= soft.Volume {
		t.Fatalf("hard impact volume %.3f not louder than soft %.3f", hard.Volume, soft.Volume)
	}
	if hard.Volume > cfg.MaxVolume*1.1+1e-9 {
		t.Fatalf("volume %.3f above jittered ceiling", hard.Volume)
	}
	for _, c := range rec.Cues {
		if c.Pitch < cfg.MinPitch || c.Pitch > cfg.MaxPitch {
			t.Fatalf("pitch %.3f outside [%.2f,%.2f]", c.Pitch, cfg.MinPitch, cfg.MaxPitch)
		}
		if c.Category != CueImpact {
			t.Fatalf("category %s, want impact", c.Category)
		}
	}
}

func TestImpactSounder_Gates(t *testing.T) {
	cfg := defaultImpactConfig
	player := &Player{Pos: Vec3{}, Present: true}
	rec := &CueRecorder{}
	is := NewImpactSounder(cfg, rand.New(rand.NewSource(2)), rec, player)

	if _, ok := is.OnImpact(0, Vec3{1, 0, 0}, cfg.MinImpactForce-0.1); ok {
		t.Fatal("impact below the force floor played")
	}
	if _, ok := is.OnImpact(0, Vec3{cfg.PlayerCheckRadius + 1, 0, 0}, cfg.MaxImpactForce); ok {
		t.Fatal("impact out of earshot played")
	}
	if _, ok := is.OnImpact(0, Vec3{1, 0, 0}, cfg.MaxImpactForce); !ok {
		t.Fatal("audible impact did not play")
	}
	if _, ok := is.OnImpact(cfg.MinInterval/2, Vec3{1, 0, 0}, cfg.MaxImpactForce); ok {
		t.Fatal("impact inside the rate limit played")
	}
	if _, ok := is.OnImpact(cfg.MinInterval*2, Vec3{1, 0, 0}, cfg.MaxImpactForce); !ok {
		t.Fatal("impact after the rate limit did not play")
	}
	if len(rec.Cues) != 2 {
		t.Fatalf("recorded %d cues, want 2", len(rec.Cues))
	}

	cfg.Variants = 0
	silent := NewImpactSounder(cfg, rand.New(rand.NewSource(2)), rec, nil)
	if _, ok := silent.OnImpact(0, Vec3{}, cfg.MaxImpactForce); ok {
		t.Fatal("sounder with no variants played")
	}
}
