package game

import (
	"fmt"
	"math/rand"
)

// Player is the defender. It only needs to be locatable by agents and to
// carry a view for the boarding controller.
type Player struct {
	Pos     Vec3
	Look    Vec3 // unit view direction
	Present bool
	Hotbar  *Hotbar
}

// PlayerPosition implements PlayerLocator.
func (p *Player) PlayerPosition() (Vec3, bool) {
	if p == nil || !p.Present {
		return Vec3{}, false
	}
	return p.Pos, true
}

// EyeHeight is the player's view height above their feet.
const EyeHeight = 1.6

// Eye returns the player's view origin.
func (p *Player) Eye() Vec3 { return Vec3{p.Pos.X, p.Pos.Y + EyeHeight, p.Pos.Z} }

// World owns one siege: the level, the agents and the player, stepped on a
// fixed clock.
type World struct {
	Tuning   Tuning
	Level    *Level
	Scene    *Scene
	Registry *FortificationRegistry
	Agents   []*IntrusionAgent
	Player   *Player
	Boarding *BoardingController
	Impacts  *ImpactSounder
	Log      *SimLog
	Thoughts *ThoughtLog

	Tick int
	Now  float64

	rng *rand.Rand
}

// NewWorld generates a level from seed and spawns the player and agents.
// audio may be nil for a silent world.
func NewWorld(tuning Tuning, levelCfg LevelConfig, seed int64, audio AudioEmitter, verbose bool) *World {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- deterministic level + AI
	return NewWorldOnLevel(tuning, BuildLevel(levelCfg, tuning.Fort, rng), rng, audio, verbose)
}

// NewWorldOnLevel wraps an already built level. Agents are spawned at the
// level's agent spawns.
func NewWorldOnLevel(tuning Tuning, lvl *Level, rng *rand.Rand, audio AudioEmitter, verbose bool) *World {
	if audio == nil {
		audio = silentEmitter{}
	}
	w := &World{
		Tuning:   tuning,
		Level:    lvl,
		Scene:    lvl.Scene,
		Registry: lvl.Registry,
		Log:      NewSimLog(verbose),
		Thoughts: NewThoughtLog(),
		rng:      rng,
	}
	w.Player = &Player{
		Pos:     lvl.PlayerSpawn,
		Look:    Vec3{0, 0, -1},
		Present: true,
		Hotbar:  NewHotbar(ItemHammer, "Lantern"),
	}
	w.Impacts = NewImpactSounder(tuning.Impact, rand.New(rand.NewSource(rng.Int63())), audio, w.Player) // #nosec G404
	w.Boarding = NewBoardingController(tuning.Boarding, w.Registry, w.Scene, w.Player.Hotbar, w.Log, &w.Tick)

	for i, spawn := range lvl.AgentSpawns {
		w.SpawnAgent(i, spawn, audio)
	}
	return w
}

// SpawnAgent adds an intrusion agent at pos with its own random stream.
func (w *World) SpawnAgent(id int, pos Vec3, audio AudioEmitter) *IntrusionAgent {
	a := NewIntrusionAgent(id, pos, w.Tuning.Agent, AgentDeps{
		Registry: w.Registry,
		Space:    w.Scene,
		Player:   w.Player,
		Audio:    audio,
		Impacts:  w.Impacts,
		Rng:      rand.New(rand.NewSource(w.rng.Int63())), // #nosec G404
		Log:      w.Log,
		Thoughts: w.Thoughts,
		Tick:     &w.Tick,
	})
	w.Agents = append(w.Agents, a)
	return a
}

// Step advances the world by dt seconds. Stale board records are pruned
// before any agent reads the registry.
func (w *World) Step(dt float64) {
	w.Tick++
	w.Now += dt

	if n := w.Registry.Reconcile(); n > 0 {
		w.Log.Add(w.Tick, "--", "board", "reconciled", fmt.Sprintf("%d stale board(s) pruned", n), float64(n))
	}
	for _, a := range w.Agents {
		a.Update(w.Now, dt)
	}
}

// Explode destroys every board within radius of center directly in the
// scene. The registry learns about it on the next Reconcile.
func (w *World) Explode(center Vec3, radius float64) int {
	destroyed := w.Scene.DestroyWithin(center, radius, LayerBoard)
	w.Log.Add(w.Tick, "--", "impact", "explosion",
		fmt.Sprintf("(%.1f,%.1f,%.1f) r=%.1f destroyed %d", center.X, center.Y, center.Z, radius, len(destroyed)),
		float64(len(destroyed)))
	w.Thoughts.Add(w.Tick, "--", false, fmt.Sprintf("explosion takes out %d board(s)", len(destroyed)))
	if w.Impacts != nil {
		w.Impacts.OnImpact(w.Now, center, w.Tuning.Impact.MaxImpactForce)
	}
	return len(destroyed)
}

// Demolish tears every board off one entry point at once.
func (w *World) Demolish(id EntryPointID) int {
	n := w.Registry.RemoveAll(id)
	if n > 0 {
		w.Log.Add(w.Tick, "--", "board", "demolished", fmt.Sprintf("entry %d lost %d board(s)", id, n), float64(n))
	}
	return n
}

// Fortify places one board on id, aimed at the window centre. It is the
// scripted counterpart of the boarding controller.
func (w *World) Fortify(id EntryPointID) (BoardSlot, Rejection) {
	ep, ok := w.Registry.EntryPoint(id)
	if !ok {
		return BoardSlot{}, RejectUnknownEntryPoint
	}
	slot, rej := w.Registry.TryPlace(id, Hit{Ref: ep.Ref, Point: ep.Position, Normal: ep.Normal})
	if rej == RejectNone {
		w.Log.Add(w.Tick, "P", "board", "placed", fmt.Sprintf("entry %d slot %d", id, slot.Index), float64(slot.Index))
	}
	return slot, rej
}

// WeakestEntry returns the registered entry point with the lowest strength.
func (w *World) WeakestEntry() (EntryPointID, bool) {
	best := NoEntryPoint
	bestStrength := 0.0
	for _, ep := range w.Registry.EntryPoints() {
		if _, ok := w.Registry.Resolve(ep.ID); !ok {
			continue
		}
		s := w.Registry.Strength(ep.ID)
		if best == NoEntryPoint || s < bestStrength {
			best, bestStrength = ep.ID, s
		}
	}
	return best, best != NoEntryPoint
}

// Breached returns entry points that currently have no live boards.
func (w *World) Breached() []EntryPointID {
	var out []EntryPointID
	for _, ep := range w.Registry.EntryPoints() {
		if w.Registry.LiveCount(ep.ID) == 0 {
			out = append(out, ep.ID)
		}
	}
	return out
}

// Carpenter is a scripted defender: every Interval seconds it nails a board
// onto the weakest window that still has room.
type Carpenter struct {
	Interval float64
	last     float64
	started  bool
}

// Update places at most one board per interval. It returns the entry that
// was boarded, or NoEntryPoint.
func (c *Carpenter) Update(w *World) EntryPointID {
	if c == nil || c.Interval <= 0 {
		return NoEntryPoint
	}
	if c.started && w.Now-c.last < c.Interval {
		return NoEntryPoint
	}
	c.started = true
	c.last = w.Now

	best := NoEntryPoint
	bestStrength := 0.0
	for _, ep := range w.Registry.EntryPoints() {
		if w.Registry.Capacity(ep.ID) <= 0 {
			continue
		}
		s := w.Registry.Strength(ep.ID)
		if best == NoEntryPoint || s < bestStrength {
			best, bestStrength = ep.ID, s
		}
	}
	if best == NoEntryPoint {
		return NoEntryPoint
	}
	if _, rej := w.Fortify(best); rej != RejectNone {
		return NoEntryPoint
	}
	return best
}
