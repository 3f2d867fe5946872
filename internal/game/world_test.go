package game

import (
	"math/rand"
	"strings"
	"testing"
)

// openWorld builds a world on an open yard with n windows in a row facing -Z
// and no agents.
func openWorld(t *testing.T, n int) *World {
	t.Helper()
	rng := rand.New(rand.NewSource(6))
	lvl := NewOpenLevel(defaultFortConfig, 20, rng)
	for i := 0; i < n; i++ {
		lvl.AddWindow("w", Vec3{float64(i) * 4, 1.4, 0}, Vec3{0, 0, -1}, 1.2, 1.2, 0.2)
	}
	return NewWorldOnLevel(DefaultTuning(), lvl, rng, nil, false)
}

func TestNewWorld_SpawnsActors(t *testing.T) {
	w := NewWorld(DefaultTuning(), DefaultLevelConfig(), 1, nil, false)
	if len(w.Agents) != DefaultLevelConfig().AgentCount {
		t.Fatalf("agents = %d", len(w.Agents))
	}
	if p, ok := w.Player.PlayerPosition(); !ok || p != w.Level.PlayerSpawn {
		t.Fatalf("player at %v ok=%v", p, ok)
	}
	if w.Boarding == nil || w.Impacts == nil {
		t.Fatal("boarding or impacts not wired")
	}
	for i, a := range w.Agents {
		if a.Position() != w.Level.AgentSpawns[i] {
			t.Errorf("%s spawned at %v, want %v", a.Label(), a.Position(), w.Level.AgentSpawns[i])
		}
		if a.State() != StatePatrolling {
			t.Errorf("%s starts %s", a.Label(), a.State())
		}
	}
}

func TestPlayer_NilIsAbsent(t *testing.T) {
	var p *Player
	if _, ok := p.PlayerPosition(); ok {
		t.Fatal("nil player reported a position")
	}
	p = &Player{Pos: Vec3{1, 0, 2}}
	if _, ok := p.PlayerPosition(); ok {
		t.Fatal("player not present reported a position")
	}
	if p.Eye() != (Vec3{1, EyeHeight, 2}) {
		t.Fatalf("eye %v", p.Eye())
	}
}

func TestWorld_FortifyAndWeakest(t *testing.T) {
	w := openWorld(t, 2)
	a, b := w.Level.Windows[0], w.Level.Windows[1]

	if got, _ := w.WeakestEntry(); got != a {
		t.Fatalf("weakest of two open windows = %d, want first %d", got, a)
	}
	if _, rej := w.Fortify(a); rej != RejectNone {
		t.Fatalf("fortify: %s", rej)
	}
	if got, _ := w.WeakestEntry(); got != b {
		t.Fatalf("weakest = %d, want %d", got, b)
	}
	if _, rej := w.Fortify(EntryPointID(99)); rej != RejectUnknownEntryPoint {
		t.Fatalf("unknown entry: %s", rej)
	}
	if got := w.Breached(); len(got) != 1 || got[0] != b {
		t.Fatalf("breached = %v, want [%d]", got, b)
	}
	if w.Log.CountCategory("board", "placed") != 1 {
		t.Fatal("placement not logged")
	}
}

func TestWorld_ExplodeLogsAndReconciles(t *testing.T) {
	w := openWorld(t, 2)
	a, b := w.Level.Windows[0], w.Level.Windows[1]
	w.Fortify(a)
	w.Fortify(a)
	w.Fortify(b)

	if n := w.Explode(Vec3{0, 1.4, 0}, 1.5); n != 2 {
		t.Fatalf("explosion destroyed %d, want the 2 boards on the first window", n)
	}
	w.Step(1.0 / 60)
	if w.Registry.LiveCount(a) != 0 || w.Registry.LiveCount(b) != 1 {
		t.Fatalf("live counts %d/%d after reconcile", w.Registry.LiveCount(a), w.Registry.LiveCount(b))
	}
	if !w.Log.HasEntry("impact", "explosion", "destroyed 2") {
		t.Fatal("explosion not logged")
	}
	if !w.Log.HasEntry("board", "reconciled", "2 stale") {
		t.Fatal("reconcile not logged")
	}
	var found bool
	for _, th := range w.Thoughts.Recent() {
		if strings.Contains(th.Message, "explosion") {
			found = true
		}
	}
	if !found {
		t.Fatal("no explosion thought")
	}
}

func TestWorld_Demolish(t *testing.T) {
	w := openWorld(t, 1)
	id := w.Level.Windows[0]
	if n := w.Demolish(id); n != 0 {
		t.Fatalf("demolished %d from an open window", n)
	}
	if w.Log.HasEntry("board", "demolished", "") {
		t.Fatal("empty demolish logged")
	}
	w.Fortify(id)
	w.Fortify(id)
	if n := w.Demolish(id); n != 2 {
		t.Fatalf("demolished %d, want 2", n)
	}
	if w.Registry.Capacity(id) != MaxBoardsPerEntryPoint {
		t.Fatalf("capacity %d after demolish", w.Registry.Capacity(id))
	}
}

func TestCarpenter_BoardsWeakestUntilFull(t *testing.T) {
	w := openWorld(t, 2)
	c := &Carpenter{Interval: 1}

	var order []EntryPointID
	for i := 0; i < 8; i++ {
		w.Now = float64(i)
		if id := c.Update(w); id != NoEntryPoint {
			order = append(order, id)
		}
		if id := c.Update(w); id != NoEntryPoint {
			t.Fatalf("second update inside the interval boarded %d", id)
		}
	}
	if len(order) != 2*MaxBoardsPerEntryPoint {
		t.Fatalf("placed %d boards, want %d", len(order), 2*MaxBoardsPerEntryPoint)
	}
	a, b := w.Level.Windows[0], w.Level.Windows[1]
	want := []EntryPointID{a, b, a, b, a, b}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("placement order %v, want alternating %v", order, want)
		}
	}

	var idle *Carpenter
	if idle.Update(w) != NoEntryPoint {
		t.Fatal("nil carpenter boarded")
	}
}
