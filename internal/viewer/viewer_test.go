package viewer

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/Garsondee/Bolster/internal/game"
)

func TestCamera_RoundTrip(t *testing.T) {
	c := camera{x: 3, z: -2, zoom: 1.5, vpW: 400, vpH: 300, offX: 24, offY: 24}
	p := game.Vec3{X: 5.5, Z: 1.25}
	sx, sy := c.toScreen(p)
	back := c.toWorld(int(math.Round(float64(sx))), int(math.Round(float64(sy))))
	if back.FlatDist(p) > 1/c.scale() {
		t.Fatalf("round trip %v -> (%.1f,%.1f) -> %v", p, sx, sy, back)
	}

	cx, cy := c.toScreen(game.Vec3{X: c.x, Z: c.z})
	if cx != 24+200 || cy != 24+150 {
		t.Fatalf("camera centre drew at (%.1f,%.1f), want viewport centre", cx, cy)
	}
	if !c.inView(cx, cy) || c.inView(0, 0) {
		t.Fatal("inView wrong around the viewport edge")
	}

	c.zoom = 10
	c.clampZoom(zoomMin, zoomMax)
	if c.zoom != zoomMax {
		t.Fatalf("zoom clamped to %.2f", c.zoom)
	}
}

func TestSpeedSteps(t *testing.T) {
	cases := []struct {
		cur, slower, faster float64
	}{
		{0, 0, 0.5},
		{0.5, 0, 1},
		{1, 0.5, 2},
		{4, 2, 4},
		{3, 2, 4}, // off-grid snaps to the neighbouring steps
	}
	for _, c := range cases {
		if got := slower(c.cur); got != c.slower {
			t.Errorf("slower(%.1f) = %.1f, want %.1f", c.cur, got, c.slower)
		}
		if got := faster(c.cur); got != c.faster {
			t.Errorf("faster(%.1f) = %.1f, want %.1f", c.cur, got, c.faster)
		}
	}
	if speedLabel(0) != "PAUSED" || speedLabel(2) != "2x" || speedLabel(0.5) != "0.5x" {
		t.Fatalf("speed labels: %q %q %q", speedLabel(0), speedLabel(2), speedLabel(0.5))
	}
}

func TestColours(t *testing.T) {
	seen := make(map[[3]uint8]game.AgentState)
	for s := game.StatePatrolling; s <= game.StateJumping; s++ {
		c := stateColor(s)
		key := [3]uint8{c.R, c.G, c.B}
		if prev, dup := seen[key]; dup {
			t.Fatalf("%s and %s share a colour", prev, s)
		}
		seen[key] = s
	}

	bare, full := strengthColor(0, 3), strengthColor(3, 3)
	if bare.R <= bare.G || full.G <= full.R {
		t.Fatalf("bare %v should be red, full %v green", bare, full)
	}
	if strengthColor(9, 3) != full || strengthColor(1, 0) != bare {
		t.Fatal("strength colour not clamped")
	}
}

func TestInspector_CycleAndPick(t *testing.T) {
	rng := rand.New(rand.NewSource(1)) // #nosec G404
	lvl := game.NewOpenLevel(game.DefaultFortConfig(), 10, rng)
	w := game.NewWorldOnLevel(game.DefaultTuning(), lvl, rng, nil, false)
	w.SpawnAgent(0, game.Vec3{X: -3}, nil)
	w.SpawnAgent(1, game.Vec3{X: 3}, nil)

	var in inspector
	if in.selected(w.Agents) != nil {
		t.Fatal("zero inspector selected an agent")
	}
	in.cycle(len(w.Agents))
	if in.selected(w.Agents) != w.Agents[0] {
		t.Fatal("first cycle should select agent 0")
	}
	in.cycle(len(w.Agents))
	in.cycle(len(w.Agents))
	if in.selected(w.Agents) != nil {
		t.Fatal("cycling past the last agent should clear the selection")
	}

	if !in.pick(w.Agents, game.Vec3{X: 2.5, Z: 0.5}, 1) || in.selected(w.Agents) != w.Agents[1] {
		t.Fatal("pick missed the agent under the cursor")
	}
	if in.pick(w.Agents, game.Vec3{Z: 8}, 1) {
		t.Fatal("pick in empty space kept a selection")
	}

	lines := curatedLines(w.Agents[0], w.Registry, w.Now)
	if !strings.Contains(strings.Join(lines, "\n"), "target: none") {
		t.Fatalf("curated view:\n%s", strings.Join(lines, "\n"))
	}
	for _, l := range rawLines(w.Agents[0], w.Now) {
		for _, part := range wrap(l, 34) {
			if len(part) > 34 && strings.Contains(part, " ") {
				t.Fatalf("wrapped line too long: %q", part)
			}
		}
	}
}

func TestNearestEntry(t *testing.T) {
	rng := rand.New(rand.NewSource(2)) // #nosec G404
	lvl := game.NewOpenLevel(game.DefaultFortConfig(), 10, rng)
	a := lvl.AddWindow("a", game.Vec3{X: -2, Y: 1.4}, game.Vec3{Z: -1}, 1.2, 1.2, 0.1)
	b := lvl.AddWindow("b", game.Vec3{X: 2, Y: 1.4}, game.Vec3{Z: -1}, 1.2, 1.2, 0.1)

	if id, ok := nearestEntry(lvl.Registry, game.Vec3{X: 1.5}, 2); !ok || id != b {
		t.Fatalf("nearest = %d ok=%v, want %d", id, ok, b)
	}
	if id, ok := nearestEntry(lvl.Registry, game.Vec3{X: -1}, 2); !ok || id != a {
		t.Fatalf("nearest = %d ok=%v, want %d", id, ok, a)
	}
	if _, ok := nearestEntry(lvl.Registry, game.Vec3{Z: 6}, 2); ok {
		t.Fatal("found an entry out of range")
	}
}

func TestLogForCopy(t *testing.T) {
	rng := rand.New(rand.NewSource(3)) // #nosec G404
	lvl := game.NewOpenLevel(game.DefaultFortConfig(), 10, rng)
	w := game.NewWorldOnLevel(game.DefaultTuning(), lvl, rng, nil, false)
	m0 := w.SpawnAgent(0, game.Vec3{X: -3}, nil)
	w.Log.Add(1, "M0", "target", "acquire", "entry 0 strength 0.00", 0)
	w.Log.Add(2, "M1", "target", "acquire", "entry 1 strength 1.00", 1)
	w.Log.Add(3, "P", "board", "placed", "entry 0 slot 0", 0)

	what, text := logForCopy(w, nil)
	if what != "sim log" || !strings.Contains(text, "M1") || !strings.Contains(text, "placed") {
		t.Fatalf("no selection should copy the whole log, got %q:\n%s", what, text)
	}

	what, text = logForCopy(w, m0)
	if what != "M0 log" {
		t.Fatalf("what = %q", what)
	}
	if !strings.Contains(text, "entry 0 strength") || strings.Contains(text, "M1") || strings.Contains(text, "placed") {
		t.Fatalf("selected copy should hold only M0's entries:\n%s", text)
	}
}
