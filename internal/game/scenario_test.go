package game

import (
	"fmt"
	"strings"
	"testing"
)

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, ts *TestSim) {
	t.Helper()
	entries := ts.SimLog.Entries()
	if len(entries) == 0 {
		t.Log("(no log entries)")
		return
	}
	for _, e := range entries {
		t.Log(e.String())
	}
}

// dumpSummary prints the scenario summary block.
func dumpSummary(t *testing.T, ts *TestSim) {
	t.Helper()
	t.Log(ts.SimLog.Summary(ts.CurrentTick(), ts.World.Agents, ts.Registry))
	if ts.Reporter != nil {
		t.Log(ts.Reporter.FormatLatest())
		if wr := ts.Reporter.WindowSummary(); wr != nil {
			t.Log(wr.Format())
		}
	}
}

// siegeLevel is a compact house-and-yard layout where the corner spawns sit
// inside detection range of a player at the origin.
func siegeLevel() LevelConfig {
	cfg := DefaultLevelConfig()
	cfg.YardHalfSize = 12
	cfg.DebrisClusters = 4
	return cfg
}

// --- Scenario: Siege Capacity Invariant ---

func TestScenario_SiegeCapacityInvariant(t *testing.T) {
	t.Log("=== TestScenario_SiegeCapacityInvariant ===")
	t.Log("--- Setup: generated house, 2 agents at the yard corners, carpenter every 2s ---")

	for _, seed := range []int64{1, 7, 42} {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			ts := NewTestSim(
				WithSeed(seed),
				WithGeneratedLevel(siegeLevel()),
				WithCarpenter(2),
				WithReporter(60),
			)
			if len(ts.World.Agents) != 2 {
				t.Fatalf("agents = %d, want 2", len(ts.World.Agents))
			}

			violation := ts.RunUntil(func(ts *TestSim) bool {
				for _, ep := range ts.Registry.EntryPoints() {
					if n := ts.Registry.LiveCount(ep.ID); n < 0 || n > MaxBoardsPerEntryPoint {
						t.Errorf("T=%d entry %d holds %d boards", ts.CurrentTick(), ep.ID, n)
						return true
					}
				}
				return false
			}, 60*60)
			if violation >= 0 {
				dumpLog(t, ts)
			}
			dumpSummary(t, ts)

			if !ts.SimLog.HasEntry("target", "acquire", "") {
				dumpLog(t, ts)
				t.Fatal("no agent ever acquired a target")
			}
			if ts.SimLog.CountCategory("board", "placed") == 0 {
				t.Fatal("carpenter never placed a board")
			}
			if got := len(ts.Reporter.History()); got == 0 {
				t.Fatal("reporter collected nothing")
			}
		})
	}
}

// --- Scenario: Agent Breaks Into The Weakest Window ---

func TestScenario_AgentBreaksWeakest(t *testing.T) {
	t.Log("=== TestScenario_AgentBreaksWeakest ===")
	t.Log("--- Setup: two windows facing -Z, left has 2 boards, right has 1; agent south of the right one ---")

	cfg := DefaultAgentConfig()
	cfg.DeceptionChance = 0
	ts := NewTestSim(
		WithSeed(3),
		WithAgentConfig(cfg),
		WithWindow(-4, 1.4, 0, Vec3{0, 0, -1}),
		WithWindow(4, 1.4, 0, Vec3{0, 0, -1}),
		WithBoards(0, 2),
		WithBoards(1, 1),
		WithAgent(4, -8),
		WithPlayer(0, 5),
	)
	left, right := ts.Window(0), ts.Window(1)

	tick := ts.RunUntil(func(ts *TestSim) bool {
		return ts.Registry.LiveCount(right) == 0
	}, 60*20)
	dumpLog(t, ts)
	dumpSummary(t, ts)

	if tick < 0 {
		t.Fatal("the weaker window was never broken")
	}
	last, ok := ts.SimLog.LastOf("target", "acquire")
	if !ok || !strings.HasPrefix(last.Value, fmt.Sprintf("entry %d ", right)) {
		t.Fatalf("last acquisition %q, want entry %d", last.Value, right)
	}
	if n := ts.Registry.LiveCount(left); n != 2 {
		t.Fatalf("stronger window lost boards: %d left", n)
	}
	if ts.Agent(0).Stats().BreakIns != 1 {
		t.Fatalf("break-ins = %d, want 1", ts.Agent(0).Stats().BreakIns)
	}
	if ts.Cues.Count(CueImpact) == 0 {
		t.Fatal("board break made no impact sound")
	}
}

// --- Scenario: Explosion Is Reconciled ---

func TestScenario_ExplosionReconciled(t *testing.T) {
	t.Log("=== TestScenario_ExplosionReconciled ===")

	ts := NewTestSim(
		WithWindow(0, 1.4, 0, Vec3{0, 0, -1}),
		WithBoards(0, 3),
		WithoutPlayer(),
	)
	w := ts.Window(0)
	if ts.Registry.Capacity(w) != 0 {
		t.Fatalf("setup: capacity %d, want 0", ts.Registry.Capacity(w))
	}

	if n := ts.World.Explode(Vec3{0, 1.4, -0.5}, 2); n != 3 {
		t.Fatalf("explosion destroyed %d boards, want 3", n)
	}
	ts.RunTicks(1)
	dumpLog(t, ts)

	e, ok := ts.SimLog.LastOf("board", "reconciled")
	if !ok || e.NumVal != 3 {
		t.Fatalf("reconcile entry %+v ok=%v, want 3 pruned", e, ok)
	}
	if ts.Registry.Capacity(w) != MaxBoardsPerEntryPoint {
		t.Fatalf("capacity after reconcile = %d", ts.Registry.Capacity(w))
	}
	if _, rej := ts.World.Fortify(w); rej != RejectNone {
		t.Fatalf("re-board after explosion rejected: %s", rej)
	}
}

// --- Scenario: Demolish Then Carpenter Refill ---

func TestScenario_DemolishThenRefill(t *testing.T) {
	t.Log("=== TestScenario_DemolishThenRefill ===")

	ts := NewTestSim(
		WithWindow(-3, 1.4, 0, Vec3{0, 0, -1}),
		WithWindow(3, 1.4, 0, Vec3{0, 0, -1}),
		WithCarpenter(0.5),
		WithoutPlayer(),
	)
	ts.RunSeconds(4)
	for i := 0; i < 2; i++ {
		if n := ts.Registry.LiveCount(ts.Window(i)); n != MaxBoardsPerEntryPoint {
			dumpLog(t, ts)
			t.Fatalf("window %d has %d boards after 4s, want full", i, n)
		}
	}

	if n := ts.World.Demolish(ts.Window(0)); n != MaxBoardsPerEntryPoint {
		t.Fatalf("demolished %d, want %d", n, MaxBoardsPerEntryPoint)
	}
	if got := ts.World.Breached(); len(got) != 1 || got[0] != ts.Window(0) {
		t.Fatalf("breached = %v", got)
	}

	ts.RunSeconds(2)
	dumpLog(t, ts)
	slots := ts.Registry.Slots(ts.Window(0))
	if len(slots) != MaxBoardsPerEntryPoint {
		t.Fatalf("window 0 refilled to %d boards", len(slots))
	}
	for i, s := range slots {
		if s.Index != i {
			t.Fatalf("refilled slot %d has index %d", i, s.Index)
		}
	}
	if len(ts.World.Breached()) != 0 {
		t.Fatal("a window is still open after the refill")
	}
}

// --- Scenario: Deterministic Replay ---

func TestScenario_DeterministicReplay(t *testing.T) {
	t.Log("=== TestScenario_DeterministicReplay ===")

	run := func() (string, int) {
		ts := NewTestSim(
			WithSeed(7),
			WithGeneratedLevel(siegeLevel()),
			WithCarpenter(3),
		)
		ts.RunSeconds(30)
		return ts.SimLog.Format(), ts.Registry.BoardCount()
	}
	logA, boardsA := run()
	logB, boardsB := run()
	if boardsA != boardsB {
		t.Fatalf("board counts differ: %d vs %d", boardsA, boardsB)
	}
	if logA != logB {
		t.Fatal("same seed produced different logs")
	}
	t.Logf("replay log: %d bytes, %d boards", len(logA), boardsA)
}

// --- Scenario: Patrol Without Player ---

func TestScenario_PatrolWithoutPlayer(t *testing.T) {
	t.Log("=== TestScenario_PatrolWithoutPlayer ===")

	ts := NewTestSim(
		WithSeed(11),
		WithGeneratedLevel(siegeLevel()),
		WithoutPlayer(),
	)
	ts.RunSeconds(20)
	dumpSummary(t, ts)

	for _, a := range ts.World.Agents {
		if a.State() != StatePatrolling {
			t.Errorf("%s is %s with no player, want patrolling", a.Label(), a.State())
		}
		if a.Stats().BreakIns != 0 {
			t.Errorf("%s broke in without ever assessing", a.Label())
		}
		p := a.Position()
		if ts.World.Level.House.ContainsFlat(p) {
			t.Errorf("%s walked into the house at (%.1f,%.1f)", a.Label(), p.X, p.Z)
		}
	}
	if ts.SimLog.HasEntry("target", "acquire", "") {
		t.Fatal("target acquired with no player present")
	}
}
