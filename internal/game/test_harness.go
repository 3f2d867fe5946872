package game

import (
	"fmt"
	"math/rand"
)

// TestSim is a headless siege harness used by tests and the headless
// report. It wraps a World with deterministic seeding, a cue recorder and
// an optional scripted carpenter.
type TestSim struct {
	World    *World
	Scene    *Scene
	Registry *FortificationRegistry
	SimLog   *SimLog
	Cues     *CueRecorder
	Reporter *SiegeReporter // nil unless WithReporter was given
	Dt       float64

	seed      int64
	verbose   bool
	tuning    Tuning
	levelCfg  *LevelConfig
	level     *Level
	rng       *rand.Rand
	carpenter *Carpenter
	every     int // reporter collection period in ticks

	windows   []windowSpec
	obstacles []AABB
	agents    []Vec3
	player    *Vec3
	noPlayer  bool
	boards    map[int]int // window index → boards to pre-place
}

type windowSpec struct {
	centre, normal Vec3
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // seed, tuning, level layout, verbose: applied first
	simOptWorld                      // windows, obstacles, boards: applied after the level exists
	simOptActor                      // player and agents: applied last
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.seed = seed
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.verbose = v
	}}
}

// WithTuning replaces the default tuning.
func WithTuning(t Tuning) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.tuning = t
	}}
}

// WithAgentConfig replaces only the agent tuning block.
func WithAgentConfig(c AgentConfig) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.tuning.Agent = c
	}}
}

// WithGeneratedLevel builds the house-and-yard level instead of an open yard.
func WithGeneratedLevel(cfg LevelConfig) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		c := cfg
		ts.levelCfg = &c
	}}
}

// WithTimestep sets the seconds advanced per tick.
func WithTimestep(dt float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Dt = dt
	}}
}

// WithCarpenter enables a scripted defender that boards the weakest window
// every interval seconds.
func WithCarpenter(interval float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.carpenter = &Carpenter{Interval: interval}
	}}
}

// WithReporter collects a SiegeReport every `every` ticks.
func WithReporter(every int) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		if every < 1 {
			every = 1
		}
		ts.every = every
		ts.Reporter = NewSiegeReporter(reportWindowTicks, true)
	}}
}

// WithWindow adds a 1.2×1.2 window centred at (x,y,z) facing normal.
func WithWindow(x, y, z float64, normal Vec3) SimOption {
	return SimOption{simOptWorld, func(ts *TestSim) {
		ts.windows = append(ts.windows, windowSpec{centre: Vec3{x, y, z}, normal: normal})
	}}
}

// WithObstacle adds an obstacle box.
func WithObstacle(lo, hi Vec3) SimOption {
	return SimOption{simOptWorld, func(ts *TestSim) {
		ts.obstacles = append(ts.obstacles, AABB{Min: lo, Max: hi})
	}}
}

// WithBoards pre-places n boards on the window at index (in WithWindow order,
// or level order for a generated level).
func WithBoards(index, n int) SimOption {
	return SimOption{simOptWorld, func(ts *TestSim) {
		if ts.boards == nil {
			ts.boards = make(map[int]int)
		}
		ts.boards[index] += n
	}}
}

// WithAgent adds an intrusion agent standing at (x,0,z).
func WithAgent(x, z float64) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		ts.agents = append(ts.agents, Vec3{x, 0, z})
	}}
}

// WithPlayer places the player at (x,0,z).
func WithPlayer(x, z float64) SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		p := Vec3{x, 0, z}
		ts.player = &p
	}}
}

// WithoutPlayer removes the player so agents never detect anyone.
func WithoutPlayer() SimOption {
	return SimOption{simOptActor, func(ts *TestSim) {
		ts.noPlayer = true
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (seed, tuning, level layout, verbose)
//  2. Level, then windows, obstacles and boards
//  3. Player and agents
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		seed:   1,
		tuning: DefaultTuning(),
		Cues:   &CueRecorder{},
		Dt:     1.0 / 60.0,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}

	ts.rng = rand.New(rand.NewSource(ts.seed)) // #nosec G404 -- test harness
	if ts.levelCfg != nil {
		ts.level = BuildLevel(*ts.levelCfg, ts.tuning.Fort, ts.rng)
	} else {
		ts.level = NewOpenLevel(ts.tuning.Fort, 30, ts.rng)
	}

	for _, o := range opts {
		if o.kind == simOptWorld {
			o.fn(ts)
		}
	}
	for i, w := range ts.windows {
		ts.level.AddWindow(fmt.Sprintf("w%d", i), w.centre, w.normal, 1.2, 1.2, 0.2)
	}
	for _, b := range ts.obstacles {
		ts.level.AddDebris(b)
	}

	for _, o := range opts {
		if o.kind == simOptActor {
			o.fn(ts)
		}
	}
	if ts.player != nil {
		ts.level.PlayerSpawn = *ts.player
	}

	ts.World = NewWorldOnLevel(ts.tuning, ts.level, ts.rng, ts.Cues, ts.verbose)
	ts.Scene = ts.World.Scene
	ts.Registry = ts.World.Registry
	ts.SimLog = ts.World.Log
	if ts.noPlayer {
		ts.World.Player.Present = false
	}

	for idx, id := range ts.level.Windows {
		for i := 0; i < ts.boards[idx]; i++ {
			ts.World.Fortify(id)
		}
	}
	for i, pos := range ts.agents {
		ts.World.SpawnAgent(len(ts.level.AgentSpawns)+i, pos, ts.Cues)
	}
	return ts
}

// Window returns the entry point id of the i-th window.
func (ts *TestSim) Window(i int) EntryPointID {
	if i < 0 || i >= len(ts.level.Windows) {
		return NoEntryPoint
	}
	return ts.level.Windows[i]
}

// Agent returns the i-th agent.
func (ts *TestSim) Agent(i int) *IntrusionAgent {
	return ts.World.Agents[i]
}

// Now returns the simulation clock in seconds.
func (ts *TestSim) Now() float64 { return ts.World.Now }

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int { return ts.World.Tick }

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunSeconds advances the simulation by at least secs of game time.
func (ts *TestSim) RunSeconds(secs float64) {
	ts.RunTicks(int(secs/ts.Dt + 0.5))
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.World.Tick
		}
	}
	return -1
}

func (ts *TestSim) runOneTick() {
	if ts.carpenter != nil {
		ts.carpenter.Update(ts.World)
	}
	ts.World.Step(ts.Dt)
	if ts.Reporter != nil && ts.World.Tick%ts.every == 0 {
		ts.Reporter.Collect(ts.World)
	}
}

// SimSnapshot captures a lightweight state summary.
type SimSnapshot struct {
	Tick   int
	Boards int
	Agents []AgentSnapshot
}

// AgentSnapshot is a lightweight copy of an agent's state at a tick.
type AgentSnapshot struct {
	Label  string
	State  AgentState
	Target EntryPointID
	Pos    Vec3
}

// Snapshot returns the current state of all agents.
func (ts *TestSim) Snapshot() SimSnapshot {
	snap := SimSnapshot{Tick: ts.World.Tick, Boards: ts.Registry.BoardCount()}
	for _, a := range ts.World.Agents {
		snap.Agents = append(snap.Agents, AgentSnapshot{
			Label:  a.Label(),
			State:  a.State(),
			Target: a.Target(),
			Pos:    a.Position(),
		})
	}
	return snap
}
