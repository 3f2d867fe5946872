package main

import (
	"flag"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/Garsondee/Bolster/internal/game"
	"golang.org/x/sync/errgroup"
)

type runStats struct {
	runIndex int
	seed     int64

	firstAcquireTick int
	firstBreakInTick int
	firstBreachTick  int
	firstJumpTick    int

	stateChanges  int
	acquires      int
	breakIns      int
	misses        int
	abandons      int
	pathBlocks    int
	jumps         int
	deceptions    int
	boardsPlaced  int
	boardsPruned  int
	entryCount    int
	finalBoards   int
	finalBreached int
	targeted      map[string]int // entry label → acquisitions

	windowSummary *game.WindowReport
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var carpenter float64
	var agents int
	var parallel int
	var configPath string

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.Float64Var(&carpenter, "carpenter", 3, "seconds between scripted boards (0 disables)")
	flag.IntVar(&agents, "agents", 2, "agents spawned at the yard corners")
	flag.IntVar(&parallel, "parallel", runtime.NumCPU(), "runs simulated at once")
	flag.StringVar(&configPath, "config", "", "YAML tuning file")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if agents < 0 || agents > 4 {
		fmt.Println("error: -agents must be in 0..4")
		return
	}

	tuning := game.DefaultTuning()
	if configPath != "" {
		t, err := game.LoadTuning(configPath)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		tuning = t
	}
	level := game.DefaultLevelConfig()
	level.AgentCount = agents

	fmt.Printf("=== Headless Siege Report ===\n")
	fmt.Printf("runs=%d ticks=%d seed_base=%d seed_step=%d carpenter=%.1fs agents=%d\n\n",
		runs, ticks, seedBase, seedStep, carpenter, agents)

	all := make([]runStats, runs)
	var eg errgroup.Group
	if parallel > 0 {
		eg.SetLimit(parallel)
	}
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		eg.Go(func() error {
			all[i] = runSiege(i+1, seed, ticks, tuning, level, carpenter)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	for _, rs := range all {
		printRun(rs)
	}
	printAggregate(all)
}

func runSiege(runIndex int, seed int64, ticks int, tuning game.Tuning, level game.LevelConfig, carpenter float64) runStats {
	opts := []game.SimOption{
		game.WithSeed(seed),
		game.WithTuning(tuning),
		game.WithGeneratedLevel(level),
		game.WithReporter(60),
	}
	if carpenter > 0 {
		opts = append(opts, game.WithCarpenter(carpenter))
	}
	ts := game.NewTestSim(opts...)
	ts.RunTicks(ticks)

	entries := ts.SimLog.Entries()
	targeted := map[string]int{}
	for _, e := range entries {
		if e.Category == "target" && e.Key == "acquire" {
			// "entry <id> strength <s>"
			if f := strings.Fields(e.Value); len(f) >= 2 {
				targeted[f[0]+" "+f[1]]++
			}
		}
	}

	return runStats{
		runIndex:         runIndex,
		seed:             seed,
		firstAcquireTick: firstTick(entries, "target", "acquire", ""),
		firstBreakInTick: firstTick(entries, "breakin", "board_removed", ""),
		firstBreachTick:  firstTick(entries, "breakin", "board_removed", ", 0 left"),
		firstJumpTick:    firstTick(entries, "jump", "start", ""),
		stateChanges:     ts.SimLog.CountCategory("state", "change"),
		acquires:         ts.SimLog.CountCategory("target", "acquire"),
		breakIns:         ts.SimLog.CountCategory("breakin", "board_removed"),
		misses:           ts.SimLog.CountCategory("breakin", "miss"),
		abandons:         ts.SimLog.CountCategory("target", "abandon"),
		pathBlocks:       ts.SimLog.CountCategory("target", "path_blocked"),
		jumps:            ts.SimLog.CountCategory("jump", "start"),
		deceptions:       ts.SimLog.CountCategory("deceive", "armed"),
		boardsPlaced:     ts.SimLog.CountCategory("board", "placed"),
		boardsPruned:     sumNum(ts.SimLog.Filter("board", "reconciled")),
		entryCount:       len(ts.Registry.EntryPoints()),
		finalBoards:      ts.Registry.BoardCount(),
		finalBreached:    len(ts.World.Breached()),
		targeted:         targeted,
		windowSummary:    ts.Reporter.WindowSummary(),
	}
}

func firstTick(entries []game.SimLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || e.Key != key {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func sumNum(entries []game.SimLogEntry) int {
	n := 0
	for _, e := range entries {
		n += int(e.NumVal)
	}
	return n
}

// siegeVerdict classifies how the defence fared over one run.
//
//	held      every entry point still boarded, nothing broken open
//	overrun   at least half the entry points end bare
//	contested anything in between
func siegeVerdict(rs runStats) (string, string) {
	if rs.entryCount == 0 {
		return "contested", "no_entry_points"
	}
	var reasons []string
	if rs.breakIns > 0 {
		reasons = append(reasons, fmt.Sprintf("breakins=%d", rs.breakIns))
	}
	if rs.finalBreached > 0 {
		reasons = append(reasons, fmt.Sprintf("breached=%d/%d", rs.finalBreached, rs.entryCount))
	}
	if rs.boardsPlaced > 0 {
		reasons = append(reasons, fmt.Sprintf("placed=%d", rs.boardsPlaced))
	}
	reason := strings.Join(reasons, ",")
	if reason == "" {
		reason = "quiet"
	}

	switch {
	case rs.finalBreached == 0 && rs.firstBreachTick < 0:
		return "held", reason
	case rs.finalBreached*2 >= rs.entryCount:
		return "overrun", reason
	default:
		return "contested", reason
	}
}

func printRun(rs runStats) {
	verdict, reason := siegeVerdict(rs)
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("verdict: %s (%s)\n", verdict, reason)
	fmt.Printf("phase_markers: first_acquire=%d first_breakin=%d first_breach=%d first_jump=%d\n",
		rs.firstAcquireTick, rs.firstBreakInTick, rs.firstBreachTick, rs.firstJumpTick)
	fmt.Printf("agent_events: state_change=%d acquire=%d breakin=%d miss=%d abandon=%d path_blocked=%d jump=%d deceive=%d\n",
		rs.stateChanges, rs.acquires, rs.breakIns, rs.misses, rs.abandons, rs.pathBlocks, rs.jumps, rs.deceptions)
	fmt.Printf("fortifications: placed=%d pruned=%d final_boards=%d final_breached=%d/%d\n",
		rs.boardsPlaced, rs.boardsPruned, rs.finalBoards, rs.finalBreached, rs.entryCount)
	fmt.Printf("targeted: %s\n", joinCounts(rs.targeted))
	if rs.windowSummary != nil {
		fmt.Printf("window_samples=%d window_tick_range=%d..%d\n",
			rs.windowSummary.SampleCount, rs.windowSummary.FromTick, rs.windowSummary.ToTick)
		fmt.Printf("window_avg: boards=%.1f breached=%.1f strength=%.2f min_boards=%d max_breached=%d\n",
			rs.windowSummary.AvgBoards,
			rs.windowSummary.AvgBreached,
			rs.windowSummary.AvgStrength,
			rs.windowSummary.MinBoards,
			rs.windowSummary.MaxBreached,
		)
	}
	fmt.Println()
}

func printAggregate(all []runStats) {
	totalBreakIns := 0
	totalMisses := 0
	totalAbandons := 0
	totalBlocks := 0
	totalJumps := 0
	totalDeceptions := 0
	totalPlaced := 0
	totalPruned := 0

	acquireTicks := make([]int, 0, len(all))
	breakInTicks := make([]int, 0, len(all))
	breachTicks := make([]int, 0, len(all))
	verdicts := map[string]int{}
	targeted := map[string]int{}

	for _, rs := range all {
		totalBreakIns += rs.breakIns
		totalMisses += rs.misses
		totalAbandons += rs.abandons
		totalBlocks += rs.pathBlocks
		totalJumps += rs.jumps
		totalDeceptions += rs.deceptions
		totalPlaced += rs.boardsPlaced
		totalPruned += rs.boardsPruned
		if rs.firstAcquireTick >= 0 {
			acquireTicks = append(acquireTicks, rs.firstAcquireTick)
		}
		if rs.firstBreakInTick >= 0 {
			breakInTicks = append(breakInTicks, rs.firstBreakInTick)
		}
		if rs.firstBreachTick >= 0 {
			breachTicks = append(breachTicks, rs.firstBreachTick)
		}
		v, _ := siegeVerdict(rs)
		verdicts[v]++
		for k, n := range rs.targeted {
			targeted[k] += n
		}
	}

	n := len(all)
	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d verdicts: %s\n", n, joinCounts(verdicts))
	fmt.Printf("avg_agent_events_per_run: breakin=%.1f miss=%.1f abandon=%.1f path_blocked=%.1f jump=%.1f deceive=%.1f\n",
		avg(totalBreakIns, n), avg(totalMisses, n), avg(totalAbandons, n), avg(totalBlocks, n), avg(totalJumps, n), avg(totalDeceptions, n))
	fmt.Printf("avg_fortification_per_run: placed=%.1f pruned=%.1f\n", avg(totalPlaced, n), avg(totalPruned, n))
	fmt.Printf("phase_marker_avg_ticks: first_acquire=%s first_breakin=%s first_breach=%s\n",
		avgTickString(acquireTicks), avgTickString(breakInTicks), avgTickString(breachTicks))
	fmt.Printf("most_targeted: %s\n", topCount(targeted))
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

// topCount returns the largest entry as "key(n)", ties broken by key.
func topCount(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	best := ""
	bestN := 0
	for k, v := range counts {
		if v > bestN || (v == bestN && k < best) {
			best = k
			bestN = v
		}
	}
	return fmt.Sprintf("%s(%d)", best, bestN)
}

func joinCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}
