package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 60TPS).
const reportWindowTicks = 600

// allStates lists agent states in display order.
var allStates = []AgentState{
	StatePatrolling, StateAssessing, StateDeceiving, StateAttacking, StateSearching, StateJumping,
}

// --- Snapshot types ---

// EntryReport captures one entry point at one point in time.
type EntryReport struct {
	ID       EntryPointID
	Name     string
	Boards   int
	Strength float64
	Targeted int // agents currently holding this entry as their target
}

// AgentReport captures a single agent's state.
type AgentReport struct {
	Label    string
	State    AgentState
	Target   EntryPointID
	Attempts int
	X, Y, Z  float64
	Stats    AgentStats
}

// SiegeReport is a full snapshot of the siege at one tick.
type SiegeReport struct {
	Tick int

	// Agent state distribution (AgentState → count).
	States map[AgentState]int

	Boards      int // live boards across all entry points
	Breached    int // entry points with no boards
	AvgStrength float64
	Weakest     EntryPointID

	Entries []EntryReport
	Agents  []AgentReport // verbose only
}

// --- Reporter ---

// SiegeReporter collects periodic reports from a world and can produce
// summaries over sliding time windows.
type SiegeReporter struct {
	history     []SiegeReport
	windowTicks int
	verbose     bool
}

// NewSiegeReporter creates a reporter with the given window size.
func NewSiegeReporter(windowTicks int, verbose bool) *SiegeReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SiegeReporter{
		windowTicks: windowTicks,
		verbose:     verbose,
	}
}

// Collect gathers a snapshot from the current world state.
// Call this periodically (e.g. every 60 ticks / 1s).
func (r *SiegeReporter) Collect(w *World) {
	report := SiegeReport{
		Tick:    w.Tick,
		States:  make(map[AgentState]int),
		Weakest: NoEntryPoint,
	}

	targeted := make(map[EntryPointID]int)
	for _, a := range w.Agents {
		report.States[a.State()]++
		if a.Target() != NoEntryPoint {
			targeted[a.Target()]++
		}
		if r.verbose {
			p := a.Position()
			report.Agents = append(report.Agents, AgentReport{
				Label:    a.Label(),
				State:    a.State(),
				Target:   a.Target(),
				Attempts: a.AttackAttempts(),
				X:        p.X,
				Y:        p.Y,
				Z:        p.Z,
				Stats:    a.Stats(),
			})
		}
	}

	weakest := 0.0
	for _, ep := range w.Registry.EntryPoints() {
		er := EntryReport{
			ID:       ep.ID,
			Name:     ep.Name,
			Boards:   w.Registry.LiveCount(ep.ID),
			Strength: w.Registry.Strength(ep.ID),
			Targeted: targeted[ep.ID],
		}
		report.Boards += er.Boards
		report.AvgStrength += er.Strength
		if er.Boards == 0 {
			report.Breached++
		}
		if report.Weakest == NoEntryPoint || er.Strength < weakest {
			report.Weakest, weakest = ep.ID, er.Strength
		}
		report.Entries = append(report.Entries, er)
	}
	if len(report.Entries) > 0 {
		report.AvgStrength /= float64(len(report.Entries))
	}

	r.history = append(r.history, report)

	// Prune old history beyond 2x window to prevent unbounded growth.
	maxKeep := r.windowTicks / 60 * 2
	if maxKeep < 100 {
		maxKeep = 100
	}
	if len(r.history) > maxKeep {
		r.history = r.history[len(r.history)-maxKeep:]
	}
}

// Latest returns the most recent report, or nil if none collected yet.
func (r *SiegeReporter) Latest() *SiegeReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// History returns all retained reports.
func (r *SiegeReporter) History() []SiegeReport {
	return r.history
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	// State distribution as percentages (0-100).
	StatePct map[AgentState]float64

	AvgBoards     float64
	AvgBreached   float64
	AvgStrength   float64
	MinBoards     int
	MaxBreached   int
	MostTargeted  string
	MostTargetedN int
}

// WindowSummary returns an aggregated summary over the recent time window.
func (r *SiegeReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []SiegeReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}
	if len(window) == 0 {
		return nil
	}

	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    window[len(window)-1].Tick,
		ToTick:      window[0].Tick,
		SampleCount: len(window),
		StatePct:    make(map[AgentState]float64),
		MinBoards:   window[0].Boards,
	}

	stateTotal := make(map[AgentState]float64)
	total := 0.0
	targetedBy := make(map[string]int)
	for _, rpt := range window {
		for s, c := range rpt.States {
			stateTotal[s] += float64(c)
			total += float64(c)
		}
		wr.AvgBoards += float64(rpt.Boards)
		wr.AvgBreached += float64(rpt.Breached)
		wr.AvgStrength += rpt.AvgStrength
		if rpt.Boards < wr.MinBoards {
			wr.MinBoards = rpt.Boards
		}
		if rpt.Breached > wr.MaxBreached {
			wr.MaxBreached = rpt.Breached
		}
		for _, e := range rpt.Entries {
			targetedBy[e.Name] += e.Targeted
		}
	}
	if total > 0 {
		for s, c := range stateTotal {
			wr.StatePct[s] = c / total * 100
		}
	}
	for name, c := range targetedBy {
		if c > wr.MostTargetedN || (c == wr.MostTargetedN && name < wr.MostTargeted) {
			wr.MostTargeted, wr.MostTargetedN = name, c
		}
	}

	wr.AvgBoards /= n
	wr.AvgBreached /= n
	wr.AvgStrength /= n
	return wr
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Siege Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	sb.WriteString("\n--- Agent State Distribution ---\n")
	for _, s := range allStates {
		if pct, ok := wr.StatePct[s]; ok && pct > 0.5 {
			fmt.Fprintf(&sb, "  %-12s %5.1f%%\n", s, pct)
		}
	}

	sb.WriteString("\n--- Fortifications ---\n")
	fmt.Fprintf(&sb, "  boards: avg=%.1f min=%d\n", wr.AvgBoards, wr.MinBoards)
	fmt.Fprintf(&sb, "  breached: avg=%.1f max=%d\n", wr.AvgBreached, wr.MaxBreached)
	fmt.Fprintf(&sb, "  avg strength=%.2f (%s)\n", wr.AvgStrength, strengthLabel(wr.AvgStrength))
	if wr.MostTargeted != "" {
		fmt.Fprintf(&sb, "  most targeted: %s (%d samples)\n", wr.MostTargeted, wr.MostTargetedN)
	}
	return sb.String()
}

func strengthLabel(s float64) string {
	switch {
	case s >= 1.5:
		return "sealed"
	case s >= 1.0:
		return "solid"
	case s >= 0.5:
		return "patchy"
	case s > 0:
		return "thin"
	default:
		return "wide open"
	}
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *SiegeReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d ---\n", rpt.Tick)
	fmt.Fprintf(&sb, "boards=%d breached=%d avg_strength=%.2f weakest=%d\n",
		rpt.Boards, rpt.Breached, rpt.AvgStrength, rpt.Weakest)
	sb.WriteString("states: ")
	for _, s := range allStates {
		if c := rpt.States[s]; c > 0 {
			fmt.Fprintf(&sb, "%s=%d ", s, c)
		}
	}
	sb.WriteByte('\n')
	for _, e := range rpt.Entries {
		fmt.Fprintf(&sb, "  %-10s boards=%d strength=%.2f targeted=%d\n", e.Name, e.Boards, e.Strength, e.Targeted)
	}
	for _, a := range rpt.Agents {
		fmt.Fprintf(&sb, "  %-4s %-10s target=%d attempts=%d breakins=%d jumps=%d\n",
			a.Label, a.State, a.Target, a.Attempts, a.Stats.BreakIns, a.Stats.Jumps)
	}
	return sb.String()
}

// StateProportions returns the fraction of agents in each state.
func StateProportions(agents []*IntrusionAgent) map[AgentState]float64 {
	props := make(map[AgentState]float64)
	if len(agents) == 0 {
		return props
	}
	for _, a := range agents {
		props[a.State()]++
	}
	for s := range props {
		props[s] /= float64(len(agents))
	}
	return props
}
