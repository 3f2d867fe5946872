package game

import (
	"fmt"
	"math"
	"math/rand"
)

// boardBreakForce is the impact force reported when a board is torn off.
const boardBreakForce = 8.0

// AgentState is the intrusion agent's high-level behaviour.
type AgentState int

const (
	StatePatrolling AgentState = iota // wandering between clear patrol points
	StateAssessing                    // ranking nearby entry points
	StateDeceiving                    // making noise without moving
	StateAttacking                    // closing on / breaking the target
	StateSearching                    // heading for where the player was last seen
	StateJumping                      // mid-air, cannot be interrupted
)

func (s AgentState) String() string {
	switch s {
	case StatePatrolling:
		return "patrolling"
	case StateAssessing:
		return "assessing"
	case StateDeceiving:
		return "deceiving"
	case StateAttacking:
		return "attacking"
	case StateSearching:
		return "searching"
	case StateJumping:
		return "jumping"
	default:
		return "unknown"
	}
}

// AgentStats counts what an agent has done over its lifetime.
type AgentStats struct {
	BreakIns      int // attempts that removed a board
	Misses        int // attempts against an unboarded target
	Abandons      int // targets dropped after the attempt cap
	Deceptions    int
	Jumps         int
	PathBlocks    int // approaches aborted by an obstruction
	LostTargets   int // targets that stopped resolving
	StateChanges  int
	TargetChanges int
}

// AgentDeps are the collaborators an agent is wired to at spawn.
type AgentDeps struct {
	Registry *FortificationRegistry
	Space    SpatialQuery
	Player   PlayerLocator  // may be nil: the agent never detects anyone
	Audio    AudioEmitter   // deception cues; nil is silent
	Impacts  *ImpactSounder // landing and board-break impacts; may be nil
	Rng      *rand.Rand
	Log      *SimLog
	Thoughts *ThoughtLog
	Tick     *int // current simulation tick, for log stamps
}

// IntrusionAgent is the hostile actor's controller. It owns its state machine
// and holds only an id of its target, which it re-resolves every tick.
type IntrusionAgent struct {
	id    int
	label string
	pos   Vec3
	cfg   AgentConfig

	registry *FortificationRegistry
	space    SpatialQuery
	player   PlayerLocator
	impacts  *ImpactSounder
	rng      *rand.Rand
	log      *SimLog
	thoughts *ThoughtLog
	tick     *int

	state      AgentState
	stateSince float64

	target         EntryPointID
	lastDecision   float64
	attackAttempts int
	lastAttack     float64
	lastJump       float64

	deception *DeceptionScheduler
	jump      jumpState

	patrolDest    Vec3
	hasPatrolDest bool

	lastKnownPlayer Vec3
	hasLastKnown    bool

	// blocked remembers entries whose approach was obstructed, keyed to the
	// time they become eligible again.
	blocked map[EntryPointID]float64

	stats AgentStats
}

// NewIntrusionAgent spawns an agent at pos in the Patrolling state.
func NewIntrusionAgent(id int, pos Vec3, cfg AgentConfig, deps AgentDeps) *IntrusionAgent {
	rng := deps.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(id) + 1)) // #nosec G404 -- gameplay randomness
	}
	return &IntrusionAgent{
		id:         id,
		label:      fmt.Sprintf("M%d", id),
		pos:        pos,
		cfg:        cfg,
		registry:   deps.Registry,
		space:      deps.Space,
		player:     deps.Player,
		impacts:    deps.Impacts,
		rng:        rng,
		log:        deps.Log,
		thoughts:   deps.Thoughts,
		tick:       deps.Tick,
		state:      StatePatrolling,
		target:     NoEntryPoint,
		lastAttack: math.Inf(-1),
		lastJump:   math.Inf(-1),
		deception:  NewDeceptionScheduler(cfg, rng, deps.Audio),
		blocked:    make(map[EntryPointID]float64),
	}
}

func (a *IntrusionAgent) ID() int                        { return a.id }
func (a *IntrusionAgent) Label() string                  { return a.label }
func (a *IntrusionAgent) Position() Vec3                 { return a.pos }
func (a *IntrusionAgent) State() AgentState              { return a.state }
func (a *IntrusionAgent) StateSince() float64            { return a.stateSince }
func (a *IntrusionAgent) Target() EntryPointID           { return a.target }
func (a *IntrusionAgent) AttackAttempts() int            { return a.attackAttempts }
func (a *IntrusionAgent) Deception() *DeceptionScheduler { return a.deception }
func (a *IntrusionAgent) Stats() AgentStats              { return a.stats }
func (a *IntrusionAgent) Config() AgentConfig            { return a.cfg }

// SetPosition teleports the agent. Used at spawn and by tests.
func (a *IntrusionAgent) SetPosition(p Vec3) { a.pos = p }

// PatrolDestination returns the current patrol point, if any.
func (a *IntrusionAgent) PatrolDestination() (Vec3, bool) { return a.patrolDest, a.hasPatrolDest }

// LastKnownPlayer returns where the player was last detected, if anywhere.
func (a *IntrusionAgent) LastKnownPlayer() (Vec3, bool) { return a.lastKnownPlayer, a.hasLastKnown }

// JumpProgress returns the fraction of the current jump completed at now.
func (a *IntrusionAgent) JumpProgress(now float64) (float64, bool) {
	if !a.jump.active {
		return 0, false
	}
	return a.jump.progress(now, a.cfg.JumpDuration), true
}

// Update advances the agent by one tick: the current state's behaviour
// first, then the decision cadence, which never interrupts a jump.
func (a *IntrusionAgent) Update(now, dt float64) {
	switch a.state {
	case StatePatrolling:
		a.updatePatrolling(now, dt)
	case StateAssessing:
		a.updateAssessing(now)
	case StateDeceiving:
		a.updateDeceiving(now)
	case StateAttacking:
		a.updateAttacking(now, dt)
	case StateSearching:
		a.updateSearching(now, dt)
	case StateJumping:
		a.updateJumping(now)
	}

	if a.state == StateJumping {
		return
	}
	if now-a.lastDecision >= a.cfg.DecisionInterval {
		a.decide(now)
		a.lastDecision = now
	}
}

// Force moves the agent into s as if a transition had fired. Forcing
// StateJumping without a jump target is ignored; use BeginJump.
func (a *IntrusionAgent) Force(s AgentState, now float64) {
	if s == StateJumping && !a.jump.active {
		return
	}
	a.setState(s, now)
}

// BeginJump launches an arc toward target starting at now.
func (a *IntrusionAgent) BeginJump(target Vec3, now float64) {
	if a.state == StateJumping {
		return
	}
	a.jump = jumpState{target: target}
	a.setState(StateJumping, now)
}

// decide is the periodic patrol/assess arbitration.
func (a *IntrusionAgent) decide(now float64) {
	if a.player != nil {
		if p, ok := a.player.PlayerPosition(); ok && a.pos.Dist(p) <= a.cfg.DetectionRange {
			a.lastKnownPlayer = p
			a.hasLastKnown = true
			a.setState(StateAssessing, now)
			return
		}
	}
	a.setState(StatePatrolling, now)
}

func (a *IntrusionAgent) setState(next AgentState, now float64) {
	if next == a.state {
		return
	}
	prev := a.state
	if prev == StateDeceiving {
		a.deception.Disarm()
	}
	if prev == StateJumping {
		a.jump.active = false
	}

	a.state = next
	a.stateSince = now
	a.stats.StateChanges++
	a.logEvent("state", "change", fmt.Sprintf("%s → %s", prev, next), 0)

	switch next {
	case StateDeceiving:
		a.stats.Deceptions++
		cue, played := a.deception.Arm(now, a.pos)
		detail := fmt.Sprintf("%s for %.2fs", cue.Category, a.deception.Delay())
		if !played {
			detail += " (silent)"
		}
		a.logEvent("deceive", "armed", detail, a.deception.Delay())
		a.think(fmt.Sprintf("makes a %s somewhere else", cue.Category))
	case StateJumping:
		a.stats.Jumps++
		a.jump.active = true
		a.jump.start = a.pos
		a.jump.startTime = now
		a.lastJump = now
		a.logEvent("jump", "start", fmt.Sprintf("(%.1f,%.1f,%.1f) → (%.1f,%.1f,%.1f)",
			a.pos.X, a.pos.Y, a.pos.Z, a.jump.target.X, a.jump.target.Y, a.jump.target.Z),
			a.pos.Dist(a.jump.target))
	case StatePatrolling:
		a.hasPatrolDest = false
	}
}

func (a *IntrusionAgent) updatePatrolling(now, dt float64) {
	if !a.hasPatrolDest || a.pos.FlatDist(a.patrolDest) < a.cfg.ArriveRadius {
		a.hasPatrolDest = false
		a.pickPatrolPoint()
	}
	if a.hasPatrolDest {
		a.stepToward(a.patrolDest, dt)
	}
}

// pickPatrolPoint samples offsets on the ground around the agent and keeps
// the first one reachable in a straight line.
func (a *IntrusionAgent) pickPatrolPoint() {
	for i := 0; i < a.cfg.PatrolSamples; i++ {
		angle := a.rng.Float64() * 2 * math.Pi
		r := math.Sqrt(a.rng.Float64()) * a.cfg.PatrolRadius
		cand := Vec3{a.pos.X + math.Cos(angle)*r, a.pos.Y, a.pos.Z + math.Sin(angle)*r}
		if a.space != nil && !a.space.LineClear(a.eye(a.pos), a.eye(cand), LayerSolid) {
			continue
		}
		a.patrolDest = cand
		a.hasPatrolDest = true
		a.logVerbose("patrol", "point", fmt.Sprintf("(%.1f,%.1f)", cand.X, cand.Z))
		return
	}
}

// updateAssessing picks the weakest resolvable entry point in range and then
// rolls between deceiving and attacking.
func (a *IntrusionAgent) updateAssessing(now float64) {
	best := NoEntryPoint
	bestStrength := math.Inf(1)
	if a.space != nil && a.registry != nil {
		for _, ref := range a.space.OverlapSphere(a.pos, a.cfg.DetectionRange, LayerWindow) {
			id, ok := a.registry.Lookup(ref)
			if !ok {
				continue
			}
			ep, ok := a.registry.Resolve(id)
			if !ok || !a.withinReach(ep) {
				continue
			}
			if a.isBlocked(id, now) {
				continue
			}
			if s := a.registry.Strength(id); s < bestStrength {
				best, bestStrength = id, s
			}
		}
	}

	if best == NoEntryPoint {
		if _, ok := a.resolveTarget(); !ok {
			a.clearTarget()
			if a.hasLastKnown {
				a.setState(StateSearching, now)
			} else {
				a.setState(StatePatrolling, now)
			}
			return
		}
	} else if best != a.target {
		a.target = best
		a.attackAttempts = 0
		a.stats.TargetChanges++
		a.logEvent("target", "acquire", fmt.Sprintf("entry %d strength %.2f", best, bestStrength), bestStrength)
		a.think(fmt.Sprintf("eyes entry %d (strength %.1f)", best, bestStrength))
	}

	if a.rng.Float64() < a.cfg.DeceptionChance {
		a.setState(StateDeceiving, now)
	} else {
		a.setState(StateAttacking, now)
	}
}

func (a *IntrusionAgent) updateDeceiving(now float64) {
	if a.deception.Elapsed(now) {
		a.setState(StateAssessing, now)
	}
}

func (a *IntrusionAgent) updateAttacking(now, dt float64) {
	ep, ok := a.resolveTarget()
	if !ok {
		if a.target != NoEntryPoint {
			a.stats.LostTargets++
			a.logEvent("target", "unresolved", fmt.Sprintf("entry %d", a.target), 0)
		}
		a.clearTarget()
		a.setState(StateAssessing, now)
		return
	}

	dist := a.pos.Dist(ep.Position)
	if a.reachDist(a.pos, ep) < a.cfg.MeleeRange {
		if now-a.lastAttack > a.cfg.AttackCooldown {
			a.breakIn(now, ep)
		}
		return
	}

	approach := a.approachPoint(ep)
	if dist <= a.cfg.JumpDistance && now-a.lastJump > a.cfg.JumpCooldown && a.canJumpTo(approach) {
		a.BeginJump(approach, now)
		return
	}

	if a.space != nil && !a.space.LineClear(a.eye(a.pos), a.eye(approach), LayerSolid) {
		a.stats.PathBlocks++
		a.logEvent("target", "path_blocked", fmt.Sprintf("entry %d", ep.ID), dist)
		if a.cfg.BlockedMemory > 0 {
			a.blocked[ep.ID] = now + a.cfg.BlockedMemory
		}
		a.clearTarget()
		a.setState(StateAssessing, now)
		return
	}
	a.stepToward(approach, dt)
}

// breakIn makes one removal attempt against the current target. Misses still
// count toward the attempt cap and reset the cooldown.
func (a *IntrusionAgent) breakIn(now float64, ep EntryPoint) {
	removed := a.registry.RemoveOne(ep.ID)
	a.attackAttempts++
	a.lastAttack = now

	left := a.registry.LiveCount(ep.ID)
	if removed {
		a.stats.BreakIns++
		a.logEvent("breakin", "board_removed", fmt.Sprintf("entry %d attempt %d, %d left", ep.ID, a.attackAttempts, left), float64(left))
		a.think(fmt.Sprintf("tears a board off entry %d", ep.ID))
		if a.impacts != nil {
			a.impacts.OnImpact(now, ep.Position, boardBreakForce)
		}
	} else {
		a.stats.Misses++
		a.logEvent("breakin", "miss", fmt.Sprintf("entry %d attempt %d", ep.ID, a.attackAttempts), 0)
	}

	if a.attackAttempts >= a.cfg.MaxAttackAttempts {
		a.stats.Abandons++
		a.logEvent("target", "abandon", fmt.Sprintf("entry %d after %d attempts", ep.ID, a.attackAttempts), float64(a.attackAttempts))
		a.clearTarget()
		a.setState(StateAssessing, now)
	}
}

func (a *IntrusionAgent) updateSearching(now, dt float64) {
	if !a.hasLastKnown {
		a.setState(StatePatrolling, now)
		return
	}
	if a.pos.FlatDist(a.lastKnownPlayer) < a.cfg.ArriveRadius {
		a.hasLastKnown = false
		a.logEvent("target", "search_done", "reached last known player position", 0)
		a.setState(StatePatrolling, now)
		return
	}
	goal := Vec3{a.lastKnownPlayer.X, a.pos.Y, a.lastKnownPlayer.Z}
	if a.space != nil && !a.space.LineClear(a.eye(a.pos), a.eye(goal), LayerSolid) {
		a.hasLastKnown = false
		a.logEvent("target", "search_lost", "trail blocked", 0)
		a.setState(StatePatrolling, now)
		return
	}
	a.stepToward(a.lastKnownPlayer, dt)
}

func (a *IntrusionAgent) updateJumping(now float64) {
	p := a.jump.progress(now, a.cfg.JumpDuration)
	if p <= 1 {
		a.pos = JumpArc(a.jump.start, a.jump.target, a.cfg.JumpHeight, p)
		return
	}
	a.pos = a.jump.target
	a.logEvent("jump", "land", fmt.Sprintf("(%.1f,%.1f,%.1f)", a.pos.X, a.pos.Y, a.pos.Z), 0)
	if a.impacts != nil {
		a.impacts.OnImpact(now, a.pos, landingSpeed(a.cfg.JumpHeight, a.cfg.JumpDuration))
	}
	a.setState(StateAssessing, now)
}

// canJumpTo checks reach, rise and a clear arc (start→apex→landing).
func (a *IntrusionAgent) canJumpTo(target Vec3) bool {
	if a.pos.Dist(target) > a.cfg.JumpDistance || math.Abs(target.Y-a.pos.Y) > a.cfg.JumpHeight {
		return false
	}
	if a.space == nil {
		return true
	}
	apex := JumpArc(a.pos, target, a.cfg.JumpHeight, 0.5)
	return a.space.LineClear(a.eye(a.pos), a.eye(apex), LayerSolid) &&
		a.space.LineClear(a.eye(apex), a.eye(target), LayerSolid)
}

// approachPoint is where the agent stands to work on ep: in front of the
// opening, on the agent's own ground level.
func (a *IntrusionAgent) approachPoint(ep EntryPoint) Vec3 {
	p := ep.Position.Add(ep.Normal.Flat().Normalize().Scale(a.cfg.MeleeRange / 2))
	p.Y = a.pos.Y
	return p
}

// reachDist is how far a body standing at from is from striking ep.
// Openings up to JumpHeight above the feet are struck by reaching up, so
// only the flat distance counts; anything higher or lower adds the excess.
func (a *IntrusionAgent) reachDist(from Vec3, ep EntryPoint) float64 {
	dy := ep.Position.Y - from.Y
	switch {
	case dy > a.cfg.JumpHeight:
		dy -= a.cfg.JumpHeight
	case dy > 0:
		dy = 0
	}
	return math.Hypot(from.FlatDist(ep.Position), dy)
}

// withinReach reports whether ep can be struck from its approach point.
func (a *IntrusionAgent) withinReach(ep EntryPoint) bool {
	return a.reachDist(a.approachPoint(ep), ep) < a.cfg.MeleeRange
}

// isBlocked reports whether id is still inside its obstruction memory,
// forgetting it once the memory has run out.
func (a *IntrusionAgent) isBlocked(id EntryPointID, now float64) bool {
	until, ok := a.blocked[id]
	if !ok {
		return false
	}
	if now >= until {
		delete(a.blocked, id)
		return false
	}
	return true
}

func (a *IntrusionAgent) resolveTarget() (EntryPoint, bool) {
	if a.target == NoEntryPoint || a.registry == nil {
		return EntryPoint{}, false
	}
	return a.registry.Resolve(a.target)
}

func (a *IntrusionAgent) clearTarget() {
	a.target = NoEntryPoint
	a.attackAttempts = 0
}

// stepToward moves along the ground toward dest at MoveSpeed, without
// overshooting.
func (a *IntrusionAgent) stepToward(dest Vec3, dt float64) {
	d := dest.Sub(a.pos).Flat()
	dist := d.Len()
	if dist < 1e-9 {
		return
	}
	step := a.cfg.MoveSpeed * dt
	if step >= dist {
		a.pos.X, a.pos.Z = dest.X, dest.Z
	} else {
		a.pos = a.pos.Add(d.Scale(step / dist))
	}
	a.logVerbose("move", "position", fmt.Sprintf("(%.2f,%.2f)", a.pos.X, a.pos.Z))
}

func (a *IntrusionAgent) eye(p Vec3) Vec3 {
	return Vec3{p.X, p.Y + a.cfg.EyeHeight, p.Z}
}

func (a *IntrusionAgent) currentTick() int {
	if a.tick == nil {
		return 0
	}
	return *a.tick
}

func (a *IntrusionAgent) logEvent(category, key, value string, num float64) {
	a.log.Add(a.currentTick(), a.label, category, key, value, num)
}

func (a *IntrusionAgent) logVerbose(category, key, value string) {
	a.log.AddVerbose(a.currentTick(), a.label, category, key, value, 0)
}

func (a *IntrusionAgent) think(msg string) {
	a.thoughts.Add(a.currentTick(), a.label, true, msg)
}
