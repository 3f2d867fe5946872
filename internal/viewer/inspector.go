package viewer

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/Garsondee/Bolster/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// Inspector panel: rendered into an offscreen buffer at 1x then blitted at
// inspScale.
const (
	inspScale = 2
	inspBufW  = 220
	inspBufH  = 200
	inspPad   = 4
	inspLineH = 13
)

// inspector tracks the selected agent by index; set is false when none is.
type inspector struct {
	index   int
	set     bool
	rawView bool
	buf     *ebiten.Image
}

// selected returns the inspected agent, or nil.
func (in *inspector) selected(agents []*game.IntrusionAgent) *game.IntrusionAgent {
	if !in.set || in.index < 0 || in.index >= len(agents) {
		return nil
	}
	return agents[in.index]
}

// cycle steps through agents and then back to none.
func (in *inspector) cycle(n int) {
	if n == 0 {
		in.set = false
		return
	}
	if !in.set {
		in.set, in.index = true, 0
		return
	}
	in.index++
	if in.index >= n {
		in.set = false
		in.index = 0
	}
}

// pick selects the agent nearest p within radius, or clears the selection.
func (in *inspector) pick(agents []*game.IntrusionAgent, p game.Vec3, radius float64) bool {
	best := -1
	bestD := math.Inf(1)
	for i, a := range agents {
		if d := a.Position().FlatDist(p); d <= radius && d < bestD {
			best, bestD = i, d
		}
	}
	in.set = best >= 0
	if in.set {
		in.index = best
	}
	return in.set
}

// curatedLines is the readable summary of one agent.
func curatedLines(a *game.IntrusionAgent, reg *game.FortificationRegistry, now float64) []string {
	st := a.Stats()
	lines := []string{
		"-- SITUATION --",
		fmt.Sprintf("state: %s for %.1fs", a.State(), now-a.StateSince()),
	}
	if id := a.Target(); id != game.NoEntryPoint {
		lines = append(lines, fmt.Sprintf("target: %d  boards=%d  str=%.2f", id, reg.LiveCount(id), reg.Strength(id)))
		lines = append(lines, fmt.Sprintf("attempts: %d/%d", a.AttackAttempts(), a.Config().MaxAttackAttempts))
	} else {
		lines = append(lines, "target: none")
	}
	if p, ok := a.LastKnownPlayer(); ok {
		lines = append(lines, fmt.Sprintf("player seen @(%.1f,%.1f)", p.X, p.Z))
	}
	if frac, ok := a.JumpProgress(now); ok {
		lines = append(lines, fmt.Sprintf("jump: %3.0f%%  y=%.2f", frac*100, a.Position().Y))
	}
	if d := a.Deception(); d != nil && d.Armed() {
		lines = append(lines, fmt.Sprintf("deceiving: resolves in %.1fs", d.Deadline()-now))
	}
	lines = append(lines,
		"-- RECORD --",
		fmt.Sprintf("breakins %d  misses %d", st.BreakIns, st.Misses),
		fmt.Sprintf("abandons %d  blocks %d", st.Abandons, st.PathBlocks),
		fmt.Sprintf("jumps %d  deceptions %d", st.Jumps, st.Deceptions),
	)
	return lines
}

// rawLines dumps the agent's accessors without interpretation.
func rawLines(a *game.IntrusionAgent, now float64) []string {
	p := a.Position()
	st := a.Stats()
	dest, hasDest := a.PatrolDestination()
	return []string{
		fmt.Sprintf("id=%d label=%s", a.ID(), a.Label()),
		fmt.Sprintf("pos=(%.2f,%.2f,%.2f)", p.X, p.Y, p.Z),
		fmt.Sprintf("state=%d since=%.2f now=%.2f", a.State(), a.StateSince(), now),
		fmt.Sprintf("target=%d attempts=%d", a.Target(), a.AttackAttempts()),
		fmt.Sprintf("patrol=%v (%.1f,%.1f)", hasDest, dest.X, dest.Z),
		fmt.Sprintf("%+v", st),
	}
}

// drawInspector renders the panel for the selected agent, top-right of
// the playfield.
func (g *Game) drawInspector(screen *ebiten.Image) {
	a := g.inspector.selected(g.world.Agents)
	if a == nil {
		return
	}
	if g.inspector.buf == nil {
		g.inspector.buf = ebiten.NewImage(inspBufW, inspBufH)
	}
	buf := g.inspector.buf
	buf.Clear()

	bw, bh := float32(inspBufW), float32(inspBufH)
	border := color.RGBA{R: 55, G: 80, B: 55, A: 255}
	vector.FillRect(buf, 0, 0, bw, bh, color.RGBA{R: 14, G: 16, B: 14, A: 230}, false)
	vector.StrokeRect(buf, 0, 0, bw, bh, 1.0, border, false)

	lx, ly := inspPad, inspPad
	ebitenutil.DebugPrintAt(buf, fmt.Sprintf("[ %s ]", a.Label()), lx, ly)
	ly += inspLineH + 2
	view := "CURATED"
	if g.inspector.rawView {
		view = "RAW"
	}
	ebitenutil.DebugPrintAt(buf, fmt.Sprintf("view: %s  [I] toggle", view), lx, ly)
	ly += inspLineH + 4
	vector.StrokeLine(buf, float32(lx), float32(ly), bw-inspPad, float32(ly), 1.0, border, false)
	ly += 4

	var lines []string
	if g.inspector.rawView {
		// Stats dump is one long line; wrap it on field boundaries.
		for _, l := range rawLines(a, g.world.Now) {
			lines = append(lines, wrap(l, 34)...)
		}
	} else {
		lines = curatedLines(a, g.world.Registry, g.world.Now)
	}
	for _, l := range lines {
		if ly > inspBufH-inspLineH {
			break
		}
		ebitenutil.DebugPrintAt(buf, l, lx, ly)
		ly += inspLineH
	}

	px := g.offX + g.gameWidth - inspBufW*inspScale - 8
	py := g.offY + 8
	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(inspScale, inspScale)
	opts.GeoM.Translate(float64(px), float64(py))
	screen.DrawImage(buf, opts)
}

// wrap splits s on spaces into lines no longer than width where possible.
func wrap(s string, width int) []string {
	var out []string
	line := ""
	for _, word := range strings.Fields(s) {
		switch {
		case line == "":
			line = word
		case len(line)+1+len(word) > width:
			out = append(out, line)
			line = word
		default:
			line += " " + word
		}
	}
	if line != "" {
		out = append(out, line)
	}
	return out
}
