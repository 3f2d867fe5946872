package viewer

import (
	"fmt"
	"image/color"

	"github.com/Garsondee/Bolster/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	colBackground = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	colYard       = color.RGBA{R: 28, G: 36, B: 26, A: 255}
	colFloor      = color.RGBA{R: 46, G: 40, B: 34, A: 255}
	colWall       = color.RGBA{R: 120, G: 112, B: 100, A: 255}
	colDebris     = color.RGBA{R: 92, G: 70, B: 44, A: 255}
	colBoard      = color.RGBA{R: 176, G: 130, B: 72, A: 255}
	colPlayer     = color.RGBA{R: 80, G: 150, B: 230, A: 255}
	colCursor     = color.RGBA{R: 220, G: 220, B: 220, A: 120}
	colBorder     = color.RGBA{R: 65, G: 90, B: 65, A: 255}
)

// stateColor is the agent marker colour for each state.
func stateColor(s game.AgentState) color.RGBA {
	switch s {
	case game.StatePatrolling:
		return color.RGBA{R: 130, G: 130, B: 130, A: 255}
	case game.StateAssessing:
		return color.RGBA{R: 220, G: 200, B: 70, A: 255}
	case game.StateDeceiving:
		return color.RGBA{R: 170, G: 90, B: 210, A: 255}
	case game.StateAttacking:
		return color.RGBA{R: 220, G: 60, B: 50, A: 255}
	case game.StateSearching:
		return color.RGBA{R: 230, G: 140, B: 40, A: 255}
	case game.StateJumping:
		return color.RGBA{R: 60, G: 210, B: 200, A: 255}
	default:
		return color.RGBA{R: 255, G: 0, B: 255, A: 255}
	}
}

// strengthColor fades an opening from red (bare) to green (fully boarded).
func strengthColor(strength, full float64) color.RGBA {
	t := 0.0
	if full > 0 {
		t = strength / full
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return color.RGBA{
		R: uint8(210 - 150*t),
		G: uint8(50 + 150*t),
		B: 50,
		A: 255,
	}
}

// Draw renders the playfield, the thought log, the HUD and the inspector.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)

	g.drawWorld(screen)

	ox, oy := float32(g.offX), float32(g.offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, colBorder, false)
	vector.StrokeRect(screen, ox-3, oy-3, gw+6, gh+6, 1.0, color.RGBA{R: 40, G: 65, B: 40, A: 100}, false)

	logX := g.offX + g.gameWidth + g.offX
	drawThoughtLog(screen, g.world.Thoughts, logX, g.height)

	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.cam.zoom != 1.0 {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("zoom: %.1fx", g.cam.zoom), g.offX+6, g.offY+6)
	}
	g.drawInspector(screen)
}

func (g *Game) drawWorld(screen *ebiten.Image) {
	w := g.world
	lvl := w.Level

	g.fillBox(screen, lvl.Yard, colYard)
	g.fillBox(screen, lvl.House, colFloor)

	w.Scene.Each(game.LayerWall, func(_ game.ObjectRef, b game.AABB) {
		g.fillBox(screen, b, colWall)
	})
	w.Scene.Each(game.LayerObstacle, func(_ game.ObjectRef, b game.AABB) {
		g.fillBox(screen, b, colDebris)
	})

	maxStrength := float64(game.MaxBoardsPerEntryPoint) * w.Tuning.Fort.BoardWeight
	for _, ep := range w.Registry.EntryPoints() {
		g.drawEntry(screen, ep, maxStrength)
	}

	for _, a := range w.Agents {
		g.drawAgent(screen, a)
	}
	g.drawPlayer(screen)

	cx, cy := g.cam.toScreen(g.cursor)
	vector.StrokeCircle(screen, cx, cy, 4, 1, colCursor, true)
}

func (g *Game) fillBox(screen *ebiten.Image, b game.AABB, c color.RGBA) {
	x0, y0 := g.cam.toScreen(b.Min)
	x1, y1 := g.cam.toScreen(b.Max)
	vector.FillRect(screen, x0, y0, x1-x0, y1-y0, c, false)
}

// drawEntry draws an opening as a segment across its width, coloured by
// strength, with each board as a short stroke stacked outward by index.
func (g *Game) drawEntry(screen *ebiten.Image, ep game.EntryPoint, maxStrength float64) {
	across := game.Vec3{X: -ep.Normal.Z, Z: ep.Normal.X}.Normalize()
	half := across.Scale(ep.Width / 2)

	ax, ay := g.cam.toScreen(ep.Position.Sub(half))
	bx, by := g.cam.toScreen(ep.Position.Add(half))
	c := strengthColor(g.world.Registry.Strength(ep.ID), maxStrength)
	vector.StrokeLine(screen, ax, ay, bx, by, 3, c, true)

	for _, s := range g.world.Registry.Slots(ep.ID) {
		if !s.Alive {
			continue
		}
		right := s.Transform.Right().Flat()
		if right.Len() < 1e-6 {
			right = across
		}
		right = right.Normalize().Scale(ep.Width * 0.55)
		out := ep.Normal.Flat().Scale(0.12 * float64(s.Index+1))
		p := s.Transform.Position.Flat().Add(out)
		x0, y0 := g.cam.toScreen(p.Sub(right))
		x1, y1 := g.cam.toScreen(p.Add(right))
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, colBoard, true)
	}

	if g.inspector.rawView {
		lx, ly := g.cam.toScreen(ep.Position.Add(ep.Normal.Scale(0.8)))
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", ep.ID), int(lx), int(ly))
	}
}

func (g *Game) drawAgent(screen *ebiten.Image, a *game.IntrusionAgent) {
	pos := a.Position()
	x, y := g.cam.toScreen(pos)
	if !g.cam.inView(x, y) {
		return
	}

	// Airborne agents draw larger in proportion to their height.
	r := g.cam.meters(0.35) * float32(1+pos.Y*0.25)
	c := stateColor(a.State())
	vector.FillCircle(screen, x, y, r, c, true)

	if sel := g.inspector.selected(g.world.Agents); sel == a {
		vector.StrokeCircle(screen, x, y, r+3, 1.5, color.RGBA{R: 255, G: 255, B: 255, A: 220}, true)
	}

	if id := a.Target(); id != game.NoEntryPoint {
		if ep, ok := g.world.Registry.EntryPoint(id); ok {
			tx, ty := g.cam.toScreen(ep.Position)
			vector.StrokeLine(screen, x, y, tx, ty, 1, color.RGBA{R: c.R, G: c.G, B: c.B, A: 110}, true)
		}
	}
	if frac, ok := a.JumpProgress(g.world.Now); ok && frac <= 1 {
		vector.StrokeCircle(screen, x, y, r+2, 1, color.RGBA{R: 60, G: 210, B: 200, A: uint8(255 * (1 - frac))}, true)
	}

	ebitenutil.DebugPrintAt(screen, a.Label(), int(x)+int(r)+2, int(y)-8)
}

func (g *Game) drawPlayer(screen *ebiten.Image) {
	p := g.world.Player
	if !p.Present {
		return
	}
	x, y := g.cam.toScreen(p.Pos)
	r := g.cam.meters(0.3)
	vector.FillCircle(screen, x, y, r, colPlayer, true)

	reach := g.world.Tuning.Boarding.MaxBoardDistance
	lx, ly := g.cam.toScreen(p.Pos.Add(p.Look.Flat().Normalize().Scale(reach)))
	vector.StrokeLine(screen, x, y, lx, ly, 1, color.RGBA{R: 80, G: 150, B: 230, A: 140}, true)

	// Hold progress under the player: place fills yellow, pry fills red.
	frac, barCol := 0.0, color.RGBA{}
	if f := g.world.Boarding.HoldFraction(g.world.Now); f > 0 {
		frac, barCol = f, color.RGBA{R: 230, G: 200, B: 60, A: 255}
	} else if f := g.world.Boarding.PryFraction(g.world.Now); f > 0 {
		frac, barCol = f, color.RGBA{R: 220, G: 70, B: 60, A: 255}
	}
	if frac > 0 {
		const barW, barH = 28, 4
		bx, by := x-barW/2, y+r+4
		vector.FillRect(screen, bx, by, barW, barH, color.RGBA{R: 20, G: 20, B: 20, A: 200}, false)
		vector.FillRect(screen, bx, by, float32(barW*frac), barH, barCol, false)
	}
}
