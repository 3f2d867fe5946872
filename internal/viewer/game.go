// Package viewer hosts a siege in an ebiten window: a top-down map of the
// house and yard, the player's hammer, and debug overlays for the agents.
package viewer

import (
	"fmt"
	"math"

	"github.com/Garsondee/Bolster/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

const (
	// borderWidth is the pixel gap between the window edge and the playfield.
	borderWidth = 24

	// hudScale is the integer upscale factor applied to HUD text.
	hudScale = 2

	tickDt      = 1.0 / 60.0
	playerSpeed = 4.0  // m/s
	playerRad   = 0.3  // collision radius
	aimHeight   = 1.4  // the look ray aims at window-centre height under the cursor
	blastRadius = 2.0  // X key explosion radius
	pickRadius  = 2.5  // demolish / inspector pick distance in metres
	feedbackFor = 1.5  // seconds a feedback line stays on screen
	zoomMin     = 0.5  // camera zoom bounds
	zoomMax     = 4.0

	// reportLogTicks is how much recent log the R key appends to the report.
	reportLogTicks = 600
)

// speeds are the selectable simulation multipliers.
var speeds = []float64{0, 0.5, 1, 2, 4}

// Options configures a viewer session.
type Options struct {
	Tuning    game.Tuning
	Level     game.LevelConfig
	Seed      int64
	Audio     game.AudioEmitter // nil for silence
	Carpenter float64           // seconds between scripted boards; 0 leaves boarding to the player
	Verbose   bool
}

// Game implements ebiten.Game around a game.World.
type Game struct {
	world     *game.World
	reporter  *game.SiegeReporter
	carpenter *game.Carpenter

	width, height         int
	gameWidth, gameHeight int
	offX, offY            int
	cam                   camera

	face   *text.GoXFace
	hudBuf *ebiten.Image

	showHUD   bool
	simSpeed  float64
	tickAccum float64

	// Input captured per frame, applied per sim tick.
	move      game.Vec3
	placeHeld bool
	pryHeld   bool
	cursor    game.Vec3

	inspector     inspector
	feedback      string
	feedbackUntil float64
}

// New builds the world and the window layout.
func New(opts Options) *Game {
	w := game.NewWorld(opts.Tuning, opts.Level, opts.Seed, opts.Audio, opts.Verbose)

	yard := opts.Level.YardHalfSize * 2
	fieldPx := int(yard*pixelsPerMeter) + 2*borderWidth
	g := &Game{
		world:      w,
		reporter:   game.NewSiegeReporter(0, false),
		width:      borderWidth + fieldPx + borderWidth + logPanelWidth,
		height:     borderWidth + fieldPx + borderWidth,
		gameWidth:  fieldPx,
		gameHeight: fieldPx,
		offX:       borderWidth,
		offY:       borderWidth,
		face:       text.NewGoXFace(basicfont.Face7x13),
		showHUD:    true,
		simSpeed:   1,
	}
	if opts.Carpenter > 0 {
		g.carpenter = &game.Carpenter{Interval: opts.Carpenter}
	}
	g.cam = camera{
		zoom: 1,
		vpW:  float64(g.gameWidth),
		vpH:  float64(g.gameHeight),
		offX: float64(g.offX),
		offY: float64(g.offY),
	}
	g.hudBuf = ebiten.NewImage(g.width/hudScale, g.height/hudScale)
	return g
}

// World exposes the simulation, mainly for the command to attach audio.
func (g *Game) World() *game.World { return g.world }

func (g *Game) Update() error {
	g.handleInput()

	if g.simSpeed <= 0 {
		return nil
	}
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.simTick()
	}
	return nil
}

func (g *Game) simTick() {
	w := g.world
	g.movePlayer(tickDt)
	g.aim()

	if g.carpenter != nil {
		g.carpenter.Update(w)
	}
	eye := w.Player.Eye()
	out := w.Boarding.Update(w.Now, g.placeHeld, eye, w.Player.Look)
	g.noteOutcome(out)
	pry := w.Boarding.UpdatePry(w.Now, g.pryHeld && !g.placeHeld, eye, w.Player.Look)
	if pry.BoardTaken {
		g.say(fmt.Sprintf("pried a board off entry %d", pry.Entry))
	}

	w.Step(tickDt)
	if w.Tick%60 == 0 {
		g.reporter.Collect(w)
	}
	g.cam.x, g.cam.z = w.Player.Pos.X, w.Player.Pos.Z
}

// noteOutcome turns a boarding outcome into a feedback line.
func (g *Game) noteOutcome(out game.BoardingOutcome) {
	if !out.Attempted {
		return
	}
	switch {
	case out.NoWindow:
		g.say("no window in reach")
	case out.Rejection != game.RejectNone:
		g.say(fmt.Sprintf("cannot board: %s", out.Rejection))
	default:
		g.say(fmt.Sprintf("board %d nailed to entry %d", out.Slot.Index+1, out.Entry))
	}
}

func (g *Game) say(msg string) {
	g.feedback = msg
	g.feedbackUntil = g.world.Now + feedbackFor
	g.world.Thoughts.Add(g.world.Tick, "P", false, msg)
}

// movePlayer walks the player along g.move, sliding along walls one axis at
// a time.
func (g *Game) movePlayer(dt float64) {
	if g.move == (game.Vec3{}) {
		return
	}
	p := g.world.Player
	step := g.move.Normalize().Scale(playerSpeed * dt)
	if next := (game.Vec3{X: p.Pos.X + step.X, Z: p.Pos.Z}); g.walkable(next) {
		p.Pos.X = next.X
	}
	if next := (game.Vec3{X: p.Pos.X, Z: p.Pos.Z + step.Z}); g.walkable(next) {
		p.Pos.Z = next.Z
	}
}

func (g *Game) walkable(p game.Vec3) bool {
	centre := game.Vec3{X: p.X, Y: 0.5, Z: p.Z}
	return len(g.world.Scene.OverlapSphere(centre, playerRad, game.LayerSolid|game.LayerWindow)) == 0
}

// aim points the player's view at the cursor, at window height.
func (g *Game) aim() {
	p := g.world.Player
	eye := p.Eye()
	target := game.Vec3{X: g.cursor.X, Y: aimHeight, Z: g.cursor.Z}
	d := target.Sub(eye)
	if d.Flat().Len() < 0.1 {
		return
	}
	p.Look = d.Normalize()
}

func (g *Game) handleInput() {
	w := g.world

	g.move = game.Vec3{}
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		g.move.Z--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		g.move.Z++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.move.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.move.X++
	}

	mx, my := ebiten.CursorPosition()
	g.cursor = g.cam.toWorld(mx, my)
	g.placeHeld = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	g.pryHeld = ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)

	// Wheel scrolls the hotbar; digits pick a slot directly.
	if _, wy := ebiten.Wheel(); wy != 0 {
		w.Player.Hotbar.Scroll(wy)
	}
	for i := 0; i < 9; i++ {
		if inpututil.IsKeyJustPressed(ebiten.KeyDigit1 + ebiten.Key(i)) {
			w.Player.Hotbar.Select(i)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) {
		g.cam.zoom *= 1.25
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) {
		g.cam.zoom /= 1.25
	}
	g.cam.clampZoom(zoomMin, zoomMax)

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		g.simSpeed = slower(g.simSpeed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		g.simSpeed = faster(g.simSpeed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}

	// Debug actions.
	if inpututil.IsKeyJustPressed(ebiten.KeyX) {
		n := w.Explode(game.Vec3{X: g.cursor.X, Y: aimHeight, Z: g.cursor.Z}, blastRadius)
		g.say(fmt.Sprintf("explosion took %d board(s)", n))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		if id, ok := nearestEntry(w.Registry, g.cursor, pickRadius); ok {
			g.say(fmt.Sprintf("demolished entry %d (%d boards)", id, w.Demolish(id)))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		if g.carpenter == nil {
			g.carpenter = &game.Carpenter{Interval: 2}
			g.say("carpenter on")
		} else {
			g.carpenter = nil
			g.say("carpenter off")
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.inspector.cycle(len(w.Agents))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.inspector.rawView = !g.inspector.rawView
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonMiddle) {
		g.inspector.pick(w.Agents, g.cursor, pickRadius/g.cam.zoom)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		what, text := logForCopy(w, g.inspector.selected(w.Agents))
		g.copyToClipboard(what, text)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		report := g.reporter.FormatLatest() + g.reporter.WindowSummary().Format()
		report += "\n" + w.Log.FormatRange(w.Tick-reportLogTicks, w.Tick)
		g.copyToClipboard("siege report", report)
	}
}

// slower returns the next lower speed step.
func slower(cur float64) float64 {
	for i := len(speeds) - 1; i > 0; i-- {
		if speeds[i] <= cur {
			if speeds[i] < cur {
				return speeds[i]
			}
			return speeds[i-1]
		}
	}
	return speeds[0]
}

// faster returns the next higher speed step.
func faster(cur float64) float64 {
	for _, s := range speeds {
		if s > cur {
			return s
		}
	}
	return speeds[len(speeds)-1]
}

// nearestEntry returns the entry point closest to p on the ground plane,
// within radius.
func nearestEntry(r *game.FortificationRegistry, p game.Vec3, radius float64) (game.EntryPointID, bool) {
	best := game.NoEntryPoint
	bestD := math.Inf(1)
	for _, ep := range r.EntryPoints() {
		if d := ep.Position.FlatDist(p); d <= radius && d < bestD {
			best, bestD = ep.ID, d
		}
	}
	return best, best != game.NoEntryPoint
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// Size returns the window size the layout wants.
func (g *Game) Size() (int, int) {
	return g.width, g.height
}
