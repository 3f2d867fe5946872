package viewer

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/Garsondee/Bolster/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 320
	logLineHeight = 11
)

// drawThoughtLog renders the narrative panel on the right side of the screen.
func drawThoughtLog(screen *ebiten.Image, tl *game.ThoughtLog, panelX int, panelH int) {
	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), float32(panelH), color.RGBA{R: 10, G: 12, B: 10, A: 248}, false)
	vector.StrokeLine(screen, float32(panelX), 0, float32(panelX), float32(panelH), 1.0, color.RGBA{R: 50, G: 70, B: 50, A: 255}, false)

	vector.FillRect(screen, float32(panelX), 0, float32(logPanelWidth), 16, color.RGBA{R: 20, G: 30, B: 20, A: 255}, false)
	ebitenutil.DebugPrintAt(screen, "THOUGHT LOG", panelX+8, 2)
	vector.StrokeLine(screen, float32(panelX), 16, float32(panelX+logPanelWidth), 16, 1.0, color.RGBA{R: 50, G: 80, B: 50, A: 200}, false)

	entries := tl.Recent()

	// Newest at the bottom.
	maxVisible := (panelH - 24) / logLineHeight
	startIdx := 0
	if len(entries) > maxVisible {
		startIdx = len(entries) - maxVisible
	}
	visible := entries[startIdx:]
	const recent = 3

	y := 20
	for i, e := range visible {
		if i >= len(visible)-recent {
			vector.FillRect(screen, float32(panelX+2), float32(y), float32(logPanelWidth-4), float32(logLineHeight), color.RGBA{R: 30, G: 40, B: 30, A: 160}, false)
		}

		dotCol := color.RGBA{R: 70, G: 110, B: 210, A: 255}
		if e.Hostile {
			dotCol = color.RGBA{R: 210, G: 70, B: 70, A: 255}
		}
		vector.FillRect(screen, float32(panelX+5), float32(y+3), 3, 5, dotCol, false)

		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%4d [%s] %s", e.Tick, e.Label, e.Message), panelX+12, y)
		y += logLineHeight
	}
}

// speedLabel formats a simulation multiplier for the HUD.
func speedLabel(speed float64) string {
	switch speed {
	case 0:
		return "PAUSED"
	case 1, 2, 4:
		return fmt.Sprintf("%.0fx", speed)
	default:
		return fmt.Sprintf("%.1fx", speed)
	}
}

// hudLines builds the key legend and live status block.
func (g *Game) hudLines() []string {
	w := g.world
	carp := "off"
	if g.carpenter != nil {
		carp = fmt.Sprintf("every %.1fs", g.carpenter.Interval)
	}
	lines := []string{
		fmt.Sprintf("SIM: %s  T=%d  P=pause  ,/. speed", speedLabel(g.simSpeed), w.Tick),
		fmt.Sprintf("boards: %d  breached: %d  carpenter: %s", w.Registry.BoardCount(), len(w.Breached()), carp),
		"WASD=move  LMB=hold to board  RMB=hold to pry",
		"wheel/1-9=hotbar  =/-=zoom  H=HUD",
		"X=explode  K=demolish  B=carpenter",
		"Tab/MMB=inspect  I=raw  C=copy log/agent  R=copy report",
	}
	if g.feedback != "" && w.Now < g.feedbackUntil {
		lines = append(lines, "> "+g.feedback)
	}
	return lines
}

// drawHUD renders the legend into hudBuf at 1x, then scales it up.
func (g *Game) drawHUD(screen *ebiten.Image) {
	lines := g.hudLines()

	const lineH = 13
	const charW = 7
	const padX = 5
	const padY = 4

	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	boxW := float32(maxLen*charW + padX*2)
	boxH := float32(len(lines)*lineH + padY*2)

	g.hudBuf.Clear()
	bufH := float32(g.height / hudScale)
	bx := float32(4)
	by := bufH - boxH - 4 - hotbarH
	vector.FillRect(g.hudBuf, bx, by, boxW, boxH, color.RGBA{R: 8, G: 10, B: 8, A: 200}, false)
	vector.StrokeRect(g.hudBuf, bx, by, boxW, boxH, 1, color.RGBA{R: 55, G: 80, B: 55, A: 220}, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(bx+padX), float64(by+padY))
	op.LineSpacing = lineH
	op.ColorScale.ScaleWithColor(color.RGBA{R: 200, G: 220, B: 200, A: 255})
	text.Draw(g.hudBuf, strings.Join(lines, "\n"), g.face, op)

	g.drawHotbar(g.hudBuf, bx, bufH-hotbarH)

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Scale(hudScale, hudScale)
	screen.DrawImage(g.hudBuf, opts)
}

const (
	hotbarH     = 18
	hotbarSlotW = 56
)

// drawHotbar draws the player's items with the selected one highlighted.
func (g *Game) drawHotbar(buf *ebiten.Image, x, y float32) {
	hb := g.world.Player.Hotbar
	for i, it := range hb.Items() {
		sx := x + float32(i*(hotbarSlotW+2))
		bg := color.RGBA{R: 20, G: 24, B: 20, A: 220}
		if i == hb.SelectedIndex() {
			bg = color.RGBA{R: 70, G: 90, B: 50, A: 240}
		}
		vector.FillRect(buf, sx, y, hotbarSlotW, hotbarH-2, bg, false)
		vector.StrokeRect(buf, sx, y, hotbarSlotW, hotbarH-2, 1, color.RGBA{R: 55, G: 80, B: 55, A: 220}, false)

		op := &text.DrawOptions{}
		op.GeoM.Translate(float64(sx+3), float64(y+2))
		text.Draw(buf, fmt.Sprintf("%d %s", i+1, it.Name), g.face, op)
	}
}
