package viewer

import (
	"fmt"

	"github.com/Garsondee/Bolster/internal/game"
	"github.com/atotto/clipboard"
)

// copyToClipboard puts text on the system clipboard and reports the result in the
// feedback line.
func (g *Game) copyToClipboard(what, text string) {
	if text == "" {
		g.say(fmt.Sprintf("%s is empty", what))
		return
	}
	if err := clipboard.WriteAll(text); err != nil {
		g.say(fmt.Sprintf("copy %s: %v", what, err))
		return
	}
	g.say(fmt.Sprintf("copied %s (%d bytes)", what, len(text)))
}

// logForCopy picks what the C key copies: the inspected agent's own entries
// when one is selected, otherwise the whole log.
func logForCopy(w *game.World, sel *game.IntrusionAgent) (string, string) {
	if sel == nil {
		return "sim log", w.Log.Format()
	}
	return sel.Label() + " log", w.Log.FormatActor(sel.Label())
}
