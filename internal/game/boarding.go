package game

import (
	"fmt"
	"math"
)

// ItemHammer is the hotbar item that enables boarding.
const ItemHammer = "Hammer"

// HotbarItem is one selectable slot on the hotbar.
type HotbarItem struct {
	Name string
}

// Hotbar is the player's ordered item selection.
type Hotbar struct {
	items    []HotbarItem
	selected int
}

// NewHotbar builds a hotbar with the given item names, first one selected.
func NewHotbar(names ...string) *Hotbar {
	h := &Hotbar{}
	for _, n := range names {
		h.items = append(h.items, HotbarItem{Name: n})
	}
	return h
}

// Items returns the hotbar contents in slot order.
func (h *Hotbar) Items() []HotbarItem { return h.items }

// SelectedIndex returns the selected slot.
func (h *Hotbar) SelectedIndex() int { return h.selected }

// Select picks slot i. Out-of-range slots are ignored.
func (h *Hotbar) Select(i int) bool {
	if i < 0 || i >= len(h.items) {
		return false
	}
	h.selected = i
	return true
}

// Scroll moves the selection by one slot: wheel up selects the previous
// slot, wheel down the next, wrapping at both ends.
func (h *Hotbar) Scroll(delta float64) {
	if delta == 0 || len(h.items) == 0 {
		return
	}
	next := h.selected + 1
	if delta > 0 {
		next = h.selected - 1
	}
	if next < 0 {
		next = len(h.items) - 1
	}
	if next >= len(h.items) {
		next = 0
	}
	h.selected = next
}

// Selected returns the selected item.
func (h *Hotbar) Selected() (HotbarItem, bool) {
	if h.selected < 0 || h.selected >= len(h.items) {
		return HotbarItem{}, false
	}
	return h.items[h.selected], true
}

// HoldingHammer reports whether the hammer is in hand.
func (h *Hotbar) HoldingHammer() bool {
	it, ok := h.Selected()
	return ok && it.Name == ItemHammer
}

// BoardingOutcome describes what one frame of boarding input did.
type BoardingOutcome struct {
	Attempted  bool // a placement was tried this frame
	Entry      EntryPointID
	Slot       BoardSlot
	Rejection  Rejection
	NoWindow   bool // the look ray found no window in reach
	BoardTaken bool // the pry interaction removed a board
}

// BoardingController turns the player's held buttons into registry calls:
// hold to nail a board up, hold the other button to pry one off.
type BoardingController struct {
	cfg      BoardingConfig
	registry *FortificationRegistry
	space    SpatialQuery
	hotbar   *Hotbar
	log      *SimLog
	tick     *int

	holding   bool
	holdStart float64
	lastBoard float64

	prying   bool
	pryStart float64
	pryEntry EntryPointID
}

// NewBoardingController wires a controller. log and tick may be nil.
func NewBoardingController(cfg BoardingConfig, registry *FortificationRegistry, space SpatialQuery, hotbar *Hotbar, log *SimLog, tick *int) *BoardingController {
	return &BoardingController{
		cfg:       cfg,
		registry:  registry,
		space:     space,
		hotbar:    hotbar,
		log:       log,
		tick:      tick,
		lastBoard: math.Inf(-1),
		pryEntry:  NoEntryPoint,
	}
}

// Holding reports whether the place button is currently held with a hammer.
func (b *BoardingController) Holding() bool { return b.holding }

// HoldFraction is how far the current hold is toward a placement, in [0,1].
func (b *BoardingController) HoldFraction(now float64) float64 {
	if !b.holding || b.cfg.HoldTimeRequired <= 0 {
		return 0
	}
	return clamp01((now - b.holdStart) / b.cfg.HoldTimeRequired)
}

// PryFraction is how far the current pry is toward removing a board.
func (b *BoardingController) PryFraction(now float64) float64 {
	if !b.prying || b.cfg.BreakHoldTime <= 0 {
		return 0
	}
	return clamp01((now - b.pryStart) / b.cfg.BreakHoldTime)
}

// Update processes one frame of the place button. eye and look describe the
// player's view ray.
func (b *BoardingController) Update(now float64, placeHeld bool, eye, look Vec3) BoardingOutcome {
	out := BoardingOutcome{Entry: NoEntryPoint}
	if !b.hotbar.HoldingHammer() {
		b.holding = false
		return out
	}

	switch {
	case placeHeld && !b.holding:
		b.holding = true
		b.holdStart = now
	case !placeHeld && b.holding:
		b.holding = false
		b.lastBoard = now
	}

	if !b.holding || now < b.lastBoard+b.cfg.PlacementCooldown || now < b.holdStart+b.cfg.HoldTimeRequired {
		return out
	}

	b.lastBoard = now
	out.Attempted = true
	id, hit, ok := b.aimedEntry(eye, look)
	if !ok {
		out.NoWindow = true
		return out
	}
	out.Entry = id
	out.Slot, out.Rejection = b.registry.TryPlace(id, hit)
	if out.Rejection == RejectNone {
		b.logEvent("placed", fmt.Sprintf("entry %d slot %d", id, out.Slot.Index), float64(out.Slot.Index))
	} else {
		b.logEvent("rejected", fmt.Sprintf("entry %d: %s", id, out.Rejection), 0)
	}
	return out
}

// UpdatePry processes one frame of the pry button: holding it on the same
// window for BreakHoldTime removes one board.
func (b *BoardingController) UpdatePry(now float64, pryHeld bool, eye, look Vec3) BoardingOutcome {
	out := BoardingOutcome{Entry: NoEntryPoint}
	if !pryHeld || !b.hotbar.HoldingHammer() {
		b.prying = false
		return out
	}
	id, _, ok := b.aimedEntry(eye, look)
	if !ok {
		b.prying = false
		out.NoWindow = true
		return out
	}
	out.Entry = id
	if !b.prying || id != b.pryEntry {
		b.prying = true
		b.pryStart = now
		b.pryEntry = id
		return out
	}
	if now-b.pryStart < b.cfg.BreakHoldTime {
		return out
	}
	b.pryStart = now
	if b.registry.RemoveOne(id) {
		out.BoardTaken = true
		b.logEvent("pried", fmt.Sprintf("entry %d", id), float64(b.registry.LiveCount(id)))
	}
	return out
}

// aimedEntry finds the entry point the view ray lands on. Walls in front of
// a window block it.
func (b *BoardingController) aimedEntry(eye, look Vec3) (EntryPointID, Hit, bool) {
	hit, ok := b.space.RaycastFirst(eye, look, b.cfg.MaxBoardDistance, LayerWindow|LayerSolid)
	if !ok {
		return NoEntryPoint, Hit{}, false
	}
	id, ok := b.registry.Lookup(hit.Ref)
	if !ok {
		return NoEntryPoint, Hit{}, false
	}
	return id, hit, true
}

func (b *BoardingController) logEvent(key, value string, num float64) {
	tick := 0
	if b.tick != nil {
		tick = *b.tick
	}
	b.log.Add(tick, "P", "board", key, value, num)
}
