package game

import (
	"math"
	"math/rand"
	"sync"
)

// MaxBoardsPerEntryPoint is the hard capacity of one entry point.
const MaxBoardsPerEntryPoint = 3

// EntryPointID is a stable handle to a registered entry point.
type EntryPointID int

// NoEntryPoint is the nil target.
const NoEntryPoint EntryPointID = -1

// EntryPoint is a boardable aperture. Entry points are never removed once
// registered.
type EntryPoint struct {
	ID       EntryPointID
	Name     string
	Position Vec3    // centre of the opening
	Normal   Vec3    // unit, points out of the building
	Height   float64 // nominal opening height, used to lay out slots
	Width    float64
	Ref      ObjectRef // backing window object, 0 if none
}

// SlotHandle addresses a board in the registry's arena. The generation
// changes whenever an arena cell is recycled, so stale handles never alias a
// newer board.
type SlotHandle struct {
	index int32
	gen   uint32
}

// Valid reports whether h was ever issued.
func (h SlotHandle) Valid() bool { return h.gen != 0 }

// BoardTransform is the world placement of a board.
type BoardTransform struct {
	Position  Vec3
	Normal    Vec3 // entry point surface normal
	Tangent   Vec3 // normal × up, unrolled
	Bitangent Vec3 // in-plane vertical, unrolled
	Roll      float64
}

// Right is the board's long axis after roll.
func (bt BoardTransform) Right() Vec3 { return bt.Tangent.Rotate(bt.Normal, bt.Roll) }

// Up is the board's short in-plane axis after roll.
func (bt BoardTransform) Up() Vec3 { return bt.Bitangent.Rotate(bt.Normal, bt.Roll) }

// BoardSlot is one placed barricade piece.
type BoardSlot struct {
	Handle     SlotHandle
	EntryPoint EntryPointID
	Index      int // 0 bottom, 1 middle, 2 top
	Transform  BoardTransform
	Ref        ObjectRef
	Alive      bool

	seq uint64 // placement order across the registry
}

// Rejection explains why a placement did not happen. RejectNone means the
// board was placed.
type Rejection int

const (
	RejectNone Rejection = iota
	RejectCapacityReached
	RejectUnknownEntryPoint
)

func (r Rejection) String() string {
	switch r {
	case RejectNone:
		return "placed"
	case RejectCapacityReached:
		return "capacity_reached"
	case RejectUnknownEntryPoint:
		return "unknown_entry_point"
	default:
		return "unknown"
	}
}

// FortificationRegistry owns every entry point and the boards placed on
// them. All mutation goes through TryPlace, RemoveOne, RemoveAll and
// Reconcile; each call is atomic with respect to the others. Calls into the
// SpatialQuery and ObjectLifecycle collaborators are made under the
// registry's lock, so a collaborator shared with other writers must do its
// own locking as Scene does.
type FortificationRegistry struct {
	mu      sync.Mutex
	cfg     FortConfig
	space   SpatialQuery
	objects ObjectLifecycle
	rng     *rand.Rand

	entries []EntryPoint
	byRef   map[ObjectRef]EntryPointID

	slots  []BoardSlot // arena
	free   []int32
	boards map[EntryPointID][]SlotHandle // ordered by slot index
	seq    uint64
}

// NewFortificationRegistry builds an empty registry. space is used for
// strength queries; objects spawns and destroys board objects and may be nil
// when boards have no world representation.
func NewFortificationRegistry(cfg FortConfig, space SpatialQuery, objects ObjectLifecycle, rng *rand.Rand) *FortificationRegistry {
	if rng == nil {
		rng = rand.New(rand.NewSource(1)) // #nosec G404 -- cosmetic board roll
	}
	return &FortificationRegistry{
		cfg:     cfg,
		space:   space,
		objects: objects,
		rng:     rng,
		byRef:   make(map[ObjectRef]EntryPointID),
		boards:  make(map[EntryPointID][]SlotHandle),
	}
}

// Register adds an entry point and returns its id. The normal is normalised.
func (fr *FortificationRegistry) Register(ep EntryPoint) EntryPointID {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	ep.ID = EntryPointID(len(fr.entries))
	ep.Normal = ep.Normal.Normalize()
	if ep.Width <= 0 {
		ep.Width = 1
	}
	fr.entries = append(fr.entries, ep)
	if ep.Ref != 0 {
		fr.byRef[ep.Ref] = ep.ID
	}
	return ep.ID
}

// EntryPoint returns the registered entry point regardless of whether its
// backing object still exists.
func (fr *FortificationRegistry) EntryPoint(id EntryPointID) (EntryPoint, bool) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	return fr.entryLocked(id)
}

func (fr *FortificationRegistry) entryLocked(id EntryPointID) (EntryPoint, bool) {
	if id < 0 || int(id) >= len(fr.entries) {
		return EntryPoint{}, false
	}
	return fr.entries[id], true
}

// Resolve returns the entry point only if it is still a valid target: the id
// is known and its backing object, if any, is alive.
func (fr *FortificationRegistry) Resolve(id EntryPointID) (EntryPoint, bool) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	ep, ok := fr.entryLocked(id)
	if !ok {
		return EntryPoint{}, false
	}
	if ep.Ref != 0 && fr.objects != nil && !fr.objects.Alive(ep.Ref) {
		return EntryPoint{}, false
	}
	return ep, true
}

// Lookup maps a window object ref back to its entry point.
func (fr *FortificationRegistry) Lookup(ref ObjectRef) (EntryPointID, bool) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	id, ok := fr.byRef[ref]
	return id, ok
}

// EntryPoints returns a copy of every registered entry point in id order.
func (fr *FortificationRegistry) EntryPoints() []EntryPoint {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	out := make([]EntryPoint, len(fr.entries))
	copy(out, fr.entries)
	return out
}

// LiveCount returns the number of live boards on id.
func (fr *FortificationRegistry) LiveCount(id EntryPointID) int {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	return fr.liveCountLocked(id)
}

func (fr *FortificationRegistry) liveCountLocked(id EntryPointID) int {
	n := 0
	for _, h := range fr.boards[id] {
		if fr.slots[h.index].Alive {
			n++
		}
	}
	return n
}

// Capacity returns how many more boards id accepts.
func (fr *FortificationRegistry) Capacity(id EntryPointID) int {
	return MaxBoardsPerEntryPoint - fr.LiveCount(id)
}

// Slots returns the live boards on id, bottom first.
func (fr *FortificationRegistry) Slots(id EntryPointID) []BoardSlot {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	var out []BoardSlot
	for _, h := range fr.boards[id] {
		if s := fr.slots[h.index]; s.Alive {
			out = append(out, s)
		}
	}
	return out
}

// Slot looks up a board by handle. Stale handles report false.
func (fr *FortificationRegistry) Slot(h SlotHandle) (BoardSlot, bool) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if !h.Valid() || int(h.index) >= len(fr.slots) {
		return BoardSlot{}, false
	}
	s := fr.slots[h.index]
	if s.Handle != h {
		return BoardSlot{}, false
	}
	return s, true
}

// BoardCount returns the number of live boards across all entry points.
func (fr *FortificationRegistry) BoardCount() int {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	n := 0
	for id := range fr.boards {
		n += fr.liveCountLocked(id)
	}
	return n
}

// Strength scores how hard id is to break through. It is only meaningful
// for ranking: higher is stronger, and it never decreases when a board is
// added.
func (fr *FortificationRegistry) Strength(id EntryPointID) float64 {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	ep, ok := fr.entryLocked(id)
	if !ok {
		return 0
	}
	live := fr.liveCountLocked(id)

	strength := float64(live) * fr.cfg.BoardWeight
	if fr.space != nil && fr.cfg.ObstacleCheckRadius > 0 {
		nearby := fr.space.OverlapSphere(ep.Position, fr.cfg.ObstacleCheckRadius, LayerObstacle)
		strength += float64(len(nearby)) * fr.cfg.ObstacleWeight
	}
	return strength
}

// TryPlace puts the next board on id. The slot index is the lowest index not
// held by a live board, which for an entry point filled in order is simply
// its live count. A full entry point is rejected with RejectCapacityReached.
func (fr *FortificationRegistry) TryPlace(id EntryPointID, hit Hit) (BoardSlot, Rejection) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	ep, ok := fr.entryLocked(id)
	if !ok {
		return BoardSlot{}, RejectUnknownEntryPoint
	}

	var used [MaxBoardsPerEntryPoint]bool
	for _, h := range fr.boards[id] {
		if s := fr.slots[h.index]; s.Alive {
			used[s.Index] = true
		}
	}
	index := -1
	for i, u := range used {
		if !u {
			index = i
			break
		}
	}
	if index < 0 {
		return BoardSlot{}, RejectCapacityReached
	}

	maxRoll := fr.cfg.MaxRollDegrees * math.Pi / 180
	roll := (fr.rng.Float64()*2 - 1) * maxRoll
	xf := slotTransform(ep, hit.Point, index, roll, fr.cfg.BoardStandoff)

	var ref ObjectRef
	if fr.objects != nil {
		ref = fr.objects.Spawn(ObjectSpec{
			Kind:   KindBoard,
			Layer:  LayerBoard,
			Bounds: boardBounds(xf, ep, fr.cfg.BoardThickness),
		})
	}

	fr.seq++
	h := fr.alloc()
	slot := BoardSlot{
		Handle:     h,
		EntryPoint: id,
		Index:      index,
		Transform:  xf,
		Ref:        ref,
		Alive:      true,
		seq:        fr.seq,
	}
	fr.slots[h.index] = slot

	// Keep the per-entry list ordered by slot index.
	list := fr.boards[id]
	pos := len(list)
	for i, other := range list {
		if fr.slots[other.index].Index > index {
			pos = i
			break
		}
	}
	list = append(list, SlotHandle{})
	copy(list[pos+1:], list[pos:])
	list[pos] = h
	fr.boards[id] = list

	return slot, RejectNone
}

// alloc takes an arena cell from the free list or grows the arena.
func (fr *FortificationRegistry) alloc() SlotHandle {
	if n := len(fr.free); n > 0 {
		idx := fr.free[n-1]
		fr.free = fr.free[:n-1]
		gen := fr.slots[idx].Handle.gen + 1
		return SlotHandle{index: idx, gen: gen}
	}
	fr.slots = append(fr.slots, BoardSlot{})
	return SlotHandle{index: int32(len(fr.slots) - 1), gen: 1}
}

// RemoveOne breaks the most recently placed live board on id and destroys its
// object. It returns false when there was nothing to remove.
func (fr *FortificationRegistry) RemoveOne(id EntryPointID) bool {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	var victim *BoardSlot
	for _, h := range fr.boards[id] {
		s := &fr.slots[h.index]
		if !s.Alive {
			continue
		}
		if victim == nil || s.seq > victim.seq {
			victim = s
		}
	}
	if victim == nil {
		return false
	}
	fr.killLocked(victim)
	return true
}

// RemoveAll breaks every live board on id at once and returns how many were
// removed.
func (fr *FortificationRegistry) RemoveAll(id EntryPointID) int {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	n := 0
	for _, h := range fr.boards[id] {
		s := &fr.slots[h.index]
		if s.Alive {
			fr.killLocked(s)
			n++
		}
	}
	return n
}

func (fr *FortificationRegistry) killLocked(s *BoardSlot) {
	s.Alive = false
	if fr.objects != nil && s.Ref != 0 {
		fr.objects.Destroy(s.Ref)
	}
}

// Reconcile marks boards whose object was destroyed outside the registry as
// dead, returns dead cells to the arena and drops empty entries. It returns
// the number of slots compacted away.
func (fr *FortificationRegistry) Reconcile() int {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	pruned := 0
	for id, list := range fr.boards {
		kept := list[:0]
		for _, h := range list {
			s := &fr.slots[h.index]
			if s.Alive && s.Ref != 0 && fr.objects != nil && !fr.objects.Alive(s.Ref) {
				s.Alive = false
			}
			if s.Alive {
				kept = append(kept, h)
				continue
			}
			fr.free = append(fr.free, h.index)
			pruned++
		}
		if len(kept) == 0 {
			delete(fr.boards, id)
			continue
		}
		fr.boards[id] = kept
	}
	return pruned
}

// entryBasis returns the tangent and in-plane vertical axes of a surface
// with the given normal. Openings facing straight up or down fall back to
// world Z so the basis stays defined.
func entryBasis(normal Vec3) (tangent, bitangent Vec3) {
	tangent = normal.Cross(WorldUp).Normalize()
	if tangent == (Vec3{}) {
		tangent = normal.Cross(Vec3{0, 0, 1}).Normalize()
	}
	bitangent = tangent.Cross(normal).Normalize()
	return tangent, bitangent
}

// SlotOffset is the vertical offset of slot index from the opening centre.
func SlotOffset(index int, height float64) float64 {
	return float64(index-1) * height / 4
}

// slotTransform projects the hit point onto the opening and lifts it to the
// slot's section.
func slotTransform(ep EntryPoint, hitPoint Vec3, index int, roll, standoff float64) BoardTransform {
	t, b := entryBasis(ep.Normal)
	along := hitPoint.Sub(ep.Position).Dot(t)
	half := ep.Width / 2
	along = math.Max(-half, math.Min(half, along))
	pos := ep.Position.
		Add(t.Scale(along)).
		Add(b.Scale(SlotOffset(index, ep.Height))).
		Add(ep.Normal.Scale(standoff))
	return BoardTransform{
		Position:  pos,
		Normal:    ep.Normal,
		Tangent:   t,
		Bitangent: b,
		Roll:      roll,
	}
}

// boardBounds is the world AABB of a rolled board spanning the opening.
func boardBounds(xf BoardTransform, ep EntryPoint, thickness float64) AABB {
	axes := [3]Vec3{xf.Right(), xf.Up(), xf.Normal}
	half := [3]float64{ep.Width / 2, ep.Height / 10, thickness / 2}
	var ext Vec3
	for i, a := range axes {
		ext.X += math.Abs(a.X) * half[i]
		ext.Y += math.Abs(a.Y) * half[i]
		ext.Z += math.Abs(a.Z) * half[i]
	}
	return BoxAround(xf.Position, ext)
}
