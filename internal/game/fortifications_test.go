package game

import (
	"math"
	"math/rand"
	"sync"
	"testing"
)

// newW1 builds a registry holding the single entry point W1: origin, facing
// -Z, height 2, backed by a window collider in a fresh scene.
func newW1(t *testing.T) (*FortificationRegistry, *Scene, EntryPointID) {
	t.Helper()
	sc := NewScene()
	ref := sc.Spawn(ObjectSpec{Kind: KindWindow, Layer: LayerWindow, Bounds: BoxAround(Vec3{}, Vec3{0.5, 1, 0.1})})
	fr := NewFortificationRegistry(defaultFortConfig, sc, sc, rand.New(rand.NewSource(42)))
	id := fr.Register(EntryPoint{Name: "W1", Normal: Vec3{0, 0, -1}, Height: 2, Width: 1, Ref: ref})
	return fr, sc, id
}

func centreHit(fr *FortificationRegistry, id EntryPointID) Hit {
	ep, _ := fr.EntryPoint(id)
	return Hit{Ref: ep.Ref, Point: ep.Position, Normal: ep.Normal}
}

func TestFortification_W1CapacityAndStrength(t *testing.T) {
	fr, _, w1 := newW1(t)

	if s := fr.Strength(w1); s != 0 {
		t.Fatalf("empty W1 strength = %.2f, want 0", s)
	}
	for i := 0; i < 3; i++ {
		slot, rej := fr.TryPlace(w1, centreHit(fr, w1))
		if rej != RejectNone {
			t.Fatalf("placement %d rejected: %s", i+1, rej)
		}
		if slot.Index != i {
			t.Fatalf("placement %d got slot index %d, want %d", i+1, slot.Index, i)
		}
		if i == 1 {
			if s := fr.Strength(w1); math.Abs(s-1.0) > 1e-9 {
				t.Fatalf("strength after 2 boards = %.3f, want 1.0", s)
			}
		}
	}
	if _, rej := fr.TryPlace(w1, centreHit(fr, w1)); rej != RejectCapacityReached {
		t.Fatalf("4th placement: got %s, want capacity_reached", rej)
	}
	if n := fr.LiveCount(w1); n != 3 {
		t.Fatalf("live count = %d, want 3", n)
	}
	if c := fr.Capacity(w1); c != 0 {
		t.Fatalf("capacity = %d, want 0", c)
	}
}

func TestFortification_UnknownEntryPoint(t *testing.T) {
	fr, _, _ := newW1(t)
	if _, rej := fr.TryPlace(EntryPointID(99), Hit{}); rej != RejectUnknownEntryPoint {
		t.Fatalf("got %s, want unknown_entry_point", rej)
	}
	if fr.RemoveOne(EntryPointID(99)) {
		t.Fatal("RemoveOne on unknown entry point reported a removal")
	}
}

func TestFortification_SlotOffsetsIncreaseWithIndex(t *testing.T) {
	fr, _, w1 := newW1(t)
	for i := 0; i < 3; i++ {
		fr.TryPlace(w1, centreHit(fr, w1))
	}
	slots := fr.Slots(w1)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	for i, s := range slots {
		if s.Index != i {
			t.Fatalf("slot %d has index %d", i, s.Index)
		}
		want := SlotOffset(i, 2)
		if math.Abs(s.Transform.Position.Y-want) > 1e-9 {
			t.Errorf("slot %d y = %.3f, want %.3f", i, s.Transform.Position.Y, want)
		}
		if i > 0 && s.Transform.Position.Y <= slots[i-1].Transform.Position.Y {
			t.Errorf("slot %d not above slot %d", i, i-1)
		}
		maxRoll := defaultFortConfig.MaxRollDegrees * math.Pi / 180
		if math.Abs(s.Transform.Roll) > maxRoll {
			t.Errorf("slot %d roll %.4f exceeds bound %.4f", i, s.Transform.Roll, maxRoll)
		}
	}
	// Boards sit in front of the opening, on the outward side.
	if z := slots[0].Transform.Position.Z; z >= 0 {
		t.Errorf("board z = %.3f, want in front of a -Z facing opening", z)
	}
}

func TestFortification_HitProjectionClampedToWidth(t *testing.T) {
	fr, _, w1 := newW1(t)
	slot, _ := fr.TryPlace(w1, Hit{Point: Vec3{5, 0, 0}})
	// Width 1: the board cannot slide more than half a width off centre.
	if x := slot.Transform.Position.X; math.Abs(x) > 0.5+1e-9 {
		t.Fatalf("board x = %.3f, want clamped to ±0.5", x)
	}
}

func TestFortification_RemoveOneLastPlacedFirst(t *testing.T) {
	fr, sc, w1 := newW1(t)
	first, _ := fr.TryPlace(w1, centreHit(fr, w1))
	second, _ := fr.TryPlace(w1, centreHit(fr, w1))

	if !fr.RemoveOne(w1) {
		t.Fatal("RemoveOne with 2 boards returned false")
	}
	if sc.Alive(second.Ref) {
		t.Error("last placed board object should be destroyed")
	}
	if !sc.Alive(first.Ref) {
		t.Error("first board object should survive")
	}
	if !fr.RemoveOne(w1) {
		t.Fatal("RemoveOne with 1 board returned false")
	}
	if n := fr.LiveCount(w1); n != 0 {
		t.Fatalf("live count = %d, want 0", n)
	}
	if fr.RemoveOne(w1) {
		t.Fatal("RemoveOne on an empty entry point returned true")
	}
}

func TestFortification_ReconcilePrunesExternalDestruction(t *testing.T) {
	fr, sc, w1 := newW1(t)
	var placed []BoardSlot
	for i := 0; i < 3; i++ {
		s, _ := fr.TryPlace(w1, centreHit(fr, w1))
		placed = append(placed, s)
	}

	sc.Destroy(placed[1].Ref)
	if n := fr.Reconcile(); n != 1 {
		t.Fatalf("first reconcile pruned %d, want 1", n)
	}
	if n := fr.LiveCount(w1); n != 2 {
		t.Fatalf("live count after reconcile = %d, want 2", n)
	}
	if n := fr.Reconcile(); n != 0 {
		t.Fatalf("second reconcile pruned %d, want 0", n)
	}

	// The freed middle slot is refilled and its arena cell recycled.
	refill, rej := fr.TryPlace(w1, centreHit(fr, w1))
	if rej != RejectNone || refill.Index != 1 {
		t.Fatalf("refill: index %d rejection %s, want index 1 placed", refill.Index, rej)
	}
	if _, ok := fr.Slot(placed[1].Handle); ok {
		t.Fatal("stale handle still resolves after its cell was recycled")
	}
	if s, ok := fr.Slot(refill.Handle); !ok || !s.Alive {
		t.Fatal("fresh handle does not resolve")
	}
}

func TestFortification_ReconcileDropsEmptyEntries(t *testing.T) {
	fr, _, w1 := newW1(t)
	fr.TryPlace(w1, centreHit(fr, w1))
	fr.TryPlace(w1, centreHit(fr, w1))
	if n := fr.RemoveAll(w1); n != 2 {
		t.Fatalf("RemoveAll removed %d, want 2", n)
	}
	if n := fr.Reconcile(); n != 2 {
		t.Fatalf("reconcile pruned %d, want 2", n)
	}
	if _, present := fr.boards[w1]; present {
		t.Fatal("empty entry still present in the board map")
	}
	// Still registered and queryable.
	if _, ok := fr.Resolve(w1); !ok {
		t.Fatal("entry point should outlive its boards")
	}
}

func TestFortification_StrengthMonotonic(t *testing.T) {
	fr, sc, w1 := newW1(t)
	prev := fr.Strength(w1)
	for i := 0; i < 3; i++ {
		fr.TryPlace(w1, centreHit(fr, w1))
		s := fr.Strength(w1)
		if s < prev {
			t.Fatalf("strength dropped from %.2f to %.2f after board %d", prev, s, i+1)
		}
		prev = s
	}

	sc.AddObstacle(BoxAround(Vec3{0, 0, -0.8}, Vec3{0.3, 0.3, 0.3}))
	withObstacle := fr.Strength(w1)
	if math.Abs(withObstacle-(prev+defaultFortConfig.ObstacleWeight)) > 1e-9 {
		t.Fatalf("strength with one obstacle = %.2f, want %.2f", withObstacle, prev+defaultFortConfig.ObstacleWeight)
	}

	// Walls never count toward strength.
	sc.AddWall(BoxAround(Vec3{0.8, 0, 0}, Vec3{0.2, 1, 0.1}))
	if s := fr.Strength(w1); s != withObstacle {
		t.Fatalf("wall changed strength: %.2f → %.2f", withObstacle, s)
	}
}

func TestFortification_ResolveFailsWhenWindowDestroyed(t *testing.T) {
	fr, sc, w1 := newW1(t)
	ep, _ := fr.EntryPoint(w1)
	sc.Destroy(ep.Ref)
	if _, ok := fr.Resolve(w1); ok {
		t.Fatal("Resolve should fail once the backing window is gone")
	}
	if _, ok := fr.EntryPoint(w1); !ok {
		t.Fatal("EntryPoint lookup should still succeed")
	}
}

func TestFortification_CapacityInvariantRandomOps(t *testing.T) {
	fr, sc, w1 := newW1(t)
	rng := rand.New(rand.NewSource(7))
	for step := 0; step < 2000; step++ {
		switch rng.Intn(5) {
		case 0, 1:
			fr.TryPlace(w1, centreHit(fr, w1))
		case 2:
			fr.RemoveOne(w1)
		case 3:
			if slots := fr.Slots(w1); len(slots) > 0 {
				sc.Destroy(slots[rng.Intn(len(slots))].Ref)
			}
		case 4:
			fr.Reconcile()
		}
		if n := fr.LiveCount(w1); n > MaxBoardsPerEntryPoint {
			t.Fatalf("step %d: live count %d exceeds capacity", step, n)
		}
		seen := map[int]bool{}
		for _, s := range fr.Slots(w1) {
			if seen[s.Index] {
				t.Fatalf("step %d: slot index %d used twice", step, s.Index)
			}
			seen[s.Index] = true
		}
	}
}

func TestFortification_ConcurrentMutation(t *testing.T) {
	fr := NewFortificationRegistry(defaultFortConfig, nil, nil, rand.New(rand.NewSource(1)))
	id := fr.Register(EntryPoint{Name: "shared", Normal: Vec3{1, 0, 0}, Height: 1.2, Width: 1.2})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				if (i+g)%3 == 0 {
					fr.RemoveOne(id)
				} else {
					fr.TryPlace(id, Hit{})
				}
				if i%17 == 0 {
					fr.Reconcile()
				}
				if n := fr.LiveCount(id); n > MaxBoardsPerEntryPoint {
					t.Errorf("live count %d exceeds capacity", n)
					return
				}
			}
		}(g)
	}
	wg.Wait()
}

// Boards live in a shared scene: writers place, break and reconcile while
// readers score strength and resolve targets, and an explosion destroys
// boards behind the registry's back. Run with -race.
func TestFortification_ConcurrentSharedScene(t *testing.T) {
	fr, sc, w1 := newW1(t)
	sc.AddObstacle(BoxAround(Vec3{0.8, 0.5, -0.8}, Vec3{0.3, 0.5, 0.3}))
	hit := centreHit(fr, w1)

	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				switch (i + g) % 3 {
				case 0:
					fr.RemoveOne(w1)
				case 1:
					fr.TryPlace(w1, hit)
				default:
					fr.Reconcile()
				}
			}
		}(g)
	}
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				if s := fr.Strength(w1); s < 0 {
					t.Errorf("negative strength %.2f", s)
					return
				}
				if _, ok := fr.Resolve(w1); !ok {
					t.Error("W1 stopped resolving while its window stands")
					return
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			sc.DestroyWithin(Vec3{0, 0, -0.2}, 0.5, LayerBoard)
		}
	}()
	wg.Wait()

	fr.Reconcile()
	if n := fr.LiveCount(w1); n > MaxBoardsPerEntryPoint {
		t.Fatalf("live count %d exceeds capacity", n)
	}
	for _, s := range fr.Slots(w1) {
		if !sc.Alive(s.Ref) {
			t.Fatalf("slot %d alive in registry but its board was destroyed", s.Index)
		}
	}
}

func TestEntryBasis(t *testing.T) {
	tangent, bitangent := entryBasis(Vec3{0, 0, -1})
	if math.Abs(tangent.Len()-1) > 1e-9 || math.Abs(bitangent.Len()-1) > 1e-9 {
		t.Fatalf("basis not unit: t=%v b=%v", tangent, bitangent)
	}
	if bitangent.Y < 0.999 {
		t.Errorf("bitangent of a wall opening should be world up, got %v", bitangent)
	}

	// A skylight facing straight up still gets a usable basis.
	tangent, bitangent = entryBasis(WorldUp)
	if tangent == (Vec3{}) || bitangent == (Vec3{}) {
		t.Fatalf("degenerate basis for an upward normal: t=%v b=%v", tangent, bitangent)
	}
}
