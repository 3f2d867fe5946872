package game

import (
	"math"
	"sort"
	"sync"
)

// sceneObject is one collider held by a Scene.
type sceneObject struct {
	kind   ObjectKind
	layer  Layer
	bounds AABB
	alive  bool
}

// Scene is an in-memory collection of axis-aligned colliders. It implements
// both SpatialQuery and ObjectLifecycle, standing in for an engine's physics
// scene in the sandbox and in tests. It is safe for concurrent use; Each
// holds the read lock while fn runs, so fn must not spawn or destroy.
type Scene struct {
	mu      sync.RWMutex
	objects []sceneObject // ref-1 indexes this slice
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Spawn adds a collider and returns its ref.
func (sc *Scene) Spawn(spec ObjectSpec) ObjectRef {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.objects = append(sc.objects, sceneObject{
		kind:   spec.Kind,
		layer:  spec.Layer,
		bounds: spec.Bounds,
		alive:  true,
	})
	return ObjectRef(len(sc.objects))
}

// AddObstacle is shorthand for spawning a static obstacle box.
func (sc *Scene) AddObstacle(bounds AABB) ObjectRef {
	return sc.Spawn(ObjectSpec{Kind: KindObstacle, Layer: LayerObstacle, Bounds: bounds})
}

// AddWall spawns a structural wall box.
func (sc *Scene) AddWall(bounds AABB) ObjectRef {
	return sc.Spawn(ObjectSpec{Kind: KindWall, Layer: LayerWall, Bounds: bounds})
}

func (sc *Scene) get(ref ObjectRef) *sceneObject {
	if ref == 0 || int(ref) > len(sc.objects) {
		return nil
	}
	return &sc.objects[ref-1]
}

// Destroy marks the object dead. Destroying twice is a no-op.
func (sc *Scene) Destroy(ref ObjectRef) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if o := sc.get(ref); o != nil {
		o.alive = false
	}
}

// Alive reports whether ref names a live object.
func (sc *Scene) Alive(ref ObjectRef) bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	o := sc.get(ref)
	return o != nil && o.alive
}

// Bounds returns the collider box for ref.
func (sc *Scene) Bounds(ref ObjectRef) (AABB, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	o := sc.get(ref)
	if o == nil {
		return AABB{}, false
	}
	return o.bounds, true
}

// Kind returns the kind tag for ref.
func (sc *Scene) Kind(ref ObjectRef) ObjectKind {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	if o := sc.get(ref); o != nil {
		return o.kind
	}
	return KindObstacle
}

// Each calls fn for every live object on the given layers, in spawn order.
func (sc *Scene) Each(layers Layer, fn func(ref ObjectRef, bounds AABB)) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	for i := range sc.objects {
		o := &sc.objects[i]
		if !o.alive || o.layer&layers == 0 {
			continue
		}
		fn(ObjectRef(i+1), o.bounds)
	}
}

// RaycastFirst returns the nearest live collider on layers hit by the ray.
func (sc *Scene) RaycastFirst(origin, dir Vec3, maxDistance float64, layers Layer) (Hit, bool) {
	d := dir.Normalize()
	if d == (Vec3{}) || maxDistance <= 0 {
		return Hit{}, false
	}
	end := origin.Add(d.Scale(maxDistance))

	sc.mu.RLock()
	defer sc.mu.RUnlock()
	best := Hit{Distance: math.Inf(1)}
	found := false
	for i := range sc.objects {
		o := &sc.objects[i]
		if !o.alive || o.layer&layers == 0 {
			continue
		}
		t, n, ok := o.bounds.segmentHit(origin, end)
		if !ok {
			continue
		}
		dist := t * maxDistance
		if dist < best.Distance {
			best = Hit{
				Ref:      ObjectRef(i + 1),
				Point:    origin.Add(d.Scale(dist)),
				Normal:   n,
				Distance: dist,
			}
			found = true
		}
	}
	return best, found
}

// OverlapSphere returns refs of live colliders on layers touching the sphere,
// ordered by spawn order.
func (sc *Scene) OverlapSphere(center Vec3, radius float64, layers Layer) []ObjectRef {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.overlapLocked(center, radius, layers)
}

func (sc *Scene) overlapLocked(center Vec3, radius float64, layers Layer) []ObjectRef {
	var out []ObjectRef
	for i := range sc.objects {
		o := &sc.objects[i]
		if !o.alive || o.layer&layers == 0 {
			continue
		}
		if o.bounds.IntersectsSphere(center, radius) {
			out = append(out, ObjectRef(i+1))
		}
	}
	return out
}

// LineClear reports whether the segment from->to touches no live collider on
// layers.
func (sc *Scene) LineClear(from, to Vec3, layers Layer) bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	for i := range sc.objects {
		o := &sc.objects[i]
		if !o.alive || o.layer&layers == 0 {
			continue
		}
		if _, _, hit := o.bounds.segmentHit(from, to); hit {
			return false
		}
	}
	return true
}

// DestroyWithin destroys every live object on layers touching the sphere and
// returns the refs it destroyed, nearest first. The registry only learns
// about these through Reconcile.
func (sc *Scene) DestroyWithin(center Vec3, radius float64, layers Layer) []ObjectRef {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	refs := sc.overlapLocked(center, radius, layers)
	sort.SliceStable(refs, func(i, j int) bool {
		return sc.objects[refs[i]-1].bounds.ClosestPoint(center).Dist(center) <
			sc.objects[refs[j]-1].bounds.ClosestPoint(center).Dist(center)
	})
	for _, r := range refs {
		sc.objects[r-1].alive = false
	}
	return refs
}
