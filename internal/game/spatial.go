package game

// Layer is a bit set used to filter spatial queries.
type Layer uint32

const (
	LayerWindow   Layer = 1 << iota // boardable entry points
	LayerBoard                      // placed barricade pieces
	LayerObstacle                   // debris and barricade clutter; counts toward strength
	LayerPlayer
	LayerWall                       // structural walls; block movement but add no strength

	LayerNone  Layer = 0
	LayerSolid Layer = LayerObstacle | LayerWall // anything that blocks a walk or a jump
	LayerAll   Layer = ^Layer(0)
)

// ObjectRef is an opaque handle to a world object. Zero is never a valid ref.
type ObjectRef uint32

// Hit is the result of a successful raycast.
type Hit struct {
	Ref      ObjectRef
	Point    Vec3
	Normal   Vec3
	Distance float64
}

// SpatialQuery answers geometric questions about the scene. Calls are
// synchronous and may be expensive.
type SpatialQuery interface {
	RaycastFirst(origin, dir Vec3, maxDistance float64, layers Layer) (Hit, bool)
	OverlapSphere(center Vec3, radius float64, layers Layer) []ObjectRef
	LineClear(from, to Vec3, layers Layer) bool
}

// ObjectKind tags spawned world objects.
type ObjectKind int

const (
	KindObstacle ObjectKind = iota
	KindWindow
	KindBoard
	KindWall
)

// ObjectSpec describes an object the core wants spawned.
type ObjectSpec struct {
	Kind   ObjectKind
	Layer  Layer
	Bounds AABB
}

// ObjectLifecycle performs spawn/destroy on behalf of the core. Alive must
// report false once an object is destroyed, whoever destroyed it.
type ObjectLifecycle interface {
	Spawn(spec ObjectSpec) ObjectRef
	Destroy(ref ObjectRef)
	Alive(ref ObjectRef) bool
}

// PlayerLocator exposes the player's current position.
type PlayerLocator interface {
	PlayerPosition() (Vec3, bool)
}

// CueCategory groups interchangeable sound variants.
type CueCategory int

const (
	CueTap CueCategory = iota
	CueCreak
	CueImpact
)

func (c CueCategory) String() string {
	switch c {
	case CueTap:
		return "tap"
	case CueCreak:
		return "creak"
	case CueImpact:
		return "impact"
	default:
		return "unknown"
	}
}

// Cue is a one-shot sound request. Variant selects among the clips of a
// category; Volume and Pitch are multipliers around 1.
type Cue struct {
	Category CueCategory
	Variant  int
	Volume   float64
	Pitch    float64
	Position Vec3
}

// AudioEmitter plays fire-and-forget cues.
type AudioEmitter interface {
	PlayOneShot(cue Cue)
}

// silentEmitter drops every cue.
type silentEmitter struct{}

func (silentEmitter) PlayOneShot(Cue) {}

// CueRecorder is an AudioEmitter that keeps every cue it receives.
type CueRecorder struct {
	Cues []Cue
}

func (r *CueRecorder) PlayOneShot(c Cue) { r.Cues = append(r.Cues, c) }

// Count returns how many recorded cues belong to category.
func (r *CueRecorder) Count(category CueCategory) int {
	n := 0
	for _, c := range r.Cues {
		if c.Category == category {
			n++
		}
	}
	return n
}
