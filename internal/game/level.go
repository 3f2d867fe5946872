package game

import (
	"fmt"
	"math"
	"math/rand"
)

// LevelConfig holds tuneable parameters for level generation.
type LevelConfig struct {
	HouseWidth     float64 // along X
	HouseDepth     float64 // along Z
	WallHeight     float64
	WallThickness  float64
	WindowWidth    float64
	WindowHeight   float64
	SillHeight     float64
	WindowsPerFace int
	YardHalfSize   float64 // yard spans [-YardHalfSize, YardHalfSize] on X and Z
	DebrisClusters int     // number of crate/sandbag runs scattered in the yard
	DebrisSize     float64
	AgentCount     int
}

var defaultLevelConfig = LevelConfig{
	HouseWidth:     12,
	HouseDepth:     9,
	WallHeight:     2.6,
	WallThickness:  0.2,
	WindowWidth:    1.2,
	WindowHeight:   1.2,
	SillHeight:     0.8,
	WindowsPerFace: 2,
	YardHalfSize:   20,
	DebrisClusters: 8,
	DebrisSize:     0.6,
	AgentCount:     2,
}

// DefaultLevelConfig returns the baseline house-and-yard layout.
func DefaultLevelConfig() LevelConfig { return defaultLevelConfig }

// Level is a generated house with boardable windows, its yard and spawns.
type Level struct {
	Scene       *Scene
	Registry    *FortificationRegistry
	Windows     []EntryPointID
	Walls       []ObjectRef
	Debris      []ObjectRef
	House       AABB
	Yard        AABB
	PlayerSpawn Vec3
	AgentSpawns []Vec3
}

// houseFace is one exterior wall of the house.
type houseFace struct {
	name   string
	origin Vec3 // wall centre line start, at ground level
	along  Vec3 // unit direction along the face
	length float64
	normal Vec3 // outward
}

// NewOpenLevel returns an empty yard with no house. Windows and debris are
// added by the caller.
func NewOpenLevel(fort FortConfig, yardHalfSize float64, rng *rand.Rand) *Level {
	sc := NewScene()
	return &Level{
		Scene:    sc,
		Registry: NewFortificationRegistry(fort, sc, sc, rand.New(rand.NewSource(rng.Int63()))), // #nosec G404 -- board roll
		Yard:     AABB{Min: Vec3{-yardHalfSize, 0, -yardHalfSize}, Max: Vec3{yardHalfSize, 0, yardHalfSize}},
	}
}

// BuildLevel generates the house, registers its windows and scatters debris.
func BuildLevel(cfg LevelConfig, fort FortConfig, rng *rand.Rand) *Level {
	lvl := NewOpenLevel(fort, cfg.YardHalfSize, rng)

	hw, hd := cfg.HouseWidth/2, cfg.HouseDepth/2
	lvl.House = AABB{Min: Vec3{-hw, 0, -hd}, Max: Vec3{hw, cfg.WallHeight, hd}}

	faces := []houseFace{
		{name: "north", origin: Vec3{-hw, 0, -hd}, along: Vec3{1, 0, 0}, length: cfg.HouseWidth, normal: Vec3{0, 0, -1}},
		{name: "south", origin: Vec3{-hw, 0, hd}, along: Vec3{1, 0, 0}, length: cfg.HouseWidth, normal: Vec3{0, 0, 1}},
		{name: "west", origin: Vec3{-hw, 0, -hd}, along: Vec3{0, 0, 1}, length: cfg.HouseDepth, normal: Vec3{-1, 0, 0}},
		{name: "east", origin: Vec3{hw, 0, -hd}, along: Vec3{0, 0, 1}, length: cfg.HouseDepth, normal: Vec3{1, 0, 0}},
	}
	for _, f := range faces {
		lvl.addFace(cfg, f, rng)
	}

	for i := 0; i < cfg.DebrisClusters; i++ {
		lvl.placeDebrisRun(cfg, rng)
	}

	lvl.PlayerSpawn = Vec3{0, 0, 0}
	corners := []Vec3{
		{-cfg.YardHalfSize + 2, 0, -cfg.YardHalfSize + 2},
		{cfg.YardHalfSize - 2, 0, cfg.YardHalfSize - 2},
		{cfg.YardHalfSize - 2, 0, -cfg.YardHalfSize + 2},
		{-cfg.YardHalfSize + 2, 0, cfg.YardHalfSize - 2},
	}
	for i := 0; i < cfg.AgentCount; i++ {
		lvl.AgentSpawns = append(lvl.AgentSpawns, corners[i%len(corners)])
	}
	return lvl
}

// addFace builds one exterior wall: full-height piers between openings,
// a sill below and a lintel above each window, and the window itself as a
// registered entry point.
func (lvl *Level) addFace(cfg LevelConfig, f houseFace, rng *rand.Rand) {
	centres := pickWindowCentres(f.length, cfg.WindowWidth, cfg.WindowsPerFace, rng)

	half := cfg.WindowWidth / 2
	t := cfg.WallThickness / 2
	cursor := -t
	for i, c := range centres {
		lvl.addWallSpan(f, cursor, c-half, 0, cfg.WallHeight, t)
		lvl.addWallSpan(f, c-half, c+half, 0, cfg.SillHeight, t)
		lvl.addWallSpan(f, c-half, c+half, cfg.SillHeight+cfg.WindowHeight, cfg.WallHeight, t)

		centre := f.origin.Add(f.along.Scale(c))
		centre.Y = cfg.SillHeight + cfg.WindowHeight/2
		lvl.AddWindow(fmt.Sprintf("%s-%d", f.name, i), centre, f.normal, cfg.WindowWidth, cfg.WindowHeight, cfg.WallThickness)
		cursor = c + half
	}
	// Extend the last pier past the corner so adjoining faces close up.
	lvl.addWallSpan(f, cursor, f.length+t, 0, cfg.WallHeight, t)
}

// AddWindow spawns a window collider and registers it as an entry point.
func (lvl *Level) AddWindow(name string, centre, normal Vec3, width, height, thickness float64) EntryPointID {
	n := normal.Normalize()
	along := n.Cross(WorldUp).Normalize()
	ext := absVec(along.Scale(width / 2)).Add(absVec(n.Scale(thickness / 2))).Add(Vec3{0, height / 2, 0})
	ref := lvl.Scene.Spawn(ObjectSpec{Kind: KindWindow, Layer: LayerWindow, Bounds: BoxAround(centre, ext)})
	id := lvl.Registry.Register(EntryPoint{
		Name:     name,
		Position: centre,
		Normal:   n,
		Height:   height,
		Width:    width,
		Ref:      ref,
	})
	lvl.Windows = append(lvl.Windows, id)
	return id
}

// AddDebris drops an obstacle box into the level.
func (lvl *Level) AddDebris(bounds AABB) ObjectRef {
	ref := lvl.Scene.AddObstacle(bounds)
	lvl.Debris = append(lvl.Debris, ref)
	return ref
}

// addWallSpan adds a wall box covering [from,to] along the face and
// [y0,y1] vertically.
func (lvl *Level) addWallSpan(f houseFace, from, to, y0, y1, halfThick float64) {
	if to-from < 1e-6 || y1-y0 < 1e-6 {
		return
	}
	mid := f.origin.Add(f.along.Scale((from + to) / 2))
	mid.Y = (y0 + y1) / 2
	ext := absVec(f.along.Scale((to - from) / 2)).Add(absVec(f.normal.Scale(halfThick))).Add(Vec3{0, (y1 - y0) / 2, 0})
	lvl.Walls = append(lvl.Walls, lvl.Scene.AddWall(BoxAround(mid, ext)))
}

// pickWindowCentres picks up to count non-overlapping window centres along a
// face, keeping a pier at each corner.
func pickWindowCentres(length, width float64, count int, rng *rand.Rand) []float64 {
	unit := width + 0.4
	slots := int(math.Floor(length/unit)) - 2 // skip the corner units
	if slots < 1 || count < 1 {
		return nil
	}
	taken := make(map[int]bool)
	var out []float64
	for i := 0; i < count; i++ {
		for tries := 0; tries < 10; tries++ {
			s := 1 + rng.Intn(slots)
			if taken[s] || taken[s-1] || taken[s+1] {
				continue
			}
			taken[s] = true
			out = append(out, (float64(s)+0.5)*unit)
			break
		}
	}
	// Faces are built left to right.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// debrisCanPlace returns true if a debris block at p stays in the yard and
// clear of the house.
func (lvl *Level) debrisCanPlace(p Vec3, size float64) bool {
	margin := 1.5
	if p.X < lvl.Yard.Min.X+size || p.X > lvl.Yard.Max.X-size ||
		p.Z < lvl.Yard.Min.Z+size || p.Z > lvl.Yard.Max.Z-size {
		return false
	}
	if p.X > lvl.House.Min.X-margin && p.X < lvl.House.Max.X+margin &&
		p.Z > lvl.House.Min.Z-margin && p.Z < lvl.House.Max.Z+margin {
		return false
	}
	for _, ref := range lvl.Debris {
		if b, ok := lvl.Scene.Bounds(ref); ok && b.IntersectsSphere(Vec3{p.X, b.Center().Y, p.Z}, size*0.4) {
			return false
		}
	}
	return true
}

// placeDebrisRun places a straight run of 2-4 crates with a 40% chance of an
// L-turn, like a hastily stacked sandbag line.
func (lvl *Level) placeDebrisRun(cfg LevelConfig, rng *rand.Rand) {
	span := cfg.YardHalfSize - cfg.DebrisSize
	start := Vec3{(rng.Float64()*2 - 1) * span, 0, (rng.Float64()*2 - 1) * span}
	dir := Vec3{1, 0, 0}
	if rng.Intn(2) == 0 {
		dir = Vec3{0, 0, 1}
	}
	side := Vec3{dir.Z, 0, dir.X}
	length := 2 + rng.Intn(3)
	s := cfg.DebrisSize

	placed := 0
	for i := 0; i < length; i++ {
		p := start.Add(dir.Scale(float64(i) * s))
		if !lvl.debrisCanPlace(p, s) {
			break
		}
		lvl.addDebris(p, s)
		placed++
	}

	if placed >= 2 && rng.Float64() < 0.4 {
		corner := start.Add(dir.Scale(float64(placed-1) * s))
		turnLen := 1 + rng.Intn(2)
		for i := 1; i <= turnLen; i++ {
			p := corner.Add(side.Scale(float64(i) * s))
			if !lvl.debrisCanPlace(p, s) {
				break
			}
			lvl.addDebris(p, s)
		}
	}
}

func (lvl *Level) addDebris(p Vec3, size float64) {
	h := size / 2
	lvl.AddDebris(BoxAround(Vec3{p.X, h, p.Z}, Vec3{h, h, h}))
}

func absVec(v Vec3) Vec3 {
	return Vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}
}
