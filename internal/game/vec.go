package game

import "math"

// Vec3 is a point or direction in world space. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// WorldUp is the fixed up axis used to derive entry-point bases.
var WorldUp = Vec3{0, 1, 0}

func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{a.X * s, a.Y * s, a.Z * s} }

func (a Vec3) Dot(b Vec3) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

// Cross returns a × b.
func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec3) Len() float64 { return math.Sqrt(a.Dot(a)) }

// Normalize returns the unit vector along a, or the zero vector when a is
// (nearly) zero length.
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Dist returns the euclidean distance between a and b.
func (a Vec3) Dist(b Vec3) float64 { return a.Sub(b).Len() }

// Flat drops the vertical component.
func (a Vec3) Flat() Vec3 { return Vec3{a.X, 0, a.Z} }

// FlatDist is the distance between a and b on the ground plane.
func (a Vec3) FlatDist(b Vec3) float64 { return a.Sub(b).Flat().Len() }

// Lerp interpolates linearly from a to b; t is not clamped.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// Rotate rotates v around unit axis k by angle radians (Rodrigues).
func (a Vec3) Rotate(k Vec3, angle float64) Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return a.Scale(c).Add(k.Cross(a).Scale(s)).Add(k.Scale(k.Dot(a) * (1 - c)))
}

// AABB is an axis-aligned box.
type AABB struct {
	Min, Max Vec3
}

// BoxAround builds an AABB from a centre and half extents.
func BoxAround(c, half Vec3) AABB {
	return AABB{Min: c.Sub(half), Max: c.Add(half)}
}

func (b AABB) Center() Vec3 { return b.Min.Lerp(b.Max, 0.5) }

// ClosestPoint clamps p into the box.
func (b AABB) ClosestPoint(p Vec3) Vec3 {
	return Vec3{
		math.Max(b.Min.X, math.Min(p.X, b.Max.X)),
		math.Max(b.Min.Y, math.Min(p.Y, b.Max.Y)),
		math.Max(b.Min.Z, math.Min(p.Z, b.Max.Z)),
	}
}

// ContainsFlat reports whether p lies inside the box's X/Z footprint.
func (b AABB) ContainsFlat(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectsSphere reports whether the sphere (c, r) touches the box.
func (b AABB) IntersectsSphere(c Vec3, r float64) bool {
	return b.ClosestPoint(c).Dist(c) <= r
}

// segmentHit returns the first parameter t in [0,1] where the segment o->e
// enters the box, along with the outward face normal at that point (slab
// test).
func (b AABB) segmentHit(o, e Vec3) (float64, Vec3, bool) {
	d := e.Sub(o)
	tMin, tMax := 0.0, 1.0
	var normal Vec3

	os := [3]float64{o.X, o.Y, o.Z}
	ds := [3]float64{d.X, d.Y, d.Z}
	mins := [3]float64{b.Min.X, b.Min.Y, b.Min.Z}
	maxs := [3]float64{b.Max.X, b.Max.Y, b.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if math.Abs(ds[axis]) < 1e-12 {
			if os[axis] < mins[axis] || os[axis] > maxs[axis] {
				return 0, Vec3{}, false
			}
			continue
		}
		inv := 1.0 / ds[axis]
		t1 := (mins[axis] - os[axis]) * inv
		t2 := (maxs[axis] - os[axis]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}
		if t1 > tMin {
			tMin = t1
			normal = Vec3{}
			switch axis {
			case 0:
				normal.X = sign
			case 1:
				normal.Y = sign
			case 2:
				normal.Z = sign
			}
		}
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return 0, Vec3{}, false
		}
	}
	return tMin, normal, true
}
