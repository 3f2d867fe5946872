package viewer

import "github.com/Garsondee/Bolster/internal/game"

// pixelsPerMeter is the native map scale at zoom 1.
const pixelsPerMeter = 24.0

// camera maps the world's X/Z ground plane onto the playfield viewport.
// Screen Y grows with world Z.
type camera struct {
	x, z       float64 // world-space centre
	zoom       float64
	vpW, vpH   float64 // viewport size in pixels
	offX, offY float64 // viewport origin on screen
}

func (c camera) scale() float64 { return pixelsPerMeter * c.zoom }

// toScreen converts a world position to screen pixels.
func (c camera) toScreen(p game.Vec3) (float32, float32) {
	s := c.scale()
	sx := (p.X-c.x)*s + c.vpW/2 + c.offX
	sy := (p.Z-c.z)*s + c.vpH/2 + c.offY
	return float32(sx), float32(sy)
}

// toWorld is the inverse of toScreen on the ground plane (Y=0).
func (c camera) toWorld(sx, sy int) game.Vec3 {
	s := c.scale()
	return game.Vec3{
		X: (float64(sx)-c.offX-c.vpW/2)/s + c.x,
		Z: (float64(sy)-c.offY-c.vpH/2)/s + c.z,
	}
}

// meters converts a world length to pixels.
func (c camera) meters(m float64) float32 { return float32(m * c.scale()) }

// inView reports whether a screen point lies inside the viewport.
func (c camera) inView(sx, sy float32) bool {
	return float64(sx) >= c.offX && float64(sx) <= c.offX+c.vpW &&
		float64(sy) >= c.offY && float64(sy) <= c.offY+c.vpH
}

// clampZoom keeps zoom inside [lo,hi].
func (c *camera) clampZoom(lo, hi float64) {
	if c.zoom < lo {
		c.zoom = lo
	}
	if c.zoom > hi {
		c.zoom = hi
	}
}
