package collision

import "github.com/colehorsman/zombie-game-sub004/internal/arena"

// Projectile is a player-fired shot tracked by the resolver. Origin is kept
// so piercing hits can be ordered by distance along the flight path.
type Projectile struct {
	ID       string
	X        float64
	Y        float64
	OriginX  float64
	OriginY  float64
	VelX     float64
	VelY     float64
	HalfW    float64
	HalfH    float64
	Damage   int
	Piercing bool
	Consumed bool
	OwnerID  string
}

// Advance moves the projectile by its velocity over dt seconds.
func (p *Projectile) Advance(dt float64) {
	if p == nil || dt <= 0 {
		return
	}
	p.X += p.VelX * dt
	p.Y += p.VelY * dt
}

// Bounds returns the projectile's bounding box.
func (p *Projectile) Bounds() arena.AABB {
	if p == nil {
		return arena.AABB{}
	}
	return arena.AABB{X: p.X, Y: p.Y, HalfW: p.HalfW, HalfH: p.HalfH}
}
