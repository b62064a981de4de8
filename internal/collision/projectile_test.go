package collision

import (
	"testing"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
)

func TestProjectileAdvance(t *testing.T) {
	p := &Projectile{X: 10, Y: 20, VelX: 60, VelY: -30}
	p.Advance(0.5)
	if p.X != 40 || p.Y != 5 {
		t.Fatalf("unexpected position (%f, %f)", p.X, p.Y)
	}
	p.Advance(0)
	p.Advance(-1)
	if p.X != 40 || p.Y != 5 {
		t.Fatalf("non-positive dt must not move the projectile")
	}
}

func TestProjectileBounds(t *testing.T) {
	p := &Projectile{X: 5, Y: 6, HalfW: 2, HalfH: 3}
	b := p.Bounds()
	if b.X != 5 || b.Y != 6 || b.HalfW != 2 || b.HalfH != 3 {
		t.Fatalf("unexpected bounds %+v", b)
	}
	var nilProj *Projectile
	if nilProj.Bounds() != (arena.AABB{}) {
		t.Fatalf("expected zero bounds from nil projectile")
	}
}
