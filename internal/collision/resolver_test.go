package collision

import (
	"testing"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
	"github.com/colehorsman/zombie-game-sub004/internal/grid"
)

func buildWorld(t *testing.T, entities []arena.Entity) (*arena.Arena, *grid.Grid, []arena.Handle) {
	t.Helper()
	a := arena.New(len(entities))
	handles := make([]arena.Handle, 0, len(entities))
	for _, e := range entities {
		handles = append(handles, a.Insert(e))
	}
	g := grid.New(32)
	g.Rebuild(a)
	return a, g, handles
}

func TestResolverAppliesDamageAndConsumesProjectile(t *testing.T) {
	a, g, handles := buildWorld(t, []arena.Entity{
		{ID: "res-1", Kind: arena.KindResource, X: 100, Y: 100, HalfW: 10, HalfH: 10, Health: 3, MaxHealth: 3},
	})
	proj := &Projectile{ID: "p-1", X: 102, Y: 100, OriginX: 0, OriginY: 100, HalfW: 4, HalfH: 4, Damage: 1}

	r := NewResolver()
	eliminations := r.Resolve(a, g, []*Projectile{proj}, 1)
	if len(eliminations) != 0 {
		t.Fatalf("expected no elimination at health 2, got %d", len(eliminations))
	}
	if !proj.Consumed {
		t.Fatalf("expected non-piercing projectile consumed on first hit")
	}
	entity, _ := a.Get(handles[0])
	if entity.Health != 2 {
		t.Fatalf("expected health 2 after one hit, got %d", entity.Health)
	}
}

func TestResolverEliminatesExactlyOnce(t *testing.T) {
	a, g, handles := buildWorld(t, []arena.Entity{
		{ID: "res-1", Kind: arena.KindResource, X: 100, Y: 100, HalfW: 10, HalfH: 10, Health: 3, MaxHealth: 3},
	})
	r := NewResolver()

	var total []Elimination
	for tick := uint64(1); tick <= 3; tick++ {
		proj := &Projectile{ID: "p", X: 100, Y: 100, HalfW: 4, HalfH: 4, Damage: 1}
		total = append(total, r.Resolve(a, g, []*Projectile{proj}, tick)...)
	}
	if len(total) != 1 {
		t.Fatalf("expected exactly one elimination after three hits, got %d", len(total))
	}
	entity, _ := a.Get(handles[0])
	if entity.Health != 0 {
		t.Fatalf("expected health clamped at 0, got %d", entity.Health)
	}
}

func TestResolverSkipsProtectedEntities(t *testing.T) {
	a, g, handles := buildWorld(t, []arena.Entity{
		{ID: "guard", Kind: arena.KindResource, X: 100, Y: 100, HalfW: 10, HalfH: 10, Health: 3, MaxHealth: 3, Protected: true},
	})
	r := NewResolver()
	for i := 0; i < 100; i++ {
		proj := &Projectile{ID: "p", X: 100, Y: 100, HalfW: 4, HalfH: 4, Damage: 1}
		if eliminations := r.Resolve(a, g, []*Projectile{proj}, uint64(i)); len(eliminations) != 0 {
			t.Fatalf("protected entity must never eliminate")
		}
	}
	entity, _ := a.Get(handles[0])
	if entity.Health != 3 || entity.State != arena.StateActive {
		t.Fatalf("protected entity changed: health=%d state=%s", entity.Health, entity.State)
	}
}

func TestResolverSkipsPendingEntities(t *testing.T) {
	a, g, handles := buildWorld(t, []arena.Entity{
		{ID: "res-1", Kind: arena.KindResource, X: 100, Y: 100, HalfW: 10, HalfH: 10, Health: 2, MaxHealth: 3},
	})
	entity, _ := a.Get(handles[0])
	entity.State = arena.StatePendingRemediation
	g.Rebuild(a)

	r := NewResolver()
	proj := &Projectile{ID: "p", X: 100, Y: 100, HalfW: 4, HalfH: 4, Damage: 5}
	if eliminations := r.Resolve(a, g, []*Projectile{proj}, 1); len(eliminations) != 0 {
		t.Fatalf("pending entity must not emit a second elimination")
	}
	if entity.Health != 2 {
		t.Fatalf("pending entity took damage: health=%d", entity.Health)
	}
	if proj.Consumed {
		t.Fatalf("projectile should pass through a non-targetable entity")
	}
}

func TestResolverPiercingHitsOrderedByOriginDistance(t *testing.T) {
	// Two entities in the same neighborhood; the piercing projectile was
	// fired from the left, so the left entity must eliminate first.
	a, g, _ := buildWorld(t, []arena.Entity{
		{ID: "far", Kind: arena.KindResource, X: 110, Y: 100, HalfW: 10, HalfH: 10, Health: 1, MaxHealth: 3},
		{ID: "near", Kind: arena.KindResource, X: 95, Y: 100, HalfW: 10, HalfH: 10, Health: 1, MaxHealth: 3},
	})
	proj := &Projectile{
		ID: "p", X: 102, Y: 100, OriginX: 0, OriginY: 100,
		HalfW: 4, HalfH: 4, Damage: 1, Piercing: true,
	}
	r := NewResolver()
	eliminations := r.Resolve(a, g, []*Projectile{proj}, 1)
	if len(eliminations) != 2 {
		t.Fatalf("expected piercing projectile to eliminate both, got %d", len(eliminations))
	}
	if eliminations[0].EntityID != "near" || eliminations[1].EntityID != "far" {
		t.Fatalf("expected near before far, got %s then %s", eliminations[0].EntityID, eliminations[1].EntityID)
	}
	if proj.Consumed {
		t.Fatalf("piercing projectile must not be consumed")
	}
}

func TestResolverCountsNarrowPhaseTests(t *testing.T) {
	a, g, _ := buildWorld(t, []arena.Entity{
		{ID: "a", X: 100, Y: 100, HalfW: 10, HalfH: 10, Health: 5, MaxHealth: 5, Kind: arena.KindAccessGrant},
	})
	r := NewResolver()
	proj := &Projectile{ID: "p", X: 100, Y: 100, HalfW: 4, HalfH: 4, Damage: 1, Piercing: true}
	r.Resolve(a, g, []*Projectile{proj}, 1)
	if r.NarrowTests() == 0 {
		t.Fatalf("expected narrow-phase counter to advance")
	}
	if r.CandidateCount() == 0 {
		t.Fatalf("expected candidate counter to advance")
	}
	r.ResetCounters()
	if r.NarrowTests() != 0 || r.CandidateCount() != 0 {
		t.Fatalf("expected counters cleared")
	}
}
