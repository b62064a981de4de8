// Package collision performs the per-tick narrow phase over spatial grid
// candidates and reports eliminations for lifecycle handling.
package collision

import (
	"sort"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
	"github.com/colehorsman/zombie-game-sub004/internal/grid"
)

// Elimination records an entity whose health reached zero during a scan.
// State transitions happen later, when the lifecycle manager drains the
// event queue, never during the scan itself.
type Elimination struct {
	Handle   arena.Handle
	EntityID string
	Kind     arena.Kind
	Target   string
	Tick     uint64
}

// Resolver scans projectiles against grid candidates and applies damage.
type Resolver struct {
	narrowTests uint64
	candidates  uint64
}

// NewResolver constructs a resolver with zeroed counters.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve runs one tick's collision pass. The grid must have been rebuilt
// from the arena this tick. Returned eliminations are in projectile order;
// for piercing projectiles, per-projectile hits are ordered by distance from
// the projectile's origin.
func (r *Resolver) Resolve(entities *arena.Arena, index *grid.Grid, projectiles []*Projectile, tick uint64) []Elimination {
	if r == nil || entities == nil || index == nil {
		return nil
	}
	var eliminations []Elimination
	for _, proj := range projectiles {
		if proj == nil || proj.Consumed {
			continue
		}
		candidates := index.Neighborhood(proj.X, proj.Y)
		r.candidates += uint64(len(candidates))
		if proj.Piercing {
			sortByOriginDistance(entities, proj, candidates)
		}
		bounds := proj.Bounds()
		for _, h := range candidates {
			entity, ok := entities.Get(h)
			if !ok || !entity.Targetable() || entity.Health <= 0 {
				continue
			}
			r.narrowTests++
			if !bounds.Intersects(entity.Bounds()) {
				continue
			}
			entity.Health -= proj.Damage
			if entity.Health <= 0 {
				entity.Health = 0
				eliminations = append(eliminations, Elimination{
					Handle:   h,
					EntityID: entity.ID,
					Kind:     entity.Kind,
					Target:   entity.Target,
					Tick:     tick,
				})
			}
			if !proj.Piercing {
				proj.Consumed = true
				break
			}
		}
	}
	return eliminations
}

// NarrowTests reports the cumulative number of narrow-phase intersection
// tests performed since the last ResetCounters.
func (r *Resolver) NarrowTests() uint64 {
	if r == nil {
		return 0
	}
	return r.narrowTests
}

// CandidateCount reports the cumulative candidate-set sizes returned by the
// grid since the last ResetCounters.
func (r *Resolver) CandidateCount() uint64 {
	if r == nil {
		return 0
	}
	return r.candidates
}

// ResetCounters zeroes the per-tick instrumentation counters.
func (r *Resolver) ResetCounters() {
	if r == nil {
		return
	}
	r.narrowTests = 0
	r.candidates = 0
}

func sortByOriginDistance(entities *arena.Arena, proj *Projectile, candidates []arena.Handle) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return originDistanceSq(entities, proj, candidates[i]) < originDistanceSq(entities, proj, candidates[j])
	})
}

func originDistanceSq(entities *arena.Arena, proj *Projectile, h arena.Handle) float64 {
	entity, ok := entities.Get(h)
	if !ok {
		return 0
	}
	dx := entity.X - proj.OriginX
	dy := entity.Y - proj.OriginY
	return dx*dx + dy*dy
}
