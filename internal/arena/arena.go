package arena

// Handle identifies an arena slot together with the generation it was
// allocated under. A handle held across a release fails the generation check
// instead of silently aliasing a reused slot.
type Handle struct {
	Index      uint32
	Generation uint32
}

// Zero reports whether the handle was never assigned.
func (h Handle) Zero() bool {
	return h == Handle{}
}

type slot struct {
	entity     Entity
	generation uint32
	live       bool
}

// Arena stores entities in stable-index slots. Removal frees the slot in
// place rather than shifting contents, so outstanding handles stay valid for
// staleness detection.
type Arena struct {
	slots []slot
	free  []uint32
	count int
}

// New constructs an arena with room for capacity entities before growth.
func New(capacity int) *Arena {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena{
		slots: make([]slot, 0, capacity),
		free:  make([]uint32, 0, capacity),
	}
}

// Insert stores the entity and returns its handle.
func (a *Arena) Insert(entity Entity) Handle {
	if a == nil {
		return Handle{}
	}
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		s := &a.slots[idx]
		s.entity = entity
		s.live = true
		a.count++
		return Handle{Index: idx, Generation: s.generation}
	}
	a.slots = append(a.slots, slot{entity: entity, generation: 1, live: true})
	a.count++
	return Handle{Index: uint32(len(a.slots) - 1), Generation: 1}
}

// Get resolves a handle, returning false for stale or freed handles.
func (a *Arena) Get(h Handle) (*Entity, bool) {
	if a == nil || int(h.Index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[h.Index]
	if !s.live || s.generation != h.Generation {
		return nil, false
	}
	return &s.entity, true
}

// Release frees the slot, bumping its generation so outstanding handles go
// stale. Returns false when the handle was already stale.
func (a *Arena) Release(h Handle) bool {
	if a == nil || int(h.Index) >= len(a.slots) {
		return false
	}
	s := &a.slots[h.Index]
	if !s.live || s.generation != h.Generation {
		return false
	}
	s.live = false
	s.generation++
	s.entity = Entity{}
	a.free = append(a.free, h.Index)
	a.count--
	return true
}

// Len reports the number of live entities.
func (a *Arena) Len() int {
	if a == nil {
		return 0
	}
	return a.count
}

// ForEach visits every live entity in slot order. Returning false from the
// visitor stops the walk.
func (a *Arena) ForEach(visit func(Handle, *Entity) bool) {
	if a == nil || visit == nil {
		return
	}
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		if !visit(Handle{Index: uint32(i), Generation: s.generation}, &s.entity) {
			return
		}
	}
}

// Reset discards every entity. Slots are retained with advanced generations
// so handles issued before the reset cannot resolve against a future
// population that reuses the same indices.
func (a *Arena) Reset() {
	if a == nil {
		return
	}
	for i := range a.slots {
		s := &a.slots[i]
		if !s.live {
			continue
		}
		s.live = false
		s.generation++
		s.entity = Entity{}
		a.free = append(a.free, uint32(i))
	}
	a.count = 0
}
