package arena

// Kind distinguishes the class of external resource an entity stands in for.
type Kind string

const (
	KindResource    Kind = "resource"
	KindAccessGrant Kind = "access-grant"
)

// Per-kind health caps. Access grants take more hits before eliminating.
const (
	resourceMaxHealth    = 3
	accessGrantMaxHealth = 5
)

// MaxHealth returns the health cap for the kind.
func (k Kind) MaxHealth() int {
	if k == KindAccessGrant {
		return accessGrantMaxHealth
	}
	return resourceMaxHealth
}

// Valid reports whether the kind is one of the known variants.
func (k Kind) Valid() bool {
	return k == KindResource || k == KindAccessGrant
}

// State tracks an entity's position in the remediation lifecycle.
type State uint8

const (
	StateActive State = iota
	StatePendingRemediation
	StateRemoved
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StatePendingRemediation:
		return "pending_remediation"
	case StateRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// AABB is an axis-aligned box described by its center and half extents.
type AABB struct {
	X     float64
	Y     float64
	HalfW float64
	HalfH float64
}

// Intersects reports whether two boxes overlap. Touching edges count as
// overlapping.
func (b AABB) Intersects(o AABB) bool {
	dx := b.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := b.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return dx <= b.HalfW+o.HalfW && dy <= b.HalfH+o.HalfH
}

// Entity is the arena-owned record for a single remediable resource.
type Entity struct {
	ID        string
	Kind      Kind
	Target    string
	X         float64
	Y         float64
	HalfW     float64
	HalfH     float64
	Health    int
	MaxHealth int
	State     State
	Protected bool
}

// Bounds returns the entity's current bounding box.
func (e *Entity) Bounds() AABB {
	if e == nil {
		return AABB{}
	}
	return AABB{X: e.X, Y: e.Y, HalfW: e.HalfW, HalfH: e.HalfH}
}

// Targetable reports whether a collision scan may apply damage.
func (e *Entity) Targetable() bool {
	return e != nil && e.State == StateActive && !e.Protected
}
