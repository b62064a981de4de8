package sim

// EntityView is the broadcast form of one visible entity.
type EntityView struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Health    int     `json:"health"`
	MaxHealth int     `json:"maxHealth"`
	State     string  `json:"state"`
	Protected bool    `json:"protected,omitempty"`
}

// PlayerView is the broadcast form of one player.
type PlayerView struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// ProjectileView is the broadcast form of one live projectile.
type ProjectileView struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Snapshot is the per-tick state handed to subscribers. Entities are culled
// to the visible region through the same spatial query the collision pass
// uses.
type Snapshot struct {
	Tick        uint64           `json:"tick"`
	Entities    []EntityView     `json:"entities"`
	Players     []PlayerView     `json:"players"`
	Projectiles []ProjectileView `json:"projectiles"`
}
