package session

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/colehorsman/zombie-game-sub004/internal/arena"
)

// SpawnRecord is one entity supplied by the external inventory collaborator
// at session start. The core never fetches or generates this data itself.
type SpawnRecord struct {
	ID        string     `json:"id" jsonschema:"description=Stable identifier for the entity's lifetime"`
	Kind      arena.Kind `json:"kind" jsonschema:"description=resource or access-grant"`
	Target    string     `json:"target" jsonschema:"description=Remediation target identifier passed to the backend"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Protected bool       `json:"initiallyProtected,omitempty" jsonschema:"description=Protected entities never take damage or remediate"`
}

// Manifest is the on-disk entity supply document.
type Manifest struct {
	Entities []SpawnRecord `json:"entities"`
}

// LoadManifest reads and validates an entity supply document.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return Manifest{}, err
	}
	return manifest, nil
}

// Validate rejects records the arena cannot represent.
func (m Manifest) Validate() error {
	seen := make(map[string]struct{}, len(m.Entities))
	for i, record := range m.Entities {
		if record.ID == "" {
			return fmt.Errorf("manifest entity %d: missing id", i)
		}
		if _, dup := seen[record.ID]; dup {
			return fmt.Errorf("manifest entity %q: duplicate id", record.ID)
		}
		seen[record.ID] = struct{}{}
		if !record.Kind.Valid() {
			return fmt.Errorf("manifest entity %q: unknown kind %q", record.ID, record.Kind)
		}
	}
	return nil
}
