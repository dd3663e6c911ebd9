// Package backup serializes the full dataset to JSON, optionally encrypted
// with a passphrase.
package backup

import (
	"encoding/json"
	"fmt"
	"time"

	"trackos/internal/model"
	"trackos/internal/store"
)

const (
	appTag        = "TrackOS"
	schemaVersion = 1
)

// Payload is the plain-text backup document.
type Payload struct {
	App           string              `json:"app"`
	SchemaVersion int                 `json:"schemaVersion"`
	ExportedAt    int64               `json:"exportedAt"`
	Settings      model.Settings      `json:"settings"`
	Metrics       []model.Metric      `json:"metrics"`
	Entries       []model.Entry       `json:"entries"`
	Exercises     []model.Exercise    `json:"exercises"`
	Workouts      []model.Workout     `json:"workouts"`
	Sets          []model.ExerciseSet `json:"sets"`
	Goals         []model.Goal        `json:"goals"`
}

// Encrypted is the wrapper document for passphrase-protected backups.
type Encrypted struct {
	App           string `json:"app"`
	SchemaVersion int    `json:"schemaVersion"`
	Encrypted     bool   `json:"encrypted"`
	Algo          string `json:"algo"`
	KDF           string `json:"kdf"`
	Hash          string `json:"hash"`
	Iterations    int    `json:"iterations"`
	SaltB64       string `json:"saltB64"`
	IVB64         string `json:"ivB64"`
	CiphertextB64 string `json:"ciphertextB64"`
}

// NewPayload assembles a backup payload from a snapshot.
func NewPayload(snap store.Snapshot, settings model.Settings, now time.Time) Payload {
	return Payload{
		App:           appTag,
		SchemaVersion: schemaVersion,
		ExportedAt:    now.UnixMilli(),
		Settings:      settings,
		Metrics:       snap.Metrics,
		Entries:       snap.Entries,
		Exercises:     snap.Exercises,
		Workouts:      snap.Workouts,
		Sets:          snap.Sets,
		Goals:         snap.Goals,
	}
}

// Snapshot converts the payload back into a store snapshot.
func (p Payload) Snapshot() store.Snapshot {
	return store.Snapshot{
		Metrics:   p.Metrics,
		Entries:   p.Entries,
		Exercises: p.Exercises,
		Workouts:  p.Workouts,
		Sets:      p.Sets,
		Goals:     p.Goals,
	}
}

// Marshal renders the payload, encrypting it when passphrase is non-empty.
func Marshal(p Payload, passphrase string) ([]byte, error) {
	plain, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup: %w", err)
	}
	if passphrase == "" {
		return plain, nil
	}
	enc, err := encrypt(plain, passphrase)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(enc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal encrypted backup: %w", err)
	}
	return out, nil
}

// Unmarshal parses a backup document, decrypting it when needed. The
// passphrase is ignored for plain backups.
func Unmarshal(data []byte, passphrase string) (Payload, error) {
	var probe struct {
		App       string `json:"app"`
		Encrypted bool   `json:"encrypted"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Payload{}, fmt.Errorf("failed to parse backup: %w", err)
	}
	if probe.App != appTag {
		return Payload{}, fmt.Errorf("not a %s backup", appTag)
	}

	if probe.Encrypted {
		var enc Encrypted
		if err := json.Unmarshal(data, &enc); err != nil {
			return Payload{}, fmt.Errorf("failed to parse encrypted backup: %w", err)
		}
		if passphrase == "" {
			return Payload{}, fmt.Errorf("backup is encrypted, passphrase required")
		}
		plain, err := decrypt(enc, passphrase)
		if err != nil {
			return Payload{}, err
		}
		data = plain
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("failed to parse backup payload: %w", err)
	}
	if p.App != appTag {
		return Payload{}, fmt.Errorf("not a %s backup", appTag)
	}
	if p.SchemaVersion > schemaVersion {
		return Payload{}, fmt.Errorf("backup schema version %d is newer than supported %d", p.SchemaVersion, schemaVersion)
	}
	return p, nil
}
