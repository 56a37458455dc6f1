package identity

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/maorga/beacon/internal/ports"
)

// Record is the on-disk form of the client identity. The file holds nothing
// but an anonymous token; deleting it resets the identity on next start.
type Record struct {
	ClientID  string `json:"client_id"`
	CreatedAt string `json:"created_at"`
	Version   string `json:"version"`
	Note      string `json:"note"`
}

const (
	recordVersion = "1.0.0"
	recordNote    = "This file contains an anonymous identifier for analytics. Delete to reset."
)

// LoadOrCreate returns the client identity persisted at path, generating and
// persisting a fresh one when the file is missing, unreadable, or malformed.
// Persistence is best-effort: a write failure is logged and the in-memory
// identity is still returned, so this never fails. It runs once before the
// worker starts and needs no locking.
func LoadOrCreate(path string, obs ports.Observability) string {
	raw, err := os.ReadFile(path)
	if err == nil {
		var rec Record
		if jsonErr := json.Unmarshal(raw, &rec); jsonErr == nil && rec.ClientID != "" {
			return rec.ClientID
		} else if jsonErr != nil {
			obs.LogWarn("identity_record_malformed", jsonErr, ports.Field{Key: "path", Value: path})
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		obs.LogWarn("identity_record_unreadable", err, ports.Field{Key: "path", Value: path})
	}

	id := uuid.NewString()
	rec := Record{
		ClientID:  id,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Version:   recordVersion,
		Note:      recordNote,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		obs.LogWarn("identity_persist_failed", err, ports.Field{Key: "path", Value: path})
	} else {
		obs.LogInfo("identity_created", ports.Field{Key: "path", Value: path})
	}
	return id
}
