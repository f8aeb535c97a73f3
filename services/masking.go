package services

import (
	"vetclinic-backend/models"

	"gorm.io/datatypes"
)

const maskToken = "****"

// Masked returns a copy of the entry that is safe to hand to clients: the
// secret columns of its collection are replaced in the snapshot. The stored
// entry keeps the real values, which restore depends on.
func Masked(entry models.AuditLog) models.AuditLog {
	coll, ok := models.LookupCollection(entry.CollectionName)
	if !ok || len(coll.SecretFields) == 0 || len(entry.DocumentSnapshot) == 0 {
		return entry
	}

	snapshot := make(datatypes.JSONMap, len(entry.DocumentSnapshot))
	for k, v := range entry.DocumentSnapshot {
		snapshot[k] = v
	}
	for _, field := range coll.SecretFields {
		if v, ok := snapshot[field]; ok && v != nil {
			snapshot[field] = maskToken
		}
	}
	entry.DocumentSnapshot = snapshot
	return entry
}

// MaskedEntries applies Masked to every entry.
func MaskedEntries(entries []models.AuditLog) []models.AuditLog {
	out := make([]models.AuditLog, len(entries))
	for i, e := range entries {
		out[i] = Masked(e)
	}
	return out
}
