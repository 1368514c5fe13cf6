package models

import (
	"time"

	"gorm.io/datatypes"
)

// LogType is the severity of an activity log entry.
type LogType string

const (
	LogInfo    LogType = "INFO"
	LogSuccess LogType = "SUCCESS"
	LogWarning LogType = "WARNING"
	LogError   LogType = "ERROR"
)

// ActorKind tags who a log entry is attributed to.
type ActorKind string

const (
	ActorDoctor  ActorKind = "Doctor"
	ActorPatient ActorKind = "Patient"
	ActorAdmin   ActorKind = "Admin"
)

// SystemActorName is the display name of entries with no authenticated actor.
const SystemActorName = "System"

// KindForRole maps an account role to the log actor kind.
func KindForRole(role Role) (ActorKind, bool) {
	switch role {
	case RoleDoctor:
		return ActorDoctor, true
	case RolePatient:
		return ActorPatient, true
	case RoleAdmin:
		return ActorAdmin, true
	}
	return "", false
}

// LogEntry is one append-only line of the activity log.
type LogEntry struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	Message        string            `gorm:"type:text;not null" json:"message"`
	Type           LogType           `gorm:"size:10;default:'INFO'" json:"type"`
	Metadata       datatypes.JSONMap `json:"metadata"`
	CreatedBy      *string           `gorm:"size:36" json:"created_by"`
	CreatedByModel *ActorKind        `gorm:"size:10" json:"created_by_model"`
	CreatedByName  string            `gorm:"size:150;not null;default:'System'" json:"created_by_name"`
	CreatedAt      time.Time         `gorm:"index" json:"created_at"`
}

// Attribute sets the actor reference. An empty id or kind clears both, so the
// pair is always either fully present or fully absent.
func (e *LogEntry) Attribute(id string, kind ActorKind, name string) {
	if id == "" || kind == "" {
		e.CreatedBy = nil
		e.CreatedByModel = nil
	} else {
		e.CreatedBy = &id
		e.CreatedByModel = &kind
	}
	e.CreatedByName = name
	if e.CreatedByName == "" {
		e.CreatedByName = SystemActorName
	}
}
