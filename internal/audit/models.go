package audit

import "time"

// Action tags what a staff member or system actor did. Tags are stable
// strings; dashboards and retention tooling key off them.
type Action string

const (
	ActionUserLogin       Action = "USER_LOGIN"
	ActionUserCreated     Action = "USER_CREATED"
	ActionUserUpdated     Action = "USER_UPDATED"
	ActionUserDeleted     Action = "USER_DELETED"
	ActionCheckIn         Action = "CHECK_IN"
	ActionCheckOut        Action = "CHECK_OUT"
	ActionForceCheckOut   Action = "FORCE_CHECK_OUT"
	ActionEditRecord      Action = "EDIT_RECORD"
	ActionDeleteRecord    Action = "DELETE_RECORD"
	ActionSettingsUpdated Action = "SETTINGS_UPDATED"
)

// Entry is an immutable audit row: who did what to which record and when.
// RecordID is empty for actions that do not relate to a visitor record.
type Entry struct {
	ID        int64     `json:"id"`
	RecordID  string    `json:"recordId,omitempty"`
	ActorID   string    `json:"actorId"`
	Action    Action    `json:"action"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
