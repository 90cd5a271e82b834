// Package queue defines message payloads exchanged over the message broker
// and the background consumer that persists them.
package queue

// AuditQueueName is the durable queue carrying admin-action events.
const AuditQueueName = "admin.audit"

// AdminActionEvent is published whenever an administrator performs an
// audited action (access decisions, role/status changes, user creation).
// It carries enough information for downstream consumers to log or notify
// without querying the primary database.
type AdminActionEvent struct {
	AdminID    uint64 `json:"admin_id"`
	ActionType string `json:"action_type"`
	Details    string `json:"details"`
	TargetID   uint64 `json:"target_id,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
