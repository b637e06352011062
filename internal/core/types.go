package core

import (
	"context"
	"time"
)

// Record is one stored entity row.
type Record struct {
	ID        string    // server generated UUID
	Serial    int64     // per-entity sequence, source of display references
	Values    Values
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository is the storage contract shared by every data source.
// Implementations must apply q.Filters and q.Sort before slicing the page.
type Repository interface {
	Count(ctx context.Context, def *EntityDefinition, filters []ColumnFilter) (int64, error)
	List(ctx context.Context, def *EntityDefinition, q Query) ([]Record, error)
	Get(ctx context.Context, def *EntityDefinition, id string) (Record, error)
	Insert(ctx context.Context, def *EntityDefinition, values Values) (Record, error)
	Update(ctx context.Context, def *EntityDefinition, id string, values Values) (Record, error)
	Delete(ctx context.Context, def *EntityDefinition, id string) error
}

// AuditStore persists audit entries.
type AuditStore interface {
	InsertAudit(ctx context.Context, entry AuditEntry) error
	ListAudit(ctx context.Context, filter AuditLogFilter) ([]AuditEntry, int64, error)
	PurgeAudit(ctx context.Context, before time.Time) (int64, error)
}

// EventType names a change notification.
type EventType string

const (
	EventRecordCreated    EventType = "record.created"
	EventRecordUpdated    EventType = "record.updated"
	EventRecordDeleted    EventType = "record.deleted"
	EventPermissionsSaved EventType = "permissions.saved"
)

// Event is a change notification published after a successful mutation.
type Event struct {
	Type     EventType `json:"type"`
	Entity   string    `json:"entity,omitempty"`
	RecordID string    `json:"recordId,omitempty"`
	At       time.Time `json:"at"`
	Payload  any       `json:"payload,omitempty"`
}

// Publisher delivers change events. Publishing is fire-and-forget for the
// caller: a failed publish is logged, never returned to the user.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// PendingDelete is a delete awaiting confirmation.
type PendingDelete struct {
	Entity      string    `json:"entity"`
	RecordID    string    `json:"recordId"`
	Description string    `json:"description"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ConfirmationStore keeps pending deletes until confirmed or expired.
// Take returns ErrTokenInvalid for unknown, expired or consumed tokens and
// removes the token, so each token confirms at most once.
type ConfirmationStore interface {
	Put(ctx context.Context, pending PendingDelete, ttl time.Duration) error
	Take(ctx context.Context, token string) (PendingDelete, error)
}

// PermissionChecker answers column visibility questions from the saved
// permission matrix.
type PermissionChecker interface {
	KnownRole(role string) bool
	Allowed(role, permission string) bool
}
