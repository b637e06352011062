package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionRecordCreate     AuditAction = "record_create"
	ActionRecordUpdate     AuditAction = "record_update"
	ActionRecordDelete     AuditAction = "record_delete"
	ActionPermissionsSave  AuditAction = "permissions_save"
	ActionPermissionsReset AuditAction = "permissions_reset"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// FieldChange is the before and after text of one edited field.
type FieldChange struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID        string                 `json:"id"`
	Action    AuditAction            `json:"action"`
	Severity  AuditSeverity          `json:"severity"`
	Entity    string                 `json:"entity,omitempty"`
	RecordID  string                 `json:"recordId,omitempty"`
	Reference string                 `json:"reference,omitempty"`
	Role      string                 `json:"role,omitempty"`
	IPAddress string                 `json:"ipAddress,omitempty"`
	UserAgent string                 `json:"userAgent,omitempty"`
	Changes   map[string]FieldChange `json:"changes,omitempty"`
	Reason    string                 `json:"reason,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
// Role, IP address and user agent are taken from the context.
type AuditLogParams struct {
	Action    AuditAction
	Entity    string
	RecordID  string
	Reference string
	Changes   map[string]FieldChange
	Reason    string
}

// AuditLogFilter contains filtering options for querying audit logs.
type AuditLogFilter struct {
	Entity    string
	Action    AuditAction
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// DefaultAuditLimit is the page size of audit queries without a limit.
const DefaultAuditLimit = 50

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionRecordDelete:
		return SeverityHigh
	case ActionPermissionsSave:
		return SeverityCritical
	case ActionPermissionsReset:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// LogAudit records an audit entry. Without an audit store it is a no-op.
func (s *Service) LogAudit(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	if s.audit == nil {
		return nil, nil
	}

	entry := AuditEntry{
		ID:        uuid.NewString(),
		Action:    params.Action,
		Severity:  determineSeverity(params.Action),
		Entity:    params.Entity,
		RecordID:  params.RecordID,
		Reference: params.Reference,
		Role:      GetRoleFromContext(ctx),
		IPAddress: GetIPAddressFromContext(ctx),
		UserAgent: GetUserAgentFromContext(ctx),
		Changes:   params.Changes,
		Reason:    params.Reason,
		CreatedAt: s.now().UTC(),
	}

	if err := s.audit.InsertAudit(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert audit entry: %w", err)
	}
	return &entry, nil
}

// logAudit records an entry after a committed mutation. The mutation has
// already happened, so a failure is logged and not returned.
func (s *Service) logAudit(ctx context.Context, params AuditLogParams) {
	if _, err := s.LogAudit(ctx, params); err != nil {
		slog.ErrorContext(ctx, "audit log failed",
			"action", params.Action,
			"entity", params.Entity,
			"record_id", params.RecordID,
			"error", err,
		)
	}
}

// GetAuditLog retrieves audit log entries, newest first, with the total
// count matching the filter.
func (s *Service) GetAuditLog(ctx context.Context, filter AuditLogFilter) ([]AuditEntry, int64, error) {
	if s.audit == nil {
		return nil, 0, nil
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultAuditLimit
	}
	if filter.Entity != "" {
		if _, ok := s.registry.Get(filter.Entity); !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrUnknownEntity, filter.Entity)
		}
	}
	return s.audit.ListAudit(ctx, filter)
}

// diffValues lists the fields whose text form changed between before and after.
func diffValues(def *EntityDefinition, before, after Values) map[string]FieldChange {
	changes := make(map[string]FieldChange)
	for _, f := range def.Fields {
		old, cur := before.Text(f.Name), after.Text(f.Name)
		if old != cur {
			changes[f.Name] = FieldChange{Old: old, New: cur}
		}
	}
	return changes
}
