package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// Audit is a core.AuditStore over the audit_log table.
type Audit struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewAudit returns an audit store using pool.
func NewAudit(pool *pgxpool.Pool) *Audit {
	return &Audit{pool: pool, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// InsertAudit writes one entry.
func (a *Audit) InsertAudit(ctx context.Context, e core.AuditEntry) error {
	var changes []byte
	if len(e.Changes) > 0 {
		var err error
		if changes, err = json.Marshal(e.Changes); err != nil {
			return fmt.Errorf("encode changes: %w", err)
		}
	}

	query, args, err := a.sb.Insert("audit_log").
		Columns("id", "action", "severity", "entity", "record_id", "reference",
			"role", "ip_address", "user_agent", "changes", "reason", "created_at").
		Values(ToPgUUID(e.ID), string(e.Action), string(e.Severity),
			ToPgText(e.Entity), ToPgText(e.RecordID), ToPgText(e.Reference),
			ToPgText(e.Role), ToPgText(e.IPAddress), ToPgText(e.UserAgent),
			changes, ToPgText(e.Reason), e.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := a.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func applyAuditFilter(stmt sq.SelectBuilder, f core.AuditLogFilter) sq.SelectBuilder {
	if f.Entity != "" {
		stmt = stmt.Where(sq.Eq{"entity": f.Entity})
	}
	if f.Action != "" {
		stmt = stmt.Where(sq.Eq{"action": string(f.Action)})
	}
	if !f.StartTime.IsZero() {
		stmt = stmt.Where(sq.GtOrEq{"created_at": f.StartTime})
	}
	if !f.EndTime.IsZero() {
		stmt = stmt.Where(sq.LtOrEq{"created_at": f.EndTime})
	}
	return stmt
}

// ListAudit returns matching entries, newest first, and the total before
// paging.
func (a *Audit) ListAudit(ctx context.Context, f core.AuditLogFilter) ([]core.AuditEntry, int64, error) {
	query, args, err := applyAuditFilter(a.sb.Select("count(*)").From("audit_log"), f).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int64
	if err := a.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = core.DefaultAuditLimit
	}
	stmt := a.sb.Select("id::text", "action", "severity", "entity", "record_id", "reference",
		"role", "ip_address", "user_agent", "changes", "reason", "created_at").
		From("audit_log").
		OrderBy("created_at DESC", "id").
		Limit(uint64(limit)).
		Offset(uint64(max(f.Offset, 0)))
	query, args, err = applyAuditFilter(stmt, f).ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]core.AuditEntry, 0, limit)
	for rows.Next() {
		var (
			e                                 core.AuditEntry
			action, severity                  string
			entity, recordID, reference, role pgtype.Text
			ipAddress, userAgent, reason      pgtype.Text
			changes                           []byte
		)
		if err := rows.Scan(&e.ID, &action, &severity, &entity, &recordID, &reference,
			&role, &ipAddress, &userAgent, &changes, &reason, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Action = core.AuditAction(action)
		e.Severity = core.AuditSeverity(severity)
		e.Entity = entity.String
		e.RecordID = recordID.String
		e.Reference = reference.String
		e.Role = role.String
		e.IPAddress = ipAddress.String
		e.UserAgent = userAgent.String
		e.Reason = reason.String
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &e.Changes); err != nil {
				return nil, 0, fmt.Errorf("decode changes: %w", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	return entries, total, nil
}

// PurgeAudit deletes entries created before the cutoff.
func (a *Audit) PurgeAudit(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := a.sb.Delete("audit_log").Where(sq.Lt{"created_at": before}).ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := a.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
