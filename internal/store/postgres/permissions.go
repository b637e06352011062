package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/cutdesk/internal/permissions"
)

// Permissions is a permissions.Store over the role_permissions table.
type Permissions struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

// NewPermissions returns a permission store using pool.
func NewPermissions(pool *pgxpool.Pool) *Permissions {
	return &Permissions{pool: pool, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// LoadMatrix reads the saved matrix. An empty table reports false.
func (p *Permissions) LoadMatrix(ctx context.Context) (permissions.Matrix, bool, error) {
	rows, err := p.pool.Query(ctx, `SELECT role, permission, enabled FROM role_permissions`)
	if err != nil {
		return nil, false, fmt.Errorf("load permissions: %w", err)
	}
	defer rows.Close()

	m := make(permissions.Matrix)
	for rows.Next() {
		var (
			role, perm string
			enabled    bool
		)
		if err := rows.Scan(&role, &perm, &enabled); err != nil {
			return nil, false, fmt.Errorf("scan permission: %w", err)
		}
		if m[role] == nil {
			m[role] = make(map[string]bool)
		}
		m[role][perm] = enabled
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("load permissions: %w", err)
	}
	return m, len(m) > 0, nil
}

// SaveMatrix replaces the saved matrix in one transaction.
func (p *Permissions) SaveMatrix(ctx context.Context, m permissions.Matrix) error {
	now := time.Now().UTC()
	stmt := p.sb.Insert("role_permissions").Columns("role", "permission", "enabled", "updated_at")
	cells := 0
	for _, role := range m.Roles() {
		perms := make([]string, 0, len(m[role]))
		for perm := range m[role] {
			perms = append(perms, perm)
		}
		sort.Strings(perms)
		for _, perm := range perms {
			stmt = stmt.Values(role, perm, m[role][perm], now)
			cells++
		}
	}

	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions`); err != nil {
			return fmt.Errorf("clear permissions: %w", err)
		}
		if cells == 0 {
			return nil
		}
		query, args, err := stmt.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("save permissions: %w", err)
		}
		return nil
	})
}
