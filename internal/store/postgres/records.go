package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// Records is a core.Repository with one table per entity.
type Records struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
	now  func() time.Time
}

// NewRecords returns a repository using pool.
func NewRecords(pool *pgxpool.Pool) *Records {
	return &Records{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  time.Now,
	}
}

func quoteIdentifier(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

var systemColumns = map[string]string{
	core.ColumnID:        "id",
	core.ColumnSerial:    "serial",
	core.ColumnCreatedAt: "created_at",
	core.ColumnUpdatedAt: "updated_at",
}

// selectExpr is the expression a field is read through. Numbers and dates
// are read as text so they scan into their normalised forms.
func selectExpr(f core.FieldSpec) string {
	col := quoteIdentifier(f.Column())
	switch f.Kind {
	case core.KindNumber, core.KindDate:
		return col + "::text"
	}
	return col
}

// textExpr is the text form filters compare against.
func textExpr(def *core.EntityDefinition, field string) (string, error) {
	if col, ok := systemColumns[field]; ok {
		return col + "::text", nil
	}
	f, ok := def.Field(field)
	if !ok {
		return "", fmt.Errorf("%s: unknown field %q", def.Info.Key, field)
	}
	col := quoteIdentifier(f.Column())
	switch {
	case f.IsList():
		return "array_to_string(" + col + ", ', ')", nil
	case f.Kind == core.KindNumber && f.Scale > 0:
		return fmt.Sprintf("round(%s, %d)::text", col, f.Scale), nil
	case f.IsBool(), f.Kind == core.KindNumber, f.Kind == core.KindDate:
		return col + "::text", nil
	}
	return col, nil
}

// sortExpr orders text case-insensitively and everything else natively.
func sortExpr(def *core.EntityDefinition, field string) (string, error) {
	if col, ok := systemColumns[field]; ok {
		return col, nil
	}
	f, ok := def.Field(field)
	if !ok {
		return "", fmt.Errorf("%s: unknown sort field %q", def.Info.Key, field)
	}
	col := quoteIdentifier(f.Column())
	if f.IsBool() || f.IsList() || f.Kind == core.KindNumber || f.Kind == core.KindDate {
		return col, nil
	}
	return "lower(" + col + ")", nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func applyFilters(stmt sq.SelectBuilder, def *core.EntityDefinition, filters []core.ColumnFilter) (sq.SelectBuilder, error) {
	for _, f := range filters {
		expr, err := textExpr(def, f.Field)
		if err != nil {
			return stmt, err
		}
		if f.Kind == core.FilterDropdown {
			stmt = stmt.Where("lower("+expr+") = lower(?)", f.Value)
			continue
		}
		stmt = stmt.Where(expr+" ILIKE ?", "%"+likeEscaper.Replace(f.Value)+"%")
	}
	return stmt, nil
}

// Count returns the number of records matching filters.
func (r *Records) Count(ctx context.Context, def *core.EntityDefinition, filters []core.ColumnFilter) (int64, error) {
	stmt, err := applyFilters(r.sb.Select("count(*)").From(quoteIdentifier(def.Info.Table)), def, filters)
	if err != nil {
		return 0, err
	}
	query, args, err := stmt.ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", def.Info.Key, err)
	}
	return n, nil
}

func (r *Records) selectRecords(def *core.EntityDefinition) sq.SelectBuilder {
	cols := []string{"id::text", "serial", "created_at", "updated_at"}
	for _, f := range def.Fields {
		cols = append(cols, selectExpr(f))
	}
	return r.sb.Select(cols...).From(quoteIdentifier(def.Info.Table))
}

// List filters, sorts and pages in SQL. Empty values sort first when
// ascending and last when descending; ties are broken by id.
func (r *Records) List(ctx context.Context, def *core.EntityDefinition, q core.Query) ([]core.Record, error) {
	stmt, err := applyFilters(r.selectRecords(def), def, q.Filters)
	if err != nil {
		return nil, err
	}

	if q.Sort.Column != "" {
		expr, err := sortExpr(def, q.Sort.Column)
		if err != nil {
			return nil, err
		}
		if q.Sort.Order == core.SortDesc {
			stmt = stmt.OrderBy(expr + " DESC NULLS LAST")
		} else {
			stmt = stmt.OrderBy(expr + " ASC NULLS FIRST")
		}
	}
	stmt = stmt.OrderBy("id ASC")

	if q.PageSize > 0 {
		stmt = stmt.Limit(uint64(q.PageSize)).Offset(uint64(q.Offset()))
	}

	query, args, err := stmt.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", def.Info.Key, err)
	}
	defer rows.Close()

	out := make([]core.Record, 0, max(q.PageSize, 0))
	for rows.Next() {
		rec, err := scanRecord(def, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", def.Info.Key, err)
	}
	return out, nil
}

func scanRecord(def *core.EntityDefinition, row pgx.Row) (core.Record, error) {
	var rec core.Record
	targets := make([]any, len(def.Fields))
	dest := []any{&rec.ID, &rec.Serial, &rec.CreatedAt, &rec.UpdatedAt}
	for i, f := range def.Fields {
		targets[i] = scanTarget(f)
		dest = append(dest, targets[i])
	}
	if err := row.Scan(dest...); err != nil {
		return core.Record{}, err
	}

	rec.Values = make(core.Values, len(def.Fields))
	for i, f := range def.Fields {
		val, err := fromScanned(f, targets[i])
		if err != nil {
			return core.Record{}, fmt.Errorf("scan %s: %w", def.Info.Key, err)
		}
		if val != nil {
			rec.Values[f.Name] = val
		}
	}
	return rec, nil
}

func notFound(def *core.EntityDefinition, id string) error {
	return fmt.Errorf("%s %s: %w", def.Info.Key, id, core.ErrNotFound)
}

// Get returns one record by id.
func (r *Records) Get(ctx context.Context, def *core.EntityDefinition, id string) (core.Record, error) {
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return core.Record{}, notFound(def, id)
	}
	query, args, err := r.selectRecords(def).Where(sq.Eq{"id": pgID}).ToSql()
	if err != nil {
		return core.Record{}, err
	}

	rec, err := scanRecord(def, r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Record{}, notFound(def, id)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get %s: %w", def.Info.Key, err)
	}
	return rec, nil
}

// fieldParams returns the columns and parameters for every field. Fields
// absent from values are written as NULL.
func fieldParams(def *core.EntityDefinition, values core.Values) ([]string, []any, error) {
	cols := make([]string, 0, len(def.Fields))
	params := make([]any, 0, len(def.Fields))
	for _, f := range def.Fields {
		p, err := toParam(f, values[f.Name])
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", def.Info.Key, err)
		}
		cols = append(cols, quoteIdentifier(f.Column()))
		params = append(params, p)
	}
	return cols, params, nil
}

// Insert stores values under a new id. The serial comes from the table's
// sequence, so numbers are never reused.
func (r *Records) Insert(ctx context.Context, def *core.EntityDefinition, values core.Values) (core.Record, error) {
	cols, params, err := fieldParams(def, values)
	if err != nil {
		return core.Record{}, err
	}

	now := r.now().UTC()
	rec := core.Record{
		ID:        uuid.NewString(),
		Values:    values.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	query, args, err := r.sb.Insert(quoteIdentifier(def.Info.Table)).
		Columns(append([]string{"id", "created_at", "updated_at"}, cols...)...).
		Values(append([]any{ToPgUUID(rec.ID), now, now}, params...)...).
		Suffix("RETURNING serial").
		ToSql()
	if err != nil {
		return core.Record{}, err
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&rec.Serial); err != nil {
		return core.Record{}, fmt.Errorf("insert %s: %w", def.Info.Key, err)
	}
	return rec, nil
}

// Update replaces every field of an existing record. Id, serial and
// creation time are kept.
func (r *Records) Update(ctx context.Context, def *core.EntityDefinition, id string, values core.Values) (core.Record, error) {
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return core.Record{}, notFound(def, id)
	}
	cols, params, err := fieldParams(def, values)
	if err != nil {
		return core.Record{}, err
	}

	now := r.now().UTC()
	stmt := r.sb.Update(quoteIdentifier(def.Info.Table)).Set("updated_at", now)
	for i, col := range cols {
		stmt = stmt.Set(col, params[i])
	}
	query, args, err := stmt.
		Where(sq.Eq{"id": pgID}).
		Suffix("RETURNING serial, created_at").
		ToSql()
	if err != nil {
		return core.Record{}, err
	}

	rec := core.Record{ID: id, Values: values.Clone(), UpdatedAt: now}
	err = r.pool.QueryRow(ctx, query, args...).Scan(&rec.Serial, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Record{}, notFound(def, id)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("update %s: %w", def.Info.Key, err)
	}
	return rec, nil
}

// Delete removes exactly the record with id.
func (r *Records) Delete(ctx context.Context, def *core.EntityDefinition, id string) error {
	pgID := ToPgUUID(id)
	if !pgID.Valid {
		return notFound(def, id)
	}
	query, args, err := r.sb.Delete(quoteIdentifier(def.Info.Table)).Where(sq.Eq{"id": pgID}).ToSql()
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", def.Info.Key, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(def, id)
	}
	return nil
}
