// Package memory implements every store interface in process. It serves the
// static-data mode, where each entity starts from its seed rows and changes
// last until restart, and it backs the service tests.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

type table struct {
	serial int64
	rows   map[string]core.Record
}

// Records is an in-memory core.Repository.
type Records struct {
	mu     sync.RWMutex
	tables map[string]*table
	now    func() time.Time
}

// NewRecords returns an empty repository.
func NewRecords() *Records {
	return &Records{tables: make(map[string]*table), now: time.Now}
}

// Seed inserts the seed rows of every entity in reg. Rows are normalised
// and derived the same way a submitted form is.
func (r *Records) Seed(ctx context.Context, reg *core.Registry) error {
	for _, def := range reg.All() {
		for i, raw := range def.Seed {
			values, err := def.Prepare(raw)
			if err != nil {
				return fmt.Errorf("seed %s row %d: %w", def.Info.Key, i+1, err)
			}
			if _, err := r.Insert(ctx, def, values); err != nil {
				return fmt.Errorf("seed %s row %d: %w", def.Info.Key, i+1, err)
			}
		}
		slog.DebugContext(ctx, "seeded entity", "entity", def.Info.Key, "rows", len(def.Seed))
	}
	return nil
}

func (r *Records) table(key string) *table {
	t, ok := r.tables[key]
	if !ok {
		t = &table{rows: make(map[string]core.Record)}
		r.tables[key] = t
	}
	return t
}

func (r *Records) matching(def *core.EntityDefinition, filters []core.ColumnFilter) []core.Record {
	t, ok := r.tables[def.Info.Key]
	if !ok {
		return nil
	}
	out := make([]core.Record, 0, len(t.rows))
	for _, rec := range t.rows {
		if core.MatchesAll(rec, filters) {
			out = append(out, rec)
		}
	}
	return out
}

// Count returns the number of records matching filters.
func (r *Records) Count(ctx context.Context, def *core.EntityDefinition, filters []core.ColumnFilter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(def, filters))), nil
}

// List filters, sorts and pages the records of def.
func (r *Records) List(ctx context.Context, def *core.EntityDefinition, q core.Query) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	rows := r.matching(def, q.Filters)
	r.mu.RUnlock()

	slices.SortFunc(rows, func(a, b core.Record) int {
		return core.CompareRecords(a, b, q.Sort)
	})

	start := min(q.Offset(), len(rows))
	end := len(rows)
	if q.PageSize > 0 {
		end = min(start+q.PageSize, len(rows))
	}

	out := make([]core.Record, 0, end-start)
	for _, rec := range rows[start:end] {
		out = append(out, clone(rec))
	}
	return out, nil
}

// Get returns one record by id.
func (r *Records) Get(ctx context.Context, def *core.EntityDefinition, id string) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if t, ok := r.tables[def.Info.Key]; ok {
		if rec, ok := t.rows[id]; ok {
			return clone(rec), nil
		}
	}
	return core.Record{}, fmt.Errorf("%s %s: %w", def.Info.Key, id, core.ErrNotFound)
}

// Insert stores values under a new id and the next serial.
func (r *Records) Insert(ctx context.Context, def *core.EntityDefinition, values core.Values) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.table(def.Info.Key)
	t.serial++
	now := r.now().UTC()
	rec := core.Record{
		ID:        uuid.NewString(),
		Serial:    t.serial,
		Values:    values.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.rows[rec.ID] = rec
	return clone(rec), nil
}

// Update replaces the values of an existing record. Id, serial and creation
// time are kept.
func (r *Records) Update(ctx context.Context, def *core.EntityDefinition, id string, values core.Values) (core.Record, error) {
	if err := ctx.Err(); err != nil {
		return core.Record{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[def.Info.Key]
	if !ok {
		return core.Record{}, fmt.Errorf("%s %s: %w", def.Info.Key, id, core.ErrNotFound)
	}
	rec, ok := t.rows[id]
	if !ok {
		return core.Record{}, fmt.Errorf("%s %s: %w", def.Info.Key, id, core.ErrNotFound)
	}
	rec.Values = values.Clone()
	rec.UpdatedAt = r.now().UTC()
	t.rows[id] = rec
	return clone(rec), nil
}

// Delete removes exactly the record with id.
func (r *Records) Delete(ctx context.Context, def *core.EntityDefinition, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[def.Info.Key]
	if !ok {
		return fmt.Errorf("%s %s: %w", def.Info.Key, id, core.ErrNotFound)
	}
	if _, ok := t.rows[id]; !ok {
		return fmt.Errorf("%s %s: %w", def.Info.Key, id, core.ErrNotFound)
	}
	delete(t.rows, id)
	return nil
}

func clone(rec core.Record) core.Record {
	rec.Values = rec.Values.Clone()
	return rec
}
