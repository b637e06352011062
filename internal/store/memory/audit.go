package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// Audit is an in-memory core.AuditStore.
type Audit struct {
	mu      sync.RWMutex
	entries []core.AuditEntry
}

// NewAudit returns an empty audit log.
func NewAudit() *Audit {
	return &Audit{}
}

// InsertAudit appends an entry.
func (a *Audit) InsertAudit(_ context.Context, entry core.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

// ListAudit returns matching entries, newest first, and the total before
// paging.
func (a *Audit) ListAudit(_ context.Context, f core.AuditLogFilter) ([]core.AuditEntry, int64, error) {
	a.mu.RLock()
	var out []core.AuditEntry
	for _, e := range a.entries {
		if f.Entity != "" && e.Entity != f.Entity {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if !f.StartTime.IsZero() && e.CreatedAt.Before(f.StartTime) {
			continue
		}
		if !f.EndTime.IsZero() && e.CreatedAt.After(f.EndTime) {
			continue
		}
		out = append(out, e)
	}
	a.mu.RUnlock()

	slices.SortStableFunc(out, func(x, y core.AuditEntry) int {
		return y.CreatedAt.Compare(x.CreatedAt)
	})

	total := int64(len(out))
	limit := f.Limit
	if limit <= 0 {
		limit = core.DefaultAuditLimit
	}
	start := min(max(f.Offset, 0), len(out))
	end := min(start+limit, len(out))
	return out[start:end], total, nil
}

// PurgeAudit removes entries created before the cutoff.
func (a *Audit) PurgeAudit(_ context.Context, before time.Time) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	kept := a.entries[:0]
	var purged int64
	for _, e := range a.entries {
		if e.CreatedAt.Before(before) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	a.entries = kept
	return purged, nil
}
