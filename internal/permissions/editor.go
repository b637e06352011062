package permissions

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// Store persists the saved matrix. LoadMatrix reports false when nothing has
// been saved yet.
type Store interface {
	LoadMatrix(ctx context.Context) (Matrix, bool, error)
	SaveMatrix(ctx context.Context, m Matrix) error
}

// Recorder receives audit entries and change events for saves and resets.
// *core.Service satisfies it.
type Recorder interface {
	LogAudit(ctx context.Context, params core.AuditLogParams) (*core.AuditEntry, error)
	Publish(ctx context.Context, ev core.Event)
}

// RoleView is one role's row set for the matrix screen.
type RoleView struct {
	Role        Role            `json:"role"`
	Category    string          `json:"category"`
	Permissions []Permission    `json:"permissions"`
	Granted     map[string]bool `json:"granted"`
	Enabled     int             `json:"enabled"`
	Total       int             `json:"total"`
}

// State is the editor state sent to clients.
type State struct {
	Catalog    Catalog        `json:"catalog"`
	Categories []string       `json:"categories"`
	Matrix     Matrix         `json:"matrix"`
	Counts     map[string]int `json:"counts"`
	Dirty      bool           `json:"dirty"`
}

// Editor holds a draft matrix and the snapshot it was loaded or last saved
// as. Edits change the draft only; column visibility reads the snapshot.
type Editor struct {
	catalog  Catalog
	store    Store
	recorder Recorder

	saveMu sync.Mutex // one Save at a time, so snapshots land in order

	mu       sync.RWMutex
	draft    Matrix
	snapshot Matrix
	dirty    bool
}

// NewEditor loads the saved matrix, falling back to the initial one, and
// completes it against catalog. Gaps are logged as warnings.
func NewEditor(ctx context.Context, catalog Catalog, store Store, recorder Recorder) (*Editor, error) {
	m, found, err := store.LoadMatrix(ctx)
	if err != nil {
		return nil, fmt.Errorf("load permission matrix: %w", err)
	}
	if !found {
		m = InitialMatrix(catalog)
	}

	for _, gap := range m.Normalize(catalog) {
		slog.WarnContext(ctx, "permission matrix gap filled as denied",
			"role", gap.Role,
			"permission", gap.Permission,
		)
	}

	return &Editor{
		catalog:  catalog,
		store:    store,
		recorder: recorder,
		draft:    m.Clone(),
		snapshot: m,
	}, nil
}

// Catalog returns the roles and permissions the editor works on.
func (e *Editor) Catalog() Catalog {
	return e.catalog
}

func (e *Editor) check(role, permission string) error {
	if _, ok := e.catalog.Role(role); !ok {
		return fmt.Errorf("%w: %s", core.ErrUnknownRole, role)
	}
	if permission == "" {
		return nil
	}
	if _, ok := e.catalog.Permission(permission); !ok {
		return core.ValidationError{Field: "permission", Value: permission, Message: "unknown permission"}
	}
	return nil
}

// Toggle flips one cell of the draft and returns its new value.
func (e *Editor) Toggle(role, permission string) (bool, error) {
	if err := e.check(role, permission); err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	v := !e.draft[role][permission]
	e.draft[role][permission] = v
	e.dirty = true
	return v, nil
}

// Set writes one cell of the draft.
func (e *Editor) Set(role, permission string, enabled bool) error {
	if err := e.check(role, permission); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.draft[role][permission] = enabled
	e.dirty = true
	return nil
}

// SetCategory enables or disables every permission of category for one
// role. Other roles are not touched. Returns the number of cells written.
func (e *Editor) SetCategory(role, category string, enabled bool) (int, error) {
	if err := e.check(role, ""); err != nil {
		return 0, err
	}
	perms := e.catalog.InCategory(category)
	if len(perms) == 0 {
		return 0, core.ValidationError{Field: "category", Value: category, Message: "unknown category"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range perms {
		e.draft[role][p.ID] = enabled
	}
	e.dirty = true
	return len(perms), nil
}

// Reset discards the draft, returning to the last loaded or saved snapshot.
func (e *Editor) Reset(ctx context.Context) {
	e.mu.Lock()
	discarded := e.draft.Diff(e.snapshot)
	e.draft = e.snapshot.Clone()
	e.dirty = false
	e.mu.Unlock()

	if e.recorder != nil && len(discarded) > 0 {
		e.audit(ctx, core.AuditLogParams{
			Action:  core.ActionPermissionsReset,
			Changes: discarded,
			Reason:  "draft discarded",
		})
	}
}

// Save persists the draft. On success the saved matrix becomes the snapshot;
// the editor is clean again unless the draft was edited while the store was
// writing. On failure the draft and dirty flag are kept.
func (e *Editor) Save(ctx context.Context) error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	e.mu.Lock()
	draft := e.draft.Clone()
	changes := draft.Diff(e.snapshot)
	e.mu.Unlock()

	if err := e.store.SaveMatrix(ctx, draft); err != nil {
		return fmt.Errorf("save permission matrix: %w", err)
	}

	e.mu.Lock()
	e.snapshot = draft
	e.dirty = len(e.draft.Diff(draft)) > 0
	e.mu.Unlock()

	slog.InfoContext(ctx, "permission matrix saved", "changed_cells", len(changes))

	if e.recorder != nil {
		e.audit(ctx, core.AuditLogParams{
			Action:  core.ActionPermissionsSave,
			Changes: changes,
		})
		e.recorder.Publish(ctx, core.Event{
			Type:    core.EventPermissionsSaved,
			Payload: draft,
		})
	}
	return nil
}

func (e *Editor) audit(ctx context.Context, params core.AuditLogParams) {
	if _, err := e.recorder.LogAudit(ctx, params); err != nil {
		slog.WarnContext(ctx, "audit permission change failed",
			"action", params.Action,
			"error", err,
		)
	}
}

// Dirty reports whether the draft has unsaved edits.
func (e *Editor) Dirty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dirty
}

// Draft returns a copy of the matrix being edited.
func (e *Editor) Draft() Matrix {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.draft.Clone()
}

// Categories returns "all" plus the catalog's categories.
func (e *Editor) Categories() []string {
	return e.catalog.Categories()
}

// KnownRole reports whether role is in the catalog.
func (e *Editor) KnownRole(role string) bool {
	_, ok := e.catalog.Role(role)
	return ok
}

// Allowed reads the saved snapshot, not the draft.
func (e *Editor) Allowed(role, permission string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot.Allowed(role, permission)
}

// View returns one role's permissions in category, as drafted.
func (e *Editor) View(role, category string) (RoleView, error) {
	r, ok := e.catalog.Role(role)
	if !ok {
		return RoleView{}, fmt.Errorf("%w: %s", core.ErrUnknownRole, role)
	}
	if category == "" {
		category = CategoryAll
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	perms := e.catalog.InCategory(category)
	view := RoleView{
		Role:        r,
		Category:    category,
		Permissions: perms,
		Granted:     make(map[string]bool, len(perms)),
	}
	for _, p := range perms {
		view.Granted[p.ID] = e.draft.Allowed(role, p.ID)
	}
	view.Enabled, view.Total = e.draft.Counts(role)
	return view, nil
}

// State returns the full draft with per-role enabled counts.
func (e *Editor) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	counts := make(map[string]int, len(e.catalog.Roles))
	for _, r := range e.catalog.Roles {
		counts[r.ID], _ = e.draft.Counts(r.ID)
	}
	return State{
		Catalog:    e.catalog,
		Categories: e.catalog.Categories(),
		Matrix:     e.draft.Clone(),
		Counts:     counts,
		Dirty:      e.dirty,
	}
}
