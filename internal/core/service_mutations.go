package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// FormRequest drives a preview of a form sheet: the sheet is opened for
// create (empty RecordID) or edit, the changes are applied in order and the
// resulting view is returned without saving.
type FormRequest struct {
	RecordID string         `json:"recordId,omitempty"`
	Changes  map[string]any `json:"values"`
	Validate bool           `json:"validate,omitempty"`
}

// Create opens a create sheet, applies values and submits it. A record is
// inserted only when every visible field validates.
func (s *Service) Create(ctx context.Context, key string, values map[string]any) (*RecordView, error) {
	def, err := s.entity(key)
	if err != nil {
		return nil, err
	}

	sheet := NewFormSheet(def, s.now)
	if err := sheet.OpenCreate(); err != nil {
		return nil, err
	}
	if err := applyChanges(sheet, values); err != nil {
		return nil, err
	}

	rec, err := sheet.Submit(ctx, func(ctx context.Context, payload Values) (Record, error) {
		var rec Record
		err := s.limiter.Do(ctx, func(ctx context.Context) error {
			var err error
			rec, err = s.records.Insert(ctx, def, payload)
			return err
		})
		return rec, err
	})
	if err != nil {
		return nil, wrapSubmitError("create "+key, err)
	}

	slog.InfoContext(ctx, "record created", "entity", key, "id", rec.ID, "serial", rec.Serial)
	s.logAudit(ctx, AuditLogParams{
		Action:    ActionRecordCreate,
		Entity:    key,
		RecordID:  rec.ID,
		Reference: def.Reference(rec.Serial),
		Changes:   diffValues(def, nil, rec.Values),
	})
	view := s.view(def, rec)
	s.Publish(ctx, Event{Type: EventRecordCreated, Entity: key, RecordID: rec.ID, Payload: view})
	return view, nil
}

// Update opens an edit sheet prefilled from the stored record, applies
// values and submits it. Fields absent from values keep their stored value;
// the record id never changes.
func (s *Service) Update(ctx context.Context, key, id string, values map[string]any) (*RecordView, error) {
	def, err := s.entity(key)
	if err != nil {
		return nil, err
	}
	current, err := s.records.Get(ctx, def, id)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", key, id, err)
	}

	sheet := NewFormSheet(def, s.now)
	if err := sheet.OpenEdit(current); err != nil {
		return nil, err
	}
	if err := applyChanges(sheet, values); err != nil {
		return nil, err
	}

	rec, err := sheet.Submit(ctx, func(ctx context.Context, payload Values) (Record, error) {
		var rec Record
		err := s.limiter.Do(ctx, func(ctx context.Context) error {
			var err error
			rec, err = s.records.Update(ctx, def, id, payload)
			return err
		})
		return rec, err
	})
	if err != nil {
		return nil, wrapSubmitError("update "+key+"/"+id, err)
	}

	slog.InfoContext(ctx, "record updated", "entity", key, "id", rec.ID)
	s.logAudit(ctx, AuditLogParams{
		Action:    ActionRecordUpdate,
		Entity:    key,
		RecordID:  rec.ID,
		Reference: def.Reference(rec.Serial),
		Changes:   diffValues(def, current.Values, rec.Values),
	})
	view := s.view(def, rec)
	s.Publish(ctx, Event{Type: EventRecordUpdated, Entity: key, RecordID: rec.ID, Payload: view})
	return view, nil
}

// applyChanges sets values on an open sheet. When some values are rejected
// the remaining field checks are merged in so every inline error is
// reported at once.
func applyChanges(sheet *FormSheet, values map[string]any) error {
	err := sheet.SetAll(values)
	if err == nil {
		return nil
	}

	var setErrs ValidationErrors
	if !errors.As(err, &setErrs) {
		return err
	}
	seen := setErrs.Fields()
	for _, ve := range sheet.Check() {
		if _, dup := seen[ve.Field]; !dup {
			setErrs = append(setErrs, ve)
		}
	}
	return setErrs
}

func wrapSubmitError(op string, err error) error {
	var ves ValidationErrors
	if errors.As(err, &ves) {
		return ves
	}
	return fmt.Errorf("%s: %w", op, err)
}

// PreviewForm returns the form view after applying req.Changes, with
// derived fields recomputed. Inline errors are reported for the changed
// fields, and for every visible field when req.Validate is set.
func (s *Service) PreviewForm(ctx context.Context, key string, req FormRequest) (FormView, error) {
	def, err := s.entity(key)
	if err != nil {
		return FormView{}, err
	}

	sheet := NewFormSheet(def, s.now)
	if req.RecordID == "" {
		err = sheet.OpenCreate()
	} else {
		var rec Record
		rec, err = s.records.Get(ctx, def, req.RecordID)
		if err != nil {
			return FormView{}, fmt.Errorf("get %s/%s: %w", key, req.RecordID, err)
		}
		err = sheet.OpenEdit(rec)
	}
	if err != nil {
		return FormView{}, err
	}

	var rejected ValidationErrors
	if err := sheet.SetAll(req.Changes); err != nil {
		if !errors.As(err, &rejected) {
			return FormView{}, err
		}
	}
	if req.Validate {
		sheet.Check()
	}

	// Rejected values never reach the sheet, so Check cannot see them.
	view := sheet.View()
	for _, ve := range rejected {
		view.Errors[ve.Field] = ve.Message
	}
	return view, nil
}

// RequestDelete opens the confirmation step of a delete and returns the
// token that confirms it.
func (s *Service) RequestDelete(ctx context.Context, key, id string) (PendingDelete, error) {
	def, err := s.entity(key)
	if err != nil {
		return PendingDelete{}, err
	}
	rec, err := s.records.Get(ctx, def, id)
	if err != nil {
		return PendingDelete{}, fmt.Errorf("get %s/%s: %w", key, id, err)
	}

	pending := PendingDelete{
		Entity:      key,
		RecordID:    rec.ID,
		Description: def.Describe(rec),
		Token:       uuid.NewString(),
		ExpiresAt:   s.now().Add(s.confirmTTL).UTC(),
	}
	if err := s.confirmations.Put(ctx, pending, s.confirmTTL); err != nil {
		return PendingDelete{}, fmt.Errorf("store delete confirmation: %w", err)
	}
	return pending, nil
}

// ConfirmDelete consumes token and deletes the record it was issued for.
// The token is spent whatever the outcome; a failed delete must be
// requested again.
func (s *Service) ConfirmDelete(ctx context.Context, key, id, token string) error {
	def, err := s.entity(key)
	if err != nil {
		return err
	}

	pending, err := s.confirmations.Take(ctx, token)
	if err != nil {
		return err
	}
	if pending.Entity != key || pending.RecordID != id {
		return fmt.Errorf("token issued for %s/%s: %w", pending.Entity, pending.RecordID, ErrTokenInvalid)
	}

	dialog := NewDeleteDialog()
	if err := dialog.Request(pending); err != nil {
		return err
	}

	var deleted Record
	err = dialog.Confirm(ctx, func(ctx context.Context, p PendingDelete) error {
		return s.limiter.Do(ctx, func(ctx context.Context) error {
			rec, err := s.records.Get(ctx, def, p.RecordID)
			if err != nil {
				return err
			}
			if err := s.records.Delete(ctx, def, p.RecordID); err != nil {
				return err
			}
			deleted = rec
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", key, id, err)
	}

	slog.InfoContext(ctx, "record deleted", "entity", key, "id", id)
	s.logAudit(ctx, AuditLogParams{
		Action:    ActionRecordDelete,
		Entity:    key,
		RecordID:  id,
		Reference: def.Reference(deleted.Serial),
		Changes:   diffValues(def, deleted.Values, nil),
		Reason:    pending.Description,
	})
	s.Publish(ctx, Event{Type: EventRecordDeleted, Entity: key, RecordID: id})
	return nil
}
