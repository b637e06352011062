package core

import (
	"context"
	"fmt"
	"sync"
)

// DialogState is the lifecycle state of a DeleteDialog.
type DialogState string

const (
	DialogHidden     DialogState = "hidden"
	DialogPending    DialogState = "pending"
	DialogConfirming DialogState = "confirming"
)

// DeleteFunc performs the delete a dialog was confirmed for.
type DeleteFunc func(ctx context.Context, pending PendingDelete) error

// DeleteDialog guards an irreversible delete behind an explicit
// confirmation: hidden -> pending -> confirming -> hidden.
type DeleteDialog struct {
	mu      sync.Mutex
	state   DialogState
	pending PendingDelete
}

// NewDeleteDialog returns a hidden dialog.
func NewDeleteDialog() *DeleteDialog {
	return &DeleteDialog{state: DialogHidden}
}

// State returns the current state.
func (d *DeleteDialog) State() DialogState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Pending returns the delete awaiting confirmation.
func (d *DeleteDialog) Pending() (PendingDelete, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.state == DialogPending
}

// Request shows the dialog for one record.
func (d *DeleteDialog) Request(p PendingDelete) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != DialogHidden {
		return fmt.Errorf("request delete while %s: %w", d.state, ErrInvalidTransition)
	}
	d.state = DialogPending
	d.pending = p
	return nil
}

// Cancel hides a pending dialog without deleting.
func (d *DeleteDialog) Cancel() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case DialogConfirming:
		return fmt.Errorf("cancel while confirming: %w", ErrInvalidTransition)
	case DialogPending:
		d.state = DialogHidden
		d.pending = PendingDelete{}
	}
	return nil
}

// Confirm invokes fn exactly once and hides the dialog whatever the outcome.
func (d *DeleteDialog) Confirm(ctx context.Context, fn DeleteFunc) error {
	d.mu.Lock()
	if d.state != DialogPending {
		state := d.state
		d.mu.Unlock()
		return fmt.Errorf("confirm while %s: %w", state, ErrInvalidTransition)
	}
	d.state = DialogConfirming
	pending := d.pending
	d.mu.Unlock()

	err := fn(ctx, pending)

	d.mu.Lock()
	d.state = DialogHidden
	d.pending = PendingDelete{}
	d.mu.Unlock()

	return err
}
