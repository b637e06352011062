package memory

import (
	"context"
	"sync"

	"github.com/JonMunkholm/cutdesk/internal/permissions"
)

// Permissions is an in-memory permissions.Store.
type Permissions struct {
	mu    sync.Mutex
	saved permissions.Matrix
}

// NewPermissions returns a store with nothing saved.
func NewPermissions() *Permissions {
	return &Permissions{}
}

// LoadMatrix returns the last saved matrix.
func (p *Permissions) LoadMatrix(context.Context) (permissions.Matrix, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.saved == nil {
		return nil, false, nil
	}
	return p.saved.Clone(), true, nil
}

// SaveMatrix replaces the saved matrix.
func (p *Permissions) SaveMatrix(_ context.Context, m permissions.Matrix) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saved = m.Clone()
	return nil
}
