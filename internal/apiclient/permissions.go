package apiclient

import (
	"context"
	"net/http"
)

// PermissionState is the permission editor's draft.
type PermissionState struct {
	Categories []string                   `json:"categories"`
	Matrix     map[string]map[string]bool `json:"matrix"`
	Counts     map[string]int             `json:"counts"`
	Dirty      bool                       `json:"dirty"`
}

// Allowed reports whether the draft grants permission to role.
func (s *PermissionState) Allowed(role, permission string) bool {
	return s.Matrix[role][permission]
}

// Permissions returns the current draft.
func (c *Client) Permissions(ctx context.Context) (*PermissionState, error) {
	var st PermissionState
	if _, err := c.do(ctx, http.MethodGet, "/api/permissions", nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// TogglePermission flips one draft cell and returns its new value.
func (c *Client) TogglePermission(ctx context.Context, role, permission string) (bool, error) {
	body := map[string]string{"role": role, "permission": permission}
	var out struct {
		Enabled bool `json:"enabled"`
	}
	_, err := c.do(ctx, http.MethodPost, "/api/permissions/toggle", nil, body, &out)
	return out.Enabled, err
}

// SetCategory enables or disables every permission of a category for role.
// An empty category means all of them.
func (c *Client) SetCategory(ctx context.Context, role, category string, enabled bool) error {
	body := map[string]any{"role": role, "category": category, "enabled": enabled}
	_, err := c.do(ctx, http.MethodPost, "/api/permissions/bulk", nil, body, nil)
	return err
}

// ResetPermissions discards the draft.
func (c *Client) ResetPermissions(ctx context.Context) (*PermissionState, error) {
	return c.permissionCommand(ctx, "/api/permissions/reset")
}

// SavePermissions persists the draft.
func (c *Client) SavePermissions(ctx context.Context) (*PermissionState, error) {
	return c.permissionCommand(ctx, "/api/permissions/save")
}

func (c *Client) permissionCommand(ctx context.Context, path string) (*PermissionState, error) {
	var st PermissionState
	if _, err := c.do(ctx, http.MethodPost, path, nil, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
