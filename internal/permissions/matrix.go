package permissions

import (
	"fmt"
	"sort"

	"github.com/JonMunkholm/cutdesk/internal/core"
)

// Matrix maps role id to permission id to granted.
type Matrix map[string]map[string]bool

// Gap is a matrix cell the catalog expects but the matrix lacked.
type Gap struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
}

func (g Gap) String() string {
	return fmt.Sprintf("%s/%s", g.Role, g.Permission)
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := make(Matrix, len(m))
	for role, perms := range m {
		cp := make(map[string]bool, len(perms))
		for id, ok := range perms {
			cp[id] = ok
		}
		out[role] = cp
	}
	return out
}

// Normalize makes m complete for c: every missing cell is added as denied
// and reported. Cells for unknown roles or permissions are dropped.
func (m Matrix) Normalize(c Catalog) []Gap {
	var gaps []Gap
	for _, r := range c.Roles {
		perms, ok := m[r.ID]
		if !ok {
			perms = make(map[string]bool, len(c.Permissions))
			m[r.ID] = perms
		}
		for _, p := range c.Permissions {
			if _, ok := perms[p.ID]; !ok {
				perms[p.ID] = false
				gaps = append(gaps, Gap{Role: r.ID, Permission: p.ID})
			}
		}
		for id := range perms {
			if _, known := c.Permission(id); !known {
				delete(perms, id)
			}
		}
	}
	for role := range m {
		if _, known := c.Role(role); !known {
			delete(m, role)
		}
	}
	return gaps
}

// Allowed reports whether role has permission. Missing cells read as denied.
func (m Matrix) Allowed(role, permission string) bool {
	return m[role][permission]
}

// Counts returns how many of role's permissions are granted, and the total.
func (m Matrix) Counts(role string) (enabled, total int) {
	for _, ok := range m[role] {
		total++
		if ok {
			enabled++
		}
	}
	return enabled, total
}

// Diff returns the cells that differ from before, keyed "role.permission".
func (m Matrix) Diff(before Matrix) map[string]core.FieldChange {
	changes := make(map[string]core.FieldChange)
	for role, perms := range m {
		for id, now := range perms {
			was := before[role][id]
			if was != now {
				changes[role+"."+id] = core.FieldChange{Old: fmt.Sprint(was), New: fmt.Sprint(now)}
			}
		}
	}
	return changes
}

// Roles returns the role ids present in m, sorted.
func (m Matrix) Roles() []string {
	out := make([]string, 0, len(m))
	for role := range m {
		out = append(out, role)
	}
	sort.Strings(out)
	return out
}
