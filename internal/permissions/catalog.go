// Package permissions holds the role/permission matrix that decides which
// material columns each shop role may see, and the editor used to change it.
package permissions

// CategoryAll selects every permission regardless of category.
const CategoryAll = "all"

// Permission is one named access right.
type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Role is one shop role.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog is the set of known roles and permissions, in display order.
type Catalog struct {
	Permissions []Permission `json:"permissions"`
	Roles       []Role       `json:"roles"`
}

// DefaultCatalog returns the shop's roles and the material column permissions.
func DefaultCatalog() Catalog {
	return Catalog{
		Permissions: []Permission{
			{ID: "date", Name: "Date", Description: "Access to date information", Category: "basic"},
			{ID: "time", Name: "Time", Description: "Access to time information", Category: "basic"},
			{ID: "customer_name", Name: "Customer Name", Description: "Access to customer names", Category: "basic"},
			{ID: "material_description", Name: "Material Description", Description: "Material description access", Category: "material"},
			{ID: "grade", Name: "Grade", Description: "Material grade information", Category: "material"},
			{ID: "qty_nos", Name: "Qty (Nos)", Description: "Quantity in numbers", Category: "quantity"},
			{ID: "qty_kgs", Name: "Qty Kgs", Description: "Quantity in kilograms", Category: "quantity"},
			{ID: "cutting_length", Name: "Cutting Length Mtr", Description: "Cutting length in meters", Category: "operations"},
			{ID: "piercing", Name: "Piercing", Description: "Piercing operations", Category: "operations"},
			{ID: "cutting_rate", Name: "Cutting Rate", Description: "Cutting rate information", Category: "financial"},
			{ID: "total_cost", Name: "Total Cost", Description: "Total cost calculations", Category: "financial"},
			{ID: "inward_photo", Name: "Inward Photo", Description: "Inward photos access", Category: "media"},
			{ID: "outward_photo", Name: "Outward Photo", Description: "Outward photos access", Category: "media"},
			{ID: "file_attachments", Name: "File Attachments", Description: "File attachments access", Category: "documents"},
			{ID: "program_drgs", Name: "Program/Drgs", Description: "Program and drawings access", Category: "documents"},
			{ID: "accounting_invoice", Name: "Accounting Invoice", Description: "Accounting invoices", Category: "financial"},
			{ID: "payment_received", Name: "Payment Received", Description: "Payment status", Category: "financial"},
			{ID: "scrap_taken", Name: "Scrap Taken", Description: "Scrap information", Category: "operations"},
			{ID: "qty_scrap_approx", Name: "Qty of Scrap approx Kgs", Description: "Approximate scrap quantity", Category: "operations"},
		},
		Roles: []Role{
			{ID: "head1", Name: "Head 1", Description: "Primary Head Role"},
			{ID: "head2", Name: "Head 2", Description: "Secondary Head Role"},
			{ID: "agent", Name: "Agent", Description: "Agent Role"},
			{ID: "programmer1", Name: "Programmer 1", Description: "Primary Programmer"},
			{ID: "programmer2", Name: "Programmer 2", Description: "Secondary Programmer"},
			{ID: "accounts", Name: "Accounts", Description: "Accounts Department"},
			{ID: "shop_help1", Name: "Shop Help 1", Description: "Shop Assistant 1"},
			{ID: "shop_help2", Name: "Shop Help 2", Description: "Shop Assistant 2"},
			{ID: "shop_help3", Name: "Shop Help 3", Description: "Shop Assistant 3"},
			{ID: "shop_help4", Name: "Shop Help 4", Description: "Shop Assistant 4"},
		},
	}
}

// initialDenied lists what each role starts without; everything else is granted.
var initialDenied = map[string][]string{
	"head1":       {"scrap_taken"},
	"head2":       {"scrap_taken"},
	"agent":       {"scrap_taken"},
	"programmer1": {},
	"programmer2": {},
	"accounts":    {"cutting_rate", "total_cost", "outward_photo", "program_drgs", "payment_received", "scrap_taken"},
	"shop_help1":  {"payment_received", "scrap_taken"},
	"shop_help2":  {"cutting_rate", "total_cost", "inward_photo", "program_drgs", "payment_received", "scrap_taken"},
	"shop_help3":  {"cutting_rate", "total_cost", "inward_photo", "program_drgs", "payment_received", "scrap_taken"},
	"shop_help4":  {"cutting_rate", "total_cost", "inward_photo", "program_drgs", "payment_received", "scrap_taken"},
}

// InitialMatrix returns the hand-authored starting matrix for c.
func InitialMatrix(c Catalog) Matrix {
	m := make(Matrix, len(c.Roles))
	for _, r := range c.Roles {
		denied := make(map[string]bool)
		for _, id := range initialDenied[r.ID] {
			denied[id] = true
		}
		perms := make(map[string]bool, len(c.Permissions))
		for _, p := range c.Permissions {
			perms[p.ID] = !denied[p.ID]
		}
		m[r.ID] = perms
	}
	return m
}

// Role returns a role by id.
func (c Catalog) Role(id string) (Role, bool) {
	for _, r := range c.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return Role{}, false
}

// Permission returns a permission by id.
func (c Catalog) Permission(id string) (Permission, bool) {
	for _, p := range c.Permissions {
		if p.ID == id {
			return p, true
		}
	}
	return Permission{}, false
}

// Categories returns "all" followed by each category once, in catalog order.
func (c Catalog) Categories() []string {
	out := []string{CategoryAll}
	seen := make(map[string]bool)
	for _, p := range c.Permissions {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}

// InCategory returns the permissions of one category; "all" returns every
// permission.
func (c Catalog) InCategory(category string) []Permission {
	if category == CategoryAll || category == "" {
		return append([]Permission(nil), c.Permissions...)
	}
	var out []Permission
	for _, p := range c.Permissions {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
