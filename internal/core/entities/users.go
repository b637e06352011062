package entities

import "github.com/JonMunkholm/cutdesk/internal/core"

// UnknownRole is shown for a role id missing from RoleOptions.
const UnknownRole = "Unknown"

// RoleOptions are the user roles. The id is stored, the label displayed.
var RoleOptions = []core.Option{
	{Label: "Admin", Value: "1"},
	{Label: "Manager", Value: "2"},
	{Label: "User", Value: "3"},
}

func init() {
	registerUsers()
}

func registerUsers() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:        "users",
			Group:      "Admin",
			Label:      "User",
			TitleField: "name",
		},
		Fields: []core.FieldSpec{
			{Name: "name", Label: "Name", Kind: core.KindText, Placeholder: "Enter full name", Rules: core.Rules{Required: true}},
			{Name: "email", Label: "Email", Kind: core.KindEmail, Placeholder: "Enter email address", Rules: core.Rules{Required: true, Format: "email"}},
			{Name: "phone", Label: "Phone", Kind: core.KindText, Placeholder: "Enter phone number"},
			{Name: "roleId", Label: "Role", Kind: core.KindSelect, Options: RoleOptions, Rules: core.Rules{Required: true}},
			{Name: "roleName", Label: "Role Name", Kind: core.KindText, Disabled: true},
			{Name: "isActive", Label: "Status", Kind: core.KindDropdown, Boolean: true, Options: statusOptions, Default: true, Rules: core.Rules{Required: true}},
		},
		Columns: []core.ColumnSpec{
			{Field: core.ColumnSerial, Label: "#", Sortable: true},
			textColumn("name", "Name"),
			textColumn("email", "Email"),
			textColumn("phone", "Phone"),
			textColumn("roleName", "Role"),
			dropdownColumn("isActive", "Status", statusOptions),
		},
		Derivations: []core.Derivation{
			{Target: "roleName", Inputs: []string{"roleId"}, Compute: roleName},
		},
		Seed: userSeed,
	})
}

// roleName resolves the role label, falling back to UnknownRole.
func roleName(in core.Values) (any, bool) {
	id := in.Text("roleId")
	if id == "" {
		return nil, false
	}
	for _, o := range RoleOptions {
		if o.Value == id {
			return o.Label, true
		}
	}
	return UnknownRole, true
}

var userSeed = []core.Values{
	{"name": "John Smith", "email": "john.smith@example.com", "phone": "123-456-7890", "roleId": "1", "isActive": true},
	{"name": "Sarah Johnson", "email": "sarah.j@example.com", "phone": "123-456-7891", "roleId": "2", "isActive": true},
	{"name": "Michael Brown", "email": "michael.b@example.com", "phone": "123-456-7892", "roleId": "2", "isActive": false},
	{"name": "Emily Davis", "email": "emily.d@example.com", "phone": "123-456-7893", "roleId": "3", "isActive": true},
	{"name": "David Wilson", "email": "david.w@example.com", "phone": "123-456-7894", "roleId": "1", "isActive": true},
	{"name": "Jennifer Lee", "email": "jennifer.l@example.com", "phone": "123-456-7895", "roleId": "3", "isActive": false},
	{"name": "Robert Taylor", "email": "robert.t@example.com", "phone": "123-456-7896", "roleId": "2", "isActive": true},
	{"name": "Amanda Clark", "email": "amanda.c@example.com", "phone": "123-456-7897", "roleId": "3", "isActive": true},
	{"name": "Christopher Martin", "email": "chris.m@example.com", "phone": "123-456-7898", "roleId": "1", "isActive": false},
	{"name": "Jessica White", "email": "jessica.w@example.com", "phone": "123-456-7899", "roleId": "2", "isActive": true},
	{"name": "Matthew Anderson", "email": "matt.a@example.com", "phone": "123-456-7800", "roleId": "3", "isActive": true},
	{"name": "Elizabeth Thomas", "email": "elizabeth.t@example.com", "phone": "123-456-7801", "roleId": "3", "isActive": false},
	{"name": "Daniel Harris", "email": "daniel.h@example.com", "phone": "123-456-7802", "roleId": "2", "isActive": true},
	{"name": "Michelle Walker", "email": "michelle.w@example.com", "phone": "123-456-7803", "roleId": "1", "isActive": true},
	{"name": "Kevin King", "email": "kevin.k@example.com", "phone": "123-456-7804", "roleId": "3", "isActive": true},
}
