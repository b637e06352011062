package entities

import "github.com/JonMunkholm/cutdesk/internal/core"

func init() {
	registerCustomers()
}

func registerCustomers() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:        "customers",
			Group:      "Sales",
			Label:      "Customer",
			TitleField: "name",
		},
		Fields: []core.FieldSpec{
			{Name: "name", Label: "Name", Kind: core.KindText, Placeholder: "Enter customer name", Rules: core.Rules{Required: true}},
			{Name: "mobile", Label: "Mobile No", Kind: core.KindText, Placeholder: "Enter mobile number", Rules: core.Rules{Required: true, MinLength: 10}},
			{Name: "email", Label: "Email", Kind: core.KindEmail, Placeholder: "Enter email address", Rules: core.Rules{Format: "email"}},
			{Name: "photo", Label: "Photo", Kind: core.KindFile, Accept: "image/*"},
			{Name: "isActive", Label: "Active", Kind: core.KindCheckbox, Default: true},
		},
		Columns: []core.ColumnSpec{
			{Field: core.ColumnSerial, Label: "#", Sortable: true},
			{Field: "photo", Label: "Photo"},
			textColumn("name", "Name"),
			textColumn("mobile", "Mobile No"),
			textColumn("email", "Email"),
			dropdownColumn("isActive", "Status", statusOptions),
		},
		Seed: customerSeed,
	})
}

var customerSeed = []core.Values{
	{"name": "John Smith", "mobile": "123-456-7890", "email": "john.smith@example.com", "isActive": true},
	{"name": "Sarah Johnson", "mobile": "123-456-7891", "email": "sarah.j@example.com", "isActive": true},
	{"name": "Michael Brown", "mobile": "123-456-7892", "email": "michael.b@example.com", "isActive": false},
	{"name": "Emily Davis", "mobile": "123-456-7893", "email": "emily.d@example.com", "isActive": true},
	{"name": "David Wilson", "mobile": "123-456-7894", "email": "david.w@example.com", "isActive": true},
	{"name": "Jennifer Lee", "mobile": "123-456-7895", "email": "jennifer.l@example.com", "isActive": false},
	{"name": "Robert Taylor", "mobile": "123-456-7896", "email": "robert.t@example.com", "isActive": true},
	{"name": "Amanda Clark", "mobile": "123-456-7897", "email": "amanda.c@example.com", "isActive": true},
	{"name": "Christopher Martin", "mobile": "123-456-7898", "email": "chris.m@example.com", "isActive": false},
	{"name": "Jessica White", "mobile": "123-456-7899", "email": "jessica.w@example.com", "isActive": true},
	{"name": "Matthew Anderson", "mobile": "123-456-7800", "email": "matt.a@example.com", "isActive": true},
	{"name": "Elizabeth Thomas", "mobile": "123-456-7801", "email": "elizabeth.t@example.com", "isActive": false},
	{"name": "Daniel Harris", "mobile": "123-456-7802", "email": "daniel.h@example.com", "isActive": true},
	{"name": "Michelle Walker", "mobile": "123-456-7803", "email": "michelle.w@example.com", "isActive": true},
	{"name": "Kevin King", "mobile": "123-456-7804", "email": "kevin.k@example.com", "isActive": true},
}
