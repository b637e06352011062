package entities

import "github.com/JonMunkholm/cutdesk/internal/core"

var companyStatusOptions = []core.Option{
	{Label: "Active", Value: "active"},
	{Label: "Inactive", Value: "inactive"},
}

func init() {
	registerCompanies()
}

func registerCompanies() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:         "companies",
			Group:       "Sales",
			Label:       "Company",
			TitleField:  "companyName",
			DefaultSort: core.SortSpec{Column: core.ColumnSerial, Order: core.SortDesc},
		},
		Fields: []core.FieldSpec{
			{Name: "companyName", Label: "Company Name", Kind: core.KindText, Placeholder: "e.g. 301io", Rules: core.Rules{Required: true}},
			{Name: "website", Label: "Website", Kind: core.KindText, Placeholder: "https://www.301io.com", Rules: core.Rules{Format: "url"}},
			{Name: "emailId", Label: "Email ID", Kind: core.KindEmail, Placeholder: "contact@301io.com", Rules: core.Rules{Required: true}},
			{Name: "address", Label: "Address", Kind: core.KindTextarea, Placeholder: "310, 301io, Pune", Rules: core.Rules{Required: true}},
			{Name: "status", Label: "Status", Kind: core.KindSelect, Options: companyStatusOptions, Default: "active"},
		},
		Columns: []core.ColumnSpec{
			{Field: core.ColumnSerial, Label: "#", Sortable: true},
			textColumn("companyName", "Company Name"),
			textColumn("website", "Website"),
			textColumn("emailId", "Email ID"),
			textColumn("address", "Address"),
			dropdownColumn("status", "Status", companyStatusOptions),
		},
		Seed: companySeed,
	})
}

var companySeed = []core.Values{
	{"companyName": "301io", "website": "https://www.301io.com", "emailId": "contact@301io.com", "address": "310, 301io, Pune", "status": "active"},
	{"companyName": "Deccan Fabricators", "website": "https://www.deccanfab.in", "emailId": "info@deccanfab.in", "address": "Plot 42, MIDC Bhosari, Pune", "status": "active"},
	{"companyName": "Western Laser Works", "emailId": "orders@westernlaser.in", "address": "Unit 7, Chakan Industrial Area, Pune", "status": "inactive"},
}
