package entities

import "github.com/JonMunkholm/cutdesk/internal/core"

func init() {
	registerMaterialStock()
}

// Material stock is the material management ledger: customer material on
// hand with the agreed cutting job.
func registerMaterialStock() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:         "material_stock",
			Group:       "Production",
			Label:       "Material stock",
			TitleField:  "materialDescription",
			DefaultSort: core.SortSpec{Column: core.ColumnSerial, Order: core.SortDesc},
		},
		Fields: []core.FieldSpec{
			{Name: "customerName", Label: "Customer Name", Kind: core.KindText, Placeholder: "Enter customer name", Rules: core.Rules{Required: true}},
			{Name: "materialDescription", Label: "Material Description", Kind: core.KindText, Placeholder: "Enter material description", Rules: core.Rules{Required: true}},
			{Name: "grade", Label: "Grade", Kind: core.KindText, Placeholder: "Enter grade", Rules: core.Rules{Required: true}},
			{Name: "quantityNos", Label: "Quantity (Nos)", Kind: core.KindNumber, Placeholder: "Enter quantity in numbers", Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "quantityKgs", Label: "Quantity (Kgs)", Kind: core.KindNumber, Placeholder: "Enter quantity in kilograms", Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "cuttingLength", Label: "Cutting Length (Mtr)", Kind: core.KindNumber, Placeholder: "Enter cutting length in meters", Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "piercing", Label: "Piercing", Kind: core.KindText, Placeholder: "Enter piercing details", Rules: core.Rules{Required: true}},
			{Name: "cuttingRate", Label: "Cutting Rate", Kind: core.KindNumber, Placeholder: "Enter cutting rate", Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "totalCost", Label: "Total Cost", Kind: core.KindNumber, Scale: 2, Disabled: true},
			{Name: "programDps", Label: "Program DPS", Kind: core.KindText},
			{Name: "accountingInvoice", Label: "Accounting Invoice", Kind: core.KindText},
			{Name: "paymentReceived", Label: "Payment Received", Kind: core.KindDropdown, Boolean: true, Options: yesNoOptions},
			{Name: "scrapTaken", Label: "Scrap Taken", Kind: core.KindDropdown, Boolean: true, Options: yesNoOptions},
			{Name: "quantityOfScrap", Label: "Quantity of Scrap", Kind: core.KindNumber, Rules: core.Rules{Min: atLeast(0)},
				ShowWhen: &core.Condition{Field: "scrapTaken", Equals: []string{"true"}}},
		},
		Columns: []core.ColumnSpec{
			{Field: core.ColumnSerial, Label: "#", Sortable: true},
			textColumn("customerName", "Customer Name"),
			textColumn("materialDescription", "Material Description"),
			textColumn("grade", "Grade"),
			textColumn("quantityNos", "Qty (Nos)"),
			textColumn("quantityKgs", "Qty (Kgs)"),
			textColumn("cuttingLength", "Cutting Length"),
			textColumn("piercing", "Piercing"),
			textColumn("cuttingRate", "Cutting Rate"),
			textColumn("totalCost", "Total Cost"),
			textColumn("programDps", "Program DPS"),
			textColumn("accountingInvoice", "Invoice"),
			dropdownColumn("paymentReceived", "Payment Received", yesNoOptions),
			dropdownColumn("scrapTaken", "Scrap Taken", yesNoOptions),
			textColumn("quantityOfScrap", "Scrap Qty"),
		},
		Derivations: []core.Derivation{
			{Target: "totalCost", Inputs: []string{"cuttingLength", "cuttingRate"}, Compute: stockCost},
		},
		Seed: materialStockSeed,
	})
}

// stockCost prices the cutting job at cuttingLength*cuttingRate.
func stockCost(in core.Values) (any, bool) {
	d, ok := decimals(in, "cuttingLength", "cuttingRate")
	if !ok {
		return nil, false
	}
	return d[0].Mul(d[1]).Round(2), true
}

var materialStockSeed = []core.Values{
	{"customerName": "ABC Manufacturing", "materialDescription": "Steel Plates", "grade": "A36", "quantityNos": "50", "quantityKgs": "2500", "cuttingLength": "12.5", "piercing": "Yes", "cuttingRate": "45.00", "programDps": "DPS-001", "accountingInvoice": "INV-001", "paymentReceived": true, "scrapTaken": false},
	{"customerName": "XYZ Industries", "materialDescription": "Aluminum Sheets", "grade": "6061", "quantityNos": "30", "quantityKgs": "900", "cuttingLength": "8.2", "piercing": "No", "cuttingRate": "35.50", "programDps": "DPS-002", "accountingInvoice": "INV-002", "paymentReceived": false, "scrapTaken": true, "quantityOfScrap": "45"},
	{"customerName": "Global Metals Corp", "materialDescription": "Copper Tubes", "grade": "C11000", "quantityNos": "75", "quantityKgs": "1875", "cuttingLength": "6.8", "piercing": "Yes", "cuttingRate": "52.75", "programDps": "DPS-003", "accountingInvoice": "INV-003", "paymentReceived": true, "scrapTaken": true, "quantityOfScrap": "28"},
	{"customerName": "Precision Engineering", "materialDescription": "Stainless Steel", "grade": "304", "quantityNos": "40", "quantityKgs": "1600", "cuttingLength": "10.5", "piercing": "Yes", "cuttingRate": "48.25", "programDps": "DPS-004", "accountingInvoice": "INV-004", "paymentReceived": false, "scrapTaken": false},
	{"customerName": "Metal Works Ltd", "materialDescription": "Brass Rods", "grade": "C36000", "quantityNos": "60", "quantityKgs": "1800", "cuttingLength": "4.5", "piercing": "No", "cuttingRate": "38.90", "programDps": "DPS-005", "accountingInvoice": "INV-005", "paymentReceived": true, "scrapTaken": true, "quantityOfScrap": "15"},
	{"customerName": "Industrial Solutions", "materialDescription": "Titanium Plates", "grade": "Grade 2", "quantityNos": "25", "quantityKgs": "625", "cuttingLength": "15.2", "piercing": "Yes", "cuttingRate": "75.40", "programDps": "DPS-006", "accountingInvoice": "INV-006", "paymentReceived": true, "scrapTaken": false},
	{"customerName": "Advanced Materials", "materialDescription": "Carbon Steel", "grade": "1045", "quantityNos": "35", "quantityKgs": "1400", "cuttingLength": "9.8", "piercing": "No", "cuttingRate": "42.30", "programDps": "DPS-007", "accountingInvoice": "INV-007", "paymentReceived": false, "scrapTaken": true, "quantityOfScrap": "32"},
	{"customerName": "Quality Fabrication", "materialDescription": "Galvanized Steel", "grade": "A653", "quantityNos": "45", "quantityKgs": "1575", "cuttingLength": "7.5", "piercing": "Yes", "cuttingRate": "39.75", "programDps": "DPS-008", "accountingInvoice": "INV-008", "paymentReceived": true, "scrapTaken": false},
}
