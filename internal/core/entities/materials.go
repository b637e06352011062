package entities

import (
	"github.com/JonMunkholm/cutdesk/internal/core"
	"github.com/shopspring/decimal"
)

// Steel density in the weight formula, g/cm3.
var steelDensity = decimal.NewFromInt(8)

var weightDivisor = decimal.NewFromInt(1_000_000)

const (
	attachmentTypes = ".pdf,.doc,.docx,.xls,.xlsx,.txt"
	photoTypes      = "image/*,.pdf,.doc,.docx"
	drawingTypes    = ".dwg,.dxf,.nc,.cnc,.pdf,.jpg,.png"
	invoiceTypes    = ".pdf,.jpg,.png,.xls,.xlsx"
)

func init() {
	registerMaterials()
}

// Materials are inward material entries: stock received from a customer for
// cutting, with the cutting job's cost and payment state.
func registerMaterials() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:         "materials",
			Group:       "Production",
			Label:       "Inward material",
			TitleField:  "materialDescription",
			RefPrefix:   "MAT",
			RefBase:     2024000,
			DefaultSort: core.SortSpec{Column: core.ColumnSerial, Order: core.SortDesc},
		},
		Fields: []core.FieldSpec{
			{Name: "date", Label: "Date", Kind: core.KindDate, Stamp: core.StampToday, LockOnCreate: true, Rules: core.Rules{Required: true}},
			{Name: "customer", Label: "Customer", Kind: core.KindSelect, Options: optionsOf(CustomerNames), Placeholder: "Select customer", Rules: core.Rules{Required: true}},
			{Name: "materialDescription", Label: "Material Description", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "length", Label: "Length (mm)", Kind: core.KindNumber, Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "width", Label: "Width (mm)", Kind: core.KindNumber, Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "thickness", Label: "Thickness (mm)", Kind: core.KindNumber, Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "grade", Label: "Grade", Kind: core.KindSelect, Options: optionsOf(Grades), Rules: core.Rules{Required: true}},
			{Name: "quantityNos", Label: "Qty (Nos)", Kind: core.KindNumber, Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "quantityKg", Label: "Qty (Kgs)", Kind: core.KindNumber, Scale: 2, Disabled: true},
			{Name: "cuttingLength", Label: "Cutting Length (MTR)", Kind: core.KindNumber, Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "piercing", Label: "Piercing", Kind: core.KindNumber, Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "cuttingRate", Label: "Cutting Rate (₹/mm)", Kind: core.KindNumber, Rules: core.Rules{Required: true, Min: atLeast(0)}},
			{Name: "totalCost", Label: "Total Cost", Kind: core.KindNumber, Scale: 2, Disabled: true},
			{Name: "inwardPhotos", Label: "Inward Photos", Kind: core.KindFile, Multiple: true, Accept: photoTypes},
			{Name: "outwardPhotos", Label: "Outward Photos", Kind: core.KindFile, Multiple: true, Accept: photoTypes},
			{Name: "fileAttachments", Label: "File Attachments", Kind: core.KindFile, Multiple: true, Accept: attachmentTypes},
			{Name: "programDrgs", Label: "Program/Drgs", Kind: core.KindFile, Multiple: true, Accept: drawingTypes},
			{Name: "accountingInvoice", Label: "Accounting Invoice", Kind: core.KindFile, Accept: invoiceTypes},
			{Name: "paymentReceived", Label: "Payment Received", Kind: core.KindDropdown, Boolean: true, Options: yesNoOptions},
			{Name: "scrapTaken", Label: "Scrap Taken", Kind: core.KindDropdown, Boolean: true, Options: yesNoOptions},
			{Name: "scrapQty", Label: "Qty of Scrap approx (Kgs)", Kind: core.KindNumber, Rules: core.Rules{Min: atLeast(0)},
				ShowWhen: &core.Condition{Field: "scrapTaken", Equals: []string{"true"}}},
			{Name: "time", Label: "Time", Kind: core.KindText, Stamp: core.StampNow, StampOnEdit: true, Disabled: true},
		},
		Columns: []core.ColumnSpec{
			{Field: core.ColumnReference, Label: "Sr No", Sortable: true},
			withPermission(textColumn("date", "Date"), "date"),
			withPermission(textColumn("time", "Time"), "time"),
			withPermission(textColumn("customer", "Customer"), "customer_name"),
			withPermission(textColumn("materialDescription", "Material Description"), "material_description"),
			textColumn("length", "Length"),
			textColumn("width", "Width"),
			textColumn("thickness", "Thickness"),
			withPermission(textColumn("grade", "Grade"), "grade"),
			withPermission(textColumn("quantityNos", "Qty (Nos)"), "qty_nos"),
			withPermission(textColumn("quantityKg", "Qty (Kgs)"), "qty_kgs"),
			withPermission(textColumn("cuttingLength", "Cutting Length"), "cutting_length"),
			withPermission(textColumn("piercing", "Piercing"), "piercing"),
			withPermission(textColumn("cuttingRate", "Cutting Rate"), "cutting_rate"),
			withPermission(textColumn("totalCost", "Total Cost"), "total_cost"),
			withPermission(core.ColumnSpec{Field: "inwardPhotos", Label: "Inward Photo"}, "inward_photo"),
			withPermission(core.ColumnSpec{Field: "outwardPhotos", Label: "Outward Photo"}, "outward_photo"),
			withPermission(core.ColumnSpec{Field: "fileAttachments", Label: "File Attachments"}, "file_attachments"),
			withPermission(core.ColumnSpec{Field: "programDrgs", Label: "Program/Drgs"}, "program_drgs"),
			withPermission(core.ColumnSpec{Field: "accountingInvoice", Label: "Accounting Invoice"}, "accounting_invoice"),
			withPermission(dropdownColumn("paymentReceived", "Payment Received", yesNoOptions), "payment_received"),
			withPermission(dropdownColumn("scrapTaken", "Scrap Taken", yesNoOptions), "scrap_taken"),
			withPermission(textColumn("scrapQty", "Scrap Qty"), "qty_scrap_approx"),
		},
		Derivations: []core.Derivation{
			{Target: "quantityKg", Inputs: []string{"length", "width", "thickness", "quantityNos"}, Compute: MaterialWeight},
			{Target: "totalCost", Inputs: []string{"cuttingLength", "thickness", "cuttingRate"}, Compute: CuttingCost},
		},
		Seed: materialSeed,
	})
}

func withPermission(c core.ColumnSpec, permission string) core.ColumnSpec {
	c.Permission = permission
	return c
}

// MaterialWeight is L*W*T*qty*8/1e6 in kg, two decimals. The piece count is
// truncated to a whole number.
func MaterialWeight(in core.Values) (any, bool) {
	d, ok := decimals(in, "length", "width", "thickness", "quantityNos")
	if !ok {
		return nil, false
	}
	qty := d[3].Truncate(0)
	kg := d[0].Mul(d[1]).Mul(d[2]).Mul(qty).Mul(steelDensity).Div(weightDivisor)
	return kg.Round(2), true
}

// CuttingCost is cuttingLength*thickness*cuttingRate, two decimals.
func CuttingCost(in core.Values) (any, bool) {
	d, ok := decimals(in, "cuttingLength", "thickness", "cuttingRate")
	if !ok {
		return nil, false
	}
	return d[0].Mul(d[1]).Mul(d[2]).Round(2), true
}

var materialSeed = []core.Values{
	{"date": "2024-01-10", "time": "08:00", "customer": "Tata Steel Ltd", "materialDescription": "MS Plate 304 Grade", "length": "4000", "width": "1400", "thickness": "12.5", "grade": "SS", "quantityNos": "46", "cuttingLength": "74.1", "piercing": "38", "cuttingRate": "2.75", "paymentReceived": true, "scrapTaken": true, "scrapQty": "42"},
	{"date": "2024-01-11", "time": "09:13", "customer": "Jindal Steel & Power", "materialDescription": "SS Sheet 316L", "length": "2300", "width": "2600", "thickness": "8", "grade": "MS", "quantityNos": "7", "cuttingLength": "94.6", "piercing": "30", "cuttingRate": "2.56", "paymentReceived": false, "scrapTaken": false},
	{"date": "2024-01-12", "time": "10:26", "customer": "SAIL (Steel Authority of India)", "materialDescription": "Carbon Steel Plate", "length": "2500", "width": "2700", "thickness": "12.5", "grade": "SS304", "quantityNos": "8", "cuttingLength": "473.9", "piercing": "11", "cuttingRate": "9.58", "paymentReceived": true, "scrapTaken": true, "scrapQty": "45"},
	{"date": "2024-01-13", "time": "11:39", "customer": "Essar Steel India", "materialDescription": "Structural Steel Beam", "length": "6000", "width": "2800", "thickness": "6", "grade": "SS316", "quantityNos": "41", "cuttingLength": "349.6", "piercing": "7", "cuttingRate": "9.81", "paymentReceived": true, "scrapTaken": false},
	{"date": "2024-02-14", "time": "12:52", "customer": "Bhushan Steel Limited", "materialDescription": "Galvanized Iron Sheet", "length": "2200", "width": "2700", "thickness": "25", "grade": "MS-C45", "quantityNos": "13", "cuttingLength": "198.6", "piercing": "13", "cuttingRate": "6.33", "paymentReceived": false, "scrapTaken": true, "scrapQty": "41"},
	{"date": "2024-02-15", "time": "13:05", "customer": "JSW Steel Limited", "materialDescription": "Mild Steel Channel", "length": "3900", "width": "2700", "thickness": "25", "grade": "EN8", "quantityNos": "48", "cuttingLength": "142.1", "piercing": "40", "cuttingRate": "7.11", "paymentReceived": true, "scrapTaken": false},
	{"date": "2024-02-16", "time": "14:18", "customer": "Vizag Steel Plant", "materialDescription": "Stainless Steel Pipe", "length": "4300", "width": "1300", "thickness": "16", "grade": "EN24", "quantityNos": "50", "cuttingLength": "82.9", "piercing": "7", "cuttingRate": "6.95", "paymentReceived": true, "scrapTaken": true, "scrapQty": "36"},
	{"date": "2024-02-17", "time": "15:31", "customer": "Mukand Steel Limited", "materialDescription": "Alloy Steel Round", "length": "6300", "width": "2700", "thickness": "12.5", "grade": "IS2062", "quantityNos": "54", "cuttingLength": "210.7", "piercing": "33", "cuttingRate": "4.89", "paymentReceived": false, "scrapTaken": false},
	{"date": "2024-03-18", "time": "08:44", "customer": "Sunflag Iron & Steel", "materialDescription": "Tool Steel Flat", "length": "3500", "width": "1500", "thickness": "20", "grade": "SS", "quantityNos": "54", "cuttingLength": "174.1", "piercing": "40", "cuttingRate": "4.40", "paymentReceived": true, "scrapTaken": true, "scrapQty": "36"},
	{"date": "2024-03-19", "time": "09:57", "customer": "Kalyani Steels Ltd", "materialDescription": "HR Coil Steel", "length": "7600", "width": "2000", "thickness": "20", "grade": "MS", "quantityNos": "33", "cuttingLength": "197.9", "piercing": "8", "cuttingRate": "2.94", "paymentReceived": true, "scrapTaken": false},
}
