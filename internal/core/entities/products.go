package entities

import "github.com/JonMunkholm/cutdesk/internal/core"

func init() {
	registerProducts()
}

// Products are cutting batches: what went into the machine and what came out.
func registerProducts() {
	core.Register(core.EntityDefinition{
		Info: core.EntityInfo{
			Key:        "products",
			Group:      "Production",
			Label:      "Product",
			TitleField: "name",
		},
		Fields: []core.FieldSpec{
			{Name: "name", Label: "Product Name", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "batchNo", Label: "Batch Number", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "length", Label: "Length", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "cost", Label: "Cost", Kind: core.KindNumber, Scale: 2, Rules: core.Rules{Min: atLeast(0)}},
			{Name: "inputWeight", Label: "Input Weight", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "burningLoss", Label: "Burning Loss", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "scrapRemaining", Label: "Scrap Remaining", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "totalCuttings", Label: "Total Cuttings", Kind: core.KindNumber, Rules: core.Rules{Min: atLeast(0)}},
			{Name: "creatorName", Label: "Creator Name", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "editorName", Label: "Editor Name", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "file", Label: "Batch Sheet", Kind: core.KindFile, Accept: ".pdf,.xls,.xlsx"},
		},
		Columns: []core.ColumnSpec{
			{Field: core.ColumnSerial, Label: "#", Sortable: true},
			textColumn("name", "Product Name"),
			textColumn("batchNo", "Batch No"),
			textColumn("length", "Length"),
			textColumn("cost", "Cost"),
			textColumn("inputWeight", "Input Weight"),
			textColumn("burningLoss", "Burning Loss"),
			textColumn("scrapRemaining", "Scrap Remaining"),
			textColumn("totalCuttings", "Total Cuttings"),
			textColumn("creatorName", "Creator"),
			textColumn("editorName", "Editor"),
		},
		Seed: productSeed,
	})
}

var productSeed = []core.Values{
	{"name": "Steel Rod", "batchNo": "BATCH-001", "length": "12m", "cost": "1500", "inputWeight": "100kg", "burningLoss": "5kg", "scrapRemaining": "3kg", "totalCuttings": "10", "creatorName": "John Smith", "editorName": "Sarah Johnson", "file": "steel_rod_batch-001.pdf"},
	{"name": "Iron Sheet", "batchNo": "BATCH-002", "length": "10m", "cost": "1200", "inputWeight": "80kg", "burningLoss": "4kg", "scrapRemaining": "2kg", "totalCuttings": "8", "creatorName": "Michael Brown", "editorName": "Emily Davis", "file": "iron_sheet_batch-002.pdf"},
	{"name": "Copper Wire", "batchNo": "BATCH-003", "length": "25m", "cost": "2500", "inputWeight": "50kg", "burningLoss": "2kg", "scrapRemaining": "1kg", "totalCuttings": "15", "creatorName": "David Wilson", "editorName": "Jennifer Lee", "file": "copper_wire_batch-003.pdf"},
	{"name": "Aluminum Pipe", "batchNo": "BATCH-004", "length": "18m", "cost": "1800", "inputWeight": "90kg", "burningLoss": "6kg", "scrapRemaining": "3kg", "totalCuttings": "12", "creatorName": "Robert Taylor", "editorName": "Amanda Clark", "file": "aluminum_pipe_batch-004.pdf"},
	{"name": "Brass Sheet", "batchNo": "BATCH-005", "length": "15m", "cost": "2100", "inputWeight": "70kg", "burningLoss": "3kg", "scrapRemaining": "2kg", "totalCuttings": "9", "creatorName": "Christopher Martin", "editorName": "Jessica White", "file": "brass_sheet_batch-005.pdf"},
	{"name": "Steel Beam", "batchNo": "BATCH-006", "length": "20m", "cost": "3200", "inputWeight": "150kg", "burningLoss": "7kg", "scrapRemaining": "5kg", "totalCuttings": "14", "creatorName": "Matthew Anderson", "editorName": "Elizabeth Thomas", "file": "steel_beam_batch-006.pdf"},
	{"name": "Titanium Rod", "batchNo": "BATCH-007", "length": "8m", "cost": "5000", "inputWeight": "60kg", "burningLoss": "2kg", "scrapRemaining": "1kg", "totalCuttings": "6", "creatorName": "Daniel Harris", "editorName": "Michelle Walker", "file": "titanium_rod_batch-007.pdf"},
	{"name": "Iron Pipe", "batchNo": "BATCH-008", "length": "16m", "cost": "1600", "inputWeight": "95kg", "burningLoss": "5kg", "scrapRemaining": "4kg", "totalCuttings": "11", "creatorName": "Kevin King", "editorName": "John Smith", "file": "iron_pipe_batch-008.pdf"},
}
