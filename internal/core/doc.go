// Package core provides the business logic of the back-office record manager.
//
// The package holds every piece of domain logic independent of any transport
// or storage. It can be used by web handlers, the seed tool, or tests without
// modification.
//
// # Architecture
//
// Each business entity (customers, inward materials, users, products,
// companies) is declared once and driven by generic machinery:
//
//   - Entity Definitions: registered in a [Registry], each entity has field
//     specs, column specs, derivations and static seed rows.
//   - Derivations: auto-calculated fields form a [DerivationGraph] that is
//     topologically ordered at registration; cycles are rejected.
//   - Form Sheet: [FormSheet] is the create/edit state machine
//     (closed, open, submitting) that validates and forwards to a submit func.
//   - Delete Dialog: [DeleteDialog] is the confirmation state machine
//     (hidden, pending, confirming) that invokes a delete func exactly once.
//   - Service: the entry point for listing, create, edit and two-step delete.
//   - Audit: every mutation is recorded with a severity level.
//
// # Entity Registry
//
// Entities are registered at init time using [Register]:
//
//	core.Register(core.EntityDefinition{
//	    Info: core.EntityInfo{Key: "customers", Group: "Sales", Label: "Customers"},
//	    Fields: []core.FieldSpec{
//	        {Name: "name", Label: "Name", Kind: core.KindText, Rules: core.Rules{Required: true}},
//	        {Name: "mobile", Label: "Mobile", Kind: core.KindText, Rules: core.Rules{MinLength: 10}},
//	    },
//	    Columns: []core.ColumnSpec{{Field: "name", Label: "Name", Filterable: true, Sortable: true}},
//	})
//
// # Queries
//
// Paging, filtering and sorting are always authoritative on the server side:
// every [Repository] receives a clamped [Query] and returns the matching slice
// together with the total count.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each message carries an envelope tag (NOT_FOUND, VALIDATION_FAILED, ...) and
// a support code:
//
//   - REC001-REC005: Record and entity errors
//   - VAL001-VAL007: Validation errors
//   - DB001-DB007: Database errors
//   - REQ001-REQ003: Request errors (busy, cancelled, timeout)
//   - RATE001: Too many requests
//
// Connection failures map to the UNAVAILABLE tag so clients can tell an
// outage from a bad request.
package core
