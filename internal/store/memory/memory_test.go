package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/cutdesk/internal/core"
	"github.com/JonMunkholm/cutdesk/internal/permissions"
)

func testRegistry(t *testing.T) *core.Registry {
	t.Helper()
	reg := core.NewRegistry()
	require.NoError(t, reg.Register(core.EntityDefinition{
		Info: core.EntityInfo{Key: "widgets", Label: "Widget", TitleField: "name"},
		Fields: []core.FieldSpec{
			{Name: "name", Kind: core.KindText, Rules: core.Rules{Required: true}},
			{Name: "colour", Kind: core.KindSelect, Options: []core.Option{{Label: "Red", Value: "red"}, {Label: "Blue", Value: "blue"}}},
			{Name: "weight", Kind: core.KindNumber},
		},
		Columns: []core.ColumnSpec{
			{Field: "name", Filterable: true, Sortable: true},
			{Field: "colour", Filterable: true, Sortable: true, Filter: core.FilterDropdown},
			{Field: "weight", Sortable: true},
		},
		Seed: []core.Values{
			{"name": "Bolt", "colour": "red", "weight": "2.5"},
			{"name": "Nut", "colour": "blue", "weight": "1"},
			{"name": "Bracket", "colour": "red", "weight": "10"},
		},
	}))
	return reg
}

func seeded(t *testing.T) (*Records, *core.EntityDefinition) {
	t.Helper()
	reg := testRegistry(t)
	r := NewRecords()
	require.NoError(t, r.Seed(context.Background(), reg))
	def, _ := reg.Get("widgets")
	return r, def
}

func names(recs []core.Record) []string {
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.Values.Text("name")
	}
	return out
}

func TestSeedAssignsSerials(t *testing.T) {
	r, def := seeded(t)
	ctx := context.Background()

	recs, err := r.List(ctx, def, core.Query{Page: 1, PageSize: 10, Sort: core.SortSpec{Column: core.ColumnSerial, Order: core.SortAsc}})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i, rec := range recs {
		assert.Equal(t, int64(i+1), rec.Serial)
		assert.NotEmpty(t, rec.ID)
	}
	assert.Equal(t, []string{"Bolt", "Nut", "Bracket"}, names(recs))
}

func TestListFiltersSortsAndPages(t *testing.T) {
	r, def := seeded(t)
	ctx := context.Background()

	red := []core.ColumnFilter{{Column: "colour", Field: "colour", Kind: core.FilterDropdown, Value: "RED"}}
	n, err := r.Count(ctx, def, red)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	byWeight := core.SortSpec{Column: "weight", Order: core.SortDesc}
	recs, err := r.List(ctx, def, core.Query{Page: 1, PageSize: 2, Sort: byWeight})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bracket", "Bolt"}, names(recs), "numeric sort, not lexical")

	recs, err = r.List(ctx, def, core.Query{Page: 2, PageSize: 2, Sort: byWeight})
	require.NoError(t, err)
	assert.Equal(t, []string{"Nut"}, names(recs))

	text := []core.ColumnFilter{{Column: "name", Field: "name", Kind: core.FilterText, Value: "br"}}
	recs, err = r.List(ctx, def, core.Query{Page: 1, PageSize: 10, Filters: text})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bracket"}, names(recs))
}

func TestScaledNumberFilterMatchesDisplay(t *testing.T) {
	r, def := seeded(t)
	ctx := context.Background()

	fixed := []core.ColumnFilter{{Column: "weight", Field: "weight", Kind: core.FilterText, Value: "2.50", Scale: 2}}
	recs, err := r.List(ctx, def, core.Query{Page: 1, PageSize: 10, Filters: fixed})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bolt"}, names(recs))

	whole := []core.ColumnFilter{{Column: "weight", Field: "weight", Kind: core.FilterDropdown, Value: "10.00", Scale: 2}}
	n, err := r.Count(ctx, def, whole)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUpdateKeepsIdentity(t *testing.T) {
	r, def := seeded(t)
	ctx := context.Background()

	rec, err := r.Insert(ctx, def, core.Values{"name": "Washer"})
	require.NoError(t, err)

	updated, err := r.Update(ctx, def, rec.ID, core.Values{"name": "Spring washer", "colour": "blue"})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, updated.ID)
	assert.Equal(t, rec.Serial, updated.Serial)
	assert.Equal(t, rec.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Spring washer", updated.Values["name"])

	_, err = r.Update(ctx, def, "missing", core.Values{})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	r, def := seeded(t)
	ctx := context.Background()

	all, err := r.List(ctx, def, core.Query{Page: 1, PageSize: 10, Sort: core.SortSpec{Column: core.ColumnSerial}})
	require.NoError(t, err)

	require.NoError(t, r.Delete(ctx, def, all[1].ID))

	left, err := r.List(ctx, def, core.Query{Page: 1, PageSize: 10, Sort: core.SortSpec{Column: core.ColumnSerial}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Bolt", "Bracket"}, names(left))

	assert.ErrorIs(t, r.Delete(ctx, def, all[1].ID), core.ErrNotFound)
	_, err = r.Get(ctx, def, all[1].ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSerialsAreNotReused(t *testing.T) {
	r, def := seeded(t)
	ctx := context.Background()

	rec, err := r.Insert(ctx, def, core.Values{"name": "Rivet"})
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, def, rec.ID))

	next, err := r.Insert(ctx, def, core.Values{"name": "Pin"})
	require.NoError(t, err)
	assert.Equal(t, rec.Serial+1, next.Serial)
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	r, def := seeded(t)
	ctx := context.Background()

	rec, err := r.Insert(ctx, def, core.Values{"name": "Clip"})
	require.NoError(t, err)
	rec.Values["name"] = "changed"

	got, err := r.Get(ctx, def, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Clip", got.Values["name"])
}

func TestConfirmationsTakeOnce(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewConfirmations(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, core.PendingDelete{Entity: "widgets", RecordID: "r1", Token: "t1"}, time.Minute))

	p, err := c.Take(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "r1", p.RecordID)

	_, err = c.Take(ctx, "t1")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestConfirmationsExpire(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewConfirmations(func() time.Time { return now })
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, core.PendingDelete{Token: "t1"}, time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := c.Take(ctx, "t1")
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestAuditListAndPurge(t *testing.T) {
	a := NewAudit()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, action := range []core.AuditAction{core.ActionRecordCreate, core.ActionRecordUpdate, core.ActionRecordDelete} {
		require.NoError(t, a.InsertAudit(ctx, core.AuditEntry{
			ID:        string(action),
			Action:    action,
			Entity:    "widgets",
			CreatedAt: base.AddDate(0, 0, i),
		}))
	}

	entries, total, err := a.ListAudit(ctx, core.AuditLogFilter{Entity: "widgets", Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 2)
	assert.Equal(t, core.ActionRecordDelete, entries[0].Action, "newest first")

	entries, total, err = a.ListAudit(ctx, core.AuditLogFilter{Action: core.ActionRecordUpdate})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "record_update", entries[0].ID)

	purged, err := a.PurgeAudit(ctx, base.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, total, err = a.ListAudit(ctx, core.AuditLogFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestPermissionsRoundTrip(t *testing.T) {
	p := NewPermissions()
	ctx := context.Background()

	_, found, err := p.LoadMatrix(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	m := permissions.InitialMatrix(permissions.DefaultCatalog())
	require.NoError(t, p.SaveMatrix(ctx, m))
	m["head1"]["date"] = false

	loaded, found, err := p.LoadMatrix(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, loaded.Allowed("head1", "date"), "saved copy is isolated from the caller")
}
