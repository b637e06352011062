package apiclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/cutdesk/internal/apiclient"
	"github.com/JonMunkholm/cutdesk/internal/config"
	"github.com/JonMunkholm/cutdesk/internal/core"
	_ "github.com/JonMunkholm/cutdesk/internal/core/entities"
	"github.com/JonMunkholm/cutdesk/internal/permissions"
	"github.com/JonMunkholm/cutdesk/internal/store/memory"
	"github.com/JonMunkholm/cutdesk/internal/web"
)

func startServer(t *testing.T) *apiclient.Client {
	t.Helper()
	ctx := context.Background()

	records := memory.NewRecords()
	require.NoError(t, records.Seed(ctx, core.Default()))
	svc, err := core.NewService(core.Options{DefaultPageSize: 10, MaxPageSize: 100, ConfirmTTL: time.Minute}, core.Dependencies{
		Registry:      core.Default(),
		Records:       records,
		Confirmations: memory.NewConfirmations(nil),
		Audit:         memory.NewAudit(),
	})
	require.NoError(t, err)
	editor, err := permissions.NewEditor(ctx, permissions.DefaultCatalog(), memory.NewPermissions(), svc)
	require.NoError(t, err)
	svc.SetPermissions(editor)

	cfg := &config.Config{Server: config.ServerConfig{RequestTimeout: 5 * time.Second}}
	srv := httptest.NewServer(web.NewServer(cfg, svc, editor).Router())
	t.Cleanup(srv.Close)

	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"CUTDESK_API_URL", "CUTDESK_API_RETRY_MAX", "CUTDESK_API_TIMEOUT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := apiclient.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 0, cfg.RetryMax)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	t.Setenv("CUTDESK_API_RETRY_MAX", "3")
	cfg, err = apiclient.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.RetryMax)
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := apiclient.New(apiclient.Config{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestListAndGet(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	entities, err := c.Entities(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, entities)

	page, err := c.List(ctx, "customers", apiclient.ListOptions{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(15), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	require.Len(t, page.Rows, 5)

	inactive, err := c.List(ctx, "customers", apiclient.ListOptions{Filters: map[string]string{"isActive": "false"}})
	require.NoError(t, err)
	assert.Equal(t, int64(4), inactive.Pagination.Total)

	id, ok := page.Rows[0]["id"].(string)
	require.True(t, ok, "rows carry their id")
	rec, err := c.Get(ctx, "customers", id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
}

func TestCreateUpdateDelete(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	rec, err := c.Create(ctx, "customers", map[string]any{"name": "Priya Nair", "mobile": "9876543210"})
	require.NoError(t, err)
	assert.Equal(t, int64(16), rec.Serial)

	rec, err = c.Update(ctx, "customers", rec.ID, map[string]any{"email": "priya@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", rec.Values["email"])
	assert.Equal(t, "Priya Nair", rec.Values["name"])

	pending, err := c.RequestDelete(ctx, "customers", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Customer Priya Nair", pending.Description)

	require.NoError(t, c.ConfirmDelete(ctx, "customers", rec.ID, pending.Token))

	_, err = c.Get(ctx, "customers", rec.ID)
	assert.True(t, apiclient.IsCode(err, core.TagNotFound), "got %v", err)

	err = c.ConfirmDelete(ctx, "customers", rec.ID, pending.Token)
	assert.True(t, apiclient.IsCode(err, core.TagTokenInvalid), "got %v", err)
}

func TestValidationErrorCarriesFields(t *testing.T) {
	c := startServer(t)

	_, err := c.Create(context.Background(), "customers", map[string]any{"name": "Priya Nair", "mobile": "123"})
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, core.TagValidationFailed, apiErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Contains(t, apiErr.Errors, "mobile")
}

func TestPreviewForm(t *testing.T) {
	c := startServer(t)

	view, err := c.PreviewForm(context.Background(), "customers", "", map[string]any{"name": "Draft"}, false)
	require.NoError(t, err)
	assert.Equal(t, "create", view.Mode)
	assert.Equal(t, "Draft", view.Values["name"])
}

func TestPermissionsSaveAndReset(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	st, err := c.Permissions(ctx)
	require.NoError(t, err)
	before := st.Allowed("head1", "cutting_rate")

	enabled, err := c.TogglePermission(ctx, "head1", "cutting_rate")
	require.NoError(t, err)
	assert.Equal(t, !before, enabled)

	st, err = c.ResetPermissions(ctx)
	require.NoError(t, err)
	assert.False(t, st.Dirty)
	assert.Equal(t, before, st.Allowed("head1", "cutting_rate"))

	_, err = c.TogglePermission(ctx, "head1", "cutting_rate")
	require.NoError(t, err)
	st, err = c.SavePermissions(ctx)
	require.NoError(t, err)
	assert.False(t, st.Dirty)
	assert.Equal(t, !before, st.Allowed("head1", "cutting_rate"))

	_, err = c.TogglePermission(ctx, "nobody", "cutting_rate")
	assert.True(t, apiclient.IsCode(err, core.TagUnknownRole), "got %v", err)
}

func TestEnvelopeCodeDecidesOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":"BUSY","message":"Too many writes in progress"}`))
	}))
	defer srv.Close()

	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Entities(context.Background())
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "BUSY", apiErr.Code)
	assert.Equal(t, http.StatusOK, apiErr.Status)
}

func TestRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"code":"UNAVAILABLE","message":"down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"code":"SUCCESS","data":{"entities":[{"key":"customers"}]}}`))
	}))
	defer srv.Close()
	ctx := context.Background()

	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.Entities(ctx)
	assert.True(t, apiclient.IsCode(err, core.TagUnavailable), "no retry by default, got %v", err)
	assert.Equal(t, int32(1), calls.Load())

	calls.Store(0)
	c, err = apiclient.New(apiclient.Config{BaseURL: srv.URL, RetryMax: 2})
	require.NoError(t, err)
	entities, err := c.Entities(ctx)
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHeadersAreSent(t *testing.T) {
	var key, role string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, role = r.Header.Get("X-API-Key"), r.Header.Get("X-Role")
		_, _ = w.Write([]byte(`{"code":"SUCCESS","data":{"entities":[]}}`))
	}))
	defer srv.Close()

	c, err := apiclient.New(apiclient.Config{BaseURL: srv.URL, APIKey: "k1"})
	require.NoError(t, err)
	_, err = c.WithRole("head1").Entities(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "k1", key)
	assert.Equal(t, "head1", role)
}
