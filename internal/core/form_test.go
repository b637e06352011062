package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func openCreate(t *testing.T) *FormSheet {
	t.Helper()
	sheet := NewFormSheet(compiledPlate(t), clock)
	if err := sheet.OpenCreate(); err != nil {
		t.Fatalf("OpenCreate: %v", err)
	}
	return sheet
}

func TestFormSheet_OpenCreateStampsAndDefaults(t *testing.T) {
	sheet := openCreate(t)
	view := sheet.View()

	if view.State != SheetOpen || view.Mode != ModeCreate {
		t.Fatalf("state/mode = %s/%s, want open/create", view.State, view.Mode)
	}
	if view.Values["date"] != "2024-03-05" {
		t.Errorf("date = %v, want 2024-03-05", view.Values["date"])
	}
	if view.Values["time"] != "14:30" {
		t.Errorf("time = %v, want 14:30", view.Values["time"])
	}
	if view.Values["scrapTaken"] != false {
		t.Errorf("scrapTaken = %v, want default false", view.Values["scrapTaken"])
	}
}

func TestFormSheet_InvalidTransitions(t *testing.T) {
	sheet := NewFormSheet(compiledPlate(t), clock)

	if _, err := sheet.Set("name", "x"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Set on closed sheet: got %v, want ErrInvalidTransition", err)
	}
	if _, err := sheet.Submit(context.Background(), nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Submit on closed sheet: got %v, want ErrInvalidTransition", err)
	}
	if err := sheet.Close(); err != nil {
		t.Errorf("Close on closed sheet should be a no-op, got %v", err)
	}

	if err := sheet.OpenCreate(); err != nil {
		t.Fatal(err)
	}
	if err := sheet.OpenEdit(Record{ID: "r1"}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("OpenEdit on open sheet: got %v, want ErrInvalidTransition", err)
	}
}

func TestFormSheet_ReadOnlyFields(t *testing.T) {
	tests := []struct {
		name  string
		mode  SheetMode
		field string
		want  bool // editable
	}{
		{name: "locked on create", mode: ModeCreate, field: "date", want: false},
		{name: "unlocked on edit", mode: ModeEdit, field: "date", want: true},
		{name: "disabled", mode: ModeEdit, field: "time", want: false},
		{name: "derived", mode: ModeCreate, field: "cost", want: false},
		{name: "plain", mode: ModeCreate, field: "name", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sheet := NewFormSheet(compiledPlate(t), clock)
			var err error
			if tt.mode == ModeCreate {
				err = sheet.OpenCreate()
			} else {
				err = sheet.OpenEdit(Record{ID: "r1", Values: Values{"name": "A"}})
			}
			if err != nil {
				t.Fatal(err)
			}

			_, err = sheet.Set(tt.field, "2024-01-01")
			if got := err == nil; got != tt.want {
				t.Errorf("Set(%s) editable = %v, want %v (err: %v)", tt.field, got, tt.want, err)
			}
		})
	}
}

func TestFormSheet_SetRunsDerivations(t *testing.T) {
	sheet := openCreate(t)

	for _, change := range []struct {
		field string
		value any
	}{{"length", "2"}, {"width", "5"}, {"rate", "1.25"}} {
		if _, err := sheet.Set(change.field, change.value); err != nil {
			t.Fatalf("Set(%s): %v", change.field, err)
		}
	}

	updated, err := sheet.Set("length", "4")
	if err != nil {
		t.Fatal(err)
	}
	if len(updated) != 2 || updated[0] != "area" || updated[1] != "cost" {
		t.Errorf("recomputed = %v, want [area cost]", updated)
	}
	if got := sheet.View().Values.Text("cost"); got != "25" {
		t.Errorf("cost = %s, want 25", got)
	}
}

func TestFormSheet_VisibilityFollowsCondition(t *testing.T) {
	sheet := openCreate(t)

	hasField := func(name string) bool {
		for _, f := range sheet.Visible() {
			if f.Name == name {
				return true
			}
		}
		return false
	}

	if hasField("scrapQty") {
		t.Error("scrapQty visible while scrapTaken is false")
	}
	if _, err := sheet.Set("scrapTaken", "true"); err != nil {
		t.Fatal(err)
	}
	if !hasField("scrapQty") {
		t.Error("scrapQty hidden while scrapTaken is true")
	}
}

func TestFormSheet_ValidationFailureKeepsSheetOpen(t *testing.T) {
	sheet := openCreate(t)
	sheet.Set("length", "-1")
	sheet.Set("email", "not-an-email")

	called := false
	_, err := sheet.Submit(context.Background(), func(context.Context, Values) (Record, error) {
		called = true
		return Record{}, nil
	})

	var ves ValidationErrors
	if !errors.As(err, &ves) {
		t.Fatalf("Submit error = %v, want ValidationErrors", err)
	}
	if called {
		t.Error("submit func called despite validation errors")
	}
	if sheet.State() != SheetOpen {
		t.Errorf("state = %s, want open", sheet.State())
	}

	errs := sheet.View().Errors
	for _, field := range []string{"name", "length", "email"} {
		if errs[field] == "" {
			t.Errorf("missing inline error for %s: %v", field, errs)
		}
	}
}

func TestFormSheet_HiddenFieldsAreNotValidatedOrSubmitted(t *testing.T) {
	sheet := openCreate(t)
	sheet.Set("name", "Plate")
	sheet.Set("scrapTaken", "true")
	sheet.Set("scrapQty", "3")
	sheet.Set("scrapTaken", "false")

	var payload Values
	_, err := sheet.Submit(context.Background(), func(_ context.Context, v Values) (Record, error) {
		payload = v
		return Record{ID: "new"}, nil
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, ok := payload["scrapQty"]; ok {
		t.Error("hidden scrapQty was submitted")
	}
	if sheet.State() != SheetClosed {
		t.Errorf("state = %s, want closed after success", sheet.State())
	}
}

func TestFormSheet_SubmitFailureReturnsToOpen(t *testing.T) {
	sheet := openCreate(t)
	sheet.Set("name", "Plate")

	calls := 0
	boom := errors.New("connection refused")
	_, err := sheet.Submit(context.Background(), func(context.Context, Values) (Record, error) {
		calls++
		return Record{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Submit error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("submit func called %d times, want exactly 1", calls)
	}
	if sheet.State() != SheetOpen {
		t.Errorf("state = %s, want open", sheet.State())
	}
	if sheet.LastError() != boom || sheet.View().Error == "" {
		t.Error("submit error should be kept on the sheet")
	}
}

func TestFormSheet_SecondSubmitWhileSubmitting(t *testing.T) {
	sheet := openCreate(t)
	sheet.Set("name", "Plate")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := sheet.Submit(context.Background(), func(context.Context, Values) (Record, error) {
			close(entered)
			<-release
			return Record{ID: "r1"}, nil
		})
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("submit func not called")
	}

	if _, err := sheet.Submit(context.Background(), nil); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Submit = %v, want ErrInvalidTransition", err)
	}
	if err := sheet.Close(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Close while submitting = %v, want ErrInvalidTransition", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Errorf("first Submit: %v", err)
	}
}

func TestFormSheet_OpenEditRestamps(t *testing.T) {
	sheet := NewFormSheet(compiledPlate(t), clock)
	rec := Record{ID: "r1", Values: Values{"name": "A", "date": "2023-01-02", "time": "08:00"}}
	if err := sheet.OpenEdit(rec); err != nil {
		t.Fatal(err)
	}

	view := sheet.View()
	if view.RecordID != "r1" || view.Mode != ModeEdit {
		t.Errorf("view = %+v", view)
	}
	if view.Values["time"] != "14:30" {
		t.Errorf("time = %v, want re-stamped 14:30", view.Values["time"])
	}
	if view.Values["date"] != "2023-01-02" {
		t.Errorf("date = %v, want stored value kept", view.Values["date"])
	}
	if rec.Values["time"] != "08:00" {
		t.Error("OpenEdit modified the caller's record")
	}
}

func TestFormSheet_SetAllCollectsErrors(t *testing.T) {
	sheet := openCreate(t)

	err := sheet.SetAll(map[string]any{
		"name":   "Plate",
		"length": "abc",
		"width":  "x",
		"cost":   "999", // read-only, ignored
	})
	var ves ValidationErrors
	if !errors.As(err, &ves) || len(ves) != 2 {
		t.Fatalf("SetAll error = %v, want two validation errors", err)
	}
	if sheet.View().Values["name"] != "Plate" {
		t.Error("valid changes should still be applied")
	}
	if _, ok := sheet.View().Values["cost"]; ok {
		t.Error("read-only cost should be ignored")
	}
}
