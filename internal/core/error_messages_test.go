package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantTag     string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantTag:     "",
			wantMessage: "",
		},
		{
			name:        "wrapped not found maps by sentinel",
			err:         fmt.Errorf("get customers/42: %w", ErrNotFound),
			wantCode:    "REC001",
			wantTag:     TagNotFound,
			wantMessage: "Record not found",
		},
		{
			name:        "unknown entity",
			err:         fmt.Errorf("%w: widgets", ErrUnknownEntity),
			wantCode:    "REC002",
			wantTag:     TagUnknownEntity,
			wantMessage: "Unknown entity",
		},
		{
			name:        "second submit while submitting",
			err:         fmt.Errorf("submit while submitting: %w", ErrInvalidTransition),
			wantCode:    "REC003",
			wantTag:     TagInvalidTransition,
			wantMessage: "This action is not available right now",
		},
		{
			name:        "consumed delete token",
			err:         ErrTokenInvalid,
			wantCode:    "REC004",
			wantTag:     TagTokenInvalid,
			wantMessage: "Delete confirmation expired or was already used",
		},
		{
			name:        "write limiter saturated",
			err:         fmt.Errorf("create: %w", ErrTooManyWrites),
			wantCode:    "REQ001",
			wantTag:     TagBusy,
			wantMessage: "System is busy processing other changes",
		},
		{
			name:        "deadline exceeded maps before timeout pattern",
			err:         fmt.Errorf("list: %w", context.DeadlineExceeded),
			wantCode:    "REQ003",
			wantTag:     TagTimeout,
			wantMessage: "Request timed out",
		},
		{
			name:        "duplicate key maps correctly",
			err:         errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode:    "DB001",
			wantTag:     TagConflict,
			wantMessage: "A record with this ID already exists",
		},
		{
			name:        "unique constraint maps correctly",
			err:         errors.New("ERROR: unique constraint violated"),
			wantCode:    "DB002",
			wantTag:     TagConflict,
			wantMessage: "This value must be unique but already exists",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp: connection refused"),
			wantCode:    "DB004",
			wantTag:     TagUnavailable,
			wantMessage: "Unable to connect to database",
		},
		{
			name:        "single field error keeps its specific code",
			err:         ValidationErrors{{Field: "name", Message: "required field"}},
			wantCode:    "VAL003",
			wantTag:     TagValidationFailed,
			wantMessage: "Required field is empty",
		},
		{
			name: "several field errors collapse to one code",
			err: ValidationErrors{
				{Field: "name", Message: "required field"},
				{Field: "mobile", Message: "must be at least 10 characters"},
			},
			wantCode:    "VAL007",
			wantTag:     TagValidationFailed,
			wantMessage: "Some fields need attention",
		},
		{
			name:        "sort on unsortable column",
			err:         ValidationErrors{{Field: "sortBy", Message: "cannot sort by photo"}},
			wantCode:    "VAL006",
			wantTag:     TagValidationFailed,
			wantMessage: "This column cannot be sorted",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantTag:     TagInternal,
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("DUPLICATE KEY value violates"),
			wantCode:    "DB001",
			wantTag:     TagConflict,
			wantMessage: "A record with this ID already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Tag != tt.wantTag {
				t.Errorf("MapError() tag = %q, want %q", got.Tag, tt.wantTag)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestMapError_Status(t *testing.T) {
	if got := MapError(ErrNotFound).Status; got != http.StatusNotFound {
		t.Errorf("not found status = %d, want %d", got, http.StatusNotFound)
	}
	if got := MapError(ValidationErrors{{Field: "a", Message: "x"}, {Field: "b", Message: "y"}}).Status; got != http.StatusUnprocessableEntity {
		t.Errorf("validation status = %d, want %d", got, http.StatusUnprocessableEntity)
	}
	if got := MapError(errors.New("boom")).Status; got != http.StatusInternalServerError {
		t.Errorf("default status = %d, want %d", got, http.StatusInternalServerError)
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(fmt.Errorf("delete: %w", ErrNotFound))

	expected := "Record not found (Code: REC001). Refresh the table, it may have been deleted"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("duplicate key"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("ERROR: duplicate key value")
		userErr := NewUserError(techErr)

		if userErr.Error() != "A record with this ID already exists" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
