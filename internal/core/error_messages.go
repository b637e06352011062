package core

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. Every message also carries the envelope tag clients branch on
// (the "code" field of a REST response) and the HTTP status sent with it.
//
// # Record Errors (REC001-REC099)
//
//	REC001 - Record not found             NOT_FOUND           (ErrNotFound)
//	REC002 - Unknown entity               UNKNOWN_ENTITY      (ErrUnknownEntity)
//	REC003 - Action not allowed right now INVALID_TRANSITION  (ErrInvalidTransition)
//	REC004 - Confirmation expired         TOKEN_INVALID       (ErrTokenInvalid)
//	REC005 - Unknown role                 UNKNOWN_ROLE        (ErrUnknownRole)
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid date                 "invalid date"
//	VAL002 - Invalid number               "invalid number"
//	VAL003 - Required field is empty      "required field"
//	VAL004 - Unknown field                "unknown field"
//	VAL005 - Value not in the option list "invalid option"
//	VAL006 - Column cannot be used        "cannot filter by", "cannot sort by"
//	VAL007 - Several fields need fixing   ValidationErrors
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key                 "duplicate key"
//	DB002 - Unique constraint             "unique constraint", "violates unique"
//	DB003 - Foreign key                   "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused            "connection refused"
//	DB005 - Connection reset              "connection reset"
//	DB006 - Timeout                       "timeout"
//	DB007 - Deadlock                      "deadlock"
//
// # Request Errors (REQ001-REQ099, RATE001)
//
//	REQ001 - Too many concurrent writes   ErrTooManyWrites
//	REQ002 - Request cancelled            context.Canceled
//	REQ003 - Request timed out            context.DeadlineExceeded
//	RATE001 - Too many requests           "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application logs for the
// original technical error when users report ERR000.
//
// # Matching
//
// Sentinel errors are matched first with errors.Is, so wrapping with %w keeps
// the mapping. Remaining errors are matched case-insensitively on their text;
// the first matching pattern wins.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Envelope tags.
const (
	TagSuccess           = "SUCCESS"
	TagNotFound          = "NOT_FOUND"
	TagValidationFailed  = "VALIDATION_FAILED"
	TagConflict          = "CONFLICT"
	TagInvalidTransition = "INVALID_TRANSITION"
	TagTokenInvalid      = "TOKEN_INVALID"
	TagUnknownEntity     = "UNKNOWN_ENTITY"
	TagUnknownRole       = "UNKNOWN_ROLE"
	TagBusy              = "BUSY"
	TagTimeout           = "TIMEOUT"
	TagCancelled         = "CANCELLED"
	TagRateLimited       = "RATE_LIMITED"
	TagUnavailable       = "UNAVAILABLE"
	TagInternal          = "INTERNAL_ERROR"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
	Tag     string // Envelope code clients branch on
	Status  int    // HTTP status sent with the envelope
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrNotFound, newMessage("REC001", TagNotFound, http.StatusNotFound, "Record not found", "Refresh the table, it may have been deleted")},
	{ErrUnknownEntity, newMessage("REC002", TagUnknownEntity, http.StatusNotFound, "Unknown entity", "Check the page address")},
	{ErrInvalidTransition, newMessage("REC003", TagInvalidTransition, http.StatusConflict, "This action is not available right now", "Wait for the current action to finish")},
	{ErrTokenInvalid, newMessage("REC004", TagTokenInvalid, http.StatusGone, "Delete confirmation expired or was already used", "Request the delete again")},
	{ErrUnknownRole, newMessage("REC005", TagUnknownRole, http.StatusBadRequest, "Unknown role", "Choose a role from the permission matrix")},
	{ErrTooManyWrites, newMessage("REQ001", TagBusy, http.StatusServiceUnavailable, "System is busy processing other changes", "Please wait a moment and try again")},
	{context.Canceled, newMessage("REQ002", TagCancelled, http.StatusBadRequest, "Request was cancelled", "Please try again")},
	{context.DeadlineExceeded, newMessage("REQ003", TagTimeout, http.StatusGatewayTimeout, "Request timed out", "Please try again later")},
}

var validationMessage = newMessage("VAL007", TagValidationFailed, http.StatusUnprocessableEntity,
	"Some fields need attention", "Correct the highlighted fields and submit again")

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

func newMessage(code, tag string, status int, message, action string) UserMessage {
	return UserMessage{Message: message, Action: action, Code: code, Tag: tag, Status: status}
}

func validationPattern(pattern, code, message, action string) errorPattern {
	return errorPattern{pattern, newMessage(code, TagValidationFailed, http.StatusUnprocessableEntity, message, action)}
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// Database constraint errors
	{"duplicate key", newMessage("DB001", TagConflict, http.StatusConflict, "A record with this ID already exists", "Refresh the table and try again")},
	{"unique constraint", newMessage("DB002", TagConflict, http.StatusConflict, "This value must be unique but already exists", "Choose a different value")},
	{"violates unique", newMessage("DB002", TagConflict, http.StatusConflict, "A duplicate value was found", "Choose a different value")},
	{"foreign key constraint", newMessage("DB003", TagConflict, http.StatusConflict, "Referenced record does not exist", "Create the referenced record first")},
	{"violates foreign key", newMessage("DB003", TagConflict, http.StatusConflict, "Referenced record does not exist", "Create the referenced record first")},

	// Database connection errors
	{"connection refused", newMessage("DB004", TagUnavailable, http.StatusServiceUnavailable, "Unable to connect to database", "Please try again in a few moments")},
	{"connection reset", newMessage("DB005", TagUnavailable, http.StatusServiceUnavailable, "Database connection was interrupted", "Please try again")},
	{"timeout", newMessage("DB006", TagTimeout, http.StatusGatewayTimeout, "Operation timed out", "Please try again later")},
	{"deadlock", newMessage("DB007", TagConflict, http.StatusConflict, "Database was busy with conflicting operations", "Please try again")},

	// Validation errors
	validationPattern("invalid date", "VAL001", "Invalid date format detected", "Use YYYY-MM-DD"),
	validationPattern("invalid number", "VAL002", "Invalid number format detected", "Use plain digits with an optional decimal point"),
	validationPattern("required field", "VAL003", "Required field is empty", "Fill in every required field"),
	validationPattern("unknown field", "VAL004", "Unknown field", "Only send fields listed in the entity schema"),
	validationPattern("invalid option", "VAL005", "Value is not in the allowed list", "Pick one of the listed options"),
	validationPattern("cannot filter by", "VAL006", "This column cannot be filtered", "Filter by a filterable column"),
	validationPattern("cannot sort by", "VAL006", "This column cannot be sorted", "Sort by a sortable column"),

	// Rate limiting
	{"rate limit", newMessage("RATE001", TagRateLimited, http.StatusTooManyRequests, "Too many requests", "Please wait a moment before trying again")},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Tag:     TagInternal,
	Status:  http.StatusInternalServerError,
}

// MapError converts a technical error to a user-friendly message.
// Sentinel errors are checked with errors.Is, then the known text patterns
// (case-insensitive). If nothing matches, the ERR000 fallback is returned.
//
// Example:
//
//	err := fmt.Errorf("get customer: %w", ErrNotFound)
//	msg := MapError(err)
//	// msg.Code == "REC001", msg.Tag == "NOT_FOUND"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	var ves ValidationErrors
	if errors.As(err, &ves) {
		if len(ves) == 1 {
			if msg, ok := matchPattern(ves[0].Message); ok {
				return msg
			}
		}
		return validationMessage
	}

	if msg, ok := matchPattern(err.Error()); ok {
		return msg
	}

	var ve ValidationError
	if errors.As(err, &ve) {
		return validationMessage
	}

	return defaultMessage
}

func matchPattern(text string) (UserMessage, bool) {
	errStr := strings.ToLower(text)
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg, true
		}
	}
	return UserMessage{}, false
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "Record not found (Code: REC001). Refresh the table, it may have been deleted"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error maps to a specific message rather than the
// generic ERR000 fallback. Use this to decide whether the raw error needs
// logging as an internal failure.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
