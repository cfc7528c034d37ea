package export

// # Error Codes Reference
//
// Export failures are mapped to a support code, a short message and a
// suggested action. Typed errors are matched first with errors.As/Is; store
// errors fall back to case-insensitive substring patterns.
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Mapping failed: A stored record could not be converted
//	         Action: Check the record named in the server log
//	EXP002 - Bad configuration: Export was misconfigured
//	         Action: Check EXPORT_PAGE_SIZE and the requested strategy
//	EXP003 - Release failed: The database cursor could not be released
//	         Action: No data was lost; report if it keeps happening
//	EXP004 - System busy: Too many exports in progress
//	         Action: Please wait a moment and try again
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused          Patterns: "connection refused"
//	DB005 - Connection reset            Patterns: "connection reset"
//	DB006 - Timeout                     Patterns: "timeout"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled          context.Canceled
//	REQ002 - Request timeout            context.DeadlineExceeded
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the application log for the
// technical error.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage is the user-facing rendering of an error.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

var (
	msgMapping = UserMessage{
		Message: "A stored record could not be converted",
		Action:  "Check the record named in the server log",
		Code:    "EXP001",
	}
	msgConfiguration = UserMessage{
		Message: "Export was misconfigured",
		Action:  "Check EXPORT_PAGE_SIZE and the requested strategy",
		Code:    "EXP002",
	}
	msgRelease = UserMessage{
		Message: "The database cursor could not be released",
		Action:  "No data was lost; report if it keeps happening",
		Code:    "EXP003",
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other exports",
		Action:  "Please wait a moment and try again",
		Code:    "EXP004",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}
	msgDeadline = UserMessage{
		Message: "Request timed out",
		Action:  "Try the paginated export or try again later",
		Code:    "REQ002",
	}
)

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// First match wins.
var errorPatterns = []errorPattern{
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-facing message. A nil error
// maps to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		mapErr *MappingError
		cfgErr *ConfigurationError
		relErr *ResourceReleaseError
	)
	switch {
	case errors.As(err, &mapErr):
		return msgMapping
	case errors.As(err, &cfgErr):
		return msgConfiguration
	case errors.As(err, &relErr):
		return msgRelease
	case errors.Is(err, ErrTooManyExports):
		return msgBusy
	case errors.Is(err, context.Canceled):
		return msgCancelled
	case errors.Is(err, context.DeadlineExceeded):
		return msgDeadline
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
