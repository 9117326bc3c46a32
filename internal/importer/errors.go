package importer

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable
// guidance. Codes are stable identifiers support staff can look up.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user
// messages. The first matching pattern wins, so specific patterns come
// before general ones.
var errorPatterns = []errorPattern{
	// Database constraint errors.
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this key already exists",
			Action:  "Review the failed-row report for duplicates",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check the workbook for duplicate rows",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Check the workbook for duplicate rows",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Contact support with the error code",
			Code:    "DB003",
		},
	},

	// Database connection errors.
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the record store",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Record-store connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Record store was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB006",
		},
	},

	// Cancellation.
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Import was cancelled",
			Action:  "Start a new import when ready",
			Code:    "IMP001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Import timed out",
			Action:  "Try a smaller workbook or try again later",
			Code:    "IMP002",
		},
	},

	// Workbook errors.
	{
		pattern: "zip",
		msg: UserMessage{
			Message: "The file is not a readable workbook",
			Action:  "Re-export the sheet as .xlsx and try again",
			Code:    "WBK001",
		},
	},
	{
		pattern: "no sheets",
		msg: UserMessage{
			Message: "The workbook contains no sheets",
			Action:  "Check that the export produced at least one sheet",
			Code:    "WBK002",
		},
	},
}

// defaultMessage is the ERR000 fallback; the original error stays in the
// logs for diagnosis.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. It
// searches the known patterns case-insensitively and returns the first
// match, or the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders an error for end-user display as
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
