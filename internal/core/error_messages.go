package core

// error_messages.go: error codes reference
//
// This file defines user-friendly error messages with codes for support
// reference. Users can quote the code shown next to a failed upload.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: the upload exceeds the configured size ceiling
//	          Patterns: "file too large"
//
//	FILE002 - Unreadable file: content present but not decodable as its type
//	          Patterns: "malformed source"
//
//	FILE003 - Encoding error: the file contains invalid characters
//	          Patterns: "encoding error"
//
//	FILE004 - No file: nothing was attached to the request
//	          Patterns: "no file provided"
//
//	FILE005 - Empty file: the file parsed to zero data rows
//	          Patterns: "empty source"
//
//	FILE006 - Unsupported format: no parser handles the extension
//	          Patterns: "unsupported format"
//
//	FILE007 - Type not allowed: the extension is outside the upload allow-list
//	          Patterns: "file type not allowed"
//
// Parse failures (FILE002, FILE005, FILE006) carry their own message from the
// parser, e.g. "JSON file must contain an array of objects"; MapError prefers
// that message over the generic one below.
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL001 - Still processing: download requested before the job finished
//	UPL002 - System busy: every processing slot is taken
//	UPL003 - Job not found: the job expired or was deleted
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// # Remote Processing Errors (REM001-REM099)
//
//	REM001 - Remote rejected: the processing service refused the file (4xx)
//	REM002 - Remote unavailable: the processing service failed after retries
//
// # Access and Rate Limiting
//
//	AUTH001 - Invalid access key
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error when users report ERR000.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are listed
// before general ones.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// To add a pattern, pick the code range, insert it specific-before-general,
// and list it in the reference at the top of this file.
var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "empty source",
		msg: UserMessage{
			Message: "The file appears to be empty",
			Action:  "Upload a file that contains at least one data row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "malformed source",
		msg: UserMessage{
			Message: "Failed to process the file",
			Action:  "Please ensure it's a valid file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported format",
		msg: UserMessage{
			Message: "This file type cannot be processed",
			Action:  "Upload an Excel, CSV, JSON or text file",
			Code:    "FILE006",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Remove unused rows or split the file and try again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "file type not allowed",
		msg: UserMessage{
			Message: "Only Excel (.xlsx, .xls) and CSV files are accepted",
			Action:  "Save the file in one of the accepted formats",
			Code:    "FILE007",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please choose a file to format",
			Code:    "FILE004",
		},
	},

	// Remote processing errors
	{
		pattern: "remote processor rejected",
		msg: UserMessage{
			Message: "The processing service rejected the file",
			Action:  "Check the file type and contents, then try again",
			Code:    "REM001",
		},
	},
	{
		pattern: "remote processor unavailable",
		msg: UserMessage{
			Message: "The processing service is unavailable",
			Action:  "Please try again in a few moments",
			Code:    "REM002",
		},
	},

	// Upload and job errors
	{
		pattern: "job not complete",
		msg: UserMessage{
			Message: "The file is still being processed",
			Action:  "Wait for processing to finish before downloading",
			Code:    "UPL001",
		},
	},
	{
		pattern: "too many uploads",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "job not found",
		msg: UserMessage{
			Message: "Formatted file not found",
			Action:  "The file may have expired. Please upload it again",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// Access and rate limiting
	{
		pattern: "invalid access key",
		msg: UserMessage{
			Message: "Incorrect access key",
			Action:  "Enter the access key provided by your administrator",
			Code:    "AUTH001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Parse failures keep the parser's own wording; everything else is matched
// against the known patterns, falling back to ERR000.
//
// Example:
//
//	msg := MapError(err) // err wraps ErrEmptySource
//	// msg.Code == "FILE005"
//	// msg.Message == "The file appears to be empty"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	msg := defaultMessage
	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			msg = ep.msg
			break
		}
	}

	var pe *ParseError
	if errors.As(err, &pe) && pe.Message != "" && pe.Message != msgMalformed {
		msg.Message = strings.TrimSuffix(pe.Message, ".")
	}

	return msg
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The file appears to be empty (Code: FILE005). Upload a file that contains at least one data row"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
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

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
