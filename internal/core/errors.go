package core

import (
	"errors"
	"fmt"
)

// Parse failure kinds. Match with errors.Is.
var (
	ErrEmptySource       = errors.New("empty source")
	ErrMalformedSource   = errors.New("malformed source")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Upload acceptance and job errors.
var (
	ErrFileTooLarge       = errors.New("file too large")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrNoFile             = errors.New("no file provided")
	ErrJobNotFound        = errors.New("job not found")
	ErrJobNotComplete     = errors.New("job not complete")
)

// Human-readable messages shown when a parser has nothing more specific.
const (
	msgEmptySource = "The file appears to be empty"
	msgMalformed   = "Failed to process the file. Please ensure it's a valid file."
)

// ParseError reports why a source could not be turned into a dataset.
type ParseError struct {
	Kind    error  // ErrEmptySource, ErrMalformedSource or ErrUnsupportedFormat
	File    string // declared file name
	Message string // safe to show to the user
	Err     error  // underlying cause, may be nil
}

func (e *ParseError) Error() string {
	s := fmt.Sprintf("parse %s: %v: %s", e.File, e.Kind, e.Message)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// EmptySource reports input that holds no rows. An empty msg uses the
// standard wording.
func EmptySource(msg string) error {
	if msg == "" {
		msg = msgEmptySource
	}
	return &ParseError{Kind: ErrEmptySource, Message: msg}
}

// MalformedSource reports input that is present but cannot be decoded.
func MalformedSource(msg string, cause error) error {
	if msg == "" {
		msg = msgMalformed
	}
	return &ParseError{Kind: ErrMalformedSource, Message: msg, Err: cause}
}

// UnsupportedFormat reports an extension with no parser and no fallback.
func UnsupportedFormat(ext string) error {
	return &ParseError{
		Kind:    ErrUnsupportedFormat,
		Message: fmt.Sprintf("Files of type %q are not supported", ext),
	}
}

// ParseErrorMessage returns the user-facing message carried by err, or ""
// when err is not a parse failure.
func ParseErrorMessage(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return ""
}
