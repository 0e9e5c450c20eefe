package core

// text.go turns raw upload bytes into clean UTF-8 for the text-based parsers.
//
// A byte order mark selects the encoding: UTF-16 files saved by Excel on
// Windows are transcoded and the UTF-8 BOM is dropped. Input without a BOM is
// read as UTF-8. Invalid sequences become U+FFFD.

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NewTextReader wraps r so that it yields BOM-free, valid UTF-8.
func NewTextReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// DecodeText decodes data with NewTextReader.
func DecodeText(data []byte) (string, error) {
	out, err := io.ReadAll(NewTextReader(bytes.NewReader(data)))
	if err != nil {
		return "", fmt.Errorf("encoding error: %w", err)
	}
	return string(out), nil
}
