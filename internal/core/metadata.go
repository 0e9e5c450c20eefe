package core

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

const (
	metadataStatus    = "File uploaded successfully - content extraction not available for this file type"
	modTimeLayout     = "1/2/2006, 3:04:05 PM"
	unknownValue      = "Unknown"
	genericBinaryMIME = "application/octet-stream"
)

// describe builds the Property/Value table used for files whose content is
// not extracted. It never fails.
func describe(src Source) *Dataset {
	modified := unknownValue
	if !src.ModTime.IsZero() {
		modified = src.ModTime.Format(modTimeLayout)
	}

	rows := []Row{
		{Str("File Name"), Str(src.Name)},
		{Str("File Size"), Str(fmt.Sprintf("%.2f KB", float64(len(src.Data))/1024))},
		{Str("File Type"), Str(mimeType(src))},
		{Str("Last Modified"), Str(modified)},
		{Str("Status"), Str(metadataStatus)},
	}
	return NewDataset([]string{"Property", "Value"}, rows)
}

// mimeType prefers the declared content type and falls back to sniffing.
func mimeType(src Source) string {
	if src.ContentType != "" && src.ContentType != genericBinaryMIME {
		return src.ContentType
	}
	if len(src.Data) == 0 {
		return unknownValue
	}
	if m := mimetype.Detect(src.Data); m.String() != genericBinaryMIME {
		return m.String()
	}
	return unknownValue
}
