package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ParseFunc decodes a source into headers and data rows. Failures should be
// built with EmptySource or MalformedSource.
type ParseFunc func(src Source) (headers []string, rows []Row, err error)

// Format describes a family of input files handled by one parser.
type Format struct {
	Name       string   // short label, e.g. "workbook"
	Extensions []string // lower-case, with leading dot
	Parse      ParseFunc
}

var (
	formats   = make(map[string]Format) // by extension
	formatsMu sync.RWMutex
)

// RegisterFormat makes a format available to Parse.
// Panics if one of its extensions is already registered.
func RegisterFormat(f Format) {
	formatsMu.Lock()
	defer formatsMu.Unlock()

	for _, ext := range f.Extensions {
		ext = strings.ToLower(ext)
		if existing, exists := formats[ext]; exists {
			panic(fmt.Sprintf("extension %s already registered by %s", ext, existing.Name))
		}
		formats[ext] = f
	}
}

// LookupFormat returns the format handling ext.
func LookupFormat(ext string) (Format, bool) {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	f, ok := formats[strings.ToLower(ext)]
	return f, ok
}

// Extensions returns every registered extension, sorted.
func Extensions() []string {
	formatsMu.RLock()
	defer formatsMu.RUnlock()

	exts := make([]string, 0, len(formats))
	for ext := range formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
