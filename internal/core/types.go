package core

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// CellKind identifies which variant a Cell holds.
type CellKind uint8

const (
	KindEmpty CellKind = iota // absent value, e.g. a missing JSON key or a blank sheet cell
	KindNull                  // explicit null
	KindString
	KindNumber
	KindBool
)

func (k CellKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Cell is a single tabular value. The zero Cell is Empty.
type Cell struct {
	kind CellKind
	str  string
	num  float64
	b    bool
}

// Empty returns an absent cell.
func Empty() Cell { return Cell{} }

// Null returns an explicit null cell.
func Null() Cell { return Cell{kind: KindNull} }

// Str returns a string cell.
func Str(s string) Cell { return Cell{kind: KindString, str: s} }

// Num returns a numeric cell.
func Num(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{kind: KindBool, b: b} }

// Kind reports the variant held by c.
func (c Cell) Kind() CellKind { return c.kind }

// Text returns the string value and whether c is a string cell.
func (c Cell) Text() (string, bool) { return c.str, c.kind == KindString }

// Number returns the numeric value and whether c is a number cell.
func (c Cell) Number() (float64, bool) { return c.num, c.kind == KindNumber }

// Boolean returns the boolean value and whether c is a bool cell.
func (c Cell) Boolean() (bool, bool) { return c.b, c.kind == KindBool }

// IsBlank reports whether c is Empty, Null or the empty string.
func (c Cell) IsBlank() bool {
	switch c.kind {
	case KindEmpty, KindNull:
		return true
	case KindString:
		return c.str == ""
	default:
		return false
	}
}

// String renders c for display. Empty and Null render as "".
func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.str
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.b)
	default:
		return ""
	}
}

// MarshalJSON encodes Empty and Null as null and everything else natively.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case KindString:
		return json.Marshal(c.str)
	case KindNumber:
		return json.Marshal(c.num)
	case KindBool:
		return json.Marshal(c.b)
	default:
		return []byte("null"), nil
	}
}

// Row is an ordered sequence of cells. Rows may be shorter or longer than
// the header list.
type Row []Cell

// At returns the cell at column i, or Empty when the row is too short.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Empty()
	}
	return r[i]
}

// IsBlank reports whether every cell in the row is blank. A row with no
// cells is blank.
func (r Row) IsBlank() bool {
	for _, c := range r {
		if !c.IsBlank() {
			return false
		}
	}
	return true
}

func (r Row) clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = r.clone()
	}
	return out
}

// Snapshot is the immutable copy of a dataset's rows taken at parse time.
type Snapshot struct {
	rows []Row
}

// Len returns the number of rows in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rows)
}

// Rows returns a copy of the snapshot rows; callers may modify it freely.
func (s *Snapshot) Rows() []Row {
	if s == nil {
		return nil
	}
	return cloneRows(s.rows)
}

// Dataset is the headers-plus-rows model every stage of the pipeline
// operates on. Column identity is positional.
type Dataset struct {
	Headers []string
	Rows    []Row

	original *Snapshot
}

// NewDataset builds a dataset and takes an independent snapshot of rows.
func NewDataset(headers []string, rows []Row) *Dataset {
	return &Dataset{
		Headers:  headers,
		Rows:     rows,
		original: &Snapshot{rows: cloneRows(rows)},
	}
}

// Original returns the parse-time snapshot. Derived datasets share it.
func (d *Dataset) Original() *Snapshot { return d.original }

// Width returns the widest of the header list and every row.
func (d *Dataset) Width() int {
	w := len(d.Headers)
	for _, r := range d.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// derive returns a dataset with new contents and the same snapshot.
func (d *Dataset) derive(headers []string, rows []Row) *Dataset {
	return &Dataset{Headers: headers, Rows: rows, original: d.original}
}

// FormattingOptions selects which transform rules run. The core imposes no
// defaults; callers pass a complete record.
type FormattingOptions struct {
	CleanData          bool   `json:"cleanData" toml:"clean_data"`
	StandardizeHeaders bool   `json:"standardizeHeaders" toml:"standardize_headers"`
	RemoveEmpty        bool   `json:"removeEmpty" toml:"remove_empty"`
	FormatDates        bool   `json:"formatDates" toml:"format_dates"`
	AddSummary         bool   `json:"addSummary" toml:"add_summary"`
	CustomPrompt       string `json:"customPrompt" toml:"custom_prompt"`
}

// DefaultOptions is the option set the upload form starts with.
func DefaultOptions() FormattingOptions {
	return FormattingOptions{
		CleanData:          true,
		StandardizeHeaders: true,
		RemoveEmpty:        true,
		FormatDates:        true,
	}
}

// Source is a raw file as submitted by a user.
type Source struct {
	Name        string
	Data        []byte
	ContentType string    // declared MIME type, may be empty
	ModTime     time.Time // zero when unknown
}

// Ext returns the lower-cased extension including the dot, or "".
func (s Source) Ext() string {
	return strings.ToLower(filepath.Ext(s.Name))
}

// Artifact is a serialized workbook ready for download.
type Artifact struct {
	Name        string
	Data        []byte
	ContentType string
	Rows        int
}
