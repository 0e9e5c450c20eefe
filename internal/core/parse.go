package core

import (
	"errors"
	"log/slog"
)

// Parse turns a raw file into a dataset. The parser is chosen by the
// lower-cased extension of src.Name; extensions with no registered format
// produce a metadata table instead of failing.
//
// A source that yields no data rows fails with ErrEmptySource. The returned
// dataset carries an independent snapshot of its rows.
func Parse(src Source) (*Dataset, error) {
	ext := src.Ext()

	f, ok := LookupFormat(ext)
	if !ok {
		slog.Debug("no parser for extension, describing file instead", "file", src.Name, "ext", ext)
		return describe(src), nil
	}

	headers, rows, err := f.Parse(src)
	if err != nil {
		return nil, attachFile(err, src.Name)
	}
	if len(rows) == 0 {
		return nil, attachFile(EmptySource(""), src.Name)
	}
	if headers == nil {
		headers = []string{}
	}

	slog.Debug("parsed source", "file", src.Name, "format", f.Name, "columns", len(headers), "rows", len(rows))
	return NewDataset(headers, rows), nil
}

// attachFile records the file name on a parse failure, treating any
// non-ParseError from a format as malformed input.
func attachFile(err error, name string) error {
	var pe *ParseError
	if !errors.As(err, &pe) {
		pe = MalformedSource("", err).(*ParseError)
		err = pe
	}
	pe.File = name
	return err
}
