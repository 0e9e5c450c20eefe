// Package core turns uploaded spreadsheets into formatted workbooks.
//
// This package holds all formatting logic independent of any UI or transport
// layer. It is used by the web handlers and the formatctl CLI alike.
//
// # Pipeline
//
// Formatting is three pure steps:
//
//  1. [Parse] decodes a [Source] into a [Dataset] of typed cells. The parser
//     is chosen by file extension from the format registry; extensions with
//     no parser produce a two-column table describing the file instead.
//  2. [Transform] applies the enabled [FormattingOptions] in a fixed order:
//     clean, standardize headers, remove empty rows, format dates.
//  3. [Serialize] writes the result to a single-sheet workbook named
//     "<base>_formatted.xlsx".
//
// [Pipeline.Run] chains the three. A parse failure stops the run and nothing
// is serialized.
//
// # Format Registry
//
// Parsers are registered at init time using [RegisterFormat]; the formats
// subpackage registers the built-in ones:
//
//	core.RegisterFormat(core.Format{
//	    Name:       "csv",
//	    Extensions: []string{".csv"},
//	    Parse:      parseCSV,
//	})
//
// # Jobs
//
// [Service] wraps a [Processor] (the local pipeline or a remote formatting
// service) with upload acceptance checks, a concurrency limit, job tracking
// and in-memory retention of results. Job state follows the upload flow in
// the application package.
//
// # Error Handling
//
// Parse failures are [ParseError] values matching [ErrEmptySource],
// [ErrMalformedSource] or [ErrUnsupportedFormat] with errors.Is. Technical
// errors are mapped to user-friendly messages using [MapError]; each
// category has a code for support reference:
//
//   - FILE001-FILE007: File errors (size, type, encoding, content)
//   - UPL001-UPL005: Job errors (busy, not found, cancelled, timeout)
//   - REM001-REM002: Remote processing errors
//   - AUTH001, RATE001: Access and rate limiting
package core
