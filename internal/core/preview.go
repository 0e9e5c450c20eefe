package core

import (
	"time"
)

// DefaultPreviewRows is how many rows Preview returns when asked for none.
const DefaultPreviewRows = 10

// PreviewResponse shows what the parser made of an upload before it is
// formatted.
type PreviewResponse struct {
	FileName         string          `json:"file_name"`
	Format           string          `json:"format"`
	Headers          []string        `json:"headers"`
	Rows             []Row           `json:"rows"`
	TotalRows        int             `json:"total_rows"`
	Columns          []ColumnSummary `json:"columns"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
}

// Preview parses src and returns its first n rows with a column summary.
// Nothing is transformed or stored.
func (s *Service) Preview(src Source, n int) (*PreviewResponse, error) {
	if err := s.CheckUpload(src.Name, src.ContentType, int64(len(src.Data))); err != nil {
		return nil, err
	}
	return PreviewSource(src, n)
}

// PreviewSource is Preview without the upload checks.
func PreviewSource(src Source, n int) (*PreviewResponse, error) {
	start := time.Now()

	ds, err := Parse(src)
	if err != nil {
		return nil, err
	}

	if n <= 0 {
		n = DefaultPreviewRows
	}
	if n > len(ds.Rows) {
		n = len(ds.Rows)
	}

	format := "metadata"
	if f, ok := LookupFormat(src.Ext()); ok {
		format = f.Name
	}

	return &PreviewResponse{
		FileName:         src.Name,
		Format:           format,
		Headers:          ds.Headers,
		Rows:             cloneRows(ds.Rows[:n]),
		TotalRows:        len(ds.Rows),
		Columns:          Summarize(ds),
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}
