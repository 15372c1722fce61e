package ingestion

import "fmt"

// UnsupportedFormatError is returned for documents that cannot be read.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format == "" {
		return "unsupported document format (supported: txt, md, html, pdf, docx)"
	}
	return fmt.Sprintf("unsupported document format %q (supported: txt, md, html, pdf, docx)", e.Format)
}
