package services

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDFPageCount probes a locally mirrored PDF for its page count, which the
// viewer uses for per-page progress detail. Remote-only PDFs simply have no
// page count.
func PDFPageCount(path string) (int, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	return r.NumPage(), nil
}
