package model

import "time"

// Summary is a text summary derived from one PDF (`summaries` table).
// A PDF may have many summaries; the newest one is its current summary.
type Summary struct {
	ID        uint64    // summaries.id
	PDFID     uint64    // summaries.pdf_id (references pdfs.id)
	Text      string    // summaries.summary_text
	CreatedAt time.Time // summaries.created_at
}
