// Package queue defines message payloads exchanged over the message broker
// and the worker that consumes them.
package queue

// PDFUploadedQueue is the durable queue that carries PDFUploadedEvent.
const PDFUploadedQueue = "pdf.uploaded"

// PDFUploadedEvent is published after a document and its metadata row are
// stored. It carries enough for a consumer to act without re-reading the
// upload request.
type PDFUploadedEvent struct {
	PDFID      uint64 `json:"pdf_id"`
	UserID     uint64 `json:"user_id"`
	FileName   string `json:"file_name"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedAt string `json:"uploaded_at"`
}
