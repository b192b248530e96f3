// Package service holds the summary workflow shared by the HTTP handlers and
// the background worker.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/pdfsum/internal/model"
	"github.com/iliyamo/pdfsum/internal/storage"
	"github.com/iliyamo/pdfsum/internal/summarizer"
)

var (
	// ErrSummarizerUnavailable means no external summarizer is configured.
	ErrSummarizerUnavailable = errors.New("summarizer not configured")
	// ErrSummarizationFailed wraps any failure of the external summarizer.
	ErrSummarizationFailed = errors.New("summarization failed")
	// ErrContentUnavailable means the metadata row exists but its blob does not.
	ErrContentUnavailable = errors.New("pdf content unavailable")
)

type PDFReader interface {
	GetByID(ctx context.Context, id uint64) (*model.PDF, error)
}

type SummaryStore interface {
	Create(ctx context.Context, pdfID uint64, text string) (*model.Summary, error)
	Latest(ctx context.Context, pdfID uint64) (*model.Summary, error)
	ListByPDF(ctx context.Context, pdfID uint64) ([]*model.Summary, error)
}

// SummaryService creates and reads summaries. Every operation first checks
// that the document exists and returns repository.ErrPDFNotFound otherwise.
type SummaryService struct {
	PDFs       PDFReader
	Summaries  SummaryStore
	Blobs      storage.Store
	Summarizer summarizer.Summarizer // nil when not configured
	Log        *slog.Logger
}

// Save stores a client-supplied summary text as-is.
func (s *SummaryService) Save(ctx context.Context, pdfID uint64, text string) (*model.Summary, error) {
	if _, err := s.PDFs.GetByID(ctx, pdfID); err != nil {
		return nil, err
	}
	return s.Summaries.Create(ctx, pdfID, text)
}

// Generate streams the stored document to the external summarizer and
// persists the text it returns.
func (s *SummaryService) Generate(ctx context.Context, pdfID uint64, mode string) (*model.Summary, error) {
	p, err := s.PDFs.GetByID(ctx, pdfID)
	if err != nil {
		return nil, err
	}
	if s.Summarizer == nil {
		return nil, ErrSummarizerUnavailable
	}

	rc, err := s.Blobs.Open(ctx, p.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrContentUnavailable, p.StoragePath)
		}
		return nil, err
	}
	defer rc.Close()

	start := time.Now()
	resp, err := s.Summarizer.Summarize(ctx, p.FileName, rc, mode)
	if err != nil {
		s.Log.Error("summarizer call failed", "pdf_id", pdfID, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}
	s.Log.Info("summary generated",
		"pdf_id", pdfID,
		"elapsed", time.Since(start),
		"process_time_ms", resp.ProcessTimeMs)

	return s.Summaries.Create(ctx, pdfID, resp.Summary)
}

// Latest returns the most recent summary of a document.
func (s *SummaryService) Latest(ctx context.Context, pdfID uint64) (*model.Summary, error) {
	if _, err := s.PDFs.GetByID(ctx, pdfID); err != nil {
		return nil, err
	}
	return s.Summaries.Latest(ctx, pdfID)
}

// List returns every summary of a document, newest first.
func (s *SummaryService) List(ctx context.Context, pdfID uint64) ([]*model.Summary, error) {
	if _, err := s.PDFs.GetByID(ctx, pdfID); err != nil {
		return nil, err
	}
	return s.Summaries.ListByPDF(ctx, pdfID)
}
