package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/pdfsum/internal/model"
)

// SummaryRepo persists summaries. Every row references an existing pdf;
// the foreign key rejects anything else.
type SummaryRepo struct{ DB *sql.DB }

func NewSummaryRepo(db *sql.DB) *SummaryRepo { return &SummaryRepo{DB: db} }

// Create stores text as a new summary of pdfID and returns the record.
func (r *SummaryRepo) Create(ctx context.Context, pdfID uint64, text string) (*model.Summary, error) {
	s := &model.Summary{PDFID: pdfID, Text: text, CreatedAt: time.Now().UTC()}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO summaries (pdf_id, summary_text, created_at) VALUES (?,?,?)",
		s.PDFID, s.Text, s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting summary for pdf %d: %w", pdfID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	s.ID = uint64(id)
	return s, nil
}

// Latest returns the newest summary of a pdf, or ErrSummaryNotFound.
func (r *SummaryRepo) Latest(ctx context.Context, pdfID uint64) (*model.Summary, error) {
	var s model.Summary
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, pdf_id, summary_text, created_at FROM summaries
		 WHERE pdf_id = ? ORDER BY id DESC LIMIT 1`, pdfID).
		Scan(&s.ID, &s.PDFID, &s.Text, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSummaryNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByPDF returns every summary of a pdf, newest first.
func (r *SummaryRepo) ListByPDF(ctx context.Context, pdfID uint64) ([]*model.Summary, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, pdf_id, summary_text, created_at FROM summaries
		 WHERE pdf_id = ? ORDER BY id DESC`, pdfID)
	if err != nil {
		return nil, fmt.Errorf("listing summaries for pdf %d: %w", pdfID, err)
	}
	defer rows.Close()

	out := make([]*model.Summary, 0)
	for rows.Next() {
		s := new(model.Summary)
		if err := rows.Scan(&s.ID, &s.PDFID, &s.Text, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
