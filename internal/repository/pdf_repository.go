package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/pdfsum/internal/model"
)

const pdfColumns = "id, user_id, file_name, storage_path, size_bytes, content_type, created_at"

// PDFRepo encapsulates all database queries related to uploaded documents.
type PDFRepo struct{ DB *sql.DB }

func NewPDFRepo(db *sql.DB) *PDFRepo {
	return &PDFRepo{DB: db}
}

// Create inserts the metadata row. On success p.ID and p.CreatedAt are set.
func (r *PDFRepo) Create(ctx context.Context, p *model.PDF) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO pdfs (user_id, file_name, storage_path, size_bytes, content_type, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.UserID, p.FileName, p.StoragePath, p.SizeBytes, p.ContentType, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting pdf: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByID returns ErrPDFNotFound if no row is found.
func (r *PDFRepo) GetByID(ctx context.Context, id uint64) (*model.PDF, error) {
	var p model.PDF
	err := r.DB.QueryRowContext(ctx, "SELECT "+pdfColumns+" FROM pdfs WHERE id = ?", id).
		Scan(&p.ID, &p.UserID, &p.FileName, &p.StoragePath, &p.SizeBytes, &p.ContentType, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPDFNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns one page of pdf metadata ordered by id.
func (r *PDFRepo) List(ctx context.Context, skip, limit int) ([]*model.PDF, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+pdfColumns+" FROM pdfs ORDER BY id LIMIT ? OFFSET ?", limit, skip)
	if err != nil {
		return nil, fmt.Errorf("listing pdfs: %w", err)
	}
	defer rows.Close()

	out := make([]*model.PDF, 0)
	for rows.Next() {
		p := new(model.PDF)
		if err := rows.Scan(&p.ID, &p.UserID, &p.FileName, &p.StoragePath, &p.SizeBytes, &p.ContentType, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
