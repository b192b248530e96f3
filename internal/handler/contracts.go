package handler

import (
	"time"

	"github.com/iliyamo/pdfsum/internal/model"
)

// ----- request/response contracts -----
//
// Records from internal/model never cross the HTTP boundary directly; the
// shapes below decide what a client may send and what it gets back.

type UserCreate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdate is a partial update: absent fields stay nil and keep their value.
type UserUpdate struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

type PDFResponse struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	FileName    string    `json:"file_name"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

func newPDFResponse(p *model.PDF) PDFResponse {
	return PDFResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		FileName:    p.FileName,
		SizeBytes:   p.SizeBytes,
		ContentType: p.ContentType,
		CreatedAt:   p.CreatedAt,
	}
}

// SummaryRequest creates a summary. With Summary set the text is stored
// as-is; otherwise the external summarizer is asked, using Mode.
type SummaryRequest struct {
	PDFID   uint64  `json:"pdf_id"`
	Summary *string `json:"summary"`
	Mode    string  `json:"mode"`
}

type SummaryResponse struct {
	ID        uint64    `json:"id"`
	PDFID     uint64    `json:"pdf_id"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

func newSummaryResponse(s *model.Summary) SummaryResponse {
	return SummaryResponse{ID: s.ID, PDFID: s.PDFID, Summary: s.Text, CreatedAt: s.CreatedAt}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}
