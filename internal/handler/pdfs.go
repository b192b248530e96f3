package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pdfsum/internal/middleware"
	"github.com/iliyamo/pdfsum/internal/model"
	"github.com/iliyamo/pdfsum/internal/queue"
	"github.com/iliyamo/pdfsum/internal/repository"
	"github.com/iliyamo/pdfsum/internal/storage"
)

const pdfContentType = "application/pdf"

// IDGenerator abstracts unique ID generation so tests are deterministic.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// UploadNotifier is told about every stored upload. Delivery failures are
// logged by the handler and never reach the client.
type UploadNotifier interface {
	PublishPDFUploaded(ctx context.Context, ev queue.PDFUploadedEvent) error
}

// PDFHandler serves upload, listing, metadata and download of documents.
type PDFHandler struct {
	PDFs           *repository.PDFRepo
	Blobs          storage.Store
	IDs            IDGenerator
	Events         UploadNotifier // nil disables events
	DefaultOwnerID uint64
	PageLimitMax   int
	Log            *slog.Logger
}

// Upload handles POST /pdf/upload with the document in multipart field
// "file". The blob is written first; if the metadata insert then fails the
// blob is removed again.
func (h *PDFHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			return errorJSON(c, http.StatusRequestEntityTooLarge, "file too large")
		}
		return errorJSON(c, http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		h.Log.Error("open upload failed", "err", err)
		return errorJSON(c, http.StatusInternalServerError, "could not read upload")
	}
	defer src.Close()

	ctx := c.Request().Context()
	key := h.IDs.New() + ".pdf"
	size, err := h.Blobs.Put(ctx, key, src)
	if err != nil {
		if isTooLarge(err) {
			return errorJSON(c, http.StatusRequestEntityTooLarge, "file too large")
		}
		h.Log.Error("store blob failed", "key", key, "err", err)
		return errorJSON(c, http.StatusInternalServerError, "could not store file")
	}

	owner := h.DefaultOwnerID
	if uid, ok := middleware.UserID(c); ok {
		owner = uid
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = pdfContentType
	}
	p := &model.PDF{
		UserID:      owner,
		FileName:    fh.Filename,
		StoragePath: key,
		SizeBytes:   size,
		ContentType: contentType,
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()
	if err := h.PDFs.Create(dbCtx, p); err != nil {
		h.Log.Error("insert pdf failed", "key", key, "err", err)
		if derr := h.Blobs.Delete(context.WithoutCancel(ctx), key); derr != nil {
			h.Log.Warn("orphaned blob", "key", key, "err", derr)
		}
		return errorJSON(c, http.StatusInternalServerError, "could not save metadata")
	}
	h.Log.Info("pdf uploaded", "pdf_id", p.ID, "file_name", p.FileName, "size_bytes", size)

	h.notify(ctx, p)
	return c.JSON(http.StatusOK, newPDFResponse(p))
}

func (h *PDFHandler) notify(ctx context.Context, p *model.PDF) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	err := h.Events.PublishPDFUploaded(ctx, queue.PDFUploadedEvent{
		PDFID:      p.ID,
		UserID:     p.UserID,
		FileName:   p.FileName,
		SizeBytes:  p.SizeBytes,
		UploadedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.Log.Warn("publish pdf.uploaded failed", "pdf_id", p.ID, "err", err)
	}
}

// List handles GET /pdf?skip=&limit=.
func (h *PDFHandler) List(c echo.Context) error {
	skip, limit, err := parsePage(c, h.PageLimitMax)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	pdfs, err := h.PDFs.List(ctx, skip, limit)
	if err != nil {
		h.Log.Error("list pdfs failed", "err", err)
		return errorJSON(c, http.StatusInternalServerError, "list pdfs failed")
	}
	out := make([]PDFResponse, 0, len(pdfs))
	for _, p := range pdfs {
		out = append(out, newPDFResponse(p))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /pdf/:id.
func (h *PDFHandler) Get(c echo.Context) error {
	p, err := h.lookup(c)
	if err != nil || p == nil {
		return err
	}
	return c.JSON(http.StatusOK, newPDFResponse(p))
}

// Download handles GET /pdf/:id/download and streams the stored bytes back
// under the original filename.
func (h *PDFHandler) Download(c echo.Context) error {
	p, err := h.lookup(c)
	if err != nil || p == nil {
		return err
	}

	rc, err := h.Blobs.Open(c.Request().Context(), p.StoragePath)
	if err != nil {
		h.Log.Error("open blob failed", "pdf_id", p.ID, "key", p.StoragePath, "err", err)
		return errorJSON(c, http.StatusInternalServerError, "pdf content unavailable")
	}
	defer rc.Close()

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": p.FileName})
	if disposition == "" {
		disposition = `attachment; filename="document.pdf"`
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return c.Stream(http.StatusOK, pdfContentType, rc)
}

// lookup resolves :id to a PDF. When it returns (nil, nil) the error
// response has already been written.
func (h *PDFHandler) lookup(c echo.Context) (*model.PDF, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, errorJSON(c, http.StatusBadRequest, "invalid id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	p, err := h.PDFs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPDFNotFound) {
			return nil, errorJSON(c, http.StatusNotFound, repository.ErrPDFNotFound.Error())
		}
		h.Log.Error("get pdf failed", "pdf_id", id, "err", err)
		return nil, errorJSON(c, http.StatusInternalServerError, "get pdf failed")
	}
	return p, nil
}
