package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pdfsum/internal/model"
	"github.com/iliyamo/pdfsum/internal/repository"
	"github.com/iliyamo/pdfsum/internal/service"
)

type SummaryHandler struct {
	Summaries *service.SummaryService
	Log       *slog.Logger
}

// Create handles POST /summary. A supplied summary text is stored as-is;
// without one the external summarizer produces it.
func (h *SummaryHandler) Create(c echo.Context) error {
	var req SummaryRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.PDFID == 0 {
		return errorJSON(c, http.StatusBadRequest, "pdf_id is required")
	}

	ctx := c.Request().Context()
	var (
		s   *model.Summary
		err error
	)
	if req.Summary != nil {
		if *req.Summary == "" {
			return errorJSON(c, http.StatusBadRequest, "summary must not be empty")
		}
		s, err = h.Summaries.Save(ctx, req.PDFID, *req.Summary)
	} else {
		s, err = h.Summaries.Generate(ctx, req.PDFID, req.Mode)
	}
	if err != nil {
		return h.summaryError(c, err)
	}
	return c.JSON(http.StatusOK, newSummaryResponse(s))
}

// Latest handles GET /summary/:pdf_id.
func (h *SummaryHandler) Latest(c echo.Context) error {
	pdfID, ok := parseID(c, "pdf_id")
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid pdf_id")
	}
	s, err := h.Summaries.Latest(c.Request().Context(), pdfID)
	if err != nil {
		return h.summaryError(c, err)
	}
	return c.JSON(http.StatusOK, newSummaryResponse(s))
}

// ListForPDF handles GET /pdf/:id/summaries, newest first.
func (h *SummaryHandler) ListForPDF(c echo.Context) error {
	pdfID, ok := parseID(c, "id")
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}
	list, err := h.Summaries.List(c.Request().Context(), pdfID)
	if err != nil {
		return h.summaryError(c, err)
	}
	out := make([]SummaryResponse, 0, len(list))
	for _, s := range list {
		out = append(out, newSummaryResponse(s))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *SummaryHandler) summaryError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrPDFNotFound):
		return errorJSON(c, http.StatusNotFound, repository.ErrPDFNotFound.Error())
	case errors.Is(err, repository.ErrSummaryNotFound):
		return errorJSON(c, http.StatusNotFound, repository.ErrSummaryNotFound.Error())
	case errors.Is(err, service.ErrSummarizerUnavailable):
		return errorJSON(c, http.StatusServiceUnavailable, service.ErrSummarizerUnavailable.Error())
	case errors.Is(err, service.ErrSummarizationFailed):
		return errorJSON(c, http.StatusBadGateway, service.ErrSummarizationFailed.Error())
	case errors.Is(err, service.ErrContentUnavailable):
		h.Log.Error("summary source missing", "err", err)
		return errorJSON(c, http.StatusInternalServerError, service.ErrContentUnavailable.Error())
	}
	h.Log.Error("summary request failed", "err", err)
	return errorJSON(c, http.StatusInternalServerError, "summary request failed")
}
