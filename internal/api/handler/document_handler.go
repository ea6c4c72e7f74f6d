package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appsec-lab/gateway/internal/api/metrics"
	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

type DocumentHandler struct {
	documentService ports.DocumentService
}

func NewDocumentHandler(documentService ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

type readRequest struct {
	Filename string `json:"filename" validate:"required,max=1024"`
}

// Read returns a file below the base directory.
//
// @Summary      Read file
// @Description  The name is percent-decoded and resolved before the containment check.
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        body  body      readRequest  true  "File name relative to the base directory"
// @Success      200   {object}  domain.Document
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /read [post]
func (h *DocumentHandler) Read(c echo.Context) error {
	var req readRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidFilename
	}
	if err := c.Validate(&req); err != nil {
		return domain.ErrInvalidFilename
	}

	doc, err := h.documentService.Read(c.Request().Context(), req.Filename)
	if err != nil {
		metrics.FileRejectionsTotal.WithLabelValues("read", rejectionReason(err)).Inc()
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

// ReadAllowListed returns a file named in the allow-list.
//
// @Summary      Read allow-listed file
// @Description  Names outside the allow-list are refused without touching the filesystem.
// @Tags         files
// @Accept       json
// @Produce      json
// @Param        body  body      readRequest  true  "Allow-list key"
// @Success      200   {object}  domain.Document
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /read-no-validate [post]
func (h *DocumentHandler) ReadAllowListed(c echo.Context) error {
	var req readRequest
	// A missing or malformed body names nothing in the allow-list.
	_ = c.Bind(&req)

	doc, err := h.documentService.ReadAllowListed(c.Request().Context(), req.Filename)
	if err != nil {
		metrics.FileRejectionsTotal.WithLabelValues("read_no_validate", rejectionReason(err)).Inc()
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrPathTraversal):
		return "traversal"
	case errors.Is(err, domain.ErrFileNotAllowed):
		return "not_allowed"
	case errors.Is(err, domain.ErrInvalidFilename), errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrFileNotFound):
		return "not_found"
	default:
		return "error"
	}
}
