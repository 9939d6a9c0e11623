package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	printingapp "github.com/invoicesxpert/backend/internal/application/printing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/infrastructure/logger"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ExportHandler serves PDF exports and their job records
type ExportHandler struct {
	BaseHandler
	exportService *printingapp.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *printingapp.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// DownloadPDF godoc
//
//	@ID				downloadInvoicePDF
//
//	@Summary		Export an invoice as PDF
//	@Description	Renders the invoice in its style (or the template query parameter),
//	@Description	captures it in headless Chrome and returns an A4 PDF as an attachment
//	@Description	named Invoice-<number>.pdf. Exports of the same invoice queue.
//	@Tags			exports
//	@Produce		application/pdf
//	@Param			X-Owner-ID	header		string	false	"Owner ID"	default(local)
//	@Param			id			path		string	true	"Invoice ID"	format(uuid)
//	@Param			template	query		string	false	"Template key"
//	@Success		200			{file}		binary
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		409			{object}	ErrorResponse
//	@Failure		429			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/invoices/{id}/pdf [get]
func (h *ExportHandler) DownloadPDF(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	req := printingapp.ExportRequest{InvoiceID: id, Template: c.Query("template")}

	ctx := c.Request.Context()
	result, err := h.exportService.Export(ctx, getSession(c).OwnerID, req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(result.FileName))
	c.Header("Content-Length", strconv.Itoa(result.Size()))
	c.Header("X-Export-ID", result.Job.ID.String())
	c.Data(http.StatusOK, result.ContentType, result.PDF)

	// the bytes are with the client; the buffer can go
	job := result.Job
	result.PDF = nil
	if err := h.exportService.MarkDownloaded(context.WithoutCancel(ctx), job); err != nil {
		logger.GetGinLogger(c).Warn("failed to mark export downloaded",
			zap.String("export_id", job.ID.String()), zap.Error(err))
	}
}

// handleExportError keeps domain codes and reports any other pipeline
// failure with the generic export message.
func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) || errors.Is(err, context.Canceled) {
		h.HandleError(c, err)
		return
	}
	logger.GetGinLogger(c).Error("invoice export failed", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeExportFailed, dto.UserMessage(dto.ErrCodeExportFailed, ""))
}

// GetJob godoc
//
//	@ID				getExportJob
//
//	@Summary		Get an export job
//	@Description	Status, page count and failure stage of one export
//	@Tags			exports
//	@Produce		json
//	@Param			X-Owner-ID	header		string	false	"Owner ID"	default(local)
//	@Param			id			path		string	true	"Export ID"	format(uuid)
//	@Success		200			{object}	APIResponse[printingapp.ExportJobResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Router			/exports/{id} [get]
func (h *ExportHandler) GetJob(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	job, err := h.exportService.GetJob(c.Request.Context(), getSession(c).OwnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, job)
}

// ListJobs godoc
//
//	@ID				listInvoiceExports
//
//	@Summary		List the exports of an invoice
//	@Description	Newest first
//	@Tags			exports
//	@Produce		json
//	@Param			X-Owner-ID	header		string	false	"Owner ID"	default(local)
//	@Param			id			path		string	true	"Invoice ID"	format(uuid)
//	@Success		200			{object}	APIResponse[[]printingapp.ExportJobResponse]
//	@Failure		400			{object}	ErrorResponse
//	@Router			/invoices/{id}/exports [get]
func (h *ExportHandler) ListJobs(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	jobs, err := h.exportService.ListJobs(c.Request.Context(), getSession(c).OwnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, jobs)
}
