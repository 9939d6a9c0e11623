package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoicesxpert/backend/internal/application/invoicing"
	"github.com/invoicesxpert/backend/internal/infrastructure/ledger"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
)

// LedgerFileName is the download name of the spreadsheet ledger
const LedgerFileName = "invoices.xlsx"

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *invoicingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *invoicingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create an invoice
// @Description  Validates the invoice, assigns the next INV-<year>-<seq> number and stores it.
// @Description  Either client_id or an inline client is required.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        request body invoicingapp.InvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req invoicingapp.InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), getSession(c).OwnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Description  Newest first. search matches the invoice number and client name.
// @Tags         invoices
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        status query string false "Status filter" Enums(draft, pending, sent, paid, overdue)
// @Param        search query string false "Search text"
// @Success      200 {object} APIResponse[[]invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var req invoicingapp.ListInvoicesRequest
	if !h.bindQuery(c, &req) {
		return
	}

	page, err := h.invoiceService.List(c.Request.Context(), getSession(c).OwnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// Get godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Description  Includes the computed subtotal, tax and total.
// @Tags         invoices
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), getSession(c).OwnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Replace an invoice
// @Description  The invoice number and creation time are kept.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoicingapp.InvoiceRequest true "Invoice"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req invoicingapp.InvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), getSession(c).OwnerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// UpdateStatus godoc
// @ID           updateInvoiceStatus
// @Summary      Set the status label
// @Description  Any status can be set from any other; nothing changes status automatically.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoicingapp.UpdateStatusRequest true "Status"
// @Success      200 {object} APIResponse[invoicingapp.InvoiceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req invoicingapp.UpdateStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), getSession(c).OwnerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete an invoice
// @Tags         invoices
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), getSession(c).OwnerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Ledger godoc
// @ID           downloadInvoiceLedger
// @Summary      Download the invoice ledger
// @Description  Spreadsheet of every invoice with its totals, newest first.
// @Tags         invoices
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Success      200 {file} binary
// @Failure      500 {object} ErrorResponse
// @Router       /invoices/ledger.xlsx [get]
func (h *InvoiceHandler) Ledger(c *gin.Context) {
	data, err := h.invoiceService.Ledger(c.Request.Context(), getSession(c).OwnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", contentDisposition(LedgerFileName))
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, ledger.ContentType, data)
}
