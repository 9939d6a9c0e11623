package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	printingapp "github.com/invoicesxpert/backend/internal/application/printing"
)

// TemplateHandler serves the template gallery and previews
type TemplateHandler struct {
	BaseHandler
	catalogService *printingapp.CatalogService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(catalogService *printingapp.CatalogService) *TemplateHandler {
	return &TemplateHandler{catalogService: catalogService}
}

// List godoc
// @ID           listTemplates
// @Summary      List invoice templates
// @Description  Gallery entries with description and thumbnail
// @Tags         templates
// @Produce      json
// @Success      200 {object} APIResponse[[]printing.CatalogEntry]
// @Router       /templates [get]
func (h *TemplateHandler) List(c *gin.Context) {
	h.Success(c, h.catalogService.Templates())
}

// Options godoc
// @ID           listTemplateOptions
// @Summary      List template selector options
// @Tags         templates
// @Produce      json
// @Success      200 {object} APIResponse[[]printing.TemplateOption]
// @Router       /templates/options [get]
func (h *TemplateHandler) Options(c *gin.Context) {
	h.Success(c, h.catalogService.Options())
}

// Preview godoc
// @ID           previewTemplate
// @Summary      Preview a template
// @Description  Renders the sample invoice, or a stored one when invoice_id is given, as a standalone HTML page.
// @Tags         templates
// @Produce      html
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        id path string true "Template key"
// @Param        invoice_id query string false "Invoice ID" format(uuid)
// @Success      200 {string} PreviewHTMLResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /templates/{id}/preview [get]
func (h *TemplateHandler) Preview(c *gin.Context) {
	var invoiceID *uuid.UUID
	if raw := c.Query("invoice_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid invoice_id format")
			return
		}
		invoiceID = &id
	}

	preview, err := h.catalogService.Preview(c.Request.Context(), getSession(c).OwnerID, c.Param("id"), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("X-Template", preview.Template)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(preview.HTML))
}
