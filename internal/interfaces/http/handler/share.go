package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	sharingapp "github.com/invoicesxpert/backend/internal/application/sharing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"github.com/invoicesxpert/backend/internal/infrastructure/logger"
	"github.com/invoicesxpert/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const htmlContentType = "text/html; charset=utf-8"

// ShareHandler builds payment-app share links and serves the public pages
// they point at.
type ShareHandler struct {
	BaseHandler
	shareService *sharingapp.ShareService
}

// NewShareHandler creates a new ShareHandler
func NewShareHandler(shareService *sharingapp.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// Link godoc
// @ID           getInvoiceShareLink
// @Summary      Build a payment-app share link
// @Description  Returns the payment link, the message, the app deep link and the web fallback.
// @Tags         share
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        app path string true "Payment app" Enums(cashapp, zelle)
// @Success      200 {object} APIResponse[sharing.ShareLink]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /invoices/{id}/share/{app} [get]
func (h *ShareHandler) Link(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	link, err := h.shareService.Link(c.Request.Context(), getSession(c).OwnerID, id, c.Param("app"), requestOrigin(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, link)
}

// Launch godoc
// @ID           launchShareLink
// @Summary      Open the payment app
// @Description  HTML page that navigates to the app deep link and falls back to the web after a delay.
// @Tags         public
// @Produce      html
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        app path string true "Payment app" Enums(cashapp, zelle)
// @Success      200 {string} string
// @Failure      400 {string} string
// @Failure      404 {string} string
// @Router       /share/{id}/{app} [get]
func (h *ShareHandler) Launch(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	link, err := h.shareService.PublicLink(ctx, id, c.Param("app"), requestOrigin(c))
	if err != nil {
		h.pageError(c, err)
		return
	}
	page, err := h.shareService.LaunchPage(ctx, link)
	if err != nil {
		h.pageError(c, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(page))
}

// PaymentPage godoc
// @ID           getPaymentPage
// @Summary      Public payment page
// @Description  Read-only rendering of the invoice in the classic style.
// @Tags         public
// @Produce      html
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {string} string
// @Failure      400 {string} string
// @Failure      404 {string} string
// @Router       /pay/{id} [get]
func (h *ShareHandler) PaymentPage(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	page, err := h.shareService.PaymentPage(c.Request.Context(), id)
	if err != nil {
		h.pageError(c, err)
		return
	}
	c.Data(http.StatusOK, htmlContentType, []byte(page))
}

// pageError answers public pages in plain text; they are opened by people,
// not API clients.
func (h *ShareHandler) pageError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.Data(status, "text/plain; charset=utf-8", []byte(dto.UserMessage(domainErr.Code, domainErr.Message)))
		return
	}
	logger.GetGinLogger(c).Error("public page failed", zap.Error(err))
	c.Data(http.StatusInternalServerError, "text/plain; charset=utf-8",
		[]byte(dto.UserMessage(dto.ErrCodeInternal, "")))
}
