package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/invoicesxpert/backend/internal/interfaces/http/router"
)

// Handlers bundles every API handler for route registration
type Handlers struct {
	Clients   *ClientHandler
	Invoices  *InvoiceHandler
	Exports   *ExportHandler
	Templates *TemplateHandler
	Dashboard *DashboardHandler
	Share     *ShareHandler
	System    *SystemHandler
}

// ClientRoutes creates the route group for client endpoints
func ClientRoutes(h *ClientHandler) *router.DomainGroup {
	group := router.NewDomainGroup("clients", "/clients")
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
	return group
}

// InvoiceRoutes creates the route group for invoice endpoints, including the
// PDF export and share links hanging off an invoice. exportLimit guards the
// PDF route; nil disables it.
func InvoiceRoutes(invoices *InvoiceHandler, exports *ExportHandler, share *ShareHandler, exportLimit gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("invoices", "/invoices")

	group.GET("", invoices.List)
	group.POST("", invoices.Create)
	group.GET("/ledger.xlsx", invoices.Ledger)
	group.GET("/:id", invoices.Get)
	group.PUT("/:id", invoices.Update)
	group.PATCH("/:id/status", invoices.UpdateStatus)
	group.DELETE("/:id", invoices.Delete)

	group.GET("/:id/pdf", exportLimit, exports.DownloadPDF)
	group.GET("/:id/exports", exports.ListJobs)

	group.GET("/:id/share/:app", share.Link)
	return group
}

// ExportRoutes creates the route group for export job lookups
func ExportRoutes(h *ExportHandler) *router.DomainGroup {
	group := router.NewDomainGroup("exports", "/exports")
	group.GET("/:id", h.GetJob)
	return group
}

// TemplateRoutes creates the route group for the template gallery
func TemplateRoutes(h *TemplateHandler) *router.DomainGroup {
	group := router.NewDomainGroup("templates", "/templates")
	group.GET("", h.List)
	group.GET("/options", h.Options)
	group.GET("/:id/preview", h.Preview)
	return group
}

// DashboardRoutes creates the route group for the dashboard
func DashboardRoutes(h *DashboardHandler) *router.DomainGroup {
	return router.NewDomainGroup("dashboard", "/dashboard").GET("", h.Summary)
}

// SystemRoutes creates the versioned system info routes
func SystemRoutes(h *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("system", "/system")
	group.GET("/info", h.GetSystemInfo)
	group.GET("/ping", h.Ping)
	return group
}

// ProbeRoutes creates the unversioned liveness and readiness probes
func ProbeRoutes(h *SystemHandler) *router.DomainGroup {
	group := router.NewDomainGroup("probes", "")
	group.GET("/health", h.Health)
	group.GET("/ready", h.Ready)
	return group
}

// PublicRoutes creates the pages a payment link recipient opens. They are
// addressed by invoice ID alone and carry no session.
func PublicRoutes(h *ShareHandler, mw ...gin.HandlerFunc) *router.DomainGroup {
	group := router.NewDomainGroup("public", "")
	group.Use(mw...)
	group.GET("/pay/:id", h.PaymentPage)
	group.GET("/share/:id/:app", h.Launch)
	return group
}

// RegisterAll mounts every group on r. publicMW runs only for the payment
// and share pages; API-wide middleware belongs on the router.
func (hs *Handlers) RegisterAll(r *router.Router, exportLimit gin.HandlerFunc, publicMW ...gin.HandlerFunc) {
	r.Register(ClientRoutes(hs.Clients)).
		Register(InvoiceRoutes(hs.Invoices, hs.Exports, hs.Share, exportLimit)).
		Register(ExportRoutes(hs.Exports)).
		Register(TemplateRoutes(hs.Templates)).
		Register(DashboardRoutes(hs.Dashboard)).
		Register(SystemRoutes(hs.System)).
		RegisterPublic(ProbeRoutes(hs.System)).
		RegisterPublic(PublicRoutes(hs.Share, publicMW...))
}
