package handler

import (
	"github.com/gin-gonic/gin"
	invoicingapp "github.com/invoicesxpert/backend/internal/application/invoicing"
)

// ClientHandler handles client API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *invoicingapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *invoicingapp.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

// Create godoc
// @ID           createClient
// @Summary      Create a client
// @Description  Add a client to the caller's address book
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        request body invoicingapp.CreateClientRequest true "Client"
// @Success      201 {object} APIResponse[invoicingapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	var req invoicingapp.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), getSession(c).OwnerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, client)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Success      200 {object} APIResponse[[]invoicingapp.ClientResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context(), getSession(c).OwnerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, clients)
}

// Get godoc
// @ID           getClient
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[invoicingapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /clients/{id} [get]
func (h *ClientHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), getSession(c).OwnerID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Description  Partial update. Invoices keep the client snapshot taken when they were saved.
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body invoicingapp.UpdateClientRequest true "Changed fields"
// @Success      200 {object} APIResponse[invoicingapp.ClientResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req invoicingapp.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), getSession(c).OwnerID, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, client)
}

// Delete godoc
// @ID           deleteClient
// @Summary      Delete a client
// @Tags         clients
// @Param        X-Owner-ID header string false "Owner ID" default(local)
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), getSession(c).OwnerID, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
