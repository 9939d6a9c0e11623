package invoicing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ClientService handles client-related business operations
type ClientService struct {
	clientRepo invoicing.ClientRepository
	logger     *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo invoicing.ClientRepository, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// Create creates a new client
func (s *ClientService) Create(ctx context.Context, ownerID string, req CreateClientRequest) (*ClientResponse, error) {
	client, err := invoicing.NewClient(ownerID, invoicing.ClientParams{
		Name:        req.Name,
		Email:       req.Email,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		Address:     req.Address,
		Notes:       req.Notes,
	})
	if err != nil {
		return nil, err
	}

	stored, err := s.clientRepo.Add(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to save client: %w", err)
	}

	s.logger.Info("client created", zap.String("client_id", stored.ID.String()))
	response := ToClientResponse(stored)
	return &response, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, ownerID string, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List returns the owner's clients in insertion order
func (s *ClientService) List(ctx context.Context, ownerID string) ([]ClientResponse, error) {
	clients, err := s.clientRepo.FindAll(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	return out, nil
}

// Update applies the non-nil fields of req. Invoices issued earlier keep the
// client data they were created with.
func (s *ClientService) Update(ctx context.Context, ownerID string, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	updated, err := s.clientRepo.Update(ctx, ownerID, id, func(c *invoicing.Client) error {
		p := invoicing.ClientParams{
			Name:        c.Name,
			Email:       c.Email,
			CompanyName: c.CompanyName,
			Phone:       c.Phone,
			Address:     c.Address,
			Notes:       c.Notes,
		}
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Email != nil {
			p.Email = *req.Email
		}
		if req.CompanyName != nil {
			p.CompanyName = *req.CompanyName
		}
		if req.Phone != nil {
			p.Phone = *req.Phone
		}
		if req.Address != nil {
			p.Address = *req.Address
		}
		if req.Notes != nil {
			p.Notes = *req.Notes
		}
		return c.Update(p)
	})
	if err != nil {
		return nil, mapNotFound(err, "Client not found", "failed to update client")
	}

	response := ToClientResponse(updated)
	return &response, nil
}

// Delete removes a client. Invoices that reference it are left untouched.
func (s *ClientService) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	deleted, err := s.clientRepo.Delete(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if !deleted {
		return shared.ErrNotFound.WithMessage("Client not found")
	}
	s.logger.Info("client deleted", zap.String("client_id", id.String()))
	return nil
}

func (s *ClientService) find(ctx context.Context, ownerID string, id uuid.UUID) (*invoicing.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, mapNotFound(err, "Client not found", "failed to get client")
	}
	return client, nil
}

// mapNotFound turns a repository miss into a NOT_FOUND domain error with a
// specific message and wraps anything else. Domain errors pass through.
func mapNotFound(err error, notFound, action string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.ErrNotFound.WithMessage(notFound)
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("%s: %w", action, err)
}
