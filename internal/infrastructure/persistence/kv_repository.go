package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/invoicing"
	"github.com/invoicesxpert/backend/internal/domain/printing"
	"github.com/invoicesxpert/backend/internal/domain/shared"
)

// Key prefixes of the key/value layout. Each owner's records live in one
// JSON array under "<prefix>:<owner>". InvoiceOwnerKeyPrefix maps
// "<prefix>:<invoice id>" to the owner for public payment links.
const (
	InvoicesKeyPrefix     = "invoicesxpert_invoices"
	InvoiceOwnerKeyPrefix = "invoicesxpert_invoice_owner"
	ClientsKeyPrefix      = "clients"
	ExportJobsKeyPrefix   = "invoicesxpert_exports"
)

// MaxExportJobsPerOwner bounds the export history kept in the key/value
// layout; the oldest jobs are dropped first.
const MaxExportJobsPerOwner = 100

// kvRecord is satisfied by pointers to owned aggregates
type kvRecord[T any] interface {
	*T
	GetID() uuid.UUID
}

// kvCollection stores a per-owner JSON array of T in a KVStore. A positive
// limit caps the array at its newest entries.
type kvCollection[T any, P kvRecord[T]] struct {
	store  KVStore
	prefix string
	limit  int
}

func (c kvCollection[T, P]) key(ownerID string) string {
	return c.prefix + ":" + ownerID
}

func decodeRecords[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode stored records: %w", err)
	}
	return records, nil
}

func (c kvCollection[T, P]) load(ctx context.Context, ownerID string) ([]T, error) {
	raw, err := c.store.Get(ctx, c.key(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", c.key(ownerID), err)
	}
	return decodeRecords[T](raw)
}

// mutate decodes the owner's array, hands it to fn and stores the result
func (c kvCollection[T, P]) mutate(ctx context.Context, ownerID string, fn func([]T) ([]T, error)) error {
	return c.store.Mutate(ctx, c.key(ownerID), func(current []byte) ([]byte, error) {
		records, err := decodeRecords[T](current)
		if err != nil {
			return nil, err
		}
		records, err = fn(records)
		if err != nil {
			return nil, err
		}
		if records == nil {
			records = []T{}
		}
		return json.Marshal(records)
	})
}

func (c kvCollection[T, P]) findAll(ctx context.Context, ownerID string) ([]T, error) {
	records, err := c.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (c kvCollection[T, P]) findByID(ctx context.Context, ownerID string, id uuid.UUID) (*T, error) {
	records, err := c.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if P(&records[i]).GetID() == id {
			return &records[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (c kvCollection[T, P]) add(ctx context.Context, ownerID string, record P) (*T, error) {
	if record.GetID() == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Record has no ID")
	}
	stored := *record
	err := c.mutate(ctx, ownerID, func(records []T) ([]T, error) {
		return append(records, stored), nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (c kvCollection[T, P]) upsert(ctx context.Context, ownerID string, record P) error {
	stored := *record
	return c.mutate(ctx, ownerID, func(records []T) ([]T, error) {
		for i := range records {
			if P(&records[i]).GetID() == record.GetID() {
				records[i] = stored
				return records, nil
			}
		}
		records = append(records, stored)
		if c.limit > 0 && len(records) > c.limit {
			records = slices.Delete(records, 0, len(records)-c.limit)
		}
		return records, nil
	})
}

func (c kvCollection[T, P]) update(ctx context.Context, ownerID string, id uuid.UUID, patch func(P) error) (*T, error) {
	var updated *T
	err := c.mutate(ctx, ownerID, func(records []T) ([]T, error) {
		for i := range records {
			if P(&records[i]).GetID() != id {
				continue
			}
			record := records[i]
			if err := patch(&record); err != nil {
				return nil, err
			}
			records[i] = record
			updated = &record
			return records, nil
		}
		return nil, shared.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (c kvCollection[T, P]) delete(ctx context.Context, ownerID string, id uuid.UUID) (bool, error) {
	var removed bool
	err := c.mutate(ctx, ownerID, func(records []T) ([]T, error) {
		kept := slices.DeleteFunc(records, func(r T) bool {
			return P(&r).GetID() == id
		})
		removed = len(kept) != len(records)
		if !removed {
			return nil, errNothingDeleted
		}
		return kept, nil
	})
	if errors.Is(err, errNothingDeleted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// errNothingDeleted aborts a no-op delete without rewriting the value
var errNothingDeleted = errors.New("nothing deleted")

// KVClientRepository stores clients under clients:<owner>
type KVClientRepository struct {
	c kvCollection[invoicing.Client, *invoicing.Client]
}

// NewKVClientRepository creates a client repository on store
func NewKVClientRepository(store KVStore) *KVClientRepository {
	return &KVClientRepository{c: kvCollection[invoicing.Client, *invoicing.Client]{store: store, prefix: ClientsKeyPrefix}}
}

// FindAll returns the owner's clients in insertion order
func (r *KVClientRepository) FindAll(ctx context.Context, ownerID string) ([]invoicing.Client, error) {
	return r.c.findAll(ctx, ownerID)
}

// FindByID returns shared.ErrNotFound for unknown clients
func (r *KVClientRepository) FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*invoicing.Client, error) {
	return r.c.findByID(ctx, ownerID, id)
}

// Add appends a client
func (r *KVClientRepository) Add(ctx context.Context, client *invoicing.Client) (*invoicing.Client, error) {
	return r.c.add(ctx, client.OwnerID, client)
}

// Update patches a stored client
func (r *KVClientRepository) Update(ctx context.Context, ownerID string, id uuid.UUID, patch func(*invoicing.Client) error) (*invoicing.Client, error) {
	return r.c.update(ctx, ownerID, id, patch)
}

// Delete removes a client
func (r *KVClientRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) (bool, error) {
	return r.c.delete(ctx, ownerID, id)
}

// KVInvoiceRepository stores invoices under invoicesxpert_invoices:<owner>
type KVInvoiceRepository struct {
	c kvCollection[invoicing.Invoice, *invoicing.Invoice]
}

// NewKVInvoiceRepository creates an invoice repository on store
func NewKVInvoiceRepository(store KVStore) *KVInvoiceRepository {
	return &KVInvoiceRepository{c: kvCollection[invoicing.Invoice, *invoicing.Invoice]{store: store, prefix: InvoicesKeyPrefix}}
}

// FindAll returns the owner's invoices in insertion order
func (r *KVInvoiceRepository) FindAll(ctx context.Context, ownerID string) ([]invoicing.Invoice, error) {
	return r.c.findAll(ctx, ownerID)
}

// FindByID returns shared.ErrNotFound for unknown invoices
func (r *KVInvoiceRepository) FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*invoicing.Invoice, error) {
	return r.c.findByID(ctx, ownerID, id)
}

func invoiceOwnerKey(id uuid.UUID) string {
	return InvoiceOwnerKeyPrefix + ":" + id.String()
}

// Lookup resolves the owner through the invoice owner index
func (r *KVInvoiceRepository) Lookup(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	owner, err := r.c.store.Get(ctx, invoiceOwnerKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice owner: %w", err)
	}
	if len(owner) == 0 {
		return nil, shared.ErrNotFound
	}
	return r.c.findByID(ctx, string(owner), id)
}

func (r *KVInvoiceRepository) setOwner(ctx context.Context, id uuid.UUID, ownerID string) error {
	return r.c.store.Mutate(ctx, invoiceOwnerKey(id), func([]byte) ([]byte, error) {
		return []byte(ownerID), nil
	})
}

// Add indexes the invoice owner, then appends the invoice
func (r *KVInvoiceRepository) Add(ctx context.Context, inv *invoicing.Invoice) (*invoicing.Invoice, error) {
	if inv.ID != uuid.Nil {
		if err := r.setOwner(ctx, inv.ID, inv.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to index invoice owner: %w", err)
		}
	}
	return r.c.add(ctx, inv.OwnerID, inv.Snapshot())
}

// Update patches a stored invoice
func (r *KVInvoiceRepository) Update(ctx context.Context, ownerID string, id uuid.UUID, patch func(*invoicing.Invoice) error) (*invoicing.Invoice, error) {
	return r.c.update(ctx, ownerID, id, patch)
}

// Delete removes an invoice and its owner index entry
func (r *KVInvoiceRepository) Delete(ctx context.Context, ownerID string, id uuid.UUID) (bool, error) {
	removed, err := r.c.delete(ctx, ownerID, id)
	if err != nil || !removed {
		return removed, err
	}
	if err := r.setOwner(ctx, id, ""); err != nil {
		return true, fmt.Errorf("failed to drop invoice owner index: %w", err)
	}
	return true, nil
}

// KVExportJobRepository stores export jobs under invoicesxpert_exports:<owner>
type KVExportJobRepository struct {
	c kvCollection[printing.ExportJob, *printing.ExportJob]
}

// NewKVExportJobRepository creates an export job repository on store that
// keeps the newest MaxExportJobsPerOwner jobs of each owner.
func NewKVExportJobRepository(store KVStore) *KVExportJobRepository {
	return &KVExportJobRepository{c: kvCollection[printing.ExportJob, *printing.ExportJob]{
		store:  store,
		prefix: ExportJobsKeyPrefix,
		limit:  MaxExportJobsPerOwner,
	}}
}

// Save inserts or replaces a job. Inserting past the cap drops the oldest.
func (r *KVExportJobRepository) Save(ctx context.Context, job *printing.ExportJob) error {
	return r.c.upsert(ctx, job.OwnerID, job)
}

// FindByID returns shared.ErrNotFound for unknown jobs
func (r *KVExportJobRepository) FindByID(ctx context.Context, ownerID string, id uuid.UUID) (*printing.ExportJob, error) {
	return r.c.findByID(ctx, ownerID, id)
}

// FindByInvoice lists an invoice's jobs, newest first
func (r *KVExportJobRepository) FindByInvoice(ctx context.Context, ownerID string, invoiceID uuid.UUID) ([]printing.ExportJob, error) {
	all, err := r.c.findAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	jobs := make([]printing.ExportJob, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].InvoiceID == invoiceID {
			jobs = append(jobs, all[i])
		}
	}
	return jobs, nil
}

var (
	_ invoicing.ClientRepository   = (*KVClientRepository)(nil)
	_ invoicing.InvoiceRepository  = (*KVInvoiceRepository)(nil)
	_ printing.ExportJobRepository = (*KVExportJobRepository)(nil)
)
