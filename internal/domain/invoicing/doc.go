// Package invoicing contains the Invoicing bounded context.
// It owns clients, invoices with their line items, the single totals
// computation used by every view of an invoice, and invoice numbering.
package invoicing
