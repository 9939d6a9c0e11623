// Package models contains the GORM persistence models behind the SQL
// repositories. Domain types carry no ORM tags; each model here maps one
// table and converts to and from its domain type with ToDomain/FromDomain.
//
//   - base.go: identity, version and owner columns shared by every table
//   - client.go: clients
//   - invoice.go: invoices and their ordered line items
//   - export_job.go: PDF export jobs
//   - invoice_sequence.go: per-owner, per-year invoice number counters
package models
