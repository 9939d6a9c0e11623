// Package printing contains the Printing bounded context.
// It models one PDF export of an invoice as a job with a strict stage
// sequence, and the page geometry used to split a rendered invoice
// across A4 pages.
package printing
