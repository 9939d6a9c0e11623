package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicesxpert/backend/internal/domain/printing"
)

// ExportJobModel is the persistence model for the ExportJob aggregate.
type ExportJobModel struct {
	OwnedModel
	InvoiceID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	InvoiceNumber string     `gorm:"type:varchar(50);not null"`
	Template      string     `gorm:"type:varchar(50);not null"`
	HostTarget    string     `gorm:"type:varchar(100);not null"`
	Paper         string     `gorm:"type:varchar(10);not null;default:'A4'"`
	Status        string     `gorm:"type:varchar(20);not null;index"`
	FileName      string     `gorm:"type:varchar(255);not null"`
	PageCount     int        `gorm:"not null;default:0"`
	SizeBytes     int64      `gorm:"not null;default:0"`
	ArchiveURL    string     `gorm:"type:text"`
	ErrorMessage  string     `gorm:"type:text"`
	FailedStage   string     `gorm:"type:varchar(20)"`
	FinishedAt    *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (ExportJobModel) TableName() string {
	return "export_jobs"
}

// ToDomain converts the persistence model to a domain ExportJob
func (m *ExportJobModel) ToDomain() *printing.ExportJob {
	job := &printing.ExportJob{
		InvoiceID:     m.InvoiceID,
		InvoiceNumber: m.InvoiceNumber,
		Template:      m.Template,
		HostTarget:    m.HostTarget,
		Paper:         printing.PaperSize(m.Paper),
		Status:        printing.ExportStatus(m.Status),
		FileName:      m.FileName,
		PageCount:     m.PageCount,
		SizeBytes:     m.SizeBytes,
		ArchiveURL:    m.ArchiveURL,
		ErrorMessage:  m.ErrorMessage,
		FailedStage:   printing.ExportStatus(m.FailedStage),
		FinishedAt:    m.FinishedAt,
	}
	job.OwnedAggregateRoot = m.root()
	return job
}

// FromDomain populates the persistence model from a domain ExportJob
func (m *ExportJobModel) FromDomain(job *printing.ExportJob) {
	m.OwnedModel = ownedModel(job.OwnedAggregateRoot)
	m.InvoiceID = job.InvoiceID
	m.InvoiceNumber = job.InvoiceNumber
	m.Template = job.Template
	m.HostTarget = job.HostTarget
	m.Paper = job.Paper.String()
	m.Status = job.Status.String()
	m.FileName = job.FileName
	m.PageCount = job.PageCount
	m.SizeBytes = job.SizeBytes
	m.ArchiveURL = job.ArchiveURL
	m.ErrorMessage = job.ErrorMessage
	m.FailedStage = string(job.FailedStage)
	m.FinishedAt = job.FinishedAt
}

// ExportJobModelFromDomain creates a new persistence model from a domain ExportJob
func ExportJobModelFromDomain(job *printing.ExportJob) *ExportJobModel {
	m := &ExportJobModel{}
	m.FromDomain(job)
	return m
}
