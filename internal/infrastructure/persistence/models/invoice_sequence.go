package models

// InvoiceSequenceModel holds the last issued invoice sequence value for one
// owner and calendar year.
type InvoiceSequenceModel struct {
	OwnerID string `gorm:"type:varchar(64);primaryKey"`
	Year    int    `gorm:"primaryKey;autoIncrement:false"`
	Value   int64  `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}

// All returns every model the SQL schema is made of, in dependency order.
func All() []any {
	return []any{
		&ClientModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&ExportJobModel{},
		&InvoiceSequenceModel{},
	}
}
