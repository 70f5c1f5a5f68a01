package entity

import (
	"time"

	"github.com/google/uuid"
)

// MedicationStatus is the stock status shown to pharmacists
type MedicationStatus string

const (
	MedicationInStock    MedicationStatus = "In Stock"
	MedicationLowStock   MedicationStatus = "Low Stock"
	MedicationOutOfStock MedicationStatus = "Out of Stock"
)

// LowStockThreshold is the stock level below which a medication counts as low
const LowStockThreshold = 20

// Medication is a pharmacy inventory item
type Medication struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name       string           `gorm:"type:varchar(255);not null;index" json:"name"`
	Status     MedicationStatus `gorm:"type:varchar(20);not null;default:'In Stock'" json:"status"`
	StockLevel int              `gorm:"not null;default:0" json:"stock_level"`
	Expiry     *time.Time       `gorm:"type:date;index" json:"expiry,omitempty"`
	Supplier   string           `gorm:"type:varchar(255)" json:"supplier,omitempty"`
	CreatedAt  time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Medication) TableName() string {
	return "medications"
}

// StatusForStock derives the stock status from a stock level
func StatusForStock(level int) MedicationStatus {
	switch {
	case level <= 0:
		return MedicationOutOfStock
	case level < LowStockThreshold:
		return MedicationLowStock
	default:
		return MedicationInStock
	}
}

// Restock adds units and recomputes the status
func (m *Medication) Restock(amount int) {
	m.StockLevel += amount
	m.Status = StatusForStock(m.StockLevel)
}
