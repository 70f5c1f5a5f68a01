package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateMedicationRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	StockLevel int    `json:"stock_level" validate:"gte=0"`
	Expiry     string `json:"expiry" validate:"omitempty,datetime=2006-01-02"`
	Supplier   string `json:"supplier" validate:"omitempty,max=255"`
}

type UpdateMedicationRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	StockLevel int    `json:"stock_level" validate:"gte=0"`
	Expiry     string `json:"expiry" validate:"omitempty,datetime=2006-01-02"`
	Supplier   string `json:"supplier" validate:"omitempty,max=255"`
}

// RestockRequest adds DefaultRestockAmount units when Amount is omitted
type RestockRequest struct {
	Amount *int `json:"amount" validate:"omitempty,gte=1"`
}

const DefaultRestockAmount = 50

type MedicationListQuery struct {
	Search     string `validate:"omitempty,max=255"`
	ExpiryFrom string `validate:"omitempty,datetime=2006-01-02"`
	ExpiryTo   string `validate:"omitempty,datetime=2006-01-02"`
	Page       int
	Limit      int
}

// Response DTOs

type MedicationResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"`
	StockLevel int       `json:"stock_level"`
	Expiry     string    `json:"expiry,omitempty"`
	Supplier   string    `json:"supplier,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type MedicationListResponse struct {
	Medications []MedicationResponse `json:"medications"`
	Total       int64                `json:"total"`
}

type PharmacyDashboardResponse struct {
	Latest       []MedicationResponse `json:"latest"`
	LowStock     int64                `json:"low_stock"`
	ExpiringSoon int64                `json:"expiring_soon"`
	TotalUnits   int64                `json:"total_units"`
}
