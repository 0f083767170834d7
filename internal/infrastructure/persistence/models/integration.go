package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/integration"
)

// ProductMappingModel is the persistence model for product mappings
type ProductMappingModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	ProductRef string    `gorm:"uniqueIndex;not null"`
	CrmItemID  int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName overrides the table name
func (ProductMappingModel) TableName() string {
	return "product_mappings"
}

// ToDomain converts the model to the domain entity
func (m *ProductMappingModel) ToDomain() *integration.ProductMapping {
	return &integration.ProductMapping{
		ID:         m.ID,
		ProductRef: m.ProductRef,
		CrmItemID:  m.CrmItemID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// ProductMappingModelFromDomain converts the domain entity to the model
func ProductMappingModelFromDomain(p *integration.ProductMapping) *ProductMappingModel {
	return &ProductMappingModel{
		ID:         p.ID,
		ProductRef: p.ProductRef,
		CrmItemID:  p.CrmItemID,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
