package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProductMapping links a local product reference to its CRM catalog item ID.
// Order lines without a mapping are excluded from CRM order drafts.
type ProductMapping struct {
	ID         uuid.UUID
	ProductRef string
	CrmItemID  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewProductMapping creates a new product mapping
func NewProductMapping(productRef string, crmItemID int) *ProductMapping {
	now := time.Now()
	return &ProductMapping{
		ID:         uuid.New(),
		ProductRef: productRef,
		CrmItemID:  crmItemID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ProductMappingRepository defines persistence for product mappings
type ProductMappingRepository interface {
	// FindByProductRef finds a mapping by local product reference,
	// returns nil when the product is unmapped
	FindByProductRef(ctx context.Context, productRef string) (*ProductMapping, error)

	// FindAll lists all mappings
	FindAll(ctx context.Context) ([]ProductMapping, error)

	// Save creates or updates a mapping
	Save(ctx context.Context, mapping *ProductMapping) error
}
