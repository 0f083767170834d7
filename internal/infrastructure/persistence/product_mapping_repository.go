package persistence

import (
	"context"
	"errors"

	"github.com/storesync/backend/internal/domain/integration"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormProductMappingRepository implements integration.ProductMappingRepository using GORM
type GormProductMappingRepository struct {
	db *gorm.DB
}

// NewGormProductMappingRepository creates a new GormProductMappingRepository
func NewGormProductMappingRepository(db *gorm.DB) *GormProductMappingRepository {
	return &GormProductMappingRepository{db: db}
}

// FindByProductRef finds a mapping by local product reference
func (r *GormProductMappingRepository) FindByProductRef(ctx context.Context, productRef string) (*integration.ProductMapping, error) {
	var model models.ProductMappingModel
	if err := r.db.WithContext(ctx).
		First(&model, "product_ref = ?", productRef).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists all mappings
func (r *GormProductMappingRepository) FindAll(ctx context.Context) ([]integration.ProductMapping, error) {
	var mappingModels []models.ProductMappingModel
	if err := r.db.WithContext(ctx).
		Order("product_ref ASC").
		Find(&mappingModels).Error; err != nil {
		return nil, err
	}
	mappings := make([]integration.ProductMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// Save creates or updates a mapping
func (r *GormProductMappingRepository) Save(ctx context.Context, mapping *integration.ProductMapping) error {
	model := models.ProductMappingModelFromDomain(mapping)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormProductMappingRepository implements integration.ProductMappingRepository
var _ integration.ProductMappingRepository = (*GormProductMappingRepository)(nil)
