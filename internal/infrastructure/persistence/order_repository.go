package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/domain/shared"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByNumber finds an order by order number
func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	return r.findOne(ctx, "number = ?", number)
}

// FindByExternalCrmID finds an order by CRM-assigned ID
func (r *GormOrderRepository) FindByExternalCrmID(ctx context.Context, externalID string) (*order.Order, error) {
	return r.findOne(ctx, "external_crm_id = ?", externalID)
}

// FindByTransactionID finds an order by gateway charge ID
func (r *GormOrderRepository) FindByTransactionID(ctx context.Context, transactionID string) (*order.Order, error) {
	return r.findOne(ctx, "transaction_id = ?", transactionID)
}

// FindBySourceID finds an order by gateway source ID
func (r *GormOrderRepository) FindBySourceID(ctx context.Context, sourceID string) (*order.Order, error) {
	return r.findOne(ctx, "source_id = ?", sourceID)
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, args ...any) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Notes").
		First(&model, append([]any{query}, args...)...).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create persists a new order
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	return r.db.WithContext(ctx).Create(model).Error
}

// Save persists order changes with an optimistic version check.
// The write increments the stored version; a stale in-memory version
// returns shared.ErrConcurrencyConflict.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	o.IncrementVersion()
	model := models.OrderModelFromDomain(o)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", o.ID, o.Version-1).
			Select("*").
			Omit("Items", "Notes", "id", "created_at").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			o.Version--
			return shared.ErrConcurrencyConflict
		}

		// Notes are append-only; replace the stored set with the
		// aggregate's current set
		if err := tx.Where("order_id = ?", o.ID).Delete(&models.OrderNoteModel{}).Error; err != nil {
			return err
		}
		if len(model.Notes) > 0 {
			if err := tx.Create(&model.Notes).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
