package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storesync/backend/internal/domain/order"
	"github.com/storesync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRefundRepository implements order.RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// FindByGatewayRefundID finds a refund by the gateway refund ID
func (r *GormRefundRepository) FindByGatewayRefundID(ctx context.Context, gatewayRefundID string) (*order.RefundRecord, error) {
	var model models.RefundRecordModel
	if err := r.db.WithContext(ctx).
		First(&model, "gateway_refund_id = ?", gatewayRefundID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrder lists refunds recorded against an order, newest first
func (r *GormRefundRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]order.RefundRecord, error) {
	var recordModels []models.RefundRecordModel
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("requested_at DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]order.RefundRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// Save creates or updates a refund record
func (r *GormRefundRepository) Save(ctx context.Context, record *order.RefundRecord) error {
	model := models.RefundRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormRefundRepository implements order.RefundRepository
var _ order.RefundRepository = (*GormRefundRepository)(nil)
