package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bazaar/internal/service/order/domain"
)

// GormOrderRepository is the MySQL implementation of domain.OrderRepository.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Migrate creates the orders table.
func (r *GormOrderRepository) Migrate() error {
	return r.db.AutoMigrate(&OrderModel{})
}

func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := toModel(order)
	if order.ID == 0 {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
		// Hand back the storage-assigned identity and timestamp.
		order.ID = model.ID
		order.CreatedAt = model.CreatedAt
		order.UpdatedAt = model.UpdatedAt
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&OrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":     string(order.Status),
			"updated_at": order.UpdatedAt,
		}).Error
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return toDomain(&model), nil
}

func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return r.findAll(ctx, "user_id = ?", userID)
}

func (r *GormOrderRepository) FindByProductID(ctx context.Context, productID int64) ([]*domain.Order, error) {
	return r.findAll(ctx, "product_id = ?", productID)
}

func (r *GormOrderRepository) findAll(ctx context.Context, query string, arg int64) ([]*domain.Order, error) {
	var models []OrderModel
	if err := r.db.WithContext(ctx).Where(query, arg).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toDomain(&models[i]))
	}
	return orders, nil
}
