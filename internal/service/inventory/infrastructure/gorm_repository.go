package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"bazaar/internal/service/inventory/domain"
)

// InventoryModel is the GORM mapping of a stock counter.
type InventoryModel struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	ProductID int64 `gorm:"uniqueIndex;not null"`
	Quantity  int   `gorm:"not null"`
}

func (InventoryModel) TableName() string { return "inventory" }

// GormInventoryRepository is the MySQL implementation of
// domain.InventoryRepository.
type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

func (r *GormInventoryRepository) Migrate() error {
	return r.db.AutoMigrate(&InventoryModel{})
}

func (r *GormInventoryRepository) FindByProductID(ctx context.Context, productID int64) (*domain.Inventory, error) {
	var model InventoryModel
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInventoryNotFound
		}
		return nil, err
	}
	return &domain.Inventory{ID: model.ID, ProductID: model.ProductID, Quantity: model.Quantity}, nil
}

func (r *GormInventoryRepository) Save(ctx context.Context, inv *domain.Inventory) error {
	model := &InventoryModel{ID: inv.ID, ProductID: inv.ProductID, Quantity: inv.Quantity}
	if inv.ID == 0 {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return err
		}
		inv.ID = model.ID
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&InventoryModel{}).
		Where("id = ?", inv.ID).
		Update("quantity", inv.Quantity).Error
}
