package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"bazaar/internal/service/product/domain"
)

// ProductModel is the gorm mapping of a catalog entry.
type ProductModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"size:255;not null;index"`
	Description string  `gorm:"type:text"`
	Price       float64 `gorm:"not null"`
	Category    string  `gorm:"size:100;index"`
}

func (ProductModel) TableName() string { return "products" }

func toModel(p *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
	}
}

func toDomain(m *ProductModel) *domain.Product {
	return &domain.Product{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
	}
}

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) Migrate() error {
	return r.db.AutoMigrate(&ProductModel{})
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	model := toModel(product)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "create product")
	}
	product.ID = model.ID
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find product")
	}
	return toDomain(&model), nil
}

func (r *GormProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	return r.findWhere(ctx, r.db.WithContext(ctx))
}

func (r *GormProductRepository) FindByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	return r.findWhere(ctx, r.db.WithContext(ctx).Where("category = ?", category))
}

func (r *GormProductRepository) SearchByName(ctx context.Context, name string) ([]*domain.Product, error) {
	return r.findWhere(ctx, r.db.WithContext(ctx).Where("name LIKE ?", "%"+name+"%"))
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	result := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", product.ID).Updates(map[string]any{
		"name":        product.Name,
		"description": product.Description,
		"price":       product.Price,
		"category":    product.Category,
	})
	if result.Error != nil {
		return errors.Wrap(result.Error, "update product")
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&ProductModel{}, id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "delete product")
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) findWhere(ctx context.Context, tx *gorm.DB) ([]*domain.Product, error) {
	var models []ProductModel
	if err := tx.Order("id").Find(&models).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	products := make([]*domain.Product, 0, len(models))
	for i := range models {
		products = append(products, toDomain(&models[i]))
	}
	return products, nil
}
