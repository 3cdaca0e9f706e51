package infrastructure

import (
	"time"

	"bazaar/internal/service/order/domain"
)

// OrderModel is the GORM mapping of the order aggregate.
type OrderModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	UserID    int64     `gorm:"index;not null"`
	ProductID int64     `gorm:"index;not null"`
	Quantity  int       `gorm:"not null"`
	Status    string    `gorm:"type:varchar(20);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (OrderModel) TableName() string { return "orders" }

func toModel(o *domain.Order) *OrderModel {
	return &OrderModel{
		ID:        o.ID,
		UserID:    o.UserID,
		ProductID: o.ProductID,
		Quantity:  o.Quantity,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func toDomain(m *OrderModel) *domain.Order {
	return &domain.Order{
		ID:        m.ID,
		UserID:    m.UserID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		Status:    domain.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
