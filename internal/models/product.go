package models

import "time"

// Product represents a catalog item. Price must be strictly positive and
// stock non-negative at every committed state; both are checked at the
// write boundary before anything is persisted.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string    `json:"name" gorm:"index;type:varchar(200)" validate:"required,max=200"`
	Description string    `json:"description" validate:"omitempty,max=500"`
	Price       float64   `json:"price" gorm:"index" validate:"required,gt=0"`
	Stock       int       `json:"stock" validate:"gte=0"`
	CategoryID  string    `json:"category_id" gorm:"index;type:varchar(36)" validate:"required,uuid"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedAt   time.Time `json:"created_at"`
}
