package entity

import "time"

// Supplier 供应商
type Supplier struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Email       *string   `json:"email" gorm:"size:60"`
	PhoneNumber *string   `json:"phone_number" gorm:"size:20"`
	Address     *string   `json:"address" gorm:"size:255"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Goods []Goods `json:"goods,omitempty" gorm:"foreignKey:SupplierID;constraint:OnDelete:CASCADE"`
}

func (Supplier) TableName() string {
	return "suppliers"
}
