package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock 库位
type Stock struct {
	ID          uint                `json:"id" gorm:"primaryKey"`
	StockCode   string              `json:"stock_code" gorm:"size:100;not null;index"`
	MaxCapacity decimal.NullDecimal `json:"max_capacity" gorm:"type:decimal(12,3)"`
	Location    *string             `json:"location" gorm:"size:255"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`

	Receipts []Receipt `json:"-" gorm:"foreignKey:StockID;constraint:OnDelete:CASCADE"`
}

func (Stock) TableName() string {
	return "stocks"
}
