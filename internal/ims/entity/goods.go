package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Goods 采购商品，ConvertRate 把采购单位换算为库存单位
type Goods struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"size:255;not null"`
	MaterialCode string          `json:"material_code" gorm:"size:60;not null;index"`
	ConvertRate  decimal.Decimal `json:"convert_rate" gorm:"type:decimal(10,3);not null"`
	GoodsUnit    string          `json:"goods_unit" gorm:"size:10;not null"`
	SupplierID   uint            `json:"supplier_id" gorm:"not null;index"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Goods) TableName() string {
	return "goods"
}
