package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receipt 入库单（表头）
type Receipt struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ReceiptCode string    `json:"receipt_code" gorm:"size:60;not null;uniqueIndex"`
	RequestCode *string   `json:"request_code" gorm:"size:60"`
	CreatedDate Date      `json:"created_date" gorm:"type:date;not null"`
	StockID     uint      `json:"stock_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lines []ReceiptLine `json:"list_of_raw_materials" gorm:"foreignKey:ReceiptID;constraint:OnDelete:CASCADE"`
}

func (Receipt) TableName() string {
	return "receipts"
}

// ReceiptLine 入库行项
type ReceiptLine struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	ReceiptID     uint            `json:"receipt_id" gorm:"not null;index"`
	RawMaterialID uint            `json:"raw_material_id" gorm:"not null;index"`
	Quantity      decimal.Decimal `json:"quantity" gorm:"type:decimal(10,3);not null"`
}

func (ReceiptLine) TableName() string {
	return "receipt_raw_materials"
}
