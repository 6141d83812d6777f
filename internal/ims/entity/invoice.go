package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice 采购发票（表头）
type Invoice struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"size:100;not null;index"`
	CreatedDate Date      `json:"created_date" gorm:"type:date;not null"`
	SupplierID  uint      `json:"supplier_id" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Lines []InvoiceLine `json:"list_of_bought_goods" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceLine 发票行项
type InvoiceLine struct {
	ID                 uint                `json:"id" gorm:"primaryKey"`
	InvoiceID          uint                `json:"invoice_id" gorm:"not null;index"`
	GoodsID            uint                `json:"goods_id" gorm:"not null;index"`
	BuyQuantity        decimal.Decimal     `json:"buy_quantity" gorm:"type:decimal(5,3);not null"`
	BuyingPricePerUnit decimal.Decimal     `json:"buying_price_per_unit" gorm:"type:decimal(13,0);not null"`
	VatPrecentage      decimal.NullDecimal `json:"vat_precentage" gorm:"type:decimal(5,3)"`
}

func (InvoiceLine) TableName() string {
	return "invoice_goods"
}
