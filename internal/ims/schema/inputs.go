package schema

import (
	"github.com/shopspring/decimal"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
)

// Input 基础数据输入：创建时转换为实体，局部更新时与已有实体合并
type Input[T any] interface {
	ToEntity() T
	Merge(existing T) T
}

// SupplierInput 供应商输入
type SupplierInput struct {
	Name        *string `json:"name" validate:"required,min=1,max=100"`
	Email       *string `json:"email" validate:"omitempty,email,max=60"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	Address     *string `json:"address" validate:"omitempty,max=255"`
}

func (in SupplierInput) ToEntity() entity.Supplier {
	return in.Merge(entity.Supplier{})
}

func (in SupplierInput) Merge(s entity.Supplier) entity.Supplier {
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Email != nil {
		s.Email = in.Email
	}
	if in.PhoneNumber != nil {
		s.PhoneNumber = in.PhoneNumber
	}
	if in.Address != nil {
		s.Address = in.Address
	}
	s.Goods = nil
	return s
}

// GoodsInput 商品输入
type GoodsInput struct {
	Name         *string          `json:"name" validate:"required,min=1,max=255"`
	MaterialCode *string          `json:"material_code" validate:"required,min=1,max=60"`
	ConvertRate  *decimal.Decimal `json:"convert_rate" validate:"required,dmin=0,dint=7,dscale=3"`
	GoodsUnit    *string          `json:"goods_unit" validate:"required,min=1,max=10"`
	SupplierID   *uint            `json:"supplier_id" validate:"required,gt=0"`
}

func (in GoodsInput) ToEntity() entity.Goods {
	return in.Merge(entity.Goods{})
}

func (in GoodsInput) Merge(g entity.Goods) entity.Goods {
	if in.Name != nil {
		g.Name = *in.Name
	}
	if in.MaterialCode != nil {
		g.MaterialCode = *in.MaterialCode
	}
	if in.ConvertRate != nil {
		g.ConvertRate = *in.ConvertRate
	}
	if in.GoodsUnit != nil {
		g.GoodsUnit = *in.GoodsUnit
	}
	if in.SupplierID != nil {
		g.SupplierID = *in.SupplierID
	}
	g.Supplier = nil
	return g
}

// CategoryInput 分类输入
type CategoryInput struct {
	Name *string `json:"name" validate:"required,min=1,max=60"`
}

func (in CategoryInput) ToEntity() entity.Category {
	return in.Merge(entity.Category{})
}

func (in CategoryInput) Merge(c entity.Category) entity.Category {
	if in.Name != nil {
		c.Name = *in.Name
	}
	c.RawMaterials = nil
	return c
}

// RawMaterialInput 原材料输入
type RawMaterialInput struct {
	Code        *string `json:"code" validate:"required,min=1,max=60"`
	Name        *string `json:"name" validate:"required,min=1,max=100"`
	DefaultUnit *string `json:"default_unit" validate:"required,min=1,max=10"`
	CategoryID  *uint   `json:"category_id" validate:"omitempty,gt=0"`
}

func (in RawMaterialInput) ToEntity() entity.RawMaterial {
	return in.Merge(entity.RawMaterial{})
}

func (in RawMaterialInput) Merge(m entity.RawMaterial) entity.RawMaterial {
	if in.Code != nil {
		m.Code = *in.Code
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.DefaultUnit != nil {
		m.DefaultUnit = *in.DefaultUnit
	}
	if in.CategoryID != nil {
		id := *in.CategoryID
		m.CategoryID = &id
	}
	return m
}

// StockInput 库位输入
type StockInput struct {
	StockCode   *string          `json:"stock_code" validate:"required,min=1,max=100"`
	MaxCapacity *decimal.Decimal `json:"max_capacity" validate:"omitempty,dmin=0,dint=9,dscale=3"`
	Location    *string          `json:"location" validate:"omitempty,max=255"`
}

func (in StockInput) ToEntity() entity.Stock {
	return in.Merge(entity.Stock{})
}

func (in StockInput) Merge(s entity.Stock) entity.Stock {
	if in.StockCode != nil {
		s.StockCode = *in.StockCode
	}
	if in.MaxCapacity != nil {
		s.MaxCapacity = decimal.NewNullDecimal(*in.MaxCapacity)
	}
	if in.Location != nil {
		s.Location = in.Location
	}
	s.Receipts = nil
	return s
}

// InvoiceInput 发票表头输入
type InvoiceInput struct {
	Code        *string      `json:"code" validate:"required,min=1,max=100"`
	CreatedDate *entity.Date `json:"created_date" validate:"required"`
	SupplierID  *uint        `json:"supplier_id" validate:"required,gt=0"`
}

func (in InvoiceInput) ToEntity() entity.Invoice {
	return in.Merge(entity.Invoice{})
}

func (in InvoiceInput) Merge(inv entity.Invoice) entity.Invoice {
	if in.Code != nil {
		inv.Code = *in.Code
	}
	if in.CreatedDate != nil {
		inv.CreatedDate = *in.CreatedDate
	}
	if in.SupplierID != nil {
		inv.SupplierID = *in.SupplierID
	}
	inv.Lines = nil
	return inv
}

// InvoiceLineInput 发票行项输入
type InvoiceLineInput struct {
	GoodsID            *uint            `json:"goods_id" validate:"required,gt=0"`
	BuyQuantity        *decimal.Decimal `json:"buy_quantity" validate:"required,dmin=0,dint=2,dscale=3"`
	BuyingPricePerUnit *decimal.Decimal `json:"buying_price_per_unit" validate:"required,dmin=0,dint=13,dscale=0"`
	VatPrecentage      *decimal.Decimal `json:"vat_precentage" validate:"omitempty,dmin=0,dint=2,dscale=3"`
}

func (in InvoiceLineInput) ToEntity() entity.InvoiceLine {
	line := entity.InvoiceLine{
		GoodsID:            derefUint(in.GoodsID),
		BuyQuantity:        derefDecimal(in.BuyQuantity),
		BuyingPricePerUnit: derefDecimal(in.BuyingPricePerUnit),
	}
	if in.VatPrecentage != nil {
		line.VatPrecentage = decimal.NewNullDecimal(*in.VatPrecentage)
	}
	return line
}

// ReceiptInput 入库单表头输入
type ReceiptInput struct {
	ReceiptCode *string      `json:"receipt_code" validate:"required,min=1,max=60"`
	RequestCode *string      `json:"request_code" validate:"omitempty,max=60"`
	CreatedDate *entity.Date `json:"created_date" validate:"required"`
	StockID     *uint        `json:"stock_id" validate:"required,gt=0"`
}

func (in ReceiptInput) ToEntity() entity.Receipt {
	return in.Merge(entity.Receipt{})
}

func (in ReceiptInput) Merge(r entity.Receipt) entity.Receipt {
	if in.ReceiptCode != nil {
		r.ReceiptCode = *in.ReceiptCode
	}
	if in.RequestCode != nil {
		r.RequestCode = in.RequestCode
	}
	if in.CreatedDate != nil {
		r.CreatedDate = *in.CreatedDate
	}
	if in.StockID != nil {
		r.StockID = *in.StockID
	}
	r.Lines = nil
	return r
}

// ReceiptLineInput 入库行项输入
type ReceiptLineInput struct {
	RawMaterialID *uint            `json:"raw_material_id" validate:"required,gt=0"`
	Quantity      *decimal.Decimal `json:"quantity" validate:"required,dmin=0,dint=7,dscale=3"`
}

func (in ReceiptLineInput) ToEntity() entity.ReceiptLine {
	return entity.ReceiptLine{
		RawMaterialID: derefUint(in.RawMaterialID),
		Quantity:      derefDecimal(in.Quantity),
	}
}

func derefUint(v *uint) uint {
	if v == nil {
		return 0
	}
	return *v
}

func derefDecimal(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
