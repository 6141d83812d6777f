package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceMovement 商品 LEFT JOIN 发票行项的一行，没有行项时数量与单价为 NULL
type InvoiceMovement struct {
	MaterialCode       string
	GoodsID            uint
	ConvertRate        decimal.Decimal
	BuyQuantity        decimal.NullDecimal
	BuyingPricePerUnit decimal.NullDecimal
}

// ReceiptMovement 原材料 LEFT JOIN 入库行项的一行
type ReceiptMovement struct {
	MaterialCode string
	Quantity     decimal.NullDecimal
}

// StockMovement 库位 LEFT JOIN 入库单、行项、原材料的一行
type StockMovement struct {
	StockID      uint
	StockCode    string
	MaterialCode *string
	Quantity     decimal.NullDecimal
}

// MovementRepository 库存流水查询，供聚合计算使用
type MovementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// InvoiceMovements 所有商品及其发票行项，按 material_code 排序
func (r *MovementRepository) InvoiceMovements(ctx context.Context) ([]InvoiceMovement, error) {
	var rows []InvoiceMovement
	err := r.db.WithContext(ctx).
		Table("goods AS g").
		Select("g.material_code AS material_code, g.id AS goods_id, g.convert_rate AS convert_rate, " +
			"ig.buy_quantity AS buy_quantity, ig.buying_price_per_unit AS buying_price_per_unit").
		Joins("LEFT JOIN invoice_goods AS ig ON ig.goods_id = g.id").
		Order("g.material_code ASC, g.id ASC, ig.id ASC").
		Scan(&rows).Error
	return rows, err
}

// ReceiptMovements 所有原材料及其入库行项，按 code 排序
func (r *MovementRepository) ReceiptMovements(ctx context.Context) ([]ReceiptMovement, error) {
	var rows []ReceiptMovement
	err := r.db.WithContext(ctx).
		Table("raw_materials AS rm").
		Select("rm.code AS material_code, rl.quantity AS quantity").
		Joins("LEFT JOIN receipt_raw_materials AS rl ON rl.raw_material_id = rm.id").
		Order("rm.code ASC, rl.id ASC").
		Scan(&rows).Error
	return rows, err
}

// StockMovements 库位维度的入库流水；stockID 非空时只查该库位
func (r *MovementRepository) StockMovements(ctx context.Context, stockID *uint) ([]StockMovement, error) {
	var rows []StockMovement
	query := r.db.WithContext(ctx).
		Table("stocks AS s").
		Select("s.id AS stock_id, s.stock_code AS stock_code, rm.code AS material_code, rl.quantity AS quantity").
		Joins("LEFT JOIN receipts AS rc ON rc.stock_id = s.id").
		Joins("LEFT JOIN receipt_raw_materials AS rl ON rl.receipt_id = rc.id").
		Joins("LEFT JOIN raw_materials AS rm ON rm.id = rl.raw_material_id")
	if stockID != nil {
		query = query.Where("s.id = ?", *stockID)
	}
	err := query.Order("s.id ASC, rm.code ASC, rl.id ASC").Scan(&rows).Error
	return rows, err
}
