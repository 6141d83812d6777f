package service

import (
	"github.com/shopspring/decimal"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
)

// 聚合值的展示：平均单价取整，数量保留三位小数，缺失为 null

type AveragePriceView struct {
	MaterialCode       string  `json:"material_code"`
	AverageBuyingPrice *string `json:"average_buying_price"`
}

type InvoiceStockView struct {
	MaterialCode string  `json:"material_code"`
	InvoiceStock *string `json:"invoice_stock"`
}

type OnHandView struct {
	MaterialCode       string  `json:"material_code"`
	TotalStockQuantity *string `json:"total_stock_quantity"`
}

type StockOnHandView struct {
	StockID   uint         `json:"stock_id"`
	StockCode string       `json:"stock_code"`
	StockItem []OnHandView `json:"stock_item"`
}

// MaterialView 原材料及其三项聚合值
type MaterialView struct {
	entity.RawMaterial
	AverageBuyingPrice *string `json:"average_buying_price"`
	InvoiceStock       *string `json:"invoice_stock"`
	TotalStockQuantity *string `json:"total_stock_quantity"`
}

type GoodsSummary struct {
	Name         string `json:"name"`
	MaterialCode string `json:"material_code"`
}

type SupplierSummary struct {
	Name        string  `json:"name"`
	PhoneNumber *string `json:"phone_number"`
}

// SupplierView 供应商，附带其商品摘要
type SupplierView struct {
	ID          uint           `json:"id"`
	Name        string         `json:"name"`
	Email       *string        `json:"email"`
	PhoneNumber *string        `json:"phone_number"`
	Address     *string        `json:"address"`
	Goods       []GoodsSummary `json:"goods"`
}

// GoodsView 商品，附带供应商摘要
type GoodsView struct {
	ID           uint             `json:"id"`
	Name         string           `json:"name"`
	MaterialCode string           `json:"material_code"`
	ConvertRate  decimal.Decimal  `json:"convert_rate"`
	GoodsUnit    string           `json:"goods_unit"`
	SupplierID   uint             `json:"supplier_id"`
	Supplier     *SupplierSummary `json:"supplier"`
}

func displayAverage(v decimal.NullDecimal) *string {
	if !v.Valid {
		return nil
	}
	s := v.Decimal.StringFixed(0)
	return &s
}

func displayQuantity(v decimal.NullDecimal) *string {
	if !v.Valid {
		return nil
	}
	s := v.Decimal.StringFixed(3)
	return &s
}

func AveragePriceViews(values []MaterialValue) []AveragePriceView {
	views := make([]AveragePriceView, len(values))
	for i, v := range values {
		views[i] = AveragePriceView{MaterialCode: v.MaterialCode, AverageBuyingPrice: displayAverage(v.Value)}
	}
	return views
}

func InvoiceStockViews(values []MaterialValue) []InvoiceStockView {
	views := make([]InvoiceStockView, len(values))
	for i, v := range values {
		views[i] = InvoiceStockView{MaterialCode: v.MaterialCode, InvoiceStock: displayQuantity(v.Value)}
	}
	return views
}

func OnHandViews(values []MaterialValue) []OnHandView {
	views := make([]OnHandView, len(values))
	for i, v := range values {
		views[i] = OnHandView{MaterialCode: v.MaterialCode, TotalStockQuantity: displayQuantity(v.Value)}
	}
	return views
}

func StockOnHandViews(balances []StockBalance) []StockOnHandView {
	views := make([]StockOnHandView, len(balances))
	for i, b := range balances {
		views[i] = StockOnHandViewOf(b)
	}
	return views
}

func StockOnHandViewOf(b StockBalance) StockOnHandView {
	return StockOnHandView{StockID: b.StockID, StockCode: b.StockCode, StockItem: OnHandViews(b.Items)}
}

func indexByCode(values []MaterialValue) map[string]decimal.NullDecimal {
	index := make(map[string]decimal.NullDecimal, len(values))
	for _, v := range values {
		index[v.MaterialCode] = v.Value
	}
	return index
}

// MaterialViews 按 code 把三项聚合值合并到原材料上，缺失的聚合值渲染为 null
func MaterialViews(materials []entity.RawMaterial, averages, invoiced, onHand []MaterialValue) []MaterialView {
	avg := indexByCode(averages)
	inv := indexByCode(invoiced)
	stock := indexByCode(onHand)

	views := make([]MaterialView, len(materials))
	for i, m := range materials {
		views[i] = MaterialView{
			RawMaterial:        m,
			AverageBuyingPrice: displayAverage(avg[m.Code]),
			InvoiceStock:       displayQuantity(inv[m.Code]),
			TotalStockQuantity: displayQuantity(stock[m.Code]),
		}
	}
	return views
}

func SupplierViewOf(s entity.Supplier) SupplierView {
	goods := make([]GoodsSummary, len(s.Goods))
	for i, g := range s.Goods {
		goods[i] = GoodsSummary{Name: g.Name, MaterialCode: g.MaterialCode}
	}
	return SupplierView{
		ID:          s.ID,
		Name:        s.Name,
		Email:       s.Email,
		PhoneNumber: s.PhoneNumber,
		Address:     s.Address,
		Goods:       goods,
	}
}

func GoodsViewOf(g entity.Goods) GoodsView {
	view := GoodsView{
		ID:           g.ID,
		Name:         g.Name,
		MaterialCode: g.MaterialCode,
		ConvertRate:  g.ConvertRate,
		GoodsUnit:    g.GoodsUnit,
		SupplierID:   g.SupplierID,
	}
	if g.Supplier != nil {
		view.Supplier = &SupplierSummary{Name: g.Supplier.Name, PhoneNumber: g.Supplier.PhoneNumber}
	}
	return view
}
