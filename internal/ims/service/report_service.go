package service

import (
	"context"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/repository"
)

// InvoiceDocument 打印发票所需的数据
type InvoiceDocument struct {
	Invoice  entity.Invoice
	Supplier entity.Supplier
	Goods    map[uint]entity.Goods
}

// InventoryReport 库存报表数据
type InventoryReport struct {
	Materials     []MaterialView
	AveragePrices []AveragePriceView
	InvoicedStock []InvoiceStockView
	OnHand        []OnHandView
	ByStock       []StockOnHandView
}

// ReportService 报表数据装配
type ReportService struct {
	repos       *repository.Repositories
	aggregation *AggregationService
}

func NewReportService(repos *repository.Repositories, aggregation *AggregationService) *ReportService {
	return &ReportService{repos: repos, aggregation: aggregation}
}

// InvoiceDocument 读取发票、供应商及行项引用的商品
func (s *ReportService) InvoiceDocument(ctx context.Context, id uint) (*InvoiceDocument, error) {
	invoice, err := s.repos.Invoice.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError("invoice", id, err)
	}
	supplier, err := s.repos.Supplier.FindByID(ctx, invoice.SupplierID)
	if err != nil {
		return nil, lookupError("supplier", invoice.SupplierID, err)
	}

	doc := &InvoiceDocument{Invoice: *invoice, Supplier: *supplier, Goods: make(map[uint]entity.Goods)}
	for _, line := range invoice.Lines {
		if _, ok := doc.Goods[line.GoodsID]; ok {
			continue
		}
		goods, err := s.repos.Goods.FindByID(ctx, line.GoodsID)
		if err != nil {
			return nil, lookupError("goods", line.GoodsID, err)
		}
		doc.Goods[line.GoodsID] = *goods
	}
	return doc, nil
}

// Inventory 汇总全部聚合视图
func (s *ReportService) Inventory(ctx context.Context) (*InventoryReport, error) {
	materials, err := s.aggregation.Materials(ctx)
	if err != nil {
		return nil, err
	}
	averages, err := s.aggregation.AveragePrices(ctx)
	if err != nil {
		return nil, err
	}
	invoiced, err := s.aggregation.InvoicedStock(ctx)
	if err != nil {
		return nil, err
	}
	onHand, err := s.aggregation.OnHand(ctx)
	if err != nil {
		return nil, err
	}
	byStock, err := s.aggregation.OnHandByStock(ctx)
	if err != nil {
		return nil, err
	}
	return &InventoryReport{
		Materials:     materials,
		AveragePrices: AveragePriceViews(averages),
		InvoicedStock: InvoiceStockViews(invoiced),
		OnHand:        OnHandViews(onHand),
		ByStock:       StockOnHandViews(byStock),
	}, nil
}

// StockOnHand 按库位展开的在库数量
func (s *ReportService) StockOnHand(ctx context.Context) ([]StockOnHandView, error) {
	balances, err := s.aggregation.OnHandByStock(ctx)
	if err != nil {
		return nil, err
	}
	return StockOnHandViews(balances), nil
}
