package service

import (
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/repository"
	"go.uber.org/zap"
)

// Services 库存模块服务集合
type Services struct {
	Supplier    *SupplierService
	Goods       *GoodsService
	Category    *CategoryService
	RawMaterial *RawMaterialService
	Stock       *StockService
	Invoice     *InvoiceService
	Receipt     *ReceiptService
	Aggregation *AggregationService
	Report      *ReportService
}

func NewServices(repos *repository.Repositories, logger *zap.Logger) *Services {
	aggregation := NewAggregationService(repos)
	return &Services{
		Supplier:    NewSupplierService(repos, logger),
		Goods:       NewGoodsService(repos, logger),
		Category:    NewCategoryService(repos, logger),
		RawMaterial: NewRawMaterialService(repos, logger),
		Stock:       NewStockService(repos, logger),
		Invoice:     NewInvoiceService(repos, logger),
		Receipt:     NewReceiptService(repos, logger),
		Aggregation: aggregation,
		Report:      NewReportService(repos, aggregation),
	}
}
