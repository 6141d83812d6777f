package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/service"
	"go.uber.org/zap"
)

// InventoryHandler 库存聚合视图
type InventoryHandler struct {
	svc    *service.AggregationService
	logger *zap.Logger
}

func NewInventoryHandler(svc *service.AggregationService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, logger: logger}
}

// AveragePrices GET /inventory/average-prices
func (h *InventoryHandler) AveragePrices(c *gin.Context) {
	values, err := h.svc.AveragePrices(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, service.AveragePriceViews(values))
}

// InvoicedStock GET /inventory/invoiced-stock
func (h *InventoryHandler) InvoicedStock(c *gin.Context) {
	values, err := h.svc.InvoicedStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, service.InvoiceStockViews(values))
}

// OnHand GET /inventory/on-hand
func (h *InventoryHandler) OnHand(c *gin.Context) {
	values, err := h.svc.OnHand(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, service.OnHandViews(values))
}

// OnHandByStock GET /inventory/on-hand/by-stock
func (h *InventoryHandler) OnHandByStock(c *gin.Context) {
	balances, err := h.svc.OnHandByStock(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, service.StockOnHandViews(balances))
}

// StockOnHand GET /stocks/:id/on-hand
func (h *InventoryHandler) StockOnHand(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	balance, err := h.svc.OnHandForStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, service.StockOnHandViewOf(*balance))
}

// Materials GET /inventory/materials
func (h *InventoryHandler) Materials(c *gin.Context) {
	views, err := h.svc.Materials(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, views)
}
