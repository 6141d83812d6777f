package handler

import "github.com/gin-gonic/gin"

type crudRoutes interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	BulkUpdate(c *gin.Context)
	Delete(c *gin.Context)
}

func registerCatalog(group *gin.RouterGroup, h crudRoutes) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.PUT("", h.BulkUpdate)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

// RegisterRoutes 注册库存模块路由；idempotent 只挂在创建单据的 POST 上
func RegisterRoutes(v1 *gin.RouterGroup, h *Handlers, idempotent ...gin.HandlerFunc) {
	registerCatalog(v1.Group("/suppliers"), h.Supplier)
	registerCatalog(v1.Group("/goods"), h.Goods)
	registerCatalog(v1.Group("/categories"), h.Category)
	registerCatalog(v1.Group("/raw-materials"), h.RawMaterial)

	stocks := v1.Group("/stocks")
	registerCatalog(stocks, h.Stock)
	stocks.GET("/:id/on-hand", h.Inventory.StockOnHand)

	invoices := v1.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", chain(idempotent, h.Invoice.Create)...)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Replace)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.GET("/:id/pdf", h.Report.InvoicePDF)
	}

	receipts := v1.Group("/receipts")
	{
		receipts.GET("", h.Receipt.List)
		receipts.POST("", chain(idempotent, h.Receipt.Create)...)
		receipts.GET("/:id", h.Receipt.Get)
		receipts.PUT("/:id", h.Receipt.Replace)
		receipts.DELETE("/:id", h.Receipt.Delete)
	}

	inventory := v1.Group("/inventory")
	{
		inventory.GET("/average-prices", h.Inventory.AveragePrices)
		inventory.GET("/invoiced-stock", h.Inventory.InvoicedStock)
		inventory.GET("/on-hand", h.Inventory.OnHand)
		inventory.GET("/on-hand/by-stock", h.Inventory.OnHandByStock)
		inventory.GET("/materials", h.Inventory.Materials)
	}

	reports := v1.Group("/reports")
	{
		reports.GET("/inventory.xlsx", h.Report.InventoryXLSX)
		reports.POST("/inventory.xlsx/archive", h.Report.ArchiveInventory)
		reports.GET("/on-hand.csv", h.Report.OnHandCSV)
	}
}

func chain(middleware []gin.HandlerFunc, handler gin.HandlerFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	return append(handlers, handler)
}
