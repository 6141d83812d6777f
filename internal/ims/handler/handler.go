package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/schema"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/service"
	"go.uber.org/zap"
)

// 错误码：HTTP 状态码 * 100 + 序号
const (
	CodeNotFound      = 40400
	CodeUnprocessable = 42200
	CodeValidation    = 42201
	CodeConflict      = 42202
	CodeInternal      = 50000
	CodeUnavailable   = 50300
)

// Handlers 库存模块处理器集合
type Handlers struct {
	Supplier    *CatalogHandler[entity.Supplier, schema.SupplierInput]
	Goods       *CatalogHandler[entity.Goods, schema.GoodsInput]
	Category    *CatalogHandler[entity.Category, schema.CategoryInput]
	RawMaterial *CatalogHandler[entity.RawMaterial, schema.RawMaterialInput]
	Stock       *CatalogHandler[entity.Stock, schema.StockInput]
	Invoice     *InvoiceHandler
	Receipt     *ReceiptHandler
	Inventory   *InventoryHandler
	Report      *ReportHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svcs *service.Services, logger *zap.Logger) *Handlers {
	return &Handlers{
		Supplier:    NewCatalogHandler(svcs.Supplier, renderSupplier, logger),
		Goods:       NewCatalogHandler(svcs.Goods, renderGoods, logger),
		Category:    NewCatalogHandler(svcs.Category, renderAs[entity.Category], logger),
		RawMaterial: NewCatalogHandler(svcs.RawMaterial, renderAs[entity.RawMaterial], logger),
		Stock:       NewCatalogHandler(svcs.Stock, renderAs[entity.Stock], logger),
		Invoice:     NewInvoiceHandler(svcs.Invoice, logger),
		Receipt:     NewReceiptHandler(svcs.Receipt, logger),
		Inventory:   NewInventoryHandler(svcs.Aggregation, logger),
		Report:      NewReportHandler(svcs.Report, logger),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	ErrorWithData(c, code, message, nil)
}

func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func NotFound(c *gin.Context, message string) {
	Error(c, CodeNotFound, message)
}

func Unprocessable(c *gin.Context, message string) {
	Error(c, CodeUnprocessable, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, CodeInternal, message)
}

// ValidationFailed 422，data.errors 列出每个字段错误
func ValidationFailed(c *gin.Context, message string, fields schema.Errors) {
	if fields == nil {
		fields = schema.Errors{}
	}
	ErrorWithData(c, CodeValidation, message, gin.H{"errors": fields})
}

// respondError 把服务层错误映射为响应
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var (
		ve *service.ValidationError
		nf *service.NotFoundError
		ce *service.ConflictError
		fe schema.Errors
	)
	switch {
	case errors.As(err, &ve):
		ValidationFailed(c, ve.Message, ve.Fields)
	case errors.As(err, &fe):
		ValidationFailed(c, "invalid input", fe)
	case errors.As(err, &nf):
		NotFound(c, nf.Error())
	case errors.As(err, &ce):
		Error(c, CodeConflict, ce.Message)
	default:
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		InternalError(c, "internal server error")
	}
}

// parseID 解析路径参数 id；非正整数按不存在处理
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		NotFound(c, "invalid id: "+c.Param("id"))
		return 0, false
	}
	return uint(id), true
}

// readBody 读取原始请求体，空体或非法 JSON 直接返回 422
func readBody(c *gin.Context) (json.RawMessage, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		Unprocessable(c, "failed to read request body")
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		Unprocessable(c, "No input data provided")
		return nil, false
	}
	if !json.Valid(raw) {
		Unprocessable(c, "malformed JSON body")
		return nil, false
	}
	return raw, true
}

func renderAs[T any](item T) interface{} {
	return item
}

func renderSupplier(s entity.Supplier) interface{} {
	return service.SupplierViewOf(s)
}

func renderGoods(g entity.Goods) interface{} {
	return service.GoodsViewOf(g)
}
