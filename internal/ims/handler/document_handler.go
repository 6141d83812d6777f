package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/schema"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/service"
	"go.uber.org/zap"
)

type documentService[H any, HI any, LI any] interface {
	Create(ctx context.Context, doc schema.Document[HI, LI]) (*H, error)
	Replace(ctx context.Context, id uint, doc schema.Document[HI, LI]) (*H, error)
	Get(ctx context.Context, id uint) (*H, error)
	List(ctx context.Context) ([]H, error)
	Delete(ctx context.Context, id uint) error
}

// DocumentHandler 单据处理器：请求体为 {表头键: {...}, 行项键: [...]}
type DocumentHandler[H any, HI any, LI any] struct {
	svc    documentService[H, HI, LI]
	shape  schema.DocumentShape
	logger *zap.Logger
}

type (
	InvoiceHandler = DocumentHandler[entity.Invoice, schema.InvoiceInput, schema.InvoiceLineInput]
	ReceiptHandler = DocumentHandler[entity.Receipt, schema.ReceiptInput, schema.ReceiptLineInput]
)

func NewInvoiceHandler(svc *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, shape: schema.InvoiceShape, logger: logger}
}

func NewReceiptHandler(svc *service.ReceiptService, logger *zap.Logger) *ReceiptHandler {
	return &ReceiptHandler{svc: svc, shape: schema.ReceiptShape, logger: logger}
}

// Create POST / 原子创建表头与行项
func (h *DocumentHandler[H, HI, LI]) Create(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	doc, err := schema.DecodeDocument[HI, LI](raw, h.shape, schema.Full)
	if err != nil {
		respondError(c, h.logger, service.Invalid(err))
		return
	}
	created, err := h.svc.Create(c.Request.Context(), doc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Created(c, created)
}

// Replace PUT /:id 局部更新表头并整体替换行项
func (h *DocumentHandler[H, HI, LI]) Replace(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	doc, err := schema.DecodeDocument[HI, LI](raw, h.shape, schema.Partial)
	if err != nil {
		respondError(c, h.logger, service.Invalid(err))
		return
	}
	updated, err := h.svc.Replace(c.Request.Context(), id, doc)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, updated)
}

// List GET /
func (h *DocumentHandler[H, HI, LI]) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, items)
}

// Get GET /:id
func (h *DocumentHandler[H, HI, LI]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, item)
}

// Delete DELETE /:id
func (h *DocumentHandler[H, HI, LI]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, gin.H{"id": id})
}
