package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/schema"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/service"
	"go.uber.org/zap"
)

// CatalogHandler 基础数据 CRUD 处理器
type CatalogHandler[T any, I schema.Input[T]] struct {
	svc    *service.CatalogService[T, I]
	render func(T) interface{}
	logger *zap.Logger
}

func NewCatalogHandler[T any, I schema.Input[T]](svc *service.CatalogService[T, I], render func(T) interface{}, logger *zap.Logger) *CatalogHandler[T, I] {
	return &CatalogHandler[T, I]{svc: svc, render: render, logger: logger}
}

func (h *CatalogHandler[T, I]) renderAll(items []T) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = h.render(item)
	}
	return out
}

// Create POST / ：对象创建一条，数组批量创建
func (h *CatalogHandler[T, I]) Create(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}

	if schema.IsList(raw) {
		inputs, err := schema.DecodeMany[I](raw, schema.Full)
		if err != nil {
			respondError(c, h.logger, service.Invalid(err))
			return
		}
		items, err := h.svc.Create(c.Request.Context(), inputs)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		Created(c, h.renderAll(items))
		return
	}

	input, err := schema.DecodeOne[I](raw, schema.Full)
	if err != nil {
		respondError(c, h.logger, service.Invalid(err))
		return
	}
	items, err := h.svc.Create(c.Request.Context(), []I{input})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Created(c, h.render(items[0]))
}

// List GET /
func (h *CatalogHandler[T, I]) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, h.renderAll(items))
}

// Get GET /:id
func (h *CatalogHandler[T, I]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, h.render(*item))
}

// Update PUT /:id 局部更新
func (h *CatalogHandler[T, I]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	raw, ok := readBody(c)
	if !ok {
		return
	}
	patch, err := schema.DecodeOne[I](raw, schema.Partial)
	if err != nil {
		respondError(c, h.logger, service.Invalid(err))
		return
	}
	item, err := h.svc.Update(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, h.render(*item))
}

// BulkUpdate PUT / 批量局部更新，每个元素必须带 id
func (h *CatalogHandler[T, I]) BulkUpdate(c *gin.Context) {
	raw, ok := readBody(c)
	if !ok {
		return
	}
	patches, err := schema.DecodePatches[I](raw)
	if err != nil {
		respondError(c, h.logger, service.Invalid(err))
		return
	}
	items, err := h.svc.BulkUpdate(c.Request.Context(), patches)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	Success(c, h.renderAll(items))
}

// Delete DELETE /:id
func (h *CatalogHandler[T, I]) Delete(c *gin.Context) {
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
