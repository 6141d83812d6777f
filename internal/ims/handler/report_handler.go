package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/report"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/service"
	"go.uber.org/zap"
)

// ReportHandler 报表导出
type ReportHandler struct {
	svc     *service.ReportService
	archive report.Archive
	logger  *zap.Logger
}

func NewReportHandler(svc *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// SetArchive 注入报表归档存储，未注入时归档接口返回 503
func (h *ReportHandler) SetArchive(archive report.Archive) {
	h.archive = archive
}

func (h *ReportHandler) inventoryWorkbook(c *gin.Context) ([]byte, bool) {
	rep, err := h.svc.Inventory(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	f, err := report.InventoryWorkbook(rep)
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		respondError(c, h.logger, err)
		return nil, false
	}
	return buf.Bytes(), true
}

// InventoryXLSX GET /reports/inventory.xlsx
func (h *ReportHandler) InventoryXLSX(c *gin.Context) {
	data, ok := h.inventoryWorkbook(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="inventory.xlsx"`)
	c.Data(http.StatusOK, report.XLSXContentType, data)
}

// ArchiveInventory POST /reports/inventory.xlsx/archive 生成工作簿并存入对象存储
func (h *ReportHandler) ArchiveInventory(c *gin.Context) {
	if h.archive == nil {
		Error(c, CodeUnavailable, "report archive is not configured")
		return
	}
	data, ok := h.inventoryWorkbook(c)
	if !ok {
		return
	}
	now := time.Now()
	name := report.ObjectName("inventory.xlsx", now)
	if err := h.archive.Put(c.Request.Context(), name, data, report.XLSXContentType); err != nil {
		h.logger.Error("Archive inventory workbook failed", zap.String("object", name), zap.Error(err))
		InternalError(c, "failed to archive report")
		return
	}
	Created(c, gin.H{
		"object":      name,
		"location":    h.archive.Location(name),
		"size":        len(data),
		"archived_at": now.Format(time.RFC3339),
	})
}

// OnHandCSV GET /reports/on-hand.csv?charset=windows-1258
func (h *ReportHandler) OnHandCSV(c *gin.Context) {
	views, err := h.svc.StockOnHand(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	charset := c.Query("charset")
	var buf bytes.Buffer
	if err := report.WriteOnHandCSV(&buf, views, charset); err != nil {
		if errors.Is(err, report.ErrUnknownCharset) {
			Unprocessable(c, err.Error())
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="on-hand.csv"`)
	c.Data(http.StatusOK, report.CSVContentType(charset), buf.Bytes())
}

// InvoicePDF GET /invoices/:id/pdf
func (h *ReportHandler) InvoicePDF(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	doc, err := h.svc.InvoiceDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteInvoicePDF(&buf, doc); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.pdf"`, doc.Invoice.Code))
	c.Data(http.StatusOK, report.PDFContentType, buf.Bytes())
}
