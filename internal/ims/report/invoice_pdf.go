package report

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/service"
)

// PDFContentType 下载响应头
const PDFContentType = "application/pdf"

// WriteInvoicePDF 输出发票PDF：表头信息 + 行项明细 + 合计（不含税）
func WriteInvoicePDF(w io.Writer, doc *service.InvoiceDocument) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Invoice "+doc.Invoice.Code), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, "Date: "+doc.Invoice.CreatedDate.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, tr("Supplier: "+doc.Supplier.Name), "", 1, "L", false, 0, "")
	if doc.Supplier.PhoneNumber != nil {
		pdf.CellFormat(0, 7, tr("Phone: "+*doc.Supplier.PhoneNumber), "", 1, "L", false, 0, "")
	}
	if doc.Supplier.Address != nil {
		pdf.CellFormat(0, 7, tr("Address: "+*doc.Supplier.Address), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)

	widths := []float64{10, 60, 25, 25, 30, 20}
	headers := []string{"#", "Goods", "Quantity", "Unit Price", "Subtotal", "VAT"}
	pdf.SetFont("Arial", "B", 11)
	for i, h := range headers {
		ln := 0
		if i == len(headers)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, h, "1", ln, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	total := decimal.Zero
	for i, line := range doc.Invoice.Lines {
		goods := doc.Goods[line.GoodsID]
		subtotal := line.BuyQuantity.Mul(line.BuyingPricePerUnit)
		total = total.Add(subtotal)
		vat := ""
		if line.VatPrecentage.Valid {
			vat = line.VatPrecentage.Decimal.String()
		}
		pdf.CellFormat(widths[0], 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 8, tr(fmt.Sprintf("%s (%s)", goods.Name, goods.GoodsUnit)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 8, line.BuyQuantity.StringFixed(3), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, line.BuyingPricePerUnit.StringFixed(0), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 8, subtotal.StringFixed(0), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 8, vat, "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[4], 8, total.StringFixed(0), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 8, "", "1", 1, "R", false, 0, "")

	return pdf.Output(w)
}
