package report

import (
	"fmt"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/service"
	"github.com/xuri/excelize/v2"
)

// 工作表名称
const (
	SheetMaterials     = "Materials"
	SheetAveragePrices = "Average Prices"
	SheetInvoicedStock = "Invoiced Stock"
	SheetOnHand        = "On Hand"
	SheetByStock       = "On Hand By Stock"
)

// XLSXContentType 下载响应头
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type sheetWriter struct {
	f      *excelize.File
	header int
}

func newSheetWriter(f *excelize.File) (*sheetWriter, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}
	return &sheetWriter{f: f, header: header}, nil
}

// writeHeader 写表头并设置列宽
func (w *sheetWriter) writeHeader(sheet string, headers []string, widths []float64) {
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := fmt.Sprintf("%s1", col)
		w.f.SetCellValue(sheet, cell, h)
		w.f.SetCellStyle(sheet, cell, cell, w.header)
		if i < len(widths) {
			w.f.SetColWidth(sheet, col, col, widths[i])
		}
	}
}

func (w *sheetWriter) writeRow(sheet string, row int, values ...interface{}) {
	for i, v := range values {
		col, _ := excelize.ColumnNumberToName(i + 1)
		w.f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v)
	}
}

// cellValue null 写成空单元格
func cellValue(v *string) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

// InventoryWorkbook 把全部库存聚合视图导出为一个工作簿，每个视图一个工作表
func InventoryWorkbook(rep *service.InventoryReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetMaterials); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetAveragePrices, SheetInvoicedStock, SheetOnHand, SheetByStock} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	w, err := newSheetWriter(f)
	if err != nil {
		return nil, err
	}

	w.writeHeader(SheetMaterials,
		[]string{"Code", "Name", "Unit", "Average Buying Price", "Invoice Stock", "Total Stock Quantity"},
		[]float64{16, 30, 10, 22, 16, 22})
	for i, m := range rep.Materials {
		w.writeRow(SheetMaterials, i+2, m.Code, m.Name, m.DefaultUnit,
			cellValue(m.AverageBuyingPrice), cellValue(m.InvoiceStock), cellValue(m.TotalStockQuantity))
	}

	w.writeHeader(SheetAveragePrices, []string{"Material Code", "Average Buying Price"}, []float64{18, 22})
	for i, v := range rep.AveragePrices {
		w.writeRow(SheetAveragePrices, i+2, v.MaterialCode, cellValue(v.AverageBuyingPrice))
	}

	w.writeHeader(SheetInvoicedStock, []string{"Material Code", "Invoice Stock"}, []float64{18, 16})
	for i, v := range rep.InvoicedStock {
		w.writeRow(SheetInvoicedStock, i+2, v.MaterialCode, cellValue(v.InvoiceStock))
	}

	w.writeHeader(SheetOnHand, []string{"Material Code", "Total Stock Quantity"}, []float64{18, 22})
	for i, v := range rep.OnHand {
		w.writeRow(SheetOnHand, i+2, v.MaterialCode, cellValue(v.TotalStockQuantity))
	}

	w.writeHeader(SheetByStock, []string{"Stock Code", "Material Code", "Total Stock Quantity"}, []float64{16, 18, 22})
	row := 2
	for _, stock := range rep.ByStock {
		if len(stock.StockItem) == 0 {
			w.writeRow(SheetByStock, row, stock.StockCode, "", "")
			row++
			continue
		}
		for _, item := range stock.StockItem {
			w.writeRow(SheetByStock, row, stock.StockCode, item.MaterialCode, cellValue(item.TotalStockQuantity))
			row++
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}
