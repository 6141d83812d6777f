package service

import (
	"context"
	"reflect"
	"testing"
)

func valueOf(t *testing.T, values []MaterialValue, code string) *string {
	t.Helper()
	for _, v := range values {
		if v.MaterialCode == code {
			if !v.Value.Valid {
				return nil
			}
			s := v.Value.Decimal.StringFixed(3)
			return &s
		}
	}
	t.Fatalf("material %s missing from %+v", code, values)
	return nil
}

func TestAggregation_InvoiceViews(t *testing.T) {
	db, svcs := setupServices(t)
	ctx := context.Background()
	supplier := testutilSupplier(t, db)
	flour := seedGoods(t, db, supplier, "FLOUR", "1.5")
	seedGoods(t, db, supplier, "SUGAR", "1")
	seedInvoice(t, db, "INV-1", supplier, invoiceRow(flour, "2.000", "1000"), invoiceRow(flour, "3.000", "1001"))

	invoiced, err := svcs.Aggregation.InvoicedStock(ctx)
	if err != nil {
		t.Fatalf("InvoicedStock: %v", err)
	}
	if got := valueOf(t, invoiced, "FLOUR"); got == nil || *got != "7.500" {
		t.Errorf("FLOUR invoice stock = %v, want 7.500", got)
	}
	if got := valueOf(t, invoiced, "SUGAR"); got != nil {
		t.Errorf("SUGAR invoice stock = %s, want null", *got)
	}

	averages, err := svcs.Aggregation.AveragePrices(ctx)
	if err != nil {
		t.Fatalf("AveragePrices: %v", err)
	}
	views := AveragePriceViews(averages)
	if len(views) != 2 || views[0].MaterialCode != "FLOUR" || views[1].MaterialCode != "SUGAR" {
		t.Fatalf("views = %+v", views)
	}
	if views[0].AverageBuyingPrice == nil || *views[0].AverageBuyingPrice != "1001" {
		t.Errorf("FLOUR average = %v, want 1001 (1000.5 rounded)", views[0].AverageBuyingPrice)
	}
	if views[1].AverageBuyingPrice != nil {
		t.Errorf("SUGAR average = %s, want null", *views[1].AverageBuyingPrice)
	}
}

func TestAggregation_SharedMaterialCodeBlends(t *testing.T) {
	db, svcs := setupServices(t)
	supplier := testutilSupplier(t, db)
	sack := seedGoods(t, db, supplier, "FLOUR", "25")
	bag := seedGoods(t, db, supplier, "FLOUR", "1")
	seedInvoice(t, db, "INV-2", supplier, invoiceRow(sack, "2", "500000"), invoiceRow(bag, "3.5", "21000"))

	invoiced, err := svcs.Aggregation.InvoicedStock(context.Background())
	if err != nil {
		t.Fatalf("InvoicedStock: %v", err)
	}
	if len(invoiced) != 1 {
		t.Fatalf("expected one FLOUR group, got %+v", invoiced)
	}
	if got := valueOf(t, invoiced, "FLOUR"); *got != "53.500" {
		t.Errorf("FLOUR = %s, want 53.500", *got)
	}
}

func TestAggregation_OnHandAcrossStocks(t *testing.T) {
	db, svcs := setupServices(t)
	north := seedStock(t, db, "KHO-BAC")
	south := seedStock(t, db, "KHO-NAM")
	flour := seedMaterial(t, db, "FLOUR")
	seedReceipt(t, db, "RC-N1", north, receiptRow(flour, "10"))
	seedReceipt(t, db, "RC-S1", south, receiptRow(flour, "2.5"))

	onHand, err := svcs.Aggregation.OnHand(context.Background())
	if err != nil {
		t.Fatalf("OnHand: %v", err)
	}
	if len(onHand) != 1 {
		t.Fatalf("materials = %+v", onHand)
	}
	if got := valueOf(t, onHand, "FLOUR"); got == nil || *got != "12.500" {
		t.Errorf("FLOUR = %v, want 12.500", got)
	}
}

func TestAggregation_OnHand(t *testing.T) {
	db, svcs := setupServices(t)
	ctx := context.Background()
	kho := seedStock(t, db, "KHO-1")
	seedStock(t, db, "KHO-EMPTY")
	butter := seedMaterial(t, db, "BUTTER")
	seedMaterial(t, db, "YEAST")
	seedReceipt(t, db, "RC-1", kho, receiptRow(butter, "4.250"))
	seedReceipt(t, db, "RC-2", kho, receiptRow(butter, "1.750"))

	onHand, err := svcs.Aggregation.OnHand(ctx)
	if err != nil {
		t.Fatalf("OnHand: %v", err)
	}
	if got := valueOf(t, onHand, "BUTTER"); got == nil || *got != "6.000" {
		t.Errorf("BUTTER = %v, want 6.000", got)
	}
	if got := valueOf(t, onHand, "YEAST"); got != nil {
		t.Errorf("YEAST = %s, want null", *got)
	}

	byStock, err := svcs.Aggregation.OnHandByStock(ctx)
	if err != nil {
		t.Fatalf("OnHandByStock: %v", err)
	}
	views := StockOnHandViews(byStock)
	if len(views) != 2 {
		t.Fatalf("stocks = %+v", views)
	}
	if views[0].StockCode != "KHO-1" || len(views[0].StockItem) != 1 {
		t.Fatalf("KHO-1 = %+v", views[0])
	}
	if item := views[0].StockItem[0]; item.MaterialCode != "BUTTER" || *item.TotalStockQuantity != "6.000" {
		t.Errorf("KHO-1 item = %+v", item)
	}
	if views[1].StockCode != "KHO-EMPTY" || views[1].StockItem == nil || len(views[1].StockItem) != 0 {
		t.Errorf("empty stock should list no items: %#v", views[1])
	}

	single, err := svcs.Aggregation.OnHandForStock(ctx, kho)
	if err != nil {
		t.Fatalf("OnHandForStock: %v", err)
	}
	if single.StockCode != "KHO-1" || len(single.Items) != 1 {
		t.Errorf("single stock = %+v", single)
	}
	if _, err := svcs.Aggregation.OnHandForStock(ctx, 999); err == nil {
		t.Error("expected NotFoundError for unknown stock")
	}
}

func TestAggregation_ReadsAreRepeatable(t *testing.T) {
	db, svcs := setupServices(t)
	ctx := context.Background()
	supplier := testutilSupplier(t, db)
	flour := seedGoods(t, db, supplier, "FLOUR", "1.5")
	seedInvoice(t, db, "INV-1", supplier, invoiceRow(flour, "1.25", "900"))
	stock := seedStock(t, db, "KHO-1")
	seedReceipt(t, db, "RC-1", stock, receiptRow(seedMaterial(t, db, "FLOUR"), "1.5"))

	first, err := svcs.Aggregation.Materials(ctx)
	if err != nil {
		t.Fatalf("Materials: %v", err)
	}
	second, err := svcs.Aggregation.Materials(ctx)
	if err != nil {
		t.Fatalf("Materials: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("consecutive reads differ:\n%+v\n%+v", first, second)
	}
	if len(first) != 1 {
		t.Fatalf("materials = %+v", first)
	}
	m := first[0]
	if *m.AverageBuyingPrice != "900" || *m.InvoiceStock != "1.875" || *m.TotalStockQuantity != "1.500" {
		t.Errorf("material view = avg %s, invoiced %s, on hand %s",
			*m.AverageBuyingPrice, *m.InvoiceStock, *m.TotalStockQuantity)
	}
}
