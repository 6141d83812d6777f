package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/repository"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/schema"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T {
	return &v
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func setupServices(t *testing.T) (*gorm.DB, *Services) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return db, NewServices(repository.NewRepositories(db), zap.NewNop())
}

func invoiceDoc(code string, supplierID uint, lines ...schema.InvoiceLineInput) schema.Document[schema.InvoiceInput, schema.InvoiceLineInput] {
	return schema.Document[schema.InvoiceInput, schema.InvoiceLineInput]{
		Header: schema.InvoiceInput{
			Code:        ptr(code),
			CreatedDate: ptr(entity.NewDate(2026, time.October, 5)),
			SupplierID:  ptr(supplierID),
		},
		Lines: lines,
	}
}

func invoiceLine(goodsID uint, qty, price string) schema.InvoiceLineInput {
	return schema.InvoiceLineInput{GoodsID: ptr(goodsID), BuyQuantity: dec(qty), BuyingPricePerUnit: dec(price)}
}

func TestInvoiceCreate(t *testing.T) {
	db, svcs := setupServices(t)
	ctx := context.Background()
	supplier := testutil.SeedSupplier(t, db, "Bakery Supply")
	flour := testutil.SeedGoods(t, db, supplier.ID, "FLOUR", "1.5")
	sugar := testutil.SeedGoods(t, db, supplier.ID, "SUGAR", "1")

	line := invoiceLine(flour.ID, "2.000", "1000")
	line.VatPrecentage = dec("0.1")
	inv, err := svcs.Invoice.Create(ctx, invoiceDoc("INV-001", supplier.ID, line, invoiceLine(sugar.ID, "3.000", "1200")))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inv.ID == 0 || len(inv.Lines) != 2 {
		t.Fatalf("unexpected invoice: %+v", inv)
	}
	for _, l := range inv.Lines {
		if l.InvoiceID != inv.ID || l.ID == 0 {
			t.Errorf("line not bound to header: %+v", l)
		}
	}
	if !inv.Lines[0].VatPrecentage.Valid || inv.Lines[1].VatPrecentage.Valid {
		t.Errorf("vat_precentage null handling wrong: %+v", inv.Lines)
	}

	stored, err := svcs.Invoice.Get(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(stored.Lines) != 2 || stored.Lines[0].GoodsID != flour.ID {
		t.Errorf("stored lines = %+v", stored.Lines)
	}
	if !stored.Lines[0].BuyQuantity.Equal(decimal.RequireFromString("2")) {
		t.Errorf("buy_quantity = %s", stored.Lines[0].BuyQuantity)
	}
}

func TestInvoiceCreate_UnknownGoodsRollsBack(t *testing.T) {
	db, svcs := setupServices(t)
	supplier := testutil.SeedSupplier(t, db, "Bakery Supply")
	flour := testutil.SeedGoods(t, db, supplier.ID, "FLOUR", "1.5")

	_, err := svcs.Invoice.Create(context.Background(),
		invoiceDoc("INV-BAD", supplier.ID, invoiceLine(flour.ID, "1", "100"), invoiceLine(9999, "1", "100")))

	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
	if n := testutil.Count(t, db, &entity.Invoice{}, "code = ?", "INV-BAD"); n != 0 {
		t.Errorf("invoice left behind after rollback: %d", n)
	}
	if n := testutil.Count(t, db, &entity.InvoiceLine{}, ""); n != 0 {
		t.Errorf("lines left behind after rollback: %d", n)
	}
}

func TestInvoiceCreate_UnknownSupplier(t *testing.T) {
	db, svcs := setupServices(t)
	supplier := testutil.SeedSupplier(t, db, "Bakery Supply")
	flour := testutil.SeedGoods(t, db, supplier.ID, "FLOUR", "1.5")

	_, err := svcs.Invoice.Create(context.Background(), invoiceDoc("INV-X", 4242, invoiceLine(flour.ID, "1", "100")))
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
	if n := testutil.Count(t, db, &entity.Invoice{}, ""); n != 0 {
		t.Errorf("invoices = %d, want 0", n)
	}
}

func TestInvoiceCreate_EmptyLines(t *testing.T) {
	db, svcs := setupServices(t)
	supplier := testutil.SeedSupplier(t, db, "Bakery Supply")

	_, err := svcs.Invoice.Create(context.Background(), invoiceDoc("INV-EMPTY", supplier.ID))
	var invalid *ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %T (%v)", err, err)
	}
	if n := testutil.Count(t, db, &entity.Invoice{}, ""); n != 0 {
		t.Errorf("invoices = %d, want 0", n)
	}
}

func TestReplaceLines(t *testing.T) {
	db, svcs := setupServices(t)
	ctx := context.Background()
	supplier := testutil.SeedSupplier(t, db, "Bakery Supply")
	flour := testutil.SeedGoods(t, db, supplier.ID, "FLOUR", "1.5")
	butter := testutil.SeedGoods(t, db, supplier.ID, "BUTTER", "1")
	inv := testutil.SeedInvoice(t, db, "INV-100", supplier.ID,
		testutil.InvoiceLine(flour.ID, "1", "100"),
		testutil.InvoiceLine(flour.ID, "2", "110"))

	t.Run("new lines replace old ones", func(t *testing.T) {
		doc := schema.Document[schema.InvoiceInput, schema.InvoiceLineInput]{
			Header: schema.InvoiceInput{Code: ptr("INV-100A")},
			Lines:  []schema.InvoiceLineInput{invoiceLine(butter.ID, "4.5", "300")},
		}
		updated, err := svcs.Invoice.Replace(ctx, inv.ID, doc)
		if err != nil {
			t.Fatalf("Replace: %v", err)
		}
		if updated.Code != "INV-100A" || updated.SupplierID != supplier.ID {
			t.Errorf("header not merged: %+v", updated)
		}
		if len(updated.Lines) != 1 || updated.Lines[0].GoodsID != butter.ID {
			t.Fatalf("returned lines = %+v", updated.Lines)
		}

		stored, _ := svcs.Invoice.Get(ctx, inv.ID)
		if len(stored.Lines) != 1 || stored.Lines[0].GoodsID != butter.ID {
			t.Errorf("stored lines = %+v", stored.Lines)
		}
	})

	t.Run("failed replace keeps previous state", func(t *testing.T) {
		doc := schema.Document[schema.InvoiceInput, schema.InvoiceLineInput]{
			Header: schema.InvoiceInput{Code: ptr("INV-SHOULD-NOT-STICK")},
			Lines:  []schema.InvoiceLineInput{invoiceLine(flour.ID, "1", "1"), invoiceLine(777, "1", "1")},
		}
		_, err := svcs.Invoice.Replace(ctx, inv.ID, doc)
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %T (%v)", err, err)
		}
		stored, _ := svcs.Invoice.Get(ctx, inv.ID)
		if stored.Code != "INV-100A" {
			t.Errorf("code = %s, want INV-100A", stored.Code)
		}
		if len(stored.Lines) != 1 || stored.Lines[0].GoodsID != butter.ID {
			t.Errorf("lines changed after rollback: %+v", stored.Lines)
		}
	})

	t.Run("empty list clears lines", func(t *testing.T) {
		updated, err := svcs.Invoice.Replace(ctx, inv.ID, schema.Document[schema.InvoiceInput, schema.InvoiceLineInput]{})
		if err != nil {
			t.Fatalf("Replace: %v", err)
		}
		if updated.Lines == nil || len(updated.Lines) != 0 {
			t.Errorf("lines = %#v, want empty slice", updated.Lines)
		}
		if n := testutil.Count(t, db, &entity.InvoiceLine{}, "invoice_id = ?", inv.ID); n != 0 {
			t.Errorf("stored lines = %d, want 0", n)
		}
	})

	t.Run("unknown header", func(t *testing.T) {
		_, err := svcs.Invoice.Replace(ctx, 12345, schema.Document[schema.InvoiceInput, schema.InvoiceLineInput]{})
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("expected NotFoundError, got %T (%v)", err, err)
		}
	})
}

func TestReceiptCreateAndDelete(t *testing.T) {
	db, svcs := setupServices(t)
	ctx := context.Background()
	stock := testutil.SeedStock(t, db, "KHO-1")
	flour := testutil.SeedRawMaterial(t, db, "FLOUR", nil)

	doc := schema.Document[schema.ReceiptInput, schema.ReceiptLineInput]{
		Header: schema.ReceiptInput{
			ReceiptCode: ptr("RC-001"),
			CreatedDate: ptr(entity.NewDate(2026, time.October, 6)),
			StockID:     ptr(stock.ID),
		},
		Lines: []schema.ReceiptLineInput{{RawMaterialID: ptr(flour.ID), Quantity: dec("2.5")}},
	}
	receipt, err := svcs.Receipt.Create(ctx, doc)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if receipt.RequestCode != nil || len(receipt.Lines) != 1 || receipt.Lines[0].ReceiptID != receipt.ID {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	doc.Header.StockID = ptr(uint(999))
	doc.Header.ReceiptCode = ptr("RC-002")
	if _, err := svcs.Receipt.Create(ctx, doc); err == nil {
		t.Error("expected error for unknown stock")
	}

	if err := svcs.Receipt.Delete(ctx, receipt.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := testutil.Count(t, db, &entity.ReceiptLine{}, ""); n != 0 {
		t.Errorf("receipt lines = %d, want 0", n)
	}
	var nf *NotFoundError
	if err := svcs.Receipt.Delete(ctx, receipt.ID); !errors.As(err, &nf) {
		t.Errorf("second delete: expected NotFoundError, got %v", err)
	}
}
