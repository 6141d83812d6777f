package service

import (
	"context"
	"errors"
	"testing"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/schema"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/testutil"
)

func TestSupplierDeleteCascadesGoods(t *testing.T) {
	db, svcs := setupServices(t)
	supplier := testutil.SeedSupplier(t, db, "Bakery Supply")
	testutil.SeedGoods(t, db, supplier.ID, "FLOUR", "1")
	testutil.SeedGoods(t, db, supplier.ID, "SUGAR", "1")
	other := testutil.SeedSupplier(t, db, "Dairy")
	testutil.SeedGoods(t, db, other.ID, "MILK", "1")

	if err := svcs.Supplier.Delete(context.Background(), supplier.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := testutil.Count(t, db, &entity.Goods{}, "supplier_id = ?", supplier.ID); n != 0 {
		t.Errorf("goods of deleted supplier = %d, want 0", n)
	}
	if n := testutil.Count(t, db, &entity.Goods{}, ""); n != 1 {
		t.Errorf("remaining goods = %d, want 1", n)
	}
}

func TestSupplierDeleteRefusedWithInvoices(t *testing.T) {
	db, svcs := setupServices(t)
	supplier := testutil.SeedSupplier(t, db, "Bakery Supply")
	flour := testutil.SeedGoods(t, db, supplier.ID, "FLOUR", "1")
	testutil.SeedInvoice(t, db, "INV-1", supplier.ID, testutil.InvoiceLine(flour.ID, "1", "10"))

	err := svcs.Supplier.Delete(context.Background(), supplier.ID)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
	if n := testutil.Count(t, db, &entity.Goods{}, ""); n != 1 {
		t.Errorf("goods = %d, want 1 after refused delete", n)
	}
}

func TestCategoryDeleteNullsRawMaterials(t *testing.T) {
	db, svcs := setupServices(t)
	ctx := context.Background()
	category := testutil.SeedCategory(t, db, "Dry goods")
	flour := testutil.SeedRawMaterial(t, db, "FLOUR", &category.ID)

	if err := svcs.Category.Delete(ctx, category.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	stored, err := svcs.RawMaterial.Get(ctx, flour.ID)
	if err != nil {
		t.Fatalf("raw material should survive category delete: %v", err)
	}
	if stored.CategoryID != nil {
		t.Errorf("category_id = %d, want null", *stored.CategoryID)
	}
}

func TestRawMaterialDeleteRefusedWithReceipts(t *testing.T) {
	db, svcs := setupServices(t)
	stock := testutil.SeedStock(t, db, "KHO-1")
	flour := testutil.SeedRawMaterial(t, db, "FLOUR", nil)
	testutil.SeedReceipt(t, db, "RC-1", stock.ID, testutil.ReceiptLine(flour.ID, "1"))

	err := svcs.RawMaterial.Delete(context.Background(), flour.ID)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
}

func TestStockDeleteCascadesReceipts(t *testing.T) {
	db, svcs := setupServices(t)
	stock := testutil.SeedStock(t, db, "KHO-1")
	flour := testutil.SeedRawMaterial(t, db, "FLOUR", nil)
	testutil.SeedReceipt(t, db, "RC-1", stock.ID, testutil.ReceiptLine(flour.ID, "1"))

	if err := svcs.Stock.Delete(context.Background(), stock.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n := testutil.Count(t, db, &entity.Receipt{}, ""); n != 0 {
		t.Errorf("receipts = %d, want 0", n)
	}
	if n := testutil.Count(t, db, &entity.ReceiptLine{}, ""); n != 0 {
		t.Errorf("receipt lines = %d, want 0", n)
	}
	if n := testutil.Count(t, db, &entity.RawMaterial{}, ""); n != 1 {
		t.Errorf("raw materials = %d, want 1", n)
	}
}

func TestGoodsBulkCreateIsAtomic(t *testing.T) {
	db, svcs := setupServices(t)
	supplier := testutil.SeedSupplier(t, db, "Bakery Supply")

	inputs := []schema.GoodsInput{
		{Name: ptr("Flour 25kg"), MaterialCode: ptr("FLOUR"), ConvertRate: dec("25"), GoodsUnit: ptr("sack"), SupplierID: ptr(supplier.ID)},
		{Name: ptr("Sugar"), MaterialCode: ptr("SUGAR"), ConvertRate: dec("1"), GoodsUnit: ptr("kg"), SupplierID: ptr(uint(404))},
	}
	_, err := svcs.Goods.Create(context.Background(), inputs)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}
	if n := testutil.Count(t, db, &entity.Goods{}, ""); n != 0 {
		t.Errorf("goods = %d, want 0", n)
	}

	inputs[1].SupplierID = ptr(supplier.ID)
	created, err := svcs.Goods.Create(context.Background(), inputs)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 2 || created[0].ID == 0 || created[1].ID <= created[0].ID {
		t.Errorf("created = %+v", created)
	}
}

func TestBulkUpdate(t *testing.T) {
	db, svcs := setupServices(t)
	ctx := context.Background()
	a := testutil.SeedStock(t, db, "KHO-A")
	b := testutil.SeedStock(t, db, "KHO-B")

	t.Run("unknown id rejects whole batch", func(t *testing.T) {
		patches := []schema.Patch[schema.StockInput]{
			{ID: a.ID, Fields: schema.StockInput{Location: ptr("Tầng 1")}},
			{ID: 999, Fields: schema.StockInput{Location: ptr("nowhere")}},
		}
		_, err := svcs.Stock.BulkUpdate(ctx, patches)
		var nf *NotFoundError
		if !errors.As(err, &nf) || nf.ID != 999 {
			t.Fatalf("expected NotFoundError for 999, got %v", err)
		}
		stored, _ := svcs.Stock.Get(ctx, a.ID)
		if stored.Location != nil {
			t.Errorf("stock A updated despite rejected batch: %s", *stored.Location)
		}
	})

	t.Run("partial fields merged", func(t *testing.T) {
		patches := []schema.Patch[schema.StockInput]{
			{ID: a.ID, Fields: schema.StockInput{Location: ptr("Tầng 1")}},
			{ID: b.ID, Fields: schema.StockInput{MaxCapacity: dec("500.5")}},
		}
		updated, err := svcs.Stock.BulkUpdate(ctx, patches)
		if err != nil {
			t.Fatalf("BulkUpdate: %v", err)
		}
		if updated[0].StockCode != "KHO-A" || *updated[0].Location != "Tầng 1" {
			t.Errorf("stock A = %+v", updated[0])
		}
		if updated[1].StockCode != "KHO-B" || !updated[1].MaxCapacity.Valid || updated[1].MaxCapacity.Decimal.StringFixed(1) != "500.5" {
			t.Errorf("stock B = %+v", updated[1])
		}
	})

	t.Run("repeated id applies patches in order", func(t *testing.T) {
		patches := []schema.Patch[schema.StockInput]{
			{ID: a.ID, Fields: schema.StockInput{StockCode: ptr("KHO-A2")}},
			{ID: a.ID, Fields: schema.StockInput{Location: ptr("Tầng 2")}},
		}
		updated, err := svcs.Stock.BulkUpdate(ctx, patches)
		if err != nil {
			t.Fatalf("BulkUpdate: %v", err)
		}
		if len(updated) != 2 || updated[0].StockCode != "KHO-A2" || updated[1].StockCode != "KHO-A2" {
			t.Fatalf("updated = %+v", updated)
		}
		stored, _ := svcs.Stock.Get(ctx, a.ID)
		if stored.StockCode != "KHO-A2" || stored.Location == nil || *stored.Location != "Tầng 2" {
			t.Errorf("stored = %+v", stored)
		}
	})
}

func TestUpdateGoodsRequiresExistingSupplier(t *testing.T) {
	db, svcs := setupServices(t)
	ctx := context.Background()
	supplier := testutil.SeedSupplier(t, db, "Bakery Supply")
	goods := testutil.SeedGoods(t, db, supplier.ID, "FLOUR", "1")

	_, err := svcs.Goods.Update(ctx, goods.ID, schema.GoodsInput{SupplierID: ptr(uint(77))})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError, got %T (%v)", err, err)
	}

	updated, err := svcs.Goods.Update(ctx, goods.ID, schema.GoodsInput{GoodsUnit: ptr("sack")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.GoodsUnit != "sack" || updated.MaterialCode != "FLOUR" || updated.Supplier == nil {
		t.Errorf("updated goods = %+v", updated)
	}
}
