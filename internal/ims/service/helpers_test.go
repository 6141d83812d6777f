package service

import (
	"testing"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/testutil"
	"gorm.io/gorm"
)

func testutilSupplier(t *testing.T, db *gorm.DB) uint {
	return testutil.SeedSupplier(t, db, "Bakery Supply").ID
}

func seedGoods(t *testing.T, db *gorm.DB, supplierID uint, code, rate string) uint {
	return testutil.SeedGoods(t, db, supplierID, code, rate).ID
}

func seedInvoice(t *testing.T, db *gorm.DB, code string, supplierID uint, lines ...entity.InvoiceLine) uint {
	return testutil.SeedInvoice(t, db, code, supplierID, lines...).ID
}

func invoiceRow(goodsID uint, qty, price string) entity.InvoiceLine {
	return testutil.InvoiceLine(goodsID, qty, price)
}

func seedStock(t *testing.T, db *gorm.DB, code string) uint {
	return testutil.SeedStock(t, db, code).ID
}

func seedMaterial(t *testing.T, db *gorm.DB, code string) uint {
	return testutil.SeedRawMaterial(t, db, code, nil).ID
}

func seedReceipt(t *testing.T, db *gorm.DB, code string, stockID uint, lines ...entity.ReceiptLine) uint {
	return testutil.SeedReceipt(t, db, code, stockID, lines...).ID
}

func receiptRow(materialID uint, qty string) entity.ReceiptLine {
	return testutil.ReceiptLine(materialID, qty)
}
