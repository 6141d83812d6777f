package entity

import "gorm.io/gorm"

// AutoMigrate 自动迁移库存模块所有表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// 基础数据
		&Supplier{},
		&Goods{},
		&Category{},
		&RawMaterial{},
		&Stock{},

		// 采购发票
		&Invoice{},
		&InvoiceLine{},

		// 入库
		&Receipt{},
		&ReceiptLine{},
	)
}
