package repository

import (
	"context"
	"errors"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrInUse    = errors.New("record is referenced by other records")
)

// Repositories 库存模块仓库集合
type Repositories struct {
	db *gorm.DB

	Supplier    *CatalogRepository[entity.Supplier]
	Goods       *CatalogRepository[entity.Goods]
	Category    *CatalogRepository[entity.Category]
	RawMaterial *CatalogRepository[entity.RawMaterial]
	Stock       *CatalogRepository[entity.Stock]
	Invoice     *DocumentRepository[entity.Invoice, entity.InvoiceLine]
	Receipt     *DocumentRepository[entity.Receipt, entity.ReceiptLine]
	Movement    *MovementRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:          db,
		Supplier:    NewSupplierRepository(db),
		Goods:       NewGoodsRepository(db),
		Category:    NewCategoryRepository(db),
		RawMaterial: NewRawMaterialRepository(db),
		Stock:       NewStockRepository(db),
		Invoice:     NewInvoiceRepository(db),
		Receipt:     NewReceiptRepository(db),
		Movement:    NewMovementRepository(db),
	}
}

// Transaction 在一个数据库事务内执行 fn，传入的仓库集合全部绑定到该事务。
// fn 返回错误则整体回滚。
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// missingIDs 返回 ids 中在 model 表里不存在的部分，保持输入顺序并去重
func missingIDs(ctx context.Context, db *gorm.DB, model interface{}, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint
	if err := db.WithContext(ctx).Model(model).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	exists := make(map[uint]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}
	var missing []uint
	for _, id := range ids {
		if !exists[id] {
			missing = append(missing, id)
			exists[id] = true
		}
	}
	return missing, nil
}
