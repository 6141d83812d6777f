package repository

import (
	"context"
	"fmt"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogRepository 基础数据通用仓库（供应商、商品、分类、原材料、库位）
type CatalogRepository[T any] struct {
	db           *gorm.DB
	preloads     []string
	beforeDelete func(tx *gorm.DB, id uint) error
}

// FindByID 根据ID查找
func (r *CatalogRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	var item T
	query := r.db.WithContext(ctx)
	for _, p := range r.preloads {
		query = query.Preload(p)
	}
	if err := query.First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

// FindAll 按ID顺序查询全部
func (r *CatalogRepository[T]) FindAll(ctx context.Context) ([]T, error) {
	var items []T
	query := r.db.WithContext(ctx)
	for _, p := range r.preloads {
		query = query.Preload(p)
	}
	err := query.Order("id ASC").Find(&items).Error
	return items, err
}

// MissingIDs 返回不存在的ID
func (r *CatalogRepository[T]) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return missingIDs(ctx, r.db, new(T), ids)
}

// Create 批量插入，生成的ID回填到 items
func (r *CatalogRepository[T]) Create(ctx context.Context, items []T) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&items).Error
}

// Refresh 按已回填的主键重新加载关联
func (r *CatalogRepository[T]) Refresh(ctx context.Context, items []T) error {
	if len(r.preloads) == 0 {
		return nil
	}
	for i := range items {
		query := r.db.WithContext(ctx)
		for _, p := range r.preloads {
			query = query.Preload(p)
		}
		if err := query.First(&items[i]).Error; err != nil {
			return notFound(err)
		}
	}
	return nil
}

// Save 整行更新（不含关联）
func (r *CatalogRepository[T]) Save(ctx context.Context, item *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

// Delete 删除记录，先执行该实体的级联规则
func (r *CatalogRepository[T]) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(new(T), id).Error; err != nil {
			return notFound(err)
		}
		if r.beforeDelete != nil {
			if err := r.beforeDelete(tx, id); err != nil {
				return err
			}
		}
		return tx.Delete(new(T), id).Error
	})
}

// NewSupplierRepository 供应商仓库，删除时级联删除其商品
func NewSupplierRepository(db *gorm.DB) *CatalogRepository[entity.Supplier] {
	return &CatalogRepository[entity.Supplier]{
		db:       db,
		preloads: []string{"Goods"},
		beforeDelete: func(tx *gorm.DB, id uint) error {
			var invoices int64
			if err := tx.Model(&entity.Invoice{}).Where("supplier_id = ?", id).Count(&invoices).Error; err != nil {
				return err
			}
			if invoices > 0 {
				return fmt.Errorf("%w: supplier %d has %d invoices", ErrInUse, id, invoices)
			}
			var lines int64
			err := tx.Model(&entity.InvoiceLine{}).
				Joins("JOIN goods ON goods.id = invoice_goods.goods_id").
				Where("goods.supplier_id = ?", id).
				Count(&lines).Error
			if err != nil {
				return err
			}
			if lines > 0 {
				return fmt.Errorf("%w: goods of supplier %d appear on invoices", ErrInUse, id)
			}
			return tx.Where("supplier_id = ?", id).Delete(&entity.Goods{}).Error
		},
	}
}

// NewGoodsRepository 商品仓库
func NewGoodsRepository(db *gorm.DB) *CatalogRepository[entity.Goods] {
	return &CatalogRepository[entity.Goods]{
		db:       db,
		preloads: []string{"Supplier"},
		beforeDelete: func(tx *gorm.DB, id uint) error {
			var lines int64
			if err := tx.Model(&entity.InvoiceLine{}).Where("goods_id = ?", id).Count(&lines).Error; err != nil {
				return err
			}
			if lines > 0 {
				return fmt.Errorf("%w: goods %d appears on %d invoice lines", ErrInUse, id, lines)
			}
			return nil
		},
	}
}

// NewCategoryRepository 分类仓库，删除时把原材料的 category_id 置空
func NewCategoryRepository(db *gorm.DB) *CatalogRepository[entity.Category] {
	return &CatalogRepository[entity.Category]{
		db: db,
		beforeDelete: func(tx *gorm.DB, id uint) error {
			return tx.Model(&entity.RawMaterial{}).
				Where("category_id = ?", id).
				Update("category_id", nil).Error
		},
	}
}

// NewRawMaterialRepository 原材料仓库，有入库记录时拒绝删除
func NewRawMaterialRepository(db *gorm.DB) *CatalogRepository[entity.RawMaterial] {
	return &CatalogRepository[entity.RawMaterial]{
		db: db,
		beforeDelete: func(tx *gorm.DB, id uint) error {
			var lines int64
			if err := tx.Model(&entity.ReceiptLine{}).Where("raw_material_id = ?", id).Count(&lines).Error; err != nil {
				return err
			}
			if lines > 0 {
				return fmt.Errorf("%w: raw material %d appears on %d receipt lines", ErrInUse, id, lines)
			}
			return nil
		},
	}
}

// NewStockRepository 库位仓库，删除时级联删除入库单及行项
func NewStockRepository(db *gorm.DB) *CatalogRepository[entity.Stock] {
	return &CatalogRepository[entity.Stock]{
		db: db,
		beforeDelete: func(tx *gorm.DB, id uint) error {
			receipts := tx.Model(&entity.Receipt{}).Select("id").Where("stock_id = ?", id)
			if err := tx.Where("receipt_id IN (?)", receipts).Delete(&entity.ReceiptLine{}).Error; err != nil {
				return err
			}
			return tx.Where("stock_id = ?", id).Delete(&entity.Receipt{}).Error
		},
	}
}
