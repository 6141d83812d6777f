package repository

import (
	"context"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DocumentRepository 表头 + 行项单据仓库（发票、入库单）。
// 表头通过 Lines 切片持有行项，行项只保存外键 fk。
type DocumentRepository[H any, L any] struct {
	db *gorm.DB
	fk string
}

func NewInvoiceRepository(db *gorm.DB) *DocumentRepository[entity.Invoice, entity.InvoiceLine] {
	return &DocumentRepository[entity.Invoice, entity.InvoiceLine]{db: db, fk: "invoice_id"}
}

func NewReceiptRepository(db *gorm.DB) *DocumentRepository[entity.Receipt, entity.ReceiptLine] {
	return &DocumentRepository[entity.Receipt, entity.ReceiptLine]{db: db, fk: "receipt_id"}
}

func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// FindByID 查找单据（含行项）
func (r *DocumentRepository[H, L]) FindByID(ctx context.Context, id uint) (*H, error) {
	var header H
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		First(&header, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &header, nil
}

// FindAll 查询全部单据（含行项）
func (r *DocumentRepository[H, L]) FindAll(ctx context.Context) ([]H, error) {
	var headers []H
	err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		Order("id ASC").
		Find(&headers).Error
	return headers, err
}

// Lock 锁定表头行（SELECT ... FOR UPDATE），用于整单替换
func (r *DocumentRepository[H, L]) Lock(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		First(new(H), id).Error
	return notFound(err)
}

// CreateHeader 插入表头，生成的ID回填
func (r *DocumentRepository[H, L]) CreateHeader(ctx context.Context, header *H) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(header).Error
}

// SaveHeader 更新表头字段
func (r *DocumentRepository[H, L]) SaveHeader(ctx context.Context, header *H) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(header).Error
}

// CreateLines 批量插入行项
func (r *DocumentRepository[H, L]) CreateLines(ctx context.Context, lines []L) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// DeleteLines 删除表头下全部行项
func (r *DocumentRepository[H, L]) DeleteLines(ctx context.Context, headerID uint) error {
	return r.db.WithContext(ctx).Where(r.fk+" = ?", headerID).Delete(new(L)).Error
}

// Delete 删除单据及其行项
func (r *DocumentRepository[H, L]) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(r.fk+" = ?", id).Delete(new(L)).Error; err != nil {
			return err
		}
		result := tx.Delete(new(H), id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
