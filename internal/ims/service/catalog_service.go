package service

import (
	"context"
	"errors"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/repository"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/schema"
	"go.uber.org/zap"
)

type catalogBinding[T any] struct {
	entity string
	store  func(r *repository.Repositories) *repository.CatalogRepository[T]
	verify func(ctx context.Context, r *repository.Repositories, items []T) error
}

// CatalogService 基础数据服务：批量创建、局部更新、批量更新、删除
type CatalogService[T any, I schema.Input[T]] struct {
	repos   *repository.Repositories
	binding catalogBinding[T]
	logger  *zap.Logger
}

func (s *CatalogService[T, I]) store() *repository.CatalogRepository[T] {
	return s.binding.store(s.repos)
}

// Create 在一个事务内创建全部记录，任何一条失败都不落库
func (s *CatalogService[T, I]) Create(ctx context.Context, inputs []I) ([]T, error) {
	if len(inputs) == 0 {
		return nil, &ValidationError{Message: "at least one " + s.binding.entity + " is required"}
	}
	items := make([]T, len(inputs))
	for i, in := range inputs {
		items[i] = in.ToEntity()
	}

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if s.binding.verify != nil {
			if err := s.binding.verify(ctx, tx, items); err != nil {
				return err
			}
		}
		return s.binding.store(tx).Create(ctx, items)
	})
	if err != nil {
		s.logger.Error("Bulk create rolled back",
			zap.String("entity", s.binding.entity),
			zap.Int("count", len(items)),
			zap.Error(err))
		return nil, classify("create "+s.binding.entity, err)
	}
	if err := s.store().Refresh(ctx, items); err != nil {
		return nil, classify("reload "+s.binding.entity, err)
	}
	return items, nil
}

// Get 根据ID获取
func (s *CatalogService[T, I]) Get(ctx context.Context, id uint) (*T, error) {
	item, err := s.store().FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.binding.entity, id, err)
	}
	return item, nil
}

// List 获取全部
func (s *CatalogService[T, I]) List(ctx context.Context) ([]T, error) {
	items, err := s.store().FindAll(ctx)
	if err != nil {
		return nil, classify("list "+s.binding.entity, err)
	}
	return items, nil
}

// Update 局部更新单条记录
func (s *CatalogService[T, I]) Update(ctx context.Context, id uint, patch I) (*T, error) {
	items, err := s.BulkUpdate(ctx, []schema.Patch[I]{{ID: id, Fields: patch}})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// BulkUpdate 批量局部更新；任一ID不存在则整批拒绝
func (s *CatalogService[T, I]) BulkUpdate(ctx context.Context, patches []schema.Patch[I]) ([]T, error) {
	if len(patches) == 0 {
		return nil, &ValidationError{Message: "at least one " + s.binding.entity + " is required"}
	}
	ids := make([]uint, len(patches))
	for i, p := range patches {
		ids[i] = p.ID
	}
	missing, err := s.store().MissingIDs(ctx, ids)
	if err != nil {
		return nil, classify("update "+s.binding.entity, err)
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Entity: s.binding.entity, ID: missing[0]}
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		store := s.binding.store(tx)
		// 同一ID出现多次时按顺序叠加到上一次合并的结果上
		merged := make(map[uint]T, len(patches))
		order := make([]uint, 0, len(patches))
		for _, p := range patches {
			base, seen := merged[p.ID]
			if !seen {
				current, err := store.FindByID(ctx, p.ID)
				if err != nil {
					return lookupError(s.binding.entity, p.ID, err)
				}
				base = *current
				order = append(order, p.ID)
			}
			merged[p.ID] = p.Fields.Merge(base)
		}
		updated := make([]T, len(order))
		for i, id := range order {
			updated[i] = merged[id]
		}
		if s.binding.verify != nil {
			if err := s.binding.verify(ctx, tx, updated); err != nil {
				return err
			}
		}
		for i := range updated {
			if err := store.Save(ctx, &updated[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Bulk update rolled back",
			zap.String("entity", s.binding.entity),
			zap.Uints("ids", ids),
			zap.Error(err))
		return nil, classify("update "+s.binding.entity, err)
	}

	result := make([]T, 0, len(ids))
	for _, id := range ids {
		item, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, *item)
	}
	return result, nil
}

// Delete 删除，级联规则由仓库执行
func (s *CatalogService[T, I]) Delete(ctx context.Context, id uint) error {
	if err := s.store().Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &NotFoundError{Entity: s.binding.entity, ID: id}
		}
		s.logger.Warn("Delete refused",
			zap.String("entity", s.binding.entity),
			zap.Uint("id", id),
			zap.Error(err))
		return classify("delete "+s.binding.entity, err)
	}
	return nil
}

type (
	SupplierService    = CatalogService[entity.Supplier, schema.SupplierInput]
	GoodsService       = CatalogService[entity.Goods, schema.GoodsInput]
	CategoryService    = CatalogService[entity.Category, schema.CategoryInput]
	RawMaterialService = CatalogService[entity.RawMaterial, schema.RawMaterialInput]
	StockService       = CatalogService[entity.Stock, schema.StockInput]
)

func NewSupplierService(repos *repository.Repositories, logger *zap.Logger) *SupplierService {
	return &SupplierService{repos: repos, logger: logger, binding: catalogBinding[entity.Supplier]{
		entity: "supplier",
		store:  func(r *repository.Repositories) *repository.CatalogRepository[entity.Supplier] { return r.Supplier },
	}}
}

// NewGoodsService 商品必须引用已存在的供应商
func NewGoodsService(repos *repository.Repositories, logger *zap.Logger) *GoodsService {
	return &GoodsService{repos: repos, logger: logger, binding: catalogBinding[entity.Goods]{
		entity: "goods",
		store:  func(r *repository.Repositories) *repository.CatalogRepository[entity.Goods] { return r.Goods },
		verify: func(ctx context.Context, r *repository.Repositories, items []entity.Goods) error {
			ids := make([]uint, len(items))
			for i, g := range items {
				ids[i] = g.SupplierID
			}
			missing, err := r.Supplier.MissingIDs(ctx, ids)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return missingReference("supplier", missing)
			}
			return nil
		},
	}}
}

func NewCategoryService(repos *repository.Repositories, logger *zap.Logger) *CategoryService {
	return &CategoryService{repos: repos, logger: logger, binding: catalogBinding[entity.Category]{
		entity: "category",
		store:  func(r *repository.Repositories) *repository.CatalogRepository[entity.Category] { return r.Category },
	}}
}

// NewRawMaterialService 原材料的 category_id 可为空，非空时必须存在
func NewRawMaterialService(repos *repository.Repositories, logger *zap.Logger) *RawMaterialService {
	return &RawMaterialService{repos: repos, logger: logger, binding: catalogBinding[entity.RawMaterial]{
		entity: "raw material",
		store: func(r *repository.Repositories) *repository.CatalogRepository[entity.RawMaterial] {
			return r.RawMaterial
		},
		verify: func(ctx context.Context, r *repository.Repositories, items []entity.RawMaterial) error {
			var ids []uint
			for _, m := range items {
				if m.CategoryID != nil {
					ids = append(ids, *m.CategoryID)
				}
			}
			missing, err := r.Category.MissingIDs(ctx, ids)
			if err != nil {
				return err
			}
			if len(missing) > 0 {
				return missingReference("category", missing)
			}
			return nil
		},
	}}
}

func NewStockService(repos *repository.Repositories, logger *zap.Logger) *StockService {
	return &StockService{repos: repos, logger: logger, binding: catalogBinding[entity.Stock]{
		entity: "stock",
		store:  func(r *repository.Repositories) *repository.CatalogRepository[entity.Stock] { return r.Stock },
	}}
}
