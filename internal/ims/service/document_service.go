package service

import (
	"context"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/repository"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/schema"
	"go.uber.org/zap"
)

type lineInput[L any] interface {
	ToEntity() L
}

// DocumentService 单据服务（发票、入库单），写入全部经由 TxCoordinator
type DocumentService[H any, L any, HI schema.Input[H], LI lineInput[L]] struct {
	repos *repository.Repositories
	tx    *TxCoordinator[H, L]
}

// InvoiceService 采购发票服务
type InvoiceService = DocumentService[entity.Invoice, entity.InvoiceLine, schema.InvoiceInput, schema.InvoiceLineInput]

// ReceiptService 入库单服务
type ReceiptService = DocumentService[entity.Receipt, entity.ReceiptLine, schema.ReceiptInput, schema.ReceiptLineInput]

func NewInvoiceService(repos *repository.Repositories, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{repos: repos, tx: newTxCoordinator(repos, invoiceBinding, logger)}
}

func NewReceiptService(repos *repository.Repositories, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{repos: repos, tx: newTxCoordinator(repos, receiptBinding, logger)}
}

func toLines[L any, LI lineInput[L]](inputs []LI) []L {
	lines := make([]L, len(inputs))
	for i, in := range inputs {
		lines[i] = in.ToEntity()
	}
	return lines
}

// Create 创建单据及其行项
func (s *DocumentService[H, L, HI, LI]) Create(ctx context.Context, doc schema.Document[HI, LI]) (*H, error) {
	return s.tx.Create(ctx, doc.Header.ToEntity(), toLines[L](doc.Lines))
}

// Replace 局部更新表头并整体替换行项
func (s *DocumentService[H, L, HI, LI]) Replace(ctx context.Context, id uint, doc schema.Document[HI, LI]) (*H, error) {
	return s.tx.ReplaceLines(ctx, id, doc.Header.Merge, toLines[L](doc.Lines))
}

// Get 获取单据（含行项）
func (s *DocumentService[H, L, HI, LI]) Get(ctx context.Context, id uint) (*H, error) {
	header, err := s.tx.binding.store(s.repos).FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(s.tx.binding.entity, id, err)
	}
	return header, nil
}

// List 获取全部单据
func (s *DocumentService[H, L, HI, LI]) List(ctx context.Context) ([]H, error) {
	headers, err := s.tx.binding.store(s.repos).FindAll(ctx)
	if err != nil {
		return nil, classify("list "+s.tx.binding.entity, err)
	}
	return headers, nil
}

// Delete 删除单据及其行项
func (s *DocumentService[H, L, HI, LI]) Delete(ctx context.Context, id uint) error {
	if err := s.tx.binding.store(s.repos).Delete(ctx, id); err != nil {
		return lookupError(s.tx.binding.entity, id, err)
	}
	return nil
}

var invoiceBinding = documentBinding[entity.Invoice, entity.InvoiceLine]{
	entity: "invoice",
	store: func(r *repository.Repositories) *repository.DocumentRepository[entity.Invoice, entity.InvoiceLine] {
		return r.Invoice
	},
	headerID: func(h *entity.Invoice) uint { return h.ID },
	attach:   func(h *entity.Invoice, lines []entity.InvoiceLine) { h.Lines = lines },
	bindLine: func(l *entity.InvoiceLine, id uint) { l.InvoiceID = id },
	verifyHeader: func(ctx context.Context, r *repository.Repositories, h *entity.Invoice) error {
		missing, err := r.Supplier.MissingIDs(ctx, []uint{h.SupplierID})
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return missingReference("supplier", missing)
		}
		return nil
	},
	verifyLines: func(ctx context.Context, r *repository.Repositories, lines []entity.InvoiceLine) error {
		ids := make([]uint, len(lines))
		for i, l := range lines {
			ids[i] = l.GoodsID
		}
		missing, err := r.Goods.MissingIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return missingReference("goods", missing)
		}
		return nil
	},
}

var receiptBinding = documentBinding[entity.Receipt, entity.ReceiptLine]{
	entity: "receipt",
	store: func(r *repository.Repositories) *repository.DocumentRepository[entity.Receipt, entity.ReceiptLine] {
		return r.Receipt
	},
	headerID: func(h *entity.Receipt) uint { return h.ID },
	attach:   func(h *entity.Receipt, lines []entity.ReceiptLine) { h.Lines = lines },
	bindLine: func(l *entity.ReceiptLine, id uint) { l.ReceiptID = id },
	verifyHeader: func(ctx context.Context, r *repository.Repositories, h *entity.Receipt) error {
		missing, err := r.Stock.MissingIDs(ctx, []uint{h.StockID})
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return missingReference("stock", missing)
		}
		return nil
	},
	verifyLines: func(ctx context.Context, r *repository.Repositories, lines []entity.ReceiptLine) error {
		ids := make([]uint, len(lines))
		for i, l := range lines {
			ids[i] = l.RawMaterialID
		}
		missing, err := r.RawMaterial.MissingIDs(ctx, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return missingReference("raw material", missing)
		}
		return nil
	},
}
