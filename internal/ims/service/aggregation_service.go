package service

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/repository"
)

// MaterialValue 按物料编码聚合的一个值；Value 无效表示没有任何流水
type MaterialValue struct {
	MaterialCode string
	Value        decimal.NullDecimal
}

// StockBalance 单个库位下各物料的在库数量，只包含有入库流水的物料
type StockBalance struct {
	StockID   uint
	StockCode string
	Items     []MaterialValue
}

// AggregationService 库存聚合视图：请求时即时计算，不保存余额
type AggregationService struct {
	repos *repository.Repositories
}

func NewAggregationService(repos *repository.Repositories) *AggregationService {
	return &AggregationService{repos: repos}
}

type codeTotal struct {
	code  string
	sum   decimal.Decimal
	count int64
}

// groupByCode 按首次出现的顺序分组累加，ok=false 的行只登记编码
func groupByCode[R any](rows []R, key func(R) string, value func(R) (decimal.Decimal, bool)) []*codeTotal {
	var order []*codeTotal
	index := make(map[string]*codeTotal)
	for _, row := range rows {
		code := key(row)
		total, seen := index[code]
		if !seen {
			total = &codeTotal{code: code, sum: decimal.Zero}
			index[code] = total
			order = append(order, total)
		}
		if v, ok := value(row); ok {
			total.sum = total.sum.Add(v)
			total.count++
		}
	}
	return order
}

// AveragePrices 每种物料的平均采购单价。
// 求和与除法用精确小数，最后一步才转成浮点并四舍五入到整数。
func (s *AggregationService) AveragePrices(ctx context.Context) ([]MaterialValue, error) {
	rows, err := s.repos.Movement.InvoiceMovements(ctx)
	if err != nil {
		return nil, classify("aggregate average prices", err)
	}
	groups := groupByCode(rows,
		func(r repository.InvoiceMovement) string { return r.MaterialCode },
		func(r repository.InvoiceMovement) (decimal.Decimal, bool) {
			return r.BuyingPricePerUnit.Decimal, r.BuyingPricePerUnit.Valid
		})

	result := make([]MaterialValue, len(groups))
	for i, g := range groups {
		result[i] = MaterialValue{MaterialCode: g.code}
		if g.count == 0 {
			continue
		}
		mean := g.sum.Div(decimal.NewFromInt(g.count)).InexactFloat64()
		result[i].Value = decimal.NewNullDecimal(decimal.NewFromFloat(math.Round(mean)))
	}
	return result, nil
}

// InvoicedStock 每种物料按发票折算到库存单位的数量 sum(buy_quantity * convert_rate)
func (s *AggregationService) InvoicedStock(ctx context.Context) ([]MaterialValue, error) {
	rows, err := s.repos.Movement.InvoiceMovements(ctx)
	if err != nil {
		return nil, classify("aggregate invoiced stock", err)
	}
	groups := groupByCode(rows,
		func(r repository.InvoiceMovement) string { return r.MaterialCode },
		func(r repository.InvoiceMovement) (decimal.Decimal, bool) {
			if !r.BuyQuantity.Valid {
				return decimal.Zero, false
			}
			return r.BuyQuantity.Decimal.Mul(r.ConvertRate), true
		})
	return roundedTotals(groups), nil
}

// OnHand 每种原材料的入库总量
func (s *AggregationService) OnHand(ctx context.Context) ([]MaterialValue, error) {
	rows, err := s.repos.Movement.ReceiptMovements(ctx)
	if err != nil {
		return nil, classify("aggregate on-hand", err)
	}
	groups := groupByCode(rows,
		func(r repository.ReceiptMovement) string { return r.MaterialCode },
		func(r repository.ReceiptMovement) (decimal.Decimal, bool) {
			return r.Quantity.Decimal, r.Quantity.Valid
		})
	return roundedTotals(groups), nil
}

// OnHandByStock 每个库位下各物料的入库总量；没有流水的 (库位, 物料) 不出现
func (s *AggregationService) OnHandByStock(ctx context.Context) ([]StockBalance, error) {
	rows, err := s.repos.Movement.StockMovements(ctx, nil)
	if err != nil {
		return nil, classify("aggregate on-hand by stock", err)
	}
	return stockBalances(rows), nil
}

// OnHandForStock 单个库位的在库数量
func (s *AggregationService) OnHandForStock(ctx context.Context, stockID uint) (*StockBalance, error) {
	if _, err := s.repos.Stock.FindByID(ctx, stockID); err != nil {
		return nil, lookupError("stock", stockID, err)
	}
	rows, err := s.repos.Movement.StockMovements(ctx, &stockID)
	if err != nil {
		return nil, classify("aggregate on-hand by stock", err)
	}
	balances := stockBalances(rows)
	if len(balances) == 0 {
		return &StockBalance{StockID: stockID}, nil
	}
	return &balances[0], nil
}

func stockBalances(rows []repository.StockMovement) []StockBalance {
	var order []uint
	byStock := make(map[uint][]repository.StockMovement)
	codes := make(map[uint]string)
	for _, row := range rows {
		if _, seen := codes[row.StockID]; !seen {
			order = append(order, row.StockID)
			codes[row.StockID] = row.StockCode
		}
		if row.MaterialCode == nil || !row.Quantity.Valid {
			continue
		}
		byStock[row.StockID] = append(byStock[row.StockID], row)
	}

	balances := make([]StockBalance, len(order))
	for i, id := range order {
		groups := groupByCode(byStock[id],
			func(r repository.StockMovement) string { return *r.MaterialCode },
			func(r repository.StockMovement) (decimal.Decimal, bool) { return r.Quantity.Decimal, true })
		balances[i] = StockBalance{StockID: id, StockCode: codes[id], Items: roundedTotals(groups)}
	}
	return balances
}

func roundedTotals(groups []*codeTotal) []MaterialValue {
	result := make([]MaterialValue, len(groups))
	for i, g := range groups {
		result[i] = MaterialValue{MaterialCode: g.code}
		if g.count > 0 {
			result[i].Value = decimal.NewNullDecimal(g.sum.Round(3))
		}
	}
	return result
}

// Materials 全部原材料及其平均单价、发票折算数量、在库数量
func (s *AggregationService) Materials(ctx context.Context) ([]MaterialView, error) {
	materials, err := s.repos.RawMaterial.FindAll(ctx)
	if err != nil {
		return nil, classify("list raw materials", err)
	}
	averages, err := s.AveragePrices(ctx)
	if err != nil {
		return nil, err
	}
	invoiced, err := s.InvoicedStock(ctx)
	if err != nil {
		return nil, err
	}
	onHand, err := s.OnHand(ctx)
	if err != nil {
		return nil, err
	}
	return MaterialViews(materials, averages, invoiced, onHand), nil
}
