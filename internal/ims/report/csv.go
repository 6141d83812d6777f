package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/service"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset 请求的字符集无法识别
var ErrUnknownCharset = errors.New("unknown charset")

func CSVContentType(charset string) string {
	if charset == "" {
		charset = "utf-8"
	}
	return "text/csv; charset=" + strings.ToLower(charset)
}

// encodingWriter 非 UTF-8 字符集按 WHATWG 名称查找编码器，无法表示的字符替换为 '?'
func encodingWriter(w io.Writer, charset string) (io.Writer, error) {
	if charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8") {
		return w, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCharset, charset)
	}
	return transform.NewWriter(w, encoding.ReplaceUnsupported(enc.NewEncoder())), nil
}

// WriteOnHandCSV 按库位展开的在库数量：每个 (库位, 物料) 一行
func WriteOnHandCSV(w io.Writer, stocks []service.StockOnHandView, charset string) error {
	out, err := encodingWriter(w, charset)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"stock_id", "stock_code", "material_code", "total_stock_quantity"}); err != nil {
		return err
	}
	for _, s := range stocks {
		for _, item := range s.StockItem {
			qty := ""
			if item.TotalStockQuantity != nil {
				qty = *item.TotalStockQuantity
			}
			if err := cw.Write([]string{fmt.Sprint(s.StockID), s.StockCode, item.MaterialCode, qty}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if closer, ok := out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
