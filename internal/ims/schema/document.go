package schema

import (
	"encoding/json"
	"fmt"
)

// Document 表头 + 行项列表的嵌套写入
type Document[H any, L any] struct {
	Header H
	Lines  []L
}

// DocumentShape 嵌套写入的两个顶层键
type DocumentShape struct {
	HeaderKey string
	LinesKey  string
}

var (
	InvoiceShape = DocumentShape{HeaderKey: "invoice", LinesKey: "list_of_bought_goods"}
	ReceiptShape = DocumentShape{HeaderKey: "receipt", LinesKey: "list_of_raw_materials"}
)

func (s DocumentShape) missingMessage() string {
	return fmt.Sprintf("Missing '%s' or '%s'", s.HeaderKey, s.LinesKey)
}

// DecodeDocument 校验表头与行项两部分，两者都通过才返回。
// Full 模式下两个键都必须存在；Partial 模式下表头可省略（按局部更新处理），行项列表仍必须存在。
func DecodeDocument[H any, L any](raw json.RawMessage, shape DocumentShape, mode Mode) (Document[H, L], error) {
	var doc Document[H, L]

	fields, errs := decodeFields(raw)
	if errs != nil {
		return doc, errs
	}
	headerRaw, hasHeader := fields[shape.HeaderKey]
	linesRaw, hasLines := fields[shape.LinesKey]
	if hasHeader && isNull(headerRaw) {
		hasHeader = false
	}
	if hasLines && isNull(linesRaw) {
		hasLines = false
	}
	if !hasLines || (mode == Full && !hasHeader) {
		return doc, Errors{{Kind: KindRequired, Message: shape.missingMessage()}}
	}

	var all Errors
	if hasHeader {
		header, err := DecodeOne[H](headerRaw, mode)
		if err != nil {
			all = append(all, asErrors(err).Prefix(shape.HeaderKey)...)
		}
		doc.Header = header
	}
	lines, err := DecodeMany[L](linesRaw, Full)
	if err != nil {
		all = append(all, asErrors(err).Prefix(shape.LinesKey)...)
	}
	doc.Lines = lines

	if len(all) > 0 {
		return Document[H, L]{}, all
	}
	return doc, nil
}

func asErrors(err error) Errors {
	if errs, ok := err.(Errors); ok {
		return errs
	}
	return Errors{{Kind: KindType, Message: err.Error()}}
}
