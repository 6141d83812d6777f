package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/entity"
)

// Kind 校验失败类型
type Kind string

const (
	KindRequired  Kind = "required"  // 缺少必填字段
	KindType      Kind = "type"      // 类型不符
	KindPrecision Kind = "precision" // 小数位数或整数位数超限
	KindRange     Kind = "range"     // 取值越界
	KindFormat    Kind = "format"    // 格式错误（日期、邮箱）
)

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Errors 校验错误集合，实现 error
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Prefix 给每个字段路径加上前缀，用于嵌套与批量输入
func (e Errors) Prefix(prefix string) Errors {
	out := make(Errors, len(e))
	for i, fe := range e {
		switch {
		case fe.Field == "":
			fe.Field = prefix
		case strings.HasPrefix(fe.Field, "["):
			fe.Field = prefix + fe.Field
		default:
			fe.Field = prefix + "." + fe.Field
		}
		out[i] = fe
	}
	return out
}

// Mode 校验模式
type Mode int

const (
	// Full 创建：校验必填
	Full Mode = iota
	// Partial 局部更新：只校验出现的字段
	Partial
)

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

func validate() *validator.Validate {
	engineOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			return jsonName(fld)
		})
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			switch val := field.Interface().(type) {
			case decimal.Decimal:
				return val.String()
			case entity.Date:
				return val.String()
			}
			return nil
		}, decimal.Decimal{}, entity.Date{})
		_ = v.RegisterValidation("dscale", validateScale)
		_ = v.RegisterValidation("dint", validateIntDigits)
		_ = v.RegisterValidation("dmin", validateMin)
		engine = v
	})
	return engine
}

// dscale=n: 至多 n 位有效小数
func validateScale(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	places, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return d.Equal(d.Round(int32(places)))
}

// dint=n: 整数部分至多 n 位
func validateIntDigits(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	whole := d.Abs().Truncate(0)
	if whole.IsZero() {
		return true
	}
	return len(whole.String()) <= limit
}

// dmin=x: 不小于 x
func validateMin(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	if !ok {
		return false
	}
	floor, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return d.GreaterThanOrEqual(floor)
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(field.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func kindOf(tag string) Kind {
	switch tag {
	case "required":
		return KindRequired
	case "dscale", "dint":
		return KindPrecision
	case "email":
		return KindFormat
	default:
		return KindRange
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "dscale":
		return fmt.Sprintf("at most %s decimal places", fe.Param())
	case "dint":
		return fmt.Sprintf("at most %s integer digits", fe.Param())
	case "dmin":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("length must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("length must be at most %s", fe.Param())
	case "email":
		return "not a valid email address"
	default:
		return "failed on " + fe.Tag()
	}
}

func describe(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t {
	case reflect.TypeOf(decimal.Decimal{}):
		return "decimal number"
	case reflect.TypeOf(entity.Date{}):
		return "date string (YYYY-MM-DD)"
	}
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "non-negative integer"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "integer"
	default:
		return t.Kind().String()
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// IsList 判断输入是否为 JSON 数组
func IsList(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func decodeFields(raw json.RawMessage) (map[string]json.RawMessage, Errors) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, Errors{{Kind: KindType, Message: "expected a JSON object"}}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, Errors{{Kind: KindType, Message: "malformed JSON object"}}
	}
	return fields, nil
}

// decodeObject 逐字段解码，再按 validate 标签校验；未知字段忽略
func decodeObject(raw json.RawMessage, out interface{}, mode Mode) Errors {
	fields, errs := decodeFields(raw)
	if errs != nil {
		return errs
	}

	rv := reflect.ValueOf(out).Elem()
	rt := rv.Type()
	typeErrs := make(map[string]FieldError)
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := jsonName(sf)
		if name == "" {
			continue
		}
		value, ok := fields[name]
		if !ok || isNull(value) {
			continue
		}
		if err := json.Unmarshal(value, rv.Field(i).Addr().Interface()); err != nil {
			rv.Field(i).Set(reflect.Zero(sf.Type))
			if errors.Is(err, entity.ErrDateFormat) {
				typeErrs[name] = FieldError{Field: name, Kind: KindFormat, Message: "expected " + describe(sf.Type)}
				continue
			}
			typeErrs[name] = FieldError{Field: name, Kind: KindType, Message: "expected " + describe(sf.Type)}
		}
	}

	ruleErrs := make(map[string]FieldError)
	if err := validate().Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Errors{{Kind: KindType, Message: err.Error()}}
		}
		for _, fe := range verrs {
			name := fe.Field()
			if _, seen := ruleErrs[name]; seen {
				continue
			}
			kind := kindOf(fe.Tag())
			if kind == KindRequired && mode == Partial {
				continue
			}
			ruleErrs[name] = FieldError{Field: name, Kind: kind, Message: ruleMessage(fe)}
		}
	}

	var result Errors
	for i := 0; i < rt.NumField(); i++ {
		name := jsonName(rt.Field(i))
		if fe, ok := typeErrs[name]; ok {
			result = append(result, fe)
			continue
		}
		if fe, ok := ruleErrs[name]; ok {
			result = append(result, fe)
		}
	}
	return result
}

// DecodeOne 解码并校验单个对象
func DecodeOne[T any](raw json.RawMessage, mode Mode) (T, error) {
	var v T
	if errs := decodeObject(raw, &v, mode); len(errs) > 0 {
		return v, errs
	}
	return v, nil
}

// DecodeMany 解码并校验对象数组，错误字段带元素下标
func DecodeMany[T any](raw json.RawMessage, mode Mode) ([]T, error) {
	elems, errs := splitList(raw)
	if errs != nil {
		return nil, errs
	}
	items := make([]T, len(elems))
	var all Errors
	for i, elem := range elems {
		if errs := decodeObject(elem, &items[i], mode); len(errs) > 0 {
			all = append(all, errs.Prefix(fmt.Sprintf("[%d]", i))...)
		}
	}
	if len(all) > 0 {
		return nil, all
	}
	return items, nil
}

// Patch 批量更新的单个元素
type Patch[T any] struct {
	ID     uint
	Fields T
}

// DecodePatches 解码批量局部更新，每个元素必须带 id
func DecodePatches[T any](raw json.RawMessage) ([]Patch[T], error) {
	elems, errs := splitList(raw)
	if errs != nil {
		return nil, errs
	}
	patches := make([]Patch[T], len(elems))
	var all Errors
	for i, elem := range elems {
		prefix := fmt.Sprintf("[%d]", i)
		fields, ferrs := decodeFields(elem)
		if ferrs != nil {
			all = append(all, ferrs.Prefix(prefix)...)
			continue
		}
		idRaw, ok := fields["id"]
		if !ok || isNull(idRaw) {
			all = append(all, FieldError{Field: prefix + ".id", Kind: KindRequired, Message: "id is required for bulk update"})
		} else if err := json.Unmarshal(idRaw, &patches[i].ID); err != nil {
			all = append(all, FieldError{Field: prefix + ".id", Kind: KindType, Message: "expected non-negative integer"})
		} else if patches[i].ID == 0 {
			all = append(all, FieldError{Field: prefix + ".id", Kind: KindRange, Message: "must be greater than 0"})
		}
		if errs := decodeObject(elem, &patches[i].Fields, Partial); len(errs) > 0 {
			all = append(all, errs.Prefix(prefix)...)
		}
	}
	if len(all) > 0 {
		return nil, all
	}
	return patches, nil
}

func splitList(raw json.RawMessage) ([]json.RawMessage, Errors) {
	if !IsList(raw) {
		return nil, Errors{{Kind: KindType, Message: "expected a JSON array"}}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, Errors{{Kind: KindType, Message: "malformed JSON array"}}
	}
	return elems, nil
}
