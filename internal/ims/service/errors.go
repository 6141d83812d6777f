package service

import (
	"errors"
	"fmt"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/repository"
	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/schema"
	"gorm.io/gorm"
)

// ValidationError 输入不合法，在打开事务之前产生
type ValidationError struct {
	Message string
	Fields  schema.Errors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + e.Fields.Error()
}

func (e *ValidationError) Unwrap() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e.Fields
}

// Invalid 把校验器返回的错误包装为 ValidationError
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	var fields schema.Errors
	if errors.As(err, &fields) {
		if len(fields) == 1 && fields[0].Field == "" {
			return &ValidationError{Message: fields[0].Message, Fields: fields}
		}
		return &ValidationError{Message: "invalid input", Fields: fields}
	}
	return &ValidationError{Message: err.Error()}
}

// NotFoundError 按ID查找的记录不存在
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return repository.ErrNotFound
}

// ConflictError 写入与现有数据冲突（引用不存在、唯一键重复、被引用无法删除）
type ConflictError struct {
	Message string
	Err     error
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

// StorageError 存储层异常
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// classify 把仓库与 gorm 错误归类到上面四种错误
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		se *StorageError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &nf), errors.As(err, &ce), errors.As(err, &se):
		return err
	case errors.Is(err, repository.ErrInUse):
		return &ConflictError{Message: err.Error(), Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &ConflictError{Message: "duplicate value violates a unique constraint", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &ConflictError{Message: "referenced record does not exist", Err: err}
	default:
		return &StorageError{Op: op, Err: err}
	}
}

func lookupError(entity string, id uint, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return classify("find "+entity, err)
}

func missingReference(entity string, ids []uint) error {
	if len(ids) == 1 {
		return &ConflictError{Message: fmt.Sprintf("%s %d does not exist", entity, ids[0])}
	}
	return &ConflictError{Message: fmt.Sprintf("%s %v do not exist", entity, ids)}
}
