package service

import (
	"context"
	"fmt"

	"github.com/tonysodeep/ConnectBakeryIS/internal/ims/repository"
	"go.uber.org/zap"
)

// documentBinding 描述一种单据的表头如何持有行项
type documentBinding[H any, L any] struct {
	entity       string
	store        func(r *repository.Repositories) *repository.DocumentRepository[H, L]
	headerID     func(h *H) uint
	attach       func(h *H, lines []L)
	bindLine     func(l *L, headerID uint)
	verifyHeader func(ctx context.Context, r *repository.Repositories, h *H) error
	verifyLines  func(ctx context.Context, r *repository.Repositories, lines []L) error
}

// TxCoordinator 表头与行项的原子写入。
// 所有语句在同一事务内执行，任何一步失败都整体回滚，调用方不会看到部分写入的ID。
type TxCoordinator[H any, L any] struct {
	repos   *repository.Repositories
	binding documentBinding[H, L]
	logger  *zap.Logger
}

func newTxCoordinator[H any, L any](repos *repository.Repositories, binding documentBinding[H, L], logger *zap.Logger) *TxCoordinator[H, L] {
	return &TxCoordinator[H, L]{repos: repos, binding: binding, logger: logger}
}

// Create 插入表头，回填外键后插入全部行项，校验引用后提交
func (c *TxCoordinator[H, L]) Create(ctx context.Context, header H, lines []L) (*H, error) {
	b := c.binding
	if len(lines) == 0 {
		return nil, &ValidationError{Message: fmt.Sprintf("%s must have at least one line item", b.entity)}
	}

	created := header
	stored := make([]L, len(lines))
	copy(stored, lines)

	err := c.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		store := b.store(tx)
		if err := b.verifyHeader(ctx, tx, &created); err != nil {
			return err
		}
		if err := store.CreateHeader(ctx, &created); err != nil {
			return err
		}
		id := b.headerID(&created)
		for i := range stored {
			b.bindLine(&stored[i], id)
		}
		if err := store.CreateLines(ctx, stored); err != nil {
			return err
		}
		return b.verifyLines(ctx, tx, stored)
	})
	if err != nil {
		c.logger.Error("Create rolled back",
			zap.String("entity", b.entity),
			zap.Int("lines", len(lines)),
			zap.Error(err))
		return nil, classify("create "+b.entity, err)
	}

	b.attach(&created, stored)
	return &created, nil
}

// ReplaceLines 合并表头字段并整体替换行项；newLines 为空时清空行项
func (c *TxCoordinator[H, L]) ReplaceLines(ctx context.Context, id uint, merge func(existing H) H, newLines []L) (*H, error) {
	b := c.binding
	if _, err := b.store(c.repos).FindByID(ctx, id); err != nil {
		return nil, lookupError(b.entity, id, err)
	}

	var updated H
	stored := make([]L, len(newLines))
	copy(stored, newLines)

	err := c.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		store := b.store(tx)
		if err := store.Lock(ctx, id); err != nil {
			return lookupError(b.entity, id, err)
		}
		current, err := store.FindByID(ctx, id)
		if err != nil {
			return lookupError(b.entity, id, err)
		}

		updated = merge(*current)
		b.attach(&updated, nil)
		if b.headerID(&updated) != id {
			return &ValidationError{Message: fmt.Sprintf("%s id cannot be changed", b.entity)}
		}
		if err := b.verifyHeader(ctx, tx, &updated); err != nil {
			return err
		}
		if err := store.SaveHeader(ctx, &updated); err != nil {
			return err
		}
		if err := store.DeleteLines(ctx, id); err != nil {
			return err
		}
		for i := range stored {
			b.bindLine(&stored[i], id)
		}
		if err := store.CreateLines(ctx, stored); err != nil {
			return err
		}
		return b.verifyLines(ctx, tx, stored)
	})
	if err != nil {
		c.logger.Error("Replace rolled back",
			zap.String("entity", b.entity),
			zap.Uint("id", id),
			zap.Error(err))
		return nil, classify("replace "+b.entity, err)
	}

	b.attach(&updated, stored)
	return &updated, nil
}
