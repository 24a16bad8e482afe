package usecase

import (
	"context"
	"errors"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 既定の支払い方法（代引き）を起動時に用意しておく。
// 何度呼んでも結果は同じ。チェックアウト中の遅延作成はフォールバックとして残っているが、
// 通常はここで作られた1件が使われる。
func EnsureDefaultPaymentMethod(ctx context.Context, pmRepo repo.PaymentMethodRepository) (model.PaymentMethod, error) {
	pm, err := pmRepo.FindByNameLike(ctx, "cash on delivery")
	if err == nil {
		return pm, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.PaymentMethod{}, err
	}

	created := model.PaymentMethod{
		Name:     model.DefaultPaymentMethodName,
		IsActive: true,
	}
	id, err := pmRepo.Create(ctx, created)
	if err != nil {
		return model.PaymentMethod{}, err
	}
	created.ID = id
	return created, nil
}
