package usecase

import (
	"context"
	"errors"
	"net/http"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/validator"
)

// カートの業務ロジック。
// 1つの (shopper, product, variant_key) につき明細は1行。同じ組み合わせの追加は数量加算。
type CartUsecase struct {
	cartRepo    repo.CartLineRepository
	productRepo repo.ProductRepository
	storeRepo   repo.StoreRepository
}

func NewCartUsecase(
	cartRepo repo.CartLineRepository,
	productRepo repo.ProductRepository,
	storeRepo repo.StoreRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
	}
}

type AddCartLineInput struct {
	ProductID int64
	Quantity  int64
	Color     string
	Size      string

	//カタログから価格が取れないときだけ使うフォールバック
	ClientPrice int64
}

type UpdateCartLineInput struct {
	Quantity int64
}

type CartLineResponse struct {
	ID           int64  `json:"id"`
	ProductID    int64  `json:"product_id"`
	VariantKey   string `json:"variant_key"`
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnail_url"`
	StoreName    string `json:"store_name"`
	Color        string `json:"color"`
	Size         string `json:"size"`
	UnitPrice    int64  `json:"unit_price"`
	Quantity     int64  `json:"quantity"`
	TotalPrice   int64  `json:"total_price"`
}

type CartResponse struct {
	Items []CartLineResponse `json:"items"`
	Total int64              `json:"total"`
}

// カートに追加。同じ (product, color, size) が既にあれば数量加算になる。
func (u *CartUsecase) AddLine(ctx context.Context, shopperID int64, in AddCartLineInput) (CartResponse, error) {
	if shopperID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	//商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	//在庫チェックは今回要求された数量に対してのみ行う。
	//カート内で積み上げた合計と在庫は比較しない。
	res, err := validator.ValidateStock(p, in.Color, in.Size, in.Quantity)
	if err != nil {
		return CartResponse{}, stockErrorToHTTP(err)
	}

	//単価はカタログの現在価格（割引考慮）が正。client側の価格は取れないときの控えにしか使わない。
	unitPrice := res.EffectivePrice
	if unitPrice <= 0 && in.ClientPrice > 0 {
		unitPrice = in.ClientPrice
	}

	storeName := ""
	if st, err := u.storeRepo.FindByID(ctx, p.StoreID); err == nil {
		storeName = st.Name
	}

	line := model.CartLine{
		ShopperID:    shopperID,
		ProductID:    in.ProductID,
		VariantKey:   model.VariantKey(in.Color, in.Size),
		Quantity:     in.Quantity,
		UnitPrice:    unitPrice,
		TotalPrice:   unitPrice * in.Quantity,
		Color:        in.Color,
		Size:         in.Size,
		ProductName:  p.Name,
		ThumbnailURL: p.ThumbnailURL,
		StoreName:    storeName,
	}

	if err := u.cartRepo.Upsert(ctx, line); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, shopperID)
}

// カート取得（更新が新しい順）
func (u *CartUsecase) ListLines(ctx context.Context, shopperID int64) (CartResponse, error) {
	if shopperID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, shopperID)
}

// 数量変更（所有チェック＋在庫チェック）
func (u *CartUsecase) UpdateLine(ctx context.Context, shopperID int64, lineID int64, in UpdateCartLineInput) (CartResponse, error) {
	if shopperID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	line, err := u.cartRepo.FindByID(ctx, shopperID, lineID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "line not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//現在のカタログに対して新しい数量を検証
	p, err := u.productRepo.FindByID(ctx, line.ProductID)
	if errors.Is(err, repo.ErrNotFound) {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if _, err := validator.ValidateStock(p, line.Color, line.Size, in.Quantity); err != nil {
		return CartResponse{}, stockErrorToHTTP(err)
	}

	if err := u.cartRepo.UpdateQuantity(ctx, shopperID, lineID, in.Quantity); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "line not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, shopperID)
}

// 明細削除
func (u *CartUsecase) RemoveLine(ctx context.Context, shopperID int64, lineID int64) (CartResponse, error) {
	if shopperID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if lineID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.cartRepo.DeleteByID(ctx, shopperID, lineID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "line not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, shopperID)
}

// カート全消し
func (u *CartUsecase) Clear(ctx context.Context, shopperID int64) error {
	if shopperID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := u.cartRepo.Clear(ctx, shopperID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, shopperID int64) (CartResponse, error) {
	lines, err := u.cartRepo.ListByShopper(ctx, shopperID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items := make([]CartLineResponse, 0, len(lines))
	var total int64 = 0

	for _, l := range lines {
		items = append(items, CartLineResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			VariantKey:   l.VariantKey,
			Name:         l.ProductName,
			ThumbnailURL: l.ThumbnailURL,
			StoreName:    l.StoreName,
			Color:        l.Color,
			Size:         l.Size,
			UnitPrice:    l.UnitPrice,
			Quantity:     l.Quantity,
			TotalPrice:   l.TotalPrice,
		})
		total += l.TotalPrice
	}

	return CartResponse{Items: items, Total: total}, nil
}

// validatorのエラーをHTTPエラーへ変換
func stockErrorToHTTP(err error) error {
	if errors.Is(err, validator.ErrVariantUnavailable) {
		return NewHTTPError(http.StatusBadRequest, "variant unavailable")
	}
	var ise *validator.InsufficientStockError
	if errors.As(err, &ise) {
		return NewHTTPError(http.StatusBadRequest, ise.Error())
	}
	return NewHTTPError(http.StatusBadRequest, err.Error())
}
