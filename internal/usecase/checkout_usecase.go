package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/validator"

	"github.com/google/uuid"
)

// 注文確定後に決済リダイレクトURLを取りに行く外部協調先。
// ここが失敗しても確定済みの注文は取り消さない。
type PaymentInitiator interface {
	InitiateRedirect(ctx context.Context, order model.Order) (string, error)
}

// チェックアウト（注文組み立て＋確定書き込み）。
// 明細はリクエストで明示するか、空ならカートから取る。
// 価格と在庫は必ずカタログの現在値で再検証する。カートのスナップショット価格は信用しない。
type CheckoutUsecase struct {
	tx      repo.TransactionManager
	payment PaymentInitiator
}

func NewCheckoutUsecase(tx repo.TransactionManager, payment PaymentInitiator) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx, payment: payment}
}

type CheckoutLineRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Color     string `json:"color"`
	Size      string `json:"size"`
}

type PlaceOrderInput struct {
	//空ならカートの明細を使う
	Lines []CheckoutLineRequest

	ShippingName       string
	ShippingPhone      string
	ShippingAddress    string
	ShippingCity       string
	ShippingPostalCode string

	DeliveryMethod string
	DeliveryCharge int64

	//未指定なら先頭明細の商品の店舗にフォールバック
	StoreID *int64

	//未指定なら代引きにフォールバック（無ければ作る）
	PaymentMethodID *int64

	Channel     string
	OrderNumber string
}

func (u *CheckoutUsecase) PlaceOrder(ctx context.Context, shopperID int64, in PlaceOrderInput) (OrderOutput, error) {
	if shopperID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.ShippingName) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_name")
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid shipping_address")
	}
	if in.DeliveryCharge < 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid delivery_charge")
	}
	for _, lr := range in.Lines {
		if lr.ProductID <= 0 || lr.Quantity < 1 {
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid line")
		}
	}

	var out OrderOutput

	//検証から確定まで1トランザクション。途中で失敗したら注文も明細も残らない。
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		lineReqs := in.Lines
		fromCart := len(lineReqs) == 0

		if fromCart {
			cartLines, err := r.CartLines().ListByShopper(ctx, shopperID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if len(cartLines) == 0 {
				return NewHTTPError(http.StatusBadRequest, "cart empty")
			}
			lineReqs = make([]CheckoutLineRequest, 0, len(cartLines))
			for _, cl := range cartLines {
				lineReqs = append(lineReqs, CheckoutLineRequest{
					ProductID: cl.ProductID,
					Quantity:  cl.Quantity,
					Color:     cl.Color,
					Size:      cl.Size,
				})
			}
		}

		//全明細を現在のカタログで再検証してから書き込みに入る
		type claimedLine struct {
			line      model.OrderLine
			variantID *int64
		}

		claims := make([]claimedLine, 0, len(lineReqs))
		var subtotal int64 = 0
		var firstStoreID int64 = 0

		for _, lr := range lineReqs {
			p, err := r.Products().FindByID(ctx, lr.ProductID)
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusNotFound, "product not found")
			}

			res, err := validator.ValidateStock(p, lr.Color, lr.Size, lr.Quantity)
			if err != nil {
				return stockErrorToHTTP(err)
			}

			lineTotal := res.EffectivePrice * lr.Quantity
			subtotal += lineTotal

			if firstStoreID == 0 {
				firstStoreID = res.StoreID
			}

			claims = append(claims, claimedLine{
				line: model.OrderLine{
					ProductID:     lr.ProductID,
					StoreID:       res.StoreID,
					ProductName:   p.Name,
					Quantity:      lr.Quantity,
					UnitPrice:     res.UnitPrice,
					DiscountPrice: res.DiscountPrice,
					TotalPrice:    lineTotal,
					Color:         lr.Color,
					Size:          lr.Size,
				},
				variantID: res.VariantID,
			})
		}

		//発送店舗の解決（指定 → 先頭明細の店舗）
		storeID, err := resolveStore(ctx, r, in.StoreID, firstStoreID)
		if err != nil {
			return err
		}

		//支払い方法の解決（指定 → 代引きを探す → 代引きを作る）
		paymentMethodID, err := resolvePaymentMethod(ctx, r, in.PaymentMethodID)
		if err != nil {
			return err
		}

		//在庫の確保。条件付きUPDATEなので同時チェックアウトでも二重確保されない。
		for _, c := range claims {
			var ok bool
			var err error
			if c.variantID != nil {
				ok, err = r.Inventory().DecreaseVariantStockIfEnough(ctx, *c.variantID, c.line.Quantity)
			} else {
				ok, err = r.Inventory().DecreaseStockIfEnough(ctx, c.line.ProductID, c.line.Quantity)
			}
			if err != nil {
				return WrapHTTPError(http.StatusInternalServerError, "order commit failed", err)
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("insufficient stock for %s", c.line.ProductName))
			}
		}

		now := time.Now()

		orderNumber := strings.TrimSpace(in.OrderNumber)
		if orderNumber == "" {
			orderNumber = GenerateOrderNumber(now)
		}

		order := model.Order{
			OrderNumber:        orderNumber,
			ShopperID:          shopperID,
			StoreID:            storeID,
			PaymentMethodID:    paymentMethodID,
			DeliveryMethod:     in.DeliveryMethod,
			ShippingName:       in.ShippingName,
			ShippingPhone:      in.ShippingPhone,
			ShippingAddress:    in.ShippingAddress,
			ShippingCity:       in.ShippingCity,
			ShippingPostalCode: in.ShippingPostalCode,
			DeliveryCharge:     in.DeliveryCharge,
			TotalAmount:        subtotal + in.DeliveryCharge,
			PaymentStatus:      model.PaymentStatusPending,
			Status:             model.OrderStatusPending,
			Channel:            parseChannel(in.Channel),
			OrderDate:          now,
			CreatedAt:          now,
			UpdatedAt:          now,
		}

		//注文 → 明細一括 → 明細数の順で書く
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "order commit failed", err)
		}

		lines := make([]model.OrderLine, 0, len(claims))
		for _, c := range claims {
			lines = append(lines, c.line)
		}
		if err := r.OrderLines().CreateBulk(ctx, orderID, lines); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "order commit failed", err)
		}
		if err := r.Orders().SetLineCount(ctx, orderID, int64(len(lines))); err != nil {
			return WrapHTTPError(http.StatusInternalServerError, "order commit failed", err)
		}

		//カート経由の注文はカートを空にする（再注文防止）
		if fromCart {
			if err := r.CartLines().Clear(ctx, shopperID); err != nil {
				return WrapHTTPError(http.StatusInternalServerError, "order commit failed", err)
			}
		}

		order.ID = orderID
		order.LineCount = int64(len(lines))
		out = toOrderOutput(order, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//決済リダイレクトは確定後。失敗しても注文は取り消さない（後続の補償更新に任せる）。
	if u.payment != nil {
		if url, err := u.payment.InitiateRedirect(ctx, model.Order{ID: out.ID, OrderNumber: out.OrderNumber, TotalAmount: out.TotalAmount}); err == nil {
			out.PaymentRedirectURL = url
		}
	}

	return out, nil
}

// 発送店舗の解決。指定があればそれ、無ければ先頭明細の商品の店舗。
func resolveStore(ctx context.Context, r repo.TxRepos, requested *int64, firstStoreID int64) (int64, error) {
	candidate := firstStoreID
	if requested != nil && *requested > 0 {
		candidate = *requested
	}
	if candidate <= 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "store unresolved")
	}

	if _, err := r.Stores().FindByID(ctx, candidate); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return 0, NewHTTPError(http.StatusBadRequest, "store unresolved")
		}
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return candidate, nil
}

// 支払い方法の解決。指定 → 既存の代引きを名前で探す → 無ければ作る。
func resolvePaymentMethod(ctx context.Context, r repo.TxRepos, requested *int64) (int64, error) {
	if requested != nil && *requested > 0 {
		pm, err := r.PaymentMethods().FindByID(ctx, *requested)
		if err == nil {
			return pm.ID, nil
		}
		if !errors.Is(err, repo.ErrNotFound) {
			return 0, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//指定が見つからなければフォールバックに落ちる
	}

	pm, err := r.PaymentMethods().FindByNameLike(ctx, "cash on delivery")
	if err == nil {
		return pm.ID, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	id, err := r.PaymentMethods().Create(ctx, model.PaymentMethod{
		Name:     model.DefaultPaymentMethodName,
		IsActive: true,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusBadRequest, "payment method unresolved")
	}
	return id, nil
}

func parseChannel(s string) model.OrderChannel {
	if strings.EqualFold(s, string(model.OrderChannelApp)) {
		return model.OrderChannelApp
	}
	return model.OrderChannelWebsite
}

// 人間向けの注文番号。時刻＋ランダムサフィックスで実用上衝突しない。
func GenerateOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102150405"), suffix)
}
