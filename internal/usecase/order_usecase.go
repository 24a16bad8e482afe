package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
)

// 注文の読み取り側。書き込みはCheckoutUsecaseに分離。
type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderLineOutput struct {
	ID            int64  `json:"id"`
	ProductID     int64  `json:"product_id"`
	StoreID       int64  `json:"store_id"`
	Name          string `json:"name"`
	Quantity      int64  `json:"quantity"`
	UnitPrice     int64  `json:"unit_price"`
	DiscountPrice *int64 `json:"discount_price,omitempty"`
	TotalPrice    int64  `json:"total_price"`
	Color         string `json:"color,omitempty"`
	Size          string `json:"size,omitempty"`
}

type OrderOutput struct {
	ID                 int64             `json:"id"`
	OrderNumber        string            `json:"order_number"`
	ShopperID          int64             `json:"shopper_id"`
	StoreID            int64             `json:"store_id"`
	PaymentMethodID    int64             `json:"payment_method_id"`
	DeliveryCharge     int64             `json:"delivery_charge"`
	TotalAmount        int64             `json:"total_amount"`
	PaymentStatus      string            `json:"payment_status"`
	Status             string            `json:"status"`
	Channel            string            `json:"channel"`
	OrderDate          time.Time         `json:"order_date"`
	Lines              []OrderLineOutput `json:"lines"`
	PaymentRedirectURL string            `json:"payment_redirect_url,omitempty"`
}

// 自分の注文一覧（新しい順）
func (u *OrderUsecase) ListMyOrders(ctx context.Context, shopperID int64) ([]OrderOutput, error) {
	if shopperID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまず固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByShopper(ctx, shopperID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, lines))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// 注文詳細。所有者本人か管理者のみ。
// 他人の注文は存在は見えるが中身は見せない（403）。
func (u *OrderUsecase) GetOrder(ctx context.Context, requesterID int64, privileged bool, orderID int64) (OrderOutput, error) {
	if requesterID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if o.ShopperID != requesterID && !privileged {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, lines []model.OrderLine) OrderOutput {
	outLines := make([]OrderLineOutput, 0, len(lines))
	for _, l := range lines {
		outLines = append(outLines, OrderLineOutput{
			ID:            l.ID,
			ProductID:     l.ProductID,
			StoreID:       l.StoreID,
			Name:          l.ProductName,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			DiscountPrice: l.DiscountPrice,
			TotalPrice:    l.TotalPrice,
			Color:         l.Color,
			Size:          l.Size,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		ShopperID:       o.ShopperID,
		StoreID:         o.StoreID,
		PaymentMethodID: o.PaymentMethodID,
		DeliveryCharge:  o.DeliveryCharge,
		TotalAmount:     o.TotalAmount,
		PaymentStatus:   string(o.PaymentStatus),
		Status:          string(o.Status),
		Channel:         string(o.Channel),
		OrderDate:       o.OrderDate,
		Lines:           outLines,
	}
}
