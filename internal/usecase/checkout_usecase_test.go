package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"
	"marketplace/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type CheckoutOrderRepoMock struct{ mock.Mock }

func (m *CheckoutOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutOrderRepoMock) ListByShopper(ctx context.Context, shopperID int64, page int, limit int) ([]model.Order, int64, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutOrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CheckoutOrderRepoMock) SetLineCount(ctx context.Context, orderID int64, count int64) error {
	args := m.Called(ctx, orderID, count)
	return args.Error(0)
}

func (m *CheckoutOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutOrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used in CheckoutUsecase tests")
}

type CheckoutOrderLineRepoMock struct{ mock.Mock }

func (m *CheckoutOrderLineRepoMock) CreateBulk(ctx context.Context, orderID int64, lines []model.OrderLine) error {
	args := m.Called(ctx, orderID, lines)
	return args.Error(0)
}

func (m *CheckoutOrderLineRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	panic("not used in CheckoutUsecase tests")
}

type CheckoutCartLineRepoMock struct{ mock.Mock }

func (m *CheckoutCartLineRepoMock) ListByShopper(ctx context.Context, shopperID int64) ([]model.CartLine, error) {
	args := m.Called(ctx, shopperID)
	lines, _ := args.Get(0).([]model.CartLine)
	return lines, args.Error(1)
}

func (m *CheckoutCartLineRepoMock) Upsert(ctx context.Context, line model.CartLine) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutCartLineRepoMock) FindByID(ctx context.Context, shopperID int64, lineID int64) (model.CartLine, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutCartLineRepoMock) UpdateQuantity(ctx context.Context, shopperID int64, lineID int64, qty int64) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutCartLineRepoMock) DeleteByID(ctx context.Context, shopperID int64, lineID int64) error {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutCartLineRepoMock) Clear(ctx context.Context, shopperID int64) error {
	args := m.Called(ctx, shopperID)
	return args.Error(0)
}

type CheckoutProductRepoMock struct{ mock.Mock }

func (m *CheckoutProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CheckoutUsecase tests")
}

func (m *CheckoutProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

type CheckoutInventoryRepoMock struct{ mock.Mock }

func (m *CheckoutInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *CheckoutInventoryRepoMock) DecreaseVariantStockIfEnough(ctx context.Context, variantID int64, qty int64) (bool, error) {
	args := m.Called(ctx, variantID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *CheckoutInventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

func (m *CheckoutInventoryRepoMock) IncreaseVariantStock(ctx context.Context, variantID int64, qty int64) error {
	args := m.Called(ctx, variantID, qty)
	return args.Error(0)
}

type CheckoutPaymentMethodRepoMock struct{ mock.Mock }

func (m *CheckoutPaymentMethodRepoMock) FindByID(ctx context.Context, id int64) (model.PaymentMethod, error) {
	args := m.Called(ctx, id)
	pm, _ := args.Get(0).(model.PaymentMethod)
	return pm, args.Error(1)
}

func (m *CheckoutPaymentMethodRepoMock) FindByNameLike(ctx context.Context, name string) (model.PaymentMethod, error) {
	args := m.Called(ctx, name)
	pm, _ := args.Get(0).(model.PaymentMethod)
	return pm, args.Error(1)
}

func (m *CheckoutPaymentMethodRepoMock) Create(ctx context.Context, pm model.PaymentMethod) (int64, error) {
	args := m.Called(ctx, pm)
	return args.Get(0).(int64), args.Error(1)
}

type CheckoutStoreRepoMock struct{ mock.Mock }

func (m *CheckoutStoreRepoMock) FindByID(ctx context.Context, id int64) (model.Store, error) {
	args := m.Called(ctx, id)
	st, _ := args.Get(0).(model.Store)
	return st, args.Error(1)
}

// TxReposを固定のmock一式で差し替える
type txReposStub struct {
	orders         *CheckoutOrderRepoMock
	orderLines     *CheckoutOrderLineRepoMock
	cartLines      *CheckoutCartLineRepoMock
	products       *CheckoutProductRepoMock
	inventory      *CheckoutInventoryRepoMock
	paymentMethods *CheckoutPaymentMethodRepoMock
	stores         *CheckoutStoreRepoMock
}

func (s txReposStub) Orders() repo.OrderRepository                 { return s.orders }
func (s txReposStub) OrderLines() repo.OrderLineRepository         { return s.orderLines }
func (s txReposStub) CartLines() repo.CartLineRepository           { return s.cartLines }
func (s txReposStub) Products() repo.ProductRepository             { return s.products }
func (s txReposStub) Inventory() repo.InventoryRepository          { return s.inventory }
func (s txReposStub) PaymentMethods() repo.PaymentMethodRepository { return s.paymentMethods }
func (s txReposStub) Stores() repo.StoreRepository                 { return s.stores }

// 本物のTx境界は貼らずにクロージャをそのまま実行する
type TxManagerMock struct{ repos txReposStub }

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return fn(m.repos)
}

type paymentInitiatorStub struct {
	url string
	err error
}

func (s paymentInitiatorStub) InitiateRedirect(ctx context.Context, order model.Order) (string, error) {
	return s.url, s.err
}

func newCheckoutFixture() (*usecase.CheckoutUsecase, txReposStub) {
	repos := txReposStub{
		orders:         new(CheckoutOrderRepoMock),
		orderLines:     new(CheckoutOrderLineRepoMock),
		cartLines:      new(CheckoutCartLineRepoMock),
		products:       new(CheckoutProductRepoMock),
		inventory:      new(CheckoutInventoryRepoMock),
		paymentMethods: new(CheckoutPaymentMethodRepoMock),
		stores:         new(CheckoutStoreRepoMock),
	}
	uc := usecase.NewCheckoutUsecase(&TxManagerMock{repos: repos}, nil)
	return uc, repos
}

func shirtProduct() model.Product {
	return model.Product{
		ID: 10, StoreID: 7, Name: "Shirt", IsActive: true,
		Variants: []model.ProductVariant{
			{ID: 1, ProductID: 10, Color: "Red", Size: "M", Stock: 10, Price: 100},
		},
	}
}

func validShipping() usecase.PlaceOrderInput {
	return usecase.PlaceOrderInput{
		ShippingName:       "Taro Yamada",
		ShippingPhone:      "090-0000-0000",
		ShippingAddress:    "1-2-3 Chuo",
		ShippingCity:       "Osaka",
		ShippingPostalCode: "530-0001",
		DeliveryMethod:     "standard",
		DeliveryCharge:     50,
	}
}

// =====================
// PlaceOrder
// =====================

func TestCheckoutUsecase_PlaceOrder_InvalidInput(t *testing.T) {
	uc, _ := newCheckoutFixture()

	_, err := uc.PlaceOrder(context.Background(), 0, validShipping())
	assertErrContains(t, err, "unauthorized")

	in := validShipping()
	in.ShippingName = "  "
	_, err = uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "invalid shipping_name")

	in = validShipping()
	in.Lines = []usecase.CheckoutLineRequest{{ProductID: 10, Quantity: 0}}
	_, err = uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "invalid line")
}

func TestCheckoutUsecase_PlaceOrder_CartEmpty(t *testing.T) {
	uc, repos := newCheckoutFixture()

	repos.cartLines.On("ListByShopper", mock.Anything, int64(1)).Return([]model.CartLine{}, nil)

	_, err := uc.PlaceOrder(context.Background(), 1, validShipping())
	assertErrContains(t, err, "cart empty")
	repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_PlaceOrder_FromCart_Success(t *testing.T) {
	uc, repos := newCheckoutFixture()

	repos.cartLines.On("ListByShopper", mock.Anything, int64(1)).Return([]model.CartLine{
		{ID: 1, ShopperID: 1, ProductID: 10, Quantity: 5, Color: "Red", Size: "M", UnitPrice: 90, TotalPrice: 450},
	}, nil)
	repos.products.On("FindByID", mock.Anything, int64(10)).Return(shirtProduct(), nil)
	repos.stores.On("FindByID", mock.Anything, int64(7)).Return(model.Store{ID: 7, Name: "Vendor"}, nil)
	repos.paymentMethods.On("FindByNameLike", mock.Anything, "cash on delivery").
		Return(model.PaymentMethod{ID: 3, Name: "Cash On Delivery"}, nil)
	repos.inventory.On("DecreaseVariantStockIfEnough", mock.Anything, int64(1), int64(5)).Return(true, nil)
	repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(42), nil)
	repos.orderLines.On("CreateBulk", mock.Anything, int64(42), mock.Anything).Return(nil)
	repos.orders.On("SetLineCount", mock.Anything, int64(42), int64(1)).Return(nil)
	repos.cartLines.On("Clear", mock.Anything, int64(1)).Return(nil)

	out, err := uc.PlaceOrder(context.Background(), 1, validShipping())
	assert.NoError(t, err)

	//金額はカタログの現在価格で再計算される。カートのスナップショット(90)ではない。
	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, int64(550), out.TotalAmount)
	assert.Equal(t, 1, len(out.Lines))
	assert.Equal(t, int64(500), out.Lines[0].TotalPrice)
	assert.Equal(t, int64(7), out.StoreID)
	assert.Equal(t, int64(3), out.PaymentMethodID)
	assert.Equal(t, string(model.OrderStatusPending), out.Status)
	assert.Equal(t, string(model.PaymentStatusPending), out.PaymentStatus)
	assert.True(t, strings.HasPrefix(out.OrderNumber, "ORD-"))

	repos.orders.AssertCalled(t, "SetLineCount", mock.Anything, int64(42), int64(1))
	repos.cartLines.AssertCalled(t, "Clear", mock.Anything, int64(1))
}

func TestCheckoutUsecase_PlaceOrder_ExplicitLines_SkipsCart(t *testing.T) {
	uc, repos := newCheckoutFixture()

	repos.products.On("FindByID", mock.Anything, int64(10)).Return(shirtProduct(), nil)
	repos.stores.On("FindByID", mock.Anything, int64(7)).Return(model.Store{ID: 7}, nil)
	repos.paymentMethods.On("FindByNameLike", mock.Anything, "cash on delivery").
		Return(model.PaymentMethod{ID: 3}, nil)
	repos.inventory.On("DecreaseVariantStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)
	repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(43), nil)
	repos.orderLines.On("CreateBulk", mock.Anything, int64(43), mock.Anything).Return(nil)
	repos.orders.On("SetLineCount", mock.Anything, int64(43), int64(1)).Return(nil)

	in := validShipping()
	in.Lines = []usecase.CheckoutLineRequest{{ProductID: 10, Quantity: 2, Color: "Red", Size: "M"}}

	out, err := uc.PlaceOrder(context.Background(), 1, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(250), out.TotalAmount)

	//明示的な明細での注文はカートに触らない
	repos.cartLines.AssertNotCalled(t, "ListByShopper", mock.Anything, mock.Anything)
	repos.cartLines.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// 割引が通常価格を超える壊れた行は通常価格で計上する
func TestCheckoutUsecase_PlaceOrder_BadDiscountIgnored(t *testing.T) {
	uc, repos := newCheckoutFixture()

	p := shirtProduct()
	p.Variants[0].DiscountPrice = intp(999)
	repos.products.On("FindByID", mock.Anything, int64(10)).Return(p, nil)
	repos.stores.On("FindByID", mock.Anything, int64(7)).Return(model.Store{ID: 7}, nil)
	repos.paymentMethods.On("FindByNameLike", mock.Anything, "cash on delivery").
		Return(model.PaymentMethod{ID: 3}, nil)
	repos.inventory.On("DecreaseVariantStockIfEnough", mock.Anything, int64(1), int64(2)).Return(true, nil)
	repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(46), nil)
	repos.orderLines.On("CreateBulk", mock.Anything, int64(46), mock.Anything).Return(nil)
	repos.orders.On("SetLineCount", mock.Anything, int64(46), int64(1)).Return(nil)

	in := validShipping()
	in.Lines = []usecase.CheckoutLineRequest{{ProductID: 10, Quantity: 2, Color: "Red", Size: "M"}}

	out, err := uc.PlaceOrder(context.Background(), 1, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(250), out.TotalAmount)
	assert.Equal(t, int64(200), out.Lines[0].TotalPrice)
	assert.Nil(t, out.Lines[0].DiscountPrice)
}

func TestCheckoutUsecase_PlaceOrder_InsufficientStock(t *testing.T) {
	uc, repos := newCheckoutFixture()

	p := shirtProduct()
	p.Variants[0].Stock = 3
	repos.products.On("FindByID", mock.Anything, int64(10)).Return(p, nil)

	in := validShipping()
	in.Lines = []usecase.CheckoutLineRequest{{ProductID: 10, Quantity: 4, Color: "Red", Size: "M"}}

	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "only 3 left in stock")
	repos.inventory.AssertNotCalled(t, "DecreaseVariantStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 事前チェックを通っても、条件付きUPDATEで負けたら注文は作られない
func TestCheckoutUsecase_PlaceOrder_LostStockRace(t *testing.T) {
	uc, repos := newCheckoutFixture()

	repos.products.On("FindByID", mock.Anything, int64(10)).Return(shirtProduct(), nil)
	repos.stores.On("FindByID", mock.Anything, int64(7)).Return(model.Store{ID: 7}, nil)
	repos.paymentMethods.On("FindByNameLike", mock.Anything, "cash on delivery").
		Return(model.PaymentMethod{ID: 3}, nil)
	repos.inventory.On("DecreaseVariantStockIfEnough", mock.Anything, int64(1), int64(2)).Return(false, nil)

	in := validShipping()
	in.Lines = []usecase.CheckoutLineRequest{{ProductID: 10, Quantity: 2, Color: "Red", Size: "M"}}

	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "insufficient stock for Shirt")
	repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutUsecase_PlaceOrder_StoreUnresolved(t *testing.T) {
	uc, repos := newCheckoutFixture()

	repos.products.On("FindByID", mock.Anything, int64(10)).Return(shirtProduct(), nil)
	repos.stores.On("FindByID", mock.Anything, int64(99)).Return(model.Store{}, repo.ErrNotFound)

	in := validShipping()
	in.Lines = []usecase.CheckoutLineRequest{{ProductID: 10, Quantity: 1, Color: "Red", Size: "M"}}
	in.StoreID = intp(99)

	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "store unresolved")
	repos.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 代引きが未登録なら作ってから注文を続ける
func TestCheckoutUsecase_PlaceOrder_CreatesDefaultPaymentMethod(t *testing.T) {
	uc, repos := newCheckoutFixture()

	repos.products.On("FindByID", mock.Anything, int64(10)).Return(shirtProduct(), nil)
	repos.stores.On("FindByID", mock.Anything, int64(7)).Return(model.Store{ID: 7}, nil)
	repos.paymentMethods.On("FindByNameLike", mock.Anything, "cash on delivery").
		Return(model.PaymentMethod{}, repo.ErrNotFound)
	repos.paymentMethods.On("Create", mock.Anything, mock.MatchedBy(func(pm model.PaymentMethod) bool {
		return pm.Name == model.DefaultPaymentMethodName && pm.IsActive
	})).Return(int64(8), nil)
	repos.inventory.On("DecreaseVariantStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)
	repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(44), nil)
	repos.orderLines.On("CreateBulk", mock.Anything, int64(44), mock.Anything).Return(nil)
	repos.orders.On("SetLineCount", mock.Anything, int64(44), int64(1)).Return(nil)

	in := validShipping()
	in.Lines = []usecase.CheckoutLineRequest{{ProductID: 10, Quantity: 1, Color: "Red", Size: "M"}}

	out, err := uc.PlaceOrder(context.Background(), 1, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(8), out.PaymentMethodID)
}

func TestCheckoutUsecase_PlaceOrder_CommitFailure(t *testing.T) {
	uc, repos := newCheckoutFixture()

	repos.products.On("FindByID", mock.Anything, int64(10)).Return(shirtProduct(), nil)
	repos.stores.On("FindByID", mock.Anything, int64(7)).Return(model.Store{ID: 7}, nil)
	repos.paymentMethods.On("FindByNameLike", mock.Anything, "cash on delivery").
		Return(model.PaymentMethod{ID: 3}, nil)
	repos.inventory.On("DecreaseVariantStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)
	repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("deadlock detected"))

	in := validShipping()
	in.Lines = []usecase.CheckoutLineRequest{{ProductID: 10, Quantity: 1, Color: "Red", Size: "M"}}

	_, err := uc.PlaceOrder(context.Background(), 1, in)
	assertErrContains(t, err, "order commit failed")
	repos.orderLines.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
}

// 決済リダイレクトの失敗は注文を壊さない
func TestCheckoutUsecase_PlaceOrder_PaymentRedirect(t *testing.T) {
	_, repos := newCheckoutFixture()

	repos.products.On("FindByID", mock.Anything, int64(10)).Return(shirtProduct(), nil)
	repos.stores.On("FindByID", mock.Anything, int64(7)).Return(model.Store{ID: 7}, nil)
	repos.paymentMethods.On("FindByNameLike", mock.Anything, "cash on delivery").
		Return(model.PaymentMethod{ID: 3}, nil)
	repos.inventory.On("DecreaseVariantStockIfEnough", mock.Anything, int64(1), int64(1)).Return(true, nil)
	repos.orders.On("Create", mock.Anything, mock.Anything).Return(int64(45), nil)
	repos.orderLines.On("CreateBulk", mock.Anything, int64(45), mock.Anything).Return(nil)
	repos.orders.On("SetLineCount", mock.Anything, int64(45), int64(1)).Return(nil)

	in := validShipping()
	in.Lines = []usecase.CheckoutLineRequest{{ProductID: 10, Quantity: 1, Color: "Red", Size: "M"}}

	uc := usecase.NewCheckoutUsecase(&TxManagerMock{repos: repos}, paymentInitiatorStub{url: "https://pay.example/redirect/45"})
	out, err := uc.PlaceOrder(context.Background(), 1, in)
	assert.NoError(t, err)
	assert.Equal(t, "https://pay.example/redirect/45", out.PaymentRedirectURL)

	uc = usecase.NewCheckoutUsecase(&TxManagerMock{repos: repos}, paymentInitiatorStub{err: errors.New("gateway down")})
	out, err = uc.PlaceOrder(context.Background(), 1, in)
	assert.NoError(t, err)
	assert.Equal(t, "", out.PaymentRedirectURL)
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

	n1 := usecase.GenerateOrderNumber(now)
	n2 := usecase.GenerateOrderNumber(now)

	assert.True(t, strings.HasPrefix(n1, "ORD-20250314150926-"))
	assert.Equal(t, len("ORD-20250314150926-")+8, len(n1))
	assert.NotEqual(t, n1, n2)
}
