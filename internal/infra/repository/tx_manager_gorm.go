package repository

import (
	"context"

	repo "marketplace/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders         repo.OrderRepository
	orderLines     repo.OrderLineRepository
	cartLines      repo.CartLineRepository
	products       repo.ProductRepository
	inventory      repo.InventoryRepository
	paymentMethods repo.PaymentMethodRepository
	stores         repo.StoreRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository                 { return r.orders }
func (r *txReposGorm) OrderLines() repo.OrderLineRepository         { return r.orderLines }
func (r *txReposGorm) CartLines() repo.CartLineRepository           { return r.cartLines }
func (r *txReposGorm) Products() repo.ProductRepository             { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository          { return r.inventory }
func (r *txReposGorm) PaymentMethods() repo.PaymentMethodRepository { return r.paymentMethods }
func (r *txReposGorm) Stores() repo.StoreRepository                 { return r.stores }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:         NewOrderGormRepository(tx),
			orderLines:     NewOrderLineGormRepository(tx),
			cartLines:      NewCartLineGormRepository(tx),
			products:       NewProductGormRepository(tx),
			inventory:      NewInventoryGormRepository(tx),
			paymentMethods: NewPaymentMethodGormRepository(tx),
			stores:         NewStoreGormRepository(tx),
		}
		return fn(r)
	})
}
