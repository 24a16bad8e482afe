package main

import (
	"context"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain/model"
	"marketplace/internal/handler"
	"marketplace/internal/infra/cache"
	"marketplace/internal/infra/db"
	infraRepo "marketplace/internal/infra/repository"
	repo "marketplace/internal/repository"
	"marketplace/internal/server"
	"marketplace/internal/usecase"

	"github.com/joho/godotenv"
)

func loadDotenv() {
	_ = godotenv.Load()
}

// 代引きは画面遷移が無いので決済リダイレクトは空を返す。
// ゲートウェイ決済を足すときはここを差し替える。
type codPaymentInitiator struct{}

func (i *codPaymentInitiator) InitiateRedirect(ctx context.Context, order model.Order) (string, error) {
	return "", nil
}

func main() {
	//.envは無ければ環境変数をそのまま使う
	loadDotenv()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.Store{},
		&model.Product{},
		&model.ProductVariant{},
		&model.PaymentMethod{},
		&model.CartLine{},
		&model.Order{},
		&model.OrderLine{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	var productRepo repo.ProductRepository = infraRepo.NewProductGormRepository(gormDB)

	//Redisがあればカタログ読み取りをキャッシュで包む
	if cfg.RedisAddr != "" {
		rdb, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			panic(err)
		}
		ttl := time.Duration(cfg.ProductCacheTTLSeconds) * time.Second
		productRepo = cache.NewCachedProductRepository(productRepo, rdb, ttl)
	}

	cartRepo := infraRepo.NewCartLineGormRepository(gormDB)
	storeRepo := infraRepo.NewStoreGormRepository(gormDB)
	pmRepo := infraRepo.NewPaymentMethodGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//既定の支払い方法（代引き）を起動時に用意しておく
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := usecase.EnsureDefaultPaymentMethod(ctx, pmRepo); err != nil {
		panic(err)
	}

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, storeRepo)
	checkoutUC := usecase.NewCheckoutUsecase(txManager, &codPaymentInitiator{})
	orderUC := usecase.NewOrderUsecase(txManager)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager)

	//Handler生成
	h := server.Handlers{
		Products:   handler.NewProductHandler(productUC),
		Cart:       handler.NewCartHandler(cartUC),
		Orders:     handler.NewOrderHandler(checkoutUC, orderUC),
		AdminOrder: handler.NewAdminOrderHandler(adminOrderUC),
	}

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	if err := server.Start(addr, cfg, h); err != nil {
		panic(err)
	}
}
