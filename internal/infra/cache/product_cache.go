package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/redis/go-redis/v9"
)

// カタログ参照のread-throughキャッシュ。
// 商品スナップショットをJSONで product:<id> に置く。無効化はTTL任せ。
// 在庫は目安値なので多少の遅れは許容する。確定時の在庫確保はDB側の条件付きUPDATEが守る。
type CachedProductRepository struct {
	inner repo.ProductRepository
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProductRepository(inner repo.ProductRepository, rdb *redis.Client, ttl time.Duration) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &CachedProductRepository{inner: inner, rdb: rdb, ttl: ttl}
}

// 一覧はキャッシュしない（絞り込みの組み合わせが多すぎる）
func (r *CachedProductRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	return r.inner.ListPublic(ctx, q)
}

func (r *CachedProductRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	key := productKey(id)

	if data, err := r.rdb.Get(ctx, key).Result(); err == nil && data != "" {
		var p model.Product
		if err := json.Unmarshal([]byte(data), &p); err == nil {
			return p, nil
		}
		//壊れたエントリは消して取り直す
		r.rdb.Del(ctx, key)
	}

	p, err := r.inner.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, err
	}

	if data, err := json.Marshal(p); err == nil {
		r.rdb.Set(ctx, key, data, r.ttl)
	}

	return p, nil
}

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
