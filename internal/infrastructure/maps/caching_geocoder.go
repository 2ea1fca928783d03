package maps

import (
	"context"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/logging"
	"Critterly-App/internal/metrics"
)

// CachingGeocoder は成功した解決結果を永続キャッシュに保存する
// 失敗はキャッシュしない。キャッシュ自体の障害はログに出して無視する
type CachingGeocoder struct {
	next  repository.Geocoder
	cache repository.GeocodeCache
}

func NewCachingGeocoder(next repository.Geocoder, cache repository.GeocodeCache) *CachingGeocoder {
	return &CachingGeocoder{next: next, cache: cache}
}

func (c *CachingGeocoder) Resolve(ctx context.Context, address string) (model.LatLng, error) {
	coordinate, ok, err := c.cache.Get(ctx, address)
	if err != nil {
		logging.Warn().Err(err).Str("address", address).Msg("⚠️ ジオコードキャッシュの読み込みに失敗")
	} else if ok && coordinate.IsValid() {
		metrics.GeocodeRequests.WithLabelValues("cache", "cache_hit").Inc()
		return coordinate, nil
	}

	coordinate, err = c.next.Resolve(ctx, address)
	if err != nil {
		return model.LatLng{}, err
	}

	if err := c.cache.Put(ctx, address, coordinate); err != nil {
		logging.Warn().Err(err).Str("address", address).Msg("⚠️ ジオコードキャッシュの書き込みに失敗")
	}
	return coordinate, nil
}
