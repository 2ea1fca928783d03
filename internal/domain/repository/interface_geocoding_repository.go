package repository

import (
	"context"

	"Critterly-App/internal/domain/model"
)

// Geocoder 自由入力の住所を座標に解決する外部サービス
// 1回の呼び出しで外部サービスへの呼び出しはちょうど1回。失敗は解釈せずにそのまま返す
type Geocoder interface {
	Resolve(ctx context.Context, address string) (model.LatLng, error)
}

// GeocodeCache 成功したジオコーディング結果の永続キャッシュ
type GeocodeCache interface {
	// Get キャッシュになければ ok=false
	Get(ctx context.Context, address string) (coordinate model.LatLng, ok bool, err error)
	Put(ctx context.Context, address string, coordinate model.LatLng) error
}
