package service

import (
	"context"

	"Critterly-App/internal/domain/model"
)

// MapSurface 地図描画面のポート
// マーカー配置・吹き出し・パン/ズーム・グリッドクラスタリングのオーバーレイを提供する
type MapSurface interface {
	// Init は描画面を初期化する。失敗した場合セッションは成立しない
	Init(ctx context.Context, center model.LatLng, zoom int) error
	SetCenter(center model.LatLng)
	SetZoom(zoom int)

	PlaceMarker(marker *model.Marker) error
	ClearMarkers()

	OpenPopup(windowID string)
	ClosePopup(windowID string)

	// OnMarkerClick はマーカーのクリック時に呼ぶハンドラを登録する
	OnMarkerClick(markerID string, handler func())

	SetClusterOverlay(markers []*model.Marker, options model.ClusterOptions)
	ClearClusterOverlay()
}
