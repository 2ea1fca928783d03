package repository

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"Critterly-App/internal/domain/model"
)

// LatLngToWKT 座標をWKTのPOINT文字列に変換（経度, 緯度の順）
func LatLngToWKT(coordinate model.LatLng) string {
	return wkt.MarshalString(orb.Point{coordinate.Lng, coordinate.Lat})
}

// WKTToLatLng WKTのPOINT文字列を座標に変換
func WKTToLatLng(s string) (model.LatLng, error) {
	point, err := wkt.UnmarshalPoint(s)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("WKTのパースに失敗: %w", err)
	}

	coordinate := model.LatLng{Lat: point.Lat(), Lng: point.Lon()}
	if !coordinate.IsValid() {
		return model.LatLng{}, fmt.Errorf("座標が有効範囲外です: %s", s)
	}
	return coordinate, nil
}
