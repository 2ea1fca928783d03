package model

import (
	"fmt"
	"math"
)

// LatLng 緯度経度を表す基本的な型（ジオコーディング結果・マーカー位置などで使用）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// IsValid 緯度経度が有限かつ範囲内かどうかを判定
func (l LatLng) IsValid() bool {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lng) || math.IsInf(l.Lat, 0) || math.IsInf(l.Lng, 0) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180
}

// Key 小数点以下6桁に丸めた座標キーを返す
// クラスタリングの同一判定はこのキーの一致で行い、浮動小数点の比較は使わない
func (l LatLng) Key() string {
	return fmt.Sprintf("%s,%s", formatKeyComponent(l.Lat), formatKeyComponent(l.Lng))
}

func formatKeyComponent(v float64) string {
	s := fmt.Sprintf("%.6f", v)
	// -0.000000 と 0.000000 を同じキーにする
	if s == "-0.000000" {
		return "0.000000"
	}
	return s
}

// LocationCluster 同一座標キーに解決された投稿のまとまり
// LocationIndexの実行ごとに新しく作られ、構築後に変更されることはない
type LocationCluster struct {
	Key        string  `json:"key"`
	Coordinate LatLng  `json:"coordinate"`
	Posts      []*Post `json:"posts"`
}

// ContainsPost 指定IDの投稿がクラスタに含まれているか
func (c *LocationCluster) ContainsPost(postID string) bool {
	for _, p := range c.Posts {
		if p != nil && p.ID == postID {
			return true
		}
	}
	return false
}

// PostIDs クラスタ内の投稿IDを挿入順で返す
func (c *LocationCluster) PostIDs() []string {
	ids := make([]string, 0, len(c.Posts))
	for _, p := range c.Posts {
		ids = append(ids, p.ID)
	}
	return ids
}

// UnplacedPost ジオコーディングに失敗して地図に置けなかった投稿
type UnplacedPost struct {
	PostID string `json:"post_id"`
	Geotag string `json:"geotag"`
	Reason string `json:"reason"`
}

// IndexResult LocationIndex.Buildの結果
type IndexResult struct {
	Clusters []*LocationCluster
	Unplaced []UnplacedPost
}

// PlacedPostCount クラスタに含まれる投稿の総数
func (r *IndexResult) PlacedPostCount() int {
	total := 0
	for _, c := range r.Clusters {
		total += len(c.Posts)
	}
	return total
}

// GeocodeError ジオコーディングサービスが返した失敗をそのまま保持する
type GeocodeError struct {
	Address    string
	Status     string // 外部サービスのステータス（"ZERO_RESULTS"など）
	Message    string
	HTTPStatus int // HTTPレベルで失敗した場合のステータスコード。API応答なら0
}

// IsServiceFailure 住所の問題ではなくサービス側の障害による失敗か
// 5xxなどのHTTPエラーと、APIが返すUNKNOWN_ERRORが該当する
func (e *GeocodeError) IsServiceFailure() bool {
	return e.HTTPStatus != 0 || e.Status == "UNKNOWN_ERROR"
}

func (e *GeocodeError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("geocode %q: %s (%s)", e.Address, e.Status, e.Message)
	}
	return fmt.Sprintf("geocode %q: %s", e.Address, e.Status)
}
