package model

import "fmt"

// マップ表示の既定値
const (
	// DefaultCenterAddress ディープリンクがない場合の初期中心（キャンパス）
	DefaultCenterAddress = "1970 Campus Drive, Evanston, IL 60208"

	DefaultZoom = 15
	FocusZoom   = 18

	DefaultClusterMaxZoom     = 15
	DefaultClusterGridSize    = 60
	DefaultMinimumClusterSize = 2

	// MaxIndicatorLevel レア度・危険度のアイコン数の上限
	MaxIndicatorLevel = 5
)

// FallbackCenter 中心住所のジオコーディングに失敗した場合に使う座標
var FallbackCenter = LatLng{Lat: 42.0565, Lng: -87.6753}

// 吹き出しに表示する文言
const (
	AnonymousAuthorName = "Anonymous User"
	DateNotAvailable    = "Date not available"
	NoCaption           = "No caption"
	PostImageAlt        = "Post image"
	PostDateLayout      = "01/02/2006"

	RarityIcon = "★"
	ThreatIcon = "☠️"
)

// DefaultClusterOptions クラスタリング設定の既定値
func DefaultClusterOptions() ClusterOptions {
	return ClusterOptions{
		MaxZoom:            DefaultClusterMaxZoom,
		GridSize:           DefaultClusterGridSize,
		MinimumClusterSize: DefaultMinimumClusterSize,
	}
}

// UnplacedNotice 地図に置けなかった投稿数の通知文を返す（0件なら空文字）
func UnplacedNotice(count int) string {
	switch {
	case count <= 0:
		return ""
	case count == 1:
		return "1 post could not be placed on the map"
	default:
		return fmt.Sprintf("%d posts could not be placed on the map", count)
	}
}
