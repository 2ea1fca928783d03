package model

import "html/template"

// InfoWindowState 吹き出しの開閉状態
type InfoWindowState string

const (
	InfoWindowClosed InfoWindowState = "closed"
	InfoWindowOpen   InfoWindowState = "open"
)

// InfoWindow 1つのマーカーに紐づく吹き出し
// 「同時に開くのは1つまで」はInfoWindowControllerが保証する
type InfoWindow struct {
	ID       string
	MarkerID string
	Content  template.HTML
	State    InfoWindowState
}

// IsOpen 吹き出しが開いているか
func (w *InfoWindow) IsOpen() bool {
	return w.State == InfoWindowOpen
}

// Marker 地図上に置かれたピン。1つのLocationClusterに対応する
type Marker struct {
	ID       string
	Key      string
	Position LatLng
	Cluster  *LocationCluster
	Window   *InfoWindow
}

// FocusHint ディープリンクで指定されたフォーカス対象
type FocusHint struct {
	PostID  string `json:"post_id" form:"postId"`
	Address string `json:"location" form:"location"`
}

// HasAddress ヒントに住所が含まれているか
func (h *FocusHint) HasAddress() bool {
	return h != nil && h.Address != ""
}

// ClusterOptions グリッド方式の見た目上のクラスタリング設定
type ClusterOptions struct {
	MaxZoom            int `json:"max_zoom" validate:"min=0,max=22"`
	GridSize           int `json:"grid_size" validate:"min=1"`            // ピクセル
	MinimumClusterSize int `json:"minimum_cluster_size" validate:"min=1"` // これ未満は個別マーカーとして表示
}

// MarkerView スナップショット内のマーカー表現
type MarkerView struct {
	ID        string   `json:"id"`
	Key       string   `json:"key"`
	Position  LatLng   `json:"position"`
	PostIDs   []string `json:"post_ids"`
	WindowID  string   `json:"window_id"`
	PopupHTML string   `json:"popup_html"`
	Open      bool     `json:"open"`
}

// VisualCluster 低ズーム時にまとめて表示されるマーカー群
type VisualCluster struct {
	Center    LatLng   `json:"center"`
	Count     int      `json:"count"`
	MarkerIDs []string `json:"marker_ids"`
}

// MapSnapshot マップセッションの現在の表示状態
type MapSnapshot struct {
	SessionID       string          `json:"session_id"`
	Center          LatLng          `json:"center"`
	Zoom            int             `json:"zoom"`
	Markers         []MarkerView    `json:"markers"`
	VisualClusters  []VisualCluster `json:"visual_clusters"`
	OpenWindowID    string          `json:"open_window_id,omitempty"`
	UnplacedCount   int             `json:"unplaced_count"`
	UnplacedPostIDs []string        `json:"unplaced_post_ids"`
	Notice          string          `json:"notice,omitempty"`
}
