package maps

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"Critterly-App/internal/domain/model"
)

const maxZoomLevel = 22

var (
	// ErrSurfaceNotInitialized はInit前の操作
	ErrSurfaceNotInitialized = errors.New("map surface is not initialized")
	// ErrDuplicateMarker は同じIDのマーカーの二重配置
	ErrDuplicateMarker = errors.New("marker already placed")
)

// MemorySurface はサーバー側で状態を保持する地図描画面
// マーカー・吹き出しの開閉・中心とズーム・クラスタリングのオーバーレイを管理する
type MemorySurface struct {
	mu          sync.Mutex
	initialized bool
	center      model.LatLng
	zoom        int
	markers     []*model.Marker
	markerIndex map[string]*model.Marker
	openPopups  map[string]struct{}
	handlers    map[string]func()
	overlay     []*model.Marker
	clusterer   *GridClusterer
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{
		markerIndex: make(map[string]*model.Marker),
		openPopups:  make(map[string]struct{}),
		handlers:    make(map[string]func()),
	}
}

// Init は中心とズームを設定する。座標やズームが不正なら失敗する
func (s *MemorySurface) Init(ctx context.Context, center model.LatLng, zoom int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !center.IsValid() {
		return fmt.Errorf("不正な中心座標です: (%f, %f)", center.Lat, center.Lng)
	}
	if zoom < 0 || zoom > maxZoomLevel {
		return fmt.Errorf("不正なズームレベルです: %d", zoom)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	s.center = center
	s.zoom = zoom
	return nil
}

func (s *MemorySurface) SetCenter(center model.LatLng) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.center = center
}

func (s *MemorySurface) SetZoom(zoom int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zoom = zoom
}

func (s *MemorySurface) PlaceMarker(marker *model.Marker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return ErrSurfaceNotInitialized
	}
	if _, exists := s.markerIndex[marker.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateMarker, marker.ID)
	}
	s.markers = append(s.markers, marker)
	s.markerIndex[marker.ID] = marker
	return nil
}

// ClearMarkers はマーカーとクリックハンドラ、開いている吹き出しをすべて消す
func (s *MemorySurface) ClearMarkers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markers = nil
	s.markerIndex = make(map[string]*model.Marker)
	s.handlers = make(map[string]func())
	s.openPopups = make(map[string]struct{})
}

func (s *MemorySurface) OpenPopup(windowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openPopups[windowID] = struct{}{}
}

func (s *MemorySurface) ClosePopup(windowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.openPopups, windowID)
}

func (s *MemorySurface) OnMarkerClick(markerID string, handler func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[markerID] = handler
}

func (s *MemorySurface) SetClusterOverlay(markers []*model.Marker, options model.ClusterOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = append([]*model.Marker(nil), markers...)
	s.clusterer = NewGridClusterer(options)
}

func (s *MemorySurface) ClearClusterOverlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = nil
	s.clusterer = nil
}

// Click はマーカーのクリックを再現する
// ハンドラはロックを外してから呼ぶ（ハンドラ内でOpenPopupが呼ばれるため）
func (s *MemorySurface) Click(markerID string) error {
	s.mu.Lock()
	_, placed := s.markerIndex[markerID]
	handler := s.handlers[markerID]
	s.mu.Unlock()

	if !placed {
		return fmt.Errorf("マーカーが配置されていません: %s", markerID)
	}
	if handler != nil {
		handler()
	}
	return nil
}

// Center 現在の中心
func (s *MemorySurface) Center() model.LatLng {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}

// Zoom 現在のズーム
func (s *MemorySurface) Zoom() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.zoom
}

// Markers 配置順のマーカー
func (s *MemorySurface) Markers() []*model.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.Marker(nil), s.markers...)
}

// IsPopupOpen 吹き出しが描画面上で開いているか
func (s *MemorySurface) IsPopupOpen(windowID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.openPopups[windowID]
	return ok
}

// OpenPopupCount 描画面上で開いている吹き出しの数
func (s *MemorySurface) OpenPopupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.openPopups)
}

// VisualClusters は指定ズームでのオーバーレイのまとまり（zoom<0なら現在のズーム）
func (s *MemorySurface) VisualClusters(zoom int) []model.VisualCluster {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clusterer == nil {
		return []model.VisualCluster{}
	}
	if zoom < 0 {
		zoom = s.zoom
	}
	return s.clusterer.Cluster(s.overlay, zoom)
}
