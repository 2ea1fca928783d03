package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"Critterly-App/internal/domain/helper"
	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/logging"
)

// SessionConfig マップセッションの表示設定
type SessionConfig struct {
	DefaultCenterAddress string
	FallbackCenter       model.LatLng
	DefaultZoom          int
	FocusZoom            int
}

// DefaultSessionConfig は既定の表示設定
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		DefaultCenterAddress: model.DefaultCenterAddress,
		FallbackCenter:       model.FallbackCenter,
		DefaultZoom:          model.DefaultZoom,
		FocusZoom:            model.FocusZoom,
	}
}

// MapSession はマウントされた1つの地図ビューのライフサイクルを管理する
// 初期センタリング、インデックス構築、描画、ディープリンクのフォーカス、破棄までを担当
type MapSession struct {
	id         string
	geocoder   repository.Geocoder
	index      *LocationIndex
	renderer   *ClusterRenderer
	surface    MapSurface
	controller *InfoWindowController
	cfg        SessionConfig
	log        zerolog.Logger

	mu           sync.Mutex
	closed       bool
	generation   uint64
	center       model.LatLng
	clusters     []*model.LocationCluster
	markers      []*model.Marker
	unplaced     []model.UnplacedPost
	pendingFocus *model.FocusHint
}

// NewMapSession は新しいMapSessionを作成
func NewMapSession(id string, geocoder repository.Geocoder, index *LocationIndex, renderer *ClusterRenderer, surface MapSurface, cfg SessionConfig) *MapSession {
	return &MapSession{
		id:         id,
		geocoder:   geocoder,
		index:      index,
		renderer:   renderer,
		surface:    surface,
		controller: NewInfoWindowController(surface),
		cfg:        cfg,
		log:        logging.With().Str("session_id", id).Logger(),
	}
}

// ID セッションID
func (s *MapSession) ID() string {
	return s.id
}

// Controller 吹き出しの開閉を管理するコントローラ
func (s *MapSession) Controller() *InfoWindowController {
	return s.controller
}

// Mount は地図の中心を決めて描画面を初期化し、投稿からマーカーを構築する
// hintがあれば構築後にその投稿の吹き出しを開いてズームする
func (s *MapSession) Mount(ctx context.Context, posts []*model.Post, hint *model.FocusHint) error {
	center := s.resolveCenter(ctx, hint)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	if err := s.surface.Init(ctx, center, s.cfg.DefaultZoom); err != nil {
		s.Teardown()
		return fmt.Errorf("地図描画面の初期化に失敗: %w", err)
	}

	s.mu.Lock()
	s.center = center
	if hint != nil && hint.PostID != "" {
		h := *hint
		s.pendingFocus = &h
	}
	s.mu.Unlock()

	s.log.Info().Float64("lat", center.Lat).Float64("lng", center.Lng).Int("posts", len(posts)).Msg("🗺️ マップセッションをマウント")
	return s.Rebuild(ctx, posts)
}

// resolveCenter はヒントの住所（なければ既定住所）を座標に解決する。失敗時は固定座標
func (s *MapSession) resolveCenter(ctx context.Context, hint *model.FocusHint) model.LatLng {
	address := s.cfg.DefaultCenterAddress
	if hint.HasAddress() {
		address = hint.Address
	}

	center, err := s.geocoder.Resolve(ctx, address)
	if err == nil && center.IsValid() {
		return center
	}
	if err == nil {
		err = &model.GeocodeError{Address: address, Status: "INVALID_COORDINATE"}
	}
	s.log.Warn().Err(err).Str("address", address).Msg("⚠️ 中心住所の解決に失敗したため既定の座標を使用")
	return s.cfg.FallbackCenter
}

// Rebuild は投稿リストからインデックスを作り直し、マーカーを全面的に置き換える
// 構築中にTeardownや新しいRebuildが走った場合、この結果は破棄される
// インデックス構築に失敗した場合は直前のマーカーと吹き出しを維持する
func (s *MapSession) Rebuild(ctx context.Context, posts []*model.Post) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	result, err := s.index.Build(ctx, posts)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.log.Info().Msg("🛑 破棄済みのセッションのため構築結果を破棄")
		return ErrSessionClosed
	}
	if gen != s.generation {
		s.log.Debug().Uint64("generation", gen).Msg("新しい構築が開始されたため古い結果を破棄")
		return nil
	}
	if err != nil {
		// 描画済みのマーカーがあればそのまま残す
		if len(s.markers) == 0 {
			s.releaseLocked()
		}
		s.log.Warn().Err(err).Int("markers", len(s.markers)).Msg("⚠️ 位置インデックスの再構築に失敗")
		return fmt.Errorf("投稿の位置インデックス構築に失敗: %w", err)
	}

	s.releaseLocked()
	markers, err := s.renderer.Render(result.Clusters, s.surface)
	if err != nil {
		s.releaseLocked()
		return fmt.Errorf("マーカーの描画に失敗: %w", err)
	}

	for _, m := range markers {
		s.controller.Register(m.Window)
		windowID := m.Window.ID
		s.surface.OnMarkerClick(m.ID, func() {
			_ = s.controller.Open(windowID)
		})
	}

	s.clusters = result.Clusters
	s.markers = markers
	s.unplaced = result.Unplaced

	if s.pendingFocus != nil {
		s.applyFocusLocked(*s.pendingFocus)
		s.pendingFocus = nil
	}
	return nil
}

// applyFocusLocked は対象投稿のクラスタの吹き出しを開いてズームする。見つからなければスキップ
func (s *MapSession) applyFocusLocked(hint model.FocusHint) {
	cluster := helper.FindClusterByPostID(s.clusters, hint.PostID)
	if cluster == nil {
		s.log.Warn().Str("post_id", hint.PostID).Msg("⚠️ フォーカス対象の投稿が地図上に見つからないためスキップ")
		return
	}

	for _, m := range s.markers {
		if m.Key != cluster.Key {
			continue
		}
		if err := s.controller.Open(m.Window.ID); err != nil {
			s.log.Warn().Err(err).Msg("⚠️ フォーカス対象の吹き出しを開けませんでした")
			return
		}
		s.center = m.Position
		s.surface.SetCenter(m.Position)
		s.surface.SetZoom(s.cfg.FocusZoom)
		s.log.Info().Str("post_id", hint.PostID).Str("marker_id", m.ID).Msg("🎯 ディープリンクの投稿にフォーカス")
		return
	}
}

// ClickMarker はマーカークリックと同じく、そのマーカーの吹き出しを開く
func (s *MapSession) ClickMarker(markerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	for _, m := range s.markers {
		if m.ID == markerID {
			return s.controller.Open(m.Window.ID)
		}
	}
	return fmt.Errorf("%w: %s", ErrMarkerNotFound, markerID)
}

// CloseAllPopups は開いている吹き出しをすべて閉じる
func (s *MapSession) CloseAllPopups() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	s.controller.CloseAll()
	return nil
}

// Teardown は吹き出しを閉じ、マーカーとオーバーレイを消してセッションを閉じる
// 何度呼んでもよい。実行中の構築結果はこの後すべて破棄される
func (s *MapSession) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	s.pendingFocus = nil
	s.releaseLocked()
	s.log.Info().Msg("🧹 マップセッションを破棄")
}

// releaseLocked は吹き出し・オーバーレイ・マーカーをすべて解放する
func (s *MapSession) releaseLocked() {
	s.controller.Reset()
	s.surface.ClearClusterOverlay()
	s.surface.ClearMarkers()
	s.clusters = nil
	s.markers = nil
	s.unplaced = nil
}

// IsClosed は破棄済みかどうか
func (s *MapSession) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Markers は現在のマーカー（コピー）
func (s *MapSession) Markers() []*model.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.Marker(nil), s.markers...)
}

// Clusters は現在のクラスタ（コピー）
func (s *MapSession) Clusters() []*model.LocationCluster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*model.LocationCluster(nil), s.clusters...)
}

// Unplaced は地図に置けなかった投稿（コピー）
func (s *MapSession) Unplaced() []model.UnplacedPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.UnplacedPost(nil), s.unplaced...)
}

// Center は現在の地図の中心
func (s *MapSession) Center() model.LatLng {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.center
}
