package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/domain/service"
	"Critterly-App/internal/infrastructure/maps"
	"Critterly-App/internal/logging"
	"Critterly-App/internal/metrics"
)

var (
	// ErrSessionNotFound は存在しない（または破棄済みの）セッションID
	ErrSessionNotFound = errors.New("map session not found")
	// ErrInvalidZoom はスナップショットに指定されたズームが範囲外
	ErrInvalidZoom = errors.New("zoom must be between 0 and 22")
)

type MapSessionUseCase interface {
	// CreateSession は投稿を読み込んでマップセッションをマウントする。hintはディープリンクのフォーカス指定
	CreateSession(ctx context.Context, hint *model.FocusHint) (*model.MapSnapshot, error)
	// GetSnapshot はセッションの現在の表示状態を返す。zoomがnilなら現在のズームでクラスタリング
	GetSnapshot(ctx context.Context, sessionID string, zoom *int) (*model.MapSnapshot, error)
	// Refresh は投稿を読み直してマーカーを再構築する
	Refresh(ctx context.Context, sessionID string) (*model.MapSnapshot, error)
	ClickMarker(ctx context.Context, sessionID, markerID string) (*model.MapSnapshot, error)
	ClosePopups(ctx context.Context, sessionID string) (*model.MapSnapshot, error)
	DeleteSession(ctx context.Context, sessionID string) error
	// Shutdown は全セッションを破棄する
	Shutdown()
}

// MapSessionOptions セッション生成時の設定
type MapSessionOptions struct {
	Session            service.SessionConfig
	Cluster            model.ClusterOptions
	GeocodeConcurrency int
}

type sessionEntry struct {
	session *service.MapSession
	surface *maps.MemorySurface
}

// mapSessionUseCaseImpl はMapSessionUseCaseの実装
type mapSessionUseCaseImpl struct {
	postsRepo repository.PostsRepository
	geocoder  repository.Geocoder
	opts      MapSessionOptions

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewMapSessionUseCase は新しいMapSessionUseCaseインスタンスを作成
func NewMapSessionUseCase(postsRepo repository.PostsRepository, geocoder repository.Geocoder, opts MapSessionOptions) MapSessionUseCase {
	return &mapSessionUseCaseImpl{
		postsRepo: postsRepo,
		geocoder:  geocoder,
		opts:      opts,
		sessions:  make(map[string]*sessionEntry),
	}
}

func (u *mapSessionUseCaseImpl) CreateSession(ctx context.Context, hint *model.FocusHint) (*model.MapSnapshot, error) {
	posts, err := u.postsRepo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗: %w", err)
	}

	hint = u.checkFocusTarget(ctx, hint)

	id := uuid.New().String()
	surface := maps.NewMemorySurface()
	session := service.NewMapSession(
		id,
		u.geocoder,
		service.NewLocationIndex(u.geocoder, u.opts.GeocodeConcurrency),
		service.NewClusterRenderer(u.opts.Cluster),
		surface,
		u.opts.Session,
	)

	if err := session.Mount(ctx, posts, hint); err != nil {
		session.Teardown()
		return nil, fmt.Errorf("マップセッションのマウントに失敗: %w", err)
	}

	entry := &sessionEntry{session: session, surface: surface}
	u.mu.Lock()
	u.sessions[id] = entry
	u.mu.Unlock()
	metrics.MapSessionsActive.Inc()

	logging.Info().Str("session_id", id).Int("posts", len(posts)).Msg("✅ マップセッション作成")
	return u.snapshot(entry, nil)
}

// checkFocusTarget はディープリンクの投稿が存在するか確認する
// 存在しなければフォーカス指定だけを外し、住所による中心指定は残す
func (u *mapSessionUseCaseImpl) checkFocusTarget(ctx context.Context, hint *model.FocusHint) *model.FocusHint {
	if hint == nil || hint.PostID == "" {
		return hint
	}

	if _, err := u.postsRepo.GetByID(ctx, hint.PostID); err != nil {
		if !errors.Is(err, repository.ErrPostNotFound) {
			logging.Warn().Err(err).Str("post_id", hint.PostID).Msg("⚠️ フォーカス対象の投稿を確認できませんでした")
			return hint
		}
		logging.Warn().Str("post_id", hint.PostID).Msg("⚠️ ディープリンクの投稿が存在しないためフォーカスしません")
		return &model.FocusHint{Address: hint.Address}
	}
	return hint
}

func (u *mapSessionUseCaseImpl) lookup(sessionID string) (*sessionEntry, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	entry, ok := u.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return entry, nil
}

func (u *mapSessionUseCaseImpl) GetSnapshot(ctx context.Context, sessionID string, zoom *int) (*model.MapSnapshot, error) {
	entry, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if zoom != nil && (*zoom < 0 || *zoom > 22) {
		return nil, ErrInvalidZoom
	}
	return u.snapshot(entry, zoom)
}

func (u *mapSessionUseCaseImpl) Refresh(ctx context.Context, sessionID string) (*model.MapSnapshot, error) {
	entry, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	posts, err := u.postsRepo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得に失敗: %w", err)
	}
	if err := entry.session.Rebuild(ctx, posts); err != nil {
		return nil, err
	}
	return u.snapshot(entry, nil)
}

func (u *mapSessionUseCaseImpl) ClickMarker(ctx context.Context, sessionID, markerID string) (*model.MapSnapshot, error) {
	entry, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := entry.session.ClickMarker(markerID); err != nil {
		return nil, err
	}
	return u.snapshot(entry, nil)
}

func (u *mapSessionUseCaseImpl) ClosePopups(ctx context.Context, sessionID string) (*model.MapSnapshot, error) {
	entry, err := u.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if err := entry.session.CloseAllPopups(); err != nil {
		return nil, err
	}
	return u.snapshot(entry, nil)
}

func (u *mapSessionUseCaseImpl) DeleteSession(ctx context.Context, sessionID string) error {
	u.mu.Lock()
	entry, ok := u.sessions[sessionID]
	delete(u.sessions, sessionID)
	u.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	entry.session.Teardown()
	metrics.MapSessionsActive.Dec()
	return nil
}

func (u *mapSessionUseCaseImpl) Shutdown() {
	u.mu.Lock()
	entries := u.sessions
	u.sessions = make(map[string]*sessionEntry)
	u.mu.Unlock()

	for _, entry := range entries {
		entry.session.Teardown()
		metrics.MapSessionsActive.Dec()
	}
	logging.Info().Int("sessions", len(entries)).Msg("🧹 全マップセッションを破棄")
}

// snapshot はセッションと描画面の状態からスナップショットを組み立てる
func (u *mapSessionUseCaseImpl) snapshot(entry *sessionEntry, zoom *int) (*model.MapSnapshot, error) {
	if entry.session.IsClosed() {
		return nil, service.ErrSessionClosed
	}

	controller := entry.session.Controller()
	markers := entry.session.Markers()
	views := make([]model.MarkerView, 0, len(markers))
	for _, m := range markers {
		views = append(views, model.MarkerView{
			ID:        m.ID,
			Key:       m.Key,
			Position:  m.Position,
			PostIDs:   m.Cluster.PostIDs(),
			WindowID:  m.Window.ID,
			PopupHTML: string(m.Window.Content),
			Open:      controller.IsOpen(m.Window.ID),
		})
	}

	clusterZoom := -1
	if zoom != nil {
		clusterZoom = *zoom
	}

	unplaced := entry.session.Unplaced()
	unplacedIDs := make([]string, 0, len(unplaced))
	for _, p := range unplaced {
		unplacedIDs = append(unplacedIDs, p.PostID)
	}

	return &model.MapSnapshot{
		SessionID:       entry.session.ID(),
		Center:          entry.surface.Center(),
		Zoom:            entry.surface.Zoom(),
		Markers:         views,
		VisualClusters:  entry.surface.VisualClusters(clusterZoom),
		OpenWindowID:    controller.OpenWindowID(),
		UnplacedCount:   len(unplaced),
		UnplacedPostIDs: unplacedIDs,
		Notice:          model.UnplacedNotice(len(unplaced)),
	}, nil
}
