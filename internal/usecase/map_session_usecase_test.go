package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/domain/service"
)

type fakePostsRepo struct {
	mu       sync.Mutex
	posts    []*model.Post
	err      error
	getCalls []string
}

func (f *fakePostsRepo) ListPosts(ctx context.Context) ([]*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]*model.Post(nil), f.posts...), nil
}

func (f *fakePostsRepo) GetByID(ctx context.Context, id string) (*model.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, id)
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrPostNotFound, id)
}

func (f *fakePostsRepo) UpdateCharacterization(ctx context.Context, id string, c *model.Characterization) error {
	return errors.New("not implemented")
}

type tableGeocoder map[string]model.LatLng

func (g tableGeocoder) Resolve(ctx context.Context, address string) (model.LatLng, error) {
	c, ok := g[address]
	if !ok {
		return model.LatLng{}, &model.GeocodeError{Address: address, Status: "ZERO_RESULTS"}
	}
	return c, nil
}

func newTestUseCase(posts []*model.Post) (MapSessionUseCase, *fakePostsRepo) {
	repo := &fakePostsRepo{posts: posts}
	geocoder := tableGeocoder{
		"Addr1":                    {Lat: 42.05, Lng: -87.67},
		"Addr2":                    {Lat: 42.06, Lng: -87.68},
		model.DefaultCenterAddress: {Lat: 42.0514, Lng: -87.6753},
	}
	uc := NewMapSessionUseCase(repo, geocoder, MapSessionOptions{
		Session:            service.DefaultSessionConfig(),
		Cluster:            model.DefaultClusterOptions(),
		GeocodeConcurrency: 2,
	})
	return uc, repo
}

func samplePosts() []*model.Post {
	return []*model.Post{
		{ID: "p1", Geotag: "Addr1", Caption: "first"},
		{ID: "p2", Geotag: "Addr1", Caption: "second"},
		{ID: "p3", Geotag: "Addr2", Caption: "third"},
		{ID: "p4", Geotag: "BadAddr"},
	}
}

func TestMapSessionUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("セッション作成とスナップショット", func(t *testing.T) {
		uc, _ := newTestUseCase(samplePosts())

		snap, err := uc.CreateSession(ctx, nil)
		require.NoError(t, err)

		assert.NotEmpty(t, snap.SessionID)
		assert.Equal(t, model.DefaultZoom, snap.Zoom)
		require.Len(t, snap.Markers, 2)
		assert.Equal(t, []string{"p1", "p2"}, snap.Markers[0].PostIDs)
		assert.Contains(t, snap.Markers[0].PopupHTML, "post-divider")
		assert.Equal(t, 1, snap.UnplacedCount)
		assert.Equal(t, []string{"p4"}, snap.UnplacedPostIDs)
		assert.Equal(t, "1 post could not be placed on the map", snap.Notice)
		assert.Empty(t, snap.OpenWindowID)

		zoom := 10
		low, err := uc.GetSnapshot(ctx, snap.SessionID, &zoom)
		require.NoError(t, err)
		require.Len(t, low.VisualClusters, 1)
		assert.Equal(t, 2, low.VisualClusters[0].Count)
	})

	t.Run("ディープリンクで吹き出しが開く", func(t *testing.T) {
		uc, repo := newTestUseCase(samplePosts())

		snap, err := uc.CreateSession(ctx, &model.FocusHint{PostID: "p3", Address: "Addr2"})
		require.NoError(t, err)

		assert.Equal(t, model.FocusZoom, snap.Zoom)
		assert.Equal(t, model.LatLng{Lat: 42.06, Lng: -87.68}, snap.Center)
		open := 0
		for _, m := range snap.Markers {
			if m.Open {
				open++
				assert.Equal(t, []string{"p3"}, m.PostIDs)
				assert.Equal(t, m.WindowID, snap.OpenWindowID)
			}
		}
		assert.Equal(t, 1, open)
		assert.Equal(t, []string{"p3"}, repo.getCalls)
	})

	t.Run("存在しない投稿のディープリンクは住所だけ使う", func(t *testing.T) {
		uc, repo := newTestUseCase(samplePosts())

		snap, err := uc.CreateSession(ctx, &model.FocusHint{PostID: "deleted-post", Address: "Addr2"})
		require.NoError(t, err)

		assert.Equal(t, []string{"deleted-post"}, repo.getCalls)
		assert.Empty(t, snap.OpenWindowID)
		assert.Equal(t, model.DefaultZoom, snap.Zoom)
		assert.Equal(t, model.LatLng{Lat: 42.06, Lng: -87.68}, snap.Center)
		assert.Len(t, snap.Markers, 2)
	})

	t.Run("クリックと全閉じ", func(t *testing.T) {
		uc, _ := newTestUseCase(samplePosts())
		snap, err := uc.CreateSession(ctx, nil)
		require.NoError(t, err)

		clicked, err := uc.ClickMarker(ctx, snap.SessionID, snap.Markers[1].ID)
		require.NoError(t, err)
		assert.Equal(t, snap.Markers[1].WindowID, clicked.OpenWindowID)

		_, err = uc.ClickMarker(ctx, snap.SessionID, "marker-404")
		assert.ErrorIs(t, err, service.ErrMarkerNotFound)

		closed, err := uc.ClosePopups(ctx, snap.SessionID)
		require.NoError(t, err)
		assert.Empty(t, closed.OpenWindowID)
	})

	t.Run("投稿の変更で再構築", func(t *testing.T) {
		uc, repo := newTestUseCase(samplePosts())
		snap, err := uc.CreateSession(ctx, nil)
		require.NoError(t, err)

		repo.mu.Lock()
		repo.posts = []*model.Post{{ID: "p9", Geotag: "Addr2"}}
		repo.mu.Unlock()

		refreshed, err := uc.Refresh(ctx, snap.SessionID)
		require.NoError(t, err)
		require.Len(t, refreshed.Markers, 1)
		assert.Equal(t, []string{"p9"}, refreshed.Markers[0].PostIDs)
		assert.Equal(t, 0, refreshed.UnplacedCount)
		assert.Empty(t, refreshed.Notice)
	})

	t.Run("削除後は見つからない", func(t *testing.T) {
		uc, _ := newTestUseCase(samplePosts())
		snap, err := uc.CreateSession(ctx, nil)
		require.NoError(t, err)

		require.NoError(t, uc.DeleteSession(ctx, snap.SessionID))
		_, err = uc.GetSnapshot(ctx, snap.SessionID, nil)
		assert.ErrorIs(t, err, ErrSessionNotFound)
		assert.ErrorIs(t, uc.DeleteSession(ctx, snap.SessionID), ErrSessionNotFound)
	})

	t.Run("不正なズーム", func(t *testing.T) {
		uc, _ := newTestUseCase(samplePosts())
		snap, err := uc.CreateSession(ctx, nil)
		require.NoError(t, err)

		zoom := 30
		_, err = uc.GetSnapshot(ctx, snap.SessionID, &zoom)
		assert.ErrorIs(t, err, ErrInvalidZoom)
	})

	t.Run("投稿の取得失敗", func(t *testing.T) {
		uc, repo := newTestUseCase(nil)
		repo.err = errors.New("firestore unavailable")

		_, err := uc.CreateSession(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("Shutdownで全セッション破棄", func(t *testing.T) {
		uc, _ := newTestUseCase(samplePosts())
		snap, err := uc.CreateSession(ctx, nil)
		require.NoError(t, err)

		uc.Shutdown()
		_, err = uc.GetSnapshot(ctx, snap.SessionID, nil)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}
