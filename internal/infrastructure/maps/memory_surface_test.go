package maps

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Critterly-App/internal/domain/model"
)

func TestMemorySurface(t *testing.T) {
	ctx := context.Background()

	t.Run("不正な中心では初期化に失敗", func(t *testing.T) {
		s := NewMemorySurface()
		assert.Error(t, s.Init(ctx, model.LatLng{Lat: 100, Lng: 0}, 15))
		assert.Error(t, s.Init(ctx, model.FallbackCenter, 30))
	})

	t.Run("初期化前は配置できない", func(t *testing.T) {
		s := NewMemorySurface()
		err := s.PlaceMarker(&model.Marker{ID: "marker-1"})
		assert.ErrorIs(t, err, ErrSurfaceNotInitialized)
	})

	t.Run("配置・クリック・消去", func(t *testing.T) {
		s := NewMemorySurface()
		require.NoError(t, s.Init(ctx, model.FallbackCenter, 15))
		assert.Equal(t, model.FallbackCenter, s.Center())
		assert.Equal(t, 15, s.Zoom())

		markers := markersAt(model.LatLng{Lat: 42.0565, Lng: -87.6753}, model.LatLng{Lat: 42.0570, Lng: -87.6760})
		for _, m := range markers {
			require.NoError(t, s.PlaceMarker(m))
		}
		assert.ErrorIs(t, s.PlaceMarker(markers[0]), ErrDuplicateMarker)

		clicked := ""
		s.OnMarkerClick("marker-2", func() {
			clicked = "marker-2"
			s.OpenPopup("window-2")
		})
		require.NoError(t, s.Click("marker-2"))
		assert.Equal(t, "marker-2", clicked)
		assert.True(t, s.IsPopupOpen("window-2"))
		assert.Error(t, s.Click("marker-9"))

		s.SetClusterOverlay(markers, model.DefaultClusterOptions())
		assert.Len(t, s.VisualClusters(12), 1)
		s.SetZoom(model.DefaultClusterMaxZoom + 1)
		assert.Empty(t, s.VisualClusters(-1), "maxZoomを超えたズームではまとめない")

		s.ClearClusterOverlay()
		s.ClearMarkers()
		assert.Empty(t, s.Markers())
		assert.Empty(t, s.VisualClusters(12))
		assert.Equal(t, 0, s.OpenPopupCount())
	})
}
