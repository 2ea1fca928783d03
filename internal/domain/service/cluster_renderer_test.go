package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Critterly-App/internal/domain/model"
)

func sampleClusters() []*model.LocationCluster {
	return []*model.LocationCluster{
		{Key: addr1.Key(), Coordinate: addr1, Posts: []*model.Post{{ID: "p1"}, {ID: "p2"}}},
		{Key: addr2.Key(), Coordinate: addr2, Posts: []*model.Post{{ID: "p3"}}},
	}
}

func TestClusterRendererRender(t *testing.T) {
	t.Run("クラスタごとに1つのマーカー", func(t *testing.T) {
		surface := newRecordingSurface()
		renderer := NewClusterRenderer(model.DefaultClusterOptions())

		markers, err := renderer.Render(sampleClusters(), surface)
		require.NoError(t, err)
		require.Len(t, markers, 2)

		assert.Equal(t, "marker-1", markers[0].ID)
		assert.Equal(t, "window-1", markers[0].Window.ID)
		assert.Equal(t, "marker-1", markers[0].Window.MarkerID)
		assert.Equal(t, addr1, markers[0].Position)
		assert.Equal(t, model.InfoWindowClosed, markers[0].Window.State)
		assert.Contains(t, string(markers[0].Window.Content), "post-divider")
		assert.NotContains(t, string(markers[1].Window.Content), "post-divider")

		assert.Equal(t, 2, surface.markerCount())
		assert.Len(t, surface.overlay, 2)
	})

	t.Run("再描画ではIDが続き番号になる", func(t *testing.T) {
		renderer := NewClusterRenderer(model.DefaultClusterOptions())
		_, err := renderer.Render(sampleClusters(), newRecordingSurface())
		require.NoError(t, err)

		markers, err := renderer.Render(sampleClusters(), newRecordingSurface())
		require.NoError(t, err)
		assert.Equal(t, "marker-3", markers[0].ID)
	})

	t.Run("空のクラスタはマーカーにしない", func(t *testing.T) {
		clusters := append(sampleClusters(), &model.LocationCluster{Key: "empty"})
		markers, err := NewClusterRenderer(model.DefaultClusterOptions()).Render(clusters, newRecordingSurface())
		require.NoError(t, err)
		assert.Len(t, markers, 2)
	})

	t.Run("クラスタ0件でもオーバーレイは設定される", func(t *testing.T) {
		surface := newRecordingSurface()
		markers, err := NewClusterRenderer(model.DefaultClusterOptions()).Render(nil, surface)
		require.NoError(t, err)
		assert.Empty(t, markers)
		assert.Equal(t, 0, surface.markerCount())
	})

	t.Run("キー重複はエラー", func(t *testing.T) {
		clusters := sampleClusters()
		clusters[1].Key = clusters[0].Key
		_, err := NewClusterRenderer(model.DefaultClusterOptions()).Render(clusters, newRecordingSurface())
		assert.Error(t, err)
	})

	t.Run("配置失敗はエラー", func(t *testing.T) {
		surface := newRecordingSurface()
		surface.placeErr = errSurfaceUnavailable
		_, err := NewClusterRenderer(model.DefaultClusterOptions()).Render(sampleClusters(), surface)
		assert.ErrorIs(t, err, errSurfaceUnavailable)
	})
}
