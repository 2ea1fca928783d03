package service

import (
	"fmt"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/logging"
	"Critterly-App/internal/metrics"
)

// ClusterRenderer はLocationClusterからマーカーと吹き出しを作り、描画面に配置する
type ClusterRenderer struct {
	options model.ClusterOptions
	nextID  int
}

// NewClusterRenderer は新しいClusterRendererを作成
func NewClusterRenderer(options model.ClusterOptions) *ClusterRenderer {
	return &ClusterRenderer{options: options}
}

// Options はオーバーレイに渡すクラスタリング設定を返す
func (r *ClusterRenderer) Options() model.ClusterOptions {
	return r.options
}

// Render はクラスタごとに1つのマーカーを配置し、全マーカーをクラスタリングのオーバーレイに渡す
// マーカーIDは描画ごとに連番で採番するため、再構築後も古いIDと衝突しない
func (r *ClusterRenderer) Render(clusters []*model.LocationCluster, surface MapSurface) ([]*model.Marker, error) {
	markers := make([]*model.Marker, 0, len(clusters))
	seen := make(map[string]struct{}, len(clusters))

	for _, cluster := range clusters {
		if cluster == nil || len(cluster.Posts) == 0 {
			continue
		}
		if _, dup := seen[cluster.Key]; dup {
			return nil, fmt.Errorf("座標キーが重複しています: %s", cluster.Key)
		}
		seen[cluster.Key] = struct{}{}

		content, err := RenderPopup(cluster)
		if err != nil {
			return nil, err
		}

		r.nextID++
		markerID := fmt.Sprintf("marker-%d", r.nextID)
		marker := &model.Marker{
			ID:       markerID,
			Key:      cluster.Key,
			Position: cluster.Coordinate,
			Cluster:  cluster,
			Window: &model.InfoWindow{
				ID:       fmt.Sprintf("window-%d", r.nextID),
				MarkerID: markerID,
				Content:  content,
				State:    model.InfoWindowClosed,
			},
		}

		if err := surface.PlaceMarker(marker); err != nil {
			return nil, fmt.Errorf("マーカー%sの配置に失敗: %w", markerID, err)
		}
		markers = append(markers, marker)
	}

	surface.SetClusterOverlay(markers, r.options)
	metrics.MarkersRendered.Observe(float64(len(markers)))
	logging.Debug().Int("markers", len(markers)).Msg("📍 マーカー配置完了")

	return markers, nil
}
