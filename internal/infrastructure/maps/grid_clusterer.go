package maps

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"

	"Critterly-App/internal/domain/model"
)

const (
	tileSize = 256.0
	// Webメルカトルの原点からの最大距離（メートル）
	mercatorHalfWorld = 20037508.342789244
)

// GridClusterer はグリッド方式でズームに応じて近いマーカーをまとめる
// LocationIndexの座標キーによるグループ化とは独立した表示上のクラスタリング
type GridClusterer struct {
	options model.ClusterOptions
}

func NewGridClusterer(options model.ClusterOptions) *GridClusterer {
	return &GridClusterer{options: options}
}

type gridCluster struct {
	center  orb.Point // ピクセル座標
	anchor  model.LatLng
	bound   orb.Bound
	markers []*model.Marker
}

// Cluster はズームレベルでのまとまりを返す
// minimumClusterSize未満のまとまりは個別マーカーとして表示されるため結果に含めない
func (g *GridClusterer) Cluster(markers []*model.Marker, zoom int) []model.VisualCluster {
	visual := []model.VisualCluster{}
	if zoom > g.options.MaxZoom || len(markers) == 0 {
		return visual
	}

	gridSize := float64(g.options.GridSize)
	var clusters []*gridCluster

	for _, m := range markers {
		point := toPixel(m.Position, zoom)

		var nearest *gridCluster
		nearestDistance := math.MaxFloat64
		for _, c := range clusters {
			if !c.bound.Contains(point) {
				continue
			}
			if d := planar.Distance(c.center, point); d < nearestDistance {
				nearestDistance = d
				nearest = c
			}
		}

		if nearest == nil {
			nearest = &gridCluster{
				center: point,
				anchor: m.Position,
				bound:  orb.Bound{Min: point, Max: point}.Pad(gridSize),
			}
			clusters = append(clusters, nearest)
		}
		nearest.markers = append(nearest.markers, m)
	}

	for _, c := range clusters {
		if len(c.markers) < g.options.MinimumClusterSize {
			continue
		}
		ids := make([]string, 0, len(c.markers))
		for _, m := range c.markers {
			ids = append(ids, m.ID)
		}
		visual = append(visual, model.VisualCluster{
			Center:    c.anchor,
			Count:     len(c.markers),
			MarkerIDs: ids,
		})
	}
	return visual
}

// toPixel は緯度経度をズームレベルでのワールドピクセル座標に変換する
func toPixel(position model.LatLng, zoom int) orb.Point {
	mercator := project.Point(orb.Point{position.Lng, position.Lat}, project.WGS84.ToMercator)
	worldSize := tileSize * math.Exp2(float64(zoom))
	return orb.Point{
		(mercator.X() + mercatorHalfWorld) / (2 * mercatorHalfWorld) * worldSize,
		(mercatorHalfWorld - mercator.Y()) / (2 * mercatorHalfWorld) * worldSize,
	}
}
