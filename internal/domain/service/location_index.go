package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/logging"
	"Critterly-App/internal/metrics"
)

// DefaultGeocodeConcurrency ジオコーディングの同時実行数の既定値
const DefaultGeocodeConcurrency = 5

// LocationIndex は投稿の住所を座標に解決し、同じ座標キーの投稿をまとめる
type LocationIndex struct {
	geocoder    repository.Geocoder
	concurrency int
}

// NewLocationIndex は新しいLocationIndexを作成
// concurrencyが1なら1件ずつ順番に解決する
func NewLocationIndex(geocoder repository.Geocoder, concurrency int) *LocationIndex {
	if concurrency < 1 {
		concurrency = DefaultGeocodeConcurrency
	}
	return &LocationIndex{
		geocoder:    geocoder,
		concurrency: concurrency,
	}
}

// resolution 1投稿分の解決結果。元の投稿インデックスの位置に格納する
type resolution struct {
	coordinate model.LatLng
	err        error
	done       bool
}

// Build は全投稿を並行でジオコーディングし、座標キーごとのクラスタを返す
// 解決結果は元のインデックス順に並べ直してからグループ化するため、
// 完了順に関係なくクラスタ順・クラスタ内の投稿順は入力順（最初に現れた順）になる
func (li *LocationIndex) Build(ctx context.Context, posts []*model.Post) (*model.IndexResult, error) {
	result := &model.IndexResult{
		Clusters: []*model.LocationCluster{},
		Unplaced: []model.UnplacedPost{},
	}
	if len(posts) == 0 {
		return result, nil
	}

	logging.Debug().Int("posts", len(posts)).Int("concurrency", li.concurrency).Msg("🚀 投稿のジオコーディング開始")
	start := time.Now()

	resolutions := make([]resolution, len(posts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(li.concurrency)

	for i, post := range posts {
		if post == nil {
			continue
		}
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			coordinate, err := li.geocoder.Resolve(gctx, post.Geotag)
			if err == nil && !coordinate.IsValid() {
				err = &model.GeocodeError{Address: post.Geotag, Status: "INVALID_COORDINATE"}
			}
			resolutions[i] = resolution{coordinate: coordinate, err: err, done: true}
			// 個別の失敗はグループ全体を止めない
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clusterByKey := make(map[string]*model.LocationCluster)
	for i, post := range posts {
		if post == nil {
			continue
		}
		r := resolutions[i]
		if !r.done {
			continue
		}
		if r.err != nil {
			logging.Warn().Err(r.err).Str("post_id", post.ID).Str("geotag", post.Geotag).Msg("⚠️ 住所を座標に解決できなかったため投稿を地図から除外")
			result.Unplaced = append(result.Unplaced, model.UnplacedPost{
				PostID: post.ID,
				Geotag: post.Geotag,
				Reason: r.err.Error(),
			})
			continue
		}

		key := r.coordinate.Key()
		cluster, ok := clusterByKey[key]
		if !ok {
			cluster = &model.LocationCluster{Key: key, Coordinate: r.coordinate}
			clusterByKey[key] = cluster
			result.Clusters = append(result.Clusters, cluster)
		}
		cluster.Posts = append(cluster.Posts, post)
	}

	metrics.UnplacedPosts.Add(float64(len(result.Unplaced)))
	logging.Info().
		Int("posts", len(posts)).
		Int("clusters", len(result.Clusters)).
		Int("unplaced", len(result.Unplaced)).
		Dur("elapsed", time.Since(start)).
		Msg("✅ 投稿のグループ化完了")

	return result, nil
}
