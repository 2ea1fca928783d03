package application

import (
	"context"
	"fmt"

	"Critterly-App/internal/config"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/infrastructure/database"
	"Critterly-App/internal/infrastructure/firestore"
	"Critterly-App/internal/infrastructure/maps"
	"Critterly-App/internal/logging"
	repoImpl "Critterly-App/internal/repository"
)

// CleanupFunc 初期化したクライアントを閉じる
type CleanupFunc func()

// NewPostsRepository POSTS_BACKENDに応じて投稿リポジトリを作る
func NewPostsRepository(ctx context.Context, cfg *config.Config) (repository.PostsRepository, CleanupFunc, error) {
	switch cfg.PostsBackend {
	case "supabase":
		client, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return nil, nil, err
		}
		return repoImpl.NewSupabasePostsRepository(client), func() {}, nil
	case "firestore":
		client, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return repoImpl.NewFirestorePostsRepository(client.GetClient()), func() {
			if err := client.Close(); err != nil {
				logging.Warn().Err(err).Msg("Firestoreクライアントのクローズに失敗")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("未対応のPOSTS_BACKENDです: %s", cfg.PostsBackend)
	}
}

// NewGeocoder プロバイダを選び、レート制限・ブレーカー・キャッシュを設定に応じて重ねる
func NewGeocoder(ctx context.Context, cfg *config.Config) (repository.Geocoder, CleanupFunc, error) {
	var base repository.Geocoder
	switch cfg.GeocoderProvider {
	case "nominatim":
		base = maps.NewNominatimGeocodingClient(cfg.NominatimUserAgent)
	case "google":
		base = maps.NewGoogleGeocodingClient(cfg.GoogleMapsAPIKey)
	default:
		return nil, nil, fmt.Errorf("未対応のGEOCODER_PROVIDERです: %s", cfg.GeocoderProvider)
	}

	geocoder := maps.NewResilientGeocoder(base, maps.ResilienceOptions{
		RatePerSecond: cfg.GeocodeRateLimit,
		Breaker:       cfg.GeocodeBreaker,
		Name:          cfg.GeocoderProvider,
	})

	if cfg.GeocodeCacheDSN == "" {
		return geocoder, func() {}, nil
	}

	pg, err := database.NewPostgreSQLClient(ctx, cfg.GeocodeCacheDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.EnsureGeocodeCacheSchema(ctx); err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	logging.Info().Msg("✅ ジオコードキャッシュ（PostgreSQL）を有効化")

	cached := maps.NewCachingGeocoder(geocoder, repoImpl.NewPostgresGeocodeCacheRepository(pg))
	return cached, func() { _ = pg.Close() }, nil
}
