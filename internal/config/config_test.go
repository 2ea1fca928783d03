package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Critterly-App/internal/domain/model"
)

func TestFromEnv(t *testing.T) {
	t.Run("既定値で読み込める", func(t *testing.T) {
		t.Setenv("FIRESTORE_PROJECT_ID", "critterly-test")
		t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "firestore", cfg.PostsBackend)
		assert.Equal(t, "google", cfg.GeocoderProvider)
		assert.Equal(t, 5, cfg.GeocodeConcurrency)
		assert.Equal(t, model.DefaultCenterAddress, cfg.DefaultCenterAddress)
		assert.Equal(t, model.FallbackCenter, cfg.FallbackCenter)
		assert.Equal(t, model.DefaultClusterOptions(), cfg.Cluster)
		assert.Equal(t, 18, cfg.FocusZoom)
		assert.False(t, cfg.GeocodeBreaker)
	})

	t.Run("環境変数で上書きできる", func(t *testing.T) {
		t.Setenv("POSTS_BACKEND", "supabase")
		t.Setenv("SUPABASE_URL", "https://example.supabase.co")
		t.Setenv("SUPABASE_ANON_KEY", "anon")
		t.Setenv("GEOCODER_PROVIDER", "Nominatim")
		t.Setenv("GEOCODE_CONCURRENCY", "3")
		t.Setenv("GEOCODE_RATE_LIMIT", "1.5")
		t.Setenv("GEOCODE_BREAKER", "true")
		t.Setenv("CLUSTER_GRID_SIZE", "80")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, "supabase", cfg.PostsBackend)
		assert.Equal(t, "nominatim", cfg.GeocoderProvider)
		assert.Equal(t, 3, cfg.GeocodeConcurrency)
		assert.Equal(t, 1.5, cfg.GeocodeRateLimit)
		assert.True(t, cfg.GeocodeBreaker)
		assert.Equal(t, 80, cfg.Cluster.GridSize)
	})

	t.Run("GoogleにはAPIキーが必要", func(t *testing.T) {
		t.Setenv("FIRESTORE_PROJECT_ID", "critterly-test")
		t.Setenv("GOOGLE_MAPS_API_KEY", "")

		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("不正な数値はエラー", func(t *testing.T) {
		t.Setenv("FIRESTORE_PROJECT_ID", "critterly-test")
		t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
		t.Setenv("GEOCODE_CONCURRENCY", "many")

		_, err := FromEnv()
		assert.ErrorContains(t, err, "GEOCODE_CONCURRENCY")
	})

	t.Run("並列数0は検証エラー", func(t *testing.T) {
		t.Setenv("FIRESTORE_PROJECT_ID", "critterly-test")
		t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
		t.Setenv("GEOCODE_CONCURRENCY", "0")

		_, err := FromEnv()
		assert.Error(t, err)
	})

	t.Run("不明なバックエンドは検証エラー", func(t *testing.T) {
		t.Setenv("POSTS_BACKEND", "mongo")

		_, err := FromEnv()
		assert.Error(t, err)
	})
}
