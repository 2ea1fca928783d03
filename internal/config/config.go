package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/logging"
)

// Config アプリケーション設定（環境変数・.envから読み込む）
type Config struct {
	Port string `validate:"required"`

	PostsBackend             string `validate:"oneof=firestore supabase"`
	FirestoreProjectID       string `validate:"required_if=PostsBackend firestore"`
	FirestoreCredentialsFile string // 空ならADC（Application Default Credentials）
	SupabaseURL              string `validate:"required_if=PostsBackend supabase"`
	SupabaseAnonKey          string `validate:"required_if=PostsBackend supabase"`

	GeocoderProvider   string  `validate:"oneof=google nominatim"`
	GoogleMapsAPIKey   string  `validate:"required_if=GeocoderProvider google"`
	NominatimUserAgent string
	GeocodeConcurrency int     `validate:"min=1,max=32"`
	GeocodeRateLimit   float64 `validate:"gte=0"` // 1秒あたりのリクエスト数。0なら無制限
	GeocodeBreaker     bool
	GeocodeCacheDSN    string // 空ならキャッシュなし

	DefaultCenterAddress string       `validate:"required"`
	FallbackCenter       model.LatLng `validate:"-"`
	DefaultZoom          int          `validate:"min=0,max=22"`
	FocusZoom            int          `validate:"min=0,max=22"`
	Cluster              model.ClusterOptions

	GeminiAPIKey string

	LogLevel  string
	LogFormat string
}

// Load .envと環境変数から設定を読み込んで検証する
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug().Msg(".envファイルが見つかりません。システムの環境変数を使用します")
	}
	return FromEnv()
}

// FromEnv 環境変数だけから設定を組み立てる
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                     getEnv("PORT", "8080"),
		PostsBackend:             strings.ToLower(getEnv("POSTS_BACKEND", "firestore")),
		FirestoreProjectID:       os.Getenv("FIRESTORE_PROJECT_ID"),
		FirestoreCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		SupabaseURL:              os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:          os.Getenv("SUPABASE_ANON_KEY"),
		GeocoderProvider:         strings.ToLower(getEnv("GEOCODER_PROVIDER", "google")),
		GoogleMapsAPIKey:         os.Getenv("GOOGLE_MAPS_API_KEY"),
		NominatimUserAgent:       os.Getenv("NOMINATIM_USER_AGENT"),
		GeocodeCacheDSN:          os.Getenv("GEOCODE_CACHE_DSN"),
		DefaultCenterAddress:     getEnv("DEFAULT_CENTER_ADDRESS", model.DefaultCenterAddress),
		GeminiAPIKey:             os.Getenv("GEMINI_API_KEY"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.GeocodeConcurrency, err = getInt("GEOCODE_CONCURRENCY", 5); err != nil {
		return nil, err
	}
	if cfg.GeocodeRateLimit, err = getFloat("GEOCODE_RATE_LIMIT", 0); err != nil {
		return nil, err
	}
	if cfg.GeocodeBreaker, err = getBool("GEOCODE_BREAKER", false); err != nil {
		return nil, err
	}
	if cfg.FallbackCenter.Lat, err = getFloat("FALLBACK_CENTER_LAT", model.FallbackCenter.Lat); err != nil {
		return nil, err
	}
	if cfg.FallbackCenter.Lng, err = getFloat("FALLBACK_CENTER_LNG", model.FallbackCenter.Lng); err != nil {
		return nil, err
	}
	if cfg.DefaultZoom, err = getInt("DEFAULT_ZOOM", model.DefaultZoom); err != nil {
		return nil, err
	}
	if cfg.FocusZoom, err = getInt("FOCUS_ZOOM", model.FocusZoom); err != nil {
		return nil, err
	}
	if cfg.Cluster.MaxZoom, err = getInt("CLUSTER_MAX_ZOOM", model.DefaultClusterMaxZoom); err != nil {
		return nil, err
	}
	if cfg.Cluster.GridSize, err = getInt("CLUSTER_GRID_SIZE", model.DefaultClusterGridSize); err != nil {
		return nil, err
	}
	if cfg.Cluster.MinimumClusterSize, err = getInt("CLUSTER_MIN_SIZE", model.DefaultMinimumClusterSize); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 設定値の検証
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("設定の検証に失敗: %w", err)
	}
	if !c.FallbackCenter.IsValid() {
		return fmt.Errorf("設定の検証に失敗: フォールバック座標が不正です (%f, %f)", c.FallbackCenter.Lat, c.FallbackCenter.Lng)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%sは整数で指定してください: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%sは数値で指定してください: %w", key, err)
	}
	return f, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%sはtrue/falseで指定してください: %w", key, err)
	}
	return b, nil
}
