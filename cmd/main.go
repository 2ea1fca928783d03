package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Critterly-App/internal/application"
	"Critterly-App/internal/config"
	"Critterly-App/internal/domain/service"
	"Critterly-App/internal/handler"
	"Critterly-App/internal/logging"
	"Critterly-App/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("設定の読み込みに失敗")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postsRepo, closePosts, err := application.NewPostsRepository(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("投稿リポジトリの初期化に失敗")
	}
	defer closePosts()

	geocoder, closeGeocoder, err := application.NewGeocoder(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("ジオコーダーの初期化に失敗")
	}
	defer closeGeocoder()

	mapUseCase := usecase.NewMapSessionUseCase(postsRepo, geocoder, usecase.MapSessionOptions{
		Session: service.SessionConfig{
			DefaultCenterAddress: cfg.DefaultCenterAddress,
			FallbackCenter:       cfg.FallbackCenter,
			DefaultZoom:          cfg.DefaultZoom,
			FocusZoom:            cfg.FocusZoom,
		},
		Cluster:            cfg.Cluster,
		GeocodeConcurrency: cfg.GeocodeConcurrency,
	})
	defer mapUseCase.Shutdown()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger())

	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handler.NewMapSessionHandler(mapUseCase).RegisterRoutes(r)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Info().
			Str("port", cfg.Port).
			Str("posts_backend", cfg.PostsBackend).
			Str("geocoder", cfg.GeocoderProvider).
			Msg("🚀 Critterly-App server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("サーバーの起動に失敗")
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("🛑 シャットダウン中...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("サーバーの停止に失敗")
	}
}
