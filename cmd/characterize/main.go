package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"Critterly-App/internal/application"
	"Critterly-App/internal/config"
	"Critterly-App/internal/infrastructure/ai"
	"Critterly-App/internal/logging"
)

var (
	concurrency int
	limit       int
	dryRun      bool
)

// 解析結果を持たない投稿にGeminiで生物の情報を付与するバッチ
var rootCmd = &cobra.Command{
	Use:           "characterize",
	Short:         "Backfill creature characterizations for posts",
	Long:          `Lists every post without a characterization, asks Gemini to describe the creature in its photo and writes the result back to the post.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCharacterize,
}

func init() {
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "c", application.DefaultBackfillConcurrency, "同時に解析する投稿数")
	rootCmd.Flags().IntVarP(&limit, "limit", "n", 0, "解析する投稿数の上限（0なら全件）")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "解析結果を書き戻さずにログ出力だけ行う")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logging.Error().Err(err).Msg("❌ バックフィルが中断されました")
		os.Exit(1)
	}
}

func runCharacterize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEYが設定されていません")
	}

	ctx := cmd.Context()
	postsRepo, closePosts, err := application.NewPostsRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closePosts()

	characterizer := ai.NewGeminiCharacterizationRepository(ai.NewGeminiClient(cfg.GeminiAPIKey))
	svc := application.NewCharacterizationService(postsRepo, characterizer)

	report, err := svc.Backfill(ctx, application.BackfillOptions{
		Concurrency: concurrency,
		Limit:       limit,
		DryRun:      dryRun,
	})
	if err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		logging.Warn().Strs("post_ids", report.Failed).Msg("⚠️ 一部の投稿は解析できませんでした")
	}
	return nil
}
