package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"Critterly-App/internal/domain/helper"
	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/logging"
)

// DefaultBackfillConcurrency 生物解析を同時に走らせる上限
const DefaultBackfillConcurrency = 3

// BackfillOptions 解析バックフィルの実行オプション
type BackfillOptions struct {
	Concurrency int
	Limit       int  // 0なら全件
	DryRun      bool // trueなら解析結果を書き戻さない
}

// BackfillReport バックフィルの実行結果
type BackfillReport struct {
	Candidates int
	Updated    int
	Failed     []string // 解析または書き戻しに失敗した投稿ID
}

// CharacterizationService 未解析の投稿に生物の解析結果を付与するサービス
type CharacterizationService interface {
	// Backfill 解析結果を持たない投稿をまとめて解析し、投稿に書き戻す
	Backfill(ctx context.Context, opts BackfillOptions) (*BackfillReport, error)
}

type characterizationServiceImpl struct {
	postsRepo     repository.PostsRepository
	characterizer repository.CharacterizationRepository
}

// NewCharacterizationService CharacterizationServiceの新しいインスタンスを作成
func NewCharacterizationService(postsRepo repository.PostsRepository, characterizer repository.CharacterizationRepository) CharacterizationService {
	return &characterizationServiceImpl{
		postsRepo:     postsRepo,
		characterizer: characterizer,
	}
}

func (s *characterizationServiceImpl) Backfill(ctx context.Context, opts BackfillOptions) (*BackfillReport, error) {
	if err := validateBackfillOptions(&opts); err != nil {
		return nil, fmt.Errorf("オプションの検証失敗: %w", err)
	}

	posts, err := s.postsRepo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("投稿の取得失敗: %w", err)
	}

	targets := helper.FilterUncharacterized(posts)
	if opts.Limit > 0 && len(targets) > opts.Limit {
		targets = targets[:opts.Limit]
	}
	report := &BackfillReport{Candidates: len(targets)}
	logging.Info().Int("total", len(posts)).Int("candidates", len(targets)).Bool("dry_run", opts.DryRun).Msg("🔬 生物解析のバックフィルを開始")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)

	for _, post := range targets {
		g.Go(func() error {
			err := s.characterizeOne(gctx, post, opts.DryRun)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				logging.Warn().Err(err).Str("post_id", post.ID).Msg("⚠️ 投稿の解析に失敗")
				report.Failed = append(report.Failed, post.ID)
				return nil
			}
			report.Updated++
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	logging.Info().Int("updated", report.Updated).Int("failed", len(report.Failed)).Msg("✅ 生物解析のバックフィル完了")
	return report, nil
}

func (s *characterizationServiceImpl) characterizeOne(ctx context.Context, post *model.Post, dryRun bool) error {
	characterization, err := s.characterizer.Characterize(ctx, post)
	if err != nil {
		return err
	}

	if dryRun {
		logging.Info().Str("post_id", post.ID).Str("species", characterization.Species).Msg("📝 [dry-run] 解析結果")
		return nil
	}
	return s.postsRepo.UpdateCharacterization(ctx, post.ID, characterization)
}

func validateBackfillOptions(opts *BackfillOptions) error {
	if opts.Concurrency == 0 {
		opts.Concurrency = DefaultBackfillConcurrency
	}
	if opts.Concurrency < 0 {
		return fmt.Errorf("並列数は1以上である必要があります: %d", opts.Concurrency)
	}
	if opts.Limit < 0 {
		return fmt.Errorf("件数上限は0以上である必要があります: %d", opts.Limit)
	}
	return nil
}
