package repository

import (
	"context"
	"errors"

	"Critterly-App/internal/domain/model"
)

// ErrPostNotFound 指定IDの投稿が存在しない
var ErrPostNotFound = errors.New("post not found")

// PostsRepository 投稿を保持するドキュメントストア
type PostsRepository interface {
	ListPosts(ctx context.Context) ([]*model.Post, error)
	GetByID(ctx context.Context, id string) (*model.Post, error)
	// 生物解析の結果を投稿に書き戻す（cmd/characterizeから使用）
	UpdateCharacterization(ctx context.Context, id string, characterization *model.Characterization) error
}
