package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/logging"
)

const postsCollection = "posts"

// FirestorePostsRepository Firestoreのpostsコレクションを読むリポジトリ
type FirestorePostsRepository struct {
	client *firestore.Client
}

// NewFirestorePostsRepository 新しいFirestorePostsRepositoryインスタンスを作成
func NewFirestorePostsRepository(client *firestore.Client) repository.PostsRepository {
	return &FirestorePostsRepository{
		client: client,
	}
}

// ListPosts は全投稿を取得する。変換できないドキュメントはログに出してスキップ
func (r *FirestorePostsRepository) ListPosts(ctx context.Context) ([]*model.Post, error) {
	iter := r.client.Collection(postsCollection).Documents(ctx)
	defer iter.Stop()

	var posts []*model.Post
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("投稿一覧の取得に失敗しました: %w", err)
		}

		var data model.FirestorePost
		if err := doc.DataTo(&data); err != nil {
			logging.Warn().Err(err).Str("post_id", doc.Ref.ID).Msg("⚠️ 投稿ドキュメントの変換に失敗したためスキップ")
			continue
		}
		posts = append(posts, data.ToPost(doc.Ref.ID))
	}

	logging.Debug().Int("count", len(posts)).Msg("📚 Firestoreから投稿を取得")
	return posts, nil
}

// GetByID は指定IDの投稿を取得する
func (r *FirestorePostsRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	doc, err := r.client.Collection(postsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", repository.ErrPostNotFound, id)
		}
		return nil, fmt.Errorf("投稿の取得に失敗しました: %w", err)
	}

	var data model.FirestorePost
	if err := doc.DataTo(&data); err != nil {
		return nil, fmt.Errorf("データの変換に失敗しました: %w", err)
	}
	return data.ToPost(doc.Ref.ID), nil
}

// UpdateCharacterization は解析結果を投稿ドキュメントに書き込む
func (r *FirestorePostsRepository) UpdateCharacterization(ctx context.Context, id string, characterization *model.Characterization) error {
	_, err := r.client.Collection(postsCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "characterization", Value: characterization},
	})
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", repository.ErrPostNotFound, id)
		}
		return fmt.Errorf("解析結果の保存に失敗しました: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
