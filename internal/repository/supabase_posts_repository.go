package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/infrastructure/database"
)

const postsTable = "posts"

type SupabasePostsRepository struct {
	client *database.SupabaseClient
}

func NewSupabasePostsRepository(client *database.SupabaseClient) repository.PostsRepository {
	return &SupabasePostsRepository{
		client: client,
	}
}

// postRow postsテーブルの行
type postRow struct {
	ID               string                  `json:"id"`
	Caption          string                  `json:"caption"`
	Geotag           string                  `json:"geotag"`
	ImageURL         string                  `json:"image_url"`
	CreatedAt        *time.Time              `json:"created_at"`
	UserID           string                  `json:"user_id"`
	Characterization *model.Characterization `json:"characterization"`
}

func (row *postRow) toPost() *model.Post {
	return &model.Post{
		ID:               row.ID,
		Caption:          row.Caption,
		ImageURL:         row.ImageURL,
		Geotag:           row.Geotag,
		CreatedAt:        row.CreatedAt,
		AuthorID:         row.UserID,
		Characterization: row.Characterization,
	}
}

func decodePostRows(data []byte) ([]*model.Post, error) {
	var rows []postRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("投稿データのJSONアンマーシャル失敗: %w", err)
	}
	posts := make([]*model.Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, rows[i].toPost())
	}
	return posts, nil
}

func (r *SupabasePostsRepository) ListPosts(ctx context.Context) ([]*model.Post, error) {
	data, _, err := r.client.GetClient().From(postsTable).Select("*", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得失敗: %w", err)
	}
	return decodePostRows(data)
}

func (r *SupabasePostsRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	data, _, err := r.client.GetClient().From(postsTable).Select("*", "exact", false).Eq("id", id).Execute()
	if err != nil {
		return nil, fmt.Errorf("投稿の取得失敗: %w", err)
	}

	posts, err := decodePostRows(data)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, fmt.Errorf("%w: %s", repository.ErrPostNotFound, id)
	}
	return posts[0], nil
}

func (r *SupabasePostsRepository) UpdateCharacterization(ctx context.Context, id string, characterization *model.Characterization) error {
	update := map[string]interface{}{"characterization": characterization}

	data, _, err := r.client.GetClient().From(postsTable).Update(update, "representation", "").Eq("id", id).Execute()
	if err != nil {
		return fmt.Errorf("解析結果の保存失敗: %w", err)
	}

	posts, err := decodePostRows(data)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return fmt.Errorf("%w: %s", repository.ErrPostNotFound, id)
	}
	return nil
}
