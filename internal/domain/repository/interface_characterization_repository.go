package repository

import (
	"Critterly-App/internal/domain/model"
	"context"
)

// CharacterizationRepository 投稿画像から生物の構造化情報を生成する責務を持つリポジトリインターフェース
type CharacterizationRepository interface {
	// Characterize は画像URLの生物を解析してCharacterizationを返す
	Characterize(ctx context.Context, post *model.Post) (*model.Characterization, error)
}
