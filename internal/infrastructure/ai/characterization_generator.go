package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"Critterly-App/internal/domain/helper"
	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/logging"
)

const characterizationPrompt = `You are a wildlife identification assistant.
Identify the main organism in this photo and answer with a single JSON object with exactly these keys:
{"Species": string, "Class": string, "Diet": string, "Rarity": integer 1-5, "ThreatLevel": integer 1-5, "FunFact": string, "Description": string}
Rarity 1 means very common and 5 means extremely rare. ThreatLevel 1 means harmless and 5 means dangerous to humans.
The description must be at most two sentences. Caption from the user: %q`

// geminiCharacterizationRepository はGemini APIを使用してCharacterizationRepositoryを実装
type geminiCharacterizationRepository struct {
	client *GeminiClient
}

// NewGeminiCharacterizationRepository は新しいgeminiCharacterizationRepositoryインスタンスを作成
func NewGeminiCharacterizationRepository(client *GeminiClient) repository.CharacterizationRepository {
	return &geminiCharacterizationRepository{
		client: client,
	}
}

// Characterize は投稿画像を解析して生物の構造化情報を返す
func (g *geminiCharacterizationRepository) Characterize(ctx context.Context, post *model.Post) (*model.Characterization, error) {
	if post.ImageURL == "" {
		return nil, fmt.Errorf("投稿%sに画像がありません", post.ID)
	}

	image, err := g.client.FetchImage(ctx, post.ImageURL)
	if err != nil {
		return nil, err
	}

	logging.Debug().Str("post_id", post.ID).Msg("🤖 Gemini APIで生物を解析中...")

	content, err := g.client.GenerateContent(ctx, fmt.Sprintf(characterizationPrompt, post.Caption), image, true)
	if err != nil {
		return nil, fmt.Errorf("Gemini API呼び出しエラー: %w", err)
	}

	characterization, err := parseCharacterization(content)
	if err != nil {
		return nil, err
	}

	logging.Info().Str("post_id", post.ID).Str("species", characterization.Species).Msg("✅ 生物の解析完了")
	return characterization, nil
}

// parseCharacterization は生成されたJSONをCharacterizationに変換する
// コードブロックで囲まれた応答も受け付け、レベルは範囲内に丸める
func parseCharacterization(content string) (*model.Characterization, error) {
	text := strings.TrimSpace(content)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		text = text[start : end+1]
	}

	var raw struct {
		Species     string  `json:"Species"`
		Class       string  `json:"Class"`
		Diet        string  `json:"Diet"`
		Rarity      float64 `json:"Rarity"`
		ThreatLevel float64 `json:"ThreatLevel"`
		FunFact     string  `json:"FunFact"`
		Description string  `json:"Description"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("解析結果のパースに失敗: %w", err)
	}
	if strings.TrimSpace(raw.Species) == "" {
		return nil, fmt.Errorf("解析結果に種名が含まれていません")
	}

	return &model.Characterization{
		Species:     raw.Species,
		Class:       raw.Class,
		Diet:        raw.Diet,
		Rarity:      clampGenerated(raw.Rarity),
		ThreatLevel: clampGenerated(raw.ThreatLevel),
		FunFact:     raw.FunFact,
		Description: raw.Description,
	}, nil
}

// clampGenerated は生成されたレベルを1〜5の整数にする
func clampGenerated(level float64) int {
	n := helper.ClampLevel(int(level + 0.5))
	if n == 0 {
		return 1
	}
	return n
}
