package model

import "time"

// Post 目撃情報の投稿（写真・キャプション・自由入力の場所）
// 投稿フローで作成され、マップ側からは変更しない
type Post struct {
	ID               string            `json:"id"`
	Caption          string            `json:"caption"`
	ImageURL         string            `json:"image_url"`
	Geotag           string            `json:"geotag"`               // 自由入力の住所
	CreatedAt        *time.Time        `json:"created_at,omitempty"` // nilの場合は日付不明
	AuthorID         string            `json:"author_id"`
	Characterization *Characterization `json:"characterization,omitempty"` // 未解析の投稿ではnil
}

// HasCharacterization 生物の解析結果が付与されているか
func (p *Post) HasCharacterization() bool {
	return p.Characterization != nil
}

// Characterization 投稿画像に写っている生物の構造化された説明（外部で生成）
type Characterization struct {
	Species     string `json:"species" firestore:"Species"`
	Class       string `json:"class" firestore:"Class"`
	Diet        string `json:"diet" firestore:"Diet"`
	Rarity      int    `json:"rarity" firestore:"Rarity"`           // 1〜5
	ThreatLevel int    `json:"threat_level" firestore:"ThreatLevel"` // 1〜5
	FunFact     string `json:"fun_fact" firestore:"FunFact"`
	Description string `json:"description" firestore:"Description"`
}

// FirestorePost Firestoreのpostsコレクションのドキュメント
type FirestorePost struct {
	Caption          string            `firestore:"caption"`
	Geotag           string            `firestore:"geotag"`
	ImageURL         string            `firestore:"imageUrl"`
	CreatedAt        *time.Time        `firestore:"createdAt"`
	UserID           string            `firestore:"userId"`
	Characterization *Characterization `firestore:"characterization"`
}

// ToPost ドキュメントIDを付与してPostに変換
func (fp *FirestorePost) ToPost(id string) *Post {
	return &Post{
		ID:               id,
		Caption:          fp.Caption,
		ImageURL:         fp.ImageURL,
		Geotag:           fp.Geotag,
		CreatedAt:        fp.CreatedAt,
		AuthorID:         fp.UserID,
		Characterization: fp.Characterization,
	}
}
