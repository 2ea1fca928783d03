package helper

import (
	"strings"
	"time"

	"Critterly-App/internal/domain/model"
)

// ClampLevel はレア度・危険度を0〜MaxIndicatorLevelに収める
// 0以下は0、上限超えは上限として扱う
func ClampLevel(level int) int {
	switch {
	case level <= 0:
		return 0
	case level > model.MaxIndicatorLevel:
		return model.MaxIndicatorLevel
	default:
		return level
	}
}

// RepeatIcon はレベル分のアイコン文字列を返す
func RepeatIcon(icon string, level int) string {
	return strings.Repeat(icon, ClampLevel(level))
}

// RarityIcons はレア度を★の並びに変換する
func RarityIcons(rarity int) string {
	return RepeatIcon(model.RarityIcon, rarity)
}

// ThreatIcons は危険度を☠️の並びに変換する
func ThreatIcons(threatLevel int) string {
	return RepeatIcon(model.ThreatIcon, threatLevel)
}

// FormatPostDate は投稿日時をMM/DD/YYYYで返す。日時が無ければ"Date not available"
func FormatPostDate(createdAt *time.Time) string {
	if createdAt == nil || createdAt.IsZero() {
		return model.DateNotAvailable
	}
	return createdAt.Format(model.PostDateLayout)
}

// CaptionOrDefault は空のキャプションを"No caption"に置き換える
func CaptionOrDefault(caption string) string {
	if strings.TrimSpace(caption) == "" {
		return model.NoCaption
	}
	return caption
}

// ImageAlt は画像のaltテキスト（キャプションが無ければ既定文言）
func ImageAlt(caption string) string {
	if strings.TrimSpace(caption) == "" {
		return model.PostImageAlt
	}
	return caption
}

// FindClusterByPostID は投稿IDを含むクラスタを探す
func FindClusterByPostID(clusters []*model.LocationCluster, postID string) *model.LocationCluster {
	if postID == "" {
		return nil
	}
	for _, c := range clusters {
		if c.ContainsPost(postID) {
			return c
		}
	}
	return nil
}

// FilterUncharacterized は解析結果が未付与の投稿だけを返す
func FilterUncharacterized(posts []*model.Post) []*model.Post {
	var filtered []*model.Post
	for _, p := range posts {
		if p != nil && !p.HasCharacterization() {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
