package service

import (
	"bytes"
	"fmt"
	"html/template"

	"Critterly-App/internal/domain/helper"
	"Critterly-App/internal/domain/model"
)

const singlePostTemplate = `{{define "post"}}<div class="post-popup">
  <div class="post-header">
    <span class="post-avatar">👤</span>
    <div class="post-meta">
      <span class="post-author">{{.Author}}</span>
      <span class="post-date">{{.Date}}</span>
    </div>
  </div>
  {{- if .ImageURL}}
  <img class="post-image" src="{{.ImageURL}}" alt="{{.ImageAlt}}">
  {{- end}}
  <p class="post-caption">{{.Caption}}</p>
  {{- with .Characterization}}
  <div class="sighting-panel">
    <h3 class="sighting-species">{{.Species}}</h3>
    <div class="sighting-row"><span class="sighting-label">Class:</span> <span>{{.Class}}</span></div>
    <div class="sighting-row"><span class="sighting-label">Diet:</span> <span>{{.Diet}}</span></div>
    <div class="sighting-row"><span class="sighting-label">Rarity:</span> <span class="sighting-rarity">{{.RarityIcons}}</span></div>
    <div class="sighting-row"><span class="sighting-label">Threat Level:</span> <span class="sighting-threat">{{.ThreatIcons}}</span></div>
    <p class="sighting-description">{{.Description}}</p>
    <div class="sighting-fun-fact"><span class="sighting-label">Fun Fact:</span> {{.FunFact}}</div>
  </div>
  {{- end}}
</div>{{end}}`

const popupTemplate = `{{define "single"}}{{template "post" index .Posts 0}}{{end}}
{{define "multi"}}<div class="multi-post-popup" style="max-height: 400px; overflow-y: auto;">
  {{- range $i, $p := .Posts}}
  {{- if $i}}
  <hr class="post-divider">
  {{- end}}
  {{template "post" $p}}
  {{- end}}
</div>{{end}}`

var popupTemplates = template.Must(template.Must(template.New("popup").Parse(singlePostTemplate)).Parse(popupTemplate))

type characterizationView struct {
	Species     string
	Class       string
	Diet        string
	RarityIcons string
	ThreatIcons string
	Description string
	FunFact     string
}

type postView struct {
	Author           string
	Date             string
	ImageURL         string
	ImageAlt         string
	Caption          string
	Characterization *characterizationView
}

type popupView struct {
	Posts []postView
}

func newPostView(post *model.Post) postView {
	view := postView{
		Author:   model.AnonymousAuthorName,
		Date:     helper.FormatPostDate(post.CreatedAt),
		ImageURL: post.ImageURL,
		ImageAlt: helper.ImageAlt(post.Caption),
		Caption:  helper.CaptionOrDefault(post.Caption),
	}
	if c := post.Characterization; c != nil {
		view.Characterization = &characterizationView{
			Species:     c.Species,
			Class:       c.Class,
			Diet:        c.Diet,
			RarityIcons: helper.RarityIcons(c.Rarity),
			ThreatIcons: helper.ThreatIcons(c.ThreatLevel),
			Description: c.Description,
			FunFact:     c.FunFact,
		}
	}
	return view
}

// RenderPopup はクラスタの投稿数に応じて単一投稿／複数投稿のレイアウトで吹き出しHTMLを生成する
func RenderPopup(cluster *model.LocationCluster) (template.HTML, error) {
	if cluster == nil || len(cluster.Posts) == 0 {
		return "", fmt.Errorf("空のクラスタには吹き出しを作れません")
	}

	view := popupView{Posts: make([]postView, 0, len(cluster.Posts))}
	for _, p := range cluster.Posts {
		view.Posts = append(view.Posts, newPostView(p))
	}

	name := "single"
	if len(view.Posts) > 1 {
		name = "multi"
	}

	var buf bytes.Buffer
	if err := popupTemplates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", fmt.Errorf("吹き出しの描画に失敗 (key=%s): %w", cluster.Key, err)
	}
	// html/templateでエスケープ済み
	return template.HTML(buf.String()), nil
}
