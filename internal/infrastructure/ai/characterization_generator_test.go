package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Critterly-App/internal/domain/model"
)

func TestParseCharacterization(t *testing.T) {
	t.Run("JSONをそのままパース", func(t *testing.T) {
		c, err := parseCharacterization(`{"Species":"Eastern gray squirrel","Class":"Mammalia","Diet":"Herbivore","Rarity":1,"ThreatLevel":1,"FunFact":"They plant trees.","Description":"A gray squirrel."}`)
		require.NoError(t, err)
		assert.Equal(t, "Eastern gray squirrel", c.Species)
		assert.Equal(t, "Mammalia", c.Class)
		assert.Equal(t, 1, c.Rarity)
		assert.Equal(t, "They plant trees.", c.FunFact)
	})

	t.Run("コードブロックを取り除く", func(t *testing.T) {
		c, err := parseCharacterization("```json\n{\"Species\":\"Mallard\",\"Rarity\":2,\"ThreatLevel\":1}\n```")
		require.NoError(t, err)
		assert.Equal(t, "Mallard", c.Species)
		assert.Equal(t, 2, c.Rarity)
	})

	t.Run("レベルは1〜5に丸める", func(t *testing.T) {
		c, err := parseCharacterization(`{"Species":"Coyote","Rarity":9,"ThreatLevel":0}`)
		require.NoError(t, err)
		assert.Equal(t, 5, c.Rarity)
		assert.Equal(t, 1, c.ThreatLevel)
	})

	t.Run("種名がなければエラー", func(t *testing.T) {
		_, err := parseCharacterization(`{"Class":"Aves"}`)
		assert.Error(t, err)
	})

	t.Run("JSONでなければエラー", func(t *testing.T) {
		_, err := parseCharacterization("I think this is a squirrel")
		assert.Error(t, err)
	})
}

func TestGeminiCharacterize(t *testing.T) {
	imageServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	}))
	defer imageServer.Close()

	geminiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req GeminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		require.Len(t, req.Contents[0].Parts, 2)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "Raccoon in the bin")
		assert.Equal(t, "image/jpeg", req.Contents[0].Parts[1].InlineData.MimeType)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)

		resp := GeminiResponse{Candidates: []Candidate{{Content: Content{Parts: []Part{{
			Text: `{"Species":"Common raccoon","Class":"Mammalia","Diet":"Omnivore","Rarity":2,"ThreatLevel":2,"FunFact":"Dexterous paws.","Description":"A masked mammal."}`,
		}}}}}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer geminiServer.Close()

	client := NewGeminiClient("test-key").WithBaseURL(geminiServer.URL)
	repo := NewGeminiCharacterizationRepository(client)

	c, err := repo.Characterize(context.Background(), &model.Post{
		ID:       "p1",
		Caption:  "Raccoon in the bin",
		ImageURL: imageServer.URL + "/raccoon.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "Common raccoon", c.Species)
	assert.Equal(t, 2, c.ThreatLevel)
}

func TestGeminiCharacterizeWithoutImage(t *testing.T) {
	repo := NewGeminiCharacterizationRepository(NewGeminiClient("k"))
	_, err := repo.Characterize(context.Background(), &model.Post{ID: "p1"})
	assert.Error(t, err)
}
