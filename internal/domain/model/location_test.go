package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLatLngKey(t *testing.T) {
	t.Run("小数点以下6桁で丸める", func(t *testing.T) {
		assert.Equal(t, "42.050000,-87.670000", LatLng{Lat: 42.05, Lng: -87.67}.Key())
		assert.Equal(t, "42.123457,-87.000001", LatLng{Lat: 42.1234567, Lng: -87.0000012}.Key())
	})

	t.Run("近いが異なる座標は別キー", func(t *testing.T) {
		a := LatLng{Lat: 42.050000, Lng: -87.670000}
		b := LatLng{Lat: 42.050002, Lng: -87.670000}
		assert.NotEqual(t, a.Key(), b.Key())
	})

	t.Run("丸め後に一致すれば同じキー", func(t *testing.T) {
		a := LatLng{Lat: 42.0500001, Lng: -87.6700004}
		b := LatLng{Lat: 42.0499999, Lng: -87.6699996}
		assert.Equal(t, a.Key(), b.Key())
	})

	t.Run("負のゼロを正規化", func(t *testing.T) {
		assert.Equal(t, "0.000000,0.000000", LatLng{Lat: -0.0000001, Lng: math.Copysign(0, -1)}.Key())
	})
}

func TestLatLngIsValid(t *testing.T) {
	assert.True(t, LatLng{Lat: 42.05, Lng: -87.67}.IsValid())
	assert.True(t, LatLng{Lat: -90, Lng: 180}.IsValid())
	assert.False(t, LatLng{Lat: math.NaN(), Lng: 0}.IsValid())
	assert.False(t, LatLng{Lat: 0, Lng: math.Inf(1)}.IsValid())
	assert.False(t, LatLng{Lat: 91, Lng: 0}.IsValid())
	assert.False(t, LatLng{Lat: 0, Lng: -180.5}.IsValid())
}

func TestLocationCluster(t *testing.T) {
	cluster := &LocationCluster{
		Key:   "42.050000,-87.670000",
		Posts: []*Post{{ID: "p1"}, {ID: "p2"}},
	}

	assert.True(t, cluster.ContainsPost("p2"))
	assert.False(t, cluster.ContainsPost("p3"))
	assert.Equal(t, []string{"p1", "p2"}, cluster.PostIDs())

	result := &IndexResult{Clusters: []*LocationCluster{cluster, {Posts: []*Post{{ID: "p3"}}}}}
	assert.Equal(t, 3, result.PlacedPostCount())
}

func TestGeocodeError(t *testing.T) {
	err := &GeocodeError{Address: "BadAddr", Status: "ZERO_RESULTS"}
	assert.Equal(t, `geocode "BadAddr": ZERO_RESULTS`, err.Error())

	err.Message = "no match"
	assert.Contains(t, err.Error(), "no match")
}

func TestGeocodeErrorIsServiceFailure(t *testing.T) {
	tests := []struct {
		name string
		err  *GeocodeError
		want bool
	}{
		{"住所が見つからない", &GeocodeError{Status: "ZERO_RESULTS"}, false},
		{"不正な座標", &GeocodeError{Status: "INVALID_COORDINATE"}, false},
		{"リクエスト拒否", &GeocodeError{Status: "REQUEST_DENIED"}, false},
		{"サーバー側の一時的なエラー", &GeocodeError{Status: "UNKNOWN_ERROR"}, true},
		{"HTTP 503", &GeocodeError{Status: "503 Service Unavailable", HTTPStatus: 503}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.IsServiceFailure())
		})
	}
}

func TestFirestorePostToPost(t *testing.T) {
	created := time.Date(2024, 11, 3, 10, 0, 0, 0, time.UTC)
	doc := &FirestorePost{
		Caption:   "Squirrel with pizza",
		Geotag:    "633 Clark St, Evanston, IL 60208",
		ImageURL:  "https://example.com/squirrel.jpg",
		CreatedAt: &created,
		UserID:    "user-1",
		Characterization: &Characterization{
			Species: "Eastern gray squirrel",
			Rarity:  1,
		},
	}

	post := doc.ToPost("abc")
	assert.Equal(t, "abc", post.ID)
	assert.Equal(t, "user-1", post.AuthorID)
	assert.Equal(t, doc.Geotag, post.Geotag)
	assert.True(t, post.HasCharacterization())
	assert.Equal(t, created, *post.CreatedAt)
}

func TestUnplacedNotice(t *testing.T) {
	assert.Equal(t, "", UnplacedNotice(0))
	assert.Equal(t, "1 post could not be placed on the map", UnplacedNotice(1))
	assert.Equal(t, "3 posts could not be placed on the map", UnplacedNotice(3))
}
