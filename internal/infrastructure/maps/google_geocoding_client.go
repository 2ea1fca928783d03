package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/metrics"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocodingClient はGoogle Maps Geocoding APIを使用した住所→座標の解決
// リトライ・キャッシュは行わず、1回の呼び出しで1回だけAPIを叩く
type GoogleGeocodingClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleGeocodingClient は新しいクライアントを生成する
func NewGoogleGeocodingClient(apiKey string) *GoogleGeocodingClient {
	return &GoogleGeocodingClient{
		apiKey:     apiKey,
		baseURL:    googleGeocodeURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL は接続先を差し替える（テスト用）
func (g *GoogleGeocodingClient) WithBaseURL(baseURL string) *GoogleGeocodingClient {
	g.baseURL = baseURL
	return g
}

// Resolve は住所を座標に解決する。"OK"以外のステータスは解釈せずにGeocodeErrorとして返す
func (g *GoogleGeocodingClient) Resolve(ctx context.Context, address string) (model.LatLng, error) {
	start := time.Now()
	coordinate, err := g.resolve(ctx, address)
	metrics.GeocodeDuration.WithLabelValues("google").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("google", "failure").Inc()
		return model.LatLng{}, err
	}
	metrics.GeocodeRequests.WithLabelValues("google", "success").Inc()
	return coordinate, nil
}

func (g *GoogleGeocodingClient) resolve(ctx context.Context, address string) (model.LatLng, error) {
	// 1. APIリクエストURLを構築
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())

	// 2. HTTPリクエストを作成・実行
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.LatLng{}, &model.GeocodeError{Address: address, Status: resp.Status, HTTPStatus: resp.StatusCode}
	}

	// 3. JSONレスポンスをパース
	var apiResp googleGeocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return model.LatLng{}, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	if apiResp.Status != "OK" {
		return model.LatLng{}, &model.GeocodeError{Address: address, Status: apiResp.Status, Message: apiResp.ErrorMessage}
	}
	if len(apiResp.Results) == 0 {
		return model.LatLng{}, &model.GeocodeError{Address: address, Status: "ZERO_RESULTS"}
	}

	// 4. 最初の結果をドメインモデルに変換
	loc := apiResp.Results[0].Geometry.Location
	coordinate := model.LatLng{Lat: loc.Lat, Lng: loc.Lng}
	if !coordinate.IsValid() {
		return model.LatLng{}, &model.GeocodeError{Address: address, Status: "INVALID_COORDINATE"}
	}
	return coordinate, nil
}

// --- Google Geocoding APIのレスポンスをパースするための構造体 ---

type googleGeocodeResponse struct {
	Results      []geocodeResult `json:"results"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

type geocodeResult struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         geometry `json:"geometry"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
