package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/metrics"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

// NominatimGeocodingClient はOpenStreetMapのNominatim検索APIを使用した住所→座標の解決
type NominatimGeocodingClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewNominatimGeocodingClient(userAgent string) *NominatimGeocodingClient {
	if userAgent == "" {
		userAgent = "CritterlyApp/1.0"
	}
	return &NominatimGeocodingClient{
		baseURL:   nominatimURL,
		userAgent: userAgent,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// WithBaseURL は接続先を差し替える（テスト用）
func (n *NominatimGeocodingClient) WithBaseURL(baseURL string) *NominatimGeocodingClient {
	n.baseURL = baseURL
	return n
}

func (n *NominatimGeocodingClient) Resolve(ctx context.Context, address string) (model.LatLng, error) {
	start := time.Now()
	coordinate, err := n.resolve(ctx, address)
	metrics.GeocodeDuration.WithLabelValues("nominatim").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues("nominatim", "failure").Inc()
		return model.LatLng{}, err
	}
	metrics.GeocodeRequests.WithLabelValues("nominatim", "success").Inc()
	return coordinate, nil
}

func (n *NominatimGeocodingClient) resolve(ctx context.Context, address string) (model.LatLng, error) {
	params := url.Values{}
	params.Add("q", address)
	params.Add("format", "json")
	params.Add("limit", "1")

	reqURL := fmt.Sprintf("%s?%s", n.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return model.LatLng{}, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return model.LatLng{}, &model.GeocodeError{Address: address, Status: resp.Status, HTTPStatus: resp.StatusCode}
	}

	var rawResults []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&rawResults); err != nil {
		return model.LatLng{}, fmt.Errorf("JSONのパースに失敗: %w", err)
	}
	if len(rawResults) == 0 {
		return model.LatLng{}, &model.GeocodeError{Address: address, Status: "ZERO_RESULTS"}
	}

	lat, latErr := strconv.ParseFloat(rawResults[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(rawResults[0].Lon, 64)
	coordinate := model.LatLng{Lat: lat, Lng: lon}
	if latErr != nil || lonErr != nil || !coordinate.IsValid() {
		return model.LatLng{}, &model.GeocodeError{
			Address: address,
			Status:  "INVALID_COORDINATE",
			Message: fmt.Sprintf("lat=%q lon=%q", rawResults[0].Lat, rawResults[0].Lon),
		}
	}
	return coordinate, nil
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
