package maps

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/logging"
	"Critterly-App/internal/metrics"
)

// ResilientGeocoder はGeocoderにレート制限とサーキットブレーカーを付ける
// リトライはしない。ブレーカーが開いている間の呼び出しは即座に失敗する
type ResilientGeocoder struct {
	next    repository.Geocoder
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[model.LatLng]
	name    string
}

// ResilienceOptions ResilientGeocoderの設定
type ResilienceOptions struct {
	RatePerSecond float64 // 0なら無制限
	Breaker       bool
	Name          string
}

// NewResilientGeocoder はGeocoderをラップする
// どちらの機能も無効ならnextをそのまま返す
func NewResilientGeocoder(next repository.Geocoder, opts ResilienceOptions) repository.Geocoder {
	if opts.RatePerSecond <= 0 && !opts.Breaker {
		return next
	}
	if opts.Name == "" {
		opts.Name = "geocoder"
	}

	g := &ResilientGeocoder{next: next, name: opts.Name}
	if opts.RatePerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1)
	}
	if opts.Breaker {
		g.cb = newGeocodeBreaker(opts.Name)
	}
	return g
}

func newGeocodeBreaker(name string) *gobreaker.CircuitBreaker[model.LatLng] {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[model.LatLng](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		// 連続5回の障害（通信エラー・5xx等）で開く
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("⚡ ジオコーダーのサーキットブレーカー状態遷移")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

// isBreakerSuccess 住所が見つからない等のAPI応答はサービス障害として数えない
func isBreakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var geoErr *model.GeocodeError
	if errors.As(err, &geoErr) {
		return !geoErr.IsServiceFailure()
	}
	return false
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Resolve はレート制限を待ってからブレーカー経由で解決する
func (g *ResilientGeocoder) Resolve(ctx context.Context, address string) (model.LatLng, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return model.LatLng{}, fmt.Errorf("レート制限の待機に失敗: %w", err)
		}
	}

	if g.cb == nil {
		return g.next.Resolve(ctx, address)
	}

	coordinate, err := g.cb.Execute(func() (model.LatLng, error) {
		return g.next.Resolve(ctx, address)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.GeocodeRequests.WithLabelValues(g.name, "rejected").Inc()
		return model.LatLng{}, fmt.Errorf("ジオコーダーが一時的に利用できません: %w", err)
	}
	return coordinate, err
}
