package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"Critterly-App/internal/domain/model"
	"Critterly-App/internal/domain/repository"
	"Critterly-App/internal/infrastructure/database"
)

// PostgresGeocodeCacheRepository geocode_cacheテーブルを使ったジオコード結果の永続キャッシュ
type PostgresGeocodeCacheRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresGeocodeCacheRepository(client *database.PostgreSQLClient) repository.GeocodeCache {
	return &PostgresGeocodeCacheRepository{
		client: client,
	}
}

func (r *PostgresGeocodeCacheRepository) Get(ctx context.Context, address string) (model.LatLng, bool, error) {
	var location string
	err := r.client.DB.QueryRowContext(ctx,
		`SELECT location FROM geocode_cache WHERE address = $1`, address,
	).Scan(&location)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LatLng{}, false, nil
	}
	if err != nil {
		return model.LatLng{}, false, fmt.Errorf("ジオコードキャッシュの読み込みに失敗: %w", err)
	}

	coordinate, err := WKTToLatLng(location)
	if err != nil {
		return model.LatLng{}, false, err
	}
	return coordinate, true, nil
}

func (r *PostgresGeocodeCacheRepository) Put(ctx context.Context, address string, coordinate model.LatLng) error {
	_, err := r.client.DB.ExecContext(ctx, `
		INSERT INTO geocode_cache (address, location, resolved_at)
		VALUES ($1, $2, now())
		ON CONFLICT (address) DO UPDATE SET location = EXCLUDED.location, resolved_at = EXCLUDED.resolved_at`,
		address, LatLngToWKT(coordinate),
	)
	if err != nil {
		return fmt.Errorf("ジオコードキャッシュの書き込みに失敗: %w", err)
	}
	return nil
}
