package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgreSQLClient PostgreSQL直接接続クライアント（ジオコードキャッシュ用）
type PostgreSQLClient struct {
	DB *sql.DB
}

const geocodeCacheSchema = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	address     TEXT PRIMARY KEY,
	location    TEXT NOT NULL, -- WKT POINT(lng lat)
	resolved_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// NewPostgreSQLClient DSNから新しいPostgreSQLクライアントを作成
func NewPostgreSQLClient(ctx context.Context, dsn string) (*PostgreSQLClient, error) {
	if dsn == "" {
		return nil, fmt.Errorf("PostgreSQLの接続文字列が設定されていません")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL接続の初期化に失敗: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	// 接続テスト
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("PostgreSQLへの接続に失敗: %w", err)
	}

	return &PostgreSQLClient{
		DB: db,
	}, nil
}

// EnsureGeocodeCacheSchema geocode_cacheテーブルがなければ作成する
func (pc *PostgreSQLClient) EnsureGeocodeCacheSchema(ctx context.Context) error {
	if _, err := pc.DB.ExecContext(ctx, geocodeCacheSchema); err != nil {
		return fmt.Errorf("geocode_cacheテーブルの作成に失敗: %w", err)
	}
	return nil
}

// Close データベース接続を閉じる
func (pc *PostgreSQLClient) Close() error {
	if pc.DB != nil {
		return pc.DB.Close()
	}
	return nil
}
