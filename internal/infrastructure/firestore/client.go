package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"Critterly-App/internal/logging"
)

type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient はFirestoreクライアントを作成する
// credentialsFileが存在すればそれを使い、なければデフォルト認証（Cloud Run等）を使う
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string) (*FirestoreClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FirestoreのプロジェクトIDが設定されていません")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			logging.Warn().Str("file", credentialsFile).Msg("⚠️ 認証ファイルが見つからないためデフォルト認証を使用")
		} else {
			logging.Info().Str("file", credentialsFile).Msg("📄 認証ファイルを使用")
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}
	} else {
		logging.Info().Msg("☁️ デフォルト認証を使用")
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	logging.Info().Str("project_id", projectID).Msg("✅ Firestore client initialized")

	return &FirestoreClient{client: client}, nil
}

func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}
