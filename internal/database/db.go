// Package database はドキュメントストア接続とマイグレーション管理を提供する。
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Gateway はプロセス全体で共有する単一のMongoDB接続を保持する。
// すべてのリポジトリがこの接続を再利用し、コネクションプーリングは
// ドライバーに任せる（アプリケーション層はロックを持たない）。
type Gateway struct {
	client *mongo.Client
	dbName string
}

// Connect はドキュメントストアへの接続を確立し、疎通確認を行う。
// 到達できない場合はエラーを返す。起動時の接続失敗はfatalであり、リトライしない。
func Connect(ctx context.Context, uri, dbName string) (*Gateway, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to open document store connection: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to reach document store: %w", err)
	}

	return &Gateway{client: client, dbName: dbName}, nil
}

// Disconnect は接続を解放する。シャットダウンシグナルで呼ばれる。
// 既に切断済みの場合は何もしない（冪等）。
func (g *Gateway) Disconnect(ctx context.Context) error {
	if g.client == nil {
		return nil
	}
	client := g.client
	g.client = nil

	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close document store connection: %w", err)
	}
	return nil
}

// Collection は固定のデータベース名にスコープされたコレクションハンドルを返す。
// コレクションを暗黙に作成することはない。スキーマとインデックスの
// プロビジョニングはmigrateサブコマンドが行う。
func (g *Gateway) Collection(name string) *mongo.Collection {
	return g.client.Database(g.dbName).Collection(name)
}

// Client は共有クライアントを返す。マイグレーションのワイヤリングで使用する。
func (g *Gateway) Client() *mongo.Client {
	return g.client
}

// Ping は疎通確認を行う。/healthエンドポイントから使用する。
func (g *Gateway) Ping(ctx context.Context) error {
	if g.client == nil {
		return fmt.Errorf("document store is disconnected")
	}
	return g.client.Ping(ctx, readpref.Primary())
}
