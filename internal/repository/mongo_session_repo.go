package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hitoshi/blogman/internal/model"
)

// MongoSessionRepo はsessionsコレクションを使用したセッションリポジトリ。
// セッションのライフサイクルは記事・著者データとは独立している。
type MongoSessionRepo struct {
	coll *mongo.Collection
}

// NewMongoSessionRepo はMongoSessionRepoを生成する。
func NewMongoSessionRepo(coll *mongo.Collection) *MongoSessionRepo {
	return &MongoSessionRepo{coll: coll}
}

// Create はセッションレコードを作成する。
func (r *MongoSessionRepo) Create(ctx context.Context, record *model.SessionRecord) error {
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return model.NewStoreUnavailableError("session.Create", err)
	}
	return nil
}

// FindByID は指定idのセッションレコードを取得する。
// 見つからない・期限切れの場合はnilを返す。セッションの不在は通常の状態であり、
// エラーとしては扱わない。
func (r *MongoSessionRepo) FindByID(ctx context.Context, id string) (*model.SessionRecord, error) {
	var record model.SessionRecord
	err := r.coll.FindOne(ctx, bson.M{
		"_id":        id,
		"expires_at": bson.M{"$gt": time.Now()},
	}).Decode(&record)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, model.NewStoreUnavailableError("session.FindByID", err)
	}

	return &record, nil
}

// DeleteByID は指定idのセッションレコードを削除する。ログアウトで呼ばれる。
func (r *MongoSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return model.NewStoreUnavailableError("session.DeleteByID", err)
	}
	return nil
}

// DeleteExpired は期限切れのセッションレコードを削除し、削除件数を返す。
// TTLインデックスの掃除が遅延した場合の補完としてクリーンアップジョブから呼ばれる。
func (r *MongoSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.coll.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": now},
	})
	if err != nil {
		return 0, model.NewStoreUnavailableError("session.DeleteExpired", err)
	}

	return result.DeletedCount, nil
}

// compile-time interface check
var _ SessionRepository = (*MongoSessionRepo)(nil)
