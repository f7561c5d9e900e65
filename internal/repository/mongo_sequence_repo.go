package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/blogman/internal/model"
)

// MongoSequenceRepo はsequencesコレクションを使用したシーケンスジェネレーター。
type MongoSequenceRepo struct {
	coll *mongo.Collection
}

// NewMongoSequenceRepo はMongoSequenceRepoを生成する。
func NewMongoSequenceRepo(coll *mongo.Collection) *MongoSequenceRepo {
	return &MongoSequenceRepo{coll: coll}
}

// Next は名前付きカウンターをアトミックに1増やし、増加後の値を返す。
// findOneAndUpdateの$incは単一ドキュメント操作としてアトミックであり、
// 並行呼び出しでも重複idは発行されない。リクエストが途中で破棄された場合は
// 未使用のidが1つ失われるだけで、重複は起きない。
func (r *MongoSequenceRepo) Next(ctx context.Context, name string) (int, error) {
	result := r.coll.FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var seq model.Sequence
	if err := result.Decode(&seq); err != nil {
		// カウンターはシードで作成される前提。自動作成はしない。
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, model.NewSequenceNotFoundError(name)
		}
		return 0, model.NewStoreUnavailableError("sequence.Next", err)
	}

	return seq.Value, nil
}

// compile-time interface check
var _ SequenceRepository = (*MongoSequenceRepo)(nil)
