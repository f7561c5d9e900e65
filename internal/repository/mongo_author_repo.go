package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hitoshi/blogman/internal/model"
)

// MongoAuthorRepo はauthorsコレクションを使用した著者リポジトリ。
type MongoAuthorRepo struct {
	coll *mongo.Collection
}

// NewMongoAuthorRepo はMongoAuthorRepoを生成する。
func NewMongoAuthorRepo(coll *mongo.Collection) *MongoAuthorRepo {
	return &MongoAuthorRepo{coll: coll}
}

// FindByUsername はユニークなusernameで著者を1件取得する。
// 毎回ストアへラウンドトリップする（キャッシュなし）。
func (r *MongoAuthorRepo) FindByUsername(ctx context.Context, username string) (*model.Author, error) {
	var doc bson.M
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&doc)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.NewAuthorNotFoundError(username)
	}
	if err != nil {
		return nil, model.NewStoreUnavailableError("author.FindByUsername", err)
	}

	// 生ドキュメントを検証付きでデコードする。
	// 必須フィールドの欠落は破損した書き込みを意味する。
	author, err := model.DecodeAuthor(doc)
	if err != nil {
		return nil, err
	}

	return author, nil
}

// compile-time interface check
var _ AuthorRepository = (*MongoAuthorRepo)(nil)
