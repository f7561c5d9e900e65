package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/blogman/internal/model"
)

// MongoPostRepo はpostsコレクションを使用した記事リポジトリ。
// 新規記事のidはシーケンスジェネレーターから採番する。
type MongoPostRepo struct {
	coll      *mongo.Collection
	sequences SequenceRepository
}

// NewMongoPostRepo はMongoPostRepoを生成する。
func NewMongoPostRepo(coll *mongo.Collection, sequences SequenceRepository) *MongoPostRepo {
	return &MongoPostRepo{coll: coll, sequences: sequences}
}

// Insert は新規記事を作成し、採番されたidを返す。
// 呼び出し側が設定したidは無視し、書き込み前に必ず新しいidを採番する。
func (r *MongoPostRepo) Insert(ctx context.Context, post *model.Post) (int, error) {
	if !post.IsValid() {
		return 0, model.NewInvalidInputError("post.Insert", "title/author/date/content")
	}

	id, err := r.sequences.Next(ctx, model.SequencePostID)
	if err != nil {
		return 0, fmt.Errorf("failed to generate post id: %w", err)
	}
	post.ID = id

	result, err := r.coll.InsertOne(ctx, post)
	if err != nil {
		return 0, model.NewStoreUnavailableError("post.Insert", err)
	}
	if result.InsertedID == nil {
		return 0, fmt.Errorf("post.Insert: store reported an unsuccessful write")
	}

	return id, nil
}

// ListAll は全記事をid昇順で返す。ページネーションはない。
func (r *MongoPostRepo) ListAll(ctx context.Context) ([]*model.Post, error) {
	cursor, err := r.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}),
	)
	if err != nil {
		return nil, model.NewStoreUnavailableError("post.ListAll", err)
	}
	defer cursor.Close(ctx)

	var posts []*model.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, model.NewStoreUnavailableError("post.ListAll", err)
	}

	for _, post := range posts {
		post.Normalize()
	}

	return posts, nil
}

// FindByID は指定idの記事を取得する。見つからない場合はNotFoundエラーを返す。
func (r *MongoPostRepo) FindByID(ctx context.Context, id int) (*model.Post, error) {
	var post model.Post
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&post)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, model.NewPostNotFoundError(id)
	}
	if err != nil {
		return nil, model.NewStoreUnavailableError("post.FindByID", err)
	}

	post.Normalize()
	return &post, nil
}

// Update はidをキーにドキュメント全体を置換する。
// 実際に変更が生じた場合のみtrueを返す。同一内容での置換や不在のidはfalseになる。
// 楽観ロックやバージョンフィールドはなく、並行編集は後勝ちとなる。
func (r *MongoPostRepo) Update(ctx context.Context, post *model.Post) (bool, error) {
	result, err := r.coll.ReplaceOne(ctx, bson.M{"id": post.ID}, post)
	if err != nil {
		return false, model.NewStoreUnavailableError("post.Update", err)
	}

	return result.ModifiedCount > 0, nil
}

// RemoveByID は指定idの記事を削除する。
// ドキュメントが存在し削除された場合のみtrueを返す。
func (r *MongoPostRepo) RemoveByID(ctx context.Context, id int) (bool, error) {
	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, model.NewStoreUnavailableError("post.RemoveByID", err)
	}

	return result.DeletedCount > 0, nil
}

// compile-time interface check
var _ PostRepository = (*MongoPostRepo)(nil)
