// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/blogman/internal/model"
)

// PostRepository は記事データの永続化インターフェース。
type PostRepository interface {
	// Insert は新規記事を作成し、採番されたidを返す。
	// 書き込み前にシーケンスジェネレーターで新しいidを必ず採番する
	// （事前に設定されたidは無視される）。
	// 前提条件: post.IsValid()。満たさない場合はInvalidInputエラーを返す。
	Insert(ctx context.Context, post *model.Post) (int, error)

	// ListAll は全記事をid昇順（挿入順の代替）で返す。ページネーションはない。
	ListAll(ctx context.Context) ([]*model.Post, error)

	// FindByID は指定idの記事を取得する。見つからない場合はNotFoundエラーを返す。
	FindByID(ctx context.Context, id int) (*model.Post, error)

	// Update はidをキーにドキュメント全体を置換する。
	// 実際に変更が生じた場合のみtrueを返す。同一内容での置換はfalseを返す。
	Update(ctx context.Context, post *model.Post) (bool, error)

	// RemoveByID は指定idの記事を削除する。
	// ドキュメントが存在し削除された場合のみtrueを返す。不在のidはfalse（エラーなし）。
	RemoveByID(ctx context.Context, id int) (bool, error)
}

// AuthorRepository は著者データの読み取りインターフェース。
// 著者の作成・更新はランタイムの責務外（シードマイグレーションが行う）。
type AuthorRepository interface {
	// FindByUsername はユニークなusernameで著者を1件取得する。
	// 見つからない場合はNotFound、保存済みドキュメントが必須フィールドを
	// 欠く場合はInvalidRecordエラーを返す。キャッシュは行わない。
	FindByUsername(ctx context.Context, username string) (*model.Author, error)
}

// SequenceRepository は整数idを採番するシーケンスジェネレーターのインターフェース。
type SequenceRepository interface {
	// Next は名前付きカウンターをアトミックに1増やし、増加後の値を返す。
	// 並行呼び出しで同じ値が返ることはない。
	// カウンタードキュメントが存在しない場合はSequenceNotFoundエラーを返す。
	Next(ctx context.Context, name string) (int, error)
}

// SessionRepository はセッションレコードの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションレコードを作成する。
	Create(ctx context.Context, record *model.SessionRecord) error

	// FindByID は指定idのセッションレコードを取得する。
	// 見つからない・期限切れの場合はnilを返す（エラーではない）。
	FindByID(ctx context.Context, id string) (*model.SessionRecord, error)

	// DeleteByID は指定idのセッションレコードを削除する。
	DeleteByID(ctx context.Context, id string) error

	// DeleteExpired は期限切れのセッションレコードを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
