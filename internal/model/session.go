package model

import "time"

// SessionRecord はクッキーに紐づくサーバー側のセッション状態を表す。
// ドキュメントストアのsessionsコレクションに永続化され、
// ライフサイクルはクッキーの寿命に従う（記事・著者データとは独立）。
type SessionRecord struct {
	ID            string    `bson:"_id"`
	Authenticated bool      `bson:"authenticated"`
	AuthorName    string    `bson:"author_name"` // 表示名（fullname）
	Username      string    `bson:"username"`    // 記事のauthor参照に使うusername
	ExpiresAt     time.Time `bson:"expires_at"`
	CreatedAt     time.Time `bson:"created_at"`
}

// Anonymous は未認証状態のセッションレコードを返す。
// クッキーが無い・無効・期限切れのリクエストはすべてこの状態として扱う。
func Anonymous() *SessionRecord {
	return &SessionRecord{}
}

// Sequence は整数idを採番するための名前付きカウンタードキュメント。
// valueは最後に発行されたid。
type Sequence struct {
	Name  string `bson:"name"`
	Value int    `bson:"value"`
}

// シーケンス名。シードマイグレーションで作成される。
const (
	SequencePostID   = "post_id"
	SequenceAuthorID = "author_id"
)
