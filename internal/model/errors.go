// Package model はドメインモデルとエラー分類を定義する。
package model

import (
	"errors"
	"fmt"
)

// Kind はアプリケーションエラーの分類を表す。
// ハンドラー層はKindに応じてステータスビューを選択する。
type Kind string

const (
	// KindNotFound はid/usernameによる検索が失敗したことを示す。
	KindNotFound Kind = "not_found"
	// KindInvalidInput はフォーム入力の検証失敗を示す。再入力で回復できる。
	KindInvalidInput Kind = "invalid_input"
	// KindInvalidRecord は保存済みドキュメントに必須フィールドが欠けていることを示す。
	// データ破損を意味するためエラーログに記録する。
	KindInvalidRecord Kind = "invalid_record"
	// KindStoreUnavailable はデータストアへの接続・通信障害を示す。
	KindStoreUnavailable Kind = "store_unavailable"
	// KindCredentialMismatch はログイン失敗を示す。
	// ユーザー未存在とパスワード不一致を区別しない。
	KindCredentialMismatch Kind = "credential_mismatch"
	// KindSequenceNotFound は名前付きカウンタードキュメントが存在しないことを示す。
	// カウンターはシードで作成される前提であり、自動作成はしない。
	KindSequenceNotFound Kind = "sequence_not_found"
)

// AppError は分類付きのアプリケーションエラー。
// リポジトリ境界で生成され、ハンドラー境界で捕捉・翻訳される。
type AppError struct {
	Kind    Kind   // エラー分類
	Op      string // 失敗した操作（例: "post.FindByID"）
	Message string // ログ向けの詳細
	Err     error  // ラップされた下位エラー（任意）
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap はラップされた下位エラーを返す。
func (e *AppError) Unwrap() error {
	return e.Err
}

// KindOf はエラーチェーンからKindを取り出す。
// AppErrorを含まない場合は空文字列を返す。
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// IsKind はエラーが指定の分類かどうかを判定する。
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// NewPostNotFoundError は記事が見つからないエラーを生成する。
func NewPostNotFoundError(id int) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Op:      "post.FindByID",
		Message: fmt.Sprintf("post not found: id=%d", id),
	}
}

// NewAuthorNotFoundError は著者が見つからないエラーを生成する。
func NewAuthorNotFoundError(username string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Op:      "author.FindByUsername",
		Message: fmt.Sprintf("author not found: username=%s", username),
	}
}

// NewInvalidInputError はフォーム検証失敗エラーを生成する。
func NewInvalidInputError(op, field string) *AppError {
	return &AppError{
		Kind:    KindInvalidInput,
		Op:      op,
		Message: fmt.Sprintf("required field is missing or empty: %s", field),
	}
}

// NewInvalidRecordError はドキュメント破損エラーを生成する。
func NewInvalidRecordError(op, field string) *AppError {
	return &AppError{
		Kind:    KindInvalidRecord,
		Op:      op,
		Message: fmt.Sprintf("stored document is missing required field: %s", field),
	}
}

// NewStoreUnavailableError はストア通信障害エラーを生成する。
func NewStoreUnavailableError(op string, err error) *AppError {
	return &AppError{
		Kind:    KindStoreUnavailable,
		Op:      op,
		Message: "document store operation failed",
		Err:     err,
	}
}

// NewCredentialMismatchError はログイン失敗エラーを生成する。
// usernameの存在有無を露出しないため、詳細は持たせない。
func NewCredentialMismatchError() *AppError {
	return &AppError{
		Kind:    KindCredentialMismatch,
		Op:      "auth.Login",
		Message: "login credentials did not match",
	}
}

// NewSequenceNotFoundError はカウンター未存在エラーを生成する。
func NewSequenceNotFoundError(name string) *AppError {
	return &AppError{
		Kind:    KindSequenceNotFound,
		Op:      "sequence.Next",
		Message: fmt.Sprintf("sequence counter not found: name=%s", name),
	}
}
