// Package auth は著者のログイン認証とセッション管理を提供する。
package auth

import "golang.org/x/crypto/bcrypt"

// VerifyPassword は送信されたパスワードを保存済みのbcryptハッシュと比較する。
// ソルト付きの低速ハッシュ比較であり、平文同士の等価比較は行わない。
// タイミング安全性はbcrypt実装に委ねる。平文パスワードはログに出力しないこと。
func VerifyPassword(plaintext, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}

// HashPassword はパスワードのbcryptハッシュを生成する。
// ランタイムの認証経路では使わない。著者のプロビジョニングとテストで使用する。
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
