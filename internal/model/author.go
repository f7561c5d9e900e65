package model

import "go.mongodb.org/mongo-driver/bson"

// Author はブログの著者を表す。
// ランタイムでは読み取り専用で、プロビジョニングはシードマイグレーションが行う。
// Passwordはbcryptハッシュであり、平文で比較されることはない。
type Author struct {
	ID       int    `bson:"id"`
	Username string `bson:"username"`
	Fullname string `bson:"fullname"`
	Email    string `bson:"email"`
	Password string `bson:"password"`
}

// IsValid はusernameとpasswordが非空かどうかを返す。
func (a *Author) IsValid() bool {
	return a.Username != "" && a.Password != ""
}

// DecodeAuthor は保存済みドキュメントをAuthorに変換する。
// username、password、emailのいずれかが欠けている場合はInvalidRecordエラーを返す。
// 欠落は破損した書き込みを意味し、通常のユーザーエラーではない。
func DecodeAuthor(doc bson.M) (*Author, error) {
	for _, key := range []string{"email", "password", "username"} {
		if _, ok := doc[key]; !ok {
			return nil, NewInvalidRecordError("author.Decode", key)
		}
	}

	author := &Author{
		Username: asString(doc["username"]),
		Password: asString(doc["password"]),
		Email:    asString(doc["email"]),
	}

	if v, ok := doc["id"]; ok {
		author.ID = asInt(v)
	}
	if v, ok := doc["fullname"]; ok {
		author.Fullname = asString(v)
	}

	return author, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asInt はBSONの数値表現（int32/int64/float64）をintに揃える。
// シードマイグレーション経由のドキュメントとドライバー経由の書き込みで型が揺れるため。
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
