package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignSessionID はセッションidに署名を付与したクッキー値を返す。
// 形式は "<id>.<hmac-sha256(id, secret)>"。
func SignSessionID(id, secret string) string {
	return id + "." + computeSignature(id, secret)
}

// VerifySessionCookie はクッキー値の署名を検証し、セッションidを取り出す。
// 署名が欠けている・一致しない場合はfalseを返し、呼び出し側は
// セッションなしとして扱う。
func VerifySessionCookie(value, secret string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}

	expected := computeSignature(id, secret)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}

	return id, true
}

func computeSignature(id, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
