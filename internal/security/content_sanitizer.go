// Package security はアプリケーションのセキュリティ機能を提供する。
//
// ContentSanitizerService は記事本文のHTMLをサニタイズし、
// レンダリング時のXSSから閲覧者を保護する。bluemondayの
// 許可リストベースのポリシーで、安全なタグのみを通過させる。
package security

import "github.com/microcosm-cc/bluemonday"

// ContentSanitizerService は記事本文サニタイズのインターフェースを定義する。
// ビューのレンダリング直前に使用される。
type ContentSanitizerService interface {
	// Sanitize は記事本文をサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, blockquote, pre, code, strong, em）のみ通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。同一入力には常に同一出力を返す（冪等）。
	Sanitize(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はContentSanitizerServiceの新しいインスタンスを生成する。
// 記事本文は著者の入力そのままで保存されるため、信頼境界はレンダリング側に置く。
// ポリシーの内容:
//   - 許可タグ: p, br, a, ul, ol, li, blockquote, pre, code, strong, em
//   - 禁止タグ: script, iframe, style および全てのon*イベント属性
//   - aタグ: href属性のみ許可、target="_blank"とrel="noreferrer noopener"を強制付与
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"blockquote", "pre", "code",
		"strong", "em",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("http", "https")
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return &contentSanitizer{policy: p}
}

// Sanitize は記事本文をサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	if rawHTML == "" {
		return ""
	}
	return s.policy.Sanitize(rawHTML)
}

// compile-time interface check
var _ ContentSanitizerService = (*contentSanitizer)(nil)
