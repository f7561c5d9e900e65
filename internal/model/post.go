package model

import (
	"strconv"
	"time"
)

// Post は1件のブログ記事を表す。
// idはシーケンスジェネレーターが採番し、以後不変。
// authorは著者のusernameを値で参照する（ストア側では強制されない）。
type Post struct {
	ID       int    `bson:"id"`
	Title    string `bson:"title"`
	Author   string `bson:"author"`
	Date     string `bson:"date"`
	Location string `bson:"location"`
	Content  string `bson:"content"`
	Cover    string `bson:"cover"`
}

// NewPost は必須フィールドからPostを生成する。
// dateはUTC表示形式に正規化される。locationとcoverは空で初期化される。
func NewPost(title, author, date, content string) *Post {
	return &Post{
		Title:   title,
		Author:  author,
		Date:    NormalizeDate(date),
		Content: content,
	}
}

// IsValid はtitle、author、date、contentがすべて非空かどうかを返す。
// 書き込み前に必ず検証される。
func (p *Post) IsValid() bool {
	return p.Title != "" && p.Author != "" && p.Date != "" && p.Content != ""
}

// Normalize はデコード時の正規化を適用する。
// 保存済みドキュメントから読み出した直後に呼ぶ。
func (p *Post) Normalize() {
	p.Date = NormalizeDate(p.Date)
}

// DecodePostForm はフォーム由来のフィールドマップをPostに変換する。
// 必須フィールド（title、author、date、content）のキーが欠けている場合は
// InvalidInputエラーを返す。idとlocationは任意。
// coverはフォームから受け付けない。カバー参照はサーバー側で管理される。
func DecodePostForm(fields map[string]string) (*Post, error) {
	for _, key := range []string{"title", "author", "date", "content"} {
		if _, ok := fields[key]; !ok {
			return nil, NewInvalidInputError("post.DecodeForm", key)
		}
	}

	post := NewPost(fields["title"], fields["author"], fields["date"], fields["content"])

	if v, ok := fields["id"]; ok {
		id, err := strconv.Atoi(v)
		if err == nil {
			post.ID = id
		}
	}
	if v, ok := fields["location"]; ok {
		post.Location = v
	}

	return post, nil
}

// dateLayouts はNormalizeDateが受理する入力形式。
// フォームのdate入力（ISO）、シードデータのUS形式、既に正規化済みの表示形式を含む。
var dateLayouts = []string{
	time.RFC1123,
	"Mon, 02 Jan 2006 15:04:05 GMT",
	time.RFC3339,
	"2006-01-02",
	"01/02/2006",
}

// NormalizeDate は日付文字列をUTC表示形式（RFC1123、タイムゾーン表記GMT）に正規化する。
// どの形式でも解釈できない場合は入力をそのまま返す。
func NormalizeDate(s string) string {
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC().Format("Mon, 02 Jan 2006 15:04:05") + " GMT"
		}
	}
	return s
}
