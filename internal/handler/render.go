// Package handler はサーバーレンダリングされたHTTPハンドラーとルーティングを提供する。
package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/hitoshi/blogman/internal/security"
)

// ViewRenderer はhtml/templateによるビューのレンダリングを行う。
// テンプレートは起動時に1回パースされる。記事本文はサニタイズ済みHTMLとして
// 埋め込まれるため、信頼境界はここに集約される。
type ViewRenderer struct {
	templates map[string]*template.Template
}

// NewViewRenderer はテンプレートディレクトリ配下のページをパースして
// ViewRendererを生成する。各ページはlayout.htmlと組でパースされる。
func NewViewRenderer(templateDir string, sanitizer security.ContentSanitizerService) (*ViewRenderer, error) {
	funcs := template.FuncMap{
		// 一覧カードで本文の先頭だけを見せる
		"shorten": func(s string) string {
			runes := []rune(s)
			if len(runes) <= 100 {
				return s
			}
			return string(runes[:100]) + "..."
		},
		// "Mon, 02 Jan 2006 15:04:05 GMT" から日付部分のみを表示する
		"formatDate": func(d string) string {
			if len(d) >= 16 {
				return d[:16]
			}
			return d
		},
		// 編集フォームのdate入力にはISO形式が必要になる
		"toISODate": func(d string) string {
			for _, layout := range []string{"Mon, 02 Jan 2006 15:04:05 GMT", time.RFC1123} {
				t, err := time.Parse(layout, d)
				if err == nil {
					return t.UTC().Format("2006-01-02")
				}
			}
			return ""
		},
		"isNotEmpty": func(s string) bool {
			return len(s) > 0
		},
		// 記事本文はサニタイズしてからHTMLとして埋め込む
		"content": func(s string) template.HTML {
			return template.HTML(sanitizer.Sanitize(s))
		},
	}

	layout := filepath.Join(templateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}

	templates := map[string]*template.Template{}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.New(filepath.Base(page)).Funcs(funcs).ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}

	return &ViewRenderer{templates: templates}, nil
}

// Render は指定のページテンプレートをレイアウトに埋めて書き出す。
// レンダリング失敗は500になる（通常運用で起きるのはテンプレートのバグのみ）。
func (vr *ViewRenderer) Render(w http.ResponseWriter, name string, data map[string]any) {
	t, ok := vr.templates[name]
	if !ok {
		slog.Error("view template not found", slog.String("template", name))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("failed to render view",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}

// RenderStatus は汎用のステータスビューを表示する。
// リポジトリ層の失敗はすべてここを通り、内部の詳細はユーザーに出さない。
func (vr *ViewRenderer) RenderStatus(w http.ResponseWriter, data map[string]any, statusType string) {
	data["StatusType"] = statusType
	vr.Render(w, "status", data)
}
