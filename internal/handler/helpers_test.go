package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/post"
	"github.com/hitoshi/blogman/internal/security"
)

// テスト用のページテンプレート。各ページはレンダリング結果の検証用に
// 識別しやすいマーカーを出力する。
var testTemplates = map[string]string{
	"layout.html":  `{{define "layout"}}auth={{.Authenticated}};{{template "main" .}}{{end}}`,
	"list.html":    `{{define "main"}}list:{{range .PostAuthorList}}[{{.Post.Title}}/{{.Author.Fullname}}]{{end}}{{end}}`,
	"details.html": `{{define "main"}}details:{{.PostAuthor.Post.Title}}:{{content .PostAuthor.Post.Content}}{{end}}`,
	"add.html":     `{{define "main"}}add:{{.Post.Author}}:{{toISODate .Post.Date}}{{end}}`,
	"edit.html":    `{{define "main"}}edit:{{.Post.ID}}:{{.Post.Title}}{{end}}`,
	"login.html":   `{{define "main"}}login{{end}}`,
	"status.html":  `{{define "main"}}status:{{.StatusType}}:{{.PostID}}{{end}}`,
}

// newTestRenderer は一時ディレクトリにテンプレートを書き出してViewRendererを生成する。
func newTestRenderer(t *testing.T) *ViewRenderer {
	t.Helper()

	dir := t.TempDir()
	for name, body := range testTemplates {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("failed to write template %s: %v", name, err)
		}
	}

	renderer, err := NewViewRenderer(dir, security.NewContentSanitizer())
	if err != nil {
		t.Fatalf("NewViewRenderer() error = %v", err)
	}
	return renderer
}

type mockPostService struct {
	listWithAuthorsFn   func(ctx context.Context) ([]post.PostAuthor, error)
	detailsWithAuthorFn func(ctx context.Context, id int) (*post.PostAuthor, error)
	findFn              func(ctx context.Context, id int) (*model.Post, error)
	saveFn              func(ctx context.Context, p *model.Post, edit bool) error
	removeFn            func(ctx context.Context, id int) error
}

func (m *mockPostService) ListWithAuthors(ctx context.Context) ([]post.PostAuthor, error) {
	return m.listWithAuthorsFn(ctx)
}

func (m *mockPostService) DetailsWithAuthor(ctx context.Context, id int) (*post.PostAuthor, error) {
	return m.detailsWithAuthorFn(ctx, id)
}

func (m *mockPostService) Find(ctx context.Context, id int) (*model.Post, error) {
	return m.findFn(ctx, id)
}

func (m *mockPostService) Save(ctx context.Context, p *model.Post, edit bool) error {
	return m.saveFn(ctx, p, edit)
}

func (m *mockPostService) Remove(ctx context.Context, id int) error {
	return m.removeFn(ctx, id)
}

type mockCoverSaver struct {
	saveFn func(src io.Reader, originalName string) (string, error)
	saved  []string
}

func (m *mockCoverSaver) Save(src io.Reader, originalName string) (string, error) {
	m.saved = append(m.saved, originalName)
	if m.saveFn != nil {
		return m.saveFn(src, originalName)
	}
	return "stored-cover.png", nil
}

type mockAuthService struct {
	loginFn    func(ctx context.Context, username, password string) (*model.SessionRecord, error)
	logoutFn   func(ctx context.Context, sessionID string) error
	loggedOut  []string
	loginCalls int
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*model.SessionRecord, error) {
	m.loginCalls++
	return m.loginFn(ctx, username, password)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	m.loggedOut = append(m.loggedOut, sessionID)
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

type opMetrics struct {
	postOps        []string
	loginSuccesses int
	loginFailures  int
}

func (m *opMetrics) RecordPostOperation(op string) { m.postOps = append(m.postOps, op) }
func (m *opMetrics) RecordLoginSuccess()           { m.loginSuccesses++ }
func (m *opMetrics) RecordLoginFailure()           { m.loginFailures++ }

// authedRequest は認証済みセッションをコンテキストに持つリクエストを返す。
func authedRequest(r *http.Request) *http.Request {
	record := &model.SessionRecord{
		ID:            "session-123",
		Authenticated: true,
		AuthorName:    "João Silva",
		Username:      "joaosilva",
	}
	return r.WithContext(middleware.ContextWithSession(r.Context(), record))
}

// multipartBody はマルチパートフォームのリクエストボディを構築する。
// pictureが非nilの場合はその内容でファイルパートを付ける。
func multipartBody(t *testing.T, fields map[string]string, pictureName string, picture []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}
	if picture != nil {
		part, err := mw.CreateFormFile("picture", pictureName)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(picture); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	return &buf, mw.FormDataContentType()
}
