package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/post"
)

// maxUploadMemory はマルチパートフォームをメモリ上で処理する上限。
const maxUploadMemory = 32 << 20

// PostServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	ListWithAuthors(ctx context.Context) ([]post.PostAuthor, error)
	DetailsWithAuthor(ctx context.Context, id int) (*post.PostAuthor, error)
	Find(ctx context.Context, id int) (*model.Post, error)
	Save(ctx context.Context, p *model.Post, edit bool) error
	Remove(ctx context.Context, id int) error
}

// CoverSaver はカバー画像の保存に必要なインターフェース。
// storage.CoverStoreの部分集合として定義する。
type CoverSaver interface {
	Save(src io.Reader, originalName string) (string, error)
}

// PostMetrics は記事操作のメトリクス記録に必要なインターフェース。
type PostMetrics interface {
	RecordPostOperation(op string)
}

// PostHandler は記事ワークフローのHTTPハンドラー。
type PostHandler struct {
	service   PostServiceInterface
	covers    CoverSaver
	renderer  *ViewRenderer
	collector PostMetrics
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(service PostServiceInterface, covers CoverSaver, renderer *ViewRenderer, collector PostMetrics) *PostHandler {
	return &PostHandler{
		service:   service,
		covers:    covers,
		renderer:  renderer,
		collector: collector,
	}
}

// baseViewData はセッション状態を含む全ビュー共通のデータを返す。
func baseViewData(r *http.Request) map[string]any {
	record := middleware.SessionFromContext(r.Context())
	return map[string]any{
		"Authenticated": record.Authenticated,
		"AuthorName":    record.AuthorName,
	}
}

// parseID はパス・フォーム上のidを整数に解釈する。
// 数値でない・欠けている場合は0になり、後段の検索がNotFoundを返す。
func parseID(raw string) int {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return id
}

// List は記事一覧を表示する。
// GET /list
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	data := baseViewData(r)

	joined, err := h.service.ListWithAuthors(r.Context())
	if err != nil {
		slog.Error("failed to render posts list", slog.String("error", err.Error()))
		h.renderer.RenderStatus(w, data, "list_error")
		return
	}

	data["PostAuthorList"] = joined
	h.renderer.Render(w, "list", data)
}

// Details は記事詳細を表示する。
// GET /post/{id}
func (h *PostHandler) Details(w http.ResponseWriter, r *http.Request) {
	data := baseViewData(r)
	id := parseID(chi.URLParam(r, "id"))

	joined, err := h.service.DetailsWithAuthor(r.Context(), id)
	if err != nil {
		// 不在のidは想定内であり、未知の記事ビューで応える
		if !model.IsKind(err, model.KindNotFound) {
			slog.Error("failed to obtain post details",
				slog.Int("post_id", id),
				slog.String("error", err.Error()),
			)
		}
		data["PostID"] = chi.URLParam(r, "id")
		h.renderer.RenderStatus(w, data, "unknown_post")
		return
	}

	data["PostAuthor"] = joined
	h.renderer.Render(w, "details", data)
}

// AddForm は記事の新規作成フォームを表示する。
// GET /add
func (h *PostHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	record := middleware.SessionFromContext(r.Context())

	data := baseViewData(r)
	data["Post"] = model.NewPost("", record.Username, time.Now().UTC().Format(time.RFC1123), "")
	h.renderer.Render(w, "add", data)
}

// Add は新規作成フォームの送信を処理する。
// POST /add (multipart)
func (h *PostHandler) Add(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, false)
}

// EditForm は記事の編集フォームを表示する。
// GET /edit/{id}
func (h *PostHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	data := baseViewData(r)
	id := parseID(chi.URLParam(r, "id"))

	p, err := h.service.Find(r.Context(), id)
	if err != nil {
		slog.Error("failed to load post for edit",
			slog.Int("post_id", id),
			slog.String("error", err.Error()),
		)
		h.renderer.RenderStatus(w, data, "post_edit_load_error")
		return
	}

	data["Post"] = p
	h.renderer.Render(w, "edit", data)
}

// Edit は編集フォームの送信を処理する。
// POST /edit (multipart)
func (h *PostHandler) Edit(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, true)
}

// save は追加・編集で共有される送信処理。
// フォームフィールドをPostにデコードし、画像があればアップロード
// ディレクトリへコピーしてから、editフラグに応じて挿入または更新する。
func (h *PostHandler) save(w http.ResponseWriter, r *http.Request, edit bool) {
	data := baseViewData(r)

	statusType := "post_add_error"
	successType := "post_add_success"
	op := "create"
	if edit {
		statusType = "post_edit_error"
		successType = "post_edit_success"
		op = "update"
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		slog.Warn("failed to parse post form", slog.String("error", err.Error()))
		h.renderer.RenderStatus(w, data, statusType)
		return
	}

	// 同名フィールドが複数ある場合は最後の値を採用する
	fields := map[string]string{}
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			fields[key] = values[len(values)-1]
		}
	}

	p, err := model.DecodePostForm(fields)
	if err != nil || !p.IsValid() {
		slog.Warn("invalid fields in post form", slog.Bool("edit", edit))
		h.renderer.RenderStatus(w, data, statusType)
		return
	}

	// カバー参照はフォームの値を採用しない。新規作成は参照なしで始まり、
	// 編集は保存済みレコードの参照を引き継ぐ。
	if edit {
		existing, err := h.service.Find(r.Context(), p.ID)
		if err != nil {
			slog.Error("failed to load post before update",
				slog.Int("post_id", p.ID),
				slog.String("error", err.Error()),
			)
			h.renderer.RenderStatus(w, data, statusType)
			return
		}
		p.Cover = existing.Cover
	}

	// 画像が送信されていれば保存し、カバー参照を差し替える。
	// 以前のカバーファイルはここでは消さない（クリーンアップジョブが掃除する）。
	if file, header, err := r.FormFile("picture"); err == nil {
		defer file.Close()
		if header.Size > 0 {
			filename, err := h.covers.Save(file, header.Filename)
			if err != nil {
				slog.Error("failed to save post cover", slog.String("error", err.Error()))
				h.renderer.RenderStatus(w, data, statusType)
				return
			}
			p.Cover = filename
		}
	}

	if err := h.service.Save(r.Context(), p, edit); err != nil {
		slog.Error("failed to save post",
			slog.Bool("edit", edit),
			slog.Int("post_id", p.ID),
			slog.String("error", err.Error()),
		)
		h.renderer.RenderStatus(w, data, statusType)
		return
	}

	h.collector.RecordPostOperation(op)
	h.renderer.RenderStatus(w, data, successType)
}

// Remove は記事削除フォームの送信を処理する。
// POST /remove (urlencoded)
func (h *PostHandler) Remove(w http.ResponseWriter, r *http.Request) {
	data := baseViewData(r)

	if err := r.ParseForm(); err != nil {
		slog.Warn("failed to parse remove form", slog.String("error", err.Error()))
		h.renderer.RenderStatus(w, data, "post_remove_error")
		return
	}
	id := parseID(r.PostFormValue("id"))

	if err := h.service.Remove(r.Context(), id); err != nil {
		slog.Error("failed to remove post",
			slog.Int("post_id", id),
			slog.String("error", err.Error()),
		)
		h.renderer.RenderStatus(w, data, "post_remove_error")
		return
	}

	h.collector.RecordPostOperation("remove")
	h.renderer.RenderStatus(w, data, "post_remove_success")
}
