// Package post は記事のワークフロー（一覧・詳細・保存・削除）を提供する。
package post

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// PostAuthor は記事とその著者を結合したビュー向けの構造体。
type PostAuthor struct {
	Post   *model.Post
	Author *model.Author
}

// CoverRemover はカバー画像の削除に必要なインターフェース。
// storage.CoverStoreの部分集合として定義する。
type CoverRemover interface {
	Remove(filename string) error
}

// Service は記事ワークフローを処理する。
type Service struct {
	posts   repository.PostRepository
	authors repository.AuthorRepository
	covers  CoverRemover
	logger  *slog.Logger
}

// NewService はServiceを生成する。
func NewService(posts repository.PostRepository, authors repository.AuthorRepository, covers CoverRemover, logger *slog.Logger) *Service {
	return &Service{
		posts:   posts,
		authors: authors,
		covers:  covers,
		logger:  logger,
	}
}

// joinPostAuthors はpostsとauthorsのコレクションをアプリケーション側で結合する。
// ストア側の$lookup集約の代わりに、記事ごとにusernameで著者を解決する。
// いずれかの記事で著者解決に失敗した場合は操作全体が失敗する。
func (s *Service) joinPostAuthors(ctx context.Context, posts []*model.Post) ([]PostAuthor, error) {
	joined := make([]PostAuthor, 0, len(posts))

	for _, p := range posts {
		author, err := s.authors.FindByUsername(ctx, p.Author)
		if err != nil {
			return nil, fmt.Errorf("failed to join post and author: post_id=%d: %w", p.ID, err)
		}
		joined = append(joined, PostAuthor{Post: p, Author: author})
	}

	return joined, nil
}

// ListWithAuthors は全記事を著者情報付きで返す。
func (s *Service) ListWithAuthors(ctx context.Context) ([]PostAuthor, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return s.joinPostAuthors(ctx, posts)
}

// DetailsWithAuthor は指定idの記事を著者情報付きで返す。
func (s *Service) DetailsWithAuthor(ctx context.Context, id int) (*PostAuthor, error) {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	joined, err := s.joinPostAuthors(ctx, []*model.Post{p})
	if err != nil {
		return nil, err
	}

	return &joined[0], nil
}

// Find は指定idの記事を返す。編集フォームのプリフィルで使用する。
func (s *Service) Find(ctx context.Context, id int) (*model.Post, error) {
	return s.posts.FindByID(ctx, id)
}

// Save は追加・編集で共有される保存処理。editがtrueなら既存記事の
// 全置換、falseなら新規挿入を行う。書き込み前にIsValidを検証する。
func (s *Service) Save(ctx context.Context, p *model.Post, edit bool) error {
	if !p.IsValid() {
		return model.NewInvalidInputError("post.Save", "title/author/date/content")
	}

	if edit {
		modified, err := s.posts.Update(ctx, p)
		if err != nil {
			return fmt.Errorf("failed to update post: id=%d: %w", p.ID, err)
		}
		if !modified {
			// 同一内容での置換と不在idはどちらも変更なしとなり、失敗として報告する。
			return fmt.Errorf("post.Save: update modified no document: id=%d", p.ID)
		}
		return nil
	}

	if _, err := s.posts.Insert(ctx, p); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// Remove は指定idの記事を削除する。
// 先に記事を取得してカバーファイル名を知り、カバーファイルをベストエフォートで
// 削除してからレコードを削除する。ファイル削除の失敗はログに残すだけで、
// レコード削除を中断しない。成功はレコード削除の成否のみで判定する。
func (s *Service) Remove(ctx context.Context, id int) error {
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if p.Cover != "" {
		if err := s.covers.Remove(p.Cover); err != nil {
			s.logger.Warn("failed to remove cover file",
				slog.Int("post_id", id),
				slog.String("cover", p.Cover),
				slog.String("error", err.Error()),
			)
		}
	}

	removed, err := s.posts.RemoveByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to remove post: id=%d: %w", id, err)
	}
	if !removed {
		return model.NewPostNotFoundError(id)
	}

	return nil
}
