package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は著者のログイン・ログアウトを処理する。
type Service struct {
	authors  repository.AuthorRepository
	sessions repository.SessionRepository
	config   ServiceConfig
}

// NewService はServiceを生成する。
func NewService(authors repository.AuthorRepository, sessions repository.SessionRepository, config ServiceConfig) *Service {
	return &Service{
		authors:  authors,
		sessions: sessions,
		config:   config,
	}
}

// Login は資格情報を検証し、認証済みセッションレコードを作成して返す。
// usernameが存在しない場合もパスワードが一致しない場合も、同一の
// CredentialMismatchエラーを返す。アカウントの存在有無を確認させないため。
func (s *Service) Login(ctx context.Context, username, password string) (*model.SessionRecord, error) {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil, model.NewCredentialMismatchError()
	}

	author, err := s.authors.FindByUsername(ctx, username)
	if err != nil {
		if model.IsKind(err, model.KindNotFound) {
			return nil, model.NewCredentialMismatchError()
		}
		return nil, fmt.Errorf("failed to look up author for login: %w", err)
	}

	if !VerifyPassword(password, author.Password) {
		return nil, model.NewCredentialMismatchError()
	}

	now := time.Now()
	record := &model.SessionRecord{
		ID:            uuid.NewString(),
		Authenticated: true,
		AuthorName:    author.Fullname,
		Username:      author.Username,
		ExpiresAt:     now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt:     now,
	}

	if err := s.sessions.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return record, nil
}

// Logout はセッションレコードを削除する。
// 存在しないセッションidに対しても成功として扱う（冪等）。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
