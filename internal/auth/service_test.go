package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/blogman/internal/model"
)

type mockAuthorRepo struct {
	findByUsernameFn func(ctx context.Context, username string) (*model.Author, error)
}

func (m *mockAuthorRepo) FindByUsername(ctx context.Context, username string) (*model.Author, error) {
	return m.findByUsernameFn(ctx, username)
}

type mockSessionRepo struct {
	createFn   func(ctx context.Context, record *model.SessionRecord) error
	deleteFn   func(ctx context.Context, id string) error
	created    *model.SessionRecord
	deletedIDs []string
}

func (m *mockSessionRepo) Create(ctx context.Context, record *model.SessionRecord) error {
	m.created = record
	if m.createFn != nil {
		return m.createFn(ctx, record)
	}
	return nil
}

func (m *mockSessionRepo) FindByID(ctx context.Context, id string) (*model.SessionRecord, error) {
	return nil, nil
}

func (m *mockSessionRepo) DeleteByID(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func testAuthor(t *testing.T, password string) *model.Author {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return &model.Author{
		ID:       1,
		Username: "joaosilva",
		Fullname: "João Silva",
		Email:    "joao@example.com",
		Password: hash,
	}
}

func TestLogin_Success_CreatesAuthenticatedSession(t *testing.T) {
	author := testAuthor(t, "123456")
	authors := &mockAuthorRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Author, error) {
			if username != "joaosilva" {
				t.Errorf("looked up username %q, want joaosilva", username)
			}
			return author, nil
		},
	}
	sessions := &mockSessionRepo{}

	svc := NewService(authors, sessions, ServiceConfig{SessionMaxAge: 3600})

	record, err := svc.Login(context.Background(), "joaosilva", "123456")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if record.ID == "" {
		t.Error("session id should be generated")
	}
	if !record.Authenticated {
		t.Error("session should be authenticated")
	}
	if record.AuthorName != "João Silva" {
		t.Errorf("AuthorName = %q, want the fullname", record.AuthorName)
	}
	if record.Username != "joaosilva" {
		t.Errorf("Username = %q, want joaosilva", record.Username)
	}
	if !record.ExpiresAt.After(record.CreatedAt) {
		t.Error("ExpiresAt should be after CreatedAt")
	}
	if sessions.created == nil {
		t.Fatal("session record should be persisted")
	}
	if sessions.created.ID != record.ID {
		t.Error("persisted record should be the returned record")
	}
}

// TestLogin_UniformFailure はユーザー未存在とパスワード不一致が
// 同一のエラーになることを検証する。アカウント列挙を防ぐため。
func TestLogin_UniformFailure(t *testing.T) {
	author := testAuthor(t, "123456")

	tests := []struct {
		name     string
		username string
		password string
		findFn   func(ctx context.Context, username string) (*model.Author, error)
	}{
		{
			name:     "unknown username",
			username: "ghost",
			password: "123456",
			findFn: func(ctx context.Context, username string) (*model.Author, error) {
				return nil, model.NewAuthorNotFoundError(username)
			},
		},
		{
			name:     "wrong password",
			username: "joaosilva",
			password: "654321",
			findFn: func(ctx context.Context, username string) (*model.Author, error) {
				return author, nil
			},
		},
		{
			name:     "empty username",
			username: "   ",
			password: "123456",
			findFn: func(ctx context.Context, username string) (*model.Author, error) {
				t.Error("repository should not be queried for a blank username")
				return nil, nil
			},
		},
		{
			name:     "empty password",
			username: "joaosilva",
			password: "",
			findFn: func(ctx context.Context, username string) (*model.Author, error) {
				t.Error("repository should not be queried for a blank password")
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &mockSessionRepo{}
			svc := NewService(&mockAuthorRepo{findByUsernameFn: tt.findFn}, sessions, ServiceConfig{SessionMaxAge: 3600})

			_, err := svc.Login(context.Background(), tt.username, tt.password)
			if !model.IsKind(err, model.KindCredentialMismatch) {
				t.Errorf("KindOf(err) = %q, want %q", model.KindOf(err), model.KindCredentialMismatch)
			}
			if sessions.created != nil {
				t.Error("no session should be created on failed login")
			}
		})
	}
}

// TestLogin_StoreFailureIsNotMismatch はストア障害がログイン失敗と
// 区別されることを検証する。
func TestLogin_StoreFailureIsNotMismatch(t *testing.T) {
	authors := &mockAuthorRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Author, error) {
			return nil, model.NewStoreUnavailableError("author.FindByUsername", errors.New("timeout"))
		},
	}
	svc := NewService(authors, &mockSessionRepo{}, ServiceConfig{SessionMaxAge: 3600})

	_, err := svc.Login(context.Background(), "joaosilva", "123456")
	if err == nil {
		t.Fatal("expected error")
	}
	if model.IsKind(err, model.KindCredentialMismatch) {
		t.Error("store failures should not be reported as credential mismatch")
	}
}

func TestLogin_SessionCreateFailure(t *testing.T) {
	author := testAuthor(t, "123456")
	authors := &mockAuthorRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.Author, error) {
			return author, nil
		},
	}
	sessions := &mockSessionRepo{
		createFn: func(ctx context.Context, record *model.SessionRecord) error {
			return model.NewStoreUnavailableError("session.Create", errors.New("timeout"))
		},
	}
	svc := NewService(authors, sessions, ServiceConfig{SessionMaxAge: 3600})

	if _, err := svc.Login(context.Background(), "joaosilva", "123456"); err == nil {
		t.Fatal("expected error when session cannot be persisted")
	}
}

func TestLogout_DeletesSession(t *testing.T) {
	sessions := &mockSessionRepo{}
	svc := NewService(&mockAuthorRepo{}, sessions, ServiceConfig{SessionMaxAge: 3600})

	if err := svc.Logout(context.Background(), "session-123"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if len(sessions.deletedIDs) != 1 || sessions.deletedIDs[0] != "session-123" {
		t.Errorf("deletedIDs = %v, want [session-123]", sessions.deletedIDs)
	}
}

func TestLogout_EmptySessionIDIsNoop(t *testing.T) {
	sessions := &mockSessionRepo{}
	svc := NewService(&mockAuthorRepo{}, sessions, ServiceConfig{SessionMaxAge: 3600})

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if len(sessions.deletedIDs) != 0 {
		t.Errorf("no delete should be issued, got %v", sessions.deletedIDs)
	}
}
