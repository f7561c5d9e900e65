package repository

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/hitoshi/blogman/internal/model"
)

// MongoSessionRepoはSessionRepositoryインターフェースを満たすことを検証
func TestMongoSessionRepo_ImplementsInterface(t *testing.T) {
	var _ SessionRepository = (*MongoSessionRepo)(nil)
}

// NewMongoSessionRepoが正しく初期化されることを検証
func TestNewMongoSessionRepo_Initializes(t *testing.T) {
	repo := NewMongoSessionRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// SessionRecordのフィールドが正しく構築されることを検証
func TestMongoSessionRepo_SessionRecord_Fields(t *testing.T) {
	now := time.Now()
	record := &model.SessionRecord{
		ID:            "session-id-1",
		Authenticated: true,
		AuthorName:    "João Silva",
		Username:      "joaosilva",
		ExpiresAt:     now.Add(24 * time.Hour),
		CreatedAt:     now,
	}

	if record.ID != "session-id-1" {
		t.Errorf("record.ID = %q, want %q", record.ID, "session-id-1")
	}
	if !record.Authenticated {
		t.Error("record.Authenticated = false, want true")
	}
	if record.AuthorName != "João Silva" {
		t.Errorf("record.AuthorName = %q, want %q", record.AuthorName, "João Silva")
	}
	if record.Username != "joaosilva" {
		t.Errorf("record.Username = %q, want %q", record.Username, "joaosilva")
	}
}

// 匿名レコードは未認証であることを検証
func TestMongoSessionRepo_AnonymousRecord(t *testing.T) {
	record := model.Anonymous()
	if record.Authenticated {
		t.Error("anonymous record must not be authenticated")
	}
	if record.ID != "" {
		t.Errorf("record.ID = %q, want empty", record.ID)
	}
}

// 不在・期限切れのセッションがエラーではなくnilとして返ることを検証。
// 検索クエリ自体が有効期限で絞り込むため、期限切れは不在と同じ扱いになる。
func TestMongoSessionRepo_FindByID_AbsentIsNil(t *testing.T) {
	mt := newMockMT(t)

	mt.Run("empty result", func(mt *mtest.T) {
		repo := NewMongoSessionRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mockNamespace(mt), mtest.FirstBatch))

		record, err := repo.FindByID(context.Background(), "session-123")
		if err != nil {
			mt.Fatalf("FindByID() error = %v", err)
		}
		if record != nil {
			mt.Errorf("record = %+v, want nil", record)
		}

		ev := mt.GetStartedEvent()
		if ev == nil || ev.CommandName != "find" {
			mt.Fatalf("command should be find, got %+v", ev)
		}
		if v := ev.Command.Lookup("filter", "expires_at", "$gt"); v.Value == nil {
			mt.Error("find filter should bound expires_at")
		}
	})
}

// DeleteExpiredが削除件数を返すことを検証
func TestMongoSessionRepo_DeleteExpired_ReturnsCount(t *testing.T) {
	mt := newMockMT(t)

	mt.Run("four expired sessions", func(mt *mtest.T) {
		repo := NewMongoSessionRepo(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 4}))

		deleted, err := repo.DeleteExpired(context.Background(), time.Now())
		if err != nil {
			mt.Fatalf("DeleteExpired() error = %v", err)
		}
		if deleted != 4 {
			mt.Errorf("deleted = %d, want 4", deleted)
		}
	})
}
