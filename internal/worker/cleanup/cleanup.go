// Package cleanup はセッションとカバー画像の自動掃除ジョブを提供する。
// 期限切れのセッションレコードと、どの記事からも参照されなくなった
// カバー画像ファイル（編集で差し替えられた旧カバーなど）を定期バッチで削除する。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/blogman/internal/model"
)

// SessionPruner は期限切れセッションの削除に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionPruner interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// PostLister は記事一覧の取得に必要なインターフェース。
// repository.PostRepositoryの部分集合として定義する。
type PostLister interface {
	ListAll(ctx context.Context) ([]*model.Post, error)
}

// CoverSweeper は孤児カバーファイルの列挙と削除に必要なインターフェース。
// storage.CoverStoreの部分集合として定義する。
type CoverSweeper interface {
	ListOlderThan(cutoff time.Time) ([]string, error)
	Remove(filename string) error
}

// CleanupJob は期限切れセッションと孤児カバーの自動削除ジョブ。
// 定期実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	sessions SessionPruner
	posts    PostLister
	covers   CoverSweeper
	logger   *slog.Logger

	// CoverGracePeriod より新しいファイルは掃除の対象外。
	// 保存とレコード書き込みの間にあるアップロードを誤って消さないため。
	CoverGracePeriod time.Duration
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの猶予期間は24時間。
func NewCleanupJob(sessions SessionPruner, posts PostLister, covers CoverSweeper, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		sessions:         sessions,
		posts:            posts,
		covers:           covers,
		logger:           logger,
		CoverGracePeriod: 24 * time.Hour,
	}
}

// Run は期限切れセッションと孤児カバーを削除する。
// 削除対象がない場合でもエラーにならない（冪等）。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	// 1. 期限切れセッションの削除。TTLインデックスの掃除が遅れた場合の補完。
	deletedSessions, err := j.sessions.DeleteExpired(ctx, time.Now())
	if err != nil {
		j.logger.Error("failed to delete expired sessions",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	// 2. 孤児カバーの掃除
	removedCovers, err := j.sweepOrphanCovers(ctx)
	if err != nil {
		j.logger.Error("failed to sweep orphan covers",
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to sweep orphan covers: %w", err)
	}

	j.logger.Info("cleanup job finished",
		slog.Int64("deleted_sessions", deletedSessions),
		slog.Int("removed_covers", removedCovers),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)

	return nil
}

// sweepOrphanCovers はどの記事からも参照されていないカバーファイルを削除し、
// 削除件数を返す。個々のファイル削除の失敗はログに残して続行する。
func (j *CleanupJob) sweepOrphanCovers(ctx context.Context) (int, error) {
	posts, err := j.posts.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	referenced := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		if p.Cover != "" {
			referenced[p.Cover] = struct{}{}
		}
	}

	files, err := j.covers.ListOlderThan(time.Now().Add(-j.CoverGracePeriod))
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range files {
		if _, ok := referenced[name]; ok {
			continue
		}
		if err := j.covers.Remove(name); err != nil {
			j.logger.Warn("failed to remove orphan cover",
				slog.String("cover", name),
				slog.String("error", err.Error()),
			)
			continue
		}
		removed++
	}

	return removed, nil
}
