// Package storage はカバー画像のディスク保存を提供する。
// 画像はドキュメントストアの外、アップロードディレクトリに置かれ、
// 記事ドキュメントはファイル名のみを保持する。
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CoverStore はアップロードディレクトリ配下のカバー画像を管理する。
type CoverStore struct {
	dir string
}

// NewCoverStore はCoverStoreを生成する。ディレクトリがなければ作成する。
func NewCoverStore(dir string) (*CoverStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &CoverStore{dir: dir}, nil
}

// Dir はアップロードディレクトリのパスを返す。読み取り専用の静的配信に使う。
func (s *CoverStore) Dir() string {
	return s.dir
}

// Save はアップロードされた画像をサーバー側で決めたファイル名で保存し、
// そのファイル名を返す。ファイル名はuuidと元ファイルの拡張子から生成する。
func (s *CoverStore) Save(src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	filename := uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, filename))
	if err != nil {
		return "", fmt.Errorf("failed to create cover file: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}
	if written == 0 {
		os.Remove(dst.Name())
		return "", fmt.Errorf("uploaded cover file is empty")
	}

	return filename, nil
}

// Remove は指定のカバーファイルを削除する。
// 空のファイル名は何もしない。パス区切りを含む名前はアップロード
// ディレクトリ外への到達を防ぐため拒否する。
func (s *CoverStore) Remove(filename string) error {
	if filename == "" {
		return nil
	}
	if filename != filepath.Base(filename) {
		return fmt.Errorf("invalid cover filename: %s", filename)
	}
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil {
		return fmt.Errorf("failed to remove cover file: %w", err)
	}
	return nil
}

// ListOlderThan はcutoffより前に更新されたファイル名の一覧を返す。
// クリーンアップジョブの孤児掃除で使用する。更新が新しいファイルを
// 除外するのは、保存直後でまだ記事に参照が書かれていない画像を
// 誤って消さないため。
func (s *CoverStore) ListOlderThan(cutoff time.Time) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
