package database

import (
	"embed"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratemongo "github.com/golang-migrate/migrate/v4/database/mongodb"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.mongodb.org/mongo-driver/mongo"
)

//go:embed migrations/*.json
var migrationsFS embed.FS

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// マイグレーションファイルはMongoDBコマンドのJSON配列で、埋め込みFSから読み込む。
func NewMigrator(client *mongo.Client, dbName string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := migratemongo.WithInstance(client, &migratemongo.Config{
		DatabaseName: dbName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations はすべてのマイグレーションを適用する。
// ユニークインデックスとTTLインデックスの作成、シーケンス・著者・記事の
// シード投入を行う。すでに最新の場合はエラーなしで返る。
func RunMigrations(client *mongo.Client, dbName string) error {
	m, err := NewMigrator(client, dbName)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
