// Package logger はブログサービス共通のJSON構造化ログ設定を提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
)

// serviceName は全ログ行のservice属性に入る識別子。
// webとworkerのコンテナは同じログストリームに書くため、行単位で
// どのサービスの出力かを識別できるようにする。
const serviceName = "blogman"

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// 全行にservice属性が付与される。
func Setup(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	return slog.New(handler).With(slog.String("service", serviceName))
}

// SetupDefault はJSON構造化ログ出力をグローバルロガーとして設定する。
// writerが指定された場合はそのwriterに出力する。
// 本番ではos.Stdoutを渡すことを想定している。
func SetupDefault(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	logger := Setup(w)
	slog.SetDefault(logger)
}
