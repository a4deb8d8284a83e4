// Package testutil 测试辅助
package testutil

import (
	"log/slog"
	"strings"
	"testing"
)

// NewTestLogger 返回写入 t.Log 的 Debug 级日志器，仅在失败或 -v 时可见
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tbWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type tbWriter struct {
	t testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
