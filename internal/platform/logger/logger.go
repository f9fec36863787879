// Package logger は log/slog のデフォルトロガーを構成します。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options はロガーの出力設定です。
type Options struct {
	Level string
	// File が空でない場合、標準出力に加えてローテーションされるファイルにも出力する
	File string
}

// ParseLevel はログレベル文字列を slog.Level に変換します。未知の値は Info 扱い。
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New はJSON形式のslogロガーを作成します。
// 戻り値のio.Closerはファイル出力を閉じるためのもので、ファイル出力なしの場合も非nilです。
func New(stdout io.Writer, opts Options) (*slog.Logger, io.Closer) {
	var (
		w                = stdout
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w = io.MultiWriter(stdout, lj)
		closer = lj
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(opts.Level)})
	return slog.New(h), closer
}

// Setup はロガーを作成し slog のデフォルトに設定します。
func Setup(opts Options) io.Closer {
	l, closer := New(os.Stdout, opts)
	slog.SetDefault(l)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
