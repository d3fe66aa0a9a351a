// Package logger уровневый логгер поверх стандартного log.
// Уровень задаётся один раз при старте через Init; до вызова Init
// пишутся сообщения уровня info и выше.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

type Level int32

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var (
	level  atomic.Int32
	output = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
)

func init() {
	level.Store(int32(InfoLevel))
}

// ParseLevel переводит строку из конфигурации в Level. Неизвестное значение: info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Init задаёт минимальный уровень логирования.
func Init(lvl string) {
	level.Store(int32(ParseLevel(lvl)))
}

// SetOutput перенаправляет вывод (используется в тестах).
func SetOutput(w io.Writer) {
	output.SetOutput(w)
}

func logf(l Level, tag, format string, args ...interface{}) {
	if Level(level.Load()) > l {
		return
	}
	_ = output.Output(3, fmt.Sprintf(tag+" "+format, args...))
}

func Debugf(format string, args ...interface{}) { logf(DebugLevel, "[DEBUG]", format, args...) }

func Infof(format string, args ...interface{}) { logf(InfoLevel, "[INFO]", format, args...) }

func Warnf(format string, args ...interface{}) { logf(WarnLevel, "[WARN]", format, args...) }

func Errorf(format string, args ...interface{}) { logf(ErrorLevel, "[ERROR]", format, args...) }

// Fatalf пишет сообщение и завершает процесс.
func Fatalf(format string, args ...interface{}) {
	_ = output.Output(2, fmt.Sprintf("[FATAL] "+format, args...))
	os.Exit(1)
}
