package host

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ansi prefixes match the original LoggerSystem's log_parameters
// calls byte-for-byte — this is an external wire contract (§6.1's
// per-app log file), not a diagnostic stream, so it is written
// directly rather than through zap's own encoder.
const (
	ansiWhite  = "\x1b[37m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiRed    = "\x1b[31m"
	ansiReset  = "\x1b[0m"
)

// ZapLogger is the default Logger adapter: zap carries the runtime's
// own operational log lines (file opened, directory or file could not
// be created); the per-app log file
// itself is written with the fixed ANSI-prefixed lines §6.1/§6.2
// mandate.
type ZapLogger struct {
	ops     *zap.Logger
	dateDir string
	file    *os.File
}

// NewZapLogger creates today's log directory (logs/<YYYY-MM-DD>) under
// logsDir and returns a Logger that will open one file per loaded app
// inside it.
func NewZapLogger(ops *zap.Logger, logsDir string) *ZapLogger {
	dir := filepath.Join(logsDir, time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		ops.Warn("could not create log directory", zap.String("dir", dir), zap.Error(err))
	}
	return &ZapLogger{ops: ops, dateDir: dir}
}

// CreateFileFor closes any currently open app log file and opens a
// fresh one for appName, truncating if it already exists (the
// original's File::create semantics).
func (l *ZapLogger) CreateFileFor(appName string) error {
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
	path := filepath.Join(l.dateDir, appName+".log")
	f, err := os.Create(path)
	if err != nil {
		l.ops.Warn("could not open app log file", zap.String("path", path), zap.Error(err))
		return err
	}
	l.file = f
	l.ops.Info("opened app log file", zap.String("app", appName), zap.String("path", path))
	return nil
}

// Close releases the currently open app log file, if any.
func (l *ZapLogger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *ZapLogger) SystemLognSuccess(message string) {
	l.writeln(ansiGreen + "APC_SUC: " + message + ansiReset)
}

func (l *ZapLogger) SystemLognError(message string) {
	l.writeln(ansiRed + "APC_ERR: " + message + ansiReset)
}

func (l *ZapLogger) writeln(line string) {
	if l.file == nil {
		return
	}
	fmt.Fprintln(l.file, line)
}

func (l *ZapLogger) LogInfo(params []string)    { l.logParameters(params, ansiWhite+"INF: ", ansiReset) }
func (l *ZapLogger) LognInfo(params []string)   { l.logParameters(params, ansiWhite+"INF: ", ansiReset+"\n") }
func (l *ZapLogger) LogSuccess(params []string) { l.logParameters(params, ansiGreen+"SUC: ", ansiReset) }
func (l *ZapLogger) LognSuccess(params []string) {
	l.logParameters(params, ansiGreen+"SUC: ", ansiReset+"\n")
}
func (l *ZapLogger) LogWarning(params []string) { l.logParameters(params, ansiYellow+"WRN: ", ansiReset) }
func (l *ZapLogger) LognWarning(params []string) {
	l.logParameters(params, ansiYellow+"WRN: ", ansiReset+"\n")
}
func (l *ZapLogger) LogError(params []string) { l.logParameters(params, ansiRed+"ERR: ", ansiReset) }
func (l *ZapLogger) LognError(params []string) {
	l.logParameters(params, ansiRed+"ERR: ", ansiReset+"\n")
}

func (l *ZapLogger) logParameters(params []string, prefix, suffix string) {
	if l.file == nil {
		return
	}
	fmt.Fprint(l.file, prefix)
	for _, p := range params {
		fmt.Fprint(l.file, p)
	}
	fmt.Fprint(l.file, suffix)
}
