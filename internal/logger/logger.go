package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const maxBufferSize = 1000

// mu guards instance and every field of it.
var (
	instance *Logger
	mu       sync.Mutex
)

type LogEntry struct {
	Timestamp time.Time
	Message   string
}

type Logger struct {
	file    *os.File
	zl      *zap.Logger
	buffer  []LogEntry
	enabled bool
}

// Init opens logPath for appending and routes every entry to it as JSON.
// Entries are always kept in the in-memory buffer, even without a file.
// Calling Init while a file is open does nothing.
func Init(logPath string, verbose bool) error {
	mu.Lock()
	defer mu.Unlock()

	l := ensureInitLocked()
	if l.file != nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), level)

	l.file = file
	l.zl = zap.New(core)
	l.enabled = true
	return nil
}

func EnsureInit() {
	mu.Lock()
	defer mu.Unlock()
	ensureInitLocked()
}

func ensureInitLocked() *Logger {
	if instance == nil {
		instance = &Logger{
			zl:     zap.NewNop(),
			buffer: make([]LogEntry, 0, maxBufferSize),
		}
	}
	return instance
}

// Close flushes and closes the log file. Later entries only reach the
// buffer.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if instance == nil || instance.file == nil {
		return nil
	}
	_ = instance.zl.Sync()
	err := instance.file.Close()
	instance.file = nil
	instance.zl = zap.NewNop()
	instance.enabled = false
	return err
}

// emit buffers message and, while a file is open, hands the zap logger to
// write. Both happen under mu so Close cannot pull the file out from under
// a write.
func emit(message string, write func(zl *zap.Logger)) {
	mu.Lock()
	defer mu.Unlock()

	l := ensureInitLocked()
	if len(l.buffer) >= maxBufferSize {
		l.buffer = l.buffer[1:]
	}
	l.buffer = append(l.buffer, LogEntry{Timestamp: time.Now(), Message: message})

	if l.enabled {
		write(l.zl)
	}
}

func GetLogs() []LogEntry {
	mu.Lock()
	defer mu.Unlock()

	l := ensureInitLocked()
	logs := make([]LogEntry, len(l.buffer))
	copy(logs, l.buffer)
	return logs
}

func LogFileOpen(path string) {
	emit(fmt.Sprintf("[FILE_OPEN] %s", path), func(zl *zap.Logger) {
		zl.Debug("file open", zap.String("path", path))
	})
}

func LogFileWrite(path string) {
	emit(fmt.Sprintf("[FILE_WRITE] %s", path), func(zl *zap.Logger) {
		zl.Debug("file write", zap.String("path", path))
	})
}

func LogError(operation, target string, err error) {
	emit(fmt.Sprintf("[ERROR] %s: %s - %v", operation, target, err), func(zl *zap.Logger) {
		zl.Error(operation, zap.String("target", target), zap.Error(err))
	})
}

// LogHTTP records one completed round trip. A status of 0 means the request
// never produced a response.
func LogHTTP(method, url string, status int, duration time.Duration, requestID string) {
	emit(fmt.Sprintf("[HTTP] %s %s -> %d (%v) id=%s", method, url, status, duration, requestID), func(zl *zap.Logger) {
		zl.Info("http",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("request_id", requestID),
		)
	})
}

func Log(message string, args ...interface{}) {
	text := fmt.Sprintf(message, args...)
	emit("[INFO] "+text, func(zl *zap.Logger) {
		zl.Info(text)
	})
}

// LogDebug only reaches the log file when Init was called with verbose set.
func LogDebug(message string, args ...interface{}) {
	text := fmt.Sprintf(message, args...)
	emit("[DEBUG] "+text, func(zl *zap.Logger) {
		zl.Debug(text)
	})
}
