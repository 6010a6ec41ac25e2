package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSink appends run output to a timestamped log file under a log
// directory and maintains a latest.log symlink pointing at the most recent
// run. It is thread-safe.
type FileSink struct {
	logDir string
	file   *os.File
	path   string
	mu     sync.Mutex
}

// NewFileSink creates a FileSink writing to logDir, creating the directory
// if needed. The log file is named run-YYYYMMDD-HHMMSS.log.
func NewFileSink(logDir string) (*FileSink, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	path := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("create run log file: %w", err)
	}

	if err := updateLatestSymlink(logDir, path); err != nil {
		file.Close()
		return nil, err
	}

	return &FileSink{logDir: logDir, file: file, path: path}, nil
}

// updateLatestSymlink points latest.log at the current run log, replacing
// any previous link.
func updateLatestSymlink(logDir, target string) error {
	symlink := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlink); err == nil {
		if err := os.Remove(symlink); err != nil {
			return fmt.Errorf("remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(target), symlink); err != nil {
		return fmt.Errorf("create latest.log symlink: %w", err)
	}
	return nil
}

// Appendln appends one timestamped line to the run log.
func (fs *FileSink) Appendln(line string) {
	fs.write(line)
}

// Warnf appends a timestamped warning line to the run log.
func (fs *FileSink) Warnf(format string, args ...any) {
	fs.write(fmt.Sprintf("[WARN] "+format, args...))
}

// Focus is a no-op for files.
func (fs *FileSink) Focus() {}

// Path returns the run log file path.
func (fs *FileSink) Path() string {
	return fs.path
}

// Close flushes and closes the underlying file.
func (fs *FileSink) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return nil
	}
	err := fs.file.Close()
	fs.file = nil
	return err
}

func (fs *FileSink) write(line string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05")
	fmt.Fprintf(fs.file, "[%s] %s\n", timestamp, line)
}
