package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// loggedStream wraps a stream and copies everything read from and
// written to it into a file.
type loggedStream struct {
	inner   io.ReadWriteCloser
	logFile *os.File
	mu      sync.Mutex // read and write halves run concurrently
	once    sync.Once
}

func (ls *loggedStream) Read(b []byte) (int, error) {
	n, err := ls.inner.Read(b)
	if n > 0 {
		if werr := ls.record(b[:n]); werr != nil {
			return 0, fmt.Errorf("reading: %w", werr)
		}
	}
	return n, err
}

func (ls *loggedStream) Write(b []byte) (int, error) {
	n, err := ls.inner.Write(b)
	if n > 0 {
		if werr := ls.record(b[:n]); werr != nil {
			return 0, fmt.Errorf("writing: %w", werr)
		}
	}
	return n, err
}

func (ls *loggedStream) record(b []byte) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	_, err := ls.logFile.Write(b)
	return err
}

// CloseWrite forwards a half-close if the wrapped stream supports it.
func (ls *loggedStream) CloseWrite() error {
	if cw, ok := ls.inner.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return ls.Close()
}

// Flush forwards to the wrapped stream if it buffers writes.
func (ls *loggedStream) Flush() error {
	if f, ok := ls.inner.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

func (ls *loggedStream) Close() error {
	err := ls.inner.Close()
	ls.once.Do(func() { _ = ls.logFile.Close() })
	return err
}

// NewLoggedStream wraps a stream to log all data read from and written to it.
// The log file is created or appended to at the specified path.
func NewLoggedStream(s io.ReadWriteCloser, logFilePath string) (io.ReadWriteCloser, error) {
	logFile, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &loggedStream{inner: s, logFile: logFile}, nil
}
