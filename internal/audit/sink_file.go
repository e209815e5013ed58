package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileSink appends one JSON event per line to a local file.
type FileSink struct {
	path string

	mu     sync.Mutex
	closed bool
	file   *os.File
	buf    *bufio.Writer
	enc    *json.Encoder
}

// NewFileSink opens (or creates) the JSONL file at path. Audit lines can
// carry policy previews at the `full` logging level, so the file and its
// directory are created private to the service user.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, fmt.Errorf("audit file sink needs a path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create audit dir %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit file %s: %w", path, err)
	}
	buf := bufio.NewWriter(f)
	return &FileSink{
		path: path,
		file: f,
		buf:  buf,
		enc:  json.NewEncoder(buf),
	}, nil
}

func (s *FileSink) Name() string { return "file:" + s.path }

// Deliver appends the event and flushes so a crash loses at most the
// event being written.
func (s *FileSink) Deliver(_ context.Context, ev *Event) error {
	if ev == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("audit file %s already closed", s.path)
	}
	if err := s.enc.Encode(ev); err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("flush %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
