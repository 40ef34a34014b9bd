package store

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
)

// FileStore is an append-only JSON-lines implementation of shortener.Repository.
//
// Lookups scan the whole file, so their cost grows with every record ever
// written. Expired lines are never removed.
type FileStore struct {
	guard

	file *os.File
	sync bool
	now  shortener.Clock

	// tornTail is set while the log does not end in a newline.
	tornTail bool
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithFileSync makes every Save fsync the file after appending.
func WithFileSync() FileOption {
	return func(s *FileStore) { s.sync = true }
}

// WithFileClock overrides the clock used to evaluate expiry.
func WithFileClock(clock shortener.Clock) FileOption {
	return func(s *FileStore) { s.now = clock }
}

// OpenFileStore opens (creating if absent) the log at path for read and append.
func OpenFileStore(path string, opts ...FileOption) (*FileStore, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open file store %q: %w", path, err)
	}

	return NewFileStore(file, opts...), nil
}

// NewFileStore creates a FileStore over an already opened file.
// The file must be opened for reading and appending.
func NewFileStore(file *os.File, opts ...FileOption) *FileStore {
	s := &FileStore{
		file:     file,
		now:      time.Now,
		tornTail: endsTorn(file),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *FileStore) Save(_ context.Context, shortURL *shortener.ShortURL) (shortener.Hash, error) {
	const op = "file.save"

	release, err := s.acquire(op)
	if err != nil {
		return "", err
	}
	defer release()

	line, err := json.Marshal(shortURL)
	if err != nil {
		return "", shortener.E(op, shortener.KindErrorOnSave, err)
	}

	record := append(line, '\n')
	if s.tornTail {
		record = append([]byte{'\n'}, record...)
	}

	// One write per record keeps a torn line to at most the last record.
	if _, err = s.file.Write(record); err != nil {
		s.tornTail = true

		return "", shortener.E(op, shortener.KindErrorOnSave, err)
	}

	s.tornTail = false

	if s.sync {
		if err = s.file.Sync(); err != nil {
			return "", shortener.E(op, shortener.KindErrorOnSave, err)
		}
	}

	return shortURL.Hash, nil
}

func (s *FileStore) Find(_ context.Context, hash shortener.Hash) (*shortener.ShortURL, bool, error) {
	const op = "file.find"

	release, err := s.acquire(op)
	if err != nil {
		return nil, false, err
	}
	defer release()

	now := s.now()

	// ReadAt leaves the append offset untouched.
	reader := bufio.NewReader(io.NewSectionReader(s.file, 0, math.MaxInt64))

	for {
		line, readErr := reader.ReadBytes('\n')

		if record, ok := parseLine(line); ok && record.Hash == hash && !record.IsExpired(now) {
			return record, true, nil
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil, false, nil
			}

			return nil, false, shortener.E(op, shortener.KindUndefined, readErr)
		}
	}
}

// endsTorn reports whether a non-empty file lacks a trailing newline,
// which happens when a previous process died mid-write.
func endsTorn(file *os.File) bool {
	info, err := file.Stat()
	if err != nil || info.Size() == 0 {
		return false
	}

	last := make([]byte, 1)
	if _, err = file.ReadAt(last, info.Size()-1); err != nil {
		return false
	}

	return last[0] != '\n'
}

// parseLine decodes one log line. Blank, torn or otherwise invalid lines are
// reported as not ok so the scan can skip them.
func parseLine(line []byte) (*shortener.ShortURL, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, false
	}

	var record shortener.ShortURL
	if err := json.Unmarshal(line, &record); err != nil {
		return nil, false
	}

	return &record, true
}

// Ping checks that the log file is still accessible.
func (s *FileStore) Ping(_ context.Context) error {
	_, err := s.file.Stat()

	return err
}

// Shutdown closes the underlying file.
func (s *FileStore) Shutdown() error {
	return s.file.Close()
}

// Compile-time check.
var _ shortener.Repository = (*FileStore)(nil)
