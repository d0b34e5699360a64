package sift

import (
	"fmt"
	"io"
	"os"
)

// Spool buffers the message body in a temporary file so that every stage can
// read it from the beginning. Stdin is consumed exactly once, at creation.
type Spool struct {
	file    *os.File
	size    int64
	removed bool
}

// NewSpool drains r into a fresh temporary file.
func NewSpool(r io.Reader) (*Spool, error) {
	f, err := os.CreateTemp("", "sift-spool-")
	if err != nil {
		return nil, fmt.Errorf("spool create error: %w", err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("spool write error: %w", err)
	}
	return &Spool{file: f, size: n}, nil
}

// Reader rewinds the spool and returns it for a full read. Each stage calls
// this before feeding the message to its tool.
func (s *Spool) Reader() (io.Reader, error) {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("spool seek error: %w", err)
	}
	return s.file, nil
}

// Bytes returns the whole message.
func (s *Spool) Bytes() ([]byte, error) {
	r, err := s.Reader()
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("spool read error: %w", err)
	}
	return b, nil
}

// Replace swaps the spool contents for b. The signer uses this after
// rewriting the message.
func (s *Spool) Replace(b []byte) error {
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("spool truncate error: %w", err)
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("spool seek error: %w", err)
	}
	n, err := s.file.Write(b)
	if err != nil {
		return fmt.Errorf("spool write error: %w", err)
	}
	s.size = int64(n)
	return nil
}

// Size returns the current spool length in bytes.
func (s *Spool) Size() int64 {
	return s.size
}

// Name returns the backing file path.
func (s *Spool) Name() string {
	return s.file.Name()
}

// Remove closes and deletes the backing file. Safe to call more than once.
func (s *Spool) Remove() error {
	if s.removed {
		return nil
	}
	s.removed = true
	name := s.file.Name()
	s.file.Close()
	return os.Remove(name)
}
