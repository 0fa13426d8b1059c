package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
)

var (
	ErrClosed    = errors.New("scanner closed")
	ErrEmptyCode = errors.New("scanner produced an empty code")
)

// Source is a lazy, finite sequence of decoded QR strings. Next returns
// io.EOF once the device has nothing more to give.
type Source interface {
	Next(ctx context.Context) (string, error)
	Close() error
}

// Opener acquires a device for one scan session.
type Opener func(ctx context.Context) (Source, error)

// ScanOnce opens a device, reads at most one code and releases the device,
// also when ctx is cancelled while waiting.
func ScanOnce(ctx context.Context, open Opener) (code string, err error) {
	src, err := open(ctx)
	if err != nil {
		return "", fmt.Errorf("open scanner: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("release scanner: %w", cerr)
		}
	}()

	code, err = src.Next(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("scanner finished without a code: %w", err)
		}
		return "", err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", ErrEmptyCode
	}
	return code, nil
}

// Static is a Source over a fixed list, used for typed codes and in tests.
type Static struct {
	mu     sync.Mutex
	codes  []string
	closed bool
}

func NewStatic(codes ...string) *Static {
	return &Static{codes: codes}
}

func (s *Static) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrClosed
	}
	if len(s.codes) == 0 {
		return "", io.EOF
	}
	code := s.codes[0]
	s.codes = s.codes[1:]
	return code, nil
}

func (s *Static) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Static) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
