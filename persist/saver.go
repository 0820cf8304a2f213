// Package persist writes composed documents to disk.
package persist

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foomo/mdclip/service/vo"
)

// ErrNoPrompter is returned when a save needs a location but nobody can be asked
var ErrNoPrompter = errors.New("no prompter to ask for a save location")

// Prompter asks the user where to save a file
type Prompter interface {
	PromptLocation(ctx context.Context, suggested string) (string, error)
}

// Saver is the persistence collaborator
type Saver struct {
	dir      string
	prompter Prompter
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Saver)

func WithPrompter(p Prompter) Option {
	return func(s *Saver) {
		s.prompter = p
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Saver) {
		s.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Saver) {
		s.now = now
	}
}

// NewSaver creates a Saver writing silent saves into dir
func NewSaver(dir string, opts ...Option) *Saver {
	s := &Saver{
		dir:    dir,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultDir is the user's download folder, falling back to the working directory
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// Save writes the content and returns the path it was written to.
// With AutoSave the file lands in the default location, otherwise the prompter picks it.
func (s *Saver) Save(ctx context.Context, req vo.SaveRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, Filename(req.Title, s.now()))
	if !req.AutoSave {
		if s.prompter == nil {
			return "", ErrNoPrompter
		}
		chosen, err := s.prompter.PromptLocation(ctx, path)
		if err != nil {
			return "", fmt.Errorf("failed to prompt for location: %w", err)
		}
		path = chosen
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(req.Content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	s.logger.Info("saved document", zap.String("path", path), zap.Bool("autoSave", req.AutoSave))
	return path, nil
}

// SaveAsync starts a save without waiting for it. Failures are logged only.
// The returned channel is closed once the attempt finished.
func (s *Saver) SaveAsync(ctx context.Context, req vo.SaveRequest) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := s.Save(ctx, req); err != nil {
			s.logger.Warn("failed to save document", zap.String("title", req.Title), zap.Error(err))
		}
	}()
	return done
}

// StdinPrompter asks on a terminal. An empty answer accepts the suggestion,
// a directory answer keeps the suggested file name.
type StdinPrompter struct {
	In  io.Reader
	Out io.Writer

	mu     sync.Mutex
	reader *bufio.Reader
}

func (p *StdinPrompter) PromptLocation(ctx context.Context, suggested string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	fmt.Fprintf(p.Out, "Save as [%s]: ", suggested)
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return suggested, nil
	}
	if info, err := os.Stat(answer); err == nil && info.IsDir() {
		return filepath.Join(answer, filepath.Base(suggested)), nil
	}
	return answer, nil
}
