package service

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/foomo/mdclip/compose"
	"github.com/foomo/mdclip/locate"
	"github.com/foomo/mdclip/service/vo"
	"github.com/foomo/mdclip/tags"
)

type Service interface {
	Clip(ctx context.Context, page *locate.Page, opts ClipOptions) (*vo.Clip, error)
	Save(ctx context.Context, opts SaveOptions) <-chan struct{}
	SaveSync(ctx context.Context, opts SaveOptions) (string, error)
	Tags(ctx context.Context) ([]string, error)
	AddTags(ctx context.Context, newTags ...string) ([]string, error)
	ImportTags(ctx context.Context, dir string) ([]string, error)
}

// Settings is the preferences collaborator; it is asked once per save
type Settings interface {
	AutoSave() bool
}

// Persister is the file persistence collaborator
type Persister interface {
	Save(ctx context.Context, req vo.SaveRequest) (string, error)
	SaveAsync(ctx context.Context, req vo.SaveRequest) <-chan struct{}
}

type ClipOptions struct {
	// FullPage keeps the full page document current even when there is a selection
	FullPage bool
}

type SaveOptions struct {
	Markdown vo.MarkdownDocument
	Title    string
	Tags     []string
}

type service struct {
	logger        *zap.Logger
	locateOptions locate.Options
	tagStore      tags.Store
	settings      Settings
	persister     Persister
}

func NewService(
	logger *zap.Logger,
	locateOptions locate.Options,
	tagStore tags.Store,
	settings Settings,
	persister Persister,
) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{
		logger:        logger,
		locateOptions: locateOptions,
		tagStore:      tagStore,
		settings:      settings,
		persister:     persister,
	}
}

// Clip locates the article once and composes the full page document and, with
// a selection, the excerpt document from the same snapshot
func (s *service) Clip(ctx context.Context, page *locate.Page, opts ClipOptions) (*vo.Clip, error) {
	snapshot := locate.Locate(page, s.locateOptions)
	s.logger.Debug("located article",
		zap.String("url", snapshot.URL),
		zap.String("title", snapshot.Title),
		zap.Int("htmlLength", len(snapshot.HTML)),
		zap.Bool("selection", snapshot.HasSelection()),
	)

	full, err := compose.Compose(snapshot, false, false)
	if err != nil {
		return nil, err
	}
	clip := &vo.Clip{
		Snapshot: snapshot,
		Full:     full,
		Current:  full,
	}
	if snapshot.HasSelection() {
		excerpt, err := compose.Compose(snapshot, true, true)
		if err != nil {
			return nil, err
		}
		clip.Excerpt = excerpt
		if !opts.FullPage {
			clip.Current = excerpt
			clip.Selection = true
		}
	}
	return clip, nil
}

// Save remembers the tags and hands the document to the persister without waiting
func (s *service) Save(ctx context.Context, opts SaveOptions) <-chan struct{} {
	return s.persister.SaveAsync(ctx, s.prepare(ctx, opts))
}

// SaveSync is Save for callers that want the outcome
func (s *service) SaveSync(ctx context.Context, opts SaveOptions) (string, error) {
	return s.persister.Save(ctx, s.prepare(ctx, opts))
}

func (s *service) prepare(ctx context.Context, opts SaveOptions) vo.SaveRequest {
	selected := tags.NewSet(opts.Tags...)
	if _, err := s.AddTags(ctx, selected.Slice()...); err != nil {
		s.logger.Warn("failed to store tags", zap.Error(err))
	}
	return vo.SaveRequest{
		Content:  string(compose.WithFrontmatter(selected.Slice(), opts.Markdown)),
		Title:    opts.Title,
		AutoSave: s.settings != nil && s.settings.AutoSave(),
	}
}

func (s *service) Tags(ctx context.Context) ([]string, error) {
	if s.tagStore == nil {
		return []string{}, nil
	}
	return s.tagStore.Get(ctx)
}

// AddTags merges newTags into the stored list and returns the result
func (s *service) AddTags(ctx context.Context, newTags ...string) ([]string, error) {
	current, err := s.Tags(ctx)
	if err != nil {
		return nil, err
	}
	all := tags.NewSet(current...)
	before := all.Len()
	all.Add(newTags...)
	if s.tagStore != nil && all.Len() != before {
		if err := s.tagStore.Set(ctx, all.Slice()); err != nil {
			return nil, err
		}
	}
	return all.Slice(), nil
}

// ImportTags collects the frontmatter tags of all Markdown files below dir
func (s *service) ImportTags(ctx context.Context, dir string) ([]string, error) {
	found := tags.NewSet()
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		fileTags, _, err := compose.ParseFrontmatter(string(data))
		if err != nil {
			s.logger.Debug("skipping file without frontmatter", zap.String("path", path), zap.Error(err))
			return nil
		}
		found.Add(fileTags...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import tags: %w", err)
	}
	return s.AddTags(ctx, found.Slice()...)
}
