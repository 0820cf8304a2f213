package persist

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/foomo/mdclip/service/vo"
)

var fixedNow = time.Date(2024, 3, 5, 7, 8, 9, 123000000, time.UTC)

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Weird/Title!!", want: "Weird-Title"},
		{title: "My Post", want: "My-Post"},
		{title: "  --a___b--  ", want: "a___b"},
		{title: "", want: "article"},
		{title: "!!!", want: "article"},
		{title: "Ünïcödé", want: "n-c-d"},
		{title: strings.Repeat("abcdefghij", 6), want: strings.Repeat("abcdefghij", 5)},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTitle(tt.title))
		})
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "My-Post-2024-03-05T07-08-09.md", Filename("My Post", fixedNow))
	assert.Equal(t, "article-2024-03-05T07-08-09.md", Filename("", fixedNow.In(time.FixedZone("CET", 3600))))
}

type fixedPrompter struct {
	path      string
	suggested string
}

func (p *fixedPrompter) PromptLocation(ctx context.Context, suggested string) (string, error) {
	p.suggested = suggested
	return p.path, nil
}

func TestSaveAutoSave(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir, WithClock(func() time.Time { return fixedNow }))

	path, err := s.Save(context.Background(), vo.SaveRequest{Content: "# Ünïcode ✓", Title: "My Post", AutoSave: true})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "My-Post-2024-03-05T07-08-09.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Ünïcode ✓", string(data))
}

func TestSavePrompts(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "chosen", "file.md")
	prompter := &fixedPrompter{path: target}
	s := NewSaver(dir, WithPrompter(prompter), WithClock(func() time.Time { return fixedNow }))

	path, err := s.Save(context.Background(), vo.SaveRequest{Content: "body", Title: "T"})
	require.NoError(t, err)

	assert.Equal(t, target, path)
	assert.Equal(t, filepath.Join(dir, "T-2024-03-05T07-08-09.md"), prompter.suggested)
	assert.FileExists(t, target)
}

func TestSaveWithoutPrompter(t *testing.T) {
	s := NewSaver(t.TempDir())

	_, err := s.Save(context.Background(), vo.SaveRequest{Content: "body"})
	assert.ErrorIs(t, err, ErrNoPrompter)
}

func TestSaveAsync(t *testing.T) {
	dir := t.TempDir()
	s := NewSaver(dir, WithLogger(zap.NewNop()), WithClock(func() time.Time { return fixedNow }))

	<-s.SaveAsync(context.Background(), vo.SaveRequest{Content: "body", Title: "T", AutoSave: true})
	assert.FileExists(t, filepath.Join(dir, "T-2024-03-05T07-08-09.md"))

	// failures stay silent
	<-NewSaver(dir).SaveAsync(context.Background(), vo.SaveRequest{Content: "body"})
}

func TestStdinPrompter(t *testing.T) {
	dir := t.TempDir()
	suggested := filepath.Join("downloads", "T.md")
	var out bytes.Buffer

	path, err := (&StdinPrompter{In: strings.NewReader("\n"), Out: &out}).PromptLocation(context.Background(), suggested)
	require.NoError(t, err)
	assert.Equal(t, suggested, path)
	assert.Contains(t, out.String(), suggested)

	path, err = (&StdinPrompter{In: strings.NewReader(dir + "\n"), Out: &out}).PromptLocation(context.Background(), suggested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "T.md"), path)

	path, err = (&StdinPrompter{In: strings.NewReader("other.md"), Out: &out}).PromptLocation(context.Background(), suggested)
	require.NoError(t, err)
	assert.Equal(t, "other.md", path)
}

func TestStdinPrompterKeepsBufferedLines(t *testing.T) {
	var out bytes.Buffer
	prompter := &StdinPrompter{In: strings.NewReader("first.md\nsecond.md\n"), Out: &out}

	path, err := prompter.PromptLocation(context.Background(), "a.md")
	require.NoError(t, err)
	assert.Equal(t, "first.md", path)

	path, err = prompter.PromptLocation(context.Background(), "b.md")
	require.NoError(t, err)
	assert.Equal(t, "second.md", path)
}
